package chat

import (
	"context"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/rotisserie/eris"
)

const assistantSystemPrompt = "You are an urban planning assistant. Answer questions " +
	"about city health indices, environmental conditions, and community needs. Be " +
	"concise and concrete; cite the index names you reason from."

// AnthropicGateway answers prompts via the Anthropic API directly, skipping
// the automation webhook. Used when an API key is configured.
type AnthropicGateway struct {
	client    sdk.Client
	model     string
	maxTokens int64
}

// NewAnthropicGateway creates a direct API Gateway.
func NewAnthropicGateway(apiKey, model string) *AnthropicGateway {
	return &AnthropicGateway{
		client:    sdk.NewClient(option.WithAPIKey(apiKey)),
		model:     model,
		maxTokens: 1024,
	}
}

func (g *AnthropicGateway) Ask(ctx context.Context, prompt string) (string, error) {
	msg, err := g.client.Messages.New(ctx, sdk.MessageNewParams{
		Model:     sdk.Model(g.model),
		MaxTokens: g.maxTokens,
		System:    []sdk.TextBlockParam{{Text: assistantSystemPrompt}},
		Messages:  []sdk.MessageParam{sdk.NewUserMessage(sdk.NewTextBlock(prompt))},
	})
	if err != nil {
		return "", wrapError(eris.Wrap(err, "chat: anthropic create message"))
	}

	for _, block := range msg.Content {
		if block.Type == "text" && block.Text != "" {
			return block.Text, nil
		}
	}
	return "", wrapError(eris.New("chat: anthropic response had no text content"))
}
