package chat

import "encoding/json"

// textKeys are the flat response fields probed in order. Automation
// workflows disagree on where the generated text lives.
var textKeys = []string{
	"response", "text", "content", "result", "answer",
	"output", "message", "data", "body",
}

// ExtractText pulls the answer string out of an arbitrary webhook response
// body. A bare JSON string, any of the known flat keys, or the Gemini-style
// candidates[0].content.parts[0].text nesting all work; anything else
// returns false.
func ExtractText(body []byte) (string, bool) {
	// Bare string body.
	var s string
	if err := json.Unmarshal(body, &s); err == nil && s != "" {
		return s, true
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(body, &obj); err != nil {
		return "", false
	}

	for _, key := range textKeys {
		raw, ok := obj[key]
		if !ok {
			continue
		}
		if err := json.Unmarshal(raw, &s); err == nil && s != "" {
			return s, true
		}
	}

	// candidates[0].content.parts[0].text
	var candidates struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
	}
	if err := json.Unmarshal(body, &candidates); err == nil &&
		len(candidates.Candidates) > 0 &&
		len(candidates.Candidates[0].Content.Parts) > 0 &&
		candidates.Candidates[0].Content.Parts[0].Text != "" {
		return candidates.Candidates[0].Content.Parts[0].Text, true
	}

	return "", false
}
