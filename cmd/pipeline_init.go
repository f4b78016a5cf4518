package main

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/cityscope/cityscope-cli/internal/composer"
	"github.com/cityscope/cityscope-cli/internal/district"
	"github.com/cityscope/cityscope-cli/internal/fetcher"
	"github.com/cityscope/cityscope-cli/internal/gateway"
	"github.com/cityscope/cityscope-cli/internal/gateway/provider"
	"github.com/cityscope/cityscope-cli/internal/pipeline"
	"github.com/cityscope/cityscope-cli/internal/store"
	"github.com/cityscope/cityscope-cli/pkg/chat"
	"github.com/cityscope/cityscope-cli/pkg/geocode"
)

// pipelineEnv holds the initialized store, gateway, and pipeline shared by
// the compose/batch/needs/serve commands.
type pipelineEnv struct {
	Store     store.Store
	Pipeline  *pipeline.Pipeline
	Districts *district.Set // may be nil
	Geocoder  geocode.Client
}

// Close releases resources held by the pipeline environment.
func (pe *pipelineEnv) Close() {
	if pe.Store != nil {
		_ = pe.Store.Close()
	}
}

// initPipeline sets up the store, provider registry, composer, and pipeline.
// Callers should defer env.Close().
func initPipeline(ctx context.Context, mode string) (*pipelineEnv, error) {
	if err := cfg.Validate(mode); err != nil {
		return nil, err
	}

	st, err := store.Open(ctx, cfg.Store.Driver, cfg.Store.DatabaseURL)
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}

	client := fetcher.NewClient(fetcher.Options{
		Timeout: time.Duration(cfg.Gateway.ProviderTimeoutSecs) * time.Second,
	})

	registry := provider.NewRegistry()
	registry.Register(provider.NewOpenMeteo(client, cfg.Providers.OpenMeteoBaseURL))
	registry.Register(provider.NewAirQuality(client, cfg.Providers.AirQualityBaseURL))
	registry.Register(provider.NewNASAPower(client, cfg.Providers.NASAPowerBaseURL))

	gw := gateway.New(registry,
		gateway.WithProviderTimeout(time.Duration(cfg.Gateway.ProviderTimeoutSecs)*time.Second),
	)

	composerCfg, err := composer.LoadConfig(cfg.Composer.ConfigPath)
	if err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "load composer config")
	}
	comp := composer.New(composerCfg)

	var districts *district.Set
	if cfg.Districts.ShapefilePath != "" {
		districts, err = district.Load(cfg.Districts.ShapefilePath)
		if err != nil {
			zap.L().Warn("district shapefile not loaded, needs will be unlabeled", zap.Error(err))
			districts = nil
		} else {
			zap.L().Info("district boundaries loaded", zap.Int("count", districts.Len()))
		}
	}

	geocoder := geocode.NewClient(
		geocode.WithBaseURL(cfg.Geocode.BaseURL),
		geocode.WithUserAgent(cfg.Geocode.UserAgent),
	)

	return &pipelineEnv{
		Store:     st,
		Pipeline:  pipeline.New(gw, comp),
		Districts: districts,
		Geocoder:  geocoder,
	}, nil
}

// initChat picks the assistant backend: direct API when a key is configured,
// webhook otherwise.
func initChat() (chat.Gateway, error) {
	if err := cfg.Validate("chat"); err != nil {
		return nil, err
	}
	if cfg.Chat.AnthropicKey != "" {
		return chat.NewAnthropicGateway(cfg.Chat.AnthropicKey, cfg.Chat.AnthropicModel), nil
	}
	return chat.NewWebhookGateway(cfg.Chat.WebhookURL), nil
}
