// Package gateway assembles EnvironmentalSamples by fanning out to the
// configured providers and degrading to synthetic values on failure. It
// never returns an error for provider trouble: downstream consumers must
// always receive some sample, tagged with its quality.
package gateway

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/cityscope/cityscope-cli/internal/gateway/provider"
	"github.com/cityscope/cityscope-cli/internal/model"
	"github.com/cityscope/cityscope-cli/internal/resilience"
)

// Gateway fetches and normalizes environmental signals for a location.
type Gateway struct {
	registry        *provider.Registry
	providerTimeout time.Duration
	retry           resilience.RetryConfig
	now             func() time.Time
}

// Option configures the gateway.
type Option func(*Gateway)

// WithProviderTimeout sets the per-provider call timeout. The gateway's own
// hard deadline is twice this value.
func WithProviderTimeout(d time.Duration) Option {
	return func(g *Gateway) {
		if d > 0 {
			g.providerTimeout = d
		}
	}
}

// WithNow fixes the sample clock for testing.
func WithNow(now func() time.Time) Option {
	return func(g *Gateway) { g.now = now }
}

// New creates a Gateway over the given provider registry.
func New(registry *provider.Registry, opts ...Option) *Gateway {
	g := &Gateway{
		registry:        registry,
		providerTimeout: 8 * time.Second,
		retry:           resilience.ProviderRetryConfig(),
		now:             time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// FetchEnvironmentalSample fans out to every registered provider, merges
// their readings (registration order wins on overlap) and fills whatever is
// missing with seeded synthetic values. All provider calls run concurrently;
// one provider's failure never aborts the others.
func (g *Gateway) FetchEnvironmentalSample(ctx context.Context, loc model.Location) model.EnvironmentalSample {
	providers := g.registry.All()
	readings := make([]*provider.Reading, len(providers))

	// Hard upper bound so a run can never hang on a slow provider set.
	ctx, cancel := context.WithTimeout(ctx, 2*g.providerTimeout)
	defer cancel()

	var grp errgroup.Group
	for i, p := range providers {
		grp.Go(func() error {
			pctx, pcancel := context.WithTimeout(ctx, g.providerTimeout)
			defer pcancel()

			reading, err := resilience.DoVal(pctx, g.retry, func(ctx context.Context) (provider.Reading, error) {
				return p.Fetch(ctx, provider.Coordinates{
					Latitude:  loc.Latitude,
					Longitude: loc.Longitude,
				})
			})
			if err != nil {
				// Degrade, never propagate.
				zap.L().Warn("gateway: provider unavailable",
					zap.String("provider", p.Name()),
					zap.Float64("lat", loc.Latitude),
					zap.Float64("lon", loc.Longitude),
					zap.Error(err),
				)
				return nil
			}
			readings[i] = &reading
			return nil
		})
	}
	_ = grp.Wait() // goroutines only ever return nil

	// Merge in precedence order.
	fields := make(map[provider.Field]float64, len(provider.AllFields))
	for _, r := range readings {
		if r == nil {
			continue
		}
		for f, v := range r.Fields {
			if _, ok := fields[f]; !ok {
				fields[f] = v
			}
		}
	}

	measured := len(fields)
	quality := model.QualityMeasured
	switch {
	case measured == 0:
		quality = model.QualitySynthetic
	case measured < len(provider.AllFields):
		quality = model.QualityEstimated
	}

	fillSynthetic(loc, fields)

	if quality != model.QualityMeasured {
		zap.L().Info("gateway: sample degraded",
			zap.Float64("lat", loc.Latitude),
			zap.Float64("lon", loc.Longitude),
			zap.Int("measured_fields", measured),
			zap.String("quality", string(quality)),
		)
	}

	return model.EnvironmentalSample{
		Location:           loc,
		Temperature:        fields[provider.FieldTemperature],
		Precipitation:      fields[provider.FieldPrecipitation],
		Humidity:           fields[provider.FieldHumidity],
		WindSpeed:          fields[provider.FieldWindSpeed],
		AirQualityScore:    fields[provider.FieldAirQuality],
		VegetationFraction: fields[provider.FieldVegetation],
		SurfaceTemperature: fields[provider.FieldSurfaceTemperature],
		CloudCover:         fields[provider.FieldCloudCover],
		Timestamp:          g.now().UTC(),
		Quality:            quality,
	}
}
