package gateway

import (
	"math"
	"math/rand/v2"

	"github.com/cityscope/cityscope-cli/internal/gateway/provider"
	"github.com/cityscope/cityscope-cli/internal/model"
)

// syntheticRange documents the plausible band a substituted value is drawn
// from. Values outside these bands never come from the filler.
type syntheticRange struct {
	min, max float64
}

var syntheticRanges = map[provider.Field]syntheticRange{
	provider.FieldPrecipitation: {0, 12},   // mm
	provider.FieldHumidity:      {40, 90},  // %
	provider.FieldWindSpeed:     {0.5, 8},  // m/s
	provider.FieldAirQuality:    {35, 85},  // 0–100
	provider.FieldVegetation:    {0.1, 0.6},
	provider.FieldCloudCover:    {10, 90}, // %
}

// synthSource returns a deterministic random source for a location, so
// substituted values are reproducible run to run for the same coordinates.
func synthSource(loc model.Location) *rand.Rand {
	latBits := math.Float64bits(loc.Latitude)
	lonBits := math.Float64bits(loc.Longitude)
	return rand.New(rand.NewPCG(latBits, lonBits))
}

// fillSynthetic substitutes every field missing from fields with a seeded
// value from its plausible range. Temperature is biased by latitude
// (warmer toward the equator); surface temperature rides a few degrees
// above air temperature, as it does in built-up areas.
func fillSynthetic(loc model.Location, fields map[provider.Field]float64) {
	rng := synthSource(loc)

	draw := func(r syntheticRange) float64 {
		return r.min + rng.Float64()*(r.max-r.min)
	}

	if _, ok := fields[provider.FieldTemperature]; !ok {
		base := 28 - math.Abs(loc.Latitude)*0.35
		fields[provider.FieldTemperature] = base + (rng.Float64()*10 - 5)
	}
	for _, f := range []provider.Field{
		provider.FieldPrecipitation, provider.FieldHumidity,
		provider.FieldWindSpeed, provider.FieldAirQuality,
		provider.FieldVegetation, provider.FieldCloudCover,
	} {
		if _, ok := fields[f]; !ok {
			fields[f] = draw(syntheticRanges[f])
		}
	}
	if _, ok := fields[provider.FieldSurfaceTemperature]; !ok {
		fields[provider.FieldSurfaceTemperature] = fields[provider.FieldTemperature] + 2 + rng.Float64()*6
	}
}
