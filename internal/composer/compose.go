// Package composer converts an EnvironmentalSample into the fixed set of
// ten urban health indices. Every formula, target, and component schema
// lives here or in the definition table; there is no second code path for
// fallback data, because the gateway already guarantees a usable sample.
package composer

import (
	"math"
	"math/rand/v2"

	"github.com/cityscope/cityscope-cli/internal/classifier"
	"github.com/cityscope/cityscope-cli/internal/model"
)

// Composer derives UrbanIndex values from environmental samples.
type Composer struct {
	cfg    Config
	seedFn func(sample model.EnvironmentalSample) *rand.Rand
}

// Option configures the composer.
type Option func(*Composer)

// WithSeed pins the random source used for component decomposition, making
// output fully reproducible regardless of sample identity.
func WithSeed(s1, s2 uint64) Option {
	return func(c *Composer) {
		c.seedFn = func(model.EnvironmentalSample) *rand.Rand {
			return rand.New(rand.NewPCG(s1, s2))
		}
	}
}

// New creates a Composer. By default decomposition is seeded from the
// sample's location and timestamp, so composing the same sample twice
// yields identical output.
func New(cfg Config, opts ...Option) *Composer {
	c := &Composer{
		cfg: cfg,
		seedFn: func(s model.EnvironmentalSample) *rand.Rand {
			seed := math.Float64bits(s.Location.Latitude) ^ uint64(s.Timestamp.UnixNano())
			return rand.New(rand.NewPCG(seed, math.Float64bits(s.Location.Longitude)))
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Compose returns exactly the ten fixed indices for the sample. Callers
// depend on completeness: the map always contains every IndexID, whatever
// the sample quality.
func (c *Composer) Compose(sample model.EnvironmentalSample) map[model.IndexID]model.UrbanIndex {
	rng := c.seedFn(sample)
	out := make(map[model.IndexID]model.UrbanIndex, len(model.AllIndexIDs))

	// The nine signal-driven indices first; hwi blends their results.
	for _, id := range model.AllIndexIDs {
		if id == model.IndexHWI {
			continue
		}
		out[id] = c.composeOne(id, sample, rng)
	}
	out[model.IndexHWI] = c.composeWellBeing(out, rng)

	return out
}

func (c *Composer) composeOne(id model.IndexID, sample model.EnvironmentalSample, rng *rand.Rand) model.UrbanIndex {
	def, _ := model.LookupIndex(id)

	var components map[string]float64
	switch id {
	case model.IndexCRI:
		components = criComponents(sample)
	case model.IndexUHVI:
		components = uhviComponents(sample)
	case model.IndexWSI:
		components = wsiComponents(sample)
	default:
		components = decompose(c.totalFor(id, sample), def.Components, rng)
	}

	var total float64
	for _, v := range components {
		total += v
	}

	return model.UrbanIndex{
		ID:             id,
		Name:           def.Name,
		Category:       def.Category,
		Components:     components,
		TotalScore:     round2(total),
		Target:         c.cfg.targetFor(def),
		Directionality: def.Directionality,
	}
}

// totalFor computes the total score for the indices whose components are
// split by decomposition rather than derived field by field.
func (c *Composer) totalFor(id model.IndexID, s model.EnvironmentalSample) float64 {
	comfort := clamp(100-math.Abs(s.Temperature-22)*3, 0, 100)
	greenness := clamp(s.VegetationFraction, 0, 1) * 100

	switch id {
	case model.IndexAQHI:
		// 0 (pristine) to 10 (hazardous); target is a ceiling of 4.
		return round2(clamp((100-s.AirQualityScore)/10, 0, 10))
	case model.IndexGEA:
		return round2(greenness)
	case model.IndexSCM:
		return round2(clamp(0.5*comfort+0.3*s.AirQualityScore+0.2*greenness, 0, 100))
	case model.IndexEJT:
		return round2(clamp(0.6*s.AirQualityScore+0.4*greenness, 0, 100))
	case model.IndexTAS:
		rainPenalty := math.Min(s.Precipitation/20, 1) * 100
		windPenalty := math.Min(s.WindSpeed/15, 1) * 100
		return round2(clamp(0.5*comfort+0.3*(100-rainPenalty)+0.2*(100-windPenalty), 0, 100))
	case model.IndexDPI:
		floodHazard := math.Min(s.Precipitation/50, 1) * 50
		stormHazard := math.Min(s.WindSpeed/25, 1) * 30
		heatHazard := clamp((s.SurfaceTemperature-40)/20, 0, 1) * 20
		return round2(clamp(100-floodHazard-stormHazard-heatHazard, 0, 100))
	}
	return 0
}

// criComponents derives climate resilience field by field: comfort-band
// temperature, air quality headroom, water balance, and storm exposure.
func criComponents(s model.EnvironmentalSample) map[string]float64 {
	waterBalance := math.Min(s.Precipitation/10, 1)*12.5 + clamp(s.Humidity, 0, 100)/100*12.5
	return map[string]float64{
		"Thermal Comfort":    round2((1 - math.Min(math.Abs(s.Temperature-22)/20, 1)) * 25),
		"Air Quality Buffer": round2(clamp(s.AirQualityScore, 0, 100) / 100 * 25),
		"Water Balance":      round2(waterBalance),
		"Storm Exposure":     round2((1 - math.Min(s.WindSpeed/20, 1)) * 25),
	}
}

// uhviComponents derives heat vulnerability. Land surface temperature maps
// 20°C → 0 up to a 25-point saturation at 50°C.
func uhviComponents(s model.EnvironmentalSample) map[string]float64 {
	return map[string]float64{
		"Land Surface Temperature": round2(clamp((s.SurfaceTemperature-20)*25/30, 0, 25)),
		"Vegetation Deficit":       round2((1 - clamp(s.VegetationFraction, 0, 1)) * 10),
		"Heat Retention":           round2(clamp(s.CloudCover, 0, 100) / 100 * 10),
		"Humidity Stress":          round2(clamp((s.Humidity-60)/40, 0, 1) * 5),
	}
}

// wsiComponents derives water security from rainfall, humidity, vegetation
// retention and cloud cover.
func wsiComponents(s model.EnvironmentalSample) map[string]float64 {
	return map[string]float64{
		"Rainfall Adequacy": round2(math.Min(s.Precipitation/10, 1) * 30),
		"Humidity Reserve":  round2(clamp(s.Humidity, 0, 100) / 100 * 25),
		"Runoff Capture":    round2(clamp(s.VegetationFraction, 0, 1) * 25),
		"Drought Buffer":    round2(clamp(s.CloudCover, 0, 100) / 100 * 20),
	}
}

// composeWellBeing blends the other nine indices into the hwi meta-index.
// Each contribution is the index's progress percentage, which normalizes
// the two ceiling-style indices onto the same 0–100 healthiness scale.
// Weights come from configuration; the default is an equal-weight mean.
func (c *Composer) composeWellBeing(others map[model.IndexID]model.UrbanIndex, rng *rand.Rand) model.UrbanIndex {
	def, _ := model.LookupIndex(model.IndexHWI)

	// Fixed iteration order keeps the float accumulation reproducible.
	var weighted, weightSum float64
	for _, id := range model.AllIndexIDs {
		if id == model.IndexHWI {
			continue
		}
		idx := others[id]
		w := c.cfg.wellBeingWeight(id)
		if w <= 0 {
			continue
		}
		// Ignoring the error: ids here come from the closed set.
		contribution, _ := classifier.Progress(id, idx.TotalScore, idx.Target)
		weighted += w * contribution
		weightSum += w
	}

	var total float64
	if weightSum > 0 {
		total = round2(weighted / weightSum)
	}

	return model.UrbanIndex{
		ID:             def.ID,
		Name:           def.Name,
		Category:       def.Category,
		Components:     decompose(total, def.Components, rng),
		TotalScore:     total,
		Target:         c.cfg.targetFor(def),
		Directionality: def.Directionality,
	}
}
