// Package classifier maps index scores to status bands and progress
// percentages. Directionality comes from the index definition table, never
// from call-site guessing: uhvi and aqhi score against absolute ceilings
// where a lower value is healthier, everything else against a
// percentage-of-target scale.
package classifier

import (
	"math"

	"github.com/rotisserie/eris"

	"github.com/cityscope/cityscope-cli/internal/model"
)

// ErrUnknownIndex reports an identifier outside the closed index set. This
// is a contract violation by the caller, not a data problem.
var ErrUnknownIndex = eris.New("classifier: unknown index id")

// Result is the classification of one score.
type Result struct {
	Band        model.StatusBand `json:"band"`
	ProgressPct float64          `json:"progress_pct"`
}

// lowerIsBetterBands holds the absolute band edges for ceiling-style
// indices: score <= Excellent → excellent, <= Good → good, <= Moderate →
// moderate, else critical.
type lowerBands struct {
	Excellent, Good, Moderate float64
}

var lowerBandTable = map[model.IndexID]lowerBands{
	model.IndexUHVI: {Excellent: 15, Good: 25, Moderate: 35},
	model.IndexAQHI: {Excellent: 2, Good: 3, Moderate: 6},
}

// Classify bands a score against its target for the given index. target
// normally comes from the definition table but may be overridden by
// configuration; directionality always comes from the table.
func Classify(id model.IndexID, score, target float64) (Result, error) {
	def, ok := model.LookupIndex(id)
	if !ok {
		return Result{}, eris.Wrapf(ErrUnknownIndex, "%q", id)
	}

	if def.Directionality == model.LowerIsBetter {
		return classifyLower(id, score), nil
	}

	if target <= 0 {
		target = def.Target
	}
	pct := score / target * 100
	res := Result{ProgressPct: math.Min(100, pct)}
	switch {
	case pct >= 95:
		res.Band = model.BandExcellent
	case pct >= 70:
		res.Band = model.BandGood
	case pct >= 50:
		res.Band = model.BandModerate
	default:
		res.Band = model.BandCritical
	}
	return res, nil
}

func classifyLower(id model.IndexID, score float64) Result {
	bands := lowerBandTable[id]

	var res Result
	switch {
	case score <= bands.Excellent:
		res.Band = model.BandExcellent
	case score <= bands.Good:
		res.Band = model.BandGood
	case score <= bands.Moderate:
		res.Band = model.BandModerate
	default:
		res.Band = model.BandCritical
	}

	// Progress against the ceiling: at 0 the city is as far from the
	// ceiling as possible. The aqhi denominator is 3 by convention (the
	// distance from the ceiling to the good band edge scaled up).
	switch id {
	case model.IndexUHVI:
		res.ProgressPct = clamp01((30-score)/30) * 100
	case model.IndexAQHI:
		res.ProgressPct = clamp01((4-score)/3) * 100
	}
	return res
}

// Progress returns only the progress percentage; used by the composer for
// the well-being meta-index, which blends normalized contributions.
func Progress(id model.IndexID, score, target float64) (float64, error) {
	res, err := Classify(id, score, target)
	if err != nil {
		return 0, err
	}
	return res.ProgressPct, nil
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
