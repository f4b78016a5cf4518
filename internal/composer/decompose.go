package composer

import (
	"math"
	"math/rand/v2"

	"github.com/cityscope/cityscope-cli/internal/model"
)

// jitterFraction is how far a component may wander from its proportional
// base share during decomposition.
const jitterFraction = 0.15

// decompose splits total across the component schema proportionally to each
// component's point ceiling, with bounded jitter from rng, then corrects so
// the values sum back to total exactly. Deterministic for a fixed rng seed.
func decompose(total float64, comps []model.ComponentDef, rng *rand.Rand) map[string]float64 {
	var maxSum float64
	for _, c := range comps {
		maxSum += c.MaxPoints
	}
	if total > maxSum {
		total = maxSum
	}
	if total < 0 {
		total = 0
	}

	vals := make([]float64, len(comps))
	for i, c := range comps {
		base := total * c.MaxPoints / maxSum
		v := base * (1 + jitterFraction*(2*rng.Float64()-1))
		if v > c.MaxPoints {
			v = c.MaxPoints
		}
		if v < 0 {
			v = 0
		}
		vals[i] = round2(v)
	}

	// Correct the jitter-and-rounding drift, respecting each component's
	// bounds. total <= maxSum guarantees enough slack somewhere.
	var sum float64
	for _, v := range vals {
		sum += v
	}
	diff := total - sum
	for i := range vals {
		if diff == 0 {
			break
		}
		c := comps[i]
		if diff > 0 {
			slack := c.MaxPoints - vals[i]
			add := math.Min(diff, slack)
			vals[i] += add
			diff -= add
		} else {
			take := math.Min(-diff, vals[i])
			vals[i] -= take
			diff += take
		}
	}

	out := make(map[string]float64, len(comps))
	for i, c := range comps {
		out[c.Name] = vals[i]
	}
	return out
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
