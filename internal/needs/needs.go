// Package needs buckets classified snapshots into ranked community needs
// for the presentation layer.
package needs

import (
	"sort"

	"github.com/cityscope/cityscope-cli/internal/classifier"
	"github.com/cityscope/cityscope-cli/internal/model"
)

// DistrictLocator labels a coordinate with a named district. Optional; when
// absent, needs carry no district label.
type DistrictLocator interface {
	Locate(lat, lon float64) (string, bool)
}

// Aggregator derives community needs from snapshots.
type Aggregator struct {
	locator    DistrictLocator
	includeLow bool
}

// Option configures the aggregator.
type Option func(*Aggregator)

// WithDistricts labels each need with its containing district.
func WithDistricts(locator DistrictLocator) Option {
	return func(a *Aggregator) { a.locator = locator }
}

// WithLowSeverity includes low-severity (excellent band) entries, which are
// otherwise omitted. They remain distinguishable by their Severity field.
func WithLowSeverity() Option {
	return func(a *Aggregator) { a.includeLow = true }
}

// New creates an Aggregator.
func New(opts ...Option) *Aggregator {
	a := &Aggregator{}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

var severityRank = map[model.NeedSeverity]int{
	model.SeverityCritical: 0,
	model.SeverityModerate: 1,
	model.SeverityLow:      2,
}

// Aggregate produces at most one CommunityNeed per (category, location)
// pair: the worst index in that category decides the severity and carries
// its score. Output is stably sorted critical-first, then score ascending
// (worse first).
func (a *Aggregator) Aggregate(snapshots []model.CityHealthSnapshot) []model.CommunityNeed {
	var out []model.CommunityNeed

	for _, snap := range snapshots {
		byCategory := make(map[model.NeedCategory]model.CommunityNeed)

		for _, id := range model.AllIndexIDs {
			idx, ok := snap.Indices[id]
			if !ok {
				continue
			}
			need := model.CommunityNeed{
				Category: idx.Category,
				Severity: severityFromBand(bandFor(idx)),
				Score:    idx.TotalScore,
				Index:    id,
				Location: snap.Location,
			}

			existing, seen := byCategory[idx.Category]
			if !seen || severityRank[need.Severity] < severityRank[existing.Severity] {
				byCategory[idx.Category] = need
			}
		}

		for _, need := range byCategory {
			if need.Severity == model.SeverityLow && !a.includeLow {
				continue
			}
			if a.locator != nil {
				if name, ok := a.locator.Locate(snap.Location.Latitude, snap.Location.Longitude); ok {
					need.District = name
				}
			}
			out = append(out, need)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		if severityRank[out[i].Severity] != severityRank[out[j].Severity] {
			return severityRank[out[i].Severity] < severityRank[out[j].Severity]
		}
		return out[i].Score < out[j].Score
	})
	return out
}

// bandFor uses the already-classified band when present, otherwise
// classifies in place. Aggregation accepts snapshots from storage, which
// may predate classification.
func bandFor(idx model.UrbanIndex) model.StatusBand {
	if idx.Band != "" {
		return idx.Band
	}
	res, err := classifier.Classify(idx.ID, idx.TotalScore, idx.Target)
	if err != nil {
		return model.BandCritical
	}
	return res.Band
}

// severityFromBand is the fixed band → severity mapping: only a critical
// band ever yields a critical need.
func severityFromBand(band model.StatusBand) model.NeedSeverity {
	switch band {
	case model.BandCritical:
		return model.SeverityCritical
	case model.BandExcellent:
		return model.SeverityLow
	default:
		return model.SeverityModerate
	}
}
