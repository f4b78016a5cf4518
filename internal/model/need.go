package model

// NeedCategory is the presentation-facing grouping for community needs.
type NeedCategory string

const (
	CategoryFoodAccess     NeedCategory = "food-access"
	CategoryHousing        NeedCategory = "housing"
	CategoryTransportation NeedCategory = "transportation"
	CategoryPollution      NeedCategory = "pollution"
	CategoryHealthcare     NeedCategory = "healthcare"
	CategoryParks          NeedCategory = "parks"
	CategoryGrowth         NeedCategory = "growth"
	CategoryEnergy         NeedCategory = "energy"
)

// NeedSeverity ranks how urgent a community need is.
type NeedSeverity string

const (
	SeverityCritical NeedSeverity = "critical"
	SeverityModerate NeedSeverity = "moderate"
	SeverityLow      NeedSeverity = "low"
)

// CommunityNeed is a cross-index classification for one (category, location)
// pair, derived from a snapshot's classified indices.
type CommunityNeed struct {
	Category NeedCategory `json:"category"`
	Severity NeedSeverity `json:"severity"`
	Score    float64      `json:"score"`
	Index    IndexID      `json:"index"`
	Location Location     `json:"location"`
	District string       `json:"district,omitempty"` // boundary label, when district data is loaded
}
