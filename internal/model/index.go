package model

import "time"

// IndexID names one of the ten urban health indices. The set is closed;
// callers depend on every snapshot containing exactly these identifiers.
type IndexID string

const (
	IndexCRI  IndexID = "cri"  // Climate Resilience Index
	IndexUHVI IndexID = "uhvi" // Urban Heat Vulnerability Index
	IndexAQHI IndexID = "aqhi" // Air Quality Health Impact
	IndexWSI  IndexID = "wsi"  // Water Security Index
	IndexGEA  IndexID = "gea"  // Green Equity Assessment
	IndexSCM  IndexID = "scm"  // Social Cohesion Metric
	IndexEJT  IndexID = "ejt"  // Environmental Justice Tracker
	IndexTAS  IndexID = "tas"  // Transportation Access Score
	IndexDPI  IndexID = "dpi"  // Disaster Preparedness Index
	IndexHWI  IndexID = "hwi"  // Human Well-being Index
)

// AllIndexIDs lists the closed index set in presentation order.
var AllIndexIDs = []IndexID{
	IndexCRI, IndexUHVI, IndexAQHI, IndexWSI, IndexGEA,
	IndexSCM, IndexEJT, IndexTAS, IndexDPI, IndexHWI,
}

// Directionality declares whether a higher or lower score is healthier.
type Directionality string

const (
	HigherIsBetter Directionality = "higher_is_better"
	LowerIsBetter  Directionality = "lower_is_better"
)

// StatusBand is the qualitative tier derived from a score and its target.
type StatusBand string

const (
	BandExcellent StatusBand = "excellent"
	BandGood      StatusBand = "good"
	BandModerate  StatusBand = "moderate"
	BandCritical  StatusBand = "critical"
)

// UrbanIndex is one scored sub-index for a location. Components sum exactly
// to TotalScore; each component stays within its declared point range.
type UrbanIndex struct {
	ID             IndexID            `json:"id"`
	Name           string             `json:"name"`
	Category       NeedCategory       `json:"category"`
	Components     map[string]float64 `json:"components"`
	TotalScore     float64            `json:"total_score"`
	Target         float64            `json:"target"`
	Directionality Directionality     `json:"directionality"`
	Band           StatusBand         `json:"band,omitempty"`
	ProgressPct    float64            `json:"progress_pct,omitempty"`
}

// HealthStatus is the categorical health of a whole snapshot.
type HealthStatus string

const (
	HealthExcellent HealthStatus = "excellent"
	HealthGood      HealthStatus = "good"
	HealthModerate  HealthStatus = "moderate"
	HealthCritical  HealthStatus = "critical"
)

// CityHealthSnapshot aggregates all indices for one location at one timestamp.
type CityHealthSnapshot struct {
	ID           string                 `json:"id"`
	Location     Location               `json:"location"`
	Timestamp    time.Time              `json:"timestamp"`
	Indices      map[IndexID]UrbanIndex `json:"indices"`
	OverallScore float64                `json:"overall_score"`
	HealthStatus HealthStatus           `json:"health_status"`
	DataQuality  SampleQuality          `json:"data_quality"`
}
