package model

// ComponentDef declares one named sub-score and its point ceiling.
type ComponentDef struct {
	Name      string
	MaxPoints float64
}

// IndexDefinition is the fixed declaration of one index: identity, category,
// target, directionality and component schema. The table below is the single
// source of truth; nothing else in the engine hard-codes targets or
// directionality.
type IndexDefinition struct {
	ID             IndexID
	Name           string
	Category       NeedCategory
	Target         float64
	Directionality Directionality
	Components     []ComponentDef
}

// MaxTotal returns the sum of the component point ceilings.
func (d IndexDefinition) MaxTotal() float64 {
	var sum float64
	for _, c := range d.Components {
		sum += c.MaxPoints
	}
	return sum
}

// indexDefinitions is keyed by IndexID. Targets for higher-is-better indices
// are "healthy city" floors; for uhvi and aqhi the target is a ceiling.
var indexDefinitions = map[IndexID]IndexDefinition{
	IndexCRI: {
		ID: IndexCRI, Name: "Climate Resilience Index", Category: CategoryEnergy,
		Target: 85, Directionality: HigherIsBetter,
		Components: []ComponentDef{
			{"Thermal Comfort", 25},
			{"Air Quality Buffer", 25},
			{"Water Balance", 25},
			{"Storm Exposure", 25},
		},
	},
	IndexUHVI: {
		ID: IndexUHVI, Name: "Urban Heat Vulnerability Index", Category: CategoryHousing,
		Target: 30, Directionality: LowerIsBetter,
		Components: []ComponentDef{
			{"Land Surface Temperature", 25},
			{"Vegetation Deficit", 10},
			{"Heat Retention", 10},
			{"Humidity Stress", 5},
		},
	},
	IndexAQHI: {
		ID: IndexAQHI, Name: "Air Quality Health Impact", Category: CategoryPollution,
		Target: 4, Directionality: LowerIsBetter,
		Components: []ComponentDef{
			{"Particulate Exposure", 2.5},
			{"Ozone Risk", 2.5},
			{"Traffic Emissions", 2.5},
			{"Sensitive Group Burden", 2.5},
		},
	},
	IndexWSI: {
		ID: IndexWSI, Name: "Water Security Index", Category: CategoryFoodAccess,
		Target: 80, Directionality: HigherIsBetter,
		Components: []ComponentDef{
			{"Rainfall Adequacy", 30},
			{"Humidity Reserve", 25},
			{"Runoff Capture", 25},
			{"Drought Buffer", 20},
		},
	},
	IndexGEA: {
		ID: IndexGEA, Name: "Green Equity Assessment", Category: CategoryParks,
		Target: 75, Directionality: HigherIsBetter,
		Components: []ComponentDef{
			{"Canopy Cover", 30},
			{"Park Proximity", 25},
			{"Green Corridors", 25},
			{"Equity Distribution", 20},
		},
	},
	IndexSCM: {
		ID: IndexSCM, Name: "Social Cohesion Metric", Category: CategoryGrowth,
		Target: 70, Directionality: HigherIsBetter,
		Components: []ComponentDef{
			{"Public Space Vitality", 30},
			{"Outdoor Comfort", 30},
			{"Neighborhood Green", 20},
			{"Air Livability", 20},
		},
	},
	IndexEJT: {
		ID: IndexEJT, Name: "Environmental Justice Tracker", Category: CategoryPollution,
		Target: 75, Directionality: HigherIsBetter,
		Components: []ComponentDef{
			{"Pollution Burden Equity", 30},
			{"Green Access Equity", 30},
			{"Heat Burden Equity", 20},
			{"Exposure Disparity", 20},
		},
	},
	IndexTAS: {
		ID: IndexTAS, Name: "Transportation Access Score", Category: CategoryTransportation,
		Target: 80, Directionality: HigherIsBetter,
		Components: []ComponentDef{
			{"Transit Reach", 30},
			{"Active Mobility", 30},
			{"All-Weather Access", 20},
			{"Street Network", 20},
		},
	},
	IndexDPI: {
		ID: IndexDPI, Name: "Disaster Preparedness Index", Category: CategoryHealthcare,
		Target: 85, Directionality: HigherIsBetter,
		Components: []ComponentDef{
			{"Flood Readiness", 30},
			{"Storm Readiness", 30},
			{"Heat Emergency Capacity", 20},
			{"Response Infrastructure", 20},
		},
	},
	IndexHWI: {
		ID: IndexHWI, Name: "Human Well-being Index", Category: CategoryHealthcare,
		Target: 80, Directionality: HigherIsBetter,
		Components: []ComponentDef{
			{"Health Foundations", 25},
			{"Environmental Quality", 25},
			{"Livability", 25},
			{"Resilience", 25},
		},
	},
}

// LookupIndex returns the definition for id. The second return is false for
// identifiers outside the closed set.
func LookupIndex(id IndexID) (IndexDefinition, bool) {
	def, ok := indexDefinitions[id]
	return def, ok
}
