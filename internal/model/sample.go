package model

import "time"

// SampleQuality tags how much of an EnvironmentalSample came from live providers.
type SampleQuality string

const (
	QualityMeasured  SampleQuality = "measured"  // every field from a live provider
	QualityEstimated SampleQuality = "estimated" // at least one field substituted
	QualitySynthetic SampleQuality = "synthetic" // every field substituted
)

// EnvironmentalSample holds normalized physical signals for one Location at
// one point in time. Created by the gateway and never mutated afterward.
type EnvironmentalSample struct {
	Location           Location      `json:"location"`
	Temperature        float64       `json:"temperature"`         // °C
	Precipitation      float64       `json:"precipitation"`       // mm
	Humidity           float64       `json:"humidity"`            // %
	WindSpeed          float64       `json:"wind_speed"`          // m/s
	AirQualityScore    float64       `json:"air_quality_score"`   // 0–100, higher is cleaner
	VegetationFraction float64       `json:"vegetation_fraction"` // 0–1
	SurfaceTemperature float64       `json:"surface_temperature"` // °C
	CloudCover         float64       `json:"cloud_cover"`         // %
	Timestamp          time.Time     `json:"timestamp"`
	Quality            SampleQuality `json:"quality"`
}
