// Package provider defines the interface and implementations for external
// environmental data providers.
package provider

import (
	"context"
	"sync"
)

// Field names one signal of an environmental sample.
type Field string

const (
	FieldTemperature        Field = "temperature"
	FieldPrecipitation      Field = "precipitation"
	FieldHumidity           Field = "humidity"
	FieldWindSpeed          Field = "wind_speed"
	FieldAirQuality         Field = "air_quality_score"
	FieldVegetation         Field = "vegetation_fraction"
	FieldSurfaceTemperature Field = "surface_temperature"
	FieldCloudCover         Field = "cloud_cover"
)

// AllFields lists every signal the gateway assembles.
var AllFields = []Field{
	FieldTemperature, FieldPrecipitation, FieldHumidity, FieldWindSpeed,
	FieldAirQuality, FieldVegetation, FieldSurfaceTemperature, FieldCloudCover,
}

// Reading is the normalized partial result from one provider.
type Reading struct {
	Provider string
	Fields   map[Field]float64
}

// Coordinates is the lookup key passed to providers.
type Coordinates struct {
	Latitude  float64
	Longitude float64
}

// Provider abstracts one external environmental data source.
type Provider interface {
	// Name returns the provider identifier used in logs and config.
	Name() string
	// SuppliedFields returns the signals this provider can contribute.
	SuppliedFields() []Field
	// Fetch retrieves current values for the location. A provider returns
	// only the fields it supplies; missing fields are filled elsewhere.
	Fetch(ctx context.Context, loc Coordinates) (Reading, error)
}

// Registry manages the configured providers in precedence order: when two
// providers supply the same field, the earlier registration wins.
type Registry struct {
	mu        sync.RWMutex
	providers []Provider
}

// NewRegistry creates an empty provider registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register appends a provider at the lowest precedence.
func (r *Registry) Register(p Provider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers = append(r.providers, p)
}

// All returns the providers in precedence order.
func (r *Registry) All() []Provider {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Provider, len(r.providers))
	copy(out, r.providers)
	return out
}

// Len returns the number of registered providers.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.providers)
}
