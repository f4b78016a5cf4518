package model

import (
	"github.com/rotisserie/eris"
)

// Location identifies the geographic subject of a pipeline run.
// It is a value type; nothing downstream mutates it.
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Name      string  `json:"name,omitempty"` // optional human label (e.g. geocoded city)
}

// ErrInvalidLocation is returned when coordinates are out of range.
var ErrInvalidLocation = eris.New("model: invalid location")

// Validate checks that the coordinates are within range. This is the only
// caller-facing failure in the scoring pipeline; everything past this point
// degrades instead of erroring.
func (l Location) Validate() error {
	if l.Latitude < -90 || l.Latitude > 90 {
		return eris.Wrapf(ErrInvalidLocation, "latitude %.4f out of range [-90,90]", l.Latitude)
	}
	if l.Longitude < -180 || l.Longitude > 180 {
		return eris.Wrapf(ErrInvalidLocation, "longitude %.4f out of range [-180,180]", l.Longitude)
	}
	return nil
}
