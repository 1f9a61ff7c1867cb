package geo

import "errors"

var (
	ErrNameRequired   = errors.New("location name is required")
	ErrLatitudeRange  = errors.New("latitude must be between -90 and 90")
	ErrLongitudeRange = errors.New("longitude must be between -180 and 180")
)

// Location is a named geographic point.
type Location struct {
	Name      string  `json:"name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// NewLocation validates and creates a location.
func NewLocation(name string, lat, lng float64) (Location, error) {
	loc := Location{Name: name, Latitude: lat, Longitude: lng}
	if err := loc.Validate(); err != nil {
		return Location{}, err
	}
	return loc, nil
}

// Validate checks the coordinate ranges and the name.
func (l Location) Validate() error {
	if l.Name == "" {
		return ErrNameRequired
	}
	if l.Latitude < -90 || l.Latitude > 90 {
		return ErrLatitudeRange
	}
	if l.Longitude < -180 || l.Longitude > 180 {
		return ErrLongitudeRange
	}
	return nil
}
