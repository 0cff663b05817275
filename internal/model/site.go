package model

import (
	"errors"
	"fmt"
	"time"
)

// Site is a geographic location a scenario is simulated at.
// Units:
// - Latitude/Longitude: decimal degrees, east and north positive
// - Altitude: meters above sea level
type Site struct {
	Name      string  `json:"name" yaml:"name"`
	Latitude  float64 `json:"latitude" yaml:"latitude"`
	Longitude float64 `json:"longitude" yaml:"longitude"`
	Timezone  string  `json:"timezone" yaml:"timezone"`
	Altitude  float64 `json:"altitude,omitempty" yaml:"altitude"`
}

func (s Site) Validate() error {
	if s.Latitude < -90 || s.Latitude > 90 {
		return fmt.Errorf("latitude %.4f out of range [-90, 90]", s.Latitude)
	}
	if s.Longitude < -180 || s.Longitude > 180 {
		return fmt.Errorf("longitude %.4f out of range [-180, 180]", s.Longitude)
	}
	if s.Timezone == "" {
		return errors.New("timezone is required")
	}
	return nil
}

// Location resolves the site's IANA timezone.
func (s Site) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		return nil, fmt.Errorf("site %q: %w", s.Name, err)
	}
	return loc, nil
}
