package model

import (
	"errors"
	"fmt"
	"strconv"
)

// Geometry describes a single-axis tracker row layout.
// Units:
// - AxisTilt, AxisAzimuth, MaxAngle: degrees
// - GCR: ratio 0..1 (row width / pitch)
// - PVRowHeight, PVRowWidth: meters
type Geometry struct {
	AxisTilt    float64 `json:"axis_tilt" yaml:"axis_tilt"`
	AxisAzimuth float64 `json:"axis_azimuth" yaml:"axis_azimuth"`
	MaxAngle    float64 `json:"max_angle" yaml:"max_angle"`
	GCR         float64 `json:"gcr" yaml:"gcr"`
	PVRowHeight float64 `json:"pvrow_height" yaml:"pvrow_height"`
	PVRowWidth  float64 `json:"pvrow_width" yaml:"pvrow_width"`
	Backtrack   bool    `json:"backtrack" yaml:"backtrack"`
}

// DefaultGeometry is the layout shared by every scenario unless overridden.
func DefaultGeometry() Geometry {
	return Geometry{
		AxisTilt:    0,
		AxisAzimuth: 180,
		MaxAngle:    60,
		GCR:         0.35,
		PVRowHeight: 3,
		PVRowWidth:  4,
		Backtrack:   true,
	}
}

func (g Geometry) Validate() error {
	if g.GCR <= 0 || g.GCR > 1 {
		return errors.New("gcr must be in (0, 1]")
	}
	if g.MaxAngle <= 0 || g.MaxAngle > 90 {
		return errors.New("max_angle must be in (0, 90]")
	}
	if g.PVRowHeight <= 0 || g.PVRowWidth <= 0 {
		return errors.New("pvrow_height and pvrow_width must be > 0")
	}
	return nil
}

// Scenario is one row of input: where, over what ground, with which hardware.
// It is immutable once loaded.
type Scenario struct {
	Index      int      `json:"index"`
	Name       string   `json:"name"`
	Site       Site     `json:"site"`
	Albedo     float64  `json:"albedo"`
	Geometry   Geometry `json:"geometry"`
	ModuleID   string   `json:"module_id"`
	InverterID string   `json:"inverter_id"`
}

func (s Scenario) Validate() error {
	if err := s.Site.Validate(); err != nil {
		return fmt.Errorf("scenario %q: %w", s.Name, err)
	}
	if s.Albedo < 0 || s.Albedo > 1 {
		return fmt.Errorf("scenario %q: albedo %.3f out of range [0, 1]", s.Name, s.Albedo)
	}
	if err := s.Geometry.Validate(); err != nil {
		return fmt.Errorf("scenario %q: %w", s.Name, err)
	}
	if s.ModuleID == "" || s.InverterID == "" {
		return fmt.Errorf("scenario %q: module and inverter identifiers are required", s.Name)
	}
	return nil
}

// Label is the identifier written in the result table's first column.
func (s Scenario) Label(mode Mode) string {
	switch mode {
	case ModeAlbedo:
		return strconv.FormatFloat(s.Albedo, 'f', -1, 64)
	default:
		if s.Site.Name != "" {
			return s.Site.Name
		}
		return s.Name
	}
}

// Title is the panel title used in figures.
func (s Scenario) Title(mode Mode) string {
	if mode == ModeAlbedo {
		return fmt.Sprintf("%s: %s", s.Name, s.Label(mode))
	}
	return s.Label(mode)
}

// Mode selects which scenario parameter varies across a run.
type Mode string

const (
	ModeAlbedo   Mode = "albedo"
	ModeLocation Mode = "location"
)

// KeyHeader is the result table's identifier column name.
func (m Mode) KeyHeader() string {
	if m == ModeAlbedo {
		return "Albedo"
	}
	return "Site Location"
}

// ResultSheet is the sheet name results are exported under.
func (m Mode) ResultSheet() string {
	return string(m) + "_results"
}
