package models

import "bifacial-compare/internal/model"

// CompareRequest is the body of POST /api/v1/compare. It mirrors the YAML run
// config with an inline scenario list.
type CompareRequest struct {
	Name    string     `json:"name,omitempty"`
	Mode    model.Mode `json:"mode" binding:"required,oneof=albedo location"`
	Workers int        `json:"workers,omitempty"`

	Window *WindowRequest `json:"window,omitempty"`

	// Site is required for albedo sweeps.
	Site *SiteRequest `json:"site,omitempty"`
	// Albedo is the fixed albedo of a location sweep (default 0.2).
	Albedo *float64 `json:"albedo,omitempty"`

	// Geometry replaces the default layout when present.
	Geometry *model.Geometry `json:"geometry,omitempty"`
	System   SystemRequest   `json:"system"`

	Scenarios []ScenarioRequest `json:"scenarios" binding:"required,min=1,dive"`
	Options   CompareOptions    `json:"options,omitempty"`
}

// WindowRequest is the simulated time range, e.g. start "2021-06-21", freq "1h".
type WindowRequest struct {
	Start string `json:"start"`
	End   string `json:"end"`
	Freq  string `json:"freq,omitempty"`
}

// SiteRequest is the fixed site of an albedo sweep. Coordinates are pointers so
// a missing one is reported instead of read as 0.
type SiteRequest struct {
	Name      string   `json:"name"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	Timezone  string   `json:"timezone"`
	Altitude  float64  `json:"altitude,omitempty"`
}

// SystemRequest selects the hardware. Preset names a system file; explicit
// fields override it. Omitted fields fall back to the preset, then the run
// defaults; an explicit 0 is kept.
type SystemRequest struct {
	Preset      string   `json:"preset,omitempty"`
	Module      string   `json:"module,omitempty"`
	Inverter    string   `json:"inverter,omitempty"`
	Bifaciality *float64 `json:"bifaciality,omitempty"`
	PDC0        float64  `json:"pdc0,omitempty"`
	GammaPDC    *float64 `json:"gamma_pdc,omitempty"`
	TempAir     *float64 `json:"temp_air,omitempty"`
	WindSpeed   *float64 `json:"wind_speed,omitempty"`
}

// ScenarioRequest is one inline scenario row: a surface and albedo for albedo
// sweeps, a named location for location sweeps.
type ScenarioRequest struct {
	Name      string   `json:"name"`
	Albedo    *float64 `json:"albedo,omitempty"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
	Timezone  string   `json:"timezone,omitempty"`
	Altitude  float64  `json:"altitude,omitempty"`
}

// CompareOptions contains optional response parameters
type CompareOptions struct {
	IncludeStats bool `json:"include_stats,omitempty"` // per-curve statistics, default: false
}

// ListRunsRequest is the query of GET /api/v1/runs.
type ListRunsRequest struct {
	Limit int `form:"limit,omitempty"` // default: 20
}
