package models

import (
	"time"

	"bifacial-compare/internal/analysis"
	"bifacial-compare/internal/model"
)

// CompareResponse represents the response from a comparison run
type CompareResponse struct {
	ID        string                   `json:"id,omitempty"`
	Name      string                   `json:"name,omitempty"`
	Mode      model.Mode               `json:"mode"`
	CreatedAt time.Time                `json:"created_at"`
	Summary   analysis.Summary         `json:"summary"`
	Results   []model.RunResult        `json:"results"`
	Stats     []analysis.ScenarioStats `json:"stats,omitempty"`
}

// RunInfo is one entry of the run archive listing.
type RunInfo struct {
	ID        string           `json:"id"`
	Name      string           `json:"name,omitempty"`
	Mode      model.Mode       `json:"mode"`
	CreatedAt time.Time        `json:"created_at"`
	Summary   analysis.Summary `json:"summary"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error information
type ErrorDetail struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// SystemInfo describes a system preset
type SystemInfo struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Module      string   `json:"module"`
	Inverter    string   `json:"inverter"`
	Bifaciality *float64 `json:"bifaciality,omitempty"`
}

// ModeInfo describes a comparison mode and its parameters
type ModeInfo struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Parameters  []ParameterInfo `json:"parameters"`
}

// ParameterInfo describes one request parameter
type ParameterInfo struct {
	Name        string      `json:"name"`
	Type        string      `json:"type"`
	Description string      `json:"description"`
	Default     interface{} `json:"default,omitempty"`
}
