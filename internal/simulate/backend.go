package simulate

import (
	"fmt"
	"time"

	"bifacial-compare/internal/model"
)

// Backend is the physics the engine drives. pvmodel.Backend is the built-in
// implementation; tests substitute fakes.
type Backend interface {
	SolarPosition(times []time.Time, site model.Site) (*model.SolarPosition, error)
	ClearSky(times []time.Time, site model.Site, pos *model.SolarPosition) (*model.ClearSky, error)
	Orientation(pos *model.SolarPosition, g model.Geometry) (*model.Orientation, error)
	TransposeIrradiance(in model.TransposeInput) (*model.IrradianceFrame, error)
	RunModelChain(in model.ModelChainInput) (*model.ModelChainResult, error)
	CellTemperature(effective []float64) ([]float64, error)
	DCPower(effective, tempCell []float64) ([]float64, error)
}

// Stages of a scenario run, used to tag backend failures.
const (
	StageTimestamps      = "timestamps"
	StageSolarPosition   = "solar_position"
	StageClearSky        = "clear_sky"
	StageOrientation     = "orientation"
	StageTransposition   = "transposition"
	StageChainBifacial   = "model_chain_bifacial"
	StageChainMonofacial = "model_chain_monofacial"
	StageCellTemperature = "cell_temperature"
	StageDCBifacial      = "dc_bifacial"
	StageDCMonofacial    = "dc_monofacial"
)

// ExternalModelError wraps a failure raised by the backend for one scenario.
type ExternalModelError struct {
	Scenario string
	Stage    string
	Err      error
}

func (e *ExternalModelError) Error() string {
	return fmt.Sprintf("scenario %q: %s: %v", e.Scenario, e.Stage, e.Err)
}

func (e *ExternalModelError) Unwrap() error {
	return e.Err
}
