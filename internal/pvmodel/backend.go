package pvmodel

import (
	"fmt"
	"time"

	"bifacial-compare/internal/model"
)

// Catalog resolves module and inverter datasheets by identifier.
type Catalog interface {
	Module(id string) (model.Module, error)
	Inverter(id string) (model.Inverter, error)
}

// Params are the run-wide model constants.
type Params struct {
	// AC chain cell temperature inputs.
	ChainTempAir   float64
	ChainWindSpeed float64
	// Standalone DC comparison.
	TempAir   float64
	WindSpeed float64
	PDC0      float64
	GammaPDC  float64

	LinkeTurbidity float64
}

// DefaultParams mirrors the defaults of a run config.
func DefaultParams() Params {
	return Params{
		ChainTempAir:   20,
		ChainWindSpeed: 0,
		TempAir:        25,
		WindSpeed:      1,
		PDC0:           320,
		GammaPDC:       -0.0043,
		LinkeTurbidity: DefaultLinkeTurbidity,
	}
}

// Backend is the built-in physics engine.
type Backend struct {
	Catalog Catalog
	Params  Params
}

func New(catalog Catalog, p Params) *Backend {
	return &Backend{Catalog: catalog, Params: p}
}

func (b *Backend) SolarPosition(times []time.Time, site model.Site) (*model.SolarPosition, error) {
	return SolarPosition(times, site)
}

func (b *Backend) ClearSky(times []time.Time, site model.Site, pos *model.SolarPosition) (*model.ClearSky, error) {
	return IneichenPerez(times, site, pos, b.Params.LinkeTurbidity)
}

func (b *Backend) Orientation(pos *model.SolarPosition, g model.Geometry) (*model.Orientation, error) {
	return SingleAxis(pos, g)
}

func (b *Backend) TransposeIrradiance(in model.TransposeInput) (*model.IrradianceFrame, error) {
	return Transpose(in)
}

// RunModelChain converts effective irradiance to DC and AC power with the named
// module and inverter. The AOI model is validated and recorded; effective
// irradiance already carries reflection losses, so it is not applied again.
func (b *Backend) RunModelChain(in model.ModelChainInput) (*model.ModelChainResult, error) {
	switch in.AOIModel {
	case model.AOINoLoss, model.AOIPhysical:
	default:
		return nil, fmt.Errorf("model chain: unsupported aoi model %q", in.AOIModel)
	}
	if b.Catalog == nil {
		return nil, fmt.Errorf("model chain: no equipment catalog")
	}
	mod, err := b.Catalog.Module(in.ModuleID)
	if err != nil {
		return nil, fmt.Errorf("model chain: %w", err)
	}
	inv, err := b.Catalog.Inverter(in.InverterID)
	if err != nil {
		return nil, fmt.Errorf("model chain: %w", err)
	}

	tc := SAPMCellTemperature(in.Effective, b.Params.ChainTempAir, b.Params.ChainWindSpeed)
	dc, err := PVWattsDC(in.Effective, tc, mod.PDC0, mod.GammaPDC)
	if err != nil {
		return nil, err
	}
	ac, err := PVWattsInverter(dc, inv.Pdco, inv.EtaNom())
	if err != nil {
		return nil, fmt.Errorf("model chain: inverter %s: %w", inv.Name, err)
	}
	return &model.ModelChainResult{AOIModel: in.AOIModel, CellTemp: tc, DC: dc, AC: ac}, nil
}

func (b *Backend) CellTemperature(effective []float64) ([]float64, error) {
	return FaimanCellTemperature(effective, b.Params.TempAir, b.Params.WindSpeed), nil
}

func (b *Backend) DCPower(effective, tempCell []float64) ([]float64, error) {
	return PVWattsDC(effective, tempCell, b.Params.PDC0, b.Params.GammaPDC)
}
