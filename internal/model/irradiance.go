package model

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"gonum.org/v1/gonum/floats"
)

// SolarPosition holds per-timestamp sun angles in degrees.
// Azimuth is measured clockwise from north.
type SolarPosition struct {
	ApparentZenith []float64
	Zenith         []float64
	Azimuth        []float64
	Elevation      []float64
}

// ClearSky holds clear-sky irradiance components in W/m².
type ClearSky struct {
	GHI []float64
	DNI []float64
	DHI []float64
}

// Orientation is the tracker state per timestamp, in degrees. NaN when the sun is down.
type Orientation struct {
	TrackerTheta   []float64
	SurfaceTilt    []float64
	SurfaceAzimuth []float64
	AOI            []float64
}

// TransposeInput is everything the front/back irradiance model needs for one scenario.
type TransposeInput struct {
	Position    *SolarPosition
	Orientation *Orientation
	ClearSky    *ClearSky
	Geometry    Geometry
	Albedo      float64
	Times       []time.Time
}

// IrradianceFrame is the per-timestamp plane-of-array irradiance (W/m²) of the
// observed row. "Inc" values are incident; "Abs" values are after reflection losses.
type IrradianceFrame struct {
	Times         []time.Time
	TotalIncFront []float64
	TotalIncBack  []float64
	TotalAbsFront []float64
	TotalAbsBack  []float64
}

// Len is the number of timestamps in the frame.
func (f *IrradianceFrame) Len() int {
	return len(f.TotalAbsFront)
}

// CheckLen reports an error unless every series in the frame has n values.
// Times may be left nil.
func (f *IrradianceFrame) CheckLen(n int) error {
	if f == nil {
		return errors.New("no irradiance frame")
	}
	if f.Times != nil && len(f.Times) != n {
		return fmt.Errorf("times: got %d values for %d timestamps", len(f.Times), n)
	}
	return CheckSeries(n, map[string][]float64{
		"total_inc_front": f.TotalIncFront,
		"total_inc_back":  f.TotalIncBack,
		"total_abs_front": f.TotalAbsFront,
		"total_abs_back":  f.TotalAbsBack,
	})
}

// CheckLen reports an error unless every angle series has n values.
func (p *SolarPosition) CheckLen(n int) error {
	if p == nil {
		return errors.New("no solar position")
	}
	return CheckSeries(n, map[string][]float64{
		"apparent_zenith": p.ApparentZenith,
		"zenith":          p.Zenith,
		"azimuth":         p.Azimuth,
		"elevation":       p.Elevation,
	})
}

// CheckLen reports an error unless every irradiance component has n values.
func (c *ClearSky) CheckLen(n int) error {
	if c == nil {
		return errors.New("no clear sky")
	}
	return CheckSeries(n, map[string][]float64{"ghi": c.GHI, "dni": c.DNI, "dhi": c.DHI})
}

// CheckLen reports an error unless every tracker series has n values.
func (o *Orientation) CheckLen(n int) error {
	if o == nil {
		return errors.New("no orientation")
	}
	return CheckSeries(n, map[string][]float64{
		"tracker_theta":   o.TrackerTheta,
		"surface_tilt":    o.SurfaceTilt,
		"surface_azimuth": o.SurfaceAzimuth,
		"aoi":             o.AOI,
	})
}

// CheckSeries reports the first named series, in name order, whose length is not n.
func CheckSeries(n int, series map[string][]float64) error {
	names := make([]string, 0, len(series))
	for name := range series {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if got := len(series[name]); got != n {
			return fmt.Errorf("%s: got %d values for %d timestamps", name, got, n)
		}
	}
	return nil
}

// BifacialEffective returns front + back × bifaciality.
func (f *IrradianceFrame) BifacialEffective(bifaciality float64) []float64 {
	out := make([]float64, len(f.TotalAbsFront))
	floats.AddScaledTo(out, f.TotalAbsFront, bifaciality, f.TotalAbsBack)
	return out
}

// FrontEffective returns a copy of the absorbed front irradiance.
func (f *IrradianceFrame) FrontEffective() []float64 {
	out := make([]float64, len(f.TotalAbsFront))
	copy(out, f.TotalAbsFront)
	return out
}

// ModelChainInput drives one energy-conversion run from effective irradiance.
type ModelChainInput struct {
	Times      []time.Time
	Effective  []float64
	AOIModel   AOIModel
	ModuleID   string
	InverterID string
}

// ModelChainResult is the output of one energy-conversion run.
type ModelChainResult struct {
	AOIModel AOIModel
	CellTemp []float64
	DC       []float64
	AC       []float64
}
