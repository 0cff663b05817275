package simulate

import (
	"context"
	"errors"
	"math"
	"time"

	"bifacial-compare/internal/data"
	"bifacial-compare/internal/log"
	"bifacial-compare/internal/model"

	"golang.org/x/sync/errgroup"
)

// Options are the run-wide settings shared by every scenario.
type Options struct {
	Window      model.Window
	Bifaciality float64
	// Workers bounds concurrent scenarios; values below 1 run sequentially.
	Workers int
	// Cache shares solar position and clear sky between scenarios at one site. Optional.
	Cache *data.SiteCache
}

type Engine struct {
	backend Backend
	opts    Options
}

// New returns an engine driving backend. It panics if backend is nil.
func New(backend Backend, opts Options) *Engine {
	if backend == nil {
		panic("simulate: nil backend")
	}
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	return &Engine{backend: backend, opts: opts}
}

// Outcome is the result of one scenario: curves, or the error that stopped it.
type Outcome struct {
	Scenario model.Scenario
	Curves   *model.RunCurves
	Err      error
}

// RunScenario simulates one scenario and returns its bifacial and monofacial curves.
func (e *Engine) RunScenario(ctx context.Context, sc model.Scenario) (*model.RunCurves, error) {
	fail := func(stage string, err error) error {
		return &ExternalModelError{Scenario: sc.Name, Stage: stage, Err: err}
	}

	loc, err := sc.Site.Location()
	if err != nil {
		return nil, fail(StageTimestamps, err)
	}
	times, err := e.opts.Window.Times(loc)
	if err != nil {
		return nil, fail(StageTimestamps, err)
	}

	sky, err := e.opts.Cache.Get(sc.Site, e.opts.Window, func() (*data.SiteSky, error) {
		pos, err := e.backend.SolarPosition(times, sc.Site)
		if err != nil {
			return nil, fail(StageSolarPosition, err)
		}
		cs, err := e.backend.ClearSky(times, sc.Site, pos)
		if err != nil {
			return nil, fail(StageClearSky, err)
		}
		return &data.SiteSky{Position: pos, ClearSky: cs}, nil
	})
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	orient, err := e.backend.Orientation(sky.Position, sc.Geometry)
	if err != nil {
		return nil, fail(StageOrientation, err)
	}

	frame, err := e.backend.TransposeIrradiance(model.TransposeInput{
		Position:    sky.Position,
		Orientation: orient,
		ClearSky:    sky.ClearSky,
		Geometry:    sc.Geometry,
		Albedo:      sc.Albedo,
		Times:       times,
	})
	if err != nil {
		return nil, fail(StageTransposition, err)
	}
	if err := frame.CheckLen(len(times)); err != nil {
		return nil, fail(StageTransposition, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// bifacial
	bifEff := frame.BifacialEffective(e.opts.Bifaciality)
	bifChain, err := e.backend.RunModelChain(model.ModelChainInput{
		Times:      times,
		Effective:  bifEff,
		AOIModel:   model.AOIModelFor(model.VariantBifacial),
		ModuleID:   sc.ModuleID,
		InverterID: sc.InverterID,
	})
	if err == nil {
		err = chainLen(bifChain, len(times))
	}
	if err != nil {
		return nil, fail(StageChainBifacial, err)
	}
	tempCell, err := e.backend.CellTemperature(bifEff)
	if err == nil {
		err = model.CheckSeries(len(times), map[string][]float64{"temp_cell": tempCell})
	}
	if err != nil {
		return nil, fail(StageCellTemperature, err)
	}
	bifDC, err := e.backend.DCPower(bifEff, tempCell)
	if err == nil {
		err = model.CheckSeries(len(times), map[string][]float64{"dc": bifDC})
	}
	if err != nil {
		return nil, fail(StageDCBifacial, err)
	}

	// monofacial: front only, same cell temperature
	monoEff := frame.FrontEffective()
	monoChain, err := e.backend.RunModelChain(model.ModelChainInput{
		Times:      times,
		Effective:  monoEff,
		AOIModel:   model.AOIModelFor(model.VariantMonofacial),
		ModuleID:   sc.ModuleID,
		InverterID: sc.InverterID,
	})
	if err == nil {
		err = chainLen(monoChain, len(times))
	}
	if err != nil {
		return nil, fail(StageChainMonofacial, err)
	}
	monoDC, err := e.backend.DCPower(monoEff, tempCell)
	if err == nil {
		err = model.CheckSeries(len(times), map[string][]float64{"dc": monoDC})
	}
	if err != nil {
		return nil, fail(StageDCMonofacial, err)
	}

	return &model.RunCurves{
		Scenario:            sc,
		Times:               times,
		BifacialAC:          bifChain.AC,
		MonofacialAC:        monoChain.AC,
		BifacialDC:          zeroFill(bifDC),
		MonofacialDC:        zeroFill(monoDC),
		BifacialEffective:   bifEff,
		MonofacialEffective: monoEff,
	}, nil
}

// Run simulates every scenario. A failing scenario is logged and reported in
// its Outcome; the batch continues. Outcomes are in scenario order. The
// returned error is non-nil only when ctx ends before the batch completes.
func (e *Engine) Run(ctx context.Context, scenarios []model.Scenario) ([]Outcome, error) {
	outcomes := make([]Outcome, len(scenarios))
	for i, sc := range scenarios {
		outcomes[i].Scenario = sc
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.opts.Workers)

	start := time.Now()
	for i := range scenarios {
		if gctx.Err() != nil {
			break
		}
		i := i
		g.Go(func() error {
			sc := scenarios[i]
			if err := gctx.Err(); err != nil {
				outcomes[i].Err = err
				return err
			}
			log.Infow("simulating scenario", "scenario", sc.Name, "index", sc.Index, "albedo", sc.Albedo, "site", sc.Site.Name)

			curves, err := e.RunScenario(gctx, sc)
			if err != nil {
				outcomes[i].Err = err
				var ext *ExternalModelError
				if errors.As(err, &ext) {
					log.Errorw("scenario failed", "scenario", sc.Name, "stage", ext.Stage, "error", ext.Err)
					return nil
				}
				return err
			}
			outcomes[i].Curves = curves
			return nil
		})
	}

	err := g.Wait()
	if ctx.Err() != nil {
		err = ctx.Err()
	}
	if err != nil {
		for i := range outcomes {
			if outcomes[i].Curves == nil && outcomes[i].Err == nil {
				outcomes[i].Err = err
			}
		}
		return outcomes, err
	}

	log.Infow("batch complete", "scenarios", len(scenarios), "workers", e.opts.Workers, "duration", time.Since(start))
	return outcomes, nil
}

func chainLen(r *model.ModelChainResult, n int) error {
	if r == nil {
		return errors.New("no model chain result")
	}
	return model.CheckSeries(n, map[string][]float64{"ac": r.AC})
}

// zeroFill replaces NaN with 0 in place.
func zeroFill(v []float64) []float64 {
	for i, x := range v {
		if math.IsNaN(x) {
			v[i] = 0
		}
	}
	return v
}
