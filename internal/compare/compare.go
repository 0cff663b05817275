// Package compare runs one bifacial/monofacial comparison end to end: load the
// scenarios, simulate them, aggregate the peaks and write the reports.
package compare

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"bifacial-compare/internal/analysis"
	"bifacial-compare/internal/config"
	"bifacial-compare/internal/data"
	"bifacial-compare/internal/log"
	"bifacial-compare/internal/model"
	"bifacial-compare/internal/pvmodel"
	"bifacial-compare/internal/report"
	"bifacial-compare/internal/simulate"
	"bifacial-compare/internal/store"
)

// Result is a finished comparison.
type Result struct {
	Name     string
	Mode     model.Mode
	Input    *data.Table
	Outcomes []simulate.Outcome
	Table    *analysis.Table
}

// Runner holds what several runs can share.
type Runner struct {
	Library *data.Library
	// Backend replaces the built-in physics when set.
	Backend simulate.Backend
	// Cache is shared across runs when set; otherwise each run gets its own.
	Cache *data.SiteCache
}

func NewRunner(lib *data.Library) *Runner {
	if lib == nil {
		lib = data.BuiltinLibrary()
	}
	return &Runner{Library: lib}
}

// BackendParams maps the system section onto the physics constants. Unset
// fields keep the backend defaults.
func BackendParams(sys config.SystemConfig) pvmodel.Params {
	p := pvmodel.DefaultParams()
	if sys.TempAir != nil {
		p.TempAir = *sys.TempAir
	}
	if sys.WindSpeed != nil {
		p.WindSpeed = *sys.WindSpeed
	}
	if sys.PDC0 > 0 {
		p.PDC0 = sys.PDC0
	}
	if sys.GammaPDC != nil {
		p.GammaPDC = *sys.GammaPDC
	}
	return p
}

// Run executes the comparison described by cfg. Per-scenario failures end up as
// sentinel rows; the returned error covers problems that stop the whole run.
func (r *Runner) Run(ctx context.Context, cfg *config.Config) (*Result, error) {
	src, err := data.LoadScenarios(cfg)
	if err != nil {
		return nil, err
	}
	if _, err := r.Library.Module(cfg.System.ModuleID); err != nil {
		return nil, fmt.Errorf("system.module: %w", err)
	}
	if _, err := r.Library.Inverter(cfg.System.InverterID); err != nil {
		return nil, fmt.Errorf("system.inverter: %w", err)
	}
	window, err := cfg.ModelWindow()
	if err != nil {
		return nil, err
	}

	backend := r.Backend
	if backend == nil {
		backend = pvmodel.New(r.Library, BackendParams(cfg.System))
	}
	cache := r.Cache
	if cache == nil {
		cache = data.NewSiteCache()
	}
	engine := simulate.New(backend, simulate.Options{
		Window:      window,
		Bifaciality: cfg.System.BifacialityValue(),
		Workers:     cfg.Workers,
		Cache:       cache,
	})

	log.Infow("starting comparison",
		"name", cfg.Name,
		"mode", cfg.Mode,
		"scenarios", len(src.Scenarios),
		"workers", cfg.Workers,
		"module", cfg.System.ModuleID,
		"inverter", cfg.System.InverterID,
	)
	outcomes, err := engine.Run(ctx, src.Scenarios)
	if err != nil {
		return nil, err
	}
	hits, misses := cache.Stats()
	log.Debugw("site cache", "hits", hits, "misses", misses)

	return &Result{
		Name:     cfg.Name,
		Mode:     cfg.Mode,
		Input:    src.Input,
		Outcomes: outcomes,
		Table:    analysis.Aggregate(cfg.Mode, outcomes),
	}, nil
}

// WriteOutputs writes the workbook, the optional CSV and the figures under
// out.Dir and returns the paths written.
func WriteOutputs(res *Result, out config.OutputConfig) ([]string, error) {
	if err := os.MkdirAll(out.Dir, 0o755); err != nil {
		return nil, err
	}
	var written []string

	if out.XLSX != "" {
		p := filepath.Join(out.Dir, out.XLSX)
		if err := report.WriteResultsXLSX(p, res.Table); err != nil {
			return written, fmt.Errorf("write workbook: %w", err)
		}
		written = append(written, p)
	}
	if out.CSV != "" {
		p := filepath.Join(out.Dir, out.CSV)
		if err := report.WriteResultsCSV(p, res.Table); err != nil {
			return written, fmt.Errorf("write csv: %w", err)
		}
		written = append(written, p)
	}
	if out.FiguresEnabled() {
		panels := report.PanelsFromOutcomes(res.Mode, res.Outcomes)
		for _, kind := range []report.Kind{report.KindAC, report.KindDC} {
			p := filepath.Join(out.Dir, kind.FigureName())
			if err := report.RenderFigure(p, kind, panels, out.RowsPerColumn); err != nil {
				return written, fmt.Errorf("render %s: %w", kind.FigureName(), err)
			}
			written = append(written, p)
		}
	}
	return written, nil
}

// Archive stores the result in the SQLite run archive at dbPath.
func Archive(ctx context.Context, dbPath string, res *Result) (*store.Run, error) {
	s, err := store.Open(dbPath)
	if err != nil {
		return nil, err
	}
	defer s.Close()

	run := store.NewRun(res.Name, res.Table)
	if err := s.SaveRun(ctx, run); err != nil {
		return nil, err
	}
	log.Infow("archived run", "id", run.ID, "db", dbPath)
	return run, nil
}
