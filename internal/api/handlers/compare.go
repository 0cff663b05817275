package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"bifacial-compare/internal/analysis"
	"bifacial-compare/internal/api/models"
	"bifacial-compare/internal/compare"
	"bifacial-compare/internal/config"
	"bifacial-compare/internal/data"
	"bifacial-compare/internal/log"
	"bifacial-compare/internal/model"
	"bifacial-compare/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	maxWorkers   = 8
	maxScenarios = 200
)

// CompareHandler handles comparison requests
type CompareHandler struct {
	runner  *compare.Runner
	systems *SystemHandler
	// store is optional; without it runs are not archived.
	store *store.Store
}

// NewCompareHandler creates a new compare handler
func NewCompareHandler(runner *compare.Runner, systems *SystemHandler, st *store.Store) *CompareHandler {
	return &CompareHandler{runner: runner, systems: systems, store: st}
}

// RunCompare handles POST /api/v1/compare
func (h *CompareHandler) RunCompare(c *gin.Context) {
	var req models.CompareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error: models.ErrorDetail{
				Code:    "INVALID_REQUEST",
				Message: err.Error(),
			},
		})
		return
	}
	if len(req.Scenarios) > maxScenarios {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error: models.ErrorDetail{
				Code:    "TOO_MANY_SCENARIOS",
				Message: fmt.Sprintf("at most %d scenarios per request", maxScenarios),
				Details: map[string]interface{}{"count": len(req.Scenarios)},
			},
		})
		return
	}

	cfg, err := h.buildConfig(req)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error: models.ErrorDetail{
				Code:    "INVALID_CONFIG",
				Message: err.Error(),
			},
		})
		return
	}

	res, err := h.runner.Run(c.Request.Context(), cfg)
	if err != nil {
		status, detail := compareError(err)
		c.JSON(status, models.ErrorResponse{Error: detail})
		return
	}

	resp := models.CompareResponse{
		ID:        uuid.NewString(),
		Name:      res.Name,
		Mode:      res.Mode,
		CreatedAt: time.Now().UTC(),
		Summary:   res.Table.Summary(),
		Results:   res.Table.Rows,
	}
	if req.Options.IncludeStats {
		for _, o := range res.Outcomes {
			if o.Curves != nil {
				resp.Stats = append(resp.Stats, analysis.ComputeScenarioStats(o.Curves, res.Mode))
			}
		}
	}

	if h.store != nil {
		run := &store.Run{
			ID:        resp.ID,
			Name:      resp.Name,
			Mode:      resp.Mode,
			CreatedAt: resp.CreatedAt,
			Summary:   resp.Summary,
			Results:   resp.Results,
		}
		if err := h.store.SaveRun(c.Request.Context(), run); err != nil {
			log.Errorw("failed to archive run", "id", run.ID, "error", err)
			resp.ID = ""
		}
	} else {
		resp.ID = ""
	}

	c.JSON(http.StatusOK, resp)
}

// GetRun handles GET /api/v1/compare/:id
func (h *CompareHandler) GetRun(c *gin.Context) {
	if !h.requireStore(c) {
		return
	}
	id := c.Param("id")
	run, err := h.store.GetRun(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, models.ErrorResponse{
				Error: models.ErrorDetail{
					Code:    "NOT_FOUND",
					Message: fmt.Sprintf("run %q not found", id),
				},
			})
			return
		}
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error: models.ErrorDetail{
				Code:    "STORE_ERROR",
				Message: err.Error(),
			},
		})
		return
	}
	c.JSON(http.StatusOK, models.CompareResponse{
		ID:        run.ID,
		Name:      run.Name,
		Mode:      run.Mode,
		CreatedAt: run.CreatedAt,
		Summary:   run.Summary,
		Results:   run.Results,
	})
}

// ListRuns handles GET /api/v1/runs
func (h *CompareHandler) ListRuns(c *gin.Context) {
	if !h.requireStore(c) {
		return
	}
	var req models.ListRunsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error: models.ErrorDetail{
				Code:    "INVALID_REQUEST",
				Message: err.Error(),
			},
		})
		return
	}
	if req.Limit <= 0 {
		req.Limit = 20
	}

	runs, err := h.store.ListRuns(c.Request.Context(), req.Limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error: models.ErrorDetail{
				Code:    "STORE_ERROR",
				Message: err.Error(),
			},
		})
		return
	}
	out := make([]models.RunInfo, len(runs))
	for i, r := range runs {
		out[i] = models.RunInfo{ID: r.ID, Name: r.Name, Mode: r.Mode, CreatedAt: r.CreatedAt, Summary: r.Summary}
	}
	c.JSON(http.StatusOK, gin.H{"runs": out, "count": len(out)})
}

func (h *CompareHandler) requireStore(c *gin.Context) bool {
	if h.store != nil {
		return true
	}
	c.JSON(http.StatusServiceUnavailable, models.ErrorResponse{
		Error: models.ErrorDetail{
			Code:    "STORE_DISABLED",
			Message: "run archive is not configured (set RUNS_DB)",
		},
	})
	return false
}

// buildConfig turns a request into a validated inline run config.
func (h *CompareHandler) buildConfig(req models.CompareRequest) (*config.Config, error) {
	cfg := &config.Config{
		Name:     req.Name,
		Mode:     req.Mode,
		Workers:  req.Workers,
		Albedo:   req.Albedo,
		Geometry: model.DefaultGeometry(),
		Source:   config.SourceConfig{Type: config.SourceInline},
	}
	if cfg.Workers > maxWorkers {
		cfg.Workers = maxWorkers
	}
	if req.Window != nil {
		cfg.Window = config.WindowConfig{Start: req.Window.Start, End: req.Window.End, Freq: req.Window.Freq}
	}
	if req.Geometry != nil {
		cfg.Geometry = *req.Geometry
	}
	if s := req.Site; s != nil {
		cfg.Site = &config.SiteConfig{
			Name:      s.Name,
			Latitude:  s.Latitude,
			Longitude: s.Longitude,
			Timezone:  s.Timezone,
			Altitude:  s.Altitude,
		}
	}

	override := config.SystemConfig{
		ModuleID:    req.System.Module,
		InverterID:  req.System.Inverter,
		Bifaciality: req.System.Bifaciality,
		PDC0:        req.System.PDC0,
		GammaPDC:    req.System.GammaPDC,
		TempAir:     req.System.TempAir,
		WindSpeed:   req.System.WindSpeed,
	}
	if req.System.Preset != "" {
		if h.systems == nil {
			return nil, errors.New("system presets are not available")
		}
		base, err := h.systems.Resolve(req.System.Preset)
		if err != nil {
			return nil, fmt.Errorf("system preset: %w", err)
		}
		cfg.System = config.MergeSystem(base, override)
	} else {
		cfg.System = override
	}

	for _, s := range req.Scenarios {
		cfg.Scenarios = append(cfg.Scenarios, config.ScenarioConfig{
			Name:      s.Name,
			Latitude:  s.Latitude,
			Longitude: s.Longitude,
			Timezone:  s.Timezone,
			Altitude:  s.Altitude,
			Albedo:    s.Albedo,
		})
	}

	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// compareError maps a failed run onto an HTTP status and error body.
func compareError(err error) (int, models.ErrorDetail) {
	var mf *data.MissingFieldError
	if errors.As(err, &mf) {
		return http.StatusBadRequest, models.ErrorDetail{
			Code:    "MISSING_FIELD",
			Message: mf.Error(),
			Details: map[string]interface{}{
				"source": mf.Source,
				"sheet":  mf.Sheet,
				"field":  mf.Field,
				"row":    mf.Row,
			},
		}
	}
	var le *data.LibraryError
	if errors.As(err, &le) {
		status := http.StatusBadGateway
		if le.Code == "NOT_FOUND" {
			status = http.StatusBadRequest
		}
		return status, models.ErrorDetail{Code: le.Code, Message: err.Error()}
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return http.StatusRequestTimeout, models.ErrorDetail{Code: "CANCELED", Message: err.Error()}
	}
	var pe *data.ParseError
	if errors.As(err, &pe) {
		return http.StatusBadRequest, models.ErrorDetail{Code: "INVALID_VALUE", Message: err.Error()}
	}
	return http.StatusUnprocessableEntity, models.ErrorDetail{Code: "COMPARE_ERROR", Message: err.Error()}
}
