package compare

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"bifacial-compare/internal/config"
	"bifacial-compare/internal/data"
	"bifacial-compare/internal/model"
	"bifacial-compare/internal/pvmodel"
	"bifacial-compare/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func f64(v float64) *float64 { return &v }

func greensboroSweep(t *testing.T, albedos ...float64) *config.Config {
	t.Helper()
	cfg := &config.Config{
		Name:     "greensboro",
		Mode:     model.ModeAlbedo,
		Workers:  2,
		Geometry: model.DefaultGeometry(),
		Site: &config.SiteConfig{
			Name:      "Greensboro",
			Latitude:  f64(36.0726),
			Longitude: f64(-79.792),
			Timezone:  "Etc/GMT+5",
		},
		System: config.SystemConfig{
			ModuleID:   "Zytech_Solar_ZT320P",
			InverterID: "iPower__SHO_5_2__240V_",
		},
	}
	for _, a := range albedos {
		cfg.Scenarios = append(cfg.Scenarios, config.ScenarioConfig{Name: "surface", Albedo: f64(a)})
	}
	cfg.ApplyDefaults()
	require.NoError(t, cfg.Validate())
	return cfg
}

func TestRunAlbedoSweep(t *testing.T) {
	cfg := greensboroSweep(t, 0.1, 0.25, 0.6)
	res, err := NewRunner(nil).Run(context.Background(), cfg)
	require.NoError(t, err)

	require.Equal(t, 3, res.Table.Len())
	require.Len(t, res.Outcomes, 3)
	assert.NotNil(t, res.Input)

	prevDC := 0.0
	for _, r := range res.Table.Rows {
		assert.Equal(t, model.StatusOK, r.Status, r.Error)
		assert.Greater(t, r.MonofacialPeakAC, 0.0)
		assert.GreaterOrEqual(t, r.BifacialPeakAC, r.MonofacialPeakAC)
		assert.GreaterOrEqual(t, r.PercentDiffAC, 0.0)
		assert.GreaterOrEqual(t, r.PercentDiffDC, 0.0)
		assert.Greater(t, r.BifacialPeakDC, prevDC)
		prevDC = r.BifacialPeakDC
	}
}

func TestRunUnknownModule(t *testing.T) {
	cfg := greensboroSweep(t, 0.2)
	cfg.System.ModuleID = "No_Such_Module"

	_, err := NewRunner(nil).Run(context.Background(), cfg)
	require.Error(t, err)
	assert.True(t, data.IsNotFound(err))
}

func TestRunMissingSite(t *testing.T) {
	cfg := greensboroSweep(t, 0.2)
	cfg.Site = nil

	_, err := NewRunner(nil).Run(context.Background(), cfg)
	var mf *data.MissingFieldError
	require.ErrorAs(t, err, &mf)
}

func TestRunCanceled(t *testing.T) {
	cfg := greensboroSweep(t, 0.2, 0.3)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewRunner(nil).Run(ctx, cfg)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestWriteOutputsAndArchive(t *testing.T) {
	cfg := greensboroSweep(t, 0.2, 0.4)
	res, err := NewRunner(nil).Run(context.Background(), cfg)
	require.NoError(t, err)

	dir := t.TempDir()
	out := cfg.Output
	out.Dir = filepath.Join(dir, "out")
	out.CSV = "results.csv"

	written, err := WriteOutputs(res, out)
	require.NoError(t, err)
	assert.Len(t, written, 4)
	for _, p := range written {
		info, err := os.Stat(p)
		require.NoError(t, err)
		assert.Greater(t, info.Size(), int64(0))
	}

	off := false
	out.Figures = &off
	out.CSV = ""
	written, err = WriteOutputs(res, out)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(out.Dir, "results.xlsx")}, written)

	dbPath := filepath.Join(dir, "runs.db")
	run, err := Archive(context.Background(), dbPath, res)
	require.NoError(t, err)

	s, err := store.Open(dbPath)
	require.NoError(t, err)
	defer s.Close()
	got, err := s.GetRun(context.Background(), run.ID)
	require.NoError(t, err)
	assert.Equal(t, "greensboro", got.Name)
	assert.Len(t, got.Results, 2)
}

func TestBackendParams(t *testing.T) {
	p := BackendParams(config.SystemConfig{PDC0: 300, GammaPDC: f64(-0.004), TempAir: f64(30), WindSpeed: f64(2)})
	assert.Equal(t, 300.0, p.PDC0)
	assert.Equal(t, -0.004, p.GammaPDC)
	assert.Equal(t, 30.0, p.TempAir)
	assert.Equal(t, 2.0, p.WindSpeed)
	assert.Equal(t, 20.0, p.ChainTempAir)
}

func TestBackendParamsKeepsExplicitZero(t *testing.T) {
	p := BackendParams(config.SystemConfig{PDC0: 300, GammaPDC: f64(0), TempAir: f64(0), WindSpeed: f64(0)})
	assert.Zero(t, p.GammaPDC)
	assert.Zero(t, p.TempAir)
	assert.Zero(t, p.WindSpeed)

	def := pvmodel.DefaultParams()
	p = BackendParams(config.SystemConfig{})
	assert.Equal(t, def, p)
}

func TestRunZeroBifacialityMatchesMonofacial(t *testing.T) {
	cfg := greensboroSweep(t, 0.6)
	cfg.System.Bifaciality = f64(0)

	res, err := NewRunner(nil).Run(context.Background(), cfg)
	require.NoError(t, err)
	require.Equal(t, 1, res.Table.Len())
	r := res.Table.Rows[0]
	assert.Equal(t, model.StatusOK, r.Status, r.Error)
	assert.InDelta(t, r.MonofacialPeakDC, r.BifacialPeakDC, 1e-9)
	assert.InDelta(t, 0, r.PercentDiffDC, 1e-9)
}
