package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"bifacial-compare/internal/analysis"
	"bifacial-compare/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTemp(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "nested", "runs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func sampleTable() *analysis.Table {
	t := analysis.NewTable(model.ModeAlbedo)
	t.Rows = []model.RunResult{
		{
			Position: 0, Label: "Grass", Scenario: "Grass",
			BifacialPeakAC: 262.5, MonofacialPeakAC: 250, PercentDiffAC: 4.76,
			BifacialPeakDC: 280.1, MonofacialPeakDC: 266.4, PercentDiffDC: 4.89,
			Status: model.StatusOK,
		},
		{
			Position: 1, Label: "Snow", Scenario: "Snow",
			BifacialPeakAC: 99, // ignored for sentinel rows
			Status:         model.StatusFailed,
			Error:          "transposition: boom",
		},
	}
	return t
}

func TestSaveAndGetRun(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()

	run := NewRun("solstice", sampleTable())
	require.NotEmpty(t, run.ID)
	assert.Equal(t, 2, run.Summary.Total)
	assert.Equal(t, 1, run.Summary.Failed)
	require.NoError(t, s.SaveRun(ctx, run))

	got, err := s.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, run.ID, got.ID)
	assert.Equal(t, "solstice", got.Name)
	assert.Equal(t, model.ModeAlbedo, got.Mode)
	assert.Equal(t, run.Summary, got.Summary)
	assert.WithinDuration(t, run.CreatedAt, got.CreatedAt, time.Microsecond)

	require.Len(t, got.Results, 2)
	assert.Equal(t, run.Results[0], got.Results[0])

	failed := got.Results[1]
	assert.Equal(t, model.StatusFailed, failed.Status)
	assert.Equal(t, "transposition: boom", failed.Error)
	assert.Zero(t, failed.BifacialPeakAC)
}

func TestGetRunNotFound(t *testing.T) {
	s := openTemp(t)
	_, err := s.GetRun(context.Background(), "missing")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestListRunsNewestFirst(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	for i, offset := range []time.Duration{100 * time.Millisecond, 120 * time.Millisecond, 0} {
		run := NewRun("", sampleTable())
		run.Name = []string{"b", "c", "a"}[i]
		run.CreatedAt = base.Add(offset)
		require.NoError(t, s.SaveRun(ctx, run))
	}

	runs, err := s.ListRuns(ctx, 0)
	require.NoError(t, err)
	require.Len(t, runs, 3)
	assert.Equal(t, "c", runs[0].Name)
	assert.Equal(t, "b", runs[1].Name)
	assert.Equal(t, "a", runs[2].Name)
	assert.Nil(t, runs[0].Results)

	runs, err = s.ListRuns(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, runs, 2)
}

func TestSaveRunDuplicateID(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()
	run := NewRun("x", sampleTable())
	require.NoError(t, s.SaveRun(ctx, run))
	assert.Error(t, s.SaveRun(ctx, run))

	runs, err := s.ListRuns(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}
