package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"bifacial-compare/internal/api/models"
	"bifacial-compare/internal/data"
	"bifacial-compare/internal/model"
	"bifacial-compare/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

const albedoRequest = `{
  "name": "greensboro",
  "mode": "albedo",
  "site": {"name": "Greensboro", "latitude": 36.0726, "longitude": -79.792, "timezone": "Etc/GMT+5"},
  "system": {"module": "Zytech_Solar_ZT320P", "inverter": "iPower__SHO_5_2__240V_"},
  "scenarios": [
    {"name": "Grass", "albedo": 0.25},
    {"name": "Fresh snow", "albedo": 0.8}
  ],
  "options": {"include_stats": true}
}`

func newTestRouter(t *testing.T, withStore bool) *gin.Engine {
	t.Helper()
	d := Deps{Library: data.BuiltinLibrary(), SystemsDir: t.TempDir()}
	if withStore {
		st, err := store.Open(filepath.Join(t.TempDir(), "runs.db"))
		require.NoError(t, err)
		t.Cleanup(func() { _ = st.Close() })
		d.Store = st
	}
	return NewRouter(d)
}

func do(t *testing.T, r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestHealth(t *testing.T) {
	w := do(t, newTestRouter(t, false), http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok","archive":false}`, w.Body.String())
}

func TestCompareArchivesRun(t *testing.T) {
	r := newTestRouter(t, true)

	w := do(t, r, http.MethodPost, "/api/v1/compare", albedoRequest)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := decode[models.CompareResponse](t, w)

	require.NotEmpty(t, resp.ID)
	assert.Equal(t, model.ModeAlbedo, resp.Mode)
	require.Len(t, resp.Results, 2)
	assert.Equal(t, "Grass", resp.Results[0].Label)
	assert.Equal(t, "Fresh snow", resp.Results[1].Label)
	assert.Equal(t, 2, resp.Summary.OK)
	assert.Len(t, resp.Stats, 2)
	assert.Greater(t, resp.Results[1].PercentDiffDC, resp.Results[0].PercentDiffDC)

	w = do(t, r, http.MethodGet, "/api/v1/compare/"+resp.ID, "")
	require.Equal(t, http.StatusOK, w.Code)
	got := decode[models.CompareResponse](t, w)
	assert.Equal(t, resp.ID, got.ID)
	assert.Equal(t, resp.Results, got.Results)

	w = do(t, r, http.MethodGet, "/api/v1/runs?limit=5", "")
	require.Equal(t, http.StatusOK, w.Code)
	var list struct {
		Runs  []models.RunInfo `json:"runs"`
		Count int              `json:"count"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Equal(t, 1, list.Count)
	assert.Equal(t, resp.ID, list.Runs[0].ID)

	w = do(t, r, http.MethodGet, "/api/v1/compare/does-not-exist", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCompareWithoutStore(t *testing.T) {
	r := newTestRouter(t, false)

	w := do(t, r, http.MethodPost, "/api/v1/compare", albedoRequest)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode[models.CompareResponse](t, w).ID)

	w = do(t, r, http.MethodGet, "/api/v1/runs", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "STORE_DISABLED", decode[models.ErrorResponse](t, w).Error.Code)
}

func TestCompareErrors(t *testing.T) {
	r := newTestRouter(t, false)

	tests := []struct {
		name   string
		body   string
		status int
		code   string
	}{
		{
			name:   "bad json",
			body:   `{"mode":`,
			status: http.StatusBadRequest,
			code:   "INVALID_REQUEST",
		},
		{
			name:   "unknown mode",
			body:   `{"mode":"weather","scenarios":[{"name":"x"}]}`,
			status: http.StatusBadRequest,
			code:   "INVALID_REQUEST",
		},
		{
			name: "missing site",
			body: `{"mode":"albedo","system":{"module":"Zytech_Solar_ZT320P","inverter":"iPower__SHO_5_2__240V_"},
				"scenarios":[{"name":"Grass","albedo":0.25}]}`,
			status: http.StatusBadRequest,
			code:   "MISSING_FIELD",
		},
		{
			name: "site without latitude",
			body: `{"mode":"albedo","site":{"name":"G","longitude":-79,"timezone":"Etc/GMT+5"},
				"system":{"module":"Zytech_Solar_ZT320P","inverter":"iPower__SHO_5_2__240V_"},
				"scenarios":[{"name":"Grass","albedo":0.25}]}`,
			status: http.StatusBadRequest,
			code:   "MISSING_FIELD",
		},
		{
			name: "missing module",
			body: `{"mode":"albedo","site":{"name":"G","latitude":36,"longitude":-79,"timezone":"Etc/GMT+5"},
				"system":{"inverter":"iPower__SHO_5_2__240V_"},"scenarios":[{"name":"Grass","albedo":0.25}]}`,
			status: http.StatusBadRequest,
			code:   "MISSING_FIELD",
		},
		{
			name: "unknown module",
			body: `{"mode":"albedo","site":{"name":"G","latitude":36,"longitude":-79,"timezone":"Etc/GMT+5"},
				"system":{"module":"Nope","inverter":"iPower__SHO_5_2__240V_"},"scenarios":[{"name":"Grass","albedo":0.25}]}`,
			status: http.StatusBadRequest,
			code:   "NOT_FOUND",
		},
		{
			name: "location without timezone",
			body: `{"mode":"location","system":{"module":"Zytech_Solar_ZT320P","inverter":"iPower__SHO_5_2__240V_"},
				"scenarios":[{"name":"Quito","latitude":-0.18,"longitude":-78.47}]}`,
			status: http.StatusBadRequest,
			code:   "MISSING_FIELD",
		},
		{
			name: "bad window",
			body: `{"mode":"albedo","window":{"start":"2021-06-22","end":"2021-06-21"},
				"site":{"name":"G","latitude":36,"longitude":-79,"timezone":"Etc/GMT+5"},
				"system":{"module":"Zytech_Solar_ZT320P","inverter":"iPower__SHO_5_2__240V_"},
				"scenarios":[{"name":"Grass","albedo":0.25}]}`,
			status: http.StatusBadRequest,
			code:   "INVALID_CONFIG",
		},
		{
			name: "unknown preset",
			body: `{"mode":"albedo","site":{"name":"G","latitude":36,"longitude":-79,"timezone":"Etc/GMT+5"},
				"system":{"preset":"../secret"},"scenarios":[{"name":"Grass","albedo":0.25}]}`,
			status: http.StatusBadRequest,
			code:   "INVALID_CONFIG",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, r, http.MethodPost, "/api/v1/compare", tt.body)
			assert.Equal(t, tt.status, w.Code, w.Body.String())
			assert.Equal(t, tt.code, decode[models.ErrorResponse](t, w).Error.Code)
		})
	}
}

func TestCompareWithSystemPreset(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "trina.yaml"), []byte(`
system:
  name: Trina bifacial
  module: Trina_Solar_TSM_300DEG5C_07_II_
  inverter: ABB__MICRO_0_25_I_OUTD_US_208__208V_
  bifaciality: 0.7
`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o644))
	r := NewRouter(Deps{Library: data.BuiltinLibrary(), SystemsDir: dir})

	w := do(t, r, http.MethodGet, "/api/v1/systems", "")
	require.Equal(t, http.StatusOK, w.Code)
	var systems struct {
		Systems []models.SystemInfo `json:"systems"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &systems))
	require.Len(t, systems.Systems, 1)
	assert.Equal(t, "trina", systems.Systems[0].ID)
	assert.Equal(t, "Trina bifacial", systems.Systems[0].Name)
	require.NotNil(t, systems.Systems[0].Bifaciality)
	assert.Equal(t, 0.7, *systems.Systems[0].Bifaciality)

	body := `{"mode":"location","albedo":0.3,"system":{"preset":"trina"},
		"scenarios":[{"name":"Quito","latitude":-0.18,"longitude":-78.47,"timezone":"America/Guayaquil"}]}`
	w = do(t, r, http.MethodPost, "/api/v1/compare", body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := decode[models.CompareResponse](t, w)
	require.Len(t, resp.Results, 1)
	assert.Equal(t, model.StatusOK, resp.Results[0].Status)
	assert.Equal(t, "Quito", resp.Results[0].Label)
	assert.Greater(t, resp.Results[0].PercentDiffDC, 0.0)

	// an explicit zero bifaciality overrides the preset's 0.7
	body = `{"mode":"location","albedo":0.3,"system":{"preset":"trina","bifaciality":0},
		"scenarios":[{"name":"Quito","latitude":-0.18,"longitude":-78.47,"timezone":"America/Guayaquil"}]}`
	w = do(t, r, http.MethodPost, "/api/v1/compare", body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp = decode[models.CompareResponse](t, w)
	require.Len(t, resp.Results, 1)
	assert.Equal(t, resp.Results[0].MonofacialPeakDC, resp.Results[0].BifacialPeakDC)
	assert.Zero(t, resp.Results[0].PercentDiffDC)
}

func TestLibraryRoutes(t *testing.T) {
	r := newTestRouter(t, false)

	w := do(t, r, http.MethodGet, "/api/v1/modules", "")
	require.Equal(t, http.StatusOK, w.Code)
	var mods struct {
		Modules []model.Module `json:"modules"`
		Count   int            `json:"count"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &mods))
	assert.Equal(t, len(data.BuiltinLibrary().Modules), mods.Count)

	w = do(t, r, http.MethodGet, "/api/v1/modules?bifacial=true", "")
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &mods))
	require.Equal(t, 1, mods.Count)
	assert.Equal(t, "Trina_Solar_TSM_300DEG5C_07_II_", mods.Modules[0].Name)

	w = do(t, r, http.MethodGet, "/api/v1/inverters", "")
	require.Equal(t, http.StatusOK, w.Code)
	var invs struct {
		Inverters []model.Inverter `json:"inverters"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &invs))
	assert.Len(t, invs.Inverters, len(data.BuiltinLibrary().Inverters))

	w = do(t, r, http.MethodGet, "/api/v1/modes", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"albedo"`)
	assert.Contains(t, w.Body.String(), `"location"`)
}

func TestLocations(t *testing.T) {
	path := filepath.Join(t.TempDir(), "locations.json")
	t.Setenv("LOCATIONS_FILE", path)
	r := newTestRouter(t, false)

	w := do(t, r, http.MethodGet, "/api/v1/locations", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"count":0`)

	require.NoError(t, data.SaveLocations(&data.LocationList{
		UpdatedAt: "2024-03-01T00:00:00Z",
		Locations: []model.Site{
			{Name: "Tokyo", Latitude: 35.68, Longitude: 139.69, Timezone: "Asia/Tokyo"},
			{Name: "London", Latitude: 51.5, Longitude: -0.12, Timezone: "Europe/London"},
		},
	}, path))

	w = do(t, r, http.MethodGet, "/api/v1/locations?sort=abs_longitude", "")
	require.Equal(t, http.StatusOK, w.Code)
	var got struct {
		Locations []model.Site `json:"locations"`
		Count     int          `json:"count"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Equal(t, 2, got.Count)
	assert.Equal(t, "London", got.Locations[0].Name)

	w = do(t, r, http.MethodGet, "/api/v1/locations?sort=name", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCORSPreflight(t *testing.T) {
	r := newTestRouter(t, false)
	req := httptest.NewRequest(http.MethodOptions, "/api/v1/compare", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}
