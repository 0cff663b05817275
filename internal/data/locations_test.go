package data

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"bifacial-compare/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func sampleSites() []model.Site {
	return []model.Site{
		{Name: "Greensboro", Latitude: 36.0726, Longitude: -79.792, Timezone: "Etc/GMT+5"},
		{Name: "Phoenix", Latitude: 33.4484, Longitude: -112.074, Timezone: "America/Phoenix"},
		{Name: "Berlin", Latitude: 52.52, Longitude: 13.405, Timezone: "Europe/Berlin"},
		{Name: "Tokyo", Latitude: 35.6762, Longitude: 139.6503, Timezone: "Asia/Tokyo"},
		{Name: "Madrid", Latitude: 40.4168, Longitude: -3.7038, Timezone: "Europe/Madrid"},
		{Name: "Mirror", Latitude: 0, Longitude: 13.405, Timezone: "UTC"},
	}
}

func assertSortedPermutation(t *testing.T, in, out []model.Site) {
	t.Helper()
	require.Len(t, out, len(in))
	assert.ElementsMatch(t, in, out)
	for i := 1; i < len(out); i++ {
		assert.LessOrEqual(t, math.Abs(out[i-1].Longitude), math.Abs(out[i].Longitude))
	}
}

func TestSortByAbsLongitude(t *testing.T) {
	in := sampleSites()
	out := SortByAbsLongitude(in)

	assertSortedPermutation(t, in, out)
	assert.Equal(t, "Madrid", out[0].Name)
	// equal |longitude| keeps input order
	assert.Equal(t, "Berlin", out[1].Name)
	assert.Equal(t, "Mirror", out[2].Name)
	// input untouched
	assert.Equal(t, "Greensboro", in[0].Name)
}

func TestSortRoundTripXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "module_data.xlsx")
	in := sampleSites()

	require.NoError(t, SaveLocationFile(path, "locations", SortByAbsLongitude(in), ""))
	got, err := LoadLocationFile(path, "locations")
	require.NoError(t, err)
	assertSortedPermutation(t, in, got)
}

func TestSortRoundTripJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "locations.json")
	in := sampleSites()

	require.NoError(t, SaveLocationFile(path, "", SortByAbsLongitude(in), "2024-03-01T00:00:00Z"))
	list, err := LoadLocations(path)
	require.NoError(t, err)
	assert.Equal(t, "2024-03-01T00:00:00Z", list.UpdatedAt)
	assertSortedPermutation(t, in, list.Locations)
}

func TestLocationsFromTableMissingCell(t *testing.T) {
	tbl := &Table{
		Source:  "module_data.xlsx",
		Sheet:   "locations",
		Headers: []string{"name", "latitude", "longitude", "timezone"},
		Rows: [][]string{
			{"A", "10", "20", "UTC"},
			{"B", "11", "", "UTC"},
		},
	}
	_, err := LocationsFromTable(tbl)
	var mf *MissingFieldError
	require.ErrorAs(t, err, &mf)
	assert.Equal(t, "longitude", mf.Field)
	assert.Equal(t, 3, mf.Row)
}

func TestLocationsFromTableMissingColumn(t *testing.T) {
	tbl := &Table{
		Source:  "module_data.xlsx",
		Sheet:   "locations",
		Headers: []string{"Name", "Latitude", "Longitude"},
		Rows:    [][]string{{"A", "10", "20"}},
	}
	_, err := LocationsFromTable(tbl)
	var mf *MissingFieldError
	require.ErrorAs(t, err, &mf)
	assert.Equal(t, "timezone", mf.Field)
	assert.Zero(t, mf.Row)
}

func TestLocationsFromTableBadNumber(t *testing.T) {
	tbl := &Table{
		Headers: []string{"name", "latitude", "longitude", "timezone"},
		Rows:    [][]string{{"A", "north", "20", "UTC"}},
	}
	_, err := LocationsFromTable(tbl)
	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "north", pe.Value)
}

func TestGetDefaultLocationsPath(t *testing.T) {
	t.Setenv("LOCATIONS_FILE", "")
	assert.Equal(t, "./data/locations.json", GetDefaultLocationsPath())
	t.Setenv("LOCATIONS_FILE", "/tmp/x.json")
	assert.Equal(t, "/tmp/x.json", GetDefaultLocationsPath())
}

func TestLoadLocationsMissingCoordinates(t *testing.T) {
	tests := []struct {
		name  string
		entry string
		field string
	}{
		{"latitude", `{"name":"B","longitude":20,"timezone":"UTC"}`, ColLatitude},
		{"longitude", `{"name":"B","latitude":11,"timezone":"UTC"}`, ColLongitude},
		{"timezone", `{"name":"B","latitude":11,"longitude":20}`, ColTimezone},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "locations.json")
			body := `{"locations":[{"name":"A","latitude":0,"longitude":0,"timezone":"UTC"},` + tt.entry + `]}`
			require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

			_, err := LoadLocations(path)
			var mf *MissingFieldError
			require.ErrorAs(t, err, &mf)
			assert.Equal(t, tt.field, mf.Field)
			assert.Equal(t, 2, mf.Row)
		})
	}
}

func TestLoadLocationsKeepsZeroCoordinates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "locations.json")
	body := `{"updated_at":"2024-03-01T00:00:00Z","locations":[{"name":"Null Island","latitude":0,"longitude":0,"timezone":"UTC","altitude":3}]}`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	list, err := LoadLocations(path)
	require.NoError(t, err)
	assert.Equal(t, "2024-03-01T00:00:00Z", list.UpdatedAt)
	assert.Equal(t, []model.Site{{Name: "Null Island", Timezone: "UTC", Altitude: 3}}, list.Locations)
}

// writeRows writes each row at its 1-based sheet row; rows not listed stay empty.
func writeRows(t *testing.T, path, sheet string, rows map[int][]interface{}) {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	require.NoError(t, f.SetSheetName("Sheet1", sheet))
	for n, row := range rows {
		row := row
		cell, err := excelize.CoordinatesToCellName(1, n)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}
	require.NoError(t, f.SaveAs(path))
}

func TestReadSheetReportsSheetRows(t *testing.T) {
	header := []interface{}{"name", "latitude", "longitude", "timezone"}
	tests := []struct {
		name string
		bad  []interface{}
		row  int
	}{
		{"missing cell", []interface{}{"B", 11, "", "UTC"}, 6},
		{"bad number", []interface{}{"B", "north", 20, "UTC"}, 6},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "module_data.xlsx")
			// header on row 3, a blank row between the two data rows
			writeRows(t, path, "locations", map[int][]interface{}{
				3: header,
				4: {"A", 10, 20, "UTC"},
				6: tt.bad,
			})

			tbl, err := ReadSheet(path, "locations")
			require.NoError(t, err)
			assert.Equal(t, []int{4, 6}, tbl.RowNumbers)

			_, err = LocationsFromTable(tbl)
			var mf *MissingFieldError
			var pe *ParseError
			switch {
			case errors.As(err, &mf):
				assert.Equal(t, tt.row, mf.Row)
			case errors.As(err, &pe):
				assert.Equal(t, tt.row, pe.Row)
			default:
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestSortLocationFileKeepsExtraColumns(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "module_data.xlsx")
	out := filepath.Join(dir, "sorted", "module_data.xlsx")
	writeRows(t, in, "locations", map[int][]interface{}{
		1: {"name", "latitude", "longitude", "timezone", "notes", "altitude"},
		2: {"Tokyo", 35.6762, 139.6503, "Asia/Tokyo", "rooftop", 40},
		3: {"Madrid", 40.4168, -3.7038, "Europe/Madrid", "carport", 667},
		4: {"Greensboro", 36.0726, -79.792, "Etc/GMT+5", "", 272},
	})

	sorted, err := SortLocationFile(in, out, "locations", "", false)
	require.NoError(t, err)
	require.Len(t, sorted, 3)
	assert.Equal(t, []string{"Madrid", "Greensboro", "Tokyo"}, []string{sorted[0].Name, sorted[1].Name, sorted[2].Name})

	tbl, err := ReadSheet(out, "locations")
	require.NoError(t, err)
	assert.Equal(t, []string{"name", "latitude", "longitude", "timezone", "notes", "altitude"}, tbl.Headers)
	require.Len(t, tbl.Rows, 3)
	notes, ok := tbl.Column("notes")
	require.True(t, ok)
	alt, ok := tbl.Column("altitude")
	require.True(t, ok)
	assert.Equal(t, "carport", tbl.Rows[0][notes])
	assert.Equal(t, "667", tbl.Rows[0][alt])
	assert.Equal(t, "272", tbl.Rows[1][alt])
	assert.Equal(t, "rooftop", tbl.Rows[2][notes])
}

func TestSortLocationFileDryRun(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "locations.json")
	out := filepath.Join(dir, "out.json")
	require.NoError(t, SaveLocations(&LocationList{Locations: sampleSites()}, in))

	sorted, err := SortLocationFile(in, out, "", "", true)
	require.NoError(t, err)
	assertSortedPermutation(t, sampleSites(), sorted)
	_, err = os.Stat(out)
	assert.True(t, os.IsNotExist(err))
}
