package data

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"bifacial-compare/internal/model"
)

// Column names of the "locations" sheet. Renaming them breaks the loader.
const (
	ColName      = "name"
	ColLatitude  = "latitude"
	ColLongitude = "longitude"
	ColTimezone  = "timezone"
)

// LocationList represents a collection of sites stored as JSON.
type LocationList struct {
	UpdatedAt string       `json:"updated_at,omitempty"` // ISO 8601 timestamp
	Locations []model.Site `json:"locations"`
}

// LoadLocations loads locations from a JSON file
func LoadLocations(filePath string) (*LocationList, error) {
	raw, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read locations file: %w", err)
	}

	var in struct {
		UpdatedAt string          `json:"updated_at"`
		Locations []locationEntry `json:"locations"`
	}
	if err := json.Unmarshal(raw, &in); err != nil {
		return nil, fmt.Errorf("failed to parse locations file: %w", err)
	}

	list := &LocationList{UpdatedAt: in.UpdatedAt, Locations: make([]model.Site, 0, len(in.Locations))}
	for i, e := range in.Locations {
		missing := ""
		switch {
		case e.Latitude == nil:
			missing = ColLatitude
		case e.Longitude == nil:
			missing = ColLongitude
		case e.Timezone == "":
			missing = ColTimezone
		}
		if missing != "" {
			return nil, &MissingFieldError{Source: filePath, Field: missing, Row: i + 1}
		}
		list.Locations = append(list.Locations, model.Site{
			Name:      e.Name,
			Latitude:  *e.Latitude,
			Longitude: *e.Longitude,
			Timezone:  e.Timezone,
			Altitude:  e.Altitude,
		})
	}

	return list, nil
}

// locationEntry is one decoded list entry; nil coordinates were absent.
type locationEntry struct {
	Name      string   `json:"name"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	Timezone  string   `json:"timezone"`
	Altitude  float64  `json:"altitude"`
}

// SaveLocations saves locations to a JSON file
func SaveLocations(list *LocationList, filePath string) error {
	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	raw, err := json.MarshalIndent(list, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal locations: %w", err)
	}

	if err := os.WriteFile(filePath, raw, 0644); err != nil {
		return fmt.Errorf("failed to write locations file: %w", err)
	}

	return nil
}

// GetDefaultLocationsPath returns the default path for the locations file
func GetDefaultLocationsPath() string {
	if path := os.Getenv("LOCATIONS_FILE"); path != "" {
		return path
	}
	return "./data/locations.json"
}

// LocationsFromTable converts a "locations" sheet into sites.
func LocationsFromTable(t *Table) ([]model.Site, error) {
	cols, err := t.requireColumns(ColName, ColLatitude, ColLongitude, ColTimezone)
	if err != nil {
		return nil, err
	}
	sites := make([]model.Site, 0, len(t.Rows))
	for r := range t.Rows {
		name, err := t.requiredString(r, cols[ColName], ColName)
		if err != nil {
			return nil, err
		}
		lat, err := t.requiredFloat(r, cols[ColLatitude], ColLatitude)
		if err != nil {
			return nil, err
		}
		lon, err := t.requiredFloat(r, cols[ColLongitude], ColLongitude)
		if err != nil {
			return nil, err
		}
		tz, err := t.requiredString(r, cols[ColTimezone], ColTimezone)
		if err != nil {
			return nil, err
		}
		sites = append(sites, model.Site{Name: name, Latitude: lat, Longitude: lon, Timezone: tz})
	}
	return sites, nil
}

// LocationsTable is the inverse of LocationsFromTable.
func LocationsTable(sites []model.Site, source, sheet string) *Table {
	t := &Table{
		Source:  source,
		Sheet:   sheet,
		Headers: []string{ColName, ColLatitude, ColLongitude, ColTimezone},
	}
	for _, s := range sites {
		t.Rows = append(t.Rows, []string{
			s.Name,
			strconv.FormatFloat(s.Latitude, 'f', -1, 64),
			strconv.FormatFloat(s.Longitude, 'f', -1, 64),
			s.Timezone,
		})
	}
	return t
}

// SortByAbsLongitude returns a copy of sites ordered by |longitude|, ties keeping input order.
func SortByAbsLongitude(sites []model.Site) []model.Site {
	out := make([]model.Site, len(sites))
	copy(out, sites)
	sort.SliceStable(out, func(i, j int) bool {
		return math.Abs(out[i].Longitude) < math.Abs(out[j].Longitude)
	})
	return out
}

// SortTableByAbsLongitude returns a copy of a locations sheet with whole rows
// reordered by |longitude|, ties keeping input order. Columns other than the
// location fields are carried along untouched. The sorted sites are returned
// alongside.
func SortTableByAbsLongitude(t *Table) (*Table, []model.Site, error) {
	sites, err := LocationsFromTable(t)
	if err != nil {
		return nil, nil, err
	}
	order := make([]int, len(sites))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return math.Abs(sites[order[a]].Longitude) < math.Abs(sites[order[b]].Longitude)
	})

	out := &Table{
		Source:  t.Source,
		Sheet:   t.Sheet,
		Headers: t.Headers,
		Rows:    make([][]string, len(order)),
	}
	sorted := make([]model.Site, len(order))
	for i, k := range order {
		out.Rows[i] = t.Rows[k]
		sorted[i] = sites[k]
	}
	return out, sorted, nil
}

// SortLocationFile sorts the locations in inPath by |longitude| and, unless
// dryRun is set, writes them to outPath. Workbook to workbook keeps every
// column of the sheet; any other combination goes through the site list.
func SortLocationFile(inPath, outPath, sheet, updatedAt string, dryRun bool) ([]model.Site, error) {
	if isJSON(inPath) || isJSON(outPath) {
		sites, err := LoadLocationFile(inPath, sheet)
		if err != nil {
			return nil, err
		}
		sorted := SortByAbsLongitude(sites)
		if dryRun {
			return sorted, nil
		}
		return sorted, SaveLocationFile(outPath, sheet, sorted, updatedAt)
	}

	t, err := ReadSheet(inPath, sheet)
	if err != nil {
		return nil, err
	}
	out, sorted, err := SortTableByAbsLongitude(t)
	if err != nil {
		return nil, err
	}
	if dryRun {
		return sorted, nil
	}
	if err := os.MkdirAll(filepath.Dir(outPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}
	out.Source = outPath
	return sorted, WriteSheet(outPath, out)
}

// LoadLocationFile reads sites from a .json list or a workbook sheet.
func LoadLocationFile(path, sheet string) ([]model.Site, error) {
	if isJSON(path) {
		list, err := LoadLocations(path)
		if err != nil {
			return nil, err
		}
		return list.Locations, nil
	}
	t, err := ReadSheet(path, sheet)
	if err != nil {
		return nil, err
	}
	return LocationsFromTable(t)
}

// SaveLocationFile writes sites as a .json list or a single-sheet workbook.
func SaveLocationFile(path, sheet string, sites []model.Site, updatedAt string) error {
	if isJSON(path) {
		return SaveLocations(&LocationList{UpdatedAt: updatedAt, Locations: sites}, path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	return WriteSheet(path, LocationsTable(sites, path, sheet))
}

func isJSON(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".json")
}
