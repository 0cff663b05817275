package data

import (
	"fmt"
	"strconv"

	"bifacial-compare/internal/config"
	"bifacial-compare/internal/model"
)

// Column names of the "albedos" sheet. Renaming them breaks the loader.
const (
	ColSurface = "Substance or Surface"
	ColAlbedo  = "Albedo"
)

// Source is a loaded scenario batch plus the raw table it came from.
type Source struct {
	Mode      model.Mode
	Input     *Table
	Scenarios []model.Scenario
}

// AlbedoRow is one row of the "albedos" sheet.
type AlbedoRow struct {
	Surface string
	Albedo  float64
}

// AlbedosFromTable converts an "albedos" sheet into rows.
func AlbedosFromTable(t *Table) ([]AlbedoRow, error) {
	cols, err := t.requireColumns(ColSurface, ColAlbedo)
	if err != nil {
		return nil, err
	}
	out := make([]AlbedoRow, 0, len(t.Rows))
	for r := range t.Rows {
		name, err := t.requiredString(r, cols[ColSurface], ColSurface)
		if err != nil {
			return nil, err
		}
		a, err := t.requiredFloat(r, cols[ColAlbedo], ColAlbedo)
		if err != nil {
			return nil, err
		}
		out = append(out, AlbedoRow{Surface: name, Albedo: a})
	}
	return out, nil
}

// LoadScenarios builds the ordered scenario batch a config describes.
func LoadScenarios(cfg *config.Config) (*Source, error) {
	if cfg.System.ModuleID == "" {
		return nil, &MissingFieldError{Source: "config", Field: "system.module"}
	}
	if cfg.System.InverterID == "" {
		return nil, &MissingFieldError{Source: "config", Field: "system.inverter"}
	}

	var (
		src *Source
		err error
	)
	switch cfg.Mode {
	case model.ModeAlbedo:
		src, err = loadAlbedoSweep(cfg)
	case model.ModeLocation:
		src, err = loadLocationSweep(cfg)
	default:
		return nil, fmt.Errorf("unsupported mode: %q", cfg.Mode)
	}
	if err != nil {
		return nil, err
	}

	for i := range src.Scenarios {
		sc := &src.Scenarios[i]
		sc.Index = i
		sc.Geometry = cfg.Geometry
		sc.ModuleID = cfg.System.ModuleID
		sc.InverterID = cfg.System.InverterID
		if err := sc.Validate(); err != nil {
			return nil, err
		}
	}
	return src, nil
}

func loadAlbedoSweep(cfg *config.Config) (*Source, error) {
	if cfg.Site == nil {
		return nil, &MissingFieldError{Source: "config", Field: "site"}
	}
	if cfg.Site.Latitude == nil {
		return nil, &MissingFieldError{Source: "config", Field: "site.latitude"}
	}
	if cfg.Site.Longitude == nil {
		return nil, &MissingFieldError{Source: "config", Field: "site.longitude"}
	}
	if cfg.Site.Timezone == "" {
		return nil, &MissingFieldError{Source: "config", Field: "site.timezone"}
	}
	site := model.Site{
		Name:      cfg.Site.Name,
		Latitude:  *cfg.Site.Latitude,
		Longitude: *cfg.Site.Longitude,
		Timezone:  cfg.Site.Timezone,
		Altitude:  cfg.Site.Altitude,
	}

	var rows []AlbedoRow
	var input *Table
	switch cfg.Source.Type {
	case config.SourceXLSX:
		t, err := ReadSheet(cfg.Source.Path, cfg.Source.Sheet)
		if err != nil {
			return nil, err
		}
		if rows, err = AlbedosFromTable(t); err != nil {
			return nil, err
		}
		input = t
	case config.SourceInline:
		input = &Table{Source: "config", Sheet: "scenarios", Headers: []string{ColSurface, ColAlbedo}}
		for i, s := range cfg.Scenarios {
			if s.Albedo == nil {
				return nil, &MissingFieldError{Source: "config", Sheet: "scenarios", Field: "albedo", Row: i + 1}
			}
			rows = append(rows, AlbedoRow{Surface: s.Name, Albedo: *s.Albedo})
			input.Rows = append(input.Rows, []string{s.Name, strconv.FormatFloat(*s.Albedo, 'f', -1, 64)})
		}
	default:
		return nil, fmt.Errorf("source type %q is not supported for albedo sweeps", cfg.Source.Type)
	}

	out := &Source{Mode: model.ModeAlbedo, Input: input}
	for _, r := range rows {
		out.Scenarios = append(out.Scenarios, model.Scenario{
			Name:   r.Surface,
			Site:   site,
			Albedo: r.Albedo,
		})
	}
	return out, nil
}

func loadLocationSweep(cfg *config.Config) (*Source, error) {
	if cfg.Albedo == nil {
		return nil, &MissingFieldError{Source: "config", Field: "albedo"}
	}
	albedo := *cfg.Albedo

	var sites []model.Site
	var input *Table
	switch cfg.Source.Type {
	case config.SourceXLSX:
		t, err := ReadSheet(cfg.Source.Path, cfg.Source.Sheet)
		if err != nil {
			return nil, err
		}
		if sites, err = LocationsFromTable(t); err != nil {
			return nil, err
		}
		input = t
	case config.SourceJSON:
		list, err := LoadLocations(cfg.Source.Path)
		if err != nil {
			return nil, err
		}
		sites = list.Locations
		input = LocationsTable(sites, cfg.Source.Path, "locations")
	case config.SourceInline:
		for i, s := range cfg.Scenarios {
			switch {
			case s.Latitude == nil:
				return nil, &MissingFieldError{Source: "config", Sheet: "scenarios", Field: ColLatitude, Row: i + 1}
			case s.Longitude == nil:
				return nil, &MissingFieldError{Source: "config", Sheet: "scenarios", Field: ColLongitude, Row: i + 1}
			case s.Timezone == "":
				return nil, &MissingFieldError{Source: "config", Sheet: "scenarios", Field: ColTimezone, Row: i + 1}
			}
			sites = append(sites, model.Site{
				Name:      s.Name,
				Latitude:  *s.Latitude,
				Longitude: *s.Longitude,
				Timezone:  s.Timezone,
				Altitude:  s.Altitude,
			})
		}
		input = LocationsTable(sites, "config", "scenarios")
	default:
		return nil, fmt.Errorf("unsupported source type: %q", cfg.Source.Type)
	}

	out := &Source{Mode: model.ModeLocation, Input: input}
	for _, s := range sites {
		out.Scenarios = append(out.Scenarios, model.Scenario{
			Name:   s.Name,
			Site:   s,
			Albedo: albedo,
		})
	}
	return out, nil
}
