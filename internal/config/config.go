package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"bifacial-compare/internal/model"

	"gopkg.in/yaml.v3"
)

// Source types.
const (
	SourceInline = "inline"
	SourceXLSX   = "xlsx"
	SourceJSON   = "json"
)

// Config is the on-disk configuration shape (YAML).
type Config struct {
	Name    string     `yaml:"name"`
	Mode    model.Mode `yaml:"mode"`
	Workers int        `yaml:"workers"`

	Window WindowConfig `yaml:"window"`
	Source SourceConfig `yaml:"source"`

	// Site is the fixed site of an albedo sweep.
	Site *SiteConfig `yaml:"site"`
	// Albedo is the fixed ground albedo of a location sweep.
	Albedo *float64 `yaml:"albedo"`

	Geometry model.Geometry `yaml:"geometry"`

	// Optional: load system parameters from a separate YAML (e.g. examples/systems/*.yaml).
	// If both SystemFile and System are provided, System overrides SystemFile.
	SystemFile string       `yaml:"system_file"`
	System     SystemConfig `yaml:"system"`

	Library LibraryConfig `yaml:"library"`
	Output  OutputConfig  `yaml:"output"`

	// Scenarios is used when source.type is "inline".
	Scenarios []ScenarioConfig `yaml:"scenarios"`
}

type WindowConfig struct {
	Start string `yaml:"start"`
	End   string `yaml:"end"`
	Freq  string `yaml:"freq"`
}

type SourceConfig struct {
	Type  string `yaml:"type"`
	Path  string `yaml:"path"`
	Sheet string `yaml:"sheet"`
}

// SystemConfig describes the hardware and the DC/temperature model constants.
// Units:
// - PDC0: W at STC for the standalone DC comparison
// - GammaPDC: 1/°C
// - TempAir: °C, WindSpeed: m/s (cell temperature inputs)
//
// Bifaciality, GammaPDC, TempAir and WindSpeed are pointers because zero is a
// meaningful value for each of them (0 °C air, still air, a monofacial module).
type SystemConfig struct {
	Name        string   `yaml:"name"`
	ModuleID    string   `yaml:"module"`
	InverterID  string   `yaml:"inverter"`
	Bifaciality *float64 `yaml:"bifaciality"`
	PDC0        float64  `yaml:"pdc0"`
	GammaPDC    *float64 `yaml:"gamma_pdc"`
	TempAir     *float64 `yaml:"temp_air"`
	WindSpeed   *float64 `yaml:"wind_speed"`
}

// System defaults applied when a field is absent.
const (
	DefaultBifaciality = 0.75
	DefaultPDC0        = 320.0
	DefaultGammaPDC    = -0.0043
	DefaultTempAir     = 25.0
	DefaultWindSpeed   = 1.0
)

// BifacialityValue returns the bifaciality factor, or the default when unset.
func (s SystemConfig) BifacialityValue() float64 {
	if s.Bifaciality == nil {
		return DefaultBifaciality
	}
	return *s.Bifaciality
}

// LibraryConfig points at SAM-format module/inverter CSVs (paths or http(s) URLs).
// Empty values use the built-in catalog.
type LibraryConfig struct {
	Modules   string `yaml:"modules"`
	Inverters string `yaml:"inverters"`
}

// OutputConfig names the report files, relative to Dir. An empty CSV or SQLite
// path skips that output.
type OutputConfig struct {
	Dir           string `yaml:"dir"`
	XLSX          string `yaml:"xlsx"`
	CSV           string `yaml:"csv"`
	SQLite        string `yaml:"sqlite"`
	Figures       *bool  `yaml:"figures"`
	RowsPerColumn int    `yaml:"rows_per_column"`
}

// FiguresEnabled reports whether the PNG figures should be rendered (default true).
func (o OutputConfig) FiguresEnabled() bool {
	return o.Figures == nil || *o.Figures
}

// SiteConfig is the fixed site of an albedo sweep. Coordinates are pointers so
// a missing one is reported instead of read as 0.
type SiteConfig struct {
	Name      string   `yaml:"name"`
	Latitude  *float64 `yaml:"latitude"`
	Longitude *float64 `yaml:"longitude"`
	Timezone  string   `yaml:"timezone"`
	Altitude  float64  `yaml:"altitude"`
}

// ScenarioConfig is one inline scenario row. Pointers distinguish "absent" from zero.
type ScenarioConfig struct {
	Name      string   `yaml:"name"`
	Latitude  *float64 `yaml:"latitude"`
	Longitude *float64 `yaml:"longitude"`
	Timezone  string   `yaml:"timezone"`
	Altitude  float64  `yaml:"altitude"`
	Albedo    *float64 `yaml:"albedo"`
}

func Load(path string) (*Config, error) {
	c, err := LoadUnchecked(path)
	if err != nil {
		return nil, err
	}
	c.ApplyDefaults()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// LoadUnchecked loads and merges config, but does not validate it.
// Useful for debugging/printing partial configs.
func LoadUnchecked(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	c := Config{Geometry: model.DefaultGeometry()}
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return nil, err
	}
	// If system_file is set, load it and merge in any explicit overrides from c.System.
	if c.SystemFile != "" {
		loaded, err := LoadSystemFile(resolveRelative(path, c.SystemFile))
		if err != nil {
			return nil, err
		}
		c.System = MergeSystem(loaded, c.System)
	}
	if c.Source.Path != "" {
		c.Source.Path = resolveRelative(path, c.Source.Path)
	}
	return &c, nil
}

// resolveRelative prefers interpreting p relative to the config file directory,
// falling back to the provided path (relative to cwd) if that doesn't exist.
func resolveRelative(configPath, p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	cand := filepath.Join(filepath.Dir(configPath), p)
	if _, err := os.Stat(cand); err == nil {
		return cand
	}
	return p
}

// ApplyDefaults fills in the constants every run shares unless overridden.
func (c *Config) ApplyDefaults() {
	if c.Mode == "" {
		c.Mode = model.ModeAlbedo
	}
	if c.Workers <= 0 {
		c.Workers = 1
	}
	if c.Source.Type == "" {
		c.Source.Type = SourceInline
	}
	if c.Source.Sheet == "" {
		switch c.Mode {
		case model.ModeAlbedo:
			c.Source.Sheet = "albedos"
		case model.ModeLocation:
			c.Source.Sheet = "locations"
		}
	}
	if c.Window.Start == "" && c.Window.End == "" {
		switch c.Mode {
		case model.ModeLocation:
			c.Window = WindowConfig{Start: "2024-03-01", End: "2024-03-01 23:00", Freq: "1h"}
		default:
			c.Window = WindowConfig{Start: "2021-06-21", End: "2021-06-22", Freq: "1h"}
		}
	}
	if c.Window.Freq == "" {
		c.Window.Freq = "1h"
	}
	if c.Mode == model.ModeLocation && c.Albedo == nil {
		a := 0.2
		c.Albedo = &a
	}
	setDefault(&c.System.Bifaciality, DefaultBifaciality)
	if c.System.PDC0 == 0 {
		c.System.PDC0 = DefaultPDC0
	}
	setDefault(&c.System.GammaPDC, DefaultGammaPDC)
	setDefault(&c.System.TempAir, DefaultTempAir)
	setDefault(&c.System.WindSpeed, DefaultWindSpeed)
	if c.Output.Dir == "" {
		c.Output.Dir = "results"
	}
	if c.Output.XLSX == "" {
		c.Output.XLSX = "results.xlsx"
	}
	if c.Output.RowsPerColumn <= 0 {
		c.Output.RowsPerColumn = 4
	}
}

func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}
	switch c.Mode {
	case model.ModeAlbedo, model.ModeLocation:
	default:
		return fmt.Errorf("unsupported mode: %q", c.Mode)
	}
	switch c.Source.Type {
	case SourceInline:
		if len(c.Scenarios) == 0 {
			return errors.New("inline source requires at least one entry under scenarios")
		}
	case SourceXLSX, SourceJSON:
		if c.Source.Path == "" {
			return fmt.Errorf("source.path is required for %s sources", c.Source.Type)
		}
	default:
		return fmt.Errorf("unsupported source type: %q", c.Source.Type)
	}
	if _, err := c.ModelWindow(); err != nil {
		return fmt.Errorf("window invalid: %w", err)
	}
	if err := c.Geometry.Validate(); err != nil {
		return fmt.Errorf("geometry invalid: %w", err)
	}
	if b := c.System.Bifaciality; b != nil && (*b < 0 || *b > 1) {
		return errors.New("system.bifaciality must be in [0, 1]")
	}
	if c.System.PDC0 <= 0 {
		return errors.New("system.pdc0 must be > 0")
	}
	return nil
}

func setDefault(p **float64, v float64) {
	if *p == nil {
		*p = &v
	}
}

// ModelWindow converts the window section into a model.Window.
func (c *Config) ModelWindow() (model.Window, error) {
	freq, err := model.ParseFreq(c.Window.Freq)
	if err != nil {
		return model.Window{}, err
	}
	w := model.Window{Start: c.Window.Start, End: c.Window.End, Freq: freq}
	if _, err := w.Times(nil); err != nil {
		return model.Window{}, err
	}
	return w, nil
}

type systemFileWrapper struct {
	System SystemConfig `yaml:"system"`
}

// LoadSystemFile reads a system preset, a YAML file with a top-level "system" key.
func LoadSystemFile(path string) (SystemConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return SystemConfig{}, err
	}
	var w systemFileWrapper
	if err := yaml.Unmarshal(raw, &w); err != nil {
		return SystemConfig{}, err
	}
	return w.System, nil
}

// MergeSystem overlays the fields override sets onto base: non-empty strings,
// a non-zero PDC0 and any non-nil optional constant (zero included).
// This is used when loading a system file and then applying overrides from the run config or request.
func MergeSystem(base, override SystemConfig) SystemConfig {
	out := base
	if override.Name != "" {
		out.Name = override.Name
	}
	if override.ModuleID != "" {
		out.ModuleID = override.ModuleID
	}
	if override.InverterID != "" {
		out.InverterID = override.InverterID
	}
	if override.Bifaciality != nil {
		out.Bifaciality = override.Bifaciality
	}
	if override.PDC0 != 0 {
		out.PDC0 = override.PDC0
	}
	if override.GammaPDC != nil {
		out.GammaPDC = override.GammaPDC
	}
	if override.TempAir != nil {
		out.TempAir = override.TempAir
	}
	if override.WindSpeed != nil {
		out.WindSpeed = override.WindSpeed
	}
	return out
}
