package main

import (
	"context"
	"fmt"
	"os"
	_ "time/tzdata"

	"bifacial-compare/internal/analysis"
	"bifacial-compare/internal/compare"
	"bifacial-compare/internal/config"
	"bifacial-compare/internal/log"
	"bifacial-compare/internal/model"
	"bifacial-compare/internal/report"

	"github.com/spf13/pflag"
)

// surfaces is a small albedo table for the demo sweep.
var surfaces = []struct {
	Name   string
	Albedo float64
}{
	{"Fresh snow", 0.80},
	{"Sea ice", 0.60},
	{"Desert sand", 0.40},
	{"Concrete", 0.30},
	{"Grass", 0.25},
	{"Bare soil", 0.17},
	{"Asphalt", 0.12},
	{"Open ocean", 0.06},
}

// Demo:
// - Sweep ground albedo for one tracker row in Greensboro, NC on the summer solstice
// - Compare bifacial against monofacial peaks without any input files
// - Optionally write the workbook and figures
func main() {
	outDir := pflag.StringP("out-dir", "o", "", "Optional output directory for the workbook and figures")
	workers := pflag.IntP("workers", "w", 4, "Concurrent scenarios")
	debug := pflag.Bool("debug", false, "Enable debug logging")
	pflag.Parse()

	if err := log.Init(*debug); err != nil {
		panic(err)
	}
	defer log.Sync()

	lat, lon := 36.084, -79.817
	cfg := &config.Config{
		Name:     "demo-greensboro",
		Mode:     model.ModeAlbedo,
		Workers:  *workers,
		Geometry: model.DefaultGeometry(),
		Site: &config.SiteConfig{
			Name:      "Greensboro, NC",
			Latitude:  &lat,
			Longitude: &lon,
			Timezone:  "Etc/GMT+5",
		},
		System: config.SystemConfig{
			ModuleID:   "Zytech_Solar_ZT320P",
			InverterID: "iPower__SHO_5_2__240V_",
		},
	}
	for _, s := range surfaces {
		a := s.Albedo
		cfg.Scenarios = append(cfg.Scenarios, config.ScenarioConfig{Name: s.Name, Albedo: &a})
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		panic(err)
	}

	res, err := compare.NewRunner(nil).Run(context.Background(), cfg)
	if err != nil {
		panic(err)
	}
	if err := report.PrintTables(os.Stdout, res.Input, res.Table); err != nil {
		panic(err)
	}

	fmt.Println("\nRanked by AC gain:")
	for i, r := range analysis.RankByGain(res.Table.Rows) {
		fmt.Printf("%2d. %-12s AC %6.2f%%  DC %6.2f%%\n", i+1, r.Label, r.PercentDiffAC, r.PercentDiffDC)
	}

	if *outDir != "" {
		cfg.Output.Dir = *outDir
		written, err := compare.WriteOutputs(res, cfg.Output)
		if err != nil {
			panic(err)
		}
		for _, p := range written {
			fmt.Printf("Wrote %s\n", p)
		}
	}
}
