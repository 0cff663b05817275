package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	_ "time/tzdata"

	"bifacial-compare/internal/compare"
	"bifacial-compare/internal/config"
	"bifacial-compare/internal/data"
	"bifacial-compare/internal/log"
	"bifacial-compare/internal/report"
	"bifacial-compare/internal/store"

	"github.com/spf13/pflag"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	switch os.Args[1] {
	case "compare":
		cmdCompare(os.Args[2:])
	case "library":
		cmdLibrary(os.Args[2:])
	case "runs":
		cmdRuns(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Println("usage:")
	fmt.Println("  bifacial compare --config examples/albedo.yaml [--out-dir results] [--workers 4] [--debug]")
	fmt.Println("  bifacial library --kind modules|inverters [--source path-or-url]")
	fmt.Println("  bifacial runs --db results/runs.db [--limit 20]")
	fmt.Println("")
	fmt.Println("notes:")
	fmt.Println("  - compare writes the results workbook and ac_results.png / dc_results.png to the output dir")
	fmt.Println("  - failed scenarios are reported with status=failed and blank values")
}

func cmdCompare(args []string) {
	fs := pflag.NewFlagSet("compare", pflag.ExitOnError)
	cfgPath := fs.StringP("config", "c", "", "Path to YAML run config")
	outDir := fs.StringP("out-dir", "o", "", "Output directory (overrides output.dir)")
	workers := fs.IntP("workers", "w", 0, "Concurrent scenarios (overrides workers)")
	csvName := fs.String("csv", "", "Also write a CSV with this file name")
	archive := fs.String("archive", "", "SQLite run archive path (overrides output.sqlite)")
	noFigures := fs.Bool("no-figures", false, "Skip the PNG figures")
	debug := fs.Bool("debug", false, "Enable debug logging")
	_ = fs.Parse(args)

	if *cfgPath == "" {
		fmt.Println("--config is required")
		os.Exit(2)
	}
	if err := log.Init(*debug); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer log.Sync()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fail(err)
	}
	if *outDir != "" {
		cfg.Output.Dir = *outDir
	}
	if *workers > 0 {
		cfg.Workers = *workers
	}
	if *csvName != "" {
		cfg.Output.CSV = *csvName
	}
	if *archive != "" {
		cfg.Output.SQLite = *archive
	}
	if *noFigures {
		off := false
		cfg.Output.Figures = &off
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	lib := data.BuiltinLibrary()
	if cfg.Library.Modules != "" || cfg.Library.Inverters != "" {
		lib, err = data.LoadLibrary(ctx, data.NewLibraryClient(), cfg.Library.Modules, cfg.Library.Inverters)
		if err != nil {
			fail(err)
		}
	}

	res, err := compare.NewRunner(lib).Run(ctx, cfg)
	if err != nil {
		fail(err)
	}

	if err := report.PrintTables(os.Stdout, res.Input, res.Table); err != nil {
		fail(err)
	}

	written, err := compare.WriteOutputs(res, cfg.Output)
	if err != nil {
		fail(err)
	}
	for _, p := range written {
		fmt.Printf("Wrote %s\n", p)
	}

	if cfg.Output.SQLite != "" {
		run, err := compare.Archive(ctx, cfg.Output.SQLite, res)
		if err != nil {
			fail(err)
		}
		fmt.Printf("Archived run %s to %s\n", run.ID, cfg.Output.SQLite)
	}
}

func cmdLibrary(args []string) {
	fs := pflag.NewFlagSet("library", pflag.ExitOnError)
	kind := fs.StringP("kind", "k", "modules", "modules or inverters")
	source := fs.StringP("source", "s", "", "SAM CSV path or http(s) URL (default: built-in catalog)")
	_ = fs.Parse(args)

	var modSrc, invSrc string
	switch *kind {
	case "modules":
		modSrc = *source
	case "inverters":
		invSrc = *source
	default:
		fmt.Printf("unsupported kind: %q\n", *kind)
		os.Exit(2)
	}

	lib := data.BuiltinLibrary()
	if *source != "" {
		var err error
		lib, err = data.LoadLibrary(context.Background(), data.NewLibraryClient(), modSrc, invSrc)
		if err != nil {
			fail(err)
		}
	}

	if *kind == "modules" {
		fmt.Printf("%-48s %-10s %-10s %-9s\n", "name", "pdc0", "gamma", "bifacial")
		for _, name := range lib.ModuleNames() {
			m := lib.Modules[name]
			fmt.Printf("%-48s %-10.2f %-10.5f %-9t\n", m.Name, m.PDC0, m.GammaPDC, m.Bifacial)
		}
		return
	}
	fmt.Printf("%-48s %-10s %-10s %-6s\n", "name", "paco", "pdco", "eta")
	for _, name := range lib.InverterNames() {
		inv := lib.Inverters[name]
		fmt.Printf("%-48s %-10.2f %-10.2f %-6.4f\n", inv.Name, inv.Paco, inv.Pdco, inv.EtaNom())
	}
}

func cmdRuns(args []string) {
	fs := pflag.NewFlagSet("runs", pflag.ExitOnError)
	dbPath := fs.String("db", "results/runs.db", "SQLite run archive path")
	limit := fs.IntP("limit", "n", 20, "Number of runs to list")
	_ = fs.Parse(args)

	s, err := store.Open(*dbPath)
	if err != nil {
		fail(err)
	}
	defer s.Close()

	runs, err := s.ListRuns(context.Background(), *limit)
	if err != nil {
		fail(err)
	}
	fmt.Printf("%-36s %-20s %-9s %-6s %-6s %-10s %-20s\n", "id", "created", "mode", "ok", "failed", "mean AC%", "best")
	for _, r := range runs {
		fmt.Printf("%-36s %-20s %-9s %-6d %-6d %-10.2f %-20s\n",
			r.ID,
			r.CreatedAt.Format("2006-01-02 15:04:05"),
			r.Mode,
			r.Summary.OK,
			r.Summary.Failed,
			r.Summary.MeanPercentDiffAC,
			r.Summary.Best,
		)
	}
}

// fail prints a run-stopping error and exits. Missing inputs name the field.
func fail(err error) {
	var mf *data.MissingFieldError
	if errors.As(err, &mf) {
		fmt.Fprintf(os.Stderr, "missing input: %v\n", mf)
		os.Exit(1)
	}
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
