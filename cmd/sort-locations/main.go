package main

import (
	"fmt"
	"math"
	"time"

	"bifacial-compare/internal/data"
	"bifacial-compare/internal/log"

	"github.com/spf13/pflag"
)

// sort-locations reorders a location table by |longitude| so location sweeps
// run (and plot) from the prime meridian outwards.
func main() {
	var (
		inPath  = pflag.StringP("in", "i", "", "Input location file, .xlsx or .json (default: LOCATIONS_FILE or ./data/locations.json)")
		outPath = pflag.StringP("out", "o", "", "Output file (default: overwrite --in)")
		sheet   = pflag.StringP("sheet", "s", "locations", "Sheet name for .xlsx files")
		dryRun  = pflag.Bool("dry-run", false, "Print the sorted order without writing")
	)
	pflag.Parse()

	if *inPath == "" {
		*inPath = data.GetDefaultLocationsPath()
	}
	if *outPath == "" {
		*outPath = *inPath
	}

	sorted, err := data.SortLocationFile(*inPath, *outPath, *sheet, time.Now().Format(time.RFC3339), *dryRun)
	if err != nil {
		log.Fatalf("Failed to sort locations: %v", err)
	}
	fmt.Printf("Loaded %d locations from %s\n", len(sorted), *inPath)
	for i, s := range sorted {
		fmt.Printf("  %3d  %-32s %9.4f  |lon| %8.4f  %s\n", i+1, s.Name, s.Longitude, math.Abs(s.Longitude), s.Timezone)
	}
	if *dryRun {
		return
	}
	fmt.Printf("Saved %d locations to %s\n", len(sorted), *outPath)
}
