package main

import (
	"context"
	"fmt"
	"os"
	"time"
	_ "time/tzdata"

	"bifacial-compare/internal/api"
	"bifacial-compare/internal/data"
	"bifacial-compare/internal/log"
	"bifacial-compare/internal/store"

	"github.com/gin-gonic/gin"
)

func main() {
	// Get configuration from environment
	port := os.Getenv("API_PORT")
	if port == "" {
		port = "8080"
	}
	production := os.Getenv("API_ENV") == "production"
	if err := log.Init(!production); err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	if production {
		gin.SetMode(gin.ReleaseMode)
	}

	// Optional remote or local SAM libraries
	lib := data.BuiltinLibrary()
	if mods, invs := os.Getenv("MODULE_LIBRARY"), os.Getenv("INVERTER_LIBRARY"); mods != "" || invs != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		loaded, err := data.LoadLibrary(ctx, data.NewLibraryClient(), mods, invs)
		cancel()
		if err != nil {
			log.Fatalf("Failed to load equipment library: %v", err)
		}
		lib = loaded
	}

	var st *store.Store
	if dbPath := os.Getenv("RUNS_DB"); dbPath != "" {
		s, err := store.Open(dbPath)
		if err != nil {
			log.Fatalf("Failed to open run archive: %v", err)
		}
		defer s.Close()
		st = s
	}

	staticDir := os.Getenv("STATIC_DIR")
	if staticDir == "" {
		staticDir = "./web/dist"
	}

	router := api.NewRouter(api.Deps{
		Library:    lib,
		Store:      st,
		SystemsDir: os.Getenv("SYSTEMS_DIR"),
		StaticDir:  staticDir,
	})

	// Start server
	addr := fmt.Sprintf(":%s", port)
	log.Infow("starting API server", "addr", addr, "locations", data.GetDefaultLocationsPath(), "archive", st != nil)
	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
