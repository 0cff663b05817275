// Package api assembles the HTTP surface of the comparison service.
package api

import (
	"net/http"
	"os"

	"bifacial-compare/internal/api/handlers"
	"bifacial-compare/internal/api/middleware"
	"bifacial-compare/internal/compare"
	"bifacial-compare/internal/data"
	"bifacial-compare/internal/log"
	"bifacial-compare/internal/store"

	"github.com/gin-gonic/gin"
)

// Deps are the shared services behind the handlers. Store may be nil.
type Deps struct {
	Library    *data.Library
	Store      *store.Store
	SystemsDir string
	StaticDir  string
}

// NewRouter wires middleware and routes.
func NewRouter(d Deps) *gin.Engine {
	router := gin.New()
	router.Use(middleware.ErrorHandler())
	router.Use(middleware.Logger())
	router.Use(middleware.CORS())

	runner := compare.NewRunner(d.Library)
	systemHandler := handlers.NewSystemHandler(d.SystemsDir)
	compareHandler := handlers.NewCompareHandler(runner, systemHandler, d.Store)
	libraryHandler := handlers.NewLibraryHandler(runner.Library)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "archive": d.Store != nil})
	})

	api := router.Group("/api/v1")
	{
		api.POST("/compare", compareHandler.RunCompare)
		api.GET("/compare/:id", compareHandler.GetRun)
		api.GET("/runs", compareHandler.ListRuns)

		api.GET("/modules", libraryHandler.ListModules)
		api.GET("/inverters", libraryHandler.ListInverters)
		api.GET("/systems", systemHandler.ListSystems)
		api.GET("/modes", handlers.ListModes)
		api.GET("/locations", handlers.ListLocations)
	}

	if d.StaticDir != "" {
		serveStatic(router, d.StaticDir)
	}
	return router
}

// serveStatic serves a built single-page frontend from dir when it exists.
func serveStatic(router *gin.Engine, dir string) {
	if _, err := os.Stat(dir); err != nil {
		log.Infow("static directory not found, skipping static file serving", "dir", dir)
		return
	}
	router.Static("/assets", dir+"/assets")
	router.StaticFile("/favicon.ico", dir+"/favicon.ico")
	router.NoRoute(func(c *gin.Context) {
		path := c.Request.URL.Path
		if len(path) >= 4 && path[:4] == "/api" {
			c.JSON(http.StatusNotFound, gin.H{"error": gin.H{"code": "NOT_FOUND", "message": "Not found"}})
			return
		}
		c.File(dir + "/index.html")
	})
	log.Infow("serving static files", "dir", dir)
}
