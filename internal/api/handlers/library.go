package handlers

import (
	"net/http"

	"bifacial-compare/internal/data"
	"bifacial-compare/internal/model"

	"github.com/gin-gonic/gin"
)

// LibraryHandler serves the module and inverter catalog.
type LibraryHandler struct {
	lib *data.Library
}

func NewLibraryHandler(lib *data.Library) *LibraryHandler {
	if lib == nil {
		lib = data.BuiltinLibrary()
	}
	return &LibraryHandler{lib: lib}
}

// ListModules handles GET /api/v1/modules
// Query: bifacial=true keeps bifacial modules only.
func (h *LibraryHandler) ListModules(c *gin.Context) {
	onlyBifacial := c.Query("bifacial") == "true"
	modules := []model.Module{}
	for _, name := range h.lib.ModuleNames() {
		m := h.lib.Modules[name]
		if onlyBifacial && !m.Bifacial {
			continue
		}
		modules = append(modules, m)
	}
	c.JSON(http.StatusOK, gin.H{"modules": modules, "count": len(modules)})
}

// ListInverters handles GET /api/v1/inverters
func (h *LibraryHandler) ListInverters(c *gin.Context) {
	names := h.lib.InverterNames()
	inverters := make([]model.Inverter, 0, len(names))
	for _, name := range names {
		inverters = append(inverters, h.lib.Inverters[name])
	}
	c.JSON(http.StatusOK, gin.H{"inverters": inverters, "count": len(inverters)})
}
