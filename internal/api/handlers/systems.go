package handlers

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"bifacial-compare/internal/api/models"
	"bifacial-compare/internal/config"
	"bifacial-compare/internal/log"

	"github.com/gin-gonic/gin"
)

// SystemHandler serves the system presets (YAML files with a "system" key).
type SystemHandler struct {
	systemsDir string
}

// NewSystemHandler creates a handler reading presets from dir. An empty dir
// uses SYSTEMS_DIR, then ./examples/systems.
func NewSystemHandler(dir string) *SystemHandler {
	if dir == "" {
		dir = os.Getenv("SYSTEMS_DIR")
	}
	if dir == "" {
		dir = filepath.Join("examples", "systems")
	}
	if abs, err := filepath.Abs(dir); err == nil {
		dir = abs
	}
	log.Infow("system presets", "dir", dir)
	return &SystemHandler{systemsDir: dir}
}

// Dir returns the preset directory.
func (h *SystemHandler) Dir() string {
	return h.systemsDir
}

// ListSystems handles GET /api/v1/systems
func (h *SystemHandler) ListSystems(c *gin.Context) {
	systems := []models.SystemInfo{}

	entries, err := os.ReadDir(h.systemsDir)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Warnw("failed to read system presets", "dir", h.systemsDir, "error", err)
		}
		c.JSON(http.StatusOK, gin.H{"systems": systems})
		return
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".yaml") {
			continue
		}
		id := strings.TrimSuffix(entry.Name(), ".yaml")
		sys, err := h.Resolve(id)
		if err != nil {
			log.Warnw("skipping invalid system preset", "file", entry.Name(), "error", err)
			continue
		}
		name := sys.Name
		if name == "" {
			name = id
		}
		systems = append(systems, models.SystemInfo{
			ID:          id,
			Name:        name,
			Module:      sys.ModuleID,
			Inverter:    sys.InverterID,
			Bifaciality: sys.Bifaciality,
		})
	}

	c.JSON(http.StatusOK, gin.H{"systems": systems})
}

// Resolve loads the preset with the given id (file name without ".yaml").
func (h *SystemHandler) Resolve(id string) (config.SystemConfig, error) {
	if id == "" || id != filepath.Base(id) || strings.HasPrefix(id, ".") {
		return config.SystemConfig{}, fmt.Errorf("invalid system preset %q", id)
	}
	return config.LoadSystemFile(filepath.Join(h.systemsDir, id+".yaml"))
}
