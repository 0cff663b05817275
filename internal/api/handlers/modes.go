package handlers

import (
	"net/http"

	"bifacial-compare/internal/api/models"
	"bifacial-compare/internal/model"

	"github.com/gin-gonic/gin"
)

// ListModes handles GET /api/v1/modes
func ListModes(c *gin.Context) {
	modes := []models.ModeInfo{
		{
			Name:        string(model.ModeAlbedo),
			Description: "One fixed site, one scenario per ground surface albedo.",
			Parameters: []models.ParameterInfo{
				{Name: "site", Type: "object", Description: "Site with name, latitude, longitude and IANA timezone"},
				{Name: "scenarios[].name", Type: "string", Description: "Substance or surface"},
				{Name: "scenarios[].albedo", Type: "float", Description: "Ground albedo in [0, 1]"},
				{Name: "window", Type: "object", Description: "Simulated range", Default: "2021-06-21 to 2021-06-22, 1h"},
			},
		},
		{
			Name:        string(model.ModeLocation),
			Description: "One fixed albedo, one scenario per location.",
			Parameters: []models.ParameterInfo{
				{Name: "albedo", Type: "float", Description: "Ground albedo shared by every location", Default: 0.2},
				{Name: "scenarios[].name", Type: "string", Description: "Location name"},
				{Name: "scenarios[].latitude", Type: "float", Description: "Decimal degrees, north positive"},
				{Name: "scenarios[].longitude", Type: "float", Description: "Decimal degrees, east positive"},
				{Name: "scenarios[].timezone", Type: "string", Description: "IANA timezone"},
				{Name: "window", Type: "object", Description: "Simulated range", Default: "2024-03-01 00:00 to 23:00, 1h"},
			},
		},
	}
	c.JSON(http.StatusOK, gin.H{"modes": modes})
}
