package handlers

import (
	"errors"
	"fmt"
	"io/fs"
	"net/http"

	"bifacial-compare/internal/api/models"
	"bifacial-compare/internal/data"
	"bifacial-compare/internal/model"

	"github.com/gin-gonic/gin"
)

// ListLocations handles GET /api/v1/locations
// Query: sort=abs_longitude orders the list by distance from the prime meridian.
func ListLocations(c *gin.Context) {
	list, err := loadLocations(data.GetDefaultLocationsPath())
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error: models.ErrorDetail{
				Code:    "LOCATIONS_LOAD_ERROR",
				Message: fmt.Sprintf("Failed to load locations: %v", err),
			},
		})
		return
	}

	sites := list.Locations
	switch c.Query("sort") {
	case "":
	case "abs_longitude":
		sites = data.SortByAbsLongitude(sites)
	default:
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error: models.ErrorDetail{
				Code:    "INVALID_PARAM",
				Message: "sort must be abs_longitude",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"locations":  sites,
		"updated_at": list.UpdatedAt,
		"count":      len(sites),
	})
}

// loadLocations reads the location list; a missing file is an empty list.
func loadLocations(filePath string) (*data.LocationList, error) {
	list, err := data.LoadLocations(filePath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &data.LocationList{Locations: []model.Site{}}, nil
		}
		return nil, err
	}
	return list, nil
}
