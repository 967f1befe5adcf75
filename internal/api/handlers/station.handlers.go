package routes

import (
	"net/http"
	"strconv"

	"ridetrace/internal/model"
	"ridetrace/internal/service/gazetteer"
	"ridetrace/internal/service/locator"

	"github.com/gin-gonic/gin"
)

// SetupStationHandlers registers the station lookup endpoints
func SetupStationHandlers(router *gin.RouterGroup, gaz *gazetteer.Gazetteer, loc *locator.Locator) {
	stations := router.Group("/stations")

	stations.GET("", ListStations(gaz))
	stations.GET("/match", MatchStation(loc))
	stations.GET("/nearest", NearestStation(gaz))
}

// ListStations returns the gazetteer as a GeoJSON FeatureCollection
func ListStations(gaz *gazetteer.Gazetteer) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gaz.FeatureCollection())
	}
}

// MatchStation resolves a free-text station name
func MatchStation(loc *locator.Locator) gin.HandlerFunc {
	return func(c *gin.Context) {
		q := c.Query("q")
		if q == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "missing query parameter q"})
			return
		}
		m, ok := loc.Locate(q)
		if m.Name == "" {
			c.JSON(http.StatusNotFound, gin.H{"error": "no stations loaded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"match":     m,
			"resolved":  ok,
			"min_score": loc.MinScore(),
		})
	}
}

// NearestStation returns the dock closest to a coordinate
func NearestStation(gaz *gazetteer.Gazetteer) gin.HandlerFunc {
	return func(c *gin.Context) {
		lat, errLat := strconv.ParseFloat(c.Query("lat"), 64)
		lon, errLon := strconv.ParseFloat(c.Query("lon"), 64)
		if errLat != nil || errLon != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "lat and lon must be numbers"})
			return
		}
		st, ok := gaz.Nearest(model.GeoPoint{Lat: lat, Lon: lon})
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "no stations loaded"})
			return
		}
		c.JSON(http.StatusOK, st)
	}
}
