package routes

import (
	"context"
	"errors"
	"io"
	"net/http"

	"ridetrace/internal/model"
	"ridetrace/internal/service/ride"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// maxImageBytes bounds uploaded map images.
const maxImageBytes = 20 << 20

// SetupRouteHandlers registers the route reconstruction endpoints
func SetupRouteHandlers(router *gin.RouterGroup, svc *ride.Service, log zerolog.Logger) {
	router.POST("/routes", ReconstructRoute(svc, log))

	rides := router.Group("/rides")
	rides.GET("", ListRides(svc))
	rides.GET("/:id", GetRide(svc))
	rides.GET("/:id/geojson", GetRideGeoJSON(svc))
}

// StatusFor maps a pipeline error to an HTTP status
func StatusFor(err error) int {
	switch {
	case errors.Is(err, model.ErrInvalidImage):
		return http.StatusBadRequest
	case errors.Is(err, model.ErrSegmentationFailure),
		errors.Is(err, model.ErrEndpointNotFound),
		errors.Is(err, model.ErrLocatorUnresolved),
		errors.Is(err, model.ErrDegenerateCalibration):
		return http.StatusUnprocessableEntity
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	}
	return http.StatusInternalServerError
}

func rideResponse(rec *ride.Reconstruction) gin.H {
	return gin.H{
		"ride":     rec.Ride,
		"geojson":  rec.Ride.Feature(),
		"polyline": rec.Ride.Polyline(),
		"ascii":    rec.ASCII,
		"summary":  rec.Summary,
		"cached":   rec.Cached,
	}
}

// ReconstructRoute runs the pipeline on an uploaded map image
func ReconstructRoute(svc *ride.Service, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start, end := c.PostForm("start"), c.PostForm("end")
		if start == "" || end == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "form fields start and end are required"})
			return
		}
		fh, err := c.FormFile("image")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "form file image is required"})
			return
		}
		f, err := fh.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		defer f.Close()
		img, err := io.ReadAll(io.LimitReader(f, maxImageBytes))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		rec, err := svc.Reconstruct(c.Request.Context(), img, start, end)
		if err != nil {
			log.Warn().Err(err).Str("kind", model.Kind(err)).Str("file", fh.Filename).Msg("reconstruction failed")
			body := gin.H{"error": err.Error(), "kind": model.Kind(err)}
			if rec != nil && rec.ASCII != "" {
				body["ascii"] = rec.ASCII
			}
			c.JSON(StatusFor(err), body)
			return
		}
		c.JSON(http.StatusCreated, rideResponse(rec))
	}
}

// GetRide returns one reconstructed ride
func GetRide(svc *ride.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		r, ok := lookupRide(c, svc)
		if !ok {
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"ride":     r,
			"polyline": r.Polyline(),
		})
	}
}

// GetRideGeoJSON returns one ride as a GeoJSON feature
func GetRideGeoJSON(svc *ride.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		r, ok := lookupRide(c, svc)
		if !ok {
			return
		}
		c.JSON(http.StatusOK, r.Feature())
	}
}

// ListRides returns every ride held in memory as a FeatureCollection
func ListRides(svc *ride.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, ride.FeatureCollection(svc.Rides()))
	}
}

func lookupRide(c *gin.Context, svc *ride.Service) (*model.Ride, bool) {
	id := c.Param("id")
	r, ok, err := svc.Ride(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return nil, false
	}
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "ride not found", "id": id})
		return nil, false
	}
	return r, true
}
