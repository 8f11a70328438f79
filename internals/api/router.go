package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/thebowwman/tripwatch/internals/config"
	"github.com/thebowwman/tripwatch/internals/geo"
	"github.com/thebowwman/tripwatch/internals/metrics"
)

var (
	tokenTTL           = 4 * time.Hour
	defaultToleranceKm = geo.DefaultToleranceKm
)

func RegisterRoutes(r *gin.Engine, cfg *config.Config) {
	if cfg != nil {
		tokenTTL = time.Duration(cfg.Auth.TokenTTLMinutes) * time.Minute
		defaultToleranceKm = cfg.Tracking.DefaultToleranceKm
	}

	r.Use(requestLogger(), metrics.Middleware())

	r.GET("/healthz", func(c *gin.Context) { c.Status(200) })
	r.GET("/metrics", metrics.Handler())

	v1 := r.Group("/v1")
	{
		v1.POST("/trips", handleCreateTrip)
		v1.GET("/ws/:tripID", handleWS)
		v1.GET("/trips/:tripID", handleGetTrip)
		v1.GET("/groups/:groupID/trips", handleListGroupTrips)
		v1.POST("/trips/:tripID/traveler/location", handlePostTravelerLoc)
		v1.GET("/trips/:tripID/traveler/location", handleGetTravelerLoc)
	}
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Debug().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("duration", time.Since(start)).
			Msg("request")
	}
}
