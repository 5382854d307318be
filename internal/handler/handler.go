package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/maxviazov/courtside/internal/service"
)

// APIV1Prefix is the base path of the public game API.
const APIV1Prefix = "/api/v1"

// Register mounts the probes and the game API on r.
func Register(r *gin.Engine, repo Pinger, gameSvc service.GameService) {
	h := NewHealthHandler(repo)

	// Health probes
	r.GET("/live", h.Liveness)
	r.GET("/ready", h.Readiness)

	api := r.Group(APIV1Prefix)
	{
		health := api.Group("/health")
		{
			health.GET("/live", h.Liveness)
			health.GET("/ready", h.Readiness)
		}
		NewGameHandler(gameSvc).Register(api)
	}
}
