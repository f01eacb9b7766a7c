package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// RefreshResponse is returned by a successful refresh.
type RefreshResponse struct {
	Success   bool   `json:"success"`
	Processed int    `json:"processed"`
	Message   string `json:"message"`
}

// ErrorResponse carries a single aggregate error message.
type ErrorResponse struct {
	Error string `json:"error"`
}

// HealthResponse represents the health check response structure
type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
}

func refreshTopics(runner Runner, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		res, err := runner.Run(c.Request.Context())
		if err != nil {
			log.Error().Err(err).Msg("refresh failed")
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
			return
		}
		c.JSON(http.StatusOK, RefreshResponse{
			Success:   true,
			Processed: res.Processed,
			Message:   res.Message,
		})
	}
}

func healthCheck(store Pinger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if store == nil || store.Ping(c.Request.Context()) != nil {
			c.JSON(http.StatusServiceUnavailable, HealthResponse{Status: "unavailable", Database: "disconnected"})
			return
		}
		c.JSON(http.StatusOK, HealthResponse{Status: "ok", Database: "connected"})
	}
}
