// Package api exposes the refresh trigger and health check over HTTP.
package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"votetopics/pkg/logging"
	"votetopics/pkg/pipeline"
)

// Runner executes one ingestion run.
type Runner interface {
	Run(ctx context.Context) (pipeline.Result, error)
}

// Pinger reports storage connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Options configures the router.
type Options struct {
	RateLimitRPS   float64
	RateLimitBurst int
	Logger         zerolog.Logger
}

// NewRouter wires the routes onto a new gin engine.
func NewRouter(runner Runner, store Pinger, opts Options) *gin.Engine {
	log := logging.Component(opts.Logger, "api")

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestLogger(log))
	router.Use(cors())

	router.GET("/health", healthCheck(store))

	group := router.Group("/api/v1/topics")
	{
		group.OPTIONS("/refresh", func(c *gin.Context) { c.Status(http.StatusOK) })
		group.POST("/refresh", rateLimit(rate.NewLimiter(rate.Limit(opts.RateLimitRPS), opts.RateLimitBurst)), refreshTopics(runner, log))
	}
	return router
}
