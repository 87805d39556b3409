package handler

import (
	"github.com/GoPolymarket/kylingate/internal/config"
	"github.com/GoPolymarket/kylingate/internal/middleware"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"
)

type RouterOptions struct {
	Auth    config.AuthConfig
	Metrics config.MetricsConfig
	// Limiter throttles POST /. nil disables throttling.
	Limiter *rate.Limiter
}

func NewRouter(h *RPCHandler, opts RouterOptions) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	r.Use(middleware.RequestID())
	r.Use(middleware.MetricsMiddleware())
	r.Use(middleware.ErrorHandler())

	r.GET("/health", Health)
	if opts.Metrics.Enabled && opts.Metrics.Path != "" {
		r.GET(opts.Metrics.Path, gin.WrapH(promhttp.Handler()))
	}

	r.GET("/api_list", h.APIList)
	r.POST("/",
		middleware.AuthMiddleware(opts.Auth),
		middleware.RateLimitMiddleware(opts.Limiter),
		h.Call,
	)

	return r
}
