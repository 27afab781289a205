package server

import (
	"net/http"

	"github.com/devops863/kaizen-sourcing/internal/common/config"
	apperrors "github.com/devops863/kaizen-sourcing/internal/common/errors"
	"github.com/devops863/kaizen-sourcing/internal/common/logger"
	"github.com/devops863/kaizen-sourcing/internal/common/validation"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Dependencies struct {
	Applications ApplicationService
	Contract     *validation.Contract
	Checks       map[string]Pinger
	Logger       logger.Logger
}

// NewRouter builds the gin engine with every route and middleware installed.
func NewRouter(cfg config.ServerConfig, deps Dependencies) *gin.Engine {
	if deps.Contract == nil {
		deps.Contract = validation.Application()
	}
	if deps.Logger == nil {
		deps.Logger = logger.NewNoOpLogger()
	}

	r := gin.New()
	r.Use(
		gin.Recovery(),
		RequestID(),
		RequestLogger(deps.Logger),
		Metrics(),
		CORSMiddleware(cfg.AllowedOrigins),
	)

	r.GET("/health", Health)
	r.GET("/ready", Ready(deps.Checks))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	errHandler := apperrors.NewErrorHandler(deps.Logger)
	apps := NewApplicationHandler(deps.Applications, errHandler, cfg.MaxBodyBytes)

	api := r.Group(cfg.BasePath)
	{
		api.POST("/applications", apps.Create)
		api.GET("/applications", apps.List)
		api.GET("/schema/application", Schema(deps.Contract))
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"code": "NOT_FOUND", "message": "Route not found"})
	})

	return r
}
