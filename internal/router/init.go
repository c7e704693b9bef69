package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/oksasatya/blood-donor-registry/internal/container"
	handlers "github.com/oksasatya/blood-donor-registry/internal/interface/http"
	"github.com/oksasatya/blood-donor-registry/internal/interface/middleware"
	"github.com/oksasatya/blood-donor-registry/internal/router/modules"
	"github.com/oksasatya/blood-donor-registry/pkg/response"
	"github.com/oksasatya/blood-donor-registry/pkg/validation"
)

const apiPrefix = "/api"

// InitModules builds the handlers from c and adds every feature module.
func InitModules(r *Registry, c *container.Container) {
	gate := middleware.Auth(c.JWT, c.AuthSvc, c.Logger, c.Metrics)

	r.Add(
		modules.NewAuthModule(handlers.NewAuthHandler(c.AuthSvc, c.Logger)),
		modules.NewUserModule(handlers.NewUserHandler(c.ProfileSvc, c.Logger), gate),
		modules.NewDonorModule(handlers.NewDonorHandler(c.DonorSvc, c.Logger)),
	)
	if c.Config.DebugMetricsEnabled {
		r.Add(ModuleFunc(func(rg *gin.RouterGroup) {
			rg.GET("/metrics", gin.WrapH(c.Metrics.Handler()))
		}))
	}
}

// NewEngine returns the fully wired HTTP handler for c.
func NewEngine(c *container.Container) *gin.Engine {
	validation.Init()

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware(), middleware.RealIP())
	r.Use(cors.New(corsConfig(c.Config.CORSOrigins())))
	if c.Metrics != nil {
		r.Use(c.Metrics.Middleware())
	}
	if c.Config.Env == "development" || c.Config.HTTPLogEnabled {
		r.Use(middleware.AccessLog(c.Logger))
	}
	r.NoRoute(func(ctx *gin.Context) {
		response.Error(ctx, http.StatusNotFound, "route not found", nil)
	})

	reg := NewRegistry(r, apiPrefix)
	InitModules(reg, c)
	routes := reg.RegisterAll()
	c.Logger.WithField("routes", len(routes)).Debug("routes registered")
	return r
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowOrigins:  origins,
		AllowMethods:  []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.HeaderRequestID},
		ExposeHeaders: []string{"Content-Length", middleware.HeaderRequestID},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 {
		cfg.AllowOrigins = nil
		cfg.AllowAllOrigins = true
	}
	return cfg
}
