package httpapi

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/fieldops/opsboard/internal/config"
	"github.com/fieldops/opsboard/internal/http/handlers"
	"github.com/fieldops/opsboard/internal/http/middleware"
	"github.com/fieldops/opsboard/internal/scheduler"
	"github.com/fieldops/opsboard/internal/upstream"
	"github.com/fieldops/opsboard/internal/view"

	_ "github.com/fieldops/opsboard/docs"
)

func Router(cfg config.Config, views *view.Registry, client upstream.Client, sched *scheduler.Scheduler, logger zerolog.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "X-Admin-Key", "X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if cfg.CORSAllowed == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = []string{cfg.CORSAllowed}
	}
	r.Use(cors.New(corsCfg))

	h := &handlers.Handler{
		Views:     views,
		Upstream:  client,
		Sched:     sched,
		Validator: validator.New(),
		Logger:    logger,
		AdminKey:  cfg.AdminKey,
	}

	r.GET("/healthz", h.Healthz)

	api := r.Group("/api")
	{
		api.GET("/dashboard/summary", h.Summary)
		api.GET("/dashboard/zones", h.Zones)
		api.GET("/dashboard/teams", h.Teams)
		api.GET("/dashboard/tickets", h.Tickets)
		api.GET("/dashboard/performance", h.Performance)
		api.GET("/dashboard/map", h.Map)
		api.GET("/dashboard/materials", h.Materials)
	}

	admin := api.Group("")
	admin.Use(middleware.AdminKey(cfg.AdminKey))
	{
		admin.POST("/tickets/:id/assign", h.AssignTicket)
		admin.PATCH("/assignments/:id/status", h.UpdateAssignmentStatus)
		admin.POST("/refresh/:task", h.Refresh)
	}

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return r
}
