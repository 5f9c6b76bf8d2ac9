package main

import (
	"github.com/gin-gonic/gin"

	"github.com/iolph/wpr/internal/middleware"
	"github.com/iolph/wpr/pkg/logger"
)

// registerRoutes sets up all HTTP routes on the given Gin engine.
func registerRoutes(r *gin.Engine, svc *appServices) {
	// Middleware
	r.Use(logger.GinLogger(), logger.GinRecovery())
	r.RedirectTrailingSlash = false
	r.RedirectFixedPath = false
	r.Use(middleware.CORS())

	// Rate limiter for the public submission route
	submitLimiter := middleware.NewRateLimiter(5, 10)

	// Health check
	r.GET("/health", svc.healthHandler.CheckHealth)

	// API routes
	api := r.Group("/api")
	{
		// Auth routes (public)
		auth := api.Group("/auth")
		{
			auth.POST("/login", svc.authHandler.Login)
		}

		// Report submission and the lookups the submission form needs (public)
		api.POST("/reports", submitLimiter.Middleware(), svc.reportHandler.Submit)
		api.PUT("/reports/:id", submitLimiter.Middleware(), svc.reportHandler.Update)
		api.GET("/reports/catalogs", svc.reportHandler.Catalogs)
		api.GET("/reports/teammates", svc.reportHandler.Teammates)
		api.GET("/reports/exists", svc.reportHandler.Exists)
		api.GET("/reports/employee/:name", svc.reportHandler.ListByEmployee)

		// Protected routes
		protected := api.Group("")
		protected.Use(middleware.AuthRequired())
		{
			// Auth
			protected.GET("/auth/me", svc.authHandler.Me)
			protected.POST("/auth/change-password", svc.authHandler.ChangePassword)

			// Dashboard
			protected.GET("/dashboard/stats", svc.dashboardHandler.GetStats)
			protected.POST("/dashboard/refresh", svc.dashboardHandler.Refresh)

			// Reports
			protected.GET("/reports", svc.reportHandler.List)
			protected.GET("/reports/:id", svc.reportHandler.Get)

			// Analyses
			protected.GET("/analyses/week", svc.analysisHandler.ByWeek)
			protected.GET("/analyses/:name", svc.analysisHandler.History)

			// Digests
			protected.GET("/digests", svc.digestHandler.List)
		}

		// Admin only routes
		admin := api.Group("")
		admin.Use(middleware.AuthRequired(), middleware.AdminRequired())
		{
			// Digest generation on demand
			admin.POST("/digests/generate", svc.digestHandler.Generate)

			// System configs
			admin.GET("/configs/:group", svc.configHandler.GetByGroup)
			admin.PUT("/configs", svc.configHandler.Update)

			// System logs
			admin.GET("/logs", svc.logHandler.List)
			admin.GET("/logs/modules", svc.logHandler.Modules)
		}
	}
}
