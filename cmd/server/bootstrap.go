package main

import (
	"os"

	"github.com/iolph/wpr/internal/config"
	"github.com/iolph/wpr/internal/handlers"
	"github.com/iolph/wpr/internal/models"
	"github.com/iolph/wpr/internal/services"
	"github.com/iolph/wpr/internal/utils"
	"github.com/iolph/wpr/pkg/logger"
)

// appServices holds all initialized services and handlers needed by the application.
type appServices struct {
	cfg           *config.Config
	digestService *services.DigestService
	taskQueue     services.TaskQueue
	worker        *services.Worker

	authHandler      *handlers.AuthHandler
	reportHandler    *handlers.ReportHandler
	dashboardHandler *handlers.DashboardHandler
	analysisHandler  *handlers.AnalysisHandler
	digestHandler    *handlers.DigestHandler
	configHandler    *handlers.SystemConfigHandler
	logHandler       *handlers.SystemLogHandler
	healthHandler    *handlers.HealthHandler
}

// bootstrap initializes all application dependencies: database, services, schedulers.
func bootstrap(cfg *config.Config) *appServices {
	utils.SetJWTSecret(cfg.JWT.Secret)

	// Initialize database
	if err := models.InitDB(&cfg.Database); err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}

	// Auto migrate database
	if err := models.AutoMigrate(); err != nil {
		logger.Fatalf("Failed to migrate database: %v", err)
	}

	// Seed default data
	if err := models.SeedDefaultData(); err != nil {
		logger.Warn().Err(err).Msg("Failed to seed default data")
	}

	// Initialize system logger
	services.InitSystemLogger(models.GetDB())

	// Start system log cleanup scheduler
	services.StartLogCleanupScheduler(models.GetDB())

	// Core services
	db := models.GetDB()
	configService := services.NewSystemConfigService(db)
	rosterService := services.NewRosterService(&cfg.Roster)
	reportService := services.NewReportService(db)
	analysisService := services.NewAnalysisService(db, configService)
	aiService := services.NewAIService(&cfg.AI)
	emailService := services.NewEmailService(&cfg.Email)
	dashboardService := services.NewDashboardService(reportService, configService)

	// Initialize task queue (uses Redis if enabled, otherwise sync mode)
	taskQueue := services.InitTaskQueue(cfg)
	processor := services.ProcessAnalysisTask(reportService, analysisService)
	if syncQueue, ok := taskQueue.(*services.SyncQueue); ok {
		syncQueue.SetProcessor(processor)
	}

	// Start async worker if Redis is enabled
	var worker *services.Worker
	if cfg.Redis.Enabled {
		worker = services.InitWorker(&cfg.Redis)
		if worker != nil {
			worker.SetProcessor(processor)
			worker.Start()
		}
	}

	submissionService := services.NewSubmissionService(reportService, rosterService, aiService, emailService, taskQueue)

	// Weekly team digest scheduler
	digestService := services.NewDigestService(db, reportService, rosterService, emailService, configService)
	digestService.StartScheduler()

	// Create default admin user
	authService := services.NewAuthService(db, &cfg.JWT)
	adminUser := os.Getenv("ADMIN_USERNAME")
	if adminUser == "" {
		adminUser = "admin"
	}
	adminPass := os.Getenv("ADMIN_PASSWORD")
	if adminPass == "" {
		adminPass = "admin"
	}
	if err := authService.CreateAdminIfNotExists(adminUser, adminPass); err != nil {
		logger.Warn().Err(err).Msg("Failed to create admin user")
	}

	return &appServices{
		cfg:           cfg,
		digestService: digestService,
		taskQueue:     taskQueue,
		worker:        worker,

		authHandler:      handlers.NewAuthHandler(authService),
		reportHandler:    handlers.NewReportHandler(submissionService, reportService, rosterService, dashboardService),
		dashboardHandler: handlers.NewDashboardHandler(dashboardService),
		analysisHandler:  handlers.NewAnalysisHandler(analysisService),
		digestHandler:    handlers.NewDigestHandler(digestService),
		configHandler:    handlers.NewSystemConfigHandler(configService),
		logHandler:       handlers.NewSystemLogHandler(services.NewSystemLogService(db)),
		healthHandler:    handlers.NewHealthHandler(cfg),
	}
}

// shutdown gracefully stops all services.
func (s *appServices) shutdown() {
	s.digestService.StopScheduler()
	logger.Info().Msg("Schedulers stopped")

	if s.worker != nil {
		s.worker.Stop()
	}
	if s.taskQueue != nil {
		s.taskQueue.Close()
	}
}
