package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"usina-backend/internal/auth"
	"usina-backend/internal/cache"
	"usina-backend/internal/config"
	"usina-backend/internal/database"
	"usina-backend/internal/handlers"
	"usina-backend/internal/health"
	apihttp "usina-backend/internal/http"
	"usina-backend/internal/middleware"
	"usina-backend/internal/monitoring"
	"usina-backend/internal/repositories"
	"usina-backend/internal/services"
)

func main() {
	cfg := config.Load()

	pool, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	migrator := database.NewMigrator(pool, "migrations")
	if err := migrator.RunMigrations(ctx); err != nil {
		cancel()
		log.Fatalf("Failed to run migrations: %v", err)
	}
	cancel()

	if err := cache.Init(cfg); err != nil {
		log.Printf("[Redis] cache unavailable, continuing without it: %v", err)
	}

	// Repositories
	userRepo := repositories.NewUserRepository(pool)
	franchiseRepo := repositories.NewFranchiseRepository(pool)
	phoneRepo := repositories.NewFranchisePhoneRepository(pool)
	goalRepo := repositories.NewDistributionGoalRepository(pool)
	ledgerRepo := repositories.NewDistributionLedgerRepository(pool)
	settingsRepo := repositories.NewDistributionSettingsRepository(pool)
	webhookEventRepo := repositories.NewWebhookEventRepository(pool)
	leadRepo := repositories.NewLeadRepository(pool)
	conversionRepo := repositories.NewConversionRepository(pool)
	serverRepo := repositories.NewServerRepository(pool)
	serverAdRepo := repositories.NewServerAdRepository(pool)

	// Services
	jwtManager := auth.NewJWTManager(cfg)
	userService := services.NewUserService(userRepo, jwtManager)
	distributionService := services.NewDistributionService(goalRepo, phoneRepo, ledgerRepo, settingsRepo)
	goalService := services.NewGoalService(goalRepo, franchiseRepo)
	phoneService := services.NewPhoneService(phoneRepo, franchiseRepo, cfg.Distribution.DefaultRegion)
	leadService := services.NewLeadService(leadRepo, conversionRepo, distributionService)
	conversionService := services.NewConversionService(conversionRepo, distributionService)
	settingsService := services.NewSettingsService(settingsRepo, franchiseRepo)
	serverAdService := services.NewServerAdService(serverAdRepo, serverRepo, distributionService)
	webhookService := services.NewWebhookService(
		serverRepo, serverAdRepo, webhookEventRepo, franchiseRepo, phoneRepo,
		distributionService, distributionService, leadRepo, conversionRepo,
		cfg.Distribution.DefaultRegion,
	)

	// Handlers
	authHandler := handlers.NewAuthHandler(userService)
	userHandler := handlers.NewUserHandler(userService)
	franchiseHandler := handlers.NewFranchiseHandler(franchiseRepo)
	phoneHandler := handlers.NewPhoneHandler(phoneService)
	goalHandler := handlers.NewGoalHandler(goalService)
	distributionHandler := handlers.NewDistributionHandler(distributionService)
	settingsHandler := handlers.NewSettingsHandler(settingsService)
	leadHandler := handlers.NewLeadHandler(leadService)
	conversionHandler := handlers.NewConversionHandler(conversionService)
	serverHandler := handlers.NewServerHandler(serverRepo)
	serverAdHandler := handlers.NewServerAdHandler(serverAdService)
	webhookHandler := handlers.NewWebhookHandler(webhookService)
	healthHandler := handlers.NewHealthHandler(health.NewHealthChecker(pool))

	authMiddleware := middleware.NewAuthMiddleware(jwtManager, userRepo)

	router := apihttp.NewRouter(
		authHandler, userHandler, franchiseHandler, phoneHandler, goalHandler,
		distributionHandler, settingsHandler, leadHandler, conversionHandler,
		serverHandler, serverAdHandler, webhookHandler, healthHandler,
		authMiddleware,
	)

	handler := middleware.PanicRecovery(
		middleware.MetricsMiddleware(
			middleware.NewCORS(cfg)(router),
		),
	)

	// Ops dashboard on its own port
	monitoringServer := monitoring.NewMonitoringServer(pool, distributionService, cfg.Server.MonitoringPort)
	go monitoringServer.Start()

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	log.Printf("Server running on %s", addr)
	if err := srv.ListenAndServe(); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
