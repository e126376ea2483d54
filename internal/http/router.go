package http

import (
	"net/http"

	"usina-backend/internal/handlers"
	"usina-backend/internal/middleware"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func NewRouter(
	authHandler *handlers.AuthHandler,
	userHandler *handlers.UserHandler,
	franchiseHandler *handlers.FranchiseHandler,
	phoneHandler *handlers.PhoneHandler,
	goalHandler *handlers.GoalHandler,
	distributionHandler *handlers.DistributionHandler,
	settingsHandler *handlers.SettingsHandler,
	leadHandler *handlers.LeadHandler,
	conversionHandler *handlers.ConversionHandler,
	serverHandler *handlers.ServerHandler,
	serverAdHandler *handlers.ServerAdHandler,
	webhookHandler *handlers.WebhookHandler,
	healthHandler *handlers.HealthHandler,
	authMiddleware *middleware.AuthMiddleware,
) *mux.Router {
	r := mux.NewRouter()

	// Public routes
	r.HandleFunc("/health", healthHandler.BasicHealth).Methods("GET")
	r.HandleFunc("/health/ready", healthHandler.ReadinessHealth).Methods("GET")
	r.Handle("/metrics", promhttp.Handler()).Methods("GET")
	r.HandleFunc("/api/auth/login", authHandler.Login).Methods("POST")

	// Bot ingestion endpoint, authenticated by network placement not JWT
	r.HandleFunc("/api/webhook/leads", webhookHandler.Receive).Methods("POST")

	// Current user
	authAPI := r.PathPrefix("/api/auth").Subrouter()
	authAPI.Use(authMiddleware.Authenticate)
	authAPI.HandleFunc("/me", authHandler.Me).Methods("GET")

	// Staff accounts (admin only)
	usersAPI := r.PathPrefix("/api/users").Subrouter()
	usersAPI.Use(authMiddleware.Authenticate)
	usersAPI.HandleFunc("", userHandler.List).Methods("GET")
	usersAPI.HandleFunc("", authMiddleware.RequireAdmin(http.HandlerFunc(userHandler.Signup)).ServeHTTP).Methods("POST")
	usersAPI.HandleFunc("/{id}/toggle", authMiddleware.RequireAdmin(http.HandlerFunc(userHandler.ToggleActive)).ServeHTTP).Methods("PATCH")

	// Franchises and their phone lines
	franchisesAPI := r.PathPrefix("/api/franchises").Subrouter()
	franchisesAPI.Use(authMiddleware.Authenticate)
	franchisesAPI.HandleFunc("", franchiseHandler.List).Methods("GET")
	franchisesAPI.HandleFunc("", franchiseHandler.Create).Methods("POST")
	franchisesAPI.HandleFunc("/{id}", franchiseHandler.Get).Methods("GET")
	franchisesAPI.HandleFunc("/{id}", franchiseHandler.Update).Methods("PUT")
	franchisesAPI.HandleFunc("/{id}/toggle", franchiseHandler.ToggleStatus).Methods("PATCH")
	franchisesAPI.HandleFunc("/{id}/phones", phoneHandler.ListByFranchise).Methods("GET")
	franchisesAPI.HandleFunc("/{id}/phones", phoneHandler.Create).Methods("POST")

	phonesAPI := r.PathPrefix("/api/phones").Subrouter()
	phonesAPI.Use(authMiddleware.Authenticate)
	phonesAPI.HandleFunc("/{id}", phoneHandler.Get).Methods("GET")
	phonesAPI.HandleFunc("/{id}", phoneHandler.Update).Methods("PUT")
	phonesAPI.HandleFunc("/{id}/toggle", phoneHandler.ToggleActive).Methods("PATCH")
	phonesAPI.HandleFunc("/{id}/reorder", phoneHandler.Reorder).Methods("PATCH")

	// Distribution goals
	goalsAPI := r.PathPrefix("/api/goals").Subrouter()
	goalsAPI.Use(authMiddleware.Authenticate)
	goalsAPI.HandleFunc("", goalHandler.List).Methods("GET")
	goalsAPI.HandleFunc("", goalHandler.Create).Methods("POST")
	goalsAPI.HandleFunc("/{id}", goalHandler.Get).Methods("GET")
	goalsAPI.HandleFunc("/{id}", goalHandler.Update).Methods("PUT")
	goalsAPI.HandleFunc("/{id}", goalHandler.Delete).Methods("DELETE")
	goalsAPI.HandleFunc("/{id}/reorder", goalHandler.Reorder).Methods("PATCH")

	// Daily ledger, progress and the manual override
	distributionAPI := r.PathPrefix("/api/distribution").Subrouter()
	distributionAPI.Use(authMiddleware.Authenticate)
	distributionAPI.HandleFunc("", distributionHandler.List).Methods("GET")
	distributionAPI.HandleFunc("/progress", distributionHandler.Progress).Methods("GET")
	distributionAPI.HandleFunc("/assign", distributionHandler.Assign).Methods("POST")
	distributionAPI.HandleFunc("/settings", settingsHandler.Get).Methods("GET")
	distributionAPI.HandleFunc("/settings/active-franchise", settingsHandler.SetActiveFranchise).Methods("PUT")

	// Leads and conversions
	leadsAPI := r.PathPrefix("/api/leads").Subrouter()
	leadsAPI.Use(authMiddleware.Authenticate)
	leadsAPI.HandleFunc("", leadHandler.List).Methods("GET")
	leadsAPI.HandleFunc("", leadHandler.Create).Methods("POST")
	leadsAPI.HandleFunc("/{id}", leadHandler.Get).Methods("GET")
	leadsAPI.HandleFunc("/{id}/status", leadHandler.UpdateStatus).Methods("PATCH")

	conversionsAPI := r.PathPrefix("/api/conversions").Subrouter()
	conversionsAPI.Use(authMiddleware.Authenticate)
	conversionsAPI.HandleFunc("", conversionHandler.List).Methods("GET")
	conversionsAPI.HandleFunc("", conversionHandler.Create).Methods("POST")

	// Ad servers and per-ad counters
	serversAPI := r.PathPrefix("/api/servers").Subrouter()
	serversAPI.Use(authMiddleware.Authenticate)
	serversAPI.HandleFunc("", serverHandler.List).Methods("GET")
	serversAPI.HandleFunc("", serverHandler.Create).Methods("POST")
	serversAPI.HandleFunc("/{id}", serverHandler.Get).Methods("GET")
	serversAPI.HandleFunc("/{id}", serverHandler.Update).Methods("PUT")
	serversAPI.HandleFunc("/{id}/ads", serverAdHandler.ListByServer).Methods("GET")
	serversAPI.HandleFunc("/{id}/ads", serverAdHandler.Create).Methods("POST")

	adsAPI := r.PathPrefix("/api/ads").Subrouter()
	adsAPI.Use(authMiddleware.Authenticate)
	adsAPI.HandleFunc("/{id}/counters", serverAdHandler.UpdateCounters).Methods("PATCH")

	return r
}
