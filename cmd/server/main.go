package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"balagh/internal/config"
	"balagh/internal/database"
	"balagh/internal/handlers"
	"balagh/internal/locale"
	"balagh/internal/metrics"
	"balagh/internal/security"
	"balagh/internal/service"
	"balagh/internal/storage"
)

func main() {
	// Load configuration
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	startup := handlers.NewStartupStatus(handlers.StepDatabase, handlers.StepMigrations, handlers.StepStore, handlers.StepServices)

	// The SQL database is only needed when it backs the state store
	var db *database.DB
	if cfg.StorageBackend == config.StorageSQL || cfg.StorageBackend == "" {
		startup.SetCurrentStep(handlers.StepDatabase)
		var err error
		db, err = database.InitializeWithConfig(cfg)
		if err != nil {
			log.Fatalf("Failed to initialize database: %v", err)
		}
		defer db.Close()
		log.Printf("Database connection established (type: %s)", cfg.DatabaseType)

		startup.SetCurrentStep(handlers.StepMigrations)
		if err := db.RunMigrations(cfg.MigrationsPath); err != nil {
			log.Fatalf("Failed to run migrations: %v", err)
		}
		log.Println("Migrations completed successfully")
	}
	startup.CompleteStep(handlers.StepDatabase)
	startup.CompleteStep(handlers.StepMigrations)

	startup.SetCurrentStep(handlers.StepStore)
	store, closeStore, err := storage.Open(ctx, cfg, db)
	if err != nil {
		log.Fatalf("Failed to open %s state store: %v", cfg.StorageBackend, err)
	}
	defer closeStore()
	log.Printf("State store ready (backend: %s)", cfg.StorageBackend)
	startup.CompleteStep(handlers.StepStore)

	startup.SetCurrentStep(handlers.StepServices)
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	recorder := metrics.NewCollector(reg)

	registry := service.NewRegistry(store, service.Options{
		Location:        cfg.Location(),
		AuthLatency:     cfg.AuthLatency,
		DefaultLanguage: locale.ParseOr(cfg.DefaultLanguage, locale.Default),
		Metrics:         recorder,
	}, cfg.StateIdleTTL)
	go registry.Run(ctx)

	emailService, err := service.NewEmailService(ctx, cfg.AWSRegion, cfg.SESFromEmail, cfg.SESFromName, cfg.AppBaseURL, cfg.Debug)
	if err != nil {
		log.Printf("Warning: email service unavailable: %v", err)
		emailService = nil
	}

	secret := cfg.AppSecret
	if secret == "" {
		log.Println("Warning: APP_SECRET not set, device cookies will not survive a restart")
		secret = uuid.NewString()
	}
	signer, err := security.NewDeviceSigner(secret)
	if err != nil {
		log.Fatalf("Failed to create device signer: %v", err)
	}
	csrf := security.NewCSRFGenerator(secret)
	rateLimiter := security.NewRateLimiter(cfg.AuthRateLimit, cfg.AuthRateWindow)
	defer rateLimiter.Close()

	oauthProviders := map[string]handlers.OAuthProvider{
		"google": {
			Name:  "google",
			Label: "Google",
			Config: &oauth2.Config{
				ClientID:     cfg.GoogleClientID,
				ClientSecret: cfg.GoogleClientSecret,
				Endpoint:     google.Endpoint,
				Scopes:       []string{"openid", "email", "profile"},
			},
			UserInfoURL: "https://www.googleapis.com/oauth2/v2/userinfo",
		},
		"apple": {
			Name:  "apple",
			Label: "Apple",
			Config: &oauth2.Config{
				ClientID:     cfg.AppleClientID,
				ClientSecret: cfg.AppleClientSecret,
				Endpoint: oauth2.Endpoint{
					AuthURL:  "https://appleid.apple.com/auth/authorize",
					TokenURL: "https://appleid.apple.com/auth/token",
				},
				Scopes: []string{"name", "email"},
			},
			UserInfoURL: handlers.AppleKeysURL,
			AuthParams: map[string]string{
				"response_mode": "query",
			},
		},
	}

	var mailer handlers.PasswordResetSender
	if emailService != nil {
		mailer = emailService
	}

	handler := handlers.NewRouter(&handlers.RouterDeps{
		Middleware:     handlers.NewMiddleware(registry, signer, csrf, rateLimiter, recorder, cfg.Debug),
		State:          handlers.NewStateHandler(csrf),
		Auth:           handlers.NewAuthHandler(mailer, oauthProviders, cfg.OAuthRedirectBaseURL),
		Setup:          handlers.NewSetupHandler(),
		Parent:         handlers.NewParentHandler(),
		Kid:            handlers.NewKidHandler(),
		Startup:        startup,
		MetricsHandler: metrics.Handler(reg),
	})
	startup.CompleteStep(handlers.StepServices)

	// Start server
	addr := ":" + cfg.ServerPort
	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on http://localhost%s", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed: %v", err)
		}
	}()
	startup.MarkReady()

	<-ctx.Done()
	log.Println("Server shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Graceful shutdown failed: %v", err)
	}
}
