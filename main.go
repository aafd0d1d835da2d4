package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-discovery/pkg/auth"
	"github.com/ekaya-inc/ekaya-discovery/pkg/config"
	"github.com/ekaya-inc/ekaya-discovery/pkg/database"
	"github.com/ekaya-inc/ekaya-discovery/pkg/drafts"
	"github.com/ekaya-inc/ekaya-discovery/pkg/handlers"
	"github.com/ekaya-inc/ekaya-discovery/pkg/llm"
	"github.com/ekaya-inc/ekaya-discovery/pkg/logging"
	"github.com/ekaya-inc/ekaya-discovery/pkg/middleware"
	"github.com/ekaya-inc/ekaya-discovery/pkg/render"
	"github.com/ekaya-inc/ekaya-discovery/pkg/repositories"
	"github.com/ekaya-inc/ekaya-discovery/pkg/services"
)

// Version is set at build time via ldflags
var Version = "dev"

const (
	migrationsPath  = "migrations"
	shutdownTimeout = 15 * time.Second
)

func main() {
	// Load configuration
	cfg, err := config.Load(Version)
	if err != nil {
		// No logger yet.
		_, _ = os.Stderr.WriteString("Failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}
	cfg.ResolveDockerHosts()

	logger := newLogger(cfg)
	defer func() { _ = logger.Sync() }()

	logger.Info("Configuration loaded",
		zap.String("version", cfg.Version),
		zap.String("env", cfg.Env),
		zap.String("base_url", cfg.BaseURL),
		zap.String("database", cfg.Database.Host),
		zap.String("drafts_backend", cfg.Drafts.Backend),
		zap.String("narration_provider", cfg.Narration.Provider),
		zap.String("renderer_url", cfg.Renderer.URL),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal("Server failed", zap.String("error", logging.SanitizeError(err)))
	}
}

func newLogger(cfg *config.Config) *zap.Logger {
	var (
		logger *zap.Logger
		err    error
	)
	if cfg.IsLocal() {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		return zap.NewNop()
	}
	return logger.With(zap.String("service", "ekaya-discovery"))
}

func run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	// Database
	connStr := cfg.Database.ConnectionString()
	if err := database.Migrate(connStr, migrationsPath, logger); err != nil {
		return err
	}
	db, err := database.NewConnection(ctx, database.ConfigFrom(&cfg.Database))
	if err != nil {
		return err
	}
	defer db.Close()
	logger.Info("Connected to database",
		zap.String("dsn", logging.SanitizeConnectionString(connStr)))

	projectRepo := repositories.NewProjectRepository(db)
	adminRepo := repositories.NewAdminRepository(db)

	// Draft mirror
	mirror, err := drafts.New(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := mirror.Close(); err != nil {
			logger.Warn("Failed to close draft mirror", zap.Error(err))
		}
	}()

	// Admin authentication
	signer, err := auth.NewTokenSigner(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	if err != nil {
		return err
	}
	jar := auth.NewCookieJar(cfg.Auth.SessionSecret, auth.DeriveCookieSettings(cfg.BaseURL, cfg.CookieDomain), cfg.Auth.TokenTTL)
	authService := auth.NewAuthService(adminRepo, signer, jar, logger)
	if err := authService.Bootstrap(ctx, cfg.Auth.AdminEmail, cfg.Auth.AdminPassword); err != nil {
		return err
	}
	authMiddleware := auth.NewMiddleware(authService, logger)

	// Collaborators
	narrator, err := llm.NewNarrator(&cfg.Narration, logger)
	if err != nil {
		return err
	}
	renderer, err := render.NewKrokiClient(&cfg.Renderer, logger)
	if err != nil {
		return err
	}

	// Metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := services.NewMetrics(registry)

	// Services
	discoveryService := services.NewDiscoveryService(projectRepo, mirror, &cfg.Sessions, metrics, logger)
	reportService := services.NewReportService(discoveryService, renderer, metrics, logger)
	narrationService := services.NewNarrationService(discoveryService, narrator, cfg.Narration.Language, metrics, logger)

	// Routes
	mux := http.NewServeMux()
	handlers.NewHealthHandler(cfg, registry, logger).RegisterRoutes(mux)
	handlers.NewSessionsHandler(discoveryService, logger).RegisterRoutes(mux)
	handlers.NewReportHandler(reportService, narrationService, logger).RegisterRoutes(mux)
	handlers.NewAdminHandler(authService, discoveryService, logger).RegisterRoutes(mux, authMiddleware)

	var handler http.Handler = mux
	handler = middleware.Recoverer(logger)(handler)
	handler = middleware.RequestLogger(logger)(handler)

	server := &http.Server{
		Addr:              net.JoinHostPort(cfg.BindAddr, cfg.Port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("Starting ekaya-discovery",
			zap.String("addr", server.Addr),
			zap.Bool("tls", cfg.TLSCertPath != ""))
		var err error
		if cfg.TLSCertPath != "" {
			err = server.ListenAndServeTLS(cfg.TLSCertPath, cfg.TLSKeyPath)
		} else {
			err = server.ListenAndServe()
		}
		if !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warn("HTTP server shutdown incomplete", zap.Error(err))
	}
	// Flush pending draft writes before the mirror closes.
	if err := discoveryService.Shutdown(shutdownCtx); err != nil {
		logger.Warn("Draft writer did not drain", zap.Error(err))
	}
	return nil
}
