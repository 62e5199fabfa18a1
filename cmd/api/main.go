// Package main is the entrypoint for the adwall API server.
package main

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"github.com/adwall/adwall/internal/asset"
	"github.com/adwall/adwall/internal/config"
	"github.com/adwall/adwall/internal/formconfig"
	"github.com/adwall/adwall/internal/handler"
	"github.com/adwall/adwall/internal/metrics"
	"github.com/adwall/adwall/internal/middleware"
	"github.com/adwall/adwall/internal/repository"
	"github.com/adwall/adwall/internal/server"
	"github.com/adwall/adwall/internal/service"
)

func main() {
	// A missing .env is fine; the environment still applies.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := initLogger(cfg)

	schema, err := formconfig.Load(cfg.FormConfigFile)
	if err != nil {
		logger.Error("failed to load form config", "error", err, "path", cfg.FormConfigFile)
		os.Exit(1)
	}

	if err := os.MkdirAll(filepath.Dir(cfg.AdsFile), 0o755); err != nil {
		logger.Error("failed to create data directory", "error", err)
		os.Exit(1)
	}

	inventory, err := repository.NewInventory(cfg.AdsFile)
	if err != nil {
		logger.Error("failed to open ad catalog", "error", err, "path", cfg.AdsFile)
		os.Exit(1)
	}
	logger.Info("ad catalog loaded", "path", cfg.AdsFile)

	assets, err := asset.NewStore(cfg.UploadsDir)
	if err != nil {
		logger.Error("failed to open upload store", "error", err, "path", cfg.UploadsDir)
		os.Exit(1)
	}

	recorder := metrics.NewInMemory()

	adService := service.NewAdService(inventory, assets, schema, service.Options{
		BaseURL:      cfg.BaseURL,
		Coefficient:  cfg.RankingCoefficient,
		MaxVideoSize: cfg.MaxVideoSize,
		Metrics:      recorder,
	})

	adHandler := handler.NewAdHandler(adService, logger)
	uploadHandler := handler.NewUploadHandler(adService, logger)
	formConfigHandler := handler.NewFormConfigHandler(schema)
	healthHandler := handler.NewHealthHandler(inventory, assets)
	metricsHandler := handler.NewMetricsHandler(recorder)

	r := setupRouter(adHandler, uploadHandler, formConfigHandler, healthHandler, metricsHandler, cfg, logger)

	srv := server.New(
		r,
		cfg.AppPort,
		cfg.ReadTimeout,
		cfg.WriteTimeout,
		cfg.ShutdownTimeout,
		logger,
	)

	logger.Info("starting server",
		"port", cfg.AppPort,
		"base_url", cfg.BaseURL,
		"env", cfg.AppEnv,
	)

	if err := srv.Run(); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

// initLogger initializes the slog logger based on configuration.
func initLogger(cfg *config.Config) *slog.Logger {
	var h slog.Handler

	opts := &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	}

	if cfg.LogFormat == "json" {
		h = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		h = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(h)
	slog.SetDefault(logger)

	return logger
}

// parseLogLevel converts string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// setupRouter configures the chi router with all routes and middleware.
func setupRouter(
	adHandler *handler.AdHandler,
	uploadHandler *handler.UploadHandler,
	formConfigHandler *handler.FormConfigHandler,
	healthHandler *handler.HealthHandler,
	metricsHandler *handler.MetricsHandler,
	cfg *config.Config,
	logger *slog.Logger,
) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recoverer(logger))

	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowedOrigins = cfg.GetCORSAllowedOrigins()
	r.Use(middleware.CORS(corsCfg))

	// Operational endpoints
	r.Get("/healthz", healthHandler.Healthz)
	r.Get("/readyz", healthHandler.Readyz)
	r.Get("/metrics", metricsHandler.Metrics)

	// Stored video files
	r.Get("/uploads/{ref}", uploadHandler.ServeVideo)

	r.Route("/api", func(r chi.Router) {
		r.Get("/form-config", formConfigHandler.Get)

		// Multipart upload routes carry video files and are bounded by
		// the per-file size limit instead of the JSON body cap.
		r.Post("/upload/video", uploadHandler.UploadVideos)

		r.Route("/ads", func(r chi.Router) {
			r.Get("/", adHandler.List)

			r.Group(func(r chi.Router) {
				r.Use(middleware.MaxBodySize(cfg.MaxRequestBodySize))
				r.Post("/", adHandler.Create)
				r.Put("/{id}", adHandler.Update)
				r.Delete("/{id}", adHandler.Delete)
				r.Patch("/{id}/click", adHandler.Click)
				r.Post("/{id}/copy", adHandler.Copy)
				r.Delete("/{id}/videos/{index}", adHandler.DetachVideo)
			})

			r.Post("/{id}/videos", adHandler.AttachVideos)
		})
	})

	// 404 and 405 handlers
	r.NotFound(handler.NotFound)
	r.MethodNotAllowed(handler.MethodNotAllowed)

	return r
}
