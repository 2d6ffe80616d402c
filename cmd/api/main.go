// Package main provides the entrypoint for the tripsense API server.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/tripsense/tripsense/internal/api"
	"github.com/tripsense/tripsense/internal/api/handler"
	"github.com/tripsense/tripsense/internal/api/middleware"
	"github.com/tripsense/tripsense/internal/api/models"
	"github.com/tripsense/tripsense/internal/crime"
	"github.com/tripsense/tripsense/internal/crime/socrata"
	"github.com/tripsense/tripsense/internal/database"
	"github.com/tripsense/tripsense/internal/geocode"
	"github.com/tripsense/tripsense/internal/geocode/nominatim"
	"github.com/tripsense/tripsense/internal/planner"
	"github.com/tripsense/tripsense/internal/planner/gemini"
	"github.com/tripsense/tripsense/internal/provider/resilience"
	"github.com/tripsense/tripsense/internal/snapshot"
	"github.com/tripsense/tripsense/internal/telemetry"
	"github.com/tripsense/tripsense/internal/weather"
	"github.com/tripsense/tripsense/internal/weather/openweathermap"
)

// Version and BuildTime are set at compile time via ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	const serviceName = "tripsense-api"

	// Local development convenience; ignored when the file is absent.
	_ = godotenv.Load()

	// Setup structured logging
	log := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", serviceName).
		Str("version", Version).
		Logger()

	log.Info().
		Str("build_time", BuildTime).
		Msg("starting tripsense API")

	// Get configuration from environment
	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}

	otlpEndpoint := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")
	if otlpEndpoint == "" {
		otlpEndpoint = "localhost:4317"
	}

	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "development"
	}

	// Initialize OpenTelemetry
	ctx := context.Background()
	telemetryEnabled := os.Getenv("OTEL_ENABLED") == "true"

	tp, err := telemetry.Init(ctx, telemetry.Config{
		ServiceName:    serviceName,
		ServiceVersion: Version,
		Environment:    env,
		OTLPEndpoint:   otlpEndpoint,
		Enabled:        telemetryEnabled,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize telemetry")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := tp.Shutdown(shutdownCtx); shutdownErr != nil {
			log.Error().Err(shutdownErr).Msg("failed to shutdown telemetry")
		}
	}()

	if telemetryEnabled {
		log.Info().
			Str("otlp_endpoint", otlpEndpoint).
			Msg("OpenTelemetry initialized")
	}

	// Initialize metrics
	metrics, err := middleware.NewMetrics()
	if err != nil {
		log.Error().Err(err).Msg("failed to initialize metrics")
		os.Exit(1) //nolint:gocritic // intentional exit, telemetry cleanup is best-effort
	}

	readyChecks := map[string]handler.ReadyCheck{}

	// Snapshot storage: Postgres when configured, in-memory otherwise.
	var snapshots snapshot.Repository = snapshot.NewMemoryRepository()
	if os.Getenv("SNAPSHOT_BACKEND") == "postgres" {
		dbConfig := database.ConfigFromEnv()
		pool, connErr := database.Connect(ctx, dbConfig)
		if connErr != nil {
			log.Fatal().Err(connErr).Msg("failed to connect to database")
		}
		defer pool.Close()
		log.Info().
			Str("host", dbConfig.Host).
			Int("port", dbConfig.Port).
			Str("database", dbConfig.Database).
			Msg("database connected")

		snapshots = snapshot.NewPostgresRepository(pool)
		readyChecks["database"] = pool.Ping
	} else {
		log.Info().Msg("using in-memory snapshot storage")
	}

	// All outbound HTTP goes through resilient clients registered here;
	// the readiness endpoint reports their circuit state.
	registry := resilience.NewRegistry()
	newHTTPClient := func(name string) *resilience.Client {
		clientCfg := resilience.DefaultClientConfig(name)
		clientCfg.Registry = registry
		return resilience.NewClient(clientCfg)
	}

	providerMetrics, err := middleware.NewProviderMetrics(nominatim.ProviderName)
	if err != nil {
		log.Error().Err(err).Msg("failed to initialize provider metrics")
		os.Exit(1)
	}

	// Geocoding via Nominatim; no credentials needed, only a user agent.
	nominatimClient := nominatim.NewClient(nominatim.ClientConfig{
		UserAgent:  os.Getenv("NOMINATIM_USER_AGENT"),
		HTTPClient: newHTTPClient(nominatim.ProviderName),
		Logger:     log,
	})
	geocodeService := geocode.NewService(geocode.ServiceConfig{
		Provider: nominatimClient,
		Logger:   log,
		Metrics:  providerMetrics,
	})
	log.Info().Msg("geocoding service initialized")

	// Weather is optional; the overlay degrades to a note without it.
	var weatherProvider weather.Provider
	if owmKey := os.Getenv("WEATHER_API_KEY"); owmKey != "" {
		weatherProvider = openweathermap.NewClient(openweathermap.ClientConfig{
			APIKey:     owmKey,
			HTTPClient: newHTTPClient(openweathermap.ProviderName),
			Logger:     log,
		})
		log.Info().Msg("weather provider initialized")
	} else {
		log.Warn().Msg("WEATHER_API_KEY not set - weather overlays will be empty")
	}
	weatherService := weather.NewService(weather.ServiceConfig{
		Provider: weatherProvider,
		Logger:   log,
	})

	// Anonymous Socrata access works; an app token raises rate limits.
	socrataClient := socrata.NewClient(socrata.ClientConfig{
		DatasetID:  os.Getenv("CRIME_DATASET_ID"),
		AppToken:   os.Getenv("SOCRATA_APP_TOKEN"),
		HTTPClient: newHTTPClient(socrata.ProviderName),
		Logger:     log,
	})
	crimeService := crime.NewService(crime.ServiceConfig{
		Dataset:  socrataClient,
		Geocoder: geocodeService,
		Logger:   log,
	})
	log.Info().Msg("crime overlay service initialized")

	// Without a model key the planning endpoints return 503 while the
	// overlay endpoints keep working.
	var planProvider planner.Provider
	if geminiKey := os.Getenv("GOOGLE_API_KEY"); geminiKey != "" {
		geminiClient, clientErr := gemini.NewClient(ctx, gemini.ClientConfig{
			APIKey: geminiKey,
			Model:  os.Getenv("GEMINI_MODEL"),
			Logger: log,
		})
		if clientErr != nil {
			log.Fatal().Err(clientErr).Msg("failed to initialize gemini client")
		}
		defer geminiClient.Close()
		planProvider = geminiClient
		log.Info().Msg("planning provider initialized")
	} else {
		log.Warn().Msg("GOOGLE_API_KEY not set - planning endpoints will be unavailable")
	}
	plannerService := planner.NewService(planner.ServiceConfig{
		Provider: planProvider,
		Logger:   log,
	})

	weatherConfigured := weatherProvider != nil
	planConfigured := planProvider != nil
	providers := func() []models.ProviderStatus {
		statuses := make([]models.ProviderStatus, 0, 4)
		for _, h := range registry.GetAllHealth() {
			statuses = append(statuses, models.ProviderStatus{
				Provider:   h.Name,
				Status:     circuitStatus(h),
				Configured: true,
				Message:    h.LastError,
			})
		}
		if !weatherConfigured {
			statuses = append(statuses, notConfigured(openweathermap.ProviderName))
		}
		if planConfigured {
			statuses = append(statuses, models.ProviderStatus{
				Provider:   gemini.ProviderName,
				Status:     models.HealthStatusOK,
				Configured: true,
			})
		} else {
			statuses = append(statuses, notConfigured(gemini.ProviderName))
		}
		return statuses
	}

	// Create router with configuration
	router := api.NewRouter(api.RouterConfig{
		Version:        Version,
		BuildTime:      BuildTime,
		Logger:         log,
		ServiceName:    serviceName,
		Metrics:        metrics,
		PlannerService: plannerService,
		WeatherService: weatherService,
		CrimeService:   crimeService,
		Snapshots:      snapshots,
		ReadyChecks:    readyChecks,
		Providers:      providers,
	})

	// Create HTTP server. The write timeout is generous because planning
	// calls wait on the model provider.
	server := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info().
			Str("addr", server.Addr).
			Msg("server listening")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
		os.Exit(1)
	}

	log.Info().Msg("server stopped")
}

// circuitStatus maps a circuit breaker state to a health status.
// A tripped circuit degrades the provider; it does not fail readiness.
func circuitStatus(h *resilience.ProviderHealth) models.HealthStatus {
	switch {
	case h.IsUnhealthy():
		return models.HealthStatusFail
	case h.IsDegraded():
		return models.HealthStatusDegraded
	default:
		return models.HealthStatusOK
	}
}

func notConfigured(name string) models.ProviderStatus {
	return models.ProviderStatus{
		Provider: name,
		Status:   models.HealthStatusDegraded,
		Message:  "not configured",
	}
}
