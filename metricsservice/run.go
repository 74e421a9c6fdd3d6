// Package metricsservice assembles and runs the Innometrics backend
// HTTP service.
package metricsservice

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/innometrics/innometrics-backend/internal/api"
	"github.com/innometrics/innometrics-backend/internal/api/recovery"
	"github.com/innometrics/innometrics-backend/internal/auth"
	"github.com/innometrics/innometrics-backend/internal/config"
	"github.com/innometrics/innometrics-backend/internal/health"
	"github.com/innometrics/innometrics-backend/internal/logger"
	"github.com/innometrics/innometrics-backend/internal/observability"
	"github.com/innometrics/innometrics-backend/internal/services"
	"github.com/innometrics/innometrics-backend/internal/store"
	"github.com/innometrics/innometrics-backend/internal/store/postgres"
	"github.com/innometrics/innometrics-backend/internal/store/sqlite"
)

// Run starts the metrics service HTTP server and blocks until shutdown or error.
func Run() error {
	log := logger.New("innometrics-backend")

	cfg, err := config.New()
	if err != nil {
		log.Error().Err(err).Msg("Failed to load configuration")
		return err
	}

	log.Info().
		Str("environment", string(cfg.Environment)).
		Str("db_driver", cfg.DBDriver).
		Int("http_port", cfg.HTTPPort).
		Msg("Innometrics backend starting")

	// Cancellable root context bound to SIGINT/SIGTERM
	ctx, stop := newServerContext()
	defer stop()

	st, err := newStore(cfg, log)
	if err != nil {
		log.Error().Stack().Err(err).Msg("Store adapter unavailable")
		return err
	}

	router := buildRouter(st, cfg, log)

	startHealthCheckers(ctx, cfg, log, st)

	server := newHTTPServer(ctx, cfg, router)
	errCh := serveHTTP(server, log, cfg)

	select {
	case <-ctx.Done():
		log.Info().Msg("Shutting down server")
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(ctxShutdown); err != nil {
			log.Error().Stack().Err(err).Msg("Server forced to shutdown")
			return err
		}
		log.Info().Msg("Server exited")
		return nil
	case err := <-errCh:
		log.Error().Stack().Err(err).Msg("HTTP server failed")
		return err
	}
}

// newStore constructs the configured store adapter.
func newStore(cfg *config.Config, log zerolog.Logger) (store.Store, error) {
	switch cfg.DBDriver {
	case "postgres":
		db, err := postgres.Open(cfg.PostgresDSN)
		if err != nil {
			return nil, err
		}
		log.Info().Msg("Using Postgres store")
		return postgres.NewWithDB(db), nil
	case "sqlite":
		st, err := sqlite.New(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		log.Info().Str("path", cfg.SQLitePath).Msg("Using SQLite store")
		return st, nil
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER: %s", cfg.DBDriver)
	}
}

// buildRouter wires HTTP routes to handlers.
func buildRouter(st store.Store, cfg *config.Config, log zerolog.Logger) *mux.Router {
	tokens := auth.Config{
		Secret: cfg.TokenSecret,
		TTL:    time.Duration(cfg.TokenTTLDays) * 24 * time.Hour,
	}

	userSvc := services.NewUserService(st)
	activitySvc := services.NewActivityService(st, log,
		time.Duration(cfg.BulkInsertTimeoutSeconds)*time.Second)
	projectSvc := services.NewProjectService(st)

	authHandler := api.NewAuthHandler(userSvc, tokens, log)
	userHandler := api.NewUserHandler(userSvc, log)
	activityHandler := api.NewActivityHandler(activitySvc, log)
	projectHandler := api.NewProjectHandler(projectSvc, log)
	healthHandler := api.NewHealthHandler()

	root := mux.NewRouter()
	root.Use(recovery.Middleware)
	root.Use(observability.Middleware)

	// Public
	root.HandleFunc("/api/users", userHandler.Register).Methods("POST")
	root.HandleFunc("/api/login", authHandler.Login).Methods("POST")
	root.HandleFunc("/api/health", healthHandler.CheckHealth).Methods("GET")
	root.Handle("/metrics", observability.MetricsHandler()).Methods("GET")

	// Protected
	authed := root.NewRoute().Subrouter()
	authed.Use(auth.NewMiddleware(auth.NewResolver(st.Users(), tokens)).Wrap)
	authed.HandleFunc("/api/logout", authHandler.Logout).Methods("POST")
	authed.HandleFunc("/api/users", userHandler.Delete).Methods("DELETE")
	authed.HandleFunc("/api/activities", activityHandler.Submit).Methods("POST")
	authed.HandleFunc("/api/activities", activityHandler.Find).Methods("GET")
	authed.HandleFunc("/api/activities/{activityId}", activityHandler.Delete).Methods("DELETE")
	authed.HandleFunc("/api/projects", projectHandler.Create).Methods("POST")
	authed.HandleFunc("/api/projects", projectHandler.List).Methods("GET")
	authed.HandleFunc("/api/projects/{projectId}/invitations", projectHandler.Invite).Methods("POST")
	authed.HandleFunc("/api/projects/{projectId}/activities", projectHandler.Activities).Methods("GET")

	return root
}

// startHealthCheckers starts the store checker and the service-level
// aggregator, and binds the health endpoint to it.
func startHealthCheckers(ctx context.Context, cfg *config.Config, log zerolog.Logger, st store.Store) *health.ServiceHealthChecker {
	probeTimeout := time.Duration(cfg.HealthProbeTimeoutSeconds) * time.Second
	interval := time.Duration(cfg.HealthIntervalSeconds) * time.Second

	storeChecker := store.NewStoreHealthChecker(st, log, probeTimeout)
	go storeChecker.Start(ctx, interval)

	svcHealth := health.NewServiceHealthChecker(log, storeChecker)
	go svcHealth.Start(ctx, interval)
	api.BindServiceHealth(svcHealth.IsHealthy)
	return svcHealth
}

func newHTTPServer(ctx context.Context, cfg *config.Config, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              cfg.GetHTTPAddr(),
		Handler:           handler,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}
}

func serveHTTP(server *http.Server, log zerolog.Logger, cfg *config.Config) <-chan error {
	errCh := make(chan error, 1)
	go func() {
		log.Info().Int("port", cfg.HTTPPort).Msg("HTTP server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()
	return errCh
}

// newServerContext returns a cancellable context that is cancelled on SIGINT/SIGTERM.
func newServerContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}
