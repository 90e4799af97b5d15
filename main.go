package main

//go:generate swag init

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/satheeshds/contactbook/config"
	"github.com/satheeshds/contactbook/db"
	"github.com/satheeshds/contactbook/handlers"
	"github.com/satheeshds/contactbook/metrics"
	"github.com/satheeshds/contactbook/service"
	"github.com/satheeshds/contactbook/store"
)

// @title           Contact Book API
// @version         1.0.0
// @description     API for creating, listing and deleting contacts.
// @host            localhost:5000
// @BasePath        /api

var version = "dev"

// Exit codes.
const (
	ExitSuccess     = 0
	ExitConfigError = 1
	ExitDBError     = 2
	ExitServerError = 3
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "", "Path to config file")
	showVersion := flag.Bool("version", false, "Print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("contactbook-server %s\n", version)
		return ExitSuccess
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		return ExitConfigError
	}

	logger := config.SetupLogger(cfg.Log)
	slog.SetDefault(logger)
	logger.Info("starting contact book server", "version", version, "config", *configPath)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	database, err := db.Open(ctx, cfg.Database)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		return ExitDBError
	}
	defer database.Close()

	if err := db.Migrate(ctx, database, cfg.Database.Driver); err != nil {
		logger.Error("failed to run migrations", "error", err)
		return ExitDBError
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	svc, err := service.New(store.NewContacts(database),
		service.WithLogger(logger),
		service.WithMetrics(m),
		service.WithDefaultLimit(cfg.Pagination.DefaultLimit),
	)
	if err != nil {
		logger.Error("failed to build contact service", "error", err)
		return ExitConfigError
	}

	router := handlers.NewRouter(handlers.NewHandler(svc, logger), handlers.RouterConfig{
		AuthUser:       cfg.Auth.User,
		AuthPass:       cfg.Auth.Password,
		Metrics:        m,
		MetricsHandler: promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}),
		Logger:         logger,
	})

	srv := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting HTTP server", "address", srv.Addr, "auth", cfg.Auth.Enabled())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		logger.Error("HTTP server failed", "error", err)
		return ExitServerError
	case <-ctx.Done():
		logger.Info("received shutdown signal")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", "error", err)
		return ExitServerError
	}

	logger.Info("server stopped")
	return ExitSuccess
}
