package main

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/smartdevs17/steelflow-monitor/internal/aggregator"
	"github.com/smartdevs17/steelflow-monitor/internal/config"
	"github.com/smartdevs17/steelflow-monitor/internal/eventlog"
	"github.com/smartdevs17/steelflow-monitor/internal/gateway"
	"github.com/smartdevs17/steelflow-monitor/internal/metrics"
	"github.com/smartdevs17/steelflow-monitor/internal/sensitivity"
	"github.com/smartdevs17/steelflow-monitor/internal/server"
	"github.com/smartdevs17/steelflow-monitor/internal/storage"
	"github.com/smartdevs17/steelflow-monitor/pkg/utils"
)

// startupPingTimeout bounds the initial store connectivity check
const startupPingTimeout = 10 * time.Second

// Application owns the store and every component built on it
type Application struct {
	config         *config.Config
	logger         *logrus.Logger
	storage        storage.Storage
	metricsManager *metrics.Manager
	gateway        *gateway.Gateway
	aggregator     *aggregator.Aggregator
	reader         *eventlog.Reader
	writer         *sensitivity.Writer
	server         *server.HTTPServer
	migrate        bool
}

// NewApplication creates a new application instance
func NewApplication(cfg *config.Config, migrate bool) (*Application, error) {
	app := &Application{
		config:  cfg,
		migrate: migrate,
	}

	if err := app.initializeLogger(); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	if err := app.initializeComponents(); err != nil {
		app.closeStorage()
		return nil, fmt.Errorf("failed to initialize components: %w", err)
	}

	return app, nil
}

// initializeLogger initializes the application logger
func (app *Application) initializeLogger() error {
	logCfg := app.config.Logging

	if err := utils.InitLogger(logCfg.Level, logCfg.Format, logCfg.Output, logCfg.File); err != nil {
		return err
	}

	app.logger = utils.GetLogger()
	app.logger.WithFields(logrus.Fields{
		"level":  logCfg.Level,
		"format": logCfg.Format,
		"output": logCfg.Output,
	}).Info("Logger initialized")

	return nil
}

// initializeComponents initializes all application components
func (app *Application) initializeComponents() error {
	app.logger.Info("Initializing application components")

	if app.config.Server.EnableMetrics {
		app.metricsManager = metrics.NewManager()
	}

	if err := app.initializeStorage(); err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}

	app.initializeDomain()

	if err := app.initializeServer(); err != nil {
		return fmt.Errorf("failed to initialize server: %w", err)
	}

	app.logger.Info("All components initialized successfully")
	return nil
}

// initializeStorage opens the pool and checks the store is reachable
func (app *Application) initializeStorage() error {
	app.logger.WithField("type", app.config.Storage.Type).Info("Initializing storage layer")

	store, err := storage.NewStorage(&app.config.Storage)
	if err != nil {
		return fmt.Errorf("failed to create storage: %w", err)
	}

	if err := store.Connect(); err != nil {
		return fmt.Errorf("failed to connect to storage: %w", err)
	}
	app.storage = store

	ctx, cancel := context.WithTimeout(context.Background(), startupPingTimeout)
	defer cancel()
	if err := store.Ping(ctx); err != nil {
		return fmt.Errorf("store is unreachable: %w", err)
	}

	if app.migrate {
		if err := store.Migrate(); err != nil {
			return fmt.Errorf("failed to run storage migrations: %w", err)
		}
	}

	if app.metricsManager != nil {
		app.storage = storage.NewStorageWithMetrics(store, app.metricsManager)
	}

	app.logger.WithField("dialect", store.Dialect()).Info("Storage layer initialized successfully")
	return nil
}

// initializeDomain wires the gateway and everything that reads or writes through it
func (app *Application) initializeDomain() {
	dialect := app.storage.Dialect()

	app.gateway = gateway.New(app.storage, app.metricsManager)

	var opts []aggregator.Option
	if app.metricsManager != nil {
		opts = append(opts, aggregator.WithMetrics(app.metricsManager))
	}
	app.aggregator = aggregator.New(app.gateway, dialect, opts...)
	app.reader = eventlog.NewReader(app.gateway, dialect)
	app.writer = sensitivity.NewWriter(app.storage)
}

// initializeServer initializes the HTTP server
func (app *Application) initializeServer() error {
	serverCfg := &server.ServerConfig{
		Port:          app.config.Server.Port,
		Host:          app.config.Server.Host,
		CORSOrigin:    app.config.Server.CORSOrigin,
		ReadTimeout:   app.config.Server.ReadTimeout,
		WriteTimeout:  app.config.Server.WriteTimeout,
		EnableMetrics: app.config.Server.EnableMetrics,
	}

	var err error
	app.server, err = server.NewHTTPServer(serverCfg, app.storage, app.gateway, app.aggregator,
		app.reader, app.writer, app.metricsManager)
	if err != nil {
		return fmt.Errorf("failed to create HTTP server: %w", err)
	}

	return nil
}

// Start starts the application
func (app *Application) Start() error {
	app.logger.WithFields(logrus.Fields{
		"version":     AppVersion,
		"environment": app.config.App.Environment,
	}).Info("Starting SteelFlow Monitor")

	if err := app.server.Start(); err != nil {
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}

	app.logger.WithFields(logrus.Fields{
		"server_address": app.config.Server.Address(),
		"database":       app.config.Storage.Name,
		"dialect":        app.storage.Dialect(),
	}).Info("SteelFlow Monitor started successfully")

	return nil
}

// Stop drains the HTTP server and then the store pool
func (app *Application) Stop() error {
	app.logger.Info("Stopping SteelFlow Monitor")

	if app.server != nil {
		if err := app.server.Stop(); err != nil {
			app.logger.WithError(err).Error("Failed to stop HTTP server")
		}
	}

	app.closeStorage()

	app.logger.Info("SteelFlow Monitor stopped successfully")
	return nil
}

func (app *Application) closeStorage() {
	if app.storage == nil {
		return
	}
	if err := app.storage.Close(); err != nil && app.logger != nil {
		app.logger.WithError(err).Error("Failed to close storage")
	}
}
