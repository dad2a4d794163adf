// Package app initializes and orchestrates the main components of the
// Template Doctor service: configuration, the HTTP server and the validation
// history database.
package app

import (
	"context"
	"log/slog"

	"github.com/template-doctor/template-doctor/internal/config"
	"github.com/template-doctor/template-doctor/internal/db"
	"github.com/template-doctor/template-doctor/internal/server"
	"github.com/template-doctor/template-doctor/internal/storage"
	"github.com/template-doctor/template-doctor/internal/validate"
)

// App holds the main application components. Store and the validators are
// exported so the CLI can drive validations through the same wiring the
// server uses.
type App struct {
	ctx    context.Context
	cfg    *config.Config
	dbConn *db.DB
	server *server.Server
	logger *slog.Logger

	Store  storage.Store
	Docker *validate.DockerValidator
	OSSF   *validate.OSSFValidator
	Azd    *validate.AzdValidator
}

// NewApp sets up the application with all its dependencies.
func NewApp(ctx context.Context, cfg *config.Config, dbConn *db.DB, store storage.Store, docker *validate.DockerValidator, ossf *validate.OSSFValidator, azd *validate.AzdValidator, srv *server.Server, logger *slog.Logger) *App {
	return &App{
		ctx:    ctx,
		cfg:    cfg,
		dbConn: dbConn,
		server: srv,
		logger: logger,
		Store:  store,
		Docker: docker,
		OSSF:   ossf,
		Azd:    azd,
	}
}

// Start runs the HTTP server and blocks until shutdown.
func (a *App) Start() error {
	a.logger.Info("starting Template Doctor",
		"server_port", a.cfg.Server.Port,
		"workflows_repo", a.cfg.GitHub.Owner+"/"+a.cfg.GitHub.Repo,
	)

	if err := a.server.Start(); err != nil {
		a.logger.Error("failed to start HTTP server", "error", err)
		return err
	}
	return nil
}

// Stop shuts down the application cleanly. The database connection is closed
// by the injector's cleanup function, not here.
func (a *App) Stop() error {
	a.logger.Info("shutting down Template Doctor services")

	if err := a.server.Stop(); err != nil {
		a.logger.Error("error during HTTP server shutdown", "error", err)
		return err
	}

	a.logger.Info("Template Doctor stopped successfully")
	return nil
}
