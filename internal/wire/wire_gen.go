// Code generated manually. DO NOT EDIT.

//go:generate go run -mod=mod github.com/google/wire/cmd/wire
//go:build !wireinject
// +build !wireinject

package wire

import (
	"context"
	"fmt"

	"github.com/template-doctor/template-doctor/internal/app"
	"github.com/template-doctor/template-doctor/internal/config"
	"github.com/template-doctor/template-doctor/internal/db"
	"github.com/template-doctor/template-doctor/internal/gitutil"
	"github.com/template-doctor/template-doctor/internal/logger"
	"github.com/template-doctor/template-doctor/internal/server"
	"github.com/template-doctor/template-doctor/internal/server/handler"
	"github.com/template-doctor/template-doctor/internal/storage"
)

// InitializeApp creates and wires all application dependencies.
func InitializeApp(ctx context.Context) (*app.App, func(), error) {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	// Setup logger
	loggerConfig := provideLoggerConfig(cfg)
	logWriter := provideLogWriter(cfg)
	slogLogger := logger.NewLogger(loggerConfig, logWriter)

	// Database
	dbConfig := provideDBConfig(cfg)
	dbConn, dbCleanup, err := db.NewDatabase(dbConfig)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Storage
	store := storage.NewStore(dbConn.DB)

	// GitHub client
	ghClient, err := provideGitHubClient(ctx, cfg, slogLogger)
	if err != nil {
		dbCleanup()
		return nil, nil, fmt.Errorf("failed to create GitHub client: %w", err)
	}

	// Template repository preflight
	preflight := gitutil.NewPreflight(slogLogger)

	// Orchestrator
	orch := provideOrchestrator(ghClient, slogLogger)

	// Validators
	dockerValidator, err := provideDockerValidator(cfg, orch, preflight, store, slogLogger)
	if err != nil {
		dbCleanup()
		return nil, nil, fmt.Errorf("failed to create docker validator: %w", err)
	}
	ossfValidator, err := provideOSSFValidator(cfg, orch, store, slogLogger)
	if err != nil {
		dbCleanup()
		return nil, nil, fmt.Errorf("failed to create ossf validator: %w", err)
	}
	azdValidator, err := provideAzdValidator(cfg, orch, ghClient, preflight, store, slogLogger)
	if err != nil {
		dbCleanup()
		return nil, nil, fmt.Errorf("failed to create azd validator: %w", err)
	}

	// HTTP layer
	validationHandler := handler.NewValidationHandler(dockerValidator, ossfValidator, azdValidator, store, slogLogger)
	srv := server.NewServer(ctx, cfg, validationHandler, slogLogger)

	// App
	application := app.NewApp(ctx, cfg, dbConn, store, dockerValidator, ossfValidator, azdValidator, srv, slogLogger)

	cleanup := func() {
		dbCleanup()
	}

	return application, cleanup, nil
}
