package wire

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/google/wire"

	"github.com/template-doctor/template-doctor/internal/app"
	"github.com/template-doctor/template-doctor/internal/config"
	"github.com/template-doctor/template-doctor/internal/core"
	"github.com/template-doctor/template-doctor/internal/db"
	"github.com/template-doctor/template-doctor/internal/github"
	"github.com/template-doctor/template-doctor/internal/gitutil"
	"github.com/template-doctor/template-doctor/internal/logger"
	"github.com/template-doctor/template-doctor/internal/orchestrator"
	"github.com/template-doctor/template-doctor/internal/server"
	"github.com/template-doctor/template-doctor/internal/server/handler"
	"github.com/template-doctor/template-doctor/internal/storage"
	"github.com/template-doctor/template-doctor/internal/validate"
)

var AppSet = wire.NewSet(
	app.NewApp,
	server.NewServer,
	handler.NewValidationHandler,
	config.LoadConfig,
	db.NewDatabase,
	storage.NewStore,
	gitutil.NewPreflight,
	provideGitHubClient,
	provideOrchestrator,
	provideDockerValidator,
	provideOSSFValidator,
	provideAzdValidator,
	provideLoggerConfig,
	provideLogWriter,
	provideDBConfig,
	provideSlogLogger,
)

func provideGitHubClient(ctx context.Context, cfg *config.Config, logger *slog.Logger) (github.Client, error) {
	return github.NewClientFromConfig(ctx, cfg.GitHub, logger)
}

func provideOrchestrator(gh github.Client, logger *slog.Logger) *orchestrator.Orchestrator {
	return orchestrator.New(gh, logger)
}

func provideDockerValidator(cfg *config.Config, orch *orchestrator.Orchestrator, preflight *gitutil.Preflight, store storage.Store, logger *slog.Logger) (*validate.DockerValidator, error) {
	target, err := cfg.TargetFor(core.ValidationDocker)
	if err != nil {
		return nil, err
	}
	return validate.NewDockerValidator(orch, target, preflight, store, logger), nil
}

func provideOSSFValidator(cfg *config.Config, orch *orchestrator.Orchestrator, store storage.Store, logger *slog.Logger) (*validate.OSSFValidator, error) {
	target, err := cfg.TargetFor(core.ValidationOSSF)
	if err != nil {
		return nil, err
	}
	return validate.NewOSSFValidator(orch, target, store, logger), nil
}

func provideAzdValidator(cfg *config.Config, orch *orchestrator.Orchestrator, gh github.Client, preflight *gitutil.Preflight, store storage.Store, logger *slog.Logger) (*validate.AzdValidator, error) {
	target, err := cfg.TargetFor(core.ValidationAzd)
	if err != nil {
		return nil, err
	}
	return validate.NewAzdValidator(orch, gh, target, preflight, store, logger), nil
}

func provideLoggerConfig(cfg *config.Config) logger.Config {
	return cfg.Logging
}

func provideLogWriter(cfg *config.Config) io.Writer {
	switch cfg.Logging.Output {
	case "stderr":
		return os.Stderr
	case "file":
		f, _ := os.OpenFile("template-doctor.log", os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0600)
		return f
	default:
		return os.Stdout
	}
}

func provideDBConfig(cfg *config.Config) *config.DBConfig {
	return &cfg.Database
}

func provideSlogLogger(loggerConfig logger.Config, writer io.Writer) *slog.Logger {
	return logger.NewLogger(loggerConfig, writer)
}
