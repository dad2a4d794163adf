// Package config loads and validates the application's configuration from the
// environment, an optional .env file, and an optional workflow targets file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/spf13/viper"

	"github.com/template-doctor/template-doctor/internal/core"
	"github.com/template-doctor/template-doctor/internal/logger"
)

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port string
}

// GitHubConfig holds the credentials and workflow coordinates for the remote
// workflow API. Either Token (PAT) or AppID+PrivateKeyPath (GitHub App) must
// be configured.
type GitHubConfig struct {
	Token          string
	AppID          int64
	InstallationID int64
	PrivateKeyPath string

	Owner             string
	Repo              string
	Branch            string
	DockerWorkflow    string
	OSSFWorkflow      string
	AzdWorkflow       string
	WorkflowsFilePath string
}

// DBConfig holds Postgres connection settings for the validation history store.
type DBConfig struct {
	Host            string
	Port            int
	Username        string
	Password        string
	Database        string
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

// Config holds the application's configuration values.
type Config struct {
	Server   ServerConfig
	Logging  logger.Config
	GitHub   GitHubConfig
	Database DBConfig
}

// LoadConfig reads configuration from environment variables and a .env file,
// sets sensible defaults, and validates required fields. It uses the Viper
// library to handle configuration loading and precedence.
func LoadConfig() (*Config, error) {
	viper.SetConfigFile(".env")

	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("LOG_FORMAT", "text")
	viper.SetDefault("LOG_OUTPUT", "stdout")
	viper.SetDefault("GITHUB_REPO_BRANCH", "main")
	viper.SetDefault("GITHUB_WORKFLOW_FILE_DOCKER", "validation-docker.yml")
	viper.SetDefault("GITHUB_WORKFLOW_FILE_OSSF", "validation-ossf.yml")
	viper.SetDefault("GITHUB_WORKFLOW_FILE_AZD", "validation-template.yml")
	viper.SetDefault("WORKFLOWS_FILE", "")
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", 5432)
	viper.SetDefault("DB_USER", "postgres")
	viper.SetDefault("DB_NAME", "template_doctor")
	viper.SetDefault("DB_CONN_MAX_LIFETIME", "30m")
	viper.SetDefault("DB_CONN_MAX_IDLE_TIME", "5m")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			// A .env file is optional; a malformed one is not.
			return nil, fmt.Errorf("failed to read .env file: %w", err)
		}
	}

	cfg := &Config{
		Server: ServerConfig{
			Port: viper.GetString("SERVER_PORT"),
		},
		Logging: logger.Config{
			Level:  viper.GetString("LOG_LEVEL"),
			Format: viper.GetString("LOG_FORMAT"),
			Output: viper.GetString("LOG_OUTPUT"),
		},
		GitHub: GitHubConfig{
			Token:             viper.GetString("GH_WORKFLOW_TOKEN"),
			AppID:             viper.GetInt64("GITHUB_APP_ID"),
			InstallationID:    viper.GetInt64("GITHUB_APP_INSTALLATION_ID"),
			PrivateKeyPath:    viper.GetString("GITHUB_APP_PRIVATE_KEY_PATH"),
			Owner:             viper.GetString("GITHUB_REPO_OWNER"),
			Repo:              viper.GetString("GITHUB_REPO_NAME"),
			Branch:            viper.GetString("GITHUB_REPO_BRANCH"),
			DockerWorkflow:    viper.GetString("GITHUB_WORKFLOW_FILE_DOCKER"),
			OSSFWorkflow:      viper.GetString("GITHUB_WORKFLOW_FILE_OSSF"),
			AzdWorkflow:       viper.GetString("GITHUB_WORKFLOW_FILE_AZD"),
			WorkflowsFilePath: viper.GetString("WORKFLOWS_FILE"),
		},
		Database: DBConfig{
			Host:            viper.GetString("DB_HOST"),
			Port:            viper.GetInt("DB_PORT"),
			Username:        viper.GetString("DB_USER"),
			Password:        viper.GetString("DB_PASSWORD"),
			Database:        viper.GetString("DB_NAME"),
			ConnMaxLifetime: viper.GetDuration("DB_CONN_MAX_LIFETIME"),
			ConnMaxIdleTime: viper.GetDuration("DB_CONN_MAX_IDLE_TIME"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	if cfg.GitHub.WorkflowsFilePath != "" {
		overrides, err := LoadWorkflowTargets(cfg.GitHub.WorkflowsFilePath)
		if err != nil {
			return nil, err
		}
		overrides.apply(&cfg.GitHub)
	}

	return cfg, nil
}

func (c *Config) validate() error {
	gh := c.GitHub
	if gh.Token == "" && gh.AppID == 0 {
		return core.NewError(core.KindConfiguration,
			"GH_WORKFLOW_TOKEN must be set (or configure GITHUB_APP_ID with a private key)")
	}
	if gh.AppID != 0 && gh.PrivateKeyPath == "" {
		return core.NewError(core.KindConfiguration,
			"GITHUB_APP_PRIVATE_KEY_PATH must be set when GITHUB_APP_ID is used")
	}
	if gh.Owner == "" || gh.Repo == "" {
		return core.NewError(core.KindConfiguration,
			"GITHUB_REPO_OWNER and GITHUB_REPO_NAME must be set")
	}
	return nil
}

// TargetFor returns the workflow target for one validation type.
func (c *Config) TargetFor(validationType string) (core.WorkflowTarget, error) {
	target := core.WorkflowTarget{
		Owner:  c.GitHub.Owner,
		Repo:   c.GitHub.Repo,
		Branch: c.GitHub.Branch,
	}
	switch validationType {
	case core.ValidationDocker:
		target.WorkflowFile = c.GitHub.DockerWorkflow
	case core.ValidationOSSF:
		target.WorkflowFile = c.GitHub.OSSFWorkflow
	case core.ValidationAzd:
		target.WorkflowFile = c.GitHub.AzdWorkflow
	default:
		return core.WorkflowTarget{}, core.NewError(core.KindConfiguration,
			fmt.Sprintf("unknown validation type %q", validationType))
	}
	if target.WorkflowFile == "" {
		return core.WorkflowTarget{}, core.NewError(core.KindConfiguration,
			fmt.Sprintf("no workflow file configured for %s validation", validationType))
	}
	return target, nil
}
