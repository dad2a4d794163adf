package github

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/bradleyfalzon/ghinstallation/v2"
	"github.com/google/go-github/v73/github"
	"golang.org/x/oauth2"

	"github.com/template-doctor/template-doctor/internal/config"
	"github.com/template-doctor/template-doctor/internal/core"
)

// NewPATClient creates a GitHub client authenticated with a personal access
// token. This is the default credential path (GH_WORKFLOW_TOKEN).
func NewPATClient(ctx context.Context, token string, logger *slog.Logger) Client {
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	tc := oauth2.NewClient(ctx, ts)
	return NewClient(github.NewClient(tc), logger)
}

// NewInstallationClient creates a GitHub client authenticated as a GitHub App
// installation. The installation transport refreshes tokens transparently.
func NewInstallationClient(cfg config.GitHubConfig, logger *slog.Logger) (Client, error) {
	itr, err := ghinstallation.NewKeyFromFile(
		http.DefaultTransport, cfg.AppID, cfg.InstallationID, cfg.PrivateKeyPath)
	if err != nil {
		return nil, core.WrapError(core.KindConfiguration,
			"failed to create GitHub App installation transport", err)
	}

	logger.Info("using GitHub App installation credentials",
		"app_id", cfg.AppID, "installation_id", cfg.InstallationID)
	return NewClient(github.NewClient(&http.Client{Transport: itr}), logger), nil
}

// NewClientFromConfig picks the credential source: GitHub App when configured,
// PAT otherwise. A missing credential is a configuration error surfaced before
// any network I/O happens.
func NewClientFromConfig(ctx context.Context, cfg config.GitHubConfig, logger *slog.Logger) (Client, error) {
	if cfg.AppID != 0 {
		return NewInstallationClient(cfg, logger)
	}
	if cfg.Token == "" {
		return nil, core.NewError(core.KindConfiguration, "GH_WORKFLOW_TOKEN is not set")
	}
	return NewPATClient(ctx, cfg.Token, logger), nil
}
