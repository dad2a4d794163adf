package orchestrator

import (
	"context"
	"log/slog"
	"strings"

	"github.com/template-doctor/template-doctor/internal/core"
	"github.com/template-doctor/template-doctor/internal/github"
)

// ArtifactResolver lists and downloads the artifacts of a completed run.
type ArtifactResolver struct {
	gh     github.Client
	retry  RetryConfig
	logger *slog.Logger
}

// NewArtifactResolver creates an ArtifactResolver.
func NewArtifactResolver(gh github.Client, retry RetryConfig, logger *slog.Logger) *ArtifactResolver {
	return &ArtifactResolver{gh: gh, retry: retry, logger: logger}
}

// List returns all artifacts of the run. The artifact list is stable once the
// run has completed.
func (r *ArtifactResolver) List(ctx context.Context, handle core.RunHandle) ([]core.Artifact, error) {
	var artifacts []core.Artifact
	err := WithRetry(ctx, r.logger, "list_artifacts", r.retry, func(ctx context.Context) error {
		var listErr error
		artifacts, listErr = r.gh.ListRunArtifacts(ctx, handle.Target.Owner, handle.Target.Repo, handle.RunID)
		return listErr
	})
	if err != nil {
		return nil, &core.Error{
			Kind:        core.KindTransport,
			Message:     "failed to list run artifacts",
			Target:      handle.Target.OwnerRepo(),
			Correlation: handle.CorrelationValue,
			Err:         err,
		}
	}
	r.logger.Debug("listed run artifacts", "run_id", handle.RunID, "count", len(artifacts))
	return artifacts, nil
}

// Download fetches the raw bytes of one artifact.
func (r *ArtifactResolver) Download(ctx context.Context, handle core.RunHandle, artifact core.Artifact) ([]byte, error) {
	var data []byte
	err := WithRetry(ctx, r.logger, "download_artifact", r.retry, func(ctx context.Context) error {
		var dlErr error
		data, dlErr = r.gh.DownloadArtifact(ctx, handle.Target.Owner, handle.Target.Repo, artifact.ID)
		return dlErr
	})
	if err != nil {
		return nil, &core.Error{
			Kind:        core.KindTransport,
			Message:     "failed to download artifact " + artifact.Name,
			Target:      handle.Target.OwnerRepo(),
			Correlation: handle.CorrelationValue,
			Err:         err,
		}
	}
	return data, nil
}

// FilterByPrefix returns the artifacts whose names start with prefix,
// preserving API order.
func FilterByPrefix(artifacts []core.Artifact, prefix string) []core.Artifact {
	var out []core.Artifact
	for _, a := range artifacts {
		if strings.HasPrefix(a.Name, prefix) {
			out = append(out, a)
		}
	}
	return out
}

// FindByNameContaining returns the first artifact whose name contains substr.
func FindByNameContaining(artifacts []core.Artifact, substr string) (core.Artifact, bool) {
	for _, a := range artifacts {
		if strings.Contains(a.Name, substr) {
			return a, true
		}
	}
	return core.Artifact{}, false
}
