package github

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/google/go-github/v73/github"

	"github.com/template-doctor/template-doctor/internal/core"
)

// ListRunArtifacts lists all artifacts produced by a run, following pagination.
func (c *actionsClient) ListRunArtifacts(ctx context.Context, owner, repo string, runID int64) ([]core.Artifact, error) {
	var all []core.Artifact
	opts := &github.ListOptions{PerPage: 100}

	for {
		list, resp, err := c.client.Actions.ListWorkflowRunArtifacts(ctx, owner, repo, runID, opts)
		if err != nil {
			c.logger.Error("failed to list run artifacts", "repo", owner+"/"+repo, "run_id", runID, "error", err)
			return nil, err
		}
		for _, a := range list.Artifacts {
			all = append(all, core.Artifact{
				ID:                 a.GetID(),
				Name:               a.GetName(),
				ArchiveDownloadURL: a.GetArchiveDownloadURL(),
				SizeInBytes:        a.GetSizeInBytes(),
				Expired:            a.GetExpired(),
			})
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return all, nil
}

// DownloadArtifact fetches the raw ZIP bytes of one artifact.
//
// GitHub answers the authenticated download endpoint with a 30x redirect to
// short-lived blob storage. The redirect is resolved in two explicit hops: the
// first request carries the bearer token and is NOT followed, the second goes
// to the Location target WITHOUT the token. Blob storage rejects requests that
// carry the GitHub Authorization header, so forwarding it is a contract
// violation, not an optimization choice.
func (c *actionsClient) DownloadArtifact(ctx context.Context, owner, repo string, artifactID int64) ([]byte, error) {
	location, resp, err := c.client.Actions.DownloadArtifact(ctx, owner, repo, artifactID, 0)
	if err != nil {
		c.logger.Error("failed to resolve artifact download", "repo", owner+"/"+repo, "artifact_id", artifactID, "error", err)
		return nil, err
	}
	if location == nil || location.String() == "" {
		status := 0
		if resp != nil {
			status = resp.StatusCode
		}
		return nil, core.NewError(core.KindTransport,
			fmt.Sprintf("artifact %d redirect carried no Location header (status %d)", artifactID, status))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, location.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build blob request: %w", err)
	}

	blobResp, err := c.blobClient.Do(req)
	if err != nil {
		c.logger.Error("artifact blob download failed", "artifact_id", artifactID, "error", err)
		return nil, err
	}
	defer func() { _ = blobResp.Body.Close() }()

	if blobResp.StatusCode < 200 || blobResp.StatusCode >= 300 {
		return nil, core.NewError(core.KindTransport,
			fmt.Sprintf("artifact blob download returned %s", blobResp.Status))
	}

	data, err := io.ReadAll(blobResp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read artifact content: %w", err)
	}

	c.logger.Debug("downloaded artifact", "artifact_id", artifactID, "bytes", len(data))
	return data, nil
}
