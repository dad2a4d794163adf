// Package github provides functionality for interacting with the GitHub
// Actions API: dispatching workflows, listing and inspecting runs, and
// retrieving run artifacts.
package github

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/google/go-github/v73/github"

	"github.com/template-doctor/template-doctor/internal/core"
)

// runListWindowPageSize caps one run-listing page; the locator never needs
// more than the most recent page.
const runListWindowPageSize = 100

// Client defines the set of GitHub Actions operations the orchestration
// pipeline needs. It is deliberately narrow so tests can fake it.
//
//go:generate mockgen -destination=../../mocks/mock_github_client.go -package=mocks . Client
type Client interface {
	DispatchWorkflow(ctx context.Context, target core.WorkflowTarget, inputs map[string]string) error
	ListRecentDispatchRuns(ctx context.Context, target core.WorkflowTarget, since time.Time) ([]*github.WorkflowRun, error)
	GetWorkflowRun(ctx context.Context, owner, repo string, runID int64) (*github.WorkflowRun, error)
	ListWorkflowJobs(ctx context.Context, owner, repo string, runID int64) ([]*github.WorkflowJob, error)
	ListRunArtifacts(ctx context.Context, owner, repo string, runID int64) ([]core.Artifact, error)
	DownloadArtifact(ctx context.Context, owner, repo string, artifactID int64) ([]byte, error)
	CancelWorkflowRun(ctx context.Context, owner, repo string, runID int64) error
}

type actionsClient struct {
	client *github.Client
	// blobClient performs the second, unauthenticated hop of artifact
	// downloads. It must never carry the bearer token.
	blobClient *http.Client
	logger     *slog.Logger
}

// NewClient wraps an authenticated go-github client.
func NewClient(client *github.Client, logger *slog.Logger) Client {
	return &actionsClient{
		client:     client,
		blobClient: newBlobHTTPClient(),
		logger:     logger,
	}
}

func newBlobHTTPClient() *http.Client {
	tr := &http.Transport{
		DialContext:         (&net.Dialer{Timeout: 5 * time.Second}).DialContext,
		TLSHandshakeTimeout: 5 * time.Second,
		MaxIdleConns:        100,
		IdleConnTimeout:     90 * time.Second,
	}
	return &http.Client{Transport: tr, Timeout: 30 * time.Second}
}

// DispatchWorkflow triggers a workflow_dispatch event on the target workflow.
// GitHub's dispatch endpoint is fire-and-forget: a success here carries no run
// identifier, which is why run location happens separately.
func (c *actionsClient) DispatchWorkflow(ctx context.Context, target core.WorkflowTarget, inputs map[string]string) error {
	event := github.CreateWorkflowDispatchEventRequest{
		Ref:    target.Branch,
		Inputs: make(map[string]interface{}, len(inputs)),
	}
	for k, v := range inputs {
		event.Inputs[k] = v
	}

	_, err := c.client.Actions.CreateWorkflowDispatchEventByFileName(
		ctx, target.Owner, target.Repo, target.WorkflowFile, event)
	if err != nil {
		c.logger.Error("failed to dispatch workflow",
			"repo", target.OwnerRepo(), "workflow", target.WorkflowFile, "error", err)
		return err
	}
	return nil
}

// ListRecentDispatchRuns returns the most recent workflow_dispatch runs of the
// target workflow on the target branch created at or after since, newest first.
func (c *actionsClient) ListRecentDispatchRuns(ctx context.Context, target core.WorkflowTarget, since time.Time) ([]*github.WorkflowRun, error) {
	opts := &github.ListWorkflowRunsOptions{
		Branch:      target.Branch,
		Event:       "workflow_dispatch",
		Created:     ">=" + since.UTC().Format(time.RFC3339),
		ListOptions: github.ListOptions{PerPage: runListWindowPageSize},
	}

	runs, _, err := c.client.Actions.ListWorkflowRunsByFileName(
		ctx, target.Owner, target.Repo, target.WorkflowFile, opts)
	if err != nil {
		c.logger.Error("failed to list workflow runs",
			"repo", target.OwnerRepo(), "workflow", target.WorkflowFile, "error", err)
		return nil, err
	}
	return runs.WorkflowRuns, nil
}

// GetWorkflowRun fetches the full metadata of a single run.
func (c *actionsClient) GetWorkflowRun(ctx context.Context, owner, repo string, runID int64) (*github.WorkflowRun, error) {
	run, _, err := c.client.Actions.GetWorkflowRunByID(ctx, owner, repo, runID)
	if err != nil {
		c.logger.Error("failed to get workflow run", "repo", owner+"/"+repo, "run_id", runID, "error", err)
		return nil, err
	}
	return run, nil
}

// ListWorkflowJobs lists all jobs of a run, following pagination.
func (c *actionsClient) ListWorkflowJobs(ctx context.Context, owner, repo string, runID int64) ([]*github.WorkflowJob, error) {
	var all []*github.WorkflowJob
	opts := &github.ListWorkflowJobsOptions{ListOptions: github.ListOptions{PerPage: 100}}

	for {
		jobs, resp, err := c.client.Actions.ListWorkflowJobs(ctx, owner, repo, runID, opts)
		if err != nil {
			c.logger.Error("failed to list workflow jobs", "repo", owner+"/"+repo, "run_id", runID, "error", err)
			return nil, err
		}
		all = append(all, jobs.Jobs...)
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return all, nil
}

// CancelWorkflowRun requests a best-effort cancellation of a run.
func (c *actionsClient) CancelWorkflowRun(ctx context.Context, owner, repo string, runID int64) error {
	_, err := c.client.Actions.CancelWorkflowRunByID(ctx, owner, repo, runID)
	if err != nil {
		c.logger.Error("failed to cancel workflow run", "repo", owner+"/"+repo, "run_id", runID, "error", err)
	}
	return err
}

// RunStatusOf converts a go-github run into the internal status snapshot.
func RunStatusOf(run *github.WorkflowRun) core.RunStatus {
	return core.RunStatus{
		RunID:      run.GetID(),
		State:      core.RunState(run.GetStatus()),
		Conclusion: core.Conclusion(run.GetConclusion()),
		HTMLURL:    run.GetHTMLURL(),
		UpdatedAt:  run.GetUpdatedAt().Time,
	}
}
