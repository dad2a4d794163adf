package orchestrator

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	gogithub "github.com/google/go-github/v73/github"

	"github.com/template-doctor/template-doctor/internal/core"
)

// fakeClient is a scriptable github.Client: each slice entry answers one call,
// the last entry repeats.
type fakeClient struct {
	mu sync.Mutex

	dispatchErr   error
	dispatchCalls int

	listPages [][]*gogithub.WorkflowRun
	listErrs  []error
	listCalls int

	runPages []*gogithub.WorkflowRun
	runErrs  []error
	getCalls int

	artifacts    []core.Artifact
	artifactsErr error

	downloads   map[int64][]byte
	downloadErr map[int64]error

	jobs      []*gogithub.WorkflowJob
	cancelled []int64
}

func (f *fakeClient) DispatchWorkflow(_ context.Context, _ core.WorkflowTarget, _ map[string]string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.dispatchCalls++
	return f.dispatchErr
}

func (f *fakeClient) ListRecentDispatchRuns(_ context.Context, _ core.WorkflowTarget, _ time.Time) ([]*gogithub.WorkflowRun, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	i := f.listCalls
	f.listCalls++
	if i < len(f.listErrs) && f.listErrs[i] != nil {
		return nil, f.listErrs[i]
	}
	if len(f.listPages) == 0 {
		return nil, nil
	}
	if i >= len(f.listPages) {
		i = len(f.listPages) - 1
	}
	return f.listPages[i], nil
}

func (f *fakeClient) GetWorkflowRun(_ context.Context, _, _ string, _ int64) (*gogithub.WorkflowRun, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	i := f.getCalls
	f.getCalls++
	if i < len(f.runErrs) && f.runErrs[i] != nil {
		return nil, f.runErrs[i]
	}
	if len(f.runPages) == 0 {
		return nil, nil
	}
	if i >= len(f.runPages) {
		i = len(f.runPages) - 1
	}
	return f.runPages[i], nil
}

func (f *fakeClient) ListWorkflowJobs(_ context.Context, _, _ string, _ int64) ([]*gogithub.WorkflowJob, error) {
	return f.jobs, nil
}

func (f *fakeClient) ListRunArtifacts(_ context.Context, _, _ string, _ int64) ([]core.Artifact, error) {
	if f.artifactsErr != nil {
		return nil, f.artifactsErr
	}
	return f.artifacts, nil
}

func (f *fakeClient) DownloadArtifact(_ context.Context, _, _ string, artifactID int64) ([]byte, error) {
	if err := f.downloadErr[artifactID]; err != nil {
		return nil, err
	}
	return f.downloads[artifactID], nil
}

func (f *fakeClient) CancelWorkflowRun(_ context.Context, _, _ string, runID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cancelled = append(f.cancelled, runID)
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testTarget() core.WorkflowTarget {
	return core.WorkflowTarget{
		Owner:        "template-doctor",
		Repo:         "workflows",
		WorkflowFile: "validation-docker.yml",
		Branch:       "main",
	}
}

func dispatchRequest(corr string) core.DispatchRequest {
	return core.DispatchRequest{
		Target:         testTarget(),
		Inputs:         map[string]string{"template_url": "octo/tmpl", "correlation_id": corr},
		CorrelationKey: "correlation_id",
	}
}

func runWithTitle(id int64, title string) *gogithub.WorkflowRun {
	return &gogithub.WorkflowRun{
		ID:           gogithub.Ptr(id),
		DisplayTitle: gogithub.Ptr(title),
		HTMLURL:      gogithub.Ptr("https://github.com/template-doctor/workflows/actions/runs/42"),
	}
}

func runWithCommitMessage(id int64, message string) *gogithub.WorkflowRun {
	return &gogithub.WorkflowRun{
		ID:         gogithub.Ptr(id),
		HeadCommit: &gogithub.HeadCommit{Message: gogithub.Ptr(message)},
	}
}

func runWithStatus(id int64, status string, conclusion string) *gogithub.WorkflowRun {
	r := &gogithub.WorkflowRun{
		ID:     gogithub.Ptr(id),
		Status: gogithub.Ptr(status),
	}
	if conclusion != "" {
		r.Conclusion = gogithub.Ptr(conclusion)
	}
	return r
}

func fastRetry() RetryConfig {
	return RetryConfig{MaxAttempts: 3, Delay: time.Millisecond}
}

func fastLocator() RunLocatorConfig {
	return RunLocatorConfig{MaxAttempts: 5, BaseDelay: time.Millisecond, Window: 10 * time.Minute}
}

func fastPoller() CompletionPollerConfig {
	return CompletionPollerConfig{Interval: time.Millisecond, MaxAttempts: 30}
}
