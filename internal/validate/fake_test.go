package validate

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	gogithub "github.com/google/go-github/v73/github"
	"github.com/stretchr/testify/require"

	"github.com/template-doctor/template-doctor/internal/core"
	"github.com/template-doctor/template-doctor/internal/github"
	"github.com/template-doctor/template-doctor/internal/orchestrator"
)

// fakeGitHub plays a full happy-path GitHub Actions backend: the first
// dispatch is remembered and the run listing returns a single run whose
// display title embeds that dispatch's correlation token.
type fakeGitHub struct {
	mu            sync.Mutex
	dispatched    []map[string]string
	dispatchErr   error
	runConclusion core.Conclusion
	artifactsFn   func(corr string) []core.Artifact
	downloads     map[int64][]byte
	jobs          []*gogithub.WorkflowJob
	jobsErr       error
	statusRun     *gogithub.WorkflowRun
	cancelled     []int64
}

const fakeRunID int64 = 42

const fakeRunURL = "https://github.com/template-doctor/workflows/actions/runs/42"

func (f *fakeGitHub) lastCorr() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.dispatched) == 0 {
		return ""
	}
	return f.dispatched[len(f.dispatched)-1][inputRunID]
}

func (f *fakeGitHub) conclusion() core.Conclusion {
	if f.runConclusion == "" {
		return core.ConclusionSuccess
	}
	return f.runConclusion
}

func (f *fakeGitHub) DispatchWorkflow(_ context.Context, _ core.WorkflowTarget, inputs map[string]string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.dispatchErr != nil {
		return f.dispatchErr
	}
	f.dispatched = append(f.dispatched, inputs)
	return nil
}

func (f *fakeGitHub) ListRecentDispatchRuns(_ context.Context, _ core.WorkflowTarget, _ time.Time) ([]*gogithub.WorkflowRun, error) {
	corr := f.lastCorr()
	if corr == "" {
		return nil, nil
	}
	return []*gogithub.WorkflowRun{{
		ID:           gogithub.Ptr(fakeRunID),
		DisplayTitle: gogithub.Ptr("template validation [" + corr + "]"),
		Status:       gogithub.Ptr(string(core.RunQueued)),
		HTMLURL:      gogithub.Ptr(fakeRunURL),
	}}, nil
}

func (f *fakeGitHub) GetWorkflowRun(_ context.Context, _, _ string, runID int64) (*gogithub.WorkflowRun, error) {
	if f.statusRun != nil {
		return f.statusRun, nil
	}
	return &gogithub.WorkflowRun{
		ID:         gogithub.Ptr(runID),
		Status:     gogithub.Ptr(string(core.RunCompleted)),
		Conclusion: gogithub.Ptr(string(f.conclusion())),
		HTMLURL:    gogithub.Ptr(fakeRunURL),
	}, nil
}

func (f *fakeGitHub) ListWorkflowJobs(_ context.Context, _, _ string, _ int64) ([]*gogithub.WorkflowJob, error) {
	if f.jobsErr != nil {
		return nil, f.jobsErr
	}
	return f.jobs, nil
}

func (f *fakeGitHub) ListRunArtifacts(_ context.Context, _, _ string, _ int64) ([]core.Artifact, error) {
	if f.artifactsFn == nil {
		return nil, nil
	}
	return f.artifactsFn(f.lastCorr()), nil
}

func (f *fakeGitHub) DownloadArtifact(_ context.Context, _, _ string, artifactID int64) ([]byte, error) {
	data, ok := f.downloads[artifactID]
	if !ok {
		return nil, errors.New("artifact expired")
	}
	return data, nil
}

func (f *fakeGitHub) CancelWorkflowRun(_ context.Context, _, _ string, runID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cancelled = append(f.cancelled, runID)
	return nil
}

var _ github.Client = (*fakeGitHub)(nil)

// memStore records saved validations in memory.
type memStore struct {
	mu    sync.Mutex
	saved []core.Validation
}

func (s *memStore) SaveValidation(_ context.Context, v *core.Validation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saved = append(s.saved, *v)
	return nil
}

func (s *memStore) GetLatestValidation(_ context.Context, _, _ string) (*core.Validation, error) {
	return nil, errors.New("not found")
}

func (s *memStore) ListRecentValidations(_ context.Context, _ int) ([]core.Validation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Validation(nil), s.saved...), nil
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

func newTestOrchestrator(gh github.Client) *orchestrator.Orchestrator {
	return orchestrator.New(gh, testLogger(),
		orchestrator.WithRetryConfig(orchestrator.RetryConfig{MaxAttempts: 1, Delay: time.Millisecond}),
		orchestrator.WithLocatorConfig(orchestrator.RunLocatorConfig{MaxAttempts: 2, BaseDelay: time.Millisecond, Window: time.Minute}),
		orchestrator.WithPollerConfig(orchestrator.CompletionPollerConfig{Interval: time.Millisecond, MaxAttempts: 3}),
	)
}

func zipArtifact(t *testing.T, filename string, content []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	f, err := w.Create(filename)
	require.NoError(t, err)
	_, err = f.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf.Bytes()
}

const cleanTrivyJSON = `{"ArtifactName":"scan","Results":[]}`

const criticalTrivyJSON = `{
	"ArtifactName": "myregistry/api:latest",
	"Results": [{
		"Target": "myregistry/api:latest (alpine 3.19)",
		"Vulnerabilities": [
			{"VulnerabilityID": "CVE-2024-0001", "Severity": "CRITICAL", "Title": "heap overflow"}
		]
	}]
}`
