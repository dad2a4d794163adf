package orchestrator

import (
	"context"
	"errors"
	"testing"

	gogithub "github.com/google/go-github/v73/github"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/template-doctor/template-doctor/internal/core"
)

func fastOrchestrator(fake *fakeClient, opts ...Option) *Orchestrator {
	base := []Option{
		WithRetryConfig(fastRetry()),
		WithLocatorConfig(fastLocator()),
		WithPollerConfig(fastPoller()),
	}
	return New(fake, testLogger(), append(base, opts...)...)
}

func TestOrchestrator_EndToEnd(t *testing.T) {
	// Dispatch succeeds, the run is located on listing attempt 2 and completes
	// on poll attempt 5 with one repo-scan artifact.
	corr := core.NewCorrelationID()
	fake := &fakeClient{
		listPages: [][]*gogithub.WorkflowRun{
			{},
			{runWithTitle(42, "Docker validation "+corr)},
		},
		runPages: []*gogithub.WorkflowRun{
			runWithStatus(42, "queued", ""),
			runWithStatus(42, "in_progress", ""),
			runWithStatus(42, "in_progress", ""),
			runWithStatus(42, "in_progress", ""),
			runWithStatus(42, "completed", "success"),
		},
		artifacts: []core.Artifact{{ID: 9, Name: "scan-repo-tmpl"}},
	}

	var stages []Stage
	orch := fastOrchestrator(fake, WithStageObserver(func(s Stage, _ core.RunHandle) {
		stages = append(stages, s)
	}))

	outcome, err := orch.Execute(context.Background(), dispatchRequest(corr))
	require.NoError(t, err)

	assert.Equal(t, int64(42), outcome.Handle.RunID)
	assert.Equal(t, 2, outcome.Handle.Attempts)
	assert.True(t, outcome.Status.Succeeded())
	require.Len(t, outcome.Artifacts, 1)
	assert.Equal(t, "scan-repo-tmpl", outcome.Artifacts[0].Name)

	assert.Equal(t, []Stage{
		StageDispatching, StageLocatingRun, StagePolling, StageFetchingArtifacts, StageDone,
	}, stages)
}

func TestOrchestrator_DispatchFailure(t *testing.T) {
	fake := &fakeClient{dispatchErr: errors.New("403 workflow disabled")}
	orch := fastOrchestrator(fake)

	_, err := orch.Execute(context.Background(), dispatchRequest(core.NewCorrelationID()))
	require.Error(t, err)
	assert.Equal(t, core.KindDispatchFailed, core.KindOf(err))
	assert.Zero(t, fake.listCalls, "no run location after a failed dispatch")
}

func TestOrchestrator_MissingCorrelationFailsBeforeDispatch(t *testing.T) {
	fake := &fakeClient{}
	orch := fastOrchestrator(fake)

	req := core.DispatchRequest{
		Target:         testTarget(),
		Inputs:         map[string]string{"template_url": "octo/tmpl"},
		CorrelationKey: "correlation_id",
	}
	_, err := orch.Execute(context.Background(), req)
	require.Error(t, err)
	assert.Equal(t, core.KindMissingParameter, core.KindOf(err))
	assert.Zero(t, fake.dispatchCalls)
}

func TestOrchestrator_RunNotFoundPropagates(t *testing.T) {
	fake := &fakeClient{listPages: [][]*gogithub.WorkflowRun{{}}}
	orch := fastOrchestrator(fake)

	_, err := orch.Execute(context.Background(), dispatchRequest(core.NewCorrelationID()))
	require.Error(t, err)
	assert.Equal(t, core.KindRunNotFound, core.KindOf(err))
	assert.Equal(t, 5, core.AttemptsOf(err))
	assert.Zero(t, fake.getCalls, "no polling for a run that was never located")
}

func TestOrchestrator_ArtifactsListedForFailedRuns(t *testing.T) {
	// A failed run still exposes artifacts; score workflows rely on this.
	corr := core.NewCorrelationID()
	fake := &fakeClient{
		listPages: [][]*gogithub.WorkflowRun{{runWithTitle(42, corr)}},
		runPages:  []*gogithub.WorkflowRun{runWithStatus(42, "completed", "failure")},
		artifacts: []core.Artifact{{ID: 1, Name: "scorecard-" + corr + "_score_4_0"}},
	}
	orch := fastOrchestrator(fake)

	outcome, err := orch.Execute(context.Background(), dispatchRequest(corr))
	require.NoError(t, err)
	assert.Equal(t, core.ConclusionFailure, outcome.Status.Conclusion)
	require.Len(t, outcome.Artifacts, 1)
}
