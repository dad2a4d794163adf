package orchestrator

import (
	"context"
	"log/slog"

	"github.com/template-doctor/template-doctor/internal/core"
	"github.com/template-doctor/template-doctor/internal/github"
)

// Stage names the pipeline phase an orchestration request is in. Stages
// advance strictly in sequence for a single request.
type Stage string

const (
	StageDispatching       Stage = "dispatching"
	StageLocatingRun       Stage = "locating_run"
	StagePolling           Stage = "polling"
	StageFetchingArtifacts Stage = "fetching_artifacts"
	StageDone              Stage = "done"
)

// StageObserver is notified on every stage transition. UIs use it to render
// live progress; it must not block.
type StageObserver func(stage Stage, handle core.RunHandle)

// Orchestrator composes the four pipeline stages. Instances are stateless
// across requests: each Execute call owns its correlation token, counters and
// buffers exclusively, so concurrent requests never share mutable state.
type Orchestrator struct {
	dispatcher *Dispatcher
	locator    *RunLocator
	poller     *CompletionPoller
	resolver   *ArtifactResolver
	logger     *slog.Logger
	observe    StageObserver
}

// Option customizes an Orchestrator.
type Option func(*options)

type options struct {
	retry   RetryConfig
	locator RunLocatorConfig
	poller  CompletionPollerConfig
	observe StageObserver
}

// WithRetryConfig overrides the shared retry policy.
func WithRetryConfig(cfg RetryConfig) Option {
	return func(o *options) { o.retry = cfg }
}

// WithLocatorConfig overrides the run-locating schedule.
func WithLocatorConfig(cfg RunLocatorConfig) Option {
	return func(o *options) { o.locator = cfg }
}

// WithPollerConfig overrides the completion-polling schedule.
func WithPollerConfig(cfg CompletionPollerConfig) Option {
	return func(o *options) { o.poller = cfg }
}

// WithStageObserver registers a stage-transition callback.
func WithStageObserver(fn StageObserver) Option {
	return func(o *options) { o.observe = fn }
}

// New creates an Orchestrator over the given GitHub client.
func New(gh github.Client, logger *slog.Logger, opts ...Option) *Orchestrator {
	o := options{
		retry:   DefaultRetryConfig(),
		locator: DefaultRunLocatorConfig(),
		poller:  DefaultCompletionPollerConfig(),
	}
	for _, opt := range opts {
		opt(&o)
	}

	return &Orchestrator{
		dispatcher: NewDispatcher(gh, o.retry, logger),
		locator:    NewRunLocator(gh, o.locator, logger),
		poller:     NewCompletionPoller(gh, o.poller, logger),
		resolver:   NewArtifactResolver(gh, o.retry, logger),
		logger:     logger,
		observe:    o.observe,
	}
}

// Resolver exposes the artifact resolver so callers can download and filter
// artifacts after Execute returns.
func (o *Orchestrator) Resolver() *ArtifactResolver {
	return o.resolver
}

// RunOutcome is the result of one complete orchestration: the located run,
// its terminal status, and the artifacts it produced. Artifacts are listed
// even for runs that concluded in failure, since failing workflows still
// upload diagnostics.
type RunOutcome struct {
	Handle    core.RunHandle
	Status    core.RunStatus
	Artifacts []core.Artifact
}

// Execute runs the full pipeline for one dispatch request. Callers bound the
// end-to-end latency by passing a context with a deadline; cancellation is
// honored at every suspension point, so a fired deadline stops in-flight
// polling and downloads instead of leaking them.
func (o *Orchestrator) Execute(ctx context.Context, req core.DispatchRequest) (*RunOutcome, error) {
	o.transition(StageDispatching, core.RunHandle{})
	if err := o.dispatcher.Dispatch(ctx, req); err != nil {
		return nil, err
	}

	o.transition(StageLocatingRun, core.RunHandle{})
	handle, err := o.locator.Locate(ctx, req)
	if err != nil {
		return nil, err
	}

	o.transition(StagePolling, handle)
	status, err := o.poller.Wait(ctx, handle)
	if err != nil {
		return nil, err
	}

	o.transition(StageFetchingArtifacts, handle)
	artifacts, err := o.resolver.List(ctx, handle)
	if err != nil {
		return nil, err
	}

	o.transition(StageDone, handle)
	return &RunOutcome{Handle: handle, Status: status, Artifacts: artifacts}, nil
}

func (o *Orchestrator) transition(stage Stage, handle core.RunHandle) {
	o.logger.Debug("orchestration stage", "stage", stage, "run_id", handle.RunID)
	if o.observe != nil {
		o.observe(stage, handle)
	}
}
