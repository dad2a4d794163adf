package orchestrator

import (
	"context"
	"log/slog"

	"github.com/template-doctor/template-doctor/internal/core"
	"github.com/template-doctor/template-doctor/internal/github"
)

// Dispatcher triggers remote workflow runs. The dispatch endpoint is
// fire-and-forget; pairing the run back to the request is the RunLocator's job.
type Dispatcher struct {
	gh     github.Client
	retry  RetryConfig
	logger *slog.Logger
}

// NewDispatcher creates a Dispatcher with the shared retry policy.
func NewDispatcher(gh github.Client, retry RetryConfig, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{gh: gh, retry: retry, logger: logger}
}

// Dispatch triggers the target workflow with the request's inputs. It fails
// fast, before any network I/O, if the correlation input is missing: without
// it the run could never be located afterwards.
func (d *Dispatcher) Dispatch(ctx context.Context, req core.DispatchRequest) error {
	corr := req.CorrelationValue()
	if corr == "" {
		return &core.Error{
			Kind:    core.KindMissingParameter,
			Message: "dispatch inputs are missing the correlation value (key " + req.CorrelationKey + ")",
			Target:  req.Target.OwnerRepo(),
		}
	}

	d.logger.Info("dispatching workflow",
		"repo", req.Target.OwnerRepo(),
		"workflow", req.Target.WorkflowFile,
		"branch", req.Target.Branch,
		"correlation", corr)

	err := WithRetry(ctx, d.logger, "dispatch_workflow", d.retry, func(ctx context.Context) error {
		return d.gh.DispatchWorkflow(ctx, req.Target, req.Inputs)
	})
	if err != nil {
		return &core.Error{
			Kind:        core.KindDispatchFailed,
			Message:     "workflow dispatch rejected by remote API",
			Target:      req.Target.OwnerRepo(),
			Correlation: corr,
			Err:         err,
		}
	}
	return nil
}
