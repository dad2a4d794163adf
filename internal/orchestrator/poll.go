package orchestrator

import (
	"context"
	"log/slog"
	"time"

	"github.com/template-doctor/template-doctor/internal/core"
	"github.com/template-doctor/template-doctor/internal/github"
)

// CompletionPollerConfig bounds how long a located run is watched.
type CompletionPollerConfig struct {
	Interval    time.Duration
	MaxAttempts int
}

// DefaultCompletionPollerConfig polls every ten seconds for five minutes.
func DefaultCompletionPollerConfig() CompletionPollerConfig {
	return CompletionPollerConfig{Interval: 10 * time.Second, MaxAttempts: 30}
}

// CompletionPoller waits for a located run to reach a terminal state.
type CompletionPoller struct {
	gh     github.Client
	cfg    CompletionPollerConfig
	logger *slog.Logger
}

// NewCompletionPoller creates a CompletionPoller.
func NewCompletionPoller(gh github.Client, cfg CompletionPollerConfig, logger *slog.Logger) *CompletionPoller {
	return &CompletionPoller{gh: gh, cfg: cfg, logger: logger}
}

// Wait polls the run until it completes or the attempt budget runs out.
// Exhausting the budget is a timeout, not a failure: the run's conclusion is
// unknown, which is a different fact than conclusion=failure. A fetch error
// consumes an attempt; cancellation is honored between iterations.
func (p *CompletionPoller) Wait(ctx context.Context, handle core.RunHandle) (core.RunStatus, error) {
	var last core.RunStatus
	for attempt := 1; attempt <= p.cfg.MaxAttempts; attempt++ {
		run, err := p.gh.GetWorkflowRun(ctx, handle.Target.Owner, handle.Target.Repo, handle.RunID)
		if err != nil {
			if ctx.Err() != nil {
				return last, deadlineError(ctx.Err())
			}
			p.logger.Warn("run status fetch failed",
				"run_id", handle.RunID, "attempt", attempt, "error", err)
		} else {
			last = github.RunStatusOf(run)
			if last.Terminal() {
				p.logger.Info("workflow run completed",
					"run_id", handle.RunID, "conclusion", last.Conclusion, "attempts", attempt)
				return last, nil
			}
			p.logger.Debug("workflow run still running",
				"run_id", handle.RunID, "status", last.State, "attempt", attempt)
		}

		if attempt < p.cfg.MaxAttempts {
			if err := sleepCtx(ctx, p.cfg.Interval); err != nil {
				return last, deadlineError(err)
			}
		}
	}

	return last, &core.Error{
		Kind:        core.KindTimeout,
		Message:     "workflow run did not reach a terminal state within the polling budget",
		Target:      handle.Target.OwnerRepo(),
		Correlation: handle.CorrelationValue,
		Attempts:    p.cfg.MaxAttempts,
	}
}
