package orchestrator

import (
	"context"
	"log/slog"
	"strings"
	"time"

	gogithub "github.com/google/go-github/v73/github"

	"github.com/template-doctor/template-doctor/internal/core"
	"github.com/template-doctor/template-doctor/internal/github"
)

// RunLocatorConfig bounds the search for a just-dispatched run.
type RunLocatorConfig struct {
	// MaxAttempts is the number of run-listing rounds before giving up.
	MaxAttempts int
	// BaseDelay scales linearly with the attempt index: round n waits
	// n*BaseDelay before listing (5s, 10s, 15s, ... with the default).
	BaseDelay time.Duration
	// Window restricts matching to runs created within this duration.
	Window time.Duration
}

// DefaultRunLocatorConfig waits at most 75 seconds across five rounds and
// only considers runs from the last ten minutes.
func DefaultRunLocatorConfig() RunLocatorConfig {
	return RunLocatorConfig{MaxAttempts: 5, BaseDelay: 5 * time.Second, Window: 10 * time.Minute}
}

// RunLocator resolves the run ID of a dispatched workflow. Dispatch returns no
// identifier, so the locator lists recent workflow_dispatch runs on the target
// branch and matches the correlation token against each run's observable
// metadata.
type RunLocator struct {
	gh     github.Client
	cfg    RunLocatorConfig
	logger *slog.Logger
}

// NewRunLocator creates a RunLocator.
func NewRunLocator(gh github.Client, cfg RunLocatorConfig, logger *slog.Logger) *RunLocator {
	return &RunLocator{gh: gh, cfg: cfg, logger: logger}
}

// Locate finds the run triggered by req. Listing failures consume an attempt
// like an empty page does; the linear backoff still applies to the next round.
func (l *RunLocator) Locate(ctx context.Context, req core.DispatchRequest) (core.RunHandle, error) {
	corr := req.CorrelationValue()
	if corr == "" {
		return core.RunHandle{}, &core.Error{
			Kind:    core.KindMissingParameter,
			Message: "cannot locate a run without a correlation value",
			Target:  req.Target.OwnerRepo(),
		}
	}

	var lastErr error
	for attempt := 1; attempt <= l.cfg.MaxAttempts; attempt++ {
		// Give the remote system time to register the run before listing;
		// later rounds wait progressively longer.
		if err := sleepCtx(ctx, time.Duration(attempt)*l.cfg.BaseDelay); err != nil {
			return core.RunHandle{}, deadlineError(err)
		}

		since := time.Now().Add(-l.cfg.Window)
		runs, err := l.gh.ListRecentDispatchRuns(ctx, req.Target, since)
		if err != nil {
			if ctx.Err() != nil {
				return core.RunHandle{}, deadlineError(ctx.Err())
			}
			l.logger.Warn("run listing failed",
				"repo", req.Target.OwnerRepo(), "attempt", attempt, "error", err)
			lastErr = err
			continue
		}

		// First match in API order wins; the listing is newest-first.
		for _, run := range runs {
			if matchesCorrelation(run, corr) {
				handle := core.RunHandle{
					RunID:            run.GetID(),
					Target:           req.Target,
					CorrelationValue: corr,
					HTMLURL:          run.GetHTMLURL(),
					Attempts:         attempt,
				}
				l.logger.Info("located workflow run",
					"repo", req.Target.OwnerRepo(), "run_id", handle.RunID,
					"attempt", attempt, "correlation", corr)
				return handle, nil
			}
		}

		l.logger.Debug("no matching run yet",
			"repo", req.Target.OwnerRepo(), "attempt", attempt, "candidates", len(runs))
	}

	return core.RunHandle{}, &core.Error{
		Kind:        core.KindRunNotFound,
		Message:     "no workflow run matched the correlation token",
		Target:      req.Target.OwnerRepo(),
		Correlation: corr,
		Attempts:    l.cfg.MaxAttempts,
		Err:         lastErr,
	}
}

// matchesCorrelation checks the run's display title, name and head-commit
// message for the token. Substring containment is deliberate: the remote
// workflow definition embeds the token inside a longer title or commit
// message the orchestrator does not control.
func matchesCorrelation(run *gogithub.WorkflowRun, corr string) bool {
	if strings.Contains(run.GetDisplayTitle(), corr) {
		return true
	}
	if strings.Contains(run.GetName(), corr) {
		return true
	}
	return strings.Contains(run.GetHeadCommit().GetMessage(), corr)
}
