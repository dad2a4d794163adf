package validate

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/template-doctor/template-doctor/internal/core"
	"github.com/template-doctor/template-doctor/internal/decode"
	"github.com/template-doctor/template-doctor/internal/github"
	"github.com/template-doctor/template-doctor/internal/gitutil"
	"github.com/template-doctor/template-doctor/internal/orchestrator"
	"github.com/template-doctor/template-doctor/internal/storage"
)

// azdReportPrefix names the markdown report artifact published by the azd
// validation workflow.
const azdReportPrefix = "validation-result"

// AzdResult is the outcome of one azd template validation.
type AzdResult struct {
	TemplateURL    string           `json:"templateUrl"`
	RunID          string           `json:"runId"`
	GitHubRunID    int64            `json:"githubRunId"`
	WorkflowRunURL string           `json:"workflowRunUrl"`
	Report         *core.ScanReport `json:"report"`
	Compliant      bool             `json:"compliant"`
}

// JobSummary is the caller-facing view of one workflow job.
type JobSummary struct {
	Name       string `json:"name"`
	Status     string `json:"status"`
	Conclusion string `json:"conclusion,omitempty"`
}

// FailedJob names a failed job together with the steps that failed inside it.
type FailedJob struct {
	Name        string   `json:"name"`
	FailedSteps []string `json:"failedSteps,omitempty"`
}

// AzdStatus is a point-in-time snapshot of an azd validation run, enriched
// with per-job detail and, once the run has completed, the decoded report.
type AzdStatus struct {
	RunID         int64            `json:"runId"`
	OwnerRepo     string           `json:"ownerRepo"`
	Status        string           `json:"status"`
	Conclusion    string           `json:"conclusion,omitempty"`
	HTMLURL       string           `json:"htmlUrl,omitempty"`
	Jobs          []JobSummary     `json:"jobs"`
	FailedJobs    []FailedJob      `json:"failedJobs,omitempty"`
	ErrorSummary  string           `json:"errorSummary,omitempty"`
	AzdValidation *core.ScanReport `json:"azdValidation,omitempty"`
}

// AzdValidator runs the azd (Azure Developer CLI) template validation
// workflow and exposes status and cancellation for in-flight runs.
type AzdValidator struct {
	orch      *orchestrator.Orchestrator
	gh        github.Client
	target    core.WorkflowTarget
	preflight *gitutil.Preflight
	store     storage.Store
	logger    *slog.Logger
}

// NewAzdValidator creates an AzdValidator. store may be nil when history
// persistence is disabled.
func NewAzdValidator(orch *orchestrator.Orchestrator, gh github.Client, target core.WorkflowTarget, preflight *gitutil.Preflight, store storage.Store, logger *slog.Logger) *AzdValidator {
	return &AzdValidator{
		orch:      orch,
		gh:        gh,
		target:    target,
		preflight: preflight,
		store:     store,
		logger:    logger,
	}
}

// Run validates the template with azd end to end and decodes the markdown
// report the workflow publishes.
func (v *AzdValidator) Run(ctx context.Context, templateRef string) (*AzdResult, error) {
	owner, repo, err := gitutil.ParseTemplateRepo(templateRef)
	if err != nil {
		return nil, err
	}
	templateURL := owner + "/" + repo

	if v.preflight != nil {
		if err := v.preflight.CheckRepo(ctx, owner, repo, ""); err != nil {
			return nil, err
		}
	}

	corr := core.NewCorrelationID()
	outcome, err := v.orch.Execute(ctx, core.DispatchRequest{
		Target: v.target,
		Inputs: map[string]string{
			inputTemplateURL: templateURL,
			inputRunID:       corr,
		},
		CorrelationKey: inputRunID,
	})
	if err != nil {
		return nil, err
	}

	artifact, found := findAzdReport(outcome.Artifacts, corr)
	if !found {
		return nil, &core.Error{
			Kind:        core.KindArtifactMissing,
			Message:     "azd validation run produced no report artifact",
			Target:      v.target.OwnerRepo(),
			Correlation: corr,
		}
	}

	data, err := v.orch.Resolver().Download(ctx, outcome.Handle, artifact)
	if err != nil {
		return nil, err
	}
	report, err := decode.NewAzdReportDecoder().Decode(data)
	if err != nil {
		return nil, err
	}

	result := &AzdResult{
		TemplateURL:    templateURL,
		RunID:          corr,
		GitHubRunID:    outcome.Handle.RunID,
		WorkflowRunURL: outcome.Handle.HTMLURL,
		Report:         report,
		Compliant:      outcome.Status.Succeeded() && report.Passed,
	}

	v.record(ctx, &core.Validation{
		TemplateURL: templateURL,
		Type:        core.ValidationAzd,
		RunID:       outcome.Handle.RunID,
		Conclusion:  string(outcome.Status.Conclusion),
		Compliant:   result.Compliant,
		Report:      report.Markdown,
	})
	return result, nil
}

// Status fetches the current state of a run, its jobs, and for completed runs
// the decoded report. ownerRepo may be empty, in which case the configured
// workflows repository is assumed.
func (v *AzdValidator) Status(ctx context.Context, ownerRepo string, runID int64) (*AzdStatus, error) {
	owner, repo := v.target.Owner, v.target.Repo
	if ownerRepo != "" {
		var err error
		owner, repo, err = gitutil.ParseTemplateRepo(ownerRepo)
		if err != nil {
			return nil, err
		}
	}

	run, err := v.gh.GetWorkflowRun(ctx, owner, repo, runID)
	if err != nil {
		return nil, &core.Error{
			Kind:    core.KindTransport,
			Message: fmt.Sprintf("failed to fetch workflow run %d", runID),
			Target:  owner + "/" + repo,
			Err:     err,
		}
	}
	runStatus := github.RunStatusOf(run)

	status := &AzdStatus{
		RunID:      runID,
		OwnerRepo:  owner + "/" + repo,
		Status:     string(runStatus.State),
		Conclusion: string(runStatus.Conclusion),
		HTMLURL:    runStatus.HTMLURL,
	}

	jobs, err := v.gh.ListWorkflowJobs(ctx, owner, repo, runID)
	if err != nil {
		// Job detail is enrichment; the run snapshot alone is still useful.
		v.logger.Warn("failed to list workflow jobs", "run_id", runID, "error", err)
	}
	for _, job := range jobs {
		status.Jobs = append(status.Jobs, JobSummary{
			Name:       job.GetName(),
			Status:     job.GetStatus(),
			Conclusion: job.GetConclusion(),
		})
		if job.GetConclusion() != string(core.ConclusionFailure) {
			continue
		}
		failed := FailedJob{Name: job.GetName()}
		for _, step := range job.Steps {
			if step.GetConclusion() == string(core.ConclusionFailure) {
				failed.FailedSteps = append(failed.FailedSteps, step.GetName())
			}
		}
		status.FailedJobs = append(status.FailedJobs, failed)
	}
	status.ErrorSummary = summarizeFailures(status.FailedJobs)

	if runStatus.Terminal() {
		v.attachReport(ctx, owner, repo, runID, status)
	}
	return status, nil
}

// Cancel requests cancellation of a run. ownerRepo may be empty, in which
// case the configured workflows repository is assumed.
func (v *AzdValidator) Cancel(ctx context.Context, ownerRepo string, runID int64) error {
	owner, repo := v.target.Owner, v.target.Repo
	if ownerRepo != "" {
		var err error
		owner, repo, err = gitutil.ParseTemplateRepo(ownerRepo)
		if err != nil {
			return err
		}
	}
	if err := v.gh.CancelWorkflowRun(ctx, owner, repo, runID); err != nil {
		return &core.Error{
			Kind:    core.KindTransport,
			Message: fmt.Sprintf("failed to cancel workflow run %d", runID),
			Target:  owner + "/" + repo,
			Err:     err,
		}
	}
	return nil
}

// attachReport best-effort decodes the report artifact of a completed run.
func (v *AzdValidator) attachReport(ctx context.Context, owner, repo string, runID int64, status *AzdStatus) {
	artifacts, err := v.gh.ListRunArtifacts(ctx, owner, repo, runID)
	if err != nil {
		v.logger.Warn("failed to list run artifacts", "run_id", runID, "error", err)
		return
	}
	reports := orchestrator.FilterByPrefix(artifacts, azdReportPrefix)
	if len(reports) == 0 {
		return
	}
	data, err := v.gh.DownloadArtifact(ctx, owner, repo, reports[0].ID)
	if err != nil {
		v.logger.Warn("failed to download report artifact", "run_id", runID, "error", err)
		return
	}
	report, err := decode.NewAzdReportDecoder().Decode(data)
	if err != nil {
		v.logger.Warn("failed to decode report artifact", "run_id", runID, "error", err)
		return
	}
	status.AzdValidation = report
}

func (v *AzdValidator) record(ctx context.Context, rec *core.Validation) {
	if v.store == nil {
		return
	}
	if err := v.store.SaveValidation(ctx, rec); err != nil {
		v.logger.Warn("failed to persist validation record",
			"template", rec.TemplateURL,
			"type", rec.Type,
			"error", err,
		)
	}
}

// findAzdReport prefers the artifact carrying this run's correlation token and
// falls back to the well-known report name.
func findAzdReport(artifacts []core.Artifact, corr string) (core.Artifact, bool) {
	if a, ok := orchestrator.FindByNameContaining(artifacts, corr); ok {
		return a, true
	}
	if reports := orchestrator.FilterByPrefix(artifacts, azdReportPrefix); len(reports) > 0 {
		return reports[0], true
	}
	return core.Artifact{}, false
}

func summarizeFailures(failed []FailedJob) string {
	if len(failed) == 0 {
		return ""
	}
	parts := make([]string, 0, len(failed))
	for _, job := range failed {
		if len(job.FailedSteps) > 0 {
			parts = append(parts, fmt.Sprintf("%s (%s)", job.Name, strings.Join(job.FailedSteps, ", ")))
		} else {
			parts = append(parts, job.Name)
		}
	}
	return "failed jobs: " + strings.Join(parts, "; ")
}
