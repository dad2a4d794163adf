package validate

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/template-doctor/template-doctor/internal/core"
	"github.com/template-doctor/template-doctor/internal/decode"
	"github.com/template-doctor/template-doctor/internal/gitutil"
	"github.com/template-doctor/template-doctor/internal/orchestrator"
	"github.com/template-doctor/template-doctor/internal/storage"
)

// defaultOSSFDeadline bounds one OSSF validation end to end. Scorecard runs
// are short; a run that has not produced a result by then is reported as a
// timeout rather than held open.
const defaultOSSFDeadline = 3 * time.Minute

// OSSFDetails carries the measured scorecard value. Score is nil when the
// workflow completed without publishing a scorecard artifact.
type OSSFDetails struct {
	Score *float64 `json:"score"`
}

// OSSFResult is the outcome of one OSSF scorecard validation.
type OSSFResult struct {
	TemplateURL    string       `json:"templateUrl"`
	RunID          string       `json:"runId"`
	GitHubRunID    int64        `json:"githubRunId"`
	WorkflowRunURL string       `json:"workflowRunUrl"`
	Details        OSSFDetails  `json:"details"`
	Issues         []core.Issue `json:"issues"`
	Compliant      bool         `json:"compliance"`
}

// OSSFValidator runs the OSSF scorecard workflow and reads the resulting
// score out of the published artifact's name.
type OSSFValidator struct {
	orch     *orchestrator.Orchestrator
	target   core.WorkflowTarget
	store    storage.Store
	deadline time.Duration
	logger   *slog.Logger
}

// NewOSSFValidator creates an OSSFValidator. store may be nil when history
// persistence is disabled.
func NewOSSFValidator(orch *orchestrator.Orchestrator, target core.WorkflowTarget, store storage.Store, logger *slog.Logger) *OSSFValidator {
	return &OSSFValidator{
		orch:     orch,
		target:   target,
		store:    store,
		deadline: defaultOSSFDeadline,
		logger:   logger,
	}
}

// Run validates the template's OSSF scorecard against minScore. A workflow
// that completes without a scorecard artifact yields Score=nil and a warning
// issue, not an error: the run itself is the authority on what it measured.
func (v *OSSFValidator) Run(ctx context.Context, templateRef string, minScore float64) (*OSSFResult, error) {
	if err := decode.ValidateMinScore(minScore); err != nil {
		return nil, err
	}
	owner, repo, err := gitutil.ParseTemplateRepo(templateRef)
	if err != nil {
		return nil, err
	}
	templateURL := owner + "/" + repo

	ctx, cancel := context.WithTimeout(ctx, v.deadline)
	defer cancel()

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

	result := &OSSFResult{
		TemplateURL:    templateURL,
		RunID:          corr,
		GitHubRunID:    outcome.Handle.RunID,
		WorkflowRunURL: outcome.Handle.HTMLURL,
	}

	artifact, found := orchestrator.FindByNameContaining(outcome.Artifacts, corr)
	if !found {
		v.logger.Warn("scorecard run produced no matching artifact",
			"template", templateURL,
			"run_id", outcome.Handle.RunID,
			"correlation", corr,
		)
		result.Issues = append(result.Issues, core.Issue{
			ID:       "ossf-score-unavailable",
			Severity: core.SeverityWarning,
			Message:  "workflow completed without publishing a scorecard artifact",
		})
		v.record(ctx, templateURL, outcome, result)
		return result, nil
	}

	score, err := decode.ParseScoreFromArtifactName(artifact.Name)
	if err != nil {
		return nil, &core.Error{
			Kind:        core.KindDecode,
			Message:     "scorecard artifact name carries no score: " + artifact.Name,
			Target:      v.target.OwnerRepo(),
			Correlation: corr,
			Err:         err,
		}
	}

	result.Details.Score = &score
	result.Compliant = score >= minScore
	if !result.Compliant {
		result.Issues = append(result.Issues, core.Issue{
			ID:       "ossf-score-below-minimum",
			Severity: core.SeverityError,
			Message:  fmt.Sprintf("scorecard score %.2f is below the required minimum %.2f", score, minScore),
		})
	}

	v.record(ctx, templateURL, outcome, result)
	return result, nil
}

func (v *OSSFValidator) record(ctx context.Context, templateURL string, outcome *orchestrator.RunOutcome, result *OSSFResult) {
	if v.store == nil {
		return
	}
	rec := &core.Validation{
		TemplateURL: templateURL,
		Type:        core.ValidationOSSF,
		RunID:       outcome.Handle.RunID,
		Conclusion:  string(outcome.Status.Conclusion),
		Compliant:   result.Compliant,
		Score:       result.Details.Score,
	}
	if err := v.store.SaveValidation(ctx, rec); err != nil {
		v.logger.Warn("failed to persist validation record",
			"template", templateURL,
			"type", rec.Type,
			"error", err,
		)
	}
}
