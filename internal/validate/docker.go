// Package validate runs template validations end to end: it dispatches the
// matching GitHub Actions workflow, waits for completion, downloads the
// produced artifacts and decodes them into caller-facing results.
package validate

import (
	"context"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/template-doctor/template-doctor/internal/core"
	"github.com/template-doctor/template-doctor/internal/decode"
	"github.com/template-doctor/template-doctor/internal/gitutil"
	"github.com/template-doctor/template-doctor/internal/orchestrator"
	"github.com/template-doctor/template-doctor/internal/storage"
)

// Workflow input and artifact naming contract shared with the validation
// workflows in the workflows repository.
const (
	inputTemplateURL = "template_url"
	inputRunID       = "run_id"

	repoScanPrefix  = "scan-repo-"
	imageScanPrefix = "scan-image-"
)

// ImageScan is the decoded vulnerability report of one container image built
// from the template.
type ImageScan struct {
	ImageName string           `json:"imageName"`
	Report    *core.ScanReport `json:"report"`
}

// DockerResult is the outcome of one docker validation.
type DockerResult struct {
	TemplateURL    string           `json:"templateUrl"`
	RunID          string           `json:"runId"`
	GitHubRunID    int64            `json:"githubRunId"`
	WorkflowRunURL string           `json:"workflowRunUrl"`
	RepositoryScan *core.ScanReport `json:"repositoryScan"`
	ImageScans     []ImageScan      `json:"imageScans"`
	Compliant      bool             `json:"compliant"`
}

// DockerValidator runs the docker validation workflow against a template and
// decodes the Trivy scan artifacts it produces.
type DockerValidator struct {
	orch      *orchestrator.Orchestrator
	target    core.WorkflowTarget
	decoder   core.Decoder
	preflight *gitutil.Preflight
	store     storage.Store
	logger    *slog.Logger
}

// NewDockerValidator creates a DockerValidator. store may be nil when history
// persistence is disabled.
func NewDockerValidator(orch *orchestrator.Orchestrator, target core.WorkflowTarget, preflight *gitutil.Preflight, store storage.Store, logger *slog.Logger) *DockerValidator {
	return &DockerValidator{
		orch:      orch,
		target:    target,
		decoder:   decode.NewTrivyDecoder(),
		preflight: preflight,
		store:     store,
		logger:    logger,
	}
}

// Run validates the template repository. When includeAllDetails is false the
// per-finding lists are stripped from the reports and only the severity
// summaries are returned.
func (v *DockerValidator) Run(ctx context.Context, templateRef string, includeAllDetails bool) (*DockerResult, error) {
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

	repoArtifacts := orchestrator.FilterByPrefix(outcome.Artifacts, repoScanPrefix)
	if len(repoArtifacts) == 0 {
		return nil, &core.Error{
			Kind:        core.KindArtifactMissing,
			Message:     "workflow run produced no " + repoScanPrefix + " artifact",
			Target:      v.target.OwnerRepo(),
			Correlation: corr,
		}
	}
	// A template with no Dockerfiles legitimately produces zero image scans.
	imageArtifacts := orchestrator.FilterByPrefix(outcome.Artifacts, imageScanPrefix)

	resolver := v.orch.Resolver()
	var repoScan *core.ScanReport
	imageScans := make([]ImageScan, len(imageArtifacts))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		data, dlErr := resolver.Download(gctx, outcome.Handle, repoArtifacts[0])
		if dlErr != nil {
			return dlErr
		}
		repoScan, dlErr = v.decoder.Decode(data)
		return dlErr
	})
	for i, artifact := range imageArtifacts {
		g.Go(func() error {
			data, dlErr := resolver.Download(gctx, outcome.Handle, artifact)
			if dlErr != nil {
				return dlErr
			}
			report, decErr := v.decoder.Decode(data)
			if decErr != nil {
				return decErr
			}
			imageScans[i] = ImageScan{
				ImageName: imageNameOf(artifact.Name),
				Report:    report,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := &DockerResult{
		TemplateURL:    templateURL,
		RunID:          corr,
		GitHubRunID:    outcome.Handle.RunID,
		WorkflowRunURL: outcome.Handle.HTMLURL,
		RepositoryScan: repoScan,
		ImageScans:     imageScans,
		Compliant:      outcome.Status.Succeeded() && allScansPassed(repoScan, imageScans),
	}
	if !includeAllDetails {
		stripFindings(result)
	}

	v.record(ctx, &core.Validation{
		TemplateURL: templateURL,
		Type:        core.ValidationDocker,
		RunID:       outcome.Handle.RunID,
		Conclusion:  string(outcome.Status.Conclusion),
		Compliant:   result.Compliant,
	})
	return result, nil
}

func (v *DockerValidator) record(ctx context.Context, rec *core.Validation) {
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

func allScansPassed(repoScan *core.ScanReport, imageScans []ImageScan) bool {
	if repoScan == nil || !repoScan.Passed {
		return false
	}
	for _, scan := range imageScans {
		if scan.Report == nil || !scan.Report.Passed {
			return false
		}
	}
	return true
}

func stripFindings(result *DockerResult) {
	if result.RepositoryScan != nil {
		result.RepositoryScan.Findings = nil
	}
	for i := range result.ImageScans {
		if result.ImageScans[i].Report != nil {
			result.ImageScans[i].Report.Findings = nil
		}
	}
}

// imageNameOf recovers the image identifier the workflow encoded into the
// artifact name, e.g. "scan-image-api-3f2c" -> "api-3f2c".
func imageNameOf(artifactName string) string {
	return strings.TrimPrefix(artifactName, imageScanPrefix)
}
