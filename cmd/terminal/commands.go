package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/template-doctor/template-doctor/internal/config"
	"github.com/template-doctor/template-doctor/internal/core"
	"github.com/template-doctor/template-doctor/internal/github"
	"github.com/template-doctor/template-doctor/internal/orchestrator"
	"github.com/template-doctor/template-doctor/internal/validate"
)

// services holds everything a validation run needs. The stages channel feeds
// pipeline transitions from the orchestrator into the UI loop.
type services struct {
	cfg    *config.Config
	logger *slog.Logger
	gh     github.Client
	stages chan stageMsg
}

func initServicesCmd() tea.Cmd {
	return func() tea.Msg {
		cfg, err := config.LoadConfig()
		if err != nil {
			return servicesReadyMsg{err: err}
		}

		// The UI owns the terminal; log output would corrupt the screen.
		logger := slog.New(slog.NewTextHandler(io.Discard, nil))

		gh, err := github.NewClientFromConfig(context.Background(), cfg.GitHub, logger)
		if err != nil {
			return servicesReadyMsg{err: err}
		}

		return servicesReadyMsg{deps: &services{
			cfg:    cfg,
			logger: logger,
			gh:     gh,
			stages: make(chan stageMsg, 16),
		}}
	}
}

// waitForStageCmd delivers the next stage transition to the UI loop.
func waitForStageCmd(ch chan stageMsg) tea.Cmd {
	return func() tea.Msg {
		return <-ch
	}
}

func runValidationCmd(deps *services, validationType, templateRepo string, minScore float64) tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()

		target, err := deps.cfg.TargetFor(validationType)
		if err != nil {
			return errorMsg{err}
		}

		orch := orchestrator.New(deps.gh, deps.logger,
			orchestrator.WithStageObserver(func(stage orchestrator.Stage, handle core.RunHandle) {
				select {
				case deps.stages <- stageMsg{stage: stage, handle: handle}:
				default:
				}
			}),
		)

		switch validationType {
		case core.ValidationDocker:
			result, err := validate.NewDockerValidator(orch, target, nil, nil, deps.logger).
				Run(ctx, templateRepo, false)
			if err != nil {
				return validationDoneMsg{err: err}
			}
			return validationDoneMsg{
				compliant: result.Compliant,
				runURL:    result.WorkflowRunURL,
				summary:   dockerSummary(result),
			}

		case core.ValidationOSSF:
			result, err := validate.NewOSSFValidator(orch, target, nil, deps.logger).
				Run(ctx, templateRepo, minScore)
			if err != nil {
				return validationDoneMsg{err: err}
			}
			return validationDoneMsg{
				compliant: result.Compliant,
				runURL:    result.WorkflowRunURL,
				summary:   ossfSummary(result, minScore),
			}

		case core.ValidationAzd:
			result, err := validate.NewAzdValidator(orch, deps.gh, target, nil, nil, deps.logger).
				Run(ctx, templateRepo)
			if err != nil {
				return validationDoneMsg{err: err}
			}
			return validationDoneMsg{
				compliant: result.Compliant,
				runURL:    result.WorkflowRunURL,
				summary:   azdSummary(result),
			}

		default:
			return errorMsg{fmt.Errorf("unknown validation type %q", validationType)}
		}
	}
}

func dockerSummary(result *validate.DockerResult) []string {
	lines := []string{scanLine("repository scan", result.RepositoryScan)}
	for _, scan := range result.ImageScans {
		lines = append(lines, scanLine("image "+scan.ImageName, scan.Report))
	}
	return lines
}

func scanLine(name string, report *core.ScanReport) string {
	if report == nil {
		return name + ": no report"
	}
	if report.Passed {
		return name + ": clean"
	}
	return fmt.Sprintf("%s: %d critical, %d error, %d warning",
		name,
		report.Summary[core.SeverityCritical],
		report.Summary[core.SeverityError],
		report.Summary[core.SeverityWarning],
	)
}

func ossfSummary(result *validate.OSSFResult, minScore float64) []string {
	var lines []string
	if result.Details.Score != nil {
		lines = append(lines, fmt.Sprintf("score %.2f (minimum %.2f)", *result.Details.Score, minScore))
	} else {
		lines = append(lines, "score not reported by the workflow")
	}
	for _, issue := range result.Issues {
		lines = append(lines, issue.Message)
	}
	return lines
}

func azdSummary(result *validate.AzdResult) []string {
	if result.Report == nil {
		return []string{"no report"}
	}
	var lines []string
	for _, finding := range result.Report.Findings {
		lines = append(lines, fmt.Sprintf("[%s] %s", finding.Severity, finding.Title))
	}
	if len(lines) == 0 {
		lines = append(lines, "all checks passed")
	}
	return lines
}
