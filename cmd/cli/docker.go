package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/template-doctor/template-doctor/internal/core"
	"github.com/template-doctor/template-doctor/internal/validate"
	"github.com/template-doctor/template-doctor/internal/wire"
)

var includeAllDetails bool

var dockerCmd = &cobra.Command{
	Use:   "validate-docker [owner/repo]",
	Short: "Run the docker validation workflow against a template repository",
	Long: `Run the docker validation workflow against a template repository.

The workflow scans the repository and every container image it builds with
Trivy; the decoded scan results are printed once the run completes.

Examples:
  doctor-cli validate-docker contoso/todo-template
  doctor-cli validate-docker --details contoso/todo-template`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		appInstance, cleanup, err := wire.InitializeApp(ctx)
		if err != nil {
			return fmt.Errorf("failed to initialize app services: %w", err)
		}
		defer cleanup()

		titleColor.Println("Template Doctor - docker validation")
		dimColor.Printf("   Target: %s\n", args[0])
		fmt.Println("Dispatching workflow and waiting for completion...")

		result, err := appInstance.Docker.Run(ctx, args[0], includeAllDetails)
		if err != nil {
			return err
		}

		if outputJSON {
			encoder := json.NewEncoder(os.Stdout)
			encoder.SetIndent("", "  ")
			return encoder.Encode(result)
		}

		printDockerResult(result)
		return nil
	},
}

func init() { //nolint:gochecknoinits // Cobra command registration
	dockerCmd.Flags().BoolVar(&includeAllDetails, "details", false, "Include every finding, not just severity summaries")
	rootCmd.AddCommand(dockerCmd)
}

func printDockerResult(result *validate.DockerResult) {
	fmt.Println()
	dimColor.Printf("Run: %s\n", result.WorkflowRunURL)

	printScanReport("Repository scan", result.RepositoryScan)
	for _, scan := range result.ImageScans {
		printScanReport("Image "+scan.ImageName, scan.Report)
	}

	fmt.Println()
	printCompliance(result.Compliant)
}

func printScanReport(title string, report *core.ScanReport) {
	if report == nil {
		return
	}
	fmt.Println()
	boldColor.Println(title)
	if report.Passed {
		successColor.Println("   no blocking vulnerabilities")
	} else {
		errorColor.Printf("   %d critical, %d error findings\n",
			report.Summary[core.SeverityCritical], report.Summary[core.SeverityError])
	}
	if report.Summary[core.SeverityWarning] > 0 {
		warnColor.Printf("   %d warnings\n", report.Summary[core.SeverityWarning])
	}
	for _, finding := range report.Findings {
		printSeverityBadge(finding.Severity)
		infoColor.Printf(" %s", finding.ID)
		if finding.Title != "" {
			dimColor.Printf(" %s", finding.Title)
		}
		fmt.Println()
	}
}

func printCompliance(compliant bool) {
	if compliant {
		successColor.Println("COMPLIANT")
	} else {
		errorColor.Println("NOT COMPLIANT")
	}
}

func printSeverityBadge(severity string) {
	switch severity {
	case core.SeverityCritical:
		errorColor.Printf("   [%s]", severity)
	case core.SeverityError:
		errorColor.Printf("   [%s]", severity)
	case core.SeverityWarning:
		warnColor.Printf("   [%s]", severity)
	default:
		dimColor.Printf("   [%s]", severity)
	}
}
