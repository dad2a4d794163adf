package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/template-doctor/template-doctor/internal/core"
	"github.com/template-doctor/template-doctor/internal/wire"
)

var minScore float64

var ossfCmd = &cobra.Command{
	Use:   "validate-ossf [owner/repo]",
	Short: "Run the OSSF scorecard workflow against a template repository",
	Long: `Run the OSSF scorecard workflow against a template repository and check
the measured score against a required minimum.

Examples:
  doctor-cli validate-ossf contoso/todo-template
  doctor-cli validate-ossf --min-score 8 contoso/todo-template`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		appInstance, cleanup, err := wire.InitializeApp(ctx)
		if err != nil {
			return fmt.Errorf("failed to initialize app services: %w", err)
		}
		defer cleanup()

		titleColor.Println("Template Doctor - OSSF scorecard validation")
		dimColor.Printf("   Target: %s (minimum score %.1f)\n", args[0], minScore)
		fmt.Println("Dispatching workflow and waiting for completion...")

		result, err := appInstance.OSSF.Run(ctx, args[0], minScore)
		if err != nil {
			return err
		}

		if outputJSON {
			encoder := json.NewEncoder(os.Stdout)
			encoder.SetIndent("", "  ")
			return encoder.Encode(result)
		}

		fmt.Println()
		dimColor.Printf("Run: %s\n", result.WorkflowRunURL)
		if result.Details.Score != nil {
			boldColor.Printf("Score: %.2f\n", *result.Details.Score)
		} else {
			warnColor.Println("Score: not reported by the workflow")
		}
		for _, issue := range result.Issues {
			if issue.Severity == core.SeverityWarning {
				warnColor.Printf("   %s\n", issue.Message)
			} else {
				errorColor.Printf("   %s\n", issue.Message)
			}
		}
		fmt.Println()
		printCompliance(result.Compliant)
		return nil
	},
}

func init() { //nolint:gochecknoinits // Cobra command registration
	ossfCmd.Flags().Float64Var(&minScore, "min-score", 7.0, "Minimum acceptable scorecard score (0-10)")
	rootCmd.AddCommand(ossfCmd)
}
