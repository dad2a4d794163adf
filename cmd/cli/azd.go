package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"github.com/template-doctor/template-doctor/internal/wire"
)

var azdCmd = &cobra.Command{
	Use:   "validate-azd [owner/repo]",
	Short: "Run the azd deployment validation workflow against a template repository",
	Long: `Run the azd (Azure Developer CLI) deployment validation workflow against a
template repository. The workflow provisions the template end to end and
publishes a markdown report, which is rendered once the run completes.

Examples:
  doctor-cli validate-azd contoso/todo-template`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		appInstance, cleanup, err := wire.InitializeApp(ctx)
		if err != nil {
			return fmt.Errorf("failed to initialize app services: %w", err)
		}
		defer cleanup()

		titleColor.Println("Template Doctor - azd validation")
		dimColor.Printf("   Target: %s\n", args[0])
		fmt.Println("Dispatching workflow and waiting for completion (this provisions real infrastructure)...")

		result, err := appInstance.Azd.Run(ctx, args[0])
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

		if result.Report != nil && result.Report.Markdown != "" {
			rendered, renderErr := renderMarkdown(result.Report.Markdown)
			if renderErr != nil {
				// Fall back to the raw report when the terminal renderer fails.
				fmt.Println(result.Report.Markdown)
			} else {
				fmt.Println(rendered)
			}
		}

		printCompliance(result.Compliant)
		return nil
	},
}

func init() { //nolint:gochecknoinits // Cobra command registration
	rootCmd.AddCommand(azdCmd)
}

func renderMarkdown(md string) (string, error) {
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return "", err
	}
	return renderer.Render(md)
}
