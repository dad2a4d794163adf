package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/template-doctor/template-doctor/internal/wire"
)

var statusOwnerRepo string

var statusCmd = &cobra.Command{
	Use:   "status [run-id]",
	Short: "Shows the status of a validation workflow run",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		ctx := context.Background()

		runID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("run-id must be an integer: %w", err)
		}

		appInstance, cleanup, err := wire.InitializeApp(ctx)
		if err != nil {
			return fmt.Errorf("failed to initialize app services: %w", err)
		}
		defer cleanup()

		status, err := appInstance.Azd.Status(ctx, statusOwnerRepo, runID)
		if err != nil {
			return fmt.Errorf("failed to retrieve run status: %w", err)
		}

		if outputJSON {
			encoder := json.NewEncoder(os.Stdout)
			encoder.SetIndent("", "  ")
			return encoder.Encode(status)
		}

		boldColor.Printf("Run %d (%s)\n", status.RunID, status.OwnerRepo)
		fmt.Printf("Status: %s", status.Status)
		if status.Conclusion != "" {
			fmt.Printf(" / %s", status.Conclusion)
		}
		fmt.Println()
		if status.HTMLURL != "" {
			dimColor.Printf("%s\n", status.HTMLURL)
		}

		if len(status.Jobs) > 0 {
			fmt.Println()
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
			fmt.Fprintln(w, "JOB\tSTATUS\tCONCLUSION")
			for _, job := range status.Jobs {
				fmt.Fprintf(w, "%s\t%s\t%s\n", job.Name, job.Status, job.Conclusion)
			}
			if err := w.Flush(); err != nil {
				return err
			}
		}

		if status.ErrorSummary != "" {
			fmt.Println()
			errorColor.Println(status.ErrorSummary)
		}
		return nil
	},
}

func init() { //nolint:gochecknoinits // Cobra's init function for command registration
	statusCmd.Flags().StringVar(&statusOwnerRepo, "repo", "", "Workflow repository as owner/repo (defaults to the configured workflows repository)")
	rootCmd.AddCommand(statusCmd)
}
