package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/template-doctor/template-doctor/internal/wire"
)

var cancelOwnerRepo string

var cancelCmd = &cobra.Command{
	Use:   "cancel [run-id]",
	Short: "Requests cancellation of a validation workflow run",
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

		if err := appInstance.Azd.Cancel(ctx, cancelOwnerRepo, runID); err != nil {
			return fmt.Errorf("failed to cancel run: %w", err)
		}

		successColor.Printf("Cancellation requested for run %d\n", runID)
		return nil
	},
}

func init() { //nolint:gochecknoinits // Cobra's init function for command registration
	cancelCmd.Flags().StringVar(&cancelOwnerRepo, "repo", "", "Workflow repository as owner/repo (defaults to the configured workflows repository)")
	rootCmd.AddCommand(cancelCmd)
}
