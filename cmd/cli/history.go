package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/template-doctor/template-doctor/internal/wire"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Shows the most recent validation results",
	RunE: func(_ *cobra.Command, _ []string) error {
		ctx := context.Background()

		appInstance, cleanup, err := wire.InitializeApp(ctx)
		if err != nil {
			return fmt.Errorf("failed to initialize app services: %w", err)
		}
		defer cleanup()

		validations, err := appInstance.Store.ListRecentValidations(ctx, historyLimit)
		if err != nil {
			return fmt.Errorf("failed to retrieve validation history: %w", err)
		}

		if outputJSON {
			encoder := json.NewEncoder(os.Stdout)
			encoder.SetIndent("", "  ")
			return encoder.Encode(validations)
		}

		if len(validations) == 0 {
			fmt.Println("No validations recorded yet.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "TEMPLATE\tTYPE\tRUN\tCONCLUSION\tCOMPLIANT\tSCORE\tWHEN")
		for _, v := range validations {
			score := "-"
			if v.Score != nil {
				score = fmt.Sprintf("%.2f", *v.Score)
			}
			fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%t\t%s\t%s\n",
				v.TemplateURL,
				v.Type,
				v.RunID,
				v.Conclusion,
				v.Compliant,
				score,
				v.CreatedAt.Format(time.RFC822),
			)
		}
		return w.Flush()
	},
}

func init() { //nolint:gochecknoinits // Cobra's init function for command registration
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "Maximum number of records to show")
	rootCmd.AddCommand(historyCmd)
}
