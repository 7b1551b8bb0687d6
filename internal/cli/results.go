package cli

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/emiliopalmerini/dissolvo/internal/domain"
	"github.com/emiliopalmerini/dissolvo/internal/infrastructure/database"
)

var resultsCmd = &cobra.Command{
	Use:   "results",
	Short: "List stored factor results",
	Long: `List the most recent factor results from the configured database.

Examples:
  dissolvo results            # Last 10 results
  dissolvo results --last 25  # Last 25 results`,
	RunE: runResults,
}

var resultsLast int

func init() {
	rootCmd.AddCommand(resultsCmd)

	resultsCmd.Flags().IntVarP(&resultsLast, "last", "n", 10, "Number of results to show")
}

func runResults(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	app, err := NewAppContext(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = app.Close(ctx) }()

	if app.Results == nil {
		return fmt.Errorf("no database configured; set DISSOLVO_DATABASE_URL")
	}

	results, err := database.WithRetry(ctx, 3, func() ([]domain.PairResult, error) {
		return app.Results.ListRecent(ctx, resultsLast)
	})
	if err != nil {
		return fmt.Errorf("list results: %w", err)
	}

	if len(results) == 0 {
		fmt.Println("No stored results.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "  DATE\tSAMPLE\tPAIR\tF2\tF1 (SEL)\tNOTE")
	for _, res := range results {
		fmt.Fprintf(w, "  %s\t%s\t%s vs %s\t%s\t%s\t%s\n",
			res.CreatedAt.Format("2006-01-02 15:04"),
			res.SampleID,
			res.Reference, res.Test,
			formatFactor(res.Result.F2),
			formatFactor(res.Result.F1Selected),
			res.Result.Message,
		)
	}
	return w.Flush()
}
