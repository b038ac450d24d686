package cmd

import (
	"context"
	"errors"
	"os"
	"os/signal"

	"github.com/habedi/exactly/client"
	"github.com/habedi/exactly/operations"
	"github.com/rs/zerolog/log"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

// transactionsCmd retrieves all transaction lines of a division and writes
// them to a file. Ctrl-C cancels the retrieval; the partial result is
// discarded unless --partial is set.
func transactionsCmd() *cobra.Command {
	var division string
	var filter string
	var output string
	var format string
	var keepPartial bool

	cmd := &cobra.Command{
		Use:   "transactions",
		Short: "Retrieve the transaction lines of a division",
		Long: "Retrieve all transaction lines of a division, following the server's " +
			"next-page cursors until the full set has been fetched. An optional OData " +
			"$filter expression is passed through to the server unchanged.",
		Run: func(cmd *cobra.Command, args []string) {
			if division == "" {
				cmd.PrintErrln("Error: Division cannot be empty.")
				return
			}
			if format != operations.FormatJSON && format != operations.FormatCSV {
				cmd.PrintErrln("Error: Format must be one of: json, csv.")
				return
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()

			session := newSession()

			var bar *progressbar.ProgressBar
			progress := func(event client.ProgressEvent) {
				if bar == nil {
					bar = newProgressBar(event.Total)
				}
				_ = bar.Set(event.Current)
			}

			records, err := session.GetTransactions(ctx, division, filter, progress)
			if bar != nil {
				_ = bar.Finish()
				cmd.Println()
			}

			cancelled := errors.Is(err, client.ErrCancelled)
			if err != nil && !cancelled {
				reportError(cmd.PrintErrln, err)
				return
			}

			if cancelled {
				cmd.Printf("Cancelled after %d records.\n", len(records))
				if !keepPartial || len(records) == 0 {
					cmd.Println("Partial result discarded. Use --partial to keep it.")
					return
				}
			}

			if err := operations.SaveRecords(output, format, records); err != nil {
				cmd.PrintErrln("Error: Unable to write the output file. Please check the logs for details.")
				log.Error().Err(err).Str("path", output).Msg("Failed to write output file")
				return
			}

			if cancelled {
				cmd.Printf("Saved %d records (partial) to %s\n", len(records), output)
			} else {
				cmd.Printf("Saved %d records to %s\n", len(records), output)
			}
		},
	}

	cmd.Flags().StringVarP(&division, "division", "d", "", "Division to retrieve transactions from")
	cmd.Flags().StringVarP(&filter, "filter", "f", "", "OData $filter expression, e.g. \"FinancialYear gt 2022\"")
	cmd.Flags().StringVarP(&output, "output", "o", "transactions.json", "Output file path")
	cmd.Flags().StringVarP(&format, "format", "t", operations.FormatJSON, "Output format [json, csv]")
	cmd.Flags().BoolVarP(&keepPartial, "partial", "p", false, "Keep the partial result when the retrieval is cancelled")

	if err := cmd.MarkFlagRequired("division"); err != nil {
		log.Error().Err(err).Msg("Failed to mark 'division' flag as required")
	}

	return cmd
}

func newProgressBar(total int) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetDescription("Fetching transactions..."),
		progressbar.OptionSetWidth(20),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetPredictTime(false),
	)
}
