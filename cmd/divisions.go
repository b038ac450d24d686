package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/habedi/exactly/client"
	"github.com/habedi/exactly/db"
	"github.com/olekukonko/tablewriter"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// divisionsCmd lists the divisions the signed-in user may access.
// The last fetched list is cached locally so it can be shown offline.
func divisionsCmd() *cobra.Command {
	var cached bool

	cmd := &cobra.Command{
		Use:   "divisions",
		Short: "List the divisions you have access to",
		Run: func(cmd *cobra.Command, args []string) {
			repo := db.NewDivisionRepository(db.Db)

			if cached {
				divisions, err := repo.List(cmd.Context())
				if err != nil {
					cmd.PrintErrln("Error: Unable to read the division cache. Please check the logs for details.")
					log.Error().Err(err).Msg("Failed to read division cache")
					return
				}
				if len(divisions) == 0 {
					cmd.Println("No cached divisions. Run `exactly divisions` without --cached first.")
					return
				}
				renderDivisionsTable(cachedToClient(divisions))
				return
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()

			session := newSession()
			divisions, err := session.GetDivisions(ctx)
			if err != nil {
				reportError(cmd.PrintErrln, err)
				return
			}
			if len(divisions) == 0 {
				cmd.Println("No divisions found.")
				return
			}

			if err := repo.ReplaceAll(ctx, clientToCached(divisions)); err != nil {
				log.Warn().Err(err).Msg("Failed to update division cache")
			}

			renderDivisionsTable(divisions)
		},
	}

	cmd.Flags().BoolVarP(&cached, "cached", "c", false, "Show the last fetched list without calling the API")

	return cmd
}

func renderDivisionsTable(divisions []client.Division) {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Code", "Customer Name", "Description"})

	// Table appearance settings
	table.SetColMinWidth(2, 40)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAutoWrapText(false)
	table.SetRowLine(false)

	for _, div := range divisions {
		table.Append([]string{
			fmt.Sprintf("%d", div.Code),
			div.CustomerName,
			div.Description,
		})
	}

	table.Render()
}

func clientToCached(divisions []client.Division) []db.Division {
	cached := make([]db.Division, 0, len(divisions))
	for _, div := range divisions {
		cached = append(cached, db.Division{
			Code:         div.Code,
			CustomerName: div.CustomerName,
			Description:  div.Description,
			Customer:     div.Customer,
			CustomerCode: div.CustomerCode,
		})
	}
	return cached
}

func cachedToClient(divisions []db.Division) []client.Division {
	out := make([]client.Division, 0, len(divisions))
	for _, div := range divisions {
		out = append(out, client.Division{
			Code:         div.Code,
			CustomerName: div.CustomerName,
			Description:  div.Description,
			Customer:     div.Customer,
			CustomerCode: div.CustomerCode,
		})
	}
	return out
}
