package cli

import (
	"fmt"

	invoicedomain "github.com/smallbiznis/invoicer/internal/invoice/domain"
	"github.com/spf13/cobra"
)

func newListCmd() *cobra.Command {
	var (
		query   string
		jsonOut bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored invoices",
		RunE: func(cmd *cobra.Command, args []string) error {
			var svc invoicedomain.Service
			stop, err := startOneShot(cmd.Context(), &svc)
			if err != nil {
				return err
			}
			defer stop()

			invoices, err := svc.ListInvoices(cmd.Context(), invoicedomain.ListInvoicesRequest{Query: query})
			if err != nil {
				return fmt.Errorf("list invoices: %w", err)
			}

			if jsonOut {
				return writeJSON(cmd.OutOrStdout(), invoices)
			}
			fmt.Fprintln(cmd.OutOrStdout(), RenderInvoices(invoices))
			return nil
		},
	}

	cmd.Flags().StringVarP(&query, "query", "q", "", "filter by invoice id or customer name")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "print invoices as JSON")
	return cmd
}
