package cli

import (
	"fmt"
	"strings"

	invoicedomain "github.com/smallbiznis/invoicer/internal/invoice/domain"
	"github.com/smallbiznis/invoicer/internal/invoice/service"
	"github.com/spf13/cobra"
)

func newGenerateCmd() *cobra.Command {
	var paymentID string

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate the invoice for one captured payment",
		Long:  "Run the invoice pipeline once for a payment id, as if a payment captured event had been delivered.",
		RunE: func(cmd *cobra.Command, args []string) error {
			paymentID = strings.TrimSpace(paymentID)
			if paymentID == "" {
				return fmt.Errorf("--payment is required")
			}

			var svc *service.Service
			stop, err := startOneShot(cmd.Context(), &svc)
			if err != nil {
				return err
			}
			defer stop()

			res, err := svc.Generate(cmd.Context(), invoicedomain.PaymentCapturedEvent{PaymentID: paymentID})
			fmt.Fprintln(cmd.OutOrStdout(), RenderResult(res))
			if err != nil {
				return fmt.Errorf("generate invoice: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&paymentID, "payment", "", "captured payment id")
	return cmd
}
