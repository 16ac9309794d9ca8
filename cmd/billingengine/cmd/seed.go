package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/smallbiznis/fulfillment-billing/internal/seed"
	"github.com/spf13/cobra"
)

var seedMonth string

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create a demo customer with services and a month of orders",
	Long: `Create the DEMO customer with one service of every charge type and a
month of orders. Running it again leaves existing demo data untouched.

Example:
  billingengine seed --month 2024-02
  billingengine report --customer DEMO --from 2024-02-01 --to 2024-02-29`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		month := time.Now().UTC()
		if seedMonth != "" {
			parsed, err := time.Parse("2006-01", seedMonth)
			if err != nil {
				return fmt.Errorf("month must be YYYY-MM: %w", err)
			}
			month = parsed
		}

		return withEngine(cmd.Context(), func(ctx context.Context, e engine) error {
			id, err := seed.EnsureDemoData(ctx, e.DB, e.IDs, month)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "demo customer %s (%s) ready\n", seed.DemoCustomerCode, id)
			return nil
		})
	},
}

func init() {
	seedCmd.Flags().StringVar(&seedMonth, "month", "", "month of the demo orders (YYYY-MM, default current month)")
}
