package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var checkCustomer string

var checkCmd = &cobra.Command{
	Use:   "check-config",
	Short: "Validate a customer's service configuration",
	Long: `Compile every active service of a customer: charge types, prices, tier
tables, excluded SKU lists and rule groups. The first configuration error is
reported and the command exits non-zero.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEngine(cmd.Context(), func(ctx context.Context, e engine) error {
			customerID, err := resolveCustomer(ctx, e, checkCustomer)
			if err != nil {
				return err
			}
			if err := e.Reports.ValidateConfiguration(ctx, customerID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "configuration of customer %s is valid\n", customerID)
			return nil
		})
	},
}

func init() {
	checkCmd.Flags().StringVarP(&checkCustomer, "customer", "c", "", "customer id or code")
	_ = checkCmd.MarkFlagRequired("customer")
}
