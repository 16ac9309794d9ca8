package cmd

import (
	"context"
	"time"

	billingreportdomain "github.com/smallbiznis/fulfillment-billing/internal/billingreport/domain"
	"github.com/smallbiznis/fulfillment-billing/pkg/errs"
	"github.com/spf13/cobra"
)

var (
	reportCustomer string
	reportFrom     string
	reportTo       string
	reportFormat   string
	reportPersist  bool
	reportNoCache  bool
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Generate a billing report for a customer",
	Long: `Generate a billing report for a customer over an inclusive date range.

Every configured service appears in each order's breakdown, including the
ones that did not apply, together with the reason.

Examples:
  billingengine report --customer ACME --from 2024-01-01 --to 2024-01-31
  billingengine report --customer ACME --from 2024-01-01 --to 2024-01-31 --persist=false
  billingengine report --customer ACME --from 2024-01-01 --to 2024-01-31 --format table`,
	Args: cobra.NoArgs,
	RunE: runReport,
}

func init() {
	reportCmd.Flags().StringVarP(&reportCustomer, "customer", "c", "", "customer id or code")
	reportCmd.Flags().StringVar(&reportFrom, "from", "", "first day of the range (YYYY-MM-DD)")
	reportCmd.Flags().StringVar(&reportTo, "to", "", "last day of the range, inclusive (YYYY-MM-DD)")
	reportCmd.Flags().StringVarP(&reportFormat, "format", "f", formatJSON, "output format (json, table)")
	reportCmd.Flags().BoolVar(&reportPersist, "persist", true, "store the report, overriding the engine persist_reports setting")
	reportCmd.Flags().BoolVar(&reportNoCache, "no-cache", false, "ignore cached reports")
	_ = reportCmd.MarkFlagRequired("customer")
	_ = reportCmd.MarkFlagRequired("from")
	_ = reportCmd.MarkFlagRequired("to")
}

func runReport(cmd *cobra.Command, args []string) error {
	if err := checkFormat(reportFormat); err != nil {
		return err
	}
	from, err := parseDate("from", reportFrom)
	if err != nil {
		return err
	}
	to, err := parseDate("to", reportTo)
	if err != nil {
		return err
	}

	req := billingreportdomain.GenerateRequest{
		StartDate:   from,
		EndDate:     to,
		BypassCache: reportNoCache,
	}
	if cmd.Flags().Changed("persist") {
		persist := reportPersist
		req.Persist = &persist
	}

	return withEngine(cmd.Context(), func(ctx context.Context, e engine) error {
		customerID, err := resolveCustomer(ctx, e, reportCustomer)
		if err != nil {
			return err
		}
		req.CustomerID = customerID

		report, err := e.Reports.GenerateReport(ctx, req)
		if err != nil {
			return err
		}
		return render(cmd.OutOrStdout(), reportFormat, report, e.Config.Get().RoundingPlaces)
	})
}

func parseDate(name, raw string) (time.Time, error) {
	t, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		return time.Time{}, errs.Validation("dates must be YYYY-MM-DD", billingreportdomain.ErrInvalidDateRange).
			With("flag", name).
			With("value", raw)
	}
	return t, nil
}
