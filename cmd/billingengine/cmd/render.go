package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	billingreportdomain "github.com/smallbiznis/fulfillment-billing/internal/billingreport/domain"
)

const (
	formatJSON  = "json"
	formatTable = "table"
)

func checkFormat(format string) error {
	switch format {
	case formatJSON, formatTable:
		return nil
	default:
		return fmt.Errorf("unsupported format %q (json, table)", format)
	}
}

func render(w io.Writer, format string, report *billingreportdomain.BillingReport, places int32) error {
	if format == formatTable {
		return renderTable(w, report, places)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(report.ToView(places))
}

func renderTable(w io.Writer, report *billingreportdomain.BillingReport, places int32) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	fmt.Fprintf(tw, "Report\t%s\n", report.ID)
	fmt.Fprintf(tw, "Customer\t%s\n", report.CustomerID)
	fmt.Fprintf(tw, "Period\t%s .. %s\n", report.StartDate.Format("2006-01-02"), report.EndDate.Format("2006-01-02"))
	fmt.Fprintf(tw, "Orders\t%d\n", report.OrderCount)
	fmt.Fprintf(tw, "Total\t%s %s\n\n", report.TotalAmount.StringFixed(places), report.Currency)

	fmt.Fprintln(tw, "SERVICE\tCHARGE TYPE\tAMOUNT")
	for _, total := range report.ServiceTotals {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", total.Name, total.ChargeType, total.Amount.StringFixed(places))
	}
	fmt.Fprintln(tw)

	fmt.Fprintln(tw, "ORDER\tSERVICE\tREASON\tQUANTITY\tAMOUNT")
	for _, order := range report.Orders {
		for _, svc := range order.Services {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
				order.OrderNumber,
				svc.Name,
				svc.Reason,
				svc.Quantity.String(),
				svc.Amount.StringFixed(places),
			)
		}
		fmt.Fprintf(tw, "%s\t%s\t\t\t%s\n", order.OrderNumber, "subtotal", order.TotalAmount.StringFixed(places))
	}
	return tw.Flush()
}
