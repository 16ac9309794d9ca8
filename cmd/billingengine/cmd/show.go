package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var showFormat string

var showCmd = &cobra.Command{
	Use:   "show <report-id>",
	Short: "Print a stored billing report",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := checkFormat(showFormat); err != nil {
			return err
		}
		id, err := parseReportID(args[0])
		if err != nil {
			return err
		}
		return withEngine(cmd.Context(), func(ctx context.Context, e engine) error {
			report, err := e.Reports.GetReport(ctx, id)
			if err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), showFormat, report, e.Config.Get().RoundingPlaces)
		})
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete <report-id>",
	Short: "Delete a stored billing report and its breakdown",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseReportID(args[0])
		if err != nil {
			return err
		}
		return withEngine(cmd.Context(), func(ctx context.Context, e engine) error {
			if err := e.Reports.DeleteReport(ctx, id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted report %s\n", id)
			return nil
		})
	},
}

func init() {
	showCmd.Flags().StringVarP(&showFormat, "format", "f", formatJSON, "output format (json, table)")
}
