package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"police_flow_app_go/db"
	"police_flow_app_go/services"
	"police_flow_app_go/services/jobs"

	"github.com/spf13/cobra"
)

var sweepOverdueCmd = &cobra.Command{
	Use:   "sweep-overdue",
	Short: "Mark unpaid bail and fines past their due date as Overdue",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := openDatabase(); err != nil {
			return err
		}
		n := jobs.RunOverdueFines(services.NewWorkflow(db.DB, nil, nil))
		fmt.Fprintf(cmd.OutOrStdout(), "%d bail/fine records marked Overdue\n", n)
		return nil
	},
}

var mostWantedFlags struct {
	limit int
	xlsx  string
}

var mostWantedCmd = &cobra.Command{
	Use:   "most-wanted",
	Short: "Print the most-wanted list or export it as a spreadsheet",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := openDatabase(); err != nil {
			return err
		}
		wf := services.NewWorkflow(db.DB, nil, nil)

		if mostWantedFlags.xlsx != "" {
			buf, err := wf.ExportMostWantedXLSX(mostWantedFlags.limit)
			if err != nil {
				return err
			}
			if err := os.WriteFile(mostWantedFlags.xlsx, buf.Bytes(), 0o644); err != nil {
				return fmt.Errorf("write spreadsheet: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", mostWantedFlags.xlsx)
			return nil
		}

		entries, err := wf.ListMostWanted(mostWantedFlags.limit)
		if err != nil {
			return err
		}
		return printMostWanted(cmd, entries)
	},
}

func init() {
	f := mostWantedCmd.Flags()
	f.IntVar(&mostWantedFlags.limit, "limit", 20, "Maximum entries, 0 for all")
	f.StringVar(&mostWantedFlags.xlsx, "xlsx", "", "Write the list to this .xlsx file instead of printing it")
}

func printMostWanted(cmd *cobra.Command, entries []services.MostWantedEntry) error {
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tNAME\tNATIONAL ID\tSTATUS\tDAYS\tRANKING\tREWARD (IRR)")
	for i, e := range entries {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%d\t%d\t%d\n", i+1, e.Name, e.NationalID, e.Status, e.Rank.MaxDays, e.Ranking, e.RewardAmount)
	}
	return tw.Flush()
}
