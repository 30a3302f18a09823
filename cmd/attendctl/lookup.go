package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Rangga11268/siakad-smp-sub000/internal/attendance"
)

func newClassesCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "classes",
		Short: "List classes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			classes, err := opts.api.ListClasses(cmd.Context())
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tLEVEL\tROOM\tSTUDENTS")
			for _, c := range classes {
				fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%d\n", c.ID, c.Name, c.Level, c.Room, c.StudentCount)
			}
			return tw.Flush()
		},
	}
}

func newPeriodsCmd(opts *rootOptions) *cobra.Command {
	var classID, date string

	cmd := &cobra.Command{
		Use:   "periods",
		Short: "List the periods of a class on a date",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			periods, err := opts.api.ListPeriods(cmd.Context(), classID, date)
			if err != nil {
				return err
			}
			return printPeriods(cmd.OutOrStdout(), periods)
		},
	}

	cmd.Flags().StringVar(&classID, "class", "", "class ID")
	cmd.Flags().StringVar(&date, "date", today(), "date (YYYY-MM-DD)")
	_ = cmd.MarkFlagRequired("class")
	return cmd
}

func printPeriods(w io.Writer, periods []attendance.Period) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tDAY\tTIME\tSUBJECT")
	for _, p := range periods {
		fmt.Fprintf(tw, "%s\t%d\t%s-%s\t%s\n", p.ID, p.DayOfWeek, p.StartTime, p.EndTime, p.SubjectID)
	}
	return tw.Flush()
}
