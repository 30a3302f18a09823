package main

import (
	"github.com/spf13/cobra"
)

func newShowCmd(opts *rootOptions) *cobra.Command {
	sel := &selectionFlags{}

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show reconciled attendance for a class, date and optional period",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := openSession(cmd.Context(), opts, sel)
			if err != nil {
				return err
			}
			return renderView(cmd.OutOrStdout(), s.Snapshot())
		},
	}

	sel.bind(cmd)
	return cmd
}
