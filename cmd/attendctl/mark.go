package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Rangga11268/siakad-smp-sub000/internal/attendance"
	"github.com/Rangga11268/siakad-smp-sub000/internal/client"
)

type markOptions struct {
	statuses  []string
	notes     []string
	autoAlpha bool
	dryRun    bool
}

func newMarkCmd(opts *rootOptions) *cobra.Command {
	sel := &selectionFlags{}
	mo := &markOptions{}

	cmd := &cobra.Command{
		Use:   "mark",
		Short: "Edit attendance and save it as one batch",
		Example: "  attendctl mark --class 7A-ID --set Budi=Sick --note Budi=demam --auto-alpha\n" +
			"  attendctl mark --class 7A-ID --period P-ID --set Adi=Present",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := openSession(cmd.Context(), opts, sel)
			if err != nil {
				return err
			}

			if err := applyMarks(s, mo); err != nil {
				return err
			}

			if mo.dryRun {
				return renderView(cmd.OutOrStdout(), s.Snapshot())
			}

			if err := s.Save(cmd.Context()); err != nil {
				var apiErr *client.APIError
				if errors.As(err, &apiErr) && apiErr.Busy() {
					return fmt.Errorf("attendance is being saved by someone else, retry in a moment: %w", err)
				}
				return err
			}
			opts.logger.Info("attendance saved",
				zap.String("class_id", sel.classID),
				zap.String("date", sel.date),
				zap.String("period_id", sel.periodID),
			)
			return renderView(cmd.OutOrStdout(), s.Snapshot())
		},
	}

	sel.bind(cmd)
	f := cmd.Flags()
	f.StringArrayVar(&mo.statuses, "set", nil, "STUDENT=Present|Sick|Permission|Alpha (repeatable; empty value clears)")
	f.StringArrayVar(&mo.notes, "note", nil, "STUDENT=text (repeatable)")
	f.BoolVar(&mo.autoAlpha, "auto-alpha", false, "mark every student without a status as Alpha")
	f.BoolVar(&mo.dryRun, "dry-run", false, "print the result without saving")
	return cmd
}

// applyMarks applies status edits, then notes, then the optional auto-fill.
func applyMarks(s *attendance.Session, mo *markOptions) error {
	roster := s.Snapshot().Roster

	apply := func(raw string, field attendance.Field) error {
		key, value, err := parseAssignment(raw)
		if err != nil {
			return err
		}
		id, err := resolveStudent(roster, key)
		if err != nil {
			return err
		}
		if err := s.Edit(attendance.Edit{StudentID: id, Field: field, Value: value}); err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		return nil
	}

	for _, raw := range mo.statuses {
		if err := apply(raw, attendance.FieldStatus); err != nil {
			return err
		}
	}
	for _, raw := range mo.notes {
		if err := apply(raw, attendance.FieldNote); err != nil {
			return err
		}
	}
	if mo.autoAlpha {
		return s.AutoFill()
	}
	return nil
}
