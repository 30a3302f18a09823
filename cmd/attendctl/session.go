package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/Rangga11268/siakad-smp-sub000/internal/attendance"
)

var (
	errBadAssignment   = errors.New("expected STUDENT=VALUE")
	errNoSuchStudent   = errors.New("no student matches")
	errAmbiguousName   = errors.New("more than one student matches")
	errPeriodNotListed = errors.New("period is not scheduled for this class on that date")
)

func today() string { return time.Now().Format("2006-01-02") }

type selectionFlags struct {
	classID  string
	date     string
	periodID string
}

func (f *selectionFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.classID, "class", "", "class ID")
	cmd.Flags().StringVar(&f.date, "date", today(), "date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&f.periodID, "period", "", "period ID; omit for daily (homeroom) attendance")
	_ = cmd.MarkFlagRequired("class")
}

// openSession selects and loads; subject scope when a period is given.
func openSession(ctx context.Context, opts *rootOptions, f *selectionFlags) (*attendance.Session, error) {
	scope := attendance.ScopeDaily
	if f.periodID != "" {
		scope = attendance.ScopeSubject
	}

	s := attendance.NewSession(opts.api, scope, opts.logger)
	s.SelectClass(f.classID)
	s.SelectDate(f.date)

	if scope == attendance.ScopeSubject {
		periods, err := opts.api.ListPeriods(ctx, f.classID, f.date)
		if err != nil {
			return nil, err
		}
		p, err := findPeriod(periods, f.periodID)
		if err != nil {
			return nil, err
		}
		s.SelectPeriod(p)
	}

	if err := s.Load(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func findPeriod(periods []attendance.Period, id string) (*attendance.Period, error) {
	for i := range periods {
		if periods[i].ID == id {
			return &periods[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %s", errPeriodNotListed, id)
}

// parseAssignment splits "key=value"; the key may not be empty.
func parseAssignment(raw string) (string, string, error) {
	key, value, ok := strings.Cut(raw, "=")
	key = strings.TrimSpace(key)
	if !ok || key == "" {
		return "", "", fmt.Errorf("%q: %w", raw, errBadAssignment)
	}
	return key, strings.TrimSpace(value), nil
}

// resolveStudent matches a student ID exactly, or a display name case-insensitively.
func resolveStudent(roster []attendance.Student, key string) (string, error) {
	var match string
	for _, st := range roster {
		if st.ID == key {
			return st.ID, nil
		}
		if strings.EqualFold(st.Name, key) {
			if match != "" {
				return "", fmt.Errorf("%q: %w", key, errAmbiguousName)
			}
			match = st.ID
		}
	}
	if match == "" {
		return "", fmt.Errorf("%q: %w", key, errNoSuchStudent)
	}
	return match, nil
}

// renderView prints the roster with derived entries and a status tally.
func renderView(w io.Writer, v attendance.View) error {
	sel := v.Selection
	header := fmt.Sprintf("class %s  date %s  %s", sel.ClassID, sel.Date, sel.Scope)
	if sel.Period != nil {
		header += fmt.Sprintf("  period %s %s-%s", sel.Period.SubjectID, sel.Period.StartTime, sel.Period.EndTime)
	}
	fmt.Fprintln(w, header)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NO\tSTUDENT\tNAME\tSTATUS\tNOTE\t")
	for i, st := range v.Roster {
		e := v.Entries[st.ID]
		status := string(e.Status)
		if status == "" {
			status = "-"
		}
		lock := ""
		if e.Locked {
			lock = "(daily)"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n", i+1, st.ID, st.Name, status, e.Note, lock)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	counts := v.Entries.Count()
	parts := make([]string, 0, len(attendance.Statuses)+1)
	for _, s := range attendance.Statuses {
		parts = append(parts, fmt.Sprintf("%s %d", s, counts[s]))
	}
	parts = append(parts, fmt.Sprintf("unset %d", len(v.Entries)-sumCounts(counts)))
	_, err := fmt.Fprintln(w, strings.Join(parts, "  "))
	return err
}

func sumCounts(counts map[attendance.Status]int) int {
	n := 0
	for _, c := range counts {
		n += c
	}
	return n
}
