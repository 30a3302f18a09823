package attendance

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// Collaborator persistence API the session reads from and writes to.
type Collaborator interface {
	GetRoster(ctx context.Context, classID string) ([]Student, error)
	GetDailyRecords(ctx context.Context, classID, date string) ([]Record, error)
	GetSubjectRecords(ctx context.Context, classID, date, periodID string) ([]Record, error)
	SaveAttendanceBatch(ctx context.Context, batch Batch) error
}

// State lifecycle of a session's entry map.
type State int

const (
	StateIdle State = iota
	StateLoading
	StateReady
	StateSaving
	StateError
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateSaving:
		return "saving"
	case StateError:
		return "error"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// View immutable snapshot of a session.
type View struct {
	State     State
	Selection Selection
	Roster    []Student
	Daily     Entries
	Entries   Entries
	Err       error
}

// Session drives one attendance screen: selection → load → edit → save.
//
// Every selection change bumps a generation counter; fetch results carrying an
// older generation are dropped, so a slow response for a previous selection
// never overwrites the current one. I/O runs outside the lock.
type Session struct {
	mu     sync.Mutex
	collab Collaborator
	logger *zap.Logger

	sel     Selection
	state   State
	gen     uint64
	roster  []Student
	daily   Entries
	entries Entries
	err     error
}

// NewSession creates a session for the given scope.
func NewSession(collab Collaborator, scope Scope, logger *zap.Logger) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Session{
		collab: collab,
		logger: logger,
		sel:    Selection{Scope: scope},
	}
}

// ── selection actions ──

// SelectClass switches the class and invalidates loaded entries.
func (s *Session) SelectClass(classID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sel.ClassID = classID
	s.resetLocked()
}

// SelectDate switches the date (YYYY-MM-DD) and invalidates loaded entries.
func (s *Session) SelectDate(date string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sel.Date = date
	s.resetLocked()
}

// SelectPeriod switches the period; nil clears it.
func (s *Session) SelectPeriod(p *Period) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p == nil {
		s.sel.Period = nil
	} else {
		cp := *p
		s.sel.Period = &cp
	}
	s.resetLocked()
}

func (s *Session) resetLocked() {
	s.gen++
	s.state = StateIdle
	s.roster = nil
	s.daily = nil
	s.entries = nil
	s.err = nil
}

// ── I/O actions ──

// Load fetches roster and records for the current selection and derives the
// entries. A result that arrives after the selection changed is discarded.
func (s *Session) Load(ctx context.Context) error {
	s.mu.Lock()
	sel := s.sel
	if sel.ClassID == "" || sel.Date == "" {
		s.mu.Unlock()
		return ErrNoClassSelected
	}
	if sel.Scope == ScopeSubject && sel.Period == nil {
		s.mu.Unlock()
		return ErrNoPeriodSelected
	}
	gen := s.gen
	s.state = StateLoading
	s.mu.Unlock()

	roster, daily, entries, err := s.fetch(ctx, sel)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gen != gen {
		s.logger.Debug("discarding stale attendance fetch", zap.String("key", sel.Key()))
		return nil
	}
	if err != nil {
		s.state = StateError
		s.err = err
		s.roster, s.daily, s.entries = nil, nil, nil
		return err
	}
	s.roster = roster
	s.daily = daily
	s.entries = entries
	s.state = StateReady
	s.err = nil
	return nil
}

func (s *Session) fetch(ctx context.Context, sel Selection) ([]Student, Entries, Entries, error) {
	roster, err := s.collab.GetRoster(ctx, sel.ClassID)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load roster: %w", err)
	}
	dailyRecords, err := s.collab.GetDailyRecords(ctx, sel.ClassID, sel.Date)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load daily attendance: %w", err)
	}
	daily := DeriveDaily(roster, dailyRecords)
	if sel.Scope == ScopeDaily {
		return roster, daily, daily, nil
	}

	subjectRecords, err := s.collab.GetSubjectRecords(ctx, sel.ClassID, sel.Date, sel.Period.ID)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load subject attendance: %w", err)
	}
	return roster, daily, DeriveSubject(roster, daily, subjectRecords), nil
}

// Save validates and persists the current entries, then reloads them from the
// persisted truth. Validation errors leave the session untouched; a failed
// save keeps the edits and moves the session to StateError for a retry.
func (s *Session) Save(ctx context.Context) error {
	s.mu.Lock()
	if !s.editableLocked() {
		s.mu.Unlock()
		return ErrNotReady
	}
	batch, err := BuildSavePayload(s.entries, s.sel)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	gen := s.gen
	s.state = StateSaving
	s.mu.Unlock()

	saveErr := s.collab.SaveAttendanceBatch(ctx, batch)

	s.mu.Lock()
	current := s.gen == gen
	if saveErr != nil {
		if current {
			s.state = StateError
			s.err = saveErr
		}
		s.mu.Unlock()
		return fmt.Errorf("save attendance: %w", saveErr)
	}
	if !current {
		s.mu.Unlock()
		return nil
	}
	s.mu.Unlock()

	s.logger.Info("attendance saved",
		zap.String("key", batch.Key()),
		zap.Int("records", len(batch.Records)),
	)
	return s.Load(ctx)
}

// ── local actions ──

// Edit applies one user change. Locked entries reject every change.
func (s *Session) Edit(e Edit) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.editableLocked() {
		return ErrNotReady
	}
	entry, ok := s.entries[e.StudentID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownStudent, e.StudentID)
	}
	if entry.Locked {
		return ErrEntryLocked
	}
	if e.Field == FieldStatus && e.Value != "" {
		if _, err := ParseStatus(e.Value); err != nil {
			return err
		}
	}
	s.entries = ApplyEdit(s.entries, e)
	return nil
}

// AutoFill marks every unlocked student without a status as Alpha.
func (s *Session) AutoFill() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.editableLocked() {
		return ErrNotReady
	}
	s.entries = AutoFillAbsent(s.entries)
	return nil
}

// Snapshot returns a copy of the session state.
func (s *Session) Snapshot() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	v := View{
		State:     s.state,
		Selection: s.sel,
		Err:       s.err,
	}
	if s.sel.Period != nil {
		p := *s.sel.Period
		v.Selection.Period = &p
	}
	if s.roster != nil {
		v.Roster = append([]Student(nil), s.roster...)
	}
	if s.daily != nil {
		v.Daily = s.daily.Clone()
	}
	if s.entries != nil {
		v.Entries = s.entries.Clone()
	}
	return v
}

// editableLocked: entries loaded for the current selection and no I/O in flight.
func (s *Session) editableLocked() bool {
	return s.entries != nil && (s.state == StateReady || s.state == StateError)
}
