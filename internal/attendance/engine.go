package attendance

import "sort"

// Student roster member as seen by the engine.
type Student struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Period one scheduled lesson slot of a class.
type Period struct {
	ID        string `json:"id"`
	ClassID   string `json:"class_id"`
	DayOfWeek int    `json:"day_of_week"` // 1=Monday … 7=Sunday
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	SubjectID string `json:"subject_id"`
	TeacherID string `json:"teacher_id,omitempty"`
}

// Record persisted attendance for one student. PeriodID is empty for daily scope.
type Record struct {
	StudentID string `json:"student_id"`
	ClassID   string `json:"class_id"`
	Date      string `json:"date"`
	Scope     Scope  `json:"scope"`
	PeriodID  string `json:"period_id,omitempty"`
	SubjectID string `json:"subject_id,omitempty"`
	Status    Status `json:"status"`
	Note      string `json:"note"`
}

// Entry editable, derived attendance state for one student.
type Entry struct {
	Status Status `json:"status"`
	Note   string `json:"note"`
	Locked bool   `json:"locked"`
}

// Entries reconciled state keyed by student ID.
type Entries map[string]Entry

// Clone returns an independent copy.
func (e Entries) Clone() Entries {
	out := make(Entries, len(e))
	for id, entry := range e {
		out[id] = entry
	}
	return out
}

// StudentIDs returns the keys in ascending order.
func (e Entries) StudentIDs() []string {
	ids := make([]string, 0, len(e))
	for id := range e {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Count tallies entries per recordable status; unset entries are not counted.
func (e Entries) Count() map[Status]int {
	counts := make(map[Status]int, len(Statuses))
	for _, s := range Statuses {
		counts[s] = 0
	}
	for _, entry := range e {
		if entry.Status.Valid() {
			counts[entry.Status]++
		}
	}
	return counts
}

func indexByStudent(records []Record) map[string]Record {
	idx := make(map[string]Record, len(records))
	for _, r := range records {
		idx[r.StudentID] = r
	}
	return idx
}

// DeriveDaily builds the homeroom entries. Daily entries are never locked.
func DeriveDaily(roster []Student, daily []Record) Entries {
	byStudent := indexByStudent(daily)
	entries := make(Entries, len(roster))
	for _, st := range roster {
		rec, ok := byStudent[st.ID]
		if !ok {
			entries[st.ID] = Entry{}
			continue
		}
		entries[st.ID] = Entry{Status: rec.Status, Note: rec.Note}
	}
	return entries
}

// DeriveSubject builds the entries for one period.
//
// An existing subject record wins and stays editable. Otherwise a daily
// Sick/Permission/Alpha is inherited and locked; a daily Present or no daily
// record at all leaves the status unset for the teacher to choose.
func DeriveSubject(roster []Student, daily Entries, subject []Record) Entries {
	byStudent := indexByStudent(subject)
	entries := make(Entries, len(roster))
	for _, st := range roster {
		if rec, ok := byStudent[st.ID]; ok {
			entries[st.ID] = Entry{Status: rec.Status, Note: rec.Note}
			continue
		}
		d := daily[st.ID].Status
		if d.Absent() {
			entries[st.ID] = Entry{Status: d, Locked: true}
			continue
		}
		entries[st.ID] = Entry{}
	}
	return entries
}

// Field entry field targeted by an edit.
type Field int

const (
	FieldStatus Field = iota
	FieldNote
)

// Edit a single user change to one entry.
type Edit struct {
	StudentID string
	Field     Field
	Value     string
}

// ApplyEdit returns entries with the edit applied. Locked entries, unknown
// students and unrecognised status values leave the input unchanged. An empty
// status value clears the status.
func ApplyEdit(entries Entries, e Edit) Entries {
	entry, ok := entries[e.StudentID]
	if !ok || entry.Locked {
		return entries
	}

	switch e.Field {
	case FieldStatus:
		s := Status(e.Value)
		if s.IsSet() && !s.Valid() {
			return entries
		}
		entry.Status = s
	case FieldNote:
		entry.Note = e.Value
	default:
		return entries
	}

	out := entries.Clone()
	out[e.StudentID] = entry
	return out
}

// AutoFillAbsent marks every unlocked, unset entry as Alpha.
func AutoFillAbsent(entries Entries) Entries {
	out := entries.Clone()
	for id, entry := range out {
		if entry.Locked || entry.Status.IsSet() {
			continue
		}
		entry.Status = StatusAlpha
		out[id] = entry
	}
	return out
}
