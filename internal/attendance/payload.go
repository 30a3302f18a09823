package attendance

// Selection the class/date (and for subject scope, period) being edited.
type Selection struct {
	ClassID string
	Date    string
	Scope   Scope
	Period  *Period
}

// Key identifies the persisted record set a selection maps to.
func (s Selection) Key() string {
	key := string(s.Scope) + ":" + s.ClassID + ":" + s.Date
	if s.Scope == ScopeSubject && s.Period != nil {
		key += ":" + s.Period.ID
	}
	return key
}

// Batch one scope's records for one class/date(/period), saved in a single call.
type Batch struct {
	ClassID   string   `json:"class_id"`
	Date      string   `json:"date"`
	Scope     Scope    `json:"scope"`
	PeriodID  string   `json:"period_id,omitempty"`
	SubjectID string   `json:"subject_id,omitempty"`
	Records   []Record `json:"records"`
}

// Key identifies the persisted record set the batch overwrites.
func (b Batch) Key() string {
	sel := Selection{ClassID: b.ClassID, Date: b.Date, Scope: b.Scope}
	if b.Scope == ScopeSubject {
		sel.Period = &Period{ID: b.PeriodID}
	}
	return sel.Key()
}

// BuildSavePayload shapes the entries that carry a status into a batch.
// Inherited (locked) statuses are saved as well.
func BuildSavePayload(entries Entries, sel Selection) (Batch, error) {
	if sel.Scope == ScopeSubject && sel.Period == nil {
		return Batch{}, ErrNoPeriodSelected
	}

	batch := Batch{
		ClassID: sel.ClassID,
		Date:    sel.Date,
		Scope:   sel.Scope,
	}
	if sel.Scope == ScopeSubject {
		batch.PeriodID = sel.Period.ID
		batch.SubjectID = sel.Period.SubjectID
	}

	for _, id := range entries.StudentIDs() {
		entry := entries[id]
		if !entry.Status.IsSet() {
			continue
		}
		batch.Records = append(batch.Records, Record{
			StudentID: id,
			ClassID:   batch.ClassID,
			Date:      batch.Date,
			Scope:     batch.Scope,
			PeriodID:  batch.PeriodID,
			SubjectID: batch.SubjectID,
			Status:    entry.Status,
			Note:      entry.Note,
		})
	}

	if len(batch.Records) == 0 {
		return Batch{}, ErrEmptySelection
	}
	return batch, nil
}
