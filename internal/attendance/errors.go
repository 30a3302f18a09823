package attendance

import "errors"

var (
	// ErrEmptySelection no student has a status, nothing to save
	ErrEmptySelection = errors.New("no attendance status selected")
	// ErrNoPeriodSelected subject attendance needs a period
	ErrNoPeriodSelected = errors.New("no period selected")
	// ErrInvalidStatus value is not a recordable status
	ErrInvalidStatus = errors.New("invalid attendance status")
	// ErrNotReady entries for the current selection are not loaded yet
	ErrNotReady = errors.New("attendance entries are not loaded")
	// ErrEntryLocked entry inherits the daily status and cannot be edited
	ErrEntryLocked = errors.New("attendance entry is locked by daily status")
	// ErrUnknownStudent student is not on the loaded roster
	ErrUnknownStudent = errors.New("student is not on the roster")
	// ErrNoClassSelected class or date missing from the selection
	ErrNoClassSelected = errors.New("class and date must be selected")
)
