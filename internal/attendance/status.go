// Package attendance reconciles daily (homeroom) attendance with per-period
// (subject) attendance for one class on one date.
//
// A non-Present daily status is inherited by every period of that day and
// locks the period entry; a Present or missing daily status leaves the period
// entry for the teacher to choose.
package attendance

import "fmt"

// Status attendance status of a student. The zero value means "not recorded".
type Status string

const (
	StatusUnset      Status = ""
	StatusPresent    Status = "Present"
	StatusSick       Status = "Sick"
	StatusPermission Status = "Permission"
	StatusAlpha      Status = "Alpha"
)

// Statuses every recordable status, in display order.
var Statuses = []Status{StatusPresent, StatusSick, StatusPermission, StatusAlpha}

// Valid reports whether s is one of the recordable statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusPresent, StatusSick, StatusPermission, StatusAlpha:
		return true
	default:
		return false
	}
}

// IsSet reports whether a status has been chosen.
func (s Status) IsSet() bool { return s != StatusUnset }

// Absent reports whether s is a whole-day absence that periods inherit.
func (s Status) Absent() bool {
	return s == StatusSick || s == StatusPermission || s == StatusAlpha
}

// Code short Indonesian code used on printed recaps (H/S/I/A).
func (s Status) Code() string {
	switch s {
	case StatusPresent:
		return "H"
	case StatusSick:
		return "S"
	case StatusPermission:
		return "I"
	case StatusAlpha:
		return "A"
	default:
		return ""
	}
}

// ParseStatus converts a raw value into a recordable Status.
func ParseStatus(raw string) (Status, error) {
	s := Status(raw)
	if !s.Valid() {
		return StatusUnset, fmt.Errorf("%w: %q", ErrInvalidStatus, raw)
	}
	return s, nil
}

// Scope distinguishes homeroom records from per-period records.
type Scope string

const (
	ScopeDaily   Scope = "daily"
	ScopeSubject Scope = "subject"
)

// Valid reports whether sc is a known scope.
func (sc Scope) Valid() bool { return sc == ScopeDaily || sc == ScopeSubject }
