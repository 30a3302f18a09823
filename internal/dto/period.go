package dto

// ── period (timetable) module ──

// ListPeriodsQuery either day_of_week or date selects the weekday
type ListPeriodsQuery struct {
	DayOfWeek int    `form:"day_of_week" binding:"omitempty,min=1,max=7"`
	Date      string `form:"date"        binding:"omitempty,date_ymd"`
}

// CreatePeriodRequest create one slot
type CreatePeriodRequest struct {
	DayOfWeek int     `json:"day_of_week" binding:"required,min=1,max=7"`
	StartTime string  `json:"start_time"  binding:"required,datetime=15:04"`
	EndTime   string  `json:"end_time"    binding:"required,datetime=15:04"`
	SubjectID string  `json:"subject_id"  binding:"required,uuid"`
	TeacherID *string `json:"teacher_id"  binding:"omitempty,uuid"`
}

// PeriodResponse one slot
type PeriodResponse struct {
	ID          string  `json:"period_id"`
	ClassID     string  `json:"class_id"`
	DayOfWeek   int     `json:"day_of_week"`
	StartTime   string  `json:"start_time"`
	EndTime     string  `json:"end_time"`
	SubjectID   string  `json:"subject_id"`
	SubjectCode string  `json:"subject_code,omitempty"`
	SubjectName string  `json:"subject_name,omitempty"`
	TeacherID   *string `json:"teacher_id,omitempty"`
}

// ImportPeriodsResponse ICS import result
type ImportPeriodsResponse struct {
	Created []PeriodResponse `json:"created"`
	Skipped []ImportSkip     `json:"skipped"`
}

// ImportSkip one event that was not imported
type ImportSkip struct {
	Summary string `json:"summary"`
	Reason  string `json:"reason"`
}
