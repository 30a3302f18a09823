package model

import "time"

// AttendanceRecord one persisted attendance status.
// PeriodID nil means a daily (homeroom) record, otherwise a subject record.
type AttendanceRecord struct {
	AttendanceID string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"attendance_id"`
	StudentID    string    `gorm:"type:uuid;not null"                             json:"student_id"`
	ClassID      string    `gorm:"type:uuid;not null"                             json:"class_id"`
	Date         time.Time `gorm:"type:date;not null"                             json:"date"`
	PeriodID     *string   `gorm:"type:uuid"                                      json:"period_id,omitempty"`
	SubjectID    *string   `gorm:"type:uuid"                                      json:"subject_id,omitempty"`
	Status       string    `gorm:"type:varchar(20);not null"                      json:"status"`
	Note         string    `gorm:"type:text;not null;default:''"                  json:"note"`
	RecordedBy   *string   `gorm:"type:uuid"                                      json:"recorded_by,omitempty"`
	BaseModel

	Student *Student `gorm:"foreignKey:StudentID;references:StudentID" json:"student,omitempty"`
}

// TableName table name
func (AttendanceRecord) TableName() string { return "attendance_records" }

// StatusCount one row of a grouped status count
type StatusCount struct {
	StudentID string
	Status    string
	Count     int64
}
