package model

// Period one weekly timetable slot of a class
type Period struct {
	PeriodID  string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"period_id"`
	ClassID   string  `gorm:"type:uuid;not null;index"                       json:"class_id"`
	DayOfWeek int     `gorm:"not null"                                       json:"day_of_week"` // ISO 1=Monday…7=Sunday
	StartTime string  `gorm:"type:varchar(5);not null"                       json:"start_time"`  // HH:MM
	EndTime   string  `gorm:"type:varchar(5);not null"                       json:"end_time"`
	SubjectID string  `gorm:"type:uuid;not null"                             json:"subject_id"`
	TeacherID *string `gorm:"type:uuid"                                      json:"teacher_id,omitempty"`
	IsActive  bool    `gorm:"not null;default:true"                          json:"is_active"`
	SoftDeleteModel

	Subject *Subject `gorm:"foreignKey:SubjectID;references:SubjectID" json:"subject,omitempty"`
}

// TableName table name
func (Period) TableName() string { return "periods" }
