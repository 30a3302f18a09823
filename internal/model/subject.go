package model

// Subject mata pelajaran
type Subject struct {
	SubjectID string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"subject_id"`
	Code      string `gorm:"type:varchar(20);not null;uniqueIndex"          json:"code"`
	Name      string `gorm:"type:varchar(100);not null"                     json:"name"`
	SoftDeleteModel
}

// TableName table name
func (Subject) TableName() string { return "subjects" }
