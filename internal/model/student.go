package model

// Student one enrolled student
type Student struct {
	StudentID string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"student_id"`
	NISN      string `gorm:"type:varchar(20);uniqueIndex"                   json:"nisn,omitempty"`
	FullName  string `gorm:"type:varchar(100)"                              json:"full_name"`
	Username  string `gorm:"type:varchar(50);not null"                      json:"username"`
	ClassID   string `gorm:"type:uuid;not null;index"                       json:"class_id"`
	SoftDeleteModel

	Class *Class `gorm:"foreignKey:ClassID;references:ClassID" json:"class,omitempty"`
}

// TableName table name
func (Student) TableName() string { return "students" }

// DisplayName full name, falling back to the username
func (s *Student) DisplayName() string {
	if s.FullName != "" {
		return s.FullName
	}
	return s.Username
}
