package model

// Class homeroom class (rombel), e.g. "7A"
type Class struct {
	ClassID           string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"class_id"`
	Name              string  `gorm:"type:varchar(20);not null;uniqueIndex"          json:"name"`
	Level             int     `gorm:"not null"                                       json:"level"`
	Room              string  `gorm:"type:varchar(50)"                               json:"room,omitempty"`
	HomeroomTeacherID *string `gorm:"type:uuid"                                      json:"homeroom_teacher_id,omitempty"`
	SoftDeleteModel
}

// TableName table name
func (Class) TableName() string { return "classes" }
