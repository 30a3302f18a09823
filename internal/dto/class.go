package dto

// ── class module ──

// ClassResponse class info
type ClassResponse struct {
	ID                string  `json:"class_id"`
	Name              string  `json:"name"`
	Level             int     `json:"level"`
	Room              string  `json:"room,omitempty"`
	HomeroomTeacherID *string `json:"homeroom_teacher_id,omitempty"`
	StudentCount      int64   `json:"student_count"`
}

// StudentResponse one roster entry
type StudentResponse struct {
	ID       string `json:"student_id"`
	NISN     string `json:"nisn,omitempty"`
	Name     string `json:"name"` // full name, falls back to username
	Username string `json:"username"`
	ClassID  string `json:"class_id"`
}
