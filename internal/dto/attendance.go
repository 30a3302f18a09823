package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ── attendance module ──

// DailyRecordsQuery GET /attendance/daily
type DailyRecordsQuery struct {
	ClassID string `form:"class_id" binding:"required,uuid"`
	Date    string `form:"date"     binding:"required,date_ymd"`
}

// SubjectRecordsQuery GET /attendance/subject
type SubjectRecordsQuery struct {
	ClassID  string `form:"class_id"  binding:"required,uuid"`
	Date     string `form:"date"      binding:"required,date_ymd"`
	PeriodID string `form:"period_id" binding:"required,uuid"`
}

// ReconcileQuery GET /attendance/reconcile; no period_id means daily scope
type ReconcileQuery struct {
	ClassID  string `form:"class_id"  binding:"required,uuid"`
	Date     string `form:"date"      binding:"required,date_ymd"`
	PeriodID string `form:"period_id" binding:"omitempty,uuid"`
}

// BatchSaveRequest POST /attendance/batch
type BatchSaveRequest struct {
	ClassID  string             `json:"class_id"  binding:"required,uuid"`
	Date     string             `json:"date"      binding:"required,date_ymd"`
	Scope    string             `json:"scope"     binding:"required,oneof=daily subject"`
	PeriodID string             `json:"period_id" binding:"omitempty,uuid"`
	Records  []BatchRecordInput `json:"records"   binding:"required,min=1,dive"`
}

// BatchRecordInput one student's status
type BatchRecordInput struct {
	StudentID string `json:"student_id" binding:"required,uuid"`
	Status    string `json:"status"     binding:"required,attendance_status"`
	Note      string `json:"note"       binding:"max=500"`
}

// BatchSaveResponse upsert result
type BatchSaveResponse struct {
	Saved int `json:"saved"`
}

// AttendanceRecordResponse one persisted record
type AttendanceRecordResponse struct {
	ID        string `json:"attendance_id"`
	StudentID string `json:"student_id"`
	ClassID   string `json:"class_id"`
	Date      string `json:"date"`
	Scope     string `json:"scope"`
	PeriodID  string `json:"period_id,omitempty"`
	SubjectID string `json:"subject_id,omitempty"`
	Status    string `json:"status"`
	Note      string `json:"note"`
}

// ReconcileResponse server-side engine run for one selection
type ReconcileResponse struct {
	ClassID  string           `json:"class_id"`
	Date     string           `json:"date"`
	Scope    string           `json:"scope"`
	PeriodID string           `json:"period_id,omitempty"`
	Entries  []ReconciledItem `json:"entries"`
	Counts   map[string]int   `json:"counts"`
}

// ReconciledItem one roster student with the entry shown to the editor
type ReconciledItem struct {
	StudentID string `json:"student_id"`
	Name      string `json:"name"`
	Status    string `json:"status,omitempty"`
	Note      string `json:"note"`
	Locked    bool   `json:"locked"`
}

// ── summaries ──

// StatusTally per-status counts and presence rate (percent, 2 decimals)
type StatusTally struct {
	Present      int             `json:"present"`
	Sick         int             `json:"sick"`
	Permission   int             `json:"permission"`
	Alpha        int             `json:"alpha"`
	Total        int             `json:"total"`
	PresenceRate decimal.Decimal `json:"presence_rate"`
}

// StudentSummaryResponse daily attendance recap of one student
type StudentSummaryResponse struct {
	StudentID string `json:"student_id"`
	Name      string `json:"name"`
	From      string `json:"from,omitempty"`
	To        string `json:"to,omitempty"`
	StatusTally
}

// ClassSummaryResponse daily attendance recap of a class
type ClassSummaryResponse struct {
	ClassID   string                   `json:"class_id"`
	ClassName string                   `json:"class_name"`
	From      string                   `json:"from,omitempty"`
	To        string                   `json:"to,omitempty"`
	Students  []StudentSummaryResponse `json:"students"`
	Total     StatusTally              `json:"total"`
}

// ExportAttendanceQuery GET /export/attendance
type ExportAttendanceQuery struct {
	ClassID string `form:"class_id" binding:"required,uuid"`
	From    string `form:"from"     binding:"required,date_ymd"`
	To      string `form:"to"       binding:"required,date_ymd"`
}

// ── QR check-in ──

// CheckinTokenQuery GET /attendance/checkin/token and /attendance/checkin/qr
type CheckinTokenQuery struct {
	StudentID string `form:"student_id" binding:"required,uuid"`
}

// CheckinTokenResponse signed token a student shows as a QR code
type CheckinTokenResponse struct {
	StudentID string    `json:"student_id"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// CheckinRequest POST /attendance/checkin
type CheckinRequest struct {
	Token string `json:"token" binding:"required"`
}

// CheckinResponse outcome of a scan; AlreadyRecorded means today's daily
// record existed and was left untouched
type CheckinResponse struct {
	StudentID       string `json:"student_id"`
	Name            string `json:"name"`
	ClassID         string `json:"class_id"`
	Date            string `json:"date"`
	Status          string `json:"status"`
	AlreadyRecorded bool   `json:"already_recorded"`
}
