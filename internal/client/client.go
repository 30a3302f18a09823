// Package client talks to the attendance REST API and implements
// attendance.Collaborator on top of it.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Rangga11268/siakad-smp-sub000/internal/attendance"
	"github.com/Rangga11268/siakad-smp-sub000/internal/dto"
)

const defaultTimeout = 15 * time.Second

// ErrUnexpectedResponse the server answered with something that is not an envelope.
var ErrUnexpectedResponse = errors.New("unexpected response from server")

// APIError non-zero business code returned by the server.
type APIError struct {
	StatusCode int
	Code       int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d (http %d): %s", e.Code, e.StatusCode, e.Message)
}

// Busy reports whether the server refused the write because another save
// for the same selection was in progress.
func (e *APIError) Busy() bool {
	return e.StatusCode == http.StatusConflict || e.StatusCode == http.StatusTooManyRequests
}

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Details string          `json:"details"`
}

type listData[T any] struct {
	List []T `json:"list"`
}

// Client REST client for /api/v1.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *zap.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithLogger logs each request at debug level.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// New creates a Client for a server root such as http://localhost:8080.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/") + "/api/v1",
		http:    &http.Client{Timeout: defaultTimeout},
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var _ attendance.Collaborator = (*Client)(nil)

// ────────────────────── collaborator ──────────────────────

// GetRoster students of a class, display names resolved by the server.
func (c *Client) GetRoster(ctx context.Context, classID string) ([]attendance.Student, error) {
	var data listData[dto.StudentResponse]
	if err := c.do(ctx, http.MethodGet, "/classes/"+url.PathEscape(classID)+"/students", nil, nil, &data); err != nil {
		return nil, err
	}

	students := make([]attendance.Student, 0, len(data.List))
	for _, s := range data.List {
		students = append(students, attendance.Student{ID: s.ID, Name: s.Name})
	}
	return students, nil
}

// GetDailyRecords daily-scope records for a class and date.
func (c *Client) GetDailyRecords(ctx context.Context, classID, date string) ([]attendance.Record, error) {
	q := url.Values{"class_id": {classID}, "date": {date}}
	return c.records(ctx, "/attendance/daily", q)
}

// GetSubjectRecords subject-scope records for one period.
func (c *Client) GetSubjectRecords(ctx context.Context, classID, date, periodID string) ([]attendance.Record, error) {
	q := url.Values{"class_id": {classID}, "date": {date}, "period_id": {periodID}}
	return c.records(ctx, "/attendance/subject", q)
}

// SaveAttendanceBatch upserts a batch built by attendance.BuildSavePayload.
func (c *Client) SaveAttendanceBatch(ctx context.Context, batch attendance.Batch) error {
	req := dto.BatchSaveRequest{
		ClassID:  batch.ClassID,
		Date:     batch.Date,
		Scope:    string(batch.Scope),
		PeriodID: batch.PeriodID,
		Records:  make([]dto.BatchRecordInput, 0, len(batch.Records)),
	}
	for _, r := range batch.Records {
		req.Records = append(req.Records, dto.BatchRecordInput{
			StudentID: r.StudentID,
			Status:    string(r.Status),
			Note:      r.Note,
		})
	}

	var res dto.BatchSaveResponse
	return c.do(ctx, http.MethodPost, "/attendance/batch", nil, req, &res)
}

// ────────────────────── lookups ──────────────────────

// ListClasses all classes.
func (c *Client) ListClasses(ctx context.Context) ([]dto.ClassResponse, error) {
	var data listData[dto.ClassResponse]
	if err := c.do(ctx, http.MethodGet, "/classes", nil, nil, &data); err != nil {
		return nil, err
	}
	return data.List, nil
}

// ListPeriods active periods of a class on the weekday of date.
func (c *Client) ListPeriods(ctx context.Context, classID, date string) ([]attendance.Period, error) {
	q := url.Values{}
	if date != "" {
		q.Set("date", date)
	}

	var data listData[dto.PeriodResponse]
	if err := c.do(ctx, http.MethodGet, "/classes/"+url.PathEscape(classID)+"/periods", q, nil, &data); err != nil {
		return nil, err
	}

	periods := make([]attendance.Period, 0, len(data.List))
	for _, p := range data.List {
		teacher := ""
		if p.TeacherID != nil {
			teacher = *p.TeacherID
		}
		periods = append(periods, attendance.Period{
			ID:        p.ID,
			ClassID:   p.ClassID,
			DayOfWeek: p.DayOfWeek,
			StartTime: p.StartTime,
			EndTime:   p.EndTime,
			SubjectID: p.SubjectID,
			TeacherID: teacher,
		})
	}
	return periods, nil
}

// ────────────────────── internals ──────────────────────

func (c *Client) records(ctx context.Context, path string, q url.Values) ([]attendance.Record, error) {
	var data listData[dto.AttendanceRecordResponse]
	if err := c.do(ctx, http.MethodGet, path, q, nil, &data); err != nil {
		return nil, err
	}

	records := make([]attendance.Record, 0, len(data.List))
	for _, r := range data.List {
		status, err := attendance.ParseStatus(r.Status)
		if err != nil {
			return nil, fmt.Errorf("record for student %s: %w", r.StudentID, err)
		}
		records = append(records, attendance.Record{
			StudentID: r.StudentID,
			ClassID:   r.ClassID,
			Date:      r.Date,
			Scope:     attendance.Scope(r.Scope),
			PeriodID:  r.PeriodID,
			SubjectID: r.SubjectID,
			Status:    status,
			Note:      r.Note,
		})
	}
	return records, nil
}

func (c *Client) do(ctx context.Context, method, path string, q url.Values, body, out interface{}) error {
	u := c.baseURL + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	c.logger.Debug("api call",
		zap.String("method", method),
		zap.String("url", u),
		zap.Int("status", resp.StatusCode),
		zap.Duration("latency", time.Since(start)),
	)

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("%w: http %d", ErrUnexpectedResponse, resp.StatusCode)
	}
	if env.Code != 0 || resp.StatusCode >= http.StatusBadRequest {
		msg := env.Message
		if env.Details != "" {
			msg += ": " + env.Details
		}
		return &APIError{StatusCode: resp.StatusCode, Code: env.Code, Message: msg}
	}

	if out == nil || len(env.Data) == 0 || string(env.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}
