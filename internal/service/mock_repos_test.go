package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"gorm.io/gorm"

	"github.com/Rangga11268/siakad-smp-sub000/internal/model"
	"github.com/Rangga11268/siakad-smp-sub000/internal/repository"
	pkgerrors "github.com/Rangga11268/siakad-smp-sub000/pkg/errors"
)

// ── Mock ClassRepository ──

type mockClassRepo struct {
	classes  map[string]*model.Class
	students *mockStudentRepo
}

func newMockClassRepo(students *mockStudentRepo) *mockClassRepo {
	return &mockClassRepo{classes: make(map[string]*model.Class), students: students}
}

func (m *mockClassRepo) GetByID(_ context.Context, id string) (*model.Class, error) {
	if c, ok := m.classes[id]; ok {
		return c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockClassRepo) List(_ context.Context) ([]model.Class, error) {
	var result []model.Class
	for _, c := range m.classes {
		result = append(result, *c)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func (m *mockClassRepo) CountStudents(_ context.Context) (map[string]int64, error) {
	counts := make(map[string]int64)
	for _, s := range m.students.students {
		counts[s.ClassID]++
	}
	return counts, nil
}

// ── Mock StudentRepository ──

type mockStudentRepo struct {
	students map[string]*model.Student
	calls    int
}

func newMockStudentRepo() *mockStudentRepo {
	return &mockStudentRepo{students: make(map[string]*model.Student)}
}

func (m *mockStudentRepo) GetByID(_ context.Context, id string) (*model.Student, error) {
	if s, ok := m.students[id]; ok {
		return s, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockStudentRepo) ListByClass(_ context.Context, classID string) ([]model.Student, error) {
	m.calls++
	var result []model.Student
	for _, s := range m.students {
		if s.ClassID == classID {
			result = append(result, *s)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].DisplayName() < result[j].DisplayName() })
	return result, nil
}

// ── Mock SubjectRepository ──

type mockSubjectRepo struct {
	subjects map[string]*model.Subject
}

func newMockSubjectRepo() *mockSubjectRepo {
	return &mockSubjectRepo{subjects: make(map[string]*model.Subject)}
}

func (m *mockSubjectRepo) GetByID(_ context.Context, id string) (*model.Subject, error) {
	if s, ok := m.subjects[id]; ok {
		return s, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockSubjectRepo) List(_ context.Context) ([]model.Subject, error) {
	var result []model.Subject
	for _, s := range m.subjects {
		result = append(result, *s)
	}
	return result, nil
}

// ── Mock PeriodRepository ──

type mockPeriodRepo struct {
	periods  map[string]*model.Period
	subjects *mockSubjectRepo
	seq      int
	batchErr error
}

func newMockPeriodRepo(subjects *mockSubjectRepo) *mockPeriodRepo {
	return &mockPeriodRepo{periods: make(map[string]*model.Period), subjects: subjects}
}

func (m *mockPeriodRepo) Create(_ context.Context, p *model.Period) error {
	if p.PeriodID == "" {
		m.seq++
		p.PeriodID = fmt.Sprintf("period-%d", m.seq)
	}
	cp := *p
	m.periods[p.PeriodID] = &cp
	return nil
}

func (m *mockPeriodRepo) BatchCreate(ctx context.Context, periods []model.Period) error {
	if m.batchErr != nil {
		return m.batchErr
	}
	for i := range periods {
		if err := m.Create(ctx, &periods[i]); err != nil {
			return err
		}
	}
	return nil
}

func (m *mockPeriodRepo) GetByID(_ context.Context, id string) (*model.Period, error) {
	p, ok := m.periods[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *p
	cp.Subject = m.subjects.subjects[p.SubjectID]
	return &cp, nil
}

func (m *mockPeriodRepo) ListByClass(_ context.Context, classID string, dayOfWeek int) ([]model.Period, error) {
	var result []model.Period
	for _, p := range m.periods {
		if p.ClassID != classID || (dayOfWeek > 0 && p.DayOfWeek != dayOfWeek) {
			continue
		}
		cp := *p
		cp.Subject = m.subjects.subjects[p.SubjectID]
		result = append(result, cp)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].DayOfWeek != result[j].DayOfWeek {
			return result[i].DayOfWeek < result[j].DayOfWeek
		}
		return result[i].StartTime < result[j].StartTime
	})
	return result, nil
}

func (m *mockPeriodRepo) Delete(_ context.Context, id string) error {
	delete(m.periods, id)
	return nil
}

// ── Mock AttendanceRepository ──

type mockAttendanceRepo struct {
	// key: student|class|date|period
	records   map[string]model.AttendanceRecord
	upsertErr error
	upserts   int
}

func newMockAttendanceRepo() *mockAttendanceRepo {
	return &mockAttendanceRepo{records: make(map[string]model.AttendanceRecord)}
}

func attendanceKey(r *model.AttendanceRecord) string {
	period := ""
	if r.PeriodID != nil {
		period = *r.PeriodID
	}
	return r.StudentID + "|" + r.ClassID + "|" + r.Date.Format("2006-01-02") + "|" + period
}

func (m *mockAttendanceRepo) ListDaily(_ context.Context, classID string, date time.Time) ([]model.AttendanceRecord, error) {
	return m.filter(func(r *model.AttendanceRecord) bool {
		return r.ClassID == classID && r.Date.Equal(date) && r.PeriodID == nil
	}), nil
}

func (m *mockAttendanceRepo) ListSubject(_ context.Context, classID string, date time.Time, periodID string) ([]model.AttendanceRecord, error) {
	return m.filter(func(r *model.AttendanceRecord) bool {
		return r.ClassID == classID && r.Date.Equal(date) && r.PeriodID != nil && *r.PeriodID == periodID
	}), nil
}

func (m *mockAttendanceRepo) GetDaily(_ context.Context, studentID string, date time.Time) (*model.AttendanceRecord, error) {
	found := m.filter(func(r *model.AttendanceRecord) bool {
		return r.StudentID == studentID && r.Date.Equal(date) && r.PeriodID == nil
	})
	if len(found) == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return &found[0], nil
}

func (m *mockAttendanceRepo) UpsertBatch(_ context.Context, records []model.AttendanceRecord) error {
	if m.upsertErr != nil {
		return m.upsertErr
	}
	m.upserts++
	for i := range records {
		r := records[i]
		key := attendanceKey(&r)
		if existing, ok := m.records[key]; ok {
			r.AttendanceID = existing.AttendanceID
		} else {
			r.AttendanceID = fmt.Sprintf("att-%d", len(m.records)+1)
		}
		m.records[key] = r
	}
	return nil
}

func (m *mockAttendanceRepo) CountDaily(_ context.Context, classID, studentID string, rng repository.DateRange) ([]model.StatusCount, error) {
	counts := make(map[[2]string]int64)
	for _, r := range m.filter(func(r *model.AttendanceRecord) bool {
		return r.PeriodID == nil &&
			(classID == "" || r.ClassID == classID) &&
			(studentID == "" || r.StudentID == studentID) &&
			inRange(r.Date, rng)
	}) {
		counts[[2]string{r.StudentID, r.Status}]++
	}
	var result []model.StatusCount
	for k, n := range counts {
		result = append(result, model.StatusCount{StudentID: k[0], Status: k[1], Count: n})
	}
	return result, nil
}

func (m *mockAttendanceRepo) ListDailyRange(_ context.Context, classID string, rng repository.DateRange) ([]model.AttendanceRecord, error) {
	return m.filter(func(r *model.AttendanceRecord) bool {
		return r.ClassID == classID && r.PeriodID == nil && inRange(r.Date, rng)
	}), nil
}

func (m *mockAttendanceRepo) filter(keep func(r *model.AttendanceRecord) bool) []model.AttendanceRecord {
	var result []model.AttendanceRecord
	for _, r := range m.records {
		r := r
		if keep(&r) {
			result = append(result, r)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].StudentID < result[j].StudentID })
	return result
}

func inRange(d time.Time, rng repository.DateRange) bool {
	if rng.From != nil && d.Before(*rng.From) {
		return false
	}
	if rng.To != nil && d.After(*rng.To) {
		return false
	}
	return true
}

// ── Mock Cache / Locker ──

type mockCache struct {
	data   map[string][]byte
	getErr error
}

func newMockCache() *mockCache {
	return &mockCache{data: make(map[string][]byte)}
}

func (m *mockCache) GetJSON(_ context.Context, key string, dest interface{}) (bool, error) {
	if m.getErr != nil {
		return false, m.getErr
	}
	raw, ok := m.data[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, dest)
}

func (m *mockCache) SetJSON(_ context.Context, key string, v interface{}, _ time.Duration) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	m.data[key] = raw
	return nil
}

type mockLocker struct {
	held map[string]bool
	keys []string
}

func newMockLocker() *mockLocker {
	return &mockLocker{held: make(map[string]bool)}
}

func (m *mockLocker) WithLock(ctx context.Context, key string, _ time.Duration, fn func(ctx context.Context) error) error {
	m.keys = append(m.keys, key)
	if m.held[key] {
		return pkgerrors.ErrLockNotObtained
	}
	m.held[key] = true
	defer delete(m.held, key)
	return fn(ctx)
}

var errStorage = errors.New("connection refused")

// ── fixture ──

type testRepos struct {
	class      *mockClassRepo
	student    *mockStudentRepo
	subject    *mockSubjectRepo
	period     *mockPeriodRepo
	attendance *mockAttendanceRepo
}

const (
	class7A = "class-7a"
	class7B = "class-7b"
	stuAdi  = "stu-adi"
	stuBudi = "stu-budi"
	stuCit  = "stu-citra"
	stuDewi = "stu-dewi" // 7B
	subjMTK = "subj-mtk"
	subjIPA = "subj-ipa"
	perMon1 = "per-mon-1" // 7A Monday 07:00 MTK
	perB    = "per-7b"    // 7B Monday 07:00 IPA
)

// newTestRepos 7A: Adi, Budi, Citra; 7B: Dewi; MTK Monday 07:00 in 7A
func newTestRepos() (*repository.Repository, *testRepos) {
	tr := &testRepos{
		student:    newMockStudentRepo(),
		subject:    newMockSubjectRepo(),
		attendance: newMockAttendanceRepo(),
	}
	tr.class = newMockClassRepo(tr.student)
	tr.period = newMockPeriodRepo(tr.subject)

	tr.class.classes[class7A] = &model.Class{ClassID: class7A, Name: "7A", Level: 7}
	tr.class.classes[class7B] = &model.Class{ClassID: class7B, Name: "7B", Level: 7}
	tr.student.students[stuAdi] = &model.Student{StudentID: stuAdi, NISN: "001", FullName: "Adi", Username: "adi", ClassID: class7A}
	tr.student.students[stuBudi] = &model.Student{StudentID: stuBudi, NISN: "002", FullName: "Budi", Username: "budi", ClassID: class7A}
	tr.student.students[stuCit] = &model.Student{StudentID: stuCit, NISN: "003", Username: "citra", ClassID: class7A}
	tr.student.students[stuDewi] = &model.Student{StudentID: stuDewi, NISN: "004", FullName: "Dewi", Username: "dewi", ClassID: class7B}
	tr.subject.subjects[subjMTK] = &model.Subject{SubjectID: subjMTK, Code: "MTK", Name: "Matematika"}
	tr.subject.subjects[subjIPA] = &model.Subject{SubjectID: subjIPA, Code: "IPA", Name: "Ilmu Pengetahuan Alam"}
	tr.period.periods[perMon1] = &model.Period{PeriodID: perMon1, ClassID: class7A, DayOfWeek: 1, StartTime: "07:00", EndTime: "07:40", SubjectID: subjMTK, IsActive: true}
	tr.period.periods[perB] = &model.Period{PeriodID: perB, ClassID: class7B, DayOfWeek: 1, StartTime: "07:00", EndTime: "07:40", SubjectID: subjIPA, IsActive: true}

	repo := &repository.Repository{
		Class:      tr.class,
		Student:    tr.student,
		Subject:    tr.subject,
		Period:     tr.period,
		Attendance: tr.attendance,
	}
	return repo, tr
}
