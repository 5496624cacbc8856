package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"gorm.io/gorm"

	"classroom/backend/internal/model"
	"classroom/backend/internal/repository"
)

// ── 内存网关 ──
//
// 所有 mock repo 共享同一个 memStore，级联删除可以跨表观察结果。
// failOn("grades.delete") 之类的调用让对应操作返回 errGatewayDown。

var errGatewayDown = errors.New("gateway unavailable")

type memStore struct {
	mu          sync.Mutex
	seq         int
	clock       time.Time
	profiles    map[string]*model.Profile
	subjects    map[string]*model.Subject
	classes     map[string]*model.Class
	enrollments map[string]*model.Enrollment
	assessments map[string]*model.Assessment
	grades      map[string]*model.Grade
	fail        map[string]bool
	calls       []string
}

func newMemStore() *memStore {
	return &memStore{
		clock:       time.Date(2024, 9, 1, 8, 0, 0, 0, time.UTC),
		profiles:    make(map[string]*model.Profile),
		subjects:    make(map[string]*model.Subject),
		classes:     make(map[string]*model.Class),
		enrollments: make(map[string]*model.Enrollment),
		assessments: make(map[string]*model.Assessment),
		grades:      make(map[string]*model.Grade),
		fail:        make(map[string]bool),
	}
}

func (s *memStore) failOn(ops ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, op := range ops {
		s.fail[op] = true
	}
}

// restore 撤销故障注入
func (s *memStore) restore(ops ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, op := range ops {
		delete(s.fail, op)
	}
}

// call 记录一次网关调用，命中故障注入时返回错误；调用方需持有锁
func (s *memStore) call(op string) error {
	s.calls = append(s.calls, op)
	if s.fail[op] {
		return errGatewayDown
	}
	return nil
}

func (s *memStore) countCalls(op string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, c := range s.calls {
		if c == op {
			n++
		}
	}
	return n
}

func (s *memStore) nextID(prefix string) string {
	s.seq++
	return fmt.Sprintf("%s-%d", prefix, s.seq)
}

func (s *memStore) tick() time.Time {
	s.clock = s.clock.Add(time.Minute)
	return s.clock
}

func (s *memStore) repository() *repository.Repository {
	return &repository.Repository{
		Profile:    &mockProfileRepo{s: s},
		Subject:    &mockSubjectRepo{s: s},
		Class:      &mockClassRepo{s: s},
		Enrollment: &mockEnrollmentRepo{s: s},
		Assessment: &mockAssessmentRepo{s: s},
		Grade:      &mockGradeRepo{s: s},
	}
}

// ── 测试数据辅助 ──

func (s *memStore) addProfile(email, name, role string) *model.Profile {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := &model.Profile{ID: s.nextID("profile"), Email: email, FullName: name, Role: role, CreatedAt: s.tick()}
	s.profiles[p.ID] = p
	return p
}

func (s *memStore) addClass(ownerID, name string, maxStudents int) *model.Class {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := &model.Class{
		ID:           s.nextID("class"),
		OwnerID:      ownerID,
		Name:         name,
		SubjectName:  "数学",
		MaxStudents:  maxStudents,
		MinimumGrade: 0,
		MaximumGrade: 10,
		IsActive:     true,
		JoinCode:     fmt.Sprintf("JC%04d", s.seq),
		CreatedAt:    s.tick(),
	}
	s.classes[c.ID] = c
	return c
}

func (s *memStore) enroll(classID, studentID string) *model.Enrollment {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := &model.Enrollment{ID: s.nextID("enrollment"), ClassID: classID, StudentID: studentID, JoinedAt: s.tick()}
	s.enrollments[e.ID] = e
	return e
}

func (s *memStore) addAssessment(classID, title string, maxScore float64, date string) *model.Assessment {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, _ := time.Parse("2006-01-02", date)
	a := &model.Assessment{
		ID:        s.nextID("assessment"),
		ClassID:   classID,
		Title:     title,
		Type:      model.AssessmentExam,
		MaxScore:  maxScore,
		Date:      d,
		CreatedAt: s.tick(),
	}
	s.assessments[a.ID] = a
	return a
}

func (s *memStore) addGrade(assessmentID, studentID string, score *float64) *model.Grade {
	s.mu.Lock()
	defer s.mu.Unlock()
	g := &model.Grade{ID: s.nextID("grade"), AssessmentID: assessmentID, StudentID: studentID, Status: model.GradePending}
	if score != nil {
		now := s.tick()
		g.Score, g.Status, g.SubmittedAt, g.GradedAt = score, model.GradeSubmitted, &now, &now
	}
	s.grades[g.ID] = g
	return g
}

func (s *memStore) gradesOf(assessmentID string) []model.Grade {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Grade
	for _, g := range s.grades {
		if g.AssessmentID == assessmentID {
			out = append(out, *g)
		}
	}
	return out
}

// ── Mock ProfileRepository ──

type mockProfileRepo struct{ s *memStore }

func (m *mockProfileRepo) Create(_ context.Context, p *model.Profile) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if err := m.s.call("profiles.insert"); err != nil {
		return err
	}
	if p.ID == "" {
		p.ID = m.s.nextID("profile")
	}
	p.CreatedAt = m.s.tick()
	cp := *p
	m.s.profiles[p.ID] = &cp
	return nil
}

func (m *mockProfileRepo) GetByID(_ context.Context, id string) (*model.Profile, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if err := m.s.call("profiles.select"); err != nil {
		return nil, err
	}
	if p, ok := m.s.profiles[id]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockProfileRepo) GetByEmail(_ context.Context, email string) (*model.Profile, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if err := m.s.call("profiles.select"); err != nil {
		return nil, err
	}
	for _, p := range m.s.profiles {
		if strings.EqualFold(p.Email, email) {
			cp := *p
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockProfileRepo) ListByIDs(_ context.Context, ids []string) ([]model.Profile, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if err := m.s.call("profiles.select"); err != nil {
		return nil, err
	}
	out := []model.Profile{}
	for _, id := range ids {
		if p, ok := m.s.profiles[id]; ok {
			out = append(out, *p)
		}
	}
	return out, nil
}

// ── Mock SubjectRepository ──

type mockSubjectRepo struct{ s *memStore }

func (m *mockSubjectRepo) Create(_ context.Context, subject *model.Subject) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if err := m.s.call("subjects.insert"); err != nil {
		return err
	}
	subject.ID = m.s.nextID("subject")
	subject.CreatedAt = m.s.tick()
	cp := *subject
	m.s.subjects[subject.ID] = &cp
	return nil
}

func (m *mockSubjectRepo) GetByID(_ context.Context, id string) (*model.Subject, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if err := m.s.call("subjects.select"); err != nil {
		return nil, err
	}
	if sub, ok := m.s.subjects[id]; ok {
		cp := *sub
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockSubjectRepo) ListByOwner(_ context.Context, ownerID string) ([]model.Subject, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if err := m.s.call("subjects.select"); err != nil {
		return nil, err
	}
	out := []model.Subject{}
	for _, sub := range m.s.subjects {
		if sub.OwnerID == ownerID {
			out = append(out, *sub)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *mockSubjectRepo) Delete(_ context.Context, id string) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if err := m.s.call("subjects.delete"); err != nil {
		return err
	}
	delete(m.s.subjects, id)
	return nil
}

// ── Mock ClassRepository ──

type mockClassRepo struct{ s *memStore }

func (m *mockClassRepo) Create(_ context.Context, class *model.Class) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if err := m.s.call("classes.insert"); err != nil {
		return err
	}
	class.ID = m.s.nextID("class")
	class.CreatedAt = m.s.tick()
	// 模拟数据库触发器
	class.JoinCode = fmt.Sprintf("JC%04d", m.s.seq)
	cp := *class
	m.s.classes[class.ID] = &cp
	return nil
}

func (m *mockClassRepo) GetByID(_ context.Context, id string) (*model.Class, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if err := m.s.call("classes.select"); err != nil {
		return nil, err
	}
	if c, ok := m.s.classes[id]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockClassRepo) ListByOwner(_ context.Context, ownerID string) ([]model.Class, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if err := m.s.call("classes.select"); err != nil {
		return nil, err
	}
	out := []model.Class{}
	for _, c := range m.s.classes {
		if c.OwnerID == ownerID {
			out = append(out, *c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *mockClassRepo) Update(_ context.Context, class *model.Class) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if err := m.s.call("classes.update"); err != nil {
		return err
	}
	cp := *class
	m.s.classes[class.ID] = &cp
	return nil
}

func (m *mockClassRepo) Delete(_ context.Context, id string) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if err := m.s.call("classes.delete"); err != nil {
		return err
	}
	delete(m.s.classes, id)
	return nil
}

// ── Mock EnrollmentRepository ──

type mockEnrollmentRepo struct{ s *memStore }

func (m *mockEnrollmentRepo) Create(_ context.Context, e *model.Enrollment) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if err := m.s.call("enrollments.insert"); err != nil {
		return err
	}
	for _, existing := range m.s.enrollments {
		if existing.ClassID == e.ClassID && existing.StudentID == e.StudentID {
			return gorm.ErrDuplicatedKey
		}
	}
	e.ID = m.s.nextID("enrollment")
	e.JoinedAt = m.s.tick()
	cp := *e
	m.s.enrollments[e.ID] = &cp
	return nil
}

func (m *mockEnrollmentRepo) GetByID(_ context.Context, id string) (*model.Enrollment, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if err := m.s.call("enrollments.select"); err != nil {
		return nil, err
	}
	if e, ok := m.s.enrollments[id]; ok {
		cp := *e
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockEnrollmentRepo) GetByClassAndStudent(_ context.Context, classID, studentID string) (*model.Enrollment, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if err := m.s.call("enrollments.select"); err != nil {
		return nil, err
	}
	for _, e := range m.s.enrollments {
		if e.ClassID == classID && e.StudentID == studentID {
			cp := *e
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockEnrollmentRepo) ListByClass(_ context.Context, classID string) ([]model.Enrollment, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if err := m.s.call("enrollments.select"); err != nil {
		return nil, err
	}
	out := []model.Enrollment{}
	for _, e := range m.s.enrollments {
		if e.ClassID == classID {
			out = append(out, *e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].JoinedAt.Before(out[j].JoinedAt) })
	return out, nil
}

func (m *mockEnrollmentRepo) CountByClass(_ context.Context, classID string) (int64, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if err := m.s.call("enrollments.count"); err != nil {
		return 0, err
	}
	var n int64
	for _, e := range m.s.enrollments {
		if e.ClassID == classID {
			n++
		}
	}
	return n, nil
}

func (m *mockEnrollmentRepo) Delete(_ context.Context, id string) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if err := m.s.call("enrollments.delete"); err != nil {
		return err
	}
	delete(m.s.enrollments, id)
	return nil
}

func (m *mockEnrollmentRepo) DeleteByClass(_ context.Context, classID string) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if err := m.s.call("enrollments.delete"); err != nil {
		return err
	}
	for id, e := range m.s.enrollments {
		if e.ClassID == classID {
			delete(m.s.enrollments, id)
		}
	}
	return nil
}

// ── Mock AssessmentRepository ──

type mockAssessmentRepo struct{ s *memStore }

func (m *mockAssessmentRepo) Create(_ context.Context, a *model.Assessment) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if err := m.s.call("assessments.insert"); err != nil {
		return err
	}
	a.ID = m.s.nextID("assessment")
	a.CreatedAt = m.s.tick()
	cp := *a
	m.s.assessments[a.ID] = &cp
	return nil
}

func (m *mockAssessmentRepo) GetByID(_ context.Context, id string) (*model.Assessment, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if err := m.s.call("assessments.select"); err != nil {
		return nil, err
	}
	if a, ok := m.s.assessments[id]; ok {
		cp := *a
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockAssessmentRepo) ListByClass(_ context.Context, classID string) ([]model.Assessment, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if err := m.s.call("assessments.select"); err != nil {
		return nil, err
	}
	out := []model.Assessment{}
	for _, a := range m.s.assessments {
		if a.ClassID == classID {
			out = append(out, *a)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.After(out[j].Date)
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (m *mockAssessmentRepo) ListIDsByClass(_ context.Context, classID string) ([]string, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if err := m.s.call("assessments.select"); err != nil {
		return nil, err
	}
	out := []string{}
	for _, a := range m.s.assessments {
		if a.ClassID == classID {
			out = append(out, a.ID)
		}
	}
	return out, nil
}

func (m *mockAssessmentRepo) Update(_ context.Context, a *model.Assessment) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if err := m.s.call("assessments.update"); err != nil {
		return err
	}
	cp := *a
	m.s.assessments[a.ID] = &cp
	return nil
}

func (m *mockAssessmentRepo) Delete(_ context.Context, id string) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if err := m.s.call("assessments.delete"); err != nil {
		return err
	}
	delete(m.s.assessments, id)
	return nil
}

func (m *mockAssessmentRepo) DeleteByClass(_ context.Context, classID string) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if err := m.s.call("assessments.delete"); err != nil {
		return err
	}
	for id, a := range m.s.assessments {
		if a.ClassID == classID {
			delete(m.s.assessments, id)
		}
	}
	return nil
}

// ── Mock GradeRepository ──

type mockGradeRepo struct{ s *memStore }

func (m *mockGradeRepo) find(assessmentID, studentID string) *model.Grade {
	for _, g := range m.s.grades {
		if g.AssessmentID == assessmentID && g.StudentID == studentID {
			return g
		}
	}
	return nil
}

func (m *mockGradeRepo) ListByAssessment(_ context.Context, assessmentID string) ([]model.Grade, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if err := m.s.call("grades.select"); err != nil {
		return nil, err
	}
	out := []model.Grade{}
	for _, g := range m.s.grades {
		if g.AssessmentID == assessmentID {
			out = append(out, *g)
		}
	}
	return out, nil
}

func (m *mockGradeRepo) ListByAssessments(_ context.Context, assessmentIDs []string) ([]model.Grade, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if err := m.s.call("grades.select"); err != nil {
		return nil, err
	}
	want := make(map[string]bool, len(assessmentIDs))
	for _, id := range assessmentIDs {
		want[id] = true
	}
	out := []model.Grade{}
	for _, g := range m.s.grades {
		if want[g.AssessmentID] {
			out = append(out, *g)
		}
	}
	return out, nil
}

func (m *mockGradeRepo) CreateIgnoreConflict(_ context.Context, grades []model.Grade) (int64, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if err := m.s.call("grades.insert"); err != nil {
		return 0, err
	}
	var inserted int64
	for _, g := range grades {
		if m.find(g.AssessmentID, g.StudentID) != nil {
			continue
		}
		cp := g
		cp.ID = m.s.nextID("grade")
		m.s.grades[cp.ID] = &cp
		inserted++
	}
	return inserted, nil
}

func (m *mockGradeRepo) Upsert(_ context.Context, grades []model.Grade) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if err := m.s.call("grades.upsert"); err != nil {
		return err
	}
	for _, g := range grades {
		if existing := m.find(g.AssessmentID, g.StudentID); existing != nil {
			existing.Score, existing.Feedback, existing.Status = g.Score, g.Feedback, g.Status
			existing.SubmittedAt, existing.GradedAt = g.SubmittedAt, g.GradedAt
			continue
		}
		cp := g
		cp.ID = m.s.nextID("grade")
		m.s.grades[cp.ID] = &cp
	}
	return nil
}

func (m *mockGradeRepo) MaxScore(_ context.Context, assessmentID string) (*float64, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if err := m.s.call("grades.select"); err != nil {
		return nil, err
	}
	var top *float64
	for _, g := range m.s.grades {
		if g.AssessmentID == assessmentID && g.Score != nil && (top == nil || *g.Score > *top) {
			v := *g.Score
			top = &v
		}
	}
	return top, nil
}

func (m *mockGradeRepo) DeleteByAssessment(_ context.Context, assessmentID string) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if err := m.s.call("grades.delete"); err != nil {
		return err
	}
	for id, g := range m.s.grades {
		if g.AssessmentID == assessmentID {
			delete(m.s.grades, id)
		}
	}
	return nil
}

func (m *mockGradeRepo) DeleteByAssessments(_ context.Context, assessmentIDs []string) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if err := m.s.call("grades.delete"); err != nil {
		return err
	}
	want := make(map[string]bool, len(assessmentIDs))
	for _, id := range assessmentIDs {
		want[id] = true
	}
	for id, g := range m.s.grades {
		if want[g.AssessmentID] {
			delete(m.s.grades, id)
		}
	}
	return nil
}

func (m *mockGradeRepo) DeleteByStudentInAssessments(_ context.Context, studentID string, assessmentIDs []string) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if err := m.s.call("grades.delete"); err != nil {
		return err
	}
	want := make(map[string]bool, len(assessmentIDs))
	for _, id := range assessmentIDs {
		want[id] = true
	}
	for id, g := range m.s.grades {
		if g.StudentID == studentID && want[g.AssessmentID] {
			delete(m.s.grades, id)
		}
	}
	return nil
}
