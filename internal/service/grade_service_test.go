package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"classroom/backend/internal/dto"
	"classroom/backend/internal/model"
	pkgerrors "classroom/backend/pkg/errors"
)

// seedGradingClass 一个班级、三名在册学生、一次满分 10 的测评
func seedGradingClass(store *memStore, ownerID string) (*model.Class, *model.Assessment, []*model.Profile) {
	class := store.addClass(ownerID, "一班", 10)
	var students []*model.Profile
	for _, email := range []string{"a@school.edu", "b@school.edu", "c@school.edu"} {
		s := store.addProfile(email, email, model.RoleStudent)
		store.enroll(class.ID, s.ID)
		students = append(students, s)
	}
	a := store.addAssessment(class.ID, "小测一", 10, "2024-10-01")
	return class, a, students
}

func studentIDs(students []*model.Profile) []string {
	ids := make([]string, 0, len(students))
	for _, s := range students {
		ids = append(ids, s.ID)
	}
	return ids
}

// ── EnsureRecords 测试 ──

func TestGradeService_EnsureRecords_CreatesPendingRows(t *testing.T) {
	svc, store, teacher := setupTestServices()
	_, a, students := seedGradingClass(store, teacher.ID)

	grades, err := svc.Grade.EnsureRecords(context.Background(), a.ID, studentIDs(students))
	if err != nil {
		t.Fatalf("期望成功，实际: %v", err)
	}
	if len(grades) != 3 {
		t.Fatalf("期望 3 条成绩，实际 %d", len(grades))
	}
	for _, g := range grades {
		if g.Status != model.GradePending || g.Score != nil || g.Feedback != nil || g.GradedAt != nil {
			t.Errorf("新建记录应为 pending 且分数为空: %+v", g)
		}
	}
}

func TestGradeService_EnsureRecords_Idempotent(t *testing.T) {
	svc, store, teacher := setupTestServices()
	_, a, students := seedGradingClass(store, teacher.ID)
	ids := studentIDs(students)

	for i := 0; i < 5; i++ {
		if _, err := svc.Grade.EnsureRecords(context.Background(), a.ID, ids); err != nil {
			t.Fatalf("第 %d 次调用失败: %v", i+1, err)
		}
	}
	if got := len(store.gradesOf(a.ID)); got != 3 {
		t.Errorf("多次调用后应仍为 3 条，实际 %d", got)
	}
	if n := store.countCalls("grades.insert"); n != 1 {
		t.Errorf("只有第一次需要插入，实际插入调用 %d 次", n)
	}
}

func TestGradeService_EnsureRecords_ConcurrentCallsNoDuplicates(t *testing.T) {
	svc, store, teacher := setupTestServices()
	_, a, students := seedGradingClass(store, teacher.ID)
	ids := studentIDs(students)

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.Grade.EnsureRecords(context.Background(), a.ID, ids); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("并发对账不应报错: %v", err)
	}
	if got := len(store.gradesOf(a.ID)); got != 3 {
		t.Errorf("并发对账后应为 3 条，实际 %d", got)
	}
}

func TestGradeService_EnsureRecords_KeepsExistingGrades(t *testing.T) {
	svc, store, teacher := setupTestServices()
	_, a, students := seedGradingClass(store, teacher.ID)
	store.addGrade(a.ID, students[0].ID, floatPtr(9))

	grades, err := svc.Grade.EnsureRecords(context.Background(), a.ID, studentIDs(students))
	if err != nil {
		t.Fatalf("期望成功，实际: %v", err)
	}
	if len(grades) != 3 {
		t.Fatalf("期望 3 条成绩，实际 %d", len(grades))
	}
	for _, g := range grades {
		if g.StudentID == students[0].ID && (g.Score == nil || *g.Score != 9) {
			t.Errorf("已有成绩不应被覆盖: %+v", g)
		}
	}
}

// ── Sheet 测试 ──

func TestGradeService_Sheet_JoinsRosterAndGrades(t *testing.T) {
	svc, store, teacher := setupTestServices()
	_, a, students := seedGradingClass(store, teacher.ID)

	sheet, err := svc.Grade.Sheet(context.Background(), teacher.ID, a.ID)
	if err != nil {
		t.Fatalf("期望成功，实际: %v", err)
	}
	if sheet.Assessment.ID != a.ID {
		t.Errorf("测评信息不正确: %+v", sheet.Assessment)
	}
	if len(sheet.Rows) != len(students) {
		t.Fatalf("期望 %d 行，实际 %d", len(students), len(sheet.Rows))
	}
	for _, row := range sheet.Rows {
		if row.Student == nil || row.Grade == nil {
			t.Errorf("每行都应有学生与成绩: %+v", row)
		}
	}
}

// ── SaveAll 测试 ──

func TestGradeService_SaveAll_RoundTrip(t *testing.T) {
	svc, store, teacher := setupTestServices()
	_, a, students := seedGradingClass(store, teacher.ID)
	ctx := context.Background()

	gs := svc.Grade.(*gradeService)
	fixed := time.Date(2024, 10, 2, 9, 30, 0, 0, time.UTC)
	gs.now = func() time.Time { return fixed }

	// 设置分数
	_, err := svc.Grade.SaveAll(ctx, teacher.ID, a.ID, &dto.SaveGradesRequest{Edits: []dto.GradeEdit{
		{StudentID: students[0].ID, Score: "8,5", Feedback: " 不错 "},
	}})
	if err != nil {
		t.Fatalf("保存失败: %v", err)
	}

	grades, err := svc.Grade.List(ctx, teacher.ID, a.ID)
	if err != nil {
		t.Fatalf("读取成绩失败: %v", err)
	}
	var got *dto.GradeResponse
	for i := range grades {
		if grades[i].StudentID == students[0].ID {
			got = &grades[i]
		}
	}
	if got == nil {
		t.Fatal("未找到保存的成绩")
	}
	if got.Status != model.GradeSubmitted || got.Score == nil || *got.Score != 8.5 || got.GradedAt == nil {
		t.Errorf("设置分数后应为 submitted 且 graded_at 非空: %+v", got)
	}
	if *got.GradedAt != fixed.Format(dto.TimeLayout) {
		t.Errorf("graded_at 应为保存时间，实际 %s", *got.GradedAt)
	}
	if got.Feedback == nil || *got.Feedback != "不错" {
		t.Errorf("评语应去除空白: %+v", got.Feedback)
	}

	// 清空分数
	_, err = svc.Grade.SaveAll(ctx, teacher.ID, a.ID, &dto.SaveGradesRequest{Edits: []dto.GradeEdit{
		{StudentID: students[0].ID, Score: "", Feedback: ""},
	}})
	if err != nil {
		t.Fatalf("清空失败: %v", err)
	}
	for _, g := range store.gradesOf(a.ID) {
		if g.StudentID != students[0].ID {
			continue
		}
		if g.Status != model.GradePending || g.Score != nil || g.GradedAt != nil || g.Feedback != nil {
			t.Errorf("清空分数后应为 pending 且 graded_at 为空: %+v", g)
		}
	}
}

func TestGradeService_SaveAll_SingleBatchUpsert(t *testing.T) {
	svc, store, teacher := setupTestServices()
	_, a, students := seedGradingClass(store, teacher.ID)

	edits := make([]dto.GradeEdit, 0, len(students))
	for i, s := range students {
		edits = append(edits, dto.GradeEdit{StudentID: s.ID, Score: []string{"7", "8", ""}[i]})
	}
	sheet, err := svc.Grade.SaveAll(context.Background(), teacher.ID, a.ID, &dto.SaveGradesRequest{Edits: edits})
	if err != nil {
		t.Fatalf("期望成功，实际: %v", err)
	}
	if n := store.countCalls("grades.upsert"); n != 1 {
		t.Errorf("应只有一次批量 upsert，实际 %d", n)
	}
	if len(sheet.Rows) != 3 {
		t.Errorf("返回的评分视图应有 3 行，实际 %d", len(sheet.Rows))
	}
}

func TestGradeService_SaveAll_IgnoresNonEnrolledStudents(t *testing.T) {
	svc, store, teacher := setupTestServices()
	_, a, students := seedGradingClass(store, teacher.ID)

	_, err := svc.Grade.SaveAll(context.Background(), teacher.ID, a.ID, &dto.SaveGradesRequest{Edits: []dto.GradeEdit{
		{StudentID: students[1].ID, Score: "6"},
		{StudentID: "outsider", Score: "10"},
	}})
	if err != nil {
		t.Fatalf("期望成功，实际: %v", err)
	}
	for _, g := range store.gradesOf(a.ID) {
		if g.StudentID == "outsider" {
			t.Error("非在册学生的编辑应被丢弃")
		}
	}
}

func TestGradeService_SaveAll_InvalidScoreRejectsBatch(t *testing.T) {
	tests := []struct {
		name  string
		score string
	}{
		{"非数字", "abc"},
		{"负数", "-1"},
		{"超过满分", "10.5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, store, teacher := setupTestServices()
			_, a, students := seedGradingClass(store, teacher.ID)

			_, err := svc.Grade.SaveAll(context.Background(), teacher.ID, a.ID, &dto.SaveGradesRequest{Edits: []dto.GradeEdit{
				{StudentID: students[0].ID, Score: "5"},
				{StudentID: students[1].ID, Score: tt.score},
			}})
			var verr *pkgerrors.ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("期望 ValidationError，实际: %v", err)
			}
			if len(verr.Fields) != 1 || verr.Fields[0].Field != "edits[1].score" {
				t.Errorf("字段明细不正确: %+v", verr.Fields)
			}
			if n := store.countCalls("grades.upsert"); n != 0 {
				t.Errorf("整批应被拒绝，upsert 调用 %d 次", n)
			}
		})
	}
}

func TestGradeService_SaveAll_GatewayFailureAbortsBatch(t *testing.T) {
	svc, store, teacher := setupTestServices()
	_, a, students := seedGradingClass(store, teacher.ID)
	store.failOn("grades.upsert")

	_, err := svc.Grade.SaveAll(context.Background(), teacher.ID, a.ID, &dto.SaveGradesRequest{Edits: []dto.GradeEdit{
		{StudentID: students[0].ID, Score: "5"},
		{StudentID: students[1].ID, Score: "6"},
	}})
	var gerr *pkgerrors.GatewayError
	if !errors.As(err, &gerr) || gerr.Op != "upsert" {
		t.Fatalf("期望 upsert 网关错误，实际: %v", err)
	}
	if len(store.gradesOf(a.ID)) != 0 {
		t.Error("失败时不应写入任何成绩")
	}
}

func TestGradeService_SaveAll_DuplicateEditsLastWins(t *testing.T) {
	store := newMemStore()
	teacher := store.addProfile("t@school.edu", "王老师", model.RoleTeacher)
	_, a, students := seedGradingClass(store, teacher.ID)
	svc := NewGradeService(store.repository(), zap.NewNop())

	_, err := svc.SaveAll(context.Background(), teacher.ID, a.ID, &dto.SaveGradesRequest{Edits: []dto.GradeEdit{
		{StudentID: students[2].ID, Score: "3"},
		{StudentID: students[2].ID, Score: "4"},
	}})
	if err != nil {
		t.Fatalf("期望成功，实际: %v", err)
	}
	for _, g := range store.gradesOf(a.ID) {
		if g.StudentID == students[2].ID && (g.Score == nil || *g.Score != 4) {
			t.Errorf("同一学生应以最后一次编辑为准: %+v", g)
		}
	}
}
