package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"classroom/backend/internal/dto"
	"classroom/backend/internal/model"
	"classroom/backend/internal/repository"
	pkgerrors "classroom/backend/pkg/errors"
)

// GradeService 成绩与花名册对账业务接口
type GradeService interface {
	// List 读取测评的全部成绩行
	List(ctx context.Context, ownerID, assessmentID string) ([]dto.GradeResponse, error)
	// EnsureRecords 为每个尚无成绩行的学生补一条 pending 记录，幂等
	EnsureRecords(ctx context.Context, assessmentID string, studentIDs []string) ([]model.Grade, error)
	// Sheet 评分视图：花名册 + 对账 + 成绩，按学生连接
	Sheet(ctx context.Context, ownerID, assessmentID string) (*dto.GradeSheetResponse, error)
	// SaveAll 一次批量 upsert 保存所有在册学生的编辑
	SaveAll(ctx context.Context, ownerID, assessmentID string, req *dto.SaveGradesRequest) (*dto.GradeSheetResponse, error)
}

type gradeService struct {
	repo   *repository.Repository
	logger *zap.Logger
	now    func() time.Time
}

// NewGradeService 创建 GradeService 实例
func NewGradeService(repo *repository.Repository, logger *zap.Logger) GradeService {
	return &gradeService{repo: repo, logger: logger, now: time.Now}
}

// ────────────────────── List ──────────────────────

func (s *gradeService) List(ctx context.Context, ownerID, assessmentID string) ([]dto.GradeResponse, error) {
	if _, _, err := ownedAssessment(ctx, s.repo, s.logger, ownerID, assessmentID); err != nil {
		return nil, err
	}

	grades, err := s.repo.Grade.ListByAssessment(ctx, assessmentID)
	if err != nil {
		s.logger.Error("加载成绩失败", zap.String("assessment_id", assessmentID), zap.Error(err))
		return nil, pkgerrors.Gateway("select", "grades", err)
	}

	result := make([]dto.GradeResponse, 0, len(grades))
	for i := range grades {
		result = append(result, toGradeResponse(&grades[i]))
	}
	return result, nil
}

// ────────────────────── EnsureRecords ──────────────────────

func (s *gradeService) EnsureRecords(ctx context.Context, assessmentID string, studentIDs []string) ([]model.Grade, error) {
	existing, err := s.repo.Grade.ListByAssessment(ctx, assessmentID)
	if err != nil {
		s.logger.Error("加载成绩失败", zap.String("assessment_id", assessmentID), zap.Error(err))
		return nil, pkgerrors.Gateway("select", "grades", err)
	}

	have := make(map[string]struct{}, len(existing))
	for _, g := range existing {
		have[g.StudentID] = struct{}{}
	}

	missing := make([]model.Grade, 0)
	for _, id := range studentIDs {
		if _, ok := have[id]; ok {
			continue
		}
		have[id] = struct{}{}
		missing = append(missing, model.Grade{
			AssessmentID: assessmentID,
			StudentID:    id,
			Status:       model.GradePending,
		})
	}
	if len(missing) == 0 {
		return existing, nil
	}

	// 并发补行时唯一键冲突由 ON CONFLICT DO NOTHING 吸收
	inserted, err := s.repo.Grade.CreateIgnoreConflict(ctx, missing)
	if err != nil {
		s.logger.Error("补建成绩记录失败", zap.String("assessment_id", assessmentID), zap.Error(err))
		return nil, pkgerrors.Gateway("insert", "grades", err)
	}
	s.logger.Debug("已补建成绩记录",
		zap.String("assessment_id", assessmentID),
		zap.Int("missing", len(missing)),
		zap.Int64("inserted", inserted),
	)

	grades, err := s.repo.Grade.ListByAssessment(ctx, assessmentID)
	if err != nil {
		s.logger.Error("重新加载成绩失败", zap.String("assessment_id", assessmentID), zap.Error(err))
		return nil, pkgerrors.Gateway("select", "grades", err)
	}
	return grades, nil
}

// ────────────────────── Sheet ──────────────────────

func (s *gradeService) Sheet(ctx context.Context, ownerID, assessmentID string) (*dto.GradeSheetResponse, error) {
	assessment, class, err := ownedAssessment(ctx, s.repo, s.logger, ownerID, assessmentID)
	if err != nil {
		return nil, err
	}
	return s.sheet(ctx, assessment, class.ID)
}

func (s *gradeService) sheet(ctx context.Context, assessment *model.Assessment, classID string) (*dto.GradeSheetResponse, error) {
	roster, err := loadRoster(ctx, s.repo, classID)
	if err != nil {
		s.logger.Error("加载花名册失败", zap.String("class_id", classID), zap.Error(err))
		return nil, err
	}

	studentIDs := make([]string, 0, len(roster))
	for _, e := range roster {
		studentIDs = append(studentIDs, e.StudentID)
	}

	grades, err := s.EnsureRecords(ctx, assessment.ID, studentIDs)
	if err != nil {
		return nil, err
	}
	byStudent := make(map[string]*model.Grade, len(grades))
	for i := range grades {
		byStudent[grades[i].StudentID] = &grades[i]
	}

	rows := make([]dto.GradeSheetRow, 0, len(roster))
	for _, e := range roster {
		row := dto.GradeSheetRow{
			EnrollmentID: e.ID,
			Student:      e.Profile,
			StudentID:    e.StudentID,
		}
		if g, ok := byStudent[e.StudentID]; ok {
			resp := toGradeResponse(g)
			row.Grade = &resp
		}
		rows = append(rows, row)
	}

	return &dto.GradeSheetResponse{
		Assessment: toAssessmentResponse(assessment),
		Rows:       rows,
	}, nil
}

// ────────────────────── SaveAll ──────────────────────

func (s *gradeService) SaveAll(ctx context.Context, ownerID, assessmentID string, req *dto.SaveGradesRequest) (*dto.GradeSheetResponse, error) {
	assessment, class, err := ownedAssessment(ctx, s.repo, s.logger, ownerID, assessmentID)
	if err != nil {
		return nil, err
	}

	roster, err := loadRoster(ctx, s.repo, class.ID)
	if err != nil {
		s.logger.Error("加载花名册失败", zap.String("class_id", class.ID), zap.Error(err))
		return nil, err
	}
	enrolled := make(map[string]struct{}, len(roster))
	for _, e := range roster {
		enrolled[e.StudentID] = struct{}{}
	}

	now := s.now().UTC()
	batch := make([]model.Grade, 0, len(req.Edits))
	seen := make(map[string]int, len(req.Edits))
	var fields []pkgerrors.FieldError

	for i, edit := range req.Edits {
		studentID := strings.TrimSpace(edit.StudentID)
		// 非在册学生的编辑直接丢弃
		if _, ok := enrolled[studentID]; !ok {
			continue
		}

		score, err := parseScore(edit.Score)
		if err != nil {
			fields = append(fields, pkgerrors.FieldError{
				Field:   fmt.Sprintf("edits[%d].score", i),
				Message: "分数格式无效",
			})
			continue
		}
		if score != nil && (*score < 0 || *score > assessment.MaxScore) {
			fields = append(fields, pkgerrors.FieldError{
				Field:   fmt.Sprintf("edits[%d].score", i),
				Message: fmt.Sprintf("分数必须在 0 到 %g 之间", assessment.MaxScore),
			})
			continue
		}

		grade := model.Grade{
			AssessmentID: assessmentID,
			StudentID:    studentID,
			Score:        score,
			Feedback:     optionalText(edit.Feedback),
			Status:       model.GradePending,
		}
		if score != nil {
			grade.Status = model.GradeSubmitted
			grade.SubmittedAt = &now
			grade.GradedAt = &now
		}

		// 同一学生多次编辑以最后一次为准，同一条语句内不能出现重复冲突键
		if idx, dup := seen[studentID]; dup {
			batch[idx] = grade
			continue
		}
		seen[studentID] = len(batch)
		batch = append(batch, grade)
	}

	if len(fields) > 0 {
		return nil, pkgerrors.NewValidationError(fields...)
	}

	if err := s.repo.Grade.Upsert(ctx, batch); err != nil {
		s.logger.Error("批量保存成绩失败",
			zap.String("assessment_id", assessmentID),
			zap.Int("rows", len(batch)),
			zap.Error(err),
		)
		return nil, pkgerrors.Gateway("upsert", "grades", err)
	}

	s.logger.Info("成绩已保存", zap.String("assessment_id", assessmentID), zap.Int("rows", len(batch)))
	return s.sheet(ctx, assessment, class.ID)
}
