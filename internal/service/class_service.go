package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"classroom/backend/config"
	"classroom/backend/internal/dto"
	"classroom/backend/internal/model"
	"classroom/backend/internal/repository"
	pkgerrors "classroom/backend/pkg/errors"
)

// ── 班级模块业务错误 ──

var (
	ErrClassNotFound = fmt.Errorf("班级不存在: %w", pkgerrors.ErrNotFound)
	// ErrCapacityBelowEnrollment 新的人数上限低于当前已选人数
	ErrCapacityBelowEnrollment = fmt.Errorf("人数上限不能低于当前已选人数: %w", pkgerrors.ErrConflict)
)

// ClassService 班级业务接口
type ClassService interface {
	// List 读取教师的班级（新建在前）；网关失败时记录日志并返回空列表
	List(ctx context.Context, ownerID string) []dto.ClassResponse
	// Reload 重新执行加载器并整体覆盖视图缓存
	Reload(ctx context.Context, ownerID string) []dto.ClassResponse
	Get(ctx context.Context, ownerID, classID string) (*dto.ClassDetailResponse, error)
	// Create 新建班级；name / subject_name 为空白或缺少 owner 时静默忽略
	Create(ctx context.Context, ownerID string, req *dto.CreateClassRequest) ([]dto.ClassResponse, error)
	Update(ctx context.Context, ownerID, classID string, req *dto.UpdateClassRequest) (*dto.ClassResponse, error)
	// Delete 级联删除：选课 → 班级测评的成绩 → 测评 → 班级，任一步失败即中止
	Delete(ctx context.Context, ownerID, classID string, confirmed bool) ([]dto.ClassResponse, error)
}

type classService struct {
	cfg    *config.GradingConfig
	repo   *repository.Repository
	cache  *viewCache
	logger *zap.Logger
}

// NewClassService 创建 ClassService 实例
func NewClassService(cfg *config.GradingConfig, repo *repository.Repository, cache *viewCache, logger *zap.Logger) ClassService {
	return &classService{cfg: cfg, repo: repo, cache: cache, logger: logger}
}

// ────────────────────── List / Reload ──────────────────────

func (s *classService) List(ctx context.Context, ownerID string) []dto.ClassResponse {
	if ownerID == "" {
		return []dto.ClassResponse{}
	}
	var cached []dto.ClassResponse
	if s.cache.load(ctx, classesViewKey(ownerID), &cached) {
		return cached
	}
	return s.Reload(ctx, ownerID)
}

func (s *classService) Reload(ctx context.Context, ownerID string) []dto.ClassResponse {
	if ownerID == "" {
		return []dto.ClassResponse{}
	}
	classes, err := s.repo.Class.ListByOwner(ctx, ownerID)
	if err != nil {
		s.logger.Error("加载班级失败", zap.String("owner_id", ownerID), zap.Error(err))
		return []dto.ClassResponse{}
	}

	result := make([]dto.ClassResponse, 0, len(classes))
	for i := range classes {
		result = append(result, toClassResponse(&classes[i]))
	}
	s.cache.replace(ctx, classesViewKey(ownerID), result)
	return result
}

// ────────────────────── Get ──────────────────────

func (s *classService) Get(ctx context.Context, ownerID, classID string) (*dto.ClassDetailResponse, error) {
	class, err := ownedClass(ctx, s.repo, s.logger, ownerID, classID)
	if err != nil {
		return nil, err
	}

	count, err := s.repo.Enrollment.CountByClass(ctx, classID)
	if err != nil {
		s.logger.Error("统计选课人数失败", zap.String("class_id", classID), zap.Error(err))
		return nil, pkgerrors.Gateway("select", "enrollments", err)
	}

	return &dto.ClassDetailResponse{
		ClassResponse:   toClassResponse(class),
		EnrollmentCount: count,
	}, nil
}

// ────────────────────── Create ──────────────────────

func (s *classService) Create(ctx context.Context, ownerID string, req *dto.CreateClassRequest) ([]dto.ClassResponse, error) {
	name := strings.TrimSpace(req.Name)
	subjectName := strings.TrimSpace(req.SubjectName)
	if ownerID == "" || name == "" || subjectName == "" {
		s.logger.Debug("忽略不完整的班级表单", zap.String("owner_id", ownerID))
		return s.List(ctx, ownerID), nil
	}

	class := &model.Class{
		OwnerID:      ownerID,
		Name:         name,
		SubjectName:  subjectName,
		Description:  trimOptional(req.Description),
		MaxStudents:  s.cfg.DefaultMaxStudents,
		MinimumGrade: s.cfg.ScaleMin,
		MaximumGrade: s.cfg.ScaleMax,
		IsActive:     true,
	}
	if req.MaxStudents != nil {
		class.MaxStudents = *req.MaxStudents
	}
	if req.MinimumGrade != nil {
		class.MinimumGrade = *req.MinimumGrade
	}
	if req.MaximumGrade != nil {
		class.MaximumGrade = *req.MaximumGrade
	}

	if err := s.checkRules(class); err != nil {
		return nil, err
	}

	if err := s.repo.Class.Create(ctx, class); err != nil {
		s.logger.Error("创建班级失败", zap.String("owner_id", ownerID), zap.Error(err))
		return nil, pkgerrors.Gateway("insert", "classes", err)
	}

	s.logger.Info("班级已创建", zap.String("class_id", class.ID), zap.String("owner_id", ownerID))
	return s.refresh(ctx, ownerID), nil
}

// ────────────────────── Update ──────────────────────

func (s *classService) Update(ctx context.Context, ownerID, classID string, req *dto.UpdateClassRequest) (*dto.ClassResponse, error) {
	class, err := ownedClass(ctx, s.repo, s.logger, ownerID, classID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		class.Name = strings.TrimSpace(*req.Name)
	}
	if req.SubjectName != nil {
		class.SubjectName = strings.TrimSpace(*req.SubjectName)
	}
	if req.Description != nil {
		class.Description = trimOptional(req.Description)
	}
	if req.MaxStudents != nil {
		class.MaxStudents = *req.MaxStudents
	}
	if req.MinimumGrade != nil {
		class.MinimumGrade = *req.MinimumGrade
	}
	if req.MaximumGrade != nil {
		class.MaximumGrade = *req.MaximumGrade
	}
	if req.IsActive != nil {
		class.IsActive = *req.IsActive
	}

	if err := s.checkRules(class); err != nil {
		return nil, err
	}

	if req.MaxStudents != nil {
		count, err := s.repo.Enrollment.CountByClass(ctx, classID)
		if err != nil {
			s.logger.Error("统计选课人数失败", zap.String("class_id", classID), zap.Error(err))
			return nil, pkgerrors.Gateway("select", "enrollments", err)
		}
		if int64(class.MaxStudents) < count {
			return nil, ErrCapacityBelowEnrollment
		}
	}

	if err := s.repo.Class.Update(ctx, class); err != nil {
		s.logger.Error("更新班级失败", zap.String("class_id", classID), zap.Error(err))
		return nil, pkgerrors.Gateway("update", "classes", err)
	}

	s.refresh(ctx, ownerID)
	resp := toClassResponse(class)
	return &resp, nil
}

// ────────────────────── Delete ──────────────────────

func (s *classService) Delete(ctx context.Context, ownerID, classID string, confirmed bool) ([]dto.ClassResponse, error) {
	if !confirmed {
		return nil, pkgerrors.ErrConfirmationRequired
	}
	if _, err := ownedClass(ctx, s.repo, s.logger, ownerID, classID); err != nil {
		return nil, err
	}

	// 严格按依赖顺序串行执行；失败时已删除的依赖行不回滚，班级保留以便重试
	if err := s.repo.Enrollment.DeleteByClass(ctx, classID); err != nil {
		s.logger.Error("级联删除选课失败", zap.String("class_id", classID), zap.Error(err))
		return nil, pkgerrors.Gateway("delete", "enrollments", err)
	}

	assessmentIDs, err := s.repo.Assessment.ListIDsByClass(ctx, classID)
	if err != nil {
		s.logger.Error("查询班级测评失败", zap.String("class_id", classID), zap.Error(err))
		return nil, pkgerrors.Gateway("select", "assessments", err)
	}
	if err := s.repo.Grade.DeleteByAssessments(ctx, assessmentIDs); err != nil {
		s.logger.Error("级联删除成绩失败", zap.String("class_id", classID), zap.Error(err))
		return nil, pkgerrors.Gateway("delete", "grades", err)
	}

	if err := s.repo.Assessment.DeleteByClass(ctx, classID); err != nil {
		s.logger.Error("级联删除测评失败", zap.String("class_id", classID), zap.Error(err))
		return nil, pkgerrors.Gateway("delete", "assessments", err)
	}

	if err := s.repo.Class.Delete(ctx, classID); err != nil {
		s.logger.Error("删除班级失败", zap.String("class_id", classID), zap.Error(err))
		return nil, pkgerrors.Gateway("delete", "classes", err)
	}

	s.logger.Info("班级已删除",
		zap.String("class_id", classID),
		zap.Int("assessments", len(assessmentIDs)),
	)
	return s.refresh(ctx, ownerID), nil
}

// ── 内部辅助方法 ──

// refresh 变更成功后失效快照并重新加载
func (s *classService) refresh(ctx context.Context, ownerID string) []dto.ClassResponse {
	s.cache.invalidate(ctx, classesViewKey(ownerID))
	return s.Reload(ctx, ownerID)
}

func (s *classService) checkRules(class *model.Class) error {
	return checkStruct(&classRules{
		Name:         class.Name,
		SubjectName:  class.SubjectName,
		MaxStudents:  class.MaxStudents,
		MinimumGrade: class.MinimumGrade,
		MaximumGrade: class.MaximumGrade,
		ScaleMin:     s.cfg.ScaleMin,
		ScaleMax:     s.cfg.ScaleMax,
	})
}
