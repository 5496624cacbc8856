package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"classroom/backend/internal/dto"
	"classroom/backend/internal/model"
	"classroom/backend/internal/repository"
	pkgerrors "classroom/backend/pkg/errors"
)

// ── 学科模块业务错误 ──

var (
	ErrSubjectNotFound = fmt.Errorf("学科不存在: %w", pkgerrors.ErrNotFound)
)

// SubjectService 学科业务接口
type SubjectService interface {
	// List 读取教师的学科（新建在前）；优先读视图缓存，网关失败时记录日志并返回空列表
	List(ctx context.Context, ownerID string) []dto.SubjectResponse
	// Reload 重新执行加载器并整体覆盖视图缓存
	Reload(ctx context.Context, ownerID string) []dto.SubjectResponse
	// Add 新建学科；名称为空白或缺少 owner 时静默忽略，返回当前列表
	Add(ctx context.Context, ownerID string, req *dto.CreateSubjectRequest) ([]dto.SubjectResponse, error)
	// Remove 删除学科（无依赖行）
	Remove(ctx context.Context, ownerID, subjectID string, confirmed bool) ([]dto.SubjectResponse, error)
}

type subjectService struct {
	repo   *repository.Repository
	cache  *viewCache
	logger *zap.Logger
}

// NewSubjectService 创建 SubjectService 实例
func NewSubjectService(repo *repository.Repository, cache *viewCache, logger *zap.Logger) SubjectService {
	return &subjectService{repo: repo, cache: cache, logger: logger}
}

// ────────────────────── List / Reload ──────────────────────

func (s *subjectService) List(ctx context.Context, ownerID string) []dto.SubjectResponse {
	if ownerID == "" {
		return []dto.SubjectResponse{}
	}
	var cached []dto.SubjectResponse
	if s.cache.load(ctx, subjectsViewKey(ownerID), &cached) {
		return cached
	}
	return s.Reload(ctx, ownerID)
}

func (s *subjectService) Reload(ctx context.Context, ownerID string) []dto.SubjectResponse {
	if ownerID == "" {
		return []dto.SubjectResponse{}
	}
	subjects, err := s.repo.Subject.ListByOwner(ctx, ownerID)
	if err != nil {
		// 首屏读取失败降级为空视图，不向上抛错，也不覆盖缓存
		s.logger.Error("加载学科失败", zap.String("owner_id", ownerID), zap.Error(err))
		return []dto.SubjectResponse{}
	}

	result := make([]dto.SubjectResponse, 0, len(subjects))
	for i := range subjects {
		result = append(result, toSubjectResponse(&subjects[i]))
	}
	s.cache.replace(ctx, subjectsViewKey(ownerID), result)
	return result
}

// refresh 变更成功后失效快照并重新加载
func (s *subjectService) refresh(ctx context.Context, ownerID string) []dto.SubjectResponse {
	s.cache.invalidate(ctx, subjectsViewKey(ownerID))
	return s.Reload(ctx, ownerID)
}

// ────────────────────── Add ──────────────────────

func (s *subjectService) Add(ctx context.Context, ownerID string, req *dto.CreateSubjectRequest) ([]dto.SubjectResponse, error) {
	name := strings.TrimSpace(req.Name)
	if ownerID == "" || name == "" {
		s.logger.Debug("忽略空白学科名称", zap.String("owner_id", ownerID))
		return s.List(ctx, ownerID), nil
	}

	subject := &model.Subject{OwnerID: ownerID, Name: name}
	if err := s.repo.Subject.Create(ctx, subject); err != nil {
		s.logger.Error("创建学科失败", zap.String("owner_id", ownerID), zap.Error(err))
		return nil, pkgerrors.Gateway("insert", "subjects", err)
	}

	return s.refresh(ctx, ownerID), nil
}

// ────────────────────── Remove ──────────────────────

func (s *subjectService) Remove(ctx context.Context, ownerID, subjectID string, confirmed bool) ([]dto.SubjectResponse, error) {
	if !confirmed {
		return nil, pkgerrors.ErrConfirmationRequired
	}

	subject, err := s.repo.Subject.GetByID(ctx, subjectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSubjectNotFound
		}
		s.logger.Error("查询学科失败", zap.String("subject_id", subjectID), zap.Error(err))
		return nil, pkgerrors.Gateway("select", "subjects", err)
	}
	if subject.OwnerID != ownerID {
		return nil, ErrSubjectNotFound
	}

	if err := s.repo.Subject.Delete(ctx, subjectID); err != nil {
		s.logger.Error("删除学科失败", zap.String("subject_id", subjectID), zap.Error(err))
		return nil, pkgerrors.Gateway("delete", "subjects", err)
	}

	s.logger.Info("学科已删除", zap.String("subject_id", subjectID), zap.String("owner_id", ownerID))
	return s.refresh(ctx, ownerID), nil
}
