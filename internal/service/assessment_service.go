package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"classroom/backend/internal/dto"
	"classroom/backend/internal/model"
	"classroom/backend/internal/repository"
	pkgerrors "classroom/backend/pkg/errors"
)

// ── 测评模块业务错误 ──

var (
	ErrAssessmentNotFound = fmt.Errorf("测评不存在: %w", pkgerrors.ErrNotFound)
	// ErrMaxScoreBelowGrades 新满分低于已录入的最高分
	ErrMaxScoreBelowGrades = fmt.Errorf("满分不能低于已录入的成绩: %w", pkgerrors.ErrConflict)
)

// AssessmentService 测评业务接口
type AssessmentService interface {
	// List 班级测评（日期新的在前）；班级已删除时返回空列表
	List(ctx context.Context, ownerID, classID string) ([]dto.AssessmentResponse, error)
	Get(ctx context.Context, ownerID, assessmentID string) (*dto.AssessmentResponse, error)
	// Create 新建测评；title 为空白时静默忽略
	Create(ctx context.Context, ownerID, classID string, req *dto.CreateAssessmentRequest) ([]dto.AssessmentResponse, error)
	Update(ctx context.Context, ownerID, assessmentID string, req *dto.UpdateAssessmentRequest) (*dto.AssessmentResponse, error)
	// Delete 级联删除：成绩 → 测评
	Delete(ctx context.Context, ownerID, assessmentID string, confirmed bool) ([]dto.AssessmentResponse, error)
}

type assessmentService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewAssessmentService 创建 AssessmentService 实例
func NewAssessmentService(repo *repository.Repository, logger *zap.Logger) AssessmentService {
	return &assessmentService{repo: repo, logger: logger}
}

// ────────────────────── List ──────────────────────

func (s *assessmentService) List(ctx context.Context, ownerID, classID string) ([]dto.AssessmentResponse, error) {
	class, err := listedClass(ctx, s.repo, s.logger, ownerID, classID)
	if err != nil {
		return nil, err
	}
	if class == nil {
		return []dto.AssessmentResponse{}, nil
	}
	return s.reload(ctx, classID)
}

func (s *assessmentService) reload(ctx context.Context, classID string) ([]dto.AssessmentResponse, error) {
	assessments, err := s.repo.Assessment.ListByClass(ctx, classID)
	if err != nil {
		s.logger.Error("加载测评失败", zap.String("class_id", classID), zap.Error(err))
		return nil, pkgerrors.Gateway("select", "assessments", err)
	}

	result := make([]dto.AssessmentResponse, 0, len(assessments))
	for i := range assessments {
		result = append(result, toAssessmentResponse(&assessments[i]))
	}
	return result, nil
}

// ────────────────────── Get ──────────────────────

func (s *assessmentService) Get(ctx context.Context, ownerID, assessmentID string) (*dto.AssessmentResponse, error) {
	assessment, _, err := ownedAssessment(ctx, s.repo, s.logger, ownerID, assessmentID)
	if err != nil {
		return nil, err
	}
	resp := toAssessmentResponse(assessment)
	return &resp, nil
}

// ────────────────────── Create ──────────────────────

func (s *assessmentService) Create(ctx context.Context, ownerID, classID string, req *dto.CreateAssessmentRequest) ([]dto.AssessmentResponse, error) {
	if _, err := ownedClass(ctx, s.repo, s.logger, ownerID, classID); err != nil {
		return nil, err
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		s.logger.Debug("忽略空白测评标题", zap.String("class_id", classID))
		return s.reload(ctx, classID)
	}

	date, err := parseDate(req.Date)
	if err != nil {
		return nil, pkgerrors.NewValidationError(pkgerrors.FieldError{Field: "date", Message: "日期格式应为 YYYY-MM-DD"})
	}

	assessment := &model.Assessment{
		ClassID:     classID,
		Title:       title,
		Description: trimOptional(req.Description),
		Type:        req.Type,
		MaxScore:    req.MaxScore,
		Date:        date,
	}
	if err := checkStruct(&assessmentRules{Title: assessment.Title, Type: assessment.Type, MaxScore: assessment.MaxScore}); err != nil {
		return nil, err
	}

	if err := s.repo.Assessment.Create(ctx, assessment); err != nil {
		s.logger.Error("创建测评失败", zap.String("class_id", classID), zap.Error(err))
		return nil, pkgerrors.Gateway("insert", "assessments", err)
	}

	s.logger.Info("测评已创建", zap.String("assessment_id", assessment.ID), zap.String("class_id", classID))
	return s.reload(ctx, classID)
}

// ────────────────────── Update ──────────────────────

func (s *assessmentService) Update(ctx context.Context, ownerID, assessmentID string, req *dto.UpdateAssessmentRequest) (*dto.AssessmentResponse, error) {
	assessment, _, err := ownedAssessment(ctx, s.repo, s.logger, ownerID, assessmentID)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		assessment.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		assessment.Description = trimOptional(req.Description)
	}
	if req.Type != nil {
		assessment.Type = *req.Type
	}
	if req.MaxScore != nil {
		assessment.MaxScore = *req.MaxScore
	}
	if req.Date != nil {
		date, err := parseDate(*req.Date)
		if err != nil {
			return nil, pkgerrors.NewValidationError(pkgerrors.FieldError{Field: "date", Message: "日期格式应为 YYYY-MM-DD"})
		}
		assessment.Date = date
	}

	if err := checkStruct(&assessmentRules{Title: assessment.Title, Type: assessment.Type, MaxScore: assessment.MaxScore}); err != nil {
		return nil, err
	}

	if req.MaxScore != nil {
		top, err := s.repo.Grade.MaxScore(ctx, assessmentID)
		if err != nil {
			s.logger.Error("查询最高分失败", zap.String("assessment_id", assessmentID), zap.Error(err))
			return nil, pkgerrors.Gateway("select", "grades", err)
		}
		if top != nil && *top > assessment.MaxScore {
			return nil, ErrMaxScoreBelowGrades
		}
	}

	if err := s.repo.Assessment.Update(ctx, assessment); err != nil {
		s.logger.Error("更新测评失败", zap.String("assessment_id", assessmentID), zap.Error(err))
		return nil, pkgerrors.Gateway("update", "assessments", err)
	}

	resp := toAssessmentResponse(assessment)
	return &resp, nil
}

// ────────────────────── Delete ──────────────────────

func (s *assessmentService) Delete(ctx context.Context, ownerID, assessmentID string, confirmed bool) ([]dto.AssessmentResponse, error) {
	if !confirmed {
		return nil, pkgerrors.ErrConfirmationRequired
	}
	assessment, _, err := ownedAssessment(ctx, s.repo, s.logger, ownerID, assessmentID)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Grade.DeleteByAssessment(ctx, assessmentID); err != nil {
		s.logger.Error("级联删除成绩失败", zap.String("assessment_id", assessmentID), zap.Error(err))
		return nil, pkgerrors.Gateway("delete", "grades", err)
	}

	if err := s.repo.Assessment.Delete(ctx, assessmentID); err != nil {
		s.logger.Error("删除测评失败", zap.String("assessment_id", assessmentID), zap.Error(err))
		return nil, pkgerrors.Gateway("delete", "assessments", err)
	}

	s.logger.Info("测评已删除", zap.String("assessment_id", assessmentID), zap.String("class_id", assessment.ClassID))
	return s.reload(ctx, assessment.ClassID)
}
