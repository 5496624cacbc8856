package repository

import (
	"context"

	"gorm.io/gorm"

	"classroom/backend/internal/model"
)

// AssessmentRepository 测评数据访问接口
type AssessmentRepository interface {
	Create(ctx context.Context, assessment *model.Assessment) error
	GetByID(ctx context.Context, id string) (*model.Assessment, error)
	// ListByClass 按测评日期倒序
	ListByClass(ctx context.Context, classID string) ([]model.Assessment, error)
	ListIDsByClass(ctx context.Context, classID string) ([]string, error)
	Update(ctx context.Context, assessment *model.Assessment) error
	Delete(ctx context.Context, id string) error
	DeleteByClass(ctx context.Context, classID string) error
}

type assessmentRepo struct {
	db *gorm.DB
}

// NewAssessmentRepo 创建 AssessmentRepository 实例
func NewAssessmentRepo(db *gorm.DB) AssessmentRepository {
	return &assessmentRepo{db: db}
}

func (r *assessmentRepo) Create(ctx context.Context, assessment *model.Assessment) error {
	return r.db.WithContext(ctx).Create(assessment).Error
}

func (r *assessmentRepo) GetByID(ctx context.Context, id string) (*model.Assessment, error) {
	var a model.Assessment
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&a).Error
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *assessmentRepo) ListByClass(ctx context.Context, classID string) ([]model.Assessment, error) {
	var assessments []model.Assessment
	err := r.db.WithContext(ctx).
		Where("class_id = ?", classID).
		Order("date DESC, created_at DESC").
		Find(&assessments).Error
	return assessments, err
}

func (r *assessmentRepo) ListIDsByClass(ctx context.Context, classID string) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).
		Model(&model.Assessment{}).
		Where("class_id = ?", classID).
		Pluck("id", &ids).Error
	return ids, err
}

func (r *assessmentRepo) Update(ctx context.Context, assessment *model.Assessment) error {
	return r.db.WithContext(ctx).
		Model(&model.Assessment{}).
		Where("id = ?", assessment.ID).
		Updates(map[string]interface{}{
			"title":       assessment.Title,
			"description": assessment.Description,
			"type":        assessment.Type,
			"max_score":   assessment.MaxScore,
			"date":        assessment.Date,
		}).Error
}

func (r *assessmentRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&model.Assessment{}).Error
}

func (r *assessmentRepo) DeleteByClass(ctx context.Context, classID string) error {
	return r.db.WithContext(ctx).
		Where("class_id = ?", classID).
		Delete(&model.Assessment{}).Error
}
