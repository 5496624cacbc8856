package repository

import (
	"context"
	"database/sql"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"classroom/backend/internal/model"
)

// GradeRepository 成绩数据访问接口
type GradeRepository interface {
	ListByAssessment(ctx context.Context, assessmentID string) ([]model.Grade, error)
	ListByAssessments(ctx context.Context, assessmentIDs []string) ([]model.Grade, error)
	// CreateIgnoreConflict 批量插入，(assessment_id, student_id) 冲突的行直接跳过，返回实际插入行数
	CreateIgnoreConflict(ctx context.Context, grades []model.Grade) (int64, error)
	// Upsert 按 (assessment_id, student_id) 批量插入或覆盖评分字段，单条语句
	Upsert(ctx context.Context, grades []model.Grade) error
	// MaxScore 已录入成绩中的最高分，无成绩时返回 nil
	MaxScore(ctx context.Context, assessmentID string) (*float64, error)
	DeleteByAssessment(ctx context.Context, assessmentID string) error
	DeleteByAssessments(ctx context.Context, assessmentIDs []string) error
	DeleteByStudentInAssessments(ctx context.Context, studentID string, assessmentIDs []string) error
}

type gradeRepo struct {
	db *gorm.DB
}

// NewGradeRepo 创建 GradeRepository 实例
func NewGradeRepo(db *gorm.DB) GradeRepository {
	return &gradeRepo{db: db}
}

var gradeConflictColumns = []clause.Column{{Name: "assessment_id"}, {Name: "student_id"}}

func (r *gradeRepo) ListByAssessment(ctx context.Context, assessmentID string) ([]model.Grade, error) {
	var grades []model.Grade
	err := r.db.WithContext(ctx).
		Where("assessment_id = ?", assessmentID).
		Find(&grades).Error
	return grades, err
}

func (r *gradeRepo) ListByAssessments(ctx context.Context, assessmentIDs []string) ([]model.Grade, error) {
	if len(assessmentIDs) == 0 {
		return []model.Grade{}, nil
	}
	var grades []model.Grade
	err := r.db.WithContext(ctx).
		Where("assessment_id IN ?", assessmentIDs).
		Find(&grades).Error
	return grades, err
}

func (r *gradeRepo) CreateIgnoreConflict(ctx context.Context, grades []model.Grade) (int64, error) {
	if len(grades) == 0 {
		return 0, nil
	}
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: gradeConflictColumns, DoNothing: true}).
		Create(&grades)
	return result.RowsAffected, result.Error
}

func (r *gradeRepo) Upsert(ctx context.Context, grades []model.Grade) error {
	if len(grades) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   gradeConflictColumns,
			DoUpdates: clause.AssignmentColumns([]string{"score", "feedback", "status", "submitted_at", "graded_at"}),
		}).
		Create(&grades).Error
}

func (r *gradeRepo) MaxScore(ctx context.Context, assessmentID string) (*float64, error) {
	var top sql.NullFloat64
	err := r.db.WithContext(ctx).
		Model(&model.Grade{}).
		Where("assessment_id = ? AND score IS NOT NULL", assessmentID).
		Select("MAX(score)").
		Row().
		Scan(&top)
	if err != nil || !top.Valid {
		return nil, err
	}
	return &top.Float64, nil
}

func (r *gradeRepo) DeleteByAssessment(ctx context.Context, assessmentID string) error {
	return r.db.WithContext(ctx).
		Where("assessment_id = ?", assessmentID).
		Delete(&model.Grade{}).Error
}

func (r *gradeRepo) DeleteByAssessments(ctx context.Context, assessmentIDs []string) error {
	if len(assessmentIDs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Where("assessment_id IN ?", assessmentIDs).
		Delete(&model.Grade{}).Error
}

func (r *gradeRepo) DeleteByStudentInAssessments(ctx context.Context, studentID string, assessmentIDs []string) error {
	if len(assessmentIDs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Where("student_id = ? AND assessment_id IN ?", studentID, assessmentIDs).
		Delete(&model.Grade{}).Error
}
