package repository

import (
	"context"

	"gorm.io/gorm"

	"classroom/backend/internal/model"
)

// ClassRepository 班级数据访问接口
type ClassRepository interface {
	Create(ctx context.Context, class *model.Class) error
	GetByID(ctx context.Context, id string) (*model.Class, error)
	// ListByOwner 按创建时间倒序
	ListByOwner(ctx context.Context, ownerID string) ([]model.Class, error)
	Update(ctx context.Context, class *model.Class) error
	Delete(ctx context.Context, id string) error
}

type classRepo struct {
	db *gorm.DB
}

// NewClassRepo 创建 ClassRepository 实例
func NewClassRepo(db *gorm.DB) ClassRepository {
	return &classRepo{db: db}
}

// Create 插入班级；join_code 留空由触发器填充
func (r *classRepo) Create(ctx context.Context, class *model.Class) error {
	class.JoinCode = ""
	return r.db.WithContext(ctx).Create(class).Error
}

func (r *classRepo) GetByID(ctx context.Context, id string) (*model.Class, error) {
	var c model.Class
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&c).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *classRepo) ListByOwner(ctx context.Context, ownerID string) ([]model.Class, error) {
	var classes []model.Class
	err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Find(&classes).Error
	return classes, err
}

// Update 只更新可编辑列，join_code / owner_id / created_at 不可改
func (r *classRepo) Update(ctx context.Context, class *model.Class) error {
	return r.db.WithContext(ctx).
		Model(&model.Class{}).
		Where("id = ?", class.ID).
		Updates(map[string]interface{}{
			"name":          class.Name,
			"subject_name":  class.SubjectName,
			"description":   class.Description,
			"max_students":  class.MaxStudents,
			"minimum_grade": class.MinimumGrade,
			"maximum_grade": class.MaximumGrade,
			"is_active":     class.IsActive,
		}).Error
}

func (r *classRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&model.Class{}).Error
}
