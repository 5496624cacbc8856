package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"classroom/backend/internal/dto"
	"classroom/backend/internal/model"
	"classroom/backend/internal/repository"
	pkgerrors "classroom/backend/pkg/errors"
)

// ── 花名册加载（客户端 join 模拟）──
//
// 网关不支持 enrollments → profiles 的跨表投影，因此固定为两次调用：
//  1. 按 class_id 读取原始选课行
//  2. 按收集到的 student_id 集合批量读取 profiles
//
// 之后在内存中左连接：档案缺失时 Profile=nil，不视为错误。
// 不要改写成 Preload/JOIN，调用方依赖"两次调用、任一失败即整体失败"的约定。
func loadRoster(ctx context.Context, repo *repository.Repository, classID string) ([]dto.EnrollmentResponse, error) {
	enrollments, err := repo.Enrollment.ListByClass(ctx, classID)
	if err != nil {
		return nil, pkgerrors.Gateway("select", "enrollments", err)
	}
	if len(enrollments) == 0 {
		return []dto.EnrollmentResponse{}, nil
	}

	ids := make([]string, 0, len(enrollments))
	for _, e := range enrollments {
		ids = append(ids, e.StudentID)
	}

	profiles, err := repo.Profile.ListByIDs(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Gateway("select", "profiles", err)
	}
	byID := make(map[string]*model.Profile, len(profiles))
	for i := range profiles {
		byID[profiles[i].ID] = &profiles[i]
	}

	result := make([]dto.EnrollmentResponse, 0, len(enrollments))
	for _, e := range enrollments {
		row := dto.EnrollmentResponse{
			ID:        e.ID,
			ClassID:   e.ClassID,
			StudentID: e.StudentID,
			JoinedAt:  formatTime(e.JoinedAt),
		}
		if p, ok := byID[e.StudentID]; ok {
			row.Profile = toStudentProfile(p)
		}
		result = append(result, row)
	}
	return result, nil
}

// ── 归属校验 ──

// ownedClass 读取班级并校验归属；不存在或不属于 ownerID 时统一返回 ErrClassNotFound
func ownedClass(ctx context.Context, repo *repository.Repository, logger *zap.Logger, ownerID, classID string) (*model.Class, error) {
	class, err := repo.Class.GetByID(ctx, classID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrClassNotFound
		}
		logger.Error("查询班级失败", zap.String("class_id", classID), zap.Error(err))
		return nil, pkgerrors.Gateway("select", "classes", err)
	}
	if ownerID == "" || class.OwnerID != ownerID {
		return nil, ErrClassNotFound
	}
	return class, nil
}

// listedClass 供加载器使用：班级已不存在时返回 (nil, nil)，调用方据此返回空列表；
// 存在但不属于 ownerID 仍返回 ErrClassNotFound
func listedClass(ctx context.Context, repo *repository.Repository, logger *zap.Logger, ownerID, classID string) (*model.Class, error) {
	class, err := repo.Class.GetByID(ctx, classID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		logger.Error("查询班级失败", zap.String("class_id", classID), zap.Error(err))
		return nil, pkgerrors.Gateway("select", "classes", err)
	}
	if ownerID == "" || class.OwnerID != ownerID {
		return nil, ErrClassNotFound
	}
	return class, nil
}

// ownedAssessment 读取测评及其所属班级并校验归属
func ownedAssessment(ctx context.Context, repo *repository.Repository, logger *zap.Logger, ownerID, assessmentID string) (*model.Assessment, *model.Class, error) {
	assessment, err := repo.Assessment.GetByID(ctx, assessmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrAssessmentNotFound
		}
		logger.Error("查询测评失败", zap.String("assessment_id", assessmentID), zap.Error(err))
		return nil, nil, pkgerrors.Gateway("select", "assessments", err)
	}

	class, err := ownedClass(ctx, repo, logger, ownerID, assessment.ClassID)
	if err != nil {
		if errors.Is(err, ErrClassNotFound) {
			return nil, nil, ErrAssessmentNotFound
		}
		return nil, nil, err
	}
	return assessment, class, nil
}
