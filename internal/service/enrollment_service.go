package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"classroom/backend/internal/dto"
	"classroom/backend/internal/model"
	"classroom/backend/internal/repository"
	pkgerrors "classroom/backend/pkg/errors"
)

// ── 选课模块业务错误 ──

var (
	ErrStudentNotFound    = fmt.Errorf("未找到该邮箱对应的学生: %w", pkgerrors.ErrNotFound)
	ErrEnrollmentNotFound = fmt.Errorf("选课记录不存在: %w", pkgerrors.ErrNotFound)
	ErrAlreadyEnrolled    = fmt.Errorf("该学生已在班级中: %w", pkgerrors.ErrConflict)
	ErrCapacityExceeded   = fmt.Errorf("班级人数已满: %w", pkgerrors.ErrConflict)
)

// EnrollmentService 班级花名册业务接口
type EnrollmentService interface {
	// List 花名册（两次网关调用 + 内存左连接）；班级已删除时返回空列表
	List(ctx context.Context, ownerID, classID string) ([]dto.EnrollmentResponse, error)
	// AddStudent 按邮箱加入学生，依次校验：学生存在 → 未重复 → 未超员
	AddStudent(ctx context.Context, ownerID, classID string, req *dto.AddStudentRequest) ([]dto.EnrollmentResponse, error)
	// RemoveStudent 级联删除：该生在本班所有测评的成绩 → 选课记录
	RemoveStudent(ctx context.Context, ownerID, classID, enrollmentID string, confirmed bool) ([]dto.EnrollmentResponse, error)
}

type enrollmentService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewEnrollmentService 创建 EnrollmentService 实例
func NewEnrollmentService(repo *repository.Repository, logger *zap.Logger) EnrollmentService {
	return &enrollmentService{repo: repo, logger: logger}
}

// ────────────────────── List ──────────────────────

func (s *enrollmentService) List(ctx context.Context, ownerID, classID string) ([]dto.EnrollmentResponse, error) {
	class, err := listedClass(ctx, s.repo, s.logger, ownerID, classID)
	if err != nil {
		return nil, err
	}
	if class == nil {
		return []dto.EnrollmentResponse{}, nil
	}
	return s.reload(ctx, classID)
}

func (s *enrollmentService) reload(ctx context.Context, classID string) ([]dto.EnrollmentResponse, error) {
	roster, err := loadRoster(ctx, s.repo, classID)
	if err != nil {
		s.logger.Error("加载花名册失败", zap.String("class_id", classID), zap.Error(err))
		return nil, err
	}
	return roster, nil
}

// ────────────────────── AddStudent ──────────────────────

func (s *enrollmentService) AddStudent(ctx context.Context, ownerID, classID string, req *dto.AddStudentRequest) ([]dto.EnrollmentResponse, error) {
	class, err := ownedClass(ctx, s.repo, s.logger, ownerID, classID)
	if err != nil {
		return nil, err
	}

	// 1. 邮箱 → 学生
	student, err := s.repo.Profile.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStudentNotFound
		}
		s.logger.Error("按邮箱查询学生失败", zap.Error(err))
		return nil, pkgerrors.Gateway("select", "profiles", err)
	}
	if student.Role != model.RoleStudent {
		return nil, ErrStudentNotFound
	}

	// 2. 重复检查
	_, err = s.repo.Enrollment.GetByClassAndStudent(ctx, classID, student.ID)
	if err == nil {
		return nil, ErrAlreadyEnrolled
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("查询选课记录失败", zap.String("class_id", classID), zap.Error(err))
		return nil, pkgerrors.Gateway("select", "enrollments", err)
	}

	// 3. 容量检查：以班级行的 max_students 和网关计数为准
	count, err := s.repo.Enrollment.CountByClass(ctx, classID)
	if err != nil {
		s.logger.Error("统计选课人数失败", zap.String("class_id", classID), zap.Error(err))
		return nil, pkgerrors.Gateway("select", "enrollments", err)
	}
	if count >= int64(class.MaxStudents) {
		return nil, ErrCapacityExceeded
	}

	enrollment := &model.Enrollment{ClassID: classID, StudentID: student.ID}
	if err := s.repo.Enrollment.Create(ctx, enrollment); err != nil {
		s.logger.Error("创建选课记录失败",
			zap.String("class_id", classID),
			zap.String("student_id", student.ID),
			zap.Error(err),
		)
		return nil, pkgerrors.Gateway("insert", "enrollments", err)
	}

	s.logger.Info("学生已加入班级", zap.String("class_id", classID), zap.String("student_id", student.ID))
	return s.reload(ctx, classID)
}

// ────────────────────── RemoveStudent ──────────────────────

func (s *enrollmentService) RemoveStudent(ctx context.Context, ownerID, classID, enrollmentID string, confirmed bool) ([]dto.EnrollmentResponse, error) {
	if !confirmed {
		return nil, pkgerrors.ErrConfirmationRequired
	}
	if _, err := ownedClass(ctx, s.repo, s.logger, ownerID, classID); err != nil {
		return nil, err
	}

	enrollment, err := s.repo.Enrollment.GetByID(ctx, enrollmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEnrollmentNotFound
		}
		s.logger.Error("查询选课记录失败", zap.String("enrollment_id", enrollmentID), zap.Error(err))
		return nil, pkgerrors.Gateway("select", "enrollments", err)
	}
	if enrollment.ClassID != classID {
		return nil, ErrEnrollmentNotFound
	}

	assessmentIDs, err := s.repo.Assessment.ListIDsByClass(ctx, classID)
	if err != nil {
		s.logger.Error("查询班级测评失败", zap.String("class_id", classID), zap.Error(err))
		return nil, pkgerrors.Gateway("select", "assessments", err)
	}

	// 成绩删除失败同样中止，选课记录保留
	if err := s.repo.Grade.DeleteByStudentInAssessments(ctx, enrollment.StudentID, assessmentIDs); err != nil {
		s.logger.Error("级联删除学生成绩失败",
			zap.String("class_id", classID),
			zap.String("student_id", enrollment.StudentID),
			zap.Error(err),
		)
		return nil, pkgerrors.Gateway("delete", "grades", err)
	}

	if err := s.repo.Enrollment.Delete(ctx, enrollmentID); err != nil {
		s.logger.Error("删除选课记录失败", zap.String("enrollment_id", enrollmentID), zap.Error(err))
		return nil, pkgerrors.Gateway("delete", "enrollments", err)
	}

	s.logger.Info("学生已移出班级", zap.String("class_id", classID), zap.String("student_id", enrollment.StudentID))
	return s.reload(ctx, classID)
}
