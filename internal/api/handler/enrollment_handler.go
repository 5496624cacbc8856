package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"classroom/backend/internal/dto"
	"classroom/backend/internal/service"
	"classroom/backend/pkg/response"
)

// EnrollmentHandler 花名册 HTTP 处理器
type EnrollmentHandler struct {
	enrollmentSvc service.EnrollmentService
}

// NewEnrollmentHandler 创建 EnrollmentHandler
func NewEnrollmentHandler(enrollmentSvc service.EnrollmentService) *EnrollmentHandler {
	return &EnrollmentHandler{enrollmentSvc: enrollmentSvc}
}

// List 班级花名册
// GET /api/v1/classes/:id/enrollments
func (h *EnrollmentHandler) List(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	classID, ok := pathID(c, "id")
	if !ok {
		return
	}

	roster, err := h.enrollmentSvc.List(c.Request.Context(), userID, classID)
	if err != nil {
		h.handleEnrollmentError(c, err)
		return
	}

	response.OK(c, roster)
}

// Add 按邮箱加入学生
// POST /api/v1/classes/:id/enrollments
func (h *EnrollmentHandler) Add(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	classID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req dto.AddStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	roster, err := h.enrollmentSvc.AddStudent(c.Request.Context(), userID, classID, &req)
	if err != nil {
		h.handleEnrollmentError(c, err)
		return
	}

	response.Created(c, roster)
}

// Remove 移出学生并删除其本班成绩，需 ?confirm=true
// DELETE /api/v1/classes/:id/enrollments/:enrollment_id
func (h *EnrollmentHandler) Remove(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	classID, ok := pathID(c, "id")
	if !ok {
		return
	}
	enrollmentID, ok := pathID(c, "enrollment_id")
	if !ok {
		return
	}

	roster, err := h.enrollmentSvc.RemoveStudent(c.Request.Context(), userID, classID, enrollmentID, confirmed(c))
	if err != nil {
		h.handleEnrollmentError(c, err)
		return
	}

	response.OK(c, roster)
}

func (h *EnrollmentHandler) handleEnrollmentError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrClassNotFound):
		response.NotFound(c, 13101, "班级不存在")
	case errors.Is(err, service.ErrStudentNotFound):
		response.NotFound(c, 14101, "未找到该邮箱对应的学生")
	case errors.Is(err, service.ErrEnrollmentNotFound):
		response.NotFound(c, 14102, "选课记录不存在")
	case errors.Is(err, service.ErrAlreadyEnrolled):
		response.Conflict(c, 14103, "该学生已在班级中")
	case errors.Is(err, service.ErrCapacityExceeded):
		response.Conflict(c, 14104, "班级人数已满")
	default:
		if !handleCommonError(c, err) {
			handleInternalError(c, err)
		}
	}
}
