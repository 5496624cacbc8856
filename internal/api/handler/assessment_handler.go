package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"classroom/backend/internal/dto"
	"classroom/backend/internal/service"
	"classroom/backend/pkg/response"
)

// AssessmentHandler 测评模块 HTTP 处理器
type AssessmentHandler struct {
	assessmentSvc service.AssessmentService
}

// NewAssessmentHandler 创建 AssessmentHandler
func NewAssessmentHandler(assessmentSvc service.AssessmentService) *AssessmentHandler {
	return &AssessmentHandler{assessmentSvc: assessmentSvc}
}

// List 班级测评列表
// GET /api/v1/classes/:id/assessments
func (h *AssessmentHandler) List(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	classID, ok := pathID(c, "id")
	if !ok {
		return
	}

	list, err := h.assessmentSvc.List(c.Request.Context(), userID, classID)
	if err != nil {
		h.handleAssessmentError(c, err)
		return
	}

	response.OK(c, list)
}

// Create 新建测评
// POST /api/v1/classes/:id/assessments
func (h *AssessmentHandler) Create(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	classID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req dto.CreateAssessmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	list, err := h.assessmentSvc.Create(c.Request.Context(), userID, classID, &req)
	if err != nil {
		h.handleAssessmentError(c, err)
		return
	}

	response.Created(c, list)
}

// Get 测评详情
// GET /api/v1/assessments/:id
func (h *AssessmentHandler) Get(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	a, err := h.assessmentSvc.Get(c.Request.Context(), userID, id)
	if err != nil {
		h.handleAssessmentError(c, err)
		return
	}

	response.OK(c, a)
}

// Update 部分更新测评
// PUT /api/v1/assessments/:id
func (h *AssessmentHandler) Update(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateAssessmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	a, err := h.assessmentSvc.Update(c.Request.Context(), userID, id, &req)
	if err != nil {
		h.handleAssessmentError(c, err)
		return
	}

	response.OK(c, a)
}

// Delete 级联删除测评及其成绩，需 ?confirm=true
// DELETE /api/v1/assessments/:id
func (h *AssessmentHandler) Delete(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	list, err := h.assessmentSvc.Delete(c.Request.Context(), userID, id, confirmed(c))
	if err != nil {
		h.handleAssessmentError(c, err)
		return
	}

	response.OK(c, list)
}

func (h *AssessmentHandler) handleAssessmentError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrClassNotFound):
		response.NotFound(c, 13101, "班级不存在")
	case errors.Is(err, service.ErrAssessmentNotFound):
		response.NotFound(c, 15101, "测评不存在")
	case errors.Is(err, service.ErrMaxScoreBelowGrades):
		response.Conflict(c, 15102, "满分不能低于已录入的成绩")
	default:
		if !handleCommonError(c, err) {
			handleInternalError(c, err)
		}
	}
}
