package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"classroom/backend/internal/dto"
	"classroom/backend/internal/service"
	"classroom/backend/pkg/response"
)

// GradeHandler 评分 HTTP 处理器
type GradeHandler struct {
	gradeSvc service.GradeService
}

// NewGradeHandler 创建 GradeHandler
func NewGradeHandler(gradeSvc service.GradeService) *GradeHandler {
	return &GradeHandler{gradeSvc: gradeSvc}
}

// Sheet 评分视图，打开时自动补齐缺失的成绩行
// GET /api/v1/assessments/:id/grades
func (h *GradeHandler) Sheet(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	sheet, err := h.gradeSvc.Sheet(c.Request.Context(), userID, id)
	if err != nil {
		h.handleGradeError(c, err)
		return
	}

	response.OK(c, sheet)
}

// SaveAll 批量保存成绩
// PUT /api/v1/assessments/:id/grades
func (h *GradeHandler) SaveAll(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req dto.SaveGradesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	sheet, err := h.gradeSvc.SaveAll(c.Request.Context(), userID, id, &req)
	if err != nil {
		h.handleGradeError(c, err)
		return
	}

	response.OK(c, sheet)
}

func (h *GradeHandler) handleGradeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrAssessmentNotFound):
		response.NotFound(c, 15101, "测评不存在")
	default:
		if !handleCommonError(c, err) {
			handleInternalError(c, err)
		}
	}
}
