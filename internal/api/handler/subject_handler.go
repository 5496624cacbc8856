package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"classroom/backend/internal/dto"
	"classroom/backend/internal/service"
	"classroom/backend/pkg/response"
)

// SubjectHandler 学科模块 HTTP 处理器
type SubjectHandler struct {
	subjectSvc service.SubjectService
}

// NewSubjectHandler 创建 SubjectHandler
func NewSubjectHandler(subjectSvc service.SubjectService) *SubjectHandler {
	return &SubjectHandler{subjectSvc: subjectSvc}
}

// List 学科列表
// GET /api/v1/subjects?reload=true
func (h *SubjectHandler) List(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	if c.Query("reload") == "true" {
		response.OK(c, h.subjectSvc.Reload(c.Request.Context(), userID))
		return
	}
	response.OK(c, h.subjectSvc.List(c.Request.Context(), userID))
}

// Add 新建学科，返回最新列表
// POST /api/v1/subjects
func (h *SubjectHandler) Add(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.CreateSubjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	list, err := h.subjectSvc.Add(c.Request.Context(), userID, &req)
	if err != nil {
		h.handleSubjectError(c, err)
		return
	}

	response.Created(c, list)
}

// Remove 删除学科，需 ?confirm=true
// DELETE /api/v1/subjects/:id
func (h *SubjectHandler) Remove(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	list, err := h.subjectSvc.Remove(c.Request.Context(), userID, id, confirmed(c))
	if err != nil {
		h.handleSubjectError(c, err)
		return
	}

	response.OK(c, list)
}

func (h *SubjectHandler) handleSubjectError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrSubjectNotFound):
		response.NotFound(c, 12101, "学科不存在")
	default:
		if !handleCommonError(c, err) {
			handleInternalError(c, err)
		}
	}
}
