package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"classroom/backend/internal/dto"
	"classroom/backend/internal/service"
	"classroom/backend/pkg/response"
)

// ClassHandler 班级模块 HTTP 处理器
type ClassHandler struct {
	classSvc service.ClassService
}

// NewClassHandler 创建 ClassHandler
func NewClassHandler(classSvc service.ClassService) *ClassHandler {
	return &ClassHandler{classSvc: classSvc}
}

// List 班级列表
// GET /api/v1/classes?reload=true
func (h *ClassHandler) List(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	if c.Query("reload") == "true" {
		response.OK(c, h.classSvc.Reload(c.Request.Context(), userID))
		return
	}
	response.OK(c, h.classSvc.List(c.Request.Context(), userID))
}

// Get 班级详情（含选课人数）
// GET /api/v1/classes/:id
func (h *ClassHandler) Get(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	detail, err := h.classSvc.Get(c.Request.Context(), userID, id)
	if err != nil {
		h.handleClassError(c, err)
		return
	}

	response.OK(c, detail)
}

// Create 新建班级，返回最新列表
// POST /api/v1/classes
func (h *ClassHandler) Create(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.CreateClassRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	list, err := h.classSvc.Create(c.Request.Context(), userID, &req)
	if err != nil {
		h.handleClassError(c, err)
		return
	}

	response.Created(c, list)
}

// Update 部分更新班级
// PUT /api/v1/classes/:id
func (h *ClassHandler) Update(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateClassRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	class, err := h.classSvc.Update(c.Request.Context(), userID, id, &req)
	if err != nil {
		h.handleClassError(c, err)
		return
	}

	response.OK(c, class)
}

// Delete 级联删除班级，需 ?confirm=true
// DELETE /api/v1/classes/:id
func (h *ClassHandler) Delete(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	list, err := h.classSvc.Delete(c.Request.Context(), userID, id, confirmed(c))
	if err != nil {
		h.handleClassError(c, err)
		return
	}

	response.OK(c, list)
}

func (h *ClassHandler) handleClassError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrClassNotFound):
		response.NotFound(c, 13101, "班级不存在")
	case errors.Is(err, service.ErrCapacityBelowEnrollment):
		response.Conflict(c, 13102, "人数上限不能低于当前已选人数")
	default:
		if !handleCommonError(c, err) {
			handleInternalError(c, err)
		}
	}
}
