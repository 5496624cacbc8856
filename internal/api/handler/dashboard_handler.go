package handler

import (
	"github.com/gin-gonic/gin"

	"classroom/backend/internal/dto"
	"classroom/backend/internal/service"
	"classroom/backend/pkg/response"
)

// DashboardHandler 仪表盘首屏
type DashboardHandler struct {
	dashboardSvc service.DashboardService
}

// NewDashboardHandler 创建 DashboardHandler
func NewDashboardHandler(dashboardSvc service.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardSvc: dashboardSvc}
}

// Load 首屏数据：学科 + 班级 + 主题
// GET /api/v1/dashboard?theme=modern
func (h *DashboardHandler) Load(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	// 非法主题不报错，交由服务层回落到默认主题
	var req dto.DashboardRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		req.Theme = ""
	}

	response.OK(c, h.dashboardSvc.Load(c.Request.Context(), userID, req.Theme))
}
