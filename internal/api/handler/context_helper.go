package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"classroom/backend/internal/dto"
	pkgerrors "classroom/backend/pkg/errors"
	"classroom/backend/pkg/response"
)

// 上下文键，由 JWTAuth 中间件写入
const (
	ctxUserID   = "user_id"
	ctxRole     = "role"
	ctxTokenJTI = "token_jti"
	ctxTokenExp = "token_exp"
)

// MustGetUserID 从 Gin 上下文中安全提取 user_id（即当前教师 owner_id）。
// 如果 JWT 中间件未正确注入 user_id，返回 false 并写入 401 响应。
// 调用方应在 ok=false 时直接 return。
func MustGetUserID(c *gin.Context) (string, bool) {
	v, exists := c.Get(ctxUserID)
	if !exists {
		response.Unauthorized(c, 10002, "未认证")
		return "", false
	}
	s, ok := v.(string)
	if !ok || s == "" {
		response.Unauthorized(c, 10002, "未认证")
		return "", false
	}
	return s, true
}

// getTokenMeta 提取当前 access token 的 jti 与过期时间，缺失时返回零值
func getTokenMeta(c *gin.Context) (string, time.Time) {
	jti := c.GetString(ctxTokenJTI)
	exp, _ := c.Get(ctxTokenExp)
	t, _ := exp.(time.Time)
	return jti, t
}

// pathID 读取并校验 UUID 路径参数
func pathID(c *gin.Context, name string) (string, bool) {
	id := c.Param(name)
	if _, err := uuid.Parse(id); err != nil {
		response.BadRequest(c, 10001, "无效的 ID")
		return "", false
	}
	return id, true
}

// confirmed 读取破坏性操作的 ?confirm=true
func confirmed(c *gin.Context) bool {
	var q dto.ConfirmRequest
	_ = c.ShouldBindQuery(&q)
	return q.Confirm
}

// handleCommonError 处理各模块共享的错误分类；已写入响应时返回 true
func handleCommonError(c *gin.Context, err error) bool {
	var verr *pkgerrors.ValidationError
	switch {
	case errors.As(err, &verr):
		response.ValidationFailed(c, verr.Fields)
	case errors.Is(err, pkgerrors.ErrConfirmationRequired):
		response.BadRequest(c, 10006, "该操作需要确认（confirm=true）")
	case errors.Is(err, pkgerrors.ErrNotFound):
		response.NotFound(c, 10404, "资源不存在")
	case errors.Is(err, pkgerrors.ErrConflict):
		response.Conflict(c, 10409, "数据冲突")
	default:
		return false
	}
	return true
}

// handleInternalError 网关错误等未识别错误：记录到 gin 上下文供日志中间件输出，统一返回 500
func handleInternalError(c *gin.Context, err error) {
	_ = c.Error(err)
	if pkgerrors.IsGateway(err) {
		response.Error(c, http.StatusInternalServerError, 50001, "数据服务暂时不可用，请稍后重试")
		return
	}
	response.InternalError(c)
}
