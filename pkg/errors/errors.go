package errors

import (
	"errors"
	"fmt"
	"strings"
)

// ── 错误分类 ──
//
// 业务层的具体错误（如 ErrStudentNotFound）通过 %w 包装下列分类，
// Handler 层只需按分类映射 HTTP 状态码。

var (
	// ErrValidation 本地校验失败（字段为空、范围越界等）
	ErrValidation = errors.New("参数校验失败")
	// ErrNotFound 引用的实体不存在
	ErrNotFound = errors.New("资源不存在")
	// ErrConflict 唯一性或容量冲突
	ErrConflict = errors.New("数据冲突")
	// ErrConfirmationRequired 破坏性操作缺少确认标记
	ErrConfirmationRequired = errors.New("该操作需要确认")
)

// FieldError 单个字段的校验错误
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError 带字段明细的校验错误，errors.Is(err, ErrValidation) 为 true
type ValidationError struct {
	Fields []FieldError
}

// NewValidationError 创建校验错误
func NewValidationError(fields ...FieldError) *ValidationError {
	return &ValidationError{Fields: fields}
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return ErrValidation.Error()
	}
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return ErrValidation.Error() + ": " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// GatewayError 远程数据网关（数据库）调用失败
// Op 为 select/insert/update/delete/upsert，Table 为目标表
type GatewayError struct {
	Op    string
	Table string
	Err   error
}

// Gateway 包装网关错误；err 为 nil 时返回 nil
func Gateway(op, table string, err error) error {
	if err == nil {
		return nil
	}
	return &GatewayError{Op: op, Table: table, Err: err}
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("网关 %s %s 失败: %v", e.Op, e.Table, e.Err)
}

func (e *GatewayError) Unwrap() error { return e.Err }

// IsGateway 判断错误链中是否存在网关错误
func IsGateway(err error) bool {
	var ge *GatewayError
	return errors.As(err, &ge)
}
