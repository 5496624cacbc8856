package dto

// ── 测评模块 DTO ──

// CreateAssessmentRequest 新建测评请求
// title 为空时静默忽略，因此不做 required 校验
type CreateAssessmentRequest struct {
	Title       string  `json:"title"       binding:"max=200"`
	Description *string `json:"description"`
	Type        string  `json:"type"        binding:"required,oneof=exam assignment quiz activity"`
	MaxScore    float64 `json:"max_score"   binding:"required,gt=0"`
	Date        string  `json:"date"        binding:"required,datetime=2006-01-02"`
}

// UpdateAssessmentRequest 更新测评请求（部分更新）
type UpdateAssessmentRequest struct {
	Title       *string  `json:"title"       binding:"omitempty,min=1,max=200"`
	Description *string  `json:"description"`
	Type        *string  `json:"type"        binding:"omitempty,oneof=exam assignment quiz activity"`
	MaxScore    *float64 `json:"max_score"   binding:"omitempty,gt=0"`
	Date        *string  `json:"date"        binding:"omitempty,datetime=2006-01-02"`
}

// AssessmentResponse 测评信息
type AssessmentResponse struct {
	ID          string  `json:"id"`
	ClassID     string  `json:"class_id"`
	Title       string  `json:"title"`
	Description *string `json:"description,omitempty"`
	Type        string  `json:"type"`
	MaxScore    float64 `json:"max_score"`
	Date        string  `json:"date"`
}
