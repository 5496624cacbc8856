package dto

// ── 班级模块 DTO ──

// CreateClassRequest 新建班级请求
// 数值字段缺省时取配置中的默认值
type CreateClassRequest struct {
	Name         string   `json:"name"`
	SubjectName  string   `json:"subject_name"`
	Description  *string  `json:"description"`
	MaxStudents  *int     `json:"max_students"`
	MinimumGrade *float64 `json:"minimum_grade"`
	MaximumGrade *float64 `json:"maximum_grade"`
}

// UpdateClassRequest 更新班级请求（部分更新）
type UpdateClassRequest struct {
	Name         *string  `json:"name"          binding:"omitempty,min=1,max=100"`
	SubjectName  *string  `json:"subject_name"  binding:"omitempty,min=1,max=100"`
	Description  *string  `json:"description"`
	MaxStudents  *int     `json:"max_students"  binding:"omitempty,min=1"`
	MinimumGrade *float64 `json:"minimum_grade"`
	MaximumGrade *float64 `json:"maximum_grade"`
	IsActive     *bool    `json:"is_active"`
}

// ClassResponse 班级信息
type ClassResponse struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	SubjectName  string  `json:"subject_name"`
	Description  *string `json:"description,omitempty"`
	MaxStudents  int     `json:"max_students"`
	MinimumGrade float64 `json:"minimum_grade"`
	MaximumGrade float64 `json:"maximum_grade"`
	IsActive     bool    `json:"is_active"`
	JoinCode     string  `json:"join_code"`
	CreatedAt    string  `json:"created_at"`
}

// ClassDetailResponse 班级详情（含当前人数）
type ClassDetailResponse struct {
	ClassResponse
	EnrollmentCount int64 `json:"enrollment_count"`
}
