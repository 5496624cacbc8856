package dto

// CreateSubjectRequest 新建学科请求
// name 为空或仅含空白时静默忽略，因此不做 required 校验
type CreateSubjectRequest struct {
	Name string `json:"name" binding:"max=100"`
}

// SubjectResponse 学科信息
type SubjectResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	CreatedAt string `json:"created_at"`
}
