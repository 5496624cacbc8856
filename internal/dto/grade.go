package dto

// ── 成绩模块 DTO ──

// GradeEdit 单个学生的待保存编辑；Score 为表单原始文本，空串表示清空成绩
type GradeEdit struct {
	StudentID string `json:"student_id" binding:"required"`
	Score     string `json:"score"`
	Feedback  string `json:"feedback"`
}

// SaveGradesRequest 批量保存成绩请求
type SaveGradesRequest struct {
	Edits []GradeEdit `json:"edits" binding:"dive"`
}

// GradeResponse 成绩记录
type GradeResponse struct {
	ID           string   `json:"id"`
	StudentID    string   `json:"student_id"`
	AssessmentID string   `json:"assessment_id"`
	Score        *float64 `json:"score"`
	Feedback     *string  `json:"feedback"`
	Status       string   `json:"status"`
	SubmittedAt  *string  `json:"submitted_at"`
	GradedAt     *string  `json:"graded_at"`
}

// GradeSheetRow 评分视图中的一行：学生 × 成绩
type GradeSheetRow struct {
	EnrollmentID string          `json:"enrollment_id"`
	Student      *StudentProfile `json:"student"`
	StudentID    string          `json:"student_id"`
	Grade        *GradeResponse  `json:"grade"`
}

// GradeSheetResponse 某次测评的评分视图
type GradeSheetResponse struct {
	Assessment AssessmentResponse `json:"assessment"`
	Rows       []GradeSheetRow    `json:"rows"`
}
