package dto

// AddStudentRequest 按邮箱把学生加入班级
type AddStudentRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// StudentProfile 学生档案摘要
type StudentProfile struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
}

// EnrollmentResponse 选课记录；学生档案缺失时 Profile 为 null
type EnrollmentResponse struct {
	ID        string          `json:"id"`
	ClassID   string          `json:"class_id"`
	StudentID string          `json:"student_id"`
	JoinedAt  string          `json:"joined_at"`
	Profile   *StudentProfile `json:"profile"`
}
