package model

// ── 角色 ──

const (
	RoleTeacher = "teacher"
	RoleStudent = "student"
)

// ── 测评类型 ──

const (
	AssessmentExam       = "exam"
	AssessmentAssignment = "assignment"
	AssessmentQuiz       = "quiz"
	AssessmentActivity   = "activity"
)

// AssessmentTypes 全部合法的测评类型
var AssessmentTypes = []string{AssessmentExam, AssessmentAssignment, AssessmentQuiz, AssessmentActivity}

// IsAssessmentType 判断测评类型是否合法
func IsAssessmentType(t string) bool {
	for _, v := range AssessmentTypes {
		if v == t {
			return true
		}
	}
	return false
}

// ── 成绩状态 ──
// submitted 当且仅当 score 非空

const (
	GradePending   = "pending"
	GradeSubmitted = "submitted"
)
