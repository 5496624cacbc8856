package repository

import "gorm.io/gorm"

// Repository 所有 Repository 的聚合入口
// 每个 Repository 对应一张表，是远程数据网关的表级视图：
// select / insert / update / delete / upsert，带过滤与排序，不做跨表投影
type Repository struct {
	Profile    ProfileRepository
	Subject    SubjectRepository
	Class      ClassRepository
	Enrollment EnrollmentRepository
	Assessment AssessmentRepository
	Grade      GradeRepository
}

// NewRepository 创建 Repository 聚合
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		Profile:    NewProfileRepo(db),
		Subject:    NewSubjectRepo(db),
		Class:      NewClassRepo(db),
		Enrollment: NewEnrollmentRepo(db),
		Assessment: NewAssessmentRepo(db),
		Grade:      NewGradeRepo(db),
	}
}
