package model

import "time"

// Grade 成绩表 — 对应 grades，(assessment_id, student_id) 唯一
// 不变式：Score 非空 ⇔ Status=submitted ⇔ GradedAt 非空
type Grade struct {
	ID           string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	StudentID    string     `gorm:"type:uuid;not null;uniqueIndex:uq_grade"        json:"student_id"`
	AssessmentID string     `gorm:"type:uuid;not null;uniqueIndex:uq_grade"        json:"assessment_id"`
	Score        *float64   `gorm:"type:numeric(6,2)"                              json:"score"`
	Feedback     *string    `gorm:"type:text"                                      json:"feedback"`
	Status       string     `gorm:"type:varchar(20);not null"                      json:"status"`
	SubmittedAt  *time.Time `json:"submitted_at,omitempty"`
	GradedAt     *time.Time `json:"graded_at,omitempty"`
}

// TableName 指定表名
func (Grade) TableName() string { return "grades" }
