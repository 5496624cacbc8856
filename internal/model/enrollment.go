package model

import "time"

// Enrollment 选课关系表 — 对应 enrollments，(class_id, student_id) 唯一
type Enrollment struct {
	ID        string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	ClassID   string    `gorm:"type:uuid;not null;uniqueIndex:uq_enrollment"   json:"class_id"`
	StudentID string    `gorm:"type:uuid;not null;uniqueIndex:uq_enrollment"   json:"student_id"`
	JoinedAt  time.Time `gorm:"not null;autoCreateTime"                        json:"joined_at"`
}

// TableName 指定表名
func (Enrollment) TableName() string { return "enrollments" }
