package model

import "time"

// Class 班级表 — 对应 classes
// JoinCode 插入时为空串，由数据库触发器生成；MaxStudents/IsActive 不设 default 标签，
// 否则零值会被 GORM 忽略并落到数据库默认值
type Class struct {
	ID           string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	OwnerID      string    `gorm:"type:uuid;not null;index"                       json:"owner_id"`
	Name         string    `gorm:"type:varchar(100);not null"                     json:"name"`
	SubjectName  string    `gorm:"type:varchar(100);not null"                     json:"subject_name"`
	Description  *string   `gorm:"type:text"                                      json:"description,omitempty"`
	MaxStudents  int       `gorm:"not null"                                       json:"max_students"`
	MinimumGrade float64   `gorm:"type:numeric(5,2);not null"                     json:"minimum_grade"`
	MaximumGrade float64   `gorm:"type:numeric(5,2);not null"                     json:"maximum_grade"`
	IsActive     bool      `gorm:"not null"                                       json:"is_active"`
	JoinCode     string    `gorm:"type:varchar(12);not null"                      json:"join_code"`
	CreatedAt    time.Time `gorm:"not null;autoCreateTime"                        json:"created_at"`
}

// TableName 指定表名
func (Class) TableName() string { return "classes" }
