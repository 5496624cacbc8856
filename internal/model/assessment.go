package model

import "time"

// Assessment 测评表 — 对应 assessments
type Assessment struct {
	ID          string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	ClassID     string    `gorm:"type:uuid;not null;index"                       json:"class_id"`
	Title       string    `gorm:"type:varchar(200);not null"                     json:"title"`
	Description *string   `gorm:"type:text"                                      json:"description,omitempty"`
	Type        string    `gorm:"type:varchar(20);not null"                      json:"type"`
	MaxScore    float64   `gorm:"type:numeric(6,2);not null"                     json:"max_score"`
	Date        time.Time `gorm:"type:date;not null"                             json:"date"`
	CreatedAt   time.Time `gorm:"not null;autoCreateTime"                        json:"created_at"`
}

// TableName 指定表名
func (Assessment) TableName() string { return "assessments" }
