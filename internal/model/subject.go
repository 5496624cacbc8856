package model

import "time"

// Subject 学科表 — 对应 subjects
// 班级只复制学科名称，不存在外键引用
type Subject struct {
	ID        string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	OwnerID   string    `gorm:"type:uuid;not null;index"                       json:"owner_id"`
	Name      string    `gorm:"type:varchar(100);not null"                     json:"name"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime"                        json:"created_at"`
}

// TableName 指定表名
func (Subject) TableName() string { return "subjects" }
