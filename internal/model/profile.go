package model

import "time"

// Profile 用户档案表 — 对应 profiles
// 教师登录与学生邮箱查找共用此表
type Profile struct {
	ID           string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Email        string    `gorm:"type:varchar(255);not null;uniqueIndex"        json:"email"`
	FullName     string    `gorm:"type:varchar(100);not null"                     json:"full_name"`
	Role         string    `gorm:"type:varchar(20);not null"                      json:"role"`
	PasswordHash string    `gorm:"type:varchar(255);not null"                     json:"-"`
	CreatedAt    time.Time `gorm:"not null;autoCreateTime"                        json:"created_at"`
}

// TableName 指定表名
func (Profile) TableName() string { return "profiles" }
