package model

import "time"

// KVEntry postgres 后端使用的键值表，结构与 redis 键一一对应
type KVEntry struct {
	Key       string     `gorm:"primaryKey;type:varchar(255)" json:"key"`
	Value     string     `gorm:"type:text;not null" json:"value"`
	ExpiresAt *time.Time `gorm:"index" json:"expires_at,omitempty"` // 为空表示永不过期
	UpdatedAt time.Time  `gorm:"not null;default:now()" json:"updated_at"`
}

// TableName 指定表名
func (KVEntry) TableName() string {
	return "kv_entries"
}
