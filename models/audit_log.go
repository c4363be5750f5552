package models

import "time"

// AuditEntry 记录一次流程状态变更，与变更本身在同一事务里写入
type AuditEntry struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	ActorID    string    `gorm:"size:64;not null" json:"actor_id"`
	ActorRole  string    `gorm:"size:16;not null" json:"actor_role"`
	Action     string    `gorm:"size:32;not null;index" json:"action"`
	TeamNumber string    `gorm:"size:6;index" json:"team_number,omitempty"`
	TargetID   string    `gorm:"size:64;index" json:"target_id,omitempty"`
	Detail     string    `gorm:"size:500" json:"detail,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

func (AuditEntry) TableName() string { return AuditTable }
