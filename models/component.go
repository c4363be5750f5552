// models/component.go
package models

import "time"

const (
	ComponentTable = "lab_components"
	TeamTable      = "lab_teams"
	MemberTable    = "lab_members"
	RequestTable   = "lab_requests"
	IssuedTable    = "lab_issued"
	ReturnTable    = "lab_returns"
	CounterTable   = "lab_counters"
	AuditTable     = "lab_audit_log"
)

// Component 实验室元件；Available 只由借用流程修改，且永不为负
type Component struct {
	ID          int64     `gorm:"primaryKey;autoIncrement:false" json:"id"`
	Name        string    `gorm:"size:200;not null" json:"name"`
	Description string    `gorm:"size:1000" json:"description"`
	Category    string    `gorm:"size:100;index" json:"category"`
	Available   int       `gorm:"not null;check:chk_lab_components_available,available >= 0" json:"available"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (Component) TableName() string { return ComponentTable }

// Counter 每种编号每年一行
type Counter struct {
	Kind      string `gorm:"primaryKey;size:32"`
	Year      int    `gorm:"primaryKey;autoIncrement:false"`
	Seq       int64  `gorm:"not null"`
	UpdatedAt time.Time
}

func (Counter) TableName() string { return CounterTable }
