package models

import (
	"time"

	"gorm.io/gorm"
)

type RequestStatus string

const (
	RequestPending  RequestStatus = "pending"
	RequestAccepted RequestStatus = "accepted"
	RequestRejected RequestStatus = "rejected"
	RequestApproved RequestStatus = "approved"
)

// Terminal 离开 pending 后的状态
func (s RequestStatus) Terminal() bool {
	switch s {
	case RequestAccepted, RequestRejected, RequestApproved:
		return true
	}
	return false
}

type Resolution struct {
	By string    `json:"by"`
	At time.Time `json:"at"`
}

// ComponentRequest 创建即 pending，最多离开 pending 一次
type ComponentRequest struct {
	ID            uint          `gorm:"primaryKey" json:"-"`
	RequestID     string        `gorm:"size:32;uniqueIndex;not null" json:"request_id"`
	TeamNumber    string        `gorm:"size:6;index;not null" json:"team_number"`
	ComponentID   int64         `gorm:"index;not null" json:"component_id"`
	ComponentName string        `gorm:"size:200" json:"name"`
	Quantity      int           `gorm:"not null;check:chk_lab_requests_quantity,quantity >= 1" json:"quantity"`
	RequestedBy   string        `gorm:"size:64;not null" json:"requested_by"`
	RequestDate   time.Time     `gorm:"not null" json:"request_date"`
	Status        RequestStatus `gorm:"size:16;index;not null" json:"status"`
	Notes         string        `gorm:"size:1000" json:"notes"`

	ResolvedBy *string     `gorm:"size:64" json:"-"`
	ResolvedAt *time.Time  `json:"-"`
	Resolution *Resolution `gorm:"-" json:"resolution,omitempty"`
}

func (ComponentRequest) TableName() string { return RequestTable }

// AfterFind 把 resolved_* 两列组装成 Resolution
func (r *ComponentRequest) AfterFind(tx *gorm.DB) error {
	if r.ResolvedBy != nil && r.ResolvedAt != nil {
		r.Resolution = &Resolution{By: *r.ResolvedBy, At: *r.ResolvedAt}
	}
	return nil
}

type IssueStatus string

const (
	IssueIssued   IssueStatus = "issued"
	IssueReturned IssueStatus = "returned"
	IssueOverdue  IssueStatus = "overdue"
)

// Open 仍在队伍手里（未归还）
func (s IssueStatus) Open() bool { return s == IssueIssued || s == IssueOverdue }

// IssuedItem 只由批准请求产生；数量与原请求一致
type IssuedItem struct {
	ID                 uint        `gorm:"primaryKey" json:"-"`
	IssueID            string      `gorm:"size:32;uniqueIndex;not null" json:"issue_id"`
	RequestID          string      `gorm:"size:32;index;not null" json:"request_id"`
	TeamNumber         string      `gorm:"size:6;index;not null" json:"team_number"`
	ComponentID        int64       `gorm:"index;not null" json:"component_id"`
	ComponentName      string      `gorm:"size:200" json:"name"`
	Quantity           int         `gorm:"not null" json:"quantity"`
	IssueDate          time.Time   `gorm:"not null" json:"issue_date"`
	IssuedBy           string      `gorm:"size:64;not null" json:"issued_by"`
	ExpectedReturnDate time.Time   `gorm:"index;not null" json:"expected_return"`
	Status             IssueStatus `gorm:"size:16;index;not null" json:"status"`
}

func (IssuedItem) TableName() string { return IssuedTable }

// ReturnRecord 每个 issue 最多一条
type ReturnRecord struct {
	ID             uint      `gorm:"primaryKey" json:"-"`
	ReturnID       string    `gorm:"size:36;uniqueIndex;not null" json:"return_id"`
	IssueID        string    `gorm:"size:32;uniqueIndex;not null" json:"issue_id"`
	TeamNumber     string    `gorm:"size:6;index;not null" json:"team_number"`
	ComponentID    int64     `gorm:"not null" json:"component_id"`
	Quantity       int       `gorm:"not null" json:"quantity"`
	ReturnedAt     time.Time `gorm:"not null" json:"returned_at"`
	ReceivedBy     string    `gorm:"size:64;not null" json:"received_by"`
	ConditionNotes string    `gorm:"size:1000" json:"condition_notes"`
}

func (ReturnRecord) TableName() string { return ReturnTable }

// MigrateModels 建表顺序
var MigrateModels = []any{
	&Component{},
	&Team{},
	&Member{},
	&ComponentRequest{},
	&IssuedItem{},
	&ReturnRecord{},
	&Counter{},
	&AuditEntry{},
}
