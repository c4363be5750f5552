package models

import "time"

// Team 借用单位；成员代表本队操作
type Team struct {
	TeamNumber string    `gorm:"primaryKey;size:6" json:"team_number"`
	Members    []Member  `gorm:"foreignKey:TeamNumber;references:TeamNumber" json:"members"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (Team) TableName() string { return TeamTable }

// Member 学号全局唯一（跨所有队伍）
type Member struct {
	ID         uint       `gorm:"primaryKey" json:"-"`
	TeamNumber string     `gorm:"size:6;index;not null" json:"-"`
	Position   int        `gorm:"not null" json:"-"`
	Name       string     `gorm:"size:200;not null" json:"name"`
	RollNumber string     `gorm:"size:4;uniqueIndex;not null" json:"roll_number"`
	Phone      string     `gorm:"size:32" json:"phone"`
	Email      string     `gorm:"size:255" json:"email"`
	IsActive   bool       `gorm:"not null" json:"is_active"`
	LastSeenAt *time.Time `json:"last_seen_at,omitempty"`
}

func (Member) TableName() string { return MemberTable }
