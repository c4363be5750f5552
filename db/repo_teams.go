package db

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"Gin_postgres_redis_lab_inventory/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrInvalidTeamNumber   = errors.New("invalid team number format")
	ErrInvalidRollNumber   = errors.New("invalid roll number format")
	ErrNoMembers           = errors.New("at least one member required")
	ErrDuplicateTeam       = errors.New("team already exists")
	ErrDuplicateRollNumber = errors.New("roll number already registered")
	ErrTeamNotFound        = errors.New("team not found")
	ErrMemberNotFound      = errors.New("member not found")
)

var (
	teamNumberRE = regexp.MustCompile(`(?i)^(IPA|IPR)\d{3}$`)
	rollNumberRE = regexp.MustCompile(`^[A-Z]\d{3}$`)
)

func NormalizeTeamNumber(s string) string { return strings.ToUpper(strings.TrimSpace(s)) }
func NormalizeRollNumber(s string) string { return strings.ToUpper(strings.TrimSpace(s)) }

func ValidTeamNumber(s string) bool { return teamNumberRE.MatchString(s) }
func ValidRollNumber(s string) bool { return rollNumberRE.MatchString(s) }

type MemberInput struct {
	Name       string `json:"name" yaml:"name"`
	RollNumber string `json:"roll_number" yaml:"roll_number"`
	Phone      string `json:"phone" yaml:"phone"`
	Email      string `json:"email" yaml:"email"`
}

// CreateTeam 校验队号/学号格式后插入；学号在所有队伍中唯一。
// 先查一遍给出明确错误，唯一索引兜底并发插入。
func (r *Repo) CreateTeam(ctx context.Context, teamNumber string, in []MemberInput) (*models.Team, error) {
	tn := NormalizeTeamNumber(teamNumber)
	if !ValidTeamNumber(tn) {
		return nil, ErrInvalidTeamNumber
	}
	if len(in) == 0 {
		return nil, ErrNoMembers
	}

	members := make([]models.Member, 0, len(in))
	rolls := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for i, m := range in {
		rn := NormalizeRollNumber(m.RollNumber)
		if !ValidRollNumber(rn) {
			return nil, ErrInvalidRollNumber
		}
		if _, dup := seen[rn]; dup {
			return nil, ErrDuplicateRollNumber
		}
		seen[rn] = struct{}{}
		rolls = append(rolls, rn)
		members = append(members, models.Member{
			TeamNumber: tn,
			Position:   i,
			Name:       strings.TrimSpace(m.Name),
			RollNumber: rn,
			Phone:      strings.TrimSpace(m.Phone),
			Email:      strings.TrimSpace(m.Email),
			IsActive:   true,
		})
	}

	team := &models.Team{TeamNumber: tn}
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&models.Team{}).Where("team_number = ?", tn).Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return ErrDuplicateTeam
		}
		if err := tx.Model(&models.Member{}).Where("roll_number IN ?", rolls).Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return ErrDuplicateRollNumber
		}
		// 关联单独插入：默认的关联保存是 ON CONFLICT DO NOTHING，会吞掉学号冲突
		if err := tx.Omit(clause.Associations).Create(team).Error; err != nil {
			return duplicate(err, ErrDuplicateTeam)
		}
		if err := tx.Create(&members).Error; err != nil {
			return duplicate(err, ErrDuplicateRollNumber)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	team.Members = members
	return team, nil
}

func (r *Repo) FindTeam(ctx context.Context, teamNumber string) (*models.Team, error) {
	var t models.Team
	if err := r.DB.WithContext(ctx).
		Preload("Members", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		First(&t, "team_number = ?", NormalizeTeamNumber(teamNumber)).Error; err != nil {
		return nil, notFound(err, ErrTeamNotFound)
	}
	return &t, nil
}

func (r *Repo) TeamExists(ctx context.Context, teamNumber string) error {
	var n int64
	if err := r.DB.WithContext(ctx).Model(&models.Team{}).
		Where("team_number = ?", NormalizeTeamNumber(teamNumber)).
		Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return ErrTeamNotFound
	}
	return nil
}

// ListTeams 全部队伍及成员（讲师视图）
func (r *Repo) ListTeams(ctx context.Context) ([]models.Team, error) {
	var ts []models.Team
	err := r.DB.WithContext(ctx).
		Preload("Members", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Order("team_number ASC").
		Find(&ts).Error
	return ts, err
}

// 按学号查成员（学生登录）
func (r *Repo) FindMemberByRoll(ctx context.Context, roll string) (*models.Member, error) {
	var m models.Member
	if err := r.DB.WithContext(ctx).
		First(&m, "roll_number = ?", NormalizeRollNumber(roll)).Error; err != nil {
		return nil, notFound(err, ErrMemberNotFound)
	}
	return &m, nil
}

func (r *Repo) SetMemberActive(ctx context.Context, roll string, active bool) error {
	res := r.DB.WithContext(ctx).Model(&models.Member{}).
		Where("roll_number = ?", NormalizeRollNumber(roll)).
		Update("is_active", active)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrMemberNotFound
	}
	return nil
}

func (r *Repo) TouchMemberSeen(ctx context.Context, roll string) error {
	return r.DB.WithContext(ctx).Model(&models.Member{}).
		Where("roll_number = ?", NormalizeRollNumber(roll)).
		Update("last_seen_at", time.Now().UTC()).Error
}
