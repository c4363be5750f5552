package workflow

import (
	"context"
	"fmt"

	"Gin_postgres_redis_lab_inventory/db"
	"Gin_postgres_redis_lab_inventory/models"
)

type Snapshot = db.TeamSnapshot

// GetTeamSnapshot 学生只能读本队
func (e *Engine) GetTeamSnapshot(ctx context.Context, id Identity, teamNumber string) (*Snapshot, error) {
	const op = "get_team_snapshot"
	tn := db.NormalizeTeamNumber(teamNumber)
	if !id.canView(tn) {
		return nil, e.done(op, forbidden(op))
	}
	s, err := e.repo.Snapshot(ctx, tn)
	if err != nil {
		return nil, e.done(op, err)
	}
	return s, nil
}

type Profile struct {
	TeamNumber string         `json:"team_number"`
	Student    *models.Member `json:"student_details"`
	*Snapshot
}

// StudentProfile 当前学生的成员记录 + 本队快照
func (e *Engine) StudentProfile(ctx context.Context, id Identity) (*Profile, error) {
	const op = "student_profile"
	if !id.is(RoleStudent) {
		return nil, e.done(op, forbidden(op))
	}
	s, err := e.repo.Snapshot(ctx, id.TeamNumber)
	if err != nil {
		return nil, e.done(op, err)
	}
	for i := range s.Members {
		if s.Members[i].RollNumber == id.SubjectID {
			return &Profile{TeamNumber: s.TeamNumber, Student: &s.Members[i], Snapshot: s}, nil
		}
	}
	return nil, e.done(op, db.ErrMemberNotFound)
}

// ResolveStudent 学号 → 学生身份（登录用）；已禁用的拒绝
func (e *Engine) ResolveStudent(ctx context.Context, rollNumber string) (Identity, error) {
	const op = "resolve_student"
	m, err := e.repo.FindMemberByRoll(ctx, rollNumber)
	if err != nil {
		return Identity{}, e.done(op, err)
	}
	if !m.IsActive {
		return Identity{}, e.done(op, ErrAccountDisabled)
	}
	return Identity{SubjectID: m.RollNumber, Role: RoleStudent, TeamNumber: m.TeamNumber}, nil
}

// CheckStudent 学生会话对不上在册成员时返回 ErrAccountDisabled；讲师/管理员直接通过
func (e *Engine) CheckStudent(ctx context.Context, id Identity) error {
	if id.Role != RoleStudent {
		return nil
	}
	return wrap("check_student", activeStudent(ctx, e.repo, id))
}

func (e *Engine) TouchSeen(ctx context.Context, id Identity) error {
	if !id.is(RoleStudent) {
		return nil
	}
	return wrap("touch_seen", e.repo.TouchMemberSeen(ctx, id.SubjectID))
}

func (e *Engine) ListComponents(ctx context.Context) ([]models.Component, error) {
	cs, err := e.repo.ListComponents(ctx)
	return cs, wrap("list_components", err)
}

func (e *Engine) ListTeams(ctx context.Context, id Identity) ([]models.Team, error) {
	const op = "list_teams"
	if !id.staff() {
		return nil, e.done(op, forbidden(op))
	}
	ts, err := e.repo.ListTeams(ctx)
	return ts, wrap(op, err)
}

func (e *Engine) ListAudit(ctx context.Context, id Identity, teamNumber string, limit int) ([]models.AuditEntry, error) {
	const op = "list_audit"
	if !id.staff() {
		return nil, e.done(op, forbidden(op))
	}
	es, err := e.repo.ListAudit(ctx, teamNumber, limit)
	return es, wrap(op, err)
}

// CreateTeam 仅管理员
func (e *Engine) CreateTeam(ctx context.Context, id Identity, teamNumber string, members []db.MemberInput) (*models.Team, error) {
	const op = "create_team"
	if !id.is(RoleAdmin) {
		return nil, e.done(op, forbidden(op))
	}
	var team *models.Team
	err := e.repo.Transaction(ctx, func(tx *db.Repo) error {
		var err error
		if team, err = tx.CreateTeam(ctx, teamNumber, members); err != nil {
			return err
		}
		return tx.LogAudit(ctx, audit(id, "create_team", team.TeamNumber, team.TeamNumber,
			fmt.Sprintf("members=%d", len(team.Members))))
	})
	if err != nil {
		return nil, e.done(op, err)
	}
	e.logger.Info("team created", "team", team.TeamNumber, "members", len(team.Members), "by", id.SubjectID)
	return team, e.done(op, nil)
}

// CreateComponent 仅管理员
func (e *Engine) CreateComponent(ctx context.Context, id Identity, c *models.Component) error {
	const op = "create_component"
	if !id.is(RoleAdmin) {
		return e.done(op, forbidden(op))
	}
	err := e.repo.Transaction(ctx, func(tx *db.Repo) error {
		if err := tx.CreateComponent(ctx, c); err != nil {
			return err
		}
		return tx.LogAudit(ctx, audit(id, "create_component", "", fmt.Sprint(c.ID),
			fmt.Sprintf("available=%d", c.Available)))
	})
	if err != nil {
		return e.done(op, err)
	}
	e.logger.Info("component created", "component_id", c.ID, "name", c.Name, "available", c.Available)
	return e.done(op, nil)
}

// SetMemberActive 启用/禁用学生账号，仅管理员。
// 已有会话由调用方撤销；漏掉的会话在提交请求时也会被拦下。
func (e *Engine) SetMemberActive(ctx context.Context, id Identity, rollNumber string, active bool) (*models.Member, error) {
	const op = "set_member_active"
	if !id.is(RoleAdmin) {
		return nil, e.done(op, forbidden(op))
	}
	var m *models.Member
	err := e.repo.Transaction(ctx, func(tx *db.Repo) error {
		if err := tx.SetMemberActive(ctx, rollNumber, active); err != nil {
			return err
		}
		var err error
		if m, err = tx.FindMemberByRoll(ctx, rollNumber); err != nil {
			return err
		}
		return tx.LogAudit(ctx, audit(id, "set_member_active", m.TeamNumber, m.RollNumber,
			fmt.Sprintf("active=%t", active)))
	})
	if err != nil {
		return nil, e.done(op, err)
	}
	e.logger.Info("member status changed", "roll_number", m.RollNumber, "active", active, "by", id.SubjectID)
	return m, e.done(op, nil)
}
