package controllers

import (
	"net/http"

	"Gin_postgres_redis_lab_inventory/app"
	"Gin_postgres_redis_lab_inventory/db"
	"Gin_postgres_redis_lab_inventory/session"

	"github.com/gin-gonic/gin"
)

type TeamController struct {
	*Srv
	sessions *session.Store
}

func GetTeamController(s *Srv) *TeamController {
	return &TeamController{Srv: s, sessions: s.Sessions}
}

// GET /api/instructor/teams
func (tc *TeamController) ListTeams(c *gin.Context) {
	ts, err := tc.Engine.ListTeams(c.Request.Context(), identity(c))
	if err != nil {
		tc.fail(c, err)
		return
	}
	ok(c, http.StatusOK, "", ts)
}

// GET /api/instructor/teams/:team
func (tc *TeamController) GetTeam(c *gin.Context) {
	snap, err := tc.Engine.GetTeamSnapshot(c.Request.Context(), identity(c), c.Param("team"))
	if err != nil {
		tc.fail(c, err)
		return
	}
	ok(c, http.StatusOK, "", snap)
}

// POST /api/admin/teams
func (tc *TeamController) CreateTeam(c *gin.Context) {
	var in struct {
		TeamNumber string           `json:"ipa_ipr_no" binding:"required"`
		Members    []db.MemberInput `json:"members"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "ipa_ipr_no required")
		return
	}
	team, err := tc.Engine.CreateTeam(c.Request.Context(), identity(c), in.TeamNumber, in.Members)
	if err != nil {
		tc.fail(c, err)
		return
	}
	ok(c, http.StatusCreated, "Team created", app.H{
		"team_number":  team.TeamNumber,
		"member_count": len(team.Members),
	})
}

// PUT /api/admin/members/:roll/active
// 禁用时顺带撤销该学生的所有会话
func (tc *TeamController) SetMemberActive(c *gin.Context) {
	var in struct {
		Active *bool `json:"active" binding:"required"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "active required")
		return
	}
	ctx := c.Request.Context()
	m, err := tc.Engine.SetMemberActive(ctx, identity(c), c.Param("roll"), *in.Active)
	if err != nil {
		tc.fail(c, err)
		return
	}
	if !m.IsActive {
		if err := tc.sessions.RevokeAllForSubject(ctx, m.RollNumber); err != nil {
			tc.Logger.Error("revoke sessions failed", "roll_number", m.RollNumber, "error", err)
		}
	}
	ok(c, http.StatusOK, "Member updated", m)
}
