package controllers

import (
	"net/http"
	"strings"

	"Gin_postgres_redis_lab_inventory/app"

	"github.com/gin-gonic/gin"
)

// 学生用学号登录；讲师/管理员的会话由 CLI 签发
func (s *Srv) StudentLogin(c *gin.Context) {
	var in struct {
		RollNumber string `json:"roll_number"`
	}
	if err := c.ShouldBindJSON(&in); err != nil || strings.TrimSpace(in.RollNumber) == "" {
		badRequest(c, "roll number required")
		return
	}
	ctx := c.Request.Context()
	id, err := s.Engine.ResolveStudent(ctx, in.RollNumber)
	if err != nil {
		s.fail(c, err)
		return
	}
	token, sess, err := s.Sessions.Create(ctx, id)
	if err != nil {
		s.fail(c, err)
		return
	}
	s.setSessionCookie(c.Writer, token, s.Sessions.TTL())
	ok(c, http.StatusOK, "Login successful", app.H{
		"token":       token,
		"team_number": id.TeamNumber,
		"roll_number": id.SubjectID,
		"expires_at":  sess.ExpiresAt,
	})
}

// 登出：删 Redis，会话 Cookie 置空
func (s *Srv) Logout(c *gin.Context) {
	if token := app.TokenFrom(c); token != "" {
		if err := s.Sessions.Delete(c.Request.Context(), token); err != nil {
			s.Logger.Warn("delete session failed", "error", err)
		}
	}
	s.setSessionCookie(c.Writer, "", -1)
	ok(c, http.StatusOK, "Logged out", nil)
}

// whoami：返回当前身份
func (s *Srv) WhoAmI(c *gin.Context) {
	ok(c, http.StatusOK, "", identity(c))
}
