package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

type AuditController struct{ *Srv }

func NewAuditController(s *Srv) *AuditController { return &AuditController{Srv: s} }

// GET /api/instructor/audit?team=&limit=
func (ac *AuditController) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	es, err := ac.Engine.ListAudit(c.Request.Context(), identity(c), c.Query("team"), limit)
	if err != nil {
		ac.fail(c, err)
		return
	}
	ok(c, http.StatusOK, "", es)
}
