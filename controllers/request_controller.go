// controllers/request_controller.go
package controllers

import (
	"net/http"

	"Gin_postgres_redis_lab_inventory/app"
	"Gin_postgres_redis_lab_inventory/models"
	"Gin_postgres_redis_lab_inventory/workflow"

	"github.com/gin-gonic/gin"
)

type RequestController struct{ *Srv }

func NewRequestController(s *Srv) *RequestController { return &RequestController{Srv: s} }

// 列表（含可用数量）
func (rc *RequestController) ListComponents(c *gin.Context) {
	cs, err := rc.Engine.ListComponents(c.Request.Context())
	if err != nil {
		rc.fail(c, err)
		return
	}
	ok(c, http.StatusOK, "", cs)
}

// 管理员登记元件
func (rc *RequestController) CreateComponent(c *gin.Context) {
	var in struct {
		ID          int64  `json:"id" binding:"required"`
		Name        string `json:"name" binding:"required"`
		Description string `json:"description"`
		Category    string `json:"category"`
		Available   int    `json:"available"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err.Error())
		return
	}
	comp := &models.Component{
		ID:          in.ID,
		Name:        in.Name,
		Description: in.Description,
		Category:    in.Category,
		Available:   in.Available,
	}
	if err := rc.Engine.CreateComponent(c.Request.Context(), identity(c), comp); err != nil {
		rc.fail(c, err)
		return
	}
	ok(c, http.StatusCreated, "Component created", comp)
}

// 学生提交请求（队号取自会话）
func (rc *RequestController) Submit(c *gin.Context) {
	var in struct {
		ComponentID int64  `json:"component_id" binding:"required"`
		Quantity    int    `json:"quantity"`
		Notes       string `json:"notes"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "component_id and quantity required")
		return
	}
	id := identity(c)
	reqID, err := rc.Engine.SubmitRequest(c.Request.Context(), id, id.TeamNumber, in.ComponentID, in.Quantity, in.Notes)
	if err != nil {
		rc.fail(c, err)
		return
	}
	ok(c, http.StatusCreated, "Request submitted", app.H{"request_id": reqID})
}

func (rc *RequestController) Profile(c *gin.Context) {
	p, err := rc.Engine.StudentProfile(c.Request.Context(), identity(c))
	if err != nil {
		rc.fail(c, err)
		return
	}
	ok(c, http.StatusOK, "", p)
}

// 讲师处理请求：accept / reject
func (rc *RequestController) Process(c *gin.Context) {
	var in struct {
		RequestID string          `json:"request_id" binding:"required"`
		Action    workflow.Action `json:"action" binding:"required"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "request_id and action required")
		return
	}
	team := c.Param("team")
	if err := rc.Engine.ProcessRequest(c.Request.Context(), identity(c), team, in.RequestID, in.Action); err != nil {
		rc.fail(c, err)
		return
	}
	ok(c, http.StatusOK, "Request "+string(in.Action)+"ed", app.H{"request_id": in.RequestID})
}

// 批准并指定借用天数
func (rc *RequestController) Approve(c *gin.Context) {
	var in struct {
		TeamNumber string `json:"team_number" binding:"required"`
		RequestID  string `json:"request_id" binding:"required"`
		ReturnDays int    `json:"return_days"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "team_number and request_id required")
		return
	}
	item, err := rc.Engine.ApproveRequest(c.Request.Context(), identity(c), in.TeamNumber, in.RequestID, in.ReturnDays)
	if err != nil {
		rc.fail(c, err)
		return
	}
	ok(c, http.StatusOK, "Request approved", item)
}

// 归还
func (rc *RequestController) Return(c *gin.Context) {
	var in struct {
		IssueID        string `json:"issue_id" binding:"required"`
		ConditionNotes string `json:"condition_notes"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "issue_id required")
		return
	}
	retID, err := rc.Engine.RecordReturn(c.Request.Context(), identity(c), c.Param("team"), in.IssueID, in.ConditionNotes)
	if err != nil {
		rc.fail(c, err)
		return
	}
	ok(c, http.StatusOK, "Return recorded", app.H{"return_id": retID, "issue_id": in.IssueID})
}
