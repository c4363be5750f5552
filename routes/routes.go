package routes

import (
	"net/http"

	"Gin_postgres_redis_lab_inventory/app"
	"Gin_postgres_redis_lab_inventory/controllers"
	"Gin_postgres_redis_lab_inventory/workflow"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func RegisterRoutes(a *app.App) {
	r := a.Router

	// 控制器与依赖
	s := controllers.GetSrv(a)
	tc := controllers.GetTeamController(s)
	rc := controllers.NewRequestController(s)
	ac := controllers.NewAuditController(s)

	// 复用的中间件
	authMW := app.AuthRequired(a.Sessions())
	activeMW := app.ActiveStudent(a.Engine, a.Sessions())
	seenMW := app.TouchLastSeen(a.Engine, a.SeenThrottle(), a.Logger)
	studentMW := app.RequireRole(workflow.RoleStudent)
	staffMW := app.RequireRole(workflow.RoleInstructor, workflow.RoleAdmin)
	adminMW := app.RequireRole(workflow.RoleAdmin)

	// Health / metrics
	r.GET("/healthz", func(c *app.Ctx) {
		sqlDB, err := a.DB.DB()
		if err == nil {
			err = sqlDB.PingContext(c.Request.Context())
		}
		if err == nil {
			err = a.RDB.Ping(c.Request.Context()).Err()
		}
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, app.H{"ok": false, "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, app.H{"ok": true})
	})
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(a.Registry, promhttp.HandlerOpts{})))

	api := r.Group("/api")

	// ------------------------------
	// 登录（公开）/ 登出
	// ------------------------------
	api.POST("/student/login", s.StudentLogin)
	authed := api.Group("", authMW, activeMW, seenMW)
	{
		authed.POST("/logout", s.Logout)
		authed.GET("/whoami", s.WhoAmI)
	}

	// ------------------------------
	// 学生
	// ------------------------------
	student := api.Group("/student", authMW, studentMW, activeMW, seenMW)
	{
		student.GET("/components", rc.ListComponents)
		student.POST("/request", rc.Submit)
		student.GET("/profile", rc.Profile)
	}

	// ------------------------------
	// 讲师（管理员也可）
	// ------------------------------
	instructor := api.Group("/instructor", authMW, staffMW)
	{
		instructor.GET("/components", rc.ListComponents)
		instructor.GET("/teams", tc.ListTeams)
		instructor.GET("/teams/:team", tc.GetTeam)
		instructor.POST("/teams/:team/process-request", rc.Process)
		instructor.POST("/teams/:team/return", rc.Return)
		instructor.POST("/approve", rc.Approve)
		instructor.GET("/audit", ac.List)
	}

	// ------------------------------
	// 管理员
	// ------------------------------
	admin := api.Group("/admin", authMW, adminMW)
	{
		admin.POST("/teams", tc.CreateTeam)
		admin.POST("/components", rc.CreateComponent)
		admin.PUT("/members/:roll/active", tc.SetMemberActive)
	}
}
