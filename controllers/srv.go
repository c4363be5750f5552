// controllers/srv.go
package controllers

import (
	"log/slog"
	"net/http"
	"time"

	"Gin_postgres_redis_lab_inventory/app"
	"Gin_postgres_redis_lab_inventory/config"
	"Gin_postgres_redis_lab_inventory/session"
	"Gin_postgres_redis_lab_inventory/workflow"

	"github.com/gin-gonic/gin"
)

type Srv struct {
	Engine   *workflow.Engine
	Sessions *session.Store
	Cfg      *config.Config
	Logger   *slog.Logger
}

func GetSrv(a *app.App) *Srv {
	return &Srv{
		Engine:   a.Engine,
		Sessions: a.Sessions(),
		Cfg:      a.Config,
		Logger:   a.Logger,
	}
}

// --- helpers ---

// 统一响应格式 {success, message, data}
func ok(c *gin.Context, status int, message string, data any) {
	c.JSON(status, app.H{"success": true, "message": message, "data": data})
}

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, app.H{"success": false, "message": message, "code": "BAD_REQUEST"})
}

// fail 按错误类别映射 HTTP 状态码
func (s *Srv) fail(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch workflow.KindOf(err) {
	case workflow.KindValidation:
		status = http.StatusBadRequest
	case workflow.KindNotFound:
		status = http.StatusNotFound
	case workflow.KindConflict:
		status = http.StatusConflict
	case workflow.KindForbidden:
		status = http.StatusForbidden
	}
	code := workflow.CodeOf(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		// 内部错误不回传细节
		if code == "" {
			code = "INTERNAL"
		}
		message = "internal error, please retry"
		s.Logger.Error("request failed", "path", c.FullPath(), "error", err)
	}
	c.JSON(status, app.H{"success": false, "message": message, "code": code})
}

// 当前调用者；路由上都挂了 AuthRequired
func identity(c *gin.Context) workflow.Identity {
	id, _ := app.IdentityFrom(c)
	return id
}

// 统一设置会话 Cookie；maxAge < 0 即删除
func (s *Srv) setSessionCookie(w http.ResponseWriter, token string, maxAge time.Duration) {
	age := int(maxAge / time.Second)
	if maxAge < 0 {
		age = -1
	}
	http.SetCookie(w, &http.Cookie{
		Name:     app.SessionCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   s.Cfg.CookieSecure,
		MaxAge:   age,
	})
}
