// app/seenmw.go
package app

import (
	"log/slog"

	"Gin_postgres_redis_lab_inventory/session"
	"Gin_postgres_redis_lab_inventory/workflow"

	"github.com/gin-gonic/gin"
)

// TouchLastSeen 学生每个节流窗口最多写一次 last_seen_at
func TouchLastSeen(engine *workflow.Engine, throttle *session.Throttle, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := IdentityFrom(c)
		if !ok || id.Role != workflow.RoleStudent {
			c.Next()
			return
		}
		if throttle.Allow(c.Request.Context(), id.SubjectID) {
			// 忽略错误，不阻塞请求
			if err := engine.TouchSeen(c.Request.Context(), id); err != nil {
				logger.Warn("touch last seen failed", "sub", id.SubjectID, "error", err)
			}
		}
		c.Next()
	}
}
