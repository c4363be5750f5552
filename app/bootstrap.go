// app/bootstrap.go
package app

import (
	"context"

	"Gin_postgres_redis_lab_inventory/workflow"
)

// BootstrapAdmin 配置了 BOOTSTRAP_ADMIN 时签发一个 admin 会话并打到日志里，
// 用它创建队伍和元件
func (a *App) BootstrapAdmin(ctx context.Context) (string, error) {
	sub := a.Config.BootstrapAdmin
	if sub == "" {
		return "", nil
	}
	token, sess, err := a.sessions.Create(ctx, workflow.Identity{SubjectID: sub, Role: workflow.RoleAdmin})
	if err != nil {
		a.Logger.Error("bootstrap admin session failed", "sub", sub, "error", err)
		return "", err
	}
	a.Logger.Warn("[BOOTSTRAP] admin session issued",
		"sub", sub, "token", token, "expires_at", sess.ExpiresAt)
	return token, nil
}
