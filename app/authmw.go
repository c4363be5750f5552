package app

import (
	"errors"
	"net/http"
	"strings"

	"Gin_postgres_redis_lab_inventory/session"
	"Gin_postgres_redis_lab_inventory/workflow"

	"github.com/gin-gonic/gin"
)

const SessionCookie = "lab_session"

const (
	identityKey = "identity"
	tokenKey    = "sessionToken"
)

// SessionToken 取 Cookie，没有再看 Authorization: Bearer
func SessionToken(c *gin.Context) string {
	if ck, err := c.Request.Cookie(SessionCookie); err == nil && ck.Value != "" {
		return ck.Value
	}
	if h := c.GetHeader("Authorization"); len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}

// AuthRequired 把会话解析成 workflow.Identity 放进 Context
func AuthRequired(store *session.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := SessionToken(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, H{"success": false, "message": "unauthorized", "code": "UNAUTHORIZED"})
			return
		}
		sess, err := store.Get(c.Request.Context(), token)
		if errors.Is(err, session.ErrSessionNotFound) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, H{"success": false, "message": "invalid session", "code": "UNAUTHORIZED"})
			return
		}
		if err != nil {
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, H{"success": false, "message": "session store unavailable", "code": "SESSION_STORE"})
			return
		}
		c.Set(identityKey, sess.Identity)
		c.Set(tokenKey, token)
		c.Next()
	}
}

// ActiveStudent 学生每次请求都回库确认仍是在册成员；已禁用则撤销当前会话
func ActiveStudent(engine *workflow.Engine, store *session.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := IdentityFrom(c)
		if !ok {
			c.Next()
			return
		}
		err := engine.CheckStudent(c.Request.Context(), id)
		switch {
		case err == nil:
			c.Next()
		case errors.Is(err, workflow.ErrAccountDisabled):
			_ = store.Delete(c.Request.Context(), TokenFrom(c))
			c.AbortWithStatusJSON(http.StatusUnauthorized, H{"success": false, "message": "account disabled", "code": "ACCOUNT_DISABLED"})
		default:
			c.AbortWithStatusJSON(http.StatusInternalServerError, H{"success": false, "message": "internal error, please retry", "code": "TRANSACTION_FAILURE"})
		}
	}
}

func IdentityFrom(c *gin.Context) (workflow.Identity, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return workflow.Identity{}, false
	}
	id, ok := v.(workflow.Identity)
	return id, ok
}

func TokenFrom(c *gin.Context) string { return c.GetString(tokenKey) }

// RequireRole 放在 AuthRequired 之后
func RequireRole(roles ...workflow.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := IdentityFrom(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, H{"success": false, "message": "unauthorized", "code": "UNAUTHORIZED"})
			return
		}
		for _, r := range roles {
			if id.Role == r {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, H{"success": false, "message": "forbidden", "code": "FORBIDDEN"})
	}
}
