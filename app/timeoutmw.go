package app

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
)

// RequestTimeout 给请求的 context 加截止时间，事务和 Redis 调用随之超时
func RequestTimeout(d time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if d <= 0 {
			c.Next()
			return
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), d)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
