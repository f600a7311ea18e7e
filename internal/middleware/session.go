package middleware

import (
	"strings"

	"alcie_study_backend/internal/service"
	"alcie_study_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// SessionMiddleware 校验路径中的会话ID并把快照放入上下文
func SessionMiddleware(sessions *service.SessionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.Param("id"))
		if id == "" {
			util.BadRequest(c, "session id is required")
			c.Abort()
			return
		}

		snapshot, err := sessions.Get(id)
		if err != nil {
			util.HandleServiceError(c, err)
			c.Abort()
			return
		}

		c.Set("sessionId", id)
		c.Set("session", snapshot)
		c.Next()
	}
}

// GetSessionID 读取中间件放入的会话ID
func GetSessionID(c *gin.Context) string {
	if v, ok := c.Get("sessionId"); ok {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return c.Param("id")
}
