package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"go-durak/utils"
)

func tokenFrom(c *gin.Context) string {
	if h := c.GetHeader("Authorization"); h != "" {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	// 浏览器的 WebSocket 无法带 header
	return c.Query("token")
}

// AuthMiddleware 校验 access token，并把用户 ID 写入 c 的 "userID"
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := tokenFrom(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"status_code": http.StatusUnauthorized, "msg": "未授权"})
			return
		}
		claims, err := utils.ParseAccessToken(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"status_code": http.StatusUnauthorized, "msg": "token 无效或已过期"})
			return
		}
		c.Set("userID", claims.UserID)
		c.Next()
	}
}

// OptionalAuth 有合法 token 时设置 userID，没有时按游客放行
func OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if token := tokenFrom(c); token != "" {
			if claims, err := utils.ParseAccessToken(token); err == nil {
				c.Set("userID", claims.UserID)
			}
		}
		c.Next()
	}
}
