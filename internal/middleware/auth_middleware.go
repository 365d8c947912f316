package middleware

import (
	"net/http"
	"strings"

	"Lumen_Blog/internal/auth"
	"Lumen_Blog/internal/model"

	"github.com/gin-gonic/gin"
)

const identityKey = "identity"

// Authenticate 中间件工厂，required为false时没带令牌按匿名放行，带了坏令牌照样拒绝。
// 流程：1、从http请求中取出"Authorization"字段 2、验证"Bearer [token]" 3、通过secretKey验证token有效性 4、把解析出的身份放入context
func Authenticate(secret []byte, required bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			if required {
				// 立刻调用c.Abort()，阻止后续的任何处理器（包括其他中间件和最终的handler）被执行
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "请求未包含授权令牌"})
				return
			}
			c.Set(identityKey, auth.Identity{})
			c.Next()
			return
		}

		// 通常Token的格式是 "Bearer [token]"
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "授权令牌格式不正确"})
			return
		}

		identity, err := auth.ParseToken(secret, parts[1])
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "无效的授权令牌"})
			return
		}

		c.Set(identityKey, identity)
		c.Next()
	}
}

// RequireModerator 必须挂在Authenticate之后
func RequireModerator(policy auth.ModeratorPolicy) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !policy.IsModerator(IdentityFrom(c)) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "需要审核员权限"})
			return
		}
		c.Next()
	}
}

func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if IdentityFrom(c).Role != model.RoleAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "需要管理员权限"})
			return
		}
		c.Next()
	}
}

// IdentityFrom 没经过Authenticate时返回匿名身份
func IdentityFrom(c *gin.Context) auth.Identity {
	if v, ok := c.Get(identityKey); ok {
		if id, ok := v.(auth.Identity); ok {
			return id
		}
	}
	return auth.Identity{}
}
