package middlewares

import (
	"crypto/subtle"

	"github.com/gin-gonic/gin"

	"weightguard/pkg/config"
	"weightguard/pkg/errorutil"
)

// HeaderAPIKey API Key 请求头
const HeaderAPIKey = "X-Api-Key"

const ctxKeyRole = "api_role"

// APIKeyAuth 校验 X-Api-Key，未配置任何 Key 时拒绝全部请求
func APIKeyAuth(keys []config.APIKeyConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		provided := c.GetHeader(HeaderAPIKey)
		if provided == "" {
			abortWith(c, errorutil.Unauthorized("missing api key"))
			return
		}

		for _, k := range keys {
			if subtle.ConstantTimeCompare([]byte(k.Key), []byte(provided)) == 1 {
				c.Set(ctxKeyRole, k.Role)
				c.Next()
				return
			}
		}
		abortWith(c, errorutil.Unauthorized("invalid api key"))
	}
}

// RequireAdmin 写操作需要 admin 角色
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString(ctxKeyRole) != config.RoleAdmin {
			abortWith(c, errorutil.Forbidden("admin api key required"))
			return
		}
		c.Next()
	}
}

func abortWith(c *gin.Context, err *errorutil.Error) {
	_ = c.Error(err)
	c.Abort()
}
