package middleware

import (
	"lms_backend/internal/config"
	"lms_backend/internal/util"
	"strings"

	"github.com/gin-gonic/gin"
)

// TenantMiddleware 确定当前租户：令牌中的 tenant_id 优先，其次请求头，最后为默认租户。
// 需放在认证中间件之后。
func TenantMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		tenant := ""
		if claims := util.GetUserFromContext(c); claims != nil {
			tenant = claims.TenantID
		}
		if tenant == "" {
			tenant = strings.TrimSpace(c.GetHeader(util.TenantHeader))
		}
		if tenant == "" {
			tenant = cfg.Server.DefaultTenant
		}
		c.Set(util.ContextTenantKey, tenant)
		c.Next()
	}
}
