package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/qs3c/dict_go_server/internal/pkg/jwt"
	"github.com/qs3c/dict_go_server/internal/pkg/logger"
	"github.com/qs3c/dict_go_server/internal/pkg/response"
)

const (
	AccountIDKey   = "accountID"
	IsStaffKey     = "isStaff"
	CanActivateKey = "canActivateUser"
)

// Auth JWT 认证中间件
func Auth(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.AuthError(c, "请提供认证信息")
			c.Abort()
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader {
			response.AuthError(c, "认证格式错误")
			c.Abort()
			return
		}

		claims, err := jwt.ParseToken(tokenString, jwtSecret)
		if err != nil {
			response.AuthError(c, "认证失败或已过期")
			c.Abort()
			return
		}

		c.Set(AccountIDKey, claims.AccountID)
		c.Set(IsStaffKey, claims.IsStaff)
		c.Set(CanActivateKey, claims.CanActivateUser)
		c.Request = c.Request.WithContext(logger.WithAccountID(c.Request.Context(), claims.AccountID))
		c.Next()
	}
}

// StaffOnly 仅允许后台人员访问，需挂在 Auth 之后
func StaffOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !c.GetBool(IsStaffKey) {
			response.PermissionError(c, "")
			c.Abort()
			return
		}
		c.Next()
	}
}

// ActivityToucher 刷新账号最后活跃时间
type ActivityToucher interface {
	TouchActivity(id int64) error
}

// Activity 认证请求处理完后刷新 last_activity，失败只记录日志
func Activity(toucher ActivityToucher) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		accountID, ok := GetAccountID(c)
		if !ok {
			return
		}
		if err := toucher.TouchActivity(accountID); err != nil {
			logger.FromContext(c.Request.Context()).Warn("touch activity failed", "error", err)
		}
	}
}

// GetAccountID 从上下文获取账号 ID
func GetAccountID(c *gin.Context) (int64, bool) {
	v, exists := c.Get(AccountIDKey)
	if !exists {
		return 0, false
	}
	id, ok := v.(int64)
	return id, ok
}
