package middleware

import (
	"net/http"
	"strings"

	"github.com/typeofTommy/fis-inscriptions-web-sub000/internal/auth"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const (
	ctxUserID   = "user_id"
	ctxUserRole = "user_role"
)

// TokenParser verifies bearer tokens.
type TokenParser interface {
	Parse(token string) (auth.Principal, error)
}

// JWTAuth 校验 Authorization: Bearer <token>，失败返回 401
func JWTAuth(parser TokenParser, logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authorization header is required"})
			return
		}
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authorization header must be Bearer <token>"})
			return
		}

		p, err := parser.Parse(parts[1])
		if err != nil {
			logger.WithError(err).WithField("path", c.FullPath()).Debug("token rejected")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		c.Set(ctxUserID, p.UserID)
		c.Set(ctxUserRole, p.Role)
		c.Next()
	}
}

// RequireRole 角色校验，super-admin 拥有全部权限
func RequireRole(roles ...auth.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := Principal(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
			return
		}
		if p.Role == auth.RoleSuperAdmin {
			c.Next()
			return
		}
		for _, r := range roles {
			if p.Role == r {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "insufficient permissions"})
	}
}

// Principal returns the caller set by JWTAuth.
func Principal(c *gin.Context) (auth.Principal, bool) {
	id := c.GetString(ctxUserID)
	if id == "" {
		return auth.Principal{}, false
	}
	role, _ := c.Get(ctxUserRole)
	r, _ := role.(auth.Role)
	return auth.Principal{UserID: id, Role: r}, true
}
