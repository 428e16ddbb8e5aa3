package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/typeofTommy/fis-inscriptions-web-sub000/internal/auth"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRouter(t *testing.T) (*gin.Engine, *auth.Issuer) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	iss := auth.NewIssuer("s3cret", "fis-inscriptions", time.Hour)
	r := gin.New()
	r.Use(RequestLogger(logger))
	api := r.Group("/api", JWTAuth(iss, logger))
	api.GET("/me", func(c *gin.Context) {
		p, ok := Principal(c)
		require.True(t, ok)
		c.JSON(http.StatusOK, gin.H{"user": p.UserID, "role": p.Role})
	})
	api.GET("/admin", RequireRole(auth.RoleAdmin), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return r, iss
}

func TestJWTAuth(t *testing.T) {
	r, iss := newRouter(t)
	token, err := iss.Generate("user_1", auth.RoleUser)
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized},
		{"bad token", "Bearer nope", http.StatusUnauthorized},
		{"valid", "Bearer " + token, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			r.ServeHTTP(w, req)
			assert.Equal(t, tt.want, w.Code)
			assert.NotEmpty(t, w.Header().Get(RequestIDHeader))
		})
	}
}

func TestRequireRole(t *testing.T) {
	r, iss := newRouter(t)

	for role, want := range map[auth.Role]int{
		auth.RoleUser:       http.StatusForbidden,
		auth.RoleAdmin:      http.StatusNoContent,
		auth.RoleSuperAdmin: http.StatusNoContent,
	} {
		t.Run(string(role), func(t *testing.T) {
			token, err := iss.Generate("user_1", role)
			require.NoError(t, err)
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/api/admin", nil)
			req.Header.Set("Authorization", "Bearer "+token)
			r.ServeHTTP(w, req)
			assert.Equal(t, want, w.Code)
		})
	}
}
