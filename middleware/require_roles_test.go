package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func rolesRouter(role string, allowed ...string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/protected", func(c *gin.Context) {
		if role != "" {
			c.Set("role", role)
		}
		c.Next()
	}, RequireRoles(allowed...), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "ok"})
	})
	return r
}

func TestRequireRoles(t *testing.T) {
	cases := []struct {
		name     string
		role     string
		allowed  []string
		wantCode int
	}{
		{"đúng role", "teacher", []string{"teacher"}, http.StatusOK},
		{"1 trong nhiều role", "student", []string{"teacher", "student"}, http.StatusOK},
		{"sai role", "student", []string{"teacher"}, http.StatusForbidden},
		{"thiếu role trong context", "", []string{"teacher"}, http.StatusUnauthorized},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := rolesRouter(tc.role, tc.allowed...)
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			r.ServeHTTP(w, req)
			assert.Equal(t, tc.wantCode, w.Code)
		})
	}
}
