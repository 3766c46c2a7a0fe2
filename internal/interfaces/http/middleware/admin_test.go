package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type stubAdminChecker struct {
	admins map[int64]bool
	err    error
}

func (s *stubAdminChecker) IsAdmin(_ context.Context, userID int64) (bool, error) {
	if s.err != nil {
		return false, s.err
	}
	return s.admins[userID], nil
}

func adminTestEngine(checker AdminChecker, userID int64) *gin.Engine {
	engine := gin.New()
	group := engine.Group("/admin")
	if userID != 0 {
		group.Use(func(c *gin.Context) {
			c.Set(JWTUserIDKey, userID)
			c.Next()
		})
	}
	group.Use(RequireAdmin(checker))
	group.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	return engine
}

func TestRequireAdmin_AllowsAdmin(t *testing.T) {
	checker := &stubAdminChecker{admins: map[int64]bool{1: true}}
	w := httptest.NewRecorder()
	adminTestEngine(checker, 1).ServeHTTP(w, httptest.NewRequest("GET", "/admin/ping", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequireAdmin_RejectsNonAdmin(t *testing.T) {
	checker := &stubAdminChecker{admins: map[int64]bool{}}
	w := httptest.NewRecorder()
	adminTestEngine(checker, 2).ServeHTTP(w, httptest.NewRequest("GET", "/admin/ping", nil))
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRequireAdmin_RejectsUnauthenticated(t *testing.T) {
	checker := &stubAdminChecker{admins: map[int64]bool{1: true}}
	w := httptest.NewRecorder()
	adminTestEngine(checker, 0).ServeHTTP(w, httptest.NewRequest("GET", "/admin/ping", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireAdmin_CheckerFailure(t *testing.T) {
	checker := &stubAdminChecker{err: errors.New("db down")}
	w := httptest.NewRecorder()
	adminTestEngine(checker, 1).ServeHTTP(w, httptest.NewRequest("GET", "/admin/ping", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
