package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/lalith-99/teamchat/internal/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testSecret = "test-secret"

type fakeRevoker struct {
	revoked map[string]bool
	err     error
}

func (f *fakeRevoker) IsRevoked(_ context.Context, jti string) (bool, error) {
	return f.revoked[jti], f.err
}

func newAuthRouter(revoker Revoker) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(AuthMiddleware(testSecret, revoker, zap.NewNop()))
	r.GET("/me", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": GetUserID(c), "email": GetEmail(c), "jti": GetClaims(c).ID})
	})
	return r
}

func do(r http.Handler, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware(t *testing.T) {
	userID := uuid.New()
	token, claims, err := auth.GenerateToken(userID, "ada@example.com", testSecret, time.Hour)
	require.NoError(t, err)
	other, _, err := auth.GenerateToken(userID, "ada@example.com", "wrong", time.Hour)
	require.NoError(t, err)

	revoker := &fakeRevoker{revoked: map[string]bool{}}
	r := newAuthRouter(revoker)

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"valid", "Bearer " + token, http.StatusOK},
		{"lowercase scheme", "bearer " + token, http.StatusOK},
		{"missing", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic " + token, http.StatusUnauthorized},
		{"bad signature", "Bearer " + other, http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(r, tt.header)
			assert.Equal(t, tt.want, w.Code, w.Body.String())
		})
	}

	w := do(r, "Bearer "+token)
	assert.Contains(t, w.Body.String(), userID.String())

	revoker.revoked[claims.ID] = true
	w = do(r, "Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "unauthenticated")
}

func TestAuthMiddlewareFailsClosed(t *testing.T) {
	token, _, err := auth.GenerateToken(uuid.New(), "a@example.com", testSecret, time.Hour)
	require.NoError(t, err)

	r := newAuthRouter(&fakeRevoker{err: errors.New("redis down")})
	w := do(r, "Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddlewareWithoutRevoker(t *testing.T) {
	token, _, err := auth.GenerateToken(uuid.New(), "a@example.com", testSecret, time.Hour)
	require.NoError(t, err)

	w := do(newAuthRouter(nil), "Bearer "+token)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRateLimiter(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rl := NewRateLimiter(1, 2)
	r := gin.New()
	r.Use(rl.Middleware())
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	hit := func(ip string) int {
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.RemoteAddr = ip + ":1234"
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusNoContent, hit("10.0.0.1"))
	assert.Equal(t, http.StatusNoContent, hit("10.0.0.1"))
	assert.Equal(t, http.StatusTooManyRequests, hit("10.0.0.1"))
	assert.Equal(t, http.StatusNoContent, hit("10.0.0.2"), "buckets are per client")
}

func TestRateLimiterSweep(t *testing.T) {
	rl := NewRateLimiter(1, 1)
	rl.get("ip:a")
	rl.get("ip:b")
	rl.limiters["ip:a"].lastSeen = time.Now().Add(-limiterIdleAfter - time.Second)

	rl.sweep(time.Now())

	assert.NotContains(t, rl.limiters, "ip:a")
	assert.Contains(t, rl.limiters, "ip:b")
}
