package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerror "github.com/zakat-tracker/backend/internal/domain/error"
	"github.com/zakat-tracker/backend/internal/integration/adapters"
	"github.com/zakat-tracker/backend/internal/integration/entrypoint/dto"
)

const testSecret = "middleware-test-secret"

func init() {
	gin.SetMode(gin.TestMode)
}

func newEngine(handlers ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	handlers = append(handlers, func(c *gin.Context) {
		id, _ := GetUserIDFromContext(c)
		email, _ := GetUserEmailFromContext(c)
		c.JSON(http.StatusOK, gin.H{"user_id": id.String(), "email": email, "name": GetUserNameFromContext(c)})
	})
	r.GET("/", handlers...)
	return r
}

func do(r http.Handler, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body dto.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body.Code
}

func TestAuthenticate(t *testing.T) {
	tokens := adapters.NewTokenService(testSecret)
	r := newEngine(NewAuthMiddleware(tokens).Authenticate())

	userID := uuid.New()
	token, err := tokens.GenerateAccessToken(context.Background(), userID, "amina@example.com", time.Hour)
	require.NoError(t, err)

	t.Run("valid token", func(t *testing.T) {
		w := do(r, "Bearer "+token)
		require.Equal(t, http.StatusOK, w.Code)

		var body map[string]string
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, userID.String(), body["user_id"])
		assert.Equal(t, "amina@example.com", body["email"])
	})

	tests := []struct {
		name   string
		header string
		code   domainerror.AuthErrorCode
	}{
		{"missing header", "", domainerror.ErrCodeMissingToken},
		{"not bearer", "Basic abc", domainerror.ErrCodeInvalidToken},
		{"empty bearer", "Bearer ", domainerror.ErrCodeMissingToken},
		{"garbage", "Bearer not-a-jwt", domainerror.ErrCodeInvalidToken},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(r, tt.header)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Equal(t, string(tt.code), errorCode(t, w))
		})
	}

	t.Run("expired token", func(t *testing.T) {
		expired, err := tokens.GenerateAccessToken(context.Background(), userID, "", -time.Minute)
		require.NoError(t, err)

		w := do(r, "Bearer "+expired)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, string(domainerror.ErrCodeExpiredToken), errorCode(t, w))
	})

	t.Run("signed with another secret", func(t *testing.T) {
		other, err := adapters.NewTokenService("another-secret").GenerateAccessToken(context.Background(), userID, "", time.Hour)
		require.NoError(t, err)

		w := do(r, "Bearer "+other)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestRateLimiter(t *testing.T) {
	now := time.Date(2025, time.March, 1, 12, 0, 0, 0, time.UTC)
	rl := NewRateLimiterWithConfig(2, time.Minute)
	rl.now = func() time.Time { return now }
	r := newEngine(rl.Middleware())

	assert.Equal(t, http.StatusOK, do(r, "").Code)
	assert.Equal(t, http.StatusOK, do(r, "").Code)

	w := do(r, "")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, string(domainerror.ErrCodeRateLimited), errorCode(t, w))

	now = now.Add(61 * time.Second)
	assert.Equal(t, http.StatusOK, do(r, "").Code)

	now = now.Add(2 * time.Minute)
	rl.Cleanup()
	assert.Empty(t, rl.entries)
}

func TestRateLimiter_KeysOnUser(t *testing.T) {
	rl := NewRateLimiterWithConfig(1, time.Minute)
	tokens := adapters.NewTokenService(testSecret)
	r := newEngine(NewAuthMiddleware(tokens).Authenticate(), rl.Middleware())

	first, err := tokens.GenerateAccessToken(context.Background(), uuid.New(), "", time.Hour)
	require.NoError(t, err)
	second, err := tokens.GenerateAccessToken(context.Background(), uuid.New(), "", time.Hour)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, do(r, "Bearer "+first).Code)
	assert.Equal(t, http.StatusTooManyRequests, do(r, "Bearer "+first).Code)
	// Same client address, different user.
	assert.Equal(t, http.StatusOK, do(r, "Bearer "+second).Code)
}

func TestRateLimiter_Disabled(t *testing.T) {
	r := newEngine(NewRateLimiterWithConfig(0, time.Minute).Middleware())
	for i := 0; i < 5; i++ {
		assert.Equal(t, http.StatusOK, do(r, "").Code)
	}
}

func TestRateLimiter_StartCleanupStops(t *testing.T) {
	rl := NewRateLimiterWithConfig(1, 10*time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		rl.StartCleanup(ctx)
		close(done)
	}()

	rl.allow("client")
	assert.Eventually(t, func() bool {
		rl.mu.Lock()
		defer rl.mu.Unlock()
		return len(rl.entries) == 0
	}, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("cleanup did not stop")
	}
}
