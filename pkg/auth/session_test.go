package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogin(t *testing.T) {
	gate := NewGate("secret", time.Hour)

	token, err := gate.Login("secret")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.True(t, gate.Valid(token))

	_, err = gate.Login("wrong")
	assert.ErrorIs(t, err, ErrInvalidCredential)

	_, err = gate.Login("")
	assert.ErrorIs(t, err, ErrInvalidCredential)
}

func TestLogout(t *testing.T) {
	gate := NewGate("secret", time.Hour)
	token, err := gate.Login("secret")
	require.NoError(t, err)

	gate.Logout(token)
	assert.False(t, gate.Valid(token))

	// Logging out twice is harmless.
	gate.Logout(token)
}

func TestSessionExpiry(t *testing.T) {
	gate := NewGate("secret", time.Hour)
	now := time.Now()
	gate.now = func() time.Time { return now }

	token, err := gate.Login("secret")
	require.NoError(t, err)
	assert.True(t, gate.Valid(token))

	now = now.Add(2 * time.Hour)
	assert.False(t, gate.Valid(token))
}

func TestCleanupExpired(t *testing.T) {
	gate := NewGate("secret", time.Hour)
	now := time.Now()
	gate.now = func() time.Time { return now }

	for i := 0; i < 3; i++ {
		_, err := gate.Login("secret")
		require.NoError(t, err)
	}

	assert.Zero(t, gate.CleanupExpired())

	now = now.Add(2 * time.Hour)
	assert.Equal(t, 3, gate.CleanupExpired())
	assert.Zero(t, gate.CleanupExpired())
}

func TestValidUnknownToken(t *testing.T) {
	gate := NewGate("secret", time.Hour)
	assert.False(t, gate.Valid(""))
	assert.False(t, gate.Valid("not-a-token"))
}

func TestMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	gate := NewGate("secret", time.Hour)
	token, err := gate.Login("secret")
	require.NoError(t, err)

	router := gin.New()
	router.GET("/protected", gate.Middleware(), func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	tests := []struct {
		name       string
		setAuth    func(*http.Request)
		wantStatus int
	}{
		{
			name:       "no token",
			setAuth:    func(*http.Request) {},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "bad token header",
			setAuth:    func(r *http.Request) { r.Header.Set("X-Session-Token", "bogus") },
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "valid token header",
			setAuth:    func(r *http.Request) { r.Header.Set("X-Session-Token", token) },
			wantStatus: http.StatusOK,
		},
		{
			name: "valid token cookie",
			setAuth: func(r *http.Request) {
				r.AddCookie(&http.Cookie{Name: SessionCookie, Value: token})
			},
			wantStatus: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			tt.setAuth(req)

			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}
