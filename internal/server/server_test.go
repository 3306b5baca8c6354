package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Sujal06-B/hackathonproject-CampusSync/internal/config"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockServer(t *testing.T) http.Handler {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		AllowedOrigins:  "http://localhost:5173",
		JWTSecret:       "test-secret",
		SessionTokenTTL: time.Hour,
		SessionIdleTTL:  time.Minute,
		ChatRateLimit:   2 * time.Second,
		MockDelay:       10 * time.Millisecond,
		ChatMockDelay:   10 * time.Millisecond,
		DigestSchedule:  "0 7 * * *",
	}
	s, err := NewServer(cfg, nil, nil)
	require.NoError(t, err)
	t.Cleanup(s.Close)
	return s.Handler()
}

func call(t *testing.T, h http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestMockModeEndToEnd(t *testing.T) {
	h := newMockServer(t)

	w := call(t, h, http.MethodPost, "/api/session", "", nil)
	require.Equal(t, http.StatusCreated, w.Code)

	var session struct {
		Token string `json:"token"`
		State struct {
			Loading     bool `json:"loading"`
			CurrentUser *struct {
				UID string `json:"uid"`
			} `json:"currentUser"`
		} `json:"state"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &session))
	require.NotEmpty(t, session.Token)
	assert.False(t, session.State.Loading)
	require.NotNil(t, session.State.CurrentUser)

	w = call(t, h, http.MethodGet, "/api/announcements", session.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var feed struct {
		Data    []map[string]any `json:"data"`
		Loading bool             `json:"loading"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &feed))
	assert.False(t, feed.Loading)
	assert.NotEmpty(t, feed.Data)

	w = call(t, h, http.MethodGet, "/api/chat/status", session.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"available":false`)

	w = call(t, h, http.MethodPost, "/api/chat", session.Token, map[string]any{"message": "hello"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "reply")

	w = call(t, h, http.MethodGet, "/api/digests/latest", session.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"data":null}`, w.Body.String())

	w = call(t, h, http.MethodPost, "/api/digests/run", session.Token, nil)
	assert.Equal(t, http.StatusForbidden, w.Code, "demo user is a student")

	w = call(t, h, http.MethodGet, "/api/search/token", session.Token, nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestProtectedRoutesNeedSession(t *testing.T) {
	h := newMockServer(t)

	for _, path := range []string{"/api/session", "/api/announcements", "/api/assignments", "/api/courses"} {
		w := call(t, h, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)
	}
}

func TestHealthz(t *testing.T) {
	h := newMockServer(t)

	w := call(t, h, http.MethodGet, "/healthz", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok","remote":false}`, w.Body.String())
}
