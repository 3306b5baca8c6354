package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Sujal06-B/hackathonproject-CampusSync/internal/middleware"
	"github.com/Sujal06-B/hackathonproject-CampusSync/internal/modules/chat/dto"
	"github.com/Sujal06-B/hackathonproject-CampusSync/internal/modules/chat/repository"
	"github.com/Sujal06-B/hackathonproject-CampusSync/internal/modules/chat/service"
	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T, rdb *redis.Client) (*gin.Engine, string) {
	gin.SetMode(gin.TestMode)

	auth := middleware.NewSessionAuth("secret", time.Hour)
	_, token, _, err := auth.Issue()
	require.NoError(t, err)

	h := NewChatHandler(service.NewFixtureService(time.Millisecond), repository.NewRateLimiter(rdb), time.Minute)
	r := gin.New()
	api := r.Group("/api/chat", auth.RequireSession())
	api.GET("/status", h.Status)
	api.POST("", h.SendMessage)
	api.POST("/study-plan", h.StudyPlan)
	api.POST("/summarize", h.Summarize)
	return r, token
}

func post(t *testing.T, r http.Handler, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, json.NewEncoder(&buf).Encode(body))
	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestSendMessage_Fixture(t *testing.T) {
	r, token := setup(t, nil)

	w := post(t, r, "/api/chat", token, gin.H{"message": "hello", "history": []gin.H{}})
	require.Equal(t, http.StatusOK, w.Code)

	var resp dto.ChatResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Contains(t, resp.Reply, "CampusSync AI")
	assert.False(t, resp.Available)
}

func TestSendMessage_Validation(t *testing.T) {
	r, token := setup(t, nil)

	w := post(t, r, "/api/chat", token, gin.H{"history": []gin.H{}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Message is required")
}

func TestSendMessage_RequiresSession(t *testing.T) {
	r, _ := setup(t, nil)

	w := post(t, r, "/api/chat", "", gin.H{"message": "hello"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestSendMessage_RateLimited(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	r, token := setup(t, rdb)

	w := post(t, r, "/api/chat", token, gin.H{"message": "hello"})
	require.Equal(t, http.StatusOK, w.Code)

	w = post(t, r, "/api/chat/summarize", token, gin.H{"announcement": "Lab closed"})
	require.Equal(t, http.StatusTooManyRequests, w.Code)

	var body struct {
		RetryAfter int `json:"retry_after"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Greater(t, body.RetryAfter, 0)

	mr.FastForward(2 * time.Minute)
	w = post(t, r, "/api/chat/summarize", token, gin.H{"announcement": "Lab closed"})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestSendMessage_RedisDownStillReplies(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	mr.Close()
	r, token := setup(t, rdb)

	w := post(t, r, "/api/chat", token, gin.H{"message": "hello"})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestStudyPlan(t *testing.T) {
	r, token := setup(t, nil)

	w := post(t, r, "/api/chat/study-plan", token, gin.H{
		"subjects": []string{"Physics"},
		"examDate": time.Now().Add(72 * time.Hour).Format(time.RFC3339),
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp dto.ChatResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Reply)

	w = post(t, r, "/api/chat/study-plan", token, gin.H{"subjects": []string{}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestStatus(t *testing.T) {
	r, token := setup(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/chat/status", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"available":false}`, w.Body.String())
}
