package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Sujal06-B/hackathonproject-CampusSync/internal/entity"
	"github.com/Sujal06-B/hackathonproject-CampusSync/internal/middleware"
	"github.com/Sujal06-B/hackathonproject-CampusSync/internal/modules/search/service"
	sessionRepo "github.com/Sujal06-B/hackathonproject-CampusSync/internal/modules/session/repository"
	sessionService "github.com/Sujal06-B/hackathonproject-CampusSync/internal/modules/session/service"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubEngine struct{}

func (stubEngine) Upsert(string, []service.Document) error { return nil }
func (stubEngine) Delete(string, []string) error { return nil }
func (stubEngine) TenantToken(role entity.Role) (string, error) {
	return "signed-for-" + string(role), nil
}

func setup(t *testing.T, engine service.Engine) (*gin.Engine, *sessionService.Registry, string, string) {
	gin.SetMode(gin.TestMode)

	flags := sessionRepo.NewFlagStore(nil, 0)
	registry := sessionService.NewRegistry(func(id string) sessionService.Backend {
		return sessionService.NewFixtureBackend(flags, id)
	}, time.Minute)
	t.Cleanup(registry.Close)

	auth := middleware.NewSessionAuth("secret", time.Hour)
	sessionID, token, _, err := auth.Issue()
	require.NoError(t, err)

	h := NewSearchHandler(engine, "http://search.local:7700", registry)
	r := gin.New()
	r.GET("/api/search/token", auth.RequireSession(), h.Token)
	return r, registry, sessionID, token
}

func get(r http.Handler, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/api/search/token", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestToken(t *testing.T) {
	r, _, _, token := setup(t, stubEngine{})

	w := get(r, token)
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Token   string   `json:"token"`
		Host    string   `json:"host"`
		Indexes []string `json:"indexes"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "signed-for-student", body.Token)
	assert.Equal(t, "http://search.local:7700", body.Host)
	assert.Equal(t, []string{"announcements", "assignments"}, body.Indexes)
}

func TestToken_NotConfigured(t *testing.T) {
	r, _, _, token := setup(t, nil)
	assert.Equal(t, http.StatusServiceUnavailable, get(r, token).Code)
}

func TestToken_SignedOut(t *testing.T) {
	r, registry, sessionID, token := setup(t, stubEngine{})

	m, err := registry.Get(context.Background(), sessionID)
	require.NoError(t, err)
	require.NoError(t, m.SignOut(context.Background()))

	assert.Equal(t, http.StatusUnauthorized, get(r, token).Code)
}
