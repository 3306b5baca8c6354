package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Sujal06-B/hackathonproject-CampusSync/internal/entity"
	"github.com/Sujal06-B/hackathonproject-CampusSync/internal/middleware"
	"github.com/Sujal06-B/hackathonproject-CampusSync/internal/modules/portal/service"
	sessionRepo "github.com/Sujal06-B/hackathonproject-CampusSync/internal/modules/session/repository"
	sessionService "github.com/Sujal06-B/hackathonproject-CampusSync/internal/modules/session/service"
	commonDto "github.com/Sujal06-B/hackathonproject-CampusSync/pkg/dto"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	router   *gin.Engine
	registry *sessionService.Registry
	token    string
	session  string
}

type stubRunner struct {
	err   error
	names []string
}

func (r *stubRunner) RunAgentByName(ctx context.Context, name string) error {
	r.names = append(r.names, name)
	return r.err
}

func setup(t *testing.T) testEnv {
	return setupWithDigests(t, nil)
}

func setupWithDigests(t *testing.T, digests DigestRunner) testEnv {
	gin.SetMode(gin.TestMode)

	flags := sessionRepo.NewFlagStore(nil, 0)
	registry := sessionService.NewRegistry(func(id string) sessionService.Backend {
		return sessionService.NewFixtureBackend(flags, id)
	}, time.Minute)
	t.Cleanup(registry.Close)

	auth := middleware.NewSessionAuth("secret", time.Hour)
	sessionID, token, _, err := auth.Issue()
	require.NoError(t, err)

	h := NewPortalHandler(service.NewPortalService(nil, nil), registry, digests)
	r := gin.New()
	api := r.Group("/api", auth.RequireSession())
	api.PUT("/profile", h.SaveProfile)
	api.GET("/courses", h.Courses)
	api.POST("/announcements", h.CreateAnnouncement)
	api.POST("/announcements/:id/read", h.MarkAnnouncementRead)
	api.POST("/assignments", h.CreateAssignment)
	api.POST("/assignments/:id/complete", h.MarkAssignmentComplete)
	api.POST("/digests/run", h.RunDigest)

	return testEnv{router: r, registry: registry, token: token, session: sessionID}
}

func (e testEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+e.token)
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func TestOnboardingThenTeacherWrites(t *testing.T) {
	env := setup(t)

	w := env.do(t, http.MethodPost, "/api/announcements", gin.H{"title": "Quiz", "content": "Friday"})
	assert.Equal(t, http.StatusForbidden, w.Code, "demo user is a student")

	w = env.do(t, http.MethodPut, "/api/profile", gin.H{
		"role": "teacher", "university": "IIT Bombay", "department": "Physics",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var state sessionService.State
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &state))
	require.NotNil(t, state.Profile)
	assert.Equal(t, entity.RoleTeacher, state.Profile.Role)
	assert.Equal(t, []string{"CS301", "CS101"}, state.Profile.Courses)

	m, err := env.registry.Get(context.Background(), env.session)
	require.NoError(t, err)
	assert.Equal(t, entity.RoleTeacher, m.State().Profile.Role)

	w = env.do(t, http.MethodPost, "/api/announcements", gin.H{"title": "Quiz", "content": "Friday"})
	require.Equal(t, http.StatusCreated, w.Code)
	var res commonDto.WriteResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.True(t, res.Success)
	assert.True(t, res.Mock)

	w = env.do(t, http.MethodPost, "/api/assignments", gin.H{
		"title": "Lab 3", "courseId": "CS301", "dueDate": time.Now().Add(24 * time.Hour).Format(time.RFC3339),
	})
	assert.Equal(t, http.StatusCreated, w.Code)

	w = env.do(t, http.MethodPost, "/api/assignments", gin.H{"title": "Lab 3"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestOnboardingMultipart(t *testing.T) {
	env := setup(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("role", "student"))
	require.NoError(t, mw.WriteField("university", "IIT Delhi"))
	require.NoError(t, mw.WriteField("department", "EE"))
	require.NoError(t, mw.WriteField("courses", "EE100"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPut, "/api/profile", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+env.token)
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var state sessionService.State
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &state))
	assert.Equal(t, "IIT Delhi", state.Profile.University)
	assert.Equal(t, []string{"EE100"}, state.Profile.Courses)
}

func TestOnboardingValidation(t *testing.T) {
	env := setup(t)

	w := env.do(t, http.MethodPut, "/api/profile", gin.H{"role": "admin", "university": "x", "department": "y"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Role must be one of")
}

func TestStudentWrites(t *testing.T) {
	env := setup(t)

	w := env.do(t, http.MethodPost, "/api/assignments/a1/complete", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"id":"a1","success":true,"mock":true}`, w.Body.String())

	w = env.do(t, http.MethodPost, "/api/announcements/n1/read", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodGet, "/api/courses", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Data []entity.Course `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Len(t, body.Data, 2)
}

func TestSignedOutIsRejected(t *testing.T) {
	env := setup(t)

	m, err := env.registry.Get(context.Background(), env.session)
	require.NoError(t, err)
	require.NoError(t, m.SignOut(context.Background()))

	w := env.do(t, http.MethodGet, "/api/courses", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "sign in first")
}

func (e testEnv) becomeTeacher(t *testing.T) {
	t.Helper()
	w := e.do(t, http.MethodPut, "/api/profile", gin.H{
		"role": "teacher", "university": "IIT Bombay", "department": "Physics",
	})
	require.Equal(t, http.StatusOK, w.Code)
}

func TestRunDigest(t *testing.T) {
	runner := &stubRunner{}
	env := setupWithDigests(t, runner)

	w := env.do(t, http.MethodPost, "/api/digests/run", nil)
	assert.Equal(t, http.StatusForbidden, w.Code, "demo user is a student")
	assert.Empty(t, runner.names)

	env.becomeTeacher(t)
	w = env.do(t, http.MethodPost, "/api/digests/run", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"data":null}`, w.Body.String())
	assert.Equal(t, []string{DigestAgentName}, runner.names)
}

func TestRunDigestFailures(t *testing.T) {
	env := setup(t)
	env.becomeTeacher(t)

	w := env.do(t, http.MethodPost, "/api/digests/run", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code, "no scheduler running")

	env = setupWithDigests(t, &stubRunner{err: errors.New("gemini down")})
	env.becomeTeacher(t)
	w = env.do(t, http.MethodPost, "/api/digests/run", nil)
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Contains(t, w.Body.String(), "digest run failed")

	m, err := env.registry.Get(context.Background(), env.session)
	require.NoError(t, err)
	require.NoError(t, m.SignOut(context.Background()))
	w = env.do(t, http.MethodPost, "/api/digests/run", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
