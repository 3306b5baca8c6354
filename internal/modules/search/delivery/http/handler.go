package handler

import (
	"net/http"

	"github.com/Sujal06-B/hackathonproject-CampusSync/internal/modules/search/service"
	sessionService "github.com/Sujal06-B/hackathonproject-CampusSync/internal/modules/session/service"
	"github.com/Sujal06-B/hackathonproject-CampusSync/pkg/apperror"
	"github.com/Sujal06-B/hackathonproject-CampusSync/pkg/response"
	"github.com/gin-gonic/gin"
)

type SearchHandler struct {
	engine   service.Engine
	host     string
	sessions *sessionService.Registry
}

// NewSearchHandler serves tenant tokens for the browser to query the search server directly.
// engine is nil when search is not configured.
func NewSearchHandler(engine service.Engine, host string, sessions *sessionService.Registry) *SearchHandler {
	return &SearchHandler{engine: engine, host: host, sessions: sessions}
}

func (h *SearchHandler) Token(c *gin.Context) {
	if h.engine == nil {
		response.ResponseError(c, apperror.ErrNotConfigured)
		return
	}

	sessionID, err := response.GetSessionID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	m, err := h.sessions.Get(c.Request.Context(), sessionID.String())
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	state := m.State()
	if state.Profile == nil {
		response.ResponseError(c, apperror.New(http.StatusUnauthorized, "sign in first", apperror.ErrUnauthorized))
		return
	}

	token, err := h.engine.TenantToken(state.Profile.Role)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token":   token,
		"host":    h.host,
		"indexes": []string{service.IndexAnnouncements, service.IndexAssignments},
	})
}
