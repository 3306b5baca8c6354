package handler

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/Sujal06-B/hackathonproject-CampusSync/internal/middleware"
	"github.com/Sujal06-B/hackathonproject-CampusSync/internal/modules/session/dto"
	"github.com/Sujal06-B/hackathonproject-CampusSync/internal/modules/session/service"
	"github.com/Sujal06-B/hackathonproject-CampusSync/pkg/response"
	"github.com/Sujal06-B/hackathonproject-CampusSync/pkg/validator"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const operationTimeout = 30 * time.Second

// FederatedURLProvider builds the Google consent URL. Nil in fixture mode.
type FederatedURLProvider interface {
	FederatedURL(state string) (string, error)
}

type SessionHandler struct {
	registry  *service.Registry
	auth      *middleware.SessionAuth
	federated FederatedURLProvider
	upgrader  websocket.Upgrader
}

func NewSessionHandler(registry *service.Registry, auth *middleware.SessionAuth, federated FederatedURLProvider) *SessionHandler {
	return &SessionHandler{
		registry:  registry,
		auth:      auth,
		federated: federated,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

// detached keeps a session operation running after the client goes away.
func detached(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(c.Request.Context()), operationTimeout)
}

func (h *SessionHandler) manager(c *gin.Context) (*service.Manager, bool) {
	sessionID, err := response.GetSessionID(c)
	if err != nil {
		response.ResponseError(c, err)
		return nil, false
	}

	m, err := h.registry.Get(c.Request.Context(), sessionID.String())
	if err != nil {
		response.ResponseError(c, err)
		return nil, false
	}
	return m, true
}

// Create starts a new browsing session.
func (h *SessionHandler) Create(c *gin.Context) {
	sessionID, token, expiresAt, err := h.auth.Issue()
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	m, err := h.registry.Get(c.Request.Context(), sessionID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.NewSessionResponse(token, expiresAt, m.State()))
}

func (h *SessionHandler) GetState(c *gin.Context) {
	m, ok := h.manager(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, m.State())
}

func (h *SessionHandler) SignUp(c *gin.Context) {
	var input dto.SignUpInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	m, ok := h.manager(c)
	if !ok {
		return
	}

	ctx, cancel := detached(c)
	defer cancel()

	if err := m.SignUp(ctx, input.Email, input.Password, input.Fields()); err != nil {
		response.ResponseError(c, err)
		return
	}
	c.JSON(http.StatusCreated, m.State())
}

func (h *SessionHandler) SignIn(c *gin.Context) {
	var input dto.SignInInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	m, ok := h.manager(c)
	if !ok {
		return
	}

	ctx, cancel := detached(c)
	defer cancel()

	if err := m.SignIn(ctx, input.Email, input.Password); err != nil {
		response.ResponseError(c, err)
		return
	}
	c.JSON(http.StatusOK, m.State())
}

func (h *SessionHandler) FederatedURL(c *gin.Context) {
	if h.federated == nil {
		c.JSON(http.StatusOK, gin.H{"url": "", "mock": true})
		return
	}

	sessionID, err := response.GetSessionID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	url, err := h.federated.FederatedURL(sessionID.String())
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": url})
}

func (h *SessionHandler) SignInFederated(c *gin.Context) {
	var input dto.FederatedInput
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
			return
		}
	}

	m, ok := h.manager(c)
	if !ok {
		return
	}

	ctx, cancel := detached(c)
	defer cancel()

	if err := m.SignInWithFederatedProvider(ctx, input.Code); err != nil {
		response.ResponseError(c, err)
		return
	}
	c.JSON(http.StatusOK, m.State())
}

func (h *SessionHandler) SignOut(c *gin.Context) {
	m, ok := h.manager(c)
	if !ok {
		return
	}

	ctx, cancel := detached(c)
	defer cancel()

	if err := m.SignOut(ctx); err != nil {
		response.ResponseError(c, err)
		return
	}
	c.JSON(http.StatusOK, m.State())
}

func (h *SessionHandler) ClearError(c *gin.Context) {
	m, ok := h.manager(c)
	if !ok {
		return
	}
	m.ClearError()
	c.JSON(http.StatusOK, m.State())
}

// HandleWebSocket streams the session state: once on connect and after every change.
func (h *SessionHandler) HandleWebSocket(c *gin.Context) {
	m, ok := h.manager(c)
	if !ok {
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("Failed to upgrade websocket: %v", err)
		return
	}
	defer conn.Close()

	// Only the newest state matters to the client.
	updates := make(chan service.State, 1)
	unsubscribe := m.Subscribe(func(s service.State) {
		select {
		case <-updates:
		default:
		}
		updates <- s
	})
	defer unsubscribe()

	clientClosed := make(chan struct{})
	go func() {
		defer close(clientClosed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case s := <-updates:
			if err := conn.WriteJSON(s); err != nil {
				log.Printf("Failed to write session state to websocket: %v", err)
				return
			}
		case <-clientClosed:
			return
		case <-c.Request.Context().Done():
			return
		}
	}
}
