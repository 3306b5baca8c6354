package handler

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/Sujal06-B/hackathonproject-CampusSync/internal/modules/livequery/service"
	sessionService "github.com/Sujal06-B/hackathonproject-CampusSync/internal/modules/session/service"
	"github.com/Sujal06-B/hackathonproject-CampusSync/pkg/response"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const firstSnapshotTimeout = 10 * time.Second

type LiveQueryHandler struct {
	feeds    *service.Feeds
	sessions *sessionService.Registry
	upgrader websocket.Upgrader
}

func NewLiveQueryHandler(feeds *service.Feeds, sessions *sessionService.Registry) *LiveQueryHandler {
	return &LiveQueryHandler{
		feeds:    feeds,
		sessions: sessions,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

// viewer is the signed-in uid of the calling session, or "".
func (h *LiveQueryHandler) viewer(c *gin.Context) string {
	sessionID, err := response.GetSessionID(c)
	if err != nil {
		return ""
	}
	m, err := h.sessions.Get(c.Request.Context(), sessionID.String())
	if err != nil {
		return ""
	}
	if id := m.State().Identity; id != nil {
		return id.UID
	}
	return ""
}

func (h *LiveQueryHandler) ListAnnouncements(c *gin.Context) {
	serveFirst(c, h.feeds.Announcements(h.viewer(c)))
}

func (h *LiveQueryHandler) ListAssignments(c *gin.Context) {
	serveFirst(c, h.feeds.Assignments())
}

func (h *LiveQueryHandler) StreamAnnouncements(c *gin.Context) {
	stream(c, &h.upgrader, h.feeds.Announcements(h.viewer(c)))
}

func (h *LiveQueryHandler) StreamAssignments(c *gin.Context) {
	stream(c, &h.upgrader, h.feeds.Assignments())
}

// serveFirst mounts a hook for the duration of one request and returns its first snapshot.
func serveFirst[T any](c *gin.Context, src service.Source[T]) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), firstSnapshotTimeout)
	defer cancel()

	hook := service.Mount(ctx, src)
	defer hook.Unmount()

	view, err := hook.Wait(ctx)
	if err != nil {
		c.JSON(http.StatusGatewayTimeout, view)
		return
	}
	c.JSON(http.StatusOK, view)
}

// stream mounts a hook for the lifetime of a websocket and pushes every view change.
func stream[T any](c *gin.Context, upgrader *websocket.Upgrader, src service.Source[T]) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("Failed to upgrade websocket: %v", err)
		return
	}
	defer conn.Close()

	hook := service.Mount(c.Request.Context(), src)
	defer hook.Unmount()

	// Last write wins: a view not yet sent is replaced by a newer one.
	updates := make(chan service.View[T], 1)
	unsubscribe := hook.Subscribe(func(v service.View[T]) {
		select {
		case <-updates:
		default:
		}
		updates <- v
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
		case v := <-updates:
			if err := conn.WriteJSON(v); err != nil {
				log.Printf("Failed to write live query to websocket: %v", err)
				return
			}
		case <-clientClosed:
			return
		case <-c.Request.Context().Done():
			return
		}
	}
}
