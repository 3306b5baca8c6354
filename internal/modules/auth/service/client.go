package service

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/Sujal06-B/hackathonproject-CampusSync/internal/entity"
	"github.com/Sujal06-B/hackathonproject-CampusSync/internal/modules/auth/repository"
)

const restoreTimeout = 5 * time.Second

// Client is one browsing session's view of the auth service: it tracks the signed-in identity and
// notifies listeners whenever it changes. Notifications are delivered one at a time.
type Client struct {
	svc       AuthService
	store     repository.SignedInStore
	sessionID string

	mu        sync.Mutex
	current   *entity.Identity
	listeners map[int]func(*entity.Identity)
	nextID    int

	restoreOnce sync.Once
	dispatchMu  sync.Mutex
}

func NewClient(svc AuthService, store repository.SignedInStore, sessionID string) *Client {
	return &Client{
		svc:       svc,
		store:     store,
		sessionID: sessionID,
		listeners: make(map[int]func(*entity.Identity)),
	}
}

// Current returns the signed-in identity, or nil.
func (c *Client) Current() *entity.Identity {
	c.restoreOnce.Do(c.restore)

	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

func (c *Client) SignUp(ctx context.Context, email, password, displayName string) (*entity.Identity, error) {
	id, err := c.svc.SignUp(ctx, email, password, displayName)
	if err != nil {
		return nil, err
	}
	c.signedIn(ctx, id)
	return id, nil
}

func (c *Client) SignIn(ctx context.Context, email, password string) (*entity.Identity, error) {
	id, err := c.svc.SignIn(ctx, email, password)
	if err != nil {
		return nil, err
	}
	c.signedIn(ctx, id)
	return id, nil
}

func (c *Client) SignInFederated(ctx context.Context, code string) (*entity.Identity, error) {
	id, err := c.svc.SignInFederated(ctx, code)
	if err != nil {
		return nil, err
	}
	c.signedIn(ctx, id)
	return id, nil
}

func (c *Client) SignOut(ctx context.Context) error {
	if err := c.store.Clear(ctx, c.sessionID); err != nil {
		return err
	}
	c.restoreOnce.Do(func() {})
	c.set(nil)
	return nil
}

// OnChange registers fn and immediately calls it with the current identity. The returned function
// unregisters it.
func (c *Client) OnChange(fn func(*entity.Identity)) func() {
	c.restoreOnce.Do(c.restore)

	c.mu.Lock()
	id := c.nextID
	c.nextID++
	c.listeners[id] = fn
	current := c.current
	c.mu.Unlock()

	c.dispatchMu.Lock()
	fn(current)
	c.dispatchMu.Unlock()

	return func() {
		c.mu.Lock()
		delete(c.listeners, id)
		c.mu.Unlock()
	}
}

func (c *Client) signedIn(ctx context.Context, id *entity.Identity) {
	c.restoreOnce.Do(func() {})
	if err := c.store.Save(ctx, c.sessionID, id.UID); err != nil {
		log.Printf("⚠️ Failed to persist sign-in for session %s: %v", c.sessionID, err)
	}
	c.set(id)
}

func (c *Client) set(id *entity.Identity) {
	c.dispatchMu.Lock()
	defer c.dispatchMu.Unlock()

	c.mu.Lock()
	c.current = id
	fns := make([]func(*entity.Identity), 0, len(c.listeners))
	for _, fn := range c.listeners {
		fns = append(fns, fn)
	}
	c.mu.Unlock()

	for _, fn := range fns {
		fn(id)
	}
}

// restore picks up a sign-in persisted by an earlier process.
func (c *Client) restore() {
	ctx, cancel := context.WithTimeout(context.Background(), restoreTimeout)
	defer cancel()

	uid, err := c.store.Load(ctx, c.sessionID)
	if err != nil {
		log.Printf("⚠️ Failed to restore sign-in for session %s: %v", c.sessionID, err)
		return
	}
	if uid == "" {
		return
	}

	id, err := c.svc.Lookup(ctx, uid)
	if err != nil {
		log.Printf("⚠️ Persisted sign-in for session %s is no longer valid: %v", c.sessionID, err)
		_ = c.store.Clear(ctx, c.sessionID)
		return
	}

	c.mu.Lock()
	c.current = id
	c.mu.Unlock()
}
