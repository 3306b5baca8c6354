package service

import (
	"context"
	"log"
	"sync"
	"time"
)

// initTimeout bounds a session restore. Restores outlive the request that triggered them.
const initTimeout = 10 * time.Second

// BackendFactory builds the backend for a new session. The strategy is fixed when the factory is
// chosen at startup.
type BackendFactory func(sessionID string) Backend

type registryEntry struct {
	manager  *Manager
	ready    chan struct{}
	lastSeen time.Time
}

// Registry hands out one initialized Manager per session id.
type Registry struct {
	factory BackendFactory
	idleTTL time.Duration
	now     func() time.Time

	mu       sync.Mutex
	sessions map[string]*registryEntry
}

func NewRegistry(factory BackendFactory, idleTTL time.Duration) *Registry {
	return &Registry{
		factory:  factory,
		idleTTL:  idleTTL,
		now:      time.Now,
		sessions: make(map[string]*registryEntry),
	}
}

// Get returns the session's manager, creating and initializing it on first use.
func (r *Registry) Get(ctx context.Context, sessionID string) (*Manager, error) {
	r.mu.Lock()
	entry, ok := r.sessions[sessionID]
	if ok {
		entry.lastSeen = r.now()
		r.mu.Unlock()

		select {
		case <-entry.ready:
			return entry.manager, nil
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	entry = &registryEntry{
		manager:  NewManager(r.factory(sessionID)),
		ready:    make(chan struct{}),
		lastSeen: r.now(),
	}
	r.sessions[sessionID] = entry
	r.mu.Unlock()

	defer close(entry.ready)
	initCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), initTimeout)
	defer cancel()
	if err := entry.manager.Initialize(initCtx); err != nil {
		return nil, err
	}
	return entry.manager, nil
}

// Remove closes and forgets a session.
func (r *Registry) Remove(sessionID string) {
	r.mu.Lock()
	entry, ok := r.sessions[sessionID]
	delete(r.sessions, sessionID)
	r.mu.Unlock()

	if ok {
		<-entry.ready
		_ = entry.manager.Close()
	}
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Sweep closes sessions idle for longer than the idle TTL. Sessions with live subscribers are kept.
func (r *Registry) Sweep() int {
	cutoff := r.now().Add(-r.idleTTL)

	r.mu.Lock()
	var idle []*registryEntry
	for id, entry := range r.sessions {
		select {
		case <-entry.ready:
		default:
			continue
		}
		if entry.lastSeen.After(cutoff) || entry.manager.Subscribers() > 0 {
			continue
		}
		idle = append(idle, entry)
		delete(r.sessions, id)
	}
	r.mu.Unlock()

	for _, entry := range idle {
		_ = entry.manager.Close()
	}
	return len(idle)
}

// StartSweeper runs Sweep every interval until ctx is done.
func (r *Registry) StartSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	log.Printf("🧹 Session sweeper started (idle ttl %s)", r.idleTTL)
	for {
		select {
		case <-ctx.Done():
			log.Println("🧹 Session sweeper stopped")
			return
		case <-ticker.C:
			if n := r.Sweep(); n > 0 {
				log.Printf("🧹 Closed %d idle sessions", n)
			}
		}
	}
}

func (r *Registry) Close() {
	r.mu.Lock()
	entries := r.sessions
	r.sessions = make(map[string]*registryEntry)
	r.mu.Unlock()

	for _, entry := range entries {
		<-entry.ready
		_ = entry.manager.Close()
	}
}
