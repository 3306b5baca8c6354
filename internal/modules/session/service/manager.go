package service

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/Sujal06-B/hackathonproject-CampusSync/internal/entity"
	authService "github.com/Sujal06-B/hackathonproject-CampusSync/internal/modules/auth/service"
	"github.com/Sujal06-B/hackathonproject-CampusSync/pkg/apperror"
)

var (
	ErrAlreadyInitialized = errors.New("session already initialized")
	ErrNotInitialized     = errors.New("session not initialized")
	ErrClosed             = errors.New("session closed")
)

type Phase string

const (
	PhaseUninitialized Phase = "uninitialized"
	PhaseLoading       Phase = "loading"
	PhaseSignedOut     Phase = "signed-out"
	PhaseSignedIn      Phase = "signed-in"
)

// State is a read-only view of a session. Identity and Profile are either both set or both nil
// once Loading is false.
type State struct {
	Phase    Phase            `json:"phase"`
	Loading  bool             `json:"loading"`
	Identity *entity.Identity `json:"currentUser"`
	Profile  *entity.Profile  `json:"userProfile"`
	Error    string           `json:"error,omitempty"`
}

// Failure is returned by the mutating operations. Message is the short text also stored in the
// session's error slot.
type Failure struct {
	Message string
	Err     error
}

func (f *Failure) Error() string {
	return f.Message
}

func (f *Failure) Unwrap() error {
	return f.Err
}

func (f *Failure) HTTPStatus() int {
	return apperror.MapErrorToStatus(f.Err)
}

const defaultFailureMessage = "Failed to authenticate"

var failureMessages = map[string]string{
	authService.CodeWrongPassword:     "Incorrect password.",
	authService.CodeUserNotFound:      "No account found with this email.",
	authService.CodeEmailAlreadyInUse: "Email already in use.",
	authService.CodeWeakPassword:      "Password should be at least 6 characters.",
	authService.CodeInvalidEmail:      "Please enter a valid email address.",
	authService.CodeFederatedFailed:   "Failed to sign in with Google",
}

// FailureMessage translates an auth error into the text shown to the user.
func FailureMessage(err error) string {
	if msg, ok := failureMessages[authService.ErrorCode(err)]; ok {
		return msg
	}
	return defaultFailureMessage
}

// Manager owns one browsing session: who is signed in and what their profile is.
type Manager struct {
	backend Backend
	now     func() time.Time

	mu          sync.RWMutex
	state       State
	initialized bool
	closed      bool

	subMu       sync.Mutex
	subscribers map[int]func(State)
	nextSub     int
	notifyMu    sync.Mutex

	closeOnce sync.Once
}

func NewManager(backend Backend) *Manager {
	return &Manager{
		backend:     backend,
		now:         time.Now,
		state:       State{Phase: PhaseUninitialized, Loading: true},
		subscribers: make(map[int]func(State)),
	}
}

// Initialize runs the backend's restore exactly once. When it returns the session has settled into
// signed-in or signed-out.
func (m *Manager) Initialize(ctx context.Context) error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return ErrClosed
	}
	if m.initialized {
		m.mu.Unlock()
		return ErrAlreadyInitialized
	}
	m.initialized = true
	m.state.Phase = PhaseLoading
	m.mu.Unlock()
	m.notify()

	if err := m.backend.Restore(ctx, m.apply); err != nil {
		log.Printf("❌ Session restore failed: %v", err)
		m.apply(Snapshot{})
	}

	// A backend that never reported still has to settle.
	m.mu.Lock()
	settle := m.state.Loading
	if settle {
		m.state.Loading = false
		m.state.Phase = PhaseSignedOut
	}
	m.mu.Unlock()
	if settle {
		m.notify()
	}
	return nil
}

func (m *Manager) SignUp(ctx context.Context, email, password string, fields entity.ProfileFields) error {
	if err := m.begin(); err != nil {
		return err
	}
	snap, err := m.backend.SignUp(ctx, email, password, fields)
	if err != nil {
		return m.fail(err)
	}
	m.apply(snap)
	log.Printf("✅ Sign up successful (%s)", snap.Identity.UID)
	return nil
}

func (m *Manager) SignIn(ctx context.Context, email, password string) error {
	if err := m.begin(); err != nil {
		return err
	}
	snap, err := m.backend.SignIn(ctx, email, password)
	if err != nil {
		return m.fail(err)
	}
	m.apply(snap)
	log.Printf("✅ Login successful (%s)", snap.Identity.UID)
	return nil
}

// SignInWithFederatedProvider completes a Google sign-in with the authorization code returned to the
// client. Fixture sessions ignore the code.
func (m *Manager) SignInWithFederatedProvider(ctx context.Context, code string) error {
	if err := m.begin(); err != nil {
		return err
	}
	snap, err := m.backend.SignInFederated(ctx, code)
	if err != nil {
		return m.fail(err)
	}
	m.apply(snap)
	log.Printf("✅ Google sign in successful (%s)", snap.Identity.UID)
	return nil
}

func (m *Manager) SignOut(ctx context.Context) error {
	if err := m.begin(); err != nil {
		return err
	}
	if err := m.backend.SignOut(ctx); err != nil {
		return m.fail(err)
	}
	m.apply(Snapshot{})
	return nil
}

// UpdateProfile replaces the profile of the signed-in user, for writes made outside the session
// such as onboarding. It reports false when p belongs to someone else.
func (m *Manager) UpdateProfile(p *entity.Profile) bool {
	if p == nil {
		return false
	}

	m.mu.Lock()
	if m.closed || m.state.Identity == nil || m.state.Identity.UID != p.UID {
		m.mu.Unlock()
		return false
	}
	m.state.Profile = p
	m.mu.Unlock()

	m.notify()
	return true
}

// ClearError empties the error slot and nothing else.
func (m *Manager) ClearError() {
	m.mu.Lock()
	changed := m.state.Error != ""
	m.state.Error = ""
	m.mu.Unlock()

	if changed {
		m.notify()
	}
}

func (m *Manager) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// Subscribe calls fn with the current state and then after every change, in order. The returned
// function unsubscribes.
func (m *Manager) Subscribe(fn func(State)) func() {
	m.notifyMu.Lock()
	m.subMu.Lock()
	id := m.nextSub
	m.nextSub++
	m.subscribers[id] = fn
	m.subMu.Unlock()
	fn(m.State())
	m.notifyMu.Unlock()

	return func() {
		m.subMu.Lock()
		delete(m.subscribers, id)
		m.subMu.Unlock()
	}
}

func (m *Manager) Subscribers() int {
	m.subMu.Lock()
	defer m.subMu.Unlock()
	return len(m.subscribers)
}

// Close releases the backend. Later operations fail with ErrClosed.
func (m *Manager) Close() error {
	var err error
	m.closeOnce.Do(func() {
		m.mu.Lock()
		m.closed = true
		m.mu.Unlock()
		err = m.backend.Close()
	})
	return err
}

func (m *Manager) begin() error {
	m.mu.Lock()
	switch {
	case m.closed:
		m.mu.Unlock()
		return ErrClosed
	case !m.initialized:
		m.mu.Unlock()
		return ErrNotInitialized
	}
	changed := m.state.Error != ""
	m.state.Error = ""
	m.mu.Unlock()

	if changed {
		m.notify()
	}
	return nil
}

func (m *Manager) fail(err error) error {
	msg := FailureMessage(err)
	log.Printf("❌ Session operation failed: %v", err)

	m.mu.Lock()
	m.state.Error = msg
	m.mu.Unlock()
	m.notify()

	return &Failure{Message: msg, Err: err}
}

// apply swaps identity and profile together.
func (m *Manager) apply(s Snapshot) {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}

	if s.Identity == nil {
		s.Profile = nil
	} else if s.Profile == nil {
		s.Profile = entity.FallbackProfile(s.Identity, m.now())
	}

	m.state.Identity = s.Identity
	m.state.Profile = s.Profile
	m.state.Loading = false
	if s.Identity != nil {
		m.state.Phase = PhaseSignedIn
	} else {
		m.state.Phase = PhaseSignedOut
	}
	m.mu.Unlock()

	m.notify()
}

func (m *Manager) notify() {
	m.notifyMu.Lock()
	defer m.notifyMu.Unlock()

	state := m.State()

	m.subMu.Lock()
	fns := make([]func(State), 0, len(m.subscribers))
	for _, fn := range m.subscribers {
		fns = append(fns, fn)
	}
	m.subMu.Unlock()

	for _, fn := range fns {
		fn(state)
	}
}
