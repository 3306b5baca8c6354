package service

import (
	"context"

	"github.com/Sujal06-B/hackathonproject-CampusSync/internal/entity"
)

// Snapshot is an identity together with its profile. A nil Identity means signed out.
type Snapshot struct {
	Identity *entity.Identity
	Profile  *entity.Profile
}

// Backend is the strategy a Manager delegates to. RemoteBackend talks to the auth service and
// document store; FixtureBackend synthesizes deterministic demo sessions.
type Backend interface {
	// Restore reports the initial session through apply before returning. Backends that observe
	// external changes keep calling apply until Close.
	Restore(ctx context.Context, apply func(Snapshot)) error
	SignUp(ctx context.Context, email, password string, fields entity.ProfileFields) (Snapshot, error)
	SignIn(ctx context.Context, email, password string) (Snapshot, error)
	SignInFederated(ctx context.Context, code string) (Snapshot, error)
	SignOut(ctx context.Context) error
	Close() error
}

// AuthClient is the per-session auth contract RemoteBackend depends on.
type AuthClient interface {
	SignUp(ctx context.Context, email, password, displayName string) (*entity.Identity, error)
	SignIn(ctx context.Context, email, password string) (*entity.Identity, error)
	SignInFederated(ctx context.Context, code string) (*entity.Identity, error)
	SignOut(ctx context.Context) error
	OnChange(fn func(*entity.Identity)) func()
}
