package service

import (
	"context"
	"log"
	"time"

	"github.com/Sujal06-B/hackathonproject-CampusSync/internal/entity"
	"github.com/Sujal06-B/hackathonproject-CampusSync/internal/modules/session/repository"
)

const (
	DemoUID         = "mock-user-123"
	SignUpMockUID   = "new-mock-user"
	SignInMockUID   = "mock-login-user"
	FederatedMockID = "google-mock-user"

	defaultUniversity = "IIT Bombay"
	defaultDepartment = "Computer Science"
)

// DemoSnapshot is the session a fresh browsing session sees when no backend is configured.
func DemoSnapshot(now time.Time) Snapshot {
	return mockSnapshot(DemoUID, "demo@campussync.edu", "Priya Sharma", entity.RoleStudent,
		defaultUniversity, defaultDepartment, []string{"CS301", "CS101", "MATH201"}, now)
}

func mockSnapshot(uid, email, name string, role entity.Role, university, department string, courses []string, now time.Time) Snapshot {
	photo := entity.AvatarURL(name)
	return Snapshot{
		Identity: &entity.Identity{UID: uid, Email: email, DisplayName: name, PhotoURL: photo},
		Profile: &entity.Profile{
			UID:         uid,
			Email:       email,
			DisplayName: name,
			PhotoURL:    photo,
			Role:        role,
			University:  university,
			Department:  department,
			Courses:     courses,
			CreatedAt:   now,
			LastLogin:   now,
		},
	}
}

// FixtureBackend serves sessions without any backend. The only persisted state is the
// logged-out flag.
type FixtureBackend struct {
	flags     repository.FlagStore
	sessionID string
	now       func() time.Time
}

func NewFixtureBackend(flags repository.FlagStore, sessionID string) *FixtureBackend {
	return &FixtureBackend{flags: flags, sessionID: sessionID, now: time.Now}
}

func (b *FixtureBackend) Restore(ctx context.Context, apply func(Snapshot)) error {
	loggedOut, err := b.flags.IsLoggedOut(ctx, b.sessionID)
	if err != nil {
		// The flag may be set; restoring the demo user would undo an explicit sign-out.
		log.Printf("⚠️ Failed to read mock logout flag for session %s, restoring signed out: %v", b.sessionID, err)
		apply(Snapshot{})
		return nil
	}

	if loggedOut {
		log.Printf("ℹ️ Mock user logged out (session %s)", b.sessionID)
		apply(Snapshot{})
		return nil
	}

	apply(DemoSnapshot(b.now()))
	return nil
}

func (b *FixtureBackend) SignUp(ctx context.Context, email, password string, fields entity.ProfileFields) (Snapshot, error) {
	if err := b.flags.ClearLoggedOut(ctx, b.sessionID); err != nil {
		return Snapshot{}, err
	}

	role := fields.Role
	if !role.Valid() {
		role = entity.RoleStudent
	}
	university := fields.University
	if university == "" {
		university = defaultUniversity
	}
	department := fields.Department
	if department == "" {
		department = defaultDepartment
	}

	return mockSnapshot(SignUpMockUID, email, fields.DisplayName, role, university, department, []string{}, b.now()), nil
}

func (b *FixtureBackend) SignIn(ctx context.Context, email, password string) (Snapshot, error) {
	if err := b.flags.ClearLoggedOut(ctx, b.sessionID); err != nil {
		return Snapshot{}, err
	}
	return mockSnapshot(SignInMockUID, email, "Demo User", entity.RoleStudent,
		defaultUniversity, defaultDepartment, []string{"CS301", "CS101"}, b.now()), nil
}

func (b *FixtureBackend) SignInFederated(ctx context.Context, code string) (Snapshot, error) {
	if err := b.flags.ClearLoggedOut(ctx, b.sessionID); err != nil {
		return Snapshot{}, err
	}
	return mockSnapshot(FederatedMockID, "google@demo.com", "Google User", entity.RoleStudent,
		defaultUniversity, defaultDepartment, []string{"CS301"}, b.now()), nil
}

func (b *FixtureBackend) SignOut(ctx context.Context) error {
	return b.flags.SetLoggedOut(ctx, b.sessionID)
}

func (b *FixtureBackend) Close() error {
	return nil
}
