package service

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/Sujal06-B/hackathonproject-CampusSync/internal/entity"
	"github.com/Sujal06-B/hackathonproject-CampusSync/pkg/docstore"
)

const profileFetchTimeout = 5 * time.Second

// RemoteBackend keeps the session in step with the auth service and loads profiles from the users
// collection.
type RemoteBackend struct {
	auth  AuthClient
	store docstore.Store
	now   func() time.Time

	mu          sync.Mutex
	unsubscribe func()
}

func NewRemoteBackend(auth AuthClient, store docstore.Store) *RemoteBackend {
	return &RemoteBackend{auth: auth, store: store, now: time.Now}
}

func (b *RemoteBackend) Restore(ctx context.Context, apply func(Snapshot)) error {
	unsubscribe := b.auth.OnChange(func(id *entity.Identity) {
		if id == nil {
			apply(Snapshot{})
			return
		}

		fetchCtx, cancel := context.WithTimeout(context.Background(), profileFetchTimeout)
		defer cancel()
		apply(Snapshot{Identity: id, Profile: b.loadProfile(fetchCtx, id)})
	})

	b.mu.Lock()
	b.unsubscribe = unsubscribe
	b.mu.Unlock()
	return nil
}

func (b *RemoteBackend) SignUp(ctx context.Context, email, password string, fields entity.ProfileFields) (Snapshot, error) {
	id, err := b.auth.SignUp(ctx, email, password, fields.DisplayName)
	if err != nil {
		return Snapshot{}, err
	}

	now := b.now()
	profile := newProfile(id, fields, now)
	doc, err := docstore.Fields(profile)
	if err != nil {
		return Snapshot{}, err
	}
	doc["createdAt"] = docstore.ServerTimestamp
	doc["lastLogin"] = docstore.ServerTimestamp

	if err := b.store.SetDocument(ctx, entity.CollectionUsers, id.UID, doc, docstore.SetOptions{Merge: true}); err != nil {
		log.Printf("❌ Failed to create profile for %s: %v", id.UID, err)
	}

	return Snapshot{Identity: id, Profile: profile}, nil
}

func (b *RemoteBackend) SignIn(ctx context.Context, email, password string) (Snapshot, error) {
	id, err := b.auth.SignIn(ctx, email, password)
	if err != nil {
		return Snapshot{}, err
	}

	b.touchLastLogin(ctx, id)
	return Snapshot{Identity: id, Profile: b.loadProfile(ctx, id)}, nil
}

func (b *RemoteBackend) SignInFederated(ctx context.Context, code string) (Snapshot, error) {
	id, err := b.auth.SignInFederated(ctx, code)
	if err != nil {
		return Snapshot{}, err
	}

	_, err = b.store.GetDocument(ctx, entity.CollectionUsers, id.UID)
	switch {
	case errors.Is(err, docstore.ErrNotFound):
		doc, ferr := docstore.Fields(newProfile(id, entity.ProfileFields{DisplayName: id.DisplayName}, b.now()))
		if ferr != nil {
			return Snapshot{}, ferr
		}
		doc["createdAt"] = docstore.ServerTimestamp
		doc["lastLogin"] = docstore.ServerTimestamp
		if err := b.store.SetDocument(ctx, entity.CollectionUsers, id.UID, doc, docstore.SetOptions{Merge: true}); err != nil {
			log.Printf("❌ Failed to create profile for %s: %v", id.UID, err)
		}
	case err != nil:
		log.Printf("⚠️ Failed to check profile for %s: %v", id.UID, err)
	default:
		b.touchLastLogin(ctx, id)
	}

	return Snapshot{Identity: id, Profile: b.loadProfile(ctx, id)}, nil
}

func (b *RemoteBackend) SignOut(ctx context.Context) error {
	return b.auth.SignOut(ctx)
}

func (b *RemoteBackend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.unsubscribe != nil {
		b.unsubscribe()
		b.unsubscribe = nil
	}
	return nil
}

func (b *RemoteBackend) touchLastLogin(ctx context.Context, id *entity.Identity) {
	err := b.store.UpdateDocument(ctx, entity.CollectionUsers, id.UID, map[string]any{
		"lastLogin": docstore.ServerTimestamp,
	})
	if err != nil && !errors.Is(err, docstore.ErrNotFound) {
		log.Printf("⚠️ Failed to record last login for %s: %v", id.UID, err)
	}
}

// loadProfile never fails: any problem with the stored profile yields a synthesized one.
func (b *RemoteBackend) loadProfile(ctx context.Context, id *entity.Identity) *entity.Profile {
	rec, err := b.store.GetDocument(ctx, entity.CollectionUsers, id.UID)
	if err != nil {
		if !errors.Is(err, docstore.ErrNotFound) {
			log.Printf("❌ Error loading user profile %s: %v", id.UID, err)
		}
		return entity.FallbackProfile(id, b.now())
	}

	var profile entity.Profile
	if err := rec.Decode(&profile); err != nil {
		log.Printf("❌ Error decoding user profile %s: %v", id.UID, err)
		return entity.FallbackProfile(id, b.now())
	}

	profile.UID = id.UID
	if profile.Email == "" {
		profile.Email = id.Email
	}
	if profile.DisplayName == "" {
		profile.DisplayName = id.DisplayName
	}
	if !profile.Role.Valid() {
		profile.Role = entity.RoleStudent
	}
	if profile.Courses == nil {
		profile.Courses = []string{}
	}
	return &profile
}

func newProfile(id *entity.Identity, fields entity.ProfileFields, now time.Time) *entity.Profile {
	role := fields.Role
	if !role.Valid() {
		role = entity.RoleStudent
	}
	name := fields.DisplayName
	if name == "" {
		name = id.DisplayName
	}
	photo := id.PhotoURL
	if photo == "" && name != "" {
		photo = entity.AvatarURL(name)
	}
	courses := fields.Courses
	if courses == nil {
		courses = []string{}
	}

	return &entity.Profile{
		UID:         id.UID,
		Email:       id.Email,
		DisplayName: name,
		PhotoURL:    photo,
		Role:        role,
		University:  fields.University,
		Department:  fields.Department,
		Courses:     courses,
		CreatedAt:   now,
		LastLogin:   now,
	}
}
