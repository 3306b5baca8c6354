package bootstrap

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/Sujal06-B/hackathonproject-CampusSync/internal/entity"
	liveQuery "github.com/Sujal06-B/hackathonproject-CampusSync/internal/modules/livequery/service"
	"github.com/Sujal06-B/hackathonproject-CampusSync/pkg/docstore"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	DemoTeacherEmail    = "teacher@campussync.dev"
	DemoTeacherPassword = "teacher123"
)

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&entity.Credential{})
}

// SeedDemoTeacher creates a teacher account so announcements and assignments can be posted on a
// fresh development backend.
func SeedDemoTeacher(ctx context.Context, db *gorm.DB, store docstore.Store) error {
	var count int64
	if err := db.WithContext(ctx).Model(&entity.Credential{}).
		Where("email = ?", DemoTeacherEmail).
		Count(&count).Error; err != nil {
		return err
	}

	if count > 0 {
		log.Println("Demo teacher already exists, skipping seed")
		return nil
	}

	hashedPasswordBytes, err := bcrypt.GenerateFromPassword([]byte(DemoTeacherPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	photo := entity.AvatarURL("Dr. Smith")
	cred := entity.Credential{
		Email:        DemoTeacherEmail,
		PasswordHash: string(hashedPasswordBytes),
		DisplayName:  "Dr. Smith",
		PhotoURL:     &photo,
	}
	if err := db.WithContext(ctx).Create(&cred).Error; err != nil {
		return err
	}

	now := time.Now().UTC()
	profile := entity.Profile{
		UID:         cred.ID.String(),
		Email:       cred.Email,
		DisplayName: cred.DisplayName,
		PhotoURL:    photo,
		Role:        entity.RoleTeacher,
		University:  "CampusSync University",
		Department:  "Computer Science",
		Courses:     []string{"CS301", "CS101"},
		CreatedAt:   now,
		LastLogin:   now,
	}
	fields, err := docstore.Fields(profile)
	if err != nil {
		return err
	}
	if err := store.SetDocument(ctx, entity.CollectionUsers, profile.UID, fields, docstore.SetOptions{}); err != nil {
		return fmt.Errorf("failed to write demo teacher profile: %w", err)
	}

	log.Println("✅ Demo teacher seeded successfully")
	log.Printf("   Email: %s", DemoTeacherEmail)
	log.Printf("   Password: %s", DemoTeacherPassword)

	return nil
}

// SeedDemoContent fills empty announcement and assignment collections with the demo data set.
func SeedDemoContent(ctx context.Context, store docstore.Store) error {
	now := time.Now().UTC()

	var announcements []any
	for _, a := range liveQuery.DemoAnnouncements("", now) {
		announcements = append(announcements, a)
	}
	if err := seedCollection(ctx, store, entity.CollectionAnnouncements, announcements); err != nil {
		return err
	}

	var assignments []any
	for _, a := range liveQuery.DemoAssignments(now) {
		assignments = append(assignments, a)
	}
	return seedCollection(ctx, store, entity.CollectionAssignments, assignments)
}

func seedCollection(ctx context.Context, store docstore.Store, collection string, docs []any) error {
	existing, err := store.ListDocuments(ctx, collection, docstore.OrderBy{})
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		log.Printf("ℹ️ %s already has documents, skipping seed", collection)
		return nil
	}

	for i, doc := range docs {
		fields, err := docstore.Fields(doc)
		if err != nil {
			return err
		}
		id := fmt.Sprintf("demo-%d", i+1)
		if err := store.SetDocument(ctx, collection, id, fields, docstore.SetOptions{}); err != nil {
			return fmt.Errorf("failed to seed %s/%s: %w", collection, id, err)
		}
	}

	log.Printf("✅ Seeded %d demo %s", len(docs), collection)
	return nil
}
