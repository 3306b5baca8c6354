package service

import (
	"fmt"
	"log"
	"time"

	"github.com/Sujal06-B/hackathonproject-CampusSync/internal/entity"
	"github.com/meilisearch/meilisearch-go"
)

const (
	IndexAnnouncements = "announcements"
	IndexAssignments   = "assignments"

	signingKeyName = "CampusSyncTenantTokenSigner"
	tokenTTL       = 24 * time.Hour
)

// Engine is the search server the mirror writes to and the token endpoint signs for.
type Engine interface {
	Upsert(index string, docs []Document) error
	Delete(index string, ids []string) error
	TenantToken(role entity.Role) (string, error)
}

type meiliEngine struct {
	client        meilisearch.ServiceManager
	signingKeyUID string
	signingKey    string
}

// NewMeiliEngine configures the indexes and finds or creates the key that signs tenant tokens.
// Setup failures are logged; indexing still works without a signing key.
func NewMeiliEngine(client meilisearch.ServiceManager) Engine {
	e := &meiliEngine{client: client}
	e.initIndexes()
	e.initSigningKey()
	return e
}

func (e *meiliEngine) initIndexes() {
	settings := map[string]struct {
		filterable []string
		sortable   []string
	}{
		IndexAnnouncements: {
			filterable: []string{"allowed_roles", "course_id", "priority"},
			sortable:   []string{"created_at"},
		},
		IndexAssignments: {
			filterable: []string{"allowed_roles", "course_id", "status"},
			sortable:   []string{"due_date", "created_at"},
		},
	}

	for name, s := range settings {
		filterable := make([]any, len(s.filterable))
		for i, v := range s.filterable {
			filterable[i] = v
		}
		if _, err := e.client.Index(name).UpdateFilterableAttributes(&filterable); err != nil {
			log.Printf("⚠️ Failed to update %s filterable attributes: %v", name, err)
		}

		sortable := s.sortable
		if _, err := e.client.Index(name).UpdateSortableAttributes(&sortable); err != nil {
			log.Printf("⚠️ Failed to update %s sortable attributes: %v", name, err)
		}
	}

	log.Println("✅ Meilisearch indexes initialized")
}

func (e *meiliEngine) initSigningKey() {
	resp, err := e.client.GetKeys(&meilisearch.KeysQuery{
		Limit: 20,
	})
	if err != nil {
		log.Printf("⚠️ Failed to get meilisearch keys: %v", err)
		return
	}

	for _, key := range resp.Results {
		if key.Name == signingKeyName {
			e.signingKeyUID = key.UID
			e.signingKey = key.Key
			log.Println("Found existing Meilisearch signing key")
			return
		}
	}

	key, err := e.client.CreateKey(&meilisearch.Key{
		Description: "Key to sign CampusSync tenant tokens",
		Name:        signingKeyName,
		Actions:     []string{"search"},
		Indexes:     []string{IndexAnnouncements, IndexAssignments},
		ExpiresAt:   time.Now().AddDate(100, 0, 0),
	})
	if err != nil {
		log.Printf("⚠️ Failed to create signing key: %v", err)
		return
	}

	e.signingKeyUID = key.UID
	e.signingKey = key.Key
	log.Println("✅ Created new Meilisearch signing key")
}

func (e *meiliEngine) Upsert(index string, docs []Document) error {
	if len(docs) == 0 {
		return nil
	}
	task, err := e.client.Index(index).AddDocuments(docs, strPtr("id"))
	if err != nil {
		return err
	}
	log.Printf("Indexed %d %s, task id: %d", len(docs), index, task.TaskUID)
	return nil
}

func (e *meiliEngine) Delete(index string, ids []string) error {
	for _, id := range ids {
		if _, err := e.client.Index(index).DeleteDocument(id); err != nil {
			return err
		}
	}
	return nil
}

func (e *meiliEngine) TenantToken(role entity.Role) (string, error) {
	if e.signingKeyUID == "" || e.signingKey == "" {
		return "", fmt.Errorf("signing key not initialized")
	}

	filter := SearchFilter(role)
	searchRules := map[string]any{
		IndexAnnouncements: map[string]any{"filter": filter},
		IndexAssignments:   map[string]any{"filter": filter},
	}

	return e.client.GenerateTenantToken(e.signingKeyUID, searchRules, &meilisearch.TenantTokenOptions{
		APIKey:    e.signingKey,
		ExpiresAt: time.Now().Add(tokenTTL),
	})
}

// SearchFilter limits what a role may find.
func SearchFilter(role entity.Role) string {
	if role == entity.RoleTeacher {
		return "allowed_roles IN ['teacher', 'public']"
	}
	return "allowed_roles IN ['student', 'public']"
}

func strPtr(s string) *string {
	return &s
}
