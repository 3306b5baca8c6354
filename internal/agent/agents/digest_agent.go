package agents

import (
	"context"
	"errors"
	"fmt"
	"html"
	"log"
	"strings"
	"time"

	"github.com/Sujal06-B/hackathonproject-CampusSync/internal/agent/providers"
	"github.com/Sujal06-B/hackathonproject-CampusSync/internal/entity"
	"github.com/Sujal06-B/hackathonproject-CampusSync/pkg/docstore"
	"github.com/microcosm-cc/bluemonday"
	"github.com/redis/go-redis/v9"
)

// DigestAgent summarizes the announcements posted since the last digest into one digests document.
type DigestAgent struct {
	store       docstore.Store
	redis       *redis.Client
	llmProvider providers.LLMProvider
	sanitizer   *bluemonday.Policy
	now         func() time.Time

	config DigestConfig
}

type DigestConfig struct {
	// Schedule is a cron expression, e.g. "0 7 * * *" for every day at 7 AM.
	Schedule string

	// Window is how far back announcements are considered.
	Window time.Duration

	// MaxAnnouncements caps the prompt size.
	MaxAnnouncements int

	// MaxContentLength truncates each announcement body in the prompt.
	MaxContentLength int

	// RedisKeyPrefix namespaces the processed-set and run lock.
	RedisKeyPrefix string
}

func DefaultDigestConfig() DigestConfig {
	return DigestConfig{
		Schedule:         "0 7 * * *",
		Window:           24 * time.Hour,
		MaxAnnouncements: 20,
		MaxContentLength: 600,
		RedisKeyPrefix:   "campussync:agent:digest",
	}
}

// NewDigestAgent builds the agent. rdb may be nil; then nothing is remembered between runs beyond
// the time window.
func NewDigestAgent(store docstore.Store, rdb *redis.Client, llmProvider providers.LLMProvider, config DigestConfig) *DigestAgent {
	return &DigestAgent{
		store:       store,
		redis:       rdb,
		llmProvider: llmProvider,
		sanitizer:   bluemonday.StrictPolicy(),
		now:         time.Now,
		config:      config,
	}
}

// GetName implements agent.Agent
func (a *DigestAgent) GetName() string {
	return "DigestAgent"
}

// GetSchedule implements agent.Agent
func (a *DigestAgent) GetSchedule() string {
	return a.config.Schedule
}

type digestResult struct {
	Summary    string   `json:"summary"`
	Highlights []string `json:"highlights"`
}

// Execute implements agent.Agent
func (a *DigestAgent) Execute(ctx context.Context) error {
	unlock, ok, err := a.lock(ctx)
	if err != nil {
		return err
	}
	if !ok {
		log.Printf("ℹ️ [%s] Another instance is already running, skipping", a.GetName())
		return nil
	}
	defer unlock()

	pending, err := a.pendingAnnouncements(ctx)
	if err != nil {
		return err
	}
	if len(pending) == 0 {
		log.Printf("ℹ️ [%s] No new announcements, nothing to summarize", a.GetName())
		return nil
	}

	var result digestResult
	if err := a.llmProvider.GenerateStructured(ctx, a.buildPrompt(pending), &result); err != nil {
		return fmt.Errorf("failed to summarize announcements: %w", err)
	}
	if strings.TrimSpace(result.Summary) == "" {
		return errors.New("empty summary from LLM")
	}
	if result.Highlights == nil {
		result.Highlights = []string{}
	}

	ids := make([]string, len(pending))
	for i, p := range pending {
		ids[i] = p.ID
	}

	digestID, err := a.store.AddDocument(ctx, entity.CollectionDigests, map[string]any{
		"summary":       result.Summary,
		"highlights":    result.Highlights,
		"announcements": ids,
		"createdAt":     docstore.ServerTimestamp,
	})
	if err != nil {
		return fmt.Errorf("failed to save digest: %w", err)
	}

	if a.redis != nil {
		members := make([]any, len(ids))
		for i, id := range ids {
			members[i] = id
		}
		if err := a.redis.SAdd(ctx, a.processedKey(), members...).Err(); err != nil {
			log.Printf("⚠️ [%s] Failed to mark announcements processed: %v", a.GetName(), err)
		}
	}

	log.Printf("✅ [%s] Digest %s created from %d announcements", a.GetName(), digestID, len(ids))
	return nil
}

func (a *DigestAgent) processedKey() string {
	return a.config.RedisKeyPrefix + ":processed"
}

// lock keeps two server instances from writing the same digest.
func (a *DigestAgent) lock(ctx context.Context) (func(), bool, error) {
	if a.redis == nil {
		return func() {}, true, nil
	}

	key := a.config.RedisKeyPrefix + ":lock"
	ok, err := a.redis.SetNX(ctx, key, "locked", 10*time.Minute).Result()
	if err != nil {
		return nil, false, fmt.Errorf("failed to acquire digest lock: %w", err)
	}
	return func() { a.redis.Del(context.Background(), key) }, ok, nil
}

// pendingAnnouncements returns the newest announcements in the window not yet digested.
func (a *DigestAgent) pendingAnnouncements(ctx context.Context) ([]entity.Announcement, error) {
	records, err := a.store.ListDocuments(ctx, entity.CollectionAnnouncements, docstore.OrderBy{Field: "createdAt", Direction: docstore.Desc})
	if err != nil {
		return nil, err
	}

	since := a.now().Add(-a.config.Window)
	var out []entity.Announcement
	for _, rec := range records {
		var ann entity.Announcement
		if err := rec.Decode(&ann); err != nil {
			log.Printf("⚠️ [%s] Skipping announcement %s: %v", a.GetName(), rec.ID, err)
			continue
		}
		ann.ID = rec.ID
		// Ordered newest first, so the rest are older too.
		if ann.CreatedAt.Before(since) {
			break
		}

		if a.redis != nil {
			processed, err := a.redis.SIsMember(ctx, a.processedKey(), ann.ID).Result()
			if err == nil && processed {
				continue
			}
		}

		out = append(out, ann)
		if len(out) >= a.config.MaxAnnouncements {
			break
		}
	}
	return out, nil
}

func (a *DigestAgent) buildPrompt(anns []entity.Announcement) string {
	var b strings.Builder
	b.WriteString(`You are CampusSync AI, writing the morning digest for university students.
Summarize the announcements below.

Instructions:
1. Write a short summary paragraph (at most 80 words) of what students need to know today.
2. List up to 5 highlights, one short sentence each. Mention deadlines and course codes.
3. Urgent announcements come first.
4. The output MUST be JSON: {"summary": "...", "highlights": ["...", "..."]}

Announcements:
`)
	for i, ann := range anns {
		content := strings.Join(strings.Fields(html.UnescapeString(a.sanitizer.Sanitize(ann.Content))), " ")
		if r := []rune(content); len(r) > a.config.MaxContentLength {
			content = string(r[:a.config.MaxContentLength]) + "..."
		}
		course := ann.CourseID
		if course == "" {
			course = "General"
		}
		fmt.Fprintf(&b, "\n%d. [%s] [%s] %s\n%s\n", i+1, course, ann.Priority, ann.Title, content)
	}
	return b.String()
}
