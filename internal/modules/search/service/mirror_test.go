package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/Sujal06-B/hackathonproject-CampusSync/internal/entity"
	liveQuery "github.com/Sujal06-B/hackathonproject-CampusSync/internal/modules/livequery/service"
	"github.com/Sujal06-B/hackathonproject-CampusSync/pkg/docstore"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEngine struct {
	mu       sync.Mutex
	docs     map[string]map[string]Document
	upserts  int
	failNext bool
}

func newFakeEngine() *fakeEngine {
	return &fakeEngine{docs: map[string]map[string]Document{}}
}

func (f *fakeEngine) Upsert(index string, docs []Document) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(docs) == 0 {
		return nil
	}
	if f.failNext {
		f.failNext = false
		return errors.New("meilisearch down")
	}
	f.upserts++
	if f.docs[index] == nil {
		f.docs[index] = map[string]Document{}
	}
	for _, d := range docs {
		f.docs[index][d.ID] = d
	}
	return nil
}

func (f *fakeEngine) Delete(index string, ids []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, id := range ids {
		delete(f.docs[index], id)
	}
	return nil
}

func (f *fakeEngine) TenantToken(role entity.Role) (string, error) {
	return "token-" + string(role), nil
}

func (f *fakeEngine) ids(index string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.docs[index]))
	for id := range f.docs[index] {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

func (f *fakeEngine) doc(index, id string) Document {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.docs[index][id]
}

func TestIndexSync_SendsOnlyDifferences(t *testing.T) {
	engine := newFakeEngine()
	s := newIndexSync(engine, IndexAssignments)

	a := Document{ID: "a", Title: "A", AllowedRoles: []string{"student"}}
	b := Document{ID: "b", Title: "B", AllowedRoles: []string{"student"}}

	s.apply(liveQuery.View[Document]{Loading: true})
	assert.Equal(t, 0, engine.upserts)

	s.apply(liveQuery.View[Document]{Data: []Document{a, b}})
	assert.Equal(t, []string{"a", "b"}, engine.ids(IndexAssignments))
	assert.Equal(t, 1, engine.upserts)

	s.apply(liveQuery.View[Document]{Data: []Document{a, b}})
	assert.Equal(t, 1, engine.upserts, "unchanged snapshot sends nothing")

	b.Title = "B2"
	s.apply(liveQuery.View[Document]{Data: []Document{b}})
	assert.Equal(t, []string{"b"}, engine.ids(IndexAssignments))
	assert.Equal(t, "B2", engine.doc(IndexAssignments, "b").Title)

	s.apply(liveQuery.View[Document]{Data: []Document{}, Stale: true})
	assert.Equal(t, []string{"b"}, engine.ids(IndexAssignments), "stale views are ignored")
}

func TestIndexSync_RetriesFailedUpsert(t *testing.T) {
	engine := newFakeEngine()
	engine.failNext = true
	s := newIndexSync(engine, IndexAnnouncements)

	a := Document{ID: "a", AllowedRoles: []string{"public"}}
	s.apply(liveQuery.View[Document]{Data: []Document{a}})
	assert.Empty(t, engine.ids(IndexAnnouncements))

	s.apply(liveQuery.View[Document]{Data: []Document{a}})
	assert.Equal(t, []string{"a"}, engine.ids(IndexAnnouncements))
}

func TestMirror_FollowsStore(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	store, err := docstore.NewRedisStore(rdb, "test")
	require.NoError(t, err)

	bg := context.Background()
	require.NoError(t, store.SetDocument(bg, entity.CollectionAnnouncements, "n1", map[string]any{
		"title":     "Lab <b>closed</b>",
		"content":   "<p>Maintenance</p><p>Friday</p>",
		"createdAt": docstore.ServerTimestamp,
	}, docstore.SetOptions{}))

	engine := newFakeEngine()
	mirror := NewMirror(engine, store, 50*time.Millisecond)

	ctx, cancel := context.WithCancel(bg)
	done := make(chan struct{})
	go func() {
		mirror.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool {
		return len(engine.ids(IndexAnnouncements)) == 1
	}, 2*time.Second, 10*time.Millisecond)

	doc := engine.doc(IndexAnnouncements, "n1")
	assert.Equal(t, "Lab closed", doc.Title)
	assert.Equal(t, "Maintenance Friday", doc.Content)
	assert.Equal(t, []string{"public"}, doc.AllowedRoles)

	require.NoError(t, store.SetDocument(bg, entity.CollectionAssignments, "a1", map[string]any{
		"title":   "BST",
		"status":  "pending",
		"dueDate": time.Now().Add(time.Hour).UTC(),
	}, docstore.SetOptions{}))

	require.Eventually(t, func() bool {
		return len(engine.ids(IndexAssignments)) == 1
	}, 2*time.Second, 10*time.Millisecond)
	assert.NotZero(t, engine.doc(IndexAssignments, "a1").DueDate)

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("mirror did not stop")
	}
}

func TestSearchFilter(t *testing.T) {
	assert.Equal(t, "allowed_roles IN ['teacher', 'public']", SearchFilter(entity.RoleTeacher))
	assert.Equal(t, "allowed_roles IN ['student', 'public']", SearchFilter(entity.RoleStudent))
	assert.Equal(t, "allowed_roles IN ['student', 'public']", SearchFilter(""))
}

func TestTextCleaner(t *testing.T) {
	c := newTextCleaner()
	assert.Equal(t, "Tom & Jerry line two", c.clean("<p>Tom &amp; Jerry</p><div>line   two</div>"))
}
