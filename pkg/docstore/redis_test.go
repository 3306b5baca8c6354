package docstore

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	store, err := NewRedisStore(rdb, "test")
	require.NoError(t, err)
	return store, mr
}

func nextSnapshot(t *testing.T, sub *Subscription) []Record {
	t.Helper()
	select {
	case snap, ok := <-sub.Snapshots():
		require.True(t, ok, "subscription closed unexpectedly")
		return snap
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for snapshot")
		return nil
	}
}

func ids(records []Record) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.ID
	}
	return out
}

func TestNewRedisStore(t *testing.T) {
	t.Run("rejects nil client", func(t *testing.T) {
		_, err := NewRedisStore(nil, "ns")
		assert.Error(t, err)
	})

	t.Run("rejects empty namespace", func(t *testing.T) {
		_, err := NewRedisStore(redis.NewClient(&redis.Options{}), "")
		assert.Error(t, err)
	})
}

func TestGetDocument(t *testing.T) {
	store, _ := setupTestStore(t)
	ctx := context.Background()

	t.Run("missing document", func(t *testing.T) {
		_, err := store.GetDocument(ctx, "users", "nobody")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("round trip", func(t *testing.T) {
		require.NoError(t, store.SetDocument(ctx, "users", "u1", map[string]any{"displayName": "Priya", "courses": []string{"CS301"}}, SetOptions{}))

		rec, err := store.GetDocument(ctx, "users", "u1")
		require.NoError(t, err)
		assert.Equal(t, "u1", rec.ID)
		assert.Equal(t, "Priya", rec.Fields["displayName"])
		assert.Equal(t, []any{"CS301"}, rec.Fields["courses"])
	})
}

func TestSetDocumentMerge(t *testing.T) {
	store, _ := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SetDocument(ctx, "users", "u1", map[string]any{"role": "student", "university": "IIT Bombay"}, SetOptions{}))

	t.Run("merge keeps untouched fields", func(t *testing.T) {
		require.NoError(t, store.SetDocument(ctx, "users", "u1", map[string]any{"role": "teacher"}, SetOptions{Merge: true}))

		rec, err := store.GetDocument(ctx, "users", "u1")
		require.NoError(t, err)
		assert.Equal(t, "teacher", rec.Fields["role"])
		assert.Equal(t, "IIT Bombay", rec.Fields["university"])
	})

	t.Run("overwrite replaces document", func(t *testing.T) {
		require.NoError(t, store.SetDocument(ctx, "users", "u1", map[string]any{"role": "student"}, SetOptions{}))

		rec, err := store.GetDocument(ctx, "users", "u1")
		require.NoError(t, err)
		assert.NotContains(t, rec.Fields, "university")
	})

	t.Run("rejects empty id", func(t *testing.T) {
		assert.Error(t, store.SetDocument(ctx, "users", "", map[string]any{}, SetOptions{}))
	})
}

func TestUpdateDocument(t *testing.T) {
	store, _ := setupTestStore(t)
	ctx := context.Background()

	err := store.UpdateDocument(ctx, "assignments", "missing", map[string]any{"status": "completed"})
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.SetDocument(ctx, "assignments", "a1", map[string]any{"status": "pending", "progress": 10}, SetOptions{}))
	require.NoError(t, store.UpdateDocument(ctx, "assignments", "a1", map[string]any{"status": "completed", "completedAt": ServerTimestamp}))

	rec, err := store.GetDocument(ctx, "assignments", "a1")
	require.NoError(t, err)
	assert.Equal(t, "completed", rec.Fields["status"])
	assert.Equal(t, float64(10), rec.Fields["progress"])

	stamp, ok := rec.Fields["completedAt"].(string)
	require.True(t, ok)
	_, err = time.Parse(time.RFC3339Nano, stamp)
	assert.NoError(t, err)
}

func TestUpdateDocument_ArrayUnion(t *testing.T) {
	store, _ := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SetDocument(ctx, "announcements", "n1", map[string]any{"title": "Lab"}, SetOptions{}))

	require.NoError(t, store.UpdateDocument(ctx, "announcements", "n1", map[string]any{"readBy": ArrayUnion("u1")}))
	require.NoError(t, store.UpdateDocument(ctx, "announcements", "n1", map[string]any{"readBy": ArrayUnion("u2", "u1")}))
	require.NoError(t, store.UpdateDocument(ctx, "announcements", "n1", map[string]any{"readBy": ArrayUnion("u2")}))

	rec, err := store.GetDocument(ctx, "announcements", "n1")
	require.NoError(t, err)
	assert.Equal(t, []any{"u1", "u2"}, rec.Fields["readBy"])
	assert.Equal(t, "Lab", rec.Fields["title"])
}

func TestAddAndListDocuments(t *testing.T) {
	store, _ := setupTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC)

	for i, title := range []string{"first", "second", "third"} {
		_, err := store.AddDocument(ctx, "announcements", map[string]any{
			"title":     title,
			"createdAt": base.Add(time.Duration(i) * time.Hour),
		})
		require.NoError(t, err)
	}

	desc, err := store.ListDocuments(ctx, "announcements", OrderBy{Field: "createdAt", Direction: Desc})
	require.NoError(t, err)
	require.Len(t, desc, 3)
	assert.Equal(t, "third", desc[0].Fields["title"])
	assert.Equal(t, "first", desc[2].Fields["title"])

	asc, err := store.ListDocuments(ctx, "announcements", OrderBy{Field: "createdAt", Direction: Asc})
	require.NoError(t, err)
	assert.Equal(t, "first", asc[0].Fields["title"])

	empty, err := store.ListDocuments(ctx, "nothing", OrderBy{})
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestRecordDecode(t *testing.T) {
	type assignment struct {
		ID       string     `json:"id"`
		Title    string     `json:"title"`
		Progress int        `json:"progress"`
		DueDate  *time.Time `json:"dueDate"`
	}

	due := time.Date(2026, 10, 20, 0, 0, 0, 0, time.UTC)
	fields, err := Fields(assignment{ID: "ignored", Title: "Essay", Progress: 40, DueDate: &due})
	require.NoError(t, err)
	assert.NotContains(t, fields, "id")

	var out assignment
	require.NoError(t, Record{ID: "a9", Fields: fields}.Decode(&out))
	assert.Equal(t, "a9", out.ID)
	assert.Equal(t, "Essay", out.Title)
	assert.Equal(t, 40, out.Progress)
	require.NotNil(t, out.DueDate)
	assert.True(t, due.Equal(*out.DueDate))
}

func TestSubscribeQuery(t *testing.T) {
	store, _ := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SetDocument(ctx, "assignments", "b", map[string]any{"dueDate": "2026-10-18T00:00:00Z"}, SetOptions{}))

	sub, err := store.SubscribeQuery(ctx, "assignments", OrderBy{Field: "dueDate", Direction: Asc})
	require.NoError(t, err)
	defer sub.Close()

	t.Run("delivers initial snapshot", func(t *testing.T) {
		assert.Equal(t, []string{"b"}, ids(nextSnapshot(t, sub)))
	})

	t.Run("every write delivers the full ordered collection", func(t *testing.T) {
		require.NoError(t, store.SetDocument(ctx, "assignments", "a", map[string]any{"dueDate": "2026-10-17T00:00:00Z"}, SetOptions{}))

		var snap []Record
		require.Eventually(t, func() bool {
			select {
			case snap = <-sub.Snapshots():
			default:
			}
			return len(snap) == 2
		}, 2*time.Second, 10*time.Millisecond)
		assert.Equal(t, []string{"a", "b"}, ids(snap))
	})

	t.Run("writes to other collections are not delivered", func(t *testing.T) {
		require.NoError(t, store.SetDocument(ctx, "announcements", "x", map[string]any{}, SetOptions{}))
		select {
		case snap := <-sub.Snapshots():
			t.Fatalf("unexpected snapshot %v", ids(snap))
		case <-time.After(100 * time.Millisecond):
		}
	})
}

func TestSubscriptionClose(t *testing.T) {
	store, _ := setupTestStore(t)

	sub, err := store.SubscribeQuery(context.Background(), "announcements", OrderBy{})
	require.NoError(t, err)

	assert.NoError(t, sub.Close())
	assert.NoError(t, sub.Close())

	require.Eventually(t, func() bool {
		select {
		case _, ok := <-sub.Snapshots():
			return !ok
		default:
			return false
		}
	}, 2*time.Second, 10*time.Millisecond)
}

func TestCompareValues(t *testing.T) {
	assert.Equal(t, 0, compareValues(nil, nil))
	assert.Less(t, compareValues(nil, "x"), 0)
	assert.Less(t, compareValues(float64(1), float64(2)), 0)
	assert.Greater(t, compareValues(true, false), 0)
	assert.Less(t, compareValues("2026-10-16T09:00:00.5Z", "2026-10-16T09:00:01Z"), 0)
	assert.Less(t, compareValues("apple", "banana"), 0)
}
