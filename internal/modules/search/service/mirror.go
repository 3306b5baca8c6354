package service

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/Sujal06-B/hackathonproject-CampusSync/internal/entity"
	liveQuery "github.com/Sujal06-B/hackathonproject-CampusSync/internal/modules/livequery/service"
	"github.com/Sujal06-B/hackathonproject-CampusSync/pkg/docstore"
)

// Mirror keeps the search indexes equal to the announcements and assignments collections. It
// listens to the same live queries the dashboard uses.
type Mirror struct {
	engine  Engine
	store   docstore.Store
	backoff time.Duration
	cleaner *textCleaner
}

func NewMirror(engine Engine, store docstore.Store, backoff time.Duration) *Mirror {
	return &Mirror{
		engine:  engine,
		store:   store,
		backoff: backoff,
		cleaner: newTextCleaner(),
	}
}

func (m *Mirror) announcementMapper(rec docstore.Record, _ time.Time) (Document, bool) {
	var a entity.Announcement
	if err := rec.Decode(&a); err != nil {
		log.Printf("⚠️ Skipping announcement %s: %v", rec.ID, err)
		return Document{}, false
	}
	a.ID = rec.ID
	return m.cleaner.announcement(a), true
}

func (m *Mirror) assignmentMapper(rec docstore.Record, _ time.Time) (Document, bool) {
	var a entity.Assignment
	if err := rec.Decode(&a); err != nil {
		log.Printf("⚠️ Skipping assignment %s: %v", rec.ID, err)
		return Document{}, false
	}
	a.ID = rec.ID
	return m.cleaner.assignment(a), true
}

// Run mirrors until ctx is done.
func (m *Mirror) Run(ctx context.Context) {
	sources := []struct {
		index  string
		source liveQuery.Source[Document]
	}{
		{IndexAnnouncements, liveQuery.NewRemoteSource[Document](m.store, entity.CollectionAnnouncements, liveQuery.AnnouncementOrder, m.announcementMapper, m.backoff)},
		{IndexAssignments, liveQuery.NewRemoteSource[Document](m.store, entity.CollectionAssignments, liveQuery.AssignmentOrder, m.assignmentMapper, m.backoff)},
	}

	var wg sync.WaitGroup
	for _, s := range sources {
		hook := liveQuery.Mount[Document](ctx, s.source)
		idx := newIndexSync(m.engine, s.index)
		unsubscribe := hook.Subscribe(idx.apply)

		wg.Add(1)
		go func() {
			defer wg.Done()
			<-ctx.Done()
			unsubscribe()
			hook.Unmount()
		}()
	}

	log.Println("✅ Search mirror started")
	wg.Wait()
	log.Println("🛑 Search mirror stopped")
}

// indexSync remembers what the index was last told, so each snapshot only sends the difference.
type indexSync struct {
	engine Engine
	index  string
	known  map[string]Document
}

func newIndexSync(engine Engine, index string) *indexSync {
	return &indexSync{engine: engine, index: index, known: make(map[string]Document)}
}

// apply is called one snapshot at a time by the hook.
func (s *indexSync) apply(v liveQuery.View[Document]) {
	if v.Loading || v.Stale {
		return
	}

	current := make(map[string]Document, len(v.Data))
	var changed []Document
	for _, doc := range v.Data {
		current[doc.ID] = doc
		if prev, ok := s.known[doc.ID]; !ok || !prev.equal(doc) {
			changed = append(changed, doc)
		}
	}

	var removed []string
	for id := range s.known {
		if _, ok := current[id]; !ok {
			removed = append(removed, id)
		}
	}

	if len(changed) == 0 && len(removed) == 0 {
		return
	}

	// Only record what reached the engine so a failed batch is resent with the next snapshot.
	if err := s.engine.Upsert(s.index, changed); err != nil {
		log.Printf("⚠️ Failed to index %d %s: %v", len(changed), s.index, err)
	} else {
		for _, doc := range changed {
			s.known[doc.ID] = doc
		}
	}

	if err := s.engine.Delete(s.index, removed); err != nil {
		log.Printf("⚠️ Failed to remove %d %s from index: %v", len(removed), s.index, err)
	} else {
		for _, id := range removed {
			delete(s.known, id)
		}
	}
}
