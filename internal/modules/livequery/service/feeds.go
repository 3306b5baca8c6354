package service

import (
	"time"

	"github.com/Sujal06-B/hackathonproject-CampusSync/internal/entity"
	"github.com/Sujal06-B/hackathonproject-CampusSync/pkg/docstore"
)

const DefaultMockDelay = 500 * time.Millisecond

var (
	AnnouncementOrder = docstore.OrderBy{Field: "createdAt", Direction: docstore.Desc}
	AssignmentOrder   = docstore.OrderBy{Field: "dueDate", Direction: docstore.Asc}
)

// Feeds builds the sources hooks mount. With a nil store every source is a fixture.
type Feeds struct {
	store     docstore.Store
	mockDelay time.Duration
	backoff   time.Duration
}

func NewFeeds(store docstore.Store, mockDelay, backoff time.Duration) *Feeds {
	if mockDelay <= 0 {
		mockDelay = DefaultMockDelay
	}
	return &Feeds{store: store, mockDelay: mockDelay, backoff: backoff}
}

func (f *Feeds) Remote() bool {
	return f.store != nil
}

func (f *Feeds) Announcements(viewer string) Source[AnnouncementView] {
	if f.store == nil {
		return NewFixtureSource[AnnouncementView](f.mockDelay, func(now time.Time) []AnnouncementView {
			return FixtureAnnouncements(viewer, now)
		})
	}
	return NewRemoteSource[AnnouncementView](f.store, entity.CollectionAnnouncements, AnnouncementOrder, AnnouncementMapper(viewer), f.backoff)
}

func (f *Feeds) Assignments() Source[AssignmentView] {
	if f.store == nil {
		return NewFixtureSource[AssignmentView](f.mockDelay, FixtureAssignments)
	}
	return NewRemoteSource[AssignmentView](f.store, entity.CollectionAssignments, AssignmentOrder, AssignmentMapper, f.backoff)
}
