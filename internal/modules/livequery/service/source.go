package service

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/Sujal06-B/hackathonproject-CampusSync/pkg/docstore"
)

const DefaultResubscribeBackoff = 2 * time.Second

var errSubscriptionLost = errors.New("live subscription lost")

// Mapper turns a stored record into a view record. ok=false drops the record.
type Mapper[T any] func(rec docstore.Record, now time.Time) (item T, ok bool)

// RemoteSource streams a collection from the document store. When the subscription breaks it keeps
// retrying with a fixed backoff until the hook is unmounted.
type RemoteSource[T any] struct {
	store   docstore.Store
	coll    string
	order   docstore.OrderBy
	mapper  Mapper[T]
	backoff time.Duration
	now     func() time.Time
}

func NewRemoteSource[T any](store docstore.Store, collection string, order docstore.OrderBy, mapper Mapper[T], backoff time.Duration) *RemoteSource[T] {
	if backoff <= 0 {
		backoff = DefaultResubscribeBackoff
	}
	return &RemoteSource[T]{
		store:   store,
		coll:    collection,
		order:   order,
		mapper:  mapper,
		backoff: backoff,
		now:     time.Now,
	}
}

func (s *RemoteSource[T]) Run(ctx context.Context, sink Sink[T]) {
	for {
		err := s.stream(ctx, sink)
		if ctx.Err() != nil {
			return
		}

		log.Printf("⚠️ Live query on %s failed, retrying in %s: %v", s.coll, s.backoff, err)
		sink.Fail(err)

		select {
		case <-ctx.Done():
			return
		case <-time.After(s.backoff):
		}
	}
}

// stream runs one subscription until it breaks or ctx ends.
func (s *RemoteSource[T]) stream(ctx context.Context, sink Sink[T]) error {
	sub, err := s.store.SubscribeQuery(ctx, s.coll, s.order)
	if err != nil {
		return err
	}
	defer sub.Close()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case records, ok := <-sub.Snapshots():
			if !ok {
				return errSubscriptionLost
			}
			sink.Replace(s.mapAll(records))
		case err, ok := <-sub.Errors():
			if !ok {
				return errSubscriptionLost
			}
			sink.Fail(err)
		}
	}
}

func (s *RemoteSource[T]) mapAll(records []docstore.Record) []T {
	now := s.now()
	items := make([]T, 0, len(records))
	for _, rec := range records {
		item, ok := s.mapper(rec, now)
		if !ok {
			continue
		}
		items = append(items, item)
	}
	return items
}

// FixtureSource delivers a fixed set once after a delay, standing in for a remote store.
type FixtureSource[T any] struct {
	delay time.Duration
	items func(now time.Time) []T
	now   func() time.Time
}

func NewFixtureSource[T any](delay time.Duration, items func(now time.Time) []T) *FixtureSource[T] {
	return &FixtureSource[T]{delay: delay, items: items, now: time.Now}
}

func (s *FixtureSource[T]) Run(ctx context.Context, sink Sink[T]) {
	timer := time.NewTimer(s.delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return
	case <-timer.C:
		sink.Replace(s.items(s.now()))
	}
	<-ctx.Done()
}
