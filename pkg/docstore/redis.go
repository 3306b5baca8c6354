package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const maxTxRetries = 8

// RedisStore keeps each collection in one Redis hash (id -> JSON document) and publishes the id of
// every written document on the collection's change channel.
// It is safe for concurrent use.
type RedisStore struct {
	rdb       *redis.Client
	namespace string
	now       func() time.Time
}

// NewRedisStore creates a store whose keys and channels are prefixed with namespace.
func NewRedisStore(rdb *redis.Client, namespace string) (*RedisStore, error) {
	if rdb == nil {
		return nil, fmt.Errorf("redis client cannot be nil")
	}
	if namespace == "" {
		return nil, fmt.Errorf("namespace cannot be empty")
	}
	return &RedisStore{rdb: rdb, namespace: namespace, now: time.Now}, nil
}

// CollectionKey returns the hash key holding a collection.
func CollectionKey(namespace, collection string) string {
	return fmt.Sprintf("%s:docs:%s", namespace, collection)
}

// ChangesChannel returns the pub/sub channel announcing writes to a collection.
func ChangesChannel(namespace, collection string) string {
	return fmt.Sprintf("%s:docs:%s:changes", namespace, collection)
}

func (s *RedisStore) GetDocument(ctx context.Context, collection, id string) (*Record, error) {
	raw, err := s.rdb.HGet(ctx, CollectionKey(s.namespace, collection), id).Result()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("%s/%s: %w", collection, id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s/%s: %w", collection, id, err)
	}

	fields, err := decodeFields(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s/%s: %w", collection, id, err)
	}
	return &Record{ID: id, Fields: fields}, nil
}

func (s *RedisStore) SetDocument(ctx context.Context, collection, id string, fields map[string]any, opts SetOptions) error {
	if id == "" {
		return fmt.Errorf("document id cannot be empty")
	}
	return s.write(ctx, collection, id, func(existing map[string]any, found bool) (map[string]any, error) {
		if !opts.Merge || !found {
			return fields, nil
		}
		return merge(existing, fields), nil
	})
}

func (s *RedisStore) UpdateDocument(ctx context.Context, collection, id string, fields map[string]any) error {
	return s.write(ctx, collection, id, func(existing map[string]any, found bool) (map[string]any, error) {
		if !found {
			return nil, fmt.Errorf("%s/%s: %w", collection, id, ErrNotFound)
		}
		return merge(existing, fields), nil
	})
}

func (s *RedisStore) AddDocument(ctx context.Context, collection string, fields map[string]any) (string, error) {
	id := uuid.New().String()
	if err := s.SetDocument(ctx, collection, id, fields, SetOptions{}); err != nil {
		return "", err
	}
	return id, nil
}

func (s *RedisStore) ListDocuments(ctx context.Context, collection string, order OrderBy) ([]Record, error) {
	all, err := s.rdb.HGetAll(ctx, CollectionKey(s.namespace, collection)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", collection, err)
	}

	records := make([]Record, 0, len(all))
	for id, raw := range all {
		fields, err := decodeFields(raw)
		if err != nil {
			return nil, fmt.Errorf("failed to decode %s/%s: %w", collection, id, err)
		}
		records = append(records, Record{ID: id, Fields: fields})
	}

	sortRecords(records, order)
	return records, nil
}

// write runs an optimistic read-modify-write of one document and then announces the change.
func (s *RedisStore) write(ctx context.Context, collection, id string, build func(existing map[string]any, found bool) (map[string]any, error)) error {
	key := CollectionKey(s.namespace, collection)

	txf := func(tx *redis.Tx) error {
		var existing map[string]any
		raw, err := tx.HGet(ctx, key, id).Result()
		found := err == nil
		switch {
		case errors.Is(err, redis.Nil):
		case err != nil:
			return err
		default:
			if existing, err = decodeFields(raw); err != nil {
				return err
			}
		}

		next, err := build(existing, found)
		if err != nil {
			return err
		}

		payload, err := json.Marshal(resolveSentinels(next, existing, s.now()))
		if err != nil {
			return fmt.Errorf("failed to encode document: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, key, id, payload)
			return nil
		})
		return err
	}

	var err error
	for i := 0; i < maxTxRetries; i++ {
		err = s.rdb.Watch(ctx, txf, key)
		if !errors.Is(err, redis.TxFailedErr) {
			break
		}
	}
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return err
		}
		return fmt.Errorf("failed to write %s/%s: %w", collection, id, err)
	}

	if err := s.rdb.Publish(ctx, ChangesChannel(s.namespace, collection), id).Err(); err != nil {
		return fmt.Errorf("failed to publish change for %s/%s: %w", collection, id, err)
	}
	return nil
}

// Subscription is a live query over one collection. Every delivered snapshot is the complete,
// ordered collection at that moment; a newer snapshot supersedes any snapshot not yet received.
// Caller must call Close() when done.
type Subscription struct {
	snapshots <-chan []Record
	errors    <-chan error
	cancel    func()
	once      sync.Once
}

// Snapshots returns the snapshot channel. It is closed when the subscription ends.
func (s *Subscription) Snapshots() <-chan []Record {
	return s.snapshots
}

// Errors returns non-fatal errors (failed reloads). The subscription keeps running after them.
func (s *Subscription) Errors() <-chan error {
	return s.errors
}

// Close stops the subscription. Safe to call multiple times.
func (s *Subscription) Close() error {
	s.once.Do(s.cancel)
	return nil
}

// SubscribeQuery delivers the current ordered collection immediately and again after every write to
// it. Cancelling ctx also ends the subscription.
func (s *RedisStore) SubscribeQuery(ctx context.Context, collection string, order OrderBy) (*Subscription, error) {
	pubsub := s.rdb.Subscribe(ctx, ChangesChannel(s.namespace, collection))

	// Wait for confirmation so that no write between now and the first load is missed.
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("failed to subscribe to %s: %w", collection, err)
	}

	snapshots := make(chan []Record, 1)
	errs := make(chan error, 10)
	subCtx, cancel := context.WithCancel(ctx)

	go func() {
		defer close(snapshots)
		defer close(errs)
		defer pubsub.Close()

		ch := pubsub.Channel()

		push := func() bool {
			records, err := s.ListDocuments(subCtx, collection, order)
			if err != nil {
				if subCtx.Err() != nil {
					return false
				}
				select {
				case errs <- err:
				default:
				}
				return true
			}

			// Drop an undelivered older snapshot; only the latest matters.
			select {
			case <-snapshots:
			default:
			}

			select {
			case snapshots <- records:
				return true
			case <-subCtx.Done():
				return false
			}
		}

		if !push() {
			return
		}

		for {
			select {
			case <-subCtx.Done():
				return
			case _, ok := <-ch:
				if !ok {
					return
				}
				if !push() {
					return
				}
			}
		}
	}()

	return &Subscription{
		snapshots: snapshots,
		errors:    errs,
		cancel:    cancel,
	}, nil
}

func decodeFields(raw string) (map[string]any, error) {
	var fields map[string]any
	if err := json.Unmarshal([]byte(raw), &fields); err != nil {
		return nil, err
	}
	if fields == nil {
		fields = map[string]any{}
	}
	return fields, nil
}

func merge(base, overlay map[string]any) map[string]any {
	out := make(map[string]any, len(base)+len(overlay))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range overlay {
		out[k] = v
	}
	return out
}
