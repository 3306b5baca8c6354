// Package docstore is a small collection-oriented document store with live, full-snapshot queries.
//
// Documents are JSON objects grouped into named collections. Every write publishes a change
// notification for its collection; SubscribeQuery turns those notifications into a stream of
// complete, ordered snapshots of the collection.
package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

// ErrNotFound is returned when a document does not exist.
var ErrNotFound = errors.New("document not found")

type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// OrderBy sorts query results by a top-level field. Ties are broken by document id.
type OrderBy struct {
	Field     string
	Direction Direction
}

// SetOptions controls SetDocument. With Merge the given fields are laid over the existing
// document instead of replacing it.
type SetOptions struct {
	Merge bool
}

// Record is one stored document.
type Record struct {
	ID     string         `json:"id"`
	Fields map[string]any `json:"fields"`
}

// Decode copies the record into out (a pointer to a struct with json tags). The document id is
// exposed to out as the "id" field.
func (r Record) Decode(out any) error {
	fields := make(map[string]any, len(r.Fields)+1)
	for k, v := range r.Fields {
		fields[k] = v
	}
	fields["id"] = r.ID

	raw, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("failed to encode record %s: %w", r.ID, err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to decode record %s: %w", r.ID, err)
	}
	return nil
}

// Store is the document store contract used by the rest of the application.
type Store interface {
	GetDocument(ctx context.Context, collection, id string) (*Record, error)
	SetDocument(ctx context.Context, collection, id string, fields map[string]any, opts SetOptions) error
	UpdateDocument(ctx context.Context, collection, id string, fields map[string]any) error
	AddDocument(ctx context.Context, collection string, fields map[string]any) (string, error)
	ListDocuments(ctx context.Context, collection string, order OrderBy) ([]Record, error)
	SubscribeQuery(ctx context.Context, collection string, order OrderBy) (*Subscription, error)
}

type serverTimestamp struct{}

// ServerTimestamp is replaced by the store's current UTC time when a document is written.
var ServerTimestamp = serverTimestamp{}

// Fields converts a json-tagged struct into a field map suitable for writes. The "id" key is dropped
// because ids live outside the document body.
func Fields(v any) (map[string]any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	delete(out, "id")
	return out, nil
}

type arrayUnion struct {
	values []any
}

// ArrayUnion appends the values that the stored array does not already hold.
func ArrayUnion(values ...any) any {
	return arrayUnion{values: values}
}

// resolveSentinels replaces ServerTimestamp and ArrayUnion markers. existing is the stored document
// before the write, nil when there is none.
func resolveSentinels(fields, existing map[string]any, now time.Time) map[string]any {
	out := make(map[string]any, len(fields))
	for k, v := range fields {
		switch sv := v.(type) {
		case serverTimestamp:
			out[k] = now.UTC().Format(time.RFC3339Nano)
		case arrayUnion:
			out[k] = unionValues(existing[k], sv.values)
		default:
			out[k] = v
		}
	}
	delete(out, "id")
	return out
}

func unionValues(current any, add []any) []any {
	var out []any
	if arr, ok := current.([]any); ok {
		out = append(out, arr...)
	}
	for _, v := range add {
		seen := false
		for _, cur := range out {
			if compareValues(cur, v) == 0 {
				seen = true
				break
			}
		}
		if !seen {
			out = append(out, v)
		}
	}
	if out == nil {
		out = []any{}
	}
	return out
}

func sortRecords(records []Record, order OrderBy) {
	sort.SliceStable(records, func(i, j int) bool {
		c := 0
		if order.Field != "" {
			c = compareValues(records[i].Fields[order.Field], records[j].Fields[order.Field])
			if order.Direction == Desc {
				c = -c
			}
		}
		if c == 0 {
			return records[i].ID < records[j].ID
		}
		return c < 0
	})
}

// compareValues orders decoded JSON values. Missing values sort first; RFC 3339 strings compare as
// instants.
func compareValues(a, b any) int {
	ra, rb := typeRank(a), typeRank(b)
	if ra != rb {
		return ra - rb
	}

	switch av := a.(type) {
	case nil:
		return 0
	case bool:
		bv := b.(bool)
		switch {
		case av == bv:
			return 0
		case !av:
			return -1
		default:
			return 1
		}
	case float64:
		bv := b.(float64)
		switch {
		case av < bv:
			return -1
		case av > bv:
			return 1
		default:
			return 0
		}
	case string:
		bv := b.(string)
		ta, errA := time.Parse(time.RFC3339Nano, av)
		tb, errB := time.Parse(time.RFC3339Nano, bv)
		if errA == nil && errB == nil {
			return ta.Compare(tb)
		}
		return strings.Compare(av, bv)
	default:
		return 0
	}
}

func typeRank(v any) int {
	switch v.(type) {
	case nil:
		return 0
	case bool:
		return 1
	case float64:
		return 2
	case string:
		return 3
	default:
		return 4
	}
}
