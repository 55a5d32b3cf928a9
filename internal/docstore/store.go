package docstore

import (
	"context"
	"sort"
	"strings"
)

// Document is one record of the external document store. Data is the raw,
// untyped payload; callers are expected to decode it into typed records at
// the subscription boundary.
type Document struct {
	ID   string
	Data map[string]any
}

// Query narrows a collection read. OrderBy names a field inside the document
// payload; documents missing the field sort last.
type Query struct {
	OrderBy    string
	Descending bool
	Limit      int
}

// SnapshotFunc receives the full current result set of a subscribed query.
// Every delivery is a complete replacement, never a delta.
type SnapshotFunc func(docs []Document)

// Subscription is a disposable handle for a live query. Unsubscribe is safe
// to call more than once.
type Subscription interface {
	Unsubscribe()
}

// Store is the document store collaborator: a keyed, queryable, subscribable
// document table addressed by hierarchical slash-separated paths, e.g.
// channels/{channelId}/threads/{threadId}.
type Store interface {
	// Get reads a single document. Returns ripple_errors.ErrNotFound if the
	// path does not resolve.
	Get(ctx context.Context, path string) (Document, error)

	// List reads a collection once.
	List(ctx context.Context, collection string, q Query) ([]Document, error)

	// Add creates a document with a generated id and returns the id.
	Add(ctx context.Context, collection string, data map[string]any) (string, error)

	// Set writes a full document at path, creating it if absent.
	Set(ctx context.Context, path string, data map[string]any) error

	// Update merges fields into an existing document. Returns
	// ripple_errors.ErrNotFound if the document does not exist.
	Update(ctx context.Context, path string, fields map[string]any) error

	// Delete removes a document. Deleting an absent document is a no-op.
	Delete(ctx context.Context, path string) error

	// Subscribe establishes a live query over a collection. The handler is
	// called with the initial result set before Subscribe returns, then again
	// with the full result set after every change to the collection.
	Subscribe(ctx context.Context, collection string, q Query, fn SnapshotFunc) (Subscription, error)
}

// splitPath splits a document path into its collection and document id.
func splitPath(path string) (collection, id string) {
	idx := strings.LastIndex(path, "/")
	if idx < 0 {
		return "", path
	}
	return path[:idx], path[idx+1:]
}

// sortDocs orders docs by the query's OrderBy field and applies the limit.
// The source does not guarantee a stable order for ties.
func sortDocs(docs []Document, q Query) []Document {
	if q.OrderBy != "" {
		sort.Slice(docs, func(i, j int) bool {
			a := docs[i].Data[q.OrderBy]
			b := docs[j].Data[q.OrderBy]
			if q.Descending {
				return lessByField(b, a)
			}
			return lessByField(a, b)
		})
	}
	if q.Limit > 0 && len(docs) > q.Limit {
		docs = docs[:q.Limit]
	}
	return docs
}

func lessByField(a, b any) bool {
	af, aok := toFloat(a)
	bf, bok := toFloat(b)
	if aok && bok {
		return af < bf
	}
	if aok != bok {
		// Documents with the field sort before documents without it.
		return aok
	}
	as, aIsStr := a.(string)
	bs, bIsStr := b.(string)
	if aIsStr && bIsStr {
		return as < bs
	}
	return false
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	}
	return 0, false
}
