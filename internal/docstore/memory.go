package docstore

import (
	"context"
	"sync"

	ripple_errors "ripple-chat/pkg/errors"

	"github.com/google/uuid"
)

// MemoryStore is an in-process Store used by tests and local development.
// Snapshot delivery is synchronous: a mutation returns only after every
// affected subscriber has been handed the new result set, which mirrors the
// interleaved-callback model of the real backend closely enough for the
// state stores built on top of it.
type MemoryStore struct {
	mu   sync.Mutex
	docs map[string]map[string]map[string]any // collection -> id -> payload
	subs map[string][]*memorySub              // collection -> subscribers
}

type memorySub struct {
	store      *MemoryStore
	collection string
	query      Query
	fn         SnapshotFunc
	cancelled  bool
}

func (s *memorySub) Unsubscribe() {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	s.cancelled = true
	subs := s.store.subs[s.collection]
	for i, sub := range subs {
		if sub == s {
			s.store.subs[s.collection] = append(subs[:i], subs[i+1:]...)
			return
		}
	}
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		docs: make(map[string]map[string]map[string]any),
		subs: make(map[string][]*memorySub),
	}
}

func (m *MemoryStore) Get(ctx context.Context, path string) (Document, error) {
	collection, id := splitPath(path)

	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.docs[collection][id]
	if !ok {
		return Document{}, ripple_errors.ErrNotFound
	}
	return Document{ID: id, Data: cloneData(data)}, nil
}

func (m *MemoryStore) List(ctx context.Context, collection string, q Query) ([]Document, error) {
	m.mu.Lock()
	docs := m.snapshotLocked(collection, q)
	m.mu.Unlock()
	return docs, nil
}

func (m *MemoryStore) Add(ctx context.Context, collection string, data map[string]any) (string, error) {
	id := uuid.NewString()
	return id, m.Set(ctx, Join(collection, id), data)
}

func (m *MemoryStore) Set(ctx context.Context, path string, data map[string]any) error {
	collection, id := splitPath(path)

	m.mu.Lock()
	if m.docs[collection] == nil {
		m.docs[collection] = make(map[string]map[string]any)
	}
	m.docs[collection][id] = cloneData(data)
	m.notifyLocked(collection)
	return nil
}

func (m *MemoryStore) Update(ctx context.Context, path string, fields map[string]any) error {
	collection, id := splitPath(path)

	m.mu.Lock()
	existing, ok := m.docs[collection][id]
	if !ok {
		m.mu.Unlock()
		return ripple_errors.ErrNotFound
	}
	for k, v := range fields {
		existing[k] = cloneValue(v)
	}
	m.notifyLocked(collection)
	return nil
}

func (m *MemoryStore) Delete(ctx context.Context, path string) error {
	collection, id := splitPath(path)

	m.mu.Lock()
	if _, ok := m.docs[collection][id]; !ok {
		m.mu.Unlock()
		return nil
	}
	delete(m.docs[collection], id)
	m.notifyLocked(collection)
	return nil
}

func (m *MemoryStore) Subscribe(ctx context.Context, collection string, q Query, fn SnapshotFunc) (Subscription, error) {
	sub := &memorySub{store: m, collection: collection, query: q, fn: fn}

	m.mu.Lock()
	m.subs[collection] = append(m.subs[collection], sub)
	initial := m.snapshotLocked(collection, q)
	m.mu.Unlock()

	fn(initial)
	return sub, nil
}

// notifyLocked delivers fresh snapshots to every subscriber of the
// collection. It releases the store lock before invoking handlers so that a
// handler may call back into the store.
func (m *MemoryStore) notifyLocked(collection string) {
	subs := make([]*memorySub, 0, len(m.subs[collection]))
	snapshots := make([][]Document, 0, len(m.subs[collection]))
	for _, sub := range m.subs[collection] {
		if sub.cancelled {
			continue
		}
		subs = append(subs, sub)
		snapshots = append(snapshots, m.snapshotLocked(collection, sub.query))
	}
	m.mu.Unlock()

	for i, sub := range subs {
		sub.fn(snapshots[i])
	}
}

func (m *MemoryStore) snapshotLocked(collection string, q Query) []Document {
	var docs []Document
	for id, data := range m.docs[collection] {
		docs = append(docs, Document{ID: id, Data: cloneData(data)})
	}
	return sortDocs(docs, q)
}

func cloneData(data map[string]any) map[string]any {
	out := make(map[string]any, len(data))
	for k, v := range data {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		return cloneData(val)
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = cloneValue(item)
		}
		return out
	case []string:
		out := make([]string, len(val))
		copy(out, val)
		return out
	default:
		return v
	}
}
