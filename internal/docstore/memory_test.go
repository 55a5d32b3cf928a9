package docstore

import (
	"context"
	"testing"

	ripple_errors "ripple-chat/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetMissingDocument(t *testing.T) {
	m := NewMemoryStore()

	_, err := m.Get(context.Background(), "users/ghost")
	assert.ErrorIs(t, err, ripple_errors.ErrNotFound)
}

func TestSetThenGet(t *testing.T) {
	m := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, m.Set(ctx, "users/alice", map[string]any{"name": "Alice"}))

	doc, err := m.Get(ctx, "users/alice")
	require.NoError(t, err)
	assert.Equal(t, "alice", doc.ID)
	assert.Equal(t, "Alice", doc.Data["name"])
}

func TestUpdateMergesFields(t *testing.T) {
	m := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, m.Set(ctx, "users/alice", map[string]any{"name": "Alice", "isOnline": false}))
	require.NoError(t, m.Update(ctx, "users/alice", map[string]any{"isOnline": true}))

	doc, err := m.Get(ctx, "users/alice")
	require.NoError(t, err)
	assert.Equal(t, "Alice", doc.Data["name"])
	assert.Equal(t, true, doc.Data["isOnline"])
}

func TestUpdateMissingDocumentFails(t *testing.T) {
	m := NewMemoryStore()

	err := m.Update(context.Background(), "users/ghost", map[string]any{"isOnline": true})
	assert.ErrorIs(t, err, ripple_errors.ErrNotFound)
}

func TestDeleteIsIdempotent(t *testing.T) {
	m := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, m.Set(ctx, "users/alice", map[string]any{"name": "Alice"}))
	require.NoError(t, m.Delete(ctx, "users/alice"))
	require.NoError(t, m.Delete(ctx, "users/alice"))

	_, err := m.Get(ctx, "users/alice")
	assert.ErrorIs(t, err, ripple_errors.ErrNotFound)
}

func TestAddGeneratesID(t *testing.T) {
	m := NewMemoryStore()
	ctx := context.Background()

	id, err := m.Add(ctx, "channels", map[string]any{"name": "general"})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	doc, err := m.Get(ctx, Join("channels", id))
	require.NoError(t, err)
	assert.Equal(t, "general", doc.Data["name"])
}

func TestListOrdersAndLimits(t *testing.T) {
	m := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, m.Set(ctx, "msgs/b", map[string]any{"creationDate": int64(200)}))
	require.NoError(t, m.Set(ctx, "msgs/a", map[string]any{"creationDate": int64(100)}))
	require.NoError(t, m.Set(ctx, "msgs/c", map[string]any{"creationDate": int64(300)}))

	asc, err := m.List(ctx, "msgs", Query{OrderBy: "creationDate"})
	require.NoError(t, err)
	require.Len(t, asc, 3)
	assert.Equal(t, "a", asc[0].ID)
	assert.Equal(t, "c", asc[2].ID)

	desc, err := m.List(ctx, "msgs", Query{OrderBy: "creationDate", Descending: true, Limit: 2})
	require.NoError(t, err)
	require.Len(t, desc, 2)
	assert.Equal(t, "c", desc[0].ID)
	assert.Equal(t, "b", desc[1].ID)
}

func TestDocumentsMissingOrderFieldSortLast(t *testing.T) {
	m := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, m.Set(ctx, "msgs/late", map[string]any{"text": "no date"}))
	require.NoError(t, m.Set(ctx, "msgs/early", map[string]any{"creationDate": int64(1)}))

	docs, err := m.List(ctx, "msgs", Query{OrderBy: "creationDate"})
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "early", docs[0].ID)
	assert.Equal(t, "late", docs[1].ID)
}

func TestSubscribeDeliversInitialSnapshotBeforeReturn(t *testing.T) {
	m := NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, m.Set(ctx, "users/alice", map[string]any{"name": "Alice"}))

	var deliveries [][]Document
	sub, err := m.Subscribe(ctx, "users", Query{}, func(docs []Document) {
		deliveries = append(deliveries, docs)
	})
	require.NoError(t, err)
	defer sub.Unsubscribe()

	require.Len(t, deliveries, 1)
	require.Len(t, deliveries[0], 1)
	assert.Equal(t, "alice", deliveries[0][0].ID)
}

func TestSubscribeDeliversFullSnapshotsOnChange(t *testing.T) {
	m := NewMemoryStore()
	ctx := context.Background()

	var deliveries [][]Document
	sub, err := m.Subscribe(ctx, "users", Query{}, func(docs []Document) {
		deliveries = append(deliveries, docs)
	})
	require.NoError(t, err)
	defer sub.Unsubscribe()

	require.NoError(t, m.Set(ctx, "users/alice", map[string]any{"name": "Alice"}))
	require.NoError(t, m.Set(ctx, "users/bob", map[string]any{"name": "Bob"}))
	require.NoError(t, m.Delete(ctx, "users/alice"))

	require.Len(t, deliveries, 4)
	assert.Empty(t, deliveries[0])
	assert.Len(t, deliveries[1], 1)
	assert.Len(t, deliveries[2], 2)
	require.Len(t, deliveries[3], 1)
	assert.Equal(t, "bob", deliveries[3][0].ID)
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	m := NewMemoryStore()
	ctx := context.Background()

	var count int
	sub, err := m.Subscribe(ctx, "users", Query{}, func([]Document) { count++ })
	require.NoError(t, err)
	require.Equal(t, 1, count)

	sub.Unsubscribe()
	sub.Unsubscribe() // safe to repeat

	require.NoError(t, m.Set(ctx, "users/alice", map[string]any{"name": "Alice"}))
	assert.Equal(t, 1, count)
}

func TestSubscriberIsolationBetweenCollections(t *testing.T) {
	m := NewMemoryStore()
	ctx := context.Background()

	var count int
	sub, err := m.Subscribe(ctx, "channels/c1/threads", Query{}, func([]Document) { count++ })
	require.NoError(t, err)
	defer sub.Unsubscribe()
	require.Equal(t, 1, count)

	require.NoError(t, m.Set(ctx, "channels/c2/threads/t1", map[string]any{"message": "other channel"}))
	assert.Equal(t, 1, count)

	require.NoError(t, m.Set(ctx, "channels/c1/threads/t1", map[string]any{"message": "mine"}))
	assert.Equal(t, 2, count)
}

func TestSnapshotsAreDeepCopies(t *testing.T) {
	m := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, m.Set(ctx, "msgs/m1", map[string]any{"reactedBy": []any{"alice"}}))

	doc, err := m.Get(ctx, "msgs/m1")
	require.NoError(t, err)
	doc.Data["reactedBy"].([]any)[0] = "mallory"

	fresh, err := m.Get(ctx, "msgs/m1")
	require.NoError(t, err)
	assert.Equal(t, "alice", fresh.Data["reactedBy"].([]any)[0])
}

func TestSplitPath(t *testing.T) {
	collection, id := splitPath("channels/c1/threads/t1")
	assert.Equal(t, "channels/c1/threads", collection)
	assert.Equal(t, "t1", id)

	collection, id = splitPath("solo")
	assert.Empty(t, collection)
	assert.Equal(t, "solo", id)
}
