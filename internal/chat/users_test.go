package chat

import (
	"context"
	"testing"

	"ripple-chat/internal/docstore"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDirectoryLookupAndDisplayName(t *testing.T) {
	store := docstore.NewMemoryStore()
	dir := newTestDirectory(t, store, map[string]string{"alice": "Alice", "bob": "Bob"})

	u, ok := dir.Lookup("alice")
	require.True(t, ok)
	assert.Equal(t, "Alice", u.Name)

	_, ok = dir.Lookup("ghost")
	assert.False(t, ok)

	assert.Equal(t, "Bob", dir.DisplayName("bob"))
	assert.Empty(t, dir.DisplayName("ghost"))
}

func TestDirectoryFollowsLiveChanges(t *testing.T) {
	store := docstore.NewMemoryStore()
	dir := newTestDirectory(t, store, map[string]string{"alice": "Alice"})
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, docstore.UserPath("carol"), map[string]any{"name": "Carol"}))
	u, ok := dir.Lookup("carol")
	require.True(t, ok)
	assert.Equal(t, "Carol", u.Name)

	require.NoError(t, store.Update(ctx, docstore.UserPath("carol"), map[string]any{"isOnline": true}))
	u, _ = dir.Lookup("carol")
	assert.True(t, u.IsOnline)
}

func TestDirectoryPinsViewerFirst(t *testing.T) {
	store := docstore.NewMemoryStore()
	dir := newTestDirectory(t, store, map[string]string{"alice": "Alice", "bob": "Bob", "carol": "Carol"})

	dir.SetViewer("carol")

	users := dir.Users()
	require.Len(t, users, 3)
	assert.Equal(t, "carol", users[0].ID)

	// A fresh snapshot keeps the pin.
	require.NoError(t, store.Set(context.Background(), docstore.UserPath("dave"), map[string]any{"name": "Dave"}))
	users = dir.Users()
	require.Len(t, users, 4)
	assert.Equal(t, "carol", users[0].ID)
}

func TestDMPartnerIDs(t *testing.T) {
	store := docstore.NewMemoryStore()
	dir := newTestDirectory(t, store, map[string]string{"alice": "Alice"})
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, docstore.Join(docstore.DirectMessagePartners("alice"), "bob"), map[string]any{}))
	require.NoError(t, store.Set(ctx, docstore.Join(docstore.DirectMessagePartners("alice"), "carol"), map[string]any{}))

	ids, err := dir.DMPartnerIDs(ctx, "alice")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"bob", "carol"}, ids)
}
