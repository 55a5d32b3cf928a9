package chat

import (
	"context"
	"testing"
	"time"

	"ripple-chat/internal/docstore"
	ripple_errors "ripple-chat/pkg/errors"
	"ripple-chat/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMessageService() (*MessageService, *docstore.MemoryStore) {
	store := docstore.NewMemoryStore()
	svc := NewMessageService(store, logger.NewNop())
	svc.now = func() time.Time { return time.Date(2024, time.March, 1, 10, 0, 0, 0, time.UTC) }
	return svc, store
}

func TestSendChannelMessage(t *testing.T) {
	svc, store := newTestMessageService()
	ctx := context.Background()

	id, err := svc.SendChannelMessage(ctx, "c1", Outgoing{CreatedBy: "alice", Text: "hello"})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	doc, err := store.Get(ctx, docstore.Join(docstore.ChannelThreads("c1"), id))
	require.NoError(t, err)
	assert.Equal(t, id, doc.Data["messageId"])
	assert.Equal(t, "alice", doc.Data["createdBy"])
	assert.Equal(t, "hello", doc.Data["message"])
	assert.Equal(t, svc.now().UnixMilli(), doc.Data["creationDate"])
	_, hasImage := doc.Data["imageUrl"]
	assert.False(t, hasImage)
}

func TestSendRejectsEmptyContent(t *testing.T) {
	svc, _ := newTestMessageService()
	ctx := context.Background()

	_, err := svc.SendChannelMessage(ctx, "c1", Outgoing{CreatedBy: "alice", Text: "   "})
	assert.ErrorIs(t, err, ripple_errors.ErrInvalidInput)

	_, err = svc.SendChannelMessage(ctx, "c1", Outgoing{Text: "no author"})
	assert.ErrorIs(t, err, ripple_errors.ErrInvalidInput)

	// An image alone is enough.
	_, err = svc.SendChannelMessage(ctx, "c1", Outgoing{CreatedBy: "alice", ImageURL: "attachments/a.png"})
	assert.NoError(t, err)
}

func TestSendThreadReply(t *testing.T) {
	svc, store := newTestMessageService()
	ctx := context.Background()

	id, err := svc.SendThreadReply(ctx, "c1", "t1", Outgoing{CreatedBy: "bob", Text: "reply"})
	require.NoError(t, err)

	doc, err := store.Get(ctx, docstore.Join(docstore.ThreadMessages("c1", "t1"), id))
	require.NoError(t, err)
	assert.Equal(t, "reply", doc.Data["message"])
}

func TestSendDirectMessageWritesBothSides(t *testing.T) {
	svc, store := newTestMessageService()
	ctx := context.Background()

	id, err := svc.SendDirectMessage(ctx, "alice", "bob", Outgoing{CreatedBy: "alice", Text: "hi"})
	require.NoError(t, err)

	sender, err := store.Get(ctx, docstore.Join(docstore.DirectMessages("alice", "bob"), id))
	require.NoError(t, err)
	recipient, err := store.Get(ctx, docstore.Join(docstore.DirectMessages("bob", "alice"), id))
	require.NoError(t, err)

	assert.Equal(t, true, sender.Data["yourMessage"])
	assert.Equal(t, false, recipient.Data["yourMessage"])
	// Same id and timestamp on both copies.
	assert.Equal(t, sender.Data["messageId"], recipient.Data["messageId"])
	assert.Equal(t, sender.Data["creationDate"], recipient.Data["creationDate"])
	assert.Equal(t, "hi", recipient.Data["message"])

	// Both sides gained a conversation document for the counterpart.
	_, err = store.Get(ctx, docstore.Join(docstore.DirectMessagePartners("alice"), "bob"))
	assert.NoError(t, err)
	_, err = store.Get(ctx, docstore.Join(docstore.DirectMessagePartners("bob"), "alice"))
	assert.NoError(t, err)
}

func TestSendDirectMessageToSelfIsRejected(t *testing.T) {
	svc, _ := newTestMessageService()

	_, err := svc.SendDirectMessage(context.Background(), "alice", "alice", Outgoing{CreatedBy: "alice", Text: "hi"})
	assert.ErrorIs(t, err, ripple_errors.ErrInvalidInput)
}

func TestEditMessage(t *testing.T) {
	svc, store := newTestMessageService()
	ctx := context.Background()

	id, err := svc.SendChannelMessage(ctx, "c1", Outgoing{CreatedBy: "alice", Text: "first"})
	require.NoError(t, err)

	path := docstore.Join(docstore.ChannelThreads("c1"), id)
	require.NoError(t, svc.Edit(ctx, path, "edited"))

	doc, err := store.Get(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, "edited", doc.Data["message"])
	// The rest of the document survives the edit.
	assert.Equal(t, "alice", doc.Data["createdBy"])

	assert.ErrorIs(t, svc.Edit(ctx, path, "  "), ripple_errors.ErrInvalidInput)
}

func TestDeleteMessage(t *testing.T) {
	svc, store := newTestMessageService()
	ctx := context.Background()

	id, err := svc.SendChannelMessage(ctx, "c1", Outgoing{CreatedBy: "alice", Text: "gone soon"})
	require.NoError(t, err)

	path := docstore.Join(docstore.ChannelThreads("c1"), id)
	require.NoError(t, svc.Delete(ctx, path))

	_, err = store.Get(ctx, path)
	assert.ErrorIs(t, err, ripple_errors.ErrNotFound)
}
