package session

import (
	"context"
	"testing"
	"time"

	"ripple-chat/internal/chat"
	"ripple-chat/internal/docstore"
	"ripple-chat/internal/view"
	"ripple-chat/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine(t *testing.T, store docstore.Store, viewerID string) *Engine {
	t.Helper()
	e := NewEngine(store, logger.NewNop(), viewerID)
	require.NoError(t, e.Start(context.Background()))
	t.Cleanup(e.Close)
	return e
}

// drainEvents empties the buffered event stream. The memory store notifies
// synchronously, so everything an operation caused is already queued when it
// returns.
func drainEvents(e *Engine) []Event {
	var out []Event
	for {
		select {
		case ev, ok := <-e.Events():
			if !ok {
				return out
			}
			out = append(out, ev)
		default:
			return out
		}
	}
}

func eventsOfType(events []Event, eventType string) []Event {
	var out []Event
	for _, ev := range events {
		if ev.Type == eventType {
			out = append(out, ev)
		}
	}
	return out
}

func seedUser(t *testing.T, store docstore.Store, id, name string) {
	t.Helper()
	err := store.Set(context.Background(), docstore.UserPath(id), map[string]any{
		"name": name, "imgUrl": "", "isOnline": false,
	})
	require.NoError(t, err)
}

func seedChannel(t *testing.T, store docstore.Store, name string, members []string) string {
	t.Helper()
	svc := chat.NewChannelService(store, logger.NewNop())
	id, err := svc.Create(context.Background(), chat.CreateInput{
		Name: name, CreatedBy: members[0], Members: members,
	})
	require.NoError(t, err)
	return id
}

func seedThreadRoot(t *testing.T, store docstore.Store, channelID, threadID, author, text string, at time.Time) {
	t.Helper()
	path := docstore.Join(docstore.ChannelThreads(channelID), threadID)
	err := store.Set(context.Background(), path, map[string]any{
		"messageId": threadID, "createdBy": author, "creationDate": at.UnixMilli(), "message": text,
	})
	require.NoError(t, err)
}

func seedReply(t *testing.T, store docstore.Store, channelID, threadID, id, author, text string, at time.Time) {
	t.Helper()
	path := docstore.Join(docstore.ThreadMessages(channelID, threadID), id)
	err := store.Set(context.Background(), path, map[string]any{
		"messageId": id, "createdBy": author, "creationDate": at.UnixMilli(), "message": text,
	})
	require.NoError(t, err)
}

func TestStartEmitsInitialState(t *testing.T) {
	store := docstore.NewMemoryStore()
	seedUser(t, store, "alice", "Alice")
	seedChannel(t, store, "general", []string{"alice"})

	e := newTestEngine(t, store, "alice")
	events := drainEvents(e)

	visibility := eventsOfType(events, EventVisibility)
	require.NotEmpty(t, visibility)
	_, ok := visibility[len(visibility)-1].Payload.(view.VisibilityFlags)
	assert.True(t, ok)

	channels := eventsOfType(events, EventChannels)
	require.NotEmpty(t, channels)
	list, ok := channels[len(channels)-1].Payload.([]chat.Channel)
	require.True(t, ok)
	require.Len(t, list, 1)
	assert.Equal(t, "general", list[0].Name)

	opens := eventsOfType(events, EventThreadOpen)
	require.NotEmpty(t, opens)
	assert.Equal(t, false, opens[len(opens)-1].Payload)
}

func TestDirectoryChangeEmitsUsers(t *testing.T) {
	store := docstore.NewMemoryStore()
	seedUser(t, store, "alice", "Alice")

	e := newTestEngine(t, store, "alice")
	drainEvents(e)

	seedUser(t, store, "bob", "Bob")

	events := eventsOfType(drainEvents(e), EventUsers)
	require.NotEmpty(t, events)
	users, ok := events[len(events)-1].Payload.([]chat.User)
	require.True(t, ok)
	require.Len(t, users, 2)
	// Viewer stays pinned first.
	assert.Equal(t, "alice", users[0].ID)
}

func TestSelectChannelEmitsSelectionAndProjection(t *testing.T) {
	store := docstore.NewMemoryStore()
	seedUser(t, store, "alice", "Alice")
	seedUser(t, store, "bob", "Bob")
	channelID := seedChannel(t, store, "general", []string{"alice", "bob"})
	seedThreadRoot(t, store, channelID, "t1", "bob", "hello", time.Date(2024, time.March, 1, 9, 0, 0, 0, time.UTC))

	e := newTestEngine(t, store, "alice")
	drainEvents(e)

	e.SelectChannel(channelID)
	events := drainEvents(e)

	selections := eventsOfType(events, EventSelection)
	require.NotEmpty(t, selections)
	sel, ok := selections[len(selections)-1].Payload.(chat.Selection)
	require.True(t, ok)
	assert.Equal(t, channelID, sel.ChannelID)
	assert.Empty(t, sel.DMUserID)

	lists := eventsOfType(events, EventMainList)
	require.NotEmpty(t, lists)
	projection, ok := lists[len(lists)-1].Payload.(chat.Projection)
	require.True(t, ok)
	require.Len(t, projection.Entries, 1)
	assert.Equal(t, "hello", projection.Entries[0].Message)
	assert.Equal(t, "Bob", projection.Entries[0].CreatedBy)
}

func TestSelectDMUserEmitsSelectionAndProjection(t *testing.T) {
	store := docstore.NewMemoryStore()
	seedUser(t, store, "alice", "Alice")
	seedUser(t, store, "bob", "Bob")

	ts := time.Date(2024, time.March, 1, 9, 0, 0, 0, time.UTC).UnixMilli()
	path := docstore.Join(docstore.DirectMessages("alice", "bob"), "m1")
	require.NoError(t, store.Set(context.Background(), path, map[string]any{
		"messageId": "m1", "createdBy": "bob", "creationDate": ts, "message": "hi alice",
	}))

	e := newTestEngine(t, store, "alice")
	drainEvents(e)

	e.SelectDMUser("bob")
	events := drainEvents(e)

	selections := eventsOfType(events, EventSelection)
	require.NotEmpty(t, selections)
	sel := selections[len(selections)-1].Payload.(chat.Selection)
	assert.Equal(t, "bob", sel.DMUserID)
	assert.Empty(t, sel.ChannelID)

	lists := eventsOfType(events, EventMainList)
	require.NotEmpty(t, lists)
	projection := lists[len(lists)-1].Payload.(chat.Projection)
	require.Len(t, projection.Entries, 1)
	assert.Equal(t, "hi alice", projection.Entries[0].Message)
}

func TestOpenThreadCompletesInTwoPhases(t *testing.T) {
	store := docstore.NewMemoryStore()
	seedUser(t, store, "alice", "Alice")
	seedUser(t, store, "bob", "Bob")
	channelID := seedChannel(t, store, "general", []string{"alice", "bob"})
	at := time.Date(2024, time.March, 1, 9, 0, 0, 0, time.UTC)
	seedThreadRoot(t, store, channelID, "t1", "bob", "root", at)
	seedReply(t, store, channelID, "t1", "r1", "alice", "first reply", at.Add(time.Minute))

	e := newTestEngine(t, store, "alice")
	e.SelectChannel(channelID)
	drainEvents(e)

	e.OpenThread("t1")
	events := drainEvents(e)

	var opens []bool
	for _, ev := range eventsOfType(events, EventThreadOpen) {
		opens = append(opens, ev.Payload.(bool))
	}
	assert.Equal(t, []bool{false, true}, opens)

	lists := eventsOfType(events, EventThreadList)
	require.NotEmpty(t, lists)
	projection := lists[len(lists)-1].Payload.(chat.Projection)
	require.Len(t, projection.Entries, 1)
	assert.Equal(t, "first reply", projection.Entries[0].Message)

	statsEvents := eventsOfType(events, EventThreadStats)
	require.NotEmpty(t, statsEvents)
	stats := statsEvents[len(statsEvents)-1].Payload.(chat.ThreadStats)
	assert.Equal(t, "t1", stats.ThreadID)
	assert.Equal(t, 1, stats.Count)

	assert.True(t, e.Selection.ThreadOpen())
}

func TestSelectUnknownChannelEmitsError(t *testing.T) {
	store := docstore.NewMemoryStore()
	seedUser(t, store, "alice", "Alice")

	e := newTestEngine(t, store, "alice")
	drainEvents(e)

	e.SelectChannel("ghost")

	errs := eventsOfType(drainEvents(e), EventError)
	require.NotEmpty(t, errs)
	payload, ok := errs[0].Payload.(ErrorPayload)
	require.True(t, ok)
	assert.Equal(t, "selectChannel", payload.Op)
	assert.NotEmpty(t, payload.Message)
}

func TestResizeEmitsScreenSize(t *testing.T) {
	store := docstore.NewMemoryStore()
	seedUser(t, store, "alice", "Alice")

	e := newTestEngine(t, store, "alice")
	drainEvents(e)

	e.Resize(400)

	sizes := eventsOfType(drainEvents(e), EventScreenSize)
	require.NotEmpty(t, sizes)
	assert.Equal(t, "extraSmall", sizes[len(sizes)-1].Payload)
}

func TestToggleReactionWithoutWatchedMessageEmitsError(t *testing.T) {
	store := docstore.NewMemoryStore()
	seedUser(t, store, "alice", "Alice")

	e := newTestEngine(t, store, "alice")
	drainEvents(e)

	e.ToggleReaction("🔥")

	errs := eventsOfType(drainEvents(e), EventError)
	require.NotEmpty(t, errs)
	assert.Equal(t, "toggleReaction", errs[0].Payload.(ErrorPayload).Op)
}

func TestCloseIsIdempotentAndEndsStream(t *testing.T) {
	store := docstore.NewMemoryStore()
	seedUser(t, store, "alice", "Alice")

	e := NewEngine(store, logger.NewNop(), "alice")
	require.NoError(t, e.Start(context.Background()))

	e.Close()
	e.Close()

	for {
		if _, ok := <-e.Events(); !ok {
			break
		}
	}
}

func TestStartEmitsDMPartners(t *testing.T) {
	store := docstore.NewMemoryStore()
	seedUser(t, store, "alice", "Alice")
	seedUser(t, store, "bob", "Bob")
	ctx := context.Background()
	require.NoError(t, store.Set(ctx, docstore.Join(docstore.DirectMessagePartners("alice"), "bob"), map[string]any{"userId": "bob"}))

	e := newTestEngine(t, store, "alice")
	events := drainEvents(e)

	partners := eventsOfType(events, EventDMPartners)
	require.NotEmpty(t, partners)
	ids, ok := partners[len(partners)-1].Payload.([]string)
	require.True(t, ok)
	assert.Equal(t, []string{"bob"}, ids)
}

func TestWatchReactionsInDMNeedsMessageID(t *testing.T) {
	store := docstore.NewMemoryStore()
	seedUser(t, store, "alice", "Alice")
	seedUser(t, store, "bob", "Bob")

	e := newTestEngine(t, store, "alice")
	e.SelectDMUser("bob")
	drainEvents(e)

	e.WatchMessageReactions("", "")

	errs := eventsOfType(drainEvents(e), EventError)
	require.NotEmpty(t, errs)
	assert.Equal(t, "watchReactions", errs[0].Payload.(ErrorPayload).Op)
}
