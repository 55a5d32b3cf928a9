package chat

import (
	"context"
	"sync"
	"time"

	"ripple-chat/internal/docstore"
	"ripple-chat/pkg/logger"
)

// ThreadStats summarizes a thread's replies for the channel view: how many
// there are and when the latest one arrived.
type ThreadStats struct {
	ThreadID    string `json:"threadId"`
	Count       int    `json:"count"`
	LastReplyAt string `json:"lastReplyAt,omitempty"` // HH:MM of the latest reply
}

// ReplyLabel returns the reply-count label, singular only for exactly one.
func (s ThreadStats) ReplyLabel() string {
	if s.Count == 1 {
		return "Antwort"
	}
	return "Antworten"
}

// ThreadStatsWatcher follows one thread's reply sub-collection and keeps its
// summary current.
type ThreadStatsWatcher struct {
	store docstore.Store
	log   *logger.Logger

	mu    sync.RWMutex
	key   string
	stats ThreadStats
	sub   docstore.Subscription
	loc   *time.Location

	listeners listenerSet[ThreadStats]
}

func NewThreadStatsWatcher(store docstore.Store, log *logger.Logger) *ThreadStatsWatcher {
	return &ThreadStatsWatcher{store: store, log: log, loc: time.Local}
}

// Watch retargets the watcher at one thread's replies, disposing any prior
// subscription first.
func (w *ThreadStatsWatcher) Watch(ctx context.Context, channelID, threadID string) error {
	collection := docstore.ThreadMessages(channelID, threadID)

	w.mu.Lock()
	if w.sub != nil {
		w.sub.Unsubscribe()
		w.sub = nil
	}
	w.key = collection
	w.stats = ThreadStats{ThreadID: threadID}
	w.mu.Unlock()

	query := docstore.Query{OrderBy: "creationDate", Descending: true}
	sub, err := w.store.Subscribe(ctx, collection, query, func(docs []docstore.Document) {
		w.rebuild(collection, threadID, docs)
	})
	if err != nil {
		w.log.Errorf("thread stats: subscribe %s failed: %v", collection, err)
		return err
	}

	w.mu.Lock()
	w.sub = sub
	w.mu.Unlock()
	return nil
}

func (w *ThreadStatsWatcher) Close() {
	w.mu.Lock()
	sub := w.sub
	w.sub = nil
	w.mu.Unlock()
	if sub != nil {
		sub.Unsubscribe()
	}
}

func (w *ThreadStatsWatcher) Stats() ThreadStats {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.stats
}

func (w *ThreadStatsWatcher) OnUpdate(fn func(ThreadStats)) func() {
	return w.listeners.add(fn)
}

func (w *ThreadStatsWatcher) rebuild(key, threadID string, docs []docstore.Document) {
	stats := ThreadStats{ThreadID: threadID, Count: len(docs)}
	if len(docs) > 0 {
		// Descending order: the first document is the latest reply.
		latest := messageFromDoc(docs[0])
		stats.LastReplyAt = formatClock(latest.CreationDate, w.loc)
	}

	w.mu.Lock()
	if w.key != key {
		w.mu.Unlock()
		return
	}
	w.stats = stats
	w.mu.Unlock()

	w.listeners.notify(stats)
}
