package chat

import (
	"context"
	"fmt"
	"sync"

	"ripple-chat/internal/docstore"
	ripple_errors "ripple-chat/pkg/errors"
	"ripple-chat/pkg/logger"
)

// ReactionAggregator maintains exactly one record per distinct emoji for a
// message's reaction sub-collection, mirroring toggles to the external
// store.
//
// The persisted update is a plain read-modify-write: two clients toggling
// the same emoji at the same time can lose an update. The store contract
// offers no atomic counter, so the limitation stands; the next snapshot
// re-synchronizes the local table either way.
type ReactionAggregator struct {
	store docstore.Store
	dir   *UserDirectory
	log   *logger.Logger

	mu        sync.RWMutex
	path      string
	viewerID  string
	reactions []Reaction
	sub       docstore.Subscription

	listeners listenerSet[[]Reaction]
}

func NewReactionAggregator(store docstore.Store, dir *UserDirectory, log *logger.Logger) *ReactionAggregator {
	return &ReactionAggregator{store: store, dir: dir, log: log}
}

// SetScope retargets the aggregator at a reactions collection, disposing the
// previous subscription first.
func (a *ReactionAggregator) SetScope(ctx context.Context, reactionsPath, viewerID string) error {
	a.mu.Lock()
	if a.sub != nil {
		a.sub.Unsubscribe()
		a.sub = nil
	}
	a.path = reactionsPath
	a.viewerID = viewerID
	a.reactions = nil
	a.mu.Unlock()

	sub, err := a.store.Subscribe(ctx, reactionsPath, docstore.Query{}, func(docs []docstore.Document) {
		a.rebuild(reactionsPath, docs)
	})
	if err != nil {
		a.log.Errorf("reactions: subscribe %s failed: %v", reactionsPath, err)
		return err
	}

	a.mu.Lock()
	a.sub = sub
	a.mu.Unlock()
	return nil
}

func (a *ReactionAggregator) Close() {
	a.mu.Lock()
	sub := a.sub
	a.sub = nil
	a.mu.Unlock()
	if sub != nil {
		sub.Unsubscribe()
	}
}

func (a *ReactionAggregator) Reactions() []Reaction {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return append([]Reaction(nil), a.reactions...)
}

func (a *ReactionAggregator) OnUpdate(fn func([]Reaction)) func() {
	return a.listeners.add(fn)
}

func (a *ReactionAggregator) rebuild(path string, docs []docstore.Document) {
	a.mu.Lock()
	if a.path != path {
		a.mu.Unlock()
		return
	}
	viewerID := a.viewerID
	a.mu.Unlock()

	reactions := make([]Reaction, 0, len(docs))
	for _, doc := range docs {
		r := reactionFromDoc(doc, a.dir.DisplayName)
		pinViewerFirst(&r, viewerID)
		reactions = append(reactions, r)
	}

	a.mu.Lock()
	if a.path != path {
		a.mu.Unlock()
		return
	}
	a.reactions = reactions
	a.mu.Unlock()

	a.listeners.notify(reactions)
}

// Toggle applies one reaction toggle by userID for emoji:
//   - no record for the emoji: create one with a single reactor;
//   - the user already reacted and others did too: remove the user;
//   - the user is the sole reactor: delete the record entirely;
//   - the record exists without the user: append the user.
//
// The persisted count is always written as the reactor-set size.
func (a *ReactionAggregator) Toggle(ctx context.Context, emoji, userID string) error {
	a.mu.RLock()
	path := a.path
	var existing *Reaction
	for i := range a.reactions {
		if a.reactions[i].Emoji == emoji {
			r := a.reactions[i]
			existing = &r
			break
		}
	}
	a.mu.RUnlock()

	if path == "" {
		return fmt.Errorf("toggle %q: %w", emoji, ripple_errors.ErrScopeNotFound)
	}

	if existing == nil {
		_, err := a.store.Add(ctx, path, map[string]any{
			"count":     1,
			"reaction":  emoji,
			"reactedBy": []any{userID},
		})
		return err
	}

	idx := -1
	for i, reactor := range existing.ReactedBy {
		if reactor.UserID == userID {
			idx = i
			break
		}
	}

	docPath := docstore.Join(path, existing.ID)
	if idx >= 0 {
		if len(existing.ReactedBy) > 1 {
			remaining := make([]any, 0, len(existing.ReactedBy)-1)
			for i, reactor := range existing.ReactedBy {
				if i != idx {
					remaining = append(remaining, reactor.UserID)
				}
			}
			return a.store.Update(ctx, docPath, map[string]any{
				"count":     len(remaining),
				"reaction":  emoji,
				"reactedBy": remaining,
			})
		}
		return a.store.Delete(ctx, docPath)
	}

	ids := make([]any, 0, len(existing.ReactedBy)+1)
	for _, reactor := range existing.ReactedBy {
		ids = append(ids, reactor.UserID)
	}
	ids = append(ids, userID)
	return a.store.Update(ctx, docPath, map[string]any{
		"count":     len(ids),
		"reaction":  emoji,
		"reactedBy": ids,
	})
}

// pinViewerFirst moves the viewer to the front of the reactor list; the rest
// keep arrival order. Purely cosmetic, re-applied on every refresh.
func pinViewerFirst(r *Reaction, viewerID string) {
	if viewerID == "" {
		return
	}
	for i, reactor := range r.ReactedBy {
		if reactor.UserID == viewerID && i > 0 {
			pinned := make([]Reactor, 0, len(r.ReactedBy))
			pinned = append(pinned, reactor)
			pinned = append(pinned, r.ReactedBy[:i]...)
			pinned = append(pinned, r.ReactedBy[i+1:]...)
			r.ReactedBy = pinned
			return
		}
	}
}
