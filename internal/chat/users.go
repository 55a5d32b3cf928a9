package chat

import (
	"context"
	"sync"

	"ripple-chat/internal/docstore"
	"ripple-chat/pkg/logger"
)

// UserDirectory maintains a live view of the users collection. It is the
// roster source for author resolution: channel rosters and DM counterpart
// profiles are both resolved through it. The viewer is pinned to the front
// of the ordered list; everyone else keeps arrival order.
type UserDirectory struct {
	store docstore.Store
	log   *logger.Logger

	mu       sync.RWMutex
	viewerID string
	users    []User
	byID     map[string]User

	sub       docstore.Subscription
	listeners listenerSet[[]User]
}

func NewUserDirectory(store docstore.Store, log *logger.Logger) *UserDirectory {
	return &UserDirectory{
		store: store,
		log:   log,
		byID:  make(map[string]User),
	}
}

// Start subscribes to the users collection. Subsequent snapshots replace the
// directory wholesale.
func (d *UserDirectory) Start(ctx context.Context) error {
	sub, err := d.store.Subscribe(ctx, docstore.UsersCollection, docstore.Query{}, d.rebuild)
	if err != nil {
		return err
	}
	d.mu.Lock()
	d.sub = sub
	d.mu.Unlock()
	return nil
}

func (d *UserDirectory) Stop() {
	d.mu.Lock()
	sub := d.sub
	d.sub = nil
	d.mu.Unlock()
	if sub != nil {
		sub.Unsubscribe()
	}
}

// SetViewer pins userID to the front of the ordered user list.
func (d *UserDirectory) SetViewer(userID string) {
	d.mu.Lock()
	d.viewerID = userID
	sorted := sortViewerFirst(d.users, userID)
	d.users = sorted
	snapshot := append([]User(nil), sorted...)
	d.mu.Unlock()

	d.listeners.notify(snapshot)
}

func (d *UserDirectory) rebuild(docs []docstore.Document) {
	users := make([]User, 0, len(docs))
	byID := make(map[string]User, len(docs))
	for _, doc := range docs {
		u := userFromDoc(doc)
		users = append(users, u)
		byID[u.ID] = u
	}

	d.mu.Lock()
	users = sortViewerFirst(users, d.viewerID)
	d.users = users
	d.byID = byID
	snapshot := append([]User(nil), users...)
	d.mu.Unlock()

	d.listeners.notify(snapshot)
}

// Lookup resolves a user by id. The boolean reports whether the user is
// known to the directory yet.
func (d *UserDirectory) Lookup(userID string) (User, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	u, ok := d.byID[userID]
	return u, ok
}

// DisplayName resolves a user's display name, or "" if unknown.
func (d *UserDirectory) DisplayName(userID string) string {
	u, _ := d.Lookup(userID)
	return u.Name
}

func (d *UserDirectory) Users() []User {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return append([]User(nil), d.users...)
}

func (d *UserDirectory) OnChange(fn func([]User)) func() {
	return d.listeners.add(fn)
}

// DMPartnerIDs lists the ids of every user the viewer has a direct message
// conversation with.
func (d *UserDirectory) DMPartnerIDs(ctx context.Context, viewerID string) ([]string, error) {
	docs, err := d.store.List(ctx, docstore.DirectMessagePartners(viewerID), docstore.Query{})
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(docs))
	for _, doc := range docs {
		ids = append(ids, doc.ID)
	}
	return ids, nil
}

func sortViewerFirst(users []User, viewerID string) []User {
	if viewerID == "" {
		return users
	}
	for i, u := range users {
		if u.ID == viewerID {
			out := make([]User, 0, len(users))
			out = append(out, u)
			out = append(out, users[:i]...)
			out = append(out, users[i+1:]...)
			return out
		}
	}
	return users
}

// listenerSet is a tiny callback registry shared by the live components.
type listenerSet[T any] struct {
	mu     sync.Mutex
	nextID int
	fns    map[int]func(T)
}

func (l *listenerSet[T]) add(fn func(T)) func() {
	l.mu.Lock()
	if l.fns == nil {
		l.fns = make(map[int]func(T))
	}
	id := l.nextID
	l.nextID++
	l.fns[id] = fn
	l.mu.Unlock()

	return func() {
		l.mu.Lock()
		delete(l.fns, id)
		l.mu.Unlock()
	}
}

func (l *listenerSet[T]) notify(v T) {
	l.mu.Lock()
	fns := make([]func(T), 0, len(l.fns))
	for _, fn := range l.fns {
		fns = append(fns, fn)
	}
	l.mu.Unlock()

	for _, fn := range fns {
		fn(v)
	}
}
