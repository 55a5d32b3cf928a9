package chat

import (
	"context"
	"sort"
	"sync"
	"time"

	"ripple-chat/internal/docstore"
	"ripple-chat/pkg/logger"
)

// projectionLimit caps a projection at the most recent entries by creation
// time, matching the source query limit.
const projectionLimit = 20

// Scope names the external collection a projector mirrors: a channel's
// thread roots, one thread's replies, or a DM conversation.
type Scope struct {
	ChannelID string
	ThreadID  string
	ViewerID  string
	DMUserID  string
}

func (sc Scope) collection() string {
	if sc.ChannelID != "" {
		if sc.ThreadID != "" {
			return docstore.ThreadMessages(sc.ChannelID, sc.ThreadID)
		}
		return docstore.ChannelThreads(sc.ChannelID)
	}
	return docstore.DirectMessages(sc.ViewerID, sc.DMUserID)
}

func (sc Scope) isChannel() bool {
	return sc.ChannelID != ""
}

// Entry is one projected message, decorated for display.
type Entry struct {
	ThreadID      string `json:"threadId"`
	Timestamp     int64  `json:"timestamp"`
	DateString    string `json:"dateString"`
	TimeSeparator string `json:"timeSeparatorDate"`
	Time          string `json:"time"`
	Message       string `json:"message"`
	UserID        string `json:"userId"`
	CreatedBy     string `json:"createdBy"`
	AuthorImgURL  string `json:"imgUrl"`
	ImageURL      string `json:"imageUrl,omitempty"`
}

// DateBucket is one calendar-day separator, de-duplicated by DateString.
type DateBucket struct {
	DateString    string `json:"dateString"`
	TimeSeparator string `json:"timeSeparatorDate"`
	Timestamp     int64  `json:"timestamp"`
}

// Projection is what a snapshot rebuild produces: entries and their day
// buckets, both ascending by creation time.
type Projection struct {
	Entries []Entry      `json:"entries"`
	Buckets []DateBucket `json:"buckets"`
}

// ThreadListProjector mirrors one scoped live collection as a sorted,
// date-bucketed projection. Every delivered batch is treated as a full
// authoritative replacement; the projection is rebuilt from scratch.
type ThreadListProjector struct {
	store docstore.Store
	dir   *UserDirectory
	log   *logger.Logger

	mu        sync.RWMutex
	scope     Scope
	memberIDs map[string]struct{}
	current   Projection
	sub       docstore.Subscription
	onReady   func()

	listeners listenerSet[Projection]

	now func() time.Time
	loc *time.Location
}

func NewThreadListProjector(store docstore.Store, dir *UserDirectory, log *logger.Logger) *ThreadListProjector {
	return &ThreadListProjector{
		store: store,
		dir:   dir,
		log:   log,
		now:   time.Now,
		loc:   time.Local,
	}
}

// SetScope retargets the projector. The previous subscription is disposed
// before the new one is created, so a late snapshot from the old scope can
// never clobber the new projection. memberIDs is the channel roster filter
// for author resolution; it is ignored for DM scopes. onReady, if non-nil,
// fires once after the first snapshot of the new scope has been projected.
func (p *ThreadListProjector) SetScope(ctx context.Context, scope Scope, memberIDs []string, onReady func()) error {
	p.mu.Lock()
	if p.sub != nil {
		p.sub.Unsubscribe()
		p.sub = nil
	}
	p.scope = scope
	p.memberIDs = nil
	if len(memberIDs) > 0 {
		p.memberIDs = make(map[string]struct{}, len(memberIDs))
		for _, id := range memberIDs {
			p.memberIDs[id] = struct{}{}
		}
	}
	p.current = Projection{}
	p.onReady = onReady
	p.mu.Unlock()

	query := docstore.Query{OrderBy: "creationDate", Limit: projectionLimit}
	sub, err := p.store.Subscribe(ctx, scope.collection(), query, func(docs []docstore.Document) {
		p.rebuild(scope, docs)
	})
	if err != nil {
		p.log.Errorf("projector: subscribe %s failed: %v", scope.collection(), err)
		return err
	}

	p.mu.Lock()
	p.sub = sub
	p.mu.Unlock()
	return nil
}

// SetMembers replaces the channel roster filter, for when the member list of
// the active channel changes while the scope stays put.
func (p *ThreadListProjector) SetMembers(memberIDs []string) {
	p.mu.Lock()
	p.memberIDs = make(map[string]struct{}, len(memberIDs))
	for _, id := range memberIDs {
		p.memberIDs[id] = struct{}{}
	}
	p.mu.Unlock()
}

// Close disposes the live subscription.
func (p *ThreadListProjector) Close() {
	p.mu.Lock()
	sub := p.sub
	p.sub = nil
	p.mu.Unlock()
	if sub != nil {
		sub.Unsubscribe()
	}
}

func (p *ThreadListProjector) Current() Projection {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.current
}

func (p *ThreadListProjector) Entries() []Entry {
	return p.Current().Entries
}

func (p *ThreadListProjector) Buckets() []DateBucket {
	return p.Current().Buckets
}

func (p *ThreadListProjector) OnUpdate(fn func(Projection)) func() {
	return p.listeners.add(fn)
}

func (p *ThreadListProjector) rebuild(scope Scope, docs []docstore.Document) {
	p.mu.Lock()
	if p.scope != scope {
		// Stale delivery from a scope that has already been switched away.
		p.mu.Unlock()
		return
	}
	members := p.memberIDs
	onReady := p.onReady
	p.onReady = nil
	now := p.now()
	loc := p.loc
	p.mu.Unlock()

	messages := make([]Message, 0, len(docs))
	for _, doc := range docs {
		messages = append(messages, messageFromDoc(doc))
	}
	sort.Slice(messages, func(i, j int) bool {
		return messages[i].CreationDate < messages[j].CreationDate
	})

	entries := make([]Entry, 0, len(messages))
	buckets := make([]DateBucket, 0, 4)
	seenDates := make(map[string]struct{}, 4)
	for _, msg := range messages {
		name, imgURL := p.resolveAuthor(scope, members, msg.CreatedBy)
		dateString := formatDate(msg.CreationDate, loc)
		separator := formatSeparator(msg.CreationDate, now, loc)

		entries = append(entries, Entry{
			ThreadID:      msg.ID,
			Timestamp:     msg.CreationDate,
			DateString:    dateString,
			TimeSeparator: separator,
			Time:          formatClock(msg.CreationDate, loc),
			Message:       msg.Text,
			UserID:        msg.CreatedBy,
			CreatedBy:     name,
			AuthorImgURL:  imgURL,
			ImageURL:      msg.ImageURL,
		})

		if _, seen := seenDates[dateString]; !seen {
			seenDates[dateString] = struct{}{}
			buckets = append(buckets, DateBucket{
				DateString:    dateString,
				TimeSeparator: separator,
				Timestamp:     msg.CreationDate,
			})
		}
	}
	sort.Slice(buckets, func(i, j int) bool {
		return buckets[i].Timestamp < buckets[j].Timestamp
	})

	projection := Projection{Entries: entries, Buckets: buckets}

	p.mu.Lock()
	if p.scope != scope {
		p.mu.Unlock()
		return
	}
	p.current = projection
	p.mu.Unlock()

	p.listeners.notify(projection)
	if onReady != nil {
		onReady()
	}
}

// resolveAuthor looks the author up in the channel roster for channel scopes
// (a miss resolves to an empty name, not a fallback label), and in the
// cached viewer/counterpart profiles for DM scopes.
func (p *ThreadListProjector) resolveAuthor(scope Scope, members map[string]struct{}, userID string) (name, imgURL string) {
	if scope.isChannel() {
		if members != nil {
			if _, ok := members[userID]; !ok {
				return "", ""
			}
		}
		u, ok := p.dir.Lookup(userID)
		if !ok {
			return "", ""
		}
		return u.Name, u.ImgURL
	}

	u, ok := p.dir.Lookup(userID)
	if !ok {
		return "", ""
	}
	return u.Name, u.ImgURL
}
