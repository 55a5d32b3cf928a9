package session

import (
	"context"
	"sync"

	"ripple-chat/internal/chat"
	"ripple-chat/internal/docstore"
	"ripple-chat/internal/view"
	ripple_errors "ripple-chat/pkg/errors"
	"ripple-chat/pkg/logger"
)

// Event is one state change pushed to the connected client. Payload is the
// full new value for the event's concern, never a delta.
type Event struct {
	Type    string `json:"type"`
	Payload any    `json:"payload,omitempty"`
}

// Event types emitted by the engine.
const (
	EventVisibility  = "visibility"
	EventScreenSize  = "screenSize"
	EventSelection   = "selection"
	EventThreadOpen  = "threadOpen"
	EventMainList    = "mainList"
	EventThreadList  = "threadList"
	EventReactions   = "reactions"
	EventUsers       = "users"
	EventChannels    = "channels"
	EventDMPartners  = "dmPartners"
	EventThreadStats = "threadStats"
	EventError       = "error"
)

// ErrorPayload is the uniform error event body: the operation that failed
// and a human-readable message. Internals never leak past Message.
type ErrorPayload struct {
	Op      string `json:"op"`
	Message string `json:"message"`
}

// eventBuffer sizes the outbound event channel. A client that cannot keep
// up loses intermediate events; every event carries full state so the last
// one wins.
const eventBuffer = 64

// Engine is one signed-in user's reactive view-state core: screen
// classification, region visibility, conversation selection, the live
// message projections, and the reaction table, all composed over the shared
// document store.
type Engine struct {
	log      *logger.Logger
	store    docstore.Store
	viewerID string

	View      *view.Store
	Selection *chat.SelectionStore
	Directory *chat.UserDirectory
	Channels  *chat.ChannelService
	Messages  *chat.MessageService

	mainList   *chat.ThreadListProjector
	threadList *chat.ThreadListProjector
	reactions  *chat.ReactionAggregator
	stats      *chat.ThreadStatsWatcher

	mu      sync.Mutex
	ctx     context.Context
	cancel  context.CancelFunc
	cancels []func()
	closed  bool

	events chan Event
}

func NewEngine(store docstore.Store, log *logger.Logger, viewerID string) *Engine {
	dir := chat.NewUserDirectory(store, log)
	return &Engine{
		log:        log,
		store:      store,
		viewerID:   viewerID,
		View:       view.NewStore(),
		Selection:  chat.NewSelectionStore(),
		Directory:  dir,
		Channels:   chat.NewChannelService(store, log),
		Messages:   chat.NewMessageService(store, log),
		mainList:   chat.NewThreadListProjector(store, dir, log),
		threadList: chat.NewThreadListProjector(store, dir, log),
		reactions:  chat.NewReactionAggregator(store, dir, log),
		stats:      chat.NewThreadStatsWatcher(store, log),
		events:     make(chan Event, eventBuffer),
	}
}

// Events is the outbound stream consumed by the transport layer.
func (e *Engine) Events() <-chan Event {
	return e.events
}

// Start wires every live subscription. The directory snapshot arrives
// before Start returns, so author resolution works from the first
// projection on.
func (e *Engine) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	e.mu.Lock()
	e.ctx = ctx
	e.cancel = cancel
	e.mu.Unlock()

	if err := e.Directory.Start(ctx); err != nil {
		cancel()
		return err
	}
	e.Directory.SetViewer(e.viewerID)
	e.publishDMPartners(ctx)

	channelSub, err := e.Channels.Subscribe(ctx, func(channels []chat.Channel) {
		e.emit(EventChannels, channels)
	})
	if err != nil {
		e.Directory.Stop()
		cancel()
		return err
	}

	e.addCancel(channelSub.Unsubscribe)
	e.addCancel(e.Directory.OnChange(func(users []chat.User) {
		e.emit(EventUsers, users)
	}))
	e.addCancel(e.View.Subscribe(func(flags view.VisibilityFlags) {
		e.emit(EventVisibility, flags)
	}))
	e.addCancel(e.mainList.OnUpdate(func(p chat.Projection) {
		e.emit(EventMainList, p)
	}))
	e.addCancel(e.threadList.OnUpdate(func(p chat.Projection) {
		e.emit(EventThreadList, p)
	}))
	e.addCancel(e.reactions.OnUpdate(func(r []chat.Reaction) {
		e.emit(EventReactions, r)
	}))
	e.addCancel(e.stats.OnUpdate(func(s chat.ThreadStats) {
		e.emit(EventThreadStats, s)
	}))
	e.addCancel(e.Selection.OnChannelChange(e.onChannelChange))
	e.addCancel(e.Selection.OnDMUserChange(e.onDMUserChange))
	e.addCancel(e.Selection.OnThreadChange(e.onThreadChange))
	e.addCancel(e.Selection.OnThreadOpen(func(open bool) {
		if open {
			e.View.SetView(view.ViewSecondaryChat)
		}
		e.emit(EventThreadOpen, open)
	}))

	return nil
}

// Close tears the engine down: selection callbacks first, then the live
// projections, then the event stream.
func (e *Engine) Close() {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.closed = true
	cancels := e.cancels
	e.cancels = nil
	cancel := e.cancel
	e.mu.Unlock()

	for _, fn := range cancels {
		fn()
	}
	e.mainList.Close()
	e.threadList.Close()
	e.reactions.Close()
	e.stats.Close()
	e.Directory.Stop()
	if cancel != nil {
		cancel()
	}
	close(e.events)
}

// Resize feeds a viewport width change through classification and the
// visibility rules.
func (e *Engine) Resize(width int) {
	e.View.Resize(width)
	e.emit(EventScreenSize, e.View.ScreenSize().String())
}

// SetView applies a named view against the current breakpoint.
func (e *Engine) SetView(name view.ViewName) {
	e.View.SetView(name)
}

// SelectChannel activates a channel conversation.
func (e *Engine) SelectChannel(id string) {
	e.Selection.SelectChannel(id)
	e.View.SetView(view.ViewChannel)
}

// SelectDMUser activates a direct message conversation.
func (e *Engine) SelectDMUser(id string) {
	e.Selection.SelectDMUser(id)
	e.View.SetView(view.ViewDirectMessage)
}

// OpenThread starts the two-phase thread open: the reply projection and the
// reaction table retarget immediately, and the panel opens once the first
// snapshot of the new thread has landed.
func (e *Engine) OpenThread(threadID string) {
	e.Selection.OpenThread(threadID)
}

// CloseThread closes the thread panel synchronously.
func (e *Engine) CloseThread() {
	e.Selection.CloseThread()
	e.threadList.Close()
	e.stats.Close()
}

// WatchMessageReactions retargets the reaction table at one message.
// Thread roots pass an empty messageID.
func (e *Engine) WatchMessageReactions(threadID, messageID string) {
	ctx := e.context()
	sel := e.Selection.Selection()

	var path string
	switch {
	case sel.ChannelID != "" && messageID == "":
		path = docstore.ThreadReactions(sel.ChannelID, threadID)
	case sel.ChannelID != "":
		path = docstore.ThreadMessageReactions(sel.ChannelID, threadID, messageID)
	case sel.DMUserID != "" && messageID != "":
		path = docstore.DirectMessageReactions(e.viewerID, sel.DMUserID, messageID)
	default:
		// DM reactions hang off a concrete message; there is no thread-root
		// equivalent, and without a selection there is nothing to watch.
		e.fail("watchReactions", ripple_errors.ErrInvalidInput)
		return
	}

	if err := e.reactions.SetScope(ctx, path, e.viewerID); err != nil {
		e.fail("watchReactions", err)
	}
}

// ToggleReaction applies a reaction toggle for the viewer against the
// currently watched message.
func (e *Engine) ToggleReaction(emoji string) {
	if err := e.reactions.Toggle(e.context(), emoji, e.viewerID); err != nil {
		e.fail("toggleReaction", err)
	}
}

func (e *Engine) onChannelChange(channelID string) {
	if channelID == "" {
		return
	}
	ctx := e.context()

	ch, err := e.Channels.Get(ctx, channelID)
	if err != nil {
		e.fail("selectChannel", err)
		return
	}

	scope := chat.Scope{ChannelID: channelID, ViewerID: e.viewerID}
	if err := e.mainList.SetScope(ctx, scope, ch.Members, nil); err != nil {
		e.fail("selectChannel", err)
		return
	}
	e.emit(EventSelection, e.Selection.Selection())
}

func (e *Engine) onDMUserChange(dmUserID string) {
	if dmUserID == "" {
		return
	}
	ctx := e.context()
	scope := chat.Scope{ViewerID: e.viewerID, DMUserID: dmUserID}
	if err := e.mainList.SetScope(ctx, scope, nil, nil); err != nil {
		e.fail("selectDirectMessage", err)
		return
	}
	// A first message to a new counterpart creates the conversation, so the
	// partner list is refreshed alongside the selection.
	e.publishDMPartners(ctx)
	e.emit(EventSelection, e.Selection.Selection())
}

// publishDMPartners pushes the viewer's current DM conversation list.
func (e *Engine) publishDMPartners(ctx context.Context) {
	ids, err := e.Directory.DMPartnerIDs(ctx, e.viewerID)
	if err != nil {
		e.fail("dmPartners", err)
		return
	}
	e.emit(EventDMPartners, ids)
}

func (e *Engine) onThreadChange(threadID string) {
	if threadID == "" {
		return
	}
	channelID := e.Selection.ActiveChannelID()
	if channelID == "" {
		return
	}
	ctx := e.context()

	ch, err := e.Channels.Get(ctx, channelID)
	if err != nil {
		e.fail("openThread", err)
		return
	}

	scope := chat.Scope{ChannelID: channelID, ThreadID: threadID, ViewerID: e.viewerID}
	onReady := func() { e.Selection.MarkThreadReady(threadID) }
	if err := e.threadList.SetScope(ctx, scope, ch.Members, onReady); err != nil {
		e.fail("openThread", err)
		return
	}
	if err := e.stats.Watch(ctx, channelID, threadID); err != nil {
		e.fail("openThread", err)
	}
	e.WatchMessageReactions(threadID, "")
	e.emit(EventSelection, e.Selection.Selection())
}

func (e *Engine) context() context.Context {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.ctx != nil {
		return e.ctx
	}
	return context.Background()
}

func (e *Engine) addCancel(fn func()) {
	e.mu.Lock()
	e.cancels = append(e.cancels, fn)
	e.mu.Unlock()
}

func (e *Engine) fail(op string, err error) {
	e.log.Warnf("session %s: %s: %v", e.viewerID, op, err)
	e.emit(EventError, ErrorPayload{Op: op, Message: "operation failed"})
}

func (e *Engine) emit(eventType string, payload any) {
	// The non-blocking send happens under the lock so it can never race the
	// channel close in Close.
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}

	select {
	case e.events <- Event{Type: eventType, Payload: payload}:
	default:
		e.log.Warnf("session %s: dropping %s event, client too slow", e.viewerID, eventType)
	}
}
