package chat

import (
	"sync"

	"ripple-chat/internal/observe"
)

// Selection is the current conversation context. ChannelID and DMUserID are
// mutually exclusive; ThreadID is independent and cleared explicitly.
type Selection struct {
	ChannelID string `json:"channelId,omitempty"`
	DMUserID  string `json:"dmUserId,omitempty"`
	ThreadID  string `json:"threadId,omitempty"`
}

// SelectionStore holds the three selection facts and publishes changes.
// Opening a thread is two-phase: the thread id publishes immediately with
// open=false, and open=true follows once the thread content is ready, so the
// panel transition never races the content swap.
type SelectionStore struct {
	mu        sync.Mutex
	channelID string
	dmUserID  string
	threadID  string

	channelUpdates *observe.Signal[string]
	dmUserUpdates  *observe.Signal[string]
	threadUpdates  *observe.Signal[string]
	threadOpen     *observe.Signal[bool]
}

func NewSelectionStore() *SelectionStore {
	return &SelectionStore{
		channelUpdates: observe.NewSignal(""),
		dmUserUpdates:  observe.NewSignal(""),
		threadUpdates:  observe.NewSignal(""),
		threadOpen:     observe.NewSignal(false),
	}
}

// SelectChannel activates a channel and implicitly tears down any active
// direct message context. No existence check happens here; a stale id
// surfaces downstream as an empty projection.
func (s *SelectionStore) SelectChannel(id string) {
	s.mu.Lock()
	s.channelID = id
	s.dmUserID = ""
	s.mu.Unlock()

	s.channelUpdates.Set(id)
}

// SelectDMUser activates a direct message partner and implicitly tears down
// any active channel context.
func (s *SelectionStore) SelectDMUser(id string) {
	s.mu.Lock()
	s.dmUserID = id
	s.channelID = ""
	s.mu.Unlock()

	s.dmUserUpdates.Set(id)
}

// OpenThread publishes open=false, then the new thread id. The open=true
// phase is driven by MarkThreadReady.
func (s *SelectionStore) OpenThread(id string) {
	s.threadOpen.Set(false)

	s.mu.Lock()
	s.threadID = id
	s.mu.Unlock()

	s.threadUpdates.Set(id)
}

// MarkThreadReady completes the open sequence for id. A ready signal for a
// thread that is no longer selected is dropped.
func (s *SelectionStore) MarkThreadReady(id string) {
	s.mu.Lock()
	current := s.threadID
	s.mu.Unlock()

	if id != "" && id == current {
		s.threadOpen.Set(true)
	}
}

// CloseThread clears the thread selection synchronously.
func (s *SelectionStore) CloseThread() {
	s.mu.Lock()
	s.threadID = ""
	s.mu.Unlock()

	s.threadUpdates.Set("")
	s.threadOpen.Set(false)
}

func (s *SelectionStore) ActiveChannelID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.channelID
}

func (s *SelectionStore) ActiveDMUserID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dmUserID
}

func (s *SelectionStore) ActiveThreadID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.threadID
}

func (s *SelectionStore) ThreadOpen() bool {
	return s.threadOpen.Get()
}

func (s *SelectionStore) Selection() Selection {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Selection{ChannelID: s.channelID, DMUserID: s.dmUserID, ThreadID: s.threadID}
}

// Subscriptions. Each replays the current value immediately; consumers skip
// the empty id that means "nothing selected yet".

func (s *SelectionStore) OnChannelChange(fn func(id string)) func() {
	return s.channelUpdates.Subscribe(fn)
}

func (s *SelectionStore) OnDMUserChange(fn func(id string)) func() {
	return s.dmUserUpdates.Subscribe(fn)
}

func (s *SelectionStore) OnThreadChange(fn func(id string)) func() {
	return s.threadUpdates.Subscribe(fn)
}

func (s *SelectionStore) OnThreadOpen(fn func(open bool)) func() {
	return s.threadOpen.Subscribe(fn)
}
