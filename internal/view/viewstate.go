package view

import (
	"sync"

	"ripple-chat/internal/observe"
)

// ViewName identifies which UI region the user asked for last.
type ViewName string

const (
	ViewSidebar       ViewName = "sidebar"
	ViewChannel       ViewName = "channel"
	ViewDirectMessage ViewName = "directMessage"
	ViewNewMessage    ViewName = "newMessage"
	ViewSecondaryChat ViewName = "secondaryChat"
)

// VisibilityFlags is the full visibility record for the UI regions. It is
// published as a snapshot; consumers never receive partial updates.
type VisibilityFlags struct {
	ShowSidebar       bool `json:"showSidebar"`
	ShowChannel       bool `json:"showChannel"`
	ShowDirectMessage bool `json:"showDirectMessage"`
	ShowNewMessage    bool `json:"showNewMessage"`
	ShowSecondaryChat bool `json:"showSecondaryChat"`
	ShowSidebarToggle bool `json:"showSidebarToggle"`
}

type flag string

const (
	flagSidebar       flag = "showSidebar"
	flagChannel       flag = "showChannel"
	flagDirectMessage flag = "showDirectMessage"
	flagNewMessage    flag = "showNewMessage"
	flagSecondaryChat flag = "showSecondaryChat"
	flagSidebarToggle flag = "showSidebarToggle"
)

type flagSet map[flag]bool

// viewSettings is static configuration, not derived logic: per screen size
// and named view, the flags to apply. Entries are deliberately partial for
// the wider breakpoints; a flag absent from an entry keeps its previous
// value when the view is applied.
var viewSettings = map[ScreenSize]map[ViewName]flagSet{
	ScreenExtraSmall: {
		ViewSidebar: {
			flagSidebar: true, flagChannel: false, flagDirectMessage: false,
			flagNewMessage: false, flagSecondaryChat: false,
		},
		ViewChannel: {
			flagSidebar: false, flagChannel: true, flagDirectMessage: false,
			flagNewMessage: false, flagSecondaryChat: false,
		},
		ViewDirectMessage: {
			flagSidebar: false, flagChannel: false, flagDirectMessage: true,
			flagNewMessage: false, flagSecondaryChat: false,
		},
		ViewNewMessage: {
			flagNewMessage: true, flagSidebar: false, flagChannel: false,
			flagDirectMessage: false, flagSecondaryChat: false,
		},
		ViewSecondaryChat: {
			flagSidebar: false, flagChannel: false, flagDirectMessage: false,
			flagNewMessage: false, flagSecondaryChat: true,
		},
	},
	ScreenSmall: {
		ViewSidebar: {
			flagSidebar: true, flagChannel: false, flagDirectMessage: false,
			flagNewMessage: false, flagSecondaryChat: false,
		},
		ViewChannel: {
			flagSidebar: false, flagChannel: true, flagDirectMessage: false,
			flagNewMessage: false, flagSecondaryChat: false,
		},
		ViewDirectMessage: {
			flagSidebar: false, flagChannel: false, flagDirectMessage: true,
			flagNewMessage: false, flagSecondaryChat: false,
		},
		ViewNewMessage: {
			flagNewMessage: true, flagSidebar: false, flagChannel: false,
			flagDirectMessage: false, flagSecondaryChat: false,
		},
		ViewSecondaryChat: {
			flagSidebar: false, flagChannel: false, flagDirectMessage: false,
			flagNewMessage: false, flagSecondaryChat: true,
		},
	},
	ScreenMedium: {
		ViewSidebar: {
			flagSidebar: true, flagSidebarToggle: true, flagSecondaryChat: false,
		},
		ViewChannel: {
			flagSidebar: true, flagSidebarToggle: true, flagChannel: true,
			flagDirectMessage: false, flagNewMessage: false, flagSecondaryChat: false,
		},
		ViewDirectMessage: {
			flagSidebar: true, flagSidebarToggle: true, flagChannel: false,
			flagDirectMessage: true, flagNewMessage: false, flagSecondaryChat: false,
		},
		ViewNewMessage: {
			flagSidebar: true, flagNewMessage: true, flagSidebarToggle: true,
			flagChannel: false, flagDirectMessage: false, flagSecondaryChat: false,
		},
		ViewSecondaryChat: {
			flagSidebar: true, flagSidebarToggle: false, flagChannel: true,
			flagSecondaryChat: true,
		},
	},
	ScreenLarge: {
		ViewSidebar: {
			flagChannel: true, flagSecondaryChat: false,
		},
		ViewChannel: {
			flagChannel: true, flagDirectMessage: false, flagNewMessage: false,
			flagSecondaryChat: false,
		},
		ViewDirectMessage: {
			flagSidebar: true, flagChannel: false, flagDirectMessage: true,
			flagNewMessage: false, flagSecondaryChat: false,
		},
		ViewNewMessage: {
			flagSidebar: true, flagNewMessage: true, flagChannel: false,
			flagDirectMessage: false, flagSecondaryChat: false,
		},
		ViewSecondaryChat: {
			flagSecondaryChat: true,
		},
	},
}

// Store tracks which UI regions are visible. Visibility is recomputed from
// the static (screen size, view) table on SetView, and adjusted on resize so
// an open thread or compose panel survives a breakpoint crossing.
type Store struct {
	mu            sync.Mutex
	size          ScreenSize
	actualView    ViewName
	previousWidth int
	flags         *observe.Signal[VisibilityFlags]
}

// NewStore starts in the large breakpoint with the sidebar visible.
func NewStore() *Store {
	return &Store{
		size:          ScreenLarge,
		previousWidth: 1920,
		flags: observe.NewSignal(VisibilityFlags{
			ShowSidebar:       true,
			ShowSidebarToggle: true,
		}),
	}
}

func (s *Store) Flags() VisibilityFlags {
	return s.flags.Get()
}

func (s *Store) Subscribe(fn func(VisibilityFlags)) func() {
	return s.flags.Subscribe(fn)
}

func (s *Store) ScreenSize() ScreenSize {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.size
}

func (s *Store) ActiveView() ViewName {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.actualView
}

// ShowMainChat reports whether either main chat region is visible.
func (s *Store) ShowMainChat() bool {
	f := s.flags.Get()
	return f.ShowChannel || f.ShowDirectMessage
}

// DefaultLogoVisible reports whether the header shows the default logo
// instead of the back navigation used on narrow screens.
func (s *Store) DefaultLogoVisible() bool {
	s.mu.Lock()
	size := s.size
	s.mu.Unlock()
	return !(size == ScreenSmall || size == ScreenExtraSmall) || s.flags.Get().ShowSidebar
}

// SetView applies the flag table entry for (current screen size, view). An
// absent entry is a silent no-op. Flags not named by the entry keep their
// previous value.
func (s *Store) SetView(view ViewName) {
	s.mu.Lock()
	settings, ok := viewSettings[s.size][view]
	if !ok {
		s.mu.Unlock()
		return
	}
	s.actualView = view
	next := applyFlags(s.flags.Get(), settings)
	s.mu.Unlock()

	s.flags.Set(next)
}

// Resize reclassifies the screen size and, when the width crosses the 1110
// or 1500 thresholds, re-derives the flags so that whichever secondary panel
// was open (thread panel or compose panel) stays open in the new layout.
// The crossing blocks evaluate sequentially: a single resize can cross both
// thresholds.
func (s *Store) Resize(width int) {
	s.mu.Lock()
	previous := s.previousWidth
	current := s.flags.Get()
	wasSecondaryChatOpen := current.ShowSecondaryChat
	wasNewMessageOpen := current.ShowNewMessage
	s.size = Classify(width)
	s.previousWidth = width
	s.mu.Unlock()

	// Shrinking below 1500px.
	if previous > 1500 && width <= 1500 {
		if wasSecondaryChatOpen {
			s.apply(flagSet{flagChannel: true, flagSecondaryChat: true, flagSidebar: false})
			s.SetView(ViewSecondaryChat)
		} else if wasNewMessageOpen {
			s.apply(flagSet{flagNewMessage: true, flagSidebar: true})
		} else {
			s.apply(flagSet{flagChannel: true, flagSidebar: true})
		}
	}
	// Growing past 1500px.
	if previous <= 1500 && width > 1500 {
		s.apply(flagSet{flagChannel: true, flagSidebarToggle: true, flagSidebar: true})
		if wasSecondaryChatOpen {
			s.apply(flagSet{flagSecondaryChat: true})
		} else if wasNewMessageOpen {
			s.SetView(ViewNewMessage)
		} else {
			s.apply(flagSet{flagSecondaryChat: false})
		}
	}
	// Growing past 1110px.
	if previous <= 1110 && width > 1110 {
		if wasSecondaryChatOpen {
			s.apply(flagSet{flagChannel: true, flagSecondaryChat: true})
		} else if wasNewMessageOpen {
			s.SetView(ViewNewMessage)
		} else {
			s.SetView(ViewSidebar)
			s.apply(flagSet{flagChannel: true})
		}
	}
	// Shrinking to 1110px or below.
	if previous >= 1110 && width <= 1110 {
		if wasSecondaryChatOpen {
			s.apply(flagSet{flagSidebarToggle: true, flagChannel: false, flagSecondaryChat: true, flagSidebar: false})
		} else if wasNewMessageOpen {
			s.apply(flagSet{flagNewMessage: true, flagSidebar: false})
		} else {
			s.apply(flagSet{flagSecondaryChat: false, flagChannel: true, flagSidebar: false})
		}
	}
}

func (s *Store) apply(settings flagSet) {
	s.mu.Lock()
	next := applyFlags(s.flags.Get(), settings)
	s.mu.Unlock()
	s.flags.Set(next)
}

func applyFlags(current VisibilityFlags, settings flagSet) VisibilityFlags {
	for name, value := range settings {
		switch name {
		case flagSidebar:
			current.ShowSidebar = value
		case flagChannel:
			current.ShowChannel = value
		case flagDirectMessage:
			current.ShowDirectMessage = value
		case flagNewMessage:
			current.ShowNewMessage = value
		case flagSecondaryChat:
			current.ShowSecondaryChat = value
		case flagSidebarToggle:
			current.ShowSidebarToggle = value
		}
	}
	return current
}
