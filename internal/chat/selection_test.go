package chat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectChannelClearsDMUser(t *testing.T) {
	s := NewSelectionStore()

	s.SelectDMUser("bob")
	require.Equal(t, "bob", s.ActiveDMUserID())

	s.SelectChannel("general")

	assert.Equal(t, "general", s.ActiveChannelID())
	assert.Empty(t, s.ActiveDMUserID())
}

func TestSelectDMUserClearsChannel(t *testing.T) {
	s := NewSelectionStore()

	s.SelectChannel("general")
	s.SelectDMUser("bob")

	assert.Equal(t, "bob", s.ActiveDMUserID())
	assert.Empty(t, s.ActiveChannelID())
}

func TestClearedSideDoesNotPublish(t *testing.T) {
	s := NewSelectionStore()
	s.SelectDMUser("bob")

	var dmPublishes []string
	cancel := s.OnDMUserChange(func(id string) { dmPublishes = append(dmPublishes, id) })
	defer cancel()
	require.Equal(t, []string{"bob"}, dmPublishes) // replay

	// Switching to a channel clears the DM side silently.
	s.SelectChannel("general")
	assert.Equal(t, []string{"bob"}, dmPublishes)
	assert.Empty(t, s.ActiveDMUserID())
}

func TestOpenThreadIsTwoPhase(t *testing.T) {
	s := NewSelectionStore()
	s.SelectChannel("general")

	var opens []bool
	cancelOpen := s.OnThreadOpen(func(open bool) { opens = append(opens, open) })
	defer cancelOpen()
	var threads []string
	cancelThread := s.OnThreadChange(func(id string) { threads = append(threads, id) })
	defer cancelThread()

	s.OpenThread("t1")

	// The id publishes immediately, the panel stays closed.
	assert.Equal(t, []string{"", "t1"}, threads)
	assert.Equal(t, []bool{false, false}, opens)
	assert.False(t, s.ThreadOpen())

	s.MarkThreadReady("t1")
	assert.True(t, s.ThreadOpen())
	assert.Equal(t, []bool{false, false, true}, opens)
}

func TestMarkThreadReadyForStaleThreadIsDropped(t *testing.T) {
	s := NewSelectionStore()
	s.SelectChannel("general")

	s.OpenThread("t1")
	s.OpenThread("t2")

	// The ready signal for the superseded thread must not open the panel.
	s.MarkThreadReady("t1")
	assert.False(t, s.ThreadOpen())

	s.MarkThreadReady("t2")
	assert.True(t, s.ThreadOpen())
}

func TestReopeningSameThreadResetsOpenState(t *testing.T) {
	s := NewSelectionStore()
	s.SelectChannel("general")

	s.OpenThread("t1")
	s.MarkThreadReady("t1")
	require.True(t, s.ThreadOpen())

	s.OpenThread("t1")
	assert.False(t, s.ThreadOpen())

	s.MarkThreadReady("t1")
	assert.True(t, s.ThreadOpen())
}

func TestCloseThreadIsSynchronous(t *testing.T) {
	s := NewSelectionStore()
	s.SelectChannel("general")
	s.OpenThread("t1")
	s.MarkThreadReady("t1")

	s.CloseThread()

	assert.Empty(t, s.ActiveThreadID())
	assert.False(t, s.ThreadOpen())

	// A ready signal arriving after the close does nothing.
	s.MarkThreadReady("t1")
	assert.False(t, s.ThreadOpen())
}

func TestSelectionSnapshot(t *testing.T) {
	s := NewSelectionStore()
	s.SelectChannel("general")
	s.OpenThread("t1")

	sel := s.Selection()
	assert.Equal(t, Selection{ChannelID: "general", ThreadID: "t1"}, sel)
}
