package server

import (
	"testing"
	"time"
)

// A read pump may still be draining its connection when the hub stops; its
// deferred hand-back must not block on the dead loop.
func TestDropAfterStopReturnsImmediately(t *testing.T) {
	h := NewHub(nil, NewWebSocketLogger())
	h.Run()
	h.Stop()

	done := make(chan struct{})
	go func() {
		h.drop(&Client{userID: "alice", clientID: "c1"})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("drop blocked after hub stop")
	}
}

func TestRunAndStopAreIdempotent(t *testing.T) {
	h := NewHub(nil, NewWebSocketLogger())
	h.Run()
	h.Run()
	h.Stop()
	h.Stop()
}
