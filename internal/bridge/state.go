// Package bridge carries host state into the editor view and view callbacks
// back into the host.
//
// The pieces are layered: State gates traffic, Channel sends invocations,
// ScriptQueue orders dependent invocations, Accessor receives calls from the
// view, StyleBroker derives CSS rules for decorations and CollectionBridge
// turns list edits into queued snapshot updates.
package bridge

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/tliron/commonlog"
)

var log = commonlog.GetLogger("monaco.bridge")

// ErrInvalidTransition is returned for a lifecycle move the state machine
// does not allow.
var ErrInvalidTransition = errors.New("bridge: invalid state transition")

// Phase is a lifecycle phase of the bridge.
type Phase int32

const (
	// Uninitialized drops every outgoing operation.
	Uninitialized Phase = iota
	// Ready dispatches operations to the view.
	Ready
	// TornDown drops operations until a fresh load cycle starts.
	TornDown
)

func (p Phase) String() string {
	switch p {
	case Uninitialized:
		return "uninitialized"
	case Ready:
		return "ready"
	case TornDown:
		return "torn-down"
	default:
		return fmt.Sprintf("Phase(%d)", int32(p))
	}
}

// State is the initialization state machine shared by one bridge instance.
type State struct {
	mu    sync.Mutex
	phase atomic.Int32
}

// NewState returns a state machine in the Uninitialized phase.
func NewState() *State {
	return &State{}
}

// Phase returns the current phase.
func (s *State) Phase() Phase {
	return Phase(s.phase.Load())
}

// Ready reports whether operations may be dispatched.
func (s *State) Ready() bool {
	return s.Phase() == Ready
}

// MarkReady moves Uninitialized to Ready. Calling it when already Ready is a
// no-op. A torn down bridge must go through Reload first.
func (s *State) MarkReady() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch p := s.Phase(); p {
	case Ready:
		return nil
	case Uninitialized:
		s.set(Ready)
		return nil
	default:
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, p, Ready)
	}
}

// Reload starts a fresh load cycle: Ready and TornDown both return to
// Uninitialized.
func (s *State) Reload() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.set(Uninitialized)
}

// TearDown moves to TornDown from any phase.
func (s *State) TearDown() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.set(TornDown)
}

func (s *State) set(p Phase) {
	old := Phase(s.phase.Swap(int32(p)))
	if old != p {
		log.Debugf("state %s -> %s", old, p)
	}
}
