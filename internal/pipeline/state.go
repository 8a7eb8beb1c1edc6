package pipeline

import (
	"pitch-sieve/internal/opencv/safe"
	"pitch-sieve/internal/sampling"
)

// Mode is the replay state machine position.
type Mode int

const (
	ModeLive Mode = iota
	ModeReplayCooldown
)

func (m Mode) String() string {
	if m == ModeReplayCooldown {
		return "REPLAY_COOLDOWN"
	}
	return "LIVE"
}

const unknownPersons = -1

// State is the cross-frame memory of one run. Each field describes the
// immediately prior sampled frame; frames the clock skipped never touch it.
// A State must not be shared between runs or shards.
type State struct {
	prevHist    safe.Slot
	prevGray    safe.Slot
	prevPersons int
	skipUntil   float64
	cooldown    bool
}

func newState() *State {
	return &State{prevPersons: unknownPersons}
}

// Mode reports the state machine position for a frame at t. A frame at the
// window end, within float drift, is already live.
func (s *State) Mode(t float64) Mode {
	if s.cooldown && t+sampling.Tolerance < s.skipUntil {
		return ModeReplayCooldown
	}
	return ModeLive
}

func (s *State) openCooldown(until float64) {
	s.cooldown = true
	s.skipUntil = until
}

// SkipUntil is the end of the current or last replay window.
func (s *State) SkipUntil() float64 {
	return s.skipUntil
}

func (s *State) release() {
	s.prevHist.Reset()
	s.prevGray.Reset()
	s.prevPersons = unknownPersons
}
