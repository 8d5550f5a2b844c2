// Package engine implements the Irish Snap rules: the deal, the
// turn-taking state machine, foul detection and slap-race resolution.
//
// The package is deliberately free of transport concerns. A State is a
// plain value owned by a single writer; Clone produces an independent
// deep copy so a caller can apply transitions copy-on-write and swap
// the result in atomically once it is complete.
package engine

import (
	"github.com/google/uuid"
)

// State is the authoritative record of one game session.
//
// Players is insertion-ordered and that order *is* the turn order;
// there is no separately stored rotation. Pile, Said, Slapped and Moves
// are per-round and cleared when a round ends. Rounds holds the frozen
// move logs of completed rounds. EventLog lives for the whole session
// and is never cleared.
//
// Only the transition methods in transitions.go may mutate a State.
type State struct {
	Phase    Phase
	Players  []*Player
	Pile     []Card      // bottom first; last element is the top card
	Said     []Value     // values spoken this round, in play order
	Slapped  []uuid.UUID // who slapped this race, in arrival order
	Moves    []Move      // current round's move log
	Rounds   [][]Move    // frozen move logs of completed rounds
	EventLog []string

	rng uint64
}

// NewState returns an initialised, empty session. The seed drives the
// shuffle; zero is corrected because xorshift cannot start at zero.
func NewState(seed uint64) *State {
	if seed == 0 {
		seed = 1
	}
	s := &State{rng: seed}
	s.Initialise()
	return s
}

// xorshift64, inline, no interface.
func (s *State) nextRand() uint64 {
	x := s.rng
	x ^= x << 13
	x ^= x >> 7
	x ^= x << 17
	s.rng = x
	return x
}

// randN returns a random number in [0, n).
func (s *State) randN(n uint64) uint64 {
	return s.nextRand() % n
}

// Clone returns a deep copy of the state. Frozen round logs and the
// cards inside recorded moves are immutable once appended, so those
// leaves may be shared; everything a transition can touch is copied.
func (s *State) Clone() *State {
	c := &State{
		Phase:    s.Phase,
		Pile:     append([]Card(nil), s.Pile...),
		Said:     append([]Value(nil), s.Said...),
		Slapped:  append([]uuid.UUID(nil), s.Slapped...),
		Moves:    append([]Move(nil), s.Moves...),
		Rounds:   append([][]Move(nil), s.Rounds...),
		EventLog: append([]string(nil), s.EventLog...),
		rng:      s.rng,
	}
	c.Players = make([]*Player, len(s.Players))
	for i, p := range s.Players {
		cp := *p
		cp.Hand = append([]Card(nil), p.Hand...)
		c.Players[i] = &cp
	}
	return c
}

// player returns the record for id, or nil.
func (s *State) player(id uuid.UUID) *Player {
	for _, p := range s.Players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// playerIndex returns id's position in turn order, or -1.
func (s *State) playerIndex(id uuid.UUID) int {
	for i, p := range s.Players {
		if p.ID == id {
			return i
		}
	}
	return -1
}

// HasPlayer reports whether id is currently seated.
func (s *State) HasPlayer(id uuid.UUID) bool { return s.player(id) != nil }

// PlayerIDs returns the seated player ids in turn order.
func (s *State) PlayerIDs() []uuid.UUID {
	ids := make([]uuid.UUID, len(s.Players))
	for i, p := range s.Players {
		ids[i] = p.ID
	}
	return ids
}
