package engine

import "github.com/google/uuid"

// Read-only derivations from State. Nothing in this file mutates.

// ExpectedNextValue returns the value that must be spoken on the next
// play: the successor of the last spoken value this round, or Ace when
// nothing has been spoken yet.
func (s *State) ExpectedNextValue() Value {
	if len(s.Said) == 0 {
		return Ace
	}
	return s.Said[len(s.Said)-1].Next()
}

// ExpectedNextPlayer returns the player who must act next: the
// turn-order successor of whoever made the most recent say-and-play
// this round, or the starting player before anyone has played.
// Returns uuid.Nil when nobody is seated.
func (s *State) ExpectedNextPlayer() uuid.UUID {
	if len(s.Players) == 0 {
		return uuid.Nil
	}
	for i := len(s.Moves) - 1; i >= 0; i-- {
		if s.Moves[i].Kind != MoveSayAndPlay {
			continue
		}
		// A departed player's index is -1, which lands on the first seat.
		idx := s.playerIndex(s.Moves[i].Player)
		return s.Players[(idx+1)%len(s.Players)].ID
	}
	return s.StartingPlayer()
}

// ShouldSlap reports whether a slap is warranted right now: the top
// played card matches the last spoken value, matches the card played
// immediately before it, or is a Jack. Absent history never satisfies
// an equality check, so the first play of a round (and an empty pile)
// can only warrant a slap via the Jack rule.
func (s *State) ShouldSlap() bool {
	if len(s.Pile) == 0 {
		return false
	}
	top := s.Pile[len(s.Pile)-1]
	if len(s.Said) > 0 && s.Said[len(s.Said)-1] == top.Value {
		return true
	}
	if len(s.Pile) > 1 && s.Pile[len(s.Pile)-2].Value == top.Value {
		return true
	}
	return top.Value == Jack
}

// StartingPlayer returns the id of the player holding the starting
// flag, or uuid.Nil if nobody does.
func (s *State) StartingPlayer() uuid.UUID {
	for _, p := range s.Players {
		if p.IsStarting {
			return p.ID
		}
	}
	return uuid.Nil
}

// PlayerName returns the display name for id, or "Unknown player".
func (s *State) PlayerName(id uuid.UUID) string {
	if p := s.player(id); p != nil {
		return p.Name
	}
	return "Unknown player"
}

// RoundNumber is 1-based: completed rounds plus the one in progress.
func (s *State) RoundNumber() int {
	return len(s.Rounds) + 1
}
