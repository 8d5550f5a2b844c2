package engine

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Transitions are the only code allowed to mutate a State.

// Initialise clears everything per-session except the event log, which
// lives for the whole session. A fresh NewState starts with an empty
// log anyway.
func (s *State) Initialise() {
	s.Phase = WaitingForPlayers
	s.Players = nil
	s.Pile = nil
	s.Said = nil
	s.Slapped = nil
	s.Moves = nil
	s.Rounds = nil
}

// Reset reshuffles and redeals for the current seats, makes the first
// seat the starting player, and begins round 1. It is the single entry
// point after any join or leave: turn order and hand ownership are
// undefined once the player set changes, so the whole game restarts.
// With zero seats it degrades to an empty deal rather than failing.
func (s *State) Reset() {
	type seat struct {
		id   uuid.UUID
		name string
	}
	seats := make([]seat, len(s.Players))
	for i, p := range s.Players {
		seats[i] = seat{id: p.ID, name: p.Name}
	}

	s.Initialise()

	if len(seats) > 0 {
		hands, err := s.DealHands(len(seats))
		if err != nil {
			s.Error(fmt.Sprintf("reset: %v", err))
			return
		}
		s.Players = make([]*Player, len(seats))
		for i, st := range seats {
			s.Players[i] = &Player{
				ID:         st.id,
				Name:       st.name,
				Hand:       hands[i],
				IsStarting: i == 0,
			}
		}
	}
	s.Phase = Playing
	s.Event(fmt.Sprintf("Round %d. Starting player: %s", s.RoundNumber(), s.PlayerName(s.StartingPlayer())))
}

// NewRound archives the current move log, clears per-round state,
// rotates the starting flag one seat, and continues play. Hands are
// carried over: cards won and lost persist between rounds.
func (s *State) NewRound() {
	s.Phase = Playing
	s.Rounds = append(s.Rounds, s.Moves)
	s.Moves = nil
	s.Pile = nil
	s.Said = nil
	s.Slapped = nil

	s.advanceStartingPlayer()
	s.Event(fmt.Sprintf("Round %d. Starting player: %s", s.RoundNumber(), s.PlayerName(s.StartingPlayer())))
}

func (s *State) advanceStartingPlayer() {
	if len(s.Players) == 0 {
		return
	}
	idx := -1
	for i, p := range s.Players {
		if p.IsStarting {
			idx = i
			p.IsStarting = false
		}
	}
	s.Players[(idx+1)%len(s.Players)].IsStarting = true
}

// AddPlayer seats a new player and restarts the game. Joining
// mid-round redeals every hand; that is a deliberate simplification,
// not a bug.
func (s *State) AddPlayer(id uuid.UUID, name string) {
	s.Players = append(s.Players, &Player{ID: id, Name: name})
	s.Reset()
}

// RemovePlayer unseats a player and restarts the game.
func (s *State) RemovePlayer(id uuid.UUID) {
	for i, p := range s.Players {
		if p.ID == id {
			s.Players = append(s.Players[:i], s.Players[i+1:]...)
			break
		}
	}
	s.Reset()
}

// Event appends a human-readable entry to the session event log.
func (s *State) Event(message string) {
	s.EventLog = append(s.EventLog, message)
}

// Error marks the session as unrecoverably broken. No further play is
// accepted until a Reset; the message lands in the event log so the
// break is observable.
func (s *State) Error(message string) {
	s.Event(message)
	s.Phase = Erroring
}

// Foul resolves a rule violation: the offender takes the entire pile
// (reversed, so the original play order sits at the front of their
// hand), the pile is cleared and the reason is logged. Round
// advancement after a foul is the caller's decision.
func (s *State) Foul(playerID uuid.UUID, reason string) {
	p := s.player(playerID)
	if p == nil {
		s.Error(fmt.Sprintf("foul against unknown player %s: %s", playerID, reason))
		return
	}
	reversed := make([]Card, len(s.Pile))
	for i, c := range s.Pile {
		reversed[len(s.Pile)-1-i] = c
	}
	p.Hand = append(reversed, p.Hand...)
	s.Pile = nil
	s.Phase = Fouling
	s.Event(reason)
}

// SayAndPlay handles a turn in the Playing phase: the player speaks a
// value and plays the top card of their hand. Exactly one foul fires,
// checked in order: somebody should already have slapped; it was not
// this player's turn; the wrong value was spoken.
func (s *State) SayAndPlay(playerID uuid.UUID, said Value) {
	expectedValue := s.ExpectedNextValue()
	expectedPlayer := s.ExpectedNextPlayer()
	slapWasDue := s.ShouldSlap()

	s.UncheckedSayAndPlay(playerID, said)
	if s.Phase == Erroring {
		return
	}

	name := s.PlayerName(playerID)
	if slapWasDue {
		s.Foul(playerID, fmt.Sprintf("Somebody should've slapped! Instead, %s played a card.", name))
		return
	}
	if expectedPlayer != playerID {
		s.Foul(expectedPlayer, fmt.Sprintf("%s should've played a card! Instead, %s did.", s.PlayerName(expectedPlayer), name))
		return
	}
	if said != expectedValue {
		s.Foul(playerID, fmt.Sprintf("%s should've said %s! Instead, they said %s.", name, expectedValue, said))
		return
	}
}

// UncheckedSayAndPlay performs the say-and-play mutation with no rule
// checks: pop the top card (an empty hand still speaks, keeping turn
// order consistent), record the move, extend the pile and the spoken
// sequence. Callers use it when the play is illegal by construction
// and a foul follows unconditionally.
func (s *State) UncheckedSayAndPlay(playerID uuid.UUID, said Value) {
	p := s.player(playerID)
	if p == nil {
		s.Error(fmt.Sprintf("say-and-play from unknown player %s", playerID))
		return
	}
	var played *Card
	if len(p.Hand) > 0 {
		top := p.Hand[len(p.Hand)-1]
		p.Hand = p.Hand[:len(p.Hand)-1]
		played = &top
	}
	saidCopy := said
	s.Moves = append(s.Moves, Move{
		At:     time.Now(),
		Kind:   MoveSayAndPlay,
		Player: playerID,
		Played: played,
		Said:   &saidCopy,
	})
	if played != nil {
		s.Pile = append(s.Pile, *played)
	}
	s.Said = append(s.Said, said)
}

// Slap handles a slap in the Playing or Slapping phase. An unwarranted
// slap fouls the slapper. A warranted slap opens (or continues) the
// race; emptying your hand on a warranted slap wins; being the last
// seat to react fouls you. Repeat slaps by the same player are
// recorded but never re-trigger race resolution.
func (s *State) Slap(playerID uuid.UUID) {
	p := s.player(playerID)
	if p == nil {
		s.Error(fmt.Sprintf("slap from unknown player %s", playerID))
		return
	}

	// Who still had to slap, computed before this slap is recorded.
	var remaining []uuid.UUID
	for _, pl := range s.Players {
		if s.slapRank(pl.ID) == 0 {
			remaining = append(remaining, pl.ID)
		}
	}
	already := s.slapRank(playerID) != 0

	s.Moves = append(s.Moves, Move{At: time.Now(), Kind: MoveSlap, Player: playerID})
	s.Slapped = append(s.Slapped, playerID)

	name := s.PlayerName(playerID)
	if !s.ShouldSlap() {
		s.Foul(playerID, fmt.Sprintf("Player %s shouldn't have slapped!", name))
		return
	}
	s.Phase = Slapping
	if already {
		return
	}
	if len(p.Hand) == 0 {
		s.Phase = Winning
	}
	if len(remaining) == 1 && remaining[0] == playerID {
		s.Foul(playerID, fmt.Sprintf("%s slapped last! Everyone else slapped quicker.", name))
		return
	}
	s.Event(fmt.Sprintf("%s slapped!", name))
}
