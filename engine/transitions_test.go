package engine

import (
	"strings"
	"testing"

	"github.com/google/uuid"
)

// assertOneStartingPlayer fails unless exactly one seated player holds
// the starting flag (or none are seated).
func assertOneStartingPlayer(t *testing.T, s *State) {
	t.Helper()
	count := 0
	for _, p := range s.Players {
		if p.IsStarting {
			count++
		}
	}
	if len(s.Players) == 0 {
		if count != 0 {
			t.Errorf("starting flags = %d with no players", count)
		}
		return
	}
	if count != 1 {
		t.Errorf("starting flags = %d, want exactly 1", count)
	}
}

// totalCards sums all hand sizes plus the pile.
func totalCards(s *State) int {
	n := len(s.Pile)
	for _, p := range s.Players {
		n += len(p.Hand)
	}
	return n
}

// TestAddPlayerResets verifies that every join forces a full redeal
// with one starting player and a complete deck split across hands.
func TestAddPlayerResets(t *testing.T) {
	s := NewState(42)
	ids := []uuid.UUID{uuid.New(), uuid.New(), uuid.New()}
	for i, id := range ids {
		s.AddPlayer(id, string(rune('A'+i)))

		if s.Phase != Playing {
			t.Fatalf("after join %d: phase = %v, want Playing", i, s.Phase)
		}
		assertOneStartingPlayer(t, s)
		if got := s.StartingPlayer(); got != ids[0] {
			t.Errorf("after join %d: starting player = %v, want first seat %v", i, got, ids[0])
		}
		if totalCards(s) != DeckSize {
			t.Errorf("after join %d: %d cards in play, want %d", i, totalCards(s), DeckSize)
		}
		if len(s.Moves) != 0 || len(s.Pile) != 0 || len(s.Said) != 0 {
			t.Errorf("after join %d: per-round state not cleared", i)
		}
	}
	if len(s.Players) != 3 {
		t.Fatalf("seated players = %d, want 3", len(s.Players))
	}
}

// TestRemovePlayerResets verifies leaves also force a redeal.
func TestRemovePlayerResets(t *testing.T) {
	s, ids := newTableState(t, 3)
	s.UncheckedSayAndPlay(ids[0], Ace)

	s.RemovePlayer(ids[0])

	if len(s.Players) != 2 {
		t.Fatalf("seated players = %d, want 2", len(s.Players))
	}
	assertOneStartingPlayer(t, s)
	if totalCards(s) != DeckSize {
		t.Errorf("%d cards in play, want %d", totalCards(s), DeckSize)
	}
	if len(s.Moves) != 0 {
		t.Errorf("move log not cleared by reset")
	}
}

// TestResetZeroPlayers verifies the degenerate empty deal: no failure,
// play phase entered, unknown starting player logged.
func TestResetZeroPlayers(t *testing.T) {
	s, ids := newTableState(t, 1)
	s.RemovePlayer(ids[0])

	if s.Phase != Playing {
		t.Fatalf("phase = %v, want Playing", s.Phase)
	}
	if len(s.Players) != 0 {
		t.Fatalf("players = %d, want 0", len(s.Players))
	}
	last := s.EventLog[len(s.EventLog)-1]
	if last != "Round 1. Starting player: Unknown player" {
		t.Errorf("last event = %q", last)
	}
}

// TestInitialisePreservesEventLog verifies the event log is
// session-lifetime: resets keep the history.
func TestInitialisePreservesEventLog(t *testing.T) {
	s, _ := newTableState(t, 2)
	s.Event("something memorable")
	before := len(s.EventLog)

	s.Reset()

	if len(s.EventLog) <= before {
		t.Errorf("event log shrank across reset: %d -> %d", before, len(s.EventLog))
	}
	found := false
	for _, e := range s.EventLog {
		if e == "something memorable" {
			found = true
		}
	}
	if !found {
		t.Error("event log lost an entry across reset")
	}
}

// TestFoulTransfersPile verifies the offender's hand grows by exactly
// the pile size and the pile empties, with play order preserved.
func TestFoulTransfersPile(t *testing.T) {
	s, ids := newTableState(t, 2)
	s.Pile = []Card{{Ace, Spades}, {Two, Hearts}, {Three, Clubs}}
	handBefore := len(s.player(ids[1]).Hand)

	s.Foul(ids[1], "test foul")

	p := s.player(ids[1])
	if len(p.Hand) != handBefore+3 {
		t.Errorf("hand size = %d, want %d", len(p.Hand), handBefore+3)
	}
	if len(s.Pile) != 0 {
		t.Errorf("pile size = %d, want 0", len(s.Pile))
	}
	if s.Phase != Fouling {
		t.Errorf("phase = %v, want Fouling", s.Phase)
	}
	// Pile arrives reversed at the front: the last-played card first.
	if p.Hand[0] != (Card{Three, Clubs}) || p.Hand[2] != (Card{Ace, Spades}) {
		t.Errorf("pile order not reversed onto hand front: %v", p.Hand[:3])
	}
	if s.EventLog[len(s.EventLog)-1] != "test foul" {
		t.Errorf("foul reason not logged")
	}
}

// TestFoulUnknownPlayer verifies a structural break lands in Erroring.
func TestFoulUnknownPlayer(t *testing.T) {
	s, _ := newTableState(t, 2)
	s.Foul(uuid.New(), "ghost foul")
	if s.Phase != Erroring {
		t.Errorf("phase = %v, want Erroring", s.Phase)
	}
}

// TestSayAndPlayHappyPath walks the two-player opening from the rules:
// a correct first play causes no foul and advances expectations.
func TestSayAndPlayHappyPath(t *testing.T) {
	s, ids := newTableState(t, 2)
	// A known, harmless top card: not an Ace (no said-match), not a Jack.
	giveTopCard(s, ids[0], Card{Seven, Hearts})

	s.SayAndPlay(ids[0], Ace)

	if s.Phase != Playing {
		t.Fatalf("phase = %v, want Playing (event log: %v)", s.Phase, s.EventLog)
	}
	if got := s.ExpectedNextValue(); got != Two {
		t.Errorf("expected next value = %v, want 2", got)
	}
	if got := s.ExpectedNextPlayer(); got != ids[1] {
		t.Errorf("expected next player = %v, want %v", got, ids[1])
	}
	if len(s.Pile) != 1 || s.Pile[0] != (Card{Seven, Hearts}) {
		t.Errorf("pile = %v, want the played seven of hearts", s.Pile)
	}
}

// TestSayAndPlayWrongValue verifies the misspeak foul: the speaker
// takes the whole pile.
func TestSayAndPlayWrongValue(t *testing.T) {
	s, ids := newTableState(t, 2)
	giveTopCard(s, ids[0], Card{Seven, Hearts})
	giveTopCard(s, ids[1], Card{Four, Clubs})

	s.SayAndPlay(ids[0], Ace)
	bHandBefore := len(s.player(ids[1]).Hand)

	s.SayAndPlay(ids[1], Three) // should have said 2

	if s.Phase != Fouling {
		t.Fatalf("phase = %v, want Fouling", s.Phase)
	}
	b := s.player(ids[1])
	if len(b.Hand) != bHandBefore-1+2 {
		t.Errorf("offender hand = %d, want %d (played one, took pile of two)", len(b.Hand), bHandBefore+1)
	}
	if len(s.Pile) != 0 {
		t.Errorf("pile size = %d, want 0", len(s.Pile))
	}
	reason := s.EventLog[len(s.EventLog)-1]
	if !strings.Contains(reason, "B should've said 2!") {
		t.Errorf("foul reason = %q", reason)
	}
}

// TestSayAndPlayOutOfTurn verifies the foul goes to the player who
// should have gone, not the one who jumped in.
func TestSayAndPlayOutOfTurn(t *testing.T) {
	s, ids := newTableState(t, 3)
	giveTopCard(s, ids[1], Card{Seven, Hearts})
	aHandBefore := len(s.player(ids[0]).Hand)

	// Seat B plays first; seat A was the starting player.
	s.SayAndPlay(ids[1], Ace)

	if s.Phase != Fouling {
		t.Fatalf("phase = %v, want Fouling", s.Phase)
	}
	a := s.player(ids[0])
	if len(a.Hand) != aHandBefore+1 {
		t.Errorf("expected player's hand = %d, want %d (took pile of one)", len(a.Hand), aHandBefore+1)
	}
	reason := s.EventLog[len(s.EventLog)-1]
	if !strings.Contains(reason, "A should've played a card! Instead, B did.") {
		t.Errorf("foul reason = %q", reason)
	}
}

// TestSayAndPlayWhileSlapDue verifies playing when a slap is warranted
// fouls the player who played.
func TestSayAndPlayWhileSlapDue(t *testing.T) {
	s, ids := newTableState(t, 2)
	giveTopCard(s, ids[0], Card{Jack, Spades})
	giveTopCard(s, ids[1], Card{Four, Clubs})

	s.SayAndPlay(ids[0], Ace) // a Jack lands: slap now due
	if s.Phase != Playing {
		t.Fatalf("setup: phase = %v, want Playing", s.Phase)
	}
	bHandBefore := len(s.player(ids[1]).Hand)

	s.SayAndPlay(ids[1], Two)

	if s.Phase != Fouling {
		t.Fatalf("phase = %v, want Fouling", s.Phase)
	}
	if got := len(s.player(ids[1]).Hand); got != bHandBefore-1+2 {
		t.Errorf("offender hand = %d, want %d", got, bHandBefore+1)
	}
	reason := s.EventLog[len(s.EventLog)-1]
	if !strings.Contains(reason, "Somebody should've slapped!") {
		t.Errorf("foul reason = %q", reason)
	}
}

// TestUncheckedSayAndPlayEmptyHand verifies an empty hand still speaks:
// the move and spoken value are recorded but no card reaches the pile.
func TestUncheckedSayAndPlayEmptyHand(t *testing.T) {
	s, ids := newTableState(t, 2)
	s.player(ids[0]).Hand = nil

	s.UncheckedSayAndPlay(ids[0], Ace)

	if len(s.Moves) != 1 {
		t.Fatalf("moves = %d, want 1", len(s.Moves))
	}
	if s.Moves[0].Played != nil {
		t.Errorf("move.Played = %v, want nil", s.Moves[0].Played)
	}
	if len(s.Pile) != 0 {
		t.Errorf("pile = %d, want 0", len(s.Pile))
	}
	if len(s.Said) != 1 || s.Said[0] != Ace {
		t.Errorf("said = %v, want [Ace]", s.Said)
	}
}

// TestSlapUnwarranted verifies a bad slap immediately fouls the
// slapper and hands them the pile.
func TestSlapUnwarranted(t *testing.T) {
	s, ids := newTableState(t, 3)
	giveTopCard(s, ids[0], Card{Seven, Hearts})
	s.SayAndPlay(ids[0], Ace)
	handBefore := len(s.player(ids[2]).Hand)

	s.Slap(ids[2])

	if s.Phase != Fouling {
		t.Fatalf("phase = %v, want Fouling", s.Phase)
	}
	if got := len(s.player(ids[2]).Hand); got != handBefore+1 {
		t.Errorf("slapper hand = %d, want %d", got, handBefore+1)
	}
	reason := s.EventLog[len(s.EventLog)-1]
	if !strings.Contains(reason, "Player C shouldn't have slapped!") {
		t.Errorf("foul reason = %q", reason)
	}
}

// TestSlapRace walks a full three-player race on a Jack: the first two
// slappers are safe, the last one is fouled and takes the pile.
func TestSlapRace(t *testing.T) {
	s, ids := newTableState(t, 3)
	giveTopCard(s, ids[0], Card{Jack, Spades})
	s.SayAndPlay(ids[0], Ace)

	s.Slap(ids[2])
	if s.Phase != Slapping {
		t.Fatalf("after first slap: phase = %v, want Slapping", s.Phase)
	}
	if last := s.EventLog[len(s.EventLog)-1]; last != "C slapped!" {
		t.Errorf("after first slap: event = %q, want %q", last, "C slapped!")
	}

	s.Slap(ids[0])
	if s.Phase != Slapping {
		t.Fatalf("after second slap: phase = %v, want Slapping", s.Phase)
	}

	lastHandBefore := len(s.player(ids[1]).Hand)
	s.Slap(ids[1])
	if s.Phase != Fouling {
		t.Fatalf("after last slap: phase = %v, want Fouling", s.Phase)
	}
	if got := len(s.player(ids[1]).Hand); got != lastHandBefore+1 {
		t.Errorf("last slapper hand = %d, want %d (took the Jack)", got, lastHandBefore+1)
	}
	reason := s.EventLog[len(s.EventLog)-1]
	if !strings.Contains(reason, "B slapped last!") {
		t.Errorf("foul reason = %q", reason)
	}
}

// TestSlapRepeatIsNoOpForResolution verifies a second slap by the same
// player is recorded but never re-triggers race completion.
func TestSlapRepeatIsNoOpForResolution(t *testing.T) {
	s, ids := newTableState(t, 3)
	giveTopCard(s, ids[0], Card{Jack, Spades})
	s.SayAndPlay(ids[0], Ace)

	s.Slap(ids[2])
	events := len(s.EventLog)
	moves := len(s.Moves)

	s.Slap(ids[2])

	if s.Phase != Slapping {
		t.Fatalf("phase = %v, want Slapping", s.Phase)
	}
	if len(s.Moves) != moves+1 {
		t.Errorf("repeat slap not recorded as a move")
	}
	if len(s.EventLog) != events {
		t.Errorf("repeat slap produced events: %v", s.EventLog[events:])
	}
	// Rank keeps the first arrival.
	if got := s.slapRank(ids[2]); got != 1 {
		t.Errorf("slap rank = %d, want 1", got)
	}
}

// TestSlapWins verifies a warranted slap with an empty hand is a win.
func TestSlapWins(t *testing.T) {
	s, ids := newTableState(t, 3)
	giveTopCard(s, ids[0], Card{Jack, Spades})
	s.SayAndPlay(ids[0], Ace)
	s.player(ids[1]).Hand = nil

	s.Slap(ids[1])

	if s.Phase != Winning {
		t.Errorf("phase = %v, want Winning", s.Phase)
	}
}

// TestSlapWinLostToLastPlace verifies the resolution order when the
// empty-handed slapper is also the last seat to react: the
// last-slapper foul overrides the win and the pile refills their hand.
func TestSlapWinLostToLastPlace(t *testing.T) {
	s, ids := newTableState(t, 2)
	giveTopCard(s, ids[0], Card{Jack, Spades})
	s.SayAndPlay(ids[0], Ace)
	s.Slap(ids[0])
	s.player(ids[1]).Hand = nil

	s.Slap(ids[1])

	if s.Phase != Fouling {
		t.Fatalf("phase = %v, want Fouling", s.Phase)
	}
	if got := len(s.player(ids[1]).Hand); got != 1 {
		t.Errorf("slapper hand = %d, want 1 (took the pile)", got)
	}
	reason := s.EventLog[len(s.EventLog)-1]
	if !strings.Contains(reason, "B slapped last!") {
		t.Errorf("foul reason = %q", reason)
	}
}

// TestNewRoundRotatesAndArchives verifies round completion: the move
// log freezes into history, per-round state clears, the starting flag
// rotates one seat, and hands carry over.
func TestNewRoundRotatesAndArchives(t *testing.T) {
	s, ids := newTableState(t, 3)
	giveTopCard(s, ids[0], Card{Seven, Hearts})
	s.SayAndPlay(ids[0], Ace)
	handSizes := make([]int, 3)
	for i, id := range ids {
		handSizes[i] = len(s.player(id).Hand)
	}

	s.NewRound()

	if s.RoundNumber() != 2 {
		t.Fatalf("round number = %d, want 2", s.RoundNumber())
	}
	if len(s.Rounds) != 1 || len(s.Rounds[0]) != 1 {
		t.Errorf("archived rounds = %v, want one round of one move", len(s.Rounds))
	}
	if len(s.Moves) != 0 || len(s.Pile) != 0 || len(s.Said) != 0 || len(s.Slapped) != 0 {
		t.Errorf("per-round state not cleared")
	}
	if got := s.StartingPlayer(); got != ids[1] {
		t.Errorf("starting player = %v, want rotated seat %v", got, ids[1])
	}
	assertOneStartingPlayer(t, s)
	// Hands carry over: no reshuffle on a normal round end.
	for i, id := range ids {
		if len(s.player(id).Hand) != handSizes[i] {
			t.Errorf("seat %d hand size changed across NewRound: %d -> %d", i, handSizes[i], len(s.player(id).Hand))
		}
	}
	last := s.EventLog[len(s.EventLog)-1]
	if last != "Round 2. Starting player: B" {
		t.Errorf("round event = %q", last)
	}
}

// TestCloneIndependence verifies a clone shares nothing a transition
// can mutate.
func TestCloneIndependence(t *testing.T) {
	s, ids := newTableState(t, 2)
	giveTopCard(s, ids[0], Card{Seven, Hearts})

	c := s.Clone()
	c.SayAndPlay(ids[0], Ace)
	c.Event("only in clone")

	if len(s.Pile) != 0 {
		t.Errorf("original pile mutated: %v", s.Pile)
	}
	if len(s.Moves) != 0 {
		t.Errorf("original move log mutated")
	}
	origHand := len(s.player(ids[0]).Hand)
	cloneHand := len(c.player(ids[0]).Hand)
	if cloneHand != origHand-1 {
		t.Errorf("clone hand = %d, want %d", cloneHand, origHand-1)
	}
	for _, e := range s.EventLog {
		if e == "only in clone" {
			t.Errorf("original event log mutated")
		}
	}
}

// TestErrorPhaseIsSticky verifies Error records the message and parks
// the session in Erroring until a reset.
func TestErrorPhaseIsSticky(t *testing.T) {
	s, _ := newTableState(t, 2)
	s.Error("invariant broken")
	if s.Phase != Erroring {
		t.Fatalf("phase = %v, want Erroring", s.Phase)
	}
	if s.EventLog[len(s.EventLog)-1] != "invariant broken" {
		t.Errorf("error message not logged")
	}

	s.Reset()
	if s.Phase != Playing {
		t.Errorf("phase after reset = %v, want Playing", s.Phase)
	}
}
