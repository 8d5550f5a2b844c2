package engine

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Value is a card value in play order. Ace is low and the spoken
// sequence wraps King back around to Ace.
type Value uint8

const (
	Ace Value = iota
	Two
	Three
	Four
	Five
	Six
	Seven
	Eight
	Nine
	Ten
	Jack
	Queen
	King

	NumValues = 13
)

var valueNames = [NumValues]string{
	"Ace", "2", "3", "4", "5", "6", "7", "8", "9", "10", "Jack", "Queen", "King",
}

// Next returns the value that follows v in play order, wrapping King to Ace.
func (v Value) Next() Value { return (v + 1) % NumValues }

func (v Value) String() string {
	if v >= NumValues {
		return fmt.Sprintf("Value(%d)", uint8(v))
	}
	return valueNames[v]
}

// ParseValue maps one of the 13 canonical value strings back to a Value.
func ParseValue(s string) (Value, bool) {
	for i, name := range valueNames {
		if name == s {
			return Value(i), true
		}
	}
	return 0, false
}

// MarshalJSON encodes the value as its canonical string ("Ace", "2", ..., "King").
func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.String())
}

func (v *Value) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, ok := ParseValue(s)
	if !ok {
		return fmt.Errorf("unknown card value %q", s)
	}
	*v = parsed
	return nil
}

// Suit is one of the four standard suits.
type Suit uint8

const (
	Spades Suit = iota
	Hearts
	Diamonds
	Clubs

	NumSuits = 4
)

var suitNames = [NumSuits]string{"Spades", "Hearts", "Diamonds", "Clubs"}

func (s Suit) String() string {
	if s >= NumSuits {
		return fmt.Sprintf("Suit(%d)", uint8(s))
	}
	return suitNames[s]
}

func (s Suit) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *Suit) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	for i, n := range suitNames {
		if n == name {
			*s = Suit(i)
			return nil
		}
	}
	return fmt.Errorf("unknown suit %q", name)
}

// Card is an immutable (value, suit) pair. A deck never contains two
// cards with the same pair.
type Card struct {
	Value Value `json:"value"`
	Suit  Suit  `json:"suit"`
}

func (c Card) String() string {
	return c.Value.String() + " of " + c.Suit.String()
}

// Phase is the closed set of session states. It is the single authority
// over which actions are legal at any moment.
type Phase uint8

const (
	WaitingForPlayers Phase = iota // no active round yet
	Playing                        // normal turn-taking
	Slapping                       // a slap race is live
	Fouling                        // a violation was just resolved
	Erroring                       // unrecoverable internal break; only Reset recovers
	Winning                        // terminal: somebody emptied their hand
)

var phaseNames = [...]string{
	"WaitingForPlayers", "Playing", "Slapping", "Fouling", "Erroring", "Winning",
}

func (p Phase) String() string {
	if int(p) >= len(phaseNames) {
		return fmt.Sprintf("Phase(%d)", uint8(p))
	}
	return phaseNames[p]
}

// MoveKind tags the two player-originated moves.
type MoveKind string

const (
	MoveSayAndPlay MoveKind = "SayAndPlay"
	MoveSlap       MoveKind = "Slap"
)

// Move is one recorded action in the current round's move log.
// Played is nil when the actor's hand was empty (they still speak, to
// keep turn order consistent) and for Slap moves. Said is nil for Slap.
type Move struct {
	At     time.Time `json:"at"`
	Kind   MoveKind  `json:"kind"`
	Player uuid.UUID `json:"player"`
	Played *Card     `json:"played,omitempty"`
	Said   *Value    `json:"said,omitempty"`
}

// Player is one seat at the table. Hand is a stack: index 0 is the
// bottom, the last element is the top; cards are played off the top and
// fouled piles are pushed underneath.
type Player struct {
	ID         uuid.UUID
	Name       string
	Hand       []Card
	IsStarting bool
}
