package engine

import "errors"

// DeckSize is the size of the standard deck: 13 values x 4 suits.
const DeckSize = int(NumValues) * int(NumSuits)

// ErrNoPlayers is returned when a deal is requested for fewer than one hand.
var ErrNoPlayers = errors.New("deal requires at least one player")

// newDeck enumerates all 52 (value, suit) combinations.
func newDeck() []Card {
	deck := make([]Card, 0, DeckSize)
	for v := Value(0); v < NumValues; v++ {
		for su := Suit(0); su < NumSuits; su++ {
			deck = append(deck, Card{Value: v, Suit: su})
		}
	}
	return deck
}

// DealHands shuffles a fresh 52-card deck and partitions it into n
// hands of near-equal size. Hand i (counting partitions i = n down
// to 1) takes ceil(remaining/i) cards off the front of the shuffled
// deck, so earlier hands receive the larger remainder and sizes differ
// by at most one. The only side effect is consuming the state's RNG.
func (s *State) DealHands(n int) ([][]Card, error) {
	if n < 1 {
		return nil, ErrNoPlayers
	}

	deck := newDeck()

	// Fisher-Yates shuffle.
	for i := len(deck) - 1; i > 0; i-- {
		j := int(s.randN(uint64(i + 1)))
		deck[i], deck[j] = deck[j], deck[i]
	}

	hands := make([][]Card, 0, n)
	for i := n; i > 0; i-- {
		take := (len(deck) + i - 1) / i // ceil(remaining / i)
		hands = append(hands, append([]Card(nil), deck[:take]...))
		deck = deck[take:]
	}
	return hands, nil
}
