package engine

import "github.com/google/uuid"

// ViewSelf identifies the player a view was built for.
type ViewSelf struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// ViewPlayer is the public summary of one seat. It exposes only
// derivable facts: never another player's hand contents, the raw slap
// set or the move log.
type ViewPlayer struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	HandSize   int       `json:"handSize"`
	IsStarting bool      `json:"isStartingPlayer"`
	// SlapRank is 0 if the player has not slapped this race, otherwise
	// their 1-based position in slap arrival order.
	SlapRank int `json:"slapRank"`
}

// View is the per-player snapshot broadcast after every state change.
// This field set is the only state clients may depend on.
type View struct {
	Self        ViewSelf     `json:"currentPlayer"`
	LastMove    *Move        `json:"lastMove,omitempty"`
	TopCard     *Card        `json:"topCard,omitempty"`
	PileSize    int          `json:"pileSize"`
	Players     []ViewPlayer `json:"players"` // in turn order
	EventLog    []string     `json:"eventLog"`
	RoundNumber int          `json:"roundNumber"`
}

// ViewFor builds the snapshot of the session as seen by forPlayer.
func (s *State) ViewFor(forPlayer uuid.UUID) View {
	v := View{
		Self:        ViewSelf{ID: forPlayer, Name: s.PlayerName(forPlayer)},
		PileSize:    len(s.Pile),
		EventLog:    append([]string(nil), s.EventLog...),
		RoundNumber: s.RoundNumber(),
	}
	if len(s.Moves) > 0 {
		last := s.Moves[len(s.Moves)-1]
		v.LastMove = &last
	}
	if len(s.Pile) > 0 {
		top := s.Pile[len(s.Pile)-1]
		v.TopCard = &top
	}
	v.Players = make([]ViewPlayer, len(s.Players))
	for i, p := range s.Players {
		v.Players[i] = ViewPlayer{
			ID:         p.ID,
			Name:       p.Name,
			HandSize:   len(p.Hand),
			IsStarting: p.IsStarting,
			SlapRank:   s.slapRank(p.ID),
		}
	}
	return v
}

// slapRank returns 1-based slap arrival order, or 0 if id has not
// slapped this race. Repeat slaps keep the first rank.
func (s *State) slapRank(id uuid.UUID) int {
	for i, slapped := range s.Slapped {
		if slapped == id {
			return i + 1
		}
	}
	return 0
}
