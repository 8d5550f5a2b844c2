// Package game is the session controller: it owns the engine state,
// serializes all mutation behind one mutex, and pushes a fresh
// per-player view to every registered sink after each change.
package game

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/rookwood101/irish-snap/engine"
	"github.com/rookwood101/irish-snap/internal/cache"
	"github.com/rookwood101/irish-snap/internal/database"
	"github.com/rookwood101/irish-snap/internal/models"
)

// SendViewFunc delivers an updated view to one player.
type SendViewFunc func(v engine.View)

// SendNoticeFunc delivers a private human-readable notice to one
// player, used to reject actions the engine will not accept.
type SendNoticeFunc func(message string)

// playerSink bundles a player's registered output callbacks.
type playerSink struct {
	view   SendViewFunc
	notice SendNoticeFunc
}

// Game is one Irish Snap session. All engine mutation goes through
// mutate, which applies a transition to a deep copy of the state and
// swaps it in only once the transition is complete; concurrent actions
// serialize on Mu, and arrival order at that mutex is the tie-break
// for simultaneous slaps.
type Game struct {
	ID uuid.UUID
	Mu sync.Mutex

	state *engine.State
	sinks map[uuid.UUID]playerSink

	actionIndex int
	log         *logrus.Entry
}

// New creates a session seeded from the wall clock.
func New() *Game {
	id := uuid.New()
	return &Game{
		ID:    id,
		state: engine.NewState(uint64(time.Now().UnixNano())),
		sinks: make(map[uuid.UUID]playerSink),
		log:   logrus.WithField("game", id),
	}
}

// NewWithSeed creates a session with a deterministic deal, for tests.
func NewWithSeed(seed uint64) *Game {
	g := New()
	g.state = engine.NewState(seed)
	return g
}

// AddPlayer seats a player and registers their output sinks. The join
// restarts the game for everyone: turn order and hand ownership are
// undefined once the player set changes. Joining again with an id that
// is already seated is a reconnect: the seat and hand stay put and only
// the output sinks are replaced, so stable tokens never seat one
// identity twice.
func (g *Game) AddPlayer(id uuid.UUID, name string, view SendViewFunc, notice SendNoticeFunc) {
	g.Mu.Lock()
	defer g.Mu.Unlock()

	if g.state.HasPlayer(id) {
		g.sinks[id] = playerSink{view: view, notice: notice}
		g.log.WithFields(logrus.Fields{"player": id, "name": name}).Info("player reconnected")
		g.logAction(id, "rejoin", name)
		if view != nil {
			view(g.state.ViewFor(id))
		}
		return
	}

	g.sinks[id] = playerSink{view: view, notice: notice}
	g.log.WithFields(logrus.Fields{"player": id, "name": name}).Info("player joined")
	g.logAction(id, "join", name)
	g.mutate(func(d *engine.State) {
		d.AddPlayer(id, name)
	})
}

// RemovePlayer unseats a player; the game restarts for the rest.
func (g *Game) RemovePlayer(id uuid.UUID) {
	g.Mu.Lock()
	defer g.Mu.Unlock()

	if _, ok := g.sinks[id]; !ok {
		return
	}
	delete(g.sinks, id)
	g.log.WithField("player", id).Info("player left")
	g.logAction(id, "leave", "")
	g.mutate(func(d *engine.State) {
		d.RemovePlayer(id)
	})
}

// HandleAction routes one inbound player action. Every accepted action
// either produces a state transition or an explicit private rejection;
// nothing is silently dropped.
func (g *Game) HandleAction(playerID uuid.UUID, act models.Action) {
	g.Mu.Lock()
	defer g.Mu.Unlock()

	if !g.state.HasPlayer(playerID) {
		g.notify(playerID, "You are not seated at this table.")
		return
	}
	g.logAction(playerID, string(act.Kind), act.Payload)

	phase := g.state.Phase
	switch act.Kind {
	case models.ActionSayAndPlay:
		said, ok := engine.ParseValue(act.Payload)
		if !ok {
			g.notify(playerID, fmt.Sprintf("%q is not a card value.", act.Payload))
			return
		}
		switch phase {
		case engine.Playing:
			g.mutate(func(d *engine.State) {
				d.SayAndPlay(playerID, said)
			})
		case engine.Slapping:
			// Playing into a live slap race is illegal by construction.
			g.mutate(func(d *engine.State) {
				d.UncheckedSayAndPlay(playerID, said)
				d.Foul(playerID, fmt.Sprintf("%s played a card when they should've slapped!", d.PlayerName(playerID)))
			})
		default:
			g.notify(playerID, "You can't play a card right now.")
		}

	case models.ActionSlap:
		switch phase {
		case engine.Playing, engine.Slapping:
			g.mutate(func(d *engine.State) {
				d.Slap(playerID)
				if d.Phase == engine.Winning {
					d.Event(fmt.Sprintf("%s wins!", d.PlayerName(playerID)))
				}
			})
		default:
			g.notify(playerID, "You can't slap right now.")
		}

	default:
		g.notify(playerID, fmt.Sprintf("Unknown move %q.", act.Kind))
	}
}

// State returns the current engine state. Callers must hold Mu and
// treat the result as read-only.
func (g *Game) State() *engine.State { return g.state }

// mutate applies fn to a clone of the state, runs post-transition
// housekeeping, swaps the clone in, and broadcasts. A half-applied
// transition is never observable. Caller holds Mu.
func (g *Game) mutate(fn func(d *engine.State)) {
	draft := g.state.Clone()
	fn(draft)

	switch draft.Phase {
	case engine.Fouling:
		// A foul ends the streak; start the next round immediately so
		// play continues with the offender holding the pile. Clients
		// never observe the transient phase: views carry no phase.
		draft.NewRound()
		g.archiveLastRound(draft)
	case engine.Erroring:
		if len(draft.EventLog) > 0 {
			g.log.WithField("event", draft.EventLog[len(draft.EventLog)-1]).Error("engine entered error phase")
		} else {
			g.log.Error("engine entered error phase")
		}
	}

	g.state = draft
	g.broadcast()
}

// broadcast pushes a fresh view to every registered player. Caller
// holds Mu; sinks must not block.
func (g *Game) broadcast() {
	for _, id := range g.state.PlayerIDs() {
		sink, ok := g.sinks[id]
		if !ok || sink.view == nil {
			continue
		}
		sink.view(g.state.ViewFor(id))
	}
}

// notify sends a private rejection notice. Caller holds Mu.
func (g *Game) notify(playerID uuid.UUID, message string) {
	g.log.WithFields(logrus.Fields{"player": playerID, "notice": message}).Debug("action rejected")
	if sink, ok := g.sinks[playerID]; ok && sink.notice != nil {
		sink.notice(message)
	}
}

// archiveLastRound persists the most recently frozen round, fire and
// forget. Caller holds Mu.
func (g *Game) archiveLastRound(s *engine.State) {
	if database.DB == nil || len(s.Rounds) == 0 {
		return
	}
	roundNumber := len(s.Rounds)
	moves := s.Rounds[roundNumber-1]
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := database.StoreRound(ctx, g.ID, roundNumber, moves); err != nil {
			g.log.WithError(err).WithField("round", roundNumber).Error("failed archiving round")
		}
	}()
}

// logAction publishes the action to the Redis historian, fire and
// forget. Caller holds Mu.
func (g *Game) logAction(actorID uuid.UUID, kind, payload string) {
	g.actionIndex++
	rec := cache.GameActionRecord{
		GameID:      g.ID,
		ActionIndex: g.actionIndex,
		ActorID:     actorID,
		Kind:        kind,
		Payload:     payload,
		Timestamp:   time.Now().UnixMilli(),
	}
	if cache.Rdb == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := cache.PublishGameAction(ctx, rec); err != nil {
			g.log.WithError(err).WithField("actionIndex", rec.ActionIndex).Error("failed publishing action")
		}
	}()
}
