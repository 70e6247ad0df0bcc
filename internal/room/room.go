package room

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/draftpit/cricket-draft-backend/internal/engine"
	"github.com/draftpit/cricket-draft-backend/pkg/types"
)

// TurnTimeout is how long a member has before an auto-selection is made on
// their behalf. Fixed per turn, not per member.
const TurnTimeout = 10 * time.Second

// CompletionGrace is how long a completed room stays resident so final
// broadcasts can drain before the room retires from the hub.
const CompletionGrace = 30 * time.Second

// Store is the durability sink. Saves are best-effort: a failure is logged
// and never rolls back the in-memory transition.
type Store interface {
	SaveSession(ctx context.Context, s engine.Session) error
}

type Msg interface{ isRoomMsg() }

// Join attaches a connection to the room. In the lobby a new name becomes a
// member; otherwise it is an observer attach and the client just gets a
// snapshot to resync.
type Join struct {
	ClientID string
	Member   string
	Outbox   chan types.ServerMessage
}

func (Join) isRoomMsg() {}

type Leave struct{ ClientID string }

func (Leave) isRoomMsg() {}

// FromClient carries a member command. ClientID identifies the originating
// connection so errors go back to it alone.
type FromClient struct {
	ClientID string
	Cmd      engine.Command
}

func (FromClient) isRoomMsg() {}

type Shutdown struct{}

func (Shutdown) isRoomMsg() {}

type GetState struct {
	Reply chan View
}

func (GetState) isRoomMsg() {}

// timerFired is the turn timer's deferred callback. Gen is the generation
// token captured at arm time; a stale gen means the timer was disarmed (or
// replaced) after this fire was already queued, and it must not apply.
type timerFired struct{ gen uint64 }

func (timerFired) isRoomMsg() {}

// retire ends a completed room after the grace window.
type retire struct{}

func (retire) isRoomMsg() {}

type View struct {
	Version    int
	NumClients int
	TimerArmed bool
	TimerGen   uint64
	State      engine.Session
}

type client struct {
	member string
	outbox chan types.ServerMessage
}

// Room owns one session's live state. A single goroutine consumes the inbox,
// so every transition — human command or timer fire — runs in an exclusive
// section, and broadcasts leave in exactly commit order. Persisting and
// fan-out both happen before the next message is consumed.
type Room struct {
	inbox    chan Msg
	state    engine.Session
	version  int
	clients  map[string]client
	clock    clockwork.Clock
	store    Store
	onRetire func(code string)

	timer      clockwork.Timer
	timerGen   uint64
	graceTimer clockwork.Timer

	ctx    context.Context
	cancel context.CancelFunc
	log    zerolog.Logger
}

// Options configures a Room. The zero value is valid: real clock, no
// persistence, no retire hook.
type Options struct {
	Clock    clockwork.Clock
	Store    Store
	OnRetire func(code string)
}

func New(parent context.Context, initial engine.Session, opts Options) *Room {
	ctx, cancel := context.WithCancel(parent)
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}

	r := &Room{
		inbox:    make(chan Msg, 64),
		state:    initial,
		clients:  make(map[string]client),
		clock:    opts.Clock,
		store:    opts.Store,
		onRetire: opts.OnRetire,
		ctx:      ctx,
		cancel:   cancel,
		log:      log.With().Str("room", initial.Code).Logger(),
	}

	// A session revived mid-draft gets its turn timer back; the member on
	// turn starts a fresh deadline rather than stalling the room. A revived
	// completed session only serves snapshots for the grace window, then
	// retires again.
	switch initial.Phase {
	case engine.PhaseActive:
		r.armTimer()
	case engine.PhaseCompleted:
		r.scheduleRetire()
	}

	go r.loop()
	return r
}

// Inbox exposes the message channel to the ws layer and tests.
func (r *Room) Inbox() chan<- Msg { return r.inbox }

func (r *Room) loop() {
	for {
		select {
		case <-r.ctx.Done():
			r.shutdown()
			return

		case m := <-r.inbox:
			switch msg := m.(type) {
			case Join:
				r.handleJoin(msg)

			case Leave:
				if c, ok := r.clients[msg.ClientID]; ok {
					close(c.outbox)
					delete(r.clients, msg.ClientID)
				}

			case FromClient:
				events, next, err := engine.Apply(r.state, msg.Cmd)
				if err != nil {
					r.notifyError(msg.ClientID, err)
					break
				}
				if len(events) == 0 {
					break
				}
				r.applyTransition(events, next)

			case timerFired:
				r.handleTimerFired(msg)

			case GetState:
				msg.Reply <- View{
					Version:    r.version,
					NumClients: len(r.clients),
					TimerArmed: r.timer != nil,
					TimerGen:   r.timerGen,
					State:      r.state,
				}

			case retire:
				code := r.state.Code
				r.shutdown()
				if r.onRetire != nil {
					r.onRetire(code)
				}
				return

			case Shutdown:
				r.shutdown()
				return
			}
		}
	}
}

func (r *Room) handleJoin(msg Join) {
	r.clients[msg.ClientID] = client{member: msg.Member, outbox: msg.Outbox}

	events, next, _ := engine.Apply(r.state, engine.Command{Type: engine.CmdJoin, Member: msg.Member})
	if len(events) > 0 {
		r.commit(next)
		snap := types.Snapshot(r.state)
		r.broadcast(types.ServerMessage{Type: "RoomUpdated", Version: r.version, Room: &snap})
		return
	}

	// Observer attach / reconnect: resync just this client with the current
	// state, same version.
	snap := types.Snapshot(r.state)
	msg.Outbox <- types.ServerMessage{Type: "RoomUpdated", Version: r.version, Room: &snap}
}

func (r *Room) handleTimerFired(msg timerFired) {
	if msg.gen != r.timerGen {
		r.log.Debug().Uint64("gen", msg.gen).Msg("dropping stale timer fire")
		return
	}
	r.timer = nil

	member := r.state.CurrentTurn()
	events, next, err := engine.Apply(r.state, engine.Command{Type: engine.CmdAutoSelect, Member: member})
	if err != nil {
		// Only reachable if the timer outlived the turn it was armed for;
		// the generation check should have caught that.
		r.log.Warn().Err(err).Str("member", member).Msg("auto-selection rejected")
		return
	}
	r.applyTransition(events, next)
}

// applyTransition commits the already-validated next state, then broadcasts
// and re-arms as the events dictate. Every transition yields exactly one
// broadcast.
func (r *Room) applyTransition(events []engine.Event, next engine.Session) {
	// Disarming before the commit is what makes the human-vs-timeout race
	// safe: any fire already queued behind this message goes stale.
	if engine.ContainsEvent(events, engine.EvtSelectionApplied) {
		r.disarmTimer()
	}

	r.commit(next)

	switch {
	case engine.ContainsEvent(events, engine.EvtDraftCompleted):
		rosters := make([]types.RosterEntry, len(r.state.Members))
		for i, m := range r.state.Members {
			rosters[i] = types.RosterEntry{Name: m.Name, Claimed: m.Claimed}
		}
		r.broadcast(types.ServerMessage{Type: "DraftCompleted", Version: r.version, FinalRosters: rosters})
		r.scheduleRetire()

	case engine.ContainsEvent(events, engine.EvtDraftStarted):
		r.broadcast(types.ServerMessage{
			Type:        "DraftStarted",
			Version:     r.version,
			TurnOrder:   r.state.TurnOrder,
			CurrentTurn: r.state.CurrentTurn(),
			Pool:        r.state.Pool,
		})
		r.armTimer()

	case engine.ContainsEvent(events, engine.EvtSelectionApplied):
		var sel engine.Event
		for _, e := range events {
			if e.Type == engine.EvtSelectionApplied {
				sel = e
				break
			}
		}
		r.broadcast(types.ServerMessage{
			Type:         "SelectionApplied",
			Version:      r.version,
			SelectedBy:   sel.Member,
			Item:         sel.Item,
			AutoSelected: sel.Auto,
			NextTurn:     r.state.CurrentTurn(),
			Pool:         r.state.Pool,
		})
		r.armTimer()

	case engine.ContainsEvent(events, engine.EvtMemberJoined):
		snap := types.Snapshot(r.state)
		r.broadcast(types.ServerMessage{Type: "RoomUpdated", Version: r.version, Room: &snap})
	}
}

// commit installs the new state and persists it. The save is best-effort:
// in-memory state stays authoritative, durability catches up on the next
// transition.
func (r *Room) commit(next engine.Session) {
	r.state = next
	r.version++
	if r.store != nil {
		if err := r.store.SaveSession(r.ctx, r.state); err != nil {
			r.log.Error().Err(err).Msg("failed to save session")
		}
	}
}

// armTimer replaces any outstanding turn timer with a fresh one. At most one
// is live per room; the generation token invalidates fires from the old one.
func (r *Room) armTimer() {
	r.disarmTimer()
	gen := r.timerGen
	r.timer = r.clock.AfterFunc(TurnTimeout, func() {
		select {
		case r.inbox <- timerFired{gen: gen}:
		case <-r.ctx.Done():
		}
	})
}

// disarmTimer cancels the pending auto-selection. Idempotent; bumping the
// generation means even a fire already sitting in the inbox is a no-op.
func (r *Room) disarmTimer() {
	r.timerGen++
	if r.timer != nil {
		r.timer.Stop()
		r.timer = nil
	}
}

func (r *Room) scheduleRetire() {
	if r.graceTimer != nil {
		return
	}
	r.graceTimer = r.clock.AfterFunc(CompletionGrace, func() {
		select {
		case r.inbox <- retire{}:
		case <-r.ctx.Done():
		}
	})
}

func (r *Room) broadcast(msg types.ServerMessage) {
	for id, c := range r.clients {
		select {
		case c.outbox <- msg:
			// ok
		default:
			// Client is slow/full - drop them. They resync on re-join.
			close(c.outbox)
			delete(r.clients, id)
		}
	}
}

// notifyError reports a rejected command to the originating connection only;
// other members never see it.
func (r *Room) notifyError(clientID string, err error) {
	c, ok := r.clients[clientID]
	if !ok {
		return
	}
	select {
	case c.outbox <- types.ServerMessage{Type: "Error", Error: err.Error()}:
	default:
		close(c.outbox)
		delete(r.clients, clientID)
	}
}

func (r *Room) shutdown() {
	r.disarmTimer()
	if r.graceTimer != nil {
		r.graceTimer.Stop()
		r.graceTimer = nil
	}
	for id, c := range r.clients {
		close(c.outbox)
		delete(r.clients, id)
	}
	r.cancel()
}
