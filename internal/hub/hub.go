package hub

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/draftpit/cricket-draft-backend/internal/engine"
	"github.com/draftpit/cricket-draft-backend/internal/room"
	"github.com/draftpit/cricket-draft-backend/internal/store"
)

// Store is what the hub needs from persistence: save for the rooms it
// spawns, load for reviving a non-resident session on demand.
type Store interface {
	room.Store
	LoadSession(ctx context.Context, code string) (engine.Session, error)
}

type HubMsg interface{ isHubMsg() }

type CreateRoom struct {
	Code  string
	State engine.Session
	Reply chan *room.Room
}

type GetRoom struct {
	Code  string
	Reply chan *room.Room
}

// EnsureRoom returns the resident room for Code, reviving it from the store
// if the process restarted since it was created. Replies nil when the code is
// unknown everywhere.
type EnsureRoom struct {
	Code  string
	Reply chan *room.Room
}

type RemoveRoom struct {
	Code string
}

type ShutdownHub struct{}

func (CreateRoom) isHubMsg()  {}
func (GetRoom) isHubMsg()     {}
func (EnsureRoom) isHubMsg()  {}
func (RemoveRoom) isHubMsg()  {}
func (ShutdownHub) isHubMsg() {}

// Hub is the session registry: one actor owning the code -> room map, so
// rooms are created and removed without locks. Rooms themselves run their own
// goroutines; transitions in different rooms never serialize with each other.
type Hub struct {
	inbox  chan HubMsg
	rooms  map[string]*room.Room
	store  Store
	ctx    context.Context
	cancel context.CancelFunc
}

func NewHub(parent context.Context, st Store) *Hub {
	ctx, cancel := context.WithCancel(parent)
	h := &Hub{
		inbox:  make(chan HubMsg, 64),
		rooms:  make(map[string]*room.Room),
		store:  st,
		ctx:    ctx,
		cancel: cancel,
	}
	go h.loop()
	return h
}

func (h *Hub) Inbox() chan<- HubMsg { return h.inbox }

func (h *Hub) loop() {
	for {
		select {
		case <-h.ctx.Done():
			return

		case m := <-h.inbox:
			switch msg := m.(type) {
			case CreateRoom:
				if rm := h.rooms[msg.Code]; rm != nil {
					msg.Reply <- rm
					break
				}
				msg.Reply <- h.spawn(msg.State)

			case GetRoom:
				msg.Reply <- h.rooms[msg.Code] // may be nil

			case EnsureRoom:
				if rm := h.rooms[msg.Code]; rm != nil {
					msg.Reply <- rm
					break
				}
				if h.store == nil {
					msg.Reply <- nil
					break
				}
				state, err := h.store.LoadSession(h.ctx, msg.Code)
				if err != nil {
					if !errors.Is(err, store.ErrNotFound) {
						log.Error().Err(err).Str("room", msg.Code).Msg("failed to load session")
					}
					msg.Reply <- nil
					break
				}
				msg.Reply <- h.spawn(state)

			case RemoveRoom:
				delete(h.rooms, msg.Code)

			case ShutdownHub:
				for _, rm := range h.rooms {
					rm.Inbox() <- room.Shutdown{}
				}
				clear(h.rooms)
				h.cancel()
			}
		}
	}
}

func (h *Hub) spawn(state engine.Session) *room.Room {
	rm := room.New(h.ctx, state, room.Options{
		Store: h.store,
		OnRetire: func(code string) {
			select {
			case h.inbox <- RemoveRoom{Code: code}:
			case <-h.ctx.Done():
			}
		},
	})
	h.rooms[state.Code] = rm
	return rm
}
