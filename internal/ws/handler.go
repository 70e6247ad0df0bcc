package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/draftpit/cricket-draft-backend/internal/engine"
	"github.com/draftpit/cricket-draft-backend/internal/hub"
	"github.com/draftpit/cricket-draft-backend/internal/room"
	"github.com/draftpit/cricket-draft-backend/pkg/types"
)

// Handler subscribes a connection to a room and relays member actions into
// it. Identity is bound once from the query string; commands on the wire
// carry no member field, so a connection can only act as itself.
func Handler(h *hub.Hub, allowedOrigins []string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		code := r.URL.Query().Get("code")
		name := r.URL.Query().Get("name")
		if code == "" || name == "" {
			http.Error(w, "missing code or name", http.StatusBadRequest)
			return
		}

		reply := make(chan *room.Room, 1)
		h.Inbox() <- hub.EnsureRoom{Code: code, Reply: reply}
		rm := <-reply
		if rm == nil {
			http.Error(w, "room not found", http.StatusNotFound)
			return
		}

		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			OriginPatterns: allowedOrigins,
		})
		if err != nil {
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "bye")

		out := make(chan types.ServerMessage, 16)
		clientID := uuid.NewString()

		rm.Inbox() <- room.Join{ClientID: clientID, Member: name, Outbox: out}
		defer func() { rm.Inbox() <- room.Leave{ClientID: clientID} }()

		// Writer goroutine: drains the room's outbox in order. The room
		// closing the outbox (retire, shutdown, slow-client drop) closes the
		// connection too, which unblocks the reader below — otherwise it
		// would keep feeding commands into an inbox nobody drains.
		writeCtx, writeCancel := context.WithCancel(r.Context())
		defer writeCancel()
		go func() {
			for msg := range out {
				payload, err := json.Marshal(msg)
				if err != nil {
					log.Error().Err(err).Str("room", code).Msg("failed to marshal server message")
					continue
				}
				ctx, cancel := context.WithTimeout(writeCtx, 3*time.Second)
				_ = conn.Write(ctx, websocket.MessageText, payload)
				cancel()
			}
			_ = conn.Close(websocket.StatusGoingAway, "room closed")
		}()

		// Reader loop
		for {
			_, data, err := conn.Read(r.Context())
			if err != nil {
				switch websocket.CloseStatus(err) {
				case websocket.StatusNormalClosure, websocket.StatusGoingAway:
					return
				}
				return
			}

			var cm types.ClientMessage
			if err := json.Unmarshal(data, &cm); err != nil {
				_ = conn.Write(r.Context(), websocket.MessageText,
					[]byte(`{"type":"Error","error":"bad json"}`))
				continue
			}

			cmd, ok := toCommand(name, cm)
			if !ok {
				_ = conn.Write(r.Context(), websocket.MessageText,
					[]byte(`{"type":"Error","error":"unknown type"}`))
				continue
			}

			rm.Inbox() <- room.FromClient{ClientID: clientID, Cmd: cmd}
		}
	}
}

func toCommand(member string, m types.ClientMessage) (engine.Command, bool) {
	switch m.Type {
	case "StartDraft":
		return engine.Command{Type: engine.CmdStartDraft, Member: member}, true
	case "SelectItem":
		return engine.Command{Type: engine.CmdSelectItem, Member: member, Item: m.Item}, true
	default:
		return engine.Command{}, false
	}
}
