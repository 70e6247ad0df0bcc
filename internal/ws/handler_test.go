package ws

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"

	"github.com/draftpit/cricket-draft-backend/internal/engine"
	"github.com/draftpit/cricket-draft-backend/internal/hub"
	"github.com/draftpit/cricket-draft-backend/internal/room"
	"github.com/draftpit/cricket-draft-backend/pkg/types"
)

func TestHandler_ClosesConnectionWhenRoomGoesAway(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	h := hub.NewHub(ctx, nil)
	state := engine.NewSession("ROOM01", "alice", engine.DefaultPool)
	reply := make(chan *room.Room, 1)
	h.Inbox() <- hub.CreateRoom{Code: "ROOM01", State: state, Reply: reply}
	rm := <-reply

	srv := httptest.NewServer(Handler(h, []string{"*"}))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "?code=ROOM01&name=alice"
	dialCtx, dialCancel := context.WithTimeout(ctx, 5*time.Second)
	defer dialCancel()
	conn, _, err := websocket.Dial(dialCtx, url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "bye")

	// First frame is the resync snapshot.
	readCtx, readCancel := context.WithTimeout(ctx, 5*time.Second)
	_, data, err := conn.Read(readCtx)
	readCancel()
	if err != nil {
		t.Fatalf("read snapshot: %v", err)
	}
	var msg types.ServerMessage
	if err := json.Unmarshal(data, &msg); err != nil || msg.Type != "RoomUpdated" {
		t.Fatalf("want RoomUpdated snapshot, got %s (err %v)", data, err)
	}

	// The room ends while the connection is still open. The server must
	// close the socket instead of leaving the client attached to a room
	// that no longer consumes commands.
	rm.Inbox() <- room.Shutdown{}

	closeCtx, closeCancel := context.WithTimeout(ctx, 5*time.Second)
	defer closeCancel()
	if _, _, err := conn.Read(closeCtx); err == nil {
		t.Fatalf("expected the server to close the connection")
	}
	if closeCtx.Err() != nil {
		t.Fatalf("connection was never closed after the room shut down")
	}
}
