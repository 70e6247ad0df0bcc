package hub

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/draftpit/cricket-draft-backend/internal/engine"
	"github.com/draftpit/cricket-draft-backend/internal/room"
	"github.com/draftpit/cricket-draft-backend/internal/store"
)

func TestHub_Create_Get_SamePointer(t *testing.T) {
	ctx := context.Background()
	h := NewHub(ctx, nil)
	reply := make(chan *room.Room, 1)

	state := engine.NewSession("ZED123", "alice", engine.DefaultPool)
	h.Inbox() <- CreateRoom{Code: "ZED123", State: state, Reply: reply}
	rm1 := <-reply

	h.Inbox() <- GetRoom{Code: "ZED123", Reply: reply}
	rm2 := <-reply

	if rm1 == nil || rm2 == nil || rm1 != rm2 {
		t.Fatalf("expected same room pointer")
	}
}

func TestHub_Get_UnknownCode_Nil(t *testing.T) {
	h := NewHub(context.Background(), nil)
	reply := make(chan *room.Room, 1)

	h.Inbox() <- GetRoom{Code: "NOPE", Reply: reply}
	if <-reply != nil {
		t.Fatalf("unknown code must reply nil")
	}
}

func TestHub_Ensure_RevivesFromStore(t *testing.T) {
	st, err := store.Open(filepath.Join(t.TempDir(), "hub.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer st.Close()

	ctx := context.Background()
	state := engine.NewSession("AB12CD", "alice", engine.DefaultPool)
	if err := st.SaveSession(ctx, state); err != nil {
		t.Fatalf("save session: %v", err)
	}

	// Fresh hub, as after a process restart: the session exists only in the
	// store.
	h := NewHub(ctx, st)
	reply := make(chan *room.Room, 1)

	h.Inbox() <- EnsureRoom{Code: "AB12CD", Reply: reply}
	rm := <-reply
	if rm == nil {
		t.Fatalf("expected room revived from store")
	}

	view := make(chan room.View, 1)
	rm.Inbox() <- room.GetState{Reply: view}
	select {
	case v := <-view:
		if v.State.Code != "AB12CD" || v.State.Host != "alice" {
			t.Fatalf("revived wrong state: %+v", v.State)
		}
	case <-time.After(time.Second):
		t.Fatalf("timed out waiting for view")
	}

	h.Inbox() <- EnsureRoom{Code: "MISSING", Reply: reply}
	if <-reply != nil {
		t.Fatalf("unknown code must reply nil even with a store")
	}
}

func TestHub_RemoveRoom(t *testing.T) {
	h := NewHub(context.Background(), nil)
	reply := make(chan *room.Room, 1)

	state := engine.NewSession("GONE01", "alice", engine.DefaultPool)
	h.Inbox() <- CreateRoom{Code: "GONE01", State: state, Reply: reply}
	<-reply

	h.Inbox() <- RemoveRoom{Code: "GONE01"}
	h.Inbox() <- GetRoom{Code: "GONE01", Reply: reply}
	if <-reply != nil {
		t.Fatalf("removed room must not resolve")
	}
}
