package types

import "github.com/draftpit/cricket-draft-backend/internal/engine"

// RoomSnapshot is the full read-only view of a session, sent to every
// subscriber on attach and returned by the room lookup endpoint. It is also
// the resync mechanism: a reconnecting client gets one immediately.
type RoomSnapshot struct {
	Code        string        `json:"code"`
	Host        string        `json:"host"`
	Phase       string        `json:"phase"`
	Members     []RosterEntry `json:"members"`
	Pool        []string      `json:"pool"`
	TurnOrder   []string      `json:"turn_order,omitempty"`
	CurrentTurn string        `json:"current_turn,omitempty"`
}

func Snapshot(s engine.Session) RoomSnapshot {
	members := make([]RosterEntry, len(s.Members))
	for i, m := range s.Members {
		members[i] = RosterEntry{Name: m.Name, Claimed: m.Claimed}
	}
	return RoomSnapshot{
		Code:        s.Code,
		Host:        s.Host,
		Phase:       string(s.Phase),
		Members:     members,
		Pool:        s.Pool,
		TurnOrder:   s.TurnOrder,
		CurrentTurn: s.CurrentTurn(),
	}
}
