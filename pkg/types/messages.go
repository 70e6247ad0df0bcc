package types

// ClientMessage is what a connected member sends over the websocket. The
// member identity is bound at connect time, never taken from the message.
type ClientMessage struct {
	Type string `json:"type"` // "StartDraft" | "SelectItem"
	Item string `json:"item,omitempty"`
}

// ServerMessage is the single outbound envelope. Type selects which fields
// are populated:
//
//	RoomUpdated:      Room
//	DraftStarted:     TurnOrder, CurrentTurn, Pool
//	SelectionApplied: SelectedBy, Item, AutoSelected, NextTurn, Pool
//	DraftCompleted:   FinalRosters
//	Error:            Error (sent only to the originating caller)
type ServerMessage struct {
	Type         string        `json:"type"`
	Version      int           `json:"version,omitempty"`
	Room         *RoomSnapshot `json:"room,omitempty"`
	TurnOrder    []string      `json:"turn_order,omitempty"`
	CurrentTurn  string        `json:"current_turn,omitempty"`
	Pool         []string      `json:"pool,omitempty"`
	SelectedBy   string        `json:"selected_by,omitempty"`
	Item         string        `json:"item,omitempty"`
	AutoSelected bool          `json:"auto_selected,omitempty"`
	NextTurn     string        `json:"next_turn,omitempty"`
	FinalRosters []RosterEntry `json:"final_rosters,omitempty"`
	Error        string        `json:"error,omitempty"`
}

type RosterEntry struct {
	Name    string   `json:"name"`
	Claimed []string `json:"claimed"`
}
