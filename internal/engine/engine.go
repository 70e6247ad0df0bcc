package engine

import "errors"

var ErrForbidden = errors.New("only the host can start the draft")
var ErrOutOfTurn = errors.New("not your turn")
var ErrQuotaReached = errors.New("team already full")
var ErrItemUnavailable = errors.New("player not available")
var ErrInvalidState = errors.New("invalid session state")
var ErrUnsupportedCommand = errors.New("unsupported command")

type CommandType string

const (
	CmdJoin       CommandType = "Join"
	CmdStartDraft CommandType = "StartDraft"
	CmdSelectItem CommandType = "SelectItem"
	// CmdAutoSelect is internal: the turn timer is the only sender.
	CmdAutoSelect CommandType = "AutoSelect"
)

type Command struct {
	Type   CommandType
	Member string
	Item   string
}

type EventType string

const (
	EvtMemberJoined     EventType = "MemberJoined"
	EvtDraftStarted     EventType = "DraftStarted"
	EvtSelectionApplied EventType = "SelectionApplied"
	EvtTurnAdvanced     EventType = "TurnAdvanced"
	EvtDraftCompleted   EventType = "DraftCompleted"
)

type Event struct {
	Type   EventType
	Member string
	Item   string
	Auto   bool
}

// Apply is the single transition function: it validates cmd against s and
// returns the events plus the updated session. On error the returned session
// is s unchanged; no partial mutation is ever visible. Apply owns every state
// rule; timing, persistence, and fan-out belong to the room actor.
func Apply(s Session, cmd Command) ([]Event, Session, error) {
	switch cmd.Type {
	case CmdJoin:
		// New arrivals only count in the lobby. Re-joins and late joins are
		// observer attaches: no membership or roster change.
		if s.Phase != PhaseLobby || s.memberIndex(cmd.Member) >= 0 {
			return nil, s, nil
		}
		next := s.clone()
		next.Members = append(next.Members, Member{Name: cmd.Member, Claimed: []string{}})
		return []Event{{Type: EvtMemberJoined, Member: cmd.Member}}, next, nil

	case CmdStartDraft:
		if s.Phase != PhaseLobby {
			return nil, s, ErrInvalidState
		}
		if cmd.Member != s.Host {
			return nil, s, ErrForbidden
		}
		// Stale-state guard: a lobby session should never hold a full team.
		for _, m := range s.Members {
			if len(m.Claimed) >= Quota {
				return nil, s, ErrInvalidState
			}
		}
		// The pool must cover a full draft; with fewer items than
		// members×quota the selections run dry and the draft can never
		// complete.
		if len(s.Pool) < len(s.Members)*Quota {
			return nil, s, ErrInvalidState
		}
		next := s.clone()
		order := make([]string, len(next.Members))
		for i, m := range next.Members {
			order[i] = m.Name
		}
		shuffleOrder(order)
		next.TurnOrder = order
		next.Phase = PhaseActive
		next.Turn = 0
		return []Event{{Type: EvtDraftStarted}}, next, nil

	case CmdSelectItem:
		if s.Phase != PhaseActive {
			return nil, s, ErrInvalidState
		}
		if cmd.Member != s.CurrentTurn() {
			return nil, s, ErrOutOfTurn
		}
		return applySelection(s, cmd.Member, cmd.Item, false)

	case CmdAutoSelect:
		// Timer-fired path. Revalidate everything: a selection may have raced
		// in just before the fire, or the session may already be done.
		if s.Phase != PhaseActive {
			return nil, s, ErrInvalidState
		}
		if cmd.Member != s.CurrentTurn() {
			return nil, s, ErrOutOfTurn
		}
		if len(s.Pool) == 0 {
			return nil, s, ErrItemUnavailable
		}
		return applySelection(s, cmd.Member, samplePool(s.Pool), true)

	default:
		return nil, s, ErrUnsupportedCommand
	}
}

// applySelection moves item from the pool to member's claimed list and
// advances the turn. Shared by the manual and auto paths.
func applySelection(s Session, member, item string, auto bool) ([]Event, Session, error) {
	mi := s.memberIndex(member)
	if len(s.Members[mi].Claimed) >= Quota {
		// Unreachable under the turn-advance policy, checked anyway.
		return nil, s, ErrQuotaReached
	}
	if !poolContains(s.Pool, item) {
		return nil, s, ErrItemUnavailable
	}

	next := s.clone()
	next.Pool = poolRemove(next.Pool, item)
	next.Members[mi].Claimed = append(next.Members[mi].Claimed, item)

	events := []Event{{Type: EvtSelectionApplied, Member: member, Item: item, Auto: auto}}

	if idx, ok := nextEligible(next); ok {
		next.Turn = idx
		events = append(events, Event{Type: EvtTurnAdvanced, Member: next.TurnOrder[idx]})
	} else {
		next.Phase = PhaseCompleted
		next.Turn = NoTurn
		events = append(events, Event{Type: EvtDraftCompleted})
	}
	return events, next, nil
}

// ContainsEvent reports whether events holds an event of the given type.
func ContainsEvent(events []Event, eventType EventType) bool {
	for _, event := range events {
		if event.Type == eventType {
			return true
		}
	}
	return false
}
