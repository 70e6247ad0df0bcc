package engine

import "slices"

// Quota is the number of items every member drafts before the session completes.
const Quota = 5

type Phase string

const (
	PhaseLobby     Phase = "lobby"
	PhaseActive    Phase = "active"
	PhaseCompleted Phase = "completed"
)

// Member is one participant, identified by display name within the session.
type Member struct {
	Name    string   `json:"name"`
	Claimed []string `json:"claimed"`
}

// Session is the full draft state. It is a value: Apply never mutates its
// input, it returns an updated copy. NoTurn marks the turn pointer when the
// session is not Active.
type Session struct {
	Code      string   `json:"code"`
	Host      string   `json:"host"`
	Phase     Phase    `json:"phase"`
	Members   []Member `json:"members"`
	Pool      []string `json:"pool"`
	TurnOrder []string `json:"turn_order"`
	Turn      int      `json:"turn"`
}

const NoTurn = -1

// NewSession creates a Lobby session with the creator as host and sole member.
func NewSession(code, host string, pool []string) Session {
	return Session{
		Code:    code,
		Host:    host,
		Phase:   PhaseLobby,
		Members: []Member{{Name: host, Claimed: []string{}}},
		Pool:    slices.Clone(pool),
		Turn:    NoTurn,
	}
}

// CurrentTurn returns the name of the member whose turn it is, or "" when the
// session has no active turn.
func (s Session) CurrentTurn() string {
	if s.Phase != PhaseActive || s.Turn == NoTurn {
		return ""
	}
	return s.TurnOrder[s.Turn]
}

func (s Session) memberIndex(name string) int {
	return slices.IndexFunc(s.Members, func(m Member) bool { return m.Name == name })
}

// clone deep-copies the session so a transition can build the next state
// without aliasing the previous one.
func (s Session) clone() Session {
	next := s
	next.Pool = slices.Clone(s.Pool)
	next.TurnOrder = slices.Clone(s.TurnOrder)
	next.Members = make([]Member, len(s.Members))
	for i, m := range s.Members {
		next.Members[i] = Member{Name: m.Name, Claimed: slices.Clone(m.Claimed)}
	}
	return next
}
