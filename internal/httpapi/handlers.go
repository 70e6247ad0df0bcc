package httpapi

import (
	"crypto/rand"
	"encoding/json"
	"errors"
	"math/big"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/draftpit/cricket-draft-backend/internal/engine"
	"github.com/draftpit/cricket-draft-backend/internal/hub"
	"github.com/draftpit/cricket-draft-backend/internal/room"
	"github.com/draftpit/cricket-draft-backend/internal/store"
	"github.com/draftpit/cricket-draft-backend/pkg/types"
)

func GenerateCode() (string, error) {
	const charset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

	code := make([]byte, 6)
	for i := 0; i < 6; i++ {
		num, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		if err != nil {
			return "", err
		}
		code[i] = charset[num.Int64()]
	}
	return string(code), nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, struct {
		Message string `json:"message"`
	}{Message: msg})
}

// CreateRoom creates a Lobby session seeded with the default player pool and
// the requesting user as host.
func CreateRoom(h *hub.Hub, st *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Username string `json:"username"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Username == "" {
			writeMessage(w, http.StatusBadRequest, "username is required")
			return
		}

		var code string
		for {
			c, err := GenerateCode()
			if err != nil {
				writeMessage(w, http.StatusInternalServerError, "failed to generate code")
				return
			}
			if roomExists(r, h, st, c) {
				log.Warn().Str("code", c).Msg("room code collision, regenerating")
				continue
			}
			code = c
			break
		}

		state := engine.NewSession(code, req.Username, engine.DefaultPool)
		reply := make(chan *room.Room, 1)
		h.Inbox() <- hub.CreateRoom{Code: code, State: state, Reply: reply}
		if <-reply == nil {
			writeMessage(w, http.StatusInternalServerError, "failed to create room")
			return
		}

		if err := st.SaveSession(r.Context(), state); err != nil {
			log.Error().Err(err).Str("room", code).Msg("failed to save new session")
		}

		writeJSON(w, http.StatusCreated, struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		}{Code: code, Message: "Room created successfully"})
	}
}

func roomExists(r *http.Request, h *hub.Hub, st *store.Store, code string) bool {
	reply := make(chan *room.Room, 1)
	h.Inbox() <- hub.GetRoom{Code: code, Reply: reply}
	if <-reply != nil {
		return true
	}
	_, err := st.LoadSession(r.Context(), code)
	return err == nil
}

// GetRoom returns a read-only snapshot: live state when the room is
// resident, the persisted document otherwise.
func GetRoom(h *hub.Hub, st *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		code := chi.URLParam(r, "code")

		reply := make(chan *room.Room, 1)
		h.Inbox() <- hub.GetRoom{Code: code, Reply: reply}
		if rm := <-reply; rm != nil {
			view := make(chan room.View, 1)
			rm.Inbox() <- room.GetState{Reply: view}
			select {
			case v := <-view:
				writeJSON(w, http.StatusOK, types.Snapshot(v.State))
				return
			case <-r.Context().Done():
				return
			}
		}

		state, err := st.LoadSession(r.Context(), code)
		if errors.Is(err, store.ErrNotFound) {
			writeMessage(w, http.StatusNotFound, "Room not found")
			return
		}
		if err != nil {
			log.Error().Err(err).Str("room", code).Msg("failed to load session")
			writeMessage(w, http.StatusInternalServerError, "Server error")
			return
		}
		writeJSON(w, http.StatusOK, types.Snapshot(state))
	}
}

func Register(st *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Username string `json:"username"`
			Password string `json:"password"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Username == "" || req.Password == "" {
			writeMessage(w, http.StatusBadRequest, "username and password are required")
			return
		}

		err := st.CreateUser(r.Context(), req.Username, req.Password)
		if errors.Is(err, store.ErrUsernameTaken) {
			writeMessage(w, http.StatusBadRequest, "Username already exists")
			return
		}
		if err != nil {
			log.Error().Err(err).Msg("failed to create user")
			writeMessage(w, http.StatusInternalServerError, "Server error")
			return
		}

		writeJSON(w, http.StatusCreated, struct {
			Message  string `json:"message"`
			Username string `json:"username"`
		}{Message: "User registered successfully", Username: req.Username})
	}
}

func Login(st *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Username string `json:"username"`
			Password string `json:"password"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeMessage(w, http.StatusBadRequest, "invalid request body")
			return
		}

		err := st.Authenticate(r.Context(), req.Username, req.Password)
		if errors.Is(err, store.ErrInvalidCredentials) {
			writeMessage(w, http.StatusBadRequest, "Invalid credentials")
			return
		}
		if err != nil {
			log.Error().Err(err).Msg("failed to authenticate user")
			writeMessage(w, http.StatusInternalServerError, "Server error")
			return
		}

		writeJSON(w, http.StatusOK, struct {
			Message  string `json:"message"`
			Username string `json:"username"`
		}{Message: "Login successful", Username: req.Username})
	}
}

func Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}
