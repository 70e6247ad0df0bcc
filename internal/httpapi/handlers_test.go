package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/draftpit/cricket-draft-backend/internal/hub"
	"github.com/draftpit/cricket-draft-backend/internal/store"
	"github.com/draftpit/cricket-draft-backend/pkg/types"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "api.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	h := hub.NewHub(context.Background(), st)
	srv := httptest.NewServer(SetupRoutes(h, st, []string{"*"}))
	t.Cleanup(srv.Close)
	return srv
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(payload))
	require.NoError(t, err)
	return resp
}

func TestGenerateCode(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		code, err := GenerateCode()
		require.NoError(t, err)
		require.Len(t, code, 6)
		seen[code] = true
	}
	require.Greater(t, len(seen), 45, "codes should be effectively unique")
}

func TestCreateAndGetRoom(t *testing.T) {
	srv := newTestServer(t)

	resp := postJSON(t, srv.URL+"/api/rooms", map[string]string{"username": "alice"})
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created struct {
		Code string `json:"code"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	require.Len(t, created.Code, 6)

	get, err := http.Get(srv.URL + "/api/rooms/" + created.Code)
	require.NoError(t, err)
	defer get.Body.Close()
	require.Equal(t, http.StatusOK, get.StatusCode)

	var snap types.RoomSnapshot
	require.NoError(t, json.NewDecoder(get.Body).Decode(&snap))
	require.Equal(t, created.Code, snap.Code)
	require.Equal(t, "alice", snap.Host)
	require.Equal(t, "lobby", snap.Phase)
	require.Len(t, snap.Pool, 20)

	missing, err := http.Get(srv.URL + "/api/rooms/NO1234")
	require.NoError(t, err)
	defer missing.Body.Close()
	require.Equal(t, http.StatusNotFound, missing.StatusCode)
}

func TestCreateRoom_RequiresUsername(t *testing.T) {
	srv := newTestServer(t)

	resp := postJSON(t, srv.URL+"/api/rooms", map[string]string{})
	defer resp.Body.Close()
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAuthFlow(t *testing.T) {
	srv := newTestServer(t)
	creds := map[string]string{"username": "alice", "password": "hunter2"}

	resp := postJSON(t, srv.URL+"/api/auth/register", creds)
	resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	dup := postJSON(t, srv.URL+"/api/auth/register", creds)
	dup.Body.Close()
	require.Equal(t, http.StatusBadRequest, dup.StatusCode)

	login := postJSON(t, srv.URL+"/api/auth/login", creds)
	login.Body.Close()
	require.Equal(t, http.StatusOK, login.StatusCode)

	bad := postJSON(t, srv.URL+"/api/auth/login", map[string]string{"username": "alice", "password": "wrong"})
	bad.Body.Close()
	require.Equal(t, http.StatusBadRequest, bad.StatusCode)
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
}
