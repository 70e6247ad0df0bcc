package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/cors"

	"github.com/draftpit/cricket-draft-backend/internal/hub"
	"github.com/draftpit/cricket-draft-backend/internal/store"
	"github.com/draftpit/cricket-draft-backend/internal/ws"
)

func SetupRoutes(h *hub.Hub, st *store.Store, allowedOrigins []string) http.Handler {
	r := chi.NewRouter()

	r.Post("/api/auth/register", Register(st))
	r.Post("/api/auth/login", Login(st))
	r.Post("/api/rooms", CreateRoom(h, st))
	r.Get("/api/rooms/{code}", GetRoom(h, st))
	r.Get("/healthz", Healthz)
	r.Get("/ws", ws.Handler(h, allowedOrigins))

	c := cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
		AllowedHeaders: []string{"*"},
	})
	return c.Handler(r)
}
