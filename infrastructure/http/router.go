// Package http wires the REST collaborator surface and the websocket
// endpoint onto one router.
package http

import (
	"net/http"

	"community-hub/infrastructure/ws"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

func NewRouter(rooms *RoomHandler, files *FileHandler, health *HealthHandler,
	wsHandler *ws.Handler, allowedOrigins []string) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Recoverer)

	if len(allowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   allowedOrigins,
			AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Content-Type"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	r.Get("/api/health", health.Health)

	r.Route("/api/chat", func(r chi.Router) {
		r.Get("/rooms", rooms.Rooms)
		r.Get("/{room}", rooms.History)
	})

	r.Route("/api/files", func(r chi.Router) {
		r.Get("/list", files.List)
		r.Get("/download/{filename}", files.Download)
	})

	r.Get("/ws", wsHandler.Handle)

	return r
}
