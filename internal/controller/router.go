package controller

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (c controller) GetMux() http.Handler {
	r := chi.NewRouter()

	r.Use(c.requestIdMw)
	r.Use(c.requestLoggingMw)

	r.Route("/api", func(r chi.Router) {
		r.Route("/rooms/{room-id}", func(r chi.Router) {
			r.Get("/", c.GetRoom)
			r.Post("/join", c.JoinRoom)
			r.Post("/leave", c.LeaveRoom)
			r.Post("/play", c.Play)
			r.Post("/pause", c.Pause)
			r.Post("/seek", c.Seek)
			r.Post("/track", c.ChangeTrack)
			r.Post("/like", c.Like)
			r.Post("/mood", c.Mood)
			r.Get("/annotations/{kind}", c.GetAnnotations)
		})

		r.Get("/queue", c.GetQueue)
		r.Put("/queue", c.PutQueue)
	})

	r.HandleFunc("/ws", c.PositionStream)

	return r
}
