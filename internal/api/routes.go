package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(recoveryMiddleware)
	r.Use(loggingMiddleware)

	r.Get("/health", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Post("/collections", s.handleCreateCollection)
		r.Get("/collections", s.handleListCollections)
		r.Get("/collections/{id}", s.handleGetCollection)
		r.Post("/collections/{id}/cards", s.handleCreateCards)
		r.Get("/collections/{id}/cards", s.handleListCards)
		r.Post("/collections/{id}/cards/postpone", s.handlePostponeCards)
		r.Post("/collections/{id}/training", s.handleStartTraining)

		r.Get("/training/{sessionID}", s.handleGetTraining)
		r.Get("/training/{sessionID}/card", s.handleCurrentCard)
		r.Post("/training/{sessionID}/response", s.handleSubmitResponse)
		r.Post("/training/{sessionID}/abandon", s.handleAbandonTraining)
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
