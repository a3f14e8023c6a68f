package api

import (
	"net/http"
	"time"

	apperrors "github.com/vytor/flashdeck/internal/errors"
	"github.com/vytor/flashdeck/internal/logger"
	"github.com/vytor/flashdeck/internal/models"
	"github.com/vytor/flashdeck/internal/pool"
	"github.com/vytor/flashdeck/internal/services"
)

type trainingStateResponse struct {
	Session models.Session `json:"session"`
	Pools   pool.Snapshot  `json:"pools"`
	Done    bool           `json:"done"`
}

func (s *Server) handleStartTraining(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())
	id, err := idParam(r, "id")
	if err != nil {
		handleError(w, r, err)
		return
	}

	flow, err := s.Training.StartSession(r.Context(), id)
	if err != nil {
		handleError(w, r, err)
		return
	}

	session := flow.Session()
	log.Info("training started: session=%d", session.ID)
	writeJSON(w, http.StatusOK, trainingStateResponse{
		Session: session,
		Pools:   flow.Snapshot(),
		Done:    flow.Completed(),
	})
}

func (s *Server) handleGetTraining(w http.ResponseWriter, r *http.Request) {
	sessionID, err := idParam(r, "sessionID")
	if err != nil {
		handleError(w, r, err)
		return
	}

	if flow, ok := s.Training.Flow(sessionID); ok {
		writeJSON(w, http.StatusOK, trainingStateResponse{
			Session: flow.Session(),
			Pools:   flow.Snapshot(),
			Done:    flow.Completed(),
		})
		return
	}

	// Not active in memory; fall back to the persisted session.
	session, err := s.Training.Session(r.Context(), sessionID)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, trainingStateResponse{
		Session: *session,
		Done:    session.Status != models.SessionStatusStarted,
	})
}

func (s *Server) handleCurrentCard(w http.ResponseWriter, r *http.Request) {
	flow, err := s.activeFlow(r)
	if err != nil {
		handleError(w, r, err)
		return
	}

	card := flow.CurrentCard()
	if card == nil {
		handleError(w, r, apperrors.NewConflictError("no card left to review"))
		return
	}
	writeJSON(w, http.StatusOK, card)
}

type submitResponseRequest struct {
	Grade      string `json:"grade"`
	DurationMS int64  `json:"duration_ms"`
}

func (s *Server) handleSubmitResponse(w http.ResponseWriter, r *http.Request) {
	flow, err := s.activeFlow(r)
	if err != nil {
		handleError(w, r, err)
		return
	}

	var req submitResponseRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, r, err)
		return
	}
	grade, err := models.ParseGrade(req.Grade)
	if err != nil {
		handleError(w, r, apperrors.NewValidationError("grade", err.Error()))
		return
	}

	result, err := flow.SubmitResponse(r.Context(), grade, time.Duration(req.DurationMS)*time.Millisecond)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleAbandonTraining(w http.ResponseWriter, r *http.Request) {
	flow, err := s.activeFlow(r)
	if err != nil {
		handleError(w, r, err)
		return
	}

	if err := flow.Abandon(r.Context()); err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, flow.Session())
}

func (s *Server) activeFlow(r *http.Request) (*services.Flow, error) {
	sessionID, err := idParam(r, "sessionID")
	if err != nil {
		return nil, err
	}
	flow, ok := s.Training.Flow(sessionID)
	if !ok {
		return nil, apperrors.NewNotFoundError("active session", sessionID)
	}
	return flow, nil
}
