package rest

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rocketscienceinc/gomoku-backend/internal/apperror"
	"github.com/rocketscienceinc/gomoku-backend/internal/entity"
)

type errorResponse struct {
	Error string `json:"error"`
}

type gameResponse struct {
	Game     *entity.Game       `json:"game"`
	Analysis *entity.Suggestion `json:"analysis,omitempty"`
}

type opponentRequest struct {
	Opponent string `json:"opponent"`
}

type headlessRequest struct {
	Headless bool `json:"headless"`
}

type newGameRequest struct {
	Mode string `json:"mode"`
}

type moveRequest struct {
	Row *int `json:"row"`
	Col *int `json:"col"`
}

func (that *Server) getTraining(w http.ResponseWriter, _ *http.Request) {
	that.writeJSON(w, http.StatusOK, that.trainer.Snapshot())
}

func (that *Server) startTraining(ctx context.Context, w http.ResponseWriter, _ *http.Request) {
	if err := that.trainer.Start(ctx); err != nil {
		that.writeError(w, err)
		return
	}

	that.writeJSON(w, http.StatusAccepted, that.trainer.Snapshot())
}

func (that *Server) stopTraining(w http.ResponseWriter, _ *http.Request) {
	if err := that.trainer.Stop(); err != nil {
		that.writeError(w, err)
		return
	}

	that.writeJSON(w, http.StatusAccepted, that.trainer.Snapshot())
}

func (that *Server) resetTraining(w http.ResponseWriter, r *http.Request) {
	if err := that.trainer.Reset(r.Context()); err != nil {
		that.writeError(w, err)
		return
	}

	that.writeJSON(w, http.StatusOK, that.trainer.Snapshot())
}

func (that *Server) setOpponent(w http.ResponseWriter, r *http.Request) {
	var req opponentRequest
	if !that.decode(w, r, &req) {
		return
	}

	if err := that.trainer.SetOpponent(entity.MoverKind(req.Opponent)); err != nil {
		that.writeError(w, err)
		return
	}

	that.writeJSON(w, http.StatusOK, that.trainer.Snapshot())
}

func (that *Server) setHeadless(w http.ResponseWriter, r *http.Request) {
	var req headlessRequest
	if !that.decode(w, r, &req) {
		return
	}

	that.trainer.SetHeadless(req.Headless)
	that.writeJSON(w, http.StatusOK, that.trainer.Snapshot())
}

func (that *Server) getCheckpoints(w http.ResponseWriter, _ *http.Request) {
	that.writeJSON(w, http.StatusOK, that.trainer.Snapshot().Checkpoints)
}

func (that *Server) getLogs(w http.ResponseWriter, _ *http.Request) {
	that.writeJSON(w, http.StatusOK, that.trainer.Snapshot().Logs)
}

func (that *Server) getGame(w http.ResponseWriter, _ *http.Request) {
	game, analysis, err := that.session.Game()
	if err != nil {
		that.writeError(w, err)
		return
	}

	that.writeJSON(w, http.StatusOK, gameResponse{Game: game, Analysis: analysis})
}

func (that *Server) newGame(w http.ResponseWriter, r *http.Request) {
	var req newGameRequest
	if !that.decode(w, r, &req) {
		return
	}

	mode, err := entity.ParseMode(req.Mode)
	if err != nil {
		that.writeError(w, err)
		return
	}

	game, err := that.session.NewGame(r.Context(), mode)
	if err != nil {
		that.writeError(w, err)
		return
	}

	that.writeJSON(w, http.StatusCreated, gameResponse{Game: game})
}

func (that *Server) playMove(w http.ResponseWriter, r *http.Request) {
	var req moveRequest
	if !that.decode(w, r, &req) {
		return
	}

	if req.Row == nil || req.Col == nil {
		that.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "row and col are required"})
		return
	}

	game, analysis, err := that.session.PlayHuman(r.Context(), *req.Row, *req.Col)
	if err != nil {
		that.writeError(w, err)
		return
	}

	that.writeJSON(w, http.StatusOK, gameResponse{Game: game, Analysis: analysis})
}

func (that *Server) stepGame(w http.ResponseWriter, r *http.Request) {
	game, analysis, err := that.session.Step(r.Context())
	if err != nil {
		that.writeError(w, err)
		return
	}

	that.writeJSON(w, http.StatusOK, gameResponse{Game: game, Analysis: analysis})
}

func (that *Server) resetGame(w http.ResponseWriter, r *http.Request) {
	game, err := that.session.Reset(r.Context())
	if err != nil {
		that.writeError(w, err)
		return
	}

	that.writeJSON(w, http.StatusOK, gameResponse{Game: game})
}

func (that *Server) resumeGame(w http.ResponseWriter, r *http.Request) {
	game, err := that.session.Resume(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		that.writeError(w, err)
		return
	}

	that.writeJSON(w, http.StatusOK, gameResponse{Game: game})
}

func (that *Server) deleteGame(w http.ResponseWriter, r *http.Request) {
	if err := that.session.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		that.writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (that *Server) decode(w http.ResponseWriter, r *http.Request, target any) bool {
	if err := json.NewDecoder(r.Body).Decode(target); err != nil {
		that.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
		return false
	}

	return true
}

func (that *Server) writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		that.logger.Error("request failed", "error", err)
	}

	that.writeJSON(w, status, errorResponse{Error: err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, apperror.ErrIllegalMove):
		return http.StatusUnprocessableEntity
	case errors.Is(err, apperror.ErrUnknownMode),
		errors.Is(err, apperror.ErrUnknownMover):
		return http.StatusBadRequest
	case errors.Is(err, apperror.ErrNoActiveGame),
		errors.Is(err, apperror.ErrGameNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperror.ErrInvalidState),
		errors.Is(err, apperror.ErrNotYourTurn),
		errors.Is(err, apperror.ErrAwaitingHuman),
		errors.Is(err, apperror.ErrTrainingRunning),
		errors.Is(err, apperror.ErrTrainingNotRunning):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func (that *Server) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		that.logger.Error("failed to write response", "error", err)
	}
}
