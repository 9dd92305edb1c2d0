package rest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/rocketscienceinc/gomoku-backend/internal/entity"
)

const shutdownTimeout = 5 * time.Second

type trainer interface {
	Start(ctx context.Context) error
	Stop() error
	Reset(ctx context.Context) error
	SetOpponent(kind entity.MoverKind) error
	SetHeadless(headless bool)
	Snapshot() entity.TrainingState
}

type session interface {
	NewGame(ctx context.Context, mode entity.GameMode) (*entity.Game, error)
	PlayHuman(ctx context.Context, row, col int) (*entity.Game, *entity.Suggestion, error)
	Step(ctx context.Context) (*entity.Game, *entity.Suggestion, error)
	Reset(ctx context.Context) (*entity.Game, error)
	Resume(ctx context.Context, id string) (*entity.Game, error)
	Delete(ctx context.Context, id string) error
	Game() (*entity.Game, *entity.Suggestion, error)
}

type Server struct {
	logger  *slog.Logger
	trainer trainer
	session session
}

func New(logger *slog.Logger, trainer trainer, session session) *Server {
	return &Server{
		logger:  logger.With("component", "rest"),
		trainer: trainer,
		session: session,
	}
}

// Router wires the routes. ctx outlives requests and is handed to the training loop.
func (that *Server) Router(ctx context.Context) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/ping", pingHandler)

	r.Route("/training", func(r chi.Router) {
		r.Get("/", that.getTraining)
		r.Post("/start", func(w http.ResponseWriter, req *http.Request) {
			that.startTraining(ctx, w, req)
		})
		r.Post("/stop", that.stopTraining)
		r.Post("/reset", that.resetTraining)
		r.Put("/opponent", that.setOpponent)
		r.Put("/headless", that.setHeadless)
		r.Get("/checkpoints", that.getCheckpoints)
		r.Get("/logs", that.getLogs)
	})

	r.Route("/game", func(r chi.Router) {
		r.Get("/", that.getGame)
		r.Post("/", that.newGame)
		r.Post("/move", that.playMove)
		r.Post("/step", that.stepGame)
		r.Post("/reset", that.resetGame)
		r.Post("/{id}/resume", that.resumeGame)
		r.Delete("/{id}", that.deleteGame)
	})

	return r
}

// Start - serves HTTP until ctx is done.
func (that *Server) Start(ctx context.Context, port string) error {
	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      that.Router(ctx),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 2 * time.Minute,
		IdleTimeout:  30 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			that.logger.Error("failed to shut down HTTP server", "error", err)
		}
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}
