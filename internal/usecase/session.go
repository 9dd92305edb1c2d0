package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/rocketscienceinc/gomoku-backend/internal/apperror"
	"github.com/rocketscienceinc/gomoku-backend/internal/entity"
)

type gameRepo interface {
	CreateOrUpdate(ctx context.Context, game *entity.Game) error
	GetByID(ctx context.Context, id string) (*entity.Game, error)
	DeleteByID(ctx context.Context, id string) error
}

// Session holds the single live game shown to a player: human against the oracle,
// or an oracle self-play game advanced ply by ply.
//
// turnMu serializes everything that changes the game and is held across oracle calls.
// mu only guards the published snapshot, so readers never wait for a ply.
type Session struct {
	logger *slog.Logger
	movers Movers
	repo   gameRepo
	opts   OrchestratorOptions

	turnMu       sync.Mutex
	orchestrator *Orchestrator

	mu       sync.Mutex
	snapshot *entity.Game
	analysis *entity.Suggestion
}

func NewSession(logger *slog.Logger, movers Movers, repo gameRepo, opts OrchestratorOptions) *Session {
	return &Session{
		logger: logger.With("component", "session"),
		movers: movers,
		repo:   repo,
		opts:   opts,
	}
}

// NewGame replaces the live game with a fresh one in the given mode.
func (that *Session) NewGame(ctx context.Context, mode entity.GameMode) (*entity.Game, error) {
	that.turnMu.Lock()
	defer that.turnMu.Unlock()

	return that.start(ctx, entity.NewGame(uuid.NewString(), mode))
}

// Resume continues a stored game.
func (that *Session) Resume(ctx context.Context, id string) (*entity.Game, error) {
	game, err := that.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get game by id: %w", err)
	}

	that.turnMu.Lock()
	defer that.turnMu.Unlock()

	return that.start(ctx, game)
}

// Delete removes a stored game. Deleting the live game also ends the session's hold on it.
func (that *Session) Delete(ctx context.Context, id string) error {
	that.turnMu.Lock()
	defer that.turnMu.Unlock()

	if err := that.repo.DeleteByID(ctx, id); err != nil {
		return fmt.Errorf("failed to delete game: %w", err)
	}

	if that.orchestrator != nil && that.orchestrator.game.ID == id {
		that.orchestrator = nil

		that.mu.Lock()
		that.snapshot = nil
		that.analysis = nil
		that.mu.Unlock()
	}

	return nil
}

// Reset restarts the live game keeping its mode.
func (that *Session) Reset(ctx context.Context) (*entity.Game, error) {
	that.turnMu.Lock()
	defer that.turnMu.Unlock()

	mode := entity.ModeInteractive
	if that.orchestrator != nil {
		mode = that.orchestrator.game.Mode
	}

	return that.start(ctx, entity.NewGame(uuid.NewString(), mode))
}

// Game returns a copy of the live game and the last oracle analysis.
// A ply in progress does not block it; the copy shows every ply applied so far.
func (that *Session) Game() (*entity.Game, *entity.Suggestion, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	if that.snapshot == nil {
		return nil, nil, apperror.ErrNoActiveGame
	}

	return that.snapshot.Clone(), that.lastAnalysisLocked(), nil
}

// PlayHuman applies the human move and lets the automated side answer until it is the human's turn again.
func (that *Session) PlayHuman(ctx context.Context, row, col int) (*entity.Game, *entity.Suggestion, error) {
	log := that.logger.With("method", "PlayHuman")

	that.turnMu.Lock()
	defer that.turnMu.Unlock()

	if that.orchestrator == nil {
		return nil, nil, apperror.ErrNoActiveGame
	}

	if err := that.orchestrator.PlayHuman(row, col); err != nil {
		return that.result(fmt.Errorf("failed to make turn: %w", err))
	}

	game := that.orchestrator.game
	for game.IsInProgress() && that.orchestrator.movers[game.Turn] != nil {
		if err := that.step(ctx); err != nil {
			log.Error("automated reply failed", "error", err)
			return that.result(err)
		}
	}

	return that.result(that.save(ctx))
}

// Step advances the live game by one automated ply.
func (that *Session) Step(ctx context.Context) (*entity.Game, *entity.Suggestion, error) {
	that.turnMu.Lock()
	defer that.turnMu.Unlock()

	if that.orchestrator == nil {
		return nil, nil, apperror.ErrNoActiveGame
	}

	if err := that.step(ctx); err != nil {
		return that.result(err)
	}

	return that.result(that.save(ctx))
}

func (that *Session) start(ctx context.Context, game *entity.Game) (*entity.Game, error) {
	seats, err := entity.SeatsForMode(game.Mode, entity.Black, entity.MoverGreedy)
	if err != nil {
		return nil, err
	}

	movers, err := that.movers.Resolve(seats)
	if err != nil {
		return nil, err
	}

	that.orchestrator = NewOrchestrator(that.logger, game, movers, that.opts)
	that.orchestrator.observe = that.publish

	that.mu.Lock()
	that.snapshot = game.Clone()
	that.analysis = nil
	that.mu.Unlock()

	if err = that.save(ctx); err != nil {
		return nil, err
	}

	that.logger.Info("game started", "game", game.ID, "mode", game.Mode)

	return that.orchestrator.Game(), nil
}

func (that *Session) step(ctx context.Context) error {
	suggestion, err := that.orchestrator.Step(ctx)
	if err != nil {
		return fmt.Errorf("failed to step game: %w", err)
	}

	if suggestion.Reasoning != "" || suggestion.WinRate != 0 {
		that.mu.Lock()
		that.analysis = &suggestion
		that.mu.Unlock()
	}

	return nil
}

// publish receives a copy of the record after every applied ply.
func (that *Session) publish(game *entity.Game) {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.snapshot = game
}

func (that *Session) save(ctx context.Context) error {
	if err := that.repo.CreateOrUpdate(ctx, that.orchestrator.game); err != nil {
		return fmt.Errorf("failed to save game: %w", err)
	}

	return nil
}

// result pairs the current game and analysis with err.
func (that *Session) result(err error) (*entity.Game, *entity.Suggestion, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.orchestrator.Game(), that.lastAnalysisLocked(), err
}

func (that *Session) lastAnalysisLocked() *entity.Suggestion {
	if that.analysis == nil {
		return nil
	}

	analysis := *that.analysis

	return &analysis
}
