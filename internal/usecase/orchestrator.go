package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/rocketscienceinc/gomoku-backend/internal/apperror"
	"github.com/rocketscienceinc/gomoku-backend/internal/entity"
	"github.com/rocketscienceinc/gomoku-backend/internal/gomoku"
)

const defaultMaxRetries = 2

type mover interface {
	NextMove(ctx context.Context, board entity.Board, player entity.Cell) (entity.Suggestion, error)
}

// Movers is the registry of automated movers by kind.
type Movers map[entity.MoverKind]mover

// Resolve maps seats to movers. Human seats resolve to nil.
func (that Movers) Resolve(seats entity.Seats) (map[entity.Cell]mover, error) {
	resolved := make(map[entity.Cell]mover, len(seats))
	for player, kind := range seats {
		if kind == entity.MoverHuman {
			resolved[player] = nil
			continue
		}

		m, ok := that[kind]
		if !ok || m == nil {
			return nil, fmt.Errorf("%w: %q", apperror.ErrUnknownMover, kind)
		}
		resolved[player] = m
	}

	return resolved, nil
}

type OrchestratorOptions struct {
	MaxRetries int
	PlyDelay   time.Duration
}

// Outcome summarizes a finished game.
type Outcome struct {
	Status string
	Winner entity.Cell
	Plies  int
}

// Orchestrator owns one game record and advances it one ply at a time.
type Orchestrator struct {
	logger *slog.Logger
	game   *entity.Game
	movers map[entity.Cell]mover
	opts   OrchestratorOptions

	// observe receives a copy of the record after every applied ply.
	observe func(*entity.Game)
}

func NewOrchestrator(logger *slog.Logger, game *entity.Game, movers map[entity.Cell]mover, opts OrchestratorOptions) *Orchestrator {
	if opts.MaxRetries <= 0 {
		opts.MaxRetries = defaultMaxRetries
	}

	return &Orchestrator{
		logger: logger.With("component", "orchestrator", "game", game.ID),
		game:   game,
		movers: movers,
		opts:   opts,
	}
}

// Game returns a copy of the current record.
func (that *Orchestrator) Game() *entity.Game {
	return that.game.Clone()
}

// Step asks the current automated mover for one ply and applies it.
func (that *Orchestrator) Step(ctx context.Context) (entity.Suggestion, error) {
	log := that.logger.With("method", "Step")

	if err := that.game.ConfirmInProgress(); err != nil {
		return entity.Suggestion{}, err
	}

	player := that.game.Turn
	m := that.movers[player]
	if m == nil {
		return entity.Suggestion{}, apperror.ErrAwaitingHuman
	}

	var lastErr error
	for attempt := 0; attempt <= that.opts.MaxRetries; attempt++ {
		suggestion, err := m.NextMove(ctx, that.game.Board, player)
		if errors.Is(err, apperror.ErrNoMoveAvailable) {
			that.game.Draw()
			that.notify()
			return entity.Suggestion{}, nil
		}

		if err != nil {
			return entity.Suggestion{}, fmt.Errorf("failed to get move: %w", err)
		}

		lastErr = gomoku.MakeTurn(that.game, player, suggestion.Row, suggestion.Col)
		if lastErr == nil {
			that.notify()
			return suggestion, nil
		}

		if !errors.Is(lastErr, apperror.ErrIllegalMove) {
			return entity.Suggestion{}, lastErr
		}

		log.Warn("mover suggested an illegal move", "player", player.String(), "attempt", attempt+1, "error", lastErr)
	}

	return entity.Suggestion{}, fmt.Errorf("mover kept suggesting illegal moves: %w", lastErr)
}

// PlayHuman applies a move from the human seat. A rejected move keeps the record unchanged.
func (that *Orchestrator) PlayHuman(row, col int) error {
	if err := that.game.ConfirmInProgress(); err != nil {
		return err
	}

	if that.movers[that.game.Turn] != nil {
		return apperror.ErrNotYourTurn
	}

	if err := gomoku.MakeTurn(that.game, that.game.Turn, row, col); err != nil {
		return err
	}

	that.notify()

	return nil
}

// Play steps until the game ends. More than maxPlies steps abandon the game.
func (that *Orchestrator) Play(ctx context.Context, maxPlies int) (Outcome, error) {
	for steps := 0; that.game.IsInProgress(); steps++ {
		if steps >= maxPlies {
			return that.outcome(), fmt.Errorf("%w: no decision after %d plies", apperror.ErrGameAbandoned, steps)
		}

		if _, err := that.Step(ctx); err != nil {
			return that.outcome(), err
		}

		if that.game.IsInProgress() {
			if err := sleep(ctx, that.opts.PlyDelay); err != nil {
				return that.outcome(), err
			}
		}
	}

	return that.outcome(), nil
}

func (that *Orchestrator) outcome() Outcome {
	return Outcome{
		Status: that.game.Status,
		Winner: that.game.Winner,
		Plies:  that.game.Plies(),
	}
}

func (that *Orchestrator) notify() {
	if that.observe != nil {
		that.observe(that.game.Clone())
	}
}

// sleep waits for d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return fmt.Errorf("pacing interrupted: %w", ctx.Err())
	case <-timer.C:
		return nil
	}
}
