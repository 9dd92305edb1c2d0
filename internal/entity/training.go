package entity

import (
	"fmt"
	"slices"
	"time"

	"github.com/rocketscienceinc/gomoku-backend/internal/apperror"
)

type GameMode string

const (
	ModeInteractive GameMode = "interactive"
	ModeSelfPlay    GameMode = "self_play"
	ModeBenchmark   GameMode = "benchmark"
)

type MoverKind string

const (
	MoverHuman  MoverKind = "human"
	MoverOracle MoverKind = "oracle"
	MoverGreedy MoverKind = "greedy"
	MoverRandom MoverKind = "random"
)

type Severity string

const (
	SeverityInfo    Severity = "info"
	SeveritySuccess Severity = "success"
	SeverityWarning Severity = "warning"
)

// Seats assigns a mover kind to each player.
type Seats map[Cell]MoverKind

func ParseMode(value string) (GameMode, error) {
	switch mode := GameMode(value); mode {
	case ModeInteractive, ModeSelfPlay, ModeBenchmark:
		return mode, nil
	default:
		return "", fmt.Errorf("%w: %q", apperror.ErrUnknownMode, value)
	}
}

// ParseOpponent accepts only the bots a benchmark can be played against.
func ParseOpponent(value string) (MoverKind, error) {
	switch kind := MoverKind(value); kind {
	case MoverGreedy, MoverRandom:
		return kind, nil
	default:
		return "", fmt.Errorf("%w: %q", apperror.ErrUnknownMover, value)
	}
}

// SeatsForMode composes the per-player mover mapping of a game mode.
// In interactive play the human takes Black. In a benchmark the distinguished
// player is driven by the oracle and the other side by the opponent bot.
func SeatsForMode(mode GameMode, distinguished Cell, opponent MoverKind) (Seats, error) {
	switch mode {
	case ModeInteractive:
		return Seats{Black: MoverHuman, White: MoverOracle}, nil
	case ModeSelfPlay:
		return Seats{Black: MoverOracle, White: MoverOracle}, nil
	case ModeBenchmark:
		if distinguished != Black && distinguished != White {
			return nil, fmt.Errorf("%w: distinguished player %q", ErrUnknownCell, distinguished)
		}

		if _, err := ParseOpponent(string(opponent)); err != nil {
			return nil, err
		}

		return Seats{distinguished: MoverOracle, distinguished.Opponent(): opponent}, nil
	default:
		return nil, fmt.Errorf("%w: %q", apperror.ErrUnknownMode, mode)
	}
}

type TrainingStats struct {
	Iteration  int     `json:"iteration"`
	TotalGames int     `json:"total_games"`
	Wins       int     `json:"wins"`
	WinRate    float64 `json:"win_rate"`
	Loss       float64 `json:"loss"`
}

func NewTrainingStats() TrainingStats {
	return TrainingStats{Loss: 1}
}

// RecordGame folds one completed game into the counters.
func (that *TrainingStats) RecordGame(won bool) {
	that.TotalGames++
	that.Iteration = that.TotalGames
	if won {
		that.Wins++
	}

	that.WinRate = float64(that.Wins) / float64(that.TotalGames)
	that.Loss = 1 - that.WinRate
}

type Checkpoint struct {
	ID          string    `json:"id"`
	Iteration   int       `json:"iteration"`
	WinRate     float64   `json:"win_rate"`
	GamesPlayed int       `json:"games_played"`
	CreatedAt   time.Time `json:"created_at"`
}

func CheckpointID(gamesPlayed int) string {
	return fmt.Sprintf("model_%d.pth", gamesPlayed)
}

type LogEntry struct {
	Iteration int       `json:"iteration"`
	Timestamp time.Time `json:"timestamp"`
	Message   string    `json:"message"`
	Severity  Severity  `json:"type"`
}

// TrainingState is the read-only view handed to observers.
type TrainingState struct {
	TrainingStats

	Running     bool         `json:"running"`
	Headless    bool         `json:"headless"`
	Opponent    MoverKind    `json:"opponent"`
	Logs        []LogEntry   `json:"logs"`
	Checkpoints []Checkpoint `json:"checkpoints"`
	LiveGame    *Game        `json:"live_game,omitempty"`
}

func (that TrainingState) Clone() TrainingState {
	clone := that
	clone.Logs = slices.Clone(that.Logs)
	clone.Checkpoints = slices.Clone(that.Checkpoints)
	if that.LiveGame != nil {
		clone.LiveGame = that.LiveGame.Clone()
	}

	return clone
}
