package entity

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/rocketscienceinc/gomoku-backend/internal/apperror"
)

const (
	StatusInProgress = "in_progress"
	StatusDecided    = "decided"
	StatusDrawn      = "drawn"
)

var ErrUnknownGameStatus = errors.New("unknown game status")

type Game struct {
	ID        string    `json:"id"`
	Board     Board     `json:"board"`
	Turn      Cell      `json:"player_turn"`
	Status    string    `json:"status"`
	Winner    Cell      `json:"winner"`
	History   []Move    `json:"history"`
	LastMove  *Move     `json:"last_move,omitempty"`
	Mode      GameMode  `json:"mode,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// NewGame returns an empty record with Black to move.
func NewGame(id string, mode GameMode) *Game {
	return &Game{
		ID:        id,
		Turn:      Black,
		Status:    StatusInProgress,
		History:   []Move{},
		Mode:      mode,
		CreatedAt: time.Now(),
	}
}

func (that *Game) IsInProgress() bool {
	return that.Status == StatusInProgress
}

func (that *Game) IsDecided() bool {
	return that.Status == StatusDecided
}

func (that *Game) IsDrawn() bool {
	return that.Status == StatusDrawn
}

func (that *Game) IsFinished() bool {
	return that.IsDecided() || that.IsDrawn()
}

func (that *Game) ConfirmInProgress() error {
	switch {
	case that.IsInProgress():
		return nil
	case that.IsFinished():
		return apperror.ErrInvalidState
	default:
		return fmt.Errorf("%w: %s", ErrUnknownGameStatus, that.Status)
	}
}

// Decide ends the game with a winner.
func (that *Game) Decide(winner Cell) {
	that.Status = StatusDecided
	that.Winner = winner
	that.Turn = Empty
}

// Draw ends the game without a winner.
func (that *Game) Draw() {
	that.Status = StatusDrawn
	that.Winner = Empty
	that.Turn = Empty
}

func (that *Game) Plies() int {
	return len(that.History)
}

// Clone returns a deep copy that shares nothing with the receiver.
func (that *Game) Clone() *Game {
	clone := *that
	clone.History = slices.Clone(that.History)
	if that.LastMove != nil {
		lastMove := *that.LastMove
		clone.LastMove = &lastMove
	}

	return &clone
}
