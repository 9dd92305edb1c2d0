package apperror

import "errors"

var (
	ErrIllegalMove       = errors.New("illegal move")
	ErrNoMoveAvailable   = errors.New("no move available")
	ErrInvalidState      = errors.New("game is already finished")
	ErrNotYourTurn       = errors.New("it's not your turn")
	ErrAwaitingHuman     = errors.New("waiting for a human move")
	ErrGameAbandoned     = errors.New("game abandoned")
	ErrOracleUnavailable = errors.New("oracle is unavailable")
	ErrNoActiveGame      = errors.New("no active game")
	ErrGameNotFound      = errors.New("game not found")

	ErrTrainingRunning    = errors.New("training is already running")
	ErrTrainingNotRunning = errors.New("training is not running")

	ErrUnknownMode  = errors.New("unknown game mode")
	ErrUnknownMover = errors.New("unknown mover kind")
)
