package service

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/rocketscienceinc/gomoku-backend/internal/apperror"
	"github.com/rocketscienceinc/gomoku-backend/internal/entity"
	"github.com/rocketscienceinc/gomoku-backend/internal/gomoku"
)

// Mover suggests the next ply for player. A full board yields apperror.ErrNoMoveAvailable.
type Mover interface {
	NextMove(ctx context.Context, board entity.Board, player entity.Cell) (entity.Suggestion, error)
}

// lockedRand makes a *rand.Rand safe to share between sessions.
type lockedRand struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

func newLockedRand(rnd *rand.Rand) *lockedRand {
	if rnd == nil {
		rnd = rand.New(rand.NewSource(time.Now().UnixNano())) //nolint: gosec // it's ok
	}

	return &lockedRand{rnd: rnd}
}

func (that *lockedRand) Intn(n int) int {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.rnd.Intn(n)
}

type randomBot struct {
	rnd *lockedRand
}

// NewRandomBot picks uniformly among empty cells. A nil rnd is seeded from the clock.
func NewRandomBot(rnd *rand.Rand) Mover {
	return &randomBot{rnd: newLockedRand(rnd)}
}

func (that *randomBot) NextMove(_ context.Context, board entity.Board, _ entity.Cell) (entity.Suggestion, error) {
	availableCells := gomoku.EmptyCells(&board)
	if len(availableCells) == 0 {
		return entity.Suggestion{}, apperror.ErrNoMoveAvailable
	}

	chosen := availableCells[that.rnd.Intn(len(availableCells))]

	return entity.Suggestion{Row: chosen.Row, Col: chosen.Col}, nil
}
