package service

import (
	"context"
	"math/rand"
	"slices"

	"github.com/rocketscienceinc/gomoku-backend/internal/apperror"
	"github.com/rocketscienceinc/gomoku-backend/internal/entity"
	"github.com/rocketscienceinc/gomoku-backend/internal/gomoku"
)

// fallbackPool is how many center-nearest cells the last stage chooses from.
const fallbackPool = 3

type stage struct {
	name      string
	opponent  bool
	threshold int
}

// stages run in order; the first one with a candidate wins.
var stages = []stage{
	{name: "win", threshold: entity.WinLength},
	{name: "block win", opponent: true, threshold: entity.WinLength},
	{name: "build four", threshold: 4},
	{name: "block four", opponent: true, threshold: 4},
	{name: "build three", threshold: 3},
}

type greedyBot struct {
	rnd *lockedRand
}

// NewGreedyBot returns the one-ply tactical bot. A nil rnd is seeded from the clock.
func NewGreedyBot(rnd *rand.Rand) Mover {
	return &greedyBot{rnd: newLockedRand(rnd)}
}

func (that *greedyBot) NextMove(_ context.Context, board entity.Board, player entity.Cell) (entity.Suggestion, error) {
	availableCells := gomoku.EmptyCells(&board)
	if len(availableCells) == 0 {
		return entity.Suggestion{}, apperror.ErrNoMoveAvailable
	}

	for _, s := range stages {
		stone := player
		if s.opponent {
			stone = player.Opponent()
		}

		for _, cell := range availableCells {
			if gomoku.RunLength(&board, cell.Row, cell.Col, stone) >= s.threshold {
				return entity.Suggestion{Row: cell.Row, Col: cell.Col}, nil
			}
		}
	}

	chosen := that.nearCenter(availableCells)

	return entity.Suggestion{Row: chosen.Row, Col: chosen.Col}, nil
}

// nearCenter picks at random among the cells closest to the center by Manhattan distance.
func (that *greedyBot) nearCenter(cells []entity.Position) entity.Position {
	ranked := slices.Clone(cells)
	slices.SortStableFunc(ranked, func(a, b entity.Position) int {
		return centerDistance(a) - centerDistance(b)
	})

	pool := min(fallbackPool, len(ranked))

	return ranked[that.rnd.Intn(pool)]
}

func centerDistance(pos entity.Position) int {
	center := entity.Center()

	return abs(pos.Row-center.Row) + abs(pos.Col-center.Col)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}

	return v
}
