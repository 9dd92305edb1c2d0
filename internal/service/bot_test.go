package service

import (
	"context"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/gomoku-backend/internal/apperror"
	"github.com/rocketscienceinc/gomoku-backend/internal/entity"
)

func place(board *entity.Board, player entity.Cell, cells ...entity.Position) {
	for _, cell := range cells {
		board[cell.Row][cell.Col] = player
	}
}

func row(r int, cols ...int) []entity.Position {
	cells := make([]entity.Position, 0, len(cols))
	for _, c := range cols {
		cells = append(cells, entity.Position{Row: r, Col: c})
	}

	return cells
}

func fullBoard() entity.Board {
	var board entity.Board
	for r := range board {
		for c := range board[r] {
			if (c/2+r)%2 == 0 {
				board[r][c] = entity.Black
			} else {
				board[r][c] = entity.White
			}
		}
	}

	return board
}

func TestGreedyBot_Cascade(t *testing.T) {
	ctx := context.Background()

	testCases := []struct {
		name     string
		black    []entity.Position
		white    []entity.Position
		expected entity.Position
	}{
		{
			name:     "wins before blocking an earlier threat",
			black:    row(7, 3, 4, 5, 6),
			white:    row(2, 0, 1, 2, 3),
			expected: entity.Position{Row: 7, Col: 2},
		},
		{
			name:     "blocks an open four",
			black:    row(10, 10),
			white:    row(3, 3, 4, 5, 6),
			expected: entity.Position{Row: 3, Col: 2},
		},
		{
			name:     "builds four before blocking a three",
			black:    row(10, 1, 2, 3),
			white:    row(1, 1, 2, 3),
			expected: entity.Position{Row: 10, Col: 0},
		},
		{
			name:     "blocks a three when it cannot build four",
			black:    row(12, 12),
			white:    row(1, 1, 2, 3),
			expected: entity.Position{Row: 1, Col: 0},
		},
		{
			name:     "builds three",
			black:    row(5, 5, 6),
			white:    row(0, 14),
			expected: entity.Position{Row: 5, Col: 4},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// Given: a prepared position with Black to move
			var board entity.Board
			place(&board, entity.Black, tc.black...)
			place(&board, entity.White, tc.white...)
			bot := NewGreedyBot(rand.New(rand.NewSource(1))) //nolint: gosec // it's ok

			// When: the greedy bot chooses a move
			suggestion, err := bot.NextMove(ctx, board, entity.Black)

			// Then: the first matching stage decides the cell
			require.NoError(t, err)
			assert.Equal(t, tc.expected, entity.Position{Row: suggestion.Row, Col: suggestion.Col})
		})
	}
}

func TestGreedyBot_FallbackNearCenter(t *testing.T) {
	// Given: an empty board and a seeded bot
	var board entity.Board
	bot := NewGreedyBot(rand.New(rand.NewSource(3))) //nolint: gosec // it's ok
	allowed := map[entity.Position]bool{
		{Row: 7, Col: 7}: true,
		{Row: 6, Col: 7}: true,
		{Row: 7, Col: 6}: true,
	}
	seen := map[entity.Position]int{}

	// When: the bot is asked many times
	for i := 0; i < 300; i++ {
		suggestion, err := bot.NextMove(context.Background(), board, entity.White)
		require.NoError(t, err)
		seen[entity.Position{Row: suggestion.Row, Col: suggestion.Col}]++
	}

	// Then: only the three closest cells in row-major tie order are used, and each of them is
	for pos := range seen {
		assert.True(t, allowed[pos], "unexpected fallback cell %v", pos)
	}
	assert.Len(t, seen, 3)
}

func TestGreedyBot_DoesNotMutateBoard(t *testing.T) {
	var board entity.Board
	place(&board, entity.Black, row(7, 7, 8, 9)...)
	before := board

	_, err := NewGreedyBot(nil).NextMove(context.Background(), board, entity.White)

	require.NoError(t, err)
	assert.Equal(t, before, board)
}

func TestBots_NoMoveAvailable(t *testing.T) {
	board := fullBoard()

	for name, bot := range map[string]Mover{
		"greedy": NewGreedyBot(nil),
		"random": NewRandomBot(nil),
	} {
		t.Run(name, func(t *testing.T) {
			_, err := bot.NextMove(context.Background(), board, entity.Black)

			require.ErrorIs(t, err, apperror.ErrNoMoveAvailable)
		})
	}
}

func TestRandomBot_PicksEmptyCells(t *testing.T) {
	// Given: a board with a single empty cell
	board := fullBoard()
	board[4][9] = entity.Empty
	bot := NewRandomBot(rand.New(rand.NewSource(5))) //nolint: gosec // it's ok

	// When: the random bot moves
	suggestion, err := bot.NextMove(context.Background(), board, entity.White)

	// Then: the only empty cell is chosen
	require.NoError(t, err)
	assert.Equal(t, 4, suggestion.Row)
	assert.Equal(t, 9, suggestion.Col)
	assert.Empty(t, suggestion.Reasoning)
}
