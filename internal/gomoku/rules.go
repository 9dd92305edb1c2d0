package gomoku

import (
	"fmt"

	"github.com/rocketscienceinc/gomoku-backend/internal/apperror"
	"github.com/rocketscienceinc/gomoku-backend/internal/entity"
)

// Directions are the four line axes: horizontal, vertical, diagonal ↘ and diagonal ↙.
var Directions = [4][2]int{
	{0, 1},
	{1, 0},
	{1, 1},
	{1, -1},
}

// ApplyMove returns a copy of board with player placed at (row, col).
// Only Black and White can be placed.
func ApplyMove(board entity.Board, row, col int, player entity.Cell) (entity.Board, error) {
	if player != entity.Black && player != entity.White {
		return board, fmt.Errorf("%w: %d is not a player", apperror.ErrIllegalMove, player)
	}

	if err := validateCell(&board, row, col); err != nil {
		return board, err
	}

	board[row][col] = player

	return board, nil
}

// RunLength is the longest same-player line through (row, col) if player stood there.
// The board is read only; the stone at (row, col) is assumed, not looked up.
func RunLength(board *entity.Board, row, col int, player entity.Cell) int {
	longest := 0
	for _, dir := range Directions {
		length := 1 + count(board, row, col, dir[0], dir[1], player) + count(board, row, col, -dir[0], -dir[1], player)
		if length > longest {
			longest = length
		}
	}

	return longest
}

func count(board *entity.Board, row, col, dRow, dCol int, player entity.Cell) int {
	n := 0
	for {
		row += dRow
		col += dCol
		if !entity.InBounds(row, col) || board[row][col] != player {
			return n
		}
		n++
	}
}

// CheckWin reports whether player at (row, col) completes at least five in a row.
func CheckWin(board *entity.Board, row, col int, player entity.Cell) bool {
	return RunLength(board, row, col, player) >= entity.WinLength
}

// CheckDraw reports whether no empty intersection is left.
func CheckDraw(board *entity.Board) bool {
	for row := range board {
		for col := range board[row] {
			if board[row][col] == entity.Empty {
				return false
			}
		}
	}

	return true
}

// EmptyCells lists free intersections in row-major order.
func EmptyCells(board *entity.Board) []entity.Position {
	cells := make([]entity.Position, 0, entity.BoardSize*entity.BoardSize)
	for row := range board {
		for col := range board[row] {
			if board[row][col] == entity.Empty {
				cells = append(cells, entity.Position{Row: row, Col: col})
			}
		}
	}

	return cells
}

// MakeTurn applies one ply to the record. A rejected move leaves the record unchanged.
func MakeTurn(game *entity.Game, player entity.Cell, row, col int) error {
	if err := game.ConfirmInProgress(); err != nil {
		return err
	}

	if game.Turn != player {
		return apperror.ErrNotYourTurn
	}

	board, err := ApplyMove(game.Board, row, col, player)
	if err != nil {
		return fmt.Errorf("invalid turn: %w", err)
	}

	move := entity.Move{Row: row, Col: col, Player: player}
	game.Board = board
	game.History = append(game.History, move)
	game.LastMove = &move

	updateGameStatus(game, move)

	return nil
}

// Replay rebuilds a board from a move sequence.
func Replay(history []entity.Move) (entity.Board, error) {
	var board entity.Board
	for i, move := range history {
		next, err := ApplyMove(board, move.Row, move.Col, move.Player)
		if err != nil {
			return board, fmt.Errorf("failed to replay move %d: %w", i, err)
		}
		board = next
	}

	return board, nil
}

func validateCell(board *entity.Board, row, col int) error {
	if !entity.InBounds(row, col) {
		return fmt.Errorf("%w: (%d, %d) is off the board", apperror.ErrIllegalMove, row, col)
	}

	if board[row][col] != entity.Empty {
		return fmt.Errorf("%w: (%d, %d) is occupied", apperror.ErrIllegalMove, row, col)
	}

	return nil
}

// updateGameStatus - checks the game status after a move.
func updateGameStatus(game *entity.Game, move entity.Move) {
	switch {
	case CheckWin(&game.Board, move.Row, move.Col, move.Player):
		game.Decide(move.Player)
	case CheckDraw(&game.Board):
		game.Draw()
	default:
		game.Turn = move.Player.Opponent()
	}
}
