package entity

import (
	"errors"
	"fmt"
)

const (
	BoardSize = 15
	WinLength = 5
)

var ErrUnknownCell = errors.New("unknown cell value")

// Cell is the content of a single intersection.
type Cell uint8

const (
	Empty Cell = iota
	Black
	White
)

const (
	SymbolEmpty = "."
	SymbolBlack = "X"
	SymbolWhite = "O"
)

// Opponent returns the other player. Empty has no opponent.
func (that Cell) Opponent() Cell {
	switch that {
	case Black:
		return White
	case White:
		return Black
	default:
		return Empty
	}
}

func (that Cell) String() string {
	switch that {
	case Black:
		return SymbolBlack
	case White:
		return SymbolWhite
	default:
		return SymbolEmpty
	}
}

func (that Cell) MarshalText() ([]byte, error) {
	if that == Empty {
		return []byte{}, nil
	}

	return []byte(that.String()), nil
}

func (that *Cell) UnmarshalText(text []byte) error {
	cell, err := ParseCell(string(text))
	if err != nil {
		return err
	}

	*that = cell

	return nil
}

// ParseCell accepts the board symbols plus the lowercase player names used in configuration.
func ParseCell(value string) (Cell, error) {
	switch value {
	case "", SymbolEmpty:
		return Empty, nil
	case SymbolBlack, "black":
		return Black, nil
	case SymbolWhite, "white":
		return White, nil
	default:
		return Empty, fmt.Errorf("%w: %q", ErrUnknownCell, value)
	}
}

type Position struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

type Move struct {
	Row    int  `json:"row"`
	Col    int  `json:"col"`
	Player Cell `json:"player"`
}

func (that Move) Position() Position {
	return Position{Row: that.Row, Col: that.Col}
}

// Suggestion is a mover's answer for one ply.
type Suggestion struct {
	Row       int     `json:"row"`
	Col       int     `json:"col"`
	Reasoning string  `json:"reasoning,omitempty"`
	WinRate   float64 `json:"winRate"`
}

// Board is a value type: assigning it copies every cell.
type Board [BoardSize][BoardSize]Cell

func InBounds(row, col int) bool {
	return row >= 0 && row < BoardSize && col >= 0 && col < BoardSize
}

// Center returns (⌊N/2⌋, ⌊N/2⌋).
func Center() Position {
	return Position{Row: BoardSize / 2, Col: BoardSize / 2}
}

func (that *Board) At(row, col int) Cell {
	return that[row][col]
}

func (that *Board) Stones() int {
	count := 0
	for row := range that {
		for col := range that[row] {
			if that[row][col] != Empty {
				count++
			}
		}
	}

	return count
}
