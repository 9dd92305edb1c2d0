package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/rocketscienceinc/gomoku-backend/internal/apperror"
	"github.com/rocketscienceinc/gomoku-backend/internal/entity"
	"github.com/rocketscienceinc/gomoku-backend/internal/gomoku"
)

const (
	ReasoningFallbackCenter = "Fallback center."
	ReasoningFallbackScan   = "Fallback move due to AI connection error."
)

type oracleClient interface {
	Complete(ctx context.Context, systemInstruction, prompt string) (string, error)
}

type oracleResponse struct {
	Row       *int     `json:"row"`
	Col       *int     `json:"col"`
	Reasoning string   `json:"reasoning"`
	WinRate   *float64 `json:"winRate"`
}

type oracleMover struct {
	logger *slog.Logger
	client oracleClient
}

// NewOracleMover asks the external oracle for every ply and never fails on a bad answer:
// transport errors, unparsable text and illegal cells all fall back to a deterministic move.
func NewOracleMover(logger *slog.Logger, client oracleClient) Mover {
	return &oracleMover{
		logger: logger.With("component", "oracle"),
		client: client,
	}
}

func (that *oracleMover) NextMove(ctx context.Context, board entity.Board, player entity.Cell) (entity.Suggestion, error) {
	log := that.logger.With("method", "NextMove", "player", player.String())

	if gomoku.CheckDraw(&board) {
		return entity.Suggestion{}, apperror.ErrNoMoveAvailable
	}

	suggestion, err := that.ask(ctx, &board, player)
	if err != nil {
		log.Warn("oracle move rejected, using fallback", "error", err)
		return FallbackMove(&board)
	}

	return suggestion, nil
}

func (that *oracleMover) ask(ctx context.Context, board *entity.Board, player entity.Cell) (entity.Suggestion, error) {
	text, err := that.client.Complete(ctx, systemInstruction(player), movePrompt(board, player))
	if err != nil {
		return entity.Suggestion{}, fmt.Errorf("failed to query oracle: %w", err)
	}

	suggestion, err := ParseOracleResponse(text)
	if err != nil {
		return entity.Suggestion{}, err
	}

	if !entity.InBounds(suggestion.Row, suggestion.Col) || board[suggestion.Row][suggestion.Col] != entity.Empty {
		return entity.Suggestion{}, fmt.Errorf("%w: oracle chose (%d, %d)", apperror.ErrIllegalMove, suggestion.Row, suggestion.Col)
	}

	return suggestion, nil
}

// ParseOracleResponse decodes the first JSON object found in text. Row and col are required;
// a missing win rate reads as 0 and any win rate is clamped to [-1, 1].
func ParseOracleResponse(text string) (entity.Suggestion, error) {
	object := extractJSONObject(text)
	if object == "" {
		return entity.Suggestion{}, fmt.Errorf("%w: no JSON object in response", apperror.ErrOracleUnavailable)
	}

	var response oracleResponse
	if err := json.Unmarshal([]byte(object), &response); err != nil {
		return entity.Suggestion{}, fmt.Errorf("%w: failed to unmarshal response: %w", apperror.ErrOracleUnavailable, err)
	}

	if response.Row == nil || response.Col == nil {
		return entity.Suggestion{}, fmt.Errorf("%w: response without coordinates", apperror.ErrOracleUnavailable)
	}

	suggestion := entity.Suggestion{
		Row:       *response.Row,
		Col:       *response.Col,
		Reasoning: response.Reasoning,
	}

	if response.WinRate != nil {
		suggestion.WinRate = max(-1, min(1, *response.WinRate))
	}

	return suggestion, nil
}

// FallbackMove takes the center when it is free, otherwise the first empty cell in row-major order.
func FallbackMove(board *entity.Board) (entity.Suggestion, error) {
	center := entity.Center()
	if board[center.Row][center.Col] == entity.Empty {
		return entity.Suggestion{Row: center.Row, Col: center.Col, Reasoning: ReasoningFallbackCenter}, nil
	}

	cells := gomoku.EmptyCells(board)
	if len(cells) == 0 {
		return entity.Suggestion{}, apperror.ErrNoMoveAvailable
	}

	return entity.Suggestion{Row: cells[0].Row, Col: cells[0].Col, Reasoning: ReasoningFallbackScan}, nil
}
