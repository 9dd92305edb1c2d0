package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/gomoku-backend/internal/apperror"
	"github.com/rocketscienceinc/gomoku-backend/internal/entity"
	"github.com/rocketscienceinc/gomoku-backend/internal/transport/gemini"
)

var errConnectionRefused = errors.New("connection refused")

type fakeOracle struct {
	text   string
	err    error
	calls  int
	system string
	prompt string
}

func (that *fakeOracle) Complete(_ context.Context, systemInstruction, prompt string) (string, error) {
	that.calls++
	that.system = systemInstruction
	that.prompt = prompt

	return that.text, that.err
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestOracleMover_NextMove(t *testing.T) {
	ctx := context.Background()

	t.Run("valid answer", func(t *testing.T) {
		// Given: an oracle answering with a free cell
		client := &fakeOracle{text: `{"row": 3, "col": 4, "reasoning": "take space", "winRate": 0.25}`}
		mover := NewOracleMover(newTestLogger(), client)

		var board entity.Board
		board[7][7] = entity.Black

		// When: White asks for a move
		suggestion, err := mover.NextMove(ctx, board, entity.White)

		// Then: the oracle's move and analysis are returned
		require.NoError(t, err)
		assert.Equal(t, entity.Suggestion{Row: 3, Col: 4, Reasoning: "take space", WinRate: 0.25}, suggestion)
		assert.Contains(t, client.prompt, "You are playing as O")
		assert.Contains(t, client.system, "'O'")
	})

	t.Run("occupied center falls back to the first empty cell", func(t *testing.T) {
		// Given: the center is taken and the oracle still answers (7,7)
		client := &fakeOracle{text: `{"row": 7, "col": 7, "reasoning": "center", "winRate": 0.9}`}
		mover := NewOracleMover(newTestLogger(), client)

		var board entity.Board
		board[7][7] = entity.White
		board[0][0] = entity.Black

		// When: Black asks for a move
		suggestion, err := mover.NextMove(ctx, board, entity.Black)

		// Then: the first empty cell in row-major order is used, without an error
		require.NoError(t, err)
		assert.Equal(t, 0, suggestion.Row)
		assert.Equal(t, 1, suggestion.Col)
		assert.Equal(t, ReasoningFallbackScan, suggestion.Reasoning)
		assert.Zero(t, suggestion.WinRate)
	})

	t.Run("transport error uses the free center", func(t *testing.T) {
		client := &fakeOracle{err: errConnectionRefused}
		mover := NewOracleMover(newTestLogger(), client)

		var board entity.Board
		board[0][0] = entity.Black

		suggestion, err := mover.NextMove(ctx, board, entity.White)

		require.NoError(t, err)
		assert.Equal(t, entity.Suggestion{Row: 7, Col: 7, Reasoning: ReasoningFallbackCenter}, suggestion)
	})

	t.Run("unparsable answer", func(t *testing.T) {
		client := &fakeOracle{text: "I think the best move is in the corner."}
		mover := NewOracleMover(newTestLogger(), client)

		suggestion, err := mover.NextMove(ctx, entity.Board{}, entity.Black)

		require.NoError(t, err)
		assert.Equal(t, ReasoningFallbackCenter, suggestion.Reasoning)
	})

	t.Run("out of range answer", func(t *testing.T) {
		client := &fakeOracle{text: `{"row": 15, "col": 2, "reasoning": "edge", "winRate": 0}`}
		mover := NewOracleMover(newTestLogger(), client)

		suggestion, err := mover.NextMove(ctx, entity.Board{}, entity.Black)

		require.NoError(t, err)
		assert.Equal(t, entity.Center(), entity.Position{Row: suggestion.Row, Col: suggestion.Col})
	})

	t.Run("full board", func(t *testing.T) {
		client := &fakeOracle{text: `{"row": 1, "col": 1}`}
		mover := NewOracleMover(newTestLogger(), client)

		_, err := mover.NextMove(ctx, fullBoard(), entity.Black)

		require.ErrorIs(t, err, apperror.ErrNoMoveAvailable)
		assert.Zero(t, client.calls)
	})
}

func TestParseOracleResponse(t *testing.T) {
	t.Run("fenced JSON with prose", func(t *testing.T) {
		text := "Here is my move:\n```json\n{\"row\": 2, \"col\": 9, \"reasoning\": \"block {threat}\", \"winRate\": -0.4}\n```"

		suggestion, err := ParseOracleResponse(text)

		require.NoError(t, err)
		assert.Equal(t, entity.Suggestion{Row: 2, Col: 9, Reasoning: "block {threat}", WinRate: -0.4}, suggestion)
	})

	t.Run("win rate is clamped", func(t *testing.T) {
		suggestion, err := ParseOracleResponse(`{"row": 1, "col": 1, "winRate": 3.5}`)

		require.NoError(t, err)
		assert.InDelta(t, 1.0, suggestion.WinRate, 0)
	})

	t.Run("missing coordinates", func(t *testing.T) {
		_, err := ParseOracleResponse(`{"reasoning": "no idea"}`)

		require.ErrorIs(t, err, apperror.ErrOracleUnavailable)
	})

	t.Run("broken JSON", func(t *testing.T) {
		_, err := ParseOracleResponse(`{"row": 1, "col": }`)

		require.ErrorIs(t, err, apperror.ErrOracleUnavailable)
	})
}

func TestRenderBoard(t *testing.T) {
	// Given: a board with one stone of each color
	var board entity.Board
	board[0][1] = entity.Black
	board[12][14] = entity.White

	// When: it is rendered
	lines := strings.Split(strings.TrimRight(RenderBoard(&board), "\n"), "\n")

	// Then: headers wrap modulo 10 and cells use . X O
	require.Len(t, lines, entity.BoardSize+1)
	assert.Equal(t, "   0 1 2 3 4 5 6 7 8 9 0 1 2 3 4 ", lines[0])
	assert.Equal(t, "0  . X . . . . . . . . . . . . . ", lines[1])
	assert.Equal(t, "2  . . . . . . . . . . . . . . O ", lines[13])
}

func TestFallbackMove(t *testing.T) {
	board := fullBoard()
	board[14][3] = entity.Empty

	suggestion, err := FallbackMove(&board)

	require.NoError(t, err)
	assert.Equal(t, entity.Suggestion{Row: 14, Col: 3, Reasoning: ReasoningFallbackScan}, suggestion)
}

func TestOracleMover_UnreachableOracleDoesNotLogKey(t *testing.T) {
	// Given: a gemini client pointed at a server that is already gone
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	client, err := gemini.New(context.Background(), gemini.Config{
		BaseURL: url,
		Model:   gemini.DefaultModel,
		APIKey:  "SECRET-API-KEY",
		Timeout: time.Second,
	})
	require.NoError(t, err)

	var logs bytes.Buffer
	mover := NewOracleMover(slog.New(slog.NewJSONHandler(&logs, nil)), client)

	// When: a move is requested
	suggestion, err := mover.NextMove(context.Background(), entity.Board{}, entity.Black)

	// Then: the fallback is played and the warning does not carry the key
	require.NoError(t, err)
	assert.Equal(t, ReasoningFallbackCenter, suggestion.Reasoning)
	assert.Contains(t, logs.String(), "oracle move rejected")
	assert.NotContains(t, logs.String(), "SECRET-API-KEY")
}
