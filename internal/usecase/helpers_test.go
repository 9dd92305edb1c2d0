package usecase

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"github.com/rocketscienceinc/gomoku-backend/internal/apperror"
	"github.com/rocketscienceinc/gomoku-backend/internal/entity"
	"github.com/rocketscienceinc/gomoku-backend/internal/gomoku"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// rowMover plays the first empty cell of a fixed row, stepping by step columns.
type rowMover struct {
	row       int
	step      int
	reasoning string
}

func (that *rowMover) NextMove(_ context.Context, board entity.Board, _ entity.Cell) (entity.Suggestion, error) {
	step := max(that.step, 1)
	for col := 0; col < entity.BoardSize; col += step {
		if board[that.row][col] == entity.Empty {
			return entity.Suggestion{Row: that.row, Col: col, Reasoning: that.reasoning, WinRate: 0.5}, nil
		}
	}

	cells := gomoku.EmptyCells(&board)
	if len(cells) == 0 {
		return entity.Suggestion{}, apperror.ErrNoMoveAvailable
	}

	return entity.Suggestion{Row: cells[0].Row, Col: cells[0].Col}, nil
}

// plannedMover wins or loses each game according to plan: winning games fill row 0,
// losing games scatter stones on row 10. A new game is detected by an empty board.
type plannedMover struct {
	mu      sync.Mutex
	plan    []bool
	game    int
	onStart func(game int)
}

func (that *plannedMover) NextMove(ctx context.Context, board entity.Board, player entity.Cell) (entity.Suggestion, error) {
	that.mu.Lock()
	if board.Stones() == 0 {
		that.game++
		if that.onStart != nil {
			that.onStart(that.game)
		}
	}
	win := that.plan[(that.game-1)%len(that.plan)]
	that.mu.Unlock()

	if win {
		return (&rowMover{row: 0}).NextMove(ctx, board, player)
	}

	return (&rowMover{row: 10, step: 2}).NextMove(ctx, board, player)
}

type fixedMover struct {
	suggestions []entity.Suggestion
	calls       int
	err         error
}

func (that *fixedMover) NextMove(_ context.Context, _ entity.Board, _ entity.Cell) (entity.Suggestion, error) {
	if that.err != nil {
		return entity.Suggestion{}, that.err
	}

	suggestion := that.suggestions[min(that.calls, len(that.suggestions)-1)]
	that.calls++

	return suggestion, nil
}

type fakeTrainingRepo struct {
	mu          sync.Mutex
	appends     int
	stats       entity.TrainingStats
	logs        []entity.LogEntry
	checkpoints []entity.Checkpoint
	cleared     int
	err         error
}

func (that *fakeTrainingRepo) Append(_ context.Context, stats entity.TrainingStats, logs []entity.LogEntry, checkpoint *entity.Checkpoint) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.appends++
	if that.err != nil {
		return that.err
	}

	that.stats = stats
	that.logs = append(that.logs, logs...)
	if checkpoint != nil {
		that.checkpoints = append(that.checkpoints, *checkpoint)
	}

	return nil
}

func (that *fakeTrainingRepo) Load(_ context.Context) (entity.TrainingStats, []entity.LogEntry, []entity.Checkpoint, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.stats, that.logs, that.checkpoints, that.err
}

func (that *fakeTrainingRepo) Clear(_ context.Context) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.cleared++
	that.stats = entity.NewTrainingStats()
	that.logs = nil
	that.checkpoints = nil

	return nil
}

type fakeArchive struct {
	mu      sync.Mutex
	games   []*entity.Game
	pending int
	flushes int
}

func (that *fakeArchive) Add(game *entity.Game) {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.games = append(that.games, game)
	that.pending++
}

func (that *fakeArchive) Flush() (string, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	if that.pending == 0 {
		return "", nil
	}

	that.pending = 0
	that.flushes++

	return "archive.parquet", nil
}

type memoryGameRepo struct {
	mu    sync.Mutex
	games map[string]*entity.Game
	err   error
}

func newMemoryGameRepo() *memoryGameRepo {
	return &memoryGameRepo{games: map[string]*entity.Game{}}
}

func (that *memoryGameRepo) CreateOrUpdate(_ context.Context, game *entity.Game) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	if that.err != nil {
		return that.err
	}

	that.games[game.ID] = game.Clone()

	return nil
}

func (that *memoryGameRepo) GetByID(_ context.Context, id string) (*entity.Game, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	game, ok := that.games[id]
	if !ok {
		return nil, apperror.ErrGameNotFound
	}

	return game.Clone(), nil
}

func (that *memoryGameRepo) DeleteByID(_ context.Context, id string) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	if _, ok := that.games[id]; !ok {
		return apperror.ErrGameNotFound
	}

	delete(that.games, id)

	return nil
}
