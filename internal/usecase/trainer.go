package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/rocketscienceinc/gomoku-backend/internal/apperror"
	"github.com/rocketscienceinc/gomoku-backend/internal/entity"
)

const DefaultCheckpointEvery = 5

type trainingRepo interface {
	Append(ctx context.Context, stats entity.TrainingStats, logs []entity.LogEntry, checkpoint *entity.Checkpoint) error
	Load(ctx context.Context) (entity.TrainingStats, []entity.LogEntry, []entity.Checkpoint, error)
	Clear(ctx context.Context) error
}

type gameArchive interface {
	Add(game *entity.Game)
	Flush() (string, error)
}

type TrainerOptions struct {
	Opponent        entity.MoverKind
	Distinguished   entity.Cell
	CheckpointEvery int
	PlyDelay        time.Duration
	GameDelay       time.Duration
	// MaxGames stops the loop after that many games; 0 runs until Stop.
	MaxGames   int
	MaxRetries int
	Headless   bool
}

// Trainer is the self-play driver: it plays benchmark games back to back and keeps the run statistics.
type Trainer struct {
	logger  *slog.Logger
	movers  Movers
	repo    trainingRepo
	archive gameArchive
	now     func() time.Time

	stopRequested atomic.Bool

	mu            sync.Mutex
	opts          TrainerOptions
	running       bool
	done          chan struct{}
	stats         entity.TrainingStats
	logs          []entity.LogEntry
	checkpoints   []entity.Checkpoint
	liveGame      *entity.Game
	persistedLogs int
}

func NewTrainer(logger *slog.Logger, movers Movers, repo trainingRepo, archive gameArchive, opts TrainerOptions) *Trainer {
	if opts.CheckpointEvery <= 0 {
		opts.CheckpointEvery = DefaultCheckpointEvery
	}

	if opts.Distinguished == entity.Empty {
		opts.Distinguished = entity.Black
	}

	if opts.Opponent == "" {
		opts.Opponent = entity.MoverGreedy
	}

	done := make(chan struct{})
	close(done)

	return &Trainer{
		logger:  logger.With("component", "trainer"),
		movers:  movers,
		repo:    repo,
		archive: archive,
		now:     time.Now,
		opts:    opts,
		done:    done,
		stats:   entity.NewTrainingStats(),
	}
}

// Start runs the loop in the background. The options in effect now are used until the loop ends.
func (that *Trainer) Start(ctx context.Context) error {
	opts, err := that.begin()
	if err != nil {
		return err
	}

	go that.loop(ctx, opts)

	return nil
}

// Run is the blocking form of Start.
func (that *Trainer) Run(ctx context.Context) error {
	opts, err := that.begin()
	if err != nil {
		return err
	}

	that.loop(ctx, opts)

	return nil
}

// Stop asks the loop to end before the next game. The current game is finished and recorded.
func (that *Trainer) Stop() error {
	that.mu.Lock()
	defer that.mu.Unlock()

	if !that.running {
		return apperror.ErrTrainingNotRunning
	}

	that.stopRequested.Store(true)

	return nil
}

// Wait blocks until the current loop, if any, has exited.
func (that *Trainer) Wait() {
	that.mu.Lock()
	done := that.done
	that.mu.Unlock()

	<-done
}

func (that *Trainer) SetOpponent(kind entity.MoverKind) error {
	if _, err := entity.ParseOpponent(string(kind)); err != nil {
		return err
	}

	that.mu.Lock()
	defer that.mu.Unlock()

	that.opts.Opponent = kind

	return nil
}

func (that *Trainer) SetHeadless(headless bool) {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.opts.Headless = headless
	if headless {
		that.liveGame = nil
	}
}

// Snapshot returns a copy of the run state that shares nothing with the trainer.
func (that *Trainer) Snapshot() entity.TrainingState {
	that.mu.Lock()
	defer that.mu.Unlock()

	state := entity.TrainingState{
		TrainingStats: that.stats,
		Running:       that.running,
		Headless:      that.opts.Headless,
		Opponent:      that.opts.Opponent,
		Logs:          that.logs,
		Checkpoints:   that.checkpoints,
		LiveGame:      that.liveGame,
	}

	return state.Clone()
}

// Restore loads the statistics of a previous session.
func (that *Trainer) Restore(ctx context.Context) error {
	stats, logs, checkpoints, err := that.repo.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load training state: %w", err)
	}

	that.mu.Lock()
	defer that.mu.Unlock()

	if that.running {
		return apperror.ErrTrainingRunning
	}

	that.stats = stats
	that.logs = slices.Clone(logs)
	that.checkpoints = slices.Clone(checkpoints)
	that.persistedLogs = len(logs)

	return nil
}

// Reset starts a new session with zeroed counters and empty history.
func (that *Trainer) Reset(ctx context.Context) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	if that.running {
		return apperror.ErrTrainingRunning
	}

	if err := that.repo.Clear(ctx); err != nil {
		return fmt.Errorf("failed to clear training state: %w", err)
	}

	that.stats = entity.NewTrainingStats()
	that.logs = nil
	that.checkpoints = nil
	that.liveGame = nil
	that.persistedLogs = 0

	return nil
}

func (that *Trainer) begin() (TrainerOptions, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	if that.running {
		return TrainerOptions{}, apperror.ErrTrainingRunning
	}

	if _, err := entity.SeatsForMode(entity.ModeBenchmark, that.opts.Distinguished, that.opts.Opponent); err != nil {
		return TrainerOptions{}, err
	}

	that.running = true
	that.done = make(chan struct{})
	that.stopRequested.Store(false)

	return that.opts, nil
}

func (that *Trainer) finish() {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.running = false
	that.liveGame = nil
	close(that.done)
}

func (that *Trainer) loop(ctx context.Context, opts TrainerOptions) {
	log := that.logger.With("method", "loop")
	defer that.finish()

	that.appendLog(entity.SeverityInfo, fmt.Sprintf("Pipeline Started. Target: %s vs %s", entity.MoverOracle, opts.Opponent))
	log.Info("training started", "opponent", opts.Opponent, "distinguished", opts.Distinguished.String())

	for attempts := 0; opts.MaxGames == 0 || attempts < opts.MaxGames; attempts++ {
		if that.stopRequested.Load() || ctx.Err() != nil {
			break
		}

		that.appendLog(entity.SeverityInfo, fmt.Sprintf("Iteration %d: Starting Game...", that.iteration()+1))

		game, err := that.playGame(ctx, opts)
		if ctx.Err() != nil {
			log.Info("game interrupted by shutdown", "game", game.ID)
			break
		}

		if err != nil {
			that.appendLog(entity.SeverityWarning, fmt.Sprintf("Game abandoned after %d moves: %v", game.Plies(), err))
			log.Warn("game abandoned", "game", game.ID, "error", err)
			that.persistLogs(ctx)
		} else {
			that.record(ctx, opts, game)
		}

		if err = sleep(ctx, opts.GameDelay); err != nil {
			break
		}
	}

	// The loop may end on a canceled context; the log tail is still written.
	that.persistLogs(context.WithoutCancel(ctx))
	that.flushArchive()
	log.Info("training stopped", "games", that.Snapshot().TotalGames)
}

func (that *Trainer) playGame(ctx context.Context, opts TrainerOptions) (*entity.Game, error) {
	game := entity.NewGame(uuid.NewString(), entity.ModeBenchmark)

	seats, err := entity.SeatsForMode(entity.ModeBenchmark, opts.Distinguished, opts.Opponent)
	if err != nil {
		return game, err
	}

	movers, err := that.movers.Resolve(seats)
	if err != nil {
		return game, err
	}

	orchestrator := NewOrchestrator(that.logger, game, movers, OrchestratorOptions{
		MaxRetries: opts.MaxRetries,
		PlyDelay:   opts.PlyDelay,
	})
	orchestrator.observe = that.publish
	that.publish(orchestrator.Game())

	_, err = orchestrator.Play(ctx, entity.BoardSize*entity.BoardSize)

	return orchestrator.Game(), err
}

// record folds a finished game into the statistics in one critical section.
func (that *Trainer) record(ctx context.Context, opts TrainerOptions, game *entity.Game) {
	won := game.IsDecided() && game.Winner == opts.Distinguished

	that.mu.Lock()
	that.stats.RecordGame(won)
	that.appendLogLocked(outcomeSeverity(won), fmt.Sprintf("Game Finished: %s (%d moves)", outcomeLabel(game, won), game.Plies()))

	var checkpoint *entity.Checkpoint
	if that.stats.TotalGames%opts.CheckpointEvery == 0 {
		checkpoint = &entity.Checkpoint{
			ID:          entity.CheckpointID(that.stats.TotalGames),
			Iteration:   that.stats.Iteration,
			WinRate:     that.stats.WinRate,
			GamesPlayed: that.stats.TotalGames,
			CreatedAt:   that.now(),
		}
		that.checkpoints = append(that.checkpoints, *checkpoint)
		that.appendLogLocked(entity.SeveritySuccess, "Saving checkpoint: "+checkpoint.ID)
	}

	stats := that.stats
	pending := slices.Clone(that.logs[that.persistedLogs:])
	that.persistedLogs = len(that.logs)
	that.mu.Unlock()

	log := that.logger.With("method", "record")

	if err := that.repo.Append(ctx, stats, pending, checkpoint); err != nil {
		log.Warn("failed to persist training state", "error", err)
	}

	that.archive.Add(game)
	if checkpoint != nil {
		that.flushArchive()
	}
}

// persistLogs writes log entries not yet stored, with the current stats and no checkpoint.
func (that *Trainer) persistLogs(ctx context.Context) {
	that.mu.Lock()
	if that.persistedLogs == len(that.logs) {
		that.mu.Unlock()
		return
	}

	stats := that.stats
	pending := slices.Clone(that.logs[that.persistedLogs:])
	that.persistedLogs = len(that.logs)
	that.mu.Unlock()

	if err := that.repo.Append(ctx, stats, pending, nil); err != nil {
		that.logger.Warn("failed to persist training log", "error", err)
	}
}

func (that *Trainer) flushArchive() {
	path, err := that.archive.Flush()
	if err != nil {
		that.logger.Warn("failed to flush game archive", "error", err)
		return
	}

	if path != "" {
		that.logger.Info("game archive written", "path", path)
	}
}

func (that *Trainer) publish(game *entity.Game) {
	that.mu.Lock()
	defer that.mu.Unlock()

	if !that.opts.Headless {
		that.liveGame = game
	}
}

func (that *Trainer) iteration() int {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.stats.Iteration
}

func (that *Trainer) appendLog(severity entity.Severity, message string) {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.appendLogLocked(severity, message)
}

func (that *Trainer) appendLogLocked(severity entity.Severity, message string) {
	that.logs = append(that.logs, entity.LogEntry{
		Iteration: that.stats.Iteration,
		Timestamp: that.now(),
		Message:   message,
		Severity:  severity,
	})
}

func outcomeLabel(game *entity.Game, won bool) string {
	switch {
	case won:
		return "WIN"
	case game.IsDrawn():
		return "DRAW"
	default:
		return "LOSS"
	}
}

func outcomeSeverity(won bool) entity.Severity {
	if won {
		return entity.SeveritySuccess
	}

	return entity.SeverityWarning
}
