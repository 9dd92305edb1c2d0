package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/rocketscienceinc/gomoku-backend/internal/config"
	"github.com/rocketscienceinc/gomoku-backend/internal/entity"
	"github.com/rocketscienceinc/gomoku-backend/internal/repository"
	"github.com/rocketscienceinc/gomoku-backend/internal/repository/archive"
	"github.com/rocketscienceinc/gomoku-backend/internal/repository/storage"
	"github.com/rocketscienceinc/gomoku-backend/internal/service"
	"github.com/rocketscienceinc/gomoku-backend/internal/transport/gemini"
	"github.com/rocketscienceinc/gomoku-backend/internal/usecase"
	"github.com/rocketscienceinc/gomoku-backend/transport/rest"
	"github.com/rocketscienceinc/gomoku-backend/transport/websocket"
)

var ErrAddrNotFound = errors.New("redis address string is empty")

// RunApp - runs the application.
func RunApp(logger *slog.Logger, conf *config.Config) error {
	log := logger.With("component", "app")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigs
		log.Info("Received signal, shutting down", "signal", sig)
		cancel()
	}()

	redisAddrString := conf.Redis.GetRedisAddr()
	if redisAddrString == "" {
		return ErrAddrNotFound
	}

	redisStorage, err := storage.New(ctx, redisAddrString)
	if err != nil {
		return fmt.Errorf("could not connect to redis storage: %w", err)
	}

	defer func() {
		if err = redisStorage.Close(); err != nil {
			log.Error("could not close redis storage", "error", err)
		}
	}()

	oracleClient, err := gemini.New(ctx, gemini.Config{
		BaseURL: conf.Oracle.BaseURL,
		Model:   conf.Oracle.Model,
		APIKey:  conf.Oracle.APIKey,
		Timeout: conf.Oracle.Timeout,
	})
	if err != nil {
		return fmt.Errorf("could not create oracle client: %w", err)
	}

	movers := usecase.Movers{
		entity.MoverOracle: service.NewOracleMover(logger, oracleClient),
		entity.MoverGreedy: service.NewGreedyBot(nil),
		entity.MoverRandom: service.NewRandomBot(nil),
	}

	trainerOpts, err := trainerOptions(conf.Training)
	if err != nil {
		return fmt.Errorf("invalid training config: %w", err)
	}

	gameRepo := repository.NewGameRepository(redisStorage)
	trainingRepo := repository.NewTrainingRepository(redisStorage)
	gameArchive := archive.NewGames(conf.Training.ArchiveDir)

	trainer := usecase.NewTrainer(logger, movers, trainingRepo, gameArchive, trainerOpts)
	if err = trainer.Restore(ctx); err != nil {
		return fmt.Errorf("could not restore training session: %w", err)
	}

	session := usecase.NewSession(logger, movers, gameRepo, usecase.OrchestratorOptions{
		MaxRetries: conf.Training.MaxRetries,
	})

	// run HTTP server
	httpErrCh := make(chan error, 1)
	go func() {
		log.Info("Starting HTTP server", "port", conf.HTTPPort)
		httpServer := rest.New(logger, trainer, session)
		if httpErr := httpServer.Start(ctx, conf.HTTPPort); httpErr != nil {
			log.Error("HTTP server error", "error", httpErr)
			httpErrCh <- httpErr
		}
	}()

	// run Websocket server
	wsErrCh := make(chan error, 1)
	go func() {
		log.Info("Starting WebSocket server", "port", conf.SocketPort)
		wsServer := websocket.New(logger, session, trainer)
		if wsErr := wsServer.Start(ctx, conf.SocketPort); wsErr != nil {
			log.Error("WebSocket server error", "error", wsErr)
			wsErrCh <- wsErr
		}
	}()

	select {
	case err = <-httpErrCh:
		return fmt.Errorf("HTTP server error: %w", err)
	case err = <-wsErrCh:
		return fmt.Errorf("WebSocket server error: %w", err)
	case <-ctx.Done():
		log.Info("Application context canceled, shutting down")
		_ = trainer.Stop()
		trainer.Wait()
		return nil
	}
}

func trainerOptions(conf config.Training) (usecase.TrainerOptions, error) {
	opponent, err := entity.ParseOpponent(conf.Opponent)
	if err != nil {
		return usecase.TrainerOptions{}, err
	}

	distinguished, err := entity.ParseCell(conf.DistinguishedPlayer)
	if err != nil {
		return usecase.TrainerOptions{}, err
	}

	if distinguished == entity.Empty {
		return usecase.TrainerOptions{}, fmt.Errorf("%w: distinguished player must be black or white", entity.ErrUnknownCell)
	}

	return usecase.TrainerOptions{
		Opponent:        opponent,
		Distinguished:   distinguished,
		CheckpointEvery: conf.CheckpointEvery,
		PlyDelay:        conf.PlyDelay,
		GameDelay:       conf.GameDelay,
		MaxGames:        conf.MaxGames,
		MaxRetries:      conf.MaxRetries,
		Headless:        conf.Headless,
	}, nil
}
