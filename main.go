package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	app "github.com/rocketscienceinc/gomoku-backend/internal"
	"github.com/rocketscienceinc/gomoku-backend/internal/config"
)

const configFile = "config.yml"

func main() {
	defer func() {
		if err := recover(); err != nil {
			fmt.Fprintf(os.Stderr, "recovered from panic: %v\n", err)
			os.Exit(1)
		}
	}()

	conf := initConfig()
	logger := initLogger(conf)

	logStartup(logger, conf)

	if err := app.RunApp(logger, conf); err != nil {
		panic(fmt.Errorf("app run failed: %w", err))
	}
}

// initConfig reads config.yml from the working directory, or the file named by CONFIG_PATH.
func initConfig() *config.Config {
	if path := os.Getenv("CONFIG_PATH"); path != "" {
		return config.MustLoad(path)
	}

	baseDir, err := os.Getwd()
	if err != nil {
		panic(fmt.Errorf("failed to get current directory: %w", err))
	}

	return config.MustLoad(filepath.Join(baseDir, configFile))
}

func initLogger(conf *config.Config) *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: parseLevel(conf.LogLevel)}))
}

func parseLevel(value string) slog.Level {
	switch value {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// logStartup records the settings a training run depends on. The API key itself is never logged.
func logStartup(logger *slog.Logger, conf *config.Config) {
	log := logger.With("component", "main")

	log.Info("starting gomoku backend",
		"http_port", conf.HTTPPort,
		"socket_port", conf.SocketPort,
		"oracle_model", conf.Oracle.Model,
		"opponent", conf.Training.Opponent,
		"distinguished_player", conf.Training.DistinguishedPlayer,
		"checkpoint_every", conf.Training.CheckpointEvery,
		"headless", conf.Training.Headless,
	)

	if conf.Oracle.APIKey == "" {
		log.Warn("oracle API key is empty, every oracle move will use the fallback")
	}
}
