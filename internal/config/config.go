package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	LogLevel   string   `yaml:"log-level" env:"LOG_LEVEL" env-default:"info"`
	HTTPPort   string   `yaml:"http-port" env:"HTTP_PORT" env-default:"9090"`
	SocketPort string   `yaml:"socket-port" env:"SOCKET_PORT" env-default:"9091"`
	Redis      Redis    `yaml:"redis"`
	Oracle     Oracle   `yaml:"oracle"`
	Training   Training `yaml:"training"`
}

type Redis struct {
	Host string `yaml:"host" env:"REDIS_HOST" env-default:"localhost"`
	Port string `yaml:"port" env:"REDIS_PORT" env-default:"6379"`
}

type Oracle struct {
	BaseURL string        `yaml:"base-url" env:"ORACLE_BASE_URL" env-default:"https://generativelanguage.googleapis.com"`
	APIKey  string        `yaml:"api-key" env:"API_KEY"`
	Model   string        `yaml:"model" env:"ORACLE_MODEL" env-default:"gemini-2.5-flash"`
	Timeout time.Duration `yaml:"timeout" env:"ORACLE_TIMEOUT" env-default:"30s"`
}

type Training struct {
	Opponent            string        `yaml:"opponent" env:"TRAINING_OPPONENT" env-default:"greedy"`
	DistinguishedPlayer string        `yaml:"distinguished-player" env:"TRAINING_DISTINGUISHED_PLAYER" env-default:"black"`
	CheckpointEvery     int           `yaml:"checkpoint-every" env:"TRAINING_CHECKPOINT_EVERY" env-default:"5"`
	PlyDelay            time.Duration `yaml:"ply-delay" env:"TRAINING_PLY_DELAY" env-default:"1s"`
	GameDelay           time.Duration `yaml:"game-delay" env:"TRAINING_GAME_DELAY" env-default:"500ms"`
	MaxGames            int           `yaml:"max-games" env:"TRAINING_MAX_GAMES" env-default:"0"`
	MaxRetries          int           `yaml:"max-retries" env:"TRAINING_MAX_RETRIES" env-default:"2"`
	Headless            bool          `yaml:"headless" env:"TRAINING_HEADLESS"`
	ArchiveDir          string        `yaml:"archive-dir" env:"TRAINING_ARCHIVE_DIR" env-default:"./data/archive"`
}

// MustLoad - load all configurations in config.yml file.
func MustLoad(path string) *Config {
	config := &Config{}

	if err := cleanenv.ReadConfig(path, config); err != nil {
		panic(fmt.Errorf("unable to load config file: %w", err))
	}

	return config
}

func (that *Redis) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", that.Host, that.Port)
}
