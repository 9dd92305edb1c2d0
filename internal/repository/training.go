package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/rocketscienceinc/gomoku-backend/internal/entity"
)

const (
	trainingStatsKey       = "training:stats"
	trainingLogsKey        = "training:logs"
	trainingCheckpointsKey = "training:checkpoints"
)

type TrainingRepository interface {
	Append(ctx context.Context, stats entity.TrainingStats, logs []entity.LogEntry, checkpoint *entity.Checkpoint) error
	Load(ctx context.Context) (entity.TrainingStats, []entity.LogEntry, []entity.Checkpoint, error)
	Clear(ctx context.Context) error
}

type dbTraining struct {
	client *redis.Client
}

func NewTrainingRepository(client *redis.Client) TrainingRepository {
	return &dbTraining{
		client: client,
	}
}

// Append writes the statistics together with the new log entries and checkpoint in one transaction.
func (that *dbTraining) Append(ctx context.Context, stats entity.TrainingStats, logs []entity.LogEntry, checkpoint *entity.Checkpoint) error {
	statsJSON, err := json.Marshal(stats)
	if err != nil {
		return fmt.Errorf("could not marshal stats: %w", err)
	}

	logValues := make([]any, 0, len(logs))
	for _, entry := range logs {
		entryJSON, err := json.Marshal(entry)
		if err != nil {
			return fmt.Errorf("could not marshal log entry: %w", err)
		}
		logValues = append(logValues, entryJSON)
	}

	var checkpointJSON []byte
	if checkpoint != nil {
		if checkpointJSON, err = json.Marshal(checkpoint); err != nil {
			return fmt.Errorf("could not marshal checkpoint: %w", err)
		}
	}

	_, err = that.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, trainingStatsKey, statsJSON, 0)
		if len(logValues) > 0 {
			pipe.RPush(ctx, trainingLogsKey, logValues...)
		}
		if checkpointJSON != nil {
			pipe.RPush(ctx, trainingCheckpointsKey, checkpointJSON)
		}

		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to append training state: %w", err)
	}

	return nil
}

func (that *dbTraining) Load(ctx context.Context) (entity.TrainingStats, []entity.LogEntry, []entity.Checkpoint, error) {
	stats := entity.NewTrainingStats()

	response, err := that.client.Get(ctx, trainingStatsKey).Result()
	switch {
	case errors.Is(err, redis.Nil):
	case err != nil:
		return stats, nil, nil, fmt.Errorf("failed to get stats: %w", err)
	default:
		if err = json.Unmarshal([]byte(response), &stats); err != nil {
			return stats, nil, nil, fmt.Errorf("failed to unmarshal stats: %w", err)
		}
	}

	logs, err := loadList[entity.LogEntry](ctx, that.client, trainingLogsKey)
	if err != nil {
		return stats, nil, nil, err
	}

	checkpoints, err := loadList[entity.Checkpoint](ctx, that.client, trainingCheckpointsKey)
	if err != nil {
		return stats, nil, nil, err
	}

	return stats, logs, checkpoints, nil
}

func (that *dbTraining) Clear(ctx context.Context) error {
	if err := that.client.Del(ctx, trainingStatsKey, trainingLogsKey, trainingCheckpointsKey).Err(); err != nil {
		return fmt.Errorf("failed to clear training state: %w", err)
	}

	return nil
}

func loadList[T any](ctx context.Context, client *redis.Client, key string) ([]T, error) {
	values, err := client.LRange(ctx, key, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", key, err)
	}

	items := make([]T, 0, len(values))
	for _, value := range values {
		var item T
		if err = json.Unmarshal([]byte(value), &item); err != nil {
			return nil, fmt.Errorf("failed to unmarshal %s item: %w", key, err)
		}
		items = append(items, item)
	}

	return items, nil
}
