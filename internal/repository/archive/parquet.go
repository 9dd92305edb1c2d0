package archive

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/parquet-go/parquet-go"
	"github.com/parquet-go/parquet-go/compress/zstd"

	"github.com/rocketscienceinc/gomoku-backend/internal/entity"
)

const schemaVersion = "gomoku_game_v1"

// GameRow is one finished game. Moves are stored as parallel columns in play order.
type GameRow struct {
	GameID    string `parquet:"game_id"`
	Mode      string `parquet:"mode,dict"`
	Status    string `parquet:"status,dict"`
	Winner    string `parquet:"winner,dict"`
	Plies     int32  `parquet:"plies"`
	CreatedAt int64  `parquet:"created_at_unix_ms"`

	MoveRow    []int32 `parquet:"move_row"`
	MoveCol    []int32 `parquet:"move_col"`
	MovePlayer []int32 `parquet:"move_player"`
}

// Games buffers finished games and writes them as parquet batches.
type Games struct {
	dir string

	mu      sync.Mutex
	pending []GameRow
}

func NewGames(dir string) *Games {
	return &Games{dir: dir}
}

func (that *Games) Add(game *entity.Game) {
	row := NewGameRow(game)

	that.mu.Lock()
	defer that.mu.Unlock()

	that.pending = append(that.pending, row)
}

// Flush writes the buffered games to a new file and returns its path.
// Nothing is written when the buffer is empty.
func (that *Games) Flush() (string, error) {
	that.mu.Lock()
	rows := that.pending
	that.pending = nil
	that.mu.Unlock()

	if len(rows) == 0 {
		return "", nil
	}

	path, err := writeBatch(that.dir, rows)
	if err != nil {
		that.mu.Lock()
		that.pending = append(rows, that.pending...)
		that.mu.Unlock()

		return "", err
	}

	return path, nil
}

func NewGameRow(game *entity.Game) GameRow {
	row := GameRow{
		GameID:     game.ID,
		Mode:       string(game.Mode),
		Status:     game.Status,
		Winner:     game.Winner.String(),
		Plies:      int32(game.Plies()),
		CreatedAt:  game.CreatedAt.UnixMilli(),
		MoveRow:    make([]int32, 0, len(game.History)),
		MoveCol:    make([]int32, 0, len(game.History)),
		MovePlayer: make([]int32, 0, len(game.History)),
	}

	for _, move := range game.History {
		row.MoveRow = append(row.MoveRow, int32(move.Row))
		row.MoveCol = append(row.MoveCol, int32(move.Col))
		row.MovePlayer = append(row.MovePlayer, int32(move.Player))
	}

	return row
}

// writeBatch writes to a temp file and renames it so readers never see a partial file.
func writeBatch(dir string, rows []GameRow) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create archive dir: %w", err)
	}

	name := fmt.Sprintf("games_%d.parquet", time.Now().UnixNano())
	finalPath := filepath.Join(dir, name)
	tmpPath := finalPath + ".tmp"

	if err := parquet.WriteFile(tmpPath, rows,
		parquet.Compression(&zstd.Codec{Level: zstd.SpeedBetterCompression}),
		parquet.KeyValueMetadata("schema", schemaVersion),
	); err != nil {
		_ = os.Remove(tmpPath)
		return "", fmt.Errorf("failed to write parquet: %w", err)
	}

	if err := os.Rename(tmpPath, finalPath); err != nil {
		_ = os.Remove(tmpPath)
		return "", fmt.Errorf("failed to rename parquet: %w", err)
	}

	return finalPath, nil
}
