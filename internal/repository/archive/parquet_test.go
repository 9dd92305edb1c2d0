package archive

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/gomoku-backend/internal/entity"
	"github.com/rocketscienceinc/gomoku-backend/internal/gomoku"
)

func TestGames_Flush(t *testing.T) {
	// Given: an archive with two finished games
	dir := t.TempDir()
	games := NewGames(dir)

	won := entity.NewGame("won", entity.ModeBenchmark)
	for col := 0; col < 4; col++ {
		require.NoError(t, gomoku.MakeTurn(won, entity.Black, 0, col))
		require.NoError(t, gomoku.MakeTurn(won, entity.White, 5, col))
	}
	require.NoError(t, gomoku.MakeTurn(won, entity.Black, 0, 4))
	require.True(t, won.IsDecided())

	drawn := entity.NewGame("drawn", entity.ModeBenchmark)
	drawn.Draw()

	games.Add(won)
	games.Add(drawn)

	// When: the archive is flushed
	path, err := games.Flush()

	// Then: one parquet file holds both games with their moves
	require.NoError(t, err)
	assert.Equal(t, dir, filepath.Dir(path))

	rows, err := parquet.ReadFile[GameRow](path)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "won", rows[0].GameID)
	assert.Equal(t, "X", rows[0].Winner)
	assert.Equal(t, entity.StatusDecided, rows[0].Status)
	assert.Equal(t, int32(9), rows[0].Plies)
	assert.Equal(t, []int32{0, 5, 0, 5, 0, 5, 0, 5, 0}, rows[0].MoveRow)
	assert.Equal(t, int32(entity.Black), rows[0].MovePlayer[8])

	assert.Equal(t, "drawn", rows[1].GameID)
	assert.Equal(t, ".", rows[1].Winner)
	assert.Empty(t, rows[1].MoveRow)
}

func TestGames_FlushEmpty(t *testing.T) {
	dir := t.TempDir()
	games := NewGames(dir)

	path, err := games.Flush()

	require.NoError(t, err)
	assert.Empty(t, path)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestGames_FlushClearsBuffer(t *testing.T) {
	games := NewGames(t.TempDir())
	games.Add(entity.NewGame("g1", entity.ModeBenchmark))

	first, err := games.Flush()
	require.NoError(t, err)
	require.NotEmpty(t, first)

	second, err := games.Flush()
	require.NoError(t, err)
	assert.Empty(t, second)
}
