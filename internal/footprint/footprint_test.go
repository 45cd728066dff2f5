package footprint

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpdateAndElapsed(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nested", "run.txt")
	require.False(t, Exists(path))

	require.NoError(t, Update(path))
	require.True(t, Exists(path))
	assert.Less(t, Elapsed(path), time.Minute)
}

// Отсутствие отметки трактуется как «давно»: первый алерт не подавляется.
func TestElapsedMissingFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "missing.txt")
	assert.Greater(t, Elapsed(path), 24*time.Hour)
}

func TestElapsedGarbageContent(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "run.txt")
	require.NoError(t, os.WriteFile(path, []byte("не число"), 0o644))
	assert.Greater(t, Elapsed(path), 24*time.Hour)
}

func TestElapsedStaleTimestamp(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "run.txt")
	stale := fmt.Sprintf("%d", time.Now().Add(-2*time.Hour).Unix())
	require.NoError(t, os.WriteFile(path, []byte(stale), 0o644))

	elapsed := Elapsed(path)
	assert.Greater(t, elapsed, time.Hour)
	assert.Less(t, elapsed, 3*time.Hour)
}

func TestClear(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "run.txt")
	require.NoError(t, Update(path))
	require.NoError(t, Clear(path))
	assert.False(t, Exists(path))

	// повторная очистка не ошибка
	assert.NoError(t, Clear(path))
}
