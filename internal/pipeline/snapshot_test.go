package pipeline

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrii-d/autoapply/internal/types"
)

func TestWriteSnapshot(t *testing.T) {
	dir := t.TempDir()
	at := time.Date(2025, 3, 1, 9, 30, 15, 0, time.UTC)
	postings := []types.Posting{testPosting("kwork", "1", "Лендинг", "1000")}

	path, err := WriteSnapshot(dir, at, postings)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "orders_20250301_093015.json"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var saved []types.Posting
	require.NoError(t, json.Unmarshal(data, &saved))
	require.Len(t, saved, 1)
	assert.Equal(t, "Лендинг", saved[0].Title)
}

func TestWriteSnapshotEmptyRun(t *testing.T) {
	dir := t.TempDir()

	path, err := WriteSnapshot(dir, time.Now().UTC(), nil)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, "[]", string(data))
}

func TestWriteSnapshotCreatesOutputDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "data")

	_, err := WriteSnapshot(dir, time.Now().UTC(), nil)
	require.NoError(t, err)

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestWriteSnapshotDistinctPerRun(t *testing.T) {
	dir := t.TempDir()

	first, err := WriteSnapshot(dir, time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC), nil)
	require.NoError(t, err)
	second, err := WriteSnapshot(dir, time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC), nil)
	require.NoError(t, err)

	assert.NotEqual(t, first, second)

	// The earlier snapshot survives the later run untouched.
	_, err = os.Stat(first)
	assert.NoError(t, err)
}
