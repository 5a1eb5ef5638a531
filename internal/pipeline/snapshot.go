package pipeline

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/andrii-d/autoapply/internal/types"
)

// snapshotTimeFormat names snapshot files by run start time.
const snapshotTimeFormat = "20060102_150405"

// WriteSnapshot persists the posting set of one run as a single JSON array.
// Every run writes its own file; earlier snapshots are never touched, so a
// single invocation is idempotent with respect to prior runs.
func WriteSnapshot(dir string, at time.Time, postings []types.Posting) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory %s: %w", dir, err)
	}

	path := filepath.Join(dir, fmt.Sprintf("orders_%s.json", at.Format(snapshotTimeFormat)))

	// An empty run still produces a valid, empty array.
	if postings == nil {
		postings = []types.Posting{}
	}

	data, err := json.MarshalIndent(postings, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode snapshot: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write snapshot %s: %w", path, err)
	}

	return path, nil
}
