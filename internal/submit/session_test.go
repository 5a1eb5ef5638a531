package submit

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionStateRoundTrip(t *testing.T) {
	state := &SessionState{
		Marketplace: "kwork",
		CapturedAt:  time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
		Cookies: []Cookie{
			{Name: "PHPSESSID", Value: "abc123", Domain: ".kwork.ru", Path: "/", HTTPOnly: true, Secure: true},
			{Name: "remember", Value: "1", Domain: ".kwork.ru", Path: "/", Expires: 1893456000},
		},
	}

	path := filepath.Join(t.TempDir(), "auth_state_kwork.json")
	require.NoError(t, state.Save(path))

	loaded, err := LoadSessionState(path)
	require.NoError(t, err)
	assert.Equal(t, state, loaded)
}

func TestSessionStateFilePermissions(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("file modes are not meaningful on windows")
	}

	state := &SessionState{Marketplace: "kwork", Cookies: []Cookie{{Name: "sid", Value: "x"}}}
	path := filepath.Join(t.TempDir(), "auth_state_kwork.json")
	require.NoError(t, state.Save(path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestLoadSessionStateMissingFile(t *testing.T) {
	_, err := LoadSessionState(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestLoadSessionStateRejectsEmptyCookies(t *testing.T) {
	path := filepath.Join(t.TempDir(), "auth_state_kwork.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"marketplace":"kwork","cookies":[]}`), 0o600))

	_, err := LoadSessionState(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no cookies")
}
