package persistence

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type snapshot struct {
	ConsecutiveLosses int    `json:"consecutive_losses"`
	LastBetAmount     string `json:"last_bet_amount"`
}

func TestSaveLoadRoundTrip(t *testing.T) {
	service := NewJSONFileService(t.TempDir())
	store := service.NewStore("strategy", "martingale", "state")

	in := snapshot{ConsecutiveLosses: 3, LastBetAmount: "40"}
	require.NoError(t, store.Save(in))

	var out snapshot
	require.NoError(t, store.Load(&out))
	assert.Equal(t, in, out)
}

func TestLoadMissingReturnsErrNotExists(t *testing.T) {
	service := NewJSONFileService(t.TempDir())
	store := service.NewStore("strategy", "ghost", "state")

	var out snapshot
	assert.ErrorIs(t, store.Load(&out), ErrNotExists)
}

func TestKeySanitizedFilename(t *testing.T) {
	dir := t.TempDir()
	service := NewJSONFileService(dir)
	store := service.NewStore("strategy", "flat/red", "state")

	require.NoError(t, store.Save(snapshot{}))

	// 分隔符与非法字符全部折叠为下划线
	_, err := os.Stat(filepath.Join(dir, "strategy_flat_red_state.json"))
	assert.NoError(t, err)
}

func TestSaveCreatesBaseDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "state")
	service := NewJSONFileService(dir)
	store := service.NewStore("strategy", "martingale", "state")

	require.NoError(t, store.Save(snapshot{}))
	_, err := os.Stat(dir)
	assert.NoError(t, err)
}
