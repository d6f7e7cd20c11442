package database

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/synaptica-ai/cvdrisk/pkg/common/config"
)

func TestOpenSQLite(t *testing.T) {
	cfg := &config.Config{DatabaseDriver: "sqlite", SQLitePath: filepath.Join(t.TempDir(), "scores.db")}
	db, err := Open(cfg)
	require.NoError(t, err)
	require.NoError(t, db.Exec("SELECT 1").Error)
	assert.NoError(t, Close(db))
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, err := Open(&config.Config{DatabaseDriver: "oracle"})
	assert.ErrorContains(t, err, "unsupported database driver")
}

func TestCloseNil(t *testing.T) {
	assert.NoError(t, Close(nil))
}

func TestNewRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	client := NewRedis(&config.Config{RedisHost: mr.Host(), RedisPort: mr.Port()})
	defer client.Close()

	require.NoError(t, client.Set(context.Background(), "k", "v", 0).Err())
	got, err := mr.Get("k")
	require.NoError(t, err)
	assert.Equal(t, "v", got)
}
