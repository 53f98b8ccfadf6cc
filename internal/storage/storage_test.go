package storage

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cory-johannsen/haxroom/internal/config"
	"github.com/cory-johannsen/haxroom/internal/history"
	"github.com/cory-johannsen/haxroom/internal/storage/redis"
)

func TestOpenHistory_Memory(t *testing.T) {
	store, release, err := OpenHistory(context.Background(), config.Config{History: config.HistoryConfig{Backend: config.BackendMemory}}, zap.NewNop())
	require.NoError(t, err)
	defer release()
	assert.IsType(t, &history.MemoryStore{}, store)
}

func TestOpenHistory_Redis(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := config.Config{
		History: config.HistoryConfig{Backend: config.BackendRedis},
		Redis:   config.RedisConfig{URL: "redis://" + mr.Addr() + "/0", KeyPrefix: "t:"},
	}
	store, release, err := OpenHistory(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	defer release()
	assert.IsType(t, &redis.HistoryStore{}, store)

	_, err = history.Append(context.Background(), store, "10.0.0.1", nil, history.Entry{ID: 1, Name: "alice"})
	require.NoError(t, err)
	keys, err := store.Keys(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"10.0.0.1"}, keys)
}

func TestOpenHistory_Unknown(t *testing.T) {
	_, _, err := OpenHistory(context.Background(), config.Config{History: config.HistoryConfig{Backend: "sqlite"}}, zap.NewNop())
	assert.ErrorContains(t, err, "sqlite")
}
