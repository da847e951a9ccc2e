package persistence

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/grievance-service/internal/config"
	"github.com/spec-kit/grievance-service/internal/repository/memory"
)

func TestNewPostgres_WithoutDSNFallsBackToMemory(t *testing.T) {
	pg, err := NewPostgres(context.Background(), config.PostgresConfig{}, zap.NewNop())
	require.NoError(t, err)

	assert.Nil(t, pg.PoolHandle())
	assert.IsType(t, &memory.Store{}, pg.Store())
	assert.ErrorIs(t, pg.Ping(context.Background()), errPostgresNotConfigured)
	assert.NotPanics(t, pg.Close)
}

func TestNewRedis_WithoutAddrIsDisabled(t *testing.T) {
	r := NewRedis(context.Background(), config.RedisConfig{}, zap.NewNop())

	assert.Nil(t, r)
	assert.ErrorIs(t, r.Ping(context.Background()), errRedisNotConfigured)
	assert.NotPanics(t, r.Close)
}

func TestRunMigrations_WithoutDSNIsSkipped(t *testing.T) {
	assert.NoError(t, RunMigrations("", zap.NewNop()))

	_, err := NewMigrator("", zap.NewNop())
	assert.ErrorIs(t, err, errNoDSN)
}

func TestEmbeddedMigrationsArePaired(t *testing.T) {
	entries, err := migrationFiles.ReadDir("migrations")
	require.NoError(t, err)

	var up, down int
	for _, e := range entries {
		switch {
		case len(e.Name()) > 7 && e.Name()[len(e.Name())-7:] == ".up.sql":
			up++
		case len(e.Name()) > 9 && e.Name()[len(e.Name())-9:] == ".down.sql":
			down++
		}
	}
	assert.Positive(t, up)
	assert.Equal(t, up, down)
}
