package postgres

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/heartbound/internal/config"
)

func dbConfig() config.DatabaseConfig {
	return config.DatabaseConfig{
		Host: "db.local", Port: 5432, User: "heartbound", Password: "pw",
		Name: "heartbound", SSLMode: "disable",
	}
}

func TestPoolConfig_AppliesLimits(t *testing.T) {
	cfg := dbConfig()
	cfg.MaxConns = 7
	cfg.MinConns = 2
	cfg.MaxConnLifetime = 90 * time.Second

	pc, err := poolConfig(cfg)
	require.NoError(t, err)
	assert.Equal(t, int32(7), pc.MaxConns)
	assert.Equal(t, int32(2), pc.MinConns)
	assert.Equal(t, 90*time.Second, pc.MaxConnLifetime)
	assert.Equal(t, "db.local", pc.ConnConfig.Host)
	assert.Equal(t, "heartbound", pc.ConnConfig.Database)
	assert.Equal(t, applicationName, pc.ConnConfig.RuntimeParams["application_name"])
}

func TestPoolConfig_ZeroLimitsKeepDefaults(t *testing.T) {
	pc, err := poolConfig(dbConfig())
	require.NoError(t, err)
	assert.Greater(t, pc.MaxConns, int32(0))
	assert.Equal(t, int32(0), pc.MinConns)
	assert.Greater(t, pc.MaxConnLifetime, time.Duration(0))
}

func TestPoolConfig_MinAboveMaxIgnored(t *testing.T) {
	cfg := dbConfig()
	cfg.MaxConns = 2
	cfg.MinConns = 5
	pc, err := poolConfig(cfg)
	require.NoError(t, err)
	assert.Equal(t, int32(2), pc.MaxConns)
	assert.Equal(t, int32(0), pc.MinConns)
}
