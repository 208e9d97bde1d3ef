package migration

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"geohash-service/config"
)

func TestRunUnreachableDatabase(t *testing.T) {
	RetryDelay = 0
	cfg, err := config.Load("")
	require.NoError(t, err)
	cfg.DB.Host = "127.0.0.1"
	cfg.DB.Port = "1"
	cfg.Migrations.Retries = 2

	err = Run(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "could not connect to the database")
}
