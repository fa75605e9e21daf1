package pool

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	assert.Equal(t, 20, config.MaxConnections)
	assert.Equal(t, time.Duration(0), config.StaleTimeout)
	assert.Equal(t, 30*time.Second, config.WaitTimeout)
	assert.Equal(t, 100*time.Millisecond, config.RetryInterval)
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Run("AllVariablesSet", func(t *testing.T) {
		t.Setenv("DBPOOL_MAX_CONNECTIONS", "8")
		t.Setenv("DBPOOL_STALE_TIMEOUT", "5m")
		t.Setenv("DBPOOL_WAIT_TIMEOUT", "10s")
		t.Setenv("DBPOOL_RETRY_INTERVAL", "50ms")

		config := LoadConfig()

		assert.Equal(t, 8, config.MaxConnections)
		assert.Equal(t, 5*time.Minute, config.StaleTimeout)
		assert.Equal(t, 10*time.Second, config.WaitTimeout)
		assert.Equal(t, 50*time.Millisecond, config.RetryInterval)
	})

	t.Run("WaitForever", func(t *testing.T) {
		t.Setenv("DBPOOL_WAIT_TIMEOUT", "forever")

		config := LoadConfig()
		assert.Equal(t, WaitForever, config.WaitTimeout)
	})

	t.Run("InvalidValuesKeepDefaults", func(t *testing.T) {
		t.Setenv("DBPOOL_MAX_CONNECTIONS", "-3")
		t.Setenv("DBPOOL_STALE_TIMEOUT", "soon")

		config := LoadConfig()
		assert.Equal(t, DefaultConfig().MaxConnections, config.MaxConnections)
		assert.Equal(t, DefaultConfig().StaleTimeout, config.StaleTimeout)
	})
}

func TestLoadConfigFile(t *testing.T) {
	writeConfig := func(t *testing.T, content string) string {
		t.Helper()
		path := filepath.Join(t.TempDir(), "dbpool.yaml")
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
		return path
	}

	t.Run("FullConfig", func(t *testing.T) {
		path := writeConfig(t, `
max_connections: 12
stale_timeout: 15m
wait_timeout: forever
retry_interval: 250ms
`)

		config, err := LoadConfigFile(path)
		require.NoError(t, err)

		assert.Equal(t, 12, config.MaxConnections)
		assert.Equal(t, 15*time.Minute, config.StaleTimeout)
		assert.Equal(t, WaitForever, config.WaitTimeout)
		assert.Equal(t, 250*time.Millisecond, config.RetryInterval)
	})

	t.Run("PartialConfigKeepsDefaults", func(t *testing.T) {
		path := writeConfig(t, "max_connections: 3\n")

		config, err := LoadConfigFile(path)
		require.NoError(t, err)

		assert.Equal(t, 3, config.MaxConnections)
		assert.Equal(t, DefaultConfig().WaitTimeout, config.WaitTimeout)
	})

	t.Run("InvalidDuration", func(t *testing.T) {
		path := writeConfig(t, "stale_timeout: sometime\n")

		_, err := LoadConfigFile(path)
		assert.Error(t, err)
	})

	t.Run("NegativeMaxConnections", func(t *testing.T) {
		path := writeConfig(t, "max_connections: -1\n")

		_, err := LoadConfigFile(path)
		assert.Error(t, err)
	})

	t.Run("MissingFile", func(t *testing.T) {
		_, err := LoadConfigFile(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.Error(t, err)
	})
}
