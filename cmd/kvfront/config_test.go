package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, contents string) string {
	pathname := filepath.Join(t.TempDir(), "kvfront.config")
	require.Nil(t, os.WriteFile(pathname, []byte(contents), 0600))
	return pathname
}

func TestLoadConfig(t *testing.T) {
	t.Run("relaxed syntax and nested backends", func(t *testing.T) {
		c, err := loadConfig(writeConfig(t, `{
			address: "localhost:9000"
			debug: true
			cors_origins: ["*"]
			backend: {
				type: "tiered"
				fast: {type: "memcached", timeout: "100ms"}
				slow: {type: "mariadb", user: "kv", password: "secret"}
			}
		}`))
		require.Nil(t, err)
		c.applyDefaultsForMissingProperties()
		assert.Equal(t, "localhost:9000", c.Address)
		assert.True(t, c.Debug)
		assert.Equal(t, []string{"*"}, c.CORSOrigins)
		assert.EqualValues(t, 1<<20, c.MaxValueSize)
		require.NotNil(t, c.Backend.Fast)
		require.NotNil(t, c.Backend.Slow)
		assert.Equal(t, []string{"/tmp/memcached.sock"}, c.Backend.Fast.Servers)
		timeout, err := c.Backend.Fast.timeout()
		require.Nil(t, err)
		assert.Equal(t, 100*time.Millisecond, timeout)
		assert.Equal(t, "/run/mysqld/mysqld.sock", c.Backend.Slow.Socket)
		assert.Equal(t, "test", c.Backend.Slow.Database)
		assert.Equal(t, "users", c.Backend.Slow.Table)
	})
	t.Run("empty object selects a file backend", func(t *testing.T) {
		c, err := loadConfig(writeConfig(t, `{}`))
		require.Nil(t, err)
		c.applyDefaultsForMissingProperties()
		assert.Equal(t, ":8080", c.Address)
		assert.Equal(t, "file", c.Backend.Type)
		assert.Equal(t, "$HOME/lib/kvfront/store", c.Backend.Root)
	})
	t.Run("missing file", func(t *testing.T) {
		_, err := loadConfig(filepath.Join(t.TempDir(), "nope"))
		assert.True(t, os.IsNotExist(err))
	})
	t.Run("malformed file", func(t *testing.T) {
		_, err := loadConfig(writeConfig(t, `{address: `))
		assert.NotNil(t, err)
	})
	t.Run("bad timeout", func(t *testing.T) {
		b := backend{Type: "memcached", Timeout: "soon"}
		_, err := b.timeout()
		assert.NotNil(t, err)
	})
}
