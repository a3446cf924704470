package main

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/nicolagi/kvfront/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenStore(t *testing.T) {
	t.Run("memory", func(t *testing.T) {
		store, cleanup, err := openStore(&backend{Type: "memory"})
		defer cleanup()
		require.Nil(t, err)
		require.Nil(t, store.Put("foo", []byte("bar")))
	})
	t.Run("file root is locked while open", func(t *testing.T) {
		b := &backend{Type: "file", Root: t.TempDir()}
		store, cleanup, err := openStore(b)
		require.Nil(t, err)
		require.Nil(t, store.Put("foo", []byte("bar")))

		_, cleanup2, err := openStore(b)
		cleanup2()
		assert.True(t, errors.Is(err, storage.ErrLocked), "got %v", err)

		cleanup()
		store, cleanup, err = openStore(b)
		require.Nil(t, err)
		defer cleanup()
		value, err := store.Get("foo")
		require.Nil(t, err)
		assert.Equal(t, []byte("bar"), value)
	})
	t.Run("bolt", func(t *testing.T) {
		b := &backend{Type: "bolt", Path: filepath.Join(t.TempDir(), "sub", "kv.db")}
		b.applyDefaultsForMissingProperties()
		store, cleanup, err := openStore(b)
		defer cleanup()
		require.Nil(t, err)
		require.Nil(t, store.Put("foo", []byte("bar")))
		value, err := store.Get("foo")
		require.Nil(t, err)
		assert.Equal(t, []byte("bar"), value)
	})
	t.Run("tiered", func(t *testing.T) {
		store, cleanup, err := openStore(&backend{
			Type: "tiered",
			Fast: &backend{Type: "memory"},
			Slow: &backend{Type: "file", Root: t.TempDir()},
		})
		defer cleanup()
		require.Nil(t, err)
		assert.IsType(t, &storage.Tiered{}, store)
	})
	t.Run("tiered needs both tiers", func(t *testing.T) {
		_, cleanup, err := openStore(&backend{Type: "tiered", Fast: &backend{Type: "memory"}})
		defer cleanup()
		assert.NotNil(t, err)
	})
	t.Run("tiered with a broken tier", func(t *testing.T) {
		_, cleanup, err := openStore(&backend{
			Type: "tiered",
			Fast: &backend{Type: "memory"},
			Slow: &backend{Type: "floppy"},
		})
		defer cleanup()
		assert.NotNil(t, err)
	})
	t.Run("memcached", func(t *testing.T) {
		b := &backend{Type: "memcached"}
		b.applyDefaultsForMissingProperties()
		store, cleanup, err := openStore(b)
		defer cleanup()
		require.Nil(t, err)
		assert.IsType(t, &storage.Memcached{}, store)
	})
	t.Run("remote needs an address", func(t *testing.T) {
		_, cleanup, err := openStore(&backend{Type: "remote"})
		defer cleanup()
		assert.NotNil(t, err)
	})
	t.Run("unknown type", func(t *testing.T) {
		_, cleanup, err := openStore(&backend{Type: "floppy"})
		defer cleanup()
		assert.NotNil(t, err)
	})
}

func TestMySQLDSN(t *testing.T) {
	t.Run("unix socket", func(t *testing.T) {
		dsn := mysqlDSN(&backend{
			User:     "kv",
			Password: "secret",
			Socket:   "/tmp/mysql.sock",
			Database: "test",
		})
		c, err := mysql.ParseDSN(dsn)
		require.Nil(t, err)
		assert.Equal(t, "kv", c.User)
		assert.Equal(t, "secret", c.Passwd)
		assert.Equal(t, "unix", c.Net)
		assert.Equal(t, "/tmp/mysql.sock", c.Addr)
		assert.Equal(t, "test", c.DBName)
	})
	t.Run("tcp", func(t *testing.T) {
		c, err := mysql.ParseDSN(mysqlDSN(&backend{User: "kv", Addr: "db:3306", Database: "test"}))
		require.Nil(t, err)
		assert.Equal(t, "tcp", c.Net)
		assert.Equal(t, "db:3306", c.Addr)
	})
}
