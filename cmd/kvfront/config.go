package main

import (
	"fmt"
	"os"
	"time"

	"github.com/nicolagi/kvfront/server"
	"github.com/nicolagi/kvfront/storage"
	"github.com/rogpeppe/rjson"
)

type config struct {
	Address      string   `json:"address"`
	Debug        bool     `json:"debug"`
	MaxValueSize int64    `json:"max_value_size"`
	CORSOrigins  []string `json:"cors_origins"`
	Backend      backend  `json:"backend"`
}

type backend struct {
	Type string `json:"type"`

	// Properties for "memcached" type.
	Servers []string `json:"servers"`

	// Properties for "memcached" and "remote" types.
	Timeout string `json:"timeout"`

	// Properties for "mariadb" type. Either socket or addr.
	User     string `json:"user"`
	Password string `json:"password"`
	Socket   string `json:"socket"`
	Addr     string `json:"addr"`
	Database string `json:"database"`

	// Properties for "mariadb" and "dynamodb" types.
	Table string `json:"table"`

	// Properties for "file" type.
	Root string `json:"root"`

	// Properties for "bolt" type.
	Path string `json:"path"`

	// Properties for "bolt" and "s3" types.
	Bucket string `json:"bucket"`

	// Properties for "s3" and "dynamodb" types.
	Profile string `json:"profile"`
	Region  string `json:"region"`
	Prefix  string `json:"prefix"`

	// Properties for "remote" type.
	Address string `json:"address"`

	// Properties for "tiered" type.
	Fast *backend `json:"fast"`
	Slow *backend `json:"slow"`
}

func loadConfig(pathname string) (*config, error) {
	f, err := os.Open(pathname)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = f.Close()
	}()
	var c *config
	if err := rjson.NewDecoder(f).Decode(&c); err != nil {
		return nil, fmt.Errorf("could not decode %q: %w", pathname, err)
	}
	if c == nil {
		c = new(config)
	}
	return c, nil
}

func (c *config) applyDefaultsForMissingProperties() {
	if c.Address == "" {
		c.Address = ":8080"
	}
	if c.MaxValueSize <= 0 {
		c.MaxValueSize = server.DefaultMaxValueSize
	}
	c.Backend.applyDefaultsForMissingProperties()
}

func (b *backend) applyDefaultsForMissingProperties() {
	switch b.Type {
	case "":
		b.Type = "file"
		fallthrough
	case "file":
		if b.Root == "" {
			b.Root = "$HOME/lib/kvfront/store"
		}
	case "memcached":
		if len(b.Servers) == 0 {
			b.Servers = []string{"/tmp/memcached.sock"}
		}
	case "mariadb":
		if b.Socket == "" && b.Addr == "" {
			b.Socket = "/run/mysqld/mysqld.sock"
		}
		if b.Database == "" {
			b.Database = "test"
		}
		if b.Table == "" {
			b.Table = storage.DefaultSQLTable
		}
	case "bolt":
		if b.Path == "" {
			b.Path = "$HOME/lib/kvfront/kvfront.db"
		}
	case "tiered":
		if b.Fast != nil {
			b.Fast.applyDefaultsForMissingProperties()
		}
		if b.Slow != nil {
			b.Slow.applyDefaultsForMissingProperties()
		}
	}
}

func (b *backend) timeout() (time.Duration, error) {
	if b.Timeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(b.Timeout)
	if err != nil {
		return 0, fmt.Errorf("%s backend: invalid timeout: %w", b.Type, err)
	}
	return d, nil
}
