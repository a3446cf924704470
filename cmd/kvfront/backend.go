package main

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/aws/aws-sdk-go/service/dynamodb"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/go-sql-driver/mysql"
	"github.com/nicolagi/kvfront/client"
	"github.com/nicolagi/kvfront/storage"
	log "github.com/sirupsen/logrus"
	bolt "go.etcd.io/bbolt"
)

// openStore builds the store described by b. The returned cleanup function
// releases whatever the store holds on to, and must be called even if err is
// not nil.
func openStore(b *backend) (store storage.Store, cleanup func(), err error) {
	var closers []func() error
	cleanup = func() {
		for i := len(closers) - 1; i >= 0; i-- {
			if err := closers[i](); err != nil {
				log.WithFields(log.Fields{
					"backend": b.Type,
					"err":     err,
				}).Warn("Could not release backend resources")
			}
		}
	}
	logger := log.WithField("backend", b.Type)
	switch b.Type {
	case "memory":
		logger.Warn("Values will be lost on exit")
		return storage.NewInMemoryStore(), cleanup, nil
	case "file":
		root := os.ExpandEnv(b.Root)
		lock, err := storage.LockDir(root)
		if err != nil {
			return nil, cleanup, err
		}
		closers = append(closers, lock.Close)
		logger.WithField("root", root).Info("Will store values in files")
		return storage.NewDiskStore(root), cleanup, nil
	case "bolt":
		path := os.ExpandEnv(b.Path)
		if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
			return nil, cleanup, fmt.Errorf("could not ensure directory for %q exists: %w", path, err)
		}
		db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: time.Second})
		if err != nil {
			return nil, cleanup, fmt.Errorf("could not open database %q: %w", path, err)
		}
		closers = append(closers, db.Close)
		store, err := storage.NewBoltStore(db, b.Bucket)
		if err != nil {
			return nil, cleanup, err
		}
		logger.WithField("path", path).Info("Will store values in a Bolt database")
		return store, cleanup, nil
	case "memcached":
		timeout, err := b.timeout()
		if err != nil {
			return nil, cleanup, err
		}
		store, err := storage.NewMemcached(timeout, b.Servers...)
		if err != nil {
			return nil, cleanup, err
		}
		logger.WithField("servers", b.Servers).Info("Will store values in memcached")
		return store, cleanup, nil
	case "mariadb":
		db, err := sql.Open("mysql", mysqlDSN(b))
		if err != nil {
			return nil, cleanup, err
		}
		closers = append(closers, db.Close)
		if err := db.Ping(); err != nil {
			return nil, cleanup, fmt.Errorf("could not connect to database: %w", err)
		}
		store, err := storage.NewSQLStore(db, b.Table)
		if err != nil {
			return nil, cleanup, err
		}
		logger.WithFields(log.Fields{
			"database": b.Database,
			"table":    b.Table,
		}).Info("Will store values in a database table")
		return store, cleanup, nil
	case "s3":
		sess, err := storage.NewAWSSession(b.Profile, b.Region)
		if err != nil {
			return nil, cleanup, err
		}
		logger.WithField("bucket", b.Bucket).Info("Will store values in S3")
		return storage.NewS3(s3.New(sess), b.Bucket, b.Prefix), cleanup, nil
	case "dynamodb":
		sess, err := storage.NewAWSSession(b.Profile, b.Region)
		if err != nil {
			return nil, cleanup, err
		}
		store, err := storage.NewDynamoDB(dynamodb.New(sess), b.Table)
		if err != nil {
			return nil, cleanup, err
		}
		logger.WithField("table", b.Table).Info("Will store values in DynamoDB")
		return store, cleanup, nil
	case "remote":
		if b.Address == "" {
			return nil, cleanup, errors.New("remote backend: missing address")
		}
		timeout, err := b.timeout()
		if err != nil {
			return nil, cleanup, err
		}
		logger.WithField("address", b.Address).Info("Will store values in another server")
		return client.New(b.Address, client.WithTimeout(timeout)), cleanup, nil
	case "tiered":
		if b.Fast == nil || b.Slow == nil {
			return nil, cleanup, errors.New("tiered backend: both fast and slow are required")
		}
		fast, fastCleanup, err := openStore(b.Fast)
		closers = append(closers, func() error { fastCleanup(); return nil })
		if err != nil {
			return nil, cleanup, fmt.Errorf("fast: %w", err)
		}
		slow, slowCleanup, err := openStore(b.Slow)
		closers = append(closers, func() error { slowCleanup(); return nil })
		if err != nil {
			return nil, cleanup, fmt.Errorf("slow: %w", err)
		}
		return storage.NewTiered(fast, slow), cleanup, nil
	default:
		return nil, cleanup, fmt.Errorf("%q: unknown backend type", b.Type)
	}
}

func mysqlDSN(b *backend) string {
	c := mysql.NewConfig()
	c.User = b.User
	c.Passwd = b.Password
	c.DBName = b.Database
	if b.Socket != "" {
		c.Net = "unix"
		c.Addr = b.Socket
	} else {
		c.Net = "tcp"
		c.Addr = b.Addr
	}
	return c.FormatDSN()
}
