package storage

import (
	"fmt"

	bolt "go.etcd.io/bbolt"
)

// DefaultBoltBucket is the bucket used when none is configured.
const DefaultBoltBucket = "blobs"

// BoltStore is an implementation of Store whose backend is a Bolt database.
type BoltStore struct {
	db     *bolt.DB
	bucket []byte
}

func NewBoltStore(db *bolt.DB, bucket string) (*BoltStore, error) {
	if bucket == "" {
		bucket = DefaultBoltBucket
	}
	s := &BoltStore{db: db, bucket: []byte(bucket)}
	err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(s.bucket)
		if err != nil {
			return fmt.Errorf("could not ensure bucket %q exists: %w", s.bucket, err)
		}
		return nil
	})
	return s, err
}

func (s *BoltStore) Put(key string, value []byte) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		// Bolt keeps a reference to the value until the transaction commits.
		if err := tx.Bucket(s.bucket).Put([]byte(key), dup(value)); err != nil {
			return fmt.Errorf("could not put %.40q: %w", key, err)
		}
		return nil
	})
}

func (s *BoltStore) Get(key string) (value []byte, err error) {
	err = s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(s.bucket).Get([]byte(key))
		if v == nil {
			return fmt.Errorf("%.40q: %w", key, ErrNotFound)
		}
		// Only valid for the life of the transaction.
		value = dup(v)
		return nil
	})
	return value, err
}
