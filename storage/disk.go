package storage

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/peterbourgon/diskv/v3"
)

const diskTempDir = ".tmp"

// DiskStore implements Store keeping each value in a file named after its key,
// directly under a root directory.
type DiskStore struct {
	dir string
	d   *diskv.Diskv
}

func flatTransform(key string) *diskv.PathKey {
	return &diskv.PathKey{
		Path:     []string{},
		FileName: key,
	}
}

func inverseFlatTransform(pathKey *diskv.PathKey) string {
	return pathKey.FileName
}

func NewDiskStore(dir string) *DiskStore {
	return &DiskStore{
		dir: dir,
		d: diskv.New(diskv.Options{
			BasePath:          dir,
			AdvancedTransform: flatTransform,
			InverseTransform:  inverseFlatTransform,
			// Writes go to a temporary file first, then get renamed in place, so
			// readers and concurrent writers never observe a partial value.
			TempDir:  filepath.Join(dir, diskTempDir),
			FilePerm: 0600,
			PathPerm: 0700,
		}),
	}
}

func (s *DiskStore) Put(key string, value []byte) (err error) {
	if err := ValidateKey(key); err != nil {
		return err
	}
	if err := s.d.Write(key, dup(value)); err != nil {
		return fmt.Errorf("could not write %q: %w", s.pathFor(key), err)
	}
	return nil
}

func (s *DiskStore) Get(key string) (value []byte, err error) {
	if err := ValidateKey(key); err != nil {
		return nil, err
	}
	value, err = s.d.Read(key)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%q: %w", key, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("could not read %q: %w", s.pathFor(key), err)
	}
	return value, nil
}

// Dir returns the root directory.
func (s *DiskStore) Dir() string {
	return s.dir
}

func (s *DiskStore) pathFor(key string) string {
	return filepath.Join(s.dir, key)
}
