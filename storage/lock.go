package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrLocked indicates another process holds the lock on a directory.
var ErrLocked = errors.New("directory locked by another process")

const lockFileName = ".lock"

// DirLock is an exclusive, advisory, inter-process lock on a directory.
type DirLock struct {
	path string
	file *os.File
}

// LockDir creates dir if needed and takes an exclusive lock on it, without
// blocking. It returns an error wrapping ErrLocked if some other process holds
// the lock already.
func LockDir(dir string) (*DirLock, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("could not ensure directory %q exists: %w", dir, err)
	}
	path := filepath.Join(dir, lockFileName)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0600)
	if err != nil {
		return nil, fmt.Errorf("could not open lock file: %w", err)
	}
	if err := lockFile(f); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("%q: %w", path, err)
	}
	return &DirLock{path: path, file: f}, nil
}

// Close releases the lock. It is safe to call more than once.
func (l *DirLock) Close() error {
	if l == nil || l.file == nil {
		return nil
	}
	err := unlockFile(l.file)
	cerr := l.file.Close()
	l.file = nil
	if err != nil {
		return errors.Join(err, cerr)
	}
	return cerr
}
