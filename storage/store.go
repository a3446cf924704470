package storage

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Store represents a key-value store.
type Store interface {
	// Put stores value at key, overwriting any previous value. The store must
	// not retain value after returning.
	Put(key string, value []byte) (err error)

	// Get should return ErrNotFound if the key is not in the store.
	Get(key string) (value []byte, err error)
}

var (
	// ErrNotFound indicates a key is not in the store.
	ErrNotFound = errors.New("not found")

	// ErrInvalidKey indicates a key that no backend should be asked to store.
	ErrInvalidKey = errors.New("invalid key")
)

// MaxKeyLength is the longest key accepted, in bytes. It's memcached's limit.
const MaxKeyLength = 250

// ValidateKey returns an error wrapping ErrInvalidKey unless the key can be used
// as-is by every Store implementation in this package, including as a file name
// and as a memcached key. Names of hidden files are reserved for the files a
// DiskStore keeps next to the values.
func ValidateKey(key string) error {
	if key == "" {
		return fmt.Errorf("empty key: %w", ErrInvalidKey)
	}
	if len(key) > MaxKeyLength {
		return fmt.Errorf("%.40q: longer than %d bytes: %w", key, MaxKeyLength, ErrInvalidKey)
	}
	if strings.HasPrefix(key, ".") {
		return fmt.Errorf("%.40q: leading dot: %w", key, ErrInvalidKey)
	}
	if !utf8.ValidString(key) {
		return fmt.Errorf("%.40q: not valid UTF-8: %w", key, ErrInvalidKey)
	}
	for _, r := range key {
		if r == '/' || r == '\\' || unicode.IsSpace(r) || unicode.IsControl(r) {
			return fmt.Errorf("%.40q: contains %q: %w", key, r, ErrInvalidKey)
		}
	}
	return nil
}

func dup(b []byte) []byte {
	if b == nil {
		return []byte{}
	}
	c := make([]byte, len(b))
	copy(c, b)
	return c
}
