package storage

import (
	"errors"
	"fmt"
	"time"

	"github.com/bradfitz/gomemcache/memcache"
)

// memcacheClient is the subset of *memcache.Client used by Memcached.
type memcacheClient interface {
	Get(key string) (*memcache.Item, error)
	Set(item *memcache.Item) error
}

// Memcached is a Store implementation backed by one or more memcached servers.
// Values may be evicted by the servers at any time, so it is best used as the
// fast tier of a Tiered store.
type Memcached struct {
	client memcacheClient
}

// NewMemcached returns a Store talking to the given servers. A server address
// containing a slash is taken to be the path of a unix domain socket. A zero
// timeout means the client library default.
func NewMemcached(timeout time.Duration, servers ...string) (*Memcached, error) {
	if len(servers) == 0 {
		return nil, errors.New("no memcached servers")
	}
	var sl memcache.ServerList
	if err := sl.SetServers(servers...); err != nil {
		return nil, fmt.Errorf("could not resolve memcached servers %q: %w", servers, err)
	}
	c := memcache.NewFromSelector(&sl)
	if timeout > 0 {
		c.Timeout = timeout
	}
	return &Memcached{client: c}, nil
}

func (s *Memcached) Put(key string, value []byte) error {
	// The client library does not compress values.
	err := s.client.Set(&memcache.Item{
		Key:   key,
		Value: dup(value),
	})
	if errors.Is(err, memcache.ErrMalformedKey) {
		return fmt.Errorf("%.40q: %w", key, ErrInvalidKey)
	}
	if err != nil {
		return fmt.Errorf("could not set %.40q: %w", key, err)
	}
	return nil
}

func (s *Memcached) Get(key string) (value []byte, err error) {
	item, err := s.client.Get(key)
	if errors.Is(err, memcache.ErrCacheMiss) {
		return nil, fmt.Errorf("%.40q: %w", key, ErrNotFound)
	}
	if errors.Is(err, memcache.ErrMalformedKey) {
		return nil, fmt.Errorf("%.40q: %w", key, ErrInvalidKey)
	}
	if err != nil {
		return nil, fmt.Errorf("could not get %.40q: %w", key, err)
	}
	return dup(item.Value), nil
}
