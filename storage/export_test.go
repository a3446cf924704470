package storage

import (
	"sync"

	"github.com/bradfitz/gomemcache/memcache"
)

// fakeMemcache behaves like a memcached server with infinite capacity.
type fakeMemcache struct {
	sync.Mutex
	items map[string][]byte
	err   error
}

func (f *fakeMemcache) Get(key string) (*memcache.Item, error) {
	if !legalMemcacheKey(key) {
		return nil, memcache.ErrMalformedKey
	}
	f.Lock()
	defer f.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	v, ok := f.items[key]
	if !ok {
		return nil, memcache.ErrCacheMiss
	}
	return &memcache.Item{Key: key, Value: v}, nil
}

func (f *fakeMemcache) Set(item *memcache.Item) error {
	if !legalMemcacheKey(item.Key) {
		return memcache.ErrMalformedKey
	}
	f.Lock()
	defer f.Unlock()
	if f.err != nil {
		return f.err
	}
	f.items[item.Key] = item.Value
	return nil
}

func legalMemcacheKey(key string) bool {
	if len(key) > 250 {
		return false
	}
	for i := 0; i < len(key); i++ {
		if key[i] <= ' ' || key[i] == 0x7f {
			return false
		}
	}
	return true
}

// NewFakeMemcached returns a Memcached store talking to an in-process fake
// instead of a server. If err is given, every call fails with it.
func NewFakeMemcached(err ...error) *Memcached {
	f := &fakeMemcache{items: make(map[string][]byte)}
	if len(err) > 0 {
		f.err = err[0]
	}
	return &Memcached{client: f}
}
