package storage

import (
	"errors"

	log "github.com/sirupsen/logrus"
)

// Tiered implements Store wrapping a pair of stores, one fast, one slow. The
// slow store is the one that holds on to data: puts are acknowledged only once
// the slow store has the value. Gets are served from the fast store if possible,
// otherwise from the slow store, in which case the value is also propagated to
// the fast store for next time.
type Tiered struct {
	fast Store
	slow Store
}

func NewTiered(fast, slow Store) *Tiered {
	return &Tiered{
		fast: fast,
		slow: slow,
	}
}

func (s *Tiered) Get(key string) (value []byte, err error) {
	value, err = s.fast.Get(key)
	if err == nil {
		return
	}
	logger := log.WithField("key", key)
	if !errors.Is(err, ErrNotFound) {
		logger.WithField("err", err).Warn("Could not get from fast store")
	}
	value, err = s.slow.Get(key)
	if err != nil {
		return nil, err
	}
	if ferr := s.fast.Put(key, value); ferr != nil {
		logger.WithField("err", ferr).Warn("Could not propagate from slow to fast")
	} else {
		logger.Debug("Propagated from slow to fast")
	}
	return value, nil
}

func (s *Tiered) Put(key string, value []byte) (err error) {
	if err = s.slow.Put(key, value); err != nil {
		return err
	}
	// If this fails, the fast store may serve the previous value until it
	// evicts it.
	if ferr := s.fast.Put(key, value); ferr != nil {
		log.WithFields(log.Fields{
			"key": key,
			"err": ferr,
		}).Warn("Could not propagate from slow to fast")
	}
	return nil
}
