package server

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/nicolagi/kvfront/storage"
	log "github.com/sirupsen/logrus"
)

var allowedMethods = strings.Join([]string{http.MethodGet, http.MethodPut}, ", ")

func (s *Server) registerRoutes(r chi.Router) {
	r.Get("/", s.respond(s.get))
	r.Put("/", s.respond(s.put))
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		log.WithFields(log.Fields{
			"op":  r.Method,
			"url": r.URL.String(),
		}).Warn("Method not allowed")
		w.Header().Set("Allow", allowedMethods)
		w.WriteHeader(http.StatusMethodNotAllowed)
	})
}

// response is what a request handler wants to send back. A nil body means no
// body, not even the status text.
type response struct {
	status      int
	body        []byte
	contentType string
}

func statusOnly(status int) response {
	return response{status: status}
}

func (s *Server) respond(handle func(*log.Entry, *http.Request) response) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := log.WithFields(log.Fields{
			"op":  r.Method,
			"key": fmt.Sprintf("%.40q", r.URL.Query().Get("name")),
		})
		r.Body = http.MaxBytesReader(w, r.Body, s.opts.maxValueSize)
		res := handle(logger, r)
		logger = logger.WithField("status", res.status)
		if res.contentType != "" {
			w.Header().Set("Content-Type", res.contentType)
		}
		w.WriteHeader(res.status)
		if res.body != nil {
			if _, err := w.Write(res.body); err != nil {
				logger.WithField("err", err).Error("Failed writing response")
				return
			}
		}
		logger.Debug("Done")
	}
}

// keyFrom returns the key in the name query parameter, or a response to send
// if the parameter is missing or is not a valid key.
func keyFrom(logger *log.Entry, r *http.Request) (key string, res *response) {
	values, ok := r.URL.Query()["name"]
	if !ok {
		logger.Debug("Missing name")
		res := statusOnly(http.StatusBadRequest)
		return "", &res
	}
	key = values[0]
	if err := storage.ValidateKey(key); err != nil {
		logger.WithField("err", err).Debug("Invalid key")
		res := statusOnly(http.StatusBadRequest)
		return "", &res
	}
	return key, nil
}

func (s *Server) get(logger *log.Entry, r *http.Request) response {
	key, res := keyFrom(logger, r)
	if res != nil {
		return *res
	}
	value, err := s.opts.store.Get(key)
	if errors.Is(err, storage.ErrNotFound) {
		logger.WithField("err", err).Debug("Not found")
		return statusOnly(http.StatusNotFound)
	}
	if errors.Is(err, storage.ErrInvalidKey) {
		logger.WithField("err", err).Debug("Invalid key")
		return statusOnly(http.StatusBadRequest)
	}
	if err != nil {
		logger.WithField("err", err).Error("Could not get")
		return statusOnly(http.StatusInternalServerError)
	}
	// Empty values can't be put through this interface, but may have been
	// stored by other means. Treat them as absent.
	if len(value) == 0 {
		logger.Debug("Empty value")
		return statusOnly(http.StatusNotFound)
	}
	return response{
		status:      http.StatusOK,
		body:        value,
		contentType: "*/*",
	}
}

func (s *Server) put(logger *log.Entry, r *http.Request) response {
	key, res := keyFrom(logger, r)
	if res != nil {
		return *res
	}
	value, err := io.ReadAll(r.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			logger.WithField("limit", tooLarge.Limit).Warn("Value too large")
			return statusOnly(http.StatusRequestEntityTooLarge)
		}
		logger.WithField("err", err).Error("Could not read value")
		return statusOnly(http.StatusInternalServerError)
	}
	if len(value) == 0 {
		logger.Warn("Empty value")
		return statusOnly(http.StatusInternalServerError)
	}
	start := time.Now()
	err = s.opts.store.Put(key, value)
	logger = logger.WithFields(log.Fields{
		"size":    len(value),
		"elapsed": time.Since(start),
	})
	if errors.Is(err, storage.ErrInvalidKey) {
		logger.WithField("err", err).Debug("Invalid key")
		return statusOnly(http.StatusBadRequest)
	}
	if err != nil {
		logger.WithField("err", err).Error("Could not put")
		return statusOnly(http.StatusInternalServerError)
	}
	logger.Debug("Stored")
	return statusOnly(http.StatusOK)
}
