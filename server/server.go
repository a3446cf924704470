// Package server implements the HTTP front-end of a storage.Store.
//
// Valid requests are GETs and PUTs to "/?name=key". A PUT stores the request
// body under key and returns 200 with no body. A GET returns 200 with the value
// as the body and content type "*/*", or 404 if there is no value for the key.
//
// Both return 400 if the name parameter is missing or not a valid key (see
// storage.ValidateKey), and 500 if the store fails. A PUT with an empty body
// also returns 500, and one with a body larger than the maximum value size
// returns 413. Other methods return 405.
package server

import (
	"context"
	"errors"
	"net"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/nicolagi/kvfront/storage"
	"github.com/rs/cors"
	log "github.com/sirupsen/logrus"
)

// DefaultMaxValueSize is memcached's default item size limit.
const DefaultMaxValueSize = 1 << 20

type Option func(*options)

type options struct {
	address      string
	store        storage.Store
	maxValueSize int64
	corsOrigins  []string
}

func WithAddress(value string) Option {
	return func(o *options) {
		o.address = value
	}
}

func WithStore(value storage.Store) Option {
	return func(o *options) {
		o.store = value
	}
}

// WithMaxValueSize limits the size of PUT bodies. Non-positive values select
// DefaultMaxValueSize.
func WithMaxValueSize(value int64) Option {
	return func(o *options) {
		o.maxValueSize = value
	}
}

// WithCORSOrigins enables cross-origin GETs and PUTs from the given origins.
// "*" allows any origin.
func WithCORSOrigins(value ...string) Option {
	return func(o *options) {
		o.corsOrigins = value
	}
}

type Server struct {
	opts       options
	handler    http.Handler
	httpServer *http.Server
	ln         net.Listener
}

func New(opts ...Option) *Server {
	s := &Server{}
	s.opts.address = ":8080"
	for _, o := range opts {
		o(&s.opts)
	}
	if s.opts.store == nil {
		s.opts.store = storage.NewInMemoryStore()
	}
	if s.opts.maxValueSize <= 0 {
		s.opts.maxValueSize = DefaultMaxValueSize
	}
	router := chi.NewRouter()
	s.registerRoutes(router)
	s.handler = router
	if len(s.opts.corsOrigins) > 0 {
		s.handler = cors.New(cors.Options{
			AllowedOrigins: s.opts.corsOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPut},
		}).Handler(router)
	}
	s.httpServer = &http.Server{
		Handler: s.handler,
	}
	return s
}

// Handler returns the handler serving all requests.
func (s *Server) Handler() http.Handler {
	return s.handler
}

func (s *Server) Listen() (addr string, err error) {
	s.ln, err = net.Listen("tcp", s.opts.address)
	if err != nil {
		return
	}
	addr = s.ln.Addr().String()
	return
}

// Serve serves requests on the listener created by Listen. It returns nil once
// Shutdown is called.
func (s *Server) Serve() error {
	if s.ln == nil {
		return errors.New("serve called before listen")
	}
	err := s.httpServer.Serve(s.ln)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown stops accepting requests and waits for in-flight requests to
// complete, or for ctx to be done.
func (s *Server) Shutdown(ctx context.Context) error {
	log.Info("Shutting down server")
	return s.httpServer.Shutdown(ctx)
}
