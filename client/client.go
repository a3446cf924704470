// Package client talks to a kvfront server. Client implements storage.Store, so
// a kvfront server can be the backend of another.
package client

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/nicolagi/kvfront/storage"
)

type Option func(*Client)

// WithTimeout sets the timeout for each request. Zero means no timeout.
func WithTimeout(value time.Duration) Option {
	return func(c *Client) {
		c.http.Timeout = value
	}
}

// WithHTTPClient replaces the HTTP client used, e.g., with one from httptest.
func WithHTTPClient(value *http.Client) Option {
	return func(c *Client) {
		c.http = value
	}
}

// Client implements storage.Store. It requires to connect to a kvfront server.
type Client struct {
	base string
	http *http.Client
}

// New returns a client for the server at address, which is either host:port or
// a URL with http or https scheme.
func New(address string, opts ...Option) *Client {
	base := address
	if !strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") {
		base = "http://" + base
	}
	c := &Client{
		base: strings.TrimSuffix(base, "/") + "/",
		http: &http.Client{},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *Client) Put(key string, value []byte) (err error) {
	request, err := http.NewRequest(http.MethodPut, c.urlFor(key), bytes.NewReader(value))
	if err != nil {
		return err
	}
	response, err := c.http.Do(request)
	if err != nil {
		return err
	}
	defer func() {
		_ = response.Body.Close()
	}()
	if response.StatusCode != http.StatusOK {
		return statusError(key, response)
	}
	_, _ = io.Copy(io.Discard, response.Body)
	return nil
}

func (c *Client) Get(key string) (value []byte, err error) {
	response, err := c.http.Get(c.urlFor(key))
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = response.Body.Close()
	}()
	if response.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%.40q: %w", key, storage.ErrNotFound)
	}
	if response.StatusCode != http.StatusOK {
		return nil, statusError(key, response)
	}
	body, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, err
	}
	return body, nil
}

func (c *Client) urlFor(key string) string {
	return c.base + "?" + url.Values{"name": {key}}.Encode()
}

func statusError(key string, response *http.Response) error {
	err := errors.New(response.Status)
	if response.StatusCode == http.StatusBadRequest {
		err = storage.ErrInvalidKey
	}
	return fmt.Errorf("%.40q: %w", key, err)
}
