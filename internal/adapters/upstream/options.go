package upstream

import (
	"net/http"
	"time"

	"github.com/okian/matchboard/pkg/logger"
)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTimeout bounds each request.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithRelay switches to the relay variant: host and key are sent as
// x-rapidapi-host and x-rapidapi-key headers.
func WithRelay(host, key string) Option {
	return func(c *Client) {
		if host != "" {
			c.headers["x-rapidapi-host"] = host
			c.headers["x-rapidapi-ua"] = "RapidAPI-Playground"
		}
		if key != "" {
			c.headers["x-rapidapi-key"] = key
		}
	}
}

// WithLogger sets the client logger.
func WithLogger(l logger.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.log = l
		}
	}
}
