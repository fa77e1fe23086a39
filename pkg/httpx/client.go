// Package httpx is the outbound HTTP client shared by the weather provider and
// the structured-generation clients. Calls run through a circuit breaker and
// are never retried: a failed call is terminal for that request.
package httpx

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/sony/gobreaker/v2"
)

type Client struct {
	client    *http.Client
	breaker   *gobreaker.CircuitBreaker[*http.Response]
	userAgent string
}

type Option func(*gobreaker.Settings)

// WithTrip overrides the consecutive-failure count that opens the breaker.
func WithTrip(consecutiveFailures uint32) Option {
	return func(s *gobreaker.Settings) {
		s.ReadyToTrip = func(c gobreaker.Counts) bool { return c.ConsecutiveFailures >= consecutiveFailures }
	}
}

// WithOpenTimeout overrides how long the breaker stays open.
func WithOpenTimeout(d time.Duration) Option {
	return func(s *gobreaker.Settings) { s.Timeout = d }
}

func New(httpClient *http.Client, name, userAgent string, opts ...Option) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 25 * time.Second}
	}
	st := gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(c gobreaker.Counts) bool { return c.ConsecutiveFailures > 5 },
	}
	for _, o := range opts {
		o(&st)
	}
	return &Client{
		client:    httpClient,
		breaker:   gobreaker.NewCircuitBreaker[*http.Response](st),
		userAgent: userAgent,
	}
}

// Do sends req. 5xx and 429 responses count against the breaker but are still
// returned to the caller with a nil error so it can map the status itself.
// The caller closes the body.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	resp, err := c.breaker.Execute(func() (*http.Response, error) {
		r, err := c.client.Do(req)
		if err != nil {
			return nil, err
		}
		if r.StatusCode >= 500 || r.StatusCode == http.StatusTooManyRequests {
			return r, fmt.Errorf("upstream returned %d", r.StatusCode)
		}
		return r, nil
	})
	if err != nil {
		if resp != nil {
			return resp, nil
		}
		return nil, fmt.Errorf("%s: %w", c.breaker.Name(), redact(err))
	}
	return resp, nil
}

// redact drops the query string from a transport error's URL. Some upstreams
// only accept credentials as query parameters.
func redact(err error) error {
	var ue *url.Error
	if !errors.As(err, &ue) {
		return err
	}
	u, perr := url.Parse(ue.URL)
	if perr != nil {
		return &url.Error{Op: ue.Op, URL: "[unparseable url]", Err: ue.Err}
	}
	if u.RawQuery != "" {
		u.RawQuery = "[redacted]"
	}
	u.User = nil
	return &url.Error{Op: ue.Op, URL: u.String(), Err: ue.Err}
}

func (c *Client) State() string { return c.breaker.State().String() }
