// Package sseclient consumes the queue event stream. It keeps a session
// open against /events, delivering every pushed snapshot, and reconnects
// with exponential backoff when the stream drops. Because the server pushes
// the full queue state on every (re)connect, a reconnect is also a resync;
// there is no sequence tracking to get wrong.
package sseclient

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const (
	defaultBaseDelay = time.Second
	defaultMaxDelay  = 16 * time.Second
)

// Client is one client-side stream session.
type Client struct {
	url        string
	httpClient *http.Client
	baseDelay  time.Duration
	maxDelay   time.Duration
	logger     zerolog.Logger
	events     chan json.RawMessage
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithBackoff overrides the reconnect delays.
func WithBackoff(base, max time.Duration) Option {
	return func(c *Client) {
		c.baseDelay = base
		c.maxDelay = max
	}
}

// WithLogger sets the logger used for reconnect diagnostics. The default
// discards them.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// New creates a client for the given events URL, e.g.
// "http://host:8080/events?room=AB12CD".
func New(url string, opts ...Option) *Client {
	c := &Client{
		url:        url,
		httpClient: http.DefaultClient,
		baseDelay:  defaultBaseDelay,
		maxDelay:   defaultMaxDelay,
		logger:     zerolog.Nop(),
		events:     make(chan json.RawMessage, 8),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Events returns the snapshot delivery channel. Each value is the raw JSON
// payload of one pushed event. The channel is closed when Run returns.
func (c *Client) Events() <-chan json.RawMessage {
	return c.events
}

// Run connects and keeps the session alive until ctx is cancelled,
// reconnecting on any failure. The backoff delay doubles per failed cycle
// up to the cap and resets after every successful open.
func (c *Client) Run(ctx context.Context) error {
	defer close(c.events)

	delay := c.baseDelay
	for {
		opened, err := c.connect(ctx)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if opened {
			delay = c.baseDelay
		}
		if err != nil {
			c.logger.Debug().Err(err).Str("url", c.url).Dur("retry_in", delay).Msg("stream cycle ended, reconnecting")
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}

		delay *= 2
		if delay > c.maxDelay {
			delay = c.maxDelay
		}
	}
}

// connect opens one stream and consumes it until it breaks. The returned
// bool reports whether the stream was successfully opened at all.
func (c *Client) connect(ctx context.Context) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return false, err
	}
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("stream returned status %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/event-stream") {
		return false, fmt.Errorf("unexpected content type %q", ct)
	}

	return true, c.consume(ctx, resp)
}

// consume reads SSE frames until the stream errors or ctx is cancelled.
func (c *Client) consume(ctx context.Context, resp *http.Response) error {
	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var data bytes.Buffer
	for scanner.Scan() {
		line := scanner.Text()

		switch {
		case line == "":
			// Frame boundary: dispatch accumulated data, if any.
			if data.Len() > 0 {
				payload := make(json.RawMessage, data.Len())
				copy(payload, data.Bytes())
				data.Reset()

				select {
				case c.events <- payload:
				case <-ctx.Done():
					return ctx.Err()
				}
			}

		case strings.HasPrefix(line, ":"):
			// Heartbeat comment, no payload.

		case strings.HasPrefix(line, "data:"):
			data.WriteString(strings.TrimPrefix(strings.TrimPrefix(line, "data:"), " "))
		}
	}

	return scanner.Err()
}
