// Package remote implements backend.Backend over the JSON envelope
// protocol served at POST /rpc.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v5"
	"go.uber.org/zap"

	"github.com/vedran77/lax/internal/backend"
	"github.com/vedran77/lax/internal/rpc"
)

const (
	DefaultRetryBase   = 500 * time.Millisecond
	DefaultMaxAttempts = 4
	maxBodySize        = 8 << 20
)

type Client struct {
	url         string
	token       string
	http        *http.Client
	retryBase   time.Duration
	maxAttempts uint
	log         *zap.Logger
}

type Option func(*Client)

func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithRetry sets the first retry delay and the total number of attempts.
// Delays double after every failed attempt.
func WithRetry(base time.Duration, maxAttempts uint) Option {
	return func(c *Client) {
		if base > 0 {
			c.retryBase = base
		}
		if maxAttempts > 0 {
			c.maxAttempts = maxAttempts
		}
	}
}

func WithLogger(log *zap.Logger) Option {
	return func(c *Client) { c.log = log }
}

// New returns a client for the endpoint at url. An empty url is accepted;
// every call then fails with backend.ErrNotConfigured.
func New(url string, opts ...Option) *Client {
	c := &Client{
		url:         url,
		http:        &http.Client{Timeout: 10 * time.Second},
		retryBase:   DefaultRetryBase,
		maxAttempts: DefaultMaxAttempts,
		log:         zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// call posts one envelope and decodes the data of a success response into
// out. Transport failures are retried with capped exponential backoff;
// error envelopes are returned at once.
func (c *Client) call(ctx context.Context, action string, p rpc.Payload, out any) error {
	if c.url == "" {
		return backend.ErrNotConfigured
	}

	req, err := rpc.NewRequest(action, p)
	if err != nil {
		return fmt.Errorf("%s: encode request: %w", action, err)
	}
	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("%s: encode request: %w", action, err)
	}

	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = c.retryBase
	exp.Multiplier = 2
	exp.RandomizationFactor = 0
	exp.MaxInterval = c.retryBase << c.maxAttempts

	data, err := backoff.Retry(ctx, func() (json.RawMessage, error) {
		data, err := c.roundTrip(ctx, action, body)
		if err != nil && ctx.Err() != nil {
			return nil, backoff.Permanent(ctx.Err())
		}
		return data, err
	},
		backoff.WithBackOff(exp),
		backoff.WithMaxTries(c.maxAttempts),
		backoff.WithNotify(func(err error, next time.Duration) {
			c.log.Warn("rpc_retry", zap.String("action", action), zap.Duration("backoff", next), zap.Error(err))
		}),
	)
	if err != nil {
		return err
	}

	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &backend.TransportError{Action: action, Status: http.StatusOK, Malformed: true, Err: err}
	}
	return nil
}

func (c *Client) roundTrip(ctx context.Context, action string, body []byte) (json.RawMessage, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, backoff.Permanent(fmt.Errorf("%s: build request: %w", action, err))
	}
	httpReq.Header.Set("Content-Type", rpc.ContentType)
	if c.token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, &backend.TransportError{Action: action, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, &backend.TransportError{Action: action, Status: resp.StatusCode, Err: err}
	}

	if resp.StatusCode >= http.StatusInternalServerError || resp.StatusCode == http.StatusTooManyRequests {
		return nil, &backend.TransportError{Action: action, Status: resp.StatusCode, Err: errors.New(http.StatusText(resp.StatusCode))}
	}

	var env rpc.Response
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, &backend.TransportError{Action: action, Status: resp.StatusCode, Malformed: true, Err: err}
	}

	switch env.Status {
	case rpc.StatusSuccess:
		return env.Data, nil
	case rpc.StatusError:
		msg := env.Message
		if msg == "" {
			msg = "unknown error"
		}
		return nil, backoff.Permanent(&backend.AppError{Action: action, Message: msg})
	default:
		return nil, &backend.TransportError{
			Action:    action,
			Status:    resp.StatusCode,
			Malformed: true,
			Err:       fmt.Errorf("unexpected envelope status %q", env.Status),
		}
	}
}
