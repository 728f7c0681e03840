package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// TokenSource supplies the current bearer token; an empty string means
// unauthenticated.
type TokenSource interface {
	Token() string
}

// Client is the REST client for the ordering backend. Mutations share one
// bounded timeout: a timed-out request is treated as failed, never as
// pending-unknown.
type Client struct {
	baseURL       string
	httpc         *http.Client
	tokens        TokenSource
	onAuthExpired func()
}

func New(baseURL string, timeout time.Duration, tokens TokenSource) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: baseURL,
		httpc:   &http.Client{Timeout: timeout},
		tokens:  tokens,
	}
}

// OnAuthExpired registers the hook fired when a request outside the
// login/signup flow gets a 401. The hook must not block.
func (c *Client) OnAuthExpired(fn func()) {
	c.onAuthExpired = fn
}

type errorBody struct {
	Message string `json:"message"`
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	return c.call(ctx, method, path, query, body, out, false)
}

// doAuth is for the login/signup flow: a 401 here is a credential failure,
// not an expired session, and must not tear the session down.
func (c *Client) doAuth(ctx context.Context, method, path string, body, out any) error {
	return c.call(ctx, method, path, nil, body, out, true)
}

func (c *Client) call(ctx context.Context, method, path string, query url.Values, body, out any, authFlow bool) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if tok := c.tokens.Token(); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return &TransientError{Op: method + " " + path, Err: err}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		if out == nil {
			return nil
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
		return nil
	case resp.StatusCode == http.StatusUnauthorized && !authFlow:
		if c.onAuthExpired != nil {
			c.onAuthExpired()
		}
		return ErrAuthExpired
	default:
		var eb errorBody
		_ = json.NewDecoder(resp.Body).Decode(&eb)
		if eb.Message == "" {
			eb.Message = http.StatusText(resp.StatusCode)
		}
		return &APIError{Status: resp.StatusCode, Message: eb.Message}
	}
}

func pageQuery(limit, offset int) url.Values {
	q := url.Values{}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	if offset > 0 {
		q.Set("offset", strconv.Itoa(offset))
	}
	return q
}

// ErrAuthExpired is returned for a 401 outside the auth flow; the session
// hook has already been fired by the time callers see it.
var ErrAuthExpired = errors.New("authentication expired")

// APIError is a non-2xx response with the server's reason preserved.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api: %d: %s", e.Status, e.Message)
}

// TransientError covers timeouts and connection drops; the request outcome
// is unknown to the transport but is treated as failed.
type TransientError struct {
	Op  string
	Err error
}

func (e *TransientError) Error() string { return fmt.Sprintf("transient: %s: %v", e.Op, e.Err) }
func (e *TransientError) Unwrap() error { return e.Err }
