// Package api is the remote store adapter: thin typed wrappers around the
// backend's REST collections that normalize the {data, message} envelope and
// the error taxonomy. It performs no state keeping of its own.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"teamdeck/internal/model"

	"go.uber.org/zap"
)

type Client struct {
	base string
	hc   *http.Client
	log  *zap.Logger
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.hc = hc }
}

func WithLogger(log *zap.Logger) Option {
	return func(c *Client) { c.log = log }
}

func NewClient(base string, opts ...Option) *Client {
	c := &Client{
		base: strings.TrimRight(strings.TrimSpace(base), "/"),
		hc:   &http.Client{Timeout: 15 * time.Second},
		log:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) BaseURL() string { return c.base }

// Resource is one entity collection (users or projects). T is the entity,
// D the client-supplied draft used for create/update.
type Resource[T any, D any] struct {
	c    *Client
	path string
	kind string
}

func Users(c *Client) *Resource[model.User, model.UserDraft] {
	return &Resource[model.User, model.UserDraft]{c: c, path: "/users", kind: "user"}
}

func Projects(c *Client) *Resource[model.Project, model.ProjectDraft] {
	return &Resource[model.Project, model.ProjectDraft]{c: c, path: "/projects", kind: "project"}
}

type envelope[T any] struct {
	Data    T      `json:"data"`
	Message string `json:"message"`
}

// List fetches the full collection in server order.
func (r *Resource[T, D]) List(ctx context.Context) ([]T, error) {
	var env envelope[[]T]
	if err := r.c.do(ctx, http.MethodGet, r.path, nil, &env, r.kind, 0); err != nil {
		return nil, err
	}
	if env.Data == nil {
		env.Data = []T{}
	}
	return env.Data, nil
}

// Create posts a draft; the server assigns the id. Returns the stored entity
// and the server's message.
func (r *Resource[T, D]) Create(ctx context.Context, draft D) (T, string, error) {
	var env envelope[T]
	if err := r.c.do(ctx, http.MethodPost, r.path, draft, &env, r.kind, 0); err != nil {
		var zero T
		return zero, "", err
	}
	return env.Data, env.Message, nil
}

// Update replaces the entity's draft fields. Fails with NotFoundError when the
// id has vanished server-side.
func (r *Resource[T, D]) Update(ctx context.Context, id int, draft D) (T, string, error) {
	var env envelope[T]
	path := fmt.Sprintf("%s/%d", r.path, id)
	if err := r.c.do(ctx, http.MethodPut, path, draft, &env, r.kind, id); err != nil {
		var zero T
		return zero, "", err
	}
	return env.Data, env.Message, nil
}

// Remove deletes by id. Deleting an already-deleted id surfaces NotFoundError;
// callers treat that as non-fatal.
func (r *Resource[T, D]) Remove(ctx context.Context, id int) (string, error) {
	var env envelope[json.RawMessage]
	path := fmt.Sprintf("%s/%d", r.path, id)
	if err := r.c.do(ctx, http.MethodDelete, path, nil, &env, r.kind, id); err != nil {
		return "", err
	}
	return env.Message, nil
}

func (c *Client) do(ctx context.Context, method, path string, body any, out any, kind string, id int) error {
	op := method + " " + path

	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s: encode body: %w", op, err)
		}
		rd = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, rd)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		c.log.Warn("request failed", zap.String("op", op), zap.Error(err))
		return &NetworkError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &NetworkError{Op: op, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.mapFailure(op, method, kind, id, resp.StatusCode, raw)
	}

	if out != nil && len(bytes.TrimSpace(raw)) > 0 {
		// A success status with garbage in the body is a transport problem,
		// not a server-reported failure.
		if err := json.Unmarshal(raw, out); err != nil {
			return &NetworkError{Op: op, Err: fmt.Errorf("decode body: %w", err)}
		}
	}
	return nil
}

func (c *Client) mapFailure(op, method, kind string, id, status int, raw []byte) error {
	var body struct {
		Message string `json:"message"`
	}
	_ = json.Unmarshal(raw, &body)
	msg := strings.TrimSpace(body.Message)

	c.log.Debug("request rejected",
		zap.String("op", op),
		zap.Int("status", status),
		zap.String("message", msg))

	mutatesDraft := method == http.MethodPost || method == http.MethodPut

	switch {
	case status == http.StatusNotFound && id != 0:
		return &NotFoundError{Kind: kind, ID: id}
	case mutatesDraft && status >= 400 && status < 500:
		// A 4xx on a draft submission is the server rejecting the input.
		if msg == "" {
			msg = http.StatusText(status)
		}
		return &ValidationError{Message: msg}
	default:
		return &ServerError{Status: status, Message: msg}
	}
}
