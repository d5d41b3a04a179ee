// Package client is a stateful consumer of the links API. It keeps the last
// fetched list together with loading and error state, and reports failures
// through a notification callback instead of returning errors.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"sync"
	"time"

	"qrlink/models"
)

// NotificationType classifies a notification.
type NotificationType string

const (
	Success NotificationType = "success"
	Error   NotificationType = "error"
)

// Notification is what the client reports to its caller.
type Notification struct {
	Message string
	Type    NotificationType
}

// Notifier receives one notification per completed mutation. It may be nil.
type Notifier func(Notification)

// Option configures a Links client.
type Option func(*Links)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(l *Links) { l.http = c }
}

// Links wraps the REST interface with local state.
type Links struct {
	baseURL string
	http    *http.Client
	notify  Notifier

	mu        sync.RWMutex
	links     []models.Link
	isLoading bool
	err       error
}

// New returns a client that has not fetched anything yet. baseURL is the
// prefix the /links routes are mounted under.
func New(baseURL string, notify Notifier, opts ...Option) *Links {
	l := &Links{
		baseURL:   strings.TrimRight(baseURL, "/"),
		http:      &http.Client{Timeout: 10 * time.Second},
		notify:    notify,
		links:     []models.Link{},
		isLoading: true,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Open creates a client and performs the initial fetch.
func Open(ctx context.Context, baseURL string, notify Notifier, opts ...Option) *Links {
	l := New(baseURL, notify, opts...)
	l.Refresh(ctx)
	return l
}

// Links returns a copy of the cached list.
func (l *Links) Links() []models.Link {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]models.Link, len(l.links))
	copy(out, l.links)
	return out
}

func (l *Links) IsLoading() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.isLoading
}

// Err returns the most recent failure, if any.
func (l *Links) Err() error {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.err
}

// Refresh re-fetches the list and sorts it newest first.
func (l *Links) Refresh(ctx context.Context) {
	l.mu.Lock()
	l.isLoading = true
	l.mu.Unlock()

	var links []models.Link
	err := l.do(ctx, http.MethodGet, "/links", nil, &links, "Failed to fetch links")

	l.mu.Lock()
	l.isLoading = false
	if err == nil {
		sort.SliceStable(links, func(i, j int) bool {
			return links[i].CreatedAt > links[j].CreatedAt
		})
		if links == nil {
			links = []models.Link{}
		}
		l.links = links
	}
	l.mu.Unlock()

	if err != nil {
		l.failed(err)
	}
}

// Create registers a destination and returns the new link, or nil on failure.
func (l *Links) Create(ctx context.Context, destinationURL string) *models.Link {
	body := map[string]string{"destinationUrl": destinationURL}

	var link models.Link
	if err := l.do(ctx, http.MethodPost, "/links", body, &link, "Failed to create link"); err != nil {
		l.failed(err)
		return nil
	}
	l.succeeded("QR Code created successfully!")
	return &link
}

// Update applies patch to the link and returns the result, or nil on failure.
func (l *Links) Update(ctx context.Context, id string, patch models.LinkPatch) *models.Link {
	var link models.Link
	path := "/links/" + url.PathEscape(id)
	if err := l.do(ctx, http.MethodPut, path, patch, &link, "Failed to update link"); err != nil {
		l.failed(err)
		return nil
	}
	l.succeeded("Link updated successfully!")
	return &link
}

// Delete removes the link and reports whether it succeeded.
func (l *Links) Delete(ctx context.Context, id string) bool {
	path := "/links/" + url.PathEscape(id)
	if err := l.do(ctx, http.MethodDelete, path, nil, nil, "Failed to delete link"); err != nil {
		l.failed(err)
		return false
	}
	l.succeeded("Link deleted successfully!")
	return true
}

func (l *Links) succeeded(msg string) {
	if l.notify != nil {
		l.notify(Notification{Message: msg, Type: Success})
	}
}

func (l *Links) failed(err error) {
	l.mu.Lock()
	l.err = err
	l.mu.Unlock()

	if l.notify != nil {
		l.notify(Notification{Message: err.Error(), Type: Error})
	}
}

// do sends one request. Non-2xx responses become errors carrying the server's
// {error} message, or fallback when the body has none.
func (l *Links) do(ctx context.Context, method, path string, in, out any, fallback string) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, l.baseURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := l.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", fallback, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var e struct {
			Error string `json:"error"`
		}
		if json.NewDecoder(resp.Body).Decode(&e) == nil && e.Error != "" {
			return errors.New(e.Error)
		}
		return errors.New(fallback)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s: decoding response: %w", fallback, err)
	}
	return nil
}
