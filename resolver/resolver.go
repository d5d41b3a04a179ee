// Package resolver turns short codes into redirect targets and records scans
// in the background.
package resolver

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"qrlink/models"
)

// Links is the part of the registry the resolver needs.
type Links interface {
	Get(ctx context.Context, id string) (*models.Link, error)
	IncrementScanCount(ctx context.Context, id string) error
}

// Config tunes the background scan recorder.
type Config struct {
	QueueSize int
	Timeout   time.Duration
}

// Resolver looks up links and records scans on a detached worker. Enqueueing
// never blocks; when the queue is full the scan is dropped and logged.
type Resolver struct {
	links   Links
	logger  *slog.Logger
	timeout time.Duration

	mu     sync.RWMutex
	closed bool
	queue  chan string
	wg     sync.WaitGroup
}

// New starts the scan worker. Call Close to drain it.
func New(links Links, logger *slog.Logger, cfg Config) *Resolver {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 1024
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}

	r := &Resolver{
		links:   links,
		logger:  logger,
		timeout: cfg.Timeout,
		queue:   make(chan string, cfg.QueueSize),
	}

	r.wg.Add(1)
	go r.scanWorker()

	return r
}

// Resolve returns where a visitor of code should be sent. It always yields a
// target: the link's destination when one exists, home otherwise.
func (r *Resolver) Resolve(ctx context.Context, code, home string) string {
	if code == "" {
		return home
	}

	link, err := r.links.Get(ctx, code)
	switch {
	case errors.Is(err, models.ErrNotFound):
		r.logger.InfoContext(ctx, "redirect for unknown code", "code", code)
		return home
	case err != nil:
		r.logger.ErrorContext(ctx, "redirect lookup failed", "code", code, "error", err)
		return home
	case link.DestinationURL == "":
		r.logger.WarnContext(ctx, "link has no destination", "code", code)
		return home
	}

	r.recordScan(ctx, code)
	return link.DestinationURL
}

func (r *Resolver) recordScan(ctx context.Context, code string) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.closed {
		r.logger.WarnContext(ctx, "scan dropped, resolver closed", "code", code)
		return
	}

	select {
	case r.queue <- code:
	default:
		r.logger.WarnContext(ctx, "scan dropped, queue full", "code", code)
	}
}

func (r *Resolver) scanWorker() {
	defer r.wg.Done()

	for code := range r.queue {
		ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
		err := r.links.IncrementScanCount(ctx, code)
		cancel()

		if err != nil {
			r.logger.Error("scan count increment failed", "code", code, "error", err)
		}
	}
}

// Close stops accepting scans and waits for queued ones to finish.
func (r *Resolver) Close() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	close(r.queue)
	r.mu.Unlock()

	r.wg.Wait()
}
