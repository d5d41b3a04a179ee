// Package registry owns link records and the link_ids index that enumerates them.
//
// Records live under link:{id}; the index is a JSON array of ids, newest first.
// The two keys are written one after the other without a transaction, so the
// index is a best-effort secondary structure: concurrent creates or deletes can
// leave it missing an id or holding a stale one. Readers tolerate ids whose
// record is gone, and every record stays reachable by id regardless of the index.
package registry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"

	"qrlink/models"
	"qrlink/store"
)

const (
	indexKey     = "link_ids"
	recordPrefix = "link:"

	// RedirectPath is the route prefix short URLs point at.
	RedirectPath = "/redirect/"

	idLength = 8
)

// Clock provides the current time. Tests substitute a fixed clock.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// IDGenerator returns a fresh link id.
type IDGenerator func() (string, error)

func nanoID() (string, error) {
	return gonanoid.New(idLength)
}

// Option configures a Registry.
type Option func(*Registry)

// WithClock overrides the time source.
func WithClock(c Clock) Option {
	return func(r *Registry) { r.clock = c }
}

// WithIDGenerator overrides id generation.
func WithIDGenerator(g IDGenerator) Option {
	return func(r *Registry) { r.newID = g }
}

// WithLogger sets the logger used for tolerated data problems.
func WithLogger(l *slog.Logger) Option {
	return func(r *Registry) { r.logger = l }
}

// Registry implements create, read, update and delete over a key-value store.
type Registry struct {
	store  store.Store
	clock  Clock
	newID  IDGenerator
	logger *slog.Logger
}

// New creates a Registry backed by s.
func New(s store.Store, opts ...Option) *Registry {
	r := &Registry{
		store:  s,
		clock:  realClock{},
		newID:  nanoID,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func recordKey(id string) string {
	return recordPrefix + id
}

// List returns every indexed link, newest first. Index entries without a record are skipped.
func (r *Registry) List(ctx context.Context) ([]models.Link, error) {
	ids, err := r.readIndex(ctx)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []models.Link{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = recordKey(id)
	}

	values, err := r.store.MGet(ctx, keys...)
	if err != nil {
		return nil, fmt.Errorf("fetching links: %w", err)
	}

	links := make([]models.Link, 0, len(values))
	for i, v := range values {
		if v == nil {
			continue
		}
		link, err := decodeLink(v)
		if err != nil {
			r.logger.WarnContext(ctx, "skipping undecodable link record", "id", ids[i], "error", err)
			continue
		}
		links = append(links, *link)
	}
	return links, nil
}

// Get returns the link stored under id.
func (r *Registry) Get(ctx context.Context, id string) (*models.Link, error) {
	data, err := r.store.Get(ctx, recordKey(id))
	if errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", models.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("loading link: %w", err)
	}

	link, err := decodeLink(data)
	if err != nil {
		return nil, store.Wrap("decode", recordKey(id), err)
	}
	return link, nil
}

// Create registers a new link. origin is the scheme and host the short URL is built on.
func (r *Registry) Create(ctx context.Context, destinationURL, origin string) (*models.Link, error) {
	dest, err := ValidateDestination(destinationURL)
	if err != nil {
		return nil, err
	}

	id, err := r.newID()
	if err != nil {
		return nil, fmt.Errorf("generating id: %w", err)
	}

	now := r.clock.Now().UnixMilli()
	opts := models.DefaultQROptions
	link := &models.Link{
		ID:             id,
		DestinationURL: dest,
		ShortURL:       origin + RedirectPath + id,
		CreatedAt:      now,
		UpdatedAt:      now,
		ScanCount:      0,
		QROptions:      &opts,
	}

	if err := r.save(ctx, link); err != nil {
		return nil, err
	}

	ids, err := r.readIndex(ctx)
	if err != nil {
		return nil, err
	}
	if err := r.writeIndex(ctx, append([]string{id}, ids...)); err != nil {
		return nil, err
	}

	return link, nil
}

// Update applies patch to the link stored under id.
func (r *Registry) Update(ctx context.Context, id string, patch models.LinkPatch) (*models.Link, error) {
	if patch.Empty() {
		return nil, models.Validationf("destinationUrl or qrOptions is required")
	}

	var dest string
	if patch.DestinationURL != nil {
		var err error
		if dest, err = ValidateDestination(*patch.DestinationURL); err != nil {
			return nil, err
		}
	}
	if patch.QROptions != nil {
		if err := patch.QROptions.Validate(); err != nil {
			return nil, err
		}
	}

	var updated *models.Link
	err := r.modify(ctx, id, func(link *models.Link) {
		if patch.DestinationURL != nil {
			link.DestinationURL = dest
		}
		if patch.QROptions != nil {
			merged := patch.QROptions.Apply(link.Options())
			link.QROptions = &merged
		}
		link.UpdatedAt = r.clock.Now().UnixMilli()
		updated = link
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete removes the record and then drops id from the index.
func (r *Registry) Delete(ctx context.Context, id string) error {
	existed, err := r.store.Delete(ctx, recordKey(id))
	if err != nil {
		return fmt.Errorf("deleting link: %w", err)
	}
	if !existed {
		return fmt.Errorf("%w: %s", models.ErrNotFound, id)
	}

	ids, err := r.readIndex(ctx)
	if err != nil {
		return err
	}

	kept := ids[:0]
	for _, v := range ids {
		if v != id {
			kept = append(kept, v)
		}
	}
	if len(kept) == len(ids) {
		return nil
	}
	return r.writeIndex(ctx, kept)
}

// IncrementScanCount bumps the scan counter of an existing link. It never
// recreates a record that was deleted in the meantime, and it cannot undo an
// edit that lands while it runs.
func (r *Registry) IncrementScanCount(ctx context.Context, id string) error {
	return r.modify(ctx, id, func(link *models.Link) {
		link.ScanCount++
	})
}

// modify applies change to the stored record as a single atomic store update.
func (r *Registry) modify(ctx context.Context, id string, change func(*models.Link)) error {
	err := r.store.Update(ctx, recordKey(id), func(current []byte) ([]byte, error) {
		link, err := decodeLink(current)
		if err != nil {
			return nil, store.Wrap("decode", recordKey(id), err)
		}
		change(link)
		return json.Marshal(link)
	})
	if errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("%w: %s", models.ErrNotFound, id)
	}
	if err != nil {
		return fmt.Errorf("saving link: %w", err)
	}
	return nil
}

func (r *Registry) save(ctx context.Context, link *models.Link) error {
	data, err := json.Marshal(link)
	if err != nil {
		return fmt.Errorf("encoding link: %w", err)
	}
	if err := r.store.Set(ctx, recordKey(link.ID), data); err != nil {
		return fmt.Errorf("saving link: %w", err)
	}
	return nil
}

func (r *Registry) readIndex(ctx context.Context) ([]string, error) {
	data, err := r.store.Get(ctx, indexKey)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading index: %w", err)
	}

	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		return nil, store.Wrap("decode", indexKey, err)
	}
	return ids, nil
}

func (r *Registry) writeIndex(ctx context.Context, ids []string) error {
	if ids == nil {
		ids = []string{}
	}
	data, err := json.Marshal(ids)
	if err != nil {
		return fmt.Errorf("encoding index: %w", err)
	}
	if err := r.store.Set(ctx, indexKey, data); err != nil {
		return fmt.Errorf("writing index: %w", err)
	}
	return nil
}

func decodeLink(data []byte) (*models.Link, error) {
	var link models.Link
	if err := json.Unmarshal(data, &link); err != nil {
		return nil, err
	}
	if link.QROptions == nil {
		opts := models.DefaultQROptions
		link.QROptions = &opts
	}
	return &link, nil
}
