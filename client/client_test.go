package client_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qrlink/client"
	"qrlink/handlers"
	"qrlink/models"
	"qrlink/registry"
	"qrlink/resolver"
	"qrlink/store"
)

type recorder struct {
	mu    sync.Mutex
	notes []client.Notification
}

func (r *recorder) notify(n client.Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notes = append(r.notes, n)
}

func (r *recorder) all() []client.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]client.Notification(nil), r.notes...)
}

func (r *recorder) ofType(typ client.NotificationType) []client.Notification {
	var out []client.Notification
	for _, n := range r.all() {
		if n.Type == typ {
			out = append(out, n)
		}
	}
	return out
}

// step advances one second per call so creation order is visible in createdAt.
type step struct {
	mu sync.Mutex
	ms int64
}

func (s *step) Now() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ms += 1000
	return time.UnixMilli(s.ms)
}

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	links := registry.New(store.NewMemory(), registry.WithLogger(log), registry.WithClock(&step{ms: 1700000000000}))
	res := resolver.New(links, log, resolver.Config{})
	t.Cleanup(res.Close)

	r := gin.New()
	handlers.New(links, res, "", log).Register(r)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func TestOpen_FetchesInitialList(t *testing.T) {
	srv := newServer(t)
	ctx := context.Background()

	c := client.New(srv.URL, nil)
	assert.True(t, c.IsLoading())
	assert.Empty(t, c.Links())

	first := c.Create(ctx, "example.com/one")
	require.NotNil(t, first)
	second := c.Create(ctx, "example.com/two")
	require.NotNil(t, second)

	opened := client.Open(ctx, srv.URL, nil)
	assert.False(t, opened.IsLoading())
	assert.NoError(t, opened.Err())

	links := opened.Links()
	require.Len(t, links, 2)
	assert.Equal(t, second.ID, links[0].ID)
	assert.Equal(t, first.ID, links[1].ID)
}

func TestCreate_ReturnsLink(t *testing.T) {
	srv := newServer(t)
	c := client.New(srv.URL, nil)

	link := c.Create(context.Background(), "example.com")

	require.NotNil(t, link)
	assert.Equal(t, "https://example.com", link.DestinationURL)
	assert.Equal(t, srv.URL+"/redirect/"+link.ID, link.ShortURL)
}

func TestCreate_FailureNotifiesServerMessage(t *testing.T) {
	srv := newServer(t)
	rec := &recorder{}
	c := client.New(srv.URL, rec.notify)

	link := c.Create(context.Background(), "")

	assert.Nil(t, link)
	require.Len(t, rec.all(), 1)
	assert.Equal(t, client.Notification{Message: "Destination URL is required", Type: client.Error}, rec.all()[0])
	assert.EqualError(t, c.Err(), "Destination URL is required")
}

func TestUpdate(t *testing.T) {
	srv := newServer(t)
	rec := &recorder{}
	c := client.New(srv.URL, rec.notify)
	ctx := context.Background()

	link := c.Create(ctx, "example.com")
	require.NotNil(t, link)

	dest := "example.org"
	level := "M"
	updated := c.Update(ctx, link.ID, models.LinkPatch{
		DestinationURL: &dest,
		QROptions:      &models.QROptionsPatch{Level: &level},
	})
	require.NotNil(t, updated)
	assert.Equal(t, "https://example.org", updated.DestinationURL)
	assert.Equal(t, "M", updated.QROptions.Level)
	assert.Equal(t, "#000000", updated.QROptions.FgColor)

	assert.Equal(t, []client.Notification{
		{Message: "QR Code created successfully!", Type: client.Success},
		{Message: "Link updated successfully!", Type: client.Success},
	}, rec.all())

	assert.Nil(t, c.Update(ctx, "missing1", models.LinkPatch{DestinationURL: &dest}))
	errs := rec.ofType(client.Error)
	require.Len(t, errs, 1)
	assert.Equal(t, "Link not found", errs[0].Message)
}

func TestDelete(t *testing.T) {
	srv := newServer(t)
	rec := &recorder{}
	c := client.New(srv.URL, rec.notify)
	ctx := context.Background()

	link := c.Create(ctx, "example.com")
	require.NotNil(t, link)

	assert.True(t, c.Delete(ctx, link.ID))
	assert.Contains(t, rec.ofType(client.Success), client.Notification{Message: "Link deleted successfully!", Type: client.Success})

	assert.False(t, c.Delete(ctx, link.ID))
	errs := rec.ofType(client.Error)
	require.Len(t, errs, 1)
	assert.Equal(t, "Link not found", errs[0].Message)

	c.Refresh(ctx)
	assert.Empty(t, c.Links())
}

func TestRefresh_UnreachableServer(t *testing.T) {
	srv := newServer(t)
	url := srv.URL
	srv.Close()

	rec := &recorder{}
	c := client.Open(context.Background(), url, rec.notify)

	assert.False(t, c.IsLoading())
	assert.Error(t, c.Err())
	assert.Empty(t, c.Links())
	require.Len(t, rec.all(), 1)
	assert.Contains(t, rec.all()[0].Message, "Failed to fetch links")
}

func TestRefresh_FallbackMessageWithoutErrorBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	rec := &recorder{}
	c := client.Open(context.Background(), srv.URL, rec.notify)

	assert.EqualError(t, c.Err(), "Failed to fetch links")
	require.Len(t, rec.all(), 1)
}

func TestRefresh_SortsNewestFirst(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `[{"id":"old","createdAt":1},{"id":"new","createdAt":3},{"id":"mid","createdAt":2}]`)
	}))
	defer srv.Close()

	c := client.Open(context.Background(), srv.URL, nil, client.WithHTTPClient(srv.Client()))

	links := c.Links()
	require.Len(t, links, 3)
	assert.Equal(t, []string{"new", "mid", "old"}, []string{links[0].ID, links[1].ID, links[2].ID})
}
