package main

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qrlink/config"
	"qrlink/handlers"
	"qrlink/models"
	"qrlink/pkg/limiter"
	"qrlink/registry"
	"qrlink/resolver"
	"qrlink/store"
)

type testServer struct {
	router   http.Handler
	resolver *resolver.Resolver
	store    *store.Memory
}

func newTestServer(t *testing.T, rl *limiter.RateLimiter) *testServer {
	t.Helper()

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := config.GetDefaultConfig()

	st := store.NewMemory()
	links := registry.New(st, registry.WithLogger(log))
	res := resolver.New(links, log, resolver.Config{})
	t.Cleanup(res.Close)

	h := handlers.New(links, res, "", log)
	return &testServer{
		router:   setupRouter(cfg, h, st, rl, log),
		resolver: res,
		store:    st,
	}
}

func (s *testServer) do(t *testing.T, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) create(t *testing.T, destination string) models.Link {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/links", `{"destinationUrl":"`+destination+`"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var link models.Link
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &link))
	return link
}

func TestCreateNormalizesDestination(t *testing.T) {
	s := newTestServer(t, nil)

	link := s.create(t, "example.com")

	assert.Equal(t, "https://example.com", link.DestinationURL)
	assert.Len(t, link.ID, 8)
	assert.Equal(t, "http://example.com/redirect/"+link.ID, link.ShortURL)
	assert.Equal(t, int64(0), link.ScanCount)
	assert.Equal(t, link.CreatedAt, link.UpdatedAt)
	require.NotNil(t, link.QROptions)
	assert.Equal(t, models.DefaultQROptions, *link.QROptions)
}

func TestUpdateWithEmptyBodyIsRejected(t *testing.T) {
	s := newTestServer(t, nil)
	link := s.create(t, "https://example.com")

	rec := s.do(t, http.MethodPut, "/links/"+link.ID, `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodPut, "/links/abc123", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUnknownCodeRedirectsHome(t *testing.T) {
	s := newTestServer(t, nil)
	link := s.create(t, "https://example.com")

	rec := s.do(t, http.MethodGet, "/redirect/doesnotexist", "")
	assert.Equal(t, http.StatusTemporaryRedirect, rec.Code)
	assert.Equal(t, "http://example.com", rec.Header().Get("Location"))

	s.resolver.Close()
	rec = s.do(t, http.MethodGet, "/links/"+link.ID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var got models.Link
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, int64(0), got.ScanCount)
}

func TestRedirectCountsScans(t *testing.T) {
	s := newTestServer(t, nil)
	link := s.create(t, "example.com/landing")

	for i := 0; i < 3; i++ {
		rec := s.do(t, http.MethodGet, "/redirect/"+link.ID, "")
		assert.Equal(t, http.StatusTemporaryRedirect, rec.Code)
		assert.Equal(t, "https://example.com/landing", rec.Header().Get("Location"))
	}

	// Close drains the pending increments.
	s.resolver.Close()

	rec := s.do(t, http.MethodGet, "/links/"+link.ID, "")
	var got models.Link
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, int64(3), got.ScanCount)
}

func TestEditDestinationKeepsShortURL(t *testing.T) {
	s := newTestServer(t, nil)
	link := s.create(t, "example.com")

	rec := s.do(t, http.MethodPut, "/links/"+link.ID, `{"destinationUrl":"example.org/new","qrOptions":{"fgColor":"#112233"}}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var updated models.Link
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	assert.Equal(t, link.ShortURL, updated.ShortURL)
	assert.Equal(t, "https://example.org/new", updated.DestinationURL)
	assert.Equal(t, "#112233", updated.QROptions.FgColor)
	assert.Equal(t, "#ffffff", updated.QROptions.BgColor)

	rec = s.do(t, http.MethodGet, "/redirect/"+link.ID, "")
	assert.Equal(t, "https://example.org/new", rec.Header().Get("Location"))
}

func TestDeleteRemovesFromListAndRedirect(t *testing.T) {
	s := newTestServer(t, nil)
	first := s.create(t, "example.com/one")
	second := s.create(t, "example.com/two")

	rec := s.do(t, http.MethodDelete, "/links/"+first.ID, "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodGet, "/links", "")
	var links []models.Link
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &links))
	require.Len(t, links, 1)
	assert.Equal(t, second.ID, links[0].ID)

	rec = s.do(t, http.MethodGet, "/redirect/"+first.ID, "")
	assert.Equal(t, "http://example.com", rec.Header().Get("Location"))

	rec = s.do(t, http.MethodDelete, "/links/"+first.ID, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateIsRateLimited(t *testing.T) {
	rl := limiter.PerMinute(60, 2)
	defer rl.Stop()
	s := newTestServer(t, rl)

	s.create(t, "example.com/a")
	s.create(t, "example.com/b")

	rec := s.do(t, http.MethodPost, "/links", `{"destinationUrl":"example.com/c"}`)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))

	// Reads are not limited.
	rec = s.do(t, http.MethodGet, "/links", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, nil)

	rec := s.do(t, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestRequestIDIsEchoed(t *testing.T) {
	s := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/links", nil)
	req.Header.Set("X-Request-ID", "req-42")
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	assert.Equal(t, "req-42", rec.Header().Get("X-Request-ID"))
}

func TestCORSPreflight(t *testing.T) {
	s := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodOptions, "/links/abc", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPut)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestOpenStoreDefaultsToMemory(t *testing.T) {
	cfg := config.GetDefaultConfig()

	st, closeStore, err := openStore(t.Context(), cfg)
	require.NoError(t, err)
	defer closeStore()

	_, ok := st.(*store.Memory)
	assert.True(t, ok)
}
