// Package handlers exposes the link registry and redirect resolver over HTTP.
package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"qrlink/models"
)

// LinkRegistry is the storage-facing side of the API.
type LinkRegistry interface {
	List(ctx context.Context) ([]models.Link, error)
	Get(ctx context.Context, id string) (*models.Link, error)
	Create(ctx context.Context, destinationURL, origin string) (*models.Link, error)
	Update(ctx context.Context, id string, patch models.LinkPatch) (*models.Link, error)
	Delete(ctx context.Context, id string) error
}

// Resolver maps a short code to a redirect target.
type Resolver interface {
	Resolve(ctx context.Context, code, home string) string
}

// Handler holds dependencies for HTTP handlers.
type Handler struct {
	links          LinkRegistry
	resolver       Resolver
	baseURL        string
	logger         *slog.Logger
	trustForwarded bool
}

// Option configures a Handler.
type Option func(*Handler)

// WithForwardedHeaders makes origin honor X-Forwarded-Proto and X-Forwarded-Host.
// Enable it only behind a proxy that overwrites those headers.
func WithForwardedHeaders(trust bool) Option {
	return func(h *Handler) { h.trustForwarded = trust }
}

// New creates a Handler. When baseURL is empty, short URLs and the home
// redirect are built from each request's own origin.
func New(links LinkRegistry, resolver Resolver, baseURL string, logger *slog.Logger, opts ...Option) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	h := &Handler{
		links:    links,
		resolver: resolver,
		baseURL:  strings.TrimRight(baseURL, "/"),
		logger:   logger,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// ErrorResponse is the body of every failed API call.
type ErrorResponse struct {
	Error string `json:"error"`
}

// MessageResponse is returned by operations without a resource body.
type MessageResponse struct {
	Message string `json:"message"`
}

// origin returns scheme://host for the running service.
func (h *Handler) origin(c *gin.Context) string {
	if h.baseURL != "" {
		return h.baseURL
	}

	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	host := c.Request.Host

	if h.trustForwarded {
		if proto := firstValue(c.GetHeader("X-Forwarded-Proto")); proto == "http" || proto == "https" {
			scheme = proto
		}
		if fwd := firstValue(c.GetHeader("X-Forwarded-Host")); fwd != "" {
			host = fwd
		}
	}
	return scheme + "://" + host
}

func firstValue(header string) string {
	v, _, _ := strings.Cut(header, ",")
	return strings.ToLower(strings.TrimSpace(v))
}

// fail converts a registry error into a status code and {error} body.
func (h *Handler) fail(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, models.ErrInvalidURL):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid URL format"})
	case errors.Is(err, models.ErrValidation):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	case errors.Is(err, models.ErrNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "Link not found"})
	default:
		h.logger.ErrorContext(c.Request.Context(), fallback, "error", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: fallback})
	}
}

// Register mounts every route on r. extra middleware runs only on link creation.
func (h *Handler) Register(r gin.IRouter, createMiddleware ...gin.HandlerFunc) {
	r.GET("/links", h.ListLinks)
	r.POST("/links", append(createMiddleware, h.CreateLink)...)
	r.GET("/links/:id", h.GetLink)
	r.PUT("/links/:id", h.UpdateLink)
	r.DELETE("/links/:id", h.DeleteLink)
	r.GET("/links/:id/qr", h.LinkQR)
	r.GET("/redirect/:code", h.Redirect)
}
