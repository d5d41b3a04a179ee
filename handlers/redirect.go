package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// @Summary Follow a short link
// @Description Redirects to the link's destination, or to the service home when the code is unknown
// @ID redirect
// @Param code path string true "Short code"
// @Success 307 "Redirect"
// @Router /redirect/{code} [get]
// @Tags redirect
func (h *Handler) Redirect(c *gin.Context) {
	target := h.resolver.Resolve(c.Request.Context(), c.Param("code"), h.origin(c))

	c.Header("Cache-Control", "no-store")
	c.Redirect(http.StatusTemporaryRedirect, target)
}
