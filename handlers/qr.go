package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"qrlink/qr"
)

// @Summary Render a link's QR code
// @Description Renders the short URL as a PNG using the link's QR options
// @ID linkQR
// @Produce png
// @Param id path string true "Link id"
// @Param size query int false "Edge length in pixels (64-1024)"
// @Success 200 {file} binary
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /links/{id}/qr [get]
// @Tags links
func (h *Handler) LinkQR(c *gin.Context) {
	size := qr.DefaultSize
	if raw := c.Query("size"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "size must be an integer"})
			return
		}
		size = qr.ClampSize(n)
	}

	link, err := h.links.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err, "Failed to fetch link")
		return
	}

	png, err := qr.Render(link.ShortURL, link.Options(), size)
	if errors.Is(err, qr.ErrBadImage) {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid logo image"})
		return
	}
	if err != nil {
		h.fail(c, err, "Failed to render QR code")
		return
	}

	c.Data(http.StatusOK, "image/png", png)
}
