package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"qrlink/models"
)

// CreateLinkRequest is the body of POST /links.
type CreateLinkRequest struct {
	DestinationURL string `json:"destinationUrl"`
}

// @Summary List links
// @Description Returns every link, newest first
// @ID listLinks
// @Produce json
// @Success 200 {array} models.Link
// @Failure 500 {object} ErrorResponse
// @Router /links [get]
// @Tags links
func (h *Handler) ListLinks(c *gin.Context) {
	links, err := h.links.List(c.Request.Context())
	if err != nil {
		h.fail(c, err, "Failed to fetch links")
		return
	}

	c.JSON(http.StatusOK, links)
}

// @Summary Create a link
// @Description Normalizes the destination URL and creates a short link with default QR options
// @ID createLink
// @Accept json
// @Produce json
// @Param body body CreateLinkRequest true "Destination URL"
// @Success 201 {object} models.Link
// @Failure 400 {object} ErrorResponse
// @Failure 429 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /links [post]
// @Tags links
func (h *Handler) CreateLink(c *gin.Context) {
	var request CreateLinkRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Destination URL is required"})
		return
	}
	if request.DestinationURL == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Destination URL is required"})
		return
	}

	link, err := h.links.Create(c.Request.Context(), request.DestinationURL, h.origin(c))
	if err != nil {
		h.fail(c, err, "Failed to create link")
		return
	}

	c.JSON(http.StatusCreated, link)
}

// @Summary Get a link
// @Description Returns one link including its scan count
// @ID getLink
// @Produce json
// @Param id path string true "Link id"
// @Success 200 {object} models.Link
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /links/{id} [get]
// @Tags links
func (h *Handler) GetLink(c *gin.Context) {
	link, err := h.links.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err, "Failed to fetch link")
		return
	}

	c.JSON(http.StatusOK, link)
}

// @Summary Update a link
// @Description Replaces the destination and/or merges QR options field by field
// @ID updateLink
// @Accept json
// @Produce json
// @Param id path string true "Link id"
// @Param body body models.LinkPatch true "Fields to change"
// @Success 200 {object} models.Link
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /links/{id} [put]
// @Tags links
func (h *Handler) UpdateLink(c *gin.Context) {
	var patch models.LinkPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request body"})
		return
	}

	link, err := h.links.Update(c.Request.Context(), c.Param("id"), patch)
	if err != nil {
		h.fail(c, err, "Failed to update link")
		return
	}

	c.JSON(http.StatusOK, link)
}

// @Summary Delete a link
// @Description Deletes the link and removes it from the index
// @ID deleteLink
// @Produce json
// @Param id path string true "Link id"
// @Success 200 {object} MessageResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /links/{id} [delete]
// @Tags links
func (h *Handler) DeleteLink(c *gin.Context) {
	if err := h.links.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.fail(c, err, "Failed to delete link")
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "Link deleted successfully"})
}
