package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/adventureapp/adventure-api/internal/api/metrics"
	"github.com/adventureapp/adventure-api/internal/core/ports"
)

const (
	defaultThumbWidth   = 256
	defaultThumbHeight  = 256
	defaultThumbQuality = 85
)

// ImageHandler handles HTTP requests for cover images and thumbnails.
type ImageHandler struct {
	service ports.ImageService
}

func NewImageHandler(service ports.ImageService) *ImageHandler {
	return &ImageHandler{service: service}
}

type updateCoverRequest struct {
	ForceRegenerate bool   `json:"force_regenerate"`
	CustomPrompt    string `json:"custom_prompt"`
}

// GetCover handles GET /v1/adventures/:id/cover.
//
// @Summary      Get a presigned URL for the cover image
// @Tags         images
// @Produce      json
// @Security     BearerAuth
// @Param        id  path      string  true  "Adventure id"
// @Success      200  {object}  coverImageResponse
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /v1/adventures/{id}/cover [get]
func (h *ImageHandler) GetCover(c echo.Context) error {
	principal, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	url, err := h.service.CoverURL(c.Request().Context(), c.Param("id"), principal)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, coverImageResponse{
		AdventureID:   c.Param("id"),
		CoverImageURL: url,
	})
}

// UpdateCover handles PUT /v1/adventures/:id/cover.
//
// @Summary      Attach or regenerate the cover image
// @Tags         images
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string              true   "Adventure id"
// @Param        body  body      updateCoverRequest  false  "Regeneration options"
// @Success      200   {object}  coverImageResponse
// @Failure      400   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Failure      502   {object}  map[string]string
// @Router       /v1/adventures/{id}/cover [put]
func (h *ImageHandler) UpdateCover(c echo.Context) error {
	principal, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	var req updateCoverRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	url, err := h.service.UpdateCover(c.Request().Context(), ports.UpdateCoverInput{
		AdventureID:     c.Param("id"),
		Principal:       principal,
		ForceRegenerate: req.ForceRegenerate,
		CustomPrompt:    req.CustomPrompt,
	})
	if err != nil {
		countGeneratorError(err)
		return err
	}

	return c.JSON(http.StatusOK, coverImageResponse{
		AdventureID:   c.Param("id"),
		CoverImageURL: url,
	})
}

// Thumbnail handles GET /v1/adventures/:id/cover/thumbnail.
//
// @Summary      Render the cover image as a thumbnail
// @Tags         images
// @Produce      jpeg
// @Security     BearerAuth
// @Param        id         path   string  true   "Adventure id"
// @Param        width      query  int     false  "Target width (1-2000, default 256)"
// @Param        height     query  int     false  "Target height (1-2000, default 256)"
// @Param        anchor     query  string  false  "Crop anchor (center, top, bottom, left, right, top-left, top-right, bottom-left, bottom-right)"
// @Param        quality    query  int     false  "JPEG quality (1-100, default 85)"
// @Param        use_cache  query  bool    false  "Serve from cache when available (default true)"
// @Success      200  {file}    binary
// @Failure      400  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /v1/adventures/{id}/cover/thumbnail [get]
func (h *ImageHandler) Thumbnail(c echo.Context) error {
	principal, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	in := ports.ThumbnailInput{
		AdventureID: c.Param("id"),
		Principal:   principal,
		Width:       queryInt(c, "width", defaultThumbWidth),
		Height:      queryInt(c, "height", defaultThumbHeight),
		Anchor:      ports.CropAnchor(queryString(c, "anchor", string(ports.AnchorCenter))),
		Quality:     queryInt(c, "quality", defaultThumbQuality),
		UseCache:    queryBool(c, "use_cache", true),
	}

	result, err := h.service.Thumbnail(c.Request().Context(), in)
	if err != nil {
		return err
	}

	if result.FromCache {
		metrics.ThumbnailCacheTotal.WithLabelValues("hit").Inc()
	} else {
		metrics.ThumbnailCacheTotal.WithLabelValues("miss").Inc()
	}

	return c.Blob(http.StatusOK, result.ContentType, result.Data)
}

func queryInt(c echo.Context, name string, fallback int) int {
	raw := c.QueryParam(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return -1
	}
	return v
}

func queryString(c echo.Context, name, fallback string) string {
	if raw := c.QueryParam(name); raw != "" {
		return raw
	}
	return fallback
}

func queryBool(c echo.Context, name string, fallback bool) bool {
	raw := c.QueryParam(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return fallback
	}
	return v
}
