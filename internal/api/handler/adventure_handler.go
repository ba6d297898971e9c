package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/adventureapp/adventure-api/internal/api/metrics"
	"github.com/adventureapp/adventure-api/internal/core/domain"
	"github.com/adventureapp/adventure-api/internal/core/ports"
)

// AdventureHandler handles HTTP requests for adventure operations.
type AdventureHandler struct {
	service ports.AdventureService
}

func NewAdventureHandler(service ports.AdventureService) *AdventureHandler {
	return &AdventureHandler{service: service}
}

// Start handles POST /v1/adventures.
//
// @Summary      Start a new adventure
// @Tags         adventures
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      startAdventureRequest  true  "Adventure parameters"
// @Success      201   {object}  startAdventureResponse
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      502   {object}  map[string]string
// @Router       /v1/adventures [post]
func (h *AdventureHandler) Start(c echo.Context) error {
	principal, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	var req startAdventureRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	result, err := h.service.Start(c.Request().Context(), ports.StartAdventureInput{
		OwnerID:          principal.ActorID(),
		Prompt:           req.Prompt,
		Perspective:      domain.Perspective(req.Perspective),
		MaxLevels:        req.MaxLevels,
		MinWordsPerLevel: req.MinWordsPerLevel,
		MaxWordsPerLevel: req.MaxWordsPerLevel,
		WithCoverImage:   req.WithCoverImage,
	})
	if err != nil {
		countGeneratorError(err)
		return err
	}

	metrics.AdventuresStartedTotal.WithLabelValues(strconv.FormatBool(req.WithCoverImage)).Inc()

	return c.JSON(http.StatusCreated, startAdventureResponse{
		AdventureID:   result.AdventureID,
		Title:         result.Title,
		Synopsis:      result.Synopsis,
		CreatedAt:     result.CreatedAt,
		CoverImageURL: result.CoverImageURL,
	})
}

// Continue handles PUT /v1/adventures/:id/continue.
//
// @Summary      Continue an adventure from a branch point
// @Tags         adventures
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string                    true  "Adventure id"
// @Param        body  body      continueAdventureRequest  true  "Branch point and chosen option"
// @Success      200   {object}  continueAdventureResponse
// @Failure      400   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Router       /v1/adventures/{id}/continue [put]
func (h *AdventureHandler) Continue(c echo.Context) error {
	principal, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	var req continueAdventureRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	outcome := domain.Outcome(req.Outcome)
	result, err := h.service.Continue(c.Request().Context(), ports.ContinueAdventureInput{
		AdventureID:    c.Param("id"),
		Principal:      principal,
		StartFromNode:  req.StartFromNode,
		SelectedOption: req.SelectedOption,
		Outcome:        outcome,
	})
	if err != nil {
		countGeneratorError(err)
		return err
	}

	if outcome == "" {
		outcome = domain.OutcomeContinue
	}
	metrics.NodesGeneratedTotal.WithLabelValues(string(outcome)).Inc()

	return c.JSON(http.StatusOK, continueAdventureResponse{
		AdventureID: result.AdventureID,
		NodeIndex:   result.NodeIndex,
	})
}

// List handles GET /v1/adventures.
//
// @Summary      List visible adventures
// @Tags         adventures
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  listAdventuresResponse
// @Failure      401  {object}  map[string]string
// @Router       /v1/adventures [get]
func (h *AdventureHandler) List(c echo.Context) error {
	principal, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	summaries, err := h.service.List(c.Request().Context(), principal.ActorID())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, listAdventuresResponse{Adventures: summaries})
}

// GetNodes handles GET /v1/adventures/:id/nodes.
//
// @Summary      Get the full node sequence of an adventure
// @Tags         adventures
// @Produce      json
// @Security     BearerAuth
// @Param        id  path      string  true  "Adventure id"
// @Success      200  {object}  adventureNodesResponse
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /v1/adventures/{id}/nodes [get]
func (h *AdventureHandler) GetNodes(c echo.Context) error {
	principal, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	adventure, err := h.service.GetNodes(c.Request().Context(), c.Param("id"), principal)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, adventureNodesResponse{
		AdventureID: adventure.ID,
		Title:       adventure.Title,
		Synopsis:    adventure.Synopsis,
		Perspective: string(adventure.Perspective),
		IsPublic:    adventure.IsPublic,
		Nodes:       adventure.Nodes,
	})
}

// Truncate handles PATCH /v1/adventures/:id/truncate.
//
// @Summary      Discard all nodes from an index onward
// @Tags         adventures
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path  string                    true  "Adventure id"
// @Param        body  body  truncateAdventureRequest  true  "Index of the first node to discard"
// @Success      204
// @Failure      400   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /v1/adventures/{id}/truncate [patch]
func (h *AdventureHandler) Truncate(c echo.Context) error {
	principal, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	var req truncateAdventureRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	if err := h.service.Truncate(c.Request().Context(), c.Param("id"), principal, req.NodeIndex); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// Delete handles DELETE /v1/adventures/:id.
//
// @Summary      Delete an adventure and all its nodes
// @Tags         adventures
// @Produce      json
// @Security     BearerAuth
// @Param        id  path  string  true  "Adventure id"
// @Success      204
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /v1/adventures/{id} [delete]
func (h *AdventureHandler) Delete(c echo.Context) error {
	principal, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	if err := h.service.Delete(c.Request().Context(), c.Param("id"), principal); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// Clone handles POST /v1/adventures/:id/clone.
//
// @Summary      Clone an adventure into a new one owned by the caller
// @Tags         adventures
// @Produce      json
// @Security     BearerAuth
// @Param        id  path      string  true  "Adventure id"
// @Success      201  {object}  cloneAdventureResponse
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /v1/adventures/{id}/clone [post]
func (h *AdventureHandler) Clone(c echo.Context) error {
	principal, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	result, err := h.service.Clone(c.Request().Context(), c.Param("id"), principal)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, cloneAdventureResponse{
		AdventureID: result.AdventureID,
		Title:       result.Title,
		Synopsis:    result.Synopsis,
		CreatedAt:   result.CreatedAt,
		CloneOf:     result.CloneOf,
	})
}

// countGeneratorError records generator failures surfaced by the service.
func countGeneratorError(err error) {
	switch {
	case errors.Is(err, domain.ErrGeneratorTimeout):
		metrics.GeneratorErrorsTotal.WithLabelValues("timeout").Inc()
	case errors.Is(err, domain.ErrGeneratorFailure):
		metrics.GeneratorErrorsTotal.WithLabelValues("failure").Inc()
	}
}
