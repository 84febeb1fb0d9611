package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/jyaunches/benz-sent-filter-sub001/internal/triage/dto"
	"github.com/jyaunches/benz-sent-filter-sub001/internal/triage/repository"
	"github.com/jyaunches/benz-sent-filter-sub001/internal/triage/service"
	"github.com/jyaunches/benz-sent-filter-sub001/pkg/logger"

	"github.com/labstack/echo/v4"
)

// TriageHandler handles HTTP requests for headline evaluation.
type TriageHandler struct {
	triageService service.TriageService
	logger        *logger.Logger
}

// NewTriageHandler creates a new TriageHandler.
func NewTriageHandler(triageService service.TriageService, logger *logger.Logger) *TriageHandler {
	return &TriageHandler{triageService: triageService, logger: logger}
}

// RegisterRoutes registers the triage routes to the Echo group.
func (h *TriageHandler) RegisterRoutes(g *echo.Group) {
	g.POST("", h.Evaluate)
	g.POST("/async", h.EvaluateAsync)
}

// Evaluate godoc
// @Summary Evaluate a headline
// @Description Run a headline through the triage pipeline and return the full evaluation result
// @Tags triage
// @Accept  json
// @Produce  json
// @Param   headline  body    dto.TriageHTTPRequest   true    "Headline to evaluate"
// @Success 200 {object} dto.PipelineResult
// @Failure 400 {object} dto.ErrorResponse
// @Failure 503 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /triage [post]
func (h *TriageHandler) Evaluate(c echo.Context) error {
	var req dto.TriageHTTPRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request payload"})
	}

	result, err := h.triageService.Evaluate(c.Request().Context(), toHeadline(&req))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMalformedInput):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		case errors.Is(err, repository.ErrScoringUnavailable):
			// An outage is not a verdict; the caller can retry.
			return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "scoring temporarily unavailable"})
		default:
			h.logger.Error("Failed to evaluate headline", logger.ErrorField(err))
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to evaluate headline"})
		}
	}

	return c.JSON(http.StatusOK, result)
}

// EvaluateAsync godoc
// @Summary Enqueue a headline
// @Description Enqueue a headline onto the triage request stream for asynchronous evaluation
// @Tags triage
// @Accept  json
// @Produce  json
// @Param   headline  body    dto.TriageHTTPRequest   true    "Headline to enqueue"
// @Success 202 {object} map[string]string
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /triage/async [post]
func (h *TriageHandler) EvaluateAsync(c echo.Context) error {
	var req dto.TriageHTTPRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request payload"})
	}

	streamData := &dto.StreamDataTriageRequest{
		Headline:    req.Headline,
		Tickers:     req.Tickers,
		Source:      req.Source,
		PublishedAt: req.PublishedAt,
	}
	if err := h.triageService.PublishRequest(c.Request().Context(), streamData); err != nil {
		h.logger.Error("Failed to enqueue headline", logger.ErrorField(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to enqueue headline"})
	}

	return c.JSON(http.StatusAccepted, map[string]string{"status": "queued"})
}

func toHeadline(req *dto.TriageHTTPRequest) *dto.Headline {
	h := &dto.Headline{
		Text:    req.Headline,
		Tickers: req.Tickers,
		Source:  req.Source,
	}
	if req.PublishedAt != "" {
		if ts, err := time.Parse(time.RFC3339, req.PublishedAt); err == nil {
			h.PublishedAt = &ts
		}
	}
	return h
}
