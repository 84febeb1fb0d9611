package http

import (
	"net/http"
	"strings"

	"github.com/jyaunches/benz-sent-filter-sub001/internal/entity"
	"github.com/jyaunches/benz-sent-filter-sub001/internal/triage/dto"
	"github.com/jyaunches/benz-sent-filter-sub001/internal/triage/repository"
	"github.com/jyaunches/benz-sent-filter-sub001/internal/triage/service"
	"github.com/jyaunches/benz-sent-filter-sub001/pkg/logger"
	"github.com/jyaunches/benz-sent-filter-sub001/pkg/utils"

	"github.com/labstack/echo/v4"
	"gorm.io/datatypes"
)

var marketCapBuckets = []string{
	entity.MarketCapMicro,
	entity.MarketCapSmall,
	entity.MarketCapMid,
	entity.MarketCapLarge,
	entity.MarketCapMega,
}

// TickerContextHandler handles HTTP requests for ticker reference data.
type TickerContextHandler struct {
	repo   repository.TickerContextRepository
	store  service.EntityStore
	logger *logger.Logger
}

// NewTickerContextHandler creates a new TickerContextHandler.
func NewTickerContextHandler(repo repository.TickerContextRepository, store service.EntityStore, logger *logger.Logger) *TickerContextHandler {
	return &TickerContextHandler{repo: repo, store: store, logger: logger}
}

// RegisterRoutes registers the ticker context routes to the Echo group.
func (h *TickerContextHandler) RegisterRoutes(g *echo.Group) {
	g.GET("", h.GetAllContexts)
	g.GET("/:ticker", h.GetContextByTicker)
	g.PUT("", h.UpsertContext)
	g.DELETE("/:ticker", h.DeleteContext)
	g.POST("/reload", h.ReloadContexts)
}

// GetAllContexts godoc
// @Summary Get all ticker contexts
// @Description Get all ticker contexts stored in the database
// @Tags contexts
// @Produce  json
// @Success 200 {array} dto.TickerContextResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /contexts [get]
func (h *TickerContextHandler) GetAllContexts(c echo.Context) error {
	contexts, err := h.repo.GetAll(c.Request().Context())
	if err != nil {
		h.logger.Error("Failed to get ticker contexts", logger.ErrorField(err))
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to get ticker contexts"})
	}

	resp := make([]dto.TickerContextResponse, 0, len(contexts))
	for i := range contexts {
		resp = append(resp, toContextResponse(&contexts[i]))
	}
	return c.JSON(http.StatusOK, resp)
}

// GetContextByTicker godoc
// @Summary Get a ticker context
// @Description Get the reference data for a single ticker symbol
// @Tags contexts
// @Produce  json
// @Param   ticker  path    string true    "Ticker symbol"
// @Success 200 {object} dto.TickerContextResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /contexts/{ticker} [get]
func (h *TickerContextHandler) GetContextByTicker(c echo.Context) error {
	ticker := strings.ToUpper(strings.TrimSpace(c.Param("ticker")))

	tickerCtx, err := h.repo.GetByTicker(c.Request().Context(), ticker)
	if err != nil {
		h.logger.Error("Failed to get ticker context", logger.ErrorField(err), logger.StringField("ticker", ticker))
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to get ticker context"})
	}
	if tickerCtx == nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Ticker context not found"})
	}

	resp := toContextResponse(tickerCtx)
	return c.JSON(http.StatusOK, resp)
}

// UpsertContext godoc
// @Summary Create or replace a ticker context
// @Description Create or replace the reference data for a ticker, then reload the in-memory entity store
// @Tags contexts
// @Accept  json
// @Produce  json
// @Param   context  body    dto.CreateTickerContextRequest   true    "Ticker context to store"
// @Success 200 {object} dto.TickerContextResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /contexts [put]
func (h *TickerContextHandler) UpsertContext(c echo.Context) error {
	var req dto.CreateTickerContextRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request payload"})
	}

	req.Ticker = strings.ToUpper(strings.TrimSpace(req.Ticker))
	if req.Ticker == "" || strings.TrimSpace(req.Name) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "ticker and name are required"})
	}
	if req.MarketCapBucket != "" && !utils.ContainsString(marketCapBuckets, req.MarketCapBucket) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid market_cap_bucket"})
	}

	tickerCtx := &entity.TickerContext{
		Ticker:          req.Ticker,
		Name:            strings.TrimSpace(req.Name),
		Sector:          req.Sector,
		MarketCapBucket: req.MarketCapBucket,
		Aliases:         req.Aliases,
	}
	if len(req.Profile) > 0 {
		tickerCtx.Profile = datatypes.JSON(req.Profile)
	}

	if err := h.repo.Upsert(c.Request().Context(), tickerCtx); err != nil {
		h.logger.Error("Failed to upsert ticker context", logger.ErrorField(err), logger.StringField("ticker", req.Ticker))
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to store ticker context"})
	}

	if err := h.store.Reload(c.Request().Context()); err != nil {
		h.logger.Warn("Failed to reload entity store after upsert", logger.ErrorField(err))
	}

	resp := toContextResponse(tickerCtx)
	return c.JSON(http.StatusOK, resp)
}

// DeleteContext godoc
// @Summary Delete a ticker context
// @Description Delete the reference data for a ticker, then reload the in-memory entity store
// @Tags contexts
// @Produce  json
// @Param   ticker  path    string true    "Ticker symbol"
// @Success 204 {object} nil
// @Failure 500 {object} dto.ErrorResponse
// @Router /contexts/{ticker} [delete]
func (h *TickerContextHandler) DeleteContext(c echo.Context) error {
	ticker := strings.ToUpper(strings.TrimSpace(c.Param("ticker")))

	if err := h.repo.Delete(c.Request().Context(), ticker); err != nil {
		h.logger.Error("Failed to delete ticker context", logger.ErrorField(err), logger.StringField("ticker", ticker))
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to delete ticker context"})
	}

	if err := h.store.Reload(c.Request().Context()); err != nil {
		h.logger.Warn("Failed to reload entity store after delete", logger.ErrorField(err))
	}

	return c.NoContent(http.StatusNoContent)
}

// ReloadContexts godoc
// @Summary Reload the entity store
// @Description Rebuild the in-memory ticker matcher set from config and database
// @Tags contexts
// @Produce  json
// @Success 200 {object} map[string]int
// @Failure 500 {object} dto.ErrorResponse
// @Router /contexts/reload [post]
func (h *TickerContextHandler) ReloadContexts(c echo.Context) error {
	if err := h.store.Reload(c.Request().Context()); err != nil {
		h.logger.Error("Failed to reload entity store", logger.ErrorField(err))
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to reload entity store"})
	}
	return c.JSON(http.StatusOK, map[string]int{"contexts": h.store.Size()})
}

func toContextResponse(tickerCtx *entity.TickerContext) dto.TickerContextResponse {
	return dto.TickerContextResponse{
		ID:              tickerCtx.ID,
		Ticker:          tickerCtx.Ticker,
		Name:            tickerCtx.Name,
		Sector:          tickerCtx.Sector,
		MarketCapBucket: tickerCtx.MarketCapBucket,
		Aliases:         tickerCtx.Aliases,
		Profile:         []byte(tickerCtx.Profile),
		CreatedAt:       tickerCtx.CreatedAt,
		UpdatedAt:       tickerCtx.UpdatedAt,
	}
}
