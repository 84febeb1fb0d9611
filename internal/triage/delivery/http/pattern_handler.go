package http

import (
	"net/http"

	"github.com/jyaunches/benz-sent-filter-sub001/internal/triage/dto"
	"github.com/jyaunches/benz-sent-filter-sub001/internal/triage/override"

	"github.com/labstack/echo/v4"
)

// PatternHandler exposes the registered override patterns.
type PatternHandler struct {
	registry *override.Registry
}

// NewPatternHandler creates a new PatternHandler.
func NewPatternHandler(registry *override.Registry) *PatternHandler {
	return &PatternHandler{registry: registry}
}

// RegisterRoutes registers the pattern routes to the Echo group.
func (h *PatternHandler) RegisterRoutes(g *echo.Group) {
	g.GET("", h.GetPatterns)
}

// GetPatterns godoc
// @Summary Get override patterns
// @Description List every registered override pattern, built-in and configured
// @Tags patterns
// @Produce  json
// @Success 200 {array} dto.OverridePatternResponse
// @Router /patterns [get]
func (h *PatternHandler) GetPatterns(c echo.Context) error {
	patterns := h.registry.Patterns()
	resp := make([]dto.OverridePatternResponse, 0, len(patterns))
	for _, p := range patterns {
		resp = append(resp, dto.OverridePatternResponse{
			Category: p.Category,
			Outcome:  string(p.Outcome),
			Pattern:  p.Pattern,
			Builtin:  p.Builtin,
		})
	}
	return c.JSON(http.StatusOK, resp)
}
