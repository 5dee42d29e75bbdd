package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/crmforge/salesrag/internal/pkg/response"
	"github.com/crmforge/salesrag/internal/service"
)

type PatternHandler struct {
	patterns *service.PatternService
}

func NewPatternHandler(patterns *service.PatternService) *PatternHandler {
	return &PatternHandler{patterns: patterns}
}

func (h *PatternHandler) SuccessPatterns(c *gin.Context) {
	minRate, ok := queryFloat(c, "min_success_rate")
	if !ok {
		return
	}
	if c.Query("min_success_rate") == "" {
		minRate = service.DefaultMinSuccessRate
	}
	windowDays, ok := queryInt(c, "window_days")
	if !ok {
		return
	}
	patterns, err := h.patterns.MineSuccessPatterns(c.Request.Context(), c.Query("industry"), minRate, windowDays)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, patterns)
}

func (h *PatternHandler) ObjectionResponses(c *gin.Context) {
	result, err := h.patterns.MineObjectionResponses(c.Request.Context(), c.Param("type"))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, result)
}

func (h *PatternHandler) CompetitorMentions(c *gin.Context) {
	customerID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	windowDays, ok := queryInt(c, "window_days")
	if !ok {
		return
	}
	minMentions, ok := queryInt(c, "min_mentions")
	if !ok {
		return
	}
	mentions, err := h.patterns.MineCompetitorMentions(c.Request.Context(), customerID, windowDays, minMentions)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, mentions)
}
