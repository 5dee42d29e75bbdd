package handler

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/crmforge/salesrag/internal/model"
	"github.com/crmforge/salesrag/internal/pkg/response"
	"github.com/crmforge/salesrag/internal/service"
)

type ContextHandler struct {
	contexts *service.ContextService
}

func NewContextHandler(contexts *service.ContextService) *ContextHandler {
	return &ContextHandler{contexts: contexts}
}

func (h *ContextHandler) CustomerContext(c *gin.Context) {
	customerID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	result, err := h.contexts.CustomerContext(c.Request.Context(), customerID)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, result)
}

func (h *ContextHandler) SimilarCustomers(c *gin.Context) {
	customerID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	limit, ok := queryInt(c, "limit")
	if !ok {
		return
	}
	minSimilarity, ok := queryFloat(c, "min_similarity")
	if !ok {
		return
	}
	if c.Query("min_similarity") == "" {
		minSimilarity = model.DefaultMinSimilarity
	}
	similar, err := h.contexts.SimilarCustomers(c.Request.Context(), customerID, limit, minSimilarity)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, similar)
}

func (h *ContextHandler) ConversationHistory(c *gin.Context) {
	customerID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	days, ok := queryInt(c, "days")
	if !ok {
		return
	}
	var types []string
	if raw := c.Query("types"); raw != "" {
		for _, t := range strings.Split(raw, ",") {
			if trimmed := strings.TrimSpace(t); trimmed != "" {
				types = append(types, trimmed)
			}
		}
	}
	history, err := h.contexts.ConversationHistory(c.Request.Context(), customerID, days, types)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, history)
}
