package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/crmforge/salesrag/internal/pkg/response"
	"github.com/crmforge/salesrag/internal/service"
)

type SuggestionHandler struct {
	suggestions *service.SuggestionService
}

func NewSuggestionHandler(suggestions *service.SuggestionService) *SuggestionHandler {
	return &SuggestionHandler{suggestions: suggestions}
}

func (h *SuggestionHandler) Suggest(c *gin.Context) {
	opportunityID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	suggestion, err := h.suggestions.Suggest(c.Request.Context(), opportunityID)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, suggestion)
}
