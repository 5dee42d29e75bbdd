package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/crmforge/salesrag/internal/model"
	"github.com/crmforge/salesrag/internal/pkg/errcode"
	"github.com/crmforge/salesrag/internal/pkg/response"
	"github.com/crmforge/salesrag/internal/service"
)

type SearchHandler struct {
	retrieval *service.RetrievalService
}

func NewSearchHandler(retrieval *service.RetrievalService) *SearchHandler {
	return &SearchHandler{retrieval: retrieval}
}

type semanticSearchRequest struct {
	Query         string   `json:"query"`
	SourceType    string   `json:"source_type"`
	Limit         int      `json:"limit"`
	MinSimilarity *float64 `json:"min_similarity"`
}

type contextualSearchRequest struct {
	Query         string   `json:"query"`
	CustomerID    string   `json:"customer_id"`
	StartDate     string   `json:"start_date"`
	EndDate       string   `json:"end_date"`
	SourceTypes   []string `json:"source_types"`
	MinSimilarity *float64 `json:"min_similarity"`
	Limit         int      `json:"limit"`
}

func (h *SearchHandler) Semantic(c *gin.Context) {
	var req semanticSearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errcode.ErrInvalid, "invalid request")
		return
	}
	minSimilarity := model.DefaultMinSimilarity
	if req.MinSimilarity != nil {
		minSimilarity = *req.MinSimilarity
	}
	result, err := h.retrieval.SemanticSearch(c.Request.Context(), req.Query, req.SourceType, req.Limit, minSimilarity)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, result)
}

func (h *SearchHandler) Contextual(c *gin.Context) {
	var req contextualSearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errcode.ErrInvalid, "invalid request")
		return
	}
	start, err := parseTime(req.StartDate)
	if err != nil {
		response.Error(c, errcode.ErrInvalid, "invalid start_date")
		return
	}
	end, err := parseTime(req.EndDate)
	if err != nil {
		response.Error(c, errcode.ErrInvalid, "invalid end_date")
		return
	}
	filter := model.ContextFilter{
		CustomerID:    req.CustomerID,
		StartDate:     start,
		EndDate:       end,
		SourceTypes:   req.SourceTypes,
		MinSimilarity: req.MinSimilarity,
	}
	result, err := h.retrieval.ContextualSearch(c.Request.Context(), req.Query, filter, req.Limit)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, result)
}
