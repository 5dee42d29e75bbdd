package handler

import (
	"github.com/gin-gonic/gin"
)

type RouterDeps struct {
	Search      *SearchHandler
	Patterns    *PatternHandler
	Suggestions *SuggestionHandler
	Contexts    *ContextHandler
}

func RegisterRoutes(api *gin.RouterGroup, deps RouterDeps) {
	api.POST("/search/semantic", deps.Search.Semantic)
	api.POST("/search/contextual", deps.Search.Contextual)

	api.GET("/patterns/success", deps.Patterns.SuccessPatterns)
	api.GET("/patterns/objections/:type", deps.Patterns.ObjectionResponses)

	api.GET("/customers/:id/context", deps.Contexts.CustomerContext)
	api.GET("/customers/:id/similar", deps.Contexts.SimilarCustomers)
	api.GET("/customers/:id/history", deps.Contexts.ConversationHistory)
	api.GET("/customers/:id/competitors", deps.Patterns.CompetitorMentions)

	api.GET("/opportunities/:id/suggestions", deps.Suggestions.Suggest)
}
