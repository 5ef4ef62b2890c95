package controllers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/yigit/gradebook/internal/app/models"
	"github.com/yigit/gradebook/internal/app/models/dto"
	"github.com/yigit/gradebook/internal/app/services"
	"github.com/yigit/gradebook/internal/middleware"
)

// SearchController handles free-text search over the roster
type SearchController struct {
	searchService services.SearchService
	logger        zerolog.Logger
}

// NewSearchController creates a new SearchController
func NewSearchController(searchService services.SearchService, logger zerolog.Logger) *SearchController {
	return &SearchController{
		searchService: searchService,
		logger:        logger,
	}
}

// Search godoc
// @Summary Search
// @Description Students, teachers, classes and subjects whose name matches q, limited to the caller's scope
// @Tags search
// @Produce json
// @Security BearerAuth
// @Param q query string true "Query"
// @Success 200 {object} dto.APIResponse{data=dto.SearchResponse}
// @Router /search [get]
func (c *SearchController) Search(ctx *gin.Context) {
	c.run(ctx, c.searchService.Search)
}

// Live godoc
// @Summary Live search
// @Description Short result lists for type-ahead; queries under two characters return nothing
// @Tags search
// @Produce json
// @Security BearerAuth
// @Param q query string true "Query"
// @Success 200 {object} dto.APIResponse{data=dto.SearchResponse}
// @Router /search/live [get]
func (c *SearchController) Live(ctx *gin.Context) {
	c.run(ctx, c.searchService.Live)
}

func (c *SearchController) run(ctx *gin.Context, fn func(ctx context.Context, scope *models.Scope, q string) (*dto.SearchResponse, error)) {
	scope, ok := middleware.MustScope(ctx)
	if !ok {
		return
	}
	var req dto.SearchRequest
	if !middleware.BindQuery(ctx, &req) {
		return
	}

	result, err := fn(ctx.Request.Context(), scope, req.Q)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, result)
}
