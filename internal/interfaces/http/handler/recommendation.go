package handler

import (
	"context"

	recommendationapp "github.com/carbonlink/backend/internal/application/recommendation"
	"github.com/carbonlink/backend/internal/domain/connection"
	"github.com/carbonlink/backend/internal/domain/shared"
	"github.com/carbonlink/backend/internal/infrastructure/auth"
	"github.com/carbonlink/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RecommendationService is the application service behind the recommendation endpoints
type RecommendationService interface {
	List(ctx context.Context, actor connection.Actor, filter recommendationapp.ListRecommendationsFilter) (shared.Paginated[recommendationapp.RecommendationResponse], error)
	Review(ctx context.Context, id uuid.UUID, input recommendationapp.ReviewRecommendationInput, actor connection.Actor) (*recommendationapp.RecommendationResponse, error)
}

// RecommendationHandler exposes the acting company's recommendations
type RecommendationHandler struct {
	BaseHandler
	service RecommendationService
}

// NewRecommendationHandler creates a new RecommendationHandler
func NewRecommendationHandler(service RecommendationService) *RecommendationHandler {
	return &RecommendationHandler{service: service}
}

// List godoc
// @ID           listRecommendations
// @Summary      List recommendations for the acting company
// @Description  Defaults to Unacknowledged recommendations of both types
// @Tags         recommendations
// @Produce      json
// @Param        status    query []string false "Status filter" collectionFormat(multi)
// @Param        type      query []string false "Relationship type filter" collectionFormat(multi)
// @Param        page      query int      false "Page number" default(1)
// @Param        page_size query int      false "Page size" default(20)
// @Param        sort_by   query string   false "Sort field" Enums(created_at, name, status, relationship_type, country)
// @Param        sort_dir  query string   false "Sort direction" Enums(asc, desc)
// @Success      200 {object} APIResponse[[]recommendationapp.RecommendationResponse]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /recommendations [get]
func (h *RecommendationHandler) List(c *gin.Context) {
	actor, ok := h.getActor(c)
	if !ok {
		return
	}

	var filter recommendationapp.ListRecommendationsFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindingError(c, err)
		return
	}

	page, err := h.service.List(c.Request.Context(), actor, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

// Review godoc
// @ID           reviewRecommendation
// @Summary      Accept or dismiss a recommendation
// @Tags         recommendations
// @Accept       json
// @Produce      json
// @Param        id      path string true "Recommendation ID"
// @Param        request body recommendationapp.ReviewRecommendationInput true "Decision"
// @Success      200 {object} APIResponse[recommendationapp.RecommendationResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /recommendations/{id}/review [post]
func (h *RecommendationHandler) Review(c *gin.Context) {
	actor, ok := h.getActor(c)
	if !ok {
		return
	}
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	var input recommendationapp.ReviewRecommendationInput
	if err := c.ShouldBindJSON(&input); err != nil {
		h.BindingError(c, err)
		return
	}

	resp, err := h.service.Review(c.Request.Context(), id, input, actor)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// RegisterRoutes mounts the recommendation endpoints on an /api/v1 group
func (h *RecommendationHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/recommendations", h.List)
	rg.POST("/recommendations/:id/review", middleware.RequirePermission(auth.PermissionManageConnections), h.Review)
}
