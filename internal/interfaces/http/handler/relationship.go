package handler

import (
	"context"

	connectionapp "github.com/carbonlink/backend/internal/application/connection"
	"github.com/carbonlink/backend/internal/domain/connection"
	"github.com/carbonlink/backend/internal/infrastructure/auth"
	"github.com/carbonlink/backend/internal/infrastructure/logger"
	"github.com/carbonlink/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RelationshipCoordinator is the application service behind the relationship endpoints
type RelationshipCoordinator interface {
	Create(ctx context.Context, input connectionapp.CreateRelationshipInput, actor connection.Actor) (*connectionapp.RelationshipResult, error)
	Update(ctx context.Context, relationshipID uuid.UUID, input connectionapp.UpdateRelationshipInput, actor connection.Actor) (*connectionapp.RelationshipResult, error)
	DeleteAllForCompany(ctx context.Context, companyID uuid.UUID, actor connection.Actor) (int, error)
}

// RelationshipHandler handles relationship negotiation and offboarding
type RelationshipHandler struct {
	BaseHandler
	coordinator RelationshipCoordinator
	revocations auth.RevocationList
}

// NewRelationshipHandler creates a new RelationshipHandler. revocations may be
// nil, in which case offboarding does not invalidate outstanding tokens.
func NewRelationshipHandler(coordinator RelationshipCoordinator, revocations auth.RevocationList) *RelationshipHandler {
	return &RelationshipHandler{
		coordinator: coordinator,
		revocations: revocations,
	}
}

// Create godoc
// @ID           createRelationship
// @Summary      Send a connection request
// @Description  The acting company invites another company as its supplier or customer
// @Tags         relationships
// @Accept       json
// @Produce      json
// @Param        request body connectionapp.CreateRelationshipInput true "Connection request"
// @Success      201 {object} APIResponse[connectionapp.RelationshipResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /relationships [post]
func (h *RelationshipHandler) Create(c *gin.Context) {
	actor, ok := h.getActor(c)
	if !ok {
		return
	}

	var input connectionapp.CreateRelationshipInput
	if err := c.ShouldBindJSON(&input); err != nil {
		h.BindingError(c, err)
		return
	}

	result, err := h.coordinator.Create(c.Request.Context(), input, actor)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, connectionapp.ToRelationshipResponse(result.Relationship, actor.CompanyID))
}

// Update godoc
// @ID           updateRelationship
// @Summary      Approve, reject or annotate a relationship
// @Tags         relationships
// @Accept       json
// @Produce      json
// @Param        id      path string true "Relationship ID"
// @Param        request body connectionapp.UpdateRelationshipInput true "Status and/or note"
// @Success      200 {object} APIResponse[connectionapp.RelationshipResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /relationships/{id} [patch]
func (h *RelationshipHandler) Update(c *gin.Context) {
	actor, ok := h.getActor(c)
	if !ok {
		return
	}
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	var input connectionapp.UpdateRelationshipInput
	if err := c.ShouldBindJSON(&input); err != nil {
		h.BindingError(c, err)
		return
	}

	result, err := h.coordinator.Update(c.Request.Context(), id, input, actor)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, connectionapp.ToRelationshipResponse(result.Relationship, actor.CompanyID))
}

// DeleteAllForCompany godoc
// @ID           offboardCompanyRelationships
// @Summary      Delete every relationship of a company
// @Description  Offboarding purge. Allowed for the company itself or holders of companies:offboard.
// @Tags         companies
// @Produce      json
// @Param        id path string true "Company ID"
// @Success      200 {object} APIResponse[connectionapp.DeleteRelationshipsResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /companies/{id}/relationships [delete]
func (h *RelationshipHandler) DeleteAllForCompany(c *gin.Context) {
	actor, ok := h.getActor(c)
	if !ok {
		return
	}
	companyID, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	if companyID != actor.CompanyID {
		if p := middleware.GetPrincipal(c); p == nil || !p.HasPermission(auth.PermissionOffboardCompanies) {
			h.Forbidden(c, "Only the company itself or an operator may offboard it")
			return
		}
	}

	ctx := c.Request.Context()
	deleted, err := h.coordinator.DeleteAllForCompany(ctx, companyID, actor)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	if h.revocations != nil {
		if err := h.revocations.RevokeCompany(ctx, companyID.String(), auth.DefaultAccessTokenExpiration); err != nil {
			logger.GetGinLogger(c).Error("Failed to revoke tokens of offboarded company",
				zap.String("company_id", companyID.String()),
				zap.Error(err))
		}
	}

	h.Success(c, connectionapp.DeleteRelationshipsResponse{CompanyID: companyID, Deleted: deleted})
}

// RegisterRoutes mounts the relationship endpoints on an /api/v1 group
func (h *RelationshipHandler) RegisterRoutes(rg *gin.RouterGroup) {
	manage := middleware.RequirePermission(auth.PermissionManageConnections)
	rg.POST("/relationships", manage, h.Create)
	rg.PATCH("/relationships/:id", manage, h.Update)
	rg.DELETE("/companies/:id/relationships", h.DeleteAllForCompany)
}
