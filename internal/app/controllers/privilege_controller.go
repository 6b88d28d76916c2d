package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/oguzk/learnsphere/internal/app/models"
	"github.com/oguzk/learnsphere/internal/app/models/dto"
	"github.com/oguzk/learnsphere/internal/app/services"
	"github.com/oguzk/learnsphere/internal/middleware"
	"github.com/oguzk/learnsphere/internal/pkg/apperrors"
)

// PrivilegeController handles instructor privilege grant endpoints
type PrivilegeController struct {
	privilegeService *services.PrivilegeService
}

// NewPrivilegeController creates a new PrivilegeController
func NewPrivilegeController(privilegeService *services.PrivilegeService) *PrivilegeController {
	return &PrivilegeController{privilegeService: privilegeService}
}

func toPrivilegeResponse(p *models.Privilege) dto.PrivilegeResponse {
	return dto.PrivilegeResponse{
		ID:            p.ID,
		InstructorID:  p.InstructorID,
		PrivilegeName: string(p.Name),
		Description:   p.Description,
		IsActive:      p.IsActive,
		AssignedBy:    p.AssignedBy,
		AssignedAt:    p.AssignedAt,
	}
}

func toPrivilegeResponses(privileges []models.Privilege) []dto.PrivilegeResponse {
	items := make([]dto.PrivilegeResponse, 0, len(privileges))
	for i := range privileges {
		items = append(items, toPrivilegeResponse(&privileges[i]))
	}
	return items
}

func pathInstructorID(c *gin.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return 0, apperrors.NewValidationError("id", c.Param("id"), "instructor id must be an integer")
	}
	return id, nil
}

// Assign godoc
// @Summary Grant a privilege to an instructor
// @Tags privileges
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.AssignPrivilegeRequest true "Grant to create"
// @Success 201 {object} dto.APIResponse{data=dto.PrivilegeResponse}
// @Failure 409 {object} dto.ErrorResponse
// @Router /admin/privileges [post]
func (ctrl *PrivilegeController) Assign(c *gin.Context) {
	adminID, ok := middleware.CurrentUserID(c)
	if !ok {
		middleware.HandleAPIError(c, apperrors.ErrTokenInvalid)
		return
	}

	var req dto.AssignPrivilegeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleAPIError(c, apperrors.NewValidationError("body", nil, err.Error()))
		return
	}

	privilege, err := ctrl.privilegeService.Assign(c.Request.Context(), adminID, req)
	if err != nil {
		middleware.HandleAPIError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.NewAPIResponse(toPrivilegeResponse(privilege), "Privilege assigned"))
}

// Revoke godoc
// @Summary Revoke an instructor's privilege
// @Tags privileges
// @Produce json
// @Security BearerAuth
// @Param id path int true "Instructor ID"
// @Param name path string true "Privilege name"
// @Success 200 {object} dto.APIResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /admin/privileges/{id}/{name} [delete]
func (ctrl *PrivilegeController) Revoke(c *gin.Context) {
	adminID, ok := middleware.CurrentUserID(c)
	if !ok {
		middleware.HandleAPIError(c, apperrors.ErrTokenInvalid)
		return
	}

	instructorID, err := pathInstructorID(c)
	if err != nil {
		middleware.HandleAPIError(c, err)
		return
	}

	if err := ctrl.privilegeService.Revoke(c.Request.Context(), adminID, instructorID, c.Param("name")); err != nil {
		middleware.HandleAPIError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewAPIResponse(nil, "Privilege revoked"))
}

// BulkAssign godoc
// @Summary Grant several privileges at once
// @Description Invalid and already granted names are skipped and reported
// @Tags privileges
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.BulkPrivilegeRequest true "Grants to create"
// @Success 200 {object} dto.APIResponse{data=dto.BulkPrivilegeResult}
// @Failure 404 {object} dto.ErrorResponse
// @Router /admin/privileges/bulk-assign [post]
func (ctrl *PrivilegeController) BulkAssign(c *gin.Context) {
	adminID, ok := middleware.CurrentUserID(c)
	if !ok {
		middleware.HandleAPIError(c, apperrors.ErrTokenInvalid)
		return
	}

	var req dto.BulkPrivilegeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleAPIError(c, apperrors.NewValidationError("body", nil, err.Error()))
		return
	}

	result, err := ctrl.privilegeService.BulkAssign(c.Request.Context(), adminID, req)
	if err != nil {
		middleware.HandleAPIError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewAPIResponse(result, "Bulk assignment processed"))
}

// BulkRevoke godoc
// @Summary Revoke several privileges at once
// @Tags privileges
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.BulkPrivilegeRequest true "Grants to revoke"
// @Success 200 {object} dto.APIResponse{data=dto.BulkPrivilegeResult}
// @Router /admin/privileges/bulk-revoke [post]
func (ctrl *PrivilegeController) BulkRevoke(c *gin.Context) {
	adminID, ok := middleware.CurrentUserID(c)
	if !ok {
		middleware.HandleAPIError(c, apperrors.ErrTokenInvalid)
		return
	}

	var req dto.BulkPrivilegeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleAPIError(c, apperrors.NewValidationError("body", nil, err.Error()))
		return
	}

	result, err := ctrl.privilegeService.BulkRevoke(c.Request.Context(), adminID, req)
	if err != nil {
		middleware.HandleAPIError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewAPIResponse(result, "Bulk revocation processed"))
}

// ListAll godoc
// @Summary List every live privilege grant
// @Tags privileges
// @Produce json
// @Security BearerAuth
// @Param grantedBy query int false "Filter by the admin who granted"
// @Success 200 {object} dto.APIResponse{data=[]dto.PrivilegeResponse}
// @Router /admin/privileges [get]
func (ctrl *PrivilegeController) ListAll(c *gin.Context) {
	adminID, ok := middleware.CurrentUserID(c)
	if !ok {
		middleware.HandleAPIError(c, apperrors.ErrTokenInvalid)
		return
	}

	var (
		privileges []models.Privilege
		err        error
	)
	if raw := c.Query("grantedBy"); raw != "" {
		grantorID, parseErr := strconv.ParseInt(raw, 10, 64)
		if parseErr != nil {
			middleware.HandleAPIError(c, apperrors.NewValidationError("grantedBy", raw, "admin id must be an integer"))
			return
		}
		privileges, err = ctrl.privilegeService.ListByAdmin(c.Request.Context(), adminID, grantorID)
	} else {
		privileges, err = ctrl.privilegeService.ListAll(c.Request.Context(), adminID)
	}
	if err != nil {
		middleware.HandleAPIError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewAPIResponse(toPrivilegeResponses(privileges), "Privileges retrieved"))
}

// ListByInstructor godoc
// @Summary List an instructor's live privileges
// @Tags privileges
// @Produce json
// @Security BearerAuth
// @Param id path int true "Instructor ID"
// @Success 200 {object} dto.APIResponse{data=[]dto.PrivilegeResponse}
// @Failure 404 {object} dto.ErrorResponse
// @Router /instructors/{id}/privileges [get]
func (ctrl *PrivilegeController) ListByInstructor(c *gin.Context) {
	instructorID, err := pathInstructorID(c)
	if err != nil {
		middleware.HandleAPIError(c, err)
		return
	}

	privileges, err := ctrl.privilegeService.ListByInstructor(c.Request.Context(), instructorID)
	if err != nil {
		middleware.HandleAPIError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewAPIResponse(toPrivilegeResponses(privileges), "Privileges retrieved"))
}

// MyPrivileges godoc
// @Summary List the authenticated instructor's live privileges
// @Tags privileges
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]dto.PrivilegeResponse}
// @Router /privileges/mine [get]
func (ctrl *PrivilegeController) MyPrivileges(c *gin.Context) {
	actorID, ok := middleware.CurrentUserID(c)
	if !ok {
		middleware.HandleAPIError(c, apperrors.ErrTokenInvalid)
		return
	}

	privileges, err := ctrl.privilegeService.ListByInstructor(c.Request.Context(), actorID)
	if err != nil {
		middleware.HandleAPIError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewAPIResponse(toPrivilegeResponses(privileges), "Privileges retrieved"))
}

// Catalog godoc
// @Summary List every assignable privilege name
// @Tags privileges
// @Produce json
// @Success 200 {object} dto.APIResponse{data=[]dto.PrivilegeCatalogEntry}
// @Router /privileges/catalog [get]
func (ctrl *PrivilegeController) Catalog(c *gin.Context) {
	c.JSON(http.StatusOK, dto.NewAPIResponse(ctrl.privilegeService.Catalog(), "Catalog retrieved"))
}
