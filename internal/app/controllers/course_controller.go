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
	"github.com/oguzk/learnsphere/internal/pkg/helpers"
)

// CourseController handles course lifecycle, fee and search endpoints
type CourseController struct {
	courseService *services.CourseService
}

// NewCourseController creates a new CourseController
func NewCourseController(courseService *services.CourseService) *CourseController {
	return &CourseController{courseService: courseService}
}

// Create godoc
// @Summary Create a draft course
// @Tags courses
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateCourseRequest true "Course data"
// @Success 201 {object} dto.APIResponse{data=models.Course}
// @Failure 403 {object} dto.ErrorResponse
// @Router /courses [post]
func (ctrl *CourseController) Create(c *gin.Context) {
	actorID, ok := middleware.CurrentUserID(c)
	if !ok {
		middleware.HandleAPIError(c, apperrors.ErrTokenInvalid)
		return
	}

	var req dto.CreateCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleAPIError(c, apperrors.NewValidationError("body", nil, err.Error()))
		return
	}

	course, err := ctrl.courseService.CreateCourse(c.Request.Context(), actorID, req)
	if err != nil {
		middleware.HandleAPIError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.NewAPIResponse(course, "Course created"))
}

// Get godoc
// @Summary Get one course
// @Tags courses
// @Produce json
// @Param id path string true "Course ID"
// @Success 200 {object} dto.APIResponse{data=models.Course}
// @Failure 404 {object} dto.ErrorResponse
// @Router /courses/{id} [get]
func (ctrl *CourseController) Get(c *gin.Context) {
	course, err := ctrl.courseService.GetCourse(c.Request.Context(), c.Param("id"))
	if err != nil {
		middleware.HandleAPIError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewAPIResponse(course, "Course retrieved"))
}

// Update godoc
// @Summary Edit a course's content fields
// @Tags courses
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Course ID"
// @Param request body dto.UpdateCourseRequest true "Fields to change"
// @Success 200 {object} dto.APIResponse{data=models.Course}
// @Failure 403 {object} dto.ErrorResponse
// @Router /courses/{id} [put]
func (ctrl *CourseController) Update(c *gin.Context) {
	actorID, ok := middleware.CurrentUserID(c)
	if !ok {
		middleware.HandleAPIError(c, apperrors.ErrTokenInvalid)
		return
	}

	var req dto.UpdateCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleAPIError(c, apperrors.NewValidationError("body", nil, err.Error()))
		return
	}

	course, err := ctrl.courseService.UpdateCourse(c.Request.Context(), actorID, c.Param("id"), req)
	if err != nil {
		middleware.HandleAPIError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewAPIResponse(course, "Course updated"))
}

// Delete godoc
// @Summary Soft-delete a course
// @Tags courses
// @Produce json
// @Security BearerAuth
// @Param id path string true "Course ID"
// @Success 200 {object} dto.APIResponse
// @Failure 403 {object} dto.ErrorResponse
// @Router /courses/{id} [delete]
func (ctrl *CourseController) Delete(c *gin.Context) {
	actorID, ok := middleware.CurrentUserID(c)
	if !ok {
		middleware.HandleAPIError(c, apperrors.ErrTokenInvalid)
		return
	}

	if err := ctrl.courseService.DeleteCourse(c.Request.Context(), actorID, c.Param("id")); err != nil {
		middleware.HandleAPIError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewAPIResponse(nil, "Course deleted"))
}

// transition is the shared handler behind the lifecycle verb routes
func (ctrl *CourseController) transition(c *gin.Context, action models.LifecycleAction) {
	actorID, ok := middleware.CurrentUserID(c)
	if !ok {
		middleware.HandleAPIError(c, apperrors.ErrTokenInvalid)
		return
	}

	course, err := ctrl.courseService.Transition(c.Request.Context(), actorID, c.Param("id"), action)
	if err != nil {
		middleware.HandleAPIError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewAPIResponse(course, "Course "+string(course.Status)))
}

// SubmitForReview godoc
// @Summary Submit a draft or rejected course for review
// @Tags courses
// @Produce json
// @Security BearerAuth
// @Param id path string true "Course ID"
// @Success 200 {object} dto.APIResponse{data=models.Course}
// @Failure 409 {object} dto.ErrorResponse
// @Router /courses/{id}/submit-for-review [post]
func (ctrl *CourseController) SubmitForReview(c *gin.Context) {
	ctrl.transition(c, models.ActionSubmitForReview)
}

// Approve godoc
// @Summary Approve a course under review (admin)
// @Tags courses
// @Produce json
// @Security BearerAuth
// @Param id path string true "Course ID"
// @Success 200 {object} dto.APIResponse{data=models.Course}
// @Failure 409 {object} dto.ErrorResponse
// @Router /courses/{id}/approve [post]
func (ctrl *CourseController) Approve(c *gin.Context) {
	ctrl.transition(c, models.ActionApprove)
}

// Reject godoc
// @Summary Reject a course under review (admin)
// @Tags courses
// @Produce json
// @Security BearerAuth
// @Param id path string true "Course ID"
// @Success 200 {object} dto.APIResponse{data=models.Course}
// @Failure 409 {object} dto.ErrorResponse
// @Router /courses/{id}/reject [post]
func (ctrl *CourseController) Reject(c *gin.Context) {
	ctrl.transition(c, models.ActionReject)
}

// Publish godoc
// @Summary Publish an approved or suspended course
// @Tags courses
// @Produce json
// @Security BearerAuth
// @Param id path string true "Course ID"
// @Success 200 {object} dto.APIResponse{data=models.Course}
// @Failure 409 {object} dto.ErrorResponse
// @Router /courses/{id}/publish [post]
func (ctrl *CourseController) Publish(c *gin.Context) {
	ctrl.transition(c, models.ActionPublish)
}

// Suspend godoc
// @Summary Suspend a published course
// @Tags courses
// @Produce json
// @Security BearerAuth
// @Param id path string true "Course ID"
// @Success 200 {object} dto.APIResponse{data=models.Course}
// @Failure 409 {object} dto.ErrorResponse
// @Router /courses/{id}/suspend [post]
func (ctrl *CourseController) Suspend(c *gin.Context) {
	ctrl.transition(c, models.ActionSuspend)
}

// Archive godoc
// @Summary Archive a course
// @Tags courses
// @Produce json
// @Security BearerAuth
// @Param id path string true "Course ID"
// @Success 200 {object} dto.APIResponse{data=models.Course}
// @Failure 409 {object} dto.ErrorResponse
// @Router /courses/{id}/archive [post]
func (ctrl *CourseController) Archive(c *gin.Context) {
	ctrl.transition(c, models.ActionArchive)
}

// Fee godoc
// @Summary Get the fee currently in effect
// @Tags courses
// @Produce json
// @Param id path string true "Course ID"
// @Success 200 {object} dto.APIResponse{data=dto.FeeInfo}
// @Failure 404 {object} dto.ErrorResponse
// @Router /courses/{id}/fee [get]
func (ctrl *CourseController) Fee(c *gin.Context) {
	info, err := ctrl.courseService.CurrentFee(c.Request.Context(), c.Param("id"))
	if err != nil {
		middleware.HandleAPIError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewAPIResponse(info, "Fee retrieved"))
}

// SetDiscount godoc
// @Summary Open a discount window
// @Tags courses
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Course ID"
// @Param request body dto.SetDiscountRequest true "Discount window"
// @Success 200 {object} dto.APIResponse{data=models.Course}
// @Failure 400 {object} dto.ErrorResponse
// @Router /courses/{id}/discount [put]
func (ctrl *CourseController) SetDiscount(c *gin.Context) {
	actorID, ok := middleware.CurrentUserID(c)
	if !ok {
		middleware.HandleAPIError(c, apperrors.ErrTokenInvalid)
		return
	}

	var req dto.SetDiscountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleAPIError(c, apperrors.NewValidationError("body", nil, err.Error()))
		return
	}

	course, err := ctrl.courseService.SetDiscount(c.Request.Context(), actorID, c.Param("id"), req)
	if err != nil {
		middleware.HandleAPIError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewAPIResponse(course, "Discount set"))
}

// RemoveDiscount godoc
// @Summary Clear the discount window
// @Tags courses
// @Produce json
// @Security BearerAuth
// @Param id path string true "Course ID"
// @Success 200 {object} dto.APIResponse{data=models.Course}
// @Failure 403 {object} dto.ErrorResponse
// @Router /courses/{id}/discount [delete]
func (ctrl *CourseController) RemoveDiscount(c *gin.Context) {
	actorID, ok := middleware.CurrentUserID(c)
	if !ok {
		middleware.HandleAPIError(c, apperrors.ErrTokenInvalid)
		return
	}

	course, err := ctrl.courseService.RemoveDiscount(c.Request.Context(), actorID, c.Param("id"))
	if err != nil {
		middleware.HandleAPIError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewAPIResponse(course, "Discount removed"))
}

// UploadBanner godoc
// @Summary Upload a course banner image
// @Tags courses
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param id path string true "Course ID"
// @Param banner formData file true "Banner image"
// @Success 200 {object} dto.APIResponse
// @Failure 400 {object} dto.ErrorResponse
// @Router /courses/{id}/banner [post]
func (ctrl *CourseController) UploadBanner(c *gin.Context) {
	actorID, ok := middleware.CurrentUserID(c)
	if !ok {
		middleware.HandleAPIError(c, apperrors.ErrTokenInvalid)
		return
	}

	fileHeader, err := c.FormFile("banner")
	if err != nil {
		middleware.HandleAPIError(c, apperrors.NewValidationError("banner", nil, "banner file is required"))
		return
	}

	path, err := ctrl.courseService.UploadBanner(c.Request.Context(), actorID, c.Param("id"), fileHeader)
	if err != nil {
		middleware.HandleAPIError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewAPIResponse(gin.H{"bannerImage": path}, "Banner uploaded"))
}

// Search godoc
// @Summary Search courses
// @Tags courses
// @Produce json
// @Param q query string false "Free text matched against title and description"
// @Param status query string false "Lifecycle status"
// @Param minFee query int false "Minimum fee"
// @Param maxFee query int false "Maximum fee"
// @Param page query int false "Page number"
// @Param size query int false "Page size"
// @Success 200 {object} dto.APIResponse{data=dto.PaginatedResponse}
// @Router /courses [get]
func (ctrl *CourseController) Search(c *gin.Context) {
	var req dto.CourseSearchRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		middleware.HandleAPIError(c, apperrors.NewValidationError("query", nil, err.Error()))
		return
	}

	page, size := helpers.ParsePaginationParams(c)
	courses, total, err := ctrl.courseService.Search(c.Request.Context(), req, page, size)
	if err != nil {
		middleware.HandleAPIError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewAPIResponse(dto.PaginatedResponse{
		Items:      courses,
		Pagination: helpers.NewPaginationInfo(total, page, size),
	}, "Courses retrieved"))
}

// Enrollable godoc
// @Summary List courses open for enrollment
// @Tags courses
// @Produce json
// @Success 200 {object} dto.APIResponse{data=[]models.Course}
// @Router /courses/enrollable [get]
func (ctrl *CourseController) Enrollable(c *gin.Context) {
	courses, err := ctrl.courseService.ListEnrollable(c.Request.Context())
	if err != nil {
		middleware.HandleAPIError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewAPIResponse(courses, "Courses retrieved"))
}

// MyCourses godoc
// @Summary List the authenticated instructor's courses
// @Tags courses
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]models.Course}
// @Router /courses/mine [get]
func (ctrl *CourseController) MyCourses(c *gin.Context) {
	actorID, ok := middleware.CurrentUserID(c)
	if !ok {
		middleware.HandleAPIError(c, apperrors.ErrTokenInvalid)
		return
	}

	courses, err := ctrl.courseService.ListByInstructor(c.Request.Context(), actorID)
	if err != nil {
		middleware.HandleAPIError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewAPIResponse(courses, "Courses retrieved"))
}

// StatusSummary godoc
// @Summary Count courses per lifecycle status
// @Tags courses
// @Produce json
// @Param instructorId query int false "Restrict to one instructor"
// @Success 200 {object} dto.APIResponse{data=dto.StatusSummary}
// @Router /courses/status-summary [get]
func (ctrl *CourseController) StatusSummary(c *gin.Context) {
	var instructorID *int64
	if raw := c.Query("instructorId"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			middleware.HandleAPIError(c, apperrors.NewValidationError("instructorId", raw, "instructor id must be an integer"))
			return
		}
		instructorID = &id
	}

	summary, err := ctrl.courseService.StatusSummary(c.Request.Context(), instructorID)
	if err != nil {
		middleware.HandleAPIError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewAPIResponse(summary, "Summary retrieved"))
}

// Statistics godoc
// @Summary Get per-course statistics
// @Tags courses
// @Produce json
// @Param id path string true "Course ID"
// @Success 200 {object} dto.APIResponse{data=dto.CourseStatistics}
// @Failure 404 {object} dto.ErrorResponse
// @Router /courses/{id}/statistics [get]
func (ctrl *CourseController) Statistics(c *gin.Context) {
	stats, err := ctrl.courseService.Statistics(c.Request.Context(), c.Param("id"))
	if err != nil {
		middleware.HandleAPIError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewAPIResponse(stats, "Statistics retrieved"))
}
