package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/oguzk/learnsphere/internal/app/models"
	"github.com/oguzk/learnsphere/internal/app/models/dto"
	"github.com/oguzk/learnsphere/internal/app/repositories"
	"github.com/oguzk/learnsphere/internal/app/services"
	"github.com/oguzk/learnsphere/internal/middleware"
	"github.com/oguzk/learnsphere/internal/pkg/apperrors"
)

// EnrollmentController handles enrollment endpoints
type EnrollmentController struct {
	enrollmentService *services.EnrollmentService
}

// NewEnrollmentController creates a new EnrollmentController
func NewEnrollmentController(enrollmentService *services.EnrollmentService) *EnrollmentController {
	return &EnrollmentController{enrollmentService: enrollmentService}
}

func toEnrollmentResponse(e *models.Enrollment) dto.EnrollmentResponse {
	return dto.EnrollmentResponse{
		ID:         e.ID,
		StudentID:  e.StudentID,
		CourseID:   e.CourseID,
		EnrolledAt: e.EnrolledAt,
		IsActive:   e.IsActive,
	}
}

func toEnrollmentResponses(enrollments []models.Enrollment) []dto.EnrollmentResponse {
	items := make([]dto.EnrollmentResponse, 0, len(enrollments))
	for i := range enrollments {
		items = append(items, toEnrollmentResponse(&enrollments[i]))
	}
	return items
}

// EnrollSelf godoc
// @Summary Enroll the authenticated student into a course
// @Tags enrollments
// @Produce json
// @Security BearerAuth
// @Param id path string true "Course ID"
// @Success 201 {object} dto.APIResponse{data=dto.EnrollmentResponse}
// @Failure 409 {object} dto.ErrorResponse
// @Router /courses/{id}/enroll [post]
func (ctrl *EnrollmentController) EnrollSelf(c *gin.Context) {
	actorID, ok := middleware.CurrentUserID(c)
	if !ok {
		middleware.HandleAPIError(c, apperrors.ErrTokenInvalid)
		return
	}

	enrollment, err := ctrl.enrollmentService.Enroll(c.Request.Context(), actorID, actorID, c.Param("id"))
	if err != nil {
		middleware.HandleAPIError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.NewAPIResponse(toEnrollmentResponse(enrollment), "Enrolled"))
}

// UnenrollSelf godoc
// @Summary Drop the authenticated student's enrollment
// @Tags enrollments
// @Produce json
// @Security BearerAuth
// @Param id path string true "Course ID"
// @Success 200 {object} dto.APIResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /courses/{id}/enroll [delete]
func (ctrl *EnrollmentController) UnenrollSelf(c *gin.Context) {
	actorID, ok := middleware.CurrentUserID(c)
	if !ok {
		middleware.HandleAPIError(c, apperrors.ErrTokenInvalid)
		return
	}

	if err := ctrl.enrollmentService.Unenroll(c.Request.Context(), actorID, actorID, c.Param("id")); err != nil {
		middleware.HandleAPIError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewAPIResponse(nil, "Unenrolled"))
}

// EnrollStudent godoc
// @Summary Enroll a named student into a course
// @Description Requires the enroll_students privilege; instructors may only act on their own courses
// @Tags enrollments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Course ID"
// @Param request body dto.EnrollRequest true "Student to enroll"
// @Success 201 {object} dto.APIResponse{data=dto.EnrollmentResponse}
// @Failure 403 {object} dto.ErrorResponse
// @Router /courses/{id}/enrollments [post]
func (ctrl *EnrollmentController) EnrollStudent(c *gin.Context) {
	actorID, ok := middleware.CurrentUserID(c)
	if !ok {
		middleware.HandleAPIError(c, apperrors.ErrTokenInvalid)
		return
	}

	var req dto.EnrollRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleAPIError(c, apperrors.NewValidationError("body", nil, err.Error()))
		return
	}

	enrollment, err := ctrl.enrollmentService.Enroll(c.Request.Context(), actorID, req.StudentID, c.Param("id"))
	if err != nil {
		middleware.HandleAPIError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.NewAPIResponse(toEnrollmentResponse(enrollment), "Student enrolled"))
}

// UnenrollStudent godoc
// @Summary Drop a named student's enrollment
// @Tags enrollments
// @Produce json
// @Security BearerAuth
// @Param id path string true "Course ID"
// @Param studentId path int true "Student ID"
// @Success 200 {object} dto.APIResponse
// @Failure 403 {object} dto.ErrorResponse
// @Router /courses/{id}/enrollments/{studentId} [delete]
func (ctrl *EnrollmentController) UnenrollStudent(c *gin.Context) {
	actorID, ok := middleware.CurrentUserID(c)
	if !ok {
		middleware.HandleAPIError(c, apperrors.ErrTokenInvalid)
		return
	}

	studentID, err := strconv.ParseInt(c.Param("studentId"), 10, 64)
	if err != nil {
		middleware.HandleAPIError(c, apperrors.NewValidationError("studentId", c.Param("studentId"), "student id must be an integer"))
		return
	}

	if err := ctrl.enrollmentService.Unenroll(c.Request.Context(), actorID, studentID, c.Param("id")); err != nil {
		middleware.HandleAPIError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewAPIResponse(nil, "Student unenrolled"))
}

// BulkEnroll godoc
// @Summary Enroll several students into a course
// @Description Failed rows are skipped and reported; the rest go through
// @Tags enrollments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Course ID"
// @Param request body dto.BulkEnrollRequest true "Students to enroll"
// @Success 200 {object} dto.APIResponse{data=dto.BulkEnrollResult}
// @Failure 403 {object} dto.ErrorResponse
// @Router /courses/{id}/enrollments/bulk [post]
func (ctrl *EnrollmentController) BulkEnroll(c *gin.Context) {
	actorID, ok := middleware.CurrentUserID(c)
	if !ok {
		middleware.HandleAPIError(c, apperrors.ErrTokenInvalid)
		return
	}

	var req dto.BulkEnrollRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleAPIError(c, apperrors.NewValidationError("body", nil, err.Error()))
		return
	}

	result, err := ctrl.enrollmentService.BulkEnroll(c.Request.Context(), actorID, c.Param("id"), req.StudentIDs)
	if err != nil {
		middleware.HandleAPIError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewAPIResponse(result, "Bulk enrollment processed"))
}

// CourseEnrollments godoc
// @Summary List a course's live enrollments
// @Tags enrollments
// @Produce json
// @Security BearerAuth
// @Param id path string true "Course ID"
// @Success 200 {object} dto.APIResponse{data=[]dto.EnrollmentResponse}
// @Failure 403 {object} dto.ErrorResponse
// @Router /courses/{id}/enrollments [get]
func (ctrl *EnrollmentController) CourseEnrollments(c *gin.Context) {
	actorID, ok := middleware.CurrentUserID(c)
	if !ok {
		middleware.HandleAPIError(c, apperrors.ErrTokenInvalid)
		return
	}

	enrollments, err := ctrl.enrollmentService.CourseEnrollments(c.Request.Context(), actorID, c.Param("id"))
	if err != nil {
		middleware.HandleAPIError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewAPIResponse(toEnrollmentResponses(enrollments), "Enrollments retrieved"))
}

// MyEnrollments godoc
// @Summary List the authenticated student's live enrollments
// @Tags enrollments
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]dto.EnrollmentResponse}
// @Router /enrollments/mine [get]
func (ctrl *EnrollmentController) MyEnrollments(c *gin.Context) {
	actorID, ok := middleware.CurrentUserID(c)
	if !ok {
		middleware.HandleAPIError(c, apperrors.ErrTokenInvalid)
		return
	}

	enrollments, err := ctrl.enrollmentService.StudentEnrollments(c.Request.Context(), actorID)
	if err != nil {
		middleware.HandleAPIError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewAPIResponse(toEnrollmentResponses(enrollments), "Enrollments retrieved"))
}

// MyCourses godoc
// @Summary List the courses the authenticated student is enrolled in
// @Tags enrollments
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]models.Course}
// @Router /enrollments/my-courses [get]
func (ctrl *EnrollmentController) MyCourses(c *gin.Context) {
	actorID, ok := middleware.CurrentUserID(c)
	if !ok {
		middleware.HandleAPIError(c, apperrors.ErrTokenInvalid)
		return
	}

	courses, err := ctrl.enrollmentService.StudentCourses(c.Request.Context(), actorID)
	if err != nil {
		middleware.HandleAPIError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewAPIResponse(courses, "Courses retrieved"))
}

// MyHistory godoc
// @Summary List the authenticated student's enrollment history
// @Description Includes dropped enrollments; optionally narrowed to one course
// @Tags enrollments
// @Produce json
// @Security BearerAuth
// @Param courseId query string false "Course ID"
// @Success 200 {object} dto.APIResponse{data=[]dto.EnrollmentResponse}
// @Router /enrollments/history [get]
func (ctrl *EnrollmentController) MyHistory(c *gin.Context) {
	actorID, ok := middleware.CurrentUserID(c)
	if !ok {
		middleware.HandleAPIError(c, apperrors.ErrTokenInvalid)
		return
	}

	var courseID *string
	if raw := c.Query("courseId"); raw != "" {
		courseID = &raw
	}

	enrollments, err := ctrl.enrollmentService.History(c.Request.Context(), actorID, courseID)
	if err != nil {
		middleware.HandleAPIError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewAPIResponse(toEnrollmentResponses(enrollments), "History retrieved"))
}

// MyStudents godoc
// @Summary List the distinct students across the instructor's courses
// @Tags enrollments
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]dto.UserResponse}
// @Failure 403 {object} dto.ErrorResponse
// @Router /enrollments/my-students [get]
func (ctrl *EnrollmentController) MyStudents(c *gin.Context) {
	actorID, ok := middleware.CurrentUserID(c)
	if !ok {
		middleware.HandleAPIError(c, apperrors.ErrTokenInvalid)
		return
	}

	students, err := ctrl.enrollmentService.InstructorStudents(c.Request.Context(), actorID, actorID)
	if err != nil {
		middleware.HandleAPIError(c, err)
		return
	}

	items := make([]dto.UserResponse, 0, len(students))
	for i := range students {
		items = append(items, toUserResponse(&students[i]))
	}

	c.JSON(http.StatusOK, dto.NewAPIResponse(items, "Students retrieved"))
}

// Statistics godoc
// @Summary Summarize enrollment activity
// @Description Lifetime total, a 30 day window and a 7 day histogram, optionally scoped to one course or instructor
// @Tags enrollments
// @Produce json
// @Security BearerAuth
// @Param courseId query string false "Course ID"
// @Param instructorId query int false "Instructor ID"
// @Success 200 {object} dto.APIResponse{data=dto.EnrollmentStatistics}
// @Router /admin/enrollments/statistics [get]
func (ctrl *EnrollmentController) Statistics(c *gin.Context) {
	var filter repositories.EnrollmentFilter
	if raw := c.Query("courseId"); raw != "" {
		filter.CourseID = &raw
	}
	if raw := c.Query("instructorId"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			middleware.HandleAPIError(c, apperrors.NewValidationError("instructorId", raw, "instructor id must be an integer"))
			return
		}
		filter.InstructorID = &id
	}

	stats, err := ctrl.enrollmentService.Statistics(c.Request.Context(), filter)
	if err != nil {
		middleware.HandleAPIError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewAPIResponse(stats, "Statistics retrieved"))
}
