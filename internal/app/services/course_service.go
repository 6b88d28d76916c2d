package services

import (
	"context"
	"math"
	"mime/multipart"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/oguzk/learnsphere/internal/app/models"
	"github.com/oguzk/learnsphere/internal/app/models/dto"
	"github.com/oguzk/learnsphere/internal/app/repositories"
	"github.com/oguzk/learnsphere/internal/pkg/apperrors"
	"github.com/oguzk/learnsphere/internal/pkg/filestorage"
	"github.com/oguzk/learnsphere/internal/pkg/helpers"
	"github.com/oguzk/learnsphere/internal/pkg/validation"
)

// lifecyclePrivileges maps each instructor-reachable lifecycle action
// to the privilege gating it. Approve and reject are admin-only and
// handled separately.
var lifecyclePrivileges = map[models.LifecycleAction]models.PrivilegeName{
	models.ActionSubmitForReview: models.PrivilegeEditCourse,
	models.ActionPublish:         models.PrivilegePublishCourse,
	models.ActionSuspend:         models.PrivilegeSuspendCourse,
	models.ActionArchive:         models.PrivilegeArchiveCourse,
}

// CourseService drives the course lifecycle, fees, search and
// statistics
type CourseService struct {
	courses     CourseStore
	enrollments EnrollmentStore
	authz       Authorizer
	storage     filestorage.FileStorage
	logger      zerolog.Logger
	clock       Clock
}

// NewCourseService creates a CourseService
func NewCourseService(
	courses CourseStore,
	enrollments EnrollmentStore,
	authz Authorizer,
	storage filestorage.FileStorage,
	logger zerolog.Logger,
) *CourseService {
	return &CourseService{
		courses:     courses,
		enrollments: enrollments,
		authz:       authz,
		storage:     storage,
		logger:      logger,
		clock:       time.Now,
	}
}

// WithClock overrides the service clock
func (s *CourseService) WithClock(clock Clock) *CourseService {
	s.clock = clock
	return s
}

// CreateCourse creates a draft course owned by the actor
func (s *CourseService) CreateCourse(ctx context.Context, actorID int64, req dto.CreateCourseRequest) (*models.Course, error) {
	if err := s.authz.CheckPrivilege(ctx, actorID, models.PrivilegeCreateCourse); err != nil {
		return nil, err
	}

	if !validation.IsValidTitle(req.Title) {
		return nil, apperrors.NewValidationError("title", req.Title, "title must be 3-200 characters")
	}
	if req.Fee < 0 {
		return nil, apperrors.NewValidationError("fee", req.Fee, "fee must not be negative")
	}

	course := &models.Course{
		ID:           uuid.New().String(),
		Title:        req.Title,
		Description:  req.Description,
		InstructorID: actorID,
		Fee:          req.Fee,
		Status:       models.StatusDraft,
		IsActive:     true,
	}
	if err := s.courses.Create(ctx, course); err != nil {
		return nil, err
	}

	s.logger.Info().Str("courseID", course.ID).Int64("instructorID", actorID).Msg("Course created")
	return course, nil
}

// GetCourse returns an active course
func (s *CourseService) GetCourse(ctx context.Context, id string) (*models.Course, error) {
	return s.courses.GetByID(ctx, id)
}

// UpdateCourse edits the content fields of an owned course
func (s *CourseService) UpdateCourse(ctx context.Context, actorID int64, courseID string, req dto.UpdateCourseRequest) (*models.Course, error) {
	if err := s.authz.CheckPrivilege(ctx, actorID, models.PrivilegeEditCourse); err != nil {
		return nil, err
	}

	course, err := s.courses.GetByID(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if err := s.authz.RequireOwnership(ctx, actorID, course.InstructorID); err != nil {
		return nil, err
	}

	if req.Title != nil {
		if !validation.IsValidTitle(*req.Title) {
			return nil, apperrors.NewValidationError("title", *req.Title, "title must be 3-200 characters")
		}
		course.Title = *req.Title
	}
	if req.Description != nil {
		course.Description = *req.Description
	}
	if req.Fee != nil {
		if *req.Fee < 0 {
			return nil, apperrors.NewValidationError("fee", *req.Fee, "fee must not be negative")
		}
		course.Fee = *req.Fee
	}

	if err := s.courses.Update(ctx, course); err != nil {
		return nil, err
	}
	return course, nil
}

// DeleteCourse soft-deletes an owned course
func (s *CourseService) DeleteCourse(ctx context.Context, actorID int64, courseID string) error {
	if err := s.authz.CheckPrivilege(ctx, actorID, models.PrivilegeDeleteCourse); err != nil {
		return err
	}

	course, err := s.courses.GetByID(ctx, courseID)
	if err != nil {
		return err
	}
	if err := s.authz.RequireOwnership(ctx, actorID, course.InstructorID); err != nil {
		return err
	}

	return s.courses.Deactivate(ctx, courseID)
}

// Transition applies a lifecycle action. Approve and reject are
// admin-only; every other action needs its gating privilege plus
// ownership. Illegal pairs fail with an invalid-transition error
// before anything is written.
func (s *CourseService) Transition(ctx context.Context, actorID int64, courseID string, action models.LifecycleAction) (*models.Course, error) {
	switch action {
	case models.ActionApprove, models.ActionReject:
		if err := s.authz.RequireAdmin(ctx, actorID); err != nil {
			return nil, err
		}
	default:
		privilege, ok := lifecyclePrivileges[action]
		if !ok {
			return nil, apperrors.NewValidationError("action", string(action), "unknown lifecycle action")
		}
		if err := s.authz.CheckPrivilege(ctx, actorID, privilege); err != nil {
			return nil, err
		}
	}

	course, err := s.courses.GetByID(ctx, courseID)
	if err != nil {
		return nil, err
	}

	if action != models.ActionApprove && action != models.ActionReject {
		if err := s.authz.RequireOwnership(ctx, actorID, course.InstructorID); err != nil {
			return nil, err
		}
	}

	if !models.CanTransition(action, course.Status) {
		return nil, apperrors.NewInvalidTransitionError(string(action), string(course.Status))
	}

	target, _ := models.TransitionTarget(action)
	if err := s.courses.UpdateStatus(ctx, courseID, target); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("courseID", courseID).
		Str("action", string(action)).
		Str("from", string(course.Status)).
		Str("to", string(target)).
		Msg("Course transitioned")

	course.Status = target
	return course, nil
}

// feeInfoAt computes the fee view of a course at a given instant.
// The discount window is inclusive on both ends.
func feeInfoAt(course *models.Course, now time.Time) dto.FeeInfo {
	info := dto.FeeInfo{
		OriginalFee:       course.Fee,
		CurrentFee:        course.Fee,
		DiscountedFee:     course.DiscountedFee,
		DiscountStartDate: course.DiscountStartDate,
		DiscountEndDate:   course.DiscountEndDate,
	}

	if course.HasDiscountWindow() &&
		!now.Before(*course.DiscountStartDate) &&
		!now.After(*course.DiscountEndDate) {
		info.IsDiscountActive = true
		info.CurrentFee = *course.DiscountedFee
		if course.Fee > 0 {
			pct := float64(course.Fee-*course.DiscountedFee) / float64(course.Fee) * 100
			info.DiscountPercentage = math.Round(pct*100) / 100
		}
	}

	return info
}

// CurrentFee returns the fee in effect right now
func (s *CourseService) CurrentFee(ctx context.Context, courseID string) (*dto.FeeInfo, error) {
	course, err := s.courses.GetByID(ctx, courseID)
	if err != nil {
		return nil, err
	}
	info := feeInfoAt(course, s.clock())
	return &info, nil
}

// SetDiscount opens a discount window on an owned course. The
// discounted fee must undercut the regular fee and the window must be
// non-empty.
func (s *CourseService) SetDiscount(ctx context.Context, actorID int64, courseID string, req dto.SetDiscountRequest) (*models.Course, error) {
	if err := s.authz.CheckPrivilege(ctx, actorID, models.PrivilegeSetDiscounts); err != nil {
		return nil, err
	}

	course, err := s.courses.GetByID(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if err := s.authz.RequireOwnership(ctx, actorID, course.InstructorID); err != nil {
		return nil, err
	}

	if req.DiscountedFee < 0 {
		return nil, apperrors.NewValidationError("discountedFee", req.DiscountedFee, "discounted fee must not be negative")
	}
	if req.DiscountedFee >= course.Fee {
		return nil, apperrors.NewValidationError("discountedFee", req.DiscountedFee, "discounted fee must be lower than the course fee")
	}
	if !req.StartDate.Before(req.EndDate) {
		return nil, apperrors.NewValidationError("startDate", req.StartDate, "discount start must be before its end")
	}

	if err := s.courses.SetDiscount(ctx, courseID, req.DiscountedFee, req.StartDate, req.EndDate); err != nil {
		return nil, err
	}

	course.DiscountedFee = &req.DiscountedFee
	course.DiscountStartDate = &req.StartDate
	course.DiscountEndDate = &req.EndDate
	return course, nil
}

// RemoveDiscount clears the discount window of an owned course.
// All three discount fields go together.
func (s *CourseService) RemoveDiscount(ctx context.Context, actorID int64, courseID string) (*models.Course, error) {
	if err := s.authz.CheckPrivilege(ctx, actorID, models.PrivilegeSetDiscounts); err != nil {
		return nil, err
	}

	course, err := s.courses.GetByID(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if err := s.authz.RequireOwnership(ctx, actorID, course.InstructorID); err != nil {
		return nil, err
	}

	if err := s.courses.ClearDiscount(ctx, courseID); err != nil {
		return nil, err
	}

	course.DiscountedFee = nil
	course.DiscountStartDate = nil
	course.DiscountEndDate = nil
	return course, nil
}

// UploadBanner stores a banner image for an owned course and replaces
// any previous one.
func (s *CourseService) UploadBanner(ctx context.Context, actorID int64, courseID string, fileHeader *multipart.FileHeader) (string, error) {
	if err := s.authz.CheckPrivilege(ctx, actorID, models.PrivilegeUploadContent); err != nil {
		return "", err
	}

	course, err := s.courses.GetByID(ctx, courseID)
	if err != nil {
		return "", err
	}
	if err := s.authz.RequireOwnership(ctx, actorID, course.InstructorID); err != nil {
		return "", err
	}

	path, err := s.storage.SaveBanner(fileHeader, courseID)
	if err != nil {
		return "", apperrors.NewValidationError("banner", fileHeader.Filename, err.Error())
	}

	if course.BannerImage != nil {
		if err := s.storage.DeleteFile(*course.BannerImage); err != nil {
			s.logger.Warn().Err(err).Str("courseID", courseID).Msg("Failed to delete previous banner")
		}
	}

	if err := s.courses.UpdateBanner(ctx, courseID, &path); err != nil {
		return "", err
	}
	return path, nil
}

// ListByInstructor returns an instructor's active courses
func (s *CourseService) ListByInstructor(ctx context.Context, instructorID int64) ([]models.Course, error) {
	return s.courses.ListByInstructor(ctx, instructorID)
}

// ListEnrollable returns courses currently open for enrollment
func (s *CourseService) ListEnrollable(ctx context.Context) ([]models.Course, error) {
	return s.courses.ListEnrollable(ctx)
}

// Search returns a page of courses matching the request filters
func (s *CourseService) Search(ctx context.Context, req dto.CourseSearchRequest, page, size int) ([]models.Course, int64, error) {
	filters := repositories.CourseFilters{
		Query:  req.Query,
		MinFee: req.MinFee,
		MaxFee: req.MaxFee,
	}
	if req.Status != "" {
		status, ok := models.ParseCourseStatus(req.Status)
		if !ok {
			return nil, 0, apperrors.NewValidationError("status", req.Status, "unknown course status")
		}
		filters.Status = &status
	}
	if req.MinFee != nil && req.MaxFee != nil && *req.MinFee > *req.MaxFee {
		return nil, 0, apperrors.NewValidationError("minFee", *req.MinFee, "minFee must not exceed maxFee")
	}

	offset, limit := helpers.CalculateOffsetLimit(page, size)
	return s.courses.Search(ctx, filters, offset, limit)
}

// StatusSummary counts courses per lifecycle status, optionally for
// one instructor
func (s *CourseService) StatusSummary(ctx context.Context, instructorID *int64) (*dto.StatusSummary, error) {
	counts, err := s.courses.StatusSummary(ctx, instructorID)
	if err != nil {
		return nil, err
	}

	summary := &dto.StatusSummary{Counts: make(map[string]int, len(counts))}
	for status, count := range counts {
		summary.Counts[string(status)] = count
		summary.Total += count
	}
	return summary, nil
}

// Statistics summarizes one course: enrollment counters plus the fee
// in effect now.
func (s *CourseService) Statistics(ctx context.Context, courseID string) (*dto.CourseStatistics, error) {
	course, err := s.courses.GetByID(ctx, courseID)
	if err != nil {
		return nil, err
	}

	now := s.clock()
	filter := repositories.EnrollmentFilter{CourseID: &courseID}

	total, err := s.enrollments.CountActive(ctx, filter)
	if err != nil {
		return nil, err
	}

	since := helpers.MidnightUTC(now).AddDate(0, 0, -30)
	recent, err := s.enrollments.CountActiveSince(ctx, filter, since)
	if err != nil {
		return nil, err
	}

	return &dto.CourseStatistics{
		CourseID:                course.ID,
		Title:                   course.Title,
		Status:                  string(course.Status),
		TotalEnrolled:           total,
		RecentEnrollments30Days: recent,
		Fee:                     feeInfoAt(course, now),
	}, nil
}
