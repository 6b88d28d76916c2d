package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/oguzk/learnsphere/internal/app/models"
	"github.com/oguzk/learnsphere/internal/app/models/dto"
	"github.com/oguzk/learnsphere/internal/app/repositories"
	"github.com/oguzk/learnsphere/internal/pkg/apperrors"
	"github.com/oguzk/learnsphere/internal/pkg/helpers"
)

// EnrollmentService manages student enrollment and its statistics
type EnrollmentService struct {
	users       UserStore
	courses     CourseStore
	enrollments EnrollmentStore
	authz       Authorizer
	logger      zerolog.Logger
	clock       Clock
}

// NewEnrollmentService creates an EnrollmentService
func NewEnrollmentService(
	users UserStore,
	courses CourseStore,
	enrollments EnrollmentStore,
	authz Authorizer,
	logger zerolog.Logger,
) *EnrollmentService {
	return &EnrollmentService{
		users:       users,
		courses:     courses,
		enrollments: enrollments,
		authz:       authz,
		logger:      logger,
		clock:       time.Now,
	}
}

// WithClock overrides the service clock
func (s *EnrollmentService) WithClock(clock Clock) *EnrollmentService {
	s.clock = clock
	return s
}

// checkActingOnBehalf gates enrollment mutations performed by someone
// other than the student: the actor needs the privilege and, for
// instructors, ownership of the course.
func (s *EnrollmentService) checkActingOnBehalf(ctx context.Context, actorID, studentID int64, course *models.Course, privilege models.PrivilegeName) error {
	if actorID == studentID {
		return nil
	}
	if err := s.authz.CheckPrivilege(ctx, actorID, privilege); err != nil {
		return err
	}
	return s.authz.RequireOwnership(ctx, actorID, course.InstructorID)
}

// enroll runs the enrollment checks in their fixed order: student,
// course, status, duplicate, then the transactional insert.
func (s *EnrollmentService) enroll(ctx context.Context, studentID int64, course *models.Course) (*models.Enrollment, error) {
	student, err := s.users.GetByID(ctx, studentID)
	if err != nil {
		return nil, err
	}
	if student.Role != models.RoleStudent || !student.IsActive {
		return nil, apperrors.NewNotFoundError("no active student with this id")
	}

	if !course.Status.IsEnrollable() {
		return nil, apperrors.NewCustomError(apperrors.ErrCourseNotEnrollable,
			"course in status '"+string(course.Status)+"' does not accept enrollments")
	}

	if enrolled, err := s.enrollments.ActiveExists(ctx, studentID, course.ID); err != nil {
		return nil, err
	} else if enrolled {
		return nil, apperrors.ErrAlreadyEnrolled
	}

	enrollment := &models.Enrollment{
		StudentID: studentID,
		CourseID:  course.ID,
	}
	// The partial unique index backstops the duplicate check under
	// concurrent enrolls
	if err := s.enrollments.Create(ctx, enrollment); err != nil {
		return nil, err
	}

	s.logger.Info().Int64("studentID", studentID).Str("courseID", course.ID).Msg("Student enrolled")
	return enrollment, nil
}

// Enroll enrolls a student into a course. Students enroll themselves;
// anyone else needs the enroll_students privilege.
func (s *EnrollmentService) Enroll(ctx context.Context, actorID, studentID int64, courseID string) (*models.Enrollment, error) {
	course, err := s.courses.GetByID(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if err := s.checkActingOnBehalf(ctx, actorID, studentID, course, models.PrivilegeEnrollStudents); err != nil {
		return nil, err
	}
	return s.enroll(ctx, studentID, course)
}

// Unenroll removes a student's active enrollment. The row is kept as
// history; only is_active flips.
func (s *EnrollmentService) Unenroll(ctx context.Context, actorID, studentID int64, courseID string) error {
	course, err := s.courses.GetByID(ctx, courseID)
	if err != nil {
		return err
	}
	if err := s.checkActingOnBehalf(ctx, actorID, studentID, course, models.PrivilegeUnenrollStudents); err != nil {
		return err
	}

	if err := s.enrollments.Deactivate(ctx, studentID, courseID); err != nil {
		return err
	}

	s.logger.Info().Int64("studentID", studentID).Str("courseID", courseID).Msg("Student unenrolled")
	return nil
}

// BulkEnroll enrolls several students sequentially. Row failures are
// logged and skipped; the result lists both outcomes.
func (s *EnrollmentService) BulkEnroll(ctx context.Context, actorID int64, courseID string, studentIDs []int64) (*dto.BulkEnrollResult, error) {
	if err := s.authz.CheckPrivilege(ctx, actorID, models.PrivilegeEnrollStudents); err != nil {
		return nil, err
	}

	course, err := s.courses.GetByID(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if err := s.authz.RequireOwnership(ctx, actorID, course.InstructorID); err != nil {
		return nil, err
	}

	result := &dto.BulkEnrollResult{}
	for _, studentID := range studentIDs {
		enrollment, err := s.enroll(ctx, studentID, course)
		if err != nil {
			s.logger.Warn().Err(err).Int64("studentID", studentID).Str("courseID", courseID).Msg("Bulk enroll row failed")
			result.Failed = append(result.Failed, studentID)
			continue
		}
		result.Enrolled = append(result.Enrolled, dto.EnrollmentResponse{
			ID:         enrollment.ID,
			StudentID:  enrollment.StudentID,
			CourseID:   enrollment.CourseID,
			EnrolledAt: enrollment.EnrolledAt,
			IsActive:   enrollment.IsActive,
		})
	}

	return result, nil
}

// StudentEnrollments returns a student's live enrollments
func (s *EnrollmentService) StudentEnrollments(ctx context.Context, studentID int64) ([]models.Enrollment, error) {
	return s.enrollments.ListActiveByStudent(ctx, studentID)
}

// StudentCourses returns the courses a student is enrolled in
func (s *EnrollmentService) StudentCourses(ctx context.Context, studentID int64) ([]models.Course, error) {
	enrollments, err := s.enrollments.ListActiveByStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}

	courses := make([]models.Course, 0, len(enrollments))
	for _, e := range enrollments {
		course, err := s.courses.GetByID(ctx, e.CourseID)
		if err != nil {
			// Deactivated courses drop out of the listing
			continue
		}
		courses = append(courses, *course)
	}
	return courses, nil
}

// CourseEnrollments returns a course's live enrollments; instructors
// see only their own courses.
func (s *EnrollmentService) CourseEnrollments(ctx context.Context, actorID int64, courseID string) ([]models.Enrollment, error) {
	if err := s.authz.CheckPrivilege(ctx, actorID, models.PrivilegeViewEnrollments); err != nil {
		return nil, err
	}

	course, err := s.courses.GetByID(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if err := s.authz.RequireOwnership(ctx, actorID, course.InstructorID); err != nil {
		return nil, err
	}

	return s.enrollments.ListActiveByCourse(ctx, courseID)
}

// InstructorStudents returns the distinct students enrolled across an
// instructor's courses.
func (s *EnrollmentService) InstructorStudents(ctx context.Context, actorID, instructorID int64) ([]models.User, error) {
	if err := s.authz.CheckPrivilege(ctx, actorID, models.PrivilegeViewEnrollments); err != nil {
		return nil, err
	}
	if err := s.authz.RequireOwnership(ctx, actorID, instructorID); err != nil {
		return nil, err
	}

	courses, err := s.courses.ListByInstructor(ctx, instructorID)
	if err != nil {
		return nil, err
	}

	seen := make(map[int64]bool)
	var students []models.User
	for _, course := range courses {
		enrollments, err := s.enrollments.ListActiveByCourse(ctx, course.ID)
		if err != nil {
			return nil, err
		}
		for _, e := range enrollments {
			if seen[e.StudentID] {
				continue
			}
			seen[e.StudentID] = true
			student, err := s.users.GetByID(ctx, e.StudentID)
			if err != nil {
				continue
			}
			students = append(students, *student)
		}
	}
	return students, nil
}

// History returns a student's full enrollment history including
// inactive rows, optionally narrowed to one course.
func (s *EnrollmentService) History(ctx context.Context, studentID int64, courseID *string) ([]models.Enrollment, error) {
	return s.enrollments.History(ctx, studentID, courseID)
}

// Statistics summarizes enrollment activity: lifetime total, the last
// 30 days and a daily histogram for the last 7 days. Windows are
// anchored at UTC midnight; the histogram runs oldest day first.
func (s *EnrollmentService) Statistics(ctx context.Context, filter repositories.EnrollmentFilter) (*dto.EnrollmentStatistics, error) {
	now := s.clock()
	midnight := helpers.MidnightUTC(now)

	total, err := s.enrollments.CountActive(ctx, filter)
	if err != nil {
		return nil, err
	}

	recent, err := s.enrollments.CountActiveSince(ctx, filter, midnight.AddDate(0, 0, -30))
	if err != nil {
		return nil, err
	}

	daily := make([]dto.DailyEnrollmentCount, 0, 7)
	for i := 6; i >= 0; i-- {
		dayStart := midnight.AddDate(0, 0, -i)
		dayEnd := dayStart.AddDate(0, 0, 1)
		count, err := s.enrollments.CountActiveBetween(ctx, filter, dayStart, dayEnd)
		if err != nil {
			return nil, err
		}
		daily = append(daily, dto.DailyEnrollmentCount{
			Date:  dayStart.Format("2006-01-02"),
			Count: count,
		})
	}

	return &dto.EnrollmentStatistics{
		TotalEnrollments:        total,
		RecentEnrollments30Days: recent,
		DailyEnrollments:        daily,
	}, nil
}
