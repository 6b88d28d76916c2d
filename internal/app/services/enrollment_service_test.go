package services

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oguzk/learnsphere/internal/app/models"
	"github.com/oguzk/learnsphere/internal/app/repositories"
	"github.com/oguzk/learnsphere/internal/pkg/apperrors"
)

const testStudentID = int64(42)

type enrollmentFixture struct {
	svc         *EnrollmentService
	users       *fakeUserStore
	courses     *fakeCourseStore
	enrollments *fakeEnrollmentStore
	authz       *fakeAuthz
}

func newEnrollmentFixture(t *testing.T) *enrollmentFixture {
	t.Helper()

	authz := newFakeAuthz()
	authz.admins[testAdminID] = true
	authz.grant(testInstructorID,
		models.PrivilegeEnrollStudents,
		models.PrivilegeUnenrollStudents,
		models.PrivilegeViewEnrollments,
	)

	users := newFakeUserStore()
	users.add(models.User{ID: testAdminID, Username: "admin", Role: models.RoleAdmin, IsActive: true})
	users.add(models.User{ID: testInstructorID, Username: "teach", Role: models.RoleInstructor, IsActive: true})
	users.add(models.User{ID: testStudentID, Username: "student", Role: models.RoleStudent, IsActive: true})

	courses := newFakeCourseStore()
	enrollments := newFakeEnrollmentStore(courses)

	svc := NewEnrollmentService(users, courses, enrollments, authz, zerolog.Nop())
	return &enrollmentFixture{svc: svc, users: users, courses: courses, enrollments: enrollments, authz: authz}
}

func publishedCourse() models.Course {
	c := draftCourse(1000)
	c.Status = models.StatusPublished
	return c
}

func TestSelfEnrollIntoPublishedCourse(t *testing.T) {
	f := newEnrollmentFixture(t)
	f.courses.add(publishedCourse())

	enrollment, err := f.svc.Enroll(context.Background(), testStudentID, testStudentID, testCourseID)
	require.NoError(t, err)

	assert.Equal(t, testStudentID, enrollment.StudentID)
	assert.Equal(t, testCourseID, enrollment.CourseID)
	assert.True(t, enrollment.IsActive)

	course, err := f.courses.GetByID(context.Background(), testCourseID)
	require.NoError(t, err)
	assert.Equal(t, 1, course.TotalEnrolled)
}

func TestEnrollIntoApprovedCourse(t *testing.T) {
	f := newEnrollmentFixture(t)
	c := draftCourse(1000)
	c.Status = models.StatusApproved
	f.courses.add(c)

	_, err := f.svc.Enroll(context.Background(), testStudentID, testStudentID, testCourseID)
	assert.NoError(t, err)
}

func TestEnrollRejectsNonEnrollableStatuses(t *testing.T) {
	for _, status := range []models.CourseStatus{
		models.StatusDraft,
		models.StatusInReview,
		models.StatusArchived,
		models.StatusSuspended,
		models.StatusRejected,
	} {
		t.Run(string(status), func(t *testing.T) {
			f := newEnrollmentFixture(t)
			c := draftCourse(1000)
			c.Status = status
			f.courses.add(c)

			_, err := f.svc.Enroll(context.Background(), testStudentID, testStudentID, testCourseID)
			assert.ErrorIs(t, err, apperrors.ErrCourseNotEnrollable)
		})
	}
}

func TestEnrollDuplicateConflicts(t *testing.T) {
	f := newEnrollmentFixture(t)
	f.courses.add(publishedCourse())
	ctx := context.Background()

	_, err := f.svc.Enroll(ctx, testStudentID, testStudentID, testCourseID)
	require.NoError(t, err)

	_, err = f.svc.Enroll(ctx, testStudentID, testStudentID, testCourseID)
	assert.ErrorIs(t, err, apperrors.ErrAlreadyEnrolled)
}

func TestEnrollRejectsNonStudents(t *testing.T) {
	f := newEnrollmentFixture(t)
	f.courses.add(publishedCourse())

	_, err := f.svc.Enroll(context.Background(), testAdminID, testInstructorID, testCourseID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestEnrollRejectsInactiveStudent(t *testing.T) {
	f := newEnrollmentFixture(t)
	f.courses.add(publishedCourse())
	f.users.users[testStudentID].IsActive = false

	_, err := f.svc.Enroll(context.Background(), testAdminID, testStudentID, testCourseID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestEnrollOnBehalfNeedsPrivilegeAndOwnership(t *testing.T) {
	f := newEnrollmentFixture(t)
	f.courses.add(publishedCourse())
	ctx := context.Background()

	// Instructor owns the course and holds enroll_students
	_, err := f.svc.Enroll(ctx, testInstructorID, testStudentID, testCourseID)
	require.NoError(t, err)

	// Another instructor with the privilege but no ownership
	other := int64(77)
	f.users.add(models.User{ID: other, Username: "other", Role: models.RoleInstructor, IsActive: true})
	f.authz.grant(other, models.PrivilegeEnrollStudents)

	second := int64(43)
	f.users.add(models.User{ID: second, Username: "student2", Role: models.RoleStudent, IsActive: true})

	_, err = f.svc.Enroll(ctx, other, second, testCourseID)
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)

	// Admin bypasses ownership
	_, err = f.svc.Enroll(ctx, testAdminID, second, testCourseID)
	assert.NoError(t, err)
}

func TestUnenrollKeepsHistoryAndRecounts(t *testing.T) {
	f := newEnrollmentFixture(t)
	f.courses.add(publishedCourse())
	ctx := context.Background()

	_, err := f.svc.Enroll(ctx, testStudentID, testStudentID, testCourseID)
	require.NoError(t, err)

	require.NoError(t, f.svc.Unenroll(ctx, testStudentID, testStudentID, testCourseID))

	course, err := f.courses.GetByID(ctx, testCourseID)
	require.NoError(t, err)
	assert.Equal(t, 0, course.TotalEnrolled)

	history, err := f.svc.History(ctx, testStudentID, nil)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.False(t, history[0].IsActive)

	// Dropping again fails, re-enrolling succeeds
	err = f.svc.Unenroll(ctx, testStudentID, testStudentID, testCourseID)
	assert.ErrorIs(t, err, apperrors.ErrEnrollmentNotFound)

	_, err = f.svc.Enroll(ctx, testStudentID, testStudentID, testCourseID)
	assert.NoError(t, err)
}

func TestBulkEnrollSkipsFailedRows(t *testing.T) {
	f := newEnrollmentFixture(t)
	f.courses.add(publishedCourse())
	ctx := context.Background()

	second := int64(43)
	f.users.add(models.User{ID: second, Username: "student2", Role: models.RoleStudent, IsActive: true})

	// testStudentID is already enrolled, 999 does not exist
	_, err := f.svc.Enroll(ctx, testStudentID, testStudentID, testCourseID)
	require.NoError(t, err)

	result, err := f.svc.BulkEnroll(ctx, testInstructorID, testCourseID, []int64{testStudentID, second, 999})
	require.NoError(t, err)

	require.Len(t, result.Enrolled, 1)
	assert.Equal(t, second, result.Enrolled[0].StudentID)
	assert.ElementsMatch(t, []int64{testStudentID, 999}, result.Failed)
}

func TestCourseEnrollmentsOwnershipGate(t *testing.T) {
	f := newEnrollmentFixture(t)
	f.courses.add(publishedCourse())
	ctx := context.Background()

	other := int64(77)
	f.users.add(models.User{ID: other, Username: "other", Role: models.RoleInstructor, IsActive: true})
	f.authz.grant(other, models.PrivilegeViewEnrollments)

	_, err := f.svc.CourseEnrollments(ctx, other, testCourseID)
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)

	_, err = f.svc.CourseEnrollments(ctx, testInstructorID, testCourseID)
	assert.NoError(t, err)
}

func TestInstructorStudentsDeduplicates(t *testing.T) {
	f := newEnrollmentFixture(t)
	ctx := context.Background()

	first := publishedCourse()
	second := publishedCourse()
	second.ID = "7b0d6a2e-3f6e-4a5e-9d2c-222222222222"
	f.courses.add(first)
	f.courses.add(second)

	_, err := f.svc.Enroll(ctx, testStudentID, testStudentID, first.ID)
	require.NoError(t, err)
	_, err = f.svc.Enroll(ctx, testStudentID, testStudentID, second.ID)
	require.NoError(t, err)

	students, err := f.svc.InstructorStudents(ctx, testInstructorID, testInstructorID)
	require.NoError(t, err)
	require.Len(t, students, 1)
	assert.Equal(t, testStudentID, students[0].ID)
}

func TestEnrollmentStatisticsWindows(t *testing.T) {
	f := newEnrollmentFixture(t)
	f.courses.add(publishedCourse())

	now := time.Date(2026, 8, 28, 15, 30, 0, 0, time.UTC)
	f.svc.WithClock(func() time.Time { return now })

	// Seed enrollments at controlled instants
	seed := func(id int64, at time.Time) {
		f.enrollments.enrollments = append(f.enrollments.enrollments, models.Enrollment{
			ID:         id,
			StudentID:  id,
			CourseID:   testCourseID,
			EnrolledAt: at,
			IsActive:   true,
		})
	}
	midnight := time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)
	// today, 3 days ago, outside the 7-day histogram, outside the
	// 30-day window
	seed(1, midnight.Add(2*time.Hour))
	seed(2, midnight.AddDate(0, 0, -3).Add(time.Hour))
	seed(3, midnight.AddDate(0, 0, -10))
	seed(4, midnight.AddDate(0, 0, -40))

	stats, err := f.svc.Statistics(context.Background(), repositories.EnrollmentFilter{})
	require.NoError(t, err)

	assert.Equal(t, 4, stats.TotalEnrollments)
	assert.Equal(t, 3, stats.RecentEnrollments30Days)

	require.Len(t, stats.DailyEnrollments, 7)
	assert.Equal(t, "2026-08-22", stats.DailyEnrollments[0].Date, "histogram runs oldest day first")
	assert.Equal(t, "2026-08-28", stats.DailyEnrollments[6].Date)

	counted := 0
	for _, day := range stats.DailyEnrollments {
		counted += day.Count
	}
	assert.Equal(t, 2, counted)
	assert.Equal(t, 1, stats.DailyEnrollments[6].Count)
	assert.Equal(t, 1, stats.DailyEnrollments[3].Count)
}

func TestEnrollmentStatisticsFilteredByCourse(t *testing.T) {
	f := newEnrollmentFixture(t)
	first := publishedCourse()
	second := publishedCourse()
	second.ID = "7b0d6a2e-3f6e-4a5e-9d2c-222222222222"
	second.InstructorID = 77
	f.courses.add(first)
	f.courses.add(second)
	ctx := context.Background()

	_, err := f.svc.Enroll(ctx, testStudentID, testStudentID, first.ID)
	require.NoError(t, err)
	_, err = f.svc.Enroll(ctx, testStudentID, testStudentID, second.ID)
	require.NoError(t, err)

	stats, err := f.svc.Statistics(ctx, repositories.EnrollmentFilter{CourseID: &first.ID})
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalEnrollments)

	instructorID := testInstructorID
	stats, err = f.svc.Statistics(ctx, repositories.EnrollmentFilter{InstructorID: &instructorID})
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalEnrollments)
}
