package services

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oguzk/learnsphere/internal/app/models"
	"github.com/oguzk/learnsphere/internal/app/models/dto"
	"github.com/oguzk/learnsphere/internal/pkg/apperrors"
)

const (
	testInstructorID = int64(10)
	testAdminID      = int64(1)
	testCourseID     = "7b0d6a2e-3f6e-4a5e-9d2c-111111111111"
)

func newCourseFixture(t *testing.T) (*CourseService, *fakeCourseStore, *fakeEnrollmentStore, *fakeAuthz) {
	t.Helper()

	authz := newFakeAuthz()
	authz.admins[testAdminID] = true
	authz.grant(testInstructorID,
		models.PrivilegeCreateCourse,
		models.PrivilegeEditCourse,
		models.PrivilegeDeleteCourse,
		models.PrivilegePublishCourse,
		models.PrivilegeSuspendCourse,
		models.PrivilegeArchiveCourse,
		models.PrivilegeSetDiscounts,
	)

	courses := newFakeCourseStore()
	enrollments := newFakeEnrollmentStore(courses)
	svc := NewCourseService(courses, enrollments, authz, nil, zerolog.Nop())
	return svc, courses, enrollments, authz
}

func draftCourse(fee int64) models.Course {
	return models.Course{
		ID:           testCourseID,
		Title:        "Intro to Distributed Systems",
		InstructorID: testInstructorID,
		Fee:          fee,
		Status:       models.StatusDraft,
		IsActive:     true,
	}
}

func TestCreateCourseStartsAsDraft(t *testing.T) {
	svc, _, _, _ := newCourseFixture(t)

	course, err := svc.CreateCourse(context.Background(), testInstructorID, dto.CreateCourseRequest{
		Title: "Go for Backend Engineers",
		Fee:   4900,
	})
	require.NoError(t, err)

	assert.Equal(t, models.StatusDraft, course.Status)
	assert.Equal(t, testInstructorID, course.InstructorID)
	assert.NotEmpty(t, course.ID)
	assert.True(t, course.IsActive)
}

func TestCreateCourseWithoutPrivilege(t *testing.T) {
	svc, _, _, _ := newCourseFixture(t)

	_, err := svc.CreateCourse(context.Background(), int64(99), dto.CreateCourseRequest{
		Title: "Unauthorized Course",
		Fee:   100,
	})
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
}

func TestCreateCourseRejectsBadInput(t *testing.T) {
	svc, _, _, _ := newCourseFixture(t)
	ctx := context.Background()

	_, err := svc.CreateCourse(ctx, testInstructorID, dto.CreateCourseRequest{Title: "ab", Fee: 100})
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	_, err = svc.CreateCourse(ctx, testInstructorID, dto.CreateCourseRequest{Title: "Valid Title", Fee: -1})
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
}

func TestTransitionTable(t *testing.T) {
	tests := []struct {
		name    string
		actorID int64
		from    models.CourseStatus
		action  models.LifecycleAction
		want    models.CourseStatus
		wantErr error
	}{
		{"submit from draft", testInstructorID, models.StatusDraft, models.ActionSubmitForReview, models.StatusInReview, nil},
		{"submit from rejected", testInstructorID, models.StatusRejected, models.ActionSubmitForReview, models.StatusInReview, nil},
		{"approve from review", testAdminID, models.StatusInReview, models.ActionApprove, models.StatusApproved, nil},
		{"reject from review", testAdminID, models.StatusInReview, models.ActionReject, models.StatusRejected, nil},
		{"publish approved", testInstructorID, models.StatusApproved, models.ActionPublish, models.StatusPublished, nil},
		{"publish suspended", testInstructorID, models.StatusSuspended, models.ActionPublish, models.StatusPublished, nil},
		{"suspend published", testInstructorID, models.StatusPublished, models.ActionSuspend, models.StatusSuspended, nil},
		{"archive published", testInstructorID, models.StatusPublished, models.ActionArchive, models.StatusArchived, nil},
		{"archive approved", testInstructorID, models.StatusApproved, models.ActionArchive, models.StatusArchived, nil},
		{"submit from published", testInstructorID, models.StatusPublished, models.ActionSubmitForReview, "", apperrors.ErrInvalidTransition},
		{"approve from draft", testAdminID, models.StatusDraft, models.ActionApprove, "", apperrors.ErrInvalidTransition},
		{"publish draft", testInstructorID, models.StatusDraft, models.ActionPublish, "", apperrors.ErrInvalidTransition},
		{"suspend approved", testInstructorID, models.StatusApproved, models.ActionSuspend, "", apperrors.ErrInvalidTransition},
		{"archive archived", testInstructorID, models.StatusArchived, models.ActionArchive, "", apperrors.ErrInvalidTransition},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, courses, _, _ := newCourseFixture(t)
			c := draftCourse(1000)
			c.Status = tt.from
			courses.add(c)

			course, err := svc.Transition(context.Background(), tt.actorID, testCourseID, tt.action)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				stored, getErr := courses.GetByID(context.Background(), testCourseID)
				require.NoError(t, getErr)
				assert.Equal(t, tt.from, stored.Status, "a failed transition must not move the course")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, course.Status)
		})
	}
}

func TestApproveRequiresAdmin(t *testing.T) {
	svc, courses, _, _ := newCourseFixture(t)
	c := draftCourse(1000)
	c.Status = models.StatusInReview
	courses.add(c)

	_, err := svc.Transition(context.Background(), testInstructorID, testCourseID, models.ActionApprove)
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
}

func TestTransitionRequiresOwnership(t *testing.T) {
	svc, courses, _, authz := newCourseFixture(t)
	otherInstructor := int64(33)
	authz.grant(otherInstructor, models.PrivilegePublishCourse)

	c := draftCourse(1000)
	c.Status = models.StatusApproved
	courses.add(c)

	_, err := svc.Transition(context.Background(), otherInstructor, testCourseID, models.ActionPublish)
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
}

func TestCurrentFeeDiscountWindow(t *testing.T) {
	start := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)
	discounted := int64(750)

	tests := []struct {
		name       string
		now        time.Time
		wantActive bool
		wantFee    int64
	}{
		{"before window", start.Add(-time.Second), false, 1000},
		{"at start", start, true, 750},
		{"inside window", start.AddDate(0, 0, 15), true, 750},
		{"at end", end, true, 750},
		{"after end", end.Add(time.Second), false, 1000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, courses, _, _ := newCourseFixture(t)
			c := draftCourse(1000)
			c.DiscountedFee = &discounted
			c.DiscountStartDate = &start
			c.DiscountEndDate = &end
			courses.add(c)
			svc.WithClock(func() time.Time { return tt.now })

			info, err := svc.CurrentFee(context.Background(), testCourseID)
			require.NoError(t, err)
			assert.Equal(t, tt.wantActive, info.IsDiscountActive)
			assert.Equal(t, tt.wantFee, info.CurrentFee)
			assert.Equal(t, int64(1000), info.OriginalFee)
		})
	}
}

func TestDiscountPercentageRounding(t *testing.T) {
	start := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		fee        int64
		discounted int64
		want       float64
	}{
		{"one third off", 300, 200, 33.33},
		{"half off", 1000, 500, 50},
		{"two thirds off", 300, 100, 66.67},
		{"free course", 0, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			course := draftCourse(tt.fee)
			if tt.fee > 0 {
				course.DiscountedFee = &tt.discounted
				course.DiscountStartDate = &start
				course.DiscountEndDate = &end
			}

			info := feeInfoAt(&course, start.AddDate(0, 0, 10))
			assert.Equal(t, tt.want, info.DiscountPercentage)
		})
	}
}

func TestSetDiscountValidation(t *testing.T) {
	start := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 9, 30, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		req  dto.SetDiscountRequest
	}{
		{"negative fee", dto.SetDiscountRequest{DiscountedFee: -1, StartDate: start, EndDate: end}},
		{"equal to fee", dto.SetDiscountRequest{DiscountedFee: 1000, StartDate: start, EndDate: end}},
		{"above fee", dto.SetDiscountRequest{DiscountedFee: 1200, StartDate: start, EndDate: end}},
		{"empty window", dto.SetDiscountRequest{DiscountedFee: 500, StartDate: end, EndDate: start}},
		{"zero window", dto.SetDiscountRequest{DiscountedFee: 500, StartDate: start, EndDate: start}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, courses, _, _ := newCourseFixture(t)
			courses.add(draftCourse(1000))

			_, err := svc.SetDiscount(context.Background(), testInstructorID, testCourseID, tt.req)
			assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
		})
	}
}

func TestSetAndRemoveDiscount(t *testing.T) {
	svc, courses, _, _ := newCourseFixture(t)
	courses.add(draftCourse(1000))
	ctx := context.Background()

	start := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 9, 30, 0, 0, 0, 0, time.UTC)

	course, err := svc.SetDiscount(ctx, testInstructorID, testCourseID, dto.SetDiscountRequest{
		DiscountedFee: 600,
		StartDate:     start,
		EndDate:       end,
	})
	require.NoError(t, err)
	require.NotNil(t, course.DiscountedFee)
	assert.Equal(t, int64(600), *course.DiscountedFee)

	course, err = svc.RemoveDiscount(ctx, testInstructorID, testCourseID)
	require.NoError(t, err)
	assert.Nil(t, course.DiscountedFee)
	assert.Nil(t, course.DiscountStartDate)
	assert.Nil(t, course.DiscountEndDate)
}

func TestStatusSummary(t *testing.T) {
	svc, courses, _, _ := newCourseFixture(t)

	statuses := []models.CourseStatus{
		models.StatusDraft, models.StatusDraft,
		models.StatusPublished,
		models.StatusArchived,
	}
	for i, status := range statuses {
		c := draftCourse(100)
		c.ID = testCourseID[:len(testCourseID)-1] + string(rune('a'+i))
		c.Status = status
		courses.add(c)
	}

	summary, err := svc.StatusSummary(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, 4, summary.Total)
	assert.Equal(t, 2, summary.Counts[string(models.StatusDraft)])
	assert.Equal(t, 1, summary.Counts[string(models.StatusPublished)])
	assert.Equal(t, 1, summary.Counts[string(models.StatusArchived)])
}

func TestSearchValidation(t *testing.T) {
	svc, _, _, _ := newCourseFixture(t)
	ctx := context.Background()

	_, _, err := svc.Search(ctx, dto.CourseSearchRequest{Status: "galactic"}, 1, 10)
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	minFee, maxFee := int64(500), int64(100)
	_, _, err = svc.Search(ctx, dto.CourseSearchRequest{MinFee: &minFee, MaxFee: &maxFee}, 1, 10)
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
}

func TestDeleteCourseSoftDeletes(t *testing.T) {
	svc, courses, _, _ := newCourseFixture(t)
	courses.add(draftCourse(100))
	ctx := context.Background()

	require.NoError(t, svc.DeleteCourse(ctx, testInstructorID, testCourseID))

	_, err := svc.GetCourse(ctx, testCourseID)
	assert.ErrorIs(t, err, apperrors.ErrCourseNotFound)
}
