package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseCourseStatus(t *testing.T) {
	for _, valid := range []string{"draft", "in_review", "approved", "published", "archived", "suspended", "rejected"} {
		status, ok := ParseCourseStatus(valid)
		assert.True(t, ok, valid)
		assert.Equal(t, CourseStatus(valid), status)
	}

	for _, invalid := range []string{"", "Draft", "live", "in-review"} {
		_, ok := ParseCourseStatus(invalid)
		assert.False(t, ok, invalid)
	}
}

func TestCanTransitionCoversEveryPair(t *testing.T) {
	legal := map[LifecycleAction][]CourseStatus{
		ActionSubmitForReview: {StatusDraft, StatusRejected},
		ActionApprove:         {StatusInReview},
		ActionReject:          {StatusInReview},
		ActionPublish:         {StatusApproved, StatusSuspended},
		ActionSuspend:         {StatusPublished},
		ActionArchive:         {StatusPublished, StatusSuspended, StatusApproved},
	}

	allStatuses := []CourseStatus{
		StatusDraft, StatusInReview, StatusApproved, StatusPublished,
		StatusArchived, StatusSuspended, StatusRejected,
	}

	for action, froms := range legal {
		allowed := make(map[CourseStatus]bool, len(froms))
		for _, from := range froms {
			allowed[from] = true
		}
		for _, status := range allStatuses {
			got := CanTransition(action, status)
			assert.Equalf(t, allowed[status], got, "%s from %s", action, status)
		}
	}
}

func TestCanTransitionUnknownAction(t *testing.T) {
	assert.False(t, CanTransition(LifecycleAction("explode"), StatusDraft))
}

func TestTransitionTarget(t *testing.T) {
	tests := []struct {
		action LifecycleAction
		want   CourseStatus
	}{
		{ActionSubmitForReview, StatusInReview},
		{ActionApprove, StatusApproved},
		{ActionReject, StatusRejected},
		{ActionPublish, StatusPublished},
		{ActionSuspend, StatusSuspended},
		{ActionArchive, StatusArchived},
	}
	for _, tt := range tests {
		target, ok := TransitionTarget(tt.action)
		assert.True(t, ok)
		assert.Equal(t, tt.want, target)
	}

	_, ok := TransitionTarget(LifecycleAction("explode"))
	assert.False(t, ok)
}

func TestIsEnrollable(t *testing.T) {
	assert.True(t, StatusPublished.IsEnrollable())
	assert.True(t, StatusApproved.IsEnrollable())

	for _, status := range []CourseStatus{StatusDraft, StatusInReview, StatusArchived, StatusSuspended, StatusRejected} {
		assert.Falsef(t, status.IsEnrollable(), "%s", status)
	}

	assert.ElementsMatch(t, []CourseStatus{StatusPublished, StatusApproved}, EnrollableStatuses())
}

func TestHasDiscountWindow(t *testing.T) {
	fee := int64(500)
	start := time.Now()
	end := start.AddDate(0, 1, 0)

	course := Course{}
	assert.False(t, course.HasDiscountWindow())

	course.DiscountedFee = &fee
	assert.False(t, course.HasDiscountWindow(), "a partial window does not count")

	course.DiscountStartDate = &start
	course.DiscountEndDate = &end
	assert.True(t, course.HasDiscountWindow())
}
