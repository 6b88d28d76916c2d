package models

import "time"

// CourseStatus is the lifecycle state of a course
type CourseStatus string

const (
	StatusDraft     CourseStatus = "draft"
	StatusInReview  CourseStatus = "in_review"
	StatusApproved  CourseStatus = "approved"
	StatusPublished CourseStatus = "published"
	StatusArchived  CourseStatus = "archived"
	StatusSuspended CourseStatus = "suspended"
	StatusRejected  CourseStatus = "rejected"
)

// ParseCourseStatus validates a status string
func ParseCourseStatus(s string) (CourseStatus, bool) {
	switch CourseStatus(s) {
	case StatusDraft, StatusInReview, StatusApproved, StatusPublished,
		StatusArchived, StatusSuspended, StatusRejected:
		return CourseStatus(s), true
	}
	return "", false
}

// LifecycleAction is a named transition on the course state machine
type LifecycleAction string

const (
	ActionSubmitForReview LifecycleAction = "submit_for_review"
	ActionApprove         LifecycleAction = "approve"
	ActionReject          LifecycleAction = "reject"
	ActionPublish         LifecycleAction = "publish"
	ActionSuspend         LifecycleAction = "suspend"
	ActionArchive         LifecycleAction = "archive"
)

// transitions maps each action to the statuses it may start from and
// the status it lands in. Any pair not listed here is illegal.
var transitions = map[LifecycleAction]struct {
	from   []CourseStatus
	target CourseStatus
}{
	ActionSubmitForReview: {from: []CourseStatus{StatusDraft, StatusRejected}, target: StatusInReview},
	ActionApprove:         {from: []CourseStatus{StatusInReview}, target: StatusApproved},
	ActionReject:          {from: []CourseStatus{StatusInReview}, target: StatusRejected},
	ActionPublish:         {from: []CourseStatus{StatusApproved, StatusSuspended}, target: StatusPublished},
	ActionSuspend:         {from: []CourseStatus{StatusPublished}, target: StatusSuspended},
	ActionArchive:         {from: []CourseStatus{StatusPublished, StatusSuspended, StatusApproved}, target: StatusArchived},
}

// CanTransition reports whether action is legal from the given status
func CanTransition(action LifecycleAction, from CourseStatus) bool {
	t, ok := transitions[action]
	if !ok {
		return false
	}
	for _, s := range t.from {
		if s == from {
			return true
		}
	}
	return false
}

// TransitionTarget returns the status an action lands in
func TransitionTarget(action LifecycleAction) (CourseStatus, bool) {
	t, ok := transitions[action]
	if !ok {
		return "", false
	}
	return t.target, true
}

// EnrollableStatuses lists the statuses in which a course accepts
// enrollments
func EnrollableStatuses() []CourseStatus {
	return []CourseStatus{StatusPublished, StatusApproved}
}

// IsEnrollable reports whether a course in this status accepts
// enrollments
func (s CourseStatus) IsEnrollable() bool {
	return s == StatusPublished || s == StatusApproved
}

// Course represents a course offering
type Course struct {
	ID                string       `json:"id"`
	Title             string       `json:"title"`
	Description       string       `json:"description"`
	InstructorID      int64        `json:"instructorId"`
	BannerImage       *string      `json:"bannerImage,omitempty"`
	Fee               int64        `json:"fee"`
	DiscountedFee     *int64       `json:"discountedFee,omitempty"`
	DiscountStartDate *time.Time   `json:"discountStartDate,omitempty"`
	DiscountEndDate   *time.Time   `json:"discountEndDate,omitempty"`
	TotalEnrolled     int          `json:"totalEnrolled"`
	Status            CourseStatus `json:"status"`
	IsActive          bool         `json:"isActive"`
	CreatedAt         time.Time    `json:"createdAt"`
	UpdatedAt         time.Time    `json:"updatedAt"`
}

// HasDiscountWindow reports whether all three discount fields are set.
// The fields are kept all-or-none.
func (c *Course) HasDiscountWindow() bool {
	return c.DiscountedFee != nil && c.DiscountStartDate != nil && c.DiscountEndDate != nil
}
