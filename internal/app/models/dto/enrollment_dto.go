package dto

import "time"

// EnrollRequest enrolls a specific student, used by privileged callers
type EnrollRequest struct {
	StudentID int64 `json:"studentId" binding:"required" example:"42"`
}

// BulkEnrollRequest enrolls several students into one course
type BulkEnrollRequest struct {
	StudentIDs []int64 `json:"studentIds" binding:"required,min=1"`
}

// EnrollmentResponse is the public view of an enrollment
type EnrollmentResponse struct {
	ID         int64     `json:"id"`
	StudentID  int64     `json:"studentId"`
	CourseID   string    `json:"courseId"`
	EnrolledAt time.Time `json:"enrolledAt"`
	IsActive   bool      `json:"isActive"`
}

// BulkEnrollResult reports which rows succeeded
type BulkEnrollResult struct {
	Enrolled []EnrollmentResponse `json:"enrolled"`
	Failed   []int64              `json:"failed"`
}

// DailyEnrollmentCount is one bucket of the 7-day histogram
type DailyEnrollmentCount struct {
	Date  string `json:"date" example:"2026-08-21"`
	Count int    `json:"count" example:"3"`
}

// EnrollmentStatistics summarizes enrollment activity
type EnrollmentStatistics struct {
	TotalEnrollments        int                    `json:"totalEnrollments"`
	RecentEnrollments30Days int                    `json:"recentEnrollments30Days"`
	DailyEnrollments        []DailyEnrollmentCount `json:"dailyEnrollments"`
}
