package dto

import "time"

// CreateCourseRequest is the payload for creating a course
type CreateCourseRequest struct {
	Title       string `json:"title" binding:"required,min=3,max=200" example:"Intro to Go"`
	Description string `json:"description" binding:"required" example:"A first course on Go"`
	Fee         int64  `json:"fee" binding:"min=0" example:"49900"`
}

// UpdateCourseRequest is the payload for editing course content fields
type UpdateCourseRequest struct {
	Title       *string `json:"title,omitempty" binding:"omitempty,min=3,max=200"`
	Description *string `json:"description,omitempty"`
	Fee         *int64  `json:"fee,omitempty" binding:"omitempty,min=0"`
}

// SetDiscountRequest is the payload for opening a discount window
type SetDiscountRequest struct {
	DiscountedFee int64     `json:"discountedFee" binding:"min=0" example:"29900"`
	StartDate     time.Time `json:"startDate" binding:"required"`
	EndDate       time.Time `json:"endDate" binding:"required"`
}

// FeeInfo describes the fee of a course at a point in time
type FeeInfo struct {
	OriginalFee        int64      `json:"originalFee" example:"49900"`
	CurrentFee         int64      `json:"currentFee" example:"29900"`
	DiscountedFee      *int64     `json:"discountedFee,omitempty"`
	IsDiscountActive   bool       `json:"isDiscountActive" example:"true"`
	DiscountStartDate  *time.Time `json:"discountStartDate,omitempty"`
	DiscountEndDate    *time.Time `json:"discountEndDate,omitempty"`
	DiscountPercentage float64    `json:"discountPercentage" example:"40.08"`
}

// CourseSearchRequest carries search filters; all filters are
// conjunctive.
type CourseSearchRequest struct {
	Query  string `form:"q"`
	Status string `form:"status"`
	MinFee *int64 `form:"minFee"`
	MaxFee *int64 `form:"maxFee"`
}

// CourseStatistics summarizes one course
type CourseStatistics struct {
	CourseID                string  `json:"courseId"`
	Title                   string  `json:"title"`
	Status                  string  `json:"status"`
	TotalEnrolled           int     `json:"totalEnrolled"`
	RecentEnrollments30Days int     `json:"recentEnrollments30Days"`
	Fee                     FeeInfo `json:"fee"`
}

// StatusSummary counts courses per lifecycle status
type StatusSummary struct {
	Counts map[string]int `json:"counts"`
	Total  int            `json:"total"`
}
