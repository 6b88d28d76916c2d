package models

import "time"

// Enrollment links a student to a course. Unenrollment flips IsActive;
// inactive rows are kept as history.
type Enrollment struct {
	ID         int64     `json:"id"`
	StudentID  int64     `json:"studentId"`
	CourseID   string    `json:"courseId"`
	EnrolledAt time.Time `json:"enrolledAt"`
	IsActive   bool      `json:"isActive"`
}
