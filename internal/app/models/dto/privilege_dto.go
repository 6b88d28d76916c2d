package dto

import "time"

// AssignPrivilegeRequest grants one privilege to an instructor
type AssignPrivilegeRequest struct {
	InstructorID  int64  `json:"instructorId" binding:"required" example:"7"`
	PrivilegeName string `json:"privilegeName" binding:"required" example:"create_course"`
	Description   string `json:"description,omitempty"`
}

// RevokePrivilegeRequest revokes one privilege from an instructor
type RevokePrivilegeRequest struct {
	InstructorID  int64  `json:"instructorId" binding:"required" example:"7"`
	PrivilegeName string `json:"privilegeName" binding:"required" example:"create_course"`
}

// BulkPrivilegeRequest assigns or revokes several privileges at once
type BulkPrivilegeRequest struct {
	InstructorID   int64    `json:"instructorId" binding:"required" example:"7"`
	PrivilegeNames []string `json:"privilegeNames" binding:"required,min=1"`
}

// PrivilegeResponse is the public view of a privilege grant
type PrivilegeResponse struct {
	ID            int64     `json:"id"`
	InstructorID  int64     `json:"instructorId"`
	PrivilegeName string    `json:"privilegeName"`
	Description   string    `json:"description"`
	IsActive      bool      `json:"isActive"`
	AssignedBy    int64     `json:"assignedBy"`
	AssignedAt    time.Time `json:"assignedAt"`
}

// BulkPrivilegeResult reports which names were applied and which were
// skipped
type BulkPrivilegeResult struct {
	Applied []string `json:"applied"`
	Skipped []string `json:"skipped"`
}

// PrivilegeCatalogEntry describes one assignable privilege
type PrivilegeCatalogEntry struct {
	Name        string `json:"name" example:"create_course"`
	Description string `json:"description" example:"Create new courses"`
}
