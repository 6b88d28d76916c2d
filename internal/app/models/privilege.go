package models

import "time"

// PrivilegeName is a named capability grantable to an instructor by an
// admin. The set is fixed; values are persisted as strings.
type PrivilegeName string

const (
	PrivilegeCreateCourse           PrivilegeName = "create_course"
	PrivilegeEditCourse             PrivilegeName = "edit_course"
	PrivilegeDeleteCourse           PrivilegeName = "delete_course"
	PrivilegePublishCourse          PrivilegeName = "publish_course"
	PrivilegeArchiveCourse          PrivilegeName = "archive_course"
	PrivilegeSuspendCourse          PrivilegeName = "suspend_course"
	PrivilegeCreateLesson           PrivilegeName = "create_lesson"
	PrivilegeEditLesson             PrivilegeName = "edit_lesson"
	PrivilegeDeleteLesson           PrivilegeName = "delete_lesson"
	PrivilegeManageLessons          PrivilegeName = "manage_lessons"
	PrivilegeCreateAssignment       PrivilegeName = "create_assignment"
	PrivilegeEditAssignment         PrivilegeName = "edit_assignment"
	PrivilegeDeleteAssignment       PrivilegeName = "delete_assignment"
	PrivilegeManageAssignments      PrivilegeName = "manage_assignments"
	PrivilegeGradeAssignments       PrivilegeName = "grade_assignments"
	PrivilegeViewEnrollments        PrivilegeName = "view_enrollments"
	PrivilegeManageStudents         PrivilegeName = "manage_students"
	PrivilegeEnrollStudents         PrivilegeName = "enroll_students"
	PrivilegeUnenrollStudents       PrivilegeName = "unenroll_students"
	PrivilegeUploadContent          PrivilegeName = "upload_content"
	PrivilegeDeleteContent          PrivilegeName = "delete_content"
	PrivilegeManageContent          PrivilegeName = "manage_content"
	PrivilegeViewAnalytics          PrivilegeName = "view_analytics"
	PrivilegeViewReports            PrivilegeName = "view_reports"
	PrivilegeExportData             PrivilegeName = "export_data"
	PrivilegeSendAnnouncements      PrivilegeName = "send_announcements"
	PrivilegeMessageStudents        PrivilegeName = "message_students"
	PrivilegeManageCommunications   PrivilegeName = "manage_communications"
	PrivilegeSetDiscounts           PrivilegeName = "set_discounts"
	PrivilegeViewRevenue            PrivilegeName = "view_revenue"
	PrivilegeManagePricing          PrivilegeName = "manage_pricing"
	PrivilegeManageCourseSettings   PrivilegeName = "manage_course_settings"
	PrivilegeAccessAdvancedFeatures PrivilegeName = "access_advanced_features"
)

var privilegeDescriptions = map[PrivilegeName]string{
	PrivilegeCreateCourse:           "Create new courses",
	PrivilegeEditCourse:             "Edit own courses",
	PrivilegeDeleteCourse:           "Delete own courses",
	PrivilegePublishCourse:          "Publish approved courses",
	PrivilegeArchiveCourse:          "Archive courses",
	PrivilegeSuspendCourse:          "Suspend published courses",
	PrivilegeCreateLesson:           "Create lessons in own courses",
	PrivilegeEditLesson:             "Edit lessons in own courses",
	PrivilegeDeleteLesson:           "Delete lessons from own courses",
	PrivilegeManageLessons:          "Full lesson management in own courses",
	PrivilegeCreateAssignment:       "Create assignments in own courses",
	PrivilegeEditAssignment:         "Edit assignments in own courses",
	PrivilegeDeleteAssignment:       "Delete assignments from own courses",
	PrivilegeManageAssignments:      "Full assignment management in own courses",
	PrivilegeGradeAssignments:       "Grade student assignment submissions",
	PrivilegeViewEnrollments:        "View enrollments in own courses",
	PrivilegeManageStudents:         "Manage students in own courses",
	PrivilegeEnrollStudents:         "Enroll students into own courses",
	PrivilegeUnenrollStudents:       "Remove students from own courses",
	PrivilegeUploadContent:          "Upload course content and media",
	PrivilegeDeleteContent:          "Delete course content and media",
	PrivilegeManageContent:          "Full content management in own courses",
	PrivilegeViewAnalytics:          "View course analytics dashboards",
	PrivilegeViewReports:            "View course reports",
	PrivilegeExportData:             "Export course and enrollment data",
	PrivilegeSendAnnouncements:      "Send announcements to enrolled students",
	PrivilegeMessageStudents:        "Send direct messages to students",
	PrivilegeManageCommunications:   "Manage all course communications",
	PrivilegeSetDiscounts:           "Set discounts on own courses",
	PrivilegeViewRevenue:            "View revenue for own courses",
	PrivilegeManagePricing:          "Manage course pricing",
	PrivilegeManageCourseSettings:   "Manage course settings",
	PrivilegeAccessAdvancedFeatures: "Access advanced platform features",
}

// AllPrivileges returns every valid privilege name with its description
func AllPrivileges() map[PrivilegeName]string {
	out := make(map[PrivilegeName]string, len(privilegeDescriptions))
	for name, desc := range privilegeDescriptions {
		out[name] = desc
	}
	return out
}

// IsValid reports whether the name belongs to the fixed set
func (p PrivilegeName) IsValid() bool {
	_, ok := privilegeDescriptions[p]
	return ok
}

// Description returns the human-readable description of a privilege
func (p PrivilegeName) Description() string {
	return privilegeDescriptions[p]
}

// DefaultInstructorPrivileges is the fixed grant set assigned when an
// instructor account is created.
func DefaultInstructorPrivileges() []PrivilegeName {
	return []PrivilegeName{
		PrivilegeCreateCourse,
		PrivilegeEditCourse,
		PrivilegeDeleteCourse,
		PrivilegeManageLessons,
		PrivilegeViewEnrollments,
		PrivilegeCreateAssignment,
		PrivilegeGradeAssignments,
		PrivilegeUploadContent,
		PrivilegeSendAnnouncements,
		PrivilegeSetDiscounts,
	}
}

// Privilege is a capability grant record. Revocation flips IsActive;
// rows are never physically deleted so grant history survives.
type Privilege struct {
	ID           int64         `json:"id"`
	InstructorID int64         `json:"instructorId"`
	Name         PrivilegeName `json:"privilegeName"`
	Description  string        `json:"description"`
	IsActive     bool          `json:"isActive"`
	AssignedBy   int64         `json:"assignedBy"`
	AssignedAt   time.Time     `json:"assignedAt"`
}
