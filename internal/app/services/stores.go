package services

import (
	"context"
	"time"

	"github.com/oguzk/learnsphere/internal/app/models"
	"github.com/oguzk/learnsphere/internal/app/repositories"
)

// Clock supplies the current time; injectable so fee windows and
// statistics buckets are testable.
type Clock func() time.Time

// Authorizer is the explicit guard called at the start of every
// mutating operation.
type Authorizer interface {
	CheckPrivilege(ctx context.Context, userID int64, action models.PrivilegeName) error
	RequireOwnership(ctx context.Context, userID, ownerID int64) error
	RequireAdmin(ctx context.Context, userID int64) error
}

// UserStore is the user persistence surface the services consume.
// Implemented by repositories.UserRepository.
type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	UsernameExists(ctx context.Context, username string) (bool, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	List(ctx context.Context, role *models.Role, offset uint64, limit int) ([]models.User, int64, error)
	FirstAdminID(ctx context.Context) (int64, error)
	Deactivate(ctx context.Context, id int64) error
	Delete(ctx context.Context, id int64) error
}

// CourseStore is the course persistence surface.
// Implemented by repositories.CourseRepository.
type CourseStore interface {
	Create(ctx context.Context, course *models.Course) error
	GetByID(ctx context.Context, id string) (*models.Course, error)
	Update(ctx context.Context, course *models.Course) error
	UpdateStatus(ctx context.Context, id string, status models.CourseStatus) error
	SetDiscount(ctx context.Context, id string, discountedFee int64, start, end time.Time) error
	ClearDiscount(ctx context.Context, id string) error
	UpdateBanner(ctx context.Context, id string, bannerPath *string) error
	Deactivate(ctx context.Context, id string) error
	ListByInstructor(ctx context.Context, instructorID int64) ([]models.Course, error)
	ListByStatus(ctx context.Context, status models.CourseStatus) ([]models.Course, error)
	ListEnrollable(ctx context.Context) ([]models.Course, error)
	Search(ctx context.Context, filters repositories.CourseFilters, offset uint64, limit int) ([]models.Course, int64, error)
	StatusSummary(ctx context.Context, instructorID *int64) (map[models.CourseStatus]int, error)
}

// EnrollmentStore is the enrollment persistence surface. Create and
// Deactivate are transactional with the course counter recount.
// Implemented by repositories.EnrollmentRepository.
type EnrollmentStore interface {
	Create(ctx context.Context, enrollment *models.Enrollment) error
	Deactivate(ctx context.Context, studentID int64, courseID string) error
	ActiveExists(ctx context.Context, studentID int64, courseID string) (bool, error)
	ListActiveByStudent(ctx context.Context, studentID int64) ([]models.Enrollment, error)
	ListActiveByCourse(ctx context.Context, courseID string) ([]models.Enrollment, error)
	History(ctx context.Context, studentID int64, courseID *string) ([]models.Enrollment, error)
	CountActive(ctx context.Context, filter repositories.EnrollmentFilter) (int, error)
	CountActiveSince(ctx context.Context, filter repositories.EnrollmentFilter, since time.Time) (int, error)
	CountActiveBetween(ctx context.Context, filter repositories.EnrollmentFilter, from, to time.Time) (int, error)
}

// PrivilegeStore is the privilege grant persistence surface.
// Implemented by repositories.PrivilegeRepository.
type PrivilegeStore interface {
	Create(ctx context.Context, privilege *models.Privilege) error
	Revoke(ctx context.Context, instructorID int64, name models.PrivilegeName) error
	ActiveExists(ctx context.Context, instructorID int64, name models.PrivilegeName) (bool, error)
	GrantSet(ctx context.Context, instructorID int64) (map[models.PrivilegeName]struct{}, error)
	ListActiveByInstructor(ctx context.Context, instructorID int64) ([]models.Privilege, error)
	ListActive(ctx context.Context) ([]models.Privilege, error)
	ListActiveByAdmin(ctx context.Context, adminID int64) ([]models.Privilege, error)
}

// TokenStore is the refresh token persistence surface.
// Implemented by repositories.TokenRepository.
type TokenStore interface {
	CreateToken(ctx context.Context, token string, userID int64, expiryDate time.Time) error
	GetTokenByValue(ctx context.Context, token string) (int64, time.Time, error)
	RevokeToken(ctx context.Context, token string) error
	RevokeAllUserTokens(ctx context.Context, userID int64) error
}
