package repositories

import (
	"github.com/oguzk/learnsphere/internal/db"
)

// Repositories bundles all repository instances for dependency
// injection.
type Repositories struct {
	User       *UserRepository
	Course     *CourseRepository
	Enrollment *EnrollmentRepository
	Privilege  *PrivilegeRepository
	Token      *TokenRepository
}

// NewRepositories creates all repositories over one database handle
func NewRepositories(database *db.PostgresDB) *Repositories {
	return &Repositories{
		User:       NewUserRepository(database.Pool),
		Course:     NewCourseRepository(database.Pool),
		Enrollment: NewEnrollmentRepository(database),
		Privilege:  NewPrivilegeRepository(database.Pool),
		Token:      NewTokenRepository(database.Pool),
	}
}
