package services

import (
	"context"
	"time"

	"github.com/oguzk/learnsphere/internal/app/models"
	"github.com/oguzk/learnsphere/internal/app/repositories"
	"github.com/oguzk/learnsphere/internal/pkg/apperrors"
)

// In-memory store fakes. They mirror the repository semantics the
// services rely on, including the partial-unique-index conflicts and
// the enrollment counter recount.

type fakeAuthz struct {
	admins map[int64]bool
	grants map[int64]map[models.PrivilegeName]bool
}

func newFakeAuthz() *fakeAuthz {
	return &fakeAuthz{
		admins: make(map[int64]bool),
		grants: make(map[int64]map[models.PrivilegeName]bool),
	}
}

func (f *fakeAuthz) grant(userID int64, names ...models.PrivilegeName) {
	if f.grants[userID] == nil {
		f.grants[userID] = make(map[models.PrivilegeName]bool)
	}
	for _, name := range names {
		f.grants[userID][name] = true
	}
}

func (f *fakeAuthz) CheckPrivilege(_ context.Context, userID int64, action models.PrivilegeName) error {
	if f.admins[userID] || f.grants[userID][action] {
		return nil
	}
	return apperrors.NewForbiddenError("privilege '" + string(action) + "' is required")
}

func (f *fakeAuthz) RequireOwnership(_ context.Context, userID, ownerID int64) error {
	if f.admins[userID] || userID == ownerID {
		return nil
	}
	return apperrors.NewForbiddenError("resource belongs to another user")
}

func (f *fakeAuthz) RequireAdmin(_ context.Context, userID int64) error {
	if f.admins[userID] {
		return nil
	}
	return apperrors.NewForbiddenError("admin role is required")
}

type fakeUserStore struct {
	users  map[int64]*models.User
	nextID int64
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: make(map[int64]*models.User), nextID: 1}
}

func (f *fakeUserStore) add(user models.User) *models.User {
	if user.ID == 0 {
		user.ID = f.nextID
	}
	if user.ID >= f.nextID {
		f.nextID = user.ID + 1
	}
	stored := user
	f.users[stored.ID] = &stored
	return &stored
}

func (f *fakeUserStore) Create(_ context.Context, user *models.User) error {
	for _, u := range f.users {
		if u.Username == user.Username {
			return apperrors.ErrUsernameAlreadyExists
		}
		if u.Email == user.Email {
			return apperrors.ErrEmailAlreadyExists
		}
	}
	user.ID = f.nextID
	f.nextID++
	stored := *user
	f.users[user.ID] = &stored
	return nil
}

func (f *fakeUserStore) GetByID(_ context.Context, id int64) (*models.User, error) {
	user, ok := f.users[id]
	if !ok {
		return nil, apperrors.ErrUserNotFound
	}
	copied := *user
	return &copied, nil
}

func (f *fakeUserStore) GetByUsername(_ context.Context, username string) (*models.User, error) {
	for _, u := range f.users {
		if u.Username == username {
			copied := *u
			return &copied, nil
		}
	}
	return nil, apperrors.ErrUserNotFound
}

func (f *fakeUserStore) UsernameExists(_ context.Context, username string) (bool, error) {
	for _, u := range f.users {
		if u.Username == username {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeUserStore) EmailExists(_ context.Context, email string) (bool, error) {
	for _, u := range f.users {
		if u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeUserStore) List(_ context.Context, role *models.Role, offset uint64, limit int) ([]models.User, int64, error) {
	var matched []models.User
	for id := int64(1); id < f.nextID; id++ {
		u, ok := f.users[id]
		if !ok {
			continue
		}
		if role != nil && u.Role != *role {
			continue
		}
		matched = append(matched, *u)
	}
	total := int64(len(matched))
	if offset >= uint64(len(matched)) {
		return nil, total, nil
	}
	matched = matched[offset:]
	if limit > 0 && len(matched) > limit {
		matched = matched[:limit]
	}
	return matched, total, nil
}

func (f *fakeUserStore) FirstAdminID(_ context.Context) (int64, error) {
	for id := int64(1); id < f.nextID; id++ {
		u, ok := f.users[id]
		if ok && u.Role == models.RoleAdmin && u.IsActive {
			return id, nil
		}
	}
	return 0, apperrors.ErrUserNotFound
}

func (f *fakeUserStore) Deactivate(_ context.Context, id int64) error {
	user, ok := f.users[id]
	if !ok {
		return apperrors.ErrUserNotFound
	}
	user.IsActive = false
	return nil
}

func (f *fakeUserStore) Delete(_ context.Context, id int64) error {
	if _, ok := f.users[id]; !ok {
		return apperrors.ErrUserNotFound
	}
	delete(f.users, id)
	return nil
}

type fakeCourseStore struct {
	courses map[string]*models.Course
}

func newFakeCourseStore() *fakeCourseStore {
	return &fakeCourseStore{courses: make(map[string]*models.Course)}
}

func (f *fakeCourseStore) add(course models.Course) *models.Course {
	stored := course
	f.courses[stored.ID] = &stored
	return &stored
}

func (f *fakeCourseStore) Create(_ context.Context, course *models.Course) error {
	stored := *course
	f.courses[course.ID] = &stored
	return nil
}

func (f *fakeCourseStore) GetByID(_ context.Context, id string) (*models.Course, error) {
	course, ok := f.courses[id]
	if !ok || !course.IsActive {
		return nil, apperrors.ErrCourseNotFound
	}
	copied := *course
	return &copied, nil
}

func (f *fakeCourseStore) Update(_ context.Context, course *models.Course) error {
	stored, ok := f.courses[course.ID]
	if !ok || !stored.IsActive {
		return apperrors.ErrCourseNotFound
	}
	stored.Title = course.Title
	stored.Description = course.Description
	stored.Fee = course.Fee
	return nil
}

func (f *fakeCourseStore) UpdateStatus(_ context.Context, id string, status models.CourseStatus) error {
	course, ok := f.courses[id]
	if !ok || !course.IsActive {
		return apperrors.ErrCourseNotFound
	}
	course.Status = status
	return nil
}

func (f *fakeCourseStore) SetDiscount(_ context.Context, id string, discountedFee int64, start, end time.Time) error {
	course, ok := f.courses[id]
	if !ok || !course.IsActive {
		return apperrors.ErrCourseNotFound
	}
	course.DiscountedFee = &discountedFee
	course.DiscountStartDate = &start
	course.DiscountEndDate = &end
	return nil
}

func (f *fakeCourseStore) ClearDiscount(_ context.Context, id string) error {
	course, ok := f.courses[id]
	if !ok || !course.IsActive {
		return apperrors.ErrCourseNotFound
	}
	course.DiscountedFee = nil
	course.DiscountStartDate = nil
	course.DiscountEndDate = nil
	return nil
}

func (f *fakeCourseStore) UpdateBanner(_ context.Context, id string, bannerPath *string) error {
	course, ok := f.courses[id]
	if !ok || !course.IsActive {
		return apperrors.ErrCourseNotFound
	}
	course.BannerImage = bannerPath
	return nil
}

func (f *fakeCourseStore) Deactivate(_ context.Context, id string) error {
	course, ok := f.courses[id]
	if !ok || !course.IsActive {
		return apperrors.ErrCourseNotFound
	}
	course.IsActive = false
	return nil
}

func (f *fakeCourseStore) ListByInstructor(_ context.Context, instructorID int64) ([]models.Course, error) {
	var out []models.Course
	for _, c := range f.courses {
		if c.IsActive && c.InstructorID == instructorID {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (f *fakeCourseStore) ListByStatus(_ context.Context, status models.CourseStatus) ([]models.Course, error) {
	var out []models.Course
	for _, c := range f.courses {
		if c.IsActive && c.Status == status {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (f *fakeCourseStore) ListEnrollable(_ context.Context) ([]models.Course, error) {
	var out []models.Course
	for _, c := range f.courses {
		if c.IsActive && c.Status.IsEnrollable() {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (f *fakeCourseStore) Search(_ context.Context, filters repositories.CourseFilters, offset uint64, limit int) ([]models.Course, int64, error) {
	var out []models.Course
	for _, c := range f.courses {
		if !c.IsActive {
			continue
		}
		if filters.Status != nil && c.Status != *filters.Status {
			continue
		}
		if filters.MinFee != nil && c.Fee < *filters.MinFee {
			continue
		}
		if filters.MaxFee != nil && c.Fee > *filters.MaxFee {
			continue
		}
		out = append(out, *c)
	}
	total := int64(len(out))
	if offset >= uint64(len(out)) {
		return nil, total, nil
	}
	out = out[offset:]
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, total, nil
}

func (f *fakeCourseStore) StatusSummary(_ context.Context, instructorID *int64) (map[models.CourseStatus]int, error) {
	counts := make(map[models.CourseStatus]int)
	for _, c := range f.courses {
		if !c.IsActive {
			continue
		}
		if instructorID != nil && c.InstructorID != *instructorID {
			continue
		}
		counts[c.Status]++
	}
	return counts, nil
}

type fakeEnrollmentStore struct {
	enrollments []models.Enrollment
	courses     *fakeCourseStore
	now         func() time.Time
	nextID      int64
}

func newFakeEnrollmentStore(courses *fakeCourseStore) *fakeEnrollmentStore {
	return &fakeEnrollmentStore{courses: courses, now: time.Now, nextID: 1}
}

func (f *fakeEnrollmentStore) recount(courseID string) {
	if f.courses == nil {
		return
	}
	course, ok := f.courses.courses[courseID]
	if !ok {
		return
	}
	count := 0
	for _, e := range f.enrollments {
		if e.CourseID == courseID && e.IsActive {
			count++
		}
	}
	course.TotalEnrolled = count
}

func (f *fakeEnrollmentStore) Create(_ context.Context, enrollment *models.Enrollment) error {
	for _, e := range f.enrollments {
		if e.StudentID == enrollment.StudentID && e.CourseID == enrollment.CourseID && e.IsActive {
			return apperrors.ErrAlreadyEnrolled
		}
	}
	enrollment.ID = f.nextID
	f.nextID++
	enrollment.EnrolledAt = f.now()
	enrollment.IsActive = true
	f.enrollments = append(f.enrollments, *enrollment)
	f.recount(enrollment.CourseID)
	return nil
}

func (f *fakeEnrollmentStore) Deactivate(_ context.Context, studentID int64, courseID string) error {
	for i := range f.enrollments {
		e := &f.enrollments[i]
		if e.StudentID == studentID && e.CourseID == courseID && e.IsActive {
			e.IsActive = false
			f.recount(courseID)
			return nil
		}
	}
	return apperrors.ErrEnrollmentNotFound
}

func (f *fakeEnrollmentStore) ActiveExists(_ context.Context, studentID int64, courseID string) (bool, error) {
	for _, e := range f.enrollments {
		if e.StudentID == studentID && e.CourseID == courseID && e.IsActive {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeEnrollmentStore) ListActiveByStudent(_ context.Context, studentID int64) ([]models.Enrollment, error) {
	var out []models.Enrollment
	for _, e := range f.enrollments {
		if e.StudentID == studentID && e.IsActive {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeEnrollmentStore) ListActiveByCourse(_ context.Context, courseID string) ([]models.Enrollment, error) {
	var out []models.Enrollment
	for _, e := range f.enrollments {
		if e.CourseID == courseID && e.IsActive {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeEnrollmentStore) History(_ context.Context, studentID int64, courseID *string) ([]models.Enrollment, error) {
	var out []models.Enrollment
	for _, e := range f.enrollments {
		if e.StudentID != studentID {
			continue
		}
		if courseID != nil && e.CourseID != *courseID {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

func (f *fakeEnrollmentStore) matches(e models.Enrollment, filter repositories.EnrollmentFilter) bool {
	if !e.IsActive {
		return false
	}
	if filter.CourseID != nil && e.CourseID != *filter.CourseID {
		return false
	}
	if filter.InstructorID != nil {
		if f.courses == nil {
			return false
		}
		course, ok := f.courses.courses[e.CourseID]
		if !ok || course.InstructorID != *filter.InstructorID {
			return false
		}
	}
	return true
}

func (f *fakeEnrollmentStore) CountActive(_ context.Context, filter repositories.EnrollmentFilter) (int, error) {
	count := 0
	for _, e := range f.enrollments {
		if f.matches(e, filter) {
			count++
		}
	}
	return count, nil
}

func (f *fakeEnrollmentStore) CountActiveSince(_ context.Context, filter repositories.EnrollmentFilter, since time.Time) (int, error) {
	count := 0
	for _, e := range f.enrollments {
		if f.matches(e, filter) && !e.EnrolledAt.Before(since) {
			count++
		}
	}
	return count, nil
}

func (f *fakeEnrollmentStore) CountActiveBetween(_ context.Context, filter repositories.EnrollmentFilter, from, to time.Time) (int, error) {
	count := 0
	for _, e := range f.enrollments {
		if f.matches(e, filter) && !e.EnrolledAt.Before(from) && e.EnrolledAt.Before(to) {
			count++
		}
	}
	return count, nil
}

type fakePrivilegeStore struct {
	privileges []models.Privilege
	nextID     int64
}

func newFakePrivilegeStore() *fakePrivilegeStore {
	return &fakePrivilegeStore{nextID: 1}
}

func (f *fakePrivilegeStore) Create(_ context.Context, privilege *models.Privilege) error {
	for _, p := range f.privileges {
		if p.InstructorID == privilege.InstructorID && p.Name == privilege.Name && p.IsActive {
			return apperrors.ErrPrivilegeAlreadyAssigned
		}
	}
	privilege.ID = f.nextID
	f.nextID++
	privilege.IsActive = true
	privilege.AssignedAt = time.Now()
	f.privileges = append(f.privileges, *privilege)
	return nil
}

func (f *fakePrivilegeStore) Revoke(_ context.Context, instructorID int64, name models.PrivilegeName) error {
	for i := range f.privileges {
		p := &f.privileges[i]
		if p.InstructorID == instructorID && p.Name == name && p.IsActive {
			p.IsActive = false
			return nil
		}
	}
	return apperrors.ErrPrivilegeNotFound
}

func (f *fakePrivilegeStore) ActiveExists(_ context.Context, instructorID int64, name models.PrivilegeName) (bool, error) {
	for _, p := range f.privileges {
		if p.InstructorID == instructorID && p.Name == name && p.IsActive {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakePrivilegeStore) GrantSet(_ context.Context, instructorID int64) (map[models.PrivilegeName]struct{}, error) {
	set := make(map[models.PrivilegeName]struct{})
	for _, p := range f.privileges {
		if p.InstructorID == instructorID && p.IsActive {
			set[p.Name] = struct{}{}
		}
	}
	return set, nil
}

func (f *fakePrivilegeStore) ListActiveByInstructor(_ context.Context, instructorID int64) ([]models.Privilege, error) {
	var out []models.Privilege
	for _, p := range f.privileges {
		if p.InstructorID == instructorID && p.IsActive {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakePrivilegeStore) ListActive(_ context.Context) ([]models.Privilege, error) {
	var out []models.Privilege
	for _, p := range f.privileges {
		if p.IsActive {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakePrivilegeStore) ListActiveByAdmin(_ context.Context, adminID int64) ([]models.Privilege, error) {
	var out []models.Privilege
	for _, p := range f.privileges {
		if p.IsActive && p.AssignedBy == adminID {
			out = append(out, p)
		}
	}
	return out, nil
}

type fakeTokenStore struct {
	tokens map[string]struct {
		userID  int64
		expiry  time.Time
		revoked bool
	}
}

func newFakeTokenStore() *fakeTokenStore {
	return &fakeTokenStore{tokens: make(map[string]struct {
		userID  int64
		expiry  time.Time
		revoked bool
	})}
}

func (f *fakeTokenStore) CreateToken(_ context.Context, token string, userID int64, expiryDate time.Time) error {
	f.tokens[token] = struct {
		userID  int64
		expiry  time.Time
		revoked bool
	}{userID: userID, expiry: expiryDate}
	return nil
}

func (f *fakeTokenStore) GetTokenByValue(_ context.Context, token string) (int64, time.Time, error) {
	entry, ok := f.tokens[token]
	if !ok {
		return 0, time.Time{}, apperrors.ErrTokenNotFound
	}
	if entry.revoked {
		return 0, time.Time{}, apperrors.ErrTokenRevoked
	}
	if entry.expiry.Before(time.Now()) {
		return 0, time.Time{}, apperrors.ErrTokenExpired
	}
	return entry.userID, entry.expiry, nil
}

func (f *fakeTokenStore) RevokeToken(_ context.Context, token string) error {
	entry, ok := f.tokens[token]
	if !ok {
		return apperrors.ErrTokenNotFound
	}
	entry.revoked = true
	f.tokens[token] = entry
	return nil
}

func (f *fakeTokenStore) RevokeAllUserTokens(_ context.Context, userID int64) error {
	for token, entry := range f.tokens {
		if entry.userID == userID {
			entry.revoked = true
			f.tokens[token] = entry
		}
	}
	return nil
}

type fakeMailer struct{}

func (fakeMailer) SendWelcomeEmail(_, _, _ string) error { return nil }
