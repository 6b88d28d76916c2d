package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oguzk/learnsphere/internal/app/models"
	"github.com/oguzk/learnsphere/internal/pkg/apperrors"
	"github.com/oguzk/learnsphere/internal/pkg/logger"
)

var courseColumns = []string{
	"id", "title", "description", "instructor_id", "banner_image",
	"fee", "discounted_fee", "discount_start_date", "discount_end_date",
	"total_enrolled", "status", "is_active", "created_at", "updated_at",
}

// CourseFilters narrows course search; all set filters are conjunctive
type CourseFilters struct {
	Query  string
	Status *models.CourseStatus
	MinFee *int64
	MaxFee *int64
}

// CourseRepository handles course persistence
type CourseRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewCourseRepository creates a new CourseRepository
func NewCourseRepository(db *pgxpool.Pool) *CourseRepository {
	return &CourseRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func scanCourse(row pgx.Row) (*models.Course, error) {
	var c models.Course
	err := row.Scan(
		&c.ID, &c.Title, &c.Description, &c.InstructorID, &c.BannerImage,
		&c.Fee, &c.DiscountedFee, &c.DiscountStartDate, &c.DiscountEndDate,
		&c.TotalEnrolled, &c.Status, &c.IsActive, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CourseRepository) queryCourses(ctx context.Context, builder squirrel.SelectBuilder) ([]models.Course, error) {
	sql, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build course query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, apperrors.NewStorageError(err, "select", "courses")
	}
	defer rows.Close()

	var courses []models.Course
	for rows.Next() {
		c, err := scanCourse(rows)
		if err != nil {
			return nil, apperrors.NewStorageError(err, "scan", "courses")
		}
		courses = append(courses, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewStorageError(err, "select", "courses")
	}

	return courses, nil
}

// Create inserts a new course
func (r *CourseRepository) Create(ctx context.Context, course *models.Course) error {
	query := `
		INSERT INTO courses (id, title, description, instructor_id, banner_image,
			fee, discounted_fee, discount_start_date, discount_end_date,
			total_enrolled, status, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`

	now := time.Now()
	course.CreatedAt = now
	course.UpdatedAt = now

	_, err := r.db.Exec(ctx, query,
		course.ID, course.Title, course.Description, course.InstructorID, course.BannerImage,
		course.Fee, course.DiscountedFee, course.DiscountStartDate, course.DiscountEndDate,
		course.TotalEnrolled, course.Status, course.IsActive, course.CreatedAt, course.UpdatedAt,
	)
	if err != nil {
		logger.Error().Err(err).Str("courseID", course.ID).Msg("Error creating course")
		return apperrors.NewStorageError(err, "insert", "courses")
	}

	return nil
}

// GetByID retrieves an active course by ID. Inactive courses are
// treated as absent.
func (r *CourseRepository) GetByID(ctx context.Context, id string) (*models.Course, error) {
	sql, args, err := r.sb.Select(courseColumns...).
		From("courses").
		Where(squirrel.Eq{"id": id, "is_active": true}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get course query: %w", err)
	}

	course, err := scanCourse(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrCourseNotFound
		}
		return nil, apperrors.NewStorageError(err, "select", "courses")
	}
	return course, nil
}

// Update persists the mutable content fields of a course
func (r *CourseRepository) Update(ctx context.Context, course *models.Course) error {
	course.UpdatedAt = time.Now()

	query := `
		UPDATE courses
		SET title = $2, description = $3, fee = $4, updated_at = $5
		WHERE id = $1 AND is_active = true`

	cmdTag, err := r.db.Exec(ctx, query,
		course.ID, course.Title, course.Description, course.Fee, course.UpdatedAt,
	)
	if err != nil {
		return apperrors.NewStorageError(err, "update", "courses")
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrCourseNotFound
	}
	return nil
}

// UpdateStatus moves a course to a new lifecycle status
func (r *CourseRepository) UpdateStatus(ctx context.Context, id string, status models.CourseStatus) error {
	query := "UPDATE courses SET status = $2, updated_at = $3 WHERE id = $1 AND is_active = true"

	cmdTag, err := r.db.Exec(ctx, query, id, status, time.Now())
	if err != nil {
		return apperrors.NewStorageError(err, "update", "courses")
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrCourseNotFound
	}
	return nil
}

// SetDiscount writes all three discount fields together
func (r *CourseRepository) SetDiscount(ctx context.Context, id string, discountedFee int64, start, end time.Time) error {
	query := `
		UPDATE courses
		SET discounted_fee = $2, discount_start_date = $3, discount_end_date = $4, updated_at = $5
		WHERE id = $1 AND is_active = true`

	cmdTag, err := r.db.Exec(ctx, query, id, discountedFee, start, end, time.Now())
	if err != nil {
		return apperrors.NewStorageError(err, "update", "courses")
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrCourseNotFound
	}
	return nil
}

// ClearDiscount removes all three discount fields together
func (r *CourseRepository) ClearDiscount(ctx context.Context, id string) error {
	query := `
		UPDATE courses
		SET discounted_fee = NULL, discount_start_date = NULL, discount_end_date = NULL, updated_at = $2
		WHERE id = $1 AND is_active = true`

	cmdTag, err := r.db.Exec(ctx, query, id, time.Now())
	if err != nil {
		return apperrors.NewStorageError(err, "update", "courses")
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrCourseNotFound
	}
	return nil
}

// UpdateBanner sets or clears the banner image path
func (r *CourseRepository) UpdateBanner(ctx context.Context, id string, bannerPath *string) error {
	query := "UPDATE courses SET banner_image = $2, updated_at = $3 WHERE id = $1 AND is_active = true"

	cmdTag, err := r.db.Exec(ctx, query, id, bannerPath, time.Now())
	if err != nil {
		return apperrors.NewStorageError(err, "update", "courses")
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrCourseNotFound
	}
	return nil
}

// Deactivate soft-deletes a course
func (r *CourseRepository) Deactivate(ctx context.Context, id string) error {
	query := "UPDATE courses SET is_active = false, updated_at = $2 WHERE id = $1 AND is_active = true"

	cmdTag, err := r.db.Exec(ctx, query, id, time.Now())
	if err != nil {
		return apperrors.NewStorageError(err, "update", "courses")
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrCourseNotFound
	}
	return nil
}

// ListByInstructor returns an instructor's active courses
func (r *CourseRepository) ListByInstructor(ctx context.Context, instructorID int64) ([]models.Course, error) {
	return r.queryCourses(ctx, r.sb.Select(courseColumns...).
		From("courses").
		Where(squirrel.Eq{"instructor_id": instructorID, "is_active": true}).
		OrderBy("created_at DESC"))
}

// ListByStatus returns active courses in a given lifecycle status
func (r *CourseRepository) ListByStatus(ctx context.Context, status models.CourseStatus) ([]models.Course, error) {
	return r.queryCourses(ctx, r.sb.Select(courseColumns...).
		From("courses").
		Where(squirrel.Eq{"status": status, "is_active": true}).
		OrderBy("created_at DESC"))
}

// ListEnrollable returns active courses open for enrollment
func (r *CourseRepository) ListEnrollable(ctx context.Context) ([]models.Course, error) {
	return r.queryCourses(ctx, r.sb.Select(courseColumns...).
		From("courses").
		Where(squirrel.Eq{"status": models.EnrollableStatuses(), "is_active": true}).
		OrderBy("created_at DESC"))
}

func applyCourseFilters(builder squirrel.SelectBuilder, filters CourseFilters) squirrel.SelectBuilder {
	builder = builder.Where(squirrel.Eq{"is_active": true})
	if filters.Query != "" {
		pattern := "%" + filters.Query + "%"
		builder = builder.Where(squirrel.Or{
			squirrel.ILike{"title": pattern},
			squirrel.ILike{"description": pattern},
		})
	}
	if filters.Status != nil {
		builder = builder.Where(squirrel.Eq{"status": *filters.Status})
	}
	if filters.MinFee != nil {
		builder = builder.Where(squirrel.GtOrEq{"fee": *filters.MinFee})
	}
	if filters.MaxFee != nil {
		builder = builder.Where(squirrel.LtOrEq{"fee": *filters.MaxFee})
	}
	return builder
}

// Search returns a page of courses matching all given filters plus the
// total match count.
func (r *CourseRepository) Search(ctx context.Context, filters CourseFilters, offset uint64, limit int) ([]models.Course, int64, error) {
	countBuilder := applyCourseFilters(r.sb.Select("COUNT(*)").From("courses"), filters)
	sql, args, err := countBuilder.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build count courses query: %w", err)
	}

	var total int64
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&total); err != nil {
		return nil, 0, apperrors.NewStorageError(err, "select", "courses")
	}

	listBuilder := applyCourseFilters(r.sb.Select(courseColumns...).From("courses"), filters).
		OrderBy("created_at DESC").
		Offset(offset).
		Limit(uint64(limit))

	courses, err := r.queryCourses(ctx, listBuilder)
	if err != nil {
		return nil, 0, err
	}

	return courses, total, nil
}

// StatusSummary counts active courses per status, optionally for one
// instructor.
func (r *CourseRepository) StatusSummary(ctx context.Context, instructorID *int64) (map[models.CourseStatus]int, error) {
	builder := r.sb.Select("status", "COUNT(*)").
		From("courses").
		Where(squirrel.Eq{"is_active": true}).
		GroupBy("status")
	if instructorID != nil {
		builder = builder.Where(squirrel.Eq{"instructor_id": *instructorID})
	}

	sql, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build status summary query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, apperrors.NewStorageError(err, "select", "courses")
	}
	defer rows.Close()

	summary := make(map[models.CourseStatus]int)
	for rows.Next() {
		var status models.CourseStatus
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, apperrors.NewStorageError(err, "scan", "courses")
		}
		summary[status] = count
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewStorageError(err, "select", "courses")
	}

	return summary, nil
}
