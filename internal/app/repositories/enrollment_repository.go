package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/oguzk/learnsphere/internal/app/models"
	"github.com/oguzk/learnsphere/internal/db"
	"github.com/oguzk/learnsphere/internal/pkg/apperrors"
	"github.com/oguzk/learnsphere/internal/pkg/dberrors"
	"github.com/oguzk/learnsphere/internal/pkg/logger"
)

const enrollmentColumns = "id, student_id, course_id, enrolled_at, is_active"

// EnrollmentFilter narrows enrollment statistics queries
type EnrollmentFilter struct {
	CourseID     *string
	InstructorID *int64
}

// EnrollmentRepository handles enrollment persistence. Mutations run
// inside a transaction together with the total_enrolled recount so the
// denormalized counter never drifts from the rows.
type EnrollmentRepository struct {
	db *db.PostgresDB
	sb squirrel.StatementBuilderType
}

// NewEnrollmentRepository creates a new EnrollmentRepository
func NewEnrollmentRepository(database *db.PostgresDB) *EnrollmentRepository {
	return &EnrollmentRepository{
		db: database,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// recountTotalEnrolled rewrites courses.total_enrolled from the active
// enrollment rows, inside the caller's transaction.
func recountTotalEnrolled(ctx context.Context, tx pgx.Tx, courseID string) error {
	query := `
		UPDATE courses
		SET total_enrolled = (
			SELECT COUNT(*) FROM enrollments
			WHERE course_id = $1 AND is_active = true
		), updated_at = $2
		WHERE id = $1`

	if _, err := tx.Exec(ctx, query, courseID, time.Now()); err != nil {
		return apperrors.NewStorageError(err, "update", "courses")
	}
	return nil
}

// Create inserts an active enrollment and recounts the course counter
// in one transaction. A live duplicate trips the partial unique index
// and surfaces as ErrAlreadyEnrolled.
func (r *EnrollmentRepository) Create(ctx context.Context, enrollment *models.Enrollment) error {
	enrollment.EnrolledAt = time.Now()
	enrollment.IsActive = true

	return r.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		query := `
			INSERT INTO enrollments (student_id, course_id, enrolled_at, is_active)
			VALUES ($1, $2, $3, $4)
			RETURNING id`

		err := tx.QueryRow(ctx, query,
			enrollment.StudentID, enrollment.CourseID, enrollment.EnrolledAt, enrollment.IsActive,
		).Scan(&enrollment.ID)
		if err != nil {
			if dberrors.IsUniqueViolation(err) {
				return apperrors.ErrAlreadyEnrolled
			}
			logger.Error().Err(err).Int64("studentID", enrollment.StudentID).Str("courseID", enrollment.CourseID).Msg("Error creating enrollment")
			return apperrors.NewStorageError(err, "insert", "enrollments")
		}

		return recountTotalEnrolled(ctx, tx, enrollment.CourseID)
	})
}

// Deactivate unenrolls a student and recounts the course counter in
// one transaction. Missing active enrollment is ErrEnrollmentNotFound.
func (r *EnrollmentRepository) Deactivate(ctx context.Context, studentID int64, courseID string) error {
	return r.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		query := `
			UPDATE enrollments SET is_active = false
			WHERE student_id = $1 AND course_id = $2 AND is_active = true`

		cmdTag, err := tx.Exec(ctx, query, studentID, courseID)
		if err != nil {
			return apperrors.NewStorageError(err, "update", "enrollments")
		}
		if cmdTag.RowsAffected() == 0 {
			return apperrors.ErrEnrollmentNotFound
		}

		return recountTotalEnrolled(ctx, tx, courseID)
	})
}

// ActiveExists reports whether a student has a live enrollment in a
// course
func (r *EnrollmentRepository) ActiveExists(ctx context.Context, studentID int64, courseID string) (bool, error) {
	var exists bool
	query := `
		SELECT EXISTS(
			SELECT 1 FROM enrollments
			WHERE student_id = $1 AND course_id = $2 AND is_active = true
		)`

	err := r.db.Pool.QueryRow(ctx, query, studentID, courseID).Scan(&exists)
	if err != nil {
		return false, apperrors.NewStorageError(err, "select", "enrollments")
	}
	return exists, nil
}

func (r *EnrollmentRepository) queryEnrollments(ctx context.Context, builder squirrel.SelectBuilder) ([]models.Enrollment, error) {
	sql, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build enrollment query: %w", err)
	}

	rows, err := r.db.Pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, apperrors.NewStorageError(err, "select", "enrollments")
	}
	defer rows.Close()

	var enrollments []models.Enrollment
	for rows.Next() {
		var e models.Enrollment
		if err := rows.Scan(&e.ID, &e.StudentID, &e.CourseID, &e.EnrolledAt, &e.IsActive); err != nil {
			return nil, apperrors.NewStorageError(err, "scan", "enrollments")
		}
		enrollments = append(enrollments, e)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewStorageError(err, "select", "enrollments")
	}

	return enrollments, nil
}

// ListActiveByStudent returns a student's live enrollments
func (r *EnrollmentRepository) ListActiveByStudent(ctx context.Context, studentID int64) ([]models.Enrollment, error) {
	return r.queryEnrollments(ctx, r.sb.Select(enrollmentColumns).
		From("enrollments").
		Where(squirrel.Eq{"student_id": studentID, "is_active": true}).
		OrderBy("enrolled_at DESC"))
}

// ListActiveByCourse returns a course's live enrollments
func (r *EnrollmentRepository) ListActiveByCourse(ctx context.Context, courseID string) ([]models.Enrollment, error) {
	return r.queryEnrollments(ctx, r.sb.Select(enrollmentColumns).
		From("enrollments").
		Where(squirrel.Eq{"course_id": courseID, "is_active": true}).
		OrderBy("enrolled_at DESC"))
}

// History returns all enrollment rows, active and inactive, for a
// student and optionally one course.
func (r *EnrollmentRepository) History(ctx context.Context, studentID int64, courseID *string) ([]models.Enrollment, error) {
	builder := r.sb.Select(enrollmentColumns).
		From("enrollments").
		Where(squirrel.Eq{"student_id": studentID}).
		OrderBy("enrolled_at DESC")
	if courseID != nil {
		builder = builder.Where(squirrel.Eq{"course_id": *courseID})
	}
	return r.queryEnrollments(ctx, builder)
}

func applyEnrollmentFilter(builder squirrel.SelectBuilder, filter EnrollmentFilter) squirrel.SelectBuilder {
	builder = builder.Where(squirrel.Eq{"e.is_active": true})
	if filter.CourseID != nil {
		builder = builder.Where(squirrel.Eq{"e.course_id": *filter.CourseID})
	}
	if filter.InstructorID != nil {
		builder = builder.
			Join("courses c ON c.id = e.course_id").
			Where(squirrel.Eq{"c.instructor_id": *filter.InstructorID})
	}
	return builder
}

// CountActive counts live enrollments matching the filter
func (r *EnrollmentRepository) CountActive(ctx context.Context, filter EnrollmentFilter) (int, error) {
	builder := applyEnrollmentFilter(r.sb.Select("COUNT(*)").From("enrollments e"), filter)

	sql, args, err := builder.ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build count enrollments query: %w", err)
	}

	var count int
	if err := r.db.Pool.QueryRow(ctx, sql, args...).Scan(&count); err != nil {
		return 0, apperrors.NewStorageError(err, "select", "enrollments")
	}
	return count, nil
}

// CountActiveSince counts live enrollments created at or after since
func (r *EnrollmentRepository) CountActiveSince(ctx context.Context, filter EnrollmentFilter, since time.Time) (int, error) {
	builder := applyEnrollmentFilter(r.sb.Select("COUNT(*)").From("enrollments e"), filter).
		Where(squirrel.GtOrEq{"e.enrolled_at": since})

	sql, args, err := builder.ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build count enrollments query: %w", err)
	}

	var count int
	if err := r.db.Pool.QueryRow(ctx, sql, args...).Scan(&count); err != nil {
		return 0, apperrors.NewStorageError(err, "select", "enrollments")
	}
	return count, nil
}

// CountActiveBetween counts live enrollments created in [from, to)
func (r *EnrollmentRepository) CountActiveBetween(ctx context.Context, filter EnrollmentFilter, from, to time.Time) (int, error) {
	builder := applyEnrollmentFilter(r.sb.Select("COUNT(*)").From("enrollments e"), filter).
		Where(squirrel.GtOrEq{"e.enrolled_at": from}).
		Where(squirrel.Lt{"e.enrolled_at": to})

	sql, args, err := builder.ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build count enrollments query: %w", err)
	}

	var count int
	if err := r.db.Pool.QueryRow(ctx, sql, args...).Scan(&count); err != nil {
		return 0, apperrors.NewStorageError(err, "select", "enrollments")
	}
	return count, nil
}
