package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oguzk/learnsphere/internal/app/models"
	"github.com/oguzk/learnsphere/internal/pkg/apperrors"
	"github.com/oguzk/learnsphere/internal/pkg/dberrors"
	"github.com/oguzk/learnsphere/internal/pkg/logger"
)

const privilegeColumns = "id, instructor_id, privilege_name, description, is_active, assigned_by, assigned_at"

// PrivilegeRepository handles privilege grant persistence
type PrivilegeRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewPrivilegeRepository creates a new PrivilegeRepository
func NewPrivilegeRepository(db *pgxpool.Pool) *PrivilegeRepository {
	return &PrivilegeRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Create inserts an active grant row. The partial unique index on
// (instructor_id, privilege_name) WHERE is_active is the authoritative
// duplicate guard; a violation surfaces as ErrPrivilegeAlreadyAssigned.
func (r *PrivilegeRepository) Create(ctx context.Context, privilege *models.Privilege) error {
	query := `
		INSERT INTO privileges (instructor_id, privilege_name, description, is_active, assigned_by, assigned_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`

	privilege.IsActive = true
	privilege.AssignedAt = time.Now()

	err := r.db.QueryRow(ctx, query,
		privilege.InstructorID, privilege.Name, privilege.Description,
		privilege.IsActive, privilege.AssignedBy, privilege.AssignedAt,
	).Scan(&privilege.ID)
	if err != nil {
		if dberrors.IsUniqueViolation(err) {
			return apperrors.ErrPrivilegeAlreadyAssigned
		}
		logger.Error().Err(err).Int64("instructorID", privilege.InstructorID).Str("privilege", string(privilege.Name)).Msg("Error creating privilege")
		return apperrors.NewStorageError(err, "insert", "privileges")
	}

	return nil
}

// Revoke flips is_active on the live grant. Rows are never deleted so
// grant history survives revocation.
func (r *PrivilegeRepository) Revoke(ctx context.Context, instructorID int64, name models.PrivilegeName) error {
	query := `
		UPDATE privileges SET is_active = false
		WHERE instructor_id = $1 AND privilege_name = $2 AND is_active = true`

	cmdTag, err := r.db.Exec(ctx, query, instructorID, name)
	if err != nil {
		return apperrors.NewStorageError(err, "update", "privileges")
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrPrivilegeNotFound
	}
	return nil
}

// ActiveExists reports whether the instructor holds a live grant of
// the named privilege
func (r *PrivilegeRepository) ActiveExists(ctx context.Context, instructorID int64, name models.PrivilegeName) (bool, error) {
	var exists bool
	query := `
		SELECT EXISTS(
			SELECT 1 FROM privileges
			WHERE instructor_id = $1 AND privilege_name = $2 AND is_active = true
		)`

	err := r.db.QueryRow(ctx, query, instructorID, name).Scan(&exists)
	if err != nil {
		return false, apperrors.NewStorageError(err, "select", "privileges")
	}
	return exists, nil
}

// GrantSet returns the instructor's live grants as a set for the
// authorization decision.
func (r *PrivilegeRepository) GrantSet(ctx context.Context, instructorID int64) (map[models.PrivilegeName]struct{}, error) {
	query := "SELECT privilege_name FROM privileges WHERE instructor_id = $1 AND is_active = true"

	rows, err := r.db.Query(ctx, query, instructorID)
	if err != nil {
		return nil, apperrors.NewStorageError(err, "select", "privileges")
	}
	defer rows.Close()

	granted := make(map[models.PrivilegeName]struct{})
	for rows.Next() {
		var name models.PrivilegeName
		if err := rows.Scan(&name); err != nil {
			return nil, apperrors.NewStorageError(err, "scan", "privileges")
		}
		granted[name] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewStorageError(err, "select", "privileges")
	}

	return granted, nil
}

func (r *PrivilegeRepository) queryPrivileges(ctx context.Context, builder squirrel.SelectBuilder) ([]models.Privilege, error) {
	sql, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build privilege query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, apperrors.NewStorageError(err, "select", "privileges")
	}
	defer rows.Close()

	var privileges []models.Privilege
	for rows.Next() {
		var p models.Privilege
		if err := rows.Scan(&p.ID, &p.InstructorID, &p.Name, &p.Description, &p.IsActive, &p.AssignedBy, &p.AssignedAt); err != nil {
			return nil, apperrors.NewStorageError(err, "scan", "privileges")
		}
		privileges = append(privileges, p)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewStorageError(err, "select", "privileges")
	}

	return privileges, nil
}

// ListActiveByInstructor returns an instructor's live grants
func (r *PrivilegeRepository) ListActiveByInstructor(ctx context.Context, instructorID int64) ([]models.Privilege, error) {
	return r.queryPrivileges(ctx, r.sb.Select(privilegeColumns).
		From("privileges").
		Where(squirrel.Eq{"instructor_id": instructorID, "is_active": true}).
		OrderBy("privilege_name ASC"))
}

// ListActive returns every live grant in the system
func (r *PrivilegeRepository) ListActive(ctx context.Context) ([]models.Privilege, error) {
	return r.queryPrivileges(ctx, r.sb.Select(privilegeColumns).
		From("privileges").
		Where(squirrel.Eq{"is_active": true}).
		OrderBy("instructor_id ASC", "privilege_name ASC"))
}

// ListActiveByAdmin returns the live grants a given admin issued
func (r *PrivilegeRepository) ListActiveByAdmin(ctx context.Context, adminID int64) ([]models.Privilege, error) {
	return r.queryPrivileges(ctx, r.sb.Select(privilegeColumns).
		From("privileges").
		Where(squirrel.Eq{"assigned_by": adminID, "is_active": true}).
		OrderBy("instructor_id ASC", "privilege_name ASC"))
}
