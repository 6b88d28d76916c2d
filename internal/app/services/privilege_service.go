package services

import (
	"context"
	"errors"
	"sort"

	"github.com/rs/zerolog"

	"github.com/oguzk/learnsphere/internal/app/models"
	"github.com/oguzk/learnsphere/internal/app/models/dto"
	"github.com/oguzk/learnsphere/internal/pkg/apperrors"
)

// PrivilegeService manages instructor privilege grants
type PrivilegeService struct {
	users      UserStore
	privileges PrivilegeStore
	authz      Authorizer
	logger     zerolog.Logger
}

// NewPrivilegeService creates a PrivilegeService
func NewPrivilegeService(users UserStore, privileges PrivilegeStore, authz Authorizer, logger zerolog.Logger) *PrivilegeService {
	return &PrivilegeService{
		users:      users,
		privileges: privileges,
		authz:      authz,
		logger:     logger,
	}
}

// activeInstructor loads the target and verifies role and liveness
func (s *PrivilegeService) activeInstructor(ctx context.Context, instructorID int64) (*models.User, error) {
	instructor, err := s.users.GetByID(ctx, instructorID)
	if err != nil {
		return nil, err
	}
	if instructor.Role != models.RoleInstructor || !instructor.IsActive {
		return nil, apperrors.NewNotFoundError("no active instructor with this id")
	}
	return instructor, nil
}

// Assign grants one privilege to an instructor. Admin-only. A live
// duplicate grant is a conflict; the partial unique index backstops
// the pre-check under races.
func (s *PrivilegeService) Assign(ctx context.Context, adminID int64, req dto.AssignPrivilegeRequest) (*models.Privilege, error) {
	if err := s.authz.RequireAdmin(ctx, adminID); err != nil {
		return nil, err
	}

	name := models.PrivilegeName(req.PrivilegeName)
	if !name.IsValid() {
		return nil, apperrors.NewValidationError("privilegeName", req.PrivilegeName, "unknown privilege name")
	}

	if _, err := s.activeInstructor(ctx, req.InstructorID); err != nil {
		return nil, err
	}

	if exists, err := s.privileges.ActiveExists(ctx, req.InstructorID, name); err != nil {
		return nil, err
	} else if exists {
		return nil, apperrors.ErrPrivilegeAlreadyAssigned
	}

	description := req.Description
	if description == "" {
		description = name.Description()
	}

	privilege := &models.Privilege{
		InstructorID: req.InstructorID,
		Name:         name,
		Description:  description,
		AssignedBy:   adminID,
	}
	if err := s.privileges.Create(ctx, privilege); err != nil {
		return nil, err
	}

	s.logger.Info().Int64("instructorID", req.InstructorID).Str("privilege", string(name)).Int64("assignedBy", adminID).Msg("Privilege assigned")
	return privilege, nil
}

// Revoke deactivates a live grant. Admin-only. The row stays behind
// as history and the privilege can be re-assigned afterwards.
func (s *PrivilegeService) Revoke(ctx context.Context, adminID, instructorID int64, privilegeName string) error {
	if err := s.authz.RequireAdmin(ctx, adminID); err != nil {
		return err
	}

	name := models.PrivilegeName(privilegeName)
	if !name.IsValid() {
		return apperrors.NewValidationError("privilegeName", privilegeName, "unknown privilege name")
	}

	if err := s.privileges.Revoke(ctx, instructorID, name); err != nil {
		return err
	}

	s.logger.Info().Int64("instructorID", instructorID).Str("privilege", string(name)).Int64("revokedBy", adminID).Msg("Privilege revoked")
	return nil
}

// BulkAssign grants several privileges, skipping rows that are
// already assigned or otherwise fail.
func (s *PrivilegeService) BulkAssign(ctx context.Context, adminID int64, req dto.BulkPrivilegeRequest) (*dto.BulkPrivilegeResult, error) {
	if err := s.authz.RequireAdmin(ctx, adminID); err != nil {
		return nil, err
	}
	if _, err := s.activeInstructor(ctx, req.InstructorID); err != nil {
		return nil, err
	}

	result := &dto.BulkPrivilegeResult{}
	for _, rawName := range req.PrivilegeNames {
		name := models.PrivilegeName(rawName)
		if !name.IsValid() {
			result.Skipped = append(result.Skipped, rawName)
			continue
		}

		privilege := &models.Privilege{
			InstructorID: req.InstructorID,
			Name:         name,
			Description:  name.Description(),
			AssignedBy:   adminID,
		}
		if err := s.privileges.Create(ctx, privilege); err != nil {
			if !errors.Is(err, apperrors.ErrPrivilegeAlreadyAssigned) {
				s.logger.Warn().Err(err).Int64("instructorID", req.InstructorID).Str("privilege", rawName).Msg("Bulk assign row failed")
			}
			result.Skipped = append(result.Skipped, rawName)
			continue
		}
		result.Applied = append(result.Applied, rawName)
	}

	return result, nil
}

// BulkRevoke revokes several privileges, skipping names that are not
// currently granted.
func (s *PrivilegeService) BulkRevoke(ctx context.Context, adminID int64, req dto.BulkPrivilegeRequest) (*dto.BulkPrivilegeResult, error) {
	if err := s.authz.RequireAdmin(ctx, adminID); err != nil {
		return nil, err
	}

	result := &dto.BulkPrivilegeResult{}
	for _, rawName := range req.PrivilegeNames {
		name := models.PrivilegeName(rawName)
		if !name.IsValid() {
			result.Skipped = append(result.Skipped, rawName)
			continue
		}
		if err := s.privileges.Revoke(ctx, req.InstructorID, name); err != nil {
			result.Skipped = append(result.Skipped, rawName)
			continue
		}
		result.Applied = append(result.Applied, rawName)
	}

	return result, nil
}

// ListByInstructor returns an instructor's live grants
func (s *PrivilegeService) ListByInstructor(ctx context.Context, instructorID int64) ([]models.Privilege, error) {
	if _, err := s.activeInstructor(ctx, instructorID); err != nil {
		return nil, err
	}
	return s.privileges.ListActiveByInstructor(ctx, instructorID)
}

// ListAll returns every live grant. Admin-only.
func (s *PrivilegeService) ListAll(ctx context.Context, adminID int64) ([]models.Privilege, error) {
	if err := s.authz.RequireAdmin(ctx, adminID); err != nil {
		return nil, err
	}
	return s.privileges.ListActive(ctx)
}

// ListByAdmin returns the live grants one admin issued. Admin-only.
func (s *PrivilegeService) ListByAdmin(ctx context.Context, adminID, grantorID int64) ([]models.Privilege, error) {
	if err := s.authz.RequireAdmin(ctx, adminID); err != nil {
		return nil, err
	}
	return s.privileges.ListActiveByAdmin(ctx, grantorID)
}

// HasPrivilege reports whether the instructor currently holds a grant
func (s *PrivilegeService) HasPrivilege(ctx context.Context, instructorID int64, privilegeName string) (bool, error) {
	name := models.PrivilegeName(privilegeName)
	if !name.IsValid() {
		return false, apperrors.NewValidationError("privilegeName", privilegeName, "unknown privilege name")
	}
	return s.privileges.ActiveExists(ctx, instructorID, name)
}

// Catalog lists every assignable privilege with its description
func (s *PrivilegeService) Catalog() []dto.PrivilegeCatalogEntry {
	all := models.AllPrivileges()
	entries := make([]dto.PrivilegeCatalogEntry, 0, len(all))
	for name, description := range all {
		entries = append(entries, dto.PrivilegeCatalogEntry{
			Name:        string(name),
			Description: description,
		})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries
}
