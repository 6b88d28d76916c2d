package seed

import (
	"context"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	appModels "github.com/oguzk/learnsphere/internal/app/models"
	appRepos "github.com/oguzk/learnsphere/internal/app/repositories"
	pkgAuth "github.com/oguzk/learnsphere/internal/pkg/auth"
)

const (
	defaultAdminUsername = "admin"
	defaultAdminEmail    = "admin@learnsphere.app"
)

// CreateDefaultData makes sure a default admin account exists. The
// privilege grantor for publicly registered instructors resolves to
// this account, so it must be in place before the API takes traffic.
func CreateDefaultData(ctx context.Context, dbPool *pgxpool.Pool, lgr zerolog.Logger) error {
	userRepo := appRepos.NewUserRepository(dbPool)

	exists, err := userRepo.UsernameExists(ctx, defaultAdminUsername)
	if err != nil {
		lgr.Error().Err(err).Msg("Error checking if admin user exists")
		return err
	}
	if exists {
		lgr.Info().Msg("Admin user already exists, skipping creation")
		return nil
	}

	lgr.Info().Msg("Creating default admin user...")

	password := os.Getenv("LEARNSPHERE_ADMIN_PASSWORD")
	if password == "" {
		password = "Admin123!"
		lgr.Warn().Msg("LEARNSPHERE_ADMIN_PASSWORD not set, using the default admin password")
	}

	hashedPassword, err := pkgAuth.HashPassword(password)
	if err != nil {
		lgr.Error().Err(err).Msg("Error hashing admin password")
		return err
	}

	admin := &appModels.User{
		Username:  defaultAdminUsername,
		Email:     defaultAdminEmail,
		Password:  hashedPassword,
		Role:      appModels.RoleAdmin,
		IsActive:  true,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	if err := userRepo.Create(ctx, admin); err != nil {
		lgr.Error().Err(err).Msg("Error creating admin user")
		return err
	}

	lgr.Info().Int64("adminID", admin.ID).Msg("Default admin user created successfully")
	return nil
}
