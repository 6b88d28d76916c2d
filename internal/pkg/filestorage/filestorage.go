package filestorage

import (
	"errors"
	"mime/multipart"
	"path/filepath"
	"strings"
)

// MaxBannerSize limits banner uploads to 5MB
const MaxBannerSize = 5 << 20

var allowedBannerExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
}

// Upload validation errors
var (
	ErrFileTooLarge      = errors.New("file exceeds maximum allowed size")
	ErrUnsupportedFormat = errors.New("unsupported image format")
)

// FileStorage defines the interface for banner image storage
type FileStorage interface {
	// SaveBanner stores a course banner and returns its accessible path
	SaveBanner(fileHeader *multipart.FileHeader, courseID string) (string, error)

	// DeleteFile removes a previously stored file. Idempotent.
	DeleteFile(filePath string) error
}

// ValidateBanner checks size and extension of an uploaded banner image
func ValidateBanner(fileHeader *multipart.FileHeader) error {
	if fileHeader.Size > MaxBannerSize {
		return ErrFileTooLarge
	}
	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	if !allowedBannerExtensions[ext] {
		return ErrUnsupportedFormat
	}
	return nil
}
