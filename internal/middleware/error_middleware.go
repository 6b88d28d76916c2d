package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/oguzk/learnsphere/internal/app/models/dto"
	"github.com/oguzk/learnsphere/internal/pkg/apperrors"
	"github.com/oguzk/learnsphere/internal/pkg/logger"
)

// HandleAPIError maps application errors onto HTTP responses. All
// controllers funnel their service errors through here.
func HandleAPIError(c *gin.Context, err error) {
	detail, status := classify(err)

	// Carry field/details context from CustomError into the payload
	var customErr *apperrors.CustomError
	if errors.As(err, &customErr) {
		if customErr.Message != "" {
			detail.Message = customErr.Message
		}
		if customErr.Details != nil {
			if field, ok := customErr.Details["field"].(string); ok {
				detail = detail.WithField(field)
			}
			detail = detail.WithDetails(customErr.Details)
		}
	}

	if status >= http.StatusInternalServerError {
		logger.Error().Err(err).Str("path", c.FullPath()).Msg("Request failed")
	}

	c.JSON(status, dto.NewErrorResponse(detail))
}

func classify(err error) (*dto.ErrorDetail, int) {
	switch {
	case errors.Is(err, apperrors.ErrValidationFailed) || errors.Is(err, apperrors.ErrBadRequest) ||
		errors.Is(err, apperrors.ErrInvalidPrivilegeName) || errors.Is(err, apperrors.ErrInvalidRole):
		return dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Validation failed"), http.StatusBadRequest

	case errors.Is(err, apperrors.ErrInvalidTransition):
		return dto.NewErrorDetail(dto.ErrorCodeInvalidTransition, "Invalid status transition"), http.StatusConflict

	case errors.Is(err, apperrors.ErrInvalidState) || errors.Is(err, apperrors.ErrCourseNotEnrollable):
		return dto.NewErrorDetail(dto.ErrorCodeInvalidState, "Operation not valid for current state"), http.StatusConflict

	case errors.Is(err, apperrors.ErrUsernameAlreadyExists):
		return dto.NewErrorDetail(dto.ErrorCodeResourceAlreadyExists, "Username already exists"), http.StatusConflict

	case errors.Is(err, apperrors.ErrEmailAlreadyExists):
		return dto.NewErrorDetail(dto.ErrorCodeResourceAlreadyExists, "Email already exists"), http.StatusConflict

	case errors.Is(err, apperrors.ErrAlreadyEnrolled):
		return dto.NewErrorDetail(dto.ErrorCodeResourceAlreadyExists, "Student is already enrolled"), http.StatusConflict

	case errors.Is(err, apperrors.ErrPrivilegeAlreadyAssigned):
		return dto.NewErrorDetail(dto.ErrorCodeResourceAlreadyExists, "Privilege already assigned"), http.StatusConflict

	case errors.Is(err, apperrors.ErrConflict):
		return dto.NewErrorDetail(dto.ErrorCodeResourceAlreadyExists, "Conflict"), http.StatusConflict

	case errors.Is(err, apperrors.ErrUserNotFound) || errors.Is(err, apperrors.ErrCourseNotFound) ||
		errors.Is(err, apperrors.ErrEnrollmentNotFound) || errors.Is(err, apperrors.ErrPrivilegeNotFound) ||
		errors.Is(err, apperrors.ErrNotFound):
		return dto.NewErrorDetail(dto.ErrorCodeResourceNotFound, "Resource not found"), http.StatusNotFound

	case errors.Is(err, apperrors.ErrPermissionDenied):
		return dto.NewErrorDetail(dto.ErrorCodeForbidden, "Permission denied"), http.StatusForbidden

	case errors.Is(err, apperrors.ErrAccountDisabled):
		return dto.NewErrorDetail(dto.ErrorCodeAccountDisabled, "Account is disabled"), http.StatusForbidden

	case errors.Is(err, apperrors.ErrInvalidCredentials):
		return dto.NewErrorDetail(dto.ErrorCodeInvalidCredentials, "Invalid credentials"), http.StatusUnauthorized

	case errors.Is(err, apperrors.ErrTokenExpired):
		return dto.NewErrorDetail(dto.ErrorCodeExpiredToken, "Token expired"), http.StatusUnauthorized

	case errors.Is(err, apperrors.ErrTokenInvalid) || errors.Is(err, apperrors.ErrTokenRevoked):
		return dto.NewErrorDetail(dto.ErrorCodeInvalidToken, "Invalid token"), http.StatusUnauthorized

	case errors.Is(err, apperrors.ErrTokenNotFound):
		return dto.NewErrorDetail(dto.ErrorCodeTokenNotFound, "Token not found"), http.StatusUnauthorized

	case errors.Is(err, apperrors.ErrStorage):
		return dto.NewErrorDetail(dto.ErrorCodeDatabaseError, "Storage failure").
			WithSeverity(dto.ErrorSeverityCritical), http.StatusInternalServerError

	default:
		return dto.NewErrorDetail(dto.ErrorCodeInternalServer, "Internal server error"), http.StatusInternalServerError
	}
}
