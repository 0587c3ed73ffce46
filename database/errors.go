package database

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	apperrors "github.com/kbukum/imagefeed/errors"
)

var connectionPatterns = []string{
	"connection refused",
	"connection reset",
	"broken pipe",
	"i/o timeout",
	"no route to host",
	"network is unreachable",
	"connection closed",
	"driver: bad connection",
}

var transientPatterns = []string{
	"deadlock",
	"lock timeout",
	"database is locked",
	"too many connections",
}

func containsAny(err error, patterns []string) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, p := range patterns {
		if strings.Contains(msg, p) {
			return true
		}
	}
	return false
}

// IsConnectionError reports a lost or refused connection.
func IsConnectionError(err error) bool {
	return containsAny(err, connectionPatterns)
}

// IsRetryableError reports an error that may succeed on retry.
func IsRetryableError(err error) bool {
	return IsConnectionError(err) || containsAny(err, transientPatterns)
}

// FromDatabase converts a database error into an AppError.
func FromDatabase(err error, resource string) *apperrors.AppError {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperrors.NotFound(resource, "").WithCause(err)
	}
	if IsConnectionError(err) {
		return apperrors.ServiceUnavailable("database").WithCause(err)
	}
	appErr := apperrors.DatabaseError(err)
	appErr.Retryable = IsRetryableError(err)
	return appErr.WithDetail("resource", resource)
}
