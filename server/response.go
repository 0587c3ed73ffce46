package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/kbukum/imagefeed/errors"
)

// RespondWithError writes the error envelope for err. AppErrors keep their
// status and code; anything else becomes a 500. A body that hit the size
// limit is reported as 413.
func RespondWithError(c *gin.Context, err error) {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		c.JSON(appErr.HTTPStatus, appErr.ToResponse())
		return
	}
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		tooLarge := apperrors.New(apperrors.ErrCodeInvalidInput, "Request body too large.", http.StatusRequestEntityTooLarge).
			WithDetail("limit", maxErr.Limit)
		c.JSON(tooLarge.HTTPStatus, tooLarge.ToResponse())
		return
	}
	c.JSON(http.StatusInternalServerError, apperrors.Internal(err).ToResponse())
}

// RespondOK sends data as a 200 JSON body.
func RespondOK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, data)
}
