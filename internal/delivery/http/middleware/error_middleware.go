package middleware

import (
	"errors"
	"net/http"

	"go-jobboard-backend/internal/delivery/http/response"
	"go-jobboard-backend/internal/domain"
	"go-jobboard-backend/pkg/apperror"
	"go-jobboard-backend/pkg/logger"
	"go-jobboard-backend/pkg/validation"

	"github.com/gin-gonic/gin"
)

// ErrorHandler renders the last error a handler pushed with c.Error.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		err := c.Errors.Last().Err

		var appErr *apperror.AppError
		switch {
		case errors.As(err, &appErr):
			response.Error(c, appErr.Code, appErr.Message, appErr.Details)
		case errors.Is(err, domain.ErrNotFound):
			c.Status(http.StatusNotFound)
		case domain.IsBadRequest(err):
			response.Message(c, http.StatusBadRequest, err.Error())
		case errors.Is(err, domain.ErrBadCredentials), errors.Is(err, domain.ErrUnauthenticated):
			response.Unauthorized(c, err.Error())
		case errors.Is(err, domain.ErrForbidden):
			response.Forbidden(c, domain.ErrForbidden.Error())
		default:
			if fields, ok := validation.FieldErrors(err); ok {
				response.Error(c, http.StatusBadRequest, "Validation failed", fields)
				return
			}
			// SECURITY: Never expose internal error details to clients.
			logger.Log.Error("Internal Server Error", "error", err, "path", c.Request.URL.Path, "request_id", requestIDOf(c))
			response.Error(c, http.StatusInternalServerError, "An unexpected error occurred. Please try again later.", nil)
		}
	}
}
