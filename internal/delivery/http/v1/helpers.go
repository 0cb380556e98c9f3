package v1

import (
	"context"
	"errors"
	"io"
	"strconv"

	"go-jobboard-backend/internal/domain"
	"go-jobboard-backend/pkg/apperror"
	"go-jobboard-backend/pkg/validation"

	"github.com/gin-gonic/gin"
)

// roleGuard builds the per-route role requirement.
type roleGuard func(roles ...domain.Role) gin.HandlerFunc

// MessageResponse is the acknowledgement body of mutations without a payload.
type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// reqCtx is the request context carrying the principal set by AuthGate.
func reqCtx(c *gin.Context) context.Context {
	return c.Request.Context()
}

// bindJSON binds the body and pushes a 400 on failure.
func bindJSON(c *gin.Context, req interface{}) bool {
	err := c.ShouldBindJSON(req)
	if err == nil {
		return true
	}
	if fields, ok := validation.FieldErrors(err); ok {
		_ = c.Error(apperror.BadRequest("Validation failed").WithDetails(fields))
		return false
	}
	if errors.Is(err, io.EOF) {
		_ = c.Error(apperror.BadRequest("Request body is required"))
		return false
	}
	_ = c.Error(apperror.BadRequest("Malformed request body"))
	return false
}

// queryInt reads an integer query parameter; invalid values fall back.
func queryInt(c *gin.Context, key string, fallback int) int {
	if v, err := strconv.Atoi(c.Query(key)); err == nil {
		return v
	}
	return fallback
}

func acknowledge(c *gin.Context, code int, message string) {
	c.JSON(code, MessageResponse{Success: true, Message: message})
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
