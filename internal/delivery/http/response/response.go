package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Response standardizes the API JSON response
type Response struct {
	Success   bool        `json:"success"`
	Message   string      `json:"message"`
	Data      interface{} `json:"data,omitempty"`
	Error     interface{} `json:"error,omitempty"`
	RequestID string      `json:"requestId,omitempty"`
}

// EntryPointError is the body written when the auth chain rejects a request.
type EntryPointError struct {
	Status  int    `json:"status"`
	Error   string `json:"error"`
	Message string `json:"message"`
	Path    string `json:"path"`
}

// Success sends a success response
func Success(c *gin.Context, code int, message string, data interface{}) {
	c.JSON(code, Response{
		Success:   true,
		Message:   message,
		Data:      data,
		RequestID: requestID(c),
	})
}

// Message sends a bare {success, message} acknowledgement.
func Message(c *gin.Context, code int, message string) {
	c.JSON(code, Response{
		Success:   code < http.StatusBadRequest,
		Message:   message,
		RequestID: requestID(c),
	})
}

// Error sends an error response
func Error(c *gin.Context, code int, message string, err interface{}) {
	c.JSON(code, Response{
		Success:   false,
		Message:   message,
		Error:     err,
		RequestID: requestID(c),
	})
}

// Unauthorized writes the 401 entry point body and aborts the chain.
func Unauthorized(c *gin.Context, message string) {
	entryPoint(c, http.StatusUnauthorized, message)
}

// Forbidden writes the 403 entry point body and aborts the chain.
func Forbidden(c *gin.Context, message string) {
	entryPoint(c, http.StatusForbidden, message)
}

func entryPoint(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, EntryPointError{
		Status:  status,
		Error:   http.StatusText(status),
		Message: message,
		Path:    c.Request.URL.Path,
	})
}

func requestID(c *gin.Context) string {
	reqID, _ := c.Get("RequestID")
	idStr, _ := reqID.(string) // Safe type assertion
	return idStr
}
