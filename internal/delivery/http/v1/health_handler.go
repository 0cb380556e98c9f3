package v1

import (
	"context"
	"net/http"

	"go-jobboard-backend/internal/delivery/http/response"

	"github.com/gin-gonic/gin"
)

// HealthChecker reports dependency state; ok is false when the service cannot serve.
type HealthChecker interface {
	Check(ctx context.Context) (map[string]string, bool)
}

type HealthHandler struct {
	checker HealthChecker
}

func NewHealthHandler(api *gin.RouterGroup, checker HealthChecker) {
	handler := &HealthHandler{checker: checker}
	api.GET("/health", handler.Health)
}

// Health godoc
// @Summary      Health check
// @Tags         system
// @Produce      json
// @Success      200  {object}  response.Response{data=map[string]string}
// @Failure      503  {object}  response.Response{data=map[string]string}
// @Router       /health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	status, ok := h.checker.Check(reqCtx(c))
	if !ok {
		c.JSON(http.StatusServiceUnavailable, response.Response{
			Success: false,
			Message: "Database unavailable",
			Data:    status,
		})
		return
	}
	response.Success(c, http.StatusOK, "System operational", status)
}
