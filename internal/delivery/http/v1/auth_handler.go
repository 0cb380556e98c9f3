package v1

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go-jobboard-backend/internal/domain"
	"go-jobboard-backend/pkg/apperror"
	"go-jobboard-backend/pkg/logger"
	"go-jobboard-backend/pkg/security"

	"github.com/gin-gonic/gin"
)

// LoginGuard tracks failed signins and blocks brute forcing.
type LoginGuard interface {
	IsBlocked(ctx context.Context, username, ip string) (bool, error)
	RecordFailedAttempt(ctx context.Context, username, ip, userAgent, requestID string) (bool, int, error)
	ClearAttempts(ctx context.Context, username, ip string) error
	BlockTTL(ctx context.Context, username string) (time.Duration, error)
}

type AuthHandler struct {
	authUC    domain.AuthUsecase
	guard     LoginGuard
	secLogger *security.SecurityLogger
}

func NewAuthHandler(api *gin.RouterGroup, require roleGuard, authUC domain.AuthUsecase, guard LoginGuard, secLogger *security.SecurityLogger, limit gin.HandlerFunc) {
	handler := &AuthHandler{
		authUC:    authUC,
		guard:     guard,
		secLogger: secLogger,
	}

	auth := api.Group("/auth", limit)
	{
		auth.POST("/signup", handler.Signup)
		auth.POST("/signin", handler.Signin)
		auth.GET("/me", require(), handler.Me)
		auth.PUT("/password", require(), handler.ChangePassword)
	}

	users := api.Group("/users")
	{
		users.PUT("/:id/roles", require(domain.RoleAdmin), handler.AssignRoles)
	}
}

type SignupRequest struct {
	Username string   `json:"username" binding:"required,min=3,max=20,valid_username"`
	Email    string   `json:"email" binding:"required,email,max=50"`
	Password string   `json:"password" binding:"required,min=6,max=40"`
	Role     []string `json:"role"`
}

type SigninRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required,min=6,max=40"`
}

type AssignRolesRequest struct {
	Roles []string `json:"roles" binding:"required,min=1"`
}

// Signup godoc
// @Summary      Register a new user
// @Description  Creates a user with the requested roles (default CANDIDATE). Does not sign in.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      SignupRequest  true  "Signup data"
// @Success      200   {object}  MessageResponse
// @Failure      400   {object}  response.Response
// @Router       /auth/signup [post]
func (h *AuthHandler) Signup(c *gin.Context) {
	var req SignupRequest
	if !bindJSON(c, &req) {
		return
	}

	_, err := h.authUC.Signup(reqCtx(c), domain.SignupInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		Roles:    req.Role,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}

	acknowledge(c, http.StatusOK, "User registered successfully!")
}

// Signin godoc
// @Summary      Sign in
// @Description  Verifies credentials and returns a bearer token with the caller's authorities
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      SigninRequest  true  "Credentials"
// @Success      200   {object}  domain.SigninResult
// @Failure      401   {object}  response.EntryPointError
// @Failure      429   {object}  response.Response
// @Router       /auth/signin [post]
func (h *AuthHandler) Signin(c *gin.Context) {
	var req SigninRequest
	if !bindJSON(c, &req) {
		return
	}
	ctx := reqCtx(c)
	ip := c.ClientIP()
	requestID := c.GetString(string(domain.KeyRequestID))

	// 1. Refuse blocked usernames/IPs before touching credentials
	blocked, err := h.guard.IsBlocked(ctx, req.Username, ip)
	if err != nil {
		logger.Log.Warn("Login block check failed", "error", err)
	}
	if blocked {
		h.secLogger.LogLoginBlocked(ctx, req.Username, ip, c.GetHeader("User-Agent"), requestID)
		_ = c.Error(h.blockedError(ctx, req.Username))
		return
	}

	// 2. Verify credentials
	result, err := h.authUC.Signin(ctx, req.Username, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrBadCredentials) {
			if _, _, trackErr := h.guard.RecordFailedAttempt(ctx, req.Username, ip, c.GetHeader("User-Agent"), requestID); trackErr != nil {
				logger.Log.Warn("Failed to record login attempt", "error", trackErr)
			}
		}
		_ = c.Error(err)
		return
	}

	// 3. Reset counters
	if err := h.guard.ClearAttempts(ctx, req.Username, ip); err != nil {
		logger.Log.Warn("Failed to clear login attempts", "error", err)
	}
	h.secLogger.LogLoginSuccess(ctx, req.Username, ip, requestID)

	c.JSON(http.StatusOK, result)
}

func (h *AuthHandler) blockedError(ctx context.Context, username string) *apperror.AppError {
	msg := "Too many failed login attempts. Please try again later."
	if ttl, err := h.guard.BlockTTL(ctx, username); err == nil && ttl > 0 {
		minutes := int(ttl.Minutes()) + 1
		msg = fmt.Sprintf("Too many failed login attempts. Please try again in %d minutes.", minutes)
	}
	return apperror.TooManyRequests(msg)
}

// Me godoc
// @Summary      Current user
// @Description  Returns the signed in user without the password hash
// @Tags         auth
// @Produce      json
// @Success      200  {object}  domain.User
// @Failure      401  {object}  response.EntryPointError
// @Router       /auth/me [get]
// @Security     BearerAuth
func (h *AuthHandler) Me(c *gin.Context) {
	principal, _ := domain.PrincipalFrom(reqCtx(c))

	user, err := h.authUC.GetCurrentUser(reqCtx(c), principal.Username)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, user)
}

// ChangePassword godoc
// @Summary      Change password
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      ChangePasswordRequest  true  "Current and new password"
// @Success      200   {object}  MessageResponse
// @Failure      400   {object}  response.Response
// @Failure      401   {object}  response.EntryPointError
// @Router       /auth/password [put]
// @Security     BearerAuth
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	var req ChangePasswordRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.authUC.ChangePassword(reqCtx(c), req.CurrentPassword, req.NewPassword); err != nil {
		_ = c.Error(err)
		return
	}

	principal, _ := domain.PrincipalFrom(reqCtx(c))
	h.secLogger.Log(reqCtx(c), security.SecurityEvent{
		Event:        security.EventPasswordChanged,
		SubjectType:  security.SubjectUsername,
		SubjectValue: principal.Username,
		IP:           c.ClientIP(),
		RequestID:    c.GetString(string(domain.KeyRequestID)),
	})

	acknowledge(c, http.StatusOK, "Password changed successfully")
}

// AssignRoles godoc
// @Summary      Replace a user's roles
// @Description  Admin only. Applies to the user's next request, even with an already issued token.
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        id    path      string              true  "User ID"
// @Param        body  body      AssignRolesRequest  true  "Roles"
// @Success      200   {object}  domain.User
// @Failure      403   {object}  response.EntryPointError
// @Failure      404   "Not found"
// @Router       /users/{id}/roles [put]
// @Security     BearerAuth
func (h *AuthHandler) AssignRoles(c *gin.Context) {
	var req AssignRolesRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.authUC.AssignRoles(reqCtx(c), c.Param("id"), req.Roles)
	if err != nil {
		_ = c.Error(err)
		return
	}

	h.secLogger.Log(reqCtx(c), security.SecurityEvent{
		Event:        security.EventRolesChanged,
		SubjectType:  security.SubjectUserID,
		SubjectValue: user.ID,
		IP:           c.ClientIP(),
		RequestID:    c.GetString(string(domain.KeyRequestID)),
		Details:      map[string]any{"roles": domain.Authorities(user.Roles)},
	})

	c.JSON(http.StatusOK, user)
}
