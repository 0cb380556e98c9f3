package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go-jobboard-backend/internal/domain"
	"go-jobboard-backend/pkg/logger"

	"github.com/google/uuid"
)

const tokenTypeBearer = "Bearer"

type authUsecase struct {
	userRepo domain.UserRepository
	hasher   domain.PasswordHasher
	tokens   domain.TokenIssuer
	now      func() time.Time
}

func NewAuthUsecase(userRepo domain.UserRepository, hasher domain.PasswordHasher, tokens domain.TokenIssuer) domain.AuthUsecase {
	return &authUsecase{
		userRepo: userRepo,
		hasher:   hasher,
		tokens:   tokens,
		now:      time.Now,
	}
}

// Signup registers a user. The existence checks only produce friendly errors
// early; the unique indexes behind userRepo.Create are what actually enforce
// uniqueness under concurrent signups.
func (u *authUsecase) Signup(ctx context.Context, in domain.SignupInput) (*domain.User, error) {
	username := strings.TrimSpace(in.Username)
	email := strings.ToLower(strings.TrimSpace(in.Email))

	exists, err := u.userRepo.ExistsByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, domain.ErrUsernameTaken
	}

	exists, err = u.userRepo.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, domain.ErrEmailTaken
	}

	hash, err := u.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := u.now()
	user := &domain.User{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Roles:        domain.ParseRoles(in.Roles),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := u.userRepo.Create(ctx, user); err != nil {
		// Lost the race against a concurrent signup with the same identity.
		switch {
		case errors.Is(err, domain.ErrEmailTaken):
			return nil, domain.ErrEmailTaken
		case errors.Is(err, domain.ErrConflict):
			return nil, domain.ErrUsernameTaken
		}
		return nil, err
	}

	logger.Log.Info("User registered", "user_id", user.ID, "roles", user.Roles)
	return user, nil
}

// Signin fails with the same ErrBadCredentials whether the username is
// unknown or the password is wrong.
func (u *authUsecase) Signin(ctx context.Context, username, password string) (*domain.SigninResult, error) {
	user, err := u.userRepo.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrBadCredentials
		}
		return nil, err
	}
	if !u.hasher.Verify(user.PasswordHash, password) {
		return nil, domain.ErrBadCredentials
	}

	token, err := u.tokens.Issue(user.Username)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	return &domain.SigninResult{
		AccessToken: token,
		TokenType:   tokenTypeBearer,
		ID:          user.ID,
		Username:    user.Username,
		Email:       user.Email,
		Roles:       domain.Authorities(user.Roles),
	}, nil
}

func (u *authUsecase) GetCurrentUser(ctx context.Context, username string) (*domain.User, error) {
	return u.userRepo.GetByUsername(ctx, username)
}

func (u *authUsecase) ChangePassword(ctx context.Context, currentPassword, newPassword string) error {
	principal, ok := domain.PrincipalFrom(ctx)
	if !ok {
		return domain.ErrUnauthenticated
	}

	user, err := u.userRepo.GetByUsername(ctx, principal.Username)
	if err != nil {
		return err
	}
	if !u.hasher.Verify(user.PasswordHash, currentPassword) {
		return domain.ErrPasswordMismatch
	}

	hash, err := u.hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return u.userRepo.UpdatePassword(ctx, user.ID, hash, u.now())
}

// AssignRoles replaces a user's role set. Tokens already issued to that user
// pick up the change on their next request.
func (u *authUsecase) AssignRoles(ctx context.Context, userID string, roles []string) (*domain.User, error) {
	principal, ok := domain.PrincipalFrom(ctx)
	if !ok || !principal.HasAnyRole(domain.RoleAdmin) {
		return nil, fmt.Errorf("%w: only admins can assign roles", domain.ErrForbidden)
	}

	user, err := u.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	user.Roles = domain.ParseRoles(roles)
	user.UpdatedAt = u.now()
	if err := u.userRepo.UpdateRoles(ctx, user.ID, user.Roles, user.UpdatedAt); err != nil {
		return nil, err
	}
	return user, nil
}
