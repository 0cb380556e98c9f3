package v1

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go-jobboard-backend/config"
	"go-jobboard-backend/internal/delivery/http/middleware"
	"go-jobboard-backend/internal/domain"
	"go-jobboard-backend/pkg/security"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// --- test doubles ---

type MockAuthUsecase struct{ mock.Mock }

func (m *MockAuthUsecase) Signup(ctx context.Context, in domain.SignupInput) (*domain.User, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockAuthUsecase) Signin(ctx context.Context, username, password string) (*domain.SigninResult, error) {
	args := m.Called(ctx, username, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SigninResult), args.Error(1)
}

func (m *MockAuthUsecase) GetCurrentUser(ctx context.Context, username string) (*domain.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockAuthUsecase) ChangePassword(ctx context.Context, currentPassword, newPassword string) error {
	return m.Called(ctx, currentPassword, newPassword).Error(0)
}

func (m *MockAuthUsecase) AssignRoles(ctx context.Context, userID string, roles []string) (*domain.User, error) {
	args := m.Called(ctx, userID, roles)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

type MockApplicationUsecase struct{ mock.Mock }

func (m *MockApplicationUsecase) Apply(ctx context.Context, in domain.ApplyInput) (*domain.Application, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Application), args.Error(1)
}

func (m *MockApplicationUsecase) ListMine(ctx context.Context) ([]domain.Application, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Application), args.Error(1)
}

func (m *MockApplicationUsecase) Withdraw(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockApplicationUsecase) GetByID(ctx context.Context, id string) (*domain.Application, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Application), args.Error(1)
}

func (m *MockApplicationUsecase) ListByCandidate(ctx context.Context, candidateID string) ([]domain.Application, error) {
	args := m.Called(ctx, candidateID)
	return args.Get(0).([]domain.Application), args.Error(1)
}

func (m *MockApplicationUsecase) ListByJob(ctx context.Context, jobID string, page, size int) (*domain.PaginatedResult[domain.Application], error) {
	args := m.Called(ctx, jobID, page, size)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PaginatedResult[domain.Application]), args.Error(1)
}

func (m *MockApplicationUsecase) UpdateStatus(ctx context.Context, id string, status string, reviewNotes *string) (*domain.Application, error) {
	args := m.Called(ctx, id, status, reviewNotes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Application), args.Error(1)
}

func (m *MockApplicationUsecase) AddReviewNotes(ctx context.Context, id, notes string) (*domain.Application, error) {
	args := m.Called(ctx, id, notes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Application), args.Error(1)
}

func (m *MockApplicationUsecase) AddInterviewNotes(ctx context.Context, id, notes string) (*domain.Application, error) {
	args := m.Called(ctx, id, notes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Application), args.Error(1)
}

func (m *MockApplicationUsecase) Stats(ctx context.Context, jobID string) (*domain.ApplicationStats, error) {
	args := m.Called(ctx, jobID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ApplicationStats), args.Error(1)
}

func (m *MockApplicationUsecase) ExportByJob(ctx context.Context, jobID string) ([]byte, error) {
	args := m.Called(ctx, jobID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

type fakeTokens map[string]string

func (f fakeTokens) Validate(token string) bool {
	_, ok := f[token]
	return ok
}

func (f fakeTokens) SubjectOf(token string) (string, error) {
	if s, ok := f[token]; ok {
		return s, nil
	}
	return "", errors.New("invalid")
}

type fakeGuard struct {
	blocked  bool
	failures []string
	cleared  []string
}

func (g *fakeGuard) IsBlocked(ctx context.Context, username, ip string) (bool, error) {
	return g.blocked, nil
}

func (g *fakeGuard) RecordFailedAttempt(ctx context.Context, username, ip, userAgent, requestID string) (bool, int, error) {
	g.failures = append(g.failures, username)
	return false, len(g.failures), nil
}

func (g *fakeGuard) ClearAttempts(ctx context.Context, username, ip string) error {
	g.cleared = append(g.cleared, username)
	return nil
}

func (g *fakeGuard) BlockTTL(ctx context.Context, username string) (time.Duration, error) {
	return 10 * time.Minute, nil
}

type fakeHealth struct {
	status map[string]string
	ok     bool
}

func (f fakeHealth) Check(ctx context.Context) (map[string]string, bool) {
	return f.status, f.ok
}

// --- harness ---

var (
	candidateUser = &domain.User{ID: "u-cand", Username: "carol", Roles: []domain.Role{domain.RoleCandidate}}
	recruiterUser = &domain.User{ID: "u-rec", Username: "rick", Roles: []domain.Role{domain.RoleRecruiter}}
)

type harness struct {
	router *gin.Engine
	authUC *MockAuthUsecase
	appUC  *MockApplicationUsecase
	guard  *fakeGuard
}

func newHarness(t *testing.T, health HealthChecker) *harness {
	t.Helper()
	h := &harness{
		authUC: new(MockAuthUsecase),
		appUC:  new(MockApplicationUsecase),
		guard:  &fakeGuard{},
	}
	h.authUC.On("GetCurrentUser", mock.Anything, "carol").Return(candidateUser, nil).Maybe()
	h.authUC.On("GetCurrentUser", mock.Anything, "rick").Return(recruiterUser, nil).Maybe()

	if health == nil {
		health = fakeHealth{status: map[string]string{"database": "up", "redis": "not_configured"}, ok: true}
	}

	h.router = NewRouter(RouterDeps{
		AuthUC:        h.authUC,
		ApplicationUC: h.appUC,
		Health:        health,
		Tokens:        fakeTokens{"cand": "carol", "rec": "rick"},
		LoginGuard:    h.guard,
		RateLimiter:   middleware.NewRateLimiter(nil, security.NopSecurityLogger()),
		SecLogger:     security.NopSecurityLogger(),
		Config: &config.Config{
			RateLimitWindowSeconds:   60,
			RateLimitGlobalThreshold: 10000,
			RateLimitAuthThreshold:   10000,
			AllowedOrigins:           []string{"http://localhost:3000"},
		},
	})
	return h
}

func (h *harness) do(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	h.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

// --- auth ---

func TestSignup(t *testing.T) {
	h := newHarness(t, nil)
	in := domain.SignupInput{Username: "alice", Email: "alice@x.com", Password: "secret1", Roles: []string{"recruiter"}}
	h.authUC.On("Signup", mock.Anything, in).Return(&domain.User{ID: "u1"}, nil).Once()

	w := h.do(http.MethodPost, "/api/auth/signup", "", map[string]interface{}{
		"username": "alice", "email": "alice@x.com", "password": "secret1", "role": []string{"recruiter"},
	})

	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "User registered successfully!", body["message"])
	h.authUC.AssertExpectations(t)
}

func TestSignupConflict(t *testing.T) {
	h := newHarness(t, nil)
	h.authUC.On("Signup", mock.Anything, mock.Anything).Return(nil, domain.ErrUsernameTaken).Once()

	w := h.do(http.MethodPost, "/api/auth/signup", "", map[string]interface{}{
		"username": "alice", "email": "alice@x.com", "password": "secret1",
	})

	require.Equal(t, http.StatusBadRequest, w.Code)
	body := decode(t, w)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Username is already taken", body["message"])
}

func TestSignupValidation(t *testing.T) {
	h := newHarness(t, nil)

	w := h.do(http.MethodPost, "/api/auth/signup", "", map[string]interface{}{
		"username": "al", "email": "nope", "password": "secret1",
	})

	require.Equal(t, http.StatusBadRequest, w.Code)
	body := decode(t, w)
	fields, ok := body["error"].(map[string]interface{})
	require.True(t, ok, w.Body.String())
	assert.Contains(t, fields, "username")
	assert.Contains(t, fields, "email")
	h.authUC.AssertNotCalled(t, "Signup", mock.Anything, mock.Anything)
}

func TestSignin(t *testing.T) {
	h := newHarness(t, nil)
	result := &domain.SigninResult{AccessToken: "tok", TokenType: "Bearer", ID: "u1", Username: "alice", Email: "alice@x.com", Roles: []string{"ROLE_RECRUITER"}}
	h.authUC.On("Signin", mock.Anything, "alice", "secret1").Return(result, nil).Once()
	h.authUC.On("Signin", mock.Anything, "alice", "wrong").Return(nil, domain.ErrBadCredentials).Once()

	w := h.do(http.MethodPost, "/api/auth/signin", "", SigninRequest{Username: "alice", Password: "secret1"})
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, "tok", body["accessToken"])
	assert.Equal(t, "Bearer", body["tokenType"])
	assert.Equal(t, []interface{}{"ROLE_RECRUITER"}, body["roles"])
	assert.Equal(t, []string{"alice"}, h.guard.cleared)

	w = h.do(http.MethodPost, "/api/auth/signin", "", SigninRequest{Username: "alice", Password: "wrong"})
	require.Equal(t, http.StatusUnauthorized, w.Code)
	body = decode(t, w)
	assert.Equal(t, "Unauthorized", body["error"])
	assert.Equal(t, "Bad credentials", body["message"])
	assert.Equal(t, []string{"alice"}, h.guard.failures)
}

func TestSigninBlocked(t *testing.T) {
	h := newHarness(t, nil)
	h.guard.blocked = true

	w := h.do(http.MethodPost, "/api/auth/signin", "", SigninRequest{Username: "alice", Password: "secret1"})

	require.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, decode(t, w)["message"], "11 minutes")
	h.authUC.AssertNotCalled(t, "Signin", mock.Anything, mock.Anything, mock.Anything)
}

func TestMe(t *testing.T) {
	h := newHarness(t, nil)

	assert.Equal(t, http.StatusUnauthorized, h.do(http.MethodGet, "/api/auth/me", "", nil).Code)

	w := h.do(http.MethodGet, "/api/auth/me", "cand", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, "carol", body["username"])
	assert.NotContains(t, body, "passwordHash")
}

func TestAssignRolesRequiresAdmin(t *testing.T) {
	h := newHarness(t, nil)

	w := h.do(http.MethodPut, "/api/users/u-cand/roles", "rec", AssignRolesRequest{Roles: []string{"admin"}})

	assert.Equal(t, http.StatusForbidden, w.Code)
	h.authUC.AssertNotCalled(t, "AssignRoles", mock.Anything, mock.Anything, mock.Anything)
}

// --- applications ---

func TestApplyRoleGuard(t *testing.T) {
	h := newHarness(t, nil)
	body := ApplyRequest{JobID: "j1", CoverLetter: "hi"}

	assert.Equal(t, http.StatusUnauthorized, h.do(http.MethodPost, "/api/applications", "", body).Code)
	assert.Equal(t, http.StatusForbidden, h.do(http.MethodPost, "/api/applications", "rec", body).Code)
	h.appUC.AssertNotCalled(t, "Apply", mock.Anything, mock.Anything)
}

func TestApply(t *testing.T) {
	h := newHarness(t, nil)
	in := domain.ApplyInput{JobID: "j1", CoverLetter: "hi"}
	h.appUC.On("Apply", mock.Anything, in).Return(&domain.Application{ID: "a1", JobID: "j1", CandidateID: "c1", Status: domain.StatusApplied}, nil).Once()
	h.appUC.On("Apply", mock.Anything, in).Return(nil, domain.ErrDuplicateApplication).Once()

	w := h.do(http.MethodPost, "/api/applications", "cand", ApplyRequest{JobID: "j1", CoverLetter: "hi"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "APPLIED", decode(t, w)["status"])

	w = h.do(http.MethodPost, "/api/applications", "cand", ApplyRequest{JobID: "j1", CoverLetter: "hi"})
	require.Equal(t, http.StatusBadRequest, w.Code)
	body := decode(t, w)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "You have already applied for this job", body["message"])
}

func TestApplyPassesPrincipalInContext(t *testing.T) {
	h := newHarness(t, nil)
	h.appUC.On("Apply", mock.MatchedBy(func(ctx context.Context) bool {
		p, ok := domain.PrincipalFrom(ctx)
		return ok && p.UserID == "u-cand" && p.HasAnyRole(domain.RoleCandidate)
	}), mock.Anything).Return(&domain.Application{ID: "a1"}, nil).Once()

	w := h.do(http.MethodPost, "/api/applications", "cand", ApplyRequest{JobID: "j1"})

	assert.Equal(t, http.StatusOK, w.Code)
	h.appUC.AssertExpectations(t)
}

func TestUpdateStatus(t *testing.T) {
	h := newHarness(t, nil)
	reviewed := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	notes := "strong portfolio"
	h.appUC.On("UpdateStatus", mock.Anything, "a1", "REJECTED", &notes).
		Return(&domain.Application{ID: "a1", Status: domain.StatusRejected, ReviewNotes: &notes, ReviewedAt: &reviewed}, nil).Once()
	h.appUC.On("UpdateStatus", mock.Anything, "a2", "REVIEWING", (*string)(nil)).
		Return(&domain.Application{ID: "a2", Status: domain.StatusReviewing}, nil).Once()
	h.appUC.On("UpdateStatus", mock.Anything, "missing", "REVIEWING", (*string)(nil)).
		Return(nil, domain.ErrNotFound).Once()

	w := h.do(http.MethodPut, "/api/applications/a1/status?status=REJECTED&reviewNotes=strong+portfolio", "rec", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, "REJECTED", body["status"])
	assert.NotEmpty(t, body["reviewDate"])

	w = h.do(http.MethodPut, "/api/applications/a2/status?status=REVIEWING", "rec", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = h.do(http.MethodPut, "/api/applications/missing/status?status=REVIEWING", "rec", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Empty(t, w.Body.String())

	w = h.do(http.MethodPut, "/api/applications/a1/status", "rec", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	assert.Equal(t, http.StatusForbidden, h.do(http.MethodPut, "/api/applications/a1/status?status=ACCEPTED", "cand", nil).Code)
	h.appUC.AssertExpectations(t)
}

func TestWithdraw(t *testing.T) {
	h := newHarness(t, nil)
	h.appUC.On("Withdraw", mock.Anything, "a1").Return(nil).Once()
	h.appUC.On("Withdraw", mock.Anything, "nope").Return(domain.ErrNotFound).Once()

	w := h.do(http.MethodDelete, "/api/applications/a1", "cand", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, decode(t, w)["success"])

	w = h.do(http.MethodDelete, "/api/applications/nope", "cand", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Empty(t, w.Body.String())
}

func TestExportByJob(t *testing.T) {
	h := newHarness(t, nil)
	h.appUC.On("ExportByJob", mock.Anything, "j1").Return([]byte("PK\x03\x04xlsx"), nil).Once()

	w := h.do(http.MethodGet, "/api/applications/job/j1/export", "rec", nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, xlsxContentType, w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "applications-j1.xlsx")
}

func TestStatsForbiddenSurfacesAs403(t *testing.T) {
	h := newHarness(t, nil)
	h.appUC.On("Stats", mock.Anything, "j9").Return(nil, domain.ErrForbidden).Once()

	w := h.do(http.MethodGet, "/api/applications/stats/job/j9", "rec", nil)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

// --- health ---

func TestHealth(t *testing.T) {
	h := newHarness(t, nil)
	w := h.do(http.MethodGet, "/api/health", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "up", decode(t, w)["data"].(map[string]interface{})["database"])

	h = newHarness(t, fakeHealth{status: map[string]string{"database": "down", "redis": "up"}, ok: false})
	w = h.do(http.MethodGet, "/api/health", "", nil)
	require.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, false, decode(t, w)["success"])
}
