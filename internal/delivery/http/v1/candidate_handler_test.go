package v1

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"go-jobboard-backend/internal/delivery/http/middleware"
	"go-jobboard-backend/internal/domain"
	"go-jobboard-backend/pkg/security"
	"go-jobboard-backend/pkg/security/antivirus"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockCandidateUsecase struct {
	domain.CandidateUsecase
	mock.Mock
}

func (m *MockCandidateUsecase) UploadResume(ctx context.Context, filename string, data []byte) (*domain.CandidateProfile, error) {
	args := m.Called(ctx, filename, data)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CandidateProfile), args.Error(1)
}

type fakeQuota struct {
	allowed bool
	retry   int
	err     error
	userID  string
}

func (q *fakeQuota) AllowUpload(_ context.Context, _, userID string) (bool, int, error) {
	q.userID = userID
	return q.allowed, q.retry, q.err
}

type fakeScanner struct {
	antivirus.NoOpScanner
	result antivirus.ScanResult
}

func (s fakeScanner) Scan(context.Context, string, io.Reader) antivirus.ScanResult {
	return s.result
}

func newUploadRouter(uc domain.CandidateUsecase, quota UploadQuota, scanner antivirus.Scanner) *gin.Engine {
	r := gin.New()
	r.Use(middleware.ErrorHandler())
	asCandidate := func(roles ...domain.Role) gin.HandlerFunc {
		return func(c *gin.Context) {
			p := &domain.Principal{UserID: "u-cand", Username: "carol", Roles: []domain.Role{domain.RoleCandidate}}
			c.Request = c.Request.WithContext(domain.WithPrincipal(c.Request.Context(), p))
			c.Next()
		}
	}
	NewCandidateHandler(r.Group("/api"), asCandidate, uc, quota, scanner, security.NopSecurityLogger())
	return r
}

func resumeRequest(t *testing.T, filename string, content []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/candidates/me/resume", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func TestUploadResume(t *testing.T) {
	pdf := []byte("%PDF-1.4\nresume")

	t.Run("stored", func(t *testing.T) {
		uc := new(MockCandidateUsecase)
		ref := "https://bucket.example/resumes/p1/cv.pdf"
		uc.On("UploadResume", mock.Anything, "cv.pdf", pdf).
			Return(&domain.CandidateProfile{ID: "p1", ResumeURL: &ref}, nil).Once()
		quota := &fakeQuota{allowed: true}

		rec := httptest.NewRecorder()
		newUploadRouter(uc, quota, nil).ServeHTTP(rec, resumeRequest(t, "cv.pdf", pdf))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), ref)
		assert.Equal(t, "u-cand", quota.userID)
		uc.AssertExpectations(t)
	})

	t.Run("quota exhausted", func(t *testing.T) {
		uc := new(MockCandidateUsecase)

		rec := httptest.NewRecorder()
		newUploadRouter(uc, &fakeQuota{allowed: false, retry: 60}, nil).ServeHTTP(rec, resumeRequest(t, "cv.pdf", pdf))

		assert.Equal(t, http.StatusTooManyRequests, rec.Code)
		assert.Equal(t, "60", rec.Header().Get("Retry-After"))
		uc.AssertNotCalled(t, "UploadResume", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("quota backend down", func(t *testing.T) {
		rec := httptest.NewRecorder()
		newUploadRouter(new(MockCandidateUsecase), &fakeQuota{err: errors.New("redis down")}, nil).
			ServeHTTP(rec, resumeRequest(t, "cv.pdf", pdf))

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})

	t.Run("infected", func(t *testing.T) {
		uc := new(MockCandidateUsecase)
		scanner := fakeScanner{result: antivirus.ScanResult{Infected: true, ThreatName: "Eicar", ScannerName: "fake"}}

		rec := httptest.NewRecorder()
		newUploadRouter(uc, nil, scanner).ServeHTTP(rec, resumeRequest(t, "cv.pdf", pdf))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "malware scanner")
		uc.AssertNotCalled(t, "UploadResume", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("scanner unavailable", func(t *testing.T) {
		scanner := fakeScanner{result: antivirus.ScanResult{Infected: true, Error: errors.New("dial tcp: refused")}}

		rec := httptest.NewRecorder()
		newUploadRouter(new(MockCandidateUsecase), nil, scanner).ServeHTTP(rec, resumeRequest(t, "cv.pdf", pdf))

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})

	t.Run("missing file", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/candidates/me/resume", nil)

		rec := httptest.NewRecorder()
		newUploadRouter(new(MockCandidateUsecase), nil, nil).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
