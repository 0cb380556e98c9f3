package v1

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strconv"

	"go-jobboard-backend/internal/domain"
	"go-jobboard-backend/pkg/apperror"
	"go-jobboard-backend/pkg/logger"
	"go-jobboard-backend/pkg/security"
	"go-jobboard-backend/pkg/security/antivirus"

	"github.com/gin-gonic/gin"
)

// UploadQuota admits or rejects an upload for an IP and user.
type UploadQuota interface {
	AllowUpload(ctx context.Context, ip, userID string) (bool, int, error)
}

type CandidateHandler struct {
	candidateUC domain.CandidateUsecase
	uploads     UploadQuota
	scanner     antivirus.Scanner
	secLogger   *security.SecurityLogger
}

func NewCandidateHandler(api *gin.RouterGroup, require roleGuard, candidateUC domain.CandidateUsecase,
	uploads UploadQuota, scanner antivirus.Scanner, secLogger *security.SecurityLogger) {
	if scanner == nil {
		scanner = antivirus.NoOpScanner{}
	}
	handler := &CandidateHandler{
		candidateUC: candidateUC,
		uploads:     uploads,
		scanner:     scanner,
		secLogger:   secLogger,
	}

	candidates := api.Group("/candidates")
	{
		candidate := require(domain.RoleCandidate)
		candidates.POST("", candidate, handler.Create)
		candidates.GET("/me", candidate, handler.GetMine)
		candidates.POST("/me/resume", candidate, handler.UploadResume)
		candidates.PUT("/:id", candidate, handler.Update)
		candidates.DELETE("/:id", require(domain.RoleCandidate, domain.RoleAdmin), handler.Delete)

		recruiter := require(domain.RoleRecruiter, domain.RoleAdmin)
		candidates.GET("", recruiter, handler.List)
		candidates.GET("/search", recruiter, handler.SearchBySkill)
		candidates.GET("/search/location", recruiter, handler.SearchByLocation)

		candidates.GET("/:id", require(domain.RoleCandidate, domain.RoleRecruiter, domain.RoleAdmin), handler.Get)
	}
}

type CandidateProfileRequest struct {
	FirstName       string   `json:"firstName" binding:"required,max=50,valid_name"`
	LastName        string   `json:"lastName" binding:"required,max=50,valid_name"`
	Phone           string   `json:"phone" binding:"omitempty,valid_phone"`
	Location        string   `json:"location" binding:"max=100"`
	Headline        string   `json:"headline" binding:"max=120,no_emoji"`
	Summary         string   `json:"summary" binding:"max=2000"`
	Skills          []string `json:"skills" binding:"max=50,dive,max=50"`
	ExperienceYears int      `json:"experienceYears" binding:"gte=0,lte=70"`
	Education       string   `json:"education" binding:"max=200"`
}

func (r CandidateProfileRequest) toProfile() *domain.CandidateProfile {
	return &domain.CandidateProfile{
		FirstName:       r.FirstName,
		LastName:        r.LastName,
		Phone:           optional(r.Phone),
		Location:        optional(r.Location),
		Headline:        optional(r.Headline),
		Summary:         optional(r.Summary),
		Skills:          r.Skills,
		ExperienceYears: r.ExperienceYears,
		Education:       optional(r.Education),
	}
}

// Create godoc
// @Summary      Create my candidate profile
// @Tags         candidates
// @Accept       json
// @Produce      json
// @Param        body  body      CandidateProfileRequest  true  "Profile"
// @Success      200   {object}  domain.CandidateProfile
// @Failure      400   {object}  response.Response
// @Router       /candidates [post]
// @Security     BearerAuth
func (h *CandidateHandler) Create(c *gin.Context) {
	var req CandidateProfileRequest
	if !bindJSON(c, &req) {
		return
	}

	profile := req.toProfile()
	if err := h.candidateUC.CreateProfile(reqCtx(c), profile); err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

// GetMine godoc
// @Summary      Get my candidate profile
// @Tags         candidates
// @Produce      json
// @Success      200  {object}  domain.CandidateProfile
// @Failure      404  "Not found"
// @Router       /candidates/me [get]
// @Security     BearerAuth
func (h *CandidateHandler) GetMine(c *gin.Context) {
	profile, err := h.candidateUC.GetMyProfile(reqCtx(c))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

// Get godoc
// @Summary      Get a candidate profile
// @Tags         candidates
// @Produce      json
// @Param        id   path      string  true  "Candidate profile ID"
// @Success      200  {object}  domain.CandidateProfile
// @Failure      404  "Not found"
// @Router       /candidates/{id} [get]
// @Security     BearerAuth
func (h *CandidateHandler) Get(c *gin.Context) {
	profile, err := h.candidateUC.GetProfile(reqCtx(c), c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

// List godoc
// @Summary      List candidate profiles
// @Tags         candidates
// @Produce      json
// @Param        page  query     int  false  "Zero-based page"
// @Param        size  query     int  false  "Page size"
// @Success      200   {object}  domain.PaginatedResult[domain.CandidateProfile]
// @Router       /candidates [get]
// @Security     BearerAuth
func (h *CandidateHandler) List(c *gin.Context) {
	result, err := h.candidateUC.ListCandidates(reqCtx(c), queryInt(c, "page", 0), queryInt(c, "size", domain.DefaultPageSize))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// SearchBySkill godoc
// @Summary      Find candidates with a skill
// @Tags         candidates
// @Produce      json
// @Param        skill  query     string  true  "Skill (case-insensitive)"
// @Success      200    {array}   domain.CandidateProfile
// @Failure      400    {object}  response.Response
// @Router       /candidates/search [get]
// @Security     BearerAuth
func (h *CandidateHandler) SearchBySkill(c *gin.Context) {
	profiles, err := h.candidateUC.SearchBySkill(reqCtx(c), c.Query("skill"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, profiles)
}

// SearchByLocation godoc
// @Summary      Find candidates by location
// @Tags         candidates
// @Produce      json
// @Param        location  query     string  true  "Location"
// @Success      200       {array}   domain.CandidateProfile
// @Router       /candidates/search/location [get]
// @Security     BearerAuth
func (h *CandidateHandler) SearchByLocation(c *gin.Context) {
	profiles, err := h.candidateUC.SearchByLocation(reqCtx(c), c.Query("location"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, profiles)
}

// Update godoc
// @Summary      Update my candidate profile
// @Tags         candidates
// @Accept       json
// @Produce      json
// @Param        id    path      string                   true  "Candidate profile ID"
// @Param        body  body      CandidateProfileRequest  true  "Profile"
// @Success      200   {object}  domain.CandidateProfile
// @Failure      403   {object}  response.Response
// @Router       /candidates/{id} [put]
// @Security     BearerAuth
func (h *CandidateHandler) Update(c *gin.Context) {
	var req CandidateProfileRequest
	if !bindJSON(c, &req) {
		return
	}

	profile, err := h.candidateUC.UpdateProfile(reqCtx(c), c.Param("id"), req.toProfile())
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

// Delete godoc
// @Summary      Delete a candidate profile
// @Tags         candidates
// @Produce      json
// @Param        id   path      string  true  "Candidate profile ID"
// @Success      200  {object}  MessageResponse
// @Router       /candidates/{id} [delete]
// @Security     BearerAuth
func (h *CandidateHandler) Delete(c *gin.Context) {
	if err := h.candidateUC.DeleteProfile(reqCtx(c), c.Param("id")); err != nil {
		_ = c.Error(err)
		return
	}
	acknowledge(c, http.StatusOK, "Candidate profile deleted successfully")
}

// UploadResume godoc
// @Summary      Upload my resume
// @Description  pdf, doc or docx up to 5 MiB; stored in object storage
// @Tags         candidates
// @Accept       multipart/form-data
// @Produce      json
// @Param        file  formData  file  true  "Resume"
// @Success      200   {object}  domain.CandidateProfile
// @Failure      400   {object}  response.Response
// @Failure      429   {object}  response.Response
// @Failure      503   {object}  response.Response
// @Router       /candidates/me/resume [post]
// @Security     BearerAuth
func (h *CandidateHandler) UploadResume(c *gin.Context) {
	ctx := reqCtx(c)
	if !h.admitUpload(c) {
		return
	}

	// Reject oversized bodies before multipart parsing buffers them
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, security.MaxResumeSize+1<<20)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		_ = c.Error(apperror.BadRequest("A resume file is required in the 'file' field"))
		return
	}
	if fileHeader.Size > security.MaxResumeSize {
		_ = c.Error(apperror.BadRequest(security.ErrFileTooLarge.Error()))
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		_ = c.Error(apperror.BadRequest("Could not read the uploaded file"))
		return
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, security.MaxResumeSize+1))
	if err != nil {
		_ = c.Error(apperror.BadRequest("Could not read the uploaded file"))
		return
	}

	verdict := h.scanner.Scan(ctx, fileHeader.Filename, bytes.NewReader(data))
	if verdict.Error != nil {
		logger.Log.Error("Resume scan failed", "scanner", verdict.ScannerName, "error", verdict.Error)
		_ = c.Error(apperror.ServiceUnavailable("File scanning is unavailable, please retry later"))
		return
	}
	if verdict.Infected {
		logger.Log.Warn("Rejected infected resume", "scanner", verdict.ScannerName, "threat", verdict.ThreatName, "ip", c.ClientIP())
		_ = c.Error(apperror.BadRequest("The uploaded file was rejected by the malware scanner"))
		return
	}

	profile, err := h.candidateUC.UploadResume(ctx, fileHeader.Filename, data)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

// admitUpload applies the upload quota. It writes the rejection and returns
// false when the upload must not proceed.
func (h *CandidateHandler) admitUpload(c *gin.Context) bool {
	if h.uploads == nil {
		return true
	}
	var userID string
	if principal, ok := domain.PrincipalFrom(c.Request.Context()); ok {
		userID = principal.UserID
	}

	allowed, retryAfter, err := h.uploads.AllowUpload(c.Request.Context(), c.ClientIP(), userID)
	if err != nil {
		logger.Log.Error("Upload quota check failed", "error", err)
		_ = c.Error(apperror.ServiceUnavailable("Uploads are temporarily unavailable"))
		return false
	}
	if !allowed {
		c.Header("Retry-After", strconv.Itoa(retryAfter))
		h.secLogger.LogRateLimitTriggered(c.Request.Context(), c.ClientIP(), c.GetHeader("User-Agent"),
			c.GetString(string(domain.KeyRequestID)), c.FullPath())
		_ = c.Error(apperror.TooManyRequests("Upload limit reached, please try again later"))
		return false
	}
	return true
}
