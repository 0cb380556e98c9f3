package v1

import (
	"fmt"
	"net/http"

	"go-jobboard-backend/internal/domain"
	"go-jobboard-backend/pkg/apperror"

	"github.com/gin-gonic/gin"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type ApplicationHandler struct {
	applicationUC domain.ApplicationUsecase
}

// NewApplicationHandler registers application routes
func NewApplicationHandler(api *gin.RouterGroup, require roleGuard, applicationUC domain.ApplicationUsecase) {
	handler := &ApplicationHandler{applicationUC: applicationUC}

	applications := api.Group("/applications")
	{
		// Candidate routes
		candidate := require(domain.RoleCandidate)
		applications.POST("", candidate, handler.Apply)
		applications.GET("/me", candidate, handler.ListMine)
		applications.DELETE("/:id", candidate, handler.Withdraw)

		applications.GET("/:id", require(domain.RoleCandidate, domain.RoleRecruiter, domain.RoleAdmin), handler.Get)

		// Recruiter routes
		recruiter := require(domain.RoleRecruiter, domain.RoleAdmin)
		applications.PUT("/:id/status", recruiter, handler.UpdateStatus)
		applications.PUT("/:id/review-notes", recruiter, handler.AddReviewNotes)
		applications.PUT("/:id/interview-notes", recruiter, handler.AddInterviewNotes)
		applications.GET("/job/:jobId", recruiter, handler.ListByJob)
		applications.GET("/job/:jobId/export", recruiter, handler.ExportByJob)
		applications.GET("/candidate/:candidateId", recruiter, handler.ListByCandidate)
		applications.GET("/stats/job/:jobId", recruiter, handler.Stats)
	}
}

// ApplyRequest is the request payload for applying to a job
type ApplyRequest struct {
	JobID       string `json:"jobId" binding:"required"`
	CoverLetter string `json:"coverLetter" binding:"max=5000"`
	ResumeURL   string `json:"resumeUrl" binding:"omitempty,max=500"`
}

type NotesRequest struct {
	Notes string `json:"notes" binding:"max=5000"`
}

// Apply godoc
// @Summary      Apply to a job
// @Description  Candidate only. One application per candidate and job.
// @Tags         applications
// @Accept       json
// @Produce      json
// @Param        body  body      ApplyRequest  true  "Application data"
// @Success      200   {object}  domain.Application
// @Failure      400   {object}  response.Response
// @Failure      404   "Job not found"
// @Router       /applications [post]
// @Security     BearerAuth
func (h *ApplicationHandler) Apply(c *gin.Context) {
	var req ApplyRequest
	if !bindJSON(c, &req) {
		return
	}

	app, err := h.applicationUC.Apply(reqCtx(c), domain.ApplyInput{
		JobID:       req.JobID,
		CoverLetter: req.CoverLetter,
		ResumeURL:   req.ResumeURL,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, app)
}

// ListMine godoc
// @Summary      Get my applications
// @Tags         applications
// @Produce      json
// @Success      200  {array}   domain.Application
// @Failure      401  {object}  response.EntryPointError
// @Router       /applications/me [get]
// @Security     BearerAuth
func (h *ApplicationHandler) ListMine(c *gin.Context) {
	apps, err := h.applicationUC.ListMine(reqCtx(c))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, apps)
}

// Get godoc
// @Summary      Get an application
// @Description  Visible to the applying candidate and the job's recruiter
// @Tags         applications
// @Produce      json
// @Param        id   path      string  true  "Application ID"
// @Success      200  {object}  domain.Application
// @Failure      403  {object}  response.EntryPointError
// @Failure      404  "Not found"
// @Router       /applications/{id} [get]
// @Security     BearerAuth
func (h *ApplicationHandler) Get(c *gin.Context) {
	app, err := h.applicationUC.GetByID(reqCtx(c), c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, app)
}

// Withdraw godoc
// @Summary      Withdraw an application
// @Tags         applications
// @Produce      json
// @Param        id   path      string  true  "Application ID"
// @Success      200  {object}  MessageResponse
// @Failure      403  {object}  response.EntryPointError
// @Failure      404  "Not found"
// @Router       /applications/{id} [delete]
// @Security     BearerAuth
func (h *ApplicationHandler) Withdraw(c *gin.Context) {
	if err := h.applicationUC.Withdraw(reqCtx(c), c.Param("id")); err != nil {
		_ = c.Error(err)
		return
	}
	acknowledge(c, http.StatusOK, "Application withdrawn successfully")
}

// UpdateStatus godoc
// @Summary      Move an application to a new status
// @Tags         applications
// @Produce      json
// @Param        id           path      string  true   "Application ID"
// @Param        status       query     string  true   "APPLIED|REVIEWING|SHORTLISTED|ACCEPTED|REJECTED"
// @Param        reviewNotes  query     string  false  "Replaces the review notes when present"
// @Success      200          {object}  domain.Application
// @Failure      400          {object}  response.Response
// @Failure      404          "Not found"
// @Router       /applications/{id}/status [put]
// @Security     BearerAuth
func (h *ApplicationHandler) UpdateStatus(c *gin.Context) {
	status, ok := c.GetQuery("status")
	if !ok {
		_ = c.Error(apperror.BadRequest("status query parameter is required"))
		return
	}
	var reviewNotes *string
	if notes, present := c.GetQuery("reviewNotes"); present {
		reviewNotes = &notes
	}

	app, err := h.applicationUC.UpdateStatus(reqCtx(c), c.Param("id"), status, reviewNotes)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, app)
}

// AddReviewNotes godoc
// @Summary      Replace review notes
// @Tags         applications
// @Accept       json
// @Produce      json
// @Param        id    path      string        true  "Application ID"
// @Param        body  body      NotesRequest  true  "Notes"
// @Success      200   {object}  domain.Application
// @Failure      404   "Not found"
// @Router       /applications/{id}/review-notes [put]
// @Security     BearerAuth
func (h *ApplicationHandler) AddReviewNotes(c *gin.Context) {
	var req NotesRequest
	if !bindJSON(c, &req) {
		return
	}

	app, err := h.applicationUC.AddReviewNotes(reqCtx(c), c.Param("id"), req.Notes)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, app)
}

// AddInterviewNotes godoc
// @Summary      Replace interview notes
// @Tags         applications
// @Accept       json
// @Produce      json
// @Param        id    path      string        true  "Application ID"
// @Param        body  body      NotesRequest  true  "Notes"
// @Success      200   {object}  domain.Application
// @Failure      404   "Not found"
// @Router       /applications/{id}/interview-notes [put]
// @Security     BearerAuth
func (h *ApplicationHandler) AddInterviewNotes(c *gin.Context) {
	var req NotesRequest
	if !bindJSON(c, &req) {
		return
	}

	app, err := h.applicationUC.AddInterviewNotes(reqCtx(c), c.Param("id"), req.Notes)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, app)
}

// ListByJob godoc
// @Summary      List applications for a job
// @Tags         applications
// @Produce      json
// @Param        jobId  path      string  true   "Job ID"
// @Param        page   query     int     false  "Zero-based page"
// @Param        size   query     int     false  "Page size"
// @Success      200    {object}  domain.PaginatedResult[domain.Application]
// @Failure      403    {object}  response.EntryPointError
// @Failure      404    "Job not found"
// @Router       /applications/job/{jobId} [get]
// @Security     BearerAuth
func (h *ApplicationHandler) ListByJob(c *gin.Context) {
	result, err := h.applicationUC.ListByJob(reqCtx(c), c.Param("jobId"), queryInt(c, "page", 0), queryInt(c, "size", domain.DefaultPageSize))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// ExportByJob godoc
// @Summary      Export the applications of a job
// @Tags         applications
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param        jobId  path  string  true  "Job ID"
// @Success      200    {file}  file
// @Failure      403    {object}  response.EntryPointError
// @Router       /applications/job/{jobId}/export [get]
// @Security     BearerAuth
func (h *ApplicationHandler) ExportByJob(c *gin.Context) {
	jobID := c.Param("jobId")
	data, err := h.applicationUC.ExportByJob(reqCtx(c), jobID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="applications-%s.xlsx"`, jobID))
	c.Data(http.StatusOK, xlsxContentType, data)
}

// ListByCandidate godoc
// @Summary      List a candidate's applications to my jobs
// @Tags         applications
// @Produce      json
// @Param        candidateId  path      string  true  "Candidate profile ID"
// @Success      200          {array}   domain.Application
// @Router       /applications/candidate/{candidateId} [get]
// @Security     BearerAuth
func (h *ApplicationHandler) ListByCandidate(c *gin.Context) {
	apps, err := h.applicationUC.ListByCandidate(reqCtx(c), c.Param("candidateId"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, apps)
}

// Stats godoc
// @Summary      Application counts per status for a job
// @Tags         applications
// @Produce      json
// @Param        jobId  path      string  true  "Job ID"
// @Success      200    {object}  domain.ApplicationStats
// @Failure      404    "Job not found"
// @Router       /applications/stats/job/{jobId} [get]
// @Security     BearerAuth
func (h *ApplicationHandler) Stats(c *gin.Context) {
	stats, err := h.applicationUC.Stats(reqCtx(c), c.Param("jobId"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, stats)
}
