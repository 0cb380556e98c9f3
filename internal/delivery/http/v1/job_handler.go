package v1

import (
	"net/http"
	"time"

	"go-jobboard-backend/internal/domain"

	"github.com/gin-gonic/gin"
)

type JobHandler struct {
	jobUC domain.JobUsecase
}

func NewJobHandler(api *gin.RouterGroup, require roleGuard, jobUC domain.JobUsecase) {
	handler := &JobHandler{jobUC: jobUC}

	jobs := api.Group("/jobs")
	{
		// Public, active jobs only
		jobs.GET("", handler.List)
		jobs.GET("/search", handler.Search)
		jobs.GET("/category/:category", handler.ListByCategory)
		jobs.GET("/location/:location", handler.ListByLocation)
		jobs.GET("/:id", handler.Get)

		recruiter := require(domain.RoleRecruiter)
		jobs.POST("", recruiter, handler.Create)
		jobs.PUT("/:id", recruiter, handler.Update)
		jobs.DELETE("/:id", recruiter, handler.Delete)
		jobs.PUT("/:id/toggleActive", recruiter, handler.ToggleActive)
		jobs.GET("/recruiter/:recruiterId", recruiter, handler.ListByRecruiter)
	}
}

type JobRequest struct {
	Title          string     `json:"title" binding:"required,max=100"`
	Description    string     `json:"description" binding:"required"`
	Company        string     `json:"company" binding:"max=100"`
	Location       string     `json:"location" binding:"max=100"`
	Category       string     `json:"category" binding:"max=50"`
	EmploymentType string     `json:"employmentType" binding:"omitempty,oneof=FULL_TIME PART_TIME CONTRACT INTERNSHIP REMOTE"`
	SalaryMin      *float64   `json:"salaryMin" binding:"omitempty,gte=0"`
	SalaryMax      *float64   `json:"salaryMax" binding:"omitempty,gte=0"`
	Requirements   []string   `json:"requirements" binding:"max=50,dive,max=200"`
	Deadline       *time.Time `json:"deadline"`
}

func (r JobRequest) toJob() *domain.Job {
	return &domain.Job{
		Title:          r.Title,
		Description:    r.Description,
		Company:        r.Company,
		Location:       r.Location,
		Category:       r.Category,
		EmploymentType: domain.EmploymentType(r.EmploymentType),
		SalaryMin:      r.SalaryMin,
		SalaryMax:      r.SalaryMax,
		Requirements:   r.Requirements,
		Deadline:       r.Deadline,
	}
}

func jobQuery(c *gin.Context) domain.JobQuery {
	return domain.JobQuery{
		Page:     queryInt(c, "page", 0),
		Size:     queryInt(c, "size", domain.DefaultPageSize),
		SortBy:   c.DefaultQuery("sortBy", "createdAt"),
		SortDir:  c.DefaultQuery("sortDir", "desc"),
		Keyword:  c.Query("keyword"),
		Category: c.Query("category"),
		Location: c.Query("location"),
	}
}

// List godoc
// @Summary      List active jobs
// @Tags         jobs
// @Produce      json
// @Param        page     query     int     false  "Zero-based page"
// @Param        size     query     int     false  "Page size (max 100)"
// @Param        sortBy   query     string  false  "createdAt|title|salaryMin|salaryMax|location|company"
// @Param        sortDir  query     string  false  "asc|desc"
// @Success      200      {object}  domain.JobPage
// @Router       /jobs [get]
func (h *JobHandler) List(c *gin.Context) {
	h.list(c, jobQuery(c))
}

// Search godoc
// @Summary      Search active jobs
// @Description  Keyword match over title, description and company
// @Tags         jobs
// @Produce      json
// @Param        keyword   query     string  false  "Keyword"
// @Param        category  query     string  false  "Category"
// @Param        location  query     string  false  "Location"
// @Param        page      query     int     false  "Zero-based page"
// @Param        size      query     int     false  "Page size"
// @Success      200       {object}  domain.JobPage
// @Router       /jobs/search [get]
func (h *JobHandler) Search(c *gin.Context) {
	h.list(c, jobQuery(c))
}

// ListByCategory godoc
// @Summary      List active jobs of a category
// @Tags         jobs
// @Produce      json
// @Param        category  path      string  true  "Category"
// @Success      200       {object}  domain.JobPage
// @Router       /jobs/category/{category} [get]
func (h *JobHandler) ListByCategory(c *gin.Context) {
	q := jobQuery(c)
	q.Category = c.Param("category")
	h.list(c, q)
}

// ListByLocation godoc
// @Summary      List active jobs at a location
// @Tags         jobs
// @Produce      json
// @Param        location  path      string  true  "Location"
// @Success      200       {object}  domain.JobPage
// @Router       /jobs/location/{location} [get]
func (h *JobHandler) ListByLocation(c *gin.Context) {
	q := jobQuery(c)
	q.Location = c.Param("location")
	h.list(c, q)
}

func (h *JobHandler) list(c *gin.Context, q domain.JobQuery) {
	page, err := h.jobUC.ListJobs(reqCtx(c), q)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// Get godoc
// @Summary      Get a job
// @Tags         jobs
// @Produce      json
// @Param        id   path      string  true  "Job ID"
// @Success      200  {object}  domain.Job
// @Failure      404  "Not found"
// @Router       /jobs/{id} [get]
func (h *JobHandler) Get(c *gin.Context) {
	job, err := h.jobUC.GetJob(reqCtx(c), c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, job)
}

// Create godoc
// @Summary      Post a job
// @Description  Recruiter only; the caller's recruiter profile becomes the owner
// @Tags         jobs
// @Accept       json
// @Produce      json
// @Param        job  body      JobRequest  true  "Job"
// @Success      200  {object}  domain.Job
// @Failure      400  {object}  response.Response
// @Failure      401  {object}  response.EntryPointError
// @Failure      403  {object}  response.EntryPointError
// @Router       /jobs [post]
// @Security     BearerAuth
func (h *JobHandler) Create(c *gin.Context) {
	var req JobRequest
	if !bindJSON(c, &req) {
		return
	}

	job := req.toJob()
	if err := h.jobUC.CreateJob(reqCtx(c), job); err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, job)
}

// Update godoc
// @Summary      Update a job
// @Tags         jobs
// @Accept       json
// @Produce      json
// @Param        id   path      string      true  "Job ID"
// @Param        job  body      JobRequest  true  "Job"
// @Success      200  {object}  domain.Job
// @Failure      403  {object}  response.EntryPointError
// @Failure      404  "Not found"
// @Router       /jobs/{id} [put]
// @Security     BearerAuth
func (h *JobHandler) Update(c *gin.Context) {
	var req JobRequest
	if !bindJSON(c, &req) {
		return
	}

	job, err := h.jobUC.UpdateJob(reqCtx(c), c.Param("id"), req.toJob())
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, job)
}

// ToggleActive godoc
// @Summary      Open or close a job for applications
// @Tags         jobs
// @Produce      json
// @Param        id   path      string  true  "Job ID"
// @Success      200  {object}  domain.Job
// @Failure      404  "Not found"
// @Router       /jobs/{id}/toggleActive [put]
// @Security     BearerAuth
func (h *JobHandler) ToggleActive(c *gin.Context) {
	job, err := h.jobUC.ToggleActive(reqCtx(c), c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, job)
}

// Delete godoc
// @Summary      Delete a job
// @Tags         jobs
// @Produce      json
// @Param        id   path      string  true  "Job ID"
// @Success      200  {object}  MessageResponse
// @Failure      404  "Not found"
// @Router       /jobs/{id} [delete]
// @Security     BearerAuth
func (h *JobHandler) Delete(c *gin.Context) {
	if err := h.jobUC.DeleteJob(reqCtx(c), c.Param("id")); err != nil {
		_ = c.Error(err)
		return
	}
	acknowledge(c, http.StatusOK, "Job deleted successfully")
}

// ListByRecruiter godoc
// @Summary      List all jobs of a recruiter
// @Description  Includes inactive jobs
// @Tags         jobs
// @Produce      json
// @Param        recruiterId  path      string  true  "Recruiter profile ID"
// @Success      200          {object}  domain.JobPage
// @Router       /jobs/recruiter/{recruiterId} [get]
// @Security     BearerAuth
func (h *JobHandler) ListByRecruiter(c *gin.Context) {
	page, err := h.jobUC.ListByRecruiter(reqCtx(c), c.Param("recruiterId"), jobQuery(c))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, page)
}
