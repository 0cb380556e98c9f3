package v1

import (
	"net/http"

	"go-jobboard-backend/internal/domain"

	"github.com/gin-gonic/gin"
)

type RecruiterHandler struct {
	recruiterUC domain.RecruiterUsecase
}

func NewRecruiterHandler(api *gin.RouterGroup, require roleGuard, recruiterUC domain.RecruiterUsecase) {
	handler := &RecruiterHandler{recruiterUC: recruiterUC}

	recruiters := api.Group("/recruiters")
	{
		admin := require(domain.RoleAdmin)
		recruiter := require(domain.RoleRecruiter)
		either := require(domain.RoleRecruiter, domain.RoleAdmin)

		recruiters.GET("", admin, handler.List)
		recruiters.POST("", recruiter, handler.Create)
		recruiters.GET("/me", recruiter, handler.GetMine)
		recruiters.GET("/:id", either, handler.Get)
		recruiters.PUT("/:id", recruiter, handler.Update)
		recruiters.DELETE("/:id", either, handler.Delete)
		recruiters.PUT("/:id/verify", admin, handler.Verify)
	}
}

type RecruiterProfileRequest struct {
	FirstName      string `json:"firstName" binding:"required,max=50,valid_name"`
	LastName       string `json:"lastName" binding:"required,max=50,valid_name"`
	CompanyName    string `json:"companyName" binding:"required,max=100"`
	Position       string `json:"position" binding:"max=100"`
	Phone          string `json:"phone" binding:"omitempty,valid_phone"`
	CompanyWebsite string `json:"companyWebsite" binding:"omitempty,url,max=200"`
}

func (r RecruiterProfileRequest) toProfile() *domain.RecruiterProfile {
	return &domain.RecruiterProfile{
		FirstName:      r.FirstName,
		LastName:       r.LastName,
		CompanyName:    r.CompanyName,
		Position:       optional(r.Position),
		Phone:          optional(r.Phone),
		CompanyWebsite: optional(r.CompanyWebsite),
	}
}

// Create godoc
// @Summary      Create my recruiter profile
// @Description  New profiles start unverified
// @Tags         recruiters
// @Accept       json
// @Produce      json
// @Param        body  body      RecruiterProfileRequest  true  "Profile"
// @Success      200   {object}  domain.RecruiterProfile
// @Failure      400   {object}  response.Response
// @Router       /recruiters [post]
// @Security     BearerAuth
func (h *RecruiterHandler) Create(c *gin.Context) {
	var req RecruiterProfileRequest
	if !bindJSON(c, &req) {
		return
	}

	profile := req.toProfile()
	if err := h.recruiterUC.CreateProfile(reqCtx(c), profile); err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

// GetMine godoc
// @Summary      Get my recruiter profile
// @Tags         recruiters
// @Produce      json
// @Success      200  {object}  domain.RecruiterProfile
// @Failure      404  "Not found"
// @Router       /recruiters/me [get]
// @Security     BearerAuth
func (h *RecruiterHandler) GetMine(c *gin.Context) {
	profile, err := h.recruiterUC.GetMyProfile(reqCtx(c))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

// Get godoc
// @Summary      Get a recruiter profile
// @Tags         recruiters
// @Produce      json
// @Param        id   path      string  true  "Recruiter profile ID"
// @Success      200  {object}  domain.RecruiterProfile
// @Failure      404  "Not found"
// @Router       /recruiters/{id} [get]
// @Security     BearerAuth
func (h *RecruiterHandler) Get(c *gin.Context) {
	profile, err := h.recruiterUC.GetProfile(reqCtx(c), c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

// List godoc
// @Summary      List recruiter profiles
// @Tags         recruiters
// @Produce      json
// @Param        page  query     int  false  "Zero-based page"
// @Param        size  query     int  false  "Page size"
// @Success      200   {object}  domain.PaginatedResult[domain.RecruiterProfile]
// @Router       /recruiters [get]
// @Security     BearerAuth
func (h *RecruiterHandler) List(c *gin.Context) {
	result, err := h.recruiterUC.ListRecruiters(reqCtx(c), queryInt(c, "page", 0), queryInt(c, "size", domain.DefaultPageSize))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Update godoc
// @Summary      Update my recruiter profile
// @Tags         recruiters
// @Accept       json
// @Produce      json
// @Param        id    path      string                   true  "Recruiter profile ID"
// @Param        body  body      RecruiterProfileRequest  true  "Profile"
// @Success      200   {object}  domain.RecruiterProfile
// @Failure      403   {object}  response.Response
// @Router       /recruiters/{id} [put]
// @Security     BearerAuth
func (h *RecruiterHandler) Update(c *gin.Context) {
	var req RecruiterProfileRequest
	if !bindJSON(c, &req) {
		return
	}

	profile, err := h.recruiterUC.UpdateProfile(reqCtx(c), c.Param("id"), req.toProfile())
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

// Delete godoc
// @Summary      Delete a recruiter profile
// @Tags         recruiters
// @Produce      json
// @Param        id   path      string  true  "Recruiter profile ID"
// @Success      200  {object}  MessageResponse
// @Router       /recruiters/{id} [delete]
// @Security     BearerAuth
func (h *RecruiterHandler) Delete(c *gin.Context) {
	if err := h.recruiterUC.DeleteProfile(reqCtx(c), c.Param("id")); err != nil {
		_ = c.Error(err)
		return
	}
	acknowledge(c, http.StatusOK, "Recruiter profile deleted successfully")
}

// Verify godoc
// @Summary      Verify a recruiter
// @Tags         recruiters
// @Produce      json
// @Param        id   path      string  true  "Recruiter profile ID"
// @Success      200  {object}  domain.RecruiterProfile
// @Failure      404  "Not found"
// @Router       /recruiters/{id}/verify [put]
// @Security     BearerAuth
func (h *RecruiterHandler) Verify(c *gin.Context) {
	profile, err := h.recruiterUC.Verify(reqCtx(c), c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, profile)
}
