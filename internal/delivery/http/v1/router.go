package v1

import (
	"time"

	"go-jobboard-backend/config"
	"go-jobboard-backend/internal/delivery/http/middleware"
	"go-jobboard-backend/internal/domain"
	"go-jobboard-backend/pkg/security"
	"go-jobboard-backend/pkg/security/antivirus"
	"go-jobboard-backend/pkg/validation"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

type RouterDeps struct {
	AuthUC        domain.AuthUsecase
	JobUC         domain.JobUsecase
	CandidateUC   domain.CandidateUsecase
	RecruiterUC   domain.RecruiterUsecase
	ApplicationUC domain.ApplicationUsecase
	Health        HealthChecker
	Tokens        middleware.TokenVerifier
	LoginGuard    LoginGuard
	RateLimiter   *middleware.RateLimiter
	UploadQuota   UploadQuota
	Scanner       antivirus.Scanner
	SecLogger     *security.SecurityLogger
	Config        *config.Config
}

func NewRouter(deps RouterDeps) *gin.Engine {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		validation.Configure(v)
	}

	r := gin.New()

	window := time.Duration(deps.Config.RateLimitWindowSeconds) * time.Second

	// Global Middlewares
	r.Use(middleware.CORSMiddleware(deps.Config.AllowedOrigins)) // CORS must be first!
	r.Use(gin.Recovery())
	r.Use(gin.Logger())
	r.Use(middleware.RequestID())
	r.Use(middleware.SecurityHeadersMiddleware(deps.Config.IsProduction()))
	r.Use(gzip.Gzip(gzip.DefaultCompression))
	r.Use(deps.RateLimiter.Middleware(middleware.GlobalConfig(deps.Config.RateLimitGlobalThreshold, window)))
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.AuthGate(deps.Tokens, deps.AuthUC))

	// Swagger
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	require := func(roles ...domain.Role) gin.HandlerFunc {
		return middleware.RequireRoles(deps.SecLogger, roles...)
	}
	authLimit := deps.RateLimiter.Middleware(middleware.AuthConfig(deps.Config.RateLimitAuthThreshold, window))

	api := r.Group("/api")
	NewHealthHandler(api, deps.Health)
	NewAuthHandler(api, require, deps.AuthUC, deps.LoginGuard, deps.SecLogger, authLimit)
	NewJobHandler(api, require, deps.JobUC)
	NewCandidateHandler(api, require, deps.CandidateUC, deps.UploadQuota, deps.Scanner, deps.SecLogger)
	NewRecruiterHandler(api, require, deps.RecruiterUC)
	NewApplicationHandler(api, require, deps.ApplicationUC)

	return r
}
