package v1

import (
	"net/http"
	"time"

	"go-recruitment-platform/config"
	"go-recruitment-platform/internal/delivery/http/middleware"
	"go-recruitment-platform/internal/delivery/http/response"
	"go-recruitment-platform/internal/domain"
	"go-recruitment-platform/pkg/validation"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

type RouterDeps struct {
	JobUC         domain.JobUsecase
	ApplicationUC domain.ApplicationUsecase
	CompanyUC     domain.CompanyUsecase
	UserUC        domain.UserUsecase
	UploadUC      domain.UploadUsecase
	HealthUC      domain.HealthUsecase
	Auth          *middleware.Authenticator
	RateLimiter   *middleware.RateLimiter
	Config        *config.Config
}

func NewRouter(deps RouterDeps) *gin.Engine {
	registerValidators()

	r := gin.New()
	cfg := deps.Config
	debug := cfg.GinMode != gin.ReleaseMode

	// Global Middlewares
	r.Use(middleware.CORSMiddleware(cfg.AllowedOrigins, debug)) // CORS must be first!
	r.Use(gin.Recovery())
	r.Use(gin.Logger())
	r.Use(middleware.RequestID())
	r.Use(middleware.SecurityHeadersMiddleware())
	r.Use(middleware.ErrorHandler())

	window := time.Duration(cfg.RateLimitWindowSeconds) * time.Second
	if deps.RateLimiter != nil {
		r.Use(deps.RateLimiter.Middleware(middleware.GlobalConfig(cfg.RateLimitGlobalThreshold, window)))
	}
	r.Use(middleware.CSRFMiddleware(!debug))

	v1 := r.Group("/v1")

	v1.GET("/health", healthHandler(deps.HealthUC))
	v1.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	public := v1.Group("")
	public.Use(deps.Auth.Optional())

	protected := v1.Group("")
	protected.Use(deps.Auth.Required())
	if deps.RateLimiter != nil {
		protected.Use(deps.RateLimiter.Middleware(middleware.WriteConfig(cfg.RateLimitWriteThreshold, window)))
	}

	NewJobHandler(public, protected, deps.JobUC)
	NewApplicationHandler(protected, deps.ApplicationUC)
	NewCompanyHandler(public, protected, deps.CompanyUC)
	NewUserHandler(protected, deps.UserUC)
	var uploadLimits []gin.HandlerFunc
	if deps.RateLimiter != nil {
		uploadLimits = append(uploadLimits, deps.RateLimiter.Middleware(middleware.UploadConfig(cfg.UploadRateLimitPerDay, 24*time.Hour)))
	}
	NewUploadHandler(protected, deps.UploadUC, cfg.UploadMaxBytes, uploadLimits...)

	return r
}

// Health godoc
// @Summary      Health check
// @Description  Reports document store and cache health. Responds 503 when the document store is down.
// @Tags         health
// @Produce      json
// @Success      200  {object}  response.Response{data=map[string]string}
// @Failure      503  {object}  response.Response{data=map[string]string}
// @Router       /health [get]
func healthHandler(uc domain.HealthUsecase) gin.HandlerFunc {
	return func(c *gin.Context) {
		report := uc.Check(c.Request.Context())
		if report["status"] != "ok" {
			c.JSON(http.StatusServiceUnavailable, response.Response{
				Success:   false,
				Message:   "System degraded",
				Data:      report,
				RequestID: c.GetString(response.RequestIDKey),
			})
			return
		}
		response.Success(c, http.StatusOK, "System operational", report)
	}
}

// registerValidators adds the custom binding tags to gin's validator.
func registerValidators() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		validation.RegisterValidators(v)
	}
}
