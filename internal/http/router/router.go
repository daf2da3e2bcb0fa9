package router

import (
	"github.com/gin-gonic/gin"

	"github.com/Rishikarathore0601/rfp/internal/config"
	"github.com/Rishikarathore0601/rfp/internal/http/handlers"
	"github.com/Rishikarathore0601/rfp/internal/http/middleware"
)

// SetupRouter собирает все маршруты приложения.
func SetupRouter(
	cfg *config.Config,
	rfpHandler *handlers.RFPHandler,
	vendorHandler *handlers.VendorHandler,
	proposalHandler *handlers.ProposalHandler,
	emailHandler *handlers.EmailHandler,
	comparisonHandler *handlers.ComparisonHandler,
	healthHandler *handlers.HealthHandler,
) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.Default()
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.CORSMiddleware(cfg.AllowedOrigins))

	r.GET("/health", healthHandler.Health)

	api := r.Group("/api")

	// Генерация и сверка зовут модель, поэтому ограничиваем частоту.
	aiRateLimit := middleware.RateLimitMiddleware(cfg.RateLimitLimit, cfg.RateLimitPeriod)

	rfps := api.Group("/rfps")
	{
		rfps.POST("/ai-generate", aiRateLimit, rfpHandler.Generate)
		rfps.GET("", rfpHandler.List)
		rfps.GET("/:id", middleware.UUIDValidator("id"), rfpHandler.Get)
		rfps.PUT("/:id", middleware.UUIDValidator("id"), rfpHandler.Update)
		rfps.DELETE("/:id", middleware.UUIDValidator("id"), rfpHandler.Delete)
		rfps.POST("/:id/vendors", middleware.UUIDValidator("id"), rfpHandler.AssociateVendors)
	}

	vendors := api.Group("/vendors")
	{
		vendors.POST("", vendorHandler.Create)
		vendors.GET("", vendorHandler.List)
		vendors.GET("/:id", middleware.UUIDValidator("id"), vendorHandler.Get)
		vendors.PUT("/:id", middleware.UUIDValidator("id"), vendorHandler.Update)
		vendors.DELETE("/:id", middleware.UUIDValidator("id"), vendorHandler.Delete)
	}

	proposals := api.Group("/proposals")
	{
		proposals.POST("", proposalHandler.Create)
		proposals.GET("/rfp/:rfpId", middleware.UUIDValidator("rfpId"), proposalHandler.ListByRFP)
		proposals.GET("/:id", middleware.UUIDValidator("id"), proposalHandler.Get)
		proposals.PUT("/:id", middleware.UUIDValidator("id"), proposalHandler.Update)
		proposals.DELETE("/:id", middleware.UUIDValidator("id"), proposalHandler.Delete)
	}

	email := api.Group("/email")
	{
		email.POST("/send-rfp", emailHandler.SendRFP)
		email.POST("/check", aiRateLimit, emailHandler.CheckInbox)
		email.GET("/test", emailHandler.Test)
	}

	api.GET("/comparison/:rfpId", middleware.UUIDValidator("rfpId"), comparisonHandler.Get)

	return r
}
