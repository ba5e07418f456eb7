package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/VijeshVS/LocalHire-sub000/internal/api/domain"
	"github.com/VijeshVS/LocalHire-sub000/internal/api/handler"
)

// SetupRouter configures and returns the Gin router with all routes
func SetupRouter(deps *handler.Dependencies) *gin.Engine {
	r := gin.New()

	// Middleware
	r.Use(gin.Recovery())
	r.Use(LoggerMiddleware(deps.Logger))
	r.Use(CORSMiddleware())

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "marketplace-api-service",
		})
	})

	applicationHandler := handler.NewApplicationHandler(deps)
	offerHandler := handler.NewOfferHandler(deps)
	notificationHandler := handler.NewNotificationHandler(deps)

	// API v1 routes
	v1 := r.Group("/api/v1")
	v1.Use(IdentityMiddleware())
	{
		applications := v1.Group("/applications")
		{
			applications.POST("", RequireRole(domain.RoleWorker), applicationHandler.Apply)
			applications.GET("", RequireRole(domain.RoleWorker), applicationHandler.ListMine)
			applications.GET("/pending-confirmations", RequireRole(domain.RoleEmployer), applicationHandler.PendingConfirmations)
			applications.GET("/:application_id", RequireRole(domain.RoleWorker), applicationHandler.Get)
			applications.DELETE("/:application_id", RequireRole(domain.RoleWorker), applicationHandler.Withdraw)
			applications.PATCH("/:application_id/status", RequireRole(domain.RoleEmployer), applicationHandler.Decide)
			applications.PATCH("/:application_id/complete", RequireRole(domain.RoleWorker), applicationHandler.Complete)
			applications.PATCH("/:application_id/confirm-completion", RequireRole(domain.RoleEmployer), applicationHandler.Confirm)
		}

		jobs := v1.Group("/jobs")
		{
			jobs.GET("/:job_id/applicants", RequireRole(domain.RoleEmployer), applicationHandler.ListApplicants)
		}

		offers := v1.Group("/offers")
		offers.Use(RequireRole(domain.RoleWorker))
		{
			offers.GET("", offerHandler.List)
			offers.GET("/stats", offerHandler.Stats)
			offers.GET("/:offer_id", offerHandler.Get)
			offers.POST("/:offer_id/accept", offerHandler.Accept)
			offers.POST("/:offer_id/reject", offerHandler.Reject)
		}

		schedule := v1.Group("/schedule")
		schedule.Use(RequireRole(domain.RoleWorker))
		{
			schedule.GET("", offerHandler.Schedule)
			schedule.GET("/availability", offerHandler.CheckAvailability)
		}

		notifications := v1.Group("/notifications")
		{
			notifications.GET("", notificationHandler.List)
			notifications.POST("/read-all", notificationHandler.MarkAllRead)
			notifications.PATCH("/:notification_id/read", notificationHandler.MarkRead)
		}
	}

	return r
}
