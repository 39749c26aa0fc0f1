package routes

import (
	"crm-notification-api/controllers"
	"crm-notification-api/middleware"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(router *gin.Engine) {
	// API v1 group
	v1 := router.Group("/api/v1")
	{
		// Public routes
		public := v1.Group("")
		{
			// Health check
			public.GET("/health", func(c *gin.Context) {
				c.JSON(200, gin.H{
					"status":  "ok",
					"message": "CRM Notification API is running",
				})
			})
		}

		// Protected routes (require authentication)
		protected := v1.Group("")
		protected.Use(middleware.AuthMiddleware())
		{
			notifications := protected.Group("/notifications")
			{
				// Mailbox (acting user's own records)
				notifications.GET("", controllers.GetNotifications)
				notifications.GET("/counter", controllers.GetNotificationCounter)
				notifications.PUT("/:id/read", controllers.MarkNotificationRead)
				notifications.PUT("/read-all", controllers.MarkAllNotificationsRead)
				notifications.DELETE("/:id", controllers.DeleteNotification)
				notifications.DELETE("", controllers.DeleteAllNotifications)

				// Preference matrix
				notifications.GET("/preferences", controllers.GetNotificationPreferences)
				notifications.PUT("/preferences", controllers.UpdateNotificationPreferences)

				// Internal: trusted system callers only (3 = admin)
				notifications.POST("", middleware.RequireRole(3), controllers.CreateNotification)
				notifications.POST("/events", middleware.RequireRole(3), controllers.NotifyEvent)
			}
		}
	}
}
