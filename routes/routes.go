package routes

import (
	"procurement-api/controllers"
	"procurement-api/middleware"
	"procurement-api/models"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(router *gin.Engine) {
	// API v1 group
	v1 := router.Group("/api/v1")
	{
		// Public routes
		public := v1.Group("")
		{
			// Authentication
			public.POST("/login", controllers.Login)
			public.POST("/refresh", controllers.RefreshToken)

			// Health check
			public.GET("/health", func(c *gin.Context) {
				c.JSON(200, gin.H{
					"status":  "ok",
					"message": "Procurement API is running",
				})
			})
		}

		// Protected routes (require authentication)
		protected := v1.Group("")
		protected.Use(middleware.AuthMiddleware())
		{
			// Auth management
			protected.POST("/logout", controllers.Logout)

			// User profile
			protected.GET("/profile", controllers.GetProfile)
			protected.PUT("/change-password", controllers.ChangePassword)

			// Common reference data
			protected.GET("/disciplines", controllers.ListDisciplines)

			// Projects
			projects := protected.Group("/projects")
			{
				projects.GET("", controllers.ListProjects)
				projects.GET("/:id", controllers.GetProject)

				// Only admins manage projects and approval ceilings
				projects.POST("", middleware.RequireRole(models.RoleAdministrator), controllers.CreateProject)
				projects.PUT("/:id/settings", middleware.RequireRole(models.RoleAdministrator), controllers.UpdateProjectSettings)
			}

			// Documents; :type is one of MTF, STF, OTF, MRF, MDF
			documents := protected.Group("/documents/:type")
			{
				documents.GET("", controllers.ListDocuments)
				documents.GET("/:id", controllers.GetDocument)
				documents.GET("/:id/backlog", controllers.GetDocumentBacklog)
				documents.GET("/:id/history", controllers.GetDocumentHistory)

				// Only requesters create documents; the engine enforces the
				// rest of the workflow permissions itself
				documents.POST("", middleware.RequireRole(models.RoleRequester, models.RoleAdministrator), controllers.CreateDocument)
				documents.POST("/:id/approve", controllers.ApproveDocument)
				documents.POST("/:id/reject", controllers.RejectDocument)
				documents.POST("/:id/revise", controllers.ReviseDocument)
				documents.POST("/:id/close", controllers.CloseDocument)

				// Attachments
				documents.GET("/:id/attachments", controllers.ListAttachments)
				documents.POST("/:id/attachments", controllers.UploadAttachment)
				documents.GET("/:id/attachments/:attachment_id", controllers.DownloadAttachment)
				documents.DELETE("/:id/attachments/:attachment_id", controllers.DeleteAttachment)
			}

			// Approvals
			protected.GET("/approvals/pending", controllers.GetPendingApprovals)

			// Notifications
			notifications := protected.Group("/notifications")
			{
				notifications.GET("", controllers.GetNotifications)
				notifications.GET("/counter", controllers.GetNotificationCounter)
				notifications.PUT("/read-all", controllers.MarkAllNotificationsRead)
				notifications.PUT("/:id/read", controllers.MarkNotificationRead)
			}

			// Dashboard
			protected.GET("/dashboard/stats", controllers.GetDashboardStats)
		}
	}
}
