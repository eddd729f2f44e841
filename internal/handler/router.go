package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/campus-placement-api/internal/middleware"
	"github.com/noah-isme/campus-placement-api/internal/models"
)

// Handlers groups every HTTP handler mounted under the API prefix.
type Handlers struct {
	Auth          *AuthHandler
	Students      *StudentHandler
	Certificates  *CertificateHandler
	Roster        *RosterHandler
	Drives        *DriveHandler
	Applications  *ApplicationHandler
	Notifications *NotificationHandler
	Feedback      *FeedbackHandler
	Metrics       *MetricsHandler
}

// RegisterRoutes mounts the placement API on router under prefix.
func RegisterRoutes(router gin.IRouter, prefix string, tokens middleware.TokenValidator, h Handlers) {
	api := router.Group(prefix)

	requireAuth := middleware.JWT(tokens)
	optionalAuth := middleware.OptionalJWT(tokens)
	adminOnly := middleware.RequireRoles(models.RoleAdmin)
	adminOrSelf := middleware.RequireSelfOr("id", models.RoleAdmin)

	auth := api.Group("/auth")
	{
		auth.POST("/students/signup", h.Auth.SignupStudent)
		auth.POST("/students/login", h.Auth.LoginStudent)
		auth.POST("/admins/login", h.Auth.LoginAdmin)
	}
	admins := api.Group("/admins", requireAuth, adminOnly)
	{
		admins.GET("", h.Auth.ListAdmins)
		admins.POST("", h.Auth.CreateAdmin)
		admins.DELETE("/:id", h.Auth.DeleteAdmin)
		admins.POST("/reset-password/:id", h.Auth.ResetAdminPassword)
	}

	api.GET("/documents/download", h.Students.DownloadDocument)

	students := api.Group("/students", requireAuth)
	{
		students.GET("", adminOnly, h.Students.List)
		students.POST("/import", adminOnly, h.Roster.Import)
		students.GET("/:id", adminOrSelf, h.Students.Get)
		students.PUT("/:id", adminOrSelf, h.Students.Update)
		students.DELETE("/:id", adminOrSelf, h.Students.Delete)
		students.POST("/:id/documents/:type", adminOrSelf, h.Students.UploadDocument)
		students.GET("/:id/certificates", adminOrSelf, h.Certificates.List)
		students.POST("/:id/certificates", adminOrSelf, h.Certificates.Upload)
		students.GET("/:id/certificates/:certificateId", adminOrSelf, h.Certificates.Get)
		students.DELETE("/:id/certificates/:certificateId", adminOrSelf, h.Certificates.Delete)
	}

	drives := api.Group("/drives")
	{
		drives.GET("", optionalAuth, h.Drives.List)
		drives.GET("/:id", h.Drives.Get)
		drives.POST("", requireAuth, adminOnly, h.Drives.Create)
		drives.PUT("/:id", requireAuth, adminOnly, h.Drives.Update)
		drives.DELETE("/:id", requireAuth, adminOnly, h.Drives.Delete)
		drives.GET("/:id/applicants", requireAuth, adminOnly, h.Drives.Applicants)
		drives.GET("/:id/applicants/export", requireAuth, adminOnly, h.Drives.ExportApplicants)
		drives.GET("/:id/eligibility/:studentId", requireAuth, adminOnly, h.Drives.Eligibility)
	}

	applications := api.Group("/applications", requireAuth)
	{
		applications.GET("", h.Applications.List)
		applications.POST("", h.Applications.Create)
		applications.GET("/summary", adminOnly, h.Applications.Summary)
		applications.PUT("/:id/status", adminOnly, h.Applications.UpdateStatus)
		applications.PUT("/:id/approve", adminOnly, h.Applications.Approve)
		applications.PUT("/:id/reject", adminOnly, h.Applications.Reject)
		applications.DELETE("/:id", adminOnly, h.Applications.Delete)
	}

	notifications := api.Group("/notifications")
	{
		notifications.GET("", optionalAuth, h.Notifications.List)
		notifications.POST("", requireAuth, adminOnly, h.Notifications.Create)
		notifications.DELETE("/:id", requireAuth, adminOnly, h.Notifications.Delete)
	}

	feedbacks := api.Group("/feedbacks", requireAuth)
	{
		feedbacks.POST("", middleware.RequireRoles(models.RoleStudent), h.Feedback.Submit)
		feedbacks.GET("", adminOnly, h.Feedback.List)
		feedbacks.PUT("/:id", adminOnly, h.Feedback.Update)
	}

	api.GET("/metrics/summary", requireAuth, adminOnly, h.Metrics.Summary)
}
