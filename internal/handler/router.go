package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/uni-admissions-api/internal/middleware"
	"github.com/noah-isme/uni-admissions-api/internal/models"
	"github.com/noah-isme/uni-admissions-api/internal/service"
)

// Dependencies bundles the services the HTTP surface is built from.
type Dependencies struct {
	Auth           *service.AuthService
	Workflow       *service.WorkflowService
	Assignments    *service.AssignmentService
	Qualifications *service.QualificationService
	Exports        *service.ExportService
	Metrics        *service.MetricsService
}

// Register mounts every API route under the given prefix.
func Register(r *gin.Engine, prefix string, deps Dependencies) {
	authHandler := NewAuthHandler(deps.Auth)
	applicationHandler := NewApplicationHandler(deps.Workflow)
	assignmentHandler := NewAssignmentHandler(deps.Assignments, deps.Exports)
	qualificationHandler := NewQualificationHandler(deps.Qualifications)

	api := r.Group(prefix)
	api.Use(middleware.Metrics(deps.Metrics))

	auth := api.Group("/auth")
	{
		auth.POST("/login", authHandler.Login)
		auth.POST("/refresh", authHandler.Refresh)
		auth.POST("/logout", middleware.JWT(deps.Auth), authHandler.Logout)
		auth.GET("/me", middleware.JWT(deps.Auth), authHandler.Me)
	}

	applications := api.Group("/applications", middleware.JWT(deps.Auth))
	{
		applications.POST("/:id/submit",
			middleware.RequireRoles(models.RoleApplicant, models.RoleAdmin, models.RoleSuperAdmin),
			applicationHandler.Submit)
		applications.POST("/:id/decision",
			middleware.RequireRoles(models.RoleOfficer, models.RoleAdmin, models.RoleSuperAdmin),
			applicationHandler.Decide)
		applications.POST("/:id/admit",
			middleware.RequireRoles(models.RoleAdmin, models.RoleSuperAdmin),
			applicationHandler.Admit)
		applications.POST("/:id/reassign",
			middleware.RequireRoles(models.RoleAdmin, models.RoleSuperAdmin),
			applicationHandler.Reassign)

		applications.GET("/:id/qualification", qualificationHandler.Get)
		applications.PUT("/:id/qualification",
			middleware.RequireRoles(models.RoleApplicant, models.RoleAdmin, models.RoleSuperAdmin),
			qualificationHandler.Update)
		applications.GET("/:id/qualification/evaluation",
			middleware.RequireRoles(models.RoleOfficer, models.RoleAdmin, models.RoleSuperAdmin),
			qualificationHandler.Evaluate)
	}

	assignments := api.Group("/assignments", middleware.JWT(deps.Auth),
		middleware.RequireRoles(models.RoleAdmin, models.RoleSuperAdmin))
	{
		assignments.GET("/preview", assignmentHandler.Preview)
		assignments.POST("/distribute", assignmentHandler.Distribute)
	}

	officers := api.Group("/officers", middleware.JWT(deps.Auth),
		middleware.RequireRoles(models.RoleOfficer, models.RoleAdmin, models.RoleSuperAdmin))
	{
		officers.GET("/:id/applications", assignmentHandler.OfficerApplications)
		officers.GET("/:id/workload-report", assignmentHandler.WorkloadReport)
	}

	if deps.Metrics != nil {
		r.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))
	}
}
