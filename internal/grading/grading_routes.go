package grading

import (
	"github.com/gin-gonic/gin"

	"aegira/internal/middleware"
	"aegira/internal/rbac"
)

func RegisterRoutes(
	r *gin.RouterGroup,
	handler *Handler,
	rbacService rbac.Service,
) {
	grades := r.Group("/grades")
	grades.Use(middleware.AuthMiddleware())
	{
		grades.GET("/me", handler.GetMyReport)
		grades.GET("/team/:teamId", middleware.RBACAuthorize(rbacService, "report", "read"), handler.GetTeamGrade)
		grades.GET("/company", middleware.RBACAuthorize(rbacService, "report", "read"), handler.GetCompanyGrades)
	}
}
