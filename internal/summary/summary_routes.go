package summary

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
	summaries := r.Group("/summaries")
	summaries.Use(middleware.AuthMiddleware())
	{
		summaries.GET("/team/:teamId", middleware.RBACAuthorize(rbacService, "report", "read"), handler.GetTeamDay)
		summaries.GET("/company", middleware.RBACAuthorize(rbacService, "report", "read"), handler.GetCompanyDay)
		summaries.POST("/recompute", middleware.RBACAuthorize(rbacService, "report", "read"), handler.Recompute)
	}
}
