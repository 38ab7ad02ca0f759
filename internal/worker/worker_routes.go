package worker

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
	workers := r.Group("/workers")
	workers.Use(middleware.AuthMiddleware())
	{
		workers.GET("", handler.GetAll)
		workers.GET("/:id", handler.GetById)
		workers.GET("/team/:teamId", middleware.RBACAuthorize(rbacService, "report", "read"), handler.GetTeamRoster)
	}
}
