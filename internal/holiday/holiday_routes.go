package holiday

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
	holidays := r.Group("/holidays")
	holidays.Use(middleware.AuthMiddleware())
	{
		holidays.GET("", handler.GetAll)
		holidays.POST("", middleware.RBACAuthorize(rbacService, "holiday", "manage"), handler.Create)
		holidays.DELETE("/:id", middleware.RBACAuthorize(rbacService, "holiday", "manage"), handler.Delete)
	}
}
