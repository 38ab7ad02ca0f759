package absence

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
	absences := r.Group("/absences")
	absences.Use(middleware.AuthMiddleware())
	{
		absences.GET("", middleware.RBACAuthorize(rbacService, "absence", "read"), handler.GetAll)
		absences.GET("/mine", handler.GetMine)
		absences.GET("/:id", middleware.RBACAuthorize(rbacService, "absence", "read"), handler.GetById)
		absences.POST("/:id/justify", handler.Justify)
		absences.POST("/:id/review", middleware.RBACAuthorize(rbacService, "absence", "review"), handler.Review)
	}
}
