package finalizer

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
	sweeps := r.Group("/sweeps")
	sweeps.Use(middleware.AuthMiddleware())
	{
		sweeps.POST("/yesterday", middleware.RBACAuthorize(rbacService, "sweep", "run"), handler.TriggerYesterdaySweep)
		sweeps.POST("/shift-end", middleware.RBACAuthorize(rbacService, "sweep", "run"), handler.TriggerShiftEndSweep)
	}
}
