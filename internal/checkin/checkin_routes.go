package checkin

import (
	"github.com/gin-gonic/gin"

	"aegira/internal/middleware"
	"aegira/internal/rbac"
)

func RegisterRoutes(
	r *gin.RouterGroup,
	handler *Handler,
	rbacService rbac.Service,
	idempotency gin.HandlerFunc,
) {
	checkins := r.Group("/checkins")
	checkins.Use(middleware.AuthMiddleware())
	{
		checkins.POST("", idempotency, handler.Submit)
		checkins.GET("/mine", handler.GetMine)
		checkins.GET("/team/:teamId", middleware.RBACAuthorize(rbacService, "report", "read"), handler.GetTeam)
	}
}
