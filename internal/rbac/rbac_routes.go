package rbac

import (
	"github.com/gin-gonic/gin"

	"aegira/internal/middleware"
)

func RegisterRoutes(r *gin.RouterGroup, handler *Handler) {
	group := r.Group("/rbac")
	{
		group.POST("/enforce", handler.Enforce)
	}

	authed := r.Group("/rbac")
	authed.Use(middleware.AuthMiddleware())
	{
		authed.GET("/roles", handler.ListRoles)
		authed.GET("/permissions", handler.ListPermissions)
	}
}
