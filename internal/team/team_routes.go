package team

import (
	"github.com/gin-gonic/gin"

	"aegira/internal/middleware"
)

func RegisterRoutes(r *gin.RouterGroup, handler *Handler) {
	teams := r.Group("/teams")
	teams.Use(middleware.AuthMiddleware())
	{
		teams.GET("", handler.GetAll)
		teams.GET("/:id", handler.GetById)
	}
}
