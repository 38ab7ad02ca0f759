package company

import (
	"github.com/gin-gonic/gin"

	"aegira/internal/middleware"
)

func RegisterRoutes(r *gin.RouterGroup, handler *Handler) {
	companies := r.Group("/companies")
	companies.Use(middleware.AuthMiddleware())
	{
		companies.GET("/mine", handler.GetMine)
	}
}
