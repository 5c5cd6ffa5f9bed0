package router

import (
	"github.com/Payphone-Digital/storefront/internal/dto"
	"github.com/gin-gonic/gin"
)

func (r *Router) userRoutes(version *gin.RouterGroup) {
	me := version.Group("/me")
	me.Use(r.jwtMw.RequireAuth())
	{
		me.GET("", r.userHandler.GetMe)
		me.PUT("", r.validMw.ValidateRequestBody(body[dto.UpdateProfileRequest]()), r.userHandler.UpdateMe)
		me.PUT("/password", r.validMw.ValidateRequestBody(body[dto.ChangePasswordRequest]()), r.userHandler.ChangePassword)
	}
}
