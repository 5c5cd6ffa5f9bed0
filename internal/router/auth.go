package router

import (
	"github.com/Payphone-Digital/storefront/internal/dto"
	"github.com/gin-gonic/gin"
)

func (r *Router) authRoutes(version *gin.RouterGroup) {
	auth := version.Group("/auth")
	{
		// Public routes (no authentication required)
		auth.POST("/register", r.validMw.ValidateRequestBody(body[dto.RegisterRequest]()), r.authHandler.Register)
		auth.POST("/login", r.validMw.ValidateRequestBody(body[dto.LoginRequest]()), r.authHandler.Login)
		auth.POST("/refresh", r.validMw.ValidateRequestBody(body[dto.RefreshTokenRequest]()), r.authHandler.RefreshToken)

		// Protected routes (JWT authentication required)
		protected := auth.Group("")
		protected.Use(r.jwtMw.RequireAuth())
		{
			protected.POST("/logout", r.authHandler.Logout)
		}
	}
}
