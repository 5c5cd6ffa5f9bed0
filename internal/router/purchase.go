package router

import (
	"github.com/Payphone-Digital/storefront/internal/dto"
	"github.com/gin-gonic/gin"
)

func (r *Router) purchaseRoutes(version *gin.RouterGroup) {
	purchases := version.Group("/purchases")
	purchases.Use(r.jwtMw.RequireAuth())
	{
		purchases.GET("", r.purchaseHandler.List)
		purchases.POST("/add-to-cart", r.validMw.ValidateRequestBody(body[dto.AddToCartRequest]()), r.purchaseHandler.AddToCart)
		purchases.PUT("/update-purchase", r.validMw.ValidateRequestBody(body[dto.UpdatePurchaseRequest]()), r.purchaseHandler.UpdatePurchase)
		purchases.DELETE("", r.validMw.ValidateRequestBody(body[dto.DeletePurchasesRequest]()), r.purchaseHandler.Delete)
		purchases.POST("/buy-products", r.validMw.ValidateRequestBody(body[dto.BuyProductsRequest]()), r.purchaseHandler.Buy)
	}
}
