package router

import (
	"github.com/Payphone-Digital/storefront/internal/dto"
	"github.com/gin-gonic/gin"
)

func (r *Router) catalogRoutes(version *gin.RouterGroup) {
	products := version.Group("/products")
	{
		products.GET("", r.catalogHandler.ListProducts)
		products.GET("/:id", r.catalogHandler.GetProduct)

		// Listing controls answer with the next listing query string
		products.POST("/search", r.validMw.ValidateRequestBody(body[dto.SearchRequest]()), r.catalogHandler.Search)
		products.POST("/price-filter", r.validMw.ValidateRequestBody(body[dto.PriceFilterRequest]()), r.catalogHandler.PriceFilter)
		products.GET("/filters/clear", r.catalogHandler.ClearFilters)
	}

	version.GET("/categories", r.catalogHandler.Categories)
	version.GET("/pagination", r.catalogHandler.Plan)
}
