package handler

import (
	"net/http"

	"github.com/Payphone-Digital/storefront/internal/constants"
	"github.com/Payphone-Digital/storefront/internal/dto"
	"github.com/Payphone-Digital/storefront/internal/middleware"
	ctxutil "github.com/Payphone-Digital/storefront/pkg/context"
	"github.com/Payphone-Digital/storefront/pkg/logger"
	"github.com/gin-gonic/gin"
)

type PurchaseHandler struct {
	purchases PurchaseService
}

func NewPurchaseHandler(purchases PurchaseService) *PurchaseHandler {
	return &PurchaseHandler{purchases: purchases}
}

// List returns the purchases in ?status=, the cart by default.
func (h *PurchaseHandler) List(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), "handler", "ListPurchases")

	var query dto.PurchaseQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		logger.InfoWithContext(ctx, "Invalid purchase status").
			Err(err).
			Log()
		c.JSON(http.StatusBadRequest, constants.BuildErrorResponse(constants.MsgBadRequest, map[string]string{
			"status": c.Query("status"),
		}))
		return
	}

	purchases, err := h.purchases.List(ctx, query.Status)
	if err != nil {
		respondError(c, ctx, "List purchases", err)
		return
	}

	c.JSON(http.StatusOK, constants.BuildDataResponse(constants.MsgSuccess, purchases))
}

func (h *PurchaseHandler) AddToCart(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), "handler", "AddToCart")

	req, ok := middleware.RequestBody[dto.AddToCartRequest](c)
	if !ok {
		c.JSON(http.StatusBadRequest, constants.BuildErrorResponse(constants.MsgBadRequest, nil))
		return
	}

	purchase, message, err := h.purchases.AddToCart(ctx, *req)
	if err != nil {
		respondError(c, ctx, "Add to cart", err)
		return
	}

	c.JSON(http.StatusOK, constants.BuildDataResponse(upstreamMessage(message, constants.MsgSuccess), purchase))
}

func (h *PurchaseHandler) UpdatePurchase(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), "handler", "UpdatePurchase")

	req, ok := middleware.RequestBody[dto.UpdatePurchaseRequest](c)
	if !ok {
		c.JSON(http.StatusBadRequest, constants.BuildErrorResponse(constants.MsgBadRequest, nil))
		return
	}

	purchase, message, err := h.purchases.UpdatePurchase(ctx, *req)
	if err != nil {
		respondError(c, ctx, "Update purchase", err)
		return
	}

	c.JSON(http.StatusOK, constants.BuildDataResponse(upstreamMessage(message, constants.MsgSuccess), purchase))
}

func (h *PurchaseHandler) Delete(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), "handler", "DeletePurchases")

	req, ok := middleware.RequestBody[dto.DeletePurchasesRequest](c)
	if !ok {
		c.JSON(http.StatusBadRequest, constants.BuildErrorResponse(constants.MsgBadRequest, nil))
		return
	}

	resp, message, err := h.purchases.Delete(ctx, *req)
	if err != nil {
		respondError(c, ctx, "Delete purchases", err)
		return
	}

	c.JSON(http.StatusOK, constants.BuildDataResponse(upstreamMessage(message, constants.MsgSuccess), resp))
}

func (h *PurchaseHandler) Buy(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), "handler", "BuyProducts")

	req, ok := middleware.RequestBody[dto.BuyProductsRequest](c)
	if !ok {
		c.JSON(http.StatusBadRequest, constants.BuildErrorResponse(constants.MsgBadRequest, nil))
		return
	}

	purchases, message, err := h.purchases.Buy(ctx, *req)
	if err != nil {
		respondError(c, ctx, "Buy products", err)
		return
	}

	c.JSON(http.StatusOK, constants.BuildDataResponse(upstreamMessage(message, constants.MsgSuccess), purchases))
}
