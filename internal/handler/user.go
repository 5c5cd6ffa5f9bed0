package handler

import (
	"net/http"

	"github.com/Payphone-Digital/storefront/internal/constants"
	"github.com/Payphone-Digital/storefront/internal/dto"
	"github.com/Payphone-Digital/storefront/internal/middleware"
	ctxutil "github.com/Payphone-Digital/storefront/pkg/context"
	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	users UserService
}

func NewUserHandler(users UserService) *UserHandler {
	return &UserHandler{users: users}
}

func (h *UserHandler) GetMe(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), "handler", "GetMe")

	profile, err := h.users.GetMe(ctx)
	if err != nil {
		respondError(c, ctx, "Get profile", err)
		return
	}

	c.JSON(http.StatusOK, constants.BuildDataResponse(constants.MsgSuccess, profile))
}

func (h *UserHandler) UpdateMe(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), "handler", "UpdateMe")

	req, ok := middleware.RequestBody[dto.UpdateProfileRequest](c)
	if !ok {
		c.JSON(http.StatusBadRequest, constants.BuildErrorResponse(constants.MsgBadRequest, nil))
		return
	}

	profile, message, err := h.users.UpdateMe(ctx, *req)
	if err != nil {
		respondError(c, ctx, "Update profile", err)
		return
	}

	c.JSON(http.StatusOK, constants.BuildDataResponse(upstreamMessage(message, constants.MsgSuccess), profile))
}

func (h *UserHandler) ChangePassword(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), "handler", "ChangePassword")

	req, ok := middleware.RequestBody[dto.ChangePasswordRequest](c)
	if !ok {
		c.JSON(http.StatusBadRequest, constants.BuildErrorResponse(constants.MsgBadRequest, nil))
		return
	}

	profile, message, err := h.users.ChangePassword(ctx, *req)
	if err != nil {
		respondError(c, ctx, "Change password", err)
		return
	}

	c.JSON(http.StatusOK, constants.BuildDataResponse(upstreamMessage(message, constants.MsgSuccess), profile))
}
