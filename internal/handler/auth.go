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

type AuthHandler struct {
	auth AuthService
}

func NewAuthHandler(auth AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// Register handles shopper registration
func (h *AuthHandler) Register(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), "handler", "Register")

	req, ok := middleware.RequestBody[dto.RegisterRequest](c)
	if !ok {
		c.JSON(http.StatusBadRequest, constants.BuildErrorResponse(constants.MsgBadRequest, nil))
		return
	}

	response, err := h.auth.Register(ctx, *req)
	if err != nil {
		respondError(c, ctx, "Registration", err)
		return
	}

	logger.InfoWithContext(ctx, "Shopper registered").
		String("user_id", response.User.ID).
		Log()

	c.JSON(http.StatusCreated, constants.BuildDataResponse(constants.MsgRegistered, response))
}

// Login handles shopper authentication
func (h *AuthHandler) Login(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), "handler", "Login")

	req, ok := middleware.RequestBody[dto.LoginRequest](c)
	if !ok {
		c.JSON(http.StatusBadRequest, constants.BuildErrorResponse(constants.MsgBadRequest, nil))
		return
	}

	response, err := h.auth.Login(ctx, *req)
	if err != nil {
		respondError(c, ctx, "Login", err)
		return
	}

	logger.InfoWithContext(ctx, "Shopper logged in").
		String("user_id", response.User.ID).
		Log()

	c.JSON(http.StatusOK, constants.BuildDataResponse(constants.MsgLoggedIn, response))
}

// RefreshToken exchanges a refresh token for a new session token
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), "handler", "RefreshToken")

	req, ok := middleware.RequestBody[dto.RefreshTokenRequest](c)
	if !ok {
		c.JSON(http.StatusBadRequest, constants.BuildErrorResponse(constants.MsgBadRequest, nil))
		return
	}

	response, err := h.auth.Refresh(ctx, req.RefreshToken)
	if err != nil {
		respondError(c, ctx, "Token refresh", err)
		return
	}

	c.JSON(http.StatusOK, constants.BuildDataResponse(constants.MsgRefreshed, response))
}

// Logout signs the shopper out and clears the session
func (h *AuthHandler) Logout(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), "handler", "Logout")

	if err := h.auth.Logout(ctx); err != nil {
		respondError(c, ctx, "Logout", err)
		return
	}

	c.JSON(http.StatusOK, constants.BuildSuccessResponse(constants.MsgLoggedOut))
}
