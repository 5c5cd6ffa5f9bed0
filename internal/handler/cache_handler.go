package handler

import (
	"context"
	"net/http"

	"github.com/Payphone-Digital/storefront/internal/constants"
	"github.com/Payphone-Digital/storefront/internal/dto"
	"github.com/Payphone-Digital/storefront/internal/middleware"
	"github.com/Payphone-Digital/storefront/pkg/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// CacheService is implemented by service.CacheService.
type CacheService interface {
	InvalidateCatalog(ctx context.Context, scope string) (int, error)
	Stats() map[string]any
}

type CacheHandler struct {
	cacheService CacheService
}

func NewCacheHandler(cacheService CacheService) *CacheHandler {
	return &CacheHandler{
		cacheService: cacheService,
	}
}

// InvalidateCache drops cached catalog reads for the requested scope
func (h *CacheHandler) InvalidateCache(c *gin.Context) {
	req, ok := middleware.RequestBody[dto.InvalidateCacheRequest](c)
	if !ok {
		c.JSON(http.StatusBadRequest, constants.BuildErrorResponse(constants.MsgBadRequest, nil))
		return
	}

	deleted, err := h.cacheService.InvalidateCatalog(c.Request.Context(), req.Scope)
	if err != nil {
		logger.GetLogger().Error("Failed to invalidate cache",
			zap.String("scope", req.Scope),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, constants.BuildErrorResponse("Failed to invalidate cache", nil))
		return
	}

	c.JSON(http.StatusOK, constants.BuildDataResponse("Cache invalidated successfully", dto.InvalidateCacheResponse{
		Scope:   req.Scope,
		Deleted: deleted,
	}))
}

// GetCacheStats returns cache statistics
func (h *CacheHandler) GetCacheStats(c *gin.Context) {
	c.JSON(http.StatusOK, constants.BuildDataResponse(constants.MsgSuccess, h.cacheService.Stats()))
}
