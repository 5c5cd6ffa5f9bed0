package handler

import (
	"context"
	"net/http"

	"github.com/Payphone-Digital/storefront/internal/constants"
	"github.com/Payphone-Digital/storefront/internal/dto"
	apperrors "github.com/Payphone-Digital/storefront/internal/errors"
	"github.com/Payphone-Digital/storefront/internal/model"
	"github.com/Payphone-Digital/storefront/pkg/logger"
	"github.com/Payphone-Digital/storefront/pkg/querystate"
	"github.com/gin-gonic/gin"
)

// CatalogService is implemented by service.CatalogService.
type CatalogService interface {
	ListProducts(ctx context.Context, qc querystate.QueryConfig) (*dto.ProductListResponse, error)
	GetProduct(ctx context.Context, idOrSlug string) (*dto.Product, error)
	Categories(ctx context.Context) ([]dto.Category, error)
	Plan(page, pageSize int) (*dto.PaginationPlanResponse, error)
	Search(qc querystate.QueryConfig, name string) string
	PriceFilter(qc querystate.QueryConfig, req dto.PriceFilterRequest) string
	ClearFilters(qc querystate.QueryConfig) string
}

// AuthService is implemented by service.AuthService.
type AuthService interface {
	Register(ctx context.Context, req dto.RegisterRequest) (*dto.AuthResponse, error)
	Login(ctx context.Context, req dto.LoginRequest) (*dto.AuthResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*dto.AuthResponse, error)
	Logout(ctx context.Context) error
}

// UserService is implemented by service.UserService.
type UserService interface {
	GetMe(ctx context.Context) (*model.Profile, error)
	UpdateMe(ctx context.Context, req dto.UpdateProfileRequest) (*model.Profile, string, error)
	ChangePassword(ctx context.Context, req dto.ChangePasswordRequest) (*model.Profile, string, error)
}

// PurchaseService is implemented by service.PurchaseService.
type PurchaseService interface {
	List(ctx context.Context, status *int) ([]dto.Purchase, error)
	AddToCart(ctx context.Context, req dto.AddToCartRequest) (*dto.Purchase, string, error)
	UpdatePurchase(ctx context.Context, req dto.UpdatePurchaseRequest) (*dto.Purchase, string, error)
	Delete(ctx context.Context, req dto.DeletePurchasesRequest) (*dto.DeletePurchasesResponse, string, error)
	Buy(ctx context.Context, req dto.BuyProductsRequest) ([]dto.Purchase, string, error)
}

// respondError writes err as a JSON error body with its mapped status.
// Upstream field errors are passed through as details.
func respondError(c *gin.Context, ctx context.Context, action string, err error) {
	status := apperrors.ToHTTPStatus(err)

	var entry *logger.ContextLogBuilder
	if status >= http.StatusInternalServerError {
		entry = logger.ErrorWithContext(ctx, action+" failed")
	} else {
		entry = logger.InfoWithContext(ctx, action+" rejected")
	}
	entry.Int("http_status", status).Err(err).Log()

	var details any
	if fields := apperrors.GetErrorDetails(err); len(fields) > 0 {
		details = fields
	}

	message := apperrors.GetErrorMessage(err)
	if !apperrors.IsDomainError(err) {
		message = constants.MsgInternalError
	}
	c.JSON(status, constants.BuildErrorResponse(message, details))
}

// upstreamMessage prefers the upstream's own success message.
func upstreamMessage(message, fallback string) string {
	if message != "" {
		return message
	}
	return fallback
}
