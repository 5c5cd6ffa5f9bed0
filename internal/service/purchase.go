package service

import (
	"context"
	"net/url"
	"strconv"

	"github.com/Payphone-Digital/storefront/internal/constants"
	"github.com/Payphone-Digital/storefront/internal/dto"
	apperrors "github.com/Payphone-Digital/storefront/internal/errors"
	ctxutil "github.com/Payphone-Digital/storefront/pkg/context"
	"github.com/Payphone-Digital/storefront/pkg/logger"
)

// PurchaseService forwards cart and order operations for the signed-in
// shopper. Purchases are per user and never cached.
type PurchaseService struct {
	api      API
	sessions SessionStore
}

func NewPurchaseService(api API, sessions SessionStore) *PurchaseService {
	return &PurchaseService{api: api, sessions: sessions}
}

// List returns the purchases in one status. A nil status lists the cart.
func (s *PurchaseService) List(ctx context.Context, status *int) ([]dto.Purchase, error) {
	ctx = ctxutil.NewContextWithRequest(ctx, "service", "ListPurchases")

	st := constants.PurchaseStatusInCart
	if status != nil {
		st = *status
	}
	if !constants.ValidPurchaseStatus(st) {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "unknown purchase status "+strconv.Itoa(st))
	}

	purchases := []dto.Purchase{}
	query := url.Values{"status": {strconv.Itoa(st)}}
	if _, err := s.api.Get(ctx, pathPurchases, query, &purchases); err != nil {
		return nil, s.fail(ctx, err)
	}

	logger.DebugWithContext(ctx, "Purchases listed").
		Int("status", st).
		Int("count", len(purchases)).
		Log()
	return purchases, nil
}

func (s *PurchaseService) AddToCart(ctx context.Context, req dto.AddToCartRequest) (*dto.Purchase, string, error) {
	ctx = ctxutil.NewContextWithRequest(ctx, "service", "AddToCart")

	var purchase dto.Purchase
	message, err := s.api.Post(ctx, pathPurchases+"/add-to-cart", req, &purchase)
	if err != nil {
		return nil, "", s.fail(ctx, err)
	}

	logger.InfoWithContext(ctx, "Product added to cart").
		String("product_id", req.ProductID).
		Int("buy_count", req.BuyCount).
		Log()
	return &purchase, message, nil
}

func (s *PurchaseService) UpdatePurchase(ctx context.Context, req dto.UpdatePurchaseRequest) (*dto.Purchase, string, error) {
	ctx = ctxutil.NewContextWithRequest(ctx, "service", "UpdatePurchase")

	var purchase dto.Purchase
	message, err := s.api.Put(ctx, pathPurchases+"/update-purchase", req, &purchase)
	if err != nil {
		return nil, "", s.fail(ctx, err)
	}
	return &purchase, message, nil
}

// Delete removes purchases from the cart by id. The upstream takes the bare
// id array as the body.
func (s *PurchaseService) Delete(ctx context.Context, req dto.DeletePurchasesRequest) (*dto.DeletePurchasesResponse, string, error) {
	ctx = ctxutil.NewContextWithRequest(ctx, "service", "DeletePurchases")

	var resp dto.DeletePurchasesResponse
	message, err := s.api.Delete(ctx, pathPurchases, req.IDs, &resp)
	if err != nil {
		return nil, "", s.fail(ctx, err)
	}

	logger.InfoWithContext(ctx, "Purchases deleted").
		Int("requested", len(req.IDs)).
		Int("deleted", resp.DeletedCount).
		Log()
	return &resp, message, nil
}

// Buy checks out the given cart items.
func (s *PurchaseService) Buy(ctx context.Context, req dto.BuyProductsRequest) ([]dto.Purchase, string, error) {
	ctx = ctxutil.NewContextWithRequest(ctx, "service", "BuyProducts")

	purchases := []dto.Purchase{}
	message, err := s.api.Post(ctx, pathPurchases+"/buy-products", req.Items, &purchases)
	if err != nil {
		return nil, "", s.fail(ctx, err)
	}

	logger.InfoWithContext(ctx, "Products bought").
		Int("items", len(req.Items)).
		Log()
	return purchases, message, nil
}

func (s *PurchaseService) fail(ctx context.Context, err error) error {
	logger.InfoWithContext(ctx, "Upstream purchase call failed").
		Err(err).
		Log()
	dropSessionOnUnauthorized(ctx, s.sessions, err)
	return mapUpstreamError(err, apperrors.ErrProductNotFound)
}
