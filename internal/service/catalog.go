package service

import (
	"context"
	"errors"
	"net/url"
	"strconv"
	"strings"

	"github.com/Payphone-Digital/storefront/config"
	"github.com/Payphone-Digital/storefront/internal/constants"
	"github.com/Payphone-Digital/storefront/internal/dto"
	apperrors "github.com/Payphone-Digital/storefront/internal/errors"
	ctxutil "github.com/Payphone-Digital/storefront/pkg/context"
	"github.com/Payphone-Digital/storefront/pkg/logger"
	"github.com/Payphone-Digital/storefront/pkg/pagination"
	"github.com/Payphone-Digital/storefront/pkg/querystate"
)

// slugSeparator splits a "name-i-<id>" product slug.
const slugSeparator = "-i-"

// CatalogService serves product listings, product details and categories,
// and builds the query strings behind the listing controls.
type CatalogService struct {
	api   API
	cache *CacheService
	cfg   config.CatalogConfig
}

func NewCatalogService(api API, cache *CacheService, cfg config.CatalogConfig) *CatalogService {
	return &CatalogService{api: api, cache: cache, cfg: cfg}
}

// ListProducts fetches one listing page and its pagination view.
func (s *CatalogService) ListProducts(ctx context.Context, qc querystate.QueryConfig) (*dto.ProductListResponse, error) {
	ctx = ctxutil.NewContextWithRequest(ctx, "service", "ListProducts")

	page, err := qc.Page()
	if err != nil || page < constants.MinPage {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidArgument, "page must be a positive integer")
	}

	key := constants.CacheKeyProducts + qc.Encode()
	list, err := cachedLoad(ctx, s.cache, key, s.cfg.ListingTTL, func(ctx context.Context) (dto.ProductList, error) {
		var out dto.ProductList
		_, err := s.api.Get(ctx, pathProducts, qc.Values(), &out)
		return out, mapUpstreamError(err, nil)
	})
	if err != nil {
		logger.WarnWithContext(ctx, "Failed to list products").
			String("query", qc.Encode()).
			Err(err).
			Log()
		return nil, err
	}

	view, err := BuildPaginationView(qc, list.Pagination.PageSize)
	if err != nil {
		return nil, err
	}

	products := list.Products
	if products == nil {
		products = []dto.Product{}
	}

	return &dto.ProductListResponse{
		Products:    products,
		QueryConfig: qc,
		Pagination:  view,
	}, nil
}

// BuildPaginationView lays out the page controls of a listing with pageSize
// pages. A listing without pages renders no entries and both edge controls
// disabled.
func BuildPaginationView(qc querystate.QueryConfig, pageSize int) (dto.PaginationView, error) {
	page, err := qc.Page()
	if err != nil {
		return dto.PaginationView{}, apperrors.WrapError(apperrors.ErrInvalidArgument, err)
	}

	view := dto.PaginationView{
		Page:     page,
		PageSize: pageSize,
		Entries:  []dto.PageLink{},
	}
	if pageSize < 1 {
		view.PrevDisabled = true
		view.NextDisabled = true
		return view, nil
	}

	plan, err := pagination.Compute(page, pageSize, constants.PaginationRadius)
	if err != nil {
		return dto.PaginationView{}, paginationError(err)
	}

	for _, entry := range plan {
		link := dto.PageLink{Entry: entry}
		if entry.Kind == pagination.KindPage {
			link.Query = pageQuery(qc, entry.Number)
			link.Current = entry.Number == page
		}
		view.Entries = append(view.Entries, link)
	}

	controls := pagination.ControlsFor(page, pageSize)
	view.PrevDisabled = controls.PrevDisabled
	view.NextDisabled = controls.NextDisabled
	if !controls.PrevDisabled {
		view.Prev = pageQuery(qc, page-1)
	}
	if !controls.NextDisabled {
		view.Next = pageQuery(qc, page+1)
	}
	return view, nil
}

// Plan returns the bare render plan for page of pageSize pages.
func (s *CatalogService) Plan(page, pageSize int) (*dto.PaginationPlanResponse, error) {
	plan, err := pagination.Compute(page, pageSize, constants.PaginationRadius)
	if err != nil {
		return nil, paginationError(err)
	}

	return &dto.PaginationPlanResponse{
		Page:     page,
		PageSize: pageSize,
		Entries:  plan,
		Controls: pagination.ControlsFor(page, pageSize),
		Text:     plan.Format(page),
	}, nil
}

// GetProduct returns one product by id or by "name-i-<id>" slug.
func (s *CatalogService) GetProduct(ctx context.Context, idOrSlug string) (*dto.Product, error) {
	ctx = ctxutil.NewContextWithRequest(ctx, "service", "GetProduct")

	id := ProductIDFromSlug(idOrSlug)
	if id == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidArgument, "product id is required")
	}

	key := constants.CacheKeyProduct + id
	product, err := cachedLoad(ctx, s.cache, key, s.cfg.ProductTTL, func(ctx context.Context) (dto.Product, error) {
		var out dto.Product
		_, err := s.api.Get(ctx, pathProducts+"/"+url.PathEscape(id), nil, &out)
		return out, mapUpstreamError(err, apperrors.ErrProductNotFound)
	})
	if err != nil {
		logger.InfoWithContext(ctx, "Failed to get product").
			String("product_id", id).
			Err(err).
			Log()
		return nil, err
	}
	return &product, nil
}

// Categories returns the category list.
func (s *CatalogService) Categories(ctx context.Context) ([]dto.Category, error) {
	ctx = ctxutil.NewContextWithRequest(ctx, "service", "Categories")

	return cachedLoad(ctx, s.cache, constants.CacheKeyCategories, s.cfg.CategoryTTL, func(ctx context.Context) ([]dto.Category, error) {
		out := []dto.Category{}
		_, err := s.api.Get(ctx, pathCategory, nil, &out)
		return out, mapUpstreamError(err, nil)
	})
}

// Search returns the listing query for a name search started from qc.
func (s *CatalogService) Search(qc querystate.QueryConfig, name string) string {
	return qc.StartNameSearch(strings.TrimSpace(name))
}

// PriceFilter returns the listing query with the submitted price bounds.
func (s *CatalogService) PriceFilter(qc querystate.QueryConfig, req dto.PriceFilterRequest) string {
	return qc.WithUpdates(map[string]string{
		querystate.KeyPriceMin: req.PriceMin,
		querystate.KeyPriceMax: req.PriceMax,
	})
}

// ClearFilters returns the listing query without the aside filters.
func (s *CatalogService) ClearFilters(qc querystate.QueryConfig) string {
	return qc.ClearFilters().Encode()
}

// ProductIDFromSlug extracts the id from a "name-i-<id>" slug. A bare id is
// returned unchanged.
func ProductIDFromSlug(slug string) string {
	if i := strings.LastIndex(slug, slugSeparator); i >= 0 {
		return slug[i+len(slugSeparator):]
	}
	return slug
}

func pageQuery(qc querystate.QueryConfig, page int) string {
	return qc.WithUpdates(map[string]string{querystate.KeyPage: strconv.Itoa(page)})
}

func paginationError(err error) error {
	if errors.Is(err, pagination.ErrInvalidArgument) {
		return apperrors.WrapError(apperrors.WithMessage(apperrors.ErrInvalidArgument, err.Error()), err)
	}
	return apperrors.WrapError(apperrors.ErrInternal, err)
}
