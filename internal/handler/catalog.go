package handler

import (
	"net/http"
	"strconv"

	"github.com/Payphone-Digital/storefront/internal/constants"
	"github.com/Payphone-Digital/storefront/internal/dto"
	"github.com/Payphone-Digital/storefront/internal/middleware"
	ctxutil "github.com/Payphone-Digital/storefront/pkg/context"
	"github.com/Payphone-Digital/storefront/pkg/logger"
	"github.com/Payphone-Digital/storefront/pkg/querystate"
	"github.com/gin-gonic/gin"
)

type CatalogHandler struct {
	catalog CatalogService
}

func NewCatalogHandler(catalog CatalogService) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

// ListProducts serves one listing page. The request query string is the
// listing state.
func (h *CatalogHandler) ListProducts(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), "handler", "ListProducts")

	qc := querystate.FromValues(c.Request.URL.Query())
	resp, err := h.catalog.ListProducts(ctx, qc)
	if err != nil {
		respondError(c, ctx, "List products", err)
		return
	}

	logger.DebugWithContext(ctx, "Products listed").
		String("query", qc.Encode()).
		Int("count", len(resp.Products)).
		Log()

	c.JSON(http.StatusOK, constants.BuildDataResponse(constants.MsgSuccess, resp))
}

func (h *CatalogHandler) GetProduct(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), "handler", "GetProduct")

	product, err := h.catalog.GetProduct(ctx, c.Param("id"))
	if err != nil {
		respondError(c, ctx, "Get product", err)
		return
	}

	c.JSON(http.StatusOK, constants.BuildDataResponse(constants.MsgSuccess, product))
}

func (h *CatalogHandler) Categories(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), "handler", "Categories")

	categories, err := h.catalog.Categories(ctx)
	if err != nil {
		respondError(c, ctx, "List categories", err)
		return
	}

	c.JSON(http.StatusOK, constants.BuildDataResponse(constants.MsgSuccess, categories))
}

// Search returns the listing query for a name search. The current listing
// state is taken from the request query string.
func (h *CatalogHandler) Search(c *gin.Context) {
	req, ok := middleware.RequestBody[dto.SearchRequest](c)
	if !ok {
		c.JSON(http.StatusBadRequest, constants.BuildErrorResponse(constants.MsgBadRequest, nil))
		return
	}

	qc := querystate.FromValues(c.Request.URL.Query())
	c.JSON(http.StatusOK, constants.BuildDataResponse(constants.MsgSuccess, dto.SearchResponse{
		Search: h.catalog.Search(qc, req.Name),
	}))
}

// PriceFilter returns the listing query with the submitted price bounds.
func (h *CatalogHandler) PriceFilter(c *gin.Context) {
	req, ok := middleware.RequestBody[dto.PriceFilterRequest](c)
	if !ok {
		c.JSON(http.StatusBadRequest, constants.BuildErrorResponse(constants.MsgBadRequest, nil))
		return
	}

	qc := querystate.FromValues(c.Request.URL.Query())
	c.JSON(http.StatusOK, constants.BuildDataResponse(constants.MsgSuccess, dto.QueryResponse{
		Search: h.catalog.PriceFilter(qc, *req),
	}))
}

func (h *CatalogHandler) ClearFilters(c *gin.Context) {
	qc := querystate.FromValues(c.Request.URL.Query())
	c.JSON(http.StatusOK, constants.BuildDataResponse(constants.MsgSuccess, dto.QueryResponse{
		Search: h.catalog.ClearFilters(qc),
	}))
}

// Plan returns the pagination render plan for ?page=&page_size=.
func (h *CatalogHandler) Plan(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), "handler", "PaginationPlan")

	page, errPage := strconv.Atoi(c.DefaultQuery(constants.QueryParamPage, querystate.DefaultPage))
	pageSize, errSize := strconv.Atoi(c.Query(constants.QueryParamPageSize))
	if errPage != nil || errSize != nil {
		c.JSON(http.StatusBadRequest, constants.BuildErrorResponse(constants.MsgBadRequest, map[string]string{
			constants.QueryParamPage:     c.Query(constants.QueryParamPage),
			constants.QueryParamPageSize: c.Query(constants.QueryParamPageSize),
		}))
		return
	}

	plan, err := h.catalog.Plan(page, pageSize)
	if err != nil {
		respondError(c, ctx, "Pagination plan", err)
		return
	}

	c.JSON(http.StatusOK, constants.BuildDataResponse(constants.MsgSuccess, plan))
}
