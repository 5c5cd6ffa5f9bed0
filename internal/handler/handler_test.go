package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/Payphone-Digital/storefront/config"
	"github.com/Payphone-Digital/storefront/internal/dto"
	"github.com/Payphone-Digital/storefront/internal/middleware"
	"github.com/Payphone-Digital/storefront/internal/model"
	"github.com/Payphone-Digital/storefront/internal/service"
	"github.com/Payphone-Digital/storefront/pkg/querystate"
	"github.com/Payphone-Digital/storefront/pkg/validation"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

var validate = middleware.NewValidationMiddleware(validation.New(dto.RegisterValidations))

func newBody[T any]() func() interface{} {
	return func() interface{} { return new(T) }
}

type response struct {
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Details map[string]any  `json:"details"`
}

func do(t *testing.T, router *gin.Engine, method, target string, payload any) (*httptest.ResponseRecorder, response) {
	t.Helper()

	var reader *bytes.Reader
	switch p := payload.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(p))
	default:
		raw, err := json.Marshal(p)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var resp response
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	}
	return w, resp
}

// fakeCatalog serves query-building and plans from the real service and
// stubs the upstream reads.
type fakeCatalog struct {
	*service.CatalogService
	listErr    error
	productErr error
	lastQuery  querystate.QueryConfig
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{CatalogService: service.NewCatalogService(nil, service.NewCacheService(nil), config.CatalogConfig{})}
}

func (f *fakeCatalog) ListProducts(_ context.Context, qc querystate.QueryConfig) (*dto.ProductListResponse, error) {
	f.lastQuery = qc
	if f.listErr != nil {
		return nil, f.listErr
	}
	return &dto.ProductListResponse{
		Products:    []dto.Product{{ID: "p1", Name: "Shoe"}},
		QueryConfig: qc,
	}, nil
}

func (f *fakeCatalog) GetProduct(_ context.Context, idOrSlug string) (*dto.Product, error) {
	if f.productErr != nil {
		return nil, f.productErr
	}
	return &dto.Product{ID: service.ProductIDFromSlug(idOrSlug), Name: "Shoe"}, nil
}

func (f *fakeCatalog) Categories(context.Context) ([]dto.Category, error) {
	return []dto.Category{{ID: "c1", Name: "Shoes"}}, nil
}

type fakeAuth struct {
	resp       *dto.AuthResponse
	err        error
	logoutErr  error
	lastLogin  dto.LoginRequest
	lastToken  string
	logoutCall int
}

func (f *fakeAuth) Register(_ context.Context, req dto.RegisterRequest) (*dto.AuthResponse, error) {
	f.lastLogin = dto.LoginRequest{Email: req.Email, Password: req.Password}
	return f.resp, f.err
}

func (f *fakeAuth) Login(_ context.Context, req dto.LoginRequest) (*dto.AuthResponse, error) {
	f.lastLogin = req
	return f.resp, f.err
}

func (f *fakeAuth) Refresh(_ context.Context, refreshToken string) (*dto.AuthResponse, error) {
	f.lastToken = refreshToken
	return f.resp, f.err
}

func (f *fakeAuth) Logout(context.Context) error {
	f.logoutCall++
	return f.logoutErr
}

type fakeUsers struct {
	profile *model.Profile
	message string
	err     error
	update  dto.UpdateProfileRequest
	change  dto.ChangePasswordRequest
}

func (f *fakeUsers) GetMe(context.Context) (*model.Profile, error) {
	return f.profile, f.err
}

func (f *fakeUsers) UpdateMe(_ context.Context, req dto.UpdateProfileRequest) (*model.Profile, string, error) {
	f.update = req
	return f.profile, f.message, f.err
}

func (f *fakeUsers) ChangePassword(_ context.Context, req dto.ChangePasswordRequest) (*model.Profile, string, error) {
	f.change = req
	return f.profile, f.message, f.err
}

type fakePurchases struct {
	purchases  []dto.Purchase
	message    string
	err        error
	lastStatus *int
	lastDelete dto.DeletePurchasesRequest
	lastBuy    dto.BuyProductsRequest
}

func (f *fakePurchases) List(_ context.Context, status *int) ([]dto.Purchase, error) {
	f.lastStatus = status
	return f.purchases, f.err
}

func (f *fakePurchases) AddToCart(context.Context, dto.AddToCartRequest) (*dto.Purchase, string, error) {
	if f.err != nil {
		return nil, "", f.err
	}
	return &f.purchases[0], f.message, nil
}

func (f *fakePurchases) UpdatePurchase(context.Context, dto.UpdatePurchaseRequest) (*dto.Purchase, string, error) {
	if f.err != nil {
		return nil, "", f.err
	}
	return &f.purchases[0], f.message, nil
}

func (f *fakePurchases) Delete(_ context.Context, req dto.DeletePurchasesRequest) (*dto.DeletePurchasesResponse, string, error) {
	f.lastDelete = req
	if f.err != nil {
		return nil, "", f.err
	}
	return &dto.DeletePurchasesResponse{DeletedCount: len(req.IDs)}, f.message, nil
}

func (f *fakePurchases) Buy(_ context.Context, req dto.BuyProductsRequest) ([]dto.Purchase, string, error) {
	f.lastBuy = req
	return f.purchases, f.message, f.err
}
