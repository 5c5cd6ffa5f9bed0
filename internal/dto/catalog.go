package dto

import (
	"strconv"

	"github.com/Payphone-Digital/storefront/pkg/pagination"
	"github.com/go-playground/validator/v10"
)

type Category struct {
	ID   string `json:"_id"`
	Name string `json:"name"`
}

type Product struct {
	ID                  string   `json:"_id"`
	Images              []string `json:"images"`
	Price               int64    `json:"price"`
	Rating              float64  `json:"rating"`
	PriceBeforeDiscount int64    `json:"price_before_discount"`
	Quantity            int      `json:"quantity"`
	Sold                int      `json:"sold"`
	View                int      `json:"view"`
	Name                string   `json:"name"`
	Description         string   `json:"description,omitempty"`
	Category            Category `json:"category"`
	Image               string   `json:"image"`
	CreatedAt           string   `json:"createdAt"`
	UpdatedAt           string   `json:"updatedAt"`
}

// UpstreamPagination is the pagination block of the upstream product list.
type UpstreamPagination struct {
	Page     int `json:"page"`
	Limit    int `json:"limit"`
	PageSize int `json:"page_size"`
}

// ProductList is the data member of the upstream GET /products response.
type ProductList struct {
	Products   []Product          `json:"products"`
	Pagination UpstreamPagination `json:"pagination"`
}

// PageLink is one rendered pagination entry. Query is set for pages.
type PageLink struct {
	pagination.Entry
	Query   string `json:"query,omitempty"`
	Current bool   `json:"current,omitempty"`
}

// PaginationView is everything a listing needs to render its page controls.
type PaginationView struct {
	Page         int        `json:"page"`
	PageSize     int        `json:"page_size"`
	Entries      []PageLink `json:"entries"`
	Prev         string     `json:"prev,omitempty"`
	Next         string     `json:"next,omitempty"`
	PrevDisabled bool       `json:"prev_disabled"`
	NextDisabled bool       `json:"next_disabled"`
}

type ProductListResponse struct {
	Products    []Product         `json:"products"`
	QueryConfig map[string]string `json:"query_config"`
	Pagination  PaginationView    `json:"pagination"`
}

type SearchRequest struct {
	Name string `json:"name" binding:"required,notblank"`
}

type SearchResponse struct {
	Search string `json:"search"`
}

// PriceFilterRequest is the aside price form. At least one bound is needed
// and max may not be below min.
type PriceFilterRequest struct {
	PriceMin string `json:"price_min" binding:"required_without=PriceMax,omitempty,numeric"`
	PriceMax string `json:"price_max" binding:"required_without=PriceMin,omitempty,numeric"`
}

// RegisterValidations adds the struct-level rules of this package to v.
func RegisterValidations(v *validator.Validate) {
	v.RegisterStructValidation(priceRangeValidation, PriceFilterRequest{})
}

func priceRangeValidation(sl validator.StructLevel) {
	req := sl.Current().Interface().(PriceFilterRequest)
	if req.PriceMin == "" || req.PriceMax == "" {
		return
	}

	lo, errMin := strconv.ParseFloat(req.PriceMin, 64)
	hi, errMax := strconv.ParseFloat(req.PriceMax, 64)
	if errMin != nil || errMax != nil {
		return
	}
	if hi < lo {
		sl.ReportError(req.PriceMax, "price_max", "PriceMax", "pricerange", "")
		sl.ReportError(req.PriceMin, "price_min", "PriceMin", "pricerange", "")
	}
}

type QueryResponse struct {
	Search string `json:"search"`
}

type PaginationPlanResponse struct {
	Page     int                 `json:"page"`
	PageSize int                 `json:"page_size"`
	Entries  pagination.Plan     `json:"entries"`
	Controls pagination.Controls `json:"controls"`
	Text     string              `json:"text"`
}
