package constants

import "github.com/Payphone-Digital/storefront/pkg/pagination"

// Pagination Query Parameters
const (
	QueryParamPage     = "page"
	QueryParamPageSize = "page_size"
)

// Listing Limits
const (
	MinPage          = 1
	PaginationRadius = pagination.DefaultRange
)

