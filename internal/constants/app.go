package constants

// Application Information
const (
	AppName    = "Storefront Service"
	AppVersion = "1.0.0"
)

// Cache Key Prefixes
const (
	CacheKeyPrefix     = "store:"
	CacheKeyProducts   = CacheKeyPrefix + "products:"
	CacheKeyProduct    = CacheKeyPrefix + "product:"
	CacheKeyCategories = CacheKeyPrefix + "categories"
)
