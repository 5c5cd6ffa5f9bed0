package dto

// InvalidateCacheRequest selects the catalog cache scope to drop. An empty
// scope drops every catalog entry.
type InvalidateCacheRequest struct {
	Scope string `json:"scope" binding:"omitempty,oneof=products product categories"`
}

type InvalidateCacheResponse struct {
	Scope   string `json:"scope"`
	Deleted int    `json:"deleted"`
}
