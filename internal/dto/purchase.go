package dto

type PurchaseQuery struct {
	Status *int `form:"status" binding:"omitempty,gte=-1,lte=5"`
}

type AddToCartRequest struct {
	ProductID string `json:"product_id" binding:"required"`
	BuyCount  int    `json:"buy_count" binding:"required,gte=1"`
}

type UpdatePurchaseRequest struct {
	ProductID string `json:"product_id" binding:"required"`
	BuyCount  int    `json:"buy_count" binding:"required,gte=1"`
}

type DeletePurchasesRequest struct {
	IDs []string `json:"ids" binding:"required,min=1,dive,required"`
}

type BuyProductsRequest struct {
	Items []AddToCartRequest `json:"items" binding:"required,min=1,dive"`
}

type Purchase struct {
	ID                  string  `json:"_id"`
	BuyCount            int     `json:"buy_count"`
	Price               int64   `json:"price"`
	PriceBeforeDiscount int64   `json:"price_before_discount"`
	Status              int     `json:"status"`
	User                string  `json:"user"`
	Product             Product `json:"product"`
	CreatedAt           string  `json:"createdAt"`
	UpdatedAt           string  `json:"updatedAt"`
}

type DeletePurchasesResponse struct {
	DeletedCount int `json:"deleted_count"`
}
