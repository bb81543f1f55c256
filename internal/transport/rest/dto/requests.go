package dto

type CreateProductRequest struct {
	Name        string `json:"name" binding:"required"`
	Price       *int64 `json:"price" binding:"required,min=0"`
	Category    string `json:"category"`
	Description string `json:"description"`
	Stock       int64  `json:"stock"`
	IsUnlimited bool   `json:"is_unlimited"`
}

type UpdateProductRequest struct {
	Name        *string `json:"name"`
	Price       *int64  `json:"price" binding:"omitempty,min=0"`
	Category    *string `json:"category"`
	Description *string `json:"description"`
}

type AdjustStockRequest struct {
	Change int64  `json:"change" binding:"required"`
	Reason string `json:"reason"`
}

type SetStockRequest struct {
	Stock  *int64 `json:"stock" binding:"required"`
	Reason string `json:"reason"`
}

type CreateTableRequest struct {
	Name    string `json:"name" binding:"required"`
	Section string `json:"section" binding:"required"`
}

type AddItemRequest struct {
	ProductID uint   `json:"product_id" binding:"required"`
	Type      string `json:"type"`     // paid по умолчанию
	Quantity  int64  `json:"quantity"` // 1 по умолчанию
}

type CloseOrderRequest struct {
	TableID uint   `json:"table_id" binding:"required"`
	Status  string `json:"status" binding:"required,oneof=paid no_payment"`
}

type PayItemRequest struct {
	Quantity int64 `json:"quantity" binding:"required,min=1"`
}
