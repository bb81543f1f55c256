package dto

import (
	"time"

	"github.com/emrecankuyucu/jurnalAdis/internal/models"
)

type ProductResponse struct {
	ID          uint      `json:"id"`
	Name        string    `json:"name"`
	Price       int64     `json:"price"`
	Category    string    `json:"category"`
	Description string    `json:"description,omitempty"`
	Stock       int64     `json:"stock"`
	IsUnlimited bool      `json:"is_unlimited"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func ToProduct(p *models.Product) ProductResponse {
	return ProductResponse{
		ID:          p.ID,
		Name:        p.Name,
		Price:       p.Price,
		Category:    p.Category,
		Description: p.Description,
		Stock:       p.Stock,
		IsUnlimited: p.IsUnlimited,
		UpdatedAt:   p.UpdatedAt,
	}
}

func ToProducts(list []models.Product) []ProductResponse {
	out := make([]ProductResponse, 0, len(list))
	for i := range list {
		out = append(out, ToProduct(&list[i]))
	}
	return out
}

type TableResponse struct {
	ID             uint   `json:"id"`
	Name           string `json:"name"`
	Section        string `json:"section"`
	Status         string `json:"status"`
	CurrentOrderID *uint  `json:"current_order_id,omitempty"`
}

func ToTable(t *models.Table) TableResponse {
	return TableResponse{
		ID:             t.ID,
		Name:           t.Name,
		Section:        t.Section,
		Status:         string(t.Status),
		CurrentOrderID: t.CurrentOrderID,
	}
}

func ToTables(list []models.Table) []TableResponse {
	out := make([]TableResponse, 0, len(list))
	for i := range list {
		out = append(out, ToTable(&list[i]))
	}
	return out
}

type OrderItemResponse struct {
	ID          uint   `json:"id"`
	OrderID     uint   `json:"order_id"`
	ProductID   uint   `json:"product_id"`
	ProductName string `json:"product_name"`
	Quantity    int64  `json:"quantity"`
	Price       int64  `json:"price"`
	Type        string `json:"type"`
	IsPaid      bool   `json:"is_paid"`
	LineTotal   int64  `json:"line_total"`
}

func ToOrderItem(it *models.OrderItem) OrderItemResponse {
	return OrderItemResponse{
		ID:          it.ID,
		OrderID:     it.OrderID,
		ProductID:   it.ProductID,
		ProductName: it.ProductName,
		Quantity:    it.Quantity,
		Price:       it.Price,
		Type:        string(it.Type),
		IsPaid:      it.IsPaid,
		LineTotal:   it.LineTotal(),
	}
}

func ToOrderItems(list []models.OrderItem) []OrderItemResponse {
	out := make([]OrderItemResponse, 0, len(list))
	for i := range list {
		out = append(out, ToOrderItem(&list[i]))
	}
	return out
}

type OrderResponse struct {
	ID          uint                `json:"id"`
	TableID     uint                `json:"table_id"`
	Status      string              `json:"status"`
	TotalAmount int64               `json:"total_amount"`
	PaidAmount  int64               `json:"paid_amount"`
	CreatedAt   time.Time           `json:"created_at"`
	ClosedAt    *time.Time          `json:"closed_at,omitempty"`
	Items       []OrderItemResponse `json:"items"`
}

func ToOrder(o *models.Order) OrderResponse {
	var paid int64
	for i := range o.Items {
		if o.Items[i].IsPaid {
			paid += o.Items[i].LineTotal()
		}
	}
	return OrderResponse{
		ID:          o.ID,
		TableID:     o.TableID,
		Status:      string(o.Status),
		TotalAmount: o.TotalAmount,
		PaidAmount:  paid,
		CreatedAt:   o.CreatedAt,
		ClosedAt:    o.ClosedAt,
		Items:       ToOrderItems(o.Items),
	}
}

func ToOrders(list []models.Order) []OrderResponse {
	out := make([]OrderResponse, 0, len(list))
	for i := range list {
		out = append(out, ToOrder(&list[i]))
	}
	return out
}

type StockLogResponse struct {
	ID           uint      `json:"id"`
	ProductID    uint      `json:"product_id"`
	ProductName  string    `json:"product_name"`
	ChangeAmount int64     `json:"change_amount"`
	NewStock     int64     `json:"new_stock"`
	Reason       string    `json:"reason,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

func ToStockLog(e *models.StockLogEntry) StockLogResponse {
	return StockLogResponse{
		ID:           e.ID,
		ProductID:    e.ProductID,
		ProductName:  e.ProductName,
		ChangeAmount: e.ChangeAmount,
		NewStock:     e.NewStock,
		Reason:       e.Reason,
		CreatedAt:    e.CreatedAt,
	}
}

type ListResponse[T any] struct {
	Items []T   `json:"items"`
	Total int64 `json:"total"`
}
