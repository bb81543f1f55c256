package service

import (
	"context"

	"github.com/emrecankuyucu/jurnalAdis/internal/models"
)

type AddItemInput struct {
	OrderID   uint
	ProductID uint
	Type      models.ItemType
	Quantity  int64
}

// OrderService — книга заказов: позиции, оплата/возврат оплаты, закрытие.
type OrderService interface {
	StartOrder(ctx context.Context, tableID uint) (*models.Order, error)
	AddItem(ctx context.Context, in AddItemInput) (*models.OrderItem, error)
	AddItemToTable(ctx context.Context, tableID, productID uint, typ models.ItemType, qty int64) (*models.OrderItem, error)
	MarkItemPaid(ctx context.Context, itemID uint, qty int64) (*models.OrderItem, error)
	MarkItemUnpaid(ctx context.Context, itemID uint) (*models.OrderItem, error)
	CloseOrder(ctx context.Context, orderID, tableID uint, status models.OrderStatus) (*models.Order, error)
	SettleOrder(ctx context.Context, orderID uint) (*models.Order, error)

	GetOrder(ctx context.Context, orderID uint) (*models.Order, error)
	GetOrderItems(ctx context.Context, orderID uint) ([]models.OrderItem, error)
	GetActiveOrderForTable(ctx context.Context, tableID uint) (*models.Order, error)
}
