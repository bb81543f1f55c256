package service

import (
	"context"
	"time"

	"github.com/emrecankuyucu/jurnalAdis/internal/models"
)

type OrderOpenedEvent struct {
	OrderID  uint      `json:"order_id"`
	TableID  uint      `json:"table_id"`
	OpenedAt time.Time `json:"opened_at"`
}

type ItemAddedEvent struct {
	OrderID   uint            `json:"order_id"`
	ItemID    uint            `json:"item_id"`
	ProductID uint            `json:"product_id"`
	Type      models.ItemType `json:"type"`
	Quantity  int64           `json:"quantity"`
	Price     int64           `json:"price"`
	Total     int64           `json:"order_total"`
}

type OrderClosedEvent struct {
	OrderID  uint               `json:"order_id"`
	TableID  uint               `json:"table_id"`
	Status   models.OrderStatus `json:"status"`
	Total    int64              `json:"total"`
	Settled  bool               `json:"settled,omitempty"`
	ClosedAt time.Time          `json:"closed_at"`
}

type StockAdjustedEvent struct {
	ProductID    uint      `json:"product_id"`
	ChangeAmount int64     `json:"change_amount"`
	NewStock     int64     `json:"new_stock"`
	Reason       string    `json:"reason,omitempty"`
	At           time.Time `json:"at"`
}

// EventBus публикует события уже закоммиченных изменений. nil отключает публикацию.
type EventBus interface {
	PublishOrderOpened(ctx context.Context, e OrderOpenedEvent) error
	PublishItemAdded(ctx context.Context, e ItemAddedEvent) error
	PublishOrderClosed(ctx context.Context, e OrderClosedEvent) error
	PublishStockAdjusted(ctx context.Context, e StockAdjustedEvent) error
}

// ProductCache — кэш чтения каталога. Любая запись в products должна его сбрасывать.
// GetProducts возвращает поколение кэша на момент чтения; SetProducts пишет
// под этим поколением, так что список, прочитанный до сброса, уже не будет отдан.
// Отрицательное поколение означает, что кэш недоступен и писать не нужно.
type ProductCache interface {
	GetProducts(ctx context.Context, key string) (list []models.Product, gen int64, ok bool)
	SetProducts(ctx context.Context, gen int64, key string, list []models.Product)
	Invalidate(ctx context.Context)
}
