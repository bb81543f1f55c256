package models

import "time"

type TableStatus string

const (
	TableAvailable TableStatus = "available"
	TableOccupied  TableStatus = "occupied"
)

type OrderStatus string

const (
	OrderActive    OrderStatus = "active"
	OrderPaid      OrderStatus = "paid"
	OrderNoPayment OrderStatus = "no_payment"
)

// Closed сообщает, что заказ завершён и больше не принимает изменений.
func (s OrderStatus) Closed() bool { return s == OrderPaid || s == OrderNoPayment }

func (s OrderStatus) Valid() bool { return s == OrderActive || s.Closed() }

type ItemType string

const (
	ItemPaid          ItemType = "paid"
	ItemComplimentary ItemType = "complimentary"
)

func (t ItemType) Valid() bool { return t == ItemPaid || t == ItemComplimentary }

type Product struct {
	ID          uint   `gorm:"primaryKey;autoIncrement"`
	Name        string `gorm:"type:text;not null;index"`
	Price       int64  `gorm:"not null;default:0"`
	Category    string `gorm:"type:text;not null;default:'';index"`
	Description string `gorm:"type:text"`
	Stock       int64  `gorm:"not null;default:0"`
	IsUnlimited bool   `gorm:"not null;default:false"`

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

func (Product) TableName() string { return "products" }

// Tracked — ведётся ли по продукту учёт остатков.
func (p *Product) Tracked() bool { return !p.IsUnlimited }

type Table struct {
	ID             uint        `gorm:"primaryKey;autoIncrement"`
	Name           string      `gorm:"type:text;not null"`
	Section        string      `gorm:"type:text;not null;index"`
	Status         TableStatus `gorm:"type:text;not null;default:'available';index"`
	CurrentOrderID *uint

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

func (Table) TableName() string { return "dining_tables" }

type Order struct {
	ID          uint        `gorm:"primaryKey;autoIncrement"`
	TableID     uint        `gorm:"not null;index"`
	Status      OrderStatus `gorm:"type:text;not null;default:'active';index"`
	TotalAmount int64       `gorm:"not null;default:0"`
	ClosedAt    *time.Time

	CreatedAt time.Time `gorm:"not null;index"`
	UpdatedAt time.Time `gorm:"not null"`

	Items []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
}

func (Order) TableName() string { return "orders" }

// OrderItem — одна строка «корзины» (bucket). Ключ слияния:
// (order_id, product_id, price, type, is_paid).
type OrderItem struct {
	ID          uint     `gorm:"primaryKey;autoIncrement"`
	OrderID     uint     `gorm:"not null;index:ix_order_items_bucket,priority:1;uniqueIndex:ux_order_items_bucket,priority:1"`
	ProductID   uint     `gorm:"not null;index:ix_order_items_bucket,priority:2;uniqueIndex:ux_order_items_bucket,priority:2"`
	ProductName string   `gorm:"type:text;not null"`
	Quantity    int64    `gorm:"not null"`
	Price       int64    `gorm:"not null;uniqueIndex:ux_order_items_bucket,priority:3"`
	Type        ItemType `gorm:"type:text;not null;default:'paid';uniqueIndex:ux_order_items_bucket,priority:4"`
	IsPaid      bool     `gorm:"not null;default:false;index:ix_order_items_bucket,priority:3;uniqueIndex:ux_order_items_bucket,priority:5"`

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

func (OrderItem) TableName() string { return "order_items" }

func (i *OrderItem) LineTotal() int64 { return i.Price * i.Quantity }

type StockLogEntry struct {
	ID           uint   `gorm:"primaryKey;autoIncrement"`
	ProductID    uint   `gorm:"not null;index:ix_stock_logs_product_created,priority:1"`
	ProductName  string `gorm:"type:text;not null"`
	ChangeAmount int64  `gorm:"not null"`
	NewStock     int64  `gorm:"not null"`
	Reason       string `gorm:"type:text"`

	CreatedAt time.Time `gorm:"not null;index:ix_stock_logs_product_created,priority:2"`
}

func (StockLogEntry) TableName() string { return "stock_logs" }
