package repository

import (
	"context"
	"errors"
	"time"

	"github.com/emrecankuyucu/jurnalAdis/internal/models"

	"gorm.io/gorm"
)

// BucketKey — ключ слияния строк заказа.
type BucketKey struct {
	OrderID   uint
	ProductID uint
	Price     int64
	Type      models.ItemType
	IsPaid    bool
}

func KeyOf(it *models.OrderItem) BucketKey {
	return BucketKey{
		OrderID:   it.OrderID,
		ProductID: it.ProductID,
		Price:     it.Price,
		Type:      it.Type,
		IsPaid:    it.IsPaid,
	}
}

type OrderItemRepo interface {
	Create(ctx context.Context, it *models.OrderItem) error
	GetByID(ctx context.Context, id uint) (*models.OrderItem, error)
	FindBucket(ctx context.Context, k BucketKey) (*models.OrderItem, error)
	AddQuantity(ctx context.Context, id uint, delta int64) error
	SetPaid(ctx context.Context, id uint, paid bool) error
	Delete(ctx context.Context, id uint) error
	GetByOrderID(ctx context.Context, orderID uint) ([]models.OrderItem, error)
	SumByOrder(ctx context.Context, orderID uint) (int64, error)
	ListForOrdersCreated(ctx context.Context, from, to *time.Time) ([]models.OrderItem, error)
}

type orderItemRepo struct{ db *gorm.DB }

func NewOrderItemRepo(db *gorm.DB) OrderItemRepo { return &orderItemRepo{db: db} }

func (r *orderItemRepo) Create(ctx context.Context, it *models.OrderItem) error {
	return r.db.WithContext(ctx).Create(it).Error
}

func (r *orderItemRepo) GetByID(ctx context.Context, id uint) (*models.OrderItem, error) {
	var it models.OrderItem
	err := r.db.WithContext(ctx).First(&it, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &it, err
}

func (r *orderItemRepo) FindBucket(ctx context.Context, k BucketKey) (*models.OrderItem, error) {
	var it models.OrderItem
	err := r.db.WithContext(ctx).
		Where("order_id = ? AND product_id = ? AND is_paid = ? AND price = ? AND type = ?",
			k.OrderID, k.ProductID, k.IsPaid, k.Price, k.Type).
		First(&it).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &it, err
}

func (r *orderItemRepo) AddQuantity(ctx context.Context, id uint, delta int64) error {
	return r.db.WithContext(ctx).
		Model(&models.OrderItem{}).
		Where("id = ?", id).
		Update("quantity", gorm.Expr("quantity + ?", delta)).Error
}

func (r *orderItemRepo) SetPaid(ctx context.Context, id uint, paid bool) error {
	return r.db.WithContext(ctx).
		Model(&models.OrderItem{}).
		Where("id = ?", id).
		Update("is_paid", paid).Error
}

func (r *orderItemRepo) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.OrderItem{}, "id = ?", id).Error
}

func (r *orderItemRepo) GetByOrderID(ctx context.Context, orderID uint) ([]models.OrderItem, error) {
	var rows []models.OrderItem
	err := r.db.WithContext(ctx).Where("order_id = ?", orderID).Order("id ASC").Find(&rows).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return rows, err
}

func (r *orderItemRepo) SumByOrder(ctx context.Context, orderID uint) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Model(&models.OrderItem{}).
		Select("COALESCE(SUM(price * quantity), 0)").
		Where("order_id = ?", orderID).
		Scan(&total).Error
	return total, err
}

// ListForOrdersCreated возвращает позиции заказов, созданных в окне [from, to].
func (r *orderItemRepo) ListForOrdersCreated(ctx context.Context, from, to *time.Time) ([]models.OrderItem, error) {
	q := r.db.WithContext(ctx).
		Model(&models.OrderItem{}).
		Joins("JOIN orders ON orders.id = order_items.order_id")
	if from != nil {
		q = q.Where("orders.created_at >= ?", from.UTC())
	}
	if to != nil {
		q = q.Where("orders.created_at <= ?", to.UTC())
	}
	var rows []models.OrderItem
	err := q.Order("order_items.id ASC").Find(&rows).Error
	return rows, err
}
