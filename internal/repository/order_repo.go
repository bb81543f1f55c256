package repository

import (
	"context"
	"errors"
	"time"

	"github.com/emrecankuyucu/jurnalAdis/internal/models"

	"gorm.io/gorm"
)

type OrderListFilter struct {
	Statuses []models.OrderStatus
	TableID  *uint
	From     *time.Time // created_at >= From, сравнение в UTC
	To       *time.Time // created_at <= To
	Limit    int        // 0 -> 50, < 0 -> без ограничения
	Offset   int
}

type OrderRepo interface {
	Create(ctx context.Context, o *models.Order) error
	GetByID(ctx context.Context, id uint) (*models.Order, error)
	GetByIDForUpdate(ctx context.Context, id uint) (*models.Order, error)
	GetActiveByTable(ctx context.Context, tableID uint) (*models.Order, error)
	Close(ctx context.Context, id uint, status models.OrderStatus, closedAt time.Time) (bool, error)
	UpdateStatus(ctx context.Context, id uint, from, to models.OrderStatus) (bool, error)
	UpdateTotal(ctx context.Context, id uint, total int64) error
	List(ctx context.Context, f OrderListFilter) ([]models.Order, int64, error)
}

type orderRepo struct{ db *gorm.DB }

func NewOrderRepo(db *gorm.DB) OrderRepo { return &orderRepo{db: db} }

func (r *orderRepo) Create(ctx context.Context, o *models.Order) error {
	return r.db.WithContext(ctx).Create(o).Error
}

func (r *orderRepo) GetByID(ctx context.Context, id uint) (*models.Order, error) {
	var ord models.Order
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		First(&ord, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &ord, err
}

// GetByIDForUpdate блокирует строку заказа до конца транзакции: все мутации
// одного заказа выполняются строго по очереди.
func (r *orderRepo) GetByIDForUpdate(ctx context.Context, id uint) (*models.Order, error) {
	var ord models.Order
	err := forUpdate(r.db.WithContext(ctx)).First(&ord, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &ord, err
}

func (r *orderRepo) GetActiveByTable(ctx context.Context, tableID uint) (*models.Order, error) {
	var ord models.Order
	err := r.db.WithContext(ctx).
		Where("table_id = ? AND status = ?", tableID, models.OrderActive).
		First(&ord).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &ord, err
}

func (r *orderRepo) Close(ctx context.Context, id uint, status models.OrderStatus, closedAt time.Time) (bool, error) {
	tx := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ? AND status = ?", id, models.OrderActive).
		Updates(map[string]any{
			"status":    status,
			"closed_at": closedAt,
		})
	return tx.RowsAffected > 0, tx.Error
}

func (r *orderRepo) UpdateStatus(ctx context.Context, id uint, from, to models.OrderStatus) (bool, error) {
	tx := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	return tx.RowsAffected > 0, tx.Error
}

func (r *orderRepo) UpdateTotal(ctx context.Context, id uint, total int64) error {
	return r.db.WithContext(ctx).Model(&models.Order{}).Where("id = ?", id).Update("total_amount", total).Error
}

func (r *orderRepo) List(ctx context.Context, f OrderListFilter) ([]models.Order, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Order{})

	if len(f.Statuses) > 0 {
		q = q.Where("status IN ?", f.Statuses)
	}
	if f.TableID != nil {
		q = q.Where("table_id = ?", *f.TableID)
	}
	if f.From != nil {
		q = q.Where("created_at >= ?", f.From.UTC())
	}
	if f.To != nil {
		q = q.Where("created_at <= ?", f.To.UTC())
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if f.Limit == 0 {
		f.Limit = 50
	}
	if f.Limit < 0 {
		f.Limit = -1
	}

	if f.Offset < 0 {
		f.Offset = 0
	}

	var list []models.Order
	err := q.Order("created_at DESC, id DESC").
		Limit(f.Limit).
		Offset(f.Offset).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Find(&list).Error
	return list, total, err
}
