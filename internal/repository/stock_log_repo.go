package repository

import (
	"context"

	"github.com/emrecankuyucu/jurnalAdis/internal/models"

	"gorm.io/gorm"
)

type StockLogFilter struct {
	ProductID *uint
	Limit     int
	Offset    int
}

// StockLogRepo — журнал ручных корректировок остатков, только добавление.
type StockLogRepo interface {
	Append(ctx context.Context, e *models.StockLogEntry) error
	List(ctx context.Context, f StockLogFilter) ([]models.StockLogEntry, int64, error)
	SumByProduct(ctx context.Context, productID uint) (int64, error)
}

type stockLogRepo struct{ db *gorm.DB }

func NewStockLogRepo(db *gorm.DB) StockLogRepo { return &stockLogRepo{db: db} }

func (r *stockLogRepo) Append(ctx context.Context, e *models.StockLogEntry) error {
	return r.db.WithContext(ctx).Create(e).Error
}

func (r *stockLogRepo) List(ctx context.Context, f StockLogFilter) ([]models.StockLogEntry, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.StockLogEntry{})
	if f.ProductID != nil {
		q = q.Where("product_id = ?", *f.ProductID)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if f.Limit <= 0 {
		f.Limit = 100
	}
	if f.Offset < 0 {
		f.Offset = 0
	}

	var list []models.StockLogEntry
	err := q.Order("created_at DESC, id DESC").Limit(f.Limit).Offset(f.Offset).Find(&list).Error
	return list, total, err
}

func (r *stockLogRepo) SumByProduct(ctx context.Context, productID uint) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Model(&models.StockLogEntry{}).
		Select("COALESCE(SUM(change_amount), 0)").
		Where("product_id = ?", productID).
		Scan(&total).Error
	return total, err
}
