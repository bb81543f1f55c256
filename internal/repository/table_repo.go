package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/emrecankuyucu/jurnalAdis/internal/models"

	"gorm.io/gorm"
)

type TableRepo interface {
	Create(ctx context.Context, t *models.Table) error
	BulkCreate(ctx context.Context, list []models.Table) error
	GetByID(ctx context.Context, id uint) (*models.Table, error)
	GetByIDForUpdate(ctx context.Context, id uint) (*models.Table, error)
	List(ctx context.Context, section string) ([]models.Table, error)
	Sections(ctx context.Context) ([]string, error)
	Count(ctx context.Context) (int64, error)
	Delete(ctx context.Context, id uint) (bool, error)

	// Occupy: status available -> occupied c привязкой заказа
	Occupy(ctx context.Context, id, orderID uint) (bool, error)
	// Release: status -> available, current_order_id -> NULL
	Release(ctx context.Context, id uint) (bool, error)
}

type tableRepo struct{ db *gorm.DB }

func NewTableRepo(db *gorm.DB) TableRepo { return &tableRepo{db: db} }

func (r *tableRepo) Create(ctx context.Context, t *models.Table) error {
	if t.Status == "" {
		t.Status = models.TableAvailable
	}
	return r.db.WithContext(ctx).Create(t).Error
}

func (r *tableRepo) BulkCreate(ctx context.Context, list []models.Table) error {
	if len(list) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).CreateInBatches(&list, 100).Error
}

func (r *tableRepo) GetByID(ctx context.Context, id uint) (*models.Table, error) {
	var t models.Table
	err := r.db.WithContext(ctx).First(&t, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &t, err
}

func (r *tableRepo) GetByIDForUpdate(ctx context.Context, id uint) (*models.Table, error) {
	var t models.Table
	err := forUpdate(r.db.WithContext(ctx)).First(&t, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &t, err
}

func (r *tableRepo) List(ctx context.Context, section string) ([]models.Table, error) {
	q := r.db.WithContext(ctx).Model(&models.Table{})
	if s := strings.TrimSpace(section); s != "" {
		q = q.Where("section = ?", s)
	}
	var list []models.Table
	err := q.Order("section ASC, id ASC").Find(&list).Error
	return list, err
}

func (r *tableRepo) Sections(ctx context.Context) ([]string, error) {
	var out []string
	err := r.db.WithContext(ctx).Model(&models.Table{}).
		Distinct("section").
		Order("section ASC").
		Pluck("section", &out).Error
	return out, err
}

func (r *tableRepo) Count(ctx context.Context) (int64, error) {
	var cnt int64
	err := r.db.WithContext(ctx).Model(&models.Table{}).Count(&cnt).Error
	return cnt, err
}

func (r *tableRepo) Delete(ctx context.Context, id uint) (bool, error) {
	tx := r.db.WithContext(ctx).
		Where("id = ? AND status = ?", id, models.TableAvailable).
		Delete(&models.Table{})
	return tx.RowsAffected > 0, tx.Error
}

func (r *tableRepo) Occupy(ctx context.Context, id, orderID uint) (bool, error) {
	tx := r.db.WithContext(ctx).
		Model(&models.Table{}).
		Where("id = ? AND status = ?", id, models.TableAvailable).
		Updates(map[string]any{
			"status":           models.TableOccupied,
			"current_order_id": orderID,
		})
	return tx.RowsAffected > 0, tx.Error
}

func (r *tableRepo) Release(ctx context.Context, id uint) (bool, error) {
	tx := r.db.WithContext(ctx).
		Model(&models.Table{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":           models.TableAvailable,
			"current_order_id": nil,
		})
	return tx.RowsAffected > 0, tx.Error
}
