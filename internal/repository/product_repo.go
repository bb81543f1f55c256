package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/emrecankuyucu/jurnalAdis/internal/models"

	"gorm.io/gorm"
)

type ProductListFilter struct {
	Category string
	Query    string // по name
	Limit    int
	Offset   int
}

type ProductRepo interface {
	Create(ctx context.Context, p *models.Product) error
	BulkCreate(ctx context.Context, list []models.Product) error
	UpdateFields(ctx context.Context, id uint, fields map[string]any) error
	GetByID(ctx context.Context, id uint) (*models.Product, error)
	GetByIDForUpdate(ctx context.Context, id uint) (*models.Product, error)
	List(ctx context.Context, f ProductListFilter) ([]models.Product, int64, error)
	Categories(ctx context.Context) ([]string, error)
	Delete(ctx context.Context, id uint) (bool, error)

	// TryConsume: if stock >= qty then stock -= qty (атомарно, без записи в журнал)
	TryConsume(ctx context.Context, id uint, qty int64) (bool, error)
	// AddStock: stock += delta без ограничений, возвращает новый остаток
	AddStock(ctx context.Context, id uint, delta int64) (int64, error)
	ToggleUnlimited(ctx context.Context, id uint) (bool, error)
}

type productRepo struct{ db *gorm.DB }

func NewProductRepo(db *gorm.DB) ProductRepo { return &productRepo{db: db} }

func (r *productRepo) Create(ctx context.Context, p *models.Product) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *productRepo) BulkCreate(ctx context.Context, list []models.Product) error {
	if len(list) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).CreateInBatches(&list, 100).Error
}

func (r *productRepo) UpdateFields(ctx context.Context, id uint, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Model(&models.Product{}).Where("id = ?", id).Updates(fields).Error
}

func (r *productRepo) GetByID(ctx context.Context, id uint) (*models.Product, error) {
	var p models.Product
	err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &p, err
}

func (r *productRepo) GetByIDForUpdate(ctx context.Context, id uint) (*models.Product, error) {
	var p models.Product
	err := forUpdate(r.db.WithContext(ctx)).First(&p, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &p, err
}

func (r *productRepo) List(ctx context.Context, f ProductListFilter) ([]models.Product, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Product{})

	if c := strings.TrimSpace(f.Category); c != "" {
		q = q.Where("category = ?", c)
	}

	if s := strings.TrimSpace(f.Query); s != "" {
		q = q.Where("lower(name) LIKE lower(?)", "%"+s+"%")
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if f.Limit <= 0 {
		f.Limit = 500
	}

	if f.Offset < 0 {
		f.Offset = 0
	}

	var list []models.Product
	if err := q.Order("category ASC, name ASC").Limit(f.Limit).Offset(f.Offset).Find(&list).Error; err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

func (r *productRepo) Categories(ctx context.Context) ([]string, error) {
	var out []string
	err := r.db.WithContext(ctx).Model(&models.Product{}).
		Distinct("category").
		Order("category ASC").
		Pluck("category", &out).Error
	return out, err
}

func (r *productRepo) Delete(ctx context.Context, id uint) (bool, error) {
	tx := r.db.WithContext(ctx).Delete(&models.Product{}, "id = ?", id)
	return tx.RowsAffected > 0, tx.Error
}

func (r *productRepo) TryConsume(ctx context.Context, id uint, qty int64) (bool, error) {
	tx := r.db.WithContext(ctx).Exec(`
UPDATE products
SET stock = stock - @q,
    updated_at = @now
WHERE id = @pid
  AND stock >= @q
`, map[string]any{
		"pid": id,
		"q":   qty,
		"now": r.db.NowFunc(),
	})
	return tx.RowsAffected > 0, tx.Error
}

func (r *productRepo) AddStock(ctx context.Context, id uint, delta int64) (int64, error) {
	tx := r.db.WithContext(ctx).Exec(`
UPDATE products
SET stock = stock + @delta,
    updated_at = @now
WHERE id = @pid
`, map[string]any{
		"pid":   id,
		"delta": delta,
		"now":   r.db.NowFunc(),
	})
	if tx.Error != nil {
		return 0, tx.Error
	}
	if tx.RowsAffected == 0 {
		return 0, gorm.ErrRecordNotFound
	}

	var stock int64
	err := r.db.WithContext(ctx).Model(&models.Product{}).Select("stock").Where("id = ?", id).Scan(&stock).Error
	return stock, err
}

func (r *productRepo) ToggleUnlimited(ctx context.Context, id uint) (bool, error) {
	tx := r.db.WithContext(ctx).Exec(`
UPDATE products
SET is_unlimited = NOT is_unlimited,
    updated_at = @now
WHERE id = @pid
`, map[string]any{
		"pid": id,
		"now": r.db.NowFunc(),
	})
	return tx.RowsAffected > 0, tx.Error
}
