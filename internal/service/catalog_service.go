package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/emrecankuyucu/jurnalAdis/internal/models"
	"github.com/emrecankuyucu/jurnalAdis/internal/repository"
	"go.uber.org/zap"
)

// ProductPatch — частичное обновление карточки. Остаток меняется только через StockService.
type ProductPatch struct {
	Name        *string
	Price       *int64
	Category    *string
	Description *string
}

type CatalogService interface {
	CreateProduct(ctx context.Context, p *models.Product) (*models.Product, error)
	UpdateProduct(ctx context.Context, id uint, patch ProductPatch) (*models.Product, error)
	GetProduct(ctx context.Context, id uint) (*models.Product, error)
	ListProducts(ctx context.Context, f repository.ProductListFilter) ([]models.Product, error)
	ListCategories(ctx context.Context) ([]string, error)
	DeleteProduct(ctx context.Context, id uint) error
}

type catalogService struct {
	repo  *repository.Repository
	cache ProductCache
	log   *zap.Logger
	now   func() time.Time
}

func NewCatalogService(repo *repository.Repository, cache ProductCache, log *zap.Logger) CatalogService {
	if log == nil {
		log = zap.NewNop()
	}
	return &catalogService{
		repo:  repo,
		cache: cache,
		log:   log,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

func validateProduct(name string, price int64) error {
	if strings.TrimSpace(name) == "" || price < 0 {
		return ErrInvalidProduct
	}
	return nil
}

func (s *catalogService) CreateProduct(ctx context.Context, p *models.Product) (*models.Product, error) {
	if p == nil {
		return nil, ErrInvalidProduct
	}
	if err := validateProduct(p.Name, p.Price); err != nil {
		return nil, err
	}

	now := s.now()
	np := &models.Product{
		Name:        strings.TrimSpace(p.Name),
		Price:       p.Price,
		Category:    strings.TrimSpace(p.Category),
		Description: p.Description,
		Stock:       p.Stock,
		IsUnlimited: p.IsUnlimited,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Products.Create(ctx, np); err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}
	s.invalidate(ctx)
	return np, nil
}

func (s *catalogService) UpdateProduct(ctx context.Context, id uint, patch ProductPatch) (*models.Product, error) {
	var product *models.Product
	err := s.repo.WithTx(ctx, func(tx *repository.Repository) error {
		p, err := tx.Products.GetByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if p == nil {
			return ErrProductNotFound
		}

		fields := map[string]any{}
		if patch.Name != nil {
			p.Name = strings.TrimSpace(*patch.Name)
			fields["name"] = p.Name
		}
		if patch.Price != nil {
			p.Price = *patch.Price
			fields["price"] = p.Price
		}
		if patch.Category != nil {
			p.Category = strings.TrimSpace(*patch.Category)
			fields["category"] = p.Category
		}
		if patch.Description != nil {
			p.Description = *patch.Description
			fields["description"] = p.Description
		}
		if len(fields) == 0 {
			product = p
			return nil
		}
		if err := validateProduct(p.Name, p.Price); err != nil {
			return err
		}

		p.UpdatedAt = s.now()
		fields["updated_at"] = p.UpdatedAt
		if err := tx.Products.UpdateFields(ctx, id, fields); err != nil {
			return err
		}
		product = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return product, nil
}

func (s *catalogService) GetProduct(ctx context.Context, id uint) (*models.Product, error) {
	p, err := s.repo.Products.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrProductNotFound
	}
	return p, nil
}

func productsKey(f repository.ProductListFilter) string {
	return fmt.Sprintf("c=%s|q=%s|l=%d|o=%d",
		strings.TrimSpace(f.Category), strings.ToLower(strings.TrimSpace(f.Query)), f.Limit, f.Offset)
}

func (s *catalogService) ListProducts(ctx context.Context, f repository.ProductListFilter) ([]models.Product, error) {
	key := productsKey(f)
	gen := int64(-1)
	if s.cache != nil {
		var (
			list []models.Product
			ok   bool
		)
		if list, gen, ok = s.cache.GetProducts(ctx, key); ok {
			return list, nil
		}
	}

	list, _, err := s.repo.Products.List(ctx, f)
	if err != nil {
		return nil, err
	}
	if s.cache != nil && gen >= 0 {
		s.cache.SetProducts(ctx, gen, key, list)
	}
	return list, nil
}

func (s *catalogService) ListCategories(ctx context.Context) ([]string, error) {
	return s.repo.Products.Categories(ctx)
}

func (s *catalogService) DeleteProduct(ctx context.Context, id uint) error {
	ok, err := s.repo.Products.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return ErrProductNotFound
	}
	s.log.Info("товар удалён", zap.Uint("product_id", id))
	s.invalidate(ctx)
	return nil
}

func (s *catalogService) invalidate(ctx context.Context) {
	if s.cache != nil {
		s.cache.Invalidate(ctx)
	}
}
