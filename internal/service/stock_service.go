package service

import (
	"context"
	"strings"
	"time"

	"github.com/emrecankuyucu/jurnalAdis/internal/models"
	"github.com/emrecankuyucu/jurnalAdis/internal/repository"
	"go.uber.org/zap"
)

// StockService — ручные операции со складом. Списание при заказе идёт через OrderService.
type StockService interface {
	AdjustStock(ctx context.Context, productID uint, change int64, reason string) (*models.StockLogEntry, error)
	SetStockLevel(ctx context.Context, productID uint, target int64, reason string) (*models.StockLogEntry, error)
	ToggleUnlimited(ctx context.Context, productID uint) (*models.Product, error)
	ListStockLog(ctx context.Context, f repository.StockLogFilter) ([]models.StockLogEntry, int64, error)
}

type stockService struct {
	repo   *repository.Repository
	events EventBus
	cache  ProductCache
	log    *zap.Logger
	now    func() time.Time
}

func NewStockService(repo *repository.Repository, events EventBus, cache ProductCache, log *zap.Logger) StockService {
	if log == nil {
		log = zap.NewNop()
	}
	return &stockService{
		repo:   repo,
		events: events,
		cache:  cache,
		log:    log,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (s *stockService) AdjustStock(ctx context.Context, productID uint, change int64, reason string) (*models.StockLogEntry, error) {
	var entry *models.StockLogEntry
	err := s.repo.WithTx(ctx, func(tx *repository.Repository) error {
		p, err := tx.Products.GetByIDForUpdate(ctx, productID)
		if err != nil {
			return err
		}
		if p == nil {
			return ErrProductNotFound
		}
		entry, err = s.apply(ctx, tx, p, change, reason)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.afterAdjust(ctx, entry)
	return entry, nil
}

// SetStockLevel приводит остаток к target. Нулевая разница ничего не пишет и возвращает nil, nil.
func (s *stockService) SetStockLevel(ctx context.Context, productID uint, target int64, reason string) (*models.StockLogEntry, error) {
	var entry *models.StockLogEntry
	err := s.repo.WithTx(ctx, func(tx *repository.Repository) error {
		p, err := tx.Products.GetByIDForUpdate(ctx, productID)
		if err != nil {
			return err
		}
		if p == nil {
			return ErrProductNotFound
		}
		delta := target - p.Stock
		if delta == 0 {
			return nil
		}
		entry, err = s.apply(ctx, tx, p, delta, reason)
		return err
	})
	if err != nil {
		return nil, err
	}
	if entry != nil {
		s.afterAdjust(ctx, entry)
	}
	return entry, nil
}

func (s *stockService) apply(ctx context.Context, tx *repository.Repository, p *models.Product, change int64, reason string) (*models.StockLogEntry, error) {
	newStock, err := tx.Products.AddStock(ctx, p.ID, change)
	if err != nil {
		return nil, err
	}

	entry := &models.StockLogEntry{
		ProductID:    p.ID,
		ProductName:  p.Name,
		ChangeAmount: change,
		NewStock:     newStock,
		Reason:       strings.TrimSpace(reason),
		CreatedAt:    s.now(),
	}
	if err := tx.StockLogs.Append(ctx, entry); err != nil {
		return nil, err
	}

	if newStock < 0 {
		s.log.Warn("остаток ушёл в минус после ручной корректировки",
			zap.Uint("product_id", p.ID),
			zap.Int64("change", change),
			zap.Int64("new_stock", newStock))
	}
	return entry, nil
}

func (s *stockService) afterAdjust(ctx context.Context, e *models.StockLogEntry) {
	if s.cache != nil {
		s.cache.Invalidate(ctx)
	}
	if s.events == nil {
		return
	}
	if err := s.events.PublishStockAdjusted(ctx, StockAdjustedEvent{
		ProductID:    e.ProductID,
		ChangeAmount: e.ChangeAmount,
		NewStock:     e.NewStock,
		Reason:       e.Reason,
		At:           e.CreatedAt,
	}); err != nil {
		s.log.Warn("не удалось отправить событие stock.adjusted", zap.Uint("product_id", e.ProductID), zap.Error(err))
	}
}

func (s *stockService) ToggleUnlimited(ctx context.Context, productID uint) (*models.Product, error) {
	var product *models.Product
	err := s.repo.WithTx(ctx, func(tx *repository.Repository) error {
		p, err := tx.Products.GetByIDForUpdate(ctx, productID)
		if err != nil {
			return err
		}
		if p == nil {
			return ErrProductNotFound
		}
		ok, err := tx.Products.ToggleUnlimited(ctx, p.ID)
		if err != nil {
			return err
		}
		if !ok {
			return ErrProductNotFound
		}
		p.IsUnlimited = !p.IsUnlimited
		product = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		s.cache.Invalidate(ctx)
	}
	return product, nil
}

func (s *stockService) ListStockLog(ctx context.Context, f repository.StockLogFilter) ([]models.StockLogEntry, int64, error) {
	return s.repo.StockLogs.List(ctx, f)
}
