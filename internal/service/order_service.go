package service

import (
	"context"
	"time"

	"github.com/emrecankuyucu/jurnalAdis/internal/models"
	"github.com/emrecankuyucu/jurnalAdis/internal/repository"
	"go.uber.org/zap"
)

type orderService struct {
	repo   *repository.Repository
	events EventBus
	cache  ProductCache
	log    *zap.Logger
	now    func() time.Time
}

func NewOrderService(repo *repository.Repository, events EventBus, cache ProductCache, log *zap.Logger) OrderService {
	if log == nil {
		log = zap.NewNop()
	}
	return &orderService{
		repo:   repo,
		events: events,
		cache:  cache,
		log:    log,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Порядок блокировок во всех мутациях: стол -> заказ -> товар.

func lockActiveOrder(ctx context.Context, tx *repository.Repository, orderID uint) (*models.Order, error) {
	ord, err := tx.Orders.GetByIDForUpdate(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if ord == nil {
		return nil, ErrOrderNotFound
	}
	if ord.Status != models.OrderActive {
		return nil, ErrOrderClosed
	}
	return ord, nil
}

func recalcTotal(ctx context.Context, tx *repository.Repository, orderID uint) (int64, error) {
	total, err := tx.OrderItems.SumByOrder(ctx, orderID)
	if err != nil {
		return 0, err
	}
	if err := tx.Orders.UpdateTotal(ctx, orderID, total); err != nil {
		return 0, err
	}
	return total, nil
}

func validateAdd(typ models.ItemType, qty int64) error {
	if !typ.Valid() {
		return ErrInvalidItemType
	}
	if qty < 1 {
		return ErrInvalidQuantity
	}
	return nil
}

func (s *orderService) StartOrder(ctx context.Context, tableID uint) (*models.Order, error) {
	var order *models.Order
	err := s.repo.WithTx(ctx, func(tx *repository.Repository) error {
		t, err := tx.Tables.GetByIDForUpdate(ctx, tableID)
		if err != nil {
			return err
		}
		order, err = s.openOrder(ctx, tx, t, tableID)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.publishOpened(ctx, order)
	return order, nil
}

func (s *orderService) openOrder(ctx context.Context, tx *repository.Repository, t *models.Table, tableID uint) (*models.Order, error) {
	if t == nil {
		return nil, ErrTableNotFound
	}
	if t.Status != models.TableAvailable {
		return nil, ErrTableOccupied
	}

	now := s.now()
	order := &models.Order{
		TableID:   t.ID,
		Status:    models.OrderActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := tx.Orders.Create(ctx, order); err != nil {
		return nil, err
	}

	ok, err := tx.Tables.Occupy(ctx, t.ID, order.ID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrTableOccupied
	}
	return order, nil
}

func (s *orderService) AddItem(ctx context.Context, in AddItemInput) (*models.OrderItem, error) {
	if err := validateAdd(in.Type, in.Quantity); err != nil {
		return nil, err
	}

	var (
		item  *models.OrderItem
		total int64
	)
	err := s.repo.WithTx(ctx, func(tx *repository.Repository) error {
		ord, err := lockActiveOrder(ctx, tx, in.OrderID)
		if err != nil {
			return err
		}
		item, total, err = s.addItem(ctx, tx, ord.ID, in.ProductID, in.Type, in.Quantity)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.afterItemAdded(ctx, item, in.Quantity, total)
	return item, nil
}

func (s *orderService) AddItemToTable(ctx context.Context, tableID, productID uint, typ models.ItemType, qty int64) (*models.OrderItem, error) {
	if err := validateAdd(typ, qty); err != nil {
		return nil, err
	}

	var (
		item   *models.OrderItem
		total  int64
		opened *models.Order
	)
	err := s.repo.WithTx(ctx, func(tx *repository.Repository) error {
		t, err := tx.Tables.GetByIDForUpdate(ctx, tableID)
		if err != nil {
			return err
		}
		if t == nil {
			return ErrTableNotFound
		}

		var orderID uint
		if t.CurrentOrderID != nil {
			ord, err := lockActiveOrder(ctx, tx, *t.CurrentOrderID)
			if err != nil {
				return err
			}
			orderID = ord.ID
		} else {
			opened, err = s.openOrder(ctx, tx, t, tableID)
			if err != nil {
				return err
			}
			orderID = opened.ID
		}

		item, total, err = s.addItem(ctx, tx, orderID, productID, typ, qty)
		return err
	})
	if err != nil {
		return nil, err
	}

	if opened != nil {
		s.publishOpened(ctx, opened)
	}
	s.afterItemAdded(ctx, item, qty, total)
	return item, nil
}

// addItem списывает склад и кладёт qty в корзину (order, product, price, type, unpaid).
// Заказ уже должен быть заблокирован вызывающим.
func (s *orderService) addItem(ctx context.Context, tx *repository.Repository, orderID, productID uint, typ models.ItemType, qty int64) (*models.OrderItem, int64, error) {
	p, err := tx.Products.GetByID(ctx, productID)
	if err != nil {
		return nil, 0, err
	}
	if p == nil {
		return nil, 0, ErrProductNotFound
	}

	if p.Tracked() {
		ok, err := tx.Products.TryConsume(ctx, p.ID, qty)
		if err != nil {
			return nil, 0, err
		}
		if !ok {
			return nil, 0, ErrOutOfStock
		}
	}

	price := p.Price
	if typ == models.ItemComplimentary {
		price = 0
	}

	key := repository.BucketKey{OrderID: orderID, ProductID: p.ID, Price: price, Type: typ, IsPaid: false}
	item, err := s.upsertBucket(ctx, tx, key, p.Name, qty)
	if err != nil {
		return nil, 0, err
	}

	total, err := recalcTotal(ctx, tx, orderID)
	if err != nil {
		return nil, 0, err
	}
	return item, total, nil
}

// upsertBucket увеличивает существующую строку с ключом k или создаёт новую.
func (s *orderService) upsertBucket(ctx context.Context, tx *repository.Repository, k repository.BucketKey, name string, qty int64) (*models.OrderItem, error) {
	existing, err := tx.OrderItems.FindBucket(ctx, k)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		if err := tx.OrderItems.AddQuantity(ctx, existing.ID, qty); err != nil {
			return nil, err
		}
		existing.Quantity += qty
		return existing, nil
	}

	now := s.now()
	it := &models.OrderItem{
		OrderID:     k.OrderID,
		ProductID:   k.ProductID,
		ProductName: name,
		Quantity:    qty,
		Price:       k.Price,
		Type:        k.Type,
		IsPaid:      k.IsPaid,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := tx.OrderItems.Create(ctx, it); err != nil {
		return nil, err
	}
	return it, nil
}

// lockItem блокирует заказ строки и перечитывает её уже под блокировкой.
func lockItem(ctx context.Context, tx *repository.Repository, itemID uint) (*models.OrderItem, error) {
	probe, err := tx.OrderItems.GetByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if probe == nil {
		return nil, ErrItemNotFound
	}
	if _, err := lockActiveOrder(ctx, tx, probe.OrderID); err != nil {
		return nil, err
	}

	it, err := tx.OrderItems.GetByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if it == nil {
		return nil, ErrItemNotFound
	}
	return it, nil
}

// moveQuantity переносит qty единиц строки it в корзину с флагом оплаты toPaid.
// Полный перенос удаляет исходную строку, если корзина-получатель уже есть.
func (s *orderService) moveQuantity(ctx context.Context, tx *repository.Repository, it *models.OrderItem, qty int64, toPaid bool) (*models.OrderItem, error) {
	target := repository.KeyOf(it)
	target.IsPaid = toPaid

	if qty < it.Quantity {
		if err := tx.OrderItems.AddQuantity(ctx, it.ID, -qty); err != nil {
			return nil, err
		}
		return s.upsertBucket(ctx, tx, target, it.ProductName, qty)
	}

	sibling, err := tx.OrderItems.FindBucket(ctx, target)
	if err != nil {
		return nil, err
	}
	if sibling == nil {
		if err := tx.OrderItems.SetPaid(ctx, it.ID, toPaid); err != nil {
			return nil, err
		}
		it.IsPaid = toPaid
		return it, nil
	}

	if err := tx.OrderItems.Delete(ctx, it.ID); err != nil {
		return nil, err
	}
	if err := tx.OrderItems.AddQuantity(ctx, sibling.ID, qty); err != nil {
		return nil, err
	}
	sibling.Quantity += qty
	return sibling, nil
}

func (s *orderService) MarkItemPaid(ctx context.Context, itemID uint, qty int64) (*models.OrderItem, error) {
	if qty < 1 {
		return nil, ErrInvalidQuantity
	}

	var result *models.OrderItem
	err := s.repo.WithTx(ctx, func(tx *repository.Repository) error {
		it, err := lockItem(ctx, tx, itemID)
		if err != nil {
			return err
		}
		switch {
		case it.Type == models.ItemComplimentary:
			return ErrComplimentaryItem
		case it.IsPaid:
			return ErrItemAlreadyPaid
		case qty > it.Quantity:
			return ErrInvalidQuantity
		}

		result, err = s.moveQuantity(ctx, tx, it, qty, true)
		if err != nil {
			return err
		}
		_, err = recalcTotal(ctx, tx, it.OrderID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.log.Debug("позиция оплачена",
		zap.Uint("item_id", itemID),
		zap.Uint("result_id", result.ID),
		zap.Int64("qty", qty))
	return result, nil
}

func (s *orderService) MarkItemUnpaid(ctx context.Context, itemID uint) (*models.OrderItem, error) {
	var result *models.OrderItem
	err := s.repo.WithTx(ctx, func(tx *repository.Repository) error {
		it, err := lockItem(ctx, tx, itemID)
		if err != nil {
			return err
		}
		if !it.IsPaid {
			return ErrItemNotPaid
		}

		result, err = s.moveQuantity(ctx, tx, it, it.Quantity, false)
		if err != nil {
			return err
		}
		_, err = recalcTotal(ctx, tx, it.OrderID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *orderService) CloseOrder(ctx context.Context, orderID, tableID uint, status models.OrderStatus) (*models.Order, error) {
	if status != models.OrderPaid && status != models.OrderNoPayment {
		return nil, ErrInvalidCloseStatus
	}

	var order *models.Order
	err := s.repo.WithTx(ctx, func(tx *repository.Repository) error {
		// стол заказа известен только из самого заказа: читаем без блокировки,
		// затем берём стол и заказ в обычном порядке table → order
		probe, err := tx.Orders.GetByID(ctx, orderID)
		if err != nil {
			return err
		}
		if probe == nil {
			return ErrOrderNotFound
		}
		if probe.Status != models.OrderActive {
			return ErrOrderClosed
		}
		if probe.TableID != tableID {
			return ErrTableMismatch
		}

		t, err := tx.Tables.GetByIDForUpdate(ctx, probe.TableID)
		if err != nil {
			return err
		}
		if t == nil {
			return ErrTableNotFound
		}

		ord, err := tx.Orders.GetByIDForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if ord == nil {
			return ErrOrderNotFound
		}
		if ord.Status != models.OrderActive {
			return ErrOrderClosed
		}

		total, err := recalcTotal(ctx, tx, ord.ID)
		if err != nil {
			return err
		}

		now := s.now()
		ok, err := tx.Orders.Close(ctx, ord.ID, status, now)
		if err != nil {
			return err
		}
		if !ok {
			return ErrOrderClosed
		}
		if _, err := tx.Tables.Release(ctx, tableID); err != nil {
			return err
		}

		ord.Status = status
		ord.TotalAmount = total
		ord.ClosedAt = &now
		order = ord
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("заказ закрыт",
		zap.Uint("order_id", order.ID),
		zap.Uint("table_id", tableID),
		zap.String("status", string(status)),
		zap.Int64("total", order.TotalAmount))

	if s.events != nil {
		if err := s.events.PublishOrderClosed(ctx, OrderClosedEvent{
			OrderID:  order.ID,
			TableID:  order.TableID,
			Status:   order.Status,
			Total:    order.TotalAmount,
			ClosedAt: *order.ClosedAt,
		}); err != nil {
			s.log.Warn("не удалось отправить событие order.closed", zap.Uint("order_id", order.ID), zap.Error(err))
		}
	}
	return order, nil
}

func (s *orderService) SettleOrder(ctx context.Context, orderID uint) (*models.Order, error) {
	var order *models.Order
	err := s.repo.WithTx(ctx, func(tx *repository.Repository) error {
		ord, err := tx.Orders.GetByIDForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if ord == nil {
			return ErrOrderNotFound
		}
		ok, err := tx.Orders.UpdateStatus(ctx, ord.ID, models.OrderNoPayment, models.OrderPaid)
		if err != nil {
			return err
		}
		if !ok {
			return ErrOrderNotSettleable
		}
		ord.Status = models.OrderPaid
		order = ord
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.events != nil {
		closedAt := s.now()
		if order.ClosedAt != nil {
			closedAt = *order.ClosedAt
		}
		if err := s.events.PublishOrderClosed(ctx, OrderClosedEvent{
			OrderID:  order.ID,
			TableID:  order.TableID,
			Status:   order.Status,
			Total:    order.TotalAmount,
			Settled:  true,
			ClosedAt: closedAt,
		}); err != nil {
			s.log.Warn("не удалось отправить событие order.settled", zap.Uint("order_id", order.ID), zap.Error(err))
		}
	}
	return order, nil
}

func (s *orderService) GetOrder(ctx context.Context, orderID uint) (*models.Order, error) {
	ord, err := s.repo.Orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if ord == nil {
		return nil, ErrOrderNotFound
	}
	return ord, nil
}

func (s *orderService) GetOrderItems(ctx context.Context, orderID uint) ([]models.OrderItem, error) {
	ord, err := s.repo.Orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if ord == nil {
		return nil, ErrOrderNotFound
	}
	return s.repo.OrderItems.GetByOrderID(ctx, orderID)
}

// GetActiveOrderForTable возвращает nil, nil если стол свободен.
func (s *orderService) GetActiveOrderForTable(ctx context.Context, tableID uint) (*models.Order, error) {
	t, err := s.repo.Tables.GetByID(ctx, tableID)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, ErrTableNotFound
	}
	if t.CurrentOrderID == nil {
		return nil, nil
	}
	return s.repo.Orders.GetByID(ctx, *t.CurrentOrderID)
}

func (s *orderService) publishOpened(ctx context.Context, o *models.Order) {
	s.log.Info("заказ открыт", zap.Uint("order_id", o.ID), zap.Uint("table_id", o.TableID))
	if s.events == nil {
		return
	}
	if err := s.events.PublishOrderOpened(ctx, OrderOpenedEvent{
		OrderID:  o.ID,
		TableID:  o.TableID,
		OpenedAt: o.CreatedAt,
	}); err != nil {
		s.log.Warn("не удалось отправить событие order.opened", zap.Uint("order_id", o.ID), zap.Error(err))
	}
}

func (s *orderService) afterItemAdded(ctx context.Context, it *models.OrderItem, qty, total int64) {
	if s.cache != nil {
		s.cache.Invalidate(ctx)
	}
	if s.events == nil {
		return
	}
	if err := s.events.PublishItemAdded(ctx, ItemAddedEvent{
		OrderID:   it.OrderID,
		ItemID:    it.ID,
		ProductID: it.ProductID,
		Type:      it.Type,
		Quantity:  qty,
		Price:     it.Price,
		Total:     total,
	}); err != nil {
		s.log.Warn("не удалось отправить событие order.item_added", zap.Uint("order_id", it.OrderID), zap.Error(err))
	}
}
