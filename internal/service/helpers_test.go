package service_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/emrecankuyucu/jurnalAdis/internal/migrate"
	"github.com/emrecankuyucu/jurnalAdis/internal/models"
	"github.com/emrecankuyucu/jurnalAdis/internal/repository"
	"github.com/emrecankuyucu/jurnalAdis/internal/service"
	"github.com/emrecankuyucu/jurnalAdis/pkg/testutil"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fakeBus struct {
	mu       sync.Mutex
	opened   []service.OrderOpenedEvent
	added    []service.ItemAddedEvent
	closed   []service.OrderClosedEvent
	adjusted []service.StockAdjustedEvent

	err error
}

func (b *fakeBus) PublishOrderOpened(_ context.Context, e service.OrderOpenedEvent) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.opened = append(b.opened, e)
	return b.err
}

func (b *fakeBus) PublishItemAdded(_ context.Context, e service.ItemAddedEvent) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.added = append(b.added, e)
	return b.err
}

func (b *fakeBus) PublishOrderClosed(_ context.Context, e service.OrderClosedEvent) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = append(b.closed, e)
	return b.err
}

func (b *fakeBus) PublishStockAdjusted(_ context.Context, e service.StockAdjustedEvent) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.adjusted = append(b.adjusted, e)
	return b.err
}

// fakeCache — in-memory кэш каталога со счётчиками и поколениями, как у redis.
type fakeCache struct {
	mu          sync.Mutex
	gen         int64
	data        map[string][]models.Product
	invalidated int
	hits        int

	// beforeSet вызывается перед записью, без удержания mu
	beforeSet func()
}

func newFakeCache() *fakeCache { return &fakeCache{data: map[string][]models.Product{}} }

func (c *fakeCache) slot(gen int64, key string) string { return fmt.Sprintf("%d:%s", gen, key) }

func (c *fakeCache) GetProducts(_ context.Context, key string) ([]models.Product, int64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	list, ok := c.data[c.slot(c.gen, key)]
	if ok {
		c.hits++
	}
	return list, c.gen, ok
}

func (c *fakeCache) SetProducts(_ context.Context, gen int64, key string, list []models.Product) {
	if c.beforeSet != nil {
		c.beforeSet()
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[c.slot(gen, key)] = list
}

func (c *fakeCache) Invalidate(context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	c.invalidated++
}

type env struct {
	repo   *repository.Repository
	bus    *fakeBus
	cache  *fakeCache
	orders service.OrderService
	stock  service.StockService
}

func setup(t *testing.T) *env {
	t.Helper()
	return setupOn(t, testutil.SetupTestDB(t))
}

// eachStore прогоняет тест на встроенной sqlite и на postgres в контейнере.
// На postgres работают настоящие построчные блокировки FOR UPDATE.
func eachStore(t *testing.T, fn func(t *testing.T, e *env)) {
	t.Run("sqlite", func(t *testing.T) {
		fn(t, setup(t))
	})
	t.Run("postgres", func(t *testing.T) {
		if testing.Short() {
			t.Skip("short mode")
		}
		fn(t, setupOn(t, testutil.SetupTestPostgres(t)))
	})
}

func setupOn(t *testing.T, db *gorm.DB) *env {
	t.Helper()
	if err := migrate.MigrateDB(context.Background(), db, zap.NewNop(), migrate.DefaultMigrateOptions()); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	repo := repository.New(db)
	bus := &fakeBus{}
	cache := newFakeCache()
	return &env{
		repo:   repo,
		bus:    bus,
		cache:  cache,
		orders: service.NewOrderService(repo, bus, cache, zap.NewNop()),
		stock:  service.NewStockService(repo, bus, cache, zap.NewNop()),
	}
}

func (e *env) product(t *testing.T, name string, price, stock int64, unlimited bool) *models.Product {
	t.Helper()
	now := time.Now().UTC()
	p := &models.Product{Name: name, Price: price, Category: "Test", Stock: stock, IsUnlimited: unlimited, CreatedAt: now, UpdatedAt: now}
	if err := e.repo.Products.Create(context.Background(), p); err != nil {
		t.Fatalf("create product: %v", err)
	}
	return p
}

func (e *env) table(t *testing.T, name string) *models.Table {
	t.Helper()
	now := time.Now().UTC()
	tb := &models.Table{Name: name, Section: "Alt Kat", CreatedAt: now, UpdatedAt: now}
	if err := e.repo.Tables.Create(context.Background(), tb); err != nil {
		t.Fatalf("create table: %v", err)
	}
	return tb
}

func (e *env) open(t *testing.T, tableName string) (*models.Table, *models.Order) {
	t.Helper()
	tb := e.table(t, tableName)
	o, err := e.orders.StartOrder(context.Background(), tb.ID)
	if err != nil {
		t.Fatalf("StartOrder: %v", err)
	}
	return tb, o
}

func (e *env) stockOf(t *testing.T, id uint) int64 {
	t.Helper()
	p, err := e.repo.Products.GetByID(context.Background(), id)
	if err != nil || p == nil {
		t.Fatalf("get product: %+v %v", p, err)
	}
	return p.Stock
}

// assertLedger проверяет инвариант суммы и отсутствие дублей корзин.
func (e *env) assertLedger(t *testing.T, orderID uint) *models.Order {
	t.Helper()
	o, err := e.repo.Orders.GetByID(context.Background(), orderID)
	if err != nil || o == nil {
		t.Fatalf("get order: %+v %v", o, err)
	}

	var sum int64
	seen := map[repository.BucketKey]bool{}
	for i := range o.Items {
		it := &o.Items[i]
		if it.Quantity <= 0 {
			t.Fatalf("non-positive quantity: %+v", it)
		}
		k := repository.KeyOf(it)
		if seen[k] {
			t.Fatalf("duplicate bucket %+v", k)
		}
		seen[k] = true
		sum += it.LineTotal()
	}
	if sum != o.TotalAmount {
		t.Fatalf("total invariant broken: stored=%d computed=%d", o.TotalAmount, sum)
	}
	return o
}

func bucket(o *models.Order, productID uint, typ models.ItemType, paid bool) *models.OrderItem {
	for i := range o.Items {
		it := &o.Items[i]
		if it.ProductID == productID && it.Type == typ && it.IsPaid == paid {
			return it
		}
	}
	return nil
}
