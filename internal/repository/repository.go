package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repository struct {
	DB         *gorm.DB
	Products   ProductRepo
	Tables     TableRepo
	Orders     OrderRepo
	OrderItems OrderItemRepo
	StockLogs  StockLogRepo
}

func buildRepository(db *gorm.DB) *Repository {
	return &Repository{
		DB:         db,
		Products:   NewProductRepo(db),
		Tables:     NewTableRepo(db),
		Orders:     NewOrderRepo(db),
		OrderItems: NewOrderItemRepo(db),
		StockLogs:  NewStockLogRepo(db),
	}
}

func New(db *gorm.DB) *Repository { return buildRepository(db) }

// WithTx выполняет fn в одной транзакции на весь набор репозиториев.
// Любая ошибка из fn откатывает все изменения.
func (r *Repository) WithTx(ctx context.Context, fn func(tx *Repository) error) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(buildRepository(tx))
	})
}

// forUpdate добавляет SELECT ... FOR UPDATE там, где диалект это умеет.
// В sqlite запись и так сериализуется на уровне всей базы.
func forUpdate(db *gorm.DB) *gorm.DB {
	if db.Dialector.Name() == "postgres" {
		return db.Clauses(clause.Locking{Strength: clause.LockingStrengthUpdate})
	}
	return db
}
