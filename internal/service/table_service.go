package service

import (
	"context"
	"strings"
	"time"

	"github.com/emrecankuyucu/jurnalAdis/internal/models"
	"github.com/emrecankuyucu/jurnalAdis/internal/repository"
)

// TableService — справочник столов. Статус и текущий заказ пишет только OrderService.
type TableService interface {
	CreateTable(ctx context.Context, name, section string) (*models.Table, error)
	GetTable(ctx context.Context, id uint) (*models.Table, error)
	ListTables(ctx context.Context, section string) ([]models.Table, error)
	ListSections(ctx context.Context) ([]string, error)
	DeleteTable(ctx context.Context, id uint) error
}

type tableService struct {
	repo *repository.Repository
	now  func() time.Time
}

func NewTableService(repo *repository.Repository) TableService {
	return &tableService{repo: repo, now: func() time.Time { return time.Now().UTC() }}
}

func (s *tableService) CreateTable(ctx context.Context, name, section string) (*models.Table, error) {
	name, section = strings.TrimSpace(name), strings.TrimSpace(section)
	if name == "" || section == "" {
		return nil, ErrInvalidTable
	}
	now := s.now()
	t := &models.Table{
		Name:      name,
		Section:   section,
		Status:    models.TableAvailable,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Tables.Create(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *tableService) GetTable(ctx context.Context, id uint) (*models.Table, error) {
	t, err := s.repo.Tables.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, ErrTableNotFound
	}
	return t, nil
}

func (s *tableService) ListTables(ctx context.Context, section string) ([]models.Table, error) {
	return s.repo.Tables.List(ctx, section)
}

func (s *tableService) ListSections(ctx context.Context) ([]string, error) {
	return s.repo.Tables.Sections(ctx)
}

func (s *tableService) DeleteTable(ctx context.Context, id uint) error {
	return s.repo.WithTx(ctx, func(tx *repository.Repository) error {
		t, err := tx.Tables.GetByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if t == nil {
			return ErrTableNotFound
		}
		ok, err := tx.Tables.Delete(ctx, id)
		if err != nil {
			return err
		}
		if !ok {
			return ErrTableOccupied
		}
		return nil
	})
}
