package service

import (
	"context"
	"sort"
	"time"

	"github.com/emrecankuyucu/jurnalAdis/internal/models"
	"github.com/emrecankuyucu/jurnalAdis/internal/repository"
	"github.com/shopspring/decimal"
)

type PeriodKind string

const (
	PeriodAll    PeriodKind = "all"
	PeriodToday  PeriodKind = "today"
	PeriodWeek   PeriodKind = "week"
	PeriodMonth  PeriodKind = "month"
	PeriodCustom PeriodKind = "custom"
)

// Period — фильтр отчётов по дате создания заказа.
// Для custom границы берутся целыми днями; одиночный From означает один день.
type Period struct {
	Kind PeriodKind
	From *time.Time
	To   *time.Time
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func endOfDay(t time.Time) time.Time {
	return startOfDay(t).AddDate(0, 0, 1).Add(-time.Nanosecond)
}

// Window возвращает окно [from, to] в UTC. nil-граница означает отсутствие ограничения.
func (p Period) Window(now time.Time, loc *time.Location) (*time.Time, *time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	today := startOfDay(now.In(loc))

	utc := func(t time.Time) *time.Time {
		u := t.UTC()
		return &u
	}

	switch p.Kind {
	case "", PeriodAll:
		return nil, nil, nil
	case PeriodToday:
		return utc(today), nil, nil
	case PeriodWeek:
		return utc(today.AddDate(0, 0, -7)), nil, nil
	case PeriodMonth:
		return utc(today.AddDate(0, -1, 0)), nil, nil
	case PeriodCustom:
		if p.From == nil {
			if p.To != nil {
				return nil, nil, ErrInvalidPeriod
			}
			return nil, nil, nil
		}
		from := startOfDay(p.From.In(loc))
		to := endOfDay(from)
		if p.To != nil {
			to = endOfDay(p.To.In(loc))
		}
		if to.Before(from) {
			return nil, nil, ErrInvalidPeriod
		}
		return utc(from), utc(to), nil
	default:
		return nil, nil, ErrInvalidPeriod
	}
}

type RevenueSummary struct {
	PaidOrders        int64           `json:"paid_orders"`
	TotalRevenue      int64           `json:"total_revenue"`
	AverageOrderValue decimal.Decimal `json:"average_order_value"`
	UnpaidOrders      int64           `json:"unpaid_orders"`
	UnpaidAmount      int64           `json:"unpaid_amount"`
	PartialPayments   int64           `json:"partial_payments"`
}

type ProductSalesStat struct {
	ProductID     uint   `json:"product_id"`
	ProductName   string `json:"product_name"`
	Paid          int64  `json:"paid"`
	Complimentary int64  `json:"complimentary"`
	Revenue       int64  `json:"revenue"`
}

type ReportService interface {
	ListOrders(ctx context.Context, f repository.OrderListFilter) ([]models.Order, int64, error)
	RevenueSummary(ctx context.Context, p Period) (*RevenueSummary, error)
	ProductSales(ctx context.Context, p Period) ([]ProductSalesStat, error)
}

type reportService struct {
	repo *repository.Repository
	loc  *time.Location
	now  func() time.Time
}

func NewReportService(repo *repository.Repository, loc *time.Location) ReportService {
	if loc == nil {
		loc = time.Local
	}
	return &reportService{repo: repo, loc: loc, now: time.Now}
}

func (s *reportService) ListOrders(ctx context.Context, f repository.OrderListFilter) ([]models.Order, int64, error) {
	return s.repo.Orders.List(ctx, f)
}

func (s *reportService) RevenueSummary(ctx context.Context, p Period) (*RevenueSummary, error) {
	from, to, err := p.Window(s.now(), s.loc)
	if err != nil {
		return nil, err
	}

	orders, _, err := s.repo.Orders.List(ctx, repository.OrderListFilter{
		Statuses: []models.OrderStatus{models.OrderPaid, models.OrderNoPayment},
		From:     from,
		To:       to,
		Limit:    -1,
	})
	if err != nil {
		return nil, err
	}

	out := &RevenueSummary{AverageOrderValue: decimal.Zero}
	for _, o := range orders {
		switch o.Status {
		case models.OrderPaid:
			out.PaidOrders++
			out.TotalRevenue += o.TotalAmount
		case models.OrderNoPayment:
			out.UnpaidOrders++
			out.UnpaidAmount += o.TotalAmount
			for _, it := range o.Items {
				if it.IsPaid {
					out.PartialPayments += it.LineTotal()
				}
			}
		}
	}
	if out.PaidOrders > 0 {
		out.AverageOrderValue = decimal.NewFromInt(out.TotalRevenue).
			DivRound(decimal.NewFromInt(out.PaidOrders), 2)
	}
	return out, nil
}

func (s *reportService) ProductSales(ctx context.Context, p Period) ([]ProductSalesStat, error) {
	from, to, err := p.Window(s.now(), s.loc)
	if err != nil {
		return nil, err
	}

	items, err := s.repo.OrderItems.ListForOrdersCreated(ctx, from, to)
	if err != nil {
		return nil, err
	}

	byProduct := make(map[uint]*ProductSalesStat)
	for _, it := range items {
		st, ok := byProduct[it.ProductID]
		if !ok {
			st = &ProductSalesStat{ProductID: it.ProductID, ProductName: it.ProductName}
			byProduct[it.ProductID] = st
		}
		if it.Type == models.ItemComplimentary {
			st.Complimentary += it.Quantity
			continue
		}
		st.Paid += it.Quantity
		st.Revenue += it.LineTotal()
	}

	out := make([]ProductSalesStat, 0, len(byProduct))
	for _, st := range byProduct {
		out = append(out, *st)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Revenue != out[j].Revenue {
			return out[i].Revenue > out[j].Revenue
		}
		return out[i].ProductID < out[j].ProductID
	})
	return out, nil
}
