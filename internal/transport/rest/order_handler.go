package rest

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/emrecankuyucu/jurnalAdis/internal/models"
	"github.com/emrecankuyucu/jurnalAdis/internal/repository"
	"github.com/emrecankuyucu/jurnalAdis/internal/service"
	"github.com/emrecankuyucu/jurnalAdis/internal/transport/rest/dto"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type OrderHandler struct {
	orders  service.OrderService
	reports service.ReportService
	loc     *time.Location
	log     *zap.Logger
}

func NewOrderHandler(orders service.OrderService, reports service.ReportService, loc *time.Location, log *zap.Logger) *OrderHandler {
	if loc == nil {
		loc = time.Local
	}
	return &OrderHandler{orders: orders, reports: reports, loc: loc, log: log}
}

func (h *OrderHandler) ListOrders(c *gin.Context) {
	var f repository.OrderListFilter
	for _, s := range strings.Split(c.Query("status"), ",") {
		if s = strings.TrimSpace(s); s == "" {
			continue
		}
		st := models.OrderStatus(s)
		if !st.Valid() {
			err := fmt.Errorf("invalid status %q", s)
			badRequest(c, h.log, err.Error(), err)
			return
		}
		f.Statuses = append(f.Statuses, st)
	}

	var err error
	if f.TableID, err = queryUint(c, "table_id"); err != nil {
		badRequest(c, h.log, err.Error(), err)
		return
	}
	if f.From, err = queryTime(c, "from", h.loc); err != nil {
		badRequest(c, h.log, err.Error(), err)
		return
	}
	if f.To, err = queryTime(c, "to", h.loc); err != nil {
		badRequest(c, h.log, err.Error(), err)
		return
	}
	// голая дата в to означает весь день (в таймзоне отчётов)
	if f.To != nil && len(strings.TrimSpace(c.Query("to"))) == len(dateLayout) {
		end := f.To.AddDate(0, 0, 1).Add(-time.Nanosecond)
		f.To = &end
	}
	// created_at хранится в UTC
	if f.From != nil {
		from := f.From.UTC()
		f.From = &from
	}
	if f.To != nil {
		to := f.To.UTC()
		f.To = &to
	}
	f.Limit = queryInt(c, "limit", 0)
	f.Offset = queryInt(c, "offset", 0)

	list, total, err := h.reports.ListOrders(c.Request.Context(), f)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, dto.ListResponse[dto.OrderResponse]{Items: dto.ToOrders(list), Total: total})
}

func (h *OrderHandler) GetOrder(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		badRequest(c, h.log, err.Error(), err)
		return
	}
	ord, err := h.orders.GetOrder(c.Request.Context(), id)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToOrder(ord))
}

func (h *OrderHandler) GetOrderItems(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		badRequest(c, h.log, err.Error(), err)
		return
	}
	items, err := h.orders.GetOrderItems(c.Request.Context(), id)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToOrderItems(items))
}

func (h *OrderHandler) AddItem(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		badRequest(c, h.log, err.Error(), err)
		return
	}
	req, ok := bindAddItem(c, h.log)
	if !ok {
		return
	}
	it, err := h.orders.AddItem(c.Request.Context(), service.AddItemInput{
		OrderID:   id,
		ProductID: req.ProductID,
		Type:      models.ItemType(req.Type),
		Quantity:  req.Quantity,
	})
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToOrderItem(it))
}

func (h *OrderHandler) CloseOrder(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		badRequest(c, h.log, err.Error(), err)
		return
	}
	var req dto.CloseOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.log, "invalid request body", err)
		return
	}
	ord, err := h.orders.CloseOrder(c.Request.Context(), id, req.TableID, models.OrderStatus(req.Status))
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToOrder(ord))
}

func (h *OrderHandler) SettleOrder(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		badRequest(c, h.log, err.Error(), err)
		return
	}
	ord, err := h.orders.SettleOrder(c.Request.Context(), id)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToOrder(ord))
}

func (h *OrderHandler) PayItem(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		badRequest(c, h.log, err.Error(), err)
		return
	}
	var req dto.PayItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.log, "invalid request body", err)
		return
	}
	it, err := h.orders.MarkItemPaid(c.Request.Context(), id, req.Quantity)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToOrderItem(it))
}

func (h *OrderHandler) UnpayItem(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		badRequest(c, h.log, err.Error(), err)
		return
	}
	it, err := h.orders.MarkItemUnpaid(c.Request.Context(), id)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToOrderItem(it))
}

func (h *OrderHandler) RevenueReport(c *gin.Context) {
	p, err := queryPeriod(c, h.loc)
	if err != nil {
		badRequest(c, h.log, err.Error(), err)
		return
	}
	sum, err := h.reports.RevenueSummary(c.Request.Context(), p)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, sum)
}

func (h *OrderHandler) ProductReport(c *gin.Context) {
	p, err := queryPeriod(c, h.loc)
	if err != nil {
		badRequest(c, h.log, err.Error(), err)
		return
	}
	stats, err := h.reports.ProductSales(c.Request.Context(), p)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}
