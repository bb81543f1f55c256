package rest

import (
	"net/http"

	"github.com/emrecankuyucu/jurnalAdis/internal/models"
	"github.com/emrecankuyucu/jurnalAdis/internal/service"
	"github.com/emrecankuyucu/jurnalAdis/internal/transport/rest/dto"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type TableHandler struct {
	tables service.TableService
	orders service.OrderService
	log    *zap.Logger
}

func NewTableHandler(tables service.TableService, orders service.OrderService, log *zap.Logger) *TableHandler {
	return &TableHandler{tables: tables, orders: orders, log: log}
}

func (h *TableHandler) ListTables(c *gin.Context) {
	list, err := h.tables.ListTables(c.Request.Context(), c.Query("section"))
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToTables(list))
}

func (h *TableHandler) ListSections(c *gin.Context) {
	list, err := h.tables.ListSections(c.Request.Context())
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *TableHandler) CreateTable(c *gin.Context) {
	var req dto.CreateTableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.log, "invalid request body", err)
		return
	}
	t, err := h.tables.CreateTable(c.Request.Context(), req.Name, req.Section)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, dto.ToTable(t))
}

func (h *TableHandler) DeleteTable(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		badRequest(c, h.log, err.Error(), err)
		return
	}
	if err := h.tables.DeleteTable(c.Request.Context(), id); err != nil {
		writeError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ActiveOrder отдаёт 204, если стол свободен.
func (h *TableHandler) ActiveOrder(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		badRequest(c, h.log, err.Error(), err)
		return
	}
	ord, err := h.orders.GetActiveOrderForTable(c.Request.Context(), id)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	if ord == nil {
		c.Status(http.StatusNoContent)
		return
	}
	c.JSON(http.StatusOK, dto.ToOrder(ord))
}

func (h *TableHandler) StartOrder(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		badRequest(c, h.log, err.Error(), err)
		return
	}
	ord, err := h.orders.StartOrder(c.Request.Context(), id)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, dto.ToOrder(ord))
}

func (h *TableHandler) AddItem(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		badRequest(c, h.log, err.Error(), err)
		return
	}
	req, ok := bindAddItem(c, h.log)
	if !ok {
		return
	}
	it, err := h.orders.AddItemToTable(c.Request.Context(), id, req.ProductID, models.ItemType(req.Type), req.Quantity)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToOrderItem(it))
}

func bindAddItem(c *gin.Context, log *zap.Logger) (dto.AddItemRequest, bool) {
	var req dto.AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, log, "invalid request body", err)
		return req, false
	}
	if req.Type == "" {
		req.Type = string(models.ItemPaid)
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}
	return req, true
}
