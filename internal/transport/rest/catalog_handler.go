package rest

import (
	"net/http"

	"github.com/emrecankuyucu/jurnalAdis/internal/models"
	"github.com/emrecankuyucu/jurnalAdis/internal/repository"
	"github.com/emrecankuyucu/jurnalAdis/internal/service"
	"github.com/emrecankuyucu/jurnalAdis/internal/transport/rest/dto"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type CatalogHandler struct {
	catalog service.CatalogService
	stock   service.StockService
	log     *zap.Logger
}

func NewCatalogHandler(catalog service.CatalogService, stock service.StockService, log *zap.Logger) *CatalogHandler {
	return &CatalogHandler{catalog: catalog, stock: stock, log: log}
}

func (h *CatalogHandler) ListProducts(c *gin.Context) {
	list, err := h.catalog.ListProducts(c.Request.Context(), repository.ProductListFilter{
		Category: c.Query("category"),
		Query:    c.Query("q"),
		Limit:    queryInt(c, "limit", 0),
		Offset:   queryInt(c, "offset", 0),
	})
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToProducts(list))
}

func (h *CatalogHandler) GetProduct(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		badRequest(c, h.log, err.Error(), err)
		return
	}
	p, err := h.catalog.GetProduct(c.Request.Context(), id)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToProduct(p))
}

func (h *CatalogHandler) CreateProduct(c *gin.Context) {
	var req dto.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.log, "invalid request body", err)
		return
	}
	p, err := h.catalog.CreateProduct(c.Request.Context(), &models.Product{
		Name:        req.Name,
		Price:       *req.Price,
		Category:    req.Category,
		Description: req.Description,
		Stock:       req.Stock,
		IsUnlimited: req.IsUnlimited,
	})
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, dto.ToProduct(p))
}

func (h *CatalogHandler) UpdateProduct(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		badRequest(c, h.log, err.Error(), err)
		return
	}
	var req dto.UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.log, "invalid request body", err)
		return
	}
	p, err := h.catalog.UpdateProduct(c.Request.Context(), id, service.ProductPatch{
		Name:        req.Name,
		Price:       req.Price,
		Category:    req.Category,
		Description: req.Description,
	})
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToProduct(p))
}

func (h *CatalogHandler) DeleteProduct(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		badRequest(c, h.log, err.Error(), err)
		return
	}
	if err := h.catalog.DeleteProduct(c.Request.Context(), id); err != nil {
		writeError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *CatalogHandler) ListCategories(c *gin.Context) {
	list, err := h.catalog.ListCategories(c.Request.Context())
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *CatalogHandler) AdjustStock(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		badRequest(c, h.log, err.Error(), err)
		return
	}
	var req dto.AdjustStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.log, "invalid request body", err)
		return
	}
	entry, err := h.stock.AdjustStock(c.Request.Context(), id, req.Change, req.Reason)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToStockLog(entry))
}

func (h *CatalogHandler) SetStock(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		badRequest(c, h.log, err.Error(), err)
		return
	}
	var req dto.SetStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.log, "invalid request body", err)
		return
	}
	entry, err := h.stock.SetStockLevel(c.Request.Context(), id, *req.Stock, req.Reason)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	if entry == nil {
		c.Status(http.StatusNoContent)
		return
	}
	c.JSON(http.StatusOK, dto.ToStockLog(entry))
}

func (h *CatalogHandler) ToggleUnlimited(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		badRequest(c, h.log, err.Error(), err)
		return
	}
	p, err := h.stock.ToggleUnlimited(c.Request.Context(), id)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToProduct(p))
}

func (h *CatalogHandler) ListStockLog(c *gin.Context) {
	pid, err := queryUint(c, "product_id")
	if err != nil {
		badRequest(c, h.log, err.Error(), err)
		return
	}
	list, total, err := h.stock.ListStockLog(c.Request.Context(), repository.StockLogFilter{
		ProductID: pid,
		Limit:     queryInt(c, "limit", 0),
		Offset:    queryInt(c, "offset", 0),
	})
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	items := make([]dto.StockLogResponse, 0, len(list))
	for i := range list {
		items = append(items, dto.ToStockLog(&list[i]))
	}
	c.JSON(http.StatusOK, dto.ListResponse[dto.StockLogResponse]{Items: items, Total: total})
}
