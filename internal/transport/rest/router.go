package rest

import (
	"context"
	"net/http"
	"time"

	"github.com/emrecankuyucu/jurnalAdis/internal/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Deps struct {
	Orders  service.OrderService
	Stock   service.StockService
	Catalog service.CatalogService
	Tables  service.TableService
	Reports service.ReportService

	Location  *time.Location
	RateLimit string                          // пусто — без ограничения
	Ping      func(ctx context.Context) error // проверка базы для /health
}

func Router(d Deps, log *zap.Logger) (*gin.Engine, error) {
	r := gin.New()
	r.Use(gin.Recovery(), RequestID(), RequestLogger(log))

	r.Use(cors.New(cors.Config{
		AllowOrigins:  []string{"*"},
		AllowMethods:  []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Content-Type", HeaderRequestID},
		ExposeHeaders: []string{"Content-Length", HeaderRequestID},
	}))

	r.GET("/health", func(c *gin.Context) {
		if d.Ping != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := d.Ping(ctx); err != nil {
				log.Warn("health: база недоступна", zap.Error(err))
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api/v1")
	if d.RateLimit != "" {
		rl, err := RateLimit(d.RateLimit)
		if err != nil {
			return nil, err
		}
		api.Use(rl)
	}

	catalog := NewCatalogHandler(d.Catalog, d.Stock, log)
	api.GET("/products", catalog.ListProducts)
	api.POST("/products", catalog.CreateProduct)
	api.GET("/products/:id", catalog.GetProduct)
	api.PATCH("/products/:id", catalog.UpdateProduct)
	api.DELETE("/products/:id", catalog.DeleteProduct)
	api.POST("/products/:id/stock", catalog.AdjustStock)
	api.PUT("/products/:id/stock", catalog.SetStock)
	api.POST("/products/:id/unlimited", catalog.ToggleUnlimited)
	api.GET("/categories", catalog.ListCategories)
	api.GET("/stock-log", catalog.ListStockLog)

	tables := NewTableHandler(d.Tables, d.Orders, log)
	api.GET("/tables", tables.ListTables)
	api.POST("/tables", tables.CreateTable)
	api.DELETE("/tables/:id", tables.DeleteTable)
	api.GET("/sections", tables.ListSections)
	api.GET("/tables/:id/order", tables.ActiveOrder)
	api.POST("/tables/:id/order", tables.StartOrder)
	api.POST("/tables/:id/items", tables.AddItem)

	orders := NewOrderHandler(d.Orders, d.Reports, d.Location, log)
	api.GET("/orders", orders.ListOrders)
	api.GET("/orders/:id", orders.GetOrder)
	api.GET("/orders/:id/items", orders.GetOrderItems)
	api.POST("/orders/:id/items", orders.AddItem)
	api.POST("/orders/:id/close", orders.CloseOrder)
	api.POST("/orders/:id/settle", orders.SettleOrder)
	api.POST("/items/:id/pay", orders.PayItem)
	api.POST("/items/:id/unpay", orders.UnpayItem)
	api.GET("/reports/revenue", orders.RevenueReport)
	api.GET("/reports/products", orders.ProductReport)

	return r, nil
}
