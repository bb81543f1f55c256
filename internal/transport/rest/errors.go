package rest

import (
	"errors"
	"net/http"

	"github.com/emrecankuyucu/jurnalAdis/internal/service"
	"github.com/emrecankuyucu/jurnalAdis/internal/transport/rest/dto"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

var notFound = []error{
	service.ErrProductNotFound,
	service.ErrTableNotFound,
	service.ErrOrderNotFound,
	service.ErrItemNotFound,
}

var conflicts = map[error]string{
	service.ErrOutOfStock:         "out_of_stock",
	service.ErrOrderClosed:        "order_closed",
	service.ErrTableOccupied:      "table_occupied",
	service.ErrTableMismatch:      "table_mismatch",
	service.ErrItemAlreadyPaid:    "item_already_paid",
	service.ErrItemNotPaid:        "item_not_paid",
	service.ErrComplimentaryItem:  "complimentary_item",
	service.ErrOrderNotSettleable: "order_not_settleable",
}

var invalid = []error{
	service.ErrInvalidQuantity,
	service.ErrInvalidItemType,
	service.ErrInvalidCloseStatus,
	service.ErrInvalidProduct,
	service.ErrInvalidTable,
	service.ErrInvalidPeriod,
}

// writeError переводит ошибку сервиса в HTTP-ответ.
func writeError(c *gin.Context, log *zap.Logger, err error) {
	for _, e := range notFound {
		if errors.Is(err, e) {
			c.JSON(http.StatusNotFound, dto.NewNotFoundError(err.Error()))
			return
		}
	}
	for e, code := range conflicts {
		if errors.Is(err, e) {
			log.Warn("Конфликт при обработке запроса", zap.String("path", c.FullPath()), zap.Error(err))
			c.JSON(http.StatusConflict, dto.NewConflictError(code, err.Error()))
			return
		}
	}
	for _, e := range invalid {
		if errors.Is(err, e) {
			c.JSON(http.StatusBadRequest, dto.NewValidationError(err.Error(), nil))
			return
		}
	}

	log.Error("Внутренняя ошибка", zap.String("path", c.FullPath()), zap.Error(err))
	c.JSON(http.StatusInternalServerError, dto.NewInternalError(""))
}

func badRequest(c *gin.Context, log *zap.Logger, msg string, err error) {
	log.Warn("Invalid request", zap.String("path", c.FullPath()), zap.Error(err))
	c.JSON(http.StatusBadRequest, dto.NewValidationError(msg, nil))
}
