package rest

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/emrecankuyucu/jurnalAdis/internal/service"

	"github.com/gin-gonic/gin"
)

const dateLayout = "2006-01-02"

func pathID(c *gin.Context, name string) (uint, error) {
	n, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || n == 0 {
		return 0, errors.New("invalid " + name)
	}
	return uint(n), nil
}

func queryInt(c *gin.Context, name string, def int) int {
	n, err := strconv.Atoi(c.Query(name))
	if err != nil {
		return def
	}
	return n
}

func queryUint(c *gin.Context, name string) (*uint, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, nil
	}
	n, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return nil, errors.New("invalid " + name)
	}
	v := uint(n)
	return &v, nil
}

// queryTime принимает YYYY-MM-DD (в таймзоне loc) или RFC3339.
func queryTime(c *gin.Context, name string, loc *time.Location) (*time.Time, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, nil
	}
	if t, err := time.ParseInLocation(dateLayout, raw, loc); err == nil {
		return &t, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, errors.New("invalid " + name)
	}
	return &t, nil
}

func queryPeriod(c *gin.Context, loc *time.Location) (service.Period, error) {
	from, err := queryTime(c, "from", loc)
	if err != nil {
		return service.Period{}, err
	}
	to, err := queryTime(c, "to", loc)
	if err != nil {
		return service.Period{}, err
	}
	kind := service.PeriodKind(c.DefaultQuery("period", string(service.PeriodAll)))
	if kind == service.PeriodAll && from != nil {
		kind = service.PeriodCustom
	}
	return service.Period{Kind: kind, From: from, To: to}, nil
}
