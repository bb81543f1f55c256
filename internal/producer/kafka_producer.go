package producer

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/emrecankuyucu/jurnalAdis/internal/service"
	"github.com/segmentio/kafka-go"
)

const (
	EventOrderOpened   = "order.opened"
	EventItemAdded     = "order.item_added"
	EventOrderClosed   = "order.closed"
	EventOrderSettled  = "order.settled"
	EventStockAdjusted = "stock.adjusted"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// EventProducer публикует события книги заказов в один топик.
// Ключ сообщения — id заказа (или товара), чтобы события одной сущности шли по порядку.
type EventProducer struct {
	writer messageWriter
	now    func() time.Time
}

func NewEventProducer(brokers []string, topic string) *EventProducer {
	return &EventProducer{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireAll,
		},
		now: time.Now,
	}
}

type Envelope struct {
	Type       string          `json:"type"`
	OccurredAt time.Time       `json:"occurred_at"`
	Payload    json.RawMessage `json:"payload"`
}

func (p *EventProducer) send(ctx context.Context, typ, key string, payload any) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	value, err := json.Marshal(Envelope{Type: typ, OccurredAt: p.now().UTC(), Payload: body})
	if err != nil {
		return err
	}
	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:     []byte(key),
		Value:   value,
		Headers: []kafka.Header{{Key: "event-type", Value: []byte(typ)}},
	})
}

func orderKey(id uint) string   { return fmt.Sprintf("order-%d", id) }
func productKey(id uint) string { return fmt.Sprintf("product-%d", id) }

func (p *EventProducer) PublishOrderOpened(ctx context.Context, e service.OrderOpenedEvent) error {
	return p.send(ctx, EventOrderOpened, orderKey(e.OrderID), e)
}

func (p *EventProducer) PublishItemAdded(ctx context.Context, e service.ItemAddedEvent) error {
	return p.send(ctx, EventItemAdded, orderKey(e.OrderID), e)
}

func (p *EventProducer) PublishOrderClosed(ctx context.Context, e service.OrderClosedEvent) error {
	typ := EventOrderClosed
	if e.Settled {
		typ = EventOrderSettled
	}
	return p.send(ctx, typ, orderKey(e.OrderID), e)
}

func (p *EventProducer) PublishStockAdjusted(ctx context.Context, e service.StockAdjustedEvent) error {
	return p.send(ctx, EventStockAdjusted, productKey(e.ProductID), e)
}

func (p *EventProducer) Close() error {
	return p.writer.Close()
}
