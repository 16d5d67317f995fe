package events

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"
)

const (
	EventItemAdded         = "item_added"
	EventItemUpdated       = "item_updated"
	EventItemDeleted       = "item_deleted"
	EventStockIn           = "stock_in"
	EventStockOut          = "stock_out"
	EventStockInsufficient = "stock_insufficient"
	// EventStockLow fires whenever a change leaves an item at or below its reorder level.
	EventStockLow = "stock_low"
)

// StockEventPayload describes the item state after the change.
type StockEventPayload struct {
	Code         string  `json:"code"`
	Name         string  `json:"name,omitempty"`
	Price        float32 `json:"price"`
	Quantity     float32 `json:"quantity"`
	ReorderLevel int32   `json:"reorder_level"`
	Amount       float32 `json:"amount,omitempty"`
	Direction    string  `json:"direction,omitempty"`
}

// Event represents a lightweight domain event.
type Event struct {
	Type      string
	Payload   []byte
	CreatedAt time.Time
}

// EventHandler reacts to an event.
type EventHandler func(event *Event) error

// EventBus delivers stock events to handlers in the publishing goroutine.
type EventBus struct {
	mu       sync.RWMutex
	handlers map[string][]EventHandler
}

func NewEventBus() *EventBus {
	return &EventBus{handlers: make(map[string][]EventHandler)}
}

func (b *EventBus) Subscribe(eventType string, handler EventHandler) {
	b.mu.Lock()
	b.handlers[eventType] = append(b.handlers[eventType], handler)
	b.mu.Unlock()
}

// Publish runs every handler for the event type, in subscription order. A
// failing handler does not stop the rest; all failures are returned joined.
func (b *EventBus) Publish(event *Event) error {
	b.mu.RLock()
	handlers := b.handlers[event.Type]
	b.mu.RUnlock()

	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}

	var errs []error
	for _, handle := range handlers {
		if err := handle(event); err != nil {
			errs = append(errs, fmt.Errorf("%s handler: %w", event.Type, err))
		}
	}
	return errors.Join(errs...)
}

// PublishJSON encodes payload and publishes it. A nil bus drops the event.
func (b *EventBus) PublishJSON(eventType string, payload interface{}) error {
	if b == nil {
		return nil
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode %s payload: %w", eventType, err)
	}
	return b.Publish(&Event{Type: eventType, Payload: raw})
}

// DecodeStock unmarshals a stock event payload.
func DecodeStock(ev *Event) (StockEventPayload, error) {
	var payload StockEventPayload
	err := json.Unmarshal(ev.Payload, &payload)
	return payload, err
}
