package domain

import (
	"context"

	"stockroom/internal/models"
)

// InventoryStore is the record-file layer. *store.Store implements it.
type InventoryStore interface {
	Exists(code string) (bool, error)
	Add(item models.Item) error
	List() (models.Inventory, error)
	Find(code string) (models.Item, error)
	Update(code string, price float32, reorderLevel int32) error
	AdjustQuantity(code string, amount float32, dir models.Direction) (models.Item, error)
	Delete(code string) error
	Count() (int, error)
}

type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}

// Inventory is what the menu and the command line work against.
type Inventory interface {
	Exists(ctx context.Context, code string) (bool, error)
	Add(ctx context.Context, item models.Item) error
	List(ctx context.Context) (models.Inventory, error)
	Find(ctx context.Context, code string) (models.Item, error)
	Update(ctx context.Context, code string, price float32, reorderLevel int32) error
	StockIn(ctx context.Context, code string, amount float32) (models.Item, error)
	StockOut(ctx context.Context, code string, amount float32) (models.Item, error)
	Delete(ctx context.Context, code string) error
}
