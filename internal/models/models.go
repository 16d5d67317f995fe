package models

import "github.com/shopspring/decimal"

// ListedItem is an item as shown in the stock listing.
type ListedItem struct {
	Item
	Status string
	Value  decimal.Decimal
}

// Inventory is a point-in-time view of the whole store in insertion order.
type Inventory struct {
	Items      []ListedItem
	TotalValue decimal.Decimal
	LowCount   int
}

// NewInventory derives statuses, per-item values and the total from items.
// The total is recomputed on every call.
func NewInventory(items []Item) Inventory {
	inv := Inventory{
		Items:      make([]ListedItem, 0, len(items)),
		TotalValue: decimal.Zero,
	}
	for _, it := range items {
		value := decimal.NewFromFloat32(it.Price).Mul(decimal.NewFromFloat32(it.Quantity))
		listed := ListedItem{Item: it, Status: it.Status(), Value: value}
		if it.IsLow() {
			inv.LowCount++
		}
		inv.TotalValue = inv.TotalValue.Add(value)
		inv.Items = append(inv.Items, listed)
	}
	return inv
}

func (inv Inventory) Len() int {
	return len(inv.Items)
}

// Codes returns item codes in listing order.
func (inv Inventory) Codes() []string {
	codes := make([]string, 0, len(inv.Items))
	for _, it := range inv.Items {
		codes = append(codes, it.Code)
	}
	return codes
}
