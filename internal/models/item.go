package models

type Item struct {
	Code         string  `yaml:"code" json:"code"`
	Name         string  `yaml:"name" json:"name"`
	Price        float32 `yaml:"price" json:"price"`
	Quantity     float32 `yaml:"quantity" json:"quantity"`
	ReorderLevel int32   `yaml:"reorder_level" json:"reorder_level"`
}

// IsLow reports whether the on-hand quantity is at or below the reorder level.
func (i Item) IsLow() bool {
	return i.Quantity <= float32(i.ReorderLevel)
}

func (i Item) Status() string {
	if i.IsLow() {
		return StatusLow
	}
	return StatusOK
}

// Value is the item's stock value, price times quantity.
func (i Item) Value() float64 {
	return float64(i.Price) * float64(i.Quantity)
}
