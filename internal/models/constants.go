package models

const (
	// MaxCodeLen ограничение длины кода позиции в байтах
	MaxCodeLen = 11
	// MaxNameLen ограничение длины названия позиции в байтах
	MaxNameLen = 49
)

const (
	StatusLow = "LOW"
	StatusOK  = "OK"
)

// Direction of a stock transaction.
type Direction int

const (
	DirectionIn Direction = iota + 1
	DirectionOut
)

func (d Direction) String() string {
	switch d {
	case DirectionIn:
		return "in"
	case DirectionOut:
		return "out"
	default:
		return "unknown"
	}
}

func (d Direction) Valid() bool {
	return d == DirectionIn || d == DirectionOut
}
