package store

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"strings"
	"unicode"

	"stockroom/internal/models"
)

// On-disk layout of one record. Matches a C struct of
// {char code[12]; char name[50]; float price; float quantity; int reorder}
// with natural alignment on little-endian machines.
const (
	codeOffset    = 0
	codeSize      = models.MaxCodeLen + 1
	nameOffset    = codeOffset + codeSize
	nameSize      = models.MaxNameLen + 1
	priceOffset   = 64
	qtyOffset     = priceOffset + 4
	reorderOffset = qtyOffset + 4

	// RecordSize is the size of a single encoded item in bytes.
	RecordSize = reorderOffset + 4
)

// encodeRecord writes item into buf, which must be RecordSize bytes long.
// The caller validates the item first.
func encodeRecord(buf []byte, item models.Item) {
	clear(buf)
	copy(buf[codeOffset:codeOffset+codeSize-1], item.Code)
	copy(buf[nameOffset:nameOffset+nameSize-1], item.Name)
	binary.LittleEndian.PutUint32(buf[priceOffset:], math.Float32bits(item.Price))
	binary.LittleEndian.PutUint32(buf[qtyOffset:], math.Float32bits(item.Quantity))
	binary.LittleEndian.PutUint32(buf[reorderOffset:], uint32(item.ReorderLevel))
}

func decodeRecord(buf []byte) (models.Item, error) {
	if len(buf) != RecordSize {
		return models.Item{}, fmt.Errorf("%w: got %d bytes, want %d", ErrCorruptRecord, len(buf), RecordSize)
	}
	return models.Item{
		Code:         cString(buf[codeOffset : codeOffset+codeSize]),
		Name:         cString(buf[nameOffset : nameOffset+nameSize]),
		Price:        math.Float32frombits(binary.LittleEndian.Uint32(buf[priceOffset:])),
		Quantity:     math.Float32frombits(binary.LittleEndian.Uint32(buf[qtyOffset:])),
		ReorderLevel: int32(binary.LittleEndian.Uint32(buf[reorderOffset:])),
	}, nil
}

// cString returns the bytes before the first NUL.
func cString(b []byte) string {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	return string(b)
}

func validateCode(code string) error {
	if code == "" {
		return fmt.Errorf("%w: code is empty", ErrInvalidValue)
	}
	if len(code) > models.MaxCodeLen {
		return fmt.Errorf("%w: code is %d bytes, max %d", ErrFieldTooLong, len(code), models.MaxCodeLen)
	}
	if strings.ContainsRune(code, 0) || strings.IndexFunc(code, unicode.IsSpace) >= 0 {
		return fmt.Errorf("%w: code contains whitespace or NUL", ErrInvalidValue)
	}
	return nil
}

func validateName(name string) error {
	if len(name) > models.MaxNameLen {
		return fmt.Errorf("%w: name is %d bytes, max %d", ErrFieldTooLong, len(name), models.MaxNameLen)
	}
	if strings.ContainsRune(name, 0) {
		return fmt.Errorf("%w: name contains NUL", ErrInvalidValue)
	}
	return nil
}

func validateAmount(field string, v float32) error {
	f := float64(v)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return fmt.Errorf("%w: %s is not a finite number", ErrInvalidValue, field)
	}
	if v < 0 {
		return fmt.Errorf("%w: %s must not be negative", ErrInvalidValue, field)
	}
	return nil
}

func validateReorderLevel(v int32) error {
	if v < 0 {
		return fmt.Errorf("%w: reorder level must not be negative", ErrInvalidValue)
	}
	return nil
}

func validateItem(item models.Item) error {
	if err := validateCode(item.Code); err != nil {
		return err
	}
	if err := validateName(item.Name); err != nil {
		return err
	}
	if err := validateAmount("price", item.Price); err != nil {
		return err
	}
	if err := validateAmount("quantity", item.Quantity); err != nil {
		return err
	}
	return validateReorderLevel(item.ReorderLevel)
}
