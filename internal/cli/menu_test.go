package cli

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"stockroom/internal/models"
	"stockroom/internal/service"
	"stockroom/internal/store"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestInventory(t *testing.T, items ...models.Item) *service.ItemService {
	t.Helper()
	logger := zerolog.Nop()
	st, err := store.New(filepath.Join(t.TempDir(), "inventory.dat"), &logger)
	require.NoError(t, err)
	for _, it := range items {
		require.NoError(t, st.Add(it))
	}
	return service.NewItemService(st, nil, false, &logger)
}

func runMenu(t *testing.T, inv *service.ItemService, opts Options, input string) string {
	t.Helper()
	logger := zerolog.Nop()
	var out strings.Builder
	m := NewMenu(inv, strings.NewReader(input), &out, opts, &logger)
	require.NoError(t, m.Run(context.Background()))
	return out.String()
}

func TestMenu_AddAndView(t *testing.T) {
	inv := newTestInventory(t)

	out := runMenu(t, inv, Options{}, "1\nA1\nBolt\n10\n5\n2\n2\n0\n")

	assert.Contains(t, out, "Item added successfully!")
	assert.Contains(t, out, "A1           | Bolt")
	assert.Contains(t, out, "Total Inventory Value: 50.00")

	item, err := inv.Find(context.Background(), "A1")
	require.NoError(t, err)
	assert.Equal(t, models.Item{Code: "A1", Name: "Bolt", Price: 10, Quantity: 5, ReorderLevel: 2}, item)
}

func TestMenu_AddDuplicateStopsEarly(t *testing.T) {
	inv := newTestInventory(t, models.Item{Code: "A1", Name: "Bolt", Quantity: 1})

	out := runMenu(t, inv, Options{}, "1\nA1\n0\n")
	assert.Contains(t, out, "Item code already exists!")
	assert.NotContains(t, out, "Item Name:")
}

func TestMenu_InvalidNumbers(t *testing.T) {
	inv := newTestInventory(t)

	out := runMenu(t, inv, Options{}, "1\nA1\nBolt\nabc\n1\nB2\nNut\n1\n-5\n0\n")
	assert.Equal(t, 2, strings.Count(out, "Invalid input values!"))

	ok, err := inv.Exists(context.Background(), "A1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMenu_LongCodeRejected(t *testing.T) {
	inv := newTestInventory(t)

	out := runMenu(t, inv, Options{}, "3\nABCDEFGHIJKLMNOP\n0\n")
	assert.Contains(t, out, "Item code must be at most 11 characters.")
}

func TestMenu_CodeIsFirstWord(t *testing.T) {
	inv := newTestInventory(t, models.Item{Code: "A1", Name: "Bolt", Price: 2, Quantity: 3, ReorderLevel: 1})

	out := runMenu(t, inv, Options{}, "3\n  A1 trailing words\n0\n")
	assert.Contains(t, out, "Code: A1")
	assert.Contains(t, out, "Name: Bolt")
}

func TestMenu_StockInOut(t *testing.T) {
	inv := newTestInventory(t, models.Item{Code: "A1", Name: "Bolt", Price: 10, Quantity: 5, ReorderLevel: 2})

	out := runMenu(t, inv, Options{}, "6\nA1\n3\n6\nA1\n10\n5\nA1\n4\n0\n")

	assert.Contains(t, out, "Stock updated. A1 now has 2.00 on hand.")
	assert.Contains(t, out, "Warning: A1 is at or below its reorder level (2).")
	assert.Contains(t, out, "Insufficient stock!")
	assert.Contains(t, out, "Stock updated. A1 now has 6.00 on hand.")

	item, err := inv.Find(context.Background(), "A1")
	require.NoError(t, err)
	assert.Equal(t, float32(6), item.Quantity)
}

func TestMenu_UpdateAndDelete(t *testing.T) {
	inv := newTestInventory(t,
		models.Item{Code: "A1", Name: "Bolt", Price: 10, Quantity: 5, ReorderLevel: 2},
		models.Item{Code: "B2", Name: "Nut", Price: 1, Quantity: 50, ReorderLevel: 10},
	)

	out := runMenu(t, inv, Options{}, "4\nA1\n12.5\n3\n4\nZZ\n7\nB2\n7\nB2\n0\n")

	assert.Contains(t, out, "Item updated.")
	assert.Contains(t, out, "Item deleted.")
	// unknown code on update and the second delete
	assert.Equal(t, 2, strings.Count(out, "Item not found."))

	list, err := inv.List(context.Background())
	require.NoError(t, err)
	require.Equal(t, []string{"A1"}, list.Codes())
	assert.Equal(t, float32(12.5), list.Items[0].Price)
	assert.Equal(t, int32(3), list.Items[0].ReorderLevel)
}

func TestMenu_EmptyStock(t *testing.T) {
	out := runMenu(t, newTestInventory(t), Options{}, "2\n0\n")
	assert.Contains(t, out, "No inventory data found.")
}

func TestMenu_InvalidChoiceAndEOF(t *testing.T) {
	out := runMenu(t, newTestInventory(t), Options{}, "9\n8\n")
	assert.Equal(t, 2, strings.Count(out, "Invalid choice!"))
	assert.NotContains(t, out, "8. Export Report")
}

func TestMenu_Export(t *testing.T) {
	called := 0
	opts := Options{Export: func(ctx context.Context) (string, error) {
		called++
		if called == 2 {
			return "", errors.New("disk full")
		}
		return "/tmp/report.xlsx", nil
	}}

	out := runMenu(t, newTestInventory(t), opts, "8\n8\n0\n")
	assert.Contains(t, out, "8. Export Report")
	assert.Contains(t, out, "Report written to /tmp/report.xlsx")
	assert.Contains(t, out, "Something went wrong: disk full")
	assert.Equal(t, 2, called)
}

func TestMenu_ClearScreenPauses(t *testing.T) {
	out := runMenu(t, newTestInventory(t), Options{ClearScreen: true}, "2\n\n0\n")
	assert.Contains(t, out, clearSequence)
	assert.Contains(t, out, "Press Enter to continue...")
}

func TestMenu_CancelledContext(t *testing.T) {
	logger := zerolog.Nop()
	var out strings.Builder
	m := NewMenu(newTestInventory(t), strings.NewReader("2\n"), &out, Options{}, &logger)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, m.Run(ctx))
	assert.Empty(t, out.String())
}
