package store

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"stockroom/internal/models"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	logger := zerolog.Nop()
	s, err := New(filepath.Join(t.TempDir(), "data", "inventory.dat"), &logger)
	require.NoError(t, err)
	return s
}

func seed(t *testing.T, s *Store, items ...models.Item) {
	t.Helper()
	for _, it := range items {
		require.NoError(t, s.Add(it))
	}
}

func readFile(t *testing.T, path string) []byte {
	t.Helper()
	d, err := os.ReadFile(path)
	require.NoError(t, err)
	return d
}

func assertNoTempFiles(t *testing.T, s *Store) {
	t.Helper()
	entries, err := os.ReadDir(filepath.Dir(s.Path()))
	require.NoError(t, err)
	for _, e := range entries {
		assert.False(t, strings.HasPrefix(e.Name(), "."), "leftover temp file %s", e.Name())
	}
}

var (
	itemA = models.Item{Code: "A1", Name: "Hex bolt M8", Price: 10, Quantity: 5, ReorderLevel: 2}
	itemB = models.Item{Code: "B2", Name: "Nut M8", Price: 0.5, Quantity: 100, ReorderLevel: 20}
	itemC = models.Item{Code: "C3", Name: "Washer", Price: 0.25, Quantity: 8, ReorderLevel: 10}
)

func TestAddAndFind(t *testing.T) {
	s := setupTestStore(t)
	seed(t, s, itemA, itemB)

	got, err := s.Find("A1")
	require.NoError(t, err)
	assert.Equal(t, itemA, got)

	got, err = s.Find("B2")
	require.NoError(t, err)
	assert.Equal(t, itemB, got)

	_, err = s.Find("a1")
	assert.ErrorIs(t, err, ErrNotFound)

	n, err := s.Count()
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Len(t, readFile(t, s.Path()), 2*RecordSize)
}

func TestExists(t *testing.T) {
	s := setupTestStore(t)

	ok, err := s.Exists("A1")
	require.NoError(t, err)
	assert.False(t, ok)

	seed(t, s, itemA)

	ok, err = s.Exists("A1")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.Exists("A")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestAdd_DuplicateKey(t *testing.T) {
	s := setupTestStore(t)
	seed(t, s, itemA)

	dup := itemA
	dup.Name = "Other"
	err := s.Add(dup)
	assert.ErrorIs(t, err, ErrDuplicateKey)

	n, err := s.Count()
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestAdd_InvalidValue(t *testing.T) {
	tests := []struct {
		name string
		item models.Item
	}{
		{"negative price", models.Item{Code: "X", Price: -1}},
		{"negative quantity", models.Item{Code: "X", Quantity: -0.5}},
		{"negative reorder", models.Item{Code: "X", ReorderLevel: -1}},
		{"empty code", models.Item{Code: ""}},
		{"code with space", models.Item{Code: "A 1"}},
		{"code too long", models.Item{Code: "ABCDEFGHIJKL"}},
		{"name too long", models.Item{Code: "X", Name: strings.Repeat("n", models.MaxNameLen+1)}},
	}

	s := setupTestStore(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := s.Add(tt.item)
			assert.ErrorIs(t, err, ErrInvalidValue)
			_, statErr := os.Stat(s.Path())
			assert.True(t, os.IsNotExist(statErr), "store file must not be created")
		})
	}
}

func TestAdd_FieldTooLong(t *testing.T) {
	s := setupTestStore(t)
	err := s.Add(models.Item{Code: "ABCDEFGHIJKL"})
	assert.ErrorIs(t, err, ErrFieldTooLong)
	assert.ErrorIs(t, err, ErrInvalidValue)

	// exactly at the bound is fine
	long := models.Item{Code: "ABCDEFGHIJK", Name: strings.Repeat("n", models.MaxNameLen)}
	require.NoError(t, s.Add(long))
	got, err := s.Find(long.Code)
	require.NoError(t, err)
	assert.Equal(t, long, got)
}

func TestList(t *testing.T) {
	s := setupTestStore(t)

	inv, err := s.List()
	require.NoError(t, err)
	assert.Equal(t, 0, inv.Len())
	assert.True(t, inv.TotalValue.IsZero())

	seed(t, s, itemA, itemB, itemC)

	inv, err = s.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"A1", "B2", "C3"}, inv.Codes())
	// 10*5 + 0.5*100 + 0.25*8
	assert.True(t, inv.TotalValue.Equal(decimal.NewFromInt(102)), "got %s", inv.TotalValue)
	assert.Equal(t, models.StatusOK, inv.Items[0].Status)
	assert.Equal(t, models.StatusOK, inv.Items[1].Status)
	assert.Equal(t, models.StatusLow, inv.Items[2].Status)

	// total is recomputed after a mutation
	_, err = s.AdjustQuantity("A1", 5, models.DirectionOut)
	require.NoError(t, err)
	inv, err = s.List()
	require.NoError(t, err)
	assert.True(t, inv.TotalValue.Equal(decimal.NewFromInt(52)), "got %s", inv.TotalValue)
}

func TestUpdate(t *testing.T) {
	s := setupTestStore(t)
	seed(t, s, itemA, itemB, itemC)
	before := readFile(t, s.Path())

	require.NoError(t, s.Update("B2", 0.75, 30))

	got, err := s.Find("B2")
	require.NoError(t, err)
	assert.Equal(t, float32(0.75), got.Price)
	assert.Equal(t, int32(30), got.ReorderLevel)
	assert.Equal(t, itemB.Name, got.Name)
	assert.Equal(t, itemB.Quantity, got.Quantity)

	after := readFile(t, s.Path())
	require.Len(t, after, len(before))
	// other records byte-for-byte unchanged
	assert.Equal(t, before[:RecordSize], after[:RecordSize])
	assert.Equal(t, before[2*RecordSize:], after[2*RecordSize:])
	assertNoTempFiles(t, s)
}

func TestUpdate_NotFound(t *testing.T) {
	s := setupTestStore(t)
	seed(t, s, itemA)
	before := readFile(t, s.Path())

	err := s.Update("ZZ", 1, 1)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, before, readFile(t, s.Path()))
	assertNoTempFiles(t, s)
}

func TestUpdate_InvalidValue(t *testing.T) {
	s := setupTestStore(t)
	seed(t, s, itemA)

	assert.ErrorIs(t, s.Update("A1", -1, 1), ErrInvalidValue)
	assert.ErrorIs(t, s.Update("A1", 1, -1), ErrInvalidValue)

	got, err := s.Find("A1")
	require.NoError(t, err)
	assert.Equal(t, itemA, got)
}

func TestAdjustQuantity(t *testing.T) {
	s := setupTestStore(t)
	seed(t, s, models.Item{Code: "A1", Name: "Bolt", Price: 10, Quantity: 5, ReorderLevel: 2})

	got, err := s.AdjustQuantity("A1", 3, models.DirectionOut)
	require.NoError(t, err)
	assert.Equal(t, float32(2), got.Quantity)
	assert.Equal(t, models.StatusLow, got.Status())

	before := readFile(t, s.Path())
	got, err = s.AdjustQuantity("A1", 10, models.DirectionOut)
	assert.ErrorIs(t, err, ErrInsufficientStock)
	assert.Equal(t, float32(2), got.Quantity)
	assert.Equal(t, before, readFile(t, s.Path()))

	stored, err := s.Find("A1")
	require.NoError(t, err)
	assert.Equal(t, float32(2), stored.Quantity)

	got, err = s.AdjustQuantity("A1", 7.5, models.DirectionIn)
	require.NoError(t, err)
	assert.Equal(t, float32(9.5), got.Quantity)

	// taking out exactly what is on hand is allowed
	got, err = s.AdjustQuantity("A1", 9.5, models.DirectionOut)
	require.NoError(t, err)
	assert.Equal(t, float32(0), got.Quantity)
	assertNoTempFiles(t, s)
}

func TestAdjustQuantity_Errors(t *testing.T) {
	s := setupTestStore(t)
	seed(t, s, itemA, itemB)

	_, err := s.AdjustQuantity("ZZ", 1, models.DirectionIn)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.AdjustQuantity("A1", -1, models.DirectionIn)
	assert.ErrorIs(t, err, ErrInvalidValue)

	_, err = s.AdjustQuantity("A1", 1, models.Direction(0))
	assert.ErrorIs(t, err, ErrInvalidValue)

	// other records untouched by a transaction
	_, err = s.AdjustQuantity("A1", 1, models.DirectionIn)
	require.NoError(t, err)
	got, err := s.Find("B2")
	require.NoError(t, err)
	assert.Equal(t, itemB, got)
}

func TestDelete(t *testing.T) {
	s := setupTestStore(t)
	seed(t, s, itemA, itemB, itemC)

	require.NoError(t, s.Delete("B2"))

	_, err := s.Find("B2")
	assert.ErrorIs(t, err, ErrNotFound)

	inv, err := s.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"A1", "C3"}, inv.Codes())
	assert.Equal(t, itemA, inv.Items[0].Item)
	assert.Equal(t, itemC, inv.Items[1].Item)

	n, err := s.Count()
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assertNoTempFiles(t, s)

	// a deleted code can be added again
	require.NoError(t, s.Add(itemB))
	inv, err = s.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"A1", "C3", "B2"}, inv.Codes())
}

func TestDelete_EmptyStore(t *testing.T) {
	s := setupTestStore(t)

	err := s.Delete("X")
	assert.ErrorIs(t, err, ErrNotFound)

	inv, err := s.List()
	require.NoError(t, err)
	assert.Equal(t, 0, inv.Len())
	_, statErr := os.Stat(s.Path())
	assert.True(t, os.IsNotExist(statErr))
}

func TestDelete_LastItemLeavesEmptyFile(t *testing.T) {
	s := setupTestStore(t)
	seed(t, s, itemA)

	require.NoError(t, s.Delete("A1"))
	assert.Empty(t, readFile(t, s.Path()))

	n, err := s.Count()
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestCorruptFile(t *testing.T) {
	s := setupTestStore(t)
	seed(t, s, itemA)

	f, err := os.OpenFile(s.Path(), os.O_APPEND|os.O_WRONLY, 0o644)
	require.NoError(t, err)
	_, err = f.Write([]byte{1, 2, 3})
	require.NoError(t, err)
	require.NoError(t, f.Close())

	_, err = s.List()
	assert.ErrorIs(t, err, ErrCorruptRecord)
	_, err = s.Count()
	assert.ErrorIs(t, err, ErrCorruptRecord)
	err = s.Delete("A1")
	assert.ErrorIs(t, err, ErrCorruptRecord)
	assertNoTempFiles(t, s)
}

func TestStorageUnavailable(t *testing.T) {
	dir := t.TempDir()
	logger := zerolog.Nop()
	// the data path is a directory, so it cannot be read as a file
	s, err := New(dir, &logger)
	require.NoError(t, err)

	_, err = s.List()
	assert.ErrorIs(t, err, ErrStorageUnavailable)

	err = s.Add(itemA)
	assert.ErrorIs(t, err, ErrStorageUnavailable)

	_, err = New("", &logger)
	assert.ErrorIs(t, err, ErrStorageUnavailable)
}

func TestReopen(t *testing.T) {
	s := setupTestStore(t)
	seed(t, s, itemA, itemB)

	s2, err := New(s.Path(), nil)
	require.NoError(t, err)
	inv, err := s2.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"A1", "B2"}, inv.Codes())
}
