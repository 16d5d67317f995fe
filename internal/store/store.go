package store

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"stockroom/internal/models"

	"github.com/rs/zerolog"
)

// Store keeps items as fixed-size records in a single file.
// The file is opened and closed within every call.
type Store struct {
	path   string
	logger *zerolog.Logger
	// one operation at a time; the rewrite protocol is not safe to interleave
	mu sync.Mutex
}

func New(path string, logger *zerolog.Logger) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: store path is empty", ErrStorageUnavailable)
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("%w: create store directory: %v", ErrStorageUnavailable, err)
	}
	l := logger.With().Str("component", "store").Str("path", path).Logger()
	return &Store{path: path, logger: &l}, nil
}

func (s *Store) Path() string {
	return s.path
}

// openSource opens the data file for reading. A missing file is an empty
// store and yields a nil file.
func (s *Store) openSource() (*os.File, error) {
	f, err := os.Open(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: open for read: %v", ErrStorageUnavailable, err)
	}
	return f, nil
}

// scan calls fn for each record in order until fn returns false.
func (s *Store) scan(fn func(item models.Item) bool) error {
	f, err := s.openSource()
	if err != nil || f == nil {
		return err
	}
	defer f.Close()

	r := bufio.NewReader(f)
	buf := make([]byte, RecordSize)
	for {
		_, err := io.ReadFull(r, buf)
		if err == io.EOF {
			return nil
		}
		if err == io.ErrUnexpectedEOF {
			return fmt.Errorf("%w: trailing partial record in %s", ErrCorruptRecord, s.path)
		}
		if err != nil {
			return fmt.Errorf("%w: read: %v", ErrStorageUnavailable, err)
		}
		item, err := decodeRecord(buf)
		if err != nil {
			return err
		}
		if !fn(item) {
			return nil
		}
	}
}

func (s *Store) findLocked(code string) (models.Item, bool, error) {
	var (
		found models.Item
		ok    bool
	)
	err := s.scan(func(item models.Item) bool {
		if item.Code == code {
			found, ok = item, true
			return false
		}
		return true
	})
	return found, ok, err
}

// Exists reports whether an item with exactly this code is stored.
func (s *Store) Exists(code string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok, err := s.findLocked(code)
	return ok, err
}

// Find returns the item with the given code or ErrNotFound.
func (s *Store) Find(code string) (models.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	item, ok, err := s.findLocked(code)
	if err != nil {
		return models.Item{}, err
	}
	if !ok {
		return models.Item{}, fmt.Errorf("%w: %s", ErrNotFound, code)
	}
	return item, nil
}

// List returns every item in insertion order with derived status and totals.
func (s *Store) List() (models.Inventory, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var items []models.Item
	err := s.scan(func(item models.Item) bool {
		items = append(items, item)
		return true
	})
	if err != nil {
		return models.Inventory{}, err
	}
	return models.NewInventory(items), nil
}

// Count returns the number of stored records.
func (s *Store) Count() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, err := os.Stat(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, nil
		}
		return 0, fmt.Errorf("%w: stat: %v", ErrStorageUnavailable, err)
	}
	if st.Size()%RecordSize != 0 {
		return 0, fmt.Errorf("%w: size %d is not a multiple of %d", ErrCorruptRecord, st.Size(), RecordSize)
	}
	return int(st.Size() / RecordSize), nil
}

// Add appends a new item. Nothing is written unless the item is valid and
// its code is not yet used.
func (s *Store) Add(item models.Item) error {
	if err := validateItem(item); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, exists, err := s.findLocked(item.Code)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("%w: %s", ErrDuplicateKey, item.Code)
	}

	buf := make([]byte, RecordSize)
	encodeRecord(buf, item)

	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_WRONLY|os.O_CREATE, 0o644)
	if err != nil {
		return fmt.Errorf("%w: open for append: %v", ErrStorageUnavailable, err)
	}
	if _, err := f.Write(buf); err != nil {
		f.Close()
		return fmt.Errorf("%w: append: %v", ErrStorageUnavailable, err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return fmt.Errorf("%w: sync: %v", ErrStorageUnavailable, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("%w: close: %v", ErrStorageUnavailable, err)
	}
	s.logger.Debug().Str("code", item.Code).Msg("item added")
	return nil
}

// Update replaces price and reorder level of the matching item. Name and
// quantity are left as they are.
func (s *Store) Update(code string, price float32, reorderLevel int32) error {
	if err := validateAmount("price", price); err != nil {
		return err
	}
	if err := validateReorderLevel(reorderLevel); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	found, err := s.rewriteAll(func(item *models.Item) action {
		if item.Code != code {
			return actionKeep
		}
		item.Price = price
		item.ReorderLevel = reorderLevel
		return actionReplace
	})
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("%w: %s", ErrNotFound, code)
	}
	s.logger.Debug().Str("code", code).Msg("item updated")
	return nil
}

// AdjustQuantity adds (DirectionIn) or removes (DirectionOut) amount from the
// matching item and returns the item as stored afterwards. Removing more
// than is on hand leaves the item unchanged and returns the item together
// with ErrInsufficientStock.
func (s *Store) AdjustQuantity(code string, amount float32, dir models.Direction) (models.Item, error) {
	if err := validateAmount("amount", amount); err != nil {
		return models.Item{}, err
	}
	if !dir.Valid() {
		return models.Item{}, fmt.Errorf("%w: unknown direction %d", ErrInvalidValue, dir)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var (
		result       models.Item
		insufficient bool
	)
	found, err := s.rewriteAll(func(item *models.Item) action {
		if item.Code != code {
			return actionKeep
		}
		if dir == models.DirectionOut && amount > item.Quantity {
			insufficient = true
			result = *item
			return actionMatched
		}
		if dir == models.DirectionIn {
			item.Quantity += amount
		} else {
			item.Quantity -= amount
		}
		result = *item
		return actionReplace
	})
	if err != nil {
		return models.Item{}, err
	}
	if !found {
		return models.Item{}, fmt.Errorf("%w: %s", ErrNotFound, code)
	}
	if insufficient {
		s.logger.Debug().Str("code", code).Float32("requested", amount).
			Float32("on_hand", result.Quantity).Msg("stock out skipped")
		return result, fmt.Errorf("%w: %s has %.2f, requested %.2f", ErrInsufficientStock, code, result.Quantity, amount)
	}
	s.logger.Debug().Str("code", code).Str("direction", dir.String()).Float32("amount", amount).Msg("quantity adjusted")
	return result, nil
}

// Delete removes the matching item; the remaining items keep their order.
func (s *Store) Delete(code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	found, err := s.rewriteAll(func(item *models.Item) action {
		if item.Code == code {
			return actionOmit
		}
		return actionKeep
	})
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("%w: %s", ErrNotFound, code)
	}
	s.logger.Debug().Str("code", code).Msg("item deleted")
	return nil
}
