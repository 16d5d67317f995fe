package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"stockroom/internal/domain"
	"stockroom/internal/events"
	"stockroom/internal/metrics"
	"stockroom/internal/models"
	"stockroom/internal/store"

	"github.com/rs/zerolog"
)

// ItemService sits between the menu and the store: it normalises input,
// publishes stock events and records metrics.
type ItemService struct {
	store         domain.InventoryStore
	events        domain.EventPublisher
	logger        *zerolog.Logger
	truncateCodes bool
}

var _ domain.Inventory = (*ItemService)(nil)

func NewItemService(st domain.InventoryStore, publisher domain.EventPublisher, truncateCodes bool, logger *zerolog.Logger) *ItemService {
	l := logger.With().Str("component", "item-service").Logger()
	return &ItemService{
		store:         st,
		events:        publisher,
		logger:        &l,
		truncateCodes: truncateCodes,
	}
}

func (s *ItemService) Exists(ctx context.Context, code string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	ok, err := s.store.Exists(s.lookupCode(code))
	s.record("exists", err)
	return ok, err
}

func (s *ItemService) Add(ctx context.Context, item models.Item) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	code, err := s.normalizeCode(item.Code)
	if err != nil {
		s.record("add", err)
		return err
	}
	item.Code = code
	item.Name = s.normalizeName(item.Name)

	err = s.store.Add(item)
	s.record("add", err)
	if err != nil {
		return err
	}

	s.logger.Info().Str("code", item.Code).Str("name", item.Name).Msg("item added")
	s.publish(events.EventItemAdded, item, 0, 0)
	if item.IsLow() {
		s.publish(events.EventStockLow, item, 0, 0)
	}
	return nil
}

func (s *ItemService) List(ctx context.Context) (models.Inventory, error) {
	if err := ctx.Err(); err != nil {
		return models.Inventory{}, err
	}
	inv, err := s.store.List()
	s.record("list", err)
	if err != nil {
		return models.Inventory{}, err
	}
	metrics.SetInventory(inv.Len(), inv.LowCount, inv.TotalValue.InexactFloat64())
	return inv, nil
}

func (s *ItemService) Find(ctx context.Context, code string) (models.Item, error) {
	if err := ctx.Err(); err != nil {
		return models.Item{}, err
	}
	item, err := s.store.Find(s.lookupCode(code))
	s.record("find", err)
	return item, err
}

func (s *ItemService) Update(ctx context.Context, code string, price float32, reorderLevel int32) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	code = s.lookupCode(code)
	err := s.store.Update(code, price, reorderLevel)
	s.record("update", err)
	if err != nil {
		return err
	}

	s.logger.Info().Str("code", code).Float32("price", price).Int32("reorder_level", reorderLevel).Msg("item updated")
	item, err := s.store.Find(code)
	if err != nil {
		// the update itself went through
		s.logger.Warn().Err(err).Str("code", code).Msg("reload after update failed")
		return nil
	}
	s.publish(events.EventItemUpdated, item, 0, 0)
	if item.IsLow() {
		s.publish(events.EventStockLow, item, 0, 0)
	}
	return nil
}

func (s *ItemService) StockIn(ctx context.Context, code string, amount float32) (models.Item, error) {
	return s.adjust(ctx, "stock_in", code, amount, models.DirectionIn)
}

// StockOut removes amount from stock. When there is not enough on hand the
// returned error wraps store.ErrInsufficientStock and the item is returned
// unchanged.
func (s *ItemService) StockOut(ctx context.Context, code string, amount float32) (models.Item, error) {
	return s.adjust(ctx, "stock_out", code, amount, models.DirectionOut)
}

func (s *ItemService) adjust(ctx context.Context, op, code string, amount float32, dir models.Direction) (models.Item, error) {
	if err := ctx.Err(); err != nil {
		return models.Item{}, err
	}
	code = s.lookupCode(code)
	item, err := s.store.AdjustQuantity(code, amount, dir)
	s.record(op, err)

	if errors.Is(err, store.ErrInsufficientStock) {
		s.logger.Warn().Str("code", code).Float32("requested", amount).Float32("on_hand", item.Quantity).Msg("insufficient stock")
		s.publish(events.EventStockInsufficient, item, amount, dir)
		return item, err
	}
	if err != nil {
		return models.Item{}, err
	}

	s.logger.Info().Str("code", code).Str("direction", dir.String()).Float32("amount", amount).
		Float32("quantity", item.Quantity).Msg("stock adjusted")
	eventType := events.EventStockIn
	if dir == models.DirectionOut {
		eventType = events.EventStockOut
	}
	s.publish(eventType, item, amount, dir)
	if item.IsLow() {
		s.publish(events.EventStockLow, item, amount, dir)
	}
	return item, nil
}

func (s *ItemService) Delete(ctx context.Context, code string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	code = s.lookupCode(code)
	err := s.store.Delete(code)
	s.record("delete", err)
	if err != nil {
		return err
	}
	s.logger.Info().Str("code", code).Msg("item deleted")
	s.publish(events.EventItemDeleted, models.Item{Code: code}, 0, 0)
	return nil
}

// Seed adds the given items whose codes are not stored yet. Existing items
// are left as they are. It returns how many items were added.
func (s *ItemService) Seed(ctx context.Context, items []models.Item) (int, error) {
	added := 0
	for _, item := range items {
		if err := ctx.Err(); err != nil {
			return added, err
		}
		err := s.Add(ctx, item)
		if errors.Is(err, store.ErrDuplicateKey) {
			s.logger.Debug().Str("code", item.Code).Msg("seed item already present")
			continue
		}
		if err != nil {
			s.logger.Error().Err(err).Str("code", item.Code).Msg("seed item rejected")
			return added, err
		}
		added++
	}
	s.logger.Info().Int("added", added).Int("total", len(items)).Msg("seed finished")
	return added, nil
}

func (s *ItemService) normalizeCode(code string) (string, error) {
	code = strings.TrimSpace(code)
	if len(code) <= models.MaxCodeLen {
		return code, nil
	}
	if !s.truncateCodes {
		return "", fmt.Errorf("%w: code is %d bytes, max %d", store.ErrFieldTooLong, len(code), models.MaxCodeLen)
	}
	truncated := truncateBytes(code, models.MaxCodeLen)
	s.logger.Warn().Str("code", code).Str("truncated", truncated).Msg("item code truncated")
	return truncated, nil
}

func (s *ItemService) lookupCode(code string) string {
	code = strings.TrimSpace(code)
	if s.truncateCodes && len(code) > models.MaxCodeLen {
		return truncateBytes(code, models.MaxCodeLen)
	}
	return code
}

func (s *ItemService) normalizeName(name string) string {
	name = strings.TrimSpace(name)
	if len(name) <= models.MaxNameLen {
		return name
	}
	truncated := truncateBytes(name, models.MaxNameLen)
	s.logger.Warn().Str("name", name).Str("truncated", truncated).Msg("item name truncated")
	return truncated
}

func (s *ItemService) publish(eventType string, item models.Item, amount float32, dir models.Direction) {
	if s.events == nil {
		return
	}
	payload := events.StockEventPayload{
		Code:         item.Code,
		Name:         item.Name,
		Price:        item.Price,
		Quantity:     item.Quantity,
		ReorderLevel: item.ReorderLevel,
		Amount:       amount,
	}
	if dir.Valid() {
		payload.Direction = dir.String()
	}
	if err := s.events.PublishJSON(eventType, payload); err != nil {
		s.logger.Error().Err(err).Str("event", eventType).Msg("publish event")
	}
}

func (s *ItemService) record(op string, err error) {
	metrics.IncOperation(op, resultLabel(err))
	if err != nil && errors.Is(err, store.ErrStorageUnavailable) {
		s.logger.Error().Err(err).Str("op", op).Msg("storage unavailable")
	}
}

// truncateBytes cuts s to at most n bytes without splitting a UTF-8 sequence.
func truncateBytes(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

func resultLabel(err error) string {
	switch {
	case err == nil:
		return metrics.ResultOK
	case errors.Is(err, store.ErrNotFound):
		return metrics.ResultNotFound
	case errors.Is(err, store.ErrDuplicateKey):
		return metrics.ResultDuplicate
	case errors.Is(err, store.ErrInvalidValue):
		return metrics.ResultInvalid
	case errors.Is(err, store.ErrInsufficientStock):
		return metrics.ResultInsufficientStock
	default:
		return metrics.ResultError
	}
}
