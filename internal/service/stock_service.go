package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"delicioso/internal/model"
	"delicioso/internal/repository"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
)

// stockService implements StockService.
type stockService struct {
	stockRepo         repository.StockRepository
	lowStockThreshold int
	logger            zerolog.Logger
}

// NewStockService creates a new stock service. A lowStockThreshold of zero
// disables low-stock warnings; exhaustion is always reported.
func NewStockService(stockRepo repository.StockRepository, lowStockThreshold int, logger zerolog.Logger) StockService {
	return &stockService{
		stockRepo:         stockRepo,
		lowStockThreshold: lowStockThreshold,
		logger:            logger.With().Str("service", "stock").Logger(),
	}
}

// Restock adds quantity units to the entry called name, creating it if absent.
func (s *stockService) Restock(ctx context.Context, name string, quantity int) (_ *model.StockLevel, err error) {
	ctx, span := tracer.Start(ctx, "StockService.Restock")
	defer func() { finishSpan(span, err) }()

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, model.NewValidationError(model.ErrCodeMissingField, "Packaging name is required")
	}
	if quantity <= 0 {
		s.logger.Warn().Str("name", name).Int("quantity", quantity).Msg("invalid restock quantity")
		return nil, model.ErrInvalidQuantity
	}
	if quantity > model.MaxQuantity {
		return nil, model.ErrQuantityOutOfRange
	}

	entry, err := s.stockRepo.Restock(ctx, name, quantity)
	if errors.Is(err, repository.ErrQuantityOverflow) {
		s.logger.Warn().Str("name", name).Int("quantity", quantity).Msg("restock would overflow stock quantity")
		return nil, model.ErrQuantityOutOfRange
	}
	if err != nil {
		return nil, model.NewPersistenceError("failed to restock packaging", err)
	}

	s.logger.Info().
		Int64("entry_id", entry.ID).
		Str("name", entry.Name).
		Int("added", quantity).
		Int("quantity", entry.Quantity).
		Msg("packaging restocked")

	return &model.StockLevel{EntryID: entry.ID, NewQuantity: entry.Quantity}, nil
}

// Adjust overwrites the quantity of an existing entry.
func (s *stockService) Adjust(ctx context.Context, entryID int64, quantity int) (_ *model.StockLevel, err error) {
	ctx, span := tracer.Start(ctx, "StockService.Adjust")
	span.SetAttributes(attribute.Int64("stock.entry_id", entryID))
	defer func() { finishSpan(span, err) }()

	if entryID <= 0 {
		return nil, model.NewValidationError(model.ErrCodeInvalidID, "Stock entry id must be a positive integer")
	}
	if quantity < 0 {
		return nil, model.NewValidationError(model.ErrCodeInvalidQuantity, "Quantity must not be negative")
	}
	if quantity > model.MaxQuantity {
		return nil, model.ErrQuantityOutOfRange
	}

	entry, err := s.stockRepo.Adjust(ctx, entryID, quantity)
	if err != nil {
		return nil, model.NewPersistenceError("failed to adjust packaging stock", err)
	}
	if entry == nil {
		return nil, model.ErrStockEntryNotFound
	}

	s.logger.Info().
		Int64("entry_id", entry.ID).
		Int("quantity", entry.Quantity).
		Msg("packaging stock adjusted")

	return &model.StockLevel{EntryID: entry.ID, NewQuantity: entry.Quantity}, nil
}

// List returns every stock entry.
func (s *stockService) List(ctx context.Context) (_ []model.StockEntry, err error) {
	ctx, span := tracer.Start(ctx, "StockService.List")
	defer func() { finishSpan(span, err) }()

	entries, err := s.stockRepo.List(ctx)
	if err != nil {
		return nil, model.NewPersistenceError("failed to list packaging stock", err)
	}
	if entries == nil {
		entries = []model.StockEntry{}
	}
	return entries, nil
}

// Consume decrements an entry within tx. A missing entry is skipped. A request
// larger than the stock clamps the entry to zero and carries a warning.
func (s *stockService) Consume(ctx context.Context, tx pgx.Tx, entryID int64, quantity int) (model.Consumption, error) {
	if quantity <= 0 {
		return model.Consumption{}, model.ErrInvalidQuantity
	}

	entry, err := s.stockRepo.LockByID(ctx, tx, entryID)
	if err != nil {
		return model.Consumption{}, err
	}
	if entry == nil {
		s.logger.Debug().Int64("entry_id", entryID).Msg("packaging entry not found, consumption skipped")
		return model.Consumption{
			Outcome:   model.ConsumeSkipped,
			EntryID:   entryID,
			Requested: quantity,
			Reason:    fmt.Sprintf("packaging entry %d not found", entryID),
		}, nil
	}

	c := applyConsumption(*entry, quantity, s.lowStockThreshold)
	if err := s.stockRepo.SetQuantity(ctx, tx, entry.ID, c.Remaining); err != nil {
		return model.Consumption{}, err
	}

	if c.HasWarning() {
		s.logger.Warn().
			Int64("entry_id", c.EntryID).
			Str("name", c.Name).
			Int("requested", c.Requested).
			Int("previous", c.Previous).
			Int("remaining", c.Remaining).
			Bool("clamped", c.Clamped).
			Msg(c.Warning)
	}

	return c, nil
}

// ConsumeLines consumes the packaging referenced by items within tx.
func (s *stockService) ConsumeLines(ctx context.Context, tx pgx.Tx, items []model.OrderItem) ([]model.Consumption, error) {
	var ids []int64
	for _, item := range items {
		if item.PackagingID != nil {
			ids = append(ids, *item.PackagingID)
		}
	}
	if len(ids) == 0 {
		return nil, nil
	}

	// A fixed lock order keeps carts that share entries from deadlocking.
	slices.Sort(ids)
	for _, id := range slices.Compact(slices.Clone(ids)) {
		if _, err := s.stockRepo.LockByID(ctx, tx, id); err != nil {
			return nil, err
		}
	}

	consumptions := make([]model.Consumption, 0, len(ids))
	for _, item := range items {
		if item.PackagingID == nil {
			continue
		}
		c, err := s.Consume(ctx, tx, *item.PackagingID, item.Quantity)
		if err != nil {
			return nil, err
		}
		consumptions = append(consumptions, c)
	}

	return consumptions, nil
}

// applyConsumption computes the outcome of taking requested units from entry.
func applyConsumption(entry model.StockEntry, requested, lowStockThreshold int) model.Consumption {
	c := model.Consumption{
		Outcome:   model.ConsumeApplied,
		EntryID:   entry.ID,
		Name:      entry.Name,
		Requested: requested,
		Previous:  entry.Quantity,
	}

	if requested > entry.Quantity {
		c.Remaining = 0
		c.Clamped = true
		c.Warning = fmt.Sprintf("Insufficient stock of %s: 0 remaining (requested %d, had %d)",
			entry.Name, requested, entry.Quantity)
		return c
	}

	c.Remaining = entry.Quantity - requested
	if lowStockThreshold > 0 && c.Remaining < lowStockThreshold {
		c.Warning = fmt.Sprintf("Low stock of %s: %d remaining", entry.Name, c.Remaining)
	}

	return c
}
