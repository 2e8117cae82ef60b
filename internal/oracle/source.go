package oracle

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/soltab/soltab/internal/address"
	"github.com/soltab/soltab/internal/codec"
	"github.com/soltab/soltab/internal/store"
)

// PriceUpdate is the borsh payload of the adjunct oracle record the host
// maintains at the "price_update" seed.
type PriceUpdate struct {
	FeedID      [32]byte
	Price       int64
	Conf        uint64
	Exponent    int32
	PublishTime int64
}

// PriceUpdateMaxSize is the worst-case borsh footprint of a PriceUpdate.
const PriceUpdateMaxSize = 32 + 8 + 8 + 4 + 8

// Source yields the current price for refund conversion.
type Source interface {
	// Current returns a price no older than MaxPriceAge relative to now
	// (Unix seconds), or ErrPriceUnavailable.
	Current(ctx context.Context, now int64) (Price, error)
}

// RecordSource reads the price from the adjunct oracle record in the store.
type RecordSource struct {
	tx store.Tx
}

// NewRecordSource creates a Source over the given transaction.
func NewRecordSource(tx store.Tx) *RecordSource {
	return &RecordSource{tx: tx}
}

// Current loads and validates the oracle record.
func (s *RecordSource) Current(ctx context.Context, now int64) (Price, error) {
	data, err := s.tx.Read(ctx, address.PriceUpdate())
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return Price{}, fmt.Errorf("%w: no price update record", ErrPriceUnavailable)
		}
		return Price{}, err
	}

	var update PriceUpdate
	if err := codec.UnmarshalRecord(address.KindPriceUpdate, data, &update); err != nil {
		return Price{}, fmt.Errorf("%w: malformed update: %v", ErrPriceUnavailable, err)
	}
	if update.FeedID != FeedIDBytes() {
		return Price{}, fmt.Errorf("%w: update is for a different feed", ErrPriceUnavailable)
	}

	age := now - update.PublishTime
	if age < 0 || age > MaxPriceAge {
		return Price{}, fmt.Errorf("%w: update is %ds old", ErrPriceUnavailable, age)
	}

	return Price{
		Price:       update.Price,
		Conf:        update.Conf,
		Exponent:    update.Exponent,
		PublishTime: update.PublishTime,
	}, nil
}

// FallbackSource wraps a Source and substitutes FallbackPrice when the
// wrapped source has nothing usable. Development mode only: production
// surfaces ErrPriceUnavailable to the caller instead.
type FallbackSource struct {
	inner Source
}

// NewFallbackSource wraps inner with the development fallback.
func NewFallbackSource(inner Source) *FallbackSource {
	return &FallbackSource{inner: inner}
}

// Current returns the inner price, or FallbackPrice with a logged warning.
func (s *FallbackSource) Current(ctx context.Context, now int64) (Price, error) {
	p, err := s.inner.Current(ctx, now)
	if err == nil {
		return p, nil
	}
	if errors.Is(err, ErrPriceUnavailable) {
		slog.Warn("Oracle price unavailable, using development fallback",
			"error", err,
			"fallback_price", FallbackPrice.Price,
			"fallback_exponent", FallbackPrice.Exponent,
		)
		return FallbackPrice, nil
	}
	return Price{}, err
}
