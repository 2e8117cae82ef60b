package oracle

import (
	"context"
	"errors"
	"testing"

	"github.com/soltab/soltab/internal/address"
	"github.com/soltab/soltab/internal/codec"
	"github.com/soltab/soltab/internal/models"
	"github.com/soltab/soltab/internal/store"
	"github.com/soltab/soltab/internal/store/memory"
)

const priceRecordSize = codec.DiscriminatorLen + PriceUpdateMaxSize

// writePriceUpdate installs an oracle record the way the host does.
func writePriceUpdate(t *testing.T, tx store.Tx, update PriceUpdate) {
	t.Helper()
	ctx := context.Background()
	rec := address.PriceUpdate()

	var host models.Identity
	host[0] = 0x99
	if err := tx.Deposit(ctx, host, store.RentFor(priceRecordSize)); err != nil {
		t.Fatalf("deposit failed: %v", err)
	}
	exists, err := tx.Probe(ctx, rec)
	if err != nil {
		t.Fatalf("probe failed: %v", err)
	}
	if !exists {
		if err := tx.Create(ctx, rec, priceRecordSize, host); err != nil {
			t.Fatalf("create failed: %v", err)
		}
	}
	data, err := codec.MarshalRecord(address.KindPriceUpdate, update, priceRecordSize)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if err := tx.Write(ctx, rec, data); err != nil {
		t.Fatalf("write failed: %v", err)
	}
}

func TestRecordSource(t *testing.T) {
	ctx := context.Background()
	const now = 1_700_000_000

	fresh := PriceUpdate{
		FeedID:      FeedIDBytes(),
		Price:       69,
		Exponent:    4,
		PublishTime: now - 30,
	}

	t.Run("fresh update", func(t *testing.T) {
		tx, _ := memory.New().Begin(ctx)
		defer tx.Rollback()
		writePriceUpdate(t, tx, fresh)

		p, err := NewRecordSource(tx).Current(ctx, now)
		if err != nil {
			t.Fatalf("Current failed: %v", err)
		}
		if p.Price != 69 || p.Exponent != 4 {
			t.Errorf("price = %+v", p)
		}
	})

	t.Run("missing record", func(t *testing.T) {
		tx, _ := memory.New().Begin(ctx)
		defer tx.Rollback()

		_, err := NewRecordSource(tx).Current(ctx, now)
		if !errors.Is(err, ErrPriceUnavailable) {
			t.Errorf("err = %v, want ErrPriceUnavailable", err)
		}
	})

	t.Run("stale update", func(t *testing.T) {
		stale := fresh
		stale.PublishTime = now - MaxPriceAge - 1
		tx, _ := memory.New().Begin(ctx)
		defer tx.Rollback()
		writePriceUpdate(t, tx, stale)

		_, err := NewRecordSource(tx).Current(ctx, now)
		if !errors.Is(err, ErrPriceUnavailable) {
			t.Errorf("err = %v, want ErrPriceUnavailable", err)
		}
	})

	t.Run("future update", func(t *testing.T) {
		future := fresh
		future.PublishTime = now + 10
		tx, _ := memory.New().Begin(ctx)
		defer tx.Rollback()
		writePriceUpdate(t, tx, future)

		_, err := NewRecordSource(tx).Current(ctx, now)
		if !errors.Is(err, ErrPriceUnavailable) {
			t.Errorf("err = %v, want ErrPriceUnavailable", err)
		}
	})

	t.Run("wrong feed", func(t *testing.T) {
		wrong := fresh
		wrong.FeedID[0] ^= 0xFF
		tx, _ := memory.New().Begin(ctx)
		defer tx.Rollback()
		writePriceUpdate(t, tx, wrong)

		_, err := NewRecordSource(tx).Current(ctx, now)
		if !errors.Is(err, ErrPriceUnavailable) {
			t.Errorf("err = %v, want ErrPriceUnavailable", err)
		}
	})

	t.Run("age boundary is inclusive", func(t *testing.T) {
		edge := fresh
		edge.PublishTime = now - MaxPriceAge
		tx, _ := memory.New().Begin(ctx)
		defer tx.Rollback()
		writePriceUpdate(t, tx, edge)

		if _, err := NewRecordSource(tx).Current(ctx, now); err != nil {
			t.Errorf("Current failed at the staleness boundary: %v", err)
		}
	})
}

func TestFallbackSource(t *testing.T) {
	ctx := context.Background()
	const now = 1_700_000_000

	t.Run("substitutes on unavailable", func(t *testing.T) {
		tx, _ := memory.New().Begin(ctx)
		defer tx.Rollback()

		p, err := NewFallbackSource(NewRecordSource(tx)).Current(ctx, now)
		if err != nil {
			t.Fatalf("Current failed: %v", err)
		}
		if p != FallbackPrice {
			t.Errorf("price = %+v, want FallbackPrice", p)
		}
	})

	t.Run("passes a live price through", func(t *testing.T) {
		tx, _ := memory.New().Begin(ctx)
		defer tx.Rollback()
		writePriceUpdate(t, tx, PriceUpdate{
			FeedID:      FeedIDBytes(),
			Price:       150_000,
			Exponent:    -3,
			PublishTime: now,
		})

		p, err := NewFallbackSource(NewRecordSource(tx)).Current(ctx, now)
		if err != nil {
			t.Fatalf("Current failed: %v", err)
		}
		if p.Price != 150_000 || p.Exponent != -3 {
			t.Errorf("price = %+v", p)
		}
	})
}
