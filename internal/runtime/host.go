package runtime

import (
	"context"
	"crypto/sha256"
	"fmt"
	"log/slog"

	"github.com/soltab/soltab/internal/address"
	"github.com/soltab/soltab/internal/codec"
	"github.com/soltab/soltab/internal/ledger"
	"github.com/soltab/soltab/internal/models"
	"github.com/soltab/soltab/internal/oracle"
	"github.com/soltab/soltab/internal/store"
)

// hostAuthority pays rent for host-owned adjunct records like the price
// update.
var hostAuthority = models.Identity(sha256.Sum256([]byte("soltab:host-authority")))

const priceRecordSize = codec.DiscriminatorLen + oracle.PriceUpdateMaxSize

// SetPrice writes the adjunct oracle record the refund path reads. The host
// calls this whenever a fresh price arrives.
func (r *Runtime) SetPrice(ctx context.Context, update oracle.PriceUpdate) error {
	tx, err := r.store.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	rec := address.PriceUpdate()
	exists, err := tx.Probe(ctx, rec)
	if err != nil {
		return err
	}
	if !exists {
		// The host funds its own rent.
		if err := tx.Deposit(ctx, hostAuthority, store.RentFor(priceRecordSize)); err != nil {
			return err
		}
		if err := tx.Create(ctx, rec, priceRecordSize, hostAuthority); err != nil {
			return err
		}
	}

	data, err := codec.MarshalRecord(address.KindPriceUpdate, &update, priceRecordSize)
	if err != nil {
		return err
	}
	if err := tx.Write(ctx, rec, data); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}

	slog.Info("Price update stored",
		"price", update.Price,
		"exponent", update.Exponent,
		"publish_time", update.PublishTime,
	)
	return nil
}

// Deposit credits lamports to an identity. Development faucet.
func (r *Runtime) Deposit(ctx context.Context, to models.Identity, lamports uint64) error {
	tx, err := r.store.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := tx.Deposit(ctx, to, lamports); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	slog.Info("Deposit credited", "to", to, "lamports", lamports)
	return nil
}

// Balance returns an identity's lamports.
func (r *Runtime) Balance(ctx context.Context, id models.Identity) (uint64, error) {
	var out uint64
	err := r.View(ctx, func(led *ledger.Ledger) error {
		var err error
		out, err = led.Balance(ctx, id)
		return err
	})
	return out, err
}

// View runs read-only queries against a snapshot and discards the
// transaction.
func (r *Runtime) View(ctx context.Context, fn func(*ledger.Ledger) error) error {
	tx, err := r.store.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	led := ledger.New(tx, r.opts.Clock, oracle.NewRecordSource(tx))
	if err := fn(led); err != nil {
		return fmt.Errorf("query: %w", err)
	}
	return nil
}
