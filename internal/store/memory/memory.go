// Package memory provides an in-memory implementation of the store
// interfaces, used by tests and development mode.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/soltab/soltab/internal/address"
	"github.com/soltab/soltab/internal/models"
	"github.com/soltab/soltab/internal/store"
)

// Ensure Store implements store.Store.
var _ store.Store = (*Store)(nil)

type record struct {
	kind    address.Kind
	size    int
	reserve uint64
	data    []byte
}

// Store keeps records and balances in maps. Begin locks the store for the
// transaction's duration, matching the single-writer command model.
type Store struct {
	mu       sync.Mutex
	records  map[address.Address]record
	balances map[models.Identity]uint64
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{
		records:  make(map[address.Address]record),
		balances: make(map[models.Identity]uint64),
	}
}

// Begin starts a transaction over cloned state; Commit swaps the clones in.
func (s *Store) Begin(ctx context.Context) (store.Tx, error) {
	s.mu.Lock()
	tx := &Tx{
		store:    s,
		records:  make(map[address.Address]record, len(s.records)),
		balances: make(map[models.Identity]uint64, len(s.balances)),
	}
	for k, v := range s.records {
		tx.records[k] = v
	}
	for k, v := range s.balances {
		tx.balances[k] = v
	}
	return tx, nil
}

// Close is a no-op for the in-memory store.
func (s *Store) Close() error { return nil }

// Ensure Tx implements store.Tx.
var _ store.Tx = (*Tx)(nil)

// Tx is an in-memory transaction: a full clone of the store's maps that
// replaces them on Commit.
type Tx struct {
	store    *Store
	records  map[address.Address]record
	balances map[models.Identity]uint64
	done     bool
}

// Create allocates a record and debits rent from the payer.
func (t *Tx) Create(ctx context.Context, rec address.Record, size int, payer models.Identity) error {
	if size <= 0 || size > store.MaxRecordSize {
		return fmt.Errorf("create %s: %w", rec, store.ErrRecordTooLarge)
	}
	addr := rec.Derive()
	if _, ok := t.records[addr]; ok {
		return fmt.Errorf("create %s: %w", rec, store.ErrAlreadyExists)
	}
	rent := store.RentFor(size)
	if t.balances[payer] < rent {
		return fmt.Errorf("create %s: rent %d: %w", rec, rent, store.ErrInsufficientFunds)
	}
	t.balances[payer] -= rent
	t.records[addr] = record{
		kind:    rec.Kind(),
		size:    size,
		reserve: rent,
		data:    make([]byte, size),
	}
	return nil
}

// Read returns a copy of the record's bytes.
func (t *Tx) Read(ctx context.Context, rec address.Record) ([]byte, error) {
	r, ok := t.records[rec.Derive()]
	if !ok {
		return nil, fmt.Errorf("read %s: %w", rec, store.ErrNotFound)
	}
	out := make([]byte, len(r.data))
	copy(out, r.data)
	return out, nil
}

// Write replaces the record's bytes.
func (t *Tx) Write(ctx context.Context, rec address.Record, data []byte) error {
	addr := rec.Derive()
	r, ok := t.records[addr]
	if !ok {
		return fmt.Errorf("write %s: %w", rec, store.ErrNotFound)
	}
	if len(data) != r.size {
		return fmt.Errorf("write %s: got %d bytes, record holds %d: %w",
			rec, len(data), r.size, store.ErrSizeMismatch)
	}
	r.data = make([]byte, len(data))
	copy(r.data, data)
	t.records[addr] = r
	return nil
}

// CloseRecord frees the record and refunds its reserve.
func (t *Tx) CloseRecord(ctx context.Context, rec address.Record, refundTo models.Identity) error {
	addr := rec.Derive()
	r, ok := t.records[addr]
	if !ok {
		return fmt.Errorf("close %s: %w", rec, store.ErrNotFound)
	}
	t.balances[refundTo] += r.reserve
	delete(t.records, addr)
	return nil
}

// Probe reports record existence.
func (t *Tx) Probe(ctx context.Context, rec address.Record) (bool, error) {
	_, ok := t.records[rec.Derive()]
	return ok, nil
}

// List returns the bytes of every record of the given kind.
func (t *Tx) List(ctx context.Context, kind address.Kind) ([][]byte, error) {
	var out [][]byte
	for _, r := range t.records {
		if r.kind != kind {
			continue
		}
		b := make([]byte, len(r.data))
		copy(b, r.data)
		out = append(out, b)
	}
	return out, nil
}

// Transfer moves lamports between identities.
func (t *Tx) Transfer(ctx context.Context, from, to models.Identity, lamports uint64) error {
	if t.balances[from] < lamports {
		return fmt.Errorf("transfer %d from %s: %w", lamports, from, store.ErrInsufficientFunds)
	}
	t.balances[from] -= lamports
	t.balances[to] += lamports
	return nil
}

// Deposit credits lamports to an identity.
func (t *Tx) Deposit(ctx context.Context, to models.Identity, lamports uint64) error {
	t.balances[to] += lamports
	return nil
}

// Balance returns an identity's lamports.
func (t *Tx) Balance(ctx context.Context, id models.Identity) (uint64, error) {
	return t.balances[id], nil
}

// Commit publishes the transaction's state.
func (t *Tx) Commit() error {
	if t.done {
		return nil
	}
	t.store.records = t.records
	t.store.balances = t.balances
	t.done = true
	t.store.mu.Unlock()
	return nil
}

// Rollback discards the transaction's state.
func (t *Tx) Rollback() error {
	if t.done {
		return nil
	}
	t.done = true
	t.store.mu.Unlock()
	return nil
}
