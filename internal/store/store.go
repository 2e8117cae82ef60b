// Package store defines the host storage and value-transfer capabilities the
// ledger runs on: typed keyed records with create/open/close semantics plus
// lamport balances, all inside one transaction per command.
package store

import (
	"context"
	"errors"

	"github.com/soltab/soltab/internal/address"
	"github.com/soltab/soltab/internal/models"
)

// MaxRecordSize bounds a single record's allocation.
const MaxRecordSize = 10 * 1024

// Rent model: creating a record reserves lamports proportional to its size;
// closing the record returns the reserve.
const (
	rentPerByte     = 6960
	accountOverhead = 128
)

// RentFor returns the lamports reserved for a record of the given size.
func RentFor(size int) uint64 {
	return uint64(size+accountOverhead) * rentPerByte
}

var (
	// ErrAlreadyExists is returned by Create when a record at the derived
	// address already exists.
	ErrAlreadyExists = errors.New("record already exists")

	// ErrNotFound is returned when a record is absent.
	ErrNotFound = errors.New("record not found")

	// ErrRecordTooLarge is returned by Create when size exceeds MaxRecordSize.
	ErrRecordTooLarge = errors.New("record size exceeds maximum")

	// ErrSizeMismatch is returned by Write when the data does not match the
	// record's fixed allocation.
	ErrSizeMismatch = errors.New("data does not match record size")

	// ErrInsufficientFunds is returned by Transfer and Create when the payer
	// cannot cover the amount.
	ErrInsufficientFunds = errors.New("insufficient funds")
)

// Store opens transactions over the record space and the lamport bank.
type Store interface {
	// Begin starts a transaction. Commands run single-writer, so at most one
	// transaction is live at a time.
	Begin(ctx context.Context) (Tx, error)

	// Close releases any resources held by the store.
	Close() error
}

// Tx is one command's exclusive view of the host state. Record mutations and
// lamport transfers commit or roll back together, which is what makes a
// failed command side-effect free.
type Tx interface {
	// Create allocates a record of exactly size bytes at rec's derived
	// address, debiting RentFor(size) from payer into the record's reserve.
	// Fails with ErrAlreadyExists if the address is taken.
	Create(ctx context.Context, rec address.Record, size int, payer models.Identity) error

	// Read returns the record's bytes (discriminator plus padded payload).
	Read(ctx context.Context, rec address.Record) ([]byte, error)

	// Write replaces the record's bytes; data must match the size chosen at
	// create time.
	Write(ctx context.Context, rec address.Record, data []byte) error

	// CloseRecord frees the record and credits its reserve to refundTo.
	CloseRecord(ctx context.Context, rec address.Record, refundTo models.Identity) error

	// Probe reports whether a record exists at rec's address, without
	// mutating anything.
	Probe(ctx context.Context, rec address.Record) (bool, error)

	// List returns the raw bytes of every record of the given kind. Order is
	// unspecified.
	List(ctx context.Context, kind address.Kind) ([][]byte, error)

	// Transfer moves lamports between identities. Authority on from has
	// already been checked by the host.
	Transfer(ctx context.Context, from, to models.Identity, lamports uint64) error

	// Deposit credits lamports to an identity (host faucet).
	Deposit(ctx context.Context, to models.Identity, lamports uint64) error

	// Balance returns an identity's lamports.
	Balance(ctx context.Context, id models.Identity) (uint64, error)

	// Commit makes the transaction's mutations visible atomically.
	Commit() error

	// Rollback discards every mutation. Safe to call after Commit.
	Rollback() error
}
