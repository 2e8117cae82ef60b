// Package sqlite provides a SQLite-backed implementation of the store
// interfaces, giving the ledger a durable record space and lamport bank.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)

	"github.com/soltab/soltab/internal/address"
	"github.com/soltab/soltab/internal/models"
	"github.com/soltab/soltab/internal/store"
)

// Ensure Store implements store.Store.
var _ store.Store = (*Store)(nil)

// Store implements store.Store on a SQLite database. Records and balances
// share the database so one sql.Tx covers a whole command.
type Store struct {
	db *sql.DB
}

// New creates a Store at the given database path. It creates the parent
// directories and runs migrations automatically.
func New(dbPath string) (*Store, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// One writer at a time, matching the command execution model.
	db.SetMaxOpenConns(1)

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &Store{db: db}, nil
}

// Begin starts a database transaction.
func (s *Store) Begin(ctx context.Context) (store.Tx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return &Tx{tx: tx}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ensure Tx implements store.Tx.
var _ store.Tx = (*Tx)(nil)

// Tx wraps one sql.Tx.
type Tx struct {
	tx *sql.Tx
}

// Create allocates a record and debits rent from the payer.
func (t *Tx) Create(ctx context.Context, rec address.Record, size int, payer models.Identity) error {
	if size <= 0 || size > store.MaxRecordSize {
		return fmt.Errorf("create %s: %w", rec, store.ErrRecordTooLarge)
	}
	addr := rec.Derive()

	var exists int
	err := t.tx.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM records WHERE addr = ?", addr[:],
	).Scan(&exists)
	if err != nil {
		return fmt.Errorf("create %s: %w", rec, err)
	}
	if exists > 0 {
		return fmt.Errorf("create %s: %w", rec, store.ErrAlreadyExists)
	}

	rent := store.RentFor(size)
	if err := t.debit(ctx, payer, rent); err != nil {
		return fmt.Errorf("create %s: rent %d: %w", rec, rent, err)
	}

	_, err = t.tx.ExecContext(ctx,
		"INSERT INTO records (addr, kind, size, reserve, data) VALUES (?, ?, ?, ?, ?)",
		addr[:], rec.Kind().String(), size, int64(rent), make([]byte, size),
	)
	if err != nil {
		return fmt.Errorf("create %s: %w", rec, err)
	}
	return nil
}

// Read returns the record's bytes.
func (t *Tx) Read(ctx context.Context, rec address.Record) ([]byte, error) {
	addr := rec.Derive()
	var data []byte
	err := t.tx.QueryRowContext(ctx,
		"SELECT data FROM records WHERE addr = ?", addr[:],
	).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("read %s: %w", rec, store.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", rec, err)
	}
	return data, nil
}

// Write replaces the record's bytes.
func (t *Tx) Write(ctx context.Context, rec address.Record, data []byte) error {
	addr := rec.Derive()
	var size int
	err := t.tx.QueryRowContext(ctx,
		"SELECT size FROM records WHERE addr = ?", addr[:],
	).Scan(&size)
	if err == sql.ErrNoRows {
		return fmt.Errorf("write %s: %w", rec, store.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("write %s: %w", rec, err)
	}
	if len(data) != size {
		return fmt.Errorf("write %s: got %d bytes, record holds %d: %w",
			rec, len(data), size, store.ErrSizeMismatch)
	}
	_, err = t.tx.ExecContext(ctx,
		"UPDATE records SET data = ? WHERE addr = ?", data, addr[:],
	)
	if err != nil {
		return fmt.Errorf("write %s: %w", rec, err)
	}
	return nil
}

// CloseRecord frees the record and refunds its reserve.
func (t *Tx) CloseRecord(ctx context.Context, rec address.Record, refundTo models.Identity) error {
	addr := rec.Derive()
	var reserve int64
	err := t.tx.QueryRowContext(ctx,
		"SELECT reserve FROM records WHERE addr = ?", addr[:],
	).Scan(&reserve)
	if err == sql.ErrNoRows {
		return fmt.Errorf("close %s: %w", rec, store.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("close %s: %w", rec, err)
	}
	if _, err := t.tx.ExecContext(ctx, "DELETE FROM records WHERE addr = ?", addr[:]); err != nil {
		return fmt.Errorf("close %s: %w", rec, err)
	}
	if err := t.credit(ctx, refundTo, uint64(reserve)); err != nil {
		return fmt.Errorf("close %s: %w", rec, err)
	}
	return nil
}

// Probe reports record existence.
func (t *Tx) Probe(ctx context.Context, rec address.Record) (bool, error) {
	addr := rec.Derive()
	var n int
	err := t.tx.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM records WHERE addr = ?", addr[:],
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("probe %s: %w", rec, err)
	}
	return n > 0, nil
}

// List returns the bytes of every record of the given kind.
func (t *Tx) List(ctx context.Context, kind address.Kind) ([][]byte, error) {
	rows, err := t.tx.QueryContext(ctx,
		"SELECT data FROM records WHERE kind = ?", kind.String(),
	)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", kind, err)
	}
	defer rows.Close()

	var out [][]byte
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("list %s: %w", kind, err)
		}
		out = append(out, data)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list %s: %w", kind, err)
	}
	return out, nil
}

// Transfer moves lamports between identities.
func (t *Tx) Transfer(ctx context.Context, from, to models.Identity, lamports uint64) error {
	if err := t.debit(ctx, from, lamports); err != nil {
		return fmt.Errorf("transfer %d from %s: %w", lamports, from, err)
	}
	if err := t.credit(ctx, to, lamports); err != nil {
		return fmt.Errorf("transfer %d to %s: %w", lamports, to, err)
	}
	return nil
}

// Deposit credits lamports to an identity.
func (t *Tx) Deposit(ctx context.Context, to models.Identity, lamports uint64) error {
	return t.credit(ctx, to, lamports)
}

// Balance returns an identity's lamports.
func (t *Tx) Balance(ctx context.Context, id models.Identity) (uint64, error) {
	var lamports int64
	err := t.tx.QueryRowContext(ctx,
		"SELECT lamports FROM balances WHERE identity = ?", id[:],
	).Scan(&lamports)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("balance %s: %w", id, err)
	}
	return uint64(lamports), nil
}

// Commit commits the database transaction.
func (t *Tx) Commit() error {
	return t.tx.Commit()
}

// Rollback aborts the database transaction. Safe to call after Commit.
func (t *Tx) Rollback() error {
	err := t.tx.Rollback()
	if err == sql.ErrTxDone {
		return nil
	}
	return err
}

func (t *Tx) debit(ctx context.Context, id models.Identity, lamports uint64) error {
	var have int64
	err := t.tx.QueryRowContext(ctx,
		"SELECT lamports FROM balances WHERE identity = ?", id[:],
	).Scan(&have)
	if err == sql.ErrNoRows {
		return store.ErrInsufficientFunds
	}
	if err != nil {
		return err
	}
	if uint64(have) < lamports {
		return store.ErrInsufficientFunds
	}
	_, err = t.tx.ExecContext(ctx,
		"UPDATE balances SET lamports = lamports - ? WHERE identity = ?",
		int64(lamports), id[:],
	)
	return err
}

func (t *Tx) credit(ctx context.Context, id models.Identity, lamports uint64) error {
	_, err := t.tx.ExecContext(ctx,
		`INSERT INTO balances (identity, lamports) VALUES (?, ?)
		 ON CONFLICT(identity) DO UPDATE SET lamports = lamports + excluded.lamports`,
		id[:], int64(lamports),
	)
	return err
}
