package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/soltab/soltab/internal/address"
	"github.com/soltab/soltab/internal/models"
	"github.com/soltab/soltab/internal/store"
)

var payer = models.Identity{0xAA}

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "soltab.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func begin(t *testing.T, s *Store) store.Tx {
	t.Helper()
	tx, err := s.Begin(context.Background())
	if err != nil {
		t.Fatalf("begin failed: %v", err)
	}
	return tx
}

func TestRecordLifecycle(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	tx := begin(t, s)
	defer tx.Rollback()

	const size = 64
	rent := store.RentFor(size)
	if err := tx.Deposit(ctx, payer, rent); err != nil {
		t.Fatalf("deposit failed: %v", err)
	}

	rec := address.Session(1)
	if err := tx.Create(ctx, rec, size, payer); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if bal, _ := tx.Balance(ctx, payer); bal != 0 {
		t.Errorf("payer balance = %d, want 0 after rent", bal)
	}

	data, err := tx.Read(ctx, rec)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if len(data) != size {
		t.Errorf("len(data) = %d, want %d", len(data), size)
	}

	buf := make([]byte, size)
	buf[0] = 0x42
	if err := tx.Write(ctx, rec, buf); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	data, err = tx.Read(ctx, rec)
	if err != nil || data[0] != 0x42 {
		t.Fatalf("read after write = %v, %v", data, err)
	}

	refundTo := models.Identity{0xBB}
	if err := tx.CloseRecord(ctx, rec, refundTo); err != nil {
		t.Fatalf("close failed: %v", err)
	}
	if exists, _ := tx.Probe(ctx, rec); exists {
		t.Error("record still exists after close")
	}
	if bal, _ := tx.Balance(ctx, refundTo); bal != rent {
		t.Errorf("refund balance = %d, want %d", bal, rent)
	}
}

func TestErrors(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	tx := begin(t, s)
	defer tx.Rollback()

	if err := tx.Deposit(ctx, payer, store.RentFor(8)*4); err != nil {
		t.Fatalf("deposit failed: %v", err)
	}

	tests := []struct {
		name    string
		run     func() error
		wantErr error
	}{
		{
			name:    "read missing",
			run:     func() error { _, err := tx.Read(ctx, address.Session(99)); return err },
			wantErr: store.ErrNotFound,
		},
		{
			name:    "close missing",
			run:     func() error { return tx.CloseRecord(ctx, address.Session(99), payer) },
			wantErr: store.ErrNotFound,
		},
		{
			name:    "create too large",
			run:     func() error { return tx.Create(ctx, address.Session(1), store.MaxRecordSize+1, payer) },
			wantErr: store.ErrRecordTooLarge,
		},
		{
			name: "create duplicate",
			run: func() error {
				if err := tx.Create(ctx, address.Session(2), 8, payer); err != nil {
					return err
				}
				return tx.Create(ctx, address.Session(2), 8, payer)
			},
			wantErr: store.ErrAlreadyExists,
		},
		{
			name: "create without funds",
			run: func() error {
				return tx.Create(ctx, address.Session(3), 8, models.Identity{0xEE})
			},
			wantErr: store.ErrInsufficientFunds,
		},
		{
			name: "write wrong size",
			run: func() error {
				if err := tx.Create(ctx, address.Session(4), 8, payer); err != nil {
					return err
				}
				return tx.Write(ctx, address.Session(4), make([]byte, 9))
			},
			wantErr: store.ErrSizeMismatch,
		},
		{
			name: "transfer overdraft",
			run: func() error {
				return tx.Transfer(ctx, models.Identity{0xEE}, payer, 1)
			},
			wantErr: store.ErrInsufficientFunds,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.run(); !errors.Is(err, tt.wantErr) {
				t.Errorf("err = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestList(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	tx := begin(t, s)
	defer tx.Rollback()

	if err := tx.Deposit(ctx, payer, store.RentFor(8)*3); err != nil {
		t.Fatalf("deposit failed: %v", err)
	}
	for _, rec := range []address.Record{
		address.Session(0),
		address.Session(1),
		address.Member(0, models.Identity{1}),
	} {
		if err := tx.Create(ctx, rec, 8, payer); err != nil {
			t.Fatalf("create %s failed: %v", rec, err)
		}
	}

	sessions, err := tx.List(ctx, address.KindSession)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(sessions) != 2 {
		t.Errorf("got %d sessions, want 2", len(sessions))
	}
}

func TestRollbackDiscards(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	tx := begin(t, s)
	if err := tx.Deposit(ctx, payer, store.RentFor(8)); err != nil {
		t.Fatalf("deposit failed: %v", err)
	}
	if err := tx.Create(ctx, address.Session(1), 8, payer); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if err := tx.Rollback(); err != nil {
		t.Fatalf("rollback failed: %v", err)
	}

	tx = begin(t, s)
	defer tx.Rollback()
	if exists, _ := tx.Probe(ctx, address.Session(1)); exists {
		t.Error("rolled back record is visible")
	}
	if bal, _ := tx.Balance(ctx, payer); bal != 0 {
		t.Errorf("rolled back balance = %d, want 0", bal)
	}
}

func TestReopenKeepsState(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "soltab.db")

	s, err := New(dbPath)
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	tx := begin(t, s)
	if err := tx.Deposit(ctx, payer, store.RentFor(8)+77); err != nil {
		t.Fatalf("deposit failed: %v", err)
	}
	if err := tx.Create(ctx, address.Session(1), 8, payer); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("commit failed: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}

	s, err = New(dbPath)
	if err != nil {
		t.Fatalf("failed to reopen store: %v", err)
	}
	defer s.Close()

	tx = begin(t, s)
	defer tx.Rollback()
	if exists, _ := tx.Probe(ctx, address.Session(1)); !exists {
		t.Error("record lost across reopen")
	}
	if bal, _ := tx.Balance(ctx, payer); bal != 77 {
		t.Errorf("balance = %d, want 77 across reopen", bal)
	}
}
