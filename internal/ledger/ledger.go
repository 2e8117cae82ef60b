// Package ledger implements the shared-expense state machine: the command
// handlers over session, member, expense and refund records, with their
// preconditions, mutations and emitted events.
//
// A Ledger is scoped to one command: it wraps the command's store
// transaction, a clock, and a price source. Preconditions are evaluated in
// order and the first failure aborts the command; the runtime rolls the
// transaction back, so a failed command leaves no trace.
package ledger

import (
	"context"
	"fmt"

	"github.com/soltab/soltab/internal/address"
	"github.com/soltab/soltab/internal/codec"
	"github.com/soltab/soltab/internal/models"
	"github.com/soltab/soltab/internal/oracle"
	"github.com/soltab/soltab/internal/store"
)

// Fixed record allocations: kind discriminator plus worst-case payload.
const (
	globalRecordSize  = codec.DiscriminatorLen + models.GlobalMaxSize
	sessionRecordSize = codec.DiscriminatorLen + models.SessionMaxSize
	memberRecordSize  = codec.DiscriminatorLen + models.MemberMaxSize
	expenseRecordSize = codec.DiscriminatorLen + models.ExpenseMaxSize
	refundRecordSize  = codec.DiscriminatorLen + models.RefundMaxSize
)

// Ledger executes commands against one store transaction.
type Ledger struct {
	tx     store.Tx
	now    func() int64
	prices oracle.Source
}

// New creates a Ledger over the given transaction. now is the host clock in
// Unix seconds; prices is consulted only by AddRefund.
func New(tx store.Tx, now func() int64, prices oracle.Source) *Ledger {
	return &Ledger{tx: tx, now: now, prices: prices}
}

// record i/o helpers

func (l *Ledger) readSession(ctx context.Context, sessionID uint64) (*models.Session, error) {
	data, err := l.tx.Read(ctx, address.Session(sessionID))
	if err != nil {
		return nil, fmt.Errorf("session %d: %w", sessionID, err)
	}
	var s models.Session
	if err := codec.UnmarshalRecord(address.KindSession, data, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (l *Ledger) writeSession(ctx context.Context, s *models.Session) error {
	data, err := codec.MarshalRecord(address.KindSession, s, sessionRecordSize)
	if err != nil {
		return err
	}
	return l.tx.Write(ctx, address.Session(s.SessionID), data)
}

func (l *Ledger) readMember(ctx context.Context, sessionID uint64, addr models.Identity) (*models.Member, error) {
	data, err := l.tx.Read(ctx, address.Member(sessionID, addr))
	if err != nil {
		return nil, err
	}
	var m models.Member
	if err := codec.UnmarshalRecord(address.KindMember, data, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

func (l *Ledger) readExpense(ctx context.Context, sessionID uint64, expenseID uint16) (*models.Expense, error) {
	data, err := l.tx.Read(ctx, address.Expense(sessionID, expenseID))
	if err != nil {
		return nil, fmt.Errorf("expense %d/%d: %w", sessionID, expenseID, err)
	}
	var e models.Expense
	if err := codec.UnmarshalRecord(address.KindExpense, data, &e); err != nil {
		return nil, err
	}
	return &e, nil
}

func (l *Ledger) writeExpense(ctx context.Context, e *models.Expense) error {
	data, err := codec.MarshalRecord(address.KindExpense, e, expenseRecordSize)
	if err != nil {
		return err
	}
	return l.tx.Write(ctx, address.Expense(e.SessionID, e.ExpenseID), data)
}
