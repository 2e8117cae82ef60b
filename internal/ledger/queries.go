package ledger

import (
	"context"

	"github.com/soltab/soltab/internal/address"
	"github.com/soltab/soltab/internal/codec"
	"github.com/soltab/soltab/internal/models"
)

// Read-only queries. These scan records by kind the way external indexers
// locate accounts by discriminator; they never mutate state.

// Balance returns an identity's lamport balance.
func (l *Ledger) Balance(ctx context.Context, id models.Identity) (uint64, error) {
	return l.tx.Balance(ctx, id)
}

// GetGlobal returns the singleton counter record.
func (l *Ledger) GetGlobal(ctx context.Context) (*models.Global, error) {
	data, err := l.tx.Read(ctx, address.Global())
	if err != nil {
		return nil, err
	}
	var g models.Global
	if err := codec.UnmarshalRecord(address.KindGlobal, data, &g); err != nil {
		return nil, err
	}
	return &g, nil
}

// GetSession returns one session.
func (l *Ledger) GetSession(ctx context.Context, sessionID uint64) (*models.Session, error) {
	return l.readSession(ctx, sessionID)
}

// GetMember returns one membership record.
func (l *Ledger) GetMember(ctx context.Context, sessionID uint64, addr models.Identity) (*models.Member, error) {
	return l.readMember(ctx, sessionID, addr)
}

// GetExpense returns one expense.
func (l *Ledger) GetExpense(ctx context.Context, sessionID uint64, expenseID uint16) (*models.Expense, error) {
	return l.readExpense(ctx, sessionID, expenseID)
}

// GetRefund returns one refund.
func (l *Ledger) GetRefund(ctx context.Context, sessionID uint64, refundID uint16) (*models.Refund, error) {
	data, err := l.tx.Read(ctx, address.Refund(sessionID, refundID))
	if err != nil {
		return nil, err
	}
	var r models.Refund
	if err := codec.UnmarshalRecord(address.KindRefund, data, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

// ListUserSessions returns every session the identity is a member of.
func (l *Ledger) ListUserSessions(ctx context.Context, addr models.Identity) ([]*models.Session, error) {
	raw, err := l.tx.List(ctx, address.KindMember)
	if err != nil {
		return nil, err
	}
	var sessions []*models.Session
	for _, data := range raw {
		var m models.Member
		if err := codec.UnmarshalRecord(address.KindMember, data, &m); err != nil {
			return nil, err
		}
		if m.Addr != addr {
			continue
		}
		s, err := l.readSession(ctx, m.SessionID)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}
	return sessions, nil
}

// ListSessionMembers returns every member of one session.
func (l *Ledger) ListSessionMembers(ctx context.Context, sessionID uint64) ([]*models.Member, error) {
	raw, err := l.tx.List(ctx, address.KindMember)
	if err != nil {
		return nil, err
	}
	var members []*models.Member
	for _, data := range raw {
		var m models.Member
		if err := codec.UnmarshalRecord(address.KindMember, data, &m); err != nil {
			return nil, err
		}
		if m.SessionID == sessionID {
			members = append(members, &m)
		}
	}
	return members, nil
}

// ListSessionExpenses returns every live expense of one session.
func (l *Ledger) ListSessionExpenses(ctx context.Context, sessionID uint64) ([]*models.Expense, error) {
	raw, err := l.tx.List(ctx, address.KindExpense)
	if err != nil {
		return nil, err
	}
	var expenses []*models.Expense
	for _, data := range raw {
		var e models.Expense
		if err := codec.UnmarshalRecord(address.KindExpense, data, &e); err != nil {
			return nil, err
		}
		if e.SessionID == sessionID {
			expenses = append(expenses, &e)
		}
	}
	return expenses, nil
}

// ListSessionRefunds returns every live refund of one session.
func (l *Ledger) ListSessionRefunds(ctx context.Context, sessionID uint64) ([]*models.Refund, error) {
	raw, err := l.tx.List(ctx, address.KindRefund)
	if err != nil {
		return nil, err
	}
	var refunds []*models.Refund
	for _, data := range raw {
		var r models.Refund
		if err := codec.UnmarshalRecord(address.KindRefund, data, &r); err != nil {
			return nil, err
		}
		if r.SessionID == sessionID {
			refunds = append(refunds, &r)
		}
	}
	return refunds, nil
}
