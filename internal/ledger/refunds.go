package ledger

import (
	"context"
	"errors"
	"log/slog"

	"github.com/soltab/soltab/internal/address"
	"github.com/soltab/soltab/internal/codec"
	"github.com/soltab/soltab/internal/models"
	"github.com/soltab/soltab/internal/oracle"
	"github.com/soltab/soltab/internal/store"
)

// AddRefund settles a debt: it converts the session-currency amount to
// lamports at the oracle price, transfers them from the caller to the
// recipient, and records the refund at the session's next refund id.
func (l *Ledger) AddRefund(ctx context.Context, caller models.Identity, args AddRefundArgs) ([]models.Event, error) {
	session, err := l.readSession(ctx, args.SessionID)
	if err != nil {
		return nil, err
	}
	if session.Status != models.SessionOpened {
		return nil, ErrSessionClosed
	}

	sender, err := l.readMember(ctx, args.SessionID, caller)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrNotSessionMember
		}
		return nil, err
	}
	if sender.Addr != caller || sender.SessionID != session.SessionID {
		return nil, ErrNotSessionMember
	}

	receiver, err := l.readMember(ctx, args.SessionID, args.To)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrNotSessionMember
		}
		return nil, err
	}
	if receiver.Addr != args.To || receiver.SessionID != session.SessionID {
		return nil, ErrNotSessionMember
	}

	if args.Amount == 0 {
		return nil, ErrRefundAmountMustBeGreaterThanZero
	}

	price, err := l.prices.Current(ctx, l.now())
	if err != nil {
		if errors.Is(err, oracle.ErrPriceUnavailable) {
			return nil, ErrPriceUnavailable
		}
		return nil, err
	}
	lamports, err := oracle.ConvertToLamports(float32(args.Amount), price)
	if err != nil {
		switch {
		case errors.Is(err, oracle.ErrOverflow):
			return nil, ErrOverflow
		case errors.Is(err, oracle.ErrDivisionByZero):
			return nil, ErrDivisionByZero
		}
		return nil, err
	}

	// Host transfer failures propagate untranslated.
	if err := l.tx.Transfer(ctx, caller, args.To, lamports); err != nil {
		return nil, err
	}

	refund := &models.Refund{
		SessionID:        session.SessionID,
		RefundID:         session.RefundsCount,
		Date:             l.now(),
		From:             caller,
		To:               args.To,
		Amount:           args.Amount,
		AmountInLamports: lamports,
	}
	rec := address.Refund(refund.SessionID, refund.RefundID)
	if err := l.tx.Create(ctx, rec, refundRecordSize, caller); err != nil {
		return nil, err
	}
	data, err := codec.MarshalRecord(address.KindRefund, refund, refundRecordSize)
	if err != nil {
		return nil, err
	}
	if err := l.tx.Write(ctx, rec, data); err != nil {
		return nil, err
	}

	session.RefundsCount++
	if err := l.writeSession(ctx, session); err != nil {
		return nil, err
	}

	slog.Info("Refund added",
		"session_id", refund.SessionID,
		"refund_id", refund.RefundID,
		"from", caller,
		"to", args.To,
		"amount", args.Amount,
		"lamports", lamports,
	)
	return []models.Event{models.RefundAddedEvent{
		SessionID: refund.SessionID,
		RefundID:  refund.RefundID,
	}}, nil
}

// DeleteRefund closes a refund record, refunding its storage to the admin.
// Admin only, closed sessions only.
func (l *Ledger) DeleteRefund(ctx context.Context, caller models.Identity, args DeleteRefundArgs) ([]models.Event, error) {
	session, err := l.readSession(ctx, args.SessionID)
	if err != nil {
		return nil, err
	}
	if session.Admin != caller {
		return nil, ErrForbidden
	}
	if session.Status != models.SessionClosed {
		return nil, ErrSessionNotClosed
	}

	if err := l.tx.CloseRecord(ctx, address.Refund(args.SessionID, args.RefundID), caller); err != nil {
		return nil, err
	}

	slog.Info("Refund deleted", "session_id", args.SessionID, "refund_id", args.RefundID)
	return []models.Event{models.RefundDeletedEvent{
		SessionID: args.SessionID,
		RefundID:  args.RefundID,
	}}, nil
}
