package ledger

import (
	"context"
	"errors"
	"log/slog"
	"math"

	"github.com/soltab/soltab/internal/address"
	"github.com/soltab/soltab/internal/models"
	"github.com/soltab/soltab/internal/store"
)

// validExpenseAmount rejects non-positive amounts. NaN and infinities are
// rejected explicitly rather than relying on comparison semantics.
func validExpenseAmount(amount float32) bool {
	f := float64(amount)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return false
	}
	return amount > 0
}

// AddExpense records an expense owned by the caller at the session's next
// expense id. The owner is always the first participant; the optional
// participant list is applied through the same path as
// AddExpenseParticipants.
func (l *Ledger) AddExpense(ctx context.Context, caller models.Identity, args AddExpenseArgs) ([]models.Event, error) {
	session, err := l.readSession(ctx, args.SessionID)
	if err != nil {
		return nil, err
	}
	if session.Status != models.SessionOpened {
		return nil, ErrSessionClosed
	}

	member, err := l.readMember(ctx, args.SessionID, caller)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrNotSessionMember
		}
		return nil, err
	}
	if member.Addr != caller || member.SessionID != session.SessionID {
		return nil, ErrNotSessionMember
	}

	if !validExpenseAmount(args.Amount) {
		return nil, ErrExpenseAmountMustBeGreaterThanZero
	}
	if len(args.Name) > models.MaxExpenseNameLen {
		return nil, ErrExpenseNameTooLong
	}

	expense := &models.Expense{
		SessionID:    session.SessionID,
		ExpenseID:    session.ExpensesCount,
		Name:         args.Name,
		Date:         l.now(),
		Owner:        caller,
		Amount:       args.Amount,
		Participants: []models.Identity{caller},
	}
	rec := address.Expense(expense.SessionID, expense.ExpenseID)
	if err := l.tx.Create(ctx, rec, expenseRecordSize, caller); err != nil {
		return nil, err
	}

	events := []models.Event{models.ExpenseAddedEvent{
		SessionID: expense.SessionID,
		ExpenseID: expense.ExpenseID,
	}}
	participantEvents, err := l.addParticipants(ctx, expense, args.Participants)
	if err != nil {
		return nil, err
	}
	events = append(events, participantEvents...)

	if err := l.writeExpense(ctx, expense); err != nil {
		return nil, err
	}

	session.ExpensesCount++
	if err := l.writeSession(ctx, session); err != nil {
		return nil, err
	}

	slog.Info("Expense added",
		"session_id", expense.SessionID,
		"expense_id", expense.ExpenseID,
		"owner", caller,
		"amount", expense.Amount,
		"participants", len(expense.Participants),
	)
	return events, nil
}

// addParticipants grows an expense's participant set. Every candidate must
// hold a membership record in the expense's session; duplicates, both within
// the list and against the existing set, are silently idempotent. The
// capacity check counts the raw list, duplicates included.
func (l *Ledger) addParticipants(ctx context.Context, expense *models.Expense, list []models.Identity) ([]models.Event, error) {
	if len(expense.Participants)+len(list) > models.MaxExpenseParticipants {
		return nil, ErrMaxParticipantsReached
	}

	var events []models.Event
	for _, p := range list {
		exists, err := l.tx.Probe(ctx, address.Member(expense.SessionID, p))
		if err != nil {
			return nil, err
		}
		if !exists {
			return nil, ErrParticipantNotMember
		}
		if expense.HasParticipant(p) {
			continue
		}
		expense.Participants = append(expense.Participants, p)
		events = append(events, models.ExpenseParticipantAddedEvent{
			SessionID:    expense.SessionID,
			ExpenseID:    expense.ExpenseID,
			MemberPubkey: p,
		})
	}
	return events, nil
}

// AddExpenseParticipants adds members to an existing expense's participant
// set. Owner only, open sessions only.
func (l *Ledger) AddExpenseParticipants(ctx context.Context, caller models.Identity, args ExpenseParticipantsArgs) ([]models.Event, error) {
	session, err := l.readSession(ctx, args.SessionID)
	if err != nil {
		return nil, err
	}
	if session.Status != models.SessionOpened {
		return nil, ErrSessionClosed
	}

	expense, err := l.readExpense(ctx, args.SessionID, args.ExpenseID)
	if err != nil {
		return nil, err
	}
	if expense.Owner != caller || expense.SessionID != session.SessionID {
		return nil, ErrNotExpenseOwner
	}

	events, err := l.addParticipants(ctx, expense, args.Participants)
	if err != nil {
		return nil, err
	}
	if err := l.writeExpense(ctx, expense); err != nil {
		return nil, err
	}

	slog.Info("Expense participants added",
		"session_id", args.SessionID,
		"expense_id", args.ExpenseID,
		"added", len(events),
	)
	return events, nil
}

// RemoveExpenseParticipants removes members from an expense's participant
// set. The owner can never be removed.
func (l *Ledger) RemoveExpenseParticipants(ctx context.Context, caller models.Identity, args ExpenseParticipantsArgs) ([]models.Event, error) {
	session, err := l.readSession(ctx, args.SessionID)
	if err != nil {
		return nil, err
	}
	expense, err := l.readExpense(ctx, args.SessionID, args.ExpenseID)
	if err != nil {
		return nil, err
	}
	if expense.Owner != caller {
		return nil, ErrNotExpenseOwner
	}
	if session.Status != models.SessionOpened {
		return nil, ErrSessionClosed
	}

	remove := make(map[models.Identity]bool, len(args.Participants))
	for _, p := range args.Participants {
		remove[p] = true
	}

	var events []models.Event
	kept := expense.Participants[:0]
	for _, p := range expense.Participants {
		if !remove[p] {
			kept = append(kept, p)
			continue
		}
		if p == expense.Owner {
			return nil, ErrCannotRemoveExpenseOwner
		}
		events = append(events, models.ExpenseParticipantRemovedEvent{
			SessionID:    expense.SessionID,
			ExpenseID:    expense.ExpenseID,
			MemberPubkey: p,
		})
	}
	expense.Participants = kept

	if err := l.writeExpense(ctx, expense); err != nil {
		return nil, err
	}

	slog.Info("Expense participants removed",
		"session_id", args.SessionID,
		"expense_id", args.ExpenseID,
		"removed", len(events),
	)
	return events, nil
}

// UpdateExpense overwrites an expense's name and amount. Owner only, open
// sessions only.
func (l *Ledger) UpdateExpense(ctx context.Context, caller models.Identity, args UpdateExpenseArgs) ([]models.Event, error) {
	session, err := l.readSession(ctx, args.SessionID)
	if err != nil {
		return nil, err
	}
	if session.Status != models.SessionOpened {
		return nil, ErrSessionClosed
	}

	expense, err := l.readExpense(ctx, args.SessionID, args.ExpenseID)
	if err != nil {
		return nil, err
	}
	if expense.Owner != caller || expense.SessionID != session.SessionID {
		return nil, ErrNotExpenseOwner
	}

	if !validExpenseAmount(args.Amount) {
		return nil, ErrExpenseAmountMustBeGreaterThanZero
	}
	if len(args.Name) > models.MaxExpenseNameLen {
		return nil, ErrExpenseNameTooLong
	}

	expense.Name = args.Name
	expense.Amount = args.Amount
	if err := l.writeExpense(ctx, expense); err != nil {
		return nil, err
	}

	slog.Info("Expense updated",
		"session_id", args.SessionID,
		"expense_id", args.ExpenseID,
		"amount", args.Amount,
	)
	return []models.Event{models.ExpenseUpdatedEvent{
		SessionID: args.SessionID,
		ExpenseID: args.ExpenseID,
	}}, nil
}

// DeleteExpense closes an expense record, refunding its storage to the
// owner. Owner only, open sessions only.
func (l *Ledger) DeleteExpense(ctx context.Context, caller models.Identity, args DeleteExpenseArgs) ([]models.Event, error) {
	session, err := l.readSession(ctx, args.SessionID)
	if err != nil {
		return nil, err
	}
	if session.Status != models.SessionOpened {
		return nil, ErrSessionClosed
	}

	expense, err := l.readExpense(ctx, args.SessionID, args.ExpenseID)
	if err != nil {
		return nil, err
	}
	if expense.Owner != caller || expense.SessionID != session.SessionID {
		return nil, ErrNotExpenseOwner
	}

	if err := l.tx.CloseRecord(ctx, address.Expense(args.SessionID, args.ExpenseID), caller); err != nil {
		return nil, err
	}

	slog.Info("Expense deleted", "session_id", args.SessionID, "expense_id", args.ExpenseID)
	return []models.Event{models.ExpenseDeletedEvent{
		SessionID: args.SessionID,
		ExpenseID: args.ExpenseID,
	}}, nil
}
