package ledger

import (
	"context"
	"log/slog"

	"github.com/soltab/soltab/internal/address"
	"github.com/soltab/soltab/internal/codec"
	"github.com/soltab/soltab/internal/models"
)

// InitGlobal creates the singleton Global record with a zero session count.
// Runs once per deployment; a second call fails with store.ErrAlreadyExists.
func (l *Ledger) InitGlobal(ctx context.Context, caller models.Identity) ([]models.Event, error) {
	if err := l.tx.Create(ctx, address.Global(), globalRecordSize, caller); err != nil {
		return nil, err
	}
	data, err := codec.MarshalRecord(address.KindGlobal, &models.Global{SessionCount: 0}, globalRecordSize)
	if err != nil {
		return nil, err
	}
	if err := l.tx.Write(ctx, address.Global(), data); err != nil {
		return nil, err
	}
	slog.Info("Global record initialized")
	return nil, nil
}

// OpenSession creates a session at the next global id with the caller as
// admin, and registers the admin as its first member.
func (l *Ledger) OpenSession(ctx context.Context, caller models.Identity, args OpenSessionArgs) ([]models.Event, error) {
	if len(args.Name) > models.MaxSessionNameLen {
		return nil, ErrSessionNameTooLong
	}
	if len(args.Description) > models.MaxSessionDescriptionLen {
		return nil, ErrSessionDescriptionTooLong
	}

	globalData, err := l.tx.Read(ctx, address.Global())
	if err != nil {
		return nil, err
	}
	var global models.Global
	if err := codec.UnmarshalRecord(address.KindGlobal, globalData, &global); err != nil {
		return nil, err
	}

	session := &models.Session{
		SessionID:      global.SessionCount,
		Name:           args.Name,
		Description:    args.Description,
		Admin:          caller,
		Status:         models.SessionOpened,
		ExpensesCount:  0,
		RefundsCount:   0,
		InvitationHash: [32]byte{},
	}
	if err := l.tx.Create(ctx, address.Session(session.SessionID), sessionRecordSize, caller); err != nil {
		return nil, err
	}
	if err := l.writeSession(ctx, session); err != nil {
		return nil, err
	}

	events := []models.Event{models.SessionOpenedEvent{SessionID: session.SessionID}}

	// The admin is a member like any other; delegate to the membership path.
	memberEvents, err := l.createMember(ctx, session, caller, args.MemberName, caller)
	if err != nil {
		return nil, err
	}
	events = append(events, memberEvents...)

	global.SessionCount++
	globalData, err = codec.MarshalRecord(address.KindGlobal, &global, globalRecordSize)
	if err != nil {
		return nil, err
	}
	if err := l.tx.Write(ctx, address.Global(), globalData); err != nil {
		return nil, err
	}

	slog.Info("Session opened",
		"session_id", session.SessionID,
		"admin", caller,
		"name", session.Name,
	)
	return events, nil
}

// CloseSession moves the session to Closed and clears any invitation.
func (l *Ledger) CloseSession(ctx context.Context, caller models.Identity, args CloseSessionArgs) ([]models.Event, error) {
	session, err := l.readSession(ctx, args.SessionID)
	if err != nil {
		return nil, err
	}
	if session.Admin != caller {
		return nil, ErrForbidden
	}
	if session.Status != models.SessionOpened {
		return nil, ErrSessionClosed
	}

	session.Status = models.SessionClosed
	session.InvitationHash = [32]byte{}
	if err := l.writeSession(ctx, session); err != nil {
		return nil, err
	}

	slog.Info("Session closed", "session_id", session.SessionID)
	return []models.Event{models.SessionClosedEvent{SessionID: session.SessionID}}, nil
}

// SetSessionTokenHash installs the SHA-256 of an invitation token, enabling
// self-join. Admin only, open sessions only.
func (l *Ledger) SetSessionTokenHash(ctx context.Context, caller models.Identity, args SetSessionTokenHashArgs) ([]models.Event, error) {
	session, err := l.readSession(ctx, args.SessionID)
	if err != nil {
		return nil, err
	}
	if session.Admin != caller {
		return nil, ErrForbidden
	}
	if session.Status != models.SessionOpened {
		return nil, ErrSessionClosed
	}

	session.InvitationHash = args.Hash
	if err := l.writeSession(ctx, session); err != nil {
		return nil, err
	}

	slog.Info("Session invitation hash set", "session_id", session.SessionID)
	return nil, nil
}
