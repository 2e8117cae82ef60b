package ledger

import (
	"context"
	"crypto/sha256"
	"fmt"
	"log/slog"

	"github.com/soltab/soltab/internal/address"
	"github.com/soltab/soltab/internal/codec"
	"github.com/soltab/soltab/internal/models"
)

// createMember allocates and populates a membership record. Shared by
// OpenSession (the admin's own record), AddSessionMember and
// JoinSessionAsMember. Existence is detected by probing the derived address
// before creating, so a re-registration never clobbers a live record.
func (l *Ledger) createMember(ctx context.Context, session *models.Session, addr models.Identity, name string, payer models.Identity) ([]models.Event, error) {
	if len(name) > models.MaxMemberNameLen {
		return nil, fmt.Errorf("member name exceeds %d bytes", models.MaxMemberNameLen)
	}
	rec := address.Member(session.SessionID, addr)
	exists, err := l.tx.Probe(ctx, rec)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrMemberAlreadyExists
	}

	if err := l.tx.Create(ctx, rec, memberRecordSize, payer); err != nil {
		return nil, err
	}
	member := &models.Member{
		SessionID: session.SessionID,
		Addr:      addr,
		Name:      name,
		IsAdmin:   addr == session.Admin,
	}
	data, err := codec.MarshalRecord(address.KindMember, member, memberRecordSize)
	if err != nil {
		return nil, err
	}
	if err := l.tx.Write(ctx, rec, data); err != nil {
		return nil, err
	}

	return []models.Event{models.MemberAddedEvent{
		SessionID: member.SessionID,
		Addr:      member.Addr,
		Name:      member.Name,
		IsAdmin:   member.IsAdmin,
	}}, nil
}

// AddSessionMember registers addr as a member. Admin only, open sessions
// only.
func (l *Ledger) AddSessionMember(ctx context.Context, caller models.Identity, args AddSessionMemberArgs) ([]models.Event, error) {
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

	events, err := l.createMember(ctx, session, args.Addr, args.Name, caller)
	if err != nil {
		return nil, err
	}
	slog.Info("Member added",
		"session_id", session.SessionID,
		"addr", args.Addr,
		"name", args.Name,
	)
	return events, nil
}

// JoinSessionAsMember registers the caller against the session's invitation
// token. The token must hash to the installed invitation hash.
func (l *Ledger) JoinSessionAsMember(ctx context.Context, caller models.Identity, args JoinSessionArgs) ([]models.Event, error) {
	session, err := l.readSession(ctx, args.SessionID)
	if err != nil {
		return nil, err
	}
	if !session.HasInvitation() {
		return nil, ErrMissingInvitationHash
	}
	if sha256.Sum256([]byte(args.Token)) != session.InvitationHash {
		return nil, ErrInvalidInvitationHash
	}
	if session.Status != models.SessionOpened {
		return nil, ErrSessionClosed
	}

	events, err := l.createMember(ctx, session, caller, args.Name, caller)
	if err != nil {
		return nil, err
	}
	slog.Info("Member joined via invitation",
		"session_id", session.SessionID,
		"addr", caller,
		"name", args.Name,
	)
	return events, nil
}

// DeleteSessionMember closes a membership record, refunding its storage to
// the admin. Admin only, closed sessions only.
func (l *Ledger) DeleteSessionMember(ctx context.Context, caller models.Identity, args DeleteSessionMemberArgs) ([]models.Event, error) {
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

	if err := l.tx.CloseRecord(ctx, address.Member(args.SessionID, args.Addr), caller); err != nil {
		return nil, err
	}

	slog.Info("Member deleted", "session_id", args.SessionID, "addr", args.Addr)
	return []models.Event{models.MemberDeletedEvent{
		SessionID: args.SessionID,
		Addr:      args.Addr,
	}}, nil
}
