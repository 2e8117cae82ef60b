package models

// SessionStatus is the lifecycle state of a session.
type SessionStatus uint8

const (
	// SessionOpened admits new members, expenses and refunds.
	SessionOpened SessionStatus = iota

	// SessionClosed admits only member deletion and refund deletion.
	SessionClosed
)

// Bounds enforced on session fields.
const (
	MaxSessionNameLen        = 20
	MaxSessionDescriptionLen = 80
)

// Session is a group of members with a shared ledger of expenses and refunds.
type Session struct {
	// SessionID is the session's id, assigned from Global.SessionCount.
	// Immutable.
	SessionID uint64

	// Name is the display name, at most 20 bytes.
	Name string

	// Description is free text, at most 80 bytes.
	Description string

	// Admin is the identity that opened the session. Immutable.
	Admin Identity

	// Status is Opened or Closed.
	Status SessionStatus

	// ExpensesCount is the id the next expense will receive. It is strictly
	// greater than every live expense id in the session.
	ExpensesCount uint16

	// RefundsCount is the id the next refund will receive.
	RefundsCount uint16

	// InvitationHash is the SHA-256 of the shared invitation token. The
	// all-zero value means no active invitation.
	InvitationHash [32]byte
}

// SessionMaxSize is the worst-case borsh footprint of a Session record:
// id 8 + name 4+20 + description 4+80 + admin 32 + status 1 + counters 2+2 +
// invitation hash 32.
const SessionMaxSize = 8 + (4 + MaxSessionNameLen) + (4 + MaxSessionDescriptionLen) + 32 + 1 + 2 + 2 + 32

// HasInvitation reports whether an invitation token hash is set.
func (s *Session) HasInvitation() bool {
	return s.InvitationHash != [32]byte{}
}
