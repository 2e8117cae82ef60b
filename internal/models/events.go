package models

// Event is a notification emitted by a committed command. Each event carries
// the identifiers required to locate the affected record.
type Event interface {
	// EventName returns the stable event name.
	EventName() string
}

// SessionOpenedEvent signals a new session.
type SessionOpenedEvent struct {
	SessionID uint64 `json:"session_id"`
}

// SessionClosedEvent signals a session moving to Closed.
type SessionClosedEvent struct {
	SessionID uint64 `json:"session_id"`
}

// MemberAddedEvent signals a new membership, whether added by the admin or
// self-joined against an invitation.
type MemberAddedEvent struct {
	SessionID uint64   `json:"session_id"`
	Addr      Identity `json:"addr"`
	Name      string   `json:"name"`
	IsAdmin   bool     `json:"is_admin"`
}

// MemberDeletedEvent signals a membership record being closed.
type MemberDeletedEvent struct {
	SessionID uint64   `json:"session_id"`
	Addr      Identity `json:"addr"`
}

// ExpenseAddedEvent signals a new expense.
type ExpenseAddedEvent struct {
	SessionID uint64 `json:"session_id"`
	ExpenseID uint16 `json:"expense_id"`
}

// ExpenseUpdatedEvent signals an expense's name or amount changing.
type ExpenseUpdatedEvent struct {
	SessionID uint64 `json:"session_id"`
	ExpenseID uint16 `json:"expense_id"`
}

// ExpenseDeletedEvent signals an expense record being closed.
type ExpenseDeletedEvent struct {
	SessionID uint64 `json:"session_id"`
	ExpenseID uint16 `json:"expense_id"`
}

// ExpenseParticipantAddedEvent signals one identity joining an expense's
// participant set.
type ExpenseParticipantAddedEvent struct {
	SessionID    uint64   `json:"session_id"`
	ExpenseID    uint16   `json:"expense_id"`
	MemberPubkey Identity `json:"member_pubkey"`
}

// ExpenseParticipantRemovedEvent signals one identity leaving an expense's
// participant set.
type ExpenseParticipantRemovedEvent struct {
	SessionID    uint64   `json:"session_id"`
	ExpenseID    uint16   `json:"expense_id"`
	MemberPubkey Identity `json:"member_pubkey"`
}

// RefundAddedEvent signals a settled refund.
type RefundAddedEvent struct {
	SessionID uint64 `json:"session_id"`
	RefundID  uint16 `json:"refund_id"`
}

// RefundDeletedEvent signals a refund record being closed.
type RefundDeletedEvent struct {
	SessionID uint64 `json:"session_id"`
	RefundID  uint16 `json:"refund_id"`
}

func (SessionOpenedEvent) EventName() string             { return "SessionOpened" }
func (SessionClosedEvent) EventName() string             { return "SessionClosed" }
func (MemberAddedEvent) EventName() string               { return "MemberAdded" }
func (MemberDeletedEvent) EventName() string             { return "MemberDeleted" }
func (ExpenseAddedEvent) EventName() string              { return "ExpenseAdded" }
func (ExpenseUpdatedEvent) EventName() string            { return "ExpenseUpdated" }
func (ExpenseDeletedEvent) EventName() string            { return "ExpenseDeleted" }
func (ExpenseParticipantAddedEvent) EventName() string   { return "ExpenseParticipantAdded" }
func (ExpenseParticipantRemovedEvent) EventName() string { return "ExpenseParticipantRemoved" }
func (RefundAddedEvent) EventName() string               { return "RefundAdded" }
func (RefundDeletedEvent) EventName() string             { return "RefundDeleted" }
