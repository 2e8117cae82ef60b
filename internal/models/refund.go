package models

// Refund is a settled payment between two members. The session-currency
// amount is what the sender keyed in; AmountInLamports is what the host
// actually moved after oracle conversion.
type Refund struct {
	// SessionID is the session this refund belongs to.
	SessionID uint64

	// RefundID is the refund's id within the session, assigned from
	// Session.RefundsCount.
	RefundID uint16

	// Date is the creation time in Unix seconds, set by the handler.
	Date int64

	// From is the paying member.
	From Identity

	// To is the receiving member.
	To Identity

	// Amount is the refund amount in session currency, always > 0.
	Amount uint16

	// AmountInLamports is the base-unit amount transferred From -> To.
	AmountInLamports uint64
}

// RefundMaxSize is the worst-case borsh footprint of a Refund record.
const RefundMaxSize = 8 + 2 + 8 + 32 + 32 + 2 + 8
