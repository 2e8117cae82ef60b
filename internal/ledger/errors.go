package ledger

import "fmt"

// Error is a command failure with a stable numeric code. Codes start at
// 6000 and follow declaration order, so they never change when the message
// wording does.
type Error struct {
	Code uint32
	Name string
	msg  string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s (%d): %s", e.Name, e.Code, e.msg)
}

func newError(code uint32, name, msg string) *Error {
	return &Error{Code: code, Name: name, msg: msg}
}

var (
	ErrOverflow                           = newError(6000, "Overflow", "overflow when performing arithmetic operations")
	ErrDivisionByZero                     = newError(6001, "DivisionByZero", "division by zero when converting amount to lamports")
	ErrSessionNameTooLong                 = newError(6002, "SessionNameTooLong", "session's name can't exceed 20 characters")
	ErrSessionDescriptionTooLong          = newError(6003, "SessionDescriptionTooLong", "session's description can't exceed 80 characters")
	ErrForbidden                          = newError(6004, "Forbidden", "only session administrator is granted")
	ErrSessionClosed                      = newError(6005, "SessionClosed", "session is closed")
	ErrSessionNotClosed                   = newError(6006, "SessionNotClosed", "session is not closed")
	ErrMemberAlreadyExists                = newError(6007, "MemberAlreadyExists", "member already exists")
	ErrMissingInvitationHash              = newError(6008, "MissingInvitationHash", "missing invitation link hash")
	ErrInvalidInvitationHash              = newError(6009, "InvalidInvitationHash", "invalid invitation link hash")
	ErrExpenseAmountMustBeGreaterThanZero = newError(6010, "ExpenseAmountMustBeGreaterThanZero", "expense amount must be greater than zero")
	ErrRefundAmountMustBeGreaterThanZero  = newError(6011, "RefundAmountMustBeGreaterThanZero", "refund amount must be greater than zero")
	ErrExpenseNameTooLong                 = newError(6012, "ExpenseNameTooLong", "expense's name can't exceed 20 characters")
	ErrMaxParticipantsReached             = newError(6013, "MaxParticipantsReached", "expense cannot have more than 20 participants")
	ErrNotSessionMember                   = newError(6014, "NotSessionMember", "only session members can do this")
	ErrNotExpenseOwner                    = newError(6015, "NotExpenseOwner", "only expense owner can update or delete expense")
	ErrParticipantNotMember               = newError(6016, "ParticipantNotMember", "only members can be added as participants")
	ErrCannotRemoveExpenseOwner           = newError(6017, "CannotRemoveExpenseOwner", "expense owner cannot be removed from participants")
	ErrPriceUnavailable                   = newError(6018, "PriceUnavailable", "no usable oracle price")
)
