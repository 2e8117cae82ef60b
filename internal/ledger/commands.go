package ledger

import "github.com/soltab/soltab/internal/models"

// Command names. The runtime derives each command's 8-byte discriminator
// from these (see internal/codec).
const (
	CmdInitGlobal                = "init_global"
	CmdOpenSession               = "open_session"
	CmdCloseSession              = "close_session"
	CmdSetSessionTokenHash       = "set_session_token_hash"
	CmdAddSessionMember          = "add_session_member"
	CmdJoinSessionAsMember       = "join_session_as_member"
	CmdDeleteSessionMember       = "delete_session_member"
	CmdAddExpense                = "add_expense"
	CmdAddExpenseParticipants    = "add_expense_participants"
	CmdRemoveExpenseParticipants = "remove_expense_participants"
	CmdUpdateExpense             = "update_expense"
	CmdDeleteExpense             = "delete_expense"
	CmdAddRefund                 = "add_refund"
	CmdDeleteRefund              = "delete_refund"
)

// Argument tuples, borsh-encoded on the wire in field order.

type OpenSessionArgs struct {
	Name        string
	Description string
	MemberName  string
}

type CloseSessionArgs struct {
	SessionID uint64
}

type SetSessionTokenHashArgs struct {
	SessionID uint64
	Hash      [32]byte
}

type AddSessionMemberArgs struct {
	SessionID uint64
	Addr      models.Identity
	Name      string
}

type JoinSessionArgs struct {
	SessionID uint64
	Name      string
	Token     string
}

type DeleteSessionMemberArgs struct {
	SessionID uint64
	Addr      models.Identity
}

type AddExpenseArgs struct {
	SessionID    uint64
	Name         string
	Amount       float32
	Participants []models.Identity
}

type ExpenseParticipantsArgs struct {
	SessionID    uint64
	ExpenseID    uint16
	Participants []models.Identity
}

type UpdateExpenseArgs struct {
	SessionID uint64
	ExpenseID uint16
	Name      string
	Amount    float32
}

type DeleteExpenseArgs struct {
	SessionID uint64
	ExpenseID uint16
}

type AddRefundArgs struct {
	SessionID uint64
	To        models.Identity
	Amount    uint16
}

type DeleteRefundArgs struct {
	SessionID uint64
	RefundID  uint16
}
