package models

// Bounds enforced on expense fields.
const (
	MaxExpenseNameLen = 20

	// MaxExpenseParticipants caps the participant list, owner included.
	MaxExpenseParticipants = 20
)

// Expense is an amount one member paid on behalf of a subset of the group.
type Expense struct {
	// SessionID is the session this expense belongs to.
	SessionID uint64

	// ExpenseID is the expense's id within the session, assigned from
	// Session.ExpensesCount.
	ExpenseID uint16

	// Name is the display name, at most 20 bytes.
	Name string

	// Date is the creation time in Unix seconds, set by the handler.
	Date int64

	// Owner is the member who recorded the expense. Only the owner may
	// update or delete it.
	Owner Identity

	// Amount is the expense amount in session currency, always > 0.
	Amount float32

	// Participants is the ordered set of members sharing the expense.
	// It always contains Owner and never exceeds MaxExpenseParticipants.
	Participants []Identity
}

// ExpenseMaxSize is the worst-case borsh footprint of an Expense record:
// id 8 + expense id 2 + name 4+20 + date 8 + owner 32 + amount 4 +
// participants 4 + 20*32.
const ExpenseMaxSize = 8 + 2 + (4 + MaxExpenseNameLen) + 8 + 32 + 4 + (4 + MaxExpenseParticipants*32)

// HasParticipant reports whether addr is already in the participant set.
func (e *Expense) HasParticipant(addr Identity) bool {
	for _, p := range e.Participants {
		if p == addr {
			return true
		}
	}
	return false
}
