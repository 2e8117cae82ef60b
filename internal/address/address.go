// Package address derives the storage key of every ledger record from its
// typed seed tuple.
//
// Each record kind fixes a constant byte prefix; the remaining seed
// components are the record's logical identifiers, integers in little-endian
// order and identities as raw bytes. The seed encoding is injective (the
// prefixes are distinct and every component has a fixed width), so two
// distinct records of the same kind can never share an address. The 32-byte
// address is the SHA-256 of the seed, which keeps keys fixed-size and lets
// any external client compute the address of any record without a
// round-trip.
package address

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"

	"github.com/soltab/soltab/internal/models"
)

// Address is the 32-byte storage key of a record.
type Address [32]byte

// Kind enumerates the record families the store holds.
type Kind uint8

const (
	KindGlobal Kind = iota
	KindSession
	KindMember
	KindExpense
	KindRefund
	KindPriceUpdate
)

// String returns the kind's seed prefix.
func (k Kind) String() string {
	switch k {
	case KindGlobal:
		return "global"
	case KindSession:
		return "session"
	case KindMember:
		return "member"
	case KindExpense:
		return "expense"
	case KindRefund:
		return "refund"
	case KindPriceUpdate:
		return "price_update"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Record identifies one ledger record: a kind plus the logical ids the kind
// requires. Use the constructors below; a zero Record is the Global
// singleton.
type Record struct {
	kind      Kind
	sessionID uint64
	subID     uint16
	identity  models.Identity
}

// Global addresses the singleton counter record.
func Global() Record {
	return Record{kind: KindGlobal}
}

// Session addresses the session record with the given id.
func Session(sessionID uint64) Record {
	return Record{kind: KindSession, sessionID: sessionID}
}

// Member addresses the membership of addr in session sessionID.
func Member(sessionID uint64, addr models.Identity) Record {
	return Record{kind: KindMember, sessionID: sessionID, identity: addr}
}

// Expense addresses expense expenseID within session sessionID.
func Expense(sessionID uint64, expenseID uint16) Record {
	return Record{kind: KindExpense, sessionID: sessionID, subID: expenseID}
}

// Refund addresses refund refundID within session sessionID.
func Refund(sessionID uint64, refundID uint16) Record {
	return Record{kind: KindRefund, sessionID: sessionID, subID: refundID}
}

// PriceUpdate addresses the adjunct oracle record the host maintains.
func PriceUpdate() Record {
	return Record{kind: KindPriceUpdate}
}

// Kind returns the record's kind.
func (r Record) Kind() Kind {
	return r.kind
}

// Seed returns the record's seed tuple encoded as bytes. The encoding is
// injective: prefix, then little-endian ids, then raw identity bytes.
func (r Record) Seed() []byte {
	seed := []byte(r.kind.String())
	switch r.kind {
	case KindGlobal, KindPriceUpdate:
	case KindSession:
		seed = binary.LittleEndian.AppendUint64(seed, r.sessionID)
	case KindMember:
		seed = binary.LittleEndian.AppendUint64(seed, r.sessionID)
		seed = append(seed, r.identity[:]...)
	case KindExpense, KindRefund:
		seed = binary.LittleEndian.AppendUint64(seed, r.sessionID)
		seed = binary.LittleEndian.AppendUint16(seed, r.subID)
	}
	return seed
}

// Derive returns the record's storage address: SHA-256 of its seed. Pure and
// deterministic, so address uniqueness follows from seed injectivity.
func (r Record) Derive() Address {
	return Address(sha256.Sum256(r.Seed()))
}

// String renders the record id for logs.
func (r Record) String() string {
	switch r.kind {
	case KindGlobal, KindPriceUpdate:
		return r.kind.String()
	case KindSession:
		return fmt.Sprintf("session/%d", r.sessionID)
	case KindMember:
		return fmt.Sprintf("member/%d/%s", r.sessionID, r.identity)
	default:
		return fmt.Sprintf("%s/%d/%d", r.kind, r.sessionID, r.subID)
	}
}
