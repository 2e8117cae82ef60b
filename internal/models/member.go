package models

// MaxMemberNameLen bounds a member's display name.
const MaxMemberNameLen = 40

// Member records one identity's membership in one session. SessionID and
// Addr are redundant with the record's address but kept in the payload so
// the record is self-describing.
type Member struct {
	// SessionID is the session this membership belongs to. Immutable.
	SessionID uint64

	// Addr is the member's identity. Immutable.
	Addr Identity

	// Name is the display name, at most 40 bytes.
	Name string

	// IsAdmin is true iff Addr equals the session's admin.
	IsAdmin bool
}

// MemberMaxSize is the worst-case borsh footprint of a Member record.
const MemberMaxSize = 8 + 32 + (4 + MaxMemberNameLen) + 1
