package models

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// Identity is a 32-byte public key identifying a caller or a transfer
// counterparty. The zero value means "no identity" and never belongs to a
// real member.
type Identity [32]byte

// ZeroIdentity is the all-zero identity.
var ZeroIdentity Identity

// IsZero reports whether the identity is the all-zero value.
func (id Identity) IsZero() bool {
	return id == ZeroIdentity
}

// String returns the lowercase hex encoding of the identity.
func (id Identity) String() string {
	return hex.EncodeToString(id[:])
}

// MarshalJSON renders the identity as a hex string.
func (id Identity) MarshalJSON() ([]byte, error) {
	return json.Marshal(id.String())
}

// UnmarshalJSON parses a hex string into the identity.
func (id *Identity) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := IdentityFromHex(s)
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// IdentityFromHex parses a 64-character hex string into an Identity.
func IdentityFromHex(s string) (Identity, error) {
	var id Identity
	b, err := hex.DecodeString(s)
	if err != nil {
		return id, fmt.Errorf("invalid identity: %w", err)
	}
	if len(b) != len(id) {
		return id, fmt.Errorf("invalid identity: want %d bytes, got %d", len(id), len(b))
	}
	copy(id[:], b)
	return id, nil
}
