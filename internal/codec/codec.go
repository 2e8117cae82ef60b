// Package codec frames ledger records and commands for storage and the wire.
//
// Records and command arguments are borsh-encoded. Every stored record is
// prefixed with an 8-byte kind discriminator and zero-padded to the fixed
// size reserved at create time, so in-place rewrites never grow the
// allocation. Commands are identified by an 8-byte discriminator derived
// from the command name, which is what callers sign over together with the
// encoded arguments.
package codec

import (
	"bytes"
	"crypto/sha256"
	"fmt"
	"reflect"

	"github.com/near/borsh-go"

	"github.com/soltab/soltab/internal/address"
)

// DiscriminatorLen is the length of record and command discriminators.
const DiscriminatorLen = 8

// KindDiscriminator returns the 8-byte discriminator stored ahead of every
// record of the given kind: sha256("account:<kind>")[:8].
func KindDiscriminator(kind address.Kind) [DiscriminatorLen]byte {
	sum := sha256.Sum256([]byte("account:" + kind.String()))
	return [DiscriminatorLen]byte(sum[:DiscriminatorLen])
}

// CommandDiscriminator returns the 8-byte discriminator of a command:
// sha256("command:<name>")[:8].
func CommandDiscriminator(name string) [DiscriminatorLen]byte {
	sum := sha256.Sum256([]byte("command:" + name))
	return [DiscriminatorLen]byte(sum[:DiscriminatorLen])
}

// MarshalRecord encodes v as borsh behind the kind discriminator and pads
// the result to size bytes. It fails if the encoding does not fit, which
// only happens when a handler violated a field bound.
func MarshalRecord(kind address.Kind, v any, size int) ([]byte, error) {
	// Handlers pass records by pointer. Borsh frames a pointer as an
	// optional value with a leading presence tag, which the read path never
	// consumes, so serialize the struct itself.
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		rv = rv.Elem()
	}
	payload, err := borsh.Serialize(rv.Interface())
	if err != nil {
		return nil, fmt.Errorf("serialize %s record: %w", kind, err)
	}
	disc := KindDiscriminator(kind)
	if DiscriminatorLen+len(payload) > size {
		return nil, fmt.Errorf("%s record overflows its %d-byte allocation: %d bytes",
			kind, size, DiscriminatorLen+len(payload))
	}
	buf := make([]byte, size)
	copy(buf, disc[:])
	copy(buf[DiscriminatorLen:], payload)
	return buf, nil
}

// UnmarshalRecord checks the kind discriminator and decodes the borsh
// payload into v. Trailing zero padding is ignored by construction: borsh
// decoding is driven by the shape of v.
func UnmarshalRecord(kind address.Kind, data []byte, v any) error {
	if len(data) < DiscriminatorLen {
		return fmt.Errorf("%s record too short: %d bytes", kind, len(data))
	}
	disc := KindDiscriminator(kind)
	if !bytes.Equal(data[:DiscriminatorLen], disc[:]) {
		return fmt.Errorf("record is not a %s record", kind)
	}
	if err := borsh.Deserialize(v, data[DiscriminatorLen:]); err != nil {
		return fmt.Errorf("deserialize %s record: %w", kind, err)
	}
	return nil
}

// MarshalArgs borsh-encodes command arguments.
func MarshalArgs(v any) ([]byte, error) {
	b, err := borsh.Serialize(v)
	if err != nil {
		return nil, fmt.Errorf("serialize args: %w", err)
	}
	return b, nil
}

// UnmarshalArgs decodes borsh-encoded command arguments into v.
func UnmarshalArgs(data []byte, v any) error {
	if err := borsh.Deserialize(v, data); err != nil {
		return fmt.Errorf("deserialize args: %w", err)
	}
	return nil
}
