// Package models defines the persisted record types of the soltab ledger.
//
// # Records
//
// Five record kinds live in the store:
//   - Global: singleton counter of sessions ever opened
//   - Session: a group of members with a shared ledger
//   - Member: one identity's membership in one session
//   - Expense: an amount one member paid on behalf of a subset of the group
//   - Refund: a settled payment between two members, with the lamports moved
//
// Every record is addressed deterministically from its logical identifiers
// (see internal/address) and stored in a fixed-size allocation so that later
// in-place updates never need to grow the allocation. The worst-case borsh
// footprint of each kind is declared next to its struct.
//
// # Events
//
// Each state transition emits one or more events carrying the identifiers
// needed to locate the affected record. Events are values, not persisted
// state; external indexers consume them.
//
// # Design principles
//
//  1. Records are plain data: constructors assign fields, handlers enforce
//     invariants (internal/ledger).
//  2. Field order is the wire order. Borsh serializes struct fields in
//     declaration order, so reordering a field is a breaking layout change.
//  3. Identities are raw 32-byte public keys, never strings, so that record
//     addresses can be rederived from record contents.
package models
