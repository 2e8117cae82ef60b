package address

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/soltab/soltab/internal/models"
)

func TestSeedEncoding(t *testing.T) {
	var id models.Identity
	id[0] = 0xAB

	memberSeed := []byte("member")
	memberSeed = binary.LittleEndian.AppendUint64(memberSeed, 7)
	memberSeed = append(memberSeed, id[:]...)

	expenseSeed := []byte("expense")
	expenseSeed = binary.LittleEndian.AppendUint64(expenseSeed, 7)
	expenseSeed = binary.LittleEndian.AppendUint16(expenseSeed, 3)

	tests := []struct {
		name string
		rec  Record
		want []byte
	}{
		{"global", Global(), []byte("global")},
		{"price update", PriceUpdate(), []byte("price_update")},
		{
			"session",
			Session(7),
			append([]byte("session"), 7, 0, 0, 0, 0, 0, 0, 0),
		},
		{"member", Member(7, id), memberSeed},
		{"expense", Expense(7, 3), expenseSeed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.rec.Seed(); !bytes.Equal(got, tt.want) {
				t.Errorf("Seed() = %x, want %x", got, tt.want)
			}
		})
	}
}

func TestDeriveDeterministic(t *testing.T) {
	var id models.Identity
	id[5] = 1

	a := Member(3, id).Derive()
	b := Member(3, id).Derive()
	if a != b {
		t.Errorf("same record derived two addresses: %x vs %x", a, b)
	}
}

func TestDeriveUnique(t *testing.T) {
	idA, idB := models.Identity{1}, models.Identity{2}

	records := []Record{
		Global(),
		PriceUpdate(),
		Session(0),
		Session(1),
		Member(0, idA),
		Member(0, idB),
		Member(1, idA),
		Expense(0, 0),
		Expense(0, 1),
		Expense(1, 0),
		Refund(0, 0), // same ids as Expense(0, 0), different kind
		Refund(0, 1),
	}

	seen := make(map[Address]Record, len(records))
	for _, rec := range records {
		addr := rec.Derive()
		if prev, ok := seen[addr]; ok {
			t.Errorf("%s and %s collide at %x", prev, rec, addr)
		}
		seen[addr] = rec
	}
}

func TestKindString(t *testing.T) {
	tests := []struct {
		kind Kind
		want string
	}{
		{KindGlobal, "global"},
		{KindSession, "session"},
		{KindMember, "member"},
		{KindExpense, "expense"},
		{KindRefund, "refund"},
		{KindPriceUpdate, "price_update"},
		{Kind(99), "kind(99)"},
	}
	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("Kind(%d).String() = %q, want %q", tt.kind, got, tt.want)
		}
	}
}
