package oracle

import (
	"errors"
	"math"
	"testing"
)

func TestConvertToLamports(t *testing.T) {
	tests := []struct {
		name    string
		amount  float32
		price   Price
		want    uint64
		wantErr error
	}{
		{
			// 100 at 6.9 USD/SOL: 10^9 * 10000 / 690000 / 100.
			name:   "fallback price reference value",
			amount: 100,
			price:  Price{Price: 69, Exponent: 4},
			want:   144927,
		},
		{
			name:   "one cent",
			amount: 0.01,
			price:  Price{Price: 69, Exponent: 4},
			want:   14,
		},
		{
			name:   "zero amount",
			amount: 0,
			price:  Price{Price: 69, Exponent: 4},
			want:   0,
		},
		{
			// 150 USD/SOL expressed with a negative exponent:
			// price 150e8, exponent -8 scales back down to 150.
			name:   "negative exponent",
			amount: 3,
			price:  Price{Price: 15_000_000_000, Exponent: -8},
			want:   20_000_000,
		},
		{
			name:   "half cent rounds",
			amount: 0.005,
			price:  Price{Price: 1, Exponent: 0},
			want:   10_000_000,
		},
		{
			name:    "negative amount",
			amount:  -1,
			price:   Price{Price: 69, Exponent: 4},
			wantErr: ErrOverflow,
		},
		{
			name:    "NaN amount",
			amount:  float32(math.NaN()),
			price:   Price{Price: 69, Exponent: 4},
			wantErr: ErrOverflow,
		},
		{
			name:    "infinite amount",
			amount:  float32(math.Inf(1)),
			price:   Price{Price: 69, Exponent: 4},
			wantErr: ErrOverflow,
		},
		{
			name:    "zero price",
			amount:  1,
			price:   Price{Price: 0, Exponent: 0},
			wantErr: ErrDivisionByZero,
		},
		{
			name:    "negative price",
			amount:  1,
			price:   Price{Price: -1, Exponent: 0},
			wantErr: ErrOverflow,
		},
		{
			// Price scales below 1 once the exponent is applied.
			name:    "price rounds to zero",
			amount:  1,
			price:   Price{Price: 9, Exponent: -1},
			wantErr: ErrDivisionByZero,
		},
		{
			name:    "exponent out of range",
			amount:  1,
			price:   Price{Price: 1, Exponent: 20},
			wantErr: ErrOverflow,
		},
		{
			name:    "scaled price overflows",
			amount:  1,
			price:   Price{Price: math.MaxInt64, Exponent: 4},
			wantErr: ErrOverflow,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ConvertToLamports(tt.amount, tt.price)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ConvertToLamports failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("lamports = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestConvertToLamportsMonotonic(t *testing.T) {
	price := Price{Price: 69, Exponent: 4}
	var prev uint64
	for _, amount := range []float32{0.01, 0.5, 1, 10, 100, 1000, 65535} {
		got, err := ConvertToLamports(amount, price)
		if err != nil {
			t.Fatalf("ConvertToLamports(%v) failed: %v", amount, err)
		}
		if got < prev {
			t.Errorf("ConvertToLamports(%v) = %d, below previous %d", amount, got, prev)
		}
		prev = got
	}
}

func TestFeedIDBytes(t *testing.T) {
	id := FeedIDBytes()
	if id[0] != 0xEF || id[31] != 0x6D {
		t.Errorf("feed id bytes = %x, want to start ef and end 6d", id)
	}
}
