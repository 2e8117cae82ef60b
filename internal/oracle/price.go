// Package oracle validates price updates delivered by the host and converts
// session-currency amounts to lamports.
package oracle

import (
	"encoding/hex"
	"errors"
	"math"
	"math/bits"

	"github.com/shopspring/decimal"
)

const (
	// LamportsPerSol is the number of base units per SOL.
	LamportsPerSol uint64 = 1_000_000_000

	// MaxPriceAge is the staleness bound on oracle updates, in seconds.
	MaxPriceAge = 60

	// FeedID is the Pyth SOL/USD price feed, fixed at compile time.
	FeedID = "0xef0d8b6fda2ceba41da15d4095d1da392a0d2f8ed0c6c7bc0f4cfac8c280b56d"
)

var (
	// ErrPriceUnavailable is returned when the oracle record is absent,
	// malformed, or stale.
	ErrPriceUnavailable = errors.New("oracle price unavailable")

	// ErrOverflow signals overflow in the conversion arithmetic.
	ErrOverflow = errors.New("arithmetic overflow")

	// ErrDivisionByZero signals a zero or non-positive scaled price.
	ErrDivisionByZero = errors.New("division by zero")
)

// FeedIDBytes returns the feed id as raw bytes.
func FeedIDBytes() [32]byte {
	var id [32]byte
	b, err := hex.DecodeString(FeedID[2:])
	if err != nil || len(b) != len(id) {
		panic("oracle: bad feed id constant")
	}
	copy(id[:], b)
	return id
}

// Price is one oracle observation. The price of one SOL in USD is
// Price * 10^Exponent.
type Price struct {
	Price       int64
	Conf        uint64
	Exponent    int32
	PublishTime int64
}

// FallbackPrice is the development-mode stub substituted when no valid
// oracle update is available and the fallback is enabled.
var FallbackPrice = Price{Price: 69, Conf: 0, Exponent: 4, PublishTime: 0}

// ConvertToLamports converts a session-currency amount to lamports at the
// given price. All arithmetic is overflow-checked.
//
//	cents    = round(amount * 100)
//	scaled   = exponent < 0 ? price / 10^|exponent| : price * 10^|exponent|
//	lamports = LamportsPerSol * cents / scaled / 100
func ConvertToLamports(amount float32, p Price) (uint64, error) {
	f := float64(amount)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, ErrOverflow
	}

	// Exact decimal rounding, no float drift on .x5 amounts.
	centsDec := decimal.NewFromFloat32(amount).Mul(decimal.NewFromInt(100)).Round(0)
	if centsDec.IsNegative() || !centsDec.BigInt().IsUint64() {
		return 0, ErrOverflow
	}
	cents := centsDec.BigInt().Uint64()

	exp, err := pow10(p.Exponent)
	if err != nil {
		return 0, err
	}

	var scaled int64
	if p.Exponent < 0 {
		scaled = p.Price / int64(exp)
	} else {
		hi, lo := bits.Mul64(uint64(p.Price), exp)
		if p.Price < 0 || hi != 0 || lo > math.MaxInt64 {
			return 0, ErrOverflow
		}
		scaled = int64(lo)
	}
	if scaled <= 0 {
		return 0, ErrDivisionByZero
	}

	hi, lo := bits.Mul64(LamportsPerSol, cents)
	if hi != 0 {
		return 0, ErrOverflow
	}
	return lo / uint64(scaled) / 100, nil
}

// pow10 returns 10^|exponent| as u64, or ErrOverflow when it does not fit.
func pow10(exponent int32) (uint64, error) {
	n := exponent
	if n < 0 {
		n = -n
	}
	if n > 19 {
		return 0, ErrOverflow
	}
	out := uint64(1)
	for i := int32(0); i < n; i++ {
		out *= 10
	}
	return out, nil
}
