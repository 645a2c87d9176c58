// Package fil parses and formats FIL token amounts. Amounts are carried as
// abi.TokenAmount (attoFIL) everywhere else in the code base.
package fil

import (
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"

	"github.com/filecoin-project/go-state-types/abi"
	fbig "github.com/filecoin-project/go-state-types/big"
)

// Precision is the number of attoFIL in one FIL.
const Precision = 1_000_000_000_000_000_000

var precisionRat = new(big.Rat).SetInt(new(big.Int).SetUint64(Precision))

// Parse reads a decimal FIL amount such as "2.5", "2.5 FIL" or "42 attofil".
func Parse(s string) (abi.TokenAmount, error) {
	suffix := strings.TrimLeft(s, "-.1234567890")
	s = s[:len(s)-len(suffix)]

	atto := false
	switch strings.ToLower(strings.TrimSpace(suffix)) {
	case "", "fil":
	case "attofil", "afil":
		atto = true
	default:
		return abi.TokenAmount{}, fmt.Errorf("unrecognized suffix: %q", suffix)
	}

	if len(s) == 0 {
		return abi.TokenAmount{}, fmt.Errorf("empty amount")
	}
	if len(s) > 50 {
		return abi.TokenAmount{}, fmt.Errorf("string length too large: %d", len(s))
	}

	r, ok := new(big.Rat).SetString(s)
	if !ok {
		return abi.TokenAmount{}, fmt.Errorf("failed to parse %q as a decimal number", s)
	}
	if !atto {
		r = r.Mul(r, precisionRat)
	}
	if !r.IsInt() {
		return abi.TokenAmount{}, fmt.Errorf("invalid FIL value: %q", s)
	}

	return fbig.NewFromGo(new(big.Int).Set(r.Num())), nil
}

// MustParse is Parse for constants and tests.
func MustParse(s string) abi.TokenAmount {
	v, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return v
}

// FromFloat converts a float FIL value to attoFIL, rounding to the nearest
// attoFIL. NaN and infinities are rejected.
func FromFloat(f float64) (abi.TokenAmount, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return abi.TokenAmount{}, fmt.Errorf("invalid FIL value: %v", f)
	}
	// shortest decimal form, so 0.1 stays 0.1 and not its binary expansion
	r, ok := new(big.Rat).SetString(strconv.FormatFloat(f, 'f', -1, 64))
	if !ok {
		return abi.TokenAmount{}, fmt.Errorf("invalid FIL value: %v", f)
	}
	r.Mul(r, precisionRat)

	// round half away from zero
	num, den := r.Num(), r.Denom()
	q, m := new(big.Int).QuoRem(num, den, new(big.Int))
	if new(big.Int).Mul(new(big.Int).Abs(m), big.NewInt(2)).Cmp(den) >= 0 {
		if num.Sign() < 0 {
			q.Sub(q, big.NewInt(1))
		} else {
			q.Add(q, big.NewInt(1))
		}
	}
	return fbig.NewFromGo(q), nil
}

// Format renders an attoFIL amount as a decimal FIL string with trailing
// zeros removed, e.g. "2.5 FIL".
func Format(v abi.TokenAmount) string {
	return Unitless(v) + " FIL"
}

// Unitless is Format without the unit.
func Unitless(v abi.TokenAmount) string {
	if v.Int == nil || v.Sign() == 0 {
		return "0"
	}
	r := new(big.Rat).SetFrac(v.Int, precisionRat.Num())
	return strings.TrimRight(strings.TrimRight(r.FloatString(18), "0"), ".")
}

// Float converts to float64 for ratios and display only.
func Float(v abi.TokenAmount) float64 {
	if v.Int == nil {
		return 0
	}
	f, _ := new(big.Rat).SetFrac(v.Int, precisionRat.Num()).Float64()
	return f
}
