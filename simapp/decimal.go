package simapp

import (
	"fmt"
	"strings"

	"github.com/holiman/uint256"
)

// decimals is the precision of fixed point values: ratios, prices and
// exchange balances are integers scaled by 10^18.
const decimals = 18

var oneDec = pow10(decimals)

func pow10(n uint64) *uint256.Int {
	return new(uint256.Int).Exp(uint256.NewInt(10), uint256.NewInt(n))
}

// parseInt parses a non-negative base-10 integer.
func parseInt(s string) (*uint256.Int, error) {
	if s == "" {
		return nil, fmt.Errorf("empty integer")
	}
	v, err := uint256.FromDecimal(s)
	if err != nil {
		return nil, fmt.Errorf("invalid integer %q: %w", s, err)
	}
	return v, nil
}

// parseSigned parses a base-10 integer with an optional leading minus.
func parseSigned(s string) (neg bool, v *uint256.Int, err error) {
	if rest, ok := strings.CutPrefix(s, "-"); ok {
		if v, err = parseInt(rest); err != nil {
			return false, nil, err
		}
		return !v.IsZero(), v, nil
	}
	v, err = parseInt(s)
	return false, v, err
}

// parseDec parses a decimal such as "12000" or "0.25" into an 18
// decimal fixed point integer.
func parseDec(s string) (*uint256.Int, error) {
	whole, frac, _ := strings.Cut(s, ".")
	if len(frac) > decimals {
		return nil, fmt.Errorf("decimal %q has more than %d fractional digits", s, decimals)
	}
	if whole == "" {
		whole = "0"
	}
	digits := strings.TrimLeft(whole+frac+strings.Repeat("0", decimals-len(frac)), "0")
	if digits == "" {
		return new(uint256.Int), nil
	}
	v, err := uint256.FromDecimal(digits)
	if err != nil {
		return nil, fmt.Errorf("invalid decimal %q: %w", s, err)
	}
	return v, nil
}

// formatDec renders an 18 decimal fixed point integer without trailing
// fractional zeros.
func formatDec(v *uint256.Int) string {
	q, r := new(uint256.Int), new(uint256.Int)
	q.DivMod(v, oneDec, r)
	if r.IsZero() {
		return q.Dec()
	}
	frac := r.Dec()
	frac = strings.Repeat("0", decimals-len(frac)) + frac
	return q.Dec() + "." + strings.TrimRight(frac, "0")
}

// mulDiv returns floor(a*b/d).
func mulDiv(a, b, d *uint256.Int) (*uint256.Int, error) {
	p, overflow := new(uint256.Int).MulOverflow(a, b)
	if overflow {
		return nil, fmt.Errorf("overflow multiplying %s by %s", a.Dec(), b.Dec())
	}
	return p.Div(p, d), nil
}

// mulDivCeil returns ceil(a*b/d).
func mulDivCeil(a, b, d *uint256.Int) (*uint256.Int, error) {
	p, overflow := new(uint256.Int).MulOverflow(a, b)
	if overflow {
		return nil, fmt.Errorf("overflow multiplying %s by %s", a.Dec(), b.Dec())
	}
	q, r := new(uint256.Int), new(uint256.Int)
	q.DivMod(p, d, r)
	if !r.IsZero() {
		q.AddUint64(q, 1)
	}
	return q, nil
}

// mulDec multiplies v by the fixed point ratio rate, rounding down.
func mulDec(v, rate *uint256.Int) (*uint256.Int, error) {
	return mulDiv(v, rate, oneDec)
}

// scaleExpo converts v x 10^expo into an 18 decimal fixed point
// integer.
func scaleExpo(v uint64, expo int32) (*uint256.Int, error) {
	shift := int64(decimals) + int64(expo)
	x := uint256.NewInt(v)
	switch {
	case shift >= 0:
		out, overflow := new(uint256.Int).MulOverflow(x, pow10(uint64(shift)))
		if overflow {
			return nil, fmt.Errorf("overflow scaling %d by 10^%d", v, expo)
		}
		return out, nil
	default:
		return x.Div(x, pow10(uint64(-shift))), nil
	}
}
