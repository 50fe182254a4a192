package types

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/holiman/uint256"
)

var (
	denomPattern = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9/:._-]{2,127}$`)
	coinPattern  = regexp.MustCompile(`^([0-9]+)([a-zA-Z][a-zA-Z0-9/:._-]{2,127})$`)
)

// Coin is an amount of a single denomination. Amount is a base-10
// integer string so values above 2^64 survive the wire.
type Coin struct {
	Denom  string `cramberry:"1"`
	Amount string `cramberry:"2"`
}

// NewCoin builds a coin from a uint64 amount.
func NewCoin(denom string, amount uint64) Coin {
	return Coin{Denom: denom, Amount: fmt.Sprintf("%d", amount)}
}

// NewCoinFromInt builds a coin from a 256-bit amount.
func NewCoinFromInt(denom string, amount *uint256.Int) Coin {
	return Coin{Denom: denom, Amount: amount.Dec()}
}

// MustNewCoin builds a coin from a decimal amount string and panics if
// the amount does not parse. Intended for test fixtures.
func MustNewCoin(denom, amount string) Coin {
	c := Coin{Denom: denom, Amount: amount}
	if err := c.Validate(); err != nil {
		panic(err)
	}
	return c
}

// ParseCoin parses the compact form "100inj".
func ParseCoin(s string) (Coin, error) {
	m := coinPattern.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return Coin{}, fmt.Errorf("invalid coin expression %q", s)
	}
	c := Coin{Denom: m[2], Amount: m[1]}
	if err := c.Validate(); err != nil {
		return Coin{}, err
	}
	return c, nil
}

// AmountInt parses the amount.
func (c Coin) AmountInt() (*uint256.Int, error) {
	if c.Amount == "" {
		return new(uint256.Int), nil
	}
	v, err := uint256.FromDecimal(c.Amount)
	if err != nil {
		return nil, fmt.Errorf("invalid amount %q for %s: %w", c.Amount, c.Denom, err)
	}
	return v, nil
}

// Validate checks the denom syntax and that the amount parses.
func (c Coin) Validate() error {
	if err := ValidateDenom(c.Denom); err != nil {
		return err
	}
	_, err := c.AmountInt()
	return err
}

// IsZero reports whether the amount is zero or unparseable.
func (c Coin) IsZero() bool {
	v, err := c.AmountInt()
	return err != nil || v.IsZero()
}

func (c Coin) String() string {
	return c.Amount + c.Denom
}

// ValidateDenom checks a denomination against the accepted syntax.
func ValidateDenom(denom string) error {
	if !denomPattern.MatchString(denom) {
		return fmt.Errorf("invalid denom %q", denom)
	}
	return nil
}

// Coins is a list of coins. Operations that produce Coins return them
// sorted by denom.
type Coins []Coin

// AmountOf returns the summed amount of denom.
func (cs Coins) AmountOf(denom string) *uint256.Int {
	total := new(uint256.Int)
	for _, c := range cs {
		if c.Denom != denom {
			continue
		}
		if v, err := c.AmountInt(); err == nil {
			total.Add(total, v)
		}
	}
	return total
}

// Validate validates every coin and rejects duplicate denoms.
func (cs Coins) Validate() error {
	seen := make(map[string]struct{}, len(cs))
	for _, c := range cs {
		if err := c.Validate(); err != nil {
			return err
		}
		if _, dup := seen[c.Denom]; dup {
			return fmt.Errorf("duplicate denom %q", c.Denom)
		}
		seen[c.Denom] = struct{}{}
	}
	return nil
}

// Sorted returns a copy sorted by denom.
func (cs Coins) Sorted() Coins {
	out := make(Coins, len(cs))
	copy(out, cs)
	sort.Slice(out, func(i, j int) bool { return out[i].Denom < out[j].Denom })
	return out
}

func (cs Coins) String() string {
	parts := make([]string, len(cs))
	for i, c := range cs {
		parts[i] = c.String()
	}
	return strings.Join(parts, ",")
}
