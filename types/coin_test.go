package types_test

import (
	"testing"

	"github.com/blockberries/testtube/types"
)

func TestParseCoin(t *testing.T) {
	c, err := types.ParseCoin("500000000inj")
	if err != nil {
		t.Fatalf("ParseCoin: %v", err)
	}
	if c.Denom != "inj" || c.Amount != "500000000" {
		t.Fatalf("got %+v", c)
	}
	if _, err := types.ParseCoin("inj"); err == nil {
		t.Fatalf("expected error for missing amount")
	}
	if _, err := types.ParseCoin("10x"); err == nil {
		t.Fatalf("expected error for short denom")
	}
}

func TestCoin_AmountAboveUint64(t *testing.T) {
	c := types.MustNewCoin("inj", "100000000000000000000000")
	v, err := c.AmountInt()
	if err != nil {
		t.Fatalf("AmountInt: %v", err)
	}
	if v.Dec() != "100000000000000000000000" {
		t.Fatalf("got %s", v.Dec())
	}
	if c.IsZero() {
		t.Fatalf("coin reported zero")
	}
}

func TestCoins_ValidateAndAmountOf(t *testing.T) {
	cs := types.Coins{types.NewCoin("usdt", 5), types.NewCoin("inj", 7), types.NewCoin("inj", 3)}
	if err := cs.Validate(); err == nil {
		t.Fatalf("duplicate denom accepted")
	}
	if got := cs.AmountOf("inj").Uint64(); got != 10 {
		t.Fatalf("AmountOf = %d", got)
	}
	sorted := cs[:2].Sorted()
	if sorted[0].Denom != "inj" || cs[0].Denom != "usdt" {
		t.Fatalf("Sorted must copy and order: %v / %v", sorted, cs)
	}
	if err := (types.Coin{Denom: "inj", Amount: "12a"}).Validate(); err == nil {
		t.Fatalf("malformed amount accepted")
	}
}
