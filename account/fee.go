package account

import (
	"fmt"
	"math"

	"github.com/holiman/uint256"

	"github.com/blockberries/testtube/types"
)

// FeeSetting is the fee policy of a signer: Auto or Custom.
type FeeSetting interface {
	isFeeSetting()
}

// Auto estimates gas by simulation and scales the estimate by
// GasAdjustment. The fee is the resulting gas limit times GasPrice.
type Auto struct {
	GasPrice      types.Coin
	GasAdjustment float64
}

// Custom passes an explicit fee and gas limit through unchanged.
// Simulation is skipped.
type Custom struct {
	Amount   types.Coin
	GasLimit uint64
}

func (Auto) isFeeSetting()   {}
func (Custom) isFeeSetting() {}

// GasLimit scales a simulated gas estimate by the adjustment, rounding
// up.
func (a Auto) GasLimit(estimate uint64) uint64 {
	adj := a.GasAdjustment
	if adj <= 0 {
		adj = 1
	}
	return uint64(math.Ceil(float64(estimate) * adj))
}

// Fee returns GasPrice x gasLimit in the gas price denom.
func (a Auto) Fee(gasLimit uint64) (types.Coin, error) {
	price, err := a.GasPrice.AmountInt()
	if err != nil {
		return types.Coin{}, err
	}
	total, overflow := new(uint256.Int).MulOverflow(price, uint256.NewInt(gasLimit))
	if overflow {
		return types.Coin{}, fmt.Errorf("fee overflows: %s x %d", a.GasPrice, gasLimit)
	}
	return types.NewCoinFromInt(a.GasPrice.Denom, total), nil
}
