package simapp

import (
	"fmt"
	"time"

	"github.com/blockberries/testtube/api/auction"
	"github.com/blockberries/testtube/api/auth"
	"github.com/blockberries/testtube/api/exchange"
	"github.com/blockberries/testtube/api/gov"
	"github.com/blockberries/testtube/api/oracle"
	"github.com/blockberries/testtube/api/staking"
	"github.com/blockberries/testtube/api/system"
	"github.com/blockberries/testtube/api/tokenfactory"
	"github.com/blockberries/testtube/codec"
	"github.com/blockberries/testtube/keys"
	"github.com/blockberries/testtube/types"
)

// Genesis defaults.
const (
	DefaultFeeDenom      = "inj"
	DefaultAddressPrefix = "inj"

	defaultVotingPeriod     = 10 * time.Second
	defaultMaxDepositPeriod = 48 * time.Hour
	defaultUnbondingTime    = 21 * 24 * time.Hour
	defaultCommissionRate   = "100000000000000000"
)

// defaultParams are the module parameters of a fresh chain. Amounts in
// the fee denom have 18 decimals.
func defaultParams(feeDenom string) params {
	return params{
		Auth: auth.Params{
			MaxMemoCharacters: 256,
			TxSizeCostPerByte: 10,
			SigVerifyCost:     1000,
		},
		Gov: gov.Params{
			MinDeposit:       []types.Coin{types.NewCoin(feeDenom, 10000000)},
			MaxDepositPeriod: types.DurationFromGo(defaultMaxDepositPeriod),
			VotingPeriod:     types.DurationFromGo(defaultVotingPeriod),
			Quorum:           "334000000000000000",
			Threshold:        "500000000000000000",
			VetoThreshold:    "334000000000000000",
		},
		Staking: staking.Params{
			UnbondingTime:     types.DurationFromGo(defaultUnbondingTime),
			MaxValidators:     100,
			MaxEntries:        7,
			BondDenom:         feeDenom,
			MinCommissionRate: "0",
		},
		TokenFactory: tokenfactory.Params{
			DenomCreationFee: []types.Coin{types.MustNewCoin(feeDenom, "10000000000000000000")},
		},
		Exchange: exchange.Params{
			SpotMarketInstantListingFee: types.MustNewCoin(feeDenom, "1000000000000000000000"),
			DefaultSpotMakerFeeRate:     "-100000000000000",
			DefaultSpotTakerFeeRate:     "1000000000000000",
			RelayerFeeShareRate:         "400000000000000000",
		},
		Auction: auction.Params{
			AuctionPeriod:           604800,
			MinNextBidIncrementRate: "2500000000000000",
		},
		Oracle: oracle.Params{},
	}
}

// initGenesis builds the state of a fresh chain from the genesis
// document. AppState carries a cramberry-encoded system.GenesisState.
func (app *App) initGenesis(doc types.GenesisDoc) (*state, error) {
	var gen system.GenesisState
	if len(doc.AppState) > 0 {
		if err := codec.Unmarshal(doc.AppState, &gen); err != nil {
			return nil, fmt.Errorf("decode app state: %w", err)
		}
	}
	if gen.FeeDenom == "" {
		gen.FeeDenom = DefaultFeeDenom
	}
	if gen.AddressPrefix == "" {
		gen.AddressPrefix = DefaultAddressPrefix
	}
	if err := types.ValidateDenom(gen.FeeDenom); err != nil {
		return nil, err
	}

	s := newState()
	s.ChainID = doc.ChainID
	if doc.InitialHeight > 1 {
		s.Height = doc.InitialHeight - 1
	}
	s.Time = doc.GenesisTime
	s.FeeDenom = gen.FeeDenom
	s.AddressPrefix = gen.AddressPrefix
	s.Params = defaultParams(gen.FeeDenom)
	s.NextProposalID = 1
	s.Auction = auctionState{
		EndingTime: doc.GenesisTime.Seconds + s.Params.Auction.AuctionPeriod,
		LastResult: auction.LastAuctionResult{Amount: types.NewCoin(gen.FeeDenom, 100000)},
	}

	ctx := app.newContext(s, modeDeliver)
	for _, name := range moduleAccountNames {
		ctx.ensureAccount(ctx.moduleAddress(name))
	}
	for _, acc := range gen.Accounts {
		if err := ctx.checkAddress(acc.Address); err != nil {
			return nil, err
		}
		if err := ctx.fund(acc.Address, acc.Coins); err != nil {
			return nil, fmt.Errorf("fund %s: %w", acc.Address, err)
		}
	}
	for i, v := range gen.Validators {
		if err := initGenesisValidator(ctx, v); err != nil {
			return nil, fmt.Errorf("validator %d: %w", i, err)
		}
	}
	// Record the genesis powers so the first block reports no change.
	validatorUpdates(ctx)
	return s, nil
}

func initGenesisValidator(ctx *Context, v system.GenesisValidator) error {
	pub, err := keys.ParsePubKey(v.OperatorPubKey)
	if err != nil {
		return err
	}
	raw, err := pub.Address()
	if err != nil {
		return err
	}
	operator, err := keys.EncodeAddress(ctx.s.AddressPrefix, raw)
	if err != nil {
		return err
	}
	valoper, err := keys.EncodeAddress(ctx.validatorPrefix(), raw)
	if err != nil {
		return err
	}
	tokens, err := parseInt(v.Tokens)
	if err != nil {
		return err
	}
	if len(v.Balance) > 0 {
		if err := ctx.fund(operator, v.Balance); err != nil {
			return err
		}
	}
	ctx.mint(bondedPoolName, ctx.s.Params.Staking.BondDenom, tokens)
	ctx.s.Validators[valoper] = validator{
		Operator:          valoper,
		ConsensusPubKey:   pub,
		Tokens:            *tokens,
		Description:       staking.Description{Moniker: v.Moniker},
		CommissionRate:    defaultCommissionRate,
		MinSelfDelegation: "1",
	}
	ctx.addDelegation(operator, valoper, tokens)
	return nil
}
