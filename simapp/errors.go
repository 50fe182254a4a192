package simapp

import (
	"errors"
	"fmt"
)

// codedError is an error with a stable (codespace, code) identity that
// is reported verbatim in transaction and query results.
type codedError struct {
	codespace string
	code      uint32
	desc      string
}

func (e *codedError) Error() string { return e.desc }

// Is matches any codedError with the same identity, so that wrapped
// registrations compare equal.
func (e *codedError) Is(target error) bool {
	t, ok := target.(*codedError)
	return ok && t.codespace == e.codespace && t.code == e.code
}

func register(codespace string, code uint32, desc string) *codedError {
	return &codedError{codespace: codespace, code: code, desc: desc}
}

const (
	sdkCodespace = "sdk"
	// codeInternal is reported for errors that carry no registration.
	codeInternal uint32 = 1
)

var (
	errTxDecode          = register(sdkCodespace, 2, "tx parse error")
	errUnauthorized      = register(sdkCodespace, 4, "unauthorized")
	errInsufficientFunds = register(sdkCodespace, 5, "insufficient funds")
	errUnknownRequest    = register(sdkCodespace, 6, "unknown request")
	errInvalidAddress    = register(sdkCodespace, 7, "invalid address")
	errInvalidPubKey     = register(sdkCodespace, 8, "invalid pubkey")
	errUnknownAddress    = register(sdkCodespace, 9, "unknown address")
	errInvalidCoins      = register(sdkCodespace, 10, "invalid coins")
	errOutOfGas          = register(sdkCodespace, 11, "out of gas")
	errMemoTooLarge      = register(sdkCodespace, 12, "memo too large")
	errInsufficientFee   = register(sdkCodespace, 13, "insufficient fee")
	errNoSignatures      = register(sdkCodespace, 15, "no signatures supplied")
	errInvalidRequest    = register(sdkCodespace, 18, "invalid request")
	errInvalidType       = register(sdkCodespace, 29, "invalid type")
	errWrongSequence     = register(sdkCodespace, 32, "incorrect account sequence")
	errNotFound          = register(sdkCodespace, 38, "not found")

	errAuthzNotFound = register("authz", 2, "authorization not found")
	errAuthzExpired  = register("authz", 3, "authorization expired")
	errAuthzDenied   = register("authz", 4, "authorization denied")

	errGovUnknownProposal  = register("gov", 2, "unknown proposal")
	errGovInactive         = register("gov", 3, "inactive proposal")
	errGovInvalidContent   = register("gov", 5, "invalid proposal content")
	errGovInvalidVote      = register("gov", 9, "invalid vote option")
	errGovInvalidSigner    = register("gov", 11, "expected gov account as only signer for proposal message")
	errGovInvalidProposal  = register("gov", 12, "invalid proposal messages")
	errGovInvalidAuthority = register("gov", 14, "invalid authority")

	errOracleUnauthorized = register("oracle", 2, "unauthorized relayer")
	errOracleBadPrice     = register("oracle", 3, "invalid price")
	errOracleNotFound     = register("oracle", 4, "oracle price not found")
	errOracleMismatch     = register("oracle", 5, "mismatched base, quote and price lengths")

	errStakingNoValidator   = register("staking", 3, "validator does not exist")
	errStakingValidatorDup  = register("staking", 2, "validator already exist for this operator address")
	errStakingNoDelegation  = register("staking", 19, "no delegation for (address, validator) tuple")
	errStakingBadDenom      = register("staking", 32, "invalid coin denomination")
	errStakingSelfRedeleg   = register("staking", 29, "cannot redelegate to the same validator")
	errStakingNoUnbonding   = register("staking", 20, "no unbonding delegation found")
	errStakingBadCommission = register("staking", 10, "commission rate out of range")

	errTokenFactoryDenomExists  = register("tokenfactory", 2, "attempting to create a denom that already exists")
	errTokenFactoryUnauthorized = register("tokenfactory", 3, "unauthorized account")
	errTokenFactoryInvalidDenom = register("tokenfactory", 4, "invalid denom")

	errExchangeMarketExists   = register("exchange", 8, "spot market exists")
	errExchangeMarketNotFound = register("exchange", 6, "spot market not found")
	errExchangeInactive       = register("exchange", 12, "market inactive")
	errExchangeBadSubaccount  = register("exchange", 14, "invalid subaccount id")
	errExchangeInsufficient   = register("exchange", 2, "insufficient deposit")
	errExchangeBadOrder       = register("exchange", 20, "invalid order")
	errExchangeOrderNotFound  = register("exchange", 41, "order does not exist")
	errExchangeDuplicateCid   = register("exchange", 87, "client order id already exists")
	errExchangeDenomNotFound  = register("exchange", 5, "denom does not exist")

	errAuctionBidRound = register("auction", 2, "invalid bid round")
	errAuctionBidLow   = register("auction", 3, "bid must exceed the current highest bid")
	errAuctionBidDenom = register("auction", 4, "invalid bid denom")

	errSystemSubspace = register("system", 2, "unknown param subspace")
)

// wrapf annotates err with formatted context, keeping its identity.
func wrapf(err error, format string, args ...any) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// codeOf extracts the reported identity of err. Unregistered errors are
// reported as internal errors of the undefined codespace.
func codeOf(err error) (codespace string, code uint32, log string) {
	var ce *codedError
	if errors.As(err, &ce) {
		return ce.codespace, ce.code, err.Error()
	}
	return "undefined", codeInternal, err.Error()
}
