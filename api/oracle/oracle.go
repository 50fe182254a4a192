// Package oracle declares the price oracle messages, governance
// proposals and queries of the chain.
package oracle

const (
	MsgRelayPriceFeedPriceTypeURL = "/injective.oracle.v1beta1.MsgRelayPriceFeedPrice"
	MsgRelayPythPricesTypeURL     = "/injective.oracle.v1beta1.MsgRelayPythPrices"
	MsgUpdateParamsTypeURL        = "/injective.oracle.v1beta1.MsgUpdateParams"

	GrantPriceFeederPrivilegeProposalTypeURL  = "/injective.oracle.v1beta1.GrantPriceFeederPrivilegeProposal"
	RevokePriceFeederPrivilegeProposalTypeURL = "/injective.oracle.v1beta1.RevokePriceFeederPrivilegeProposal"

	QueryParamsPath            = "/injective.oracle.v1beta1.Query/Params"
	QueryOraclePricePath       = "/injective.oracle.v1beta1.Query/OraclePrice"
	QueryPythPricePath         = "/injective.oracle.v1beta1.Query/PythPrice"
	QueryOracleModuleStatePath = "/injective.oracle.v1beta1.Query/OracleModuleState"
	ParamsTypeURL              = "/injective.oracle.v1beta1.Params"
)

type OracleType int32

const (
	OracleTypeUnspecified OracleType = 0
	OracleTypeBand        OracleType = 1
	OracleTypePriceFeed   OracleType = 2
	OracleTypePyth        OracleType = 9
)

type Params struct {
	PythContract string `cramberry:"1"`
}

// MsgRelayPriceFeedPrice relays one price per (Base[i], Quote[i])
// pair. The sender must be a registered relayer of each pair.
type MsgRelayPriceFeedPrice struct {
	Sender string   `cramberry:"1"`
	Base   []string `cramberry:"2"`
	Quote  []string `cramberry:"3"`
	Price  []string `cramberry:"4"`
}

type MsgRelayPriceFeedPriceResponse struct{}

// PriceAttestation is a Pyth price scaled by 10^Expo.
type PriceAttestation struct {
	PriceID     string `cramberry:"1"`
	Price       int64  `cramberry:"2"`
	Conf        uint64 `cramberry:"3"`
	Expo        int32  `cramberry:"4"`
	EmaPrice    int64  `cramberry:"5"`
	EmaConf     uint64 `cramberry:"6"`
	EmaExpo     int32  `cramberry:"7"`
	PublishTime int64  `cramberry:"8"`
}

// MsgRelayPythPrices is accepted only from the configured Pyth
// contract.
type MsgRelayPythPrices struct {
	Sender            string             `cramberry:"1"`
	PriceAttestations []PriceAttestation `cramberry:"2"`
}

type MsgRelayPythPricesResponse struct{}

// MsgUpdateParams is executable only by the gov module account.
type MsgUpdateParams struct {
	Authority string `cramberry:"1"`
	Params    Params `cramberry:"2"`
}

type MsgUpdateParamsResponse struct{}

// GrantPriceFeederPrivilegeProposal registers Relayers for the
// (Base, Quote) price feed.
type GrantPriceFeederPrivilegeProposal struct {
	Title       string   `cramberry:"1"`
	Description string   `cramberry:"2"`
	Base        string   `cramberry:"3"`
	Quote       string   `cramberry:"4"`
	Relayers    []string `cramberry:"5"`
}

type RevokePriceFeederPrivilegeProposal struct {
	Title       string   `cramberry:"1"`
	Description string   `cramberry:"2"`
	Base        string   `cramberry:"3"`
	Quote       string   `cramberry:"4"`
	Relayers    []string `cramberry:"5"`
}

// PriceState is a price with its cumulative value and update time.
// Prices are 18-decimal fixed point integers, except price feed
// prices which are stored as relayed.
type PriceState struct {
	Price           string `cramberry:"1"`
	CumulativePrice string `cramberry:"2"`
	Timestamp       int64  `cramberry:"3"`
}

type PriceFeedState struct {
	Base       string     `cramberry:"1"`
	Quote      string     `cramberry:"2"`
	PriceState PriceState `cramberry:"3"`
	Relayers   []string   `cramberry:"4"`
}

type PythPriceState struct {
	PriceID     string      `cramberry:"1"`
	EmaPrice    string      `cramberry:"2"`
	EmaConf     string      `cramberry:"3"`
	Conf        string      `cramberry:"4"`
	PublishTime uint64      `cramberry:"5"`
	PriceState  *PriceState `cramberry:"6"`
}

// PricePairState is the price of Base in terms of Quote.
type PricePairState struct {
	PairPrice      string `cramberry:"1"`
	BasePrice      string `cramberry:"2"`
	QuotePrice     string `cramberry:"3"`
	BaseTimestamp  int64  `cramberry:"4"`
	QuoteTimestamp int64  `cramberry:"5"`
}

type QueryParamsRequest struct{}

type QueryParamsResponse struct {
	Params Params `cramberry:"1"`
}

type QueryOraclePriceRequest struct {
	OracleType OracleType `cramberry:"1"`
	Base       string     `cramberry:"2"`
	Quote      string     `cramberry:"3"`
}

type QueryOraclePriceResponse struct {
	PricePairState *PricePairState `cramberry:"1"`
}

type QueryPythPriceRequest struct {
	PriceID string `cramberry:"1"`
}

type QueryPythPriceResponse struct {
	PriceState *PythPriceState `cramberry:"1"`
}

type QueryModuleStateRequest struct{}

type GenesisState struct {
	Params          Params           `cramberry:"1"`
	PriceFeedStates []PriceFeedState `cramberry:"2"`
	PythPriceStates []PythPriceState `cramberry:"3"`
}

type QueryModuleStateResponse struct {
	State GenesisState `cramberry:"1"`
}
