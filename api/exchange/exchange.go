// Package exchange declares the spot market messages and queries of the
// chain's on-chain order book.
//
// Prices, quantities and subaccount balances are 18-decimal fixed point
// integers: "1000000000000000000" is 1.0. Bank amounts moved into a
// subaccount are scaled up by 10^18.
package exchange

import "github.com/blockberries/testtube/types"

const (
	MsgInstantSpotMarketLaunchTypeURL = "/injective.exchange.v1beta1.MsgInstantSpotMarketLaunch"
	MsgCreateSpotLimitOrderTypeURL    = "/injective.exchange.v1beta1.MsgCreateSpotLimitOrder"
	MsgCancelSpotOrderTypeURL         = "/injective.exchange.v1beta1.MsgCancelSpotOrder"
	MsgDepositTypeURL                 = "/injective.exchange.v1beta1.MsgDeposit"
	MsgWithdrawTypeURL                = "/injective.exchange.v1beta1.MsgWithdraw"

	QueryParamsPath             = "/injective.exchange.v1beta1.Query/QueryExchangeParams"
	QuerySpotMarketsPath        = "/injective.exchange.v1beta1.Query/SpotMarkets"
	QuerySpotMarketPath         = "/injective.exchange.v1beta1.Query/SpotMarket"
	QuerySpotOrderbookPath      = "/injective.exchange.v1beta1.Query/SpotOrderbook"
	QueryTraderSpotOrdersPath   = "/injective.exchange.v1beta1.Query/TraderSpotOrders"
	QuerySpotMidPriceAndTOBPath = "/injective.exchange.v1beta1.Query/SpotMidPriceAndTOB"
	QuerySubaccountDepositsPath = "/injective.exchange.v1beta1.Query/SubaccountDeposits"
	ParamsTypeURL               = "/injective.exchange.v1beta1.Params"

	EventSpotOrderFill = "injective.exchange.v1beta1.EventSpotFill"
)

type MarketStatus int32

const (
	MarketStatusUnspecified MarketStatus = 0
	MarketStatusActive      MarketStatus = 1
	MarketStatusPaused      MarketStatus = 2
	MarketStatusDemolished  MarketStatus = 3
	MarketStatusExpired     MarketStatus = 4
)

// ParseMarketStatus maps a status name such as "Active" to its value.
// Unknown names map to MarketStatusUnspecified.
func ParseMarketStatus(s string) MarketStatus {
	switch s {
	case "Active":
		return MarketStatusActive
	case "Paused":
		return MarketStatusPaused
	case "Demolished":
		return MarketStatusDemolished
	case "Expired":
		return MarketStatusExpired
	default:
		return MarketStatusUnspecified
	}
}

func (s MarketStatus) String() string {
	switch s {
	case MarketStatusActive:
		return "Active"
	case MarketStatusPaused:
		return "Paused"
	case MarketStatusDemolished:
		return "Demolished"
	case MarketStatusExpired:
		return "Expired"
	default:
		return "Unspecified"
	}
}

type OrderType int32

const (
	OrderTypeUnspecified OrderType = 0
	OrderTypeBuy         OrderType = 1
	OrderTypeSell        OrderType = 2
)

// IsBuy reports whether the order bids for the base asset.
func (t OrderType) IsBuy() bool { return t == OrderTypeBuy }

type Params struct {
	// Charged in the fee denom when a spot market is launched.
	SpotMarketInstantListingFee types.Coin `cramberry:"1"`
	DefaultSpotMakerFeeRate     string     `cramberry:"2"`
	DefaultSpotTakerFeeRate     string     `cramberry:"3"`
	RelayerFeeShareRate         string     `cramberry:"4"`
}

type SpotMarket struct {
	Ticker              string       `cramberry:"1"`
	BaseDenom           string       `cramberry:"2"`
	QuoteDenom          string       `cramberry:"3"`
	MakerFeeRate        string       `cramberry:"4"`
	TakerFeeRate        string       `cramberry:"5"`
	RelayerFeeShareRate string       `cramberry:"6"`
	MarketID            string       `cramberry:"7"`
	Status              MarketStatus `cramberry:"8"`
	MinPriceTickSize    string       `cramberry:"9"`
	MinQuantityTickSize string       `cramberry:"10"`
}

type MsgInstantSpotMarketLaunch struct {
	Sender              string `cramberry:"1"`
	Ticker              string `cramberry:"2"`
	BaseDenom           string `cramberry:"3"`
	QuoteDenom          string `cramberry:"4"`
	MinPriceTickSize    string `cramberry:"5"`
	MinQuantityTickSize string `cramberry:"6"`
}

type MsgInstantSpotMarketLaunchResponse struct{}

type OrderInfo struct {
	SubaccountID string `cramberry:"1"`
	FeeRecipient string `cramberry:"2"`
	Price        string `cramberry:"3"`
	Quantity     string `cramberry:"4"`
	Cid          string `cramberry:"5"`
}

type SpotOrder struct {
	MarketID     string    `cramberry:"1"`
	OrderInfo    OrderInfo `cramberry:"2"`
	OrderType    OrderType `cramberry:"3"`
	TriggerPrice string    `cramberry:"4"`
}

type MsgCreateSpotLimitOrder struct {
	Sender string    `cramberry:"1"`
	Order  SpotOrder `cramberry:"2"`
}

type MsgCreateSpotLimitOrderResponse struct {
	OrderHash string `cramberry:"1"`
	Cid       string `cramberry:"2"`
}

// MsgCancelSpotOrder cancels by OrderHash, or by Cid when OrderHash is
// empty.
type MsgCancelSpotOrder struct {
	Sender       string `cramberry:"1"`
	MarketID     string `cramberry:"2"`
	SubaccountID string `cramberry:"3"`
	OrderHash    string `cramberry:"4"`
	Cid          string `cramberry:"5"`
}

type MsgCancelSpotOrderResponse struct{}

type MsgDeposit struct {
	Sender       string     `cramberry:"1"`
	SubaccountID string     `cramberry:"2"`
	Amount       types.Coin `cramberry:"3"`
}

type MsgDepositResponse struct{}

type MsgWithdraw struct {
	Sender       string     `cramberry:"1"`
	SubaccountID string     `cramberry:"2"`
	Amount       types.Coin `cramberry:"3"`
}

type MsgWithdrawResponse struct{}

// TrimmedSpotLimitOrder is a resting order as reported by queries.
type TrimmedSpotLimitOrder struct {
	Price     string `cramberry:"1"`
	Quantity  string `cramberry:"2"`
	Fillable  string `cramberry:"3"`
	IsBuy     bool   `cramberry:"4"`
	OrderHash string `cramberry:"5"`
	Cid       string `cramberry:"6"`
}

type PriceLevel struct {
	Price    string `cramberry:"1"`
	Quantity string `cramberry:"2"`
}

type Deposit struct {
	AvailableBalance string `cramberry:"1"`
	TotalBalance     string `cramberry:"2"`
}

// DenomDeposit is one entry of a subaccount's deposits.
type DenomDeposit struct {
	Denom   string  `cramberry:"1"`
	Deposit Deposit `cramberry:"2"`
}

type QueryParamsRequest struct{}

type QueryParamsResponse struct {
	Params Params `cramberry:"1"`
}

// QuerySpotMarketsRequest filters by status name ("Active") and market
// ids. Empty filters match everything.
type QuerySpotMarketsRequest struct {
	Status    string   `cramberry:"1"`
	MarketIDs []string `cramberry:"2"`
}

type QuerySpotMarketsResponse struct {
	Markets []SpotMarket `cramberry:"1"`
}

type QuerySpotMarketRequest struct {
	MarketID string `cramberry:"1"`
}

type QuerySpotMarketResponse struct {
	Market SpotMarket `cramberry:"1"`
}

// QuerySpotOrderbookRequest returns at most Limit levels per side; zero
// returns every level.
type QuerySpotOrderbookRequest struct {
	MarketID string `cramberry:"1"`
	Limit    uint64 `cramberry:"2"`
}

type QuerySpotOrderbookResponse struct {
	BuysPriceLevel  []PriceLevel `cramberry:"1"`
	SellsPriceLevel []PriceLevel `cramberry:"2"`
}

type QueryTraderSpotOrdersRequest struct {
	MarketID     string `cramberry:"1"`
	SubaccountID string `cramberry:"2"`
}

type QueryTraderSpotOrdersResponse struct {
	Orders []TrimmedSpotLimitOrder `cramberry:"1"`
}

type QuerySpotMidPriceAndTOBRequest struct {
	MarketID string `cramberry:"1"`
}

// QuerySpotMidPriceAndTOBResponse fields are empty when the
// corresponding side of the book is empty.
type QuerySpotMidPriceAndTOBResponse struct {
	MidPrice      string `cramberry:"1"`
	BestBuyPrice  string `cramberry:"2"`
	BestSellPrice string `cramberry:"3"`
}

type QuerySubaccountDepositsRequest struct {
	SubaccountID string `cramberry:"1"`
}

type QuerySubaccountDepositsResponse struct {
	Deposits []DenomDeposit `cramberry:"1"`
}

// Deposit returns the deposit of denom, or a zero deposit.
func (r QuerySubaccountDepositsResponse) Deposit(denom string) Deposit {
	for _, d := range r.Deposits {
		if d.Denom == denom {
			return d.Deposit
		}
	}
	return Deposit{AvailableBalance: "0", TotalBalance: "0"}
}
