package simapp

import (
	"crypto/sha256"
	"encoding/json"

	"github.com/holiman/uint256"
	"github.com/jinzhu/copier"

	"github.com/blockberries/testtube/api/auction"
	"github.com/blockberries/testtube/api/auth"
	"github.com/blockberries/testtube/api/exchange"
	"github.com/blockberries/testtube/api/gov"
	"github.com/blockberries/testtube/api/oracle"
	"github.com/blockberries/testtube/api/staking"
	"github.com/blockberries/testtube/api/tokenfactory"
	"github.com/blockberries/testtube/types"
)

// account is the auth record of an address.
type account struct {
	Number   uint64 `json:"number"`
	Sequence uint64 `json:"sequence"`
	PubKey   []byte `json:"pub_key,omitempty"`
}

type params struct {
	Auth         auth.Params         `json:"auth"`
	Gov          gov.Params          `json:"gov"`
	Oracle       oracle.Params       `json:"oracle"`
	Staking      staking.Params      `json:"staking"`
	TokenFactory tokenfactory.Params `json:"tokenfactory"`
	Exchange     exchange.Params     `json:"exchange"`
	Auction      auction.Params      `json:"auction"`
}

type grant struct {
	Granter       string           `json:"granter"`
	Grantee       string           `json:"grantee"`
	MsgTypeURL    string           `json:"msg_type_url"`
	Authorization types.Any        `json:"authorization"`
	Expiration    *types.Timestamp `json:"expiration,omitempty"`
}

type proposal struct {
	gov.Proposal
	// Legacy v1beta1 content, nil for v1 proposals.
	Content  *types.Any                `json:"content,omitempty"`
	Votes    map[string]gov.VoteOption `json:"votes"`
	Deposits map[string][]types.Coin   `json:"deposits"`
}

type priceFeed struct {
	Base     string            `json:"base"`
	Quote    string            `json:"quote"`
	Price    oracle.PriceState `json:"price"`
	Relayers []string          `json:"relayers"`
}

type validator struct {
	Operator          string              `json:"operator"`
	ConsensusPubKey   []byte              `json:"consensus_pub_key"`
	Tokens            uint256.Int         `json:"tokens"`
	Description       staking.Description `json:"description"`
	CommissionRate    string              `json:"commission_rate"`
	MinSelfDelegation string              `json:"min_self_delegation"`
	Jailed            bool                `json:"jailed"`
}

type unbonding struct {
	Delegator      string          `json:"delegator"`
	Validator      string          `json:"validator"`
	CreationHeight int64           `json:"creation_height"`
	CompletionTime types.Timestamp `json:"completion_time"`
	Initial        uint256.Int     `json:"initial"`
	Balance        uint256.Int     `json:"balance"`
}

type denomMetadata struct {
	Creator  string `json:"creator"`
	Admin    string `json:"admin"`
	Name     string `json:"name"`
	Symbol   string `json:"symbol"`
	Decimals uint32 `json:"decimals"`
}

type spotOrder struct {
	Hash         string      `json:"hash"`
	Seq          uint64      `json:"seq"`
	MarketID     string      `json:"market_id"`
	SubaccountID string      `json:"subaccount_id"`
	FeeRecipient string      `json:"fee_recipient"`
	Cid          string      `json:"cid"`
	Buy          bool        `json:"buy"`
	Price        uint256.Int `json:"price"`
	Quantity     uint256.Int `json:"quantity"`
	Fillable     uint256.Int `json:"fillable"`
	// Funds still reserved by the order in the hold denom.
	Hold uint256.Int `json:"hold"`
}

type deposit struct {
	Available uint256.Int `json:"available"`
	Total     uint256.Int `json:"total"`
}

type auctionState struct {
	Round      uint64                    `json:"round"`
	EndingTime int64                     `json:"ending_time"`
	HighestBid *auction.Bid              `json:"highest_bid,omitempty"`
	LastResult auction.LastAuctionResult `json:"last_result"`
}

// state holds the entire application state. Every field is exported so
// that it deep copies and serializes deterministically.
type state struct {
	ChainID       string          `json:"chain_id"`
	Height        uint64          `json:"height"`
	Time          types.Timestamp `json:"time"`
	FeeDenom      string          `json:"fee_denom"`
	AddressPrefix string          `json:"address_prefix"`

	NextAccountNumber uint64                            `json:"next_account_number"`
	Accounts          map[string]account                `json:"accounts"`
	Balances          map[string]map[string]uint256.Int `json:"balances"`
	Supply            map[string]uint256.Int            `json:"supply"`
	Params            params                            `json:"params"`

	// Keyed by grantKey.
	Grants map[string]grant `json:"grants"`

	NextProposalID uint64              `json:"next_proposal_id"`
	Proposals      map[uint64]proposal `json:"proposals"`

	PriceFeeds map[string]priceFeed             `json:"price_feeds"`
	PythPrices map[string]oracle.PythPriceState `json:"pyth_prices"`

	Validators  map[string]validator              `json:"validators"`
	Delegations map[string]map[string]uint256.Int `json:"delegations"`
	Unbondings  []unbonding                       `json:"unbondings"`
	// Consensus power last reported per operator address.
	LastPowers map[string]uint64 `json:"last_powers"`

	Denoms map[string]denomMetadata `json:"denoms"`

	Markets       map[string]exchange.SpotMarket `json:"markets"`
	Orders        map[string]spotOrder           `json:"orders"`
	OrderSeq      uint64                         `json:"order_seq"`
	Deposits      map[string]map[string]deposit  `json:"deposits"`
	ExchangeFees  map[string]uint256.Int         `json:"exchange_fees"`
	SubaccountSeq map[string]uint64              `json:"subaccount_seq"`

	Auction auctionState `json:"auction"`
}

func newState() *state {
	s := &state{}
	s.ensureMaps()
	return s
}

// ensureMaps replaces nil maps, which a deep copy of an empty map may
// produce.
func (s *state) ensureMaps() {
	if s.Accounts == nil {
		s.Accounts = make(map[string]account)
	}
	if s.Balances == nil {
		s.Balances = make(map[string]map[string]uint256.Int)
	}
	if s.Supply == nil {
		s.Supply = make(map[string]uint256.Int)
	}
	if s.Grants == nil {
		s.Grants = make(map[string]grant)
	}
	if s.Proposals == nil {
		s.Proposals = make(map[uint64]proposal)
	}
	if s.PriceFeeds == nil {
		s.PriceFeeds = make(map[string]priceFeed)
	}
	if s.PythPrices == nil {
		s.PythPrices = make(map[string]oracle.PythPriceState)
	}
	if s.Validators == nil {
		s.Validators = make(map[string]validator)
	}
	if s.Delegations == nil {
		s.Delegations = make(map[string]map[string]uint256.Int)
	}
	if s.LastPowers == nil {
		s.LastPowers = make(map[string]uint64)
	}
	if s.Denoms == nil {
		s.Denoms = make(map[string]denomMetadata)
	}
	if s.Markets == nil {
		s.Markets = make(map[string]exchange.SpotMarket)
	}
	if s.Orders == nil {
		s.Orders = make(map[string]spotOrder)
	}
	if s.Deposits == nil {
		s.Deposits = make(map[string]map[string]deposit)
	}
	if s.ExchangeFees == nil {
		s.ExchangeFees = make(map[string]uint256.Int)
	}
	if s.SubaccountSeq == nil {
		s.SubaccountSeq = make(map[string]uint64)
	}
}

// clone returns an independent deep copy. Blocks, transactions and
// message batches each run on a clone that is kept or dropped whole.
// The copy may turn nil slices into empty ones; compare by length.
func (s *state) clone() *state {
	c := &state{}
	if err := copier.CopyWithOption(c, s, copier.Option{DeepCopy: true}); err != nil {
		panic(err) // state holds only copyable types
	}
	c.ensureMaps()
	return c
}

// appHash computes a deterministic SHA256 of the serialized state.
func (s *state) appHash() types.AppHash {
	data, _ := json.Marshal(s) // state is always serializable
	return types.AppHash(sha256.Sum256(data))
}
