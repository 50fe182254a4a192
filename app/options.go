package app

import (
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/blockberries/testtube"
	"github.com/blockberries/testtube/types"
)

// Defaults of a new TestApp.
const (
	DefaultChainID           = "injective-777"
	DefaultFeeDenom          = "inj"
	DefaultAddressPrefix     = "inj"
	DefaultGasAdjustment     = 1.2
	DefaultGasPrice          = "500000000"
	DefaultEngineConstraint  = ">= 1.0.0, < 2.0.0"
	DefaultBlockInterval     = 3 * time.Second
	defaultValidatorBalance  = "100000000000000000000000"
	defaultValidatorTokens   = "100000000000000000000"
	defaultValidatorMoniker  = "validator-0"
	instrumentationName      = "github.com/blockberries/testtube/app"
	placeholderSignatureSize = 72
)

type options struct {
	chainID          string
	feeDenom         string
	addressPrefix    string
	gasAdjustment    float64
	gasPrice         types.Coin
	genesisTime      time.Time
	blockInterval    time.Duration
	increasingTime   bool
	engineConstraint string
	logger           *slog.Logger
	tracer           trace.Tracer
	conn             testtube.Connection
}

func defaultOptions() options {
	return options{
		chainID:          DefaultChainID,
		feeDenom:         DefaultFeeDenom,
		addressPrefix:    DefaultAddressPrefix,
		gasAdjustment:    DefaultGasAdjustment,
		gasPrice:         types.MustNewCoin(DefaultFeeDenom, DefaultGasPrice),
		genesisTime:      time.Now().UTC().Truncate(time.Second),
		blockInterval:    DefaultBlockInterval,
		engineConstraint: DefaultEngineConstraint,
	}
}

// Option configures a TestApp.
type Option func(*options)

// WithChainID sets the chain id signed into every transaction.
func WithChainID(id string) Option {
	return func(o *options) { o.chainID = id }
}

// WithFeeDenom sets the denom fees and staking use. The default gas
// price follows the denom unless WithGasPrice is also given.
func WithFeeDenom(denom string) Option {
	return func(o *options) {
		if o.gasPrice.Denom == o.feeDenom {
			o.gasPrice.Denom = denom
		}
		o.feeDenom = denom
	}
}

// WithAddressPrefix sets the bech32 prefix of account addresses.
func WithAddressPrefix(prefix string) Option {
	return func(o *options) { o.addressPrefix = prefix }
}

// WithGasAdjustment sets the multiplier applied to simulated gas for
// accounts created by the app.
func WithGasAdjustment(adj float64) Option {
	return func(o *options) { o.gasAdjustment = adj }
}

// WithGasPrice sets the gas price of accounts created by the app.
func WithGasPrice(price types.Coin) Option {
	return func(o *options) { o.gasPrice = price }
}

// WithGenesisTime sets the time of the genesis block. The default is
// the current time truncated to the second.
func WithGenesisTime(t time.Time) Option {
	return func(o *options) { o.genesisTime = t.UTC() }
}

// WithBlockInterval makes every produced block advance the chain time
// by d. Zero keeps the time still between blocks.
func WithBlockInterval(d time.Duration) Option {
	return func(o *options) {
		o.blockInterval = d
		o.increasingTime = d > 0
	}
}

// WithEngineConstraint sets the version constraint the engine must
// satisfy at handshake, in hashicorp/go-version syntax.
func WithEngineConstraint(c string) Option {
	return func(o *options) { o.engineConstraint = c }
}

// WithLogger sets the logger. Nil means slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithTracer sets the tracer of runner spans.
func WithTracer(t trace.Tracer) Option {
	return func(o *options) { o.tracer = t }
}

// WithConnection runs the app against an existing engine connection,
// for example a gRPC client. The app takes ownership and closes it.
func WithConnection(c testtube.Connection) Option {
	return func(o *options) { o.conn = c }
}
