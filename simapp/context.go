package simapp

import (
	"log/slog"

	"github.com/blockberries/testtube/keys"
	"github.com/blockberries/testtube/types"
)

// Flat gas costs charged on top of the ante handler costs.
const (
	gasPerMsg   uint64 = 10000
	gasPerWrite uint64 = 2000
)

// gasMeter records consumption. A zero limit never runs out; callers
// check the limit at message boundaries.
type gasMeter struct {
	limit    uint64
	consumed uint64
}

func (g *gasMeter) consume(amount uint64) {
	g.consumed += amount
}

func (g *gasMeter) check(descriptor string) error {
	if g.limit > 0 && g.consumed > g.limit {
		return wrapf(errOutOfGas, "out of gas in location: %s; gasWanted: %d, gasUsed: %d", descriptor, g.limit, g.consumed)
	}
	return nil
}

// execMode distinguishes block execution from dry runs.
type execMode int

const (
	modeDeliver execMode = iota
	modeSimulate
)

// authorizer decides whether the signer of a message may act in the
// current transaction. msg is the decoded message.
type authorizer func(ctx *Context, signer, typeURL string, msg any) error

// Context carries the branch being executed together with its gas meter
// and emitted events.
type Context struct {
	s      *state
	gas    *gasMeter
	events []types.Event
	mode   execMode
	system bool
	router *router
	logger *slog.Logger
	auth   authorizer
}

func (app *App) newContext(s *state, mode execMode) *Context {
	return &Context{
		s:      s,
		gas:    &gasMeter{},
		mode:   mode,
		router: app.router,
		logger: app.logger,
	}
}

// branch returns a context over a deep copy of the state sharing the
// gas meter. Events are collected separately and merged by commit.
func (c *Context) branch() *Context {
	b := *c
	b.s = c.s.clone()
	b.events = nil
	return &b
}

// commit adopts the state and events of a branch.
func (c *Context) commit(b *Context) {
	*c.s = *b.s
	c.events = append(c.events, b.events...)
}

func (c *Context) emit(kind string, attrs ...string) {
	ev := types.Event{Kind: kind}
	for i := 0; i+1 < len(attrs); i += 2 {
		ev.Attributes = append(ev.Attributes, types.EventAttribute{Key: attrs[i], Value: attrs[i+1], Index: true})
	}
	c.events = append(c.events, ev)
}

// write charges one store write.
func (c *Context) write() { c.gas.consume(gasPerWrite) }

func (c *Context) moduleAddress(name string) string {
	return keys.ModuleAddress(c.s.AddressPrefix, name)
}

func (c *Context) validatorPrefix() string {
	return c.s.AddressPrefix + "valoper"
}

// decodeAddress validates a bech32 account address under the chain
// prefix.
func (c *Context) decodeAddress(addr string) ([]byte, error) {
	raw, err := keys.DecodeAddress(c.s.AddressPrefix, addr)
	if err != nil {
		return nil, wrapf(errInvalidAddress, "%v", err)
	}
	return raw, nil
}

func (c *Context) checkAddress(addr string) error {
	_, err := c.decodeAddress(addr)
	return err
}

// checkValoper validates an operator address and returns the account
// address that controls it.
func (c *Context) checkValoper(valoper string) (string, error) {
	acc, err := keys.ConvertPrefix(valoper, c.validatorPrefix(), c.s.AddressPrefix)
	if err != nil {
		return "", wrapf(errInvalidAddress, "invalid validator address: %v", err)
	}
	return acc, nil
}

func (c *Context) now() types.Timestamp { return c.s.Time }
