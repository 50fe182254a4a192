package simapp

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blockberries/testtube/api/auth"
	"github.com/blockberries/testtube/api/bank"
	"github.com/blockberries/testtube/api/system"
	"github.com/blockberries/testtube/codec"
	"github.com/blockberries/testtube/keys"
	"github.com/blockberries/testtube/types"
)

const testChainID = "ante-test-1"

// testChain drives an App through the engine interface with one funded
// account.
type testChain struct {
	t      *testing.T
	app    *App
	height uint64
	time   types.Timestamp
	key    *keys.PrivKey
	addr   string
}

func newTestChain(t *testing.T) *testChain {
	t.Helper()
	key, err := keys.Generate()
	require.NoError(t, err)
	addr, err := key.PubKey().Bech32Address(DefaultAddressPrefix)
	require.NoError(t, err)

	c := &testChain{
		t:    t,
		app:  New(),
		time: types.TimeToTimestamp(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)),
		key:  key,
		addr: addr,
	}
	appState := codec.MustMarshal(system.GenesisState{
		Accounts: []system.GenesisAccount{{
			Address: addr,
			Coins:   []types.Coin{types.NewCoin(DefaultFeeDenom, 1_000_000), types.NewCoin("usdt", 50)},
		}},
	})
	resp, err := c.app.Handshake(context.Background(), types.HandshakeRequest{
		Genesis: &types.GenesisDoc{ChainID: testChainID, GenesisTime: c.time, InitialHeight: 1, AppState: appState},
	})
	require.NoError(t, err)
	assert.Equal(t, Version, resp.Version)
	return c
}

func (c *testChain) sendMsg(to string, coins ...types.Coin) types.Any {
	a, err := codec.Pack(bank.MsgSendTypeURL, bank.MsgSend{FromAddress: c.addr, ToAddress: to, Amount: coins})
	require.NoError(c.t, err)
	return a
}

func (c *testChain) account() auth.BaseAccount {
	res := c.query(auth.QueryAccountPath, auth.QueryAccountRequest{Address: c.addr})
	acc, err := codec.Decode[auth.QueryAccountResponse](res.Value)
	require.NoError(c.t, err)
	return acc.Account
}

func (c *testChain) balance(addr, denom string) string {
	res := c.query(bank.QueryBalancePath, bank.QueryBalanceRequest{Address: addr, Denom: denom})
	b, err := codec.Decode[bank.QueryBalanceResponse](res.Value)
	require.NoError(c.t, err)
	return b.Balance.Amount
}

func (c *testChain) query(path string, req any) types.StateQueryResult {
	c.t.Helper()
	res, err := c.app.Query(context.Background(), types.StateQuery{Path: types.QueryPath(path), Data: codec.MustMarshal(req)})
	require.NoError(c.t, err)
	require.True(c.t, res.OK(), "query %s: %s", path, res.Info)
	return res
}

// sign builds a signed transaction at seq. A zero chainID signs for the
// test chain.
func (c *testChain) sign(seq uint64, fee types.Fee, chainID string, msgs ...types.Any) types.Tx {
	c.t.Helper()
	if chainID == "" {
		chainID = testChainID
	}
	body := types.TxBody{Messages: msgs}
	authInfo := types.AuthInfo{
		Signer: types.SignerInfo{PubKey: c.key.PubKey().Proto(), Sequence: seq},
		Fee:    fee,
	}
	doc := codec.MustMarshal(types.SignDoc{ChainID: chainID, AccountNumber: c.account().AccountNumber, Body: body, AuthInfo: authInfo})
	return codec.MustMarshal(types.TxEnvelope{
		Kind:      types.TxKindSigned,
		Body:      body,
		AuthInfo:  authInfo,
		Signature: c.key.Sign(doc),
	})
}

func (c *testChain) deliver(txs ...types.Tx) []types.TxOutcome {
	c.t.Helper()
	ctx := context.Background()
	c.height++
	c.time.Seconds++
	out, err := c.app.ExecuteBlock(ctx, types.FinalizedBlock{Height: c.height, Time: c.time, Txs: txs})
	require.NoError(c.t, err)
	_, err = c.app.Commit(ctx)
	require.NoError(c.t, err)
	require.Len(c.t, out.TxOutcomes, len(txs))
	return out.TxOutcomes
}

func fee(amount uint64, gas uint64) types.Fee {
	return types.Fee{Amount: []types.Coin{types.NewCoin(DefaultFeeDenom, amount)}, GasLimit: gas}
}

func TestAnte_WrongSequenceLeavesStateUntouched(t *testing.T) {
	c := newTestChain(t)
	to := keys.ModuleAddress(DefaultAddressPrefix, "receiver")

	out := c.deliver(c.sign(3, fee(100, 200_000), "", c.sendMsg(to, types.NewCoin("usdt", 1))))
	assert.Equal(t, sdkCodespace, out[0].Codespace)
	assert.Equal(t, uint32(32), out[0].Code)
	assert.Contains(t, out[0].Info, "expected 0, got 3")

	assert.Equal(t, uint64(0), c.account().Sequence)
	assert.Equal(t, "1000000", c.balance(c.addr, DefaultFeeDenom))
}

func TestAnte_FirstTxOfClonedAccountRecordsPubKey(t *testing.T) {
	s := newState()
	s.Accounts["inj1fresh"] = account{Number: 1}
	cloned := s.clone()
	assert.Empty(t, cloned.Accounts["inj1fresh"].PubKey)

	c := newTestChain(t)
	assert.Empty(t, c.account().PubKey)
	to := keys.ModuleAddress(DefaultAddressPrefix, "receiver")

	out := c.deliver(c.sign(0, fee(100, 200_000), "", c.sendMsg(to, types.NewCoin("usdt", 1))))
	require.True(t, out[0].OK(), out[0].Info)
	assert.Equal(t, []byte(c.key.PubKey()), c.account().PubKey)

	out = c.deliver(c.sign(1, fee(100, 200_000), "", c.sendMsg(to, types.NewCoin("usdt", 1))))
	require.True(t, out[0].OK(), out[0].Info)
	assert.Equal(t, "2", c.balance(to, "usdt"))
}

func TestAnte_MessageFailureKeepsFeeAndSequence(t *testing.T) {
	c := newTestChain(t)
	to := keys.ModuleAddress(DefaultAddressPrefix, "receiver")

	out := c.deliver(c.sign(0, fee(100, 200_000), "", c.sendMsg(to, types.NewCoin("usdt", 51))))
	assert.Equal(t, uint32(5), out[0].Code)
	assert.Contains(t, out[0].Info, "message index: 0")
	assert.Empty(t, out[0].Data)

	assert.Equal(t, uint64(1), c.account().Sequence)
	assert.Equal(t, "999900", c.balance(c.addr, DefaultFeeDenom))
	assert.Equal(t, "50", c.balance(c.addr, "usdt"))
}

func TestAnte_RejectsBadSignatureAndFees(t *testing.T) {
	c := newTestChain(t)
	to := keys.ModuleAddress(DefaultAddressPrefix, "receiver")
	msg := c.sendMsg(to, types.NewCoin("usdt", 1))

	tests := []struct {
		name string
		tx   types.Tx
		code uint32
	}{
		{"other chain id", c.sign(0, fee(100, 200_000), "elsewhere-1", msg), 4},
		{"fee above balance", c.sign(0, fee(2_000_000, 200_000), "", msg), 5},
		{"fee in wrong denom", c.sign(0, types.Fee{Amount: []types.Coin{types.NewCoin("usdt", 1)}, GasLimit: 200_000}, "", msg), 13},
		{"zero gas limit", c.sign(0, fee(100, 0), "", msg), 18},
		{"unknown kind", codec.MustMarshal(types.TxEnvelope{Kind: 7, Body: types.TxBody{Messages: []types.Any{msg}}}), 2},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			out := c.deliver(tc.tx)
			assert.Equal(t, tc.code, out[0].Code, out[0].Info)
			assert.Equal(t, uint64(0), c.account().Sequence)
		})
	}
	assert.Equal(t, "1000000", c.balance(c.addr, DefaultFeeDenom))
}

func TestAnte_OutOfGasAfterDeduction(t *testing.T) {
	c := newTestChain(t)
	to := keys.ModuleAddress(DefaultAddressPrefix, "receiver")

	out := c.deliver(c.sign(0, fee(100, 10), "", c.sendMsg(to, types.NewCoin("usdt", 1))))
	assert.Equal(t, uint32(11), out[0].Code)
	assert.Equal(t, uint64(10), out[0].GasWanted)
	assert.Equal(t, uint64(0), c.account().Sequence)
	assert.Equal(t, "1000000", c.balance(c.addr, DefaultFeeDenom))
}

func TestAnte_SequencesWithinOneBlock(t *testing.T) {
	c := newTestChain(t)
	to := keys.ModuleAddress(DefaultAddressPrefix, "receiver")

	first := c.sign(0, fee(100, 200_000), "", c.sendMsg(to, types.NewCoin("usdt", 5)))
	second := c.sign(1, fee(100, 200_000), "", c.sendMsg(to, types.NewCoin("usdt", 7)))
	out := c.deliver(first, second)
	require.True(t, out[0].OK(), out[0].Info)
	require.True(t, out[1].OK(), out[1].Info)
	assert.Equal(t, uint32(1), out[1].Index)

	assert.Equal(t, uint64(2), c.account().Sequence)
	assert.Equal(t, "12", c.balance(to, "usdt"))
	assert.Equal(t, "999800", c.balance(c.addr, DefaultFeeDenom))
}

func TestSimulate_DoesNotCommit(t *testing.T) {
	c := newTestChain(t)
	to := keys.ModuleAddress(DefaultAddressPrefix, "receiver")

	// Simulation skips the signature and gas limit checks.
	body := types.TxBody{Messages: []types.Any{c.sendMsg(to, types.NewCoin("usdt", 5))}}
	tx := codec.MustMarshal(types.TxEnvelope{
		Kind:     types.TxKindSigned,
		Body:     body,
		AuthInfo: types.AuthInfo{Signer: types.SignerInfo{PubKey: c.key.PubKey().Proto()}},
	})
	out, err := c.app.Simulate(context.Background(), tx)
	require.NoError(t, err)
	require.True(t, out.OK(), out.Info)
	assert.Positive(t, out.GasUsed)

	assert.Equal(t, uint64(0), c.account().Sequence)
	assert.Equal(t, "50", c.balance(c.addr, "usdt"))
}

func TestExecuteBlock_RejectsOutOfOrderHeight(t *testing.T) {
	c := newTestChain(t)
	_, err := c.app.ExecuteBlock(context.Background(), types.FinalizedBlock{Height: 5, Time: c.time})
	require.Error(t, err)

	_, err = c.app.Commit(context.Background())
	require.Error(t, err)
}

func TestHandshake_RequiresGenesis(t *testing.T) {
	_, err := New().Handshake(context.Background(), types.HandshakeRequest{})
	require.ErrorIs(t, err, ErrNoGenesis)
}
