package app_test

import (
	"context"
	"net"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/blockberries/testtube"
	"github.com/blockberries/testtube/account"
	"github.com/blockberries/testtube/api/bank"
	"github.com/blockberries/testtube/api/staking"
	"github.com/blockberries/testtube/api/system"
	"github.com/blockberries/testtube/api/tokenfactory"
	"github.com/blockberries/testtube/app"
	testtubegrpc "github.com/blockberries/testtube/grpc"
	"github.com/blockberries/testtube/keys"
	"github.com/blockberries/testtube/local"
	"github.com/blockberries/testtube/module"
	"github.com/blockberries/testtube/simapp"
	"github.com/blockberries/testtube/types"
)

const hundredINJ = "100000000000000000000"

func newApp(t *testing.T, opts ...app.Option) *app.TestApp {
	t.Helper()
	a, err := app.New(context.Background(), opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })
	return a
}

func inj(amount string) []types.Coin {
	return []types.Coin{types.MustNewCoin("inj", amount)}
}

func balanceOf(t *testing.T, a *app.TestApp, addr, denom string) string {
	t.Helper()
	res, err := module.NewBank(a).QueryBalance(context.Background(), bank.QueryBalanceRequest{Address: addr, Denom: denom})
	require.NoError(t, err)
	return res.Balance.Amount
}

// unfunded returns a signer the chain has never seen.
func unfunded(t *testing.T) *account.SigningAccount {
	t.Helper()
	priv, err := keys.Generate()
	require.NoError(t, err)
	acc, err := account.New(priv, "inj", account.Auto{GasPrice: types.MustNewCoin("inj", app.DefaultGasPrice), GasAdjustment: app.DefaultGasAdjustment})
	require.NoError(t, err)
	return acc
}

func createDenom(sender, subdenom string) testtube.Msg {
	return testtube.NewMsg(tokenfactory.MsgCreateDenomTypeURL, tokenfactory.MsgCreateDenom{
		Sender:   sender,
		Subdenom: subdenom,
		Name:     subdenom,
		Symbol:   "DNM",
	})
}

func TestNew_StartsAtHeightOne(t *testing.T) {
	a := newApp(t)
	assert.Equal(t, uint64(1), a.BlockHeight())
	assert.Equal(t, app.DefaultChainID, a.ChainID())
	assert.Equal(t, "inj", a.FeeDenom())
	assert.Equal(t, "inj", a.AddressPrefix())
}

func TestInitAccounts(t *testing.T) {
	a := newApp(t)
	accs, err := a.InitAccounts(context.Background(), inj("100000000000"), 3)
	require.NoError(t, err)
	require.Len(t, accs, 3)

	seen := map[string]bool{}
	for _, acc := range accs {
		assert.False(t, seen[acc.Address()], "duplicate address %s", acc.Address())
		seen[acc.Address()] = true
		assert.Equal(t, "100000000000", balanceOf(t, a, acc.Address(), "inj"))
	}
	// All accounts are funded in one block.
	assert.Equal(t, uint64(2), a.BlockHeight())
}

func TestInitAccounts_RejectsNonPositiveCount(t *testing.T) {
	a := newApp(t)
	_, err := a.InitAccounts(context.Background(), inj("1"), 0)
	require.Error(t, err)
	assert.Equal(t, uint64(1), a.BlockHeight())
}

func TestInitAccount_InvalidDenomIsExecuteError(t *testing.T) {
	a := newApp(t)
	_, err := a.InitAccount(context.Background(), []types.Coin{{Denom: "1nvalid", Amount: "5"}})
	ee, ok := testtube.IsExecute(err)
	require.True(t, ok, "expected ExecuteError, got %v", err)
	assert.NotZero(t, ee.Code)
}

func TestIncreaseTime(t *testing.T) {
	a := newApp(t)
	before := a.BlockTime()

	require.NoError(t, a.IncreaseTime(context.Background(), 10*time.Second))
	assert.True(t, before.Add(10*time.Second).Equal(a.BlockTime()))
	assert.Equal(t, uint64(2), a.BlockHeight())

	info, err := testtube.Query[system.QueryBlockInfoResponse](context.Background(), a, system.QueryBlockInfoPath, system.QueryBlockInfoRequest{})
	require.NoError(t, err)
	assert.Equal(t, uint64(2), info.Height)
	assert.True(t, info.Time.ToTime().Equal(a.BlockTime()))

	require.Error(t, a.IncreaseTime(context.Background(), 0))
}

func TestBlockTime_StaysUntilIncreasingEnabled(t *testing.T) {
	a := newApp(t)
	start := a.BlockTime()
	_, err := a.InitAccount(context.Background(), inj("1"))
	require.NoError(t, err)
	assert.True(t, start.Equal(a.BlockTime()))

	a.EnableIncreasingBlockTime()
	_, err = a.InitAccount(context.Background(), inj("1"))
	require.NoError(t, err)
	assert.True(t, start.Add(app.DefaultBlockInterval).Equal(a.BlockTime()))
}

func TestWithBlockInterval(t *testing.T) {
	genesis := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	a := newApp(t, app.WithGenesisTime(genesis), app.WithBlockInterval(7*time.Second))
	// Block 1 already advanced once.
	assert.True(t, genesis.Add(7*time.Second).Equal(a.BlockTime()))
	require.NoError(t, a.IncreaseTime(context.Background(), time.Minute))
	assert.True(t, genesis.Add(7*time.Second+time.Minute).Equal(a.BlockTime()))
}

func TestExecute_SequenceAndHeights(t *testing.T) {
	ctx := context.Background()
	a := newApp(t)
	tf := module.NewTokenFactory(a)

	acc, err := a.InitAccount(ctx, inj(hundredINJ))
	require.NoError(t, err)

	res, err := tf.CreateDenom(ctx, tokenfactory.MsgCreateDenom{Sender: acc.Address(), Subdenom: "newdenom", Name: "denom", Symbol: "DNM"}, acc)
	require.NoError(t, err)
	assert.Equal(t, "factory/"+acc.Address()+"/newdenom", res.Data.NewTokenDenom)

	res, err = tf.CreateDenom(ctx, tokenfactory.MsgCreateDenom{Sender: acc.Address(), Subdenom: "newerdenom", Name: "newer denom", Symbol: "NDNM"}, acc)
	require.NoError(t, err)
	assert.Equal(t, "factory/"+acc.Address()+"/newerdenom", res.Data.NewTokenDenom)
	assert.Equal(t, uint64(4), a.BlockHeight())
	assert.Equal(t, uint64(4), res.Height)

	multi, err := testtube.ExecuteMultiple[tokenfactory.MsgCreateDenomResponse](ctx, a, []testtube.Msg{
		createDenom(acc.Address(), "multidenom_1"),
		createDenom(acc.Address(), "multidenom_2"),
	}, acc)
	require.NoError(t, err)
	assert.Equal(t, uint64(5), a.BlockHeight())
	require.Len(t, multi.MsgResponses, 2)
	second, err := testtube.DecodeMsgResponse[tokenfactory.MsgCreateDenomResponse](multi.MsgResponses, 1)
	require.NoError(t, err)
	assert.Equal(t, "factory/"+acc.Address()+"/multidenom_2", second.NewTokenDenom)

	acc2, err := a.InitAccount(ctx, inj(hundredINJ))
	require.NoError(t, err)
	assert.Equal(t, uint64(6), a.BlockHeight())

	results, err := testtube.ExecuteSingleBlock[tokenfactory.MsgCreateDenomResponse](ctx, a, []testtube.BlockMsg{
		{Msg: createDenom(acc.Address(), "multidenom_3"), Signer: acc},
		{Msg: createDenom(acc.Address(), "multidenom_4"), Signer: acc},
		{Msg: createDenom(acc2.Address(), "multidenom_5"), Signer: acc2},
	})
	require.NoError(t, err)
	require.Len(t, results, 3)
	for i, r := range results {
		require.NoError(t, r.Err, "entry %d", i)
		assert.Equal(t, uint64(7), r.Response.Height)
	}
	assert.Equal(t, uint64(7), a.BlockHeight())

	denoms, err := tf.QueryDenomsFromCreator(ctx, tokenfactory.QueryDenomsFromCreatorRequest{Creator: acc.Address()})
	require.NoError(t, err)
	assert.Len(t, denoms.Denoms, 6)

	denoms, err = tf.QueryDenomsFromCreator(ctx, tokenfactory.QueryDenomsFromCreatorRequest{Creator: acc2.Address()})
	require.NoError(t, err)
	assert.Len(t, denoms.Denoms, 1)
}

func TestQuery_TokenFactoryParams(t *testing.T) {
	a := newApp(t)
	res, err := testtube.Query[tokenfactory.QueryParamsResponse](context.Background(), a, tokenfactory.QueryParamsPath, tokenfactory.QueryParamsRequest{})
	require.NoError(t, err)
	assert.Equal(t, inj("10000000000000000000"), res.Params.DenomCreationFee)
}

func TestQuery_UnknownPathIsQueryError(t *testing.T) {
	a := newApp(t)
	_, err := a.QueryRaw(context.Background(), "/cosmos.nothing.v1beta1.Query/Nothing", nil)
	qe, ok := testtube.IsQuery(err)
	require.True(t, ok, "expected QueryError, got %v", err)
	assert.Equal(t, "/cosmos.nothing.v1beta1.Query/Nothing", qe.Path)
}

func TestCustomFee(t *testing.T) {
	ctx := context.Background()
	a := newApp(t)
	const initial = "1000000000000000"
	accs, err := a.InitAccounts(ctx, inj(initial), 2)
	require.NoError(t, err)
	alice, bob := accs[0], accs[1]

	const gasLimit = 100_000_000
	tf := module.NewTokenFactory(a)
	require.NoError(t, a.SetParamSet(ctx, "tokenfactory", tokenfactory.ParamsTypeURL, tokenfactory.Params{}))

	res, err := tf.CreateDenom(ctx, tokenfactory.MsgCreateDenom{Sender: alice.Address(), Subdenom: "alice"}, alice)
	require.NoError(t, err)
	assert.NotEqual(t, uint64(gasLimit), res.GasInfo.GasWanted)

	bob = bob.WithFeeSetting(account.Custom{Amount: types.NewCoin("inj", 1_000_000), GasLimit: gasLimit})
	res, err = tf.CreateDenom(ctx, tokenfactory.MsgCreateDenom{Sender: bob.Address(), Subdenom: "bob"}, bob)
	require.NoError(t, err)
	assert.Equal(t, uint64(gasLimit), res.GasInfo.GasWanted)
	assert.Equal(t, "999999999000000", balanceOf(t, a, bob.Address(), "inj"))
}

func TestAutoFee_ScalesSimulatedGas(t *testing.T) {
	ctx := context.Background()
	a := newApp(t, app.WithGasAdjustment(1.5))
	accs, err := a.InitAccounts(ctx, inj(hundredINJ), 2)
	require.NoError(t, err)
	sender, receiver := accs[0], accs[1]

	send := testtube.NewMsg(bank.MsgSendTypeURL, bank.MsgSend{
		FromAddress: sender.Address(),
		ToAddress:   receiver.Address(),
		Amount:      inj("1"),
	})
	est, err := testtube.Simulate(ctx, a, []testtube.Msg{send}, sender)
	require.NoError(t, err)
	require.NotZero(t, est.GasUsed)
	// Simulation commits nothing.
	assert.Equal(t, uint64(2), a.BlockHeight())

	res, err := testtube.Execute[bank.MsgSendResponse](ctx, a, send.Path, send.Value, sender)
	require.NoError(t, err)
	fee := sender.FeeSetting().(account.Auto)
	assert.Equal(t, fee.GasLimit(est.GasUsed), res.GasInfo.GasWanted)
	assert.LessOrEqual(t, res.GasInfo.GasUsed, res.GasInfo.GasWanted)
}

func TestExecute_OutOfGas(t *testing.T) {
	ctx := context.Background()
	a := newApp(t)
	acc, err := a.InitAccount(ctx, inj(hundredINJ))
	require.NoError(t, err)
	acc = acc.WithFeeSetting(account.Custom{GasLimit: 100})

	_, err = module.NewBank(a).Send(ctx, bank.MsgSend{FromAddress: acc.Address(), ToAddress: acc.Address(), Amount: inj("1")}, acc)
	ee, ok := testtube.IsExecute(err)
	require.True(t, ok, "expected ExecuteError, got %v", err)
	assert.Equal(t, uint32(11), ee.Code)
	assert.Equal(t, "sdk", ee.Codespace)
	assert.Equal(t, uint64(3), ee.Height)
}

func TestExecute_AutoFeeRejectionIsExecuteErrorWithoutBlock(t *testing.T) {
	ctx := context.Background()
	a := newApp(t)
	acc, err := a.InitAccount(ctx, inj("1000"))
	require.NoError(t, err)
	height := a.BlockHeight()
	msg := bank.MsgSend{FromAddress: acc.Address(), ToAddress: acc.Address(), Amount: inj("1000000")}

	_, err = module.NewBank(a).Send(ctx, msg, acc)
	ee, ok := testtube.IsExecute(err)
	require.True(t, ok, "expected ExecuteError, got %v", err)
	assert.Equal(t, uint32(5), ee.Code)
	assert.Equal(t, "sdk", ee.Codespace)
	assert.Equal(t, height, ee.Height)
	assert.Equal(t, height, a.BlockHeight())

	// An explicit simulation of the same message stays a SimulateError.
	_, err = testtube.Simulate(ctx, a, []testtube.Msg{testtube.NewMsg(bank.MsgSendTypeURL, msg)}, acc)
	se, ok := testtube.IsSimulate(err)
	require.True(t, ok, "expected SimulateError, got %v", err)
	assert.Equal(t, uint32(5), se.Code)
	assert.Equal(t, height, a.BlockHeight())
}

func TestExecuteSingleBlock_IsolatesFailures(t *testing.T) {
	ctx := context.Background()
	a := newApp(t)
	accs, err := a.InitAccounts(ctx, inj(hundredINJ), 2)
	require.NoError(t, err)
	sender, receiver := accs[0], accs[1]
	// Custom fees skip simulation, so the overdraft reaches the block.
	custom := sender.WithFeeSetting(account.Custom{Amount: types.NewCoin("inj", 1000), GasLimit: 1_000_000})
	stranger := unfunded(t)

	send := func(amount string) testtube.Msg {
		return testtube.NewMsg(bank.MsgSendTypeURL, bank.MsgSend{FromAddress: sender.Address(), ToAddress: receiver.Address(), Amount: inj(amount)})
	}
	results, err := testtube.ExecuteSingleBlock[bank.MsgSendResponse](ctx, a, []testtube.BlockMsg{
		{Msg: send("10"), Signer: sender},
		{Msg: testtube.NewMsg(bank.MsgSendTypeURL, bank.MsgSend{FromAddress: stranger.Address(), ToAddress: receiver.Address(), Amount: inj("1")}), Signer: stranger},
		{Msg: send("1000000000000000000000"), Signer: custom},
		{Msg: send("20"), Signer: sender},
	})
	require.NoError(t, err)
	require.Len(t, results, 4)

	require.NoError(t, results[0].Err)
	rejected, ok := testtube.IsExecute(results[1].Err)
	require.True(t, ok, "expected ExecuteError, got %v", results[1].Err)
	assert.Equal(t, uint64(2), rejected.Height)
	ee, ok := testtube.IsExecute(results[2].Err)
	require.True(t, ok, "expected ExecuteError, got %v", results[2].Err)
	assert.Equal(t, uint64(3), ee.Height)
	require.NoError(t, results[3].Err)

	assert.Equal(t, uint64(3), a.BlockHeight())
	assert.Equal(t, "100000000000000000030", balanceOf(t, a, receiver.Address(), "inj"))
}

func TestParamSet_RoundTrip(t *testing.T) {
	ctx := context.Background()
	a := newApp(t)
	want := tokenfactory.Params{DenomCreationFee: inj("42")}
	require.NoError(t, a.SetParamSet(ctx, "tokenfactory", tokenfactory.ParamsTypeURL, want))

	got, err := app.GetParamSet[tokenfactory.Params](ctx, a, "tokenfactory", tokenfactory.ParamsTypeURL)
	require.NoError(t, err)
	assert.Equal(t, want, *got)

	_, err = app.GetParamSet[tokenfactory.Params](ctx, a, "tokenfactory", staking.ParamsTypeURL)
	_, ok := testtube.IsDecode(err)
	assert.True(t, ok, "expected DecodeError, got %v", err)

	err = a.SetParamSet(ctx, "nosuchmodule", tokenfactory.ParamsTypeURL, want)
	_, ok = testtube.IsExecute(err)
	assert.True(t, ok, "expected ExecuteError, got %v", err)
}

func TestFirstValidator_CanDelegate(t *testing.T) {
	ctx := context.Background()
	a := newApp(t)
	val := a.FirstValidatorSigningAccount()
	valoper := a.FirstValidatorAddress()
	assert.Contains(t, valoper, "injvaloper1")

	st := module.NewStaking(a)
	before, err := st.QueryValidator(ctx, staking.QueryValidatorRequest{ValidatorAddr: valoper})
	require.NoError(t, err)
	assert.Equal(t, staking.Bonded, before.Validator.Status)

	_, err = st.Delegate(ctx, staking.MsgDelegate{
		DelegatorAddress: val.Address(),
		ValidatorAddress: valoper,
		Amount:           types.NewCoin("inj", 1000),
	}, val)
	require.NoError(t, err)

	del, err := st.QueryDelegation(ctx, staking.QueryDelegationRequest{DelegatorAddr: val.Address(), ValidatorAddr: valoper})
	require.NoError(t, err)
	assert.Equal(t, "100000000000000001000", del.DelegationResponse.Balance.Amount)
}

func TestClose_RejectsFurtherCalls(t *testing.T) {
	a, err := app.New(context.Background())
	require.NoError(t, err)
	require.NoError(t, a.Close())
	require.NoError(t, a.Close())

	_, err = a.InitAccount(context.Background(), inj("1"))
	assert.ErrorIs(t, err, app.ErrNotReady)
	_, err = a.QueryRaw(context.Background(), bank.QueryBalancePath, nil)
	assert.ErrorIs(t, err, app.ErrNotReady)
	assert.ErrorIs(t, a.IncreaseTime(context.Background(), time.Second), app.ErrNotReady)
}

func TestNew_RejectsEngineOutsideConstraint(t *testing.T) {
	_, err := app.New(context.Background(), app.WithEngineConstraint(">= 2.0.0"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), simapp.Version)

	_, err = app.New(context.Background(), app.WithEngineConstraint("not a constraint"))
	require.Error(t, err)
}

// closeCounting counts Close calls on a wrapped connection.
type closeCounting struct {
	testtube.Connection
	closes atomic.Int32
}

func (c *closeCounting) Close() error {
	c.closes.Add(1)
	return c.Connection.Close()
}

func TestNew_FailureClosesOwnedConnection(t *testing.T) {
	tests := []struct {
		name       string
		constraint string
	}{
		{"malformed constraint", "not a constraint"},
		{"engine outside constraint", ">= 2.0.0"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			conn := &closeCounting{Connection: local.NewConnection(simapp.New(), nil)}
			_, err := app.New(context.Background(), app.WithConnection(conn), app.WithEngineConstraint(tc.constraint))
			require.Error(t, err)
			assert.Equal(t, int32(1), conn.closes.Load())
		})
	}
}

func TestTracing_RecordsSpans(t *testing.T) {
	ctx := context.Background()
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	t.Cleanup(func() { _ = tp.Shutdown(ctx) })

	a := newApp(t, app.WithTracer(tp.Tracer("app_test")))
	acc, err := a.InitAccount(ctx, inj(hundredINJ))
	require.NoError(t, err)
	_, err = module.NewBank(a).Send(ctx, bank.MsgSend{FromAddress: acc.Address(), ToAddress: acc.Address(), Amount: inj("1")}, acc)
	require.NoError(t, err)
	_, err = a.QueryRaw(ctx, "/unknown", nil)
	require.Error(t, err)

	byName := map[string]sdktrace.ReadOnlySpan{}
	for _, s := range sr.Ended() {
		byName[s.Name()] = s
	}
	require.Contains(t, byName, "testtube.execute")
	require.Contains(t, byName, "testtube.query")
	assert.Equal(t, codes.Unset, byName["testtube.execute"].Status().Code)
	assert.Equal(t, codes.Error, byName["testtube.query"].Status().Code)
}

func TestOverGRPC(t *testing.T) {
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	srv := testtubegrpc.NewGRPCServer(simapp.New(), nil).NewServer()
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = srv.Serve(lis)
	}()
	t.Cleanup(func() {
		srv.GracefulStop()
		<-done
	})

	client, err := testtubegrpc.Dial(lis.Addr().String(), grpc.WithTransportCredentials(insecure.NewCredentials()))
	require.NoError(t, err)

	ctx := context.Background()
	a := newApp(t, app.WithConnection(client))
	accs, err := a.InitAccounts(ctx, inj(hundredINJ), 2)
	require.NoError(t, err)

	_, err = module.NewBank(a).Send(ctx, bank.MsgSend{FromAddress: accs[0].Address(), ToAddress: accs[1].Address(), Amount: inj("5")}, accs[0])
	require.NoError(t, err)
	assert.Equal(t, "100000000000000000005", balanceOf(t, a, accs[1].Address(), "inj"))
	assert.Equal(t, uint64(3), a.BlockHeight())
}
