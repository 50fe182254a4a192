package testtube_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blockberries/testtube"
	"github.com/blockberries/testtube/account"
	"github.com/blockberries/testtube/api/bank"
	"github.com/blockberries/testtube/api/tokenfactory"
	"github.com/blockberries/testtube/codec"
	"github.com/blockberries/testtube/keys"
	testtubetest "github.com/blockberries/testtube/testing"
	"github.com/blockberries/testtube/types"
)

func signer(t *testing.T) *account.SigningAccount {
	t.Helper()
	priv, err := keys.Generate()
	require.NoError(t, err)
	acc, err := account.New(priv, "inj", account.Custom{GasLimit: 100000})
	require.NoError(t, err)
	return acc
}

func TestExecuteMultiple_DecodesEveryResponse(t *testing.T) {
	acc := signer(t)
	runner := &testtubetest.MockRunner{
		ExecuteMultipleRawFn: func(_ context.Context, msgs []types.Any, _ account.Signer) (*types.TxResult, error) {
			return testtubetest.TxResult(7,
				testtubetest.Response(msgs[0].TypeURL, tokenfactory.MsgCreateDenomResponse{NewTokenDenom: "factory/a/one"}),
				testtubetest.Response(msgs[1].TypeURL, tokenfactory.MsgCreateDenomResponse{NewTokenDenom: "factory/a/two"}),
			), nil
		},
	}

	res, err := testtube.ExecuteMultiple[tokenfactory.MsgCreateDenomResponse](context.Background(), runner, []testtube.Msg{
		testtube.NewMsg(tokenfactory.MsgCreateDenomTypeURL, tokenfactory.MsgCreateDenom{Sender: acc.Address(), Subdenom: "one"}),
		testtube.NewMsg(tokenfactory.MsgCreateDenomTypeURL, tokenfactory.MsgCreateDenom{Sender: acc.Address(), Subdenom: "two"}),
	}, acc)
	require.NoError(t, err)
	assert.Equal(t, "factory/a/one", res.Data.NewTokenDenom)
	assert.Equal(t, uint64(7), res.Height)
	assert.Equal(t, types.GasInfo{GasWanted: 200000, GasUsed: 100000}, res.GasInfo)
	require.Len(t, res.MsgResponses, 2)

	second, err := testtube.DecodeMsgResponse[tokenfactory.MsgCreateDenomResponse](res.MsgResponses, 1)
	require.NoError(t, err)
	assert.Equal(t, "factory/a/two", second.NewTokenDenom)

	_, err = testtube.DecodeMsgResponse[tokenfactory.MsgCreateDenomResponse](res.MsgResponses, 2)
	_, ok := testtube.IsDecode(err)
	assert.True(t, ok)

	second, err = testtube.DecodeMsgResponseAs[tokenfactory.MsgCreateDenomResponse](res.MsgResponses, 1, tokenfactory.MsgCreateDenomTypeURL)
	require.NoError(t, err)
	assert.Equal(t, "factory/a/two", second.NewTokenDenom)
	_, err = testtube.DecodeMsgResponseAs[tokenfactory.MsgCreateDenomResponse](res.MsgResponses, 1, tokenfactory.MsgMintTypeURL)
	_, ok = testtube.IsDecode(err)
	assert.True(t, ok, "expected DecodeError, got %v", err)

	call := runner.LastCall()
	require.Len(t, call.Msgs, 2)
	var sent tokenfactory.MsgCreateDenom
	require.NoError(t, codec.UnpackAs(call.Msgs[1], tokenfactory.MsgCreateDenomTypeURL, &sent))
	assert.Equal(t, "two", sent.Subdenom)
}

func TestExecuteMultiple_RejectsEmptyBatch(t *testing.T) {
	runner := &testtubetest.MockRunner{}
	_, err := testtube.ExecuteMultiple[bank.MsgSendResponse](context.Background(), runner, nil, signer(t))
	_, ok := testtube.IsEncode(err)
	assert.True(t, ok)
	assert.Empty(t, runner.Calls())
}

func TestExecute_MissingResponseIsDecodeError(t *testing.T) {
	runner := &testtubetest.MockRunner{
		ExecuteMultipleRawFn: func(context.Context, []types.Any, account.Signer) (*types.TxResult, error) {
			return testtubetest.TxResult(3), nil
		},
	}
	_, err := testtube.Execute[bank.MsgSendResponse](context.Background(), runner, bank.MsgSendTypeURL, bank.MsgSend{}, signer(t))
	de, ok := testtube.IsDecode(err)
	require.True(t, ok, "expected DecodeError, got %v", err)
	assert.Equal(t, bank.MsgSendTypeURL, de.Path)
}

func TestExecute_ResponseForOtherMessageIsDecodeError(t *testing.T) {
	runner := &testtubetest.MockRunner{
		ExecuteMultipleRawFn: func(context.Context, []types.Any, account.Signer) (*types.TxResult, error) {
			return testtubetest.TxResult(4, testtubetest.Response(tokenfactory.MsgCreateDenomTypeURL,
				tokenfactory.MsgCreateDenomResponse{NewTokenDenom: "factory/a/one"})), nil
		},
	}
	_, err := testtube.Execute[bank.MsgSendResponse](context.Background(), runner, bank.MsgSendTypeURL, bank.MsgSend{}, signer(t))
	de, ok := testtube.IsDecode(err)
	require.True(t, ok, "expected DecodeError, got %v", err)
	assert.Equal(t, bank.MsgSendTypeURL, de.Path)
	assert.ErrorIs(t, err, codec.ErrTypeURLMismatch)
}

func TestExecuteSingleBlock_KeepsEntryOrder(t *testing.T) {
	a, b := signer(t), signer(t)
	failure := &testtube.ExecuteError{Code: 5, Codespace: "sdk", Log: "insufficient funds", Height: 9}
	runner := &testtubetest.MockRunner{
		ExecuteSingleBlockRawFn: func(_ context.Context, txs []testtube.BlockTx) ([]testtube.BlockTxResult, error) {
			out := make([]testtube.BlockTxResult, len(txs))
			for i, tx := range txs {
				if tx.Signer.Address() == b.Address() {
					out[i].Err = failure
					continue
				}
				out[i].Result = testtubetest.TxResult(9, testtubetest.Response(tx.Msgs[0].TypeURL, bank.MsgSendResponse{}))
			}
			return out, nil
		},
	}

	entries := []testtube.BlockMsg{
		{Msg: testtube.NewMsg(bank.MsgSendTypeURL, bank.MsgSend{FromAddress: a.Address()}), Signer: a},
		{Msg: testtube.NewMsg(bank.MsgSendTypeURL, bank.MsgSend{FromAddress: b.Address()}), Signer: b},
		{Msg: testtube.NewMsg(bank.MsgSendTypeURL, bank.MsgSend{FromAddress: a.Address()}), Signer: a},
	}
	results, err := testtube.ExecuteSingleBlock[bank.MsgSendResponse](context.Background(), runner, entries)
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.NoError(t, results[0].Err)
	assert.Equal(t, uint64(9), results[0].Response.Height)
	assert.Nil(t, results[1].Response)
	assert.True(t, errors.Is(results[1].Err, failure))
	assert.NoError(t, results[2].Err)

	call := runner.LastCall()
	assert.Equal(t, "ExecuteSingleBlockRaw", call.Method)
	require.Len(t, call.Txs, 3)
	assert.Same(t, b, call.Txs[1].Signer)
}

func TestExecuteSingleBlock_ResultCountMismatch(t *testing.T) {
	runner := &testtubetest.MockRunner{
		ExecuteSingleBlockRawFn: func(context.Context, []testtube.BlockTx) ([]testtube.BlockTxResult, error) {
			return nil, nil
		},
	}
	acc := signer(t)
	_, err := testtube.ExecuteSingleBlock[bank.MsgSendResponse](context.Background(), runner, []testtube.BlockMsg{
		{Msg: testtube.NewMsg(bank.MsgSendTypeURL, bank.MsgSend{}), Signer: acc},
	})
	require.Error(t, err)
}

func TestQuery_EncodesRequestAndDecodesReply(t *testing.T) {
	runner := &testtubetest.MockRunner{
		QueryRawFn: func(_ context.Context, _ string, data []byte) ([]byte, error) {
			req, err := codec.Decode[bank.QuerySupplyOfRequest](data)
			if err != nil {
				return nil, err
			}
			return codec.MustMarshal(bank.QuerySupplyOfResponse{Amount: types.NewCoin(req.Denom, 1000)}), nil
		},
	}

	res, err := testtube.Query[bank.QuerySupplyOfResponse](context.Background(), runner, bank.QuerySupplyOfPath, bank.QuerySupplyOfRequest{Denom: "usdt"})
	require.NoError(t, err)
	assert.Equal(t, types.NewCoin("usdt", 1000), res.Amount)
	assert.Equal(t, bank.QuerySupplyOfPath, runner.LastCall().Path)
}

func TestSimulate_PassesGasThrough(t *testing.T) {
	acc := signer(t)
	runner := &testtubetest.MockRunner{
		SimulateRawFn: func(context.Context, []types.Any, account.Signer) (types.GasInfo, error) {
			return types.GasInfo{GasUsed: 81234}, nil
		},
	}

	gas, err := testtube.Simulate(context.Background(), runner, []testtube.Msg{
		testtube.NewMsg(bank.MsgSendTypeURL, bank.MsgSend{FromAddress: acc.Address()}),
	}, acc)
	require.NoError(t, err)
	assert.Equal(t, uint64(81234), gas.GasUsed)
	assert.Equal(t, "SimulateRaw", runner.LastCall().Method)

	runner.SimulateRawFn = func(context.Context, []types.Any, account.Signer) (types.GasInfo, error) {
		return types.GasInfo{}, &testtube.SimulateError{Code: 5, Codespace: "sdk", Log: "insufficient funds"}
	}
	_, err = testtube.Simulate(context.Background(), runner, []testtube.Msg{
		testtube.NewMsg(bank.MsgSendTypeURL, bank.MsgSend{FromAddress: acc.Address()}),
	}, acc)
	se, ok := testtube.IsSimulate(err)
	require.True(t, ok)
	assert.Equal(t, uint32(5), se.Code)
}
