package testtube

import (
	"context"
	"fmt"

	"github.com/blockberries/testtube/account"
	"github.com/blockberries/testtube/codec"
	"github.com/blockberries/testtube/types"
)

// Runner executes messages and queries against a chain. Implementations
// own the engine; facades and helpers only hold a Runner.
//
// Execution advances the chain by one block per call. Runners perform
// no retries and no internal locking per signer: callers must not
// interleave transactions of the same signer from several goroutines.
type Runner interface {
	// ExecuteMultipleRaw signs msgs as one transaction and commits it in
	// its own block. The result is returned only if the transaction
	// succeeded; a rejected transaction yields an *ExecuteError.
	ExecuteMultipleRaw(ctx context.Context, msgs []types.Any, signer account.Signer) (*types.TxResult, error)

	// ExecuteSingleBlockRaw commits every entry as its own transaction in
	// one block, in input order. The returned slice has one result per
	// entry; entry failures are reported in BlockTxResult.Err and do not
	// affect siblings. The error return is reserved for failures of the
	// block itself.
	ExecuteSingleBlockRaw(ctx context.Context, txs []BlockTx) ([]BlockTxResult, error)

	// QueryRaw reads state at path. It never advances the chain.
	QueryRaw(ctx context.Context, path string, data []byte) ([]byte, error)

	// SimulateRaw dry-runs msgs as one transaction of signer.
	SimulateRaw(ctx context.Context, msgs []types.Any, signer account.Signer) (types.GasInfo, error)
}

// BlockTx is one transaction of a single-block batch.
type BlockTx struct {
	Msgs   []types.Any
	Signer account.Signer
}

// BlockTxResult is the outcome of one BlockTx: Result on success, Err
// otherwise.
type BlockTxResult struct {
	Result *types.TxResult
	Err    error
}

// Msg is a typed message with its routing path, not yet encoded.
type Msg struct {
	Path  string
	Value any
}

// NewMsg pairs a message with its routing path.
func NewMsg(path string, value any) Msg {
	return Msg{Path: path, Value: value}
}

// BlockMsg is a message with its own signer, committed as a separate
// transaction by ExecuteSingleBlock.
type BlockMsg struct {
	Msg
	Signer account.Signer
}

// ExecuteResponse is a successful execution: the decoded response of the
// first message plus gas and event metadata.
type ExecuteResponse[R any] struct {
	Data R
	// MsgResponses holds every message response in message order.
	MsgResponses []types.Any
	Events       []types.Event
	GasInfo      types.GasInfo
	Height       uint64
	Hash         types.Hash
}

// BlockResult is one entry of an ExecuteSingleBlock call.
type BlockResult[R any] struct {
	Response *ExecuteResponse[R]
	Err      error
}

// EncodeMsgs encodes msgs in order. The first failure is returned as an
// *EncodeError.
func EncodeMsgs(msgs []Msg) ([]types.Any, error) {
	out := make([]types.Any, len(msgs))
	for i, m := range msgs {
		a, err := codec.Pack(m.Path, m.Value)
		if err != nil {
			return nil, &EncodeError{Path: m.Path, Err: err}
		}
		out[i] = a
	}
	return out, nil
}

// Execute wraps req in a single-message transaction signed by signer,
// commits it, and decodes the message response as Resp.
func Execute[Resp, Req any](ctx context.Context, r Runner, path string, req Req, signer account.Signer) (*ExecuteResponse[Resp], error) {
	return ExecuteMultiple[Resp](ctx, r, []Msg{NewMsg(path, req)}, signer)
}

// ExecuteMultiple commits msgs atomically as one transaction of signer.
// Messages apply in slice order; if any fails none of them take effect.
// Data holds the decoded response of the first message; use
// DecodeMsgResponse for the others.
func ExecuteMultiple[Resp any](ctx context.Context, r Runner, msgs []Msg, signer account.Signer) (*ExecuteResponse[Resp], error) {
	if len(msgs) == 0 {
		return nil, &EncodeError{Err: fmt.Errorf("no messages")}
	}
	anys, err := EncodeMsgs(msgs)
	if err != nil {
		return nil, err
	}
	res, err := r.ExecuteMultipleRaw(ctx, anys, signer)
	if err != nil {
		return nil, err
	}
	return decodeResult[Resp](msgs[0].Path, res)
}

// ExecuteSingleBlock commits each entry as its own transaction, all in
// one block. It returns exactly one result per entry, in input order.
// An encoding failure aborts the call before anything is submitted.
func ExecuteSingleBlock[Resp any](ctx context.Context, r Runner, entries []BlockMsg) ([]BlockResult[Resp], error) {
	txs := make([]BlockTx, len(entries))
	for i, e := range entries {
		anys, err := EncodeMsgs([]Msg{e.Msg})
		if err != nil {
			return nil, err
		}
		txs[i] = BlockTx{Msgs: anys, Signer: e.Signer}
	}
	raw, err := r.ExecuteSingleBlockRaw(ctx, txs)
	if err != nil {
		return nil, err
	}
	if len(raw) != len(entries) {
		return nil, fmt.Errorf("runner returned %d results for %d transactions", len(raw), len(entries))
	}
	out := make([]BlockResult[Resp], len(entries))
	for i, res := range raw {
		if res.Err != nil {
			out[i].Err = res.Err
			continue
		}
		out[i].Response, out[i].Err = decodeResult[Resp](entries[i].Path, res.Result)
	}
	return out, nil
}

// Query encodes req, reads path and decodes the reply as Resp. Queries
// are side-effect free and never advance the chain.
func Query[Resp, Req any](ctx context.Context, r Runner, path string, req Req) (*Resp, error) {
	data, err := codec.Marshal(req)
	if err != nil {
		return nil, &EncodeError{Path: path, Err: err}
	}
	raw, err := r.QueryRaw(ctx, path, data)
	if err != nil {
		return nil, err
	}
	var out Resp
	if err := codec.Unmarshal(raw, &out); err != nil {
		return nil, &DecodeError{Path: path, Err: err}
	}
	return &out, nil
}

// Simulate dry-runs msgs as one transaction of signer and returns the
// gas estimate. Nothing is committed.
func Simulate(ctx context.Context, r Runner, msgs []Msg, signer account.Signer) (types.GasInfo, error) {
	anys, err := EncodeMsgs(msgs)
	if err != nil {
		return types.GasInfo{}, err
	}
	return r.SimulateRaw(ctx, anys, signer)
}

// DecodeMsgResponse decodes the i-th message response of a multi-message
// transaction. The response type URL is not checked; use
// DecodeMsgResponseAs when the message path is known.
func DecodeMsgResponse[R any](responses []types.Any, i int) (R, error) {
	return decodeMsgResponse[R](responses, i, "")
}

// DecodeMsgResponseAs decodes the i-th message response and fails with a
// DecodeError unless it answers a message sent to msgPath.
func DecodeMsgResponseAs[R any](responses []types.Any, i int, msgPath string) (R, error) {
	return decodeMsgResponse[R](responses, i, msgPath)
}

func decodeMsgResponse[R any](responses []types.Any, i int, msgPath string) (R, error) {
	var out R
	if i < 0 || i >= len(responses) {
		return out, &DecodeError{Path: msgPath, Err: fmt.Errorf("message response %d out of range (%d responses)", i, len(responses))}
	}
	var err error
	if msgPath == "" {
		err = codec.Unpack(responses[i], &out)
	} else {
		err = codec.UnpackAs(responses[i], codec.ResponseURL(msgPath), &out)
	}
	if err != nil {
		return out, &DecodeError{Path: responses[i].TypeURL, Err: err}
	}
	return out, nil
}

func decodeResult[R any](path string, res *types.TxResult) (*ExecuteResponse[R], error) {
	if res == nil {
		return nil, &DecodeError{Path: path, Err: fmt.Errorf("empty result")}
	}
	var data types.TxMsgData
	if err := codec.Unmarshal(res.Outcome.Data, &data); err != nil {
		return nil, &DecodeError{Path: path, Err: err}
	}
	if len(data.MsgResponses) == 0 {
		return nil, &DecodeError{Path: path, Err: fmt.Errorf("transaction carried no message responses")}
	}
	var out R
	if err := codec.UnpackAs(data.MsgResponses[0], codec.ResponseURL(path), &out); err != nil {
		return nil, &DecodeError{Path: path, Err: err}
	}
	return &ExecuteResponse[R]{
		Data:         out,
		MsgResponses: data.MsgResponses,
		Events:       res.Outcome.Events,
		GasInfo:      res.Outcome.GasInfo(),
		Height:       res.Height,
		Hash:         res.Hash,
	}, nil
}
