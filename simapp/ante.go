package simapp

import (
	"bytes"
	"strconv"

	"github.com/blockberries/testtube/codec"
	"github.com/blockberries/testtube/keys"
	"github.com/blockberries/testtube/types"
)

// gasFeeDeduction is charged for moving the fee and bumping the
// sequence, whether or not a fee is attached.
const gasFeeDeduction = 3 * gasPerWrite

// runTx executes one transaction against s. When the ante handler
// rejects the transaction s is left untouched; when a message fails s
// keeps the ante effects (fee and sequence) only.
func (app *App) runTx(s *state, index uint32, raw types.Tx, mode execMode) types.TxOutcome {
	var env types.TxEnvelope
	if err := codec.Unmarshal(raw, &env); err != nil {
		return failedOutcome(index, wrapf(errTxDecode, "%v", err), 0, 0)
	}
	switch env.Kind {
	case types.TxKindSystem:
		return app.runSystemTx(s, index, env, mode)
	case types.TxKindSigned:
	default:
		return failedOutcome(index, wrapf(errTxDecode, "unknown tx kind %d", env.Kind), 0, 0)
	}

	gasWanted := env.AuthInfo.Fee.GasLimit
	ante := app.newContext(s.clone(), mode)
	if mode == modeDeliver {
		ante.gas.limit = gasWanted
	}
	signer, err := app.anteHandle(ante, raw, env)
	if err != nil {
		return failedOutcome(index, err, gasWanted, ante.gas.consumed)
	}

	exec := ante.branch()
	exec.auth = directSigner(signer)
	data, err := runMsgs(exec, env.Body.Messages)
	if err != nil {
		*s = *ante.s
		return failedOutcome(index, err, gasWanted, exec.gas.consumed)
	}
	ante.commit(exec)
	*s = *ante.s
	return types.TxOutcome{
		Index:     index,
		Data:      data,
		Events:    ante.events,
		GasWanted: gasWanted,
		GasUsed:   ante.gas.consumed,
	}
}

// runSystemTx executes producer-injected messages. They carry no
// signature and pay no fee.
func (app *App) runSystemTx(s *state, index uint32, env types.TxEnvelope, mode execMode) types.TxOutcome {
	ctx := app.newContext(s.clone(), mode)
	ctx.system = true
	data, err := runMsgs(ctx, env.Body.Messages)
	if err != nil {
		return failedOutcome(index, err, 0, ctx.gas.consumed)
	}
	*s = *ctx.s
	return types.TxOutcome{Index: index, Data: data, Events: ctx.events, GasUsed: ctx.gas.consumed}
}

// anteHandle validates the envelope, checks the signer and deducts the
// fee. It returns the signer address.
func (app *App) anteHandle(ctx *Context, raw types.Tx, env types.TxEnvelope) (string, error) {
	p := ctx.s.Params.Auth
	if len(env.Body.Messages) == 0 {
		return "", wrapf(errInvalidRequest, "must contain at least one message")
	}
	if uint64(len(env.Body.Memo)) > p.MaxMemoCharacters {
		return "", wrapf(errMemoTooLarge, "maximum number of characters is %d but received %d characters", p.MaxMemoCharacters, len(env.Body.Memo))
	}
	if ctx.mode == modeDeliver && env.AuthInfo.Fee.GasLimit == 0 {
		return "", wrapf(errInvalidRequest, "invalid gas limit 0")
	}
	ctx.gas.consume(p.TxSizeCostPerByte * uint64(len(raw)))

	pub, err := keys.ParsePubKey(env.AuthInfo.Signer.PubKey.Data)
	if err != nil {
		return "", wrapf(errInvalidPubKey, "%v", err)
	}
	addr, err := pub.Bech32Address(ctx.s.AddressPrefix)
	if err != nil {
		return "", wrapf(errInvalidPubKey, "%v", err)
	}
	acc, ok := ctx.s.Accounts[addr]
	if !ok {
		return "", wrapf(errUnknownAddress, "account %s does not exist", addr)
	}
	if len(acc.PubKey) != 0 && !bytes.Equal(acc.PubKey, pub) {
		return "", wrapf(errInvalidPubKey, "pubkey does not match signer address %s", addr)
	}

	seq := env.AuthInfo.Signer.Sequence
	if ctx.mode == modeDeliver {
		if seq != acc.Sequence {
			return "", wrapf(errWrongSequence, "account sequence mismatch, expected %d, got %d", acc.Sequence, seq)
		}
		if len(env.Signature) == 0 {
			return "", errNoSignatures
		}
		doc, err := codec.Marshal(types.SignDoc{
			ChainID:       ctx.s.ChainID,
			AccountNumber: acc.Number,
			Body:          env.Body,
			AuthInfo:      env.AuthInfo,
		})
		if err != nil {
			return "", wrapf(errTxDecode, "%v", err)
		}
		if !pub.Verify(doc, env.Signature) {
			return "", wrapf(errUnauthorized, "signature verification failed; please verify account number (%d), sequence (%d) and chain-id (%s)", acc.Number, seq, ctx.s.ChainID)
		}
	}
	ctx.gas.consume(p.SigVerifyCost)

	if err := app.deductFee(ctx, addr, env.AuthInfo.Fee); err != nil {
		return "", err
	}
	acc.Sequence++
	if len(acc.PubKey) == 0 {
		acc.PubKey = pub
	}
	ctx.s.Accounts[addr] = acc
	ctx.emit("tx", "acc_seq", addr+"/"+strconv.FormatUint(seq, 10))
	if err := ctx.gas.check("ante"); err != nil {
		return "", err
	}
	return addr, nil
}

func (app *App) deductFee(ctx *Context, payer string, fee types.Fee) error {
	ctx.gas.consume(gasFeeDeduction)
	if len(fee.Amount) == 0 {
		return nil
	}
	coins, err := parseCoins(fee.Amount)
	if err != nil {
		return wrapf(errInsufficientFee, "invalid fee: %v", err)
	}
	for _, c := range coins {
		if c.denom != ctx.s.FeeDenom {
			return wrapf(errInsufficientFee, "fee denom %s is not accepted, pay in %s", c.denom, ctx.s.FeeDenom)
		}
	}
	// The flat charge above covers these writes.
	metered := ctx.gas
	ctx.gas = &gasMeter{}
	defer func() { ctx.gas = metered }()
	if err := ctx.sendCoins(payer, ctx.moduleAddress(feeCollectorName), coins); err != nil {
		return wrapf(errInsufficientFunds, "%v: insufficient funds to pay fee", err)
	}
	ctx.emit("tx", "fee", formatAmounts(coins), "fee_payer", payer)
	return nil
}

// directSigner authorizes messages whose signer is the transaction
// signer.
func directSigner(txSigner string) authorizer {
	return func(_ *Context, signer, typeURL string, _ any) error {
		if signer != txSigner {
			return wrapf(errUnauthorized, "%s must be signed by %s, transaction signed by %s", typeURL, signer, txSigner)
		}
		return nil
	}
}

// runMsgs dispatches msgs in order on ctx and encodes their responses.
func runMsgs(ctx *Context, msgs []types.Any) ([]byte, error) {
	responses := make([]types.Any, 0, len(msgs))
	for i, a := range msgs {
		res, err := ctx.router.dispatch(ctx, a)
		if err != nil {
			return nil, wrapf(err, "failed to execute message; message index: %d", i)
		}
		if err := ctx.gas.check(a.TypeURL); err != nil {
			return nil, err
		}
		responses = append(responses, res)
	}
	return codec.Marshal(types.TxMsgData{MsgResponses: responses})
}

func failedOutcome(index uint32, err error, gasWanted, gasUsed uint64) types.TxOutcome {
	codespace, code, log := codeOf(err)
	return types.TxOutcome{
		Index:     index,
		Code:      code,
		Codespace: codespace,
		Info:      log,
		GasWanted: gasWanted,
		GasUsed:   gasUsed,
	}
}
