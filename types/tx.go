package types

import "crypto/sha256"

// TxKind distinguishes signed user transactions from unsigned
// system transactions injected by the block producer.
type TxKind uint8

const (
	TxKindSigned TxKind = 1
	TxKindSystem TxKind = 2
)

// GasInfo reports the gas declared for and consumed by a transaction.
type GasInfo struct {
	GasWanted uint64 `cramberry:"1"`
	GasUsed   uint64 `cramberry:"2"`
}

// Fee is the fee offered by a transaction and the gas it may consume.
type Fee struct {
	Amount   []Coin `cramberry:"1"`
	GasLimit uint64 `cramberry:"2"`
}

// TxBody holds the messages of a transaction, applied in order.
type TxBody struct {
	Messages []Any  `cramberry:"1"`
	Memo     string `cramberry:"2"`
}

// SignerInfo identifies the signing key and the sequence it signs at.
type SignerInfo struct {
	PubKey   PublicKey `cramberry:"1"`
	Sequence uint64    `cramberry:"2"`
}

// AuthInfo carries the signer and fee of a transaction.
type AuthInfo struct {
	Signer SignerInfo `cramberry:"1"`
	Fee    Fee        `cramberry:"2"`
}

// TxEnvelope is the decoded form of a Tx.
type TxEnvelope struct {
	Kind      TxKind   `cramberry:"1"`
	Body      TxBody   `cramberry:"2"`
	AuthInfo  AuthInfo `cramberry:"3"`
	Signature []byte   `cramberry:"4"`
}

// SignDoc is the document a signer commits to.
type SignDoc struct {
	ChainID       string   `cramberry:"1"`
	AccountNumber uint64   `cramberry:"2"`
	Body          TxBody   `cramberry:"3"`
	AuthInfo      AuthInfo `cramberry:"4"`
}

// TxMsgData is the Data payload of a successful TxOutcome: one
// response per message, in message order.
type TxMsgData struct {
	MsgResponses []Any `cramberry:"1"`
}

// Hash returns the sha256 of the encoded transaction.
func (tx Tx) Hash() Hash {
	return Hash(sha256.Sum256(tx))
}
