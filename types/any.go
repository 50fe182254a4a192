package types

// Any carries an encoded message together with the type URL that
// identifies its schema (e.g., "/cosmos.bank.v1beta1.MsgSend").
type Any struct {
	TypeURL string `cramberry:"1"`
	Value   []byte `cramberry:"2"`
}
