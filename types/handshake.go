package types

// HandshakeRequest is sent by the block producer on every startup.
type HandshakeRequest struct {
	// The last block the producer committed. Nil = genesis (fresh chain).
	LastCommitted *BlockID `cramberry:"1"`
	// Raw genesis document. Only set when LastCommitted is nil.
	Genesis *GenesisDoc `cramberry:"2"`
}

// HandshakeResponse is the application's reply, reporting its
// state and capabilities.
type HandshakeResponse struct {
	// The last block the APP committed. Nil = app has no state.
	LastBlock *BlockID `cramberry:"1"`
	// App hash at that height (for consistency check with the producer).
	AppHash *AppHash `cramberry:"2"`
	// Capabilities this app supports. Drives producer behavior.
	Capabilities Capabilities `cramberry:"3"`
	// Semantic version of the engine, checked against the producer's
	// constraint.
	Version string `cramberry:"4"`
	// Time of LastBlock, so a restarted producer resumes the clock.
	LastBlockTime Timestamp `cramberry:"5"`
}
