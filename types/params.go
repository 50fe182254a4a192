package types

// ConsensusParams contains consensus-critical parameters
// the application can request to change.
type ConsensusParams struct {
	MaxBlockBytes uint64 `cramberry:"1"`
	MaxTxBytes    uint64 `cramberry:"2"`
	// Maximum gas a single block may consume. 0 = unlimited.
	MaxBlockGas uint64 `cramberry:"3"`
}
