package types

// GenesisDoc starts a chain. Validators lists the genesis validator
// set; AppState carries the engine's own genesis state (for simapp a
// cramberry-encoded system.GenesisState with funded accounts).
type GenesisDoc struct {
	ChainID         string            `cramberry:"1"`
	GenesisTime     Timestamp         `cramberry:"2"`
	InitialHeight   uint64            `cramberry:"3"`
	ConsensusParams ConsensusParams   `cramberry:"4"`
	Validators      []ValidatorUpdate `cramberry:"5"`
	AppState        []byte            `cramberry:"6"`
}
