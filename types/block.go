package types

// TxOutcome is the result of executing a single transaction.
type TxOutcome struct {
	// Position of this tx in the block (0-indexed).
	Index uint32 `cramberry:"1"`
	// Application-defined result code. 0 = success.
	Code uint32 `cramberry:"2"`
	// Human-readable result info (non-deterministic, for debugging).
	Info string `cramberry:"3"`
	// Encoded TxMsgData on success.
	Data []byte `cramberry:"4"`
	// Events emitted by this transaction.
	Events []Event `cramberry:"5"`
	// Namespace of Code. Empty on success.
	Codespace string `cramberry:"6"`
	// Gas declared by the transaction and gas actually consumed.
	GasWanted uint64 `cramberry:"7"`
	GasUsed   uint64 `cramberry:"8"`
}

// OK returns true if the transaction executed successfully.
func (t TxOutcome) OK() bool { return t.Code == 0 }

// GasInfo returns the gas accounting of the outcome.
func (t TxOutcome) GasInfo() GasInfo {
	return GasInfo{GasWanted: t.GasWanted, GasUsed: t.GasUsed}
}

// BlockOutcome is the comprehensive output of executing a finalized block.
// All execution side-effects live here.
type BlockOutcome struct {
	// Per-transaction results, in block order.
	TxOutcomes []TxOutcome `cramberry:"1"`
	// Block-level events (proposal tallies, unbonding, auction settlement).
	BlockEvents []Event `cramberry:"2"`
	// New app state root after this block.
	AppHash AppHash `cramberry:"3"`
	// Changes to the validator set. Empty slice = no change.
	ValidatorUpdates []ValidatorUpdate `cramberry:"4"`
	// Changes to consensus params. Nil = no change.
	ParamsUpdate *ConsensusParams `cramberry:"5"`
}

// FinalizedBlock is a decided block delivered to the application
// for execution.
type FinalizedBlock struct {
	Height        uint64           `cramberry:"1"`
	Time          Timestamp        `cramberry:"2"`
	Proposer      ValidatorAddress `cramberry:"3"`
	Txs           []Tx             `cramberry:"4"`
	LastBlockHash Hash             `cramberry:"5"`
}

// CommitResult is returned after the application persists
// state.
type CommitResult struct {
	// Minimum height the app still needs for queries.
	// 0 = no pruning preference.
	RetainHeight uint64 `cramberry:"1"`
}

// TxResult is a committed transaction as seen by the block producer:
// the outcome plus where it landed.
type TxResult struct {
	Height  uint64    `cramberry:"1"`
	Hash    Hash      `cramberry:"2"`
	Outcome TxOutcome `cramberry:"3"`
}
