package testtube

import (
	"errors"
	"fmt"

	"github.com/blockberries/testtube/types"
)

// EncodeError is returned when a typed request cannot be serialized.
// It indicates a codec regression, never a chain condition.
type EncodeError struct {
	Path string
	Err  error
}

func (e *EncodeError) Error() string {
	return fmt.Sprintf("encode %s: %v", e.Path, e.Err)
}

func (e *EncodeError) Unwrap() error { return e.Err }

// DecodeError is returned when response bytes do not parse as the
// expected response type. It signals a path/type mismatch and is never
// retried.
type DecodeError struct {
	Path string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s response: %v", e.Path, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// ExecuteError is returned when the engine rejects a transaction. Code
// and Codespace are the engine's structured reason, Log its message.
// Height is the block the transaction failed in, or the last committed
// height when the rejection came from gas estimation and no block was
// produced.
type ExecuteError struct {
	Code      uint32
	Codespace string
	Log       string
	Height    uint64
	GasInfo   types.GasInfo
}

func (e *ExecuteError) Error() string {
	return fmt.Sprintf("execute failed at height %d: codespace=%s code=%d: %s", e.Height, e.Codespace, e.Code, e.Log)
}

// QueryError is returned when the engine rejects a query.
type QueryError struct {
	Path      string
	Code      uint32
	Codespace string
	Log       string
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("query %s failed: codespace=%s code=%d: %s", e.Path, e.Codespace, e.Code, e.Log)
}

// SimulateError is returned when an explicit simulation is rejected.
// Nothing was submitted.
type SimulateError struct {
	Code      uint32
	Codespace string
	Log       string
}

func (e *SimulateError) Error() string {
	return fmt.Sprintf("simulate failed: codespace=%s code=%d: %s", e.Codespace, e.Code, e.Log)
}

// IsEncode checks whether err is (or wraps) an EncodeError.
func IsEncode(err error) (*EncodeError, bool) { return as[*EncodeError](err) }

// IsDecode checks whether err is (or wraps) a DecodeError.
func IsDecode(err error) (*DecodeError, bool) { return as[*DecodeError](err) }

// IsExecute checks whether err is (or wraps) an ExecuteError.
func IsExecute(err error) (*ExecuteError, bool) { return as[*ExecuteError](err) }

// IsQuery checks whether err is (or wraps) a QueryError.
func IsQuery(err error) (*QueryError, bool) { return as[*QueryError](err) }

// IsSimulate checks whether err is (or wraps) a SimulateError.
func IsSimulate(err error) (*SimulateError, bool) { return as[*SimulateError](err) }

func as[T error](err error) (T, bool) {
	var target T
	if errors.As(err, &target) {
		return target, true
	}
	return target, false
}

// NewExecuteError builds an ExecuteError from a failed outcome.
func NewExecuteError(height uint64, o types.TxOutcome) *ExecuteError {
	return &ExecuteError{
		Code:      o.Code,
		Codespace: o.Codespace,
		Log:       o.Info,
		Height:    height,
		GasInfo:   o.GasInfo(),
	}
}

// NewSimulateError builds a SimulateError from a failed outcome.
func NewSimulateError(o types.TxOutcome) *SimulateError {
	return &SimulateError{Code: o.Code, Codespace: o.Codespace, Log: o.Info}
}

// NewQueryError builds a QueryError from a failed query result.
func NewQueryError(path string, r types.StateQueryResult) *QueryError {
	return &QueryError{Path: path, Code: r.Code, Codespace: r.Codespace, Log: r.Info}
}
