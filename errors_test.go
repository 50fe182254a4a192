package testtube

import (
	"errors"
	"fmt"
	"testing"

	"github.com/blockberries/testtube/types"
)

func TestIsExecute_Direct(t *testing.T) {
	err := NewExecuteError(42, types.TxOutcome{Code: 5, Codespace: "sdk", Info: "insufficient funds"})
	e, ok := IsExecute(err)
	if !ok {
		t.Fatal("expected IsExecute to return true")
	}
	if e.Height != 42 || e.Code != 5 || e.Codespace != "sdk" {
		t.Fatalf("unexpected fields: %+v", e)
	}
}

func TestIsExecute_Wrapped(t *testing.T) {
	inner := NewExecuteError(10, types.TxOutcome{Code: 4, Codespace: "authz", Info: "unauthorized"})
	wrapped := fmt.Errorf("delegate: %w", inner)
	e, ok := IsExecute(wrapped)
	if !ok {
		t.Fatal("expected IsExecute to find wrapped error")
	}
	if e.Log != "unauthorized" {
		t.Fatalf("got log %q", e.Log)
	}
}

func TestErrorKinds_AreDistinct(t *testing.T) {
	decode := &DecodeError{Path: "/x.v1.MsgA", Err: errors.New("truncated")}
	if _, ok := IsExecute(decode); ok {
		t.Fatal("decode error matched IsExecute")
	}
	if _, ok := IsDecode(decode); !ok {
		t.Fatal("decode error not matched by IsDecode")
	}

	query := NewQueryError("/x.v1.Query/A", types.StateQueryResult{Code: 22, Codespace: "sdk", Info: "not found"})
	if _, ok := IsSimulate(query); ok {
		t.Fatal("query error matched IsSimulate")
	}
	if q, ok := IsQuery(query); !ok || q.Path != "/x.v1.Query/A" {
		t.Fatalf("IsQuery = %+v, %v", q, ok)
	}

	sim := NewSimulateError(types.TxOutcome{Code: 11, Codespace: "sdk", Info: "out of gas"})
	if _, ok := IsSimulate(sim); !ok {
		t.Fatal("simulate error not matched")
	}
}

func TestEncodeError_Unwraps(t *testing.T) {
	cause := errors.New("unsupported kind")
	err := fmt.Errorf("facade: %w", &EncodeError{Path: "/x", Err: cause})
	if !errors.Is(err, cause) {
		t.Fatal("EncodeError must unwrap to its cause")
	}
	if _, ok := IsEncode(err); !ok {
		t.Fatal("expected IsEncode to match")
	}
}

func TestIsX_Nil(t *testing.T) {
	if _, ok := IsExecute(nil); ok {
		t.Fatal("expected IsExecute(nil) to return false")
	}
	if _, ok := IsQuery(nil); ok {
		t.Fatal("expected IsQuery(nil) to return false")
	}
}
