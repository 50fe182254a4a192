package types

import "strings"

// Capabilities is a bitfield declaring which optional behavior
// the application supports.
type Capabilities uint8

const (
	CapSimulation Capabilities = 1 << iota // 0b0001
	CapSystemTx                            // 0b0010: accepts unsigned system transactions
)

// Has returns true if all bits in cap are set.
func (c Capabilities) Has(cap Capabilities) bool {
	return c&cap == cap
}

// String returns a human-readable representation.
func (c Capabilities) String() string {
	var caps []string
	if c.Has(CapSimulation) {
		caps = append(caps, "Simulation")
	}
	if c.Has(CapSystemTx) {
		caps = append(caps, "SystemTx")
	}
	if len(caps) == 0 {
		return "none"
	}
	return strings.Join(caps, "|")
}
