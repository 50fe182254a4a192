package types

// ValidatorAddress is the 20-byte consensus address of a validator,
// keccak256 of its uncompressed public key like account addresses.
type ValidatorAddress [20]byte

// KeyType identifies the curve of a consensus key. Only secp256k1 keys
// exist on the simulated chain; the value matches the tag the engine
// protocol has always used for it.
type KeyType uint8

const KeyTypeSecp256k1 KeyType = 2

// PublicKey is a consensus public key in compressed form.
type PublicKey struct {
	Type KeyType `cramberry:"1"`
	Data []byte  `cramberry:"2"`
}

// ValidatorUpdate reports the bonded power of a validator at the end of
// a block. Zero power means the validator left the active set, for
// example after its last delegation was undelegated.
type ValidatorUpdate struct {
	PubKey PublicKey `cramberry:"1"`
	Power  uint64    `cramberry:"2"`
}
