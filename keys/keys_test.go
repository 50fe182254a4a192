package keys_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blockberries/testtube/keys"
)

func TestSignVerify(t *testing.T) {
	k, err := keys.Generate()
	require.NoError(t, err)

	msg := []byte("sign doc")
	sig := k.Sign(msg)
	assert.True(t, k.PubKey().Verify(msg, sig))
	assert.False(t, k.PubKey().Verify([]byte("other doc"), sig))

	other, err := keys.Generate()
	require.NoError(t, err)
	assert.False(t, other.PubKey().Verify(msg, sig))
}

func TestPrivKeyHexRoundTrip(t *testing.T) {
	k, err := keys.Generate()
	require.NoError(t, err)

	loaded, err := keys.PrivKeyFromHex(k.Hex())
	require.NoError(t, err)
	assert.Equal(t, k.PubKey(), loaded.PubKey())

	_, err = keys.PrivKeyFromBytes([]byte{1, 2, 3})
	assert.ErrorIs(t, err, keys.ErrInvalidKey)
}

func TestAddress(t *testing.T) {
	k, err := keys.Generate()
	require.NoError(t, err)

	addr, err := k.PubKey().Bech32Address("inj")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(addr, "inj1"))

	raw, err := keys.DecodeAddress("inj", addr)
	require.NoError(t, err)
	assert.Len(t, raw, keys.AddressLength)

	_, err = keys.DecodeAddress("cosmos", addr)
	assert.ErrorIs(t, err, keys.ErrInvalidAddress)

	valoper, err := keys.ConvertPrefix(addr, "inj", "injvaloper")
	require.NoError(t, err)
	back, err := keys.ConvertPrefix(valoper, "injvaloper", "inj")
	require.NoError(t, err)
	assert.Equal(t, addr, back)
}

func TestParsePubKey_Normalizes(t *testing.T) {
	k, err := keys.Generate()
	require.NoError(t, err)

	pk, err := keys.ParsePubKey(k.PubKey())
	require.NoError(t, err)
	assert.Len(t, pk, 33)

	_, err = keys.ParsePubKey([]byte{0x05, 0x01})
	assert.ErrorIs(t, err, keys.ErrInvalidKey)
}

func TestModuleAddress_Stable(t *testing.T) {
	a := keys.ModuleAddress("inj", "gov")
	assert.Equal(t, a, keys.ModuleAddress("inj", "gov"))
	assert.NotEqual(t, a, keys.ModuleAddress("inj", "auction"))
	assert.Equal(t, "inj10d07y265gmmuvt4z0w9aw880jnsr700jstypyt", a)
}
