package account_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blockberries/testtube/account"
	"github.com/blockberries/testtube/keys"
	"github.com/blockberries/testtube/types"
)

func newAccount(t *testing.T) *account.SigningAccount {
	t.Helper()
	k, err := keys.Generate()
	require.NoError(t, err)
	acc, err := account.New(k, "inj", account.Auto{GasPrice: types.NewCoin("inj", 500000000), GasAdjustment: 1.2})
	require.NoError(t, err)
	return acc
}

func TestWithFeeSetting_DoesNotMutate(t *testing.T) {
	acc := newAccount(t)
	custom := account.Custom{Amount: types.NewCoin("inj", 2500), GasLimit: 250000}

	changed := acc.WithFeeSetting(custom)

	assert.IsType(t, account.Auto{}, acc.FeeSetting())
	assert.Equal(t, custom, changed.FeeSetting())
	assert.Equal(t, acc.Address(), changed.Address())
	assert.Equal(t, acc.PublicKey(), changed.PublicKey())
}

func TestSign_VerifiesWithPublicKey(t *testing.T) {
	acc := newAccount(t)
	sig := acc.Sign([]byte("doc"))
	assert.True(t, acc.PublicKey().Verify([]byte("doc"), sig))
}

func TestAddress_MatchesKeyDerivation(t *testing.T) {
	acc := newAccount(t)
	want, err := acc.PublicKey().Bech32Address("inj")
	require.NoError(t, err)
	assert.Equal(t, want, acc.Address())
}

func TestNew_RejectsMissingInputs(t *testing.T) {
	_, err := account.New(nil, "inj", account.Auto{})
	assert.ErrorIs(t, err, keys.ErrInvalidKey)

	k, err := keys.Generate()
	require.NoError(t, err)
	_, err = account.New(k, "inj", nil)
	assert.Error(t, err)
}

func TestAuto_GasLimitAndFee(t *testing.T) {
	auto := account.Auto{GasPrice: types.NewCoin("inj", 500000000), GasAdjustment: 1.2}

	assert.GreaterOrEqual(t, float64(auto.GasLimit(98765)), float64(98765)*1.2)
	assert.Equal(t, uint64(150000), account.Auto{GasAdjustment: 1.5}.GasLimit(100000))
	assert.Equal(t, uint64(5), account.Auto{GasAdjustment: 1.5}.GasLimit(3))
	assert.Equal(t, uint64(7), account.Auto{}.GasLimit(7))

	fee, err := auto.Fee(120000)
	require.NoError(t, err)
	assert.Equal(t, types.MustNewCoin("inj", "60000000000000"), fee)
}
