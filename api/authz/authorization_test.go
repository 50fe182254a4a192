package authz_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blockberries/testtube/api/authz"
	"github.com/blockberries/testtube/api/bank"
	"github.com/blockberries/testtube/types"
)

func TestAuthorization_KnownKinds(t *testing.T) {
	cases := []authz.Authorization{
		&authz.GenericAuthorization{Msg: "/injective.exchange.v1beta1.MsgCreateSpotLimitOrder"},
		&authz.SendAuthorization{SpendLimit: []types.Coin{types.NewCoin("usdc", 10)}, AllowList: []string{"inj1xyz"}},
	}
	for _, a := range cases {
		packed, err := authz.PackAuthorization(a)
		require.NoError(t, err)

		got, err := authz.UnpackAuthorization(packed)
		require.NoError(t, err)
		assert.Equal(t, a, got)
	}
}

func TestAuthorization_UnknownIsPreserved(t *testing.T) {
	raw := types.Any{TypeURL: "/cosmos.staking.v1beta1.StakeAuthorization", Value: []byte{1, 2, 3}}

	got, err := authz.UnpackAuthorization(raw)
	require.NoError(t, err)

	unknown, ok := got.(*authz.UnknownAuthorization)
	require.True(t, ok, "got %T", got)
	assert.Empty(t, unknown.MsgTypeURL())

	repacked, err := authz.PackAuthorization(unknown)
	require.NoError(t, err)
	assert.Equal(t, raw, repacked)
}

func TestSendAuthorization_AppliesToBankSend(t *testing.T) {
	assert.Equal(t, bank.MsgSendTypeURL, (&authz.SendAuthorization{}).MsgTypeURL())
}

func TestNewGrant_Expiration(t *testing.T) {
	exp := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	g, err := authz.NewGrant(&authz.GenericAuthorization{Msg: bank.MsgSendTypeURL}, &exp)
	require.NoError(t, err)
	require.NotNil(t, g.Expiration)
	assert.Equal(t, exp, g.Expiration.ToTime())
	assert.Equal(t, authz.GenericAuthorizationTypeURL, g.Authorization.TypeURL)

	g, err = authz.NewGrant(&authz.GenericAuthorization{Msg: bank.MsgSendTypeURL}, nil)
	require.NoError(t, err)
	assert.Nil(t, g.Expiration)
}
