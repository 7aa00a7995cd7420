package connectors

import (
	"context"
	"testing"

	"github.com/ethereum/go-ethereum/accounts/keystore"
	"github.com/kemsguy7/wagmi-app/logging/logtest"
	"github.com/kemsguy7/wagmi-app/wallet"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeystore(t *testing.T) {
	const passphrase = "correct horse"

	newKeystore := func(t *testing.T) (*keystore.KeyStore, string) {
		ks := keystore.NewKeyStore(t.TempDir(), keystore.LightScryptN, keystore.LightScryptP)
		account, err := ks.NewAccount(passphrase)
		require.NoError(t, err)

		return ks, account.Address.Hex()
	}

	t.Run("unconfigured", func(t *testing.T) {
		// ARRANGE
		c := NewKeystore(OpenKeystore(""), passphrase, logtest.New(t))

		// ACT
		authorized, authErr := c.IsAuthorized(context.Background())
		provider, providerErr := c.Provider(context.Background())
		_, connectErr := c.Connect(context.Background(), nil)

		// ASSERT
		assert.NoError(t, authErr)
		assert.False(t, authorized)
		assert.NoError(t, providerErr)
		assert.Nil(t, provider)
		assert.Equal(t, wallet.KindProviderMissing, wallet.KindOf(connectErr))
	})

	t.Run("empty directory has no provider", func(t *testing.T) {
		// ARRANGE
		c := NewKeystore(OpenKeystore(t.TempDir()), passphrase, logtest.New(t))

		// ACT
		provider, err := c.Provider(context.Background())

		// ASSERT
		assert.NoError(t, err)
		assert.Nil(t, provider)
	})

	t.Run("wrong passphrase", func(t *testing.T) {
		// ARRANGE
		ks, _ := newKeystore(t)
		c := NewKeystore(ks, "wrong", logtest.New(t))

		// ACT
		_, err := c.Connect(context.Background(), nil)

		// ASSERT
		require.Error(t, err)
		assert.Equal(t, wallet.KindUnauthorized, wallet.KindOf(err))
	})

	t.Run("connect and disconnect", func(t *testing.T) {
		// ARRANGE
		ks, address := newKeystore(t)
		c := NewKeystore(ks, passphrase, logtest.New(t))
		ctx := context.Background()

		provider, err := c.Provider(ctx)
		require.NoError(t, err)
		require.NotNil(t, provider)

		// ACT
		session, err := c.Connect(ctx, nil)
		require.NoError(t, err)

		authorized, err := c.IsAuthorized(ctx)
		require.NoError(t, err)

		require.NoError(t, c.Disconnect(ctx))

		authorizedAfter, err := c.IsAuthorized(ctx)
		require.NoError(t, err)

		// ASSERT
		assert.Equal(t, address, session.Address.Hex())
		assert.Zero(t, session.ChainID)
		assert.True(t, authorized)
		assert.False(t, authorizedAfter)
	})
}
