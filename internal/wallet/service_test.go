package wallet_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github/chapool/go-coldwallet/internal/coin"
	"github/chapool/go-coldwallet/internal/device"
	"github/chapool/go-coldwallet/internal/errs"
	"github/chapool/go-coldwallet/internal/protocol"
	"github/chapool/go-coldwallet/internal/test"
	"github/chapool/go-coldwallet/internal/wallet"
	"github/chapool/go-coldwallet/internal/wallet/address"
	"github/chapool/go-coldwallet/internal/wallet/txparse"
)

func newService(t *testing.T, inv *device.Invoker) wallet.Service {
	t.Helper()

	reg := coin.Default()
	svc, err := wallet.NewService(inv, reg, address.NewEngine(reg), txparse.NewNormalizer(reg))
	require.NoError(t, err)
	return svc
}

func TestAccountAddresses(t *testing.T) {
	test.WithTestInvoker(t, func(inv *device.Invoker, emu *test.Emulator) {
		svc := newService(t, inv)

		addrs, err := svc.AccountAddresses(t.Context(), coin.LTC, 0, 0, 3)
		require.NoError(t, err)
		require.Len(t, addrs, 3)
		assert.Equal(t, "3DYRx8E2vK8KaXA9LJ21vV4wGL4hmRYmCL", addrs[0].Address)
		assert.Equal(t, "3Qg4Jb6GJM2vk4eDwiyouPQRAukVa5Mbk7", addrs[1].Address)
		assert.Equal(t, "3FnRAxvQm2qbAYSWoQnv2Jb1jqruYtFhMr", addrs[2].Address)
		assert.Equal(t, "m/49'/2'/0'/0/2", addrs[2].Path)

		reqs := emu.Requests()
		require.Len(t, reqs, 1, "one device round trip per batch")
		pl, ok := reqs[0].Payload(protocol.TagPath)
		require.True(t, ok)
		path, _ := pl.Text()
		assert.Equal(t, "m/49'/2'/0'", path)
	})
}

func TestReceiveAddress(t *testing.T) {
	test.WithTestInvoker(t, func(inv *device.Invoker, _ *test.Emulator) {
		svc := newService(t, inv)

		addr, err := svc.ReceiveAddress(t.Context(), coin.LTC, 10)
		require.NoError(t, err)
		assert.Equal(t, "3CAzK2RGXrCMoerQ1UFdmUHDyw5t4QcR33", addr.Address)
		assert.Equal(t, uint32(10), addr.Index)
	})
}

func TestAccountAddressesEd25519(t *testing.T) {
	test.WithTestInvoker(t, func(inv *device.Invoker, emu *test.Emulator) {
		emu.SetXPub("m/44'/291'/0'", "5866666666666666666666666666666666666666666666666666666666666666")
		svc := newService(t, inv)

		addrs, err := svc.AccountAddresses(t.Context(), coin.IOST, 0, 0, 5)
		require.NoError(t, err)
		require.Len(t, addrs, 1)
		assert.NotEmpty(t, addrs[0].Address)
	})
}

func TestAccountAddressesErrors(t *testing.T) {
	test.WithTestInvoker(t, func(inv *device.Invoker, emu *test.Emulator) {
		svc := newService(t, inv)

		_, err := svc.AccountAddresses(t.Context(), "DOGE", 0, 0, 1)
		assert.True(t, errs.Is(err, errs.KindUnsupportedCoin))

		_, err = svc.AccountAddresses(t.Context(), coin.LTC, 0, 0, 0)
		assert.True(t, errs.Is(err, errs.KindInvalidKey))

		_, err = svc.AccountAddresses(t.Context(), coin.LTC, 0, 1<<31-1, 2)
		assert.True(t, errs.Is(err, errs.KindInvalidKey), "index overflow into hardened range")

		emu.FailSends(assert.AnError)
		_, err = svc.AccountAddresses(t.Context(), coin.LTC, 0, 0, 1)
		assert.True(t, errs.Is(err, errs.KindTransport))
	})
}

func TestPrepareSigning(t *testing.T) {
	test.WithTestInvoker(t, func(inv *device.Invoker, _ *test.Emulator) {
		svc := newService(t, inv)

		tx, err := svc.PrepareSigning(t.Context(), []byte(`{"metadata": {"from": "TA", "to": "TB", "value": 1000000, "fee": 0, "token": "1002000", "override": {"tokenShortName": "BTT", "decimals": 6}}}`), coin.TRON)
		require.NoError(t, err)
		assert.True(t, tx.IsToken())
		assert.Equal(t, "1", tx.Amount().String())

		tx, err = svc.PrepareSigning(t.Context(), []byte(`{"metadata": {"from": "TA"}}`), coin.TRON)
		assert.Nil(t, tx)
		assert.True(t, errs.Is(err, errs.KindMalformedTransaction))
	})
}

func TestVerifyMnemonic(t *testing.T) {
	test.WithTestInvoker(t, func(inv *device.Invoker, _ *test.Emulator) {
		svc := newService(t, inv)

		require.NoError(t, svc.VerifyMnemonic(t.Context(), test.Mnemonic))

		err := svc.VerifyMnemonic(t.Context(), "zoo zoo zoo")
		assert.True(t, errs.Is(err, errs.KindDeviceRejected))
	})
}

func TestNewServiceRequiresDependencies(t *testing.T) {
	reg := coin.Default()
	_, err := wallet.NewService(nil, reg, address.NewEngine(reg), txparse.NewNormalizer(reg))
	assert.Error(t, err)
}

func TestDeriveFromXPub(t *testing.T) {
	engine := address.NewEngine(coin.Default())

	addrs, err := wallet.DeriveFromXPub(engine, coin.LTC, test.LitecoinXPub, 0, 1, 2)
	require.NoError(t, err)
	require.Len(t, addrs, 2)
	assert.Equal(t, "3Qg4Jb6GJM2vk4eDwiyouPQRAukVa5Mbk7", addrs[0].Address)
	assert.Equal(t, "0/1", addrs[0].Path)
	assert.Equal(t, "3FnRAxvQm2qbAYSWoQnv2Jb1jqruYtFhMr", addrs[1].Address)
	assert.Equal(t, uint32(2), addrs[1].Index)

	addrs, err = wallet.DeriveFromXPub(engine, coin.IOST, "5866666666666666666666666666666666666666666666666666666666666666", 0, 0, 10)
	require.NoError(t, err)
	require.Len(t, addrs, 1, "ed25519 coins yield the account key only")
	assert.Empty(t, addrs[0].Path)

	_, err = wallet.DeriveFromXPub(engine, coin.LTC, test.LitecoinXPub, 0, 0, 0)
	assert.True(t, errs.Is(err, errs.KindInvalidKey))

	_, err = wallet.DeriveFromXPub(engine, coin.LTC, test.LitecoinXPub, 0, 0, wallet.MaxBatch+1)
	assert.True(t, errs.Is(err, errs.KindInvalidKey))

	_, err = wallet.DeriveFromXPub(engine, "DOGE", test.LitecoinXPub, 0, 0, 1)
	assert.True(t, errs.Is(err, errs.KindUnsupportedCoin))

	_, err = wallet.DeriveFromXPub(engine, coin.LTC, "not-a-key", 0, 0, 1)
	assert.True(t, errs.Is(err, errs.KindInvalidKey))
}
