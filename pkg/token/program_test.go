package token_test

import (
	"crypto/ed25519"
	"crypto/rand"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forge-markets/forge-server/pkg/ledger"
	"github.com/forge-markets/forge-server/pkg/token"
)

func newKey(t *testing.T) ed25519.PublicKey {
	pub, _, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	return pub
}

func newTokenAccountView(t *testing.T, std token.Standard, mint, owner ed25519.PublicKey, amount uint64) *ledger.AccountView {
	a := token.Account{
		Mint:   mint,
		Owner:  owner,
		Amount: amount,
		State:  token.AccountStateInitialized,
	}
	return ledger.NewAccountView(newKey(t), &ledger.Account{
		Lamports: 1,
		Owner:    std.ProgramID(),
		Data:     a.Marshal(std),
	}, false, true)
}

func newMintView(t *testing.T, std token.Standard, authority ed25519.PublicKey, supply uint64) *ledger.AccountView {
	m := token.Mint{
		MintAuthority: authority,
		Supply:        supply,
		Decimals:      6,
		Initialized:   true,
	}
	return ledger.NewAccountView(newKey(t), &ledger.Account{
		Lamports: 1,
		Owner:    std.ProgramID(),
		Data:     m.Marshal(std),
	}, false, true)
}

func signerAuthority(t *testing.T, address ed25519.PublicKey) ledger.Authority {
	view := ledger.NewAccountView(address, &ledger.Account{Owner: ledger.SystemProgramID}, true, true)
	authority, err := ledger.NewSignerAuthority(view)
	require.NoError(t, err)
	return authority
}

func balance(t *testing.T, v *ledger.AccountView) uint64 {
	a, ok := token.UnmarshalAccount(v.Data())
	require.True(t, ok)
	return a.Amount
}

func TestTransfer(t *testing.T) {
	for _, std := range []token.Standard{token.StandardLegacy, token.StandardExtended} {
		t.Run(std.String(), func(t *testing.T) {
			alice := newKey(t)
			bob := newKey(t)
			mint := newKey(t)

			src := newTokenAccountView(t, std, mint, alice, 100)
			dst := newTokenAccountView(t, std, mint, bob, 5)

			require.NoError(t, token.Transfer(src, dst, signerAuthority(t, alice), 30))
			assert.EqualValues(t, 70, balance(t, src))
			assert.EqualValues(t, 35, balance(t, dst))

			err := token.Transfer(src, dst, signerAuthority(t, bob), 1)
			assert.Equal(t, ledger.ErrInvalidOwner, err)

			err = token.Transfer(src, dst, signerAuthority(t, alice), 71)
			assert.Equal(t, ledger.ErrInsufficientFunds, err)

			other := newTokenAccountView(t, std, newKey(t), bob, 0)
			err = token.Transfer(src, other, signerAuthority(t, alice), 1)
			assert.Equal(t, ledger.ErrInvalidAccountData, err)
		})
	}
}

func TestTransfer_Self(t *testing.T) {
	alice := newKey(t)
	mint := newKey(t)

	src := newTokenAccountView(t, token.StandardLegacy, mint, alice, 100)

	require.NoError(t, token.Transfer(src, src, signerAuthority(t, alice), 40))
	assert.EqualValues(t, 100, balance(t, src))
}

func TestTransfer_Overflow(t *testing.T) {
	alice := newKey(t)
	bob := newKey(t)
	mint := newKey(t)

	src := newTokenAccountView(t, token.StandardLegacy, mint, alice, 10)
	dst := newTokenAccountView(t, token.StandardLegacy, mint, bob, math.MaxUint64)

	err := token.Transfer(src, dst, signerAuthority(t, alice), 1)
	assert.Equal(t, ledger.ErrArithmeticOverflow, err)
}

func TestMintTo(t *testing.T) {
	authority := newKey(t)
	owner := newKey(t)

	mint := newMintView(t, token.StandardLegacy, authority, 0)
	dest := newTokenAccountView(t, token.StandardLegacy, mint.Address(), owner, 0)

	require.NoError(t, token.MintTo(mint, dest, signerAuthority(t, authority), 500))
	assert.EqualValues(t, 500, balance(t, dest))

	m, ok := token.UnmarshalMint(mint.Data())
	require.True(t, ok)
	assert.EqualValues(t, 500, m.Supply)

	err := token.MintTo(mint, dest, signerAuthority(t, owner), 1)
	assert.Equal(t, ledger.ErrInvalidOwner, err)
}

func TestMintTo_FixedSupply(t *testing.T) {
	owner := newKey(t)

	mint := newMintView(t, token.StandardLegacy, nil, 100)
	dest := newTokenAccountView(t, token.StandardLegacy, mint.Address(), owner, 0)

	// A mint without a minting authority is frozen at its current supply.
	err := token.MintTo(mint, dest, signerAuthority(t, owner), 1)
	assert.Equal(t, ledger.ErrInvalidOwner, err)
}

func TestBurn(t *testing.T) {
	authority := newKey(t)
	owner := newKey(t)

	mint := newMintView(t, token.StandardLegacy, authority, 500)
	account := newTokenAccountView(t, token.StandardLegacy, mint.Address(), owner, 500)

	require.NoError(t, token.Burn(account, mint, signerAuthority(t, owner), 200))
	assert.EqualValues(t, 300, balance(t, account))

	m, ok := token.UnmarshalMint(mint.Data())
	require.True(t, ok)
	assert.EqualValues(t, 300, m.Supply)

	err := token.Burn(account, mint, signerAuthority(t, owner), 301)
	assert.Equal(t, ledger.ErrInsufficientFunds, err)

	err = token.Burn(account, mint, signerAuthority(t, authority), 1)
	assert.Equal(t, ledger.ErrInvalidOwner, err)
}

func TestCloseAccount(t *testing.T) {
	owner := newKey(t)
	mint := newKey(t)

	account := newTokenAccountView(t, token.StandardLegacy, mint, owner, 10)
	dest := ledger.NewAccountView(newKey(t), &ledger.Account{Lamports: 100, Owner: ledger.SystemProgramID}, false, true)

	// Not empty yet.
	err := token.CloseAccount(account, dest, signerAuthority(t, owner))
	assert.Equal(t, ledger.ErrInvalidState, err)

	require.NoError(t, token.Transfer(account, newTokenAccountView(t, token.StandardLegacy, mint, owner, 0), signerAuthority(t, owner), 10))

	err = token.CloseAccount(account, dest, signerAuthority(t, newKey(t)))
	assert.Equal(t, ledger.ErrInvalidOwner, err)

	require.NoError(t, token.CloseAccount(account, dest, signerAuthority(t, owner)))
	assert.EqualValues(t, 101, dest.Lamports())
	assert.False(t, account.Exists())
}

func TestDetectStandard(t *testing.T) {
	std, ok := token.DetectStandard(token.ProgramKey)
	require.True(t, ok)
	assert.Equal(t, token.StandardLegacy, std)

	std, ok = token.DetectStandard(token.Program2022Key)
	require.True(t, ok)
	assert.Equal(t, token.StandardExtended, std)

	_, ok = token.DetectStandard(newKey(t))
	assert.False(t, ok)
}

func TestUnmarshal_RejectsForgedData(t *testing.T) {
	m := token.Mint{Initialized: true}

	_, ok := token.UnmarshalMint(m.Marshal(token.StandardLegacy)[:token.MintSize-1])
	assert.False(t, ok)

	// Extended data with the wrong discriminator is not a mint, no matter
	// the length.
	forged := m.Marshal(token.StandardExtended)
	forged[token.ExtensionTypeOffset] = token.ExtensionTypeTokenAccount
	_, ok = token.UnmarshalMint(forged)
	assert.False(t, ok)

	a := token.Account{State: token.AccountStateInitialized}
	forgedAccount := a.Marshal(token.StandardExtended)
	forgedAccount[token.ExtensionTypeOffset] = token.ExtensionTypeMint
	_, ok = token.UnmarshalAccount(forgedAccount)
	assert.False(t, ok)
}
