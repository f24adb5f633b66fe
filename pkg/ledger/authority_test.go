package ledger_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forge-markets/forge-server/pkg/ledger"
	"github.com/forge-markets/forge-server/pkg/solana"
)

func TestSignerAuthority(t *testing.T) {
	address := newKey(t)
	account := &ledger.Account{Lamports: 1, Owner: ledger.SystemProgramID}

	_, err := ledger.NewSignerAuthority(ledger.NewAccountView(address, account, false, true))
	assert.Equal(t, ledger.ErrNotSigner, err)

	authority, err := ledger.NewSignerAuthority(ledger.NewAccountView(address, account, true, true))
	require.NoError(t, err)
	assert.True(t, authority.Covers(address))
	assert.False(t, authority.Covers(newKey(t)))
}

func TestDerivedAuthority(t *testing.T) {
	program := newKey(t)
	seed := []byte("vault")

	address, bump, err := solana.FindProgramAddressAndBump(program, seed)
	require.NoError(t, err)

	authority, err := ledger.NewDerivedAuthority(program, seed, []byte{bump})
	require.NoError(t, err)
	assert.True(t, authority.Covers(address))
	assert.False(t, authority.Covers(program))
}

func TestZeroAuthorityCoversNothing(t *testing.T) {
	var authority ledger.Authority
	assert.False(t, authority.Covers(newKey(t)))
	assert.False(t, authority.Covers(nil))
}

func TestRentMinimumBalance(t *testing.T) {
	rent := ledger.DefaultRent()

	// (128 + 165) * 3480 * 2.0
	assert.EqualValues(t, 2_039_280, rent.MinimumBalance(165))
	assert.True(t, rent.MinimumBalance(1) < rent.MinimumBalance(100))
}
