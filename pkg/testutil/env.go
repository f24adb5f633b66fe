// Package testutil provides ledger fixtures for program tests: funded
// wallets, pre-initialized mints and token accounts written directly into
// state, and balance probes.
package testutil

import (
	"crypto/ed25519"
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/forge-markets/forge-server/pkg/ledger"
	"github.com/forge-markets/forge-server/pkg/token"
)

// Env bundles a fresh ledger runtime for a single test. Always read state
// through the runtime; executing a transaction swaps in a new state.
type Env struct {
	Rent    ledger.Rent
	Runtime *ledger.Runtime
}

func NewEnv(t *testing.T) *Env {
	rent := ledger.DefaultRent()
	return &Env{
		Rent:    rent,
		Runtime: ledger.NewRuntime(ledger.NewState(), rent),
	}
}

// NewKey generates a random account address.
func NewKey(t *testing.T) ed25519.PublicKey {
	pub, _, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	return pub
}

// FundAccount writes a system-owned account holding lamports.
func (e *Env) FundAccount(t *testing.T, address ed25519.PublicKey, lamports uint64) {
	e.Runtime.State().SetAccount(address, &ledger.Account{
		Lamports: lamports,
		Owner:    ledger.SystemProgramID,
	})
}

// CreateMint writes an initialized mint at a fresh address under the given
// standard and returns the address.
func (e *Env) CreateMint(t *testing.T, std token.Standard, decimals uint8, authority ed25519.PublicKey) ed25519.PublicKey {
	address := NewKey(t)
	m := token.Mint{
		MintAuthority: authority,
		Decimals:      decimals,
		Initialized:   true,
	}
	e.Runtime.State().SetAccount(address, &ledger.Account{
		Lamports: e.Rent.MinimumBalance(std.MintSize()),
		Owner:    std.ProgramID(),
		Data:     m.Marshal(std),
	})
	return address
}

// CreateAssociatedAccount writes the canonical associated token account for
// (wallet, mint) holding amount tokens and returns its address. The mint's
// supply is raised to cover the balance.
func (e *Env) CreateAssociatedAccount(t *testing.T, wallet, mint ed25519.PublicKey, amount uint64) ed25519.PublicKey {
	state := e.Runtime.State()

	mintAccount := state.Account(mint)
	require.NotNil(t, mintAccount)
	std, ok := token.DetectStandard(mintAccount.Owner)
	require.True(t, ok)

	address, err := token.AssociatedAccount(wallet, std.ProgramID(), mint)
	require.NoError(t, err)

	a := token.Account{
		Mint:   mint,
		Owner:  wallet,
		Amount: amount,
		State:  token.AccountStateInitialized,
	}
	state.SetAccount(address, &ledger.Account{
		Lamports: e.Rent.MinimumBalance(std.AccountSize()),
		Owner:    std.ProgramID(),
		Data:     a.Marshal(std),
	})

	if amount > 0 {
		m, ok := token.UnmarshalMint(mintAccount.Data)
		require.True(t, ok)
		m.Supply += amount
		updated := state.Account(mint)
		copy(updated.Data, m.Marshal(std)[:token.MintSize])
	}
	return address
}

// TokenBalance reads the balance of a token account, zero if absent.
func (e *Env) TokenBalance(t *testing.T, address ed25519.PublicKey) uint64 {
	account := e.Runtime.State().Account(address)
	if account == nil {
		return 0
	}
	a, ok := token.UnmarshalAccount(account.Data)
	require.True(t, ok)
	return a.Amount
}

// MintSupply reads the supply of a mint, requiring it to exist.
func (e *Env) MintSupply(t *testing.T, mint ed25519.PublicKey) uint64 {
	account := e.Runtime.State().Account(mint)
	require.NotNil(t, account)
	m, ok := token.UnmarshalMint(account.Data)
	require.True(t, ok)
	return m.Supply
}

// Lamports reads an account's lamport balance, zero if absent.
func (e *Env) Lamports(t *testing.T, address ed25519.PublicKey) uint64 {
	account := e.Runtime.State().Account(address)
	if account == nil {
		return 0
	}
	return account.Lamports
}
