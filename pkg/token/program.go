package token

import (
	"bytes"
	"crypto/ed25519"
	"math"

	"github.com/forge-markets/forge-server/pkg/ledger"
)

// Host-side implementations of the token program operations the financial
// programs consume. Each one decodes the affected accounts through the
// checked codec, verifies the Authority capability against the owner or
// authority recorded in the account bytes, and writes the updated layout
// back in place. Atomicity comes from the surrounding transaction.

// CreateMint allocates and initializes a mint under the given standard. The
// mint address must authorize its own creation.
func CreateMint(ctx *ledger.Context, payer, mint *ledger.AccountView, authority ledger.Authority, std Standard, decimals uint8, mintAuthority, freezeAuthority ed25519.PublicKey) error {
	space := std.MintSize()
	lamports := ctx.Rent.MinimumBalance(space)
	if err := ctx.CreateAccount(payer, mint, authority, lamports, uint64(space), std.ProgramID()); err != nil {
		return err
	}

	m := Mint{
		MintAuthority:   mintAuthority,
		Decimals:        decimals,
		Initialized:     true,
		FreezeAuthority: freezeAuthority,
	}
	mint.SetData(m.Marshal(std))
	return nil
}

// CreateAccount allocates and initializes a token holding account for the
// given mint and wallet owner.
func CreateAccount(ctx *ledger.Context, payer, account *ledger.AccountView, authority ledger.Authority, mint *ledger.AccountView, owner ed25519.PublicKey) error {
	std, ok := DetectStandard(mint.Owner())
	if !ok {
		return ledger.ErrInvalidOwner
	}

	space := std.AccountSize()
	lamports := ctx.Rent.MinimumBalance(space)
	if err := ctx.CreateAccount(payer, account, authority, lamports, uint64(space), std.ProgramID()); err != nil {
		return err
	}

	a := Account{
		Mint:  mint.Address(),
		Owner: owner,
		State: AccountStateInitialized,
	}
	account.SetData(a.Marshal(std))
	return nil
}

// Transfer moves amount tokens between two accounts of the same mint. The
// authority must cover the source account's owner.
func Transfer(from, to *ledger.AccountView, authority ledger.Authority, amount uint64) error {
	src, ok := UnmarshalAccount(from.Data())
	if !ok {
		return ledger.ErrInvalidAccountData
	}
	dst, ok := UnmarshalAccount(to.Data())
	if !ok {
		return ledger.ErrInvalidAccountData
	}

	if !bytes.Equal(src.Mint, dst.Mint) {
		return ledger.ErrInvalidAccountData
	}
	if !authority.Covers(src.Owner) {
		return ledger.ErrInvalidOwner
	}
	if src.Amount < amount {
		return ledger.ErrInsufficientFunds
	}
	if dst.Amount > math.MaxUint64-amount {
		return ledger.ErrArithmeticOverflow
	}

	src.Amount -= amount
	dst.Amount += amount

	// Self transfers alias the same underlying account; skip the stores so
	// the balance is left untouched.
	if bytes.Equal(from.Address(), to.Address()) {
		return nil
	}

	src.store(from.Data())
	dst.store(to.Data())
	return nil
}

// MintTo mints new supply into the destination account. The authority must
// cover the mint's minting authority.
func MintTo(mint, dest *ledger.AccountView, authority ledger.Authority, amount uint64) error {
	m, ok := UnmarshalMint(mint.Data())
	if !ok {
		return ledger.ErrInvalidAccountData
	}
	d, ok := UnmarshalAccount(dest.Data())
	if !ok {
		return ledger.ErrInvalidAccountData
	}

	if !bytes.Equal(d.Mint, mint.Address()) {
		return ledger.ErrInvalidAccountData
	}
	if len(m.MintAuthority) == 0 || !authority.Covers(m.MintAuthority) {
		return ledger.ErrInvalidOwner
	}
	if m.Supply > math.MaxUint64-amount || d.Amount > math.MaxUint64-amount {
		return ledger.ErrArithmeticOverflow
	}

	m.Supply += amount
	d.Amount += amount

	m.store(mint.Data())
	d.store(dest.Data())
	return nil
}

// Burn destroys amount tokens from the account, reducing the mint's supply.
// The authority must cover the account's owner.
func Burn(account, mint *ledger.AccountView, authority ledger.Authority, amount uint64) error {
	a, ok := UnmarshalAccount(account.Data())
	if !ok {
		return ledger.ErrInvalidAccountData
	}
	m, ok := UnmarshalMint(mint.Data())
	if !ok {
		return ledger.ErrInvalidAccountData
	}

	if !bytes.Equal(a.Mint, mint.Address()) {
		return ledger.ErrInvalidAccountData
	}
	if !authority.Covers(a.Owner) {
		return ledger.ErrInvalidOwner
	}
	if a.Amount < amount || m.Supply < amount {
		return ledger.ErrInsufficientFunds
	}

	a.Amount -= amount
	m.Supply -= amount

	a.store(account.Data())
	m.store(mint.Data())
	return nil
}

// CloseAccount removes an emptied token account from the ledger, returning
// its rent lamports to the destination. The authority must cover the
// account's owner or close authority.
func CloseAccount(account, dest *ledger.AccountView, authority ledger.Authority) error {
	a, ok := UnmarshalAccount(account.Data())
	if !ok {
		return ledger.ErrInvalidAccountData
	}

	if a.Amount != 0 {
		return ledger.ErrInvalidState
	}
	if !authority.Covers(a.Owner) && !authority.Covers(a.CloseAuthority) {
		return ledger.ErrInvalidOwner
	}
	if dest.Lamports() > math.MaxUint64-account.Lamports() {
		return ledger.ErrArithmeticOverflow
	}

	dest.SetLamports(dest.Lamports() + account.Lamports())
	account.SetLamports(0)
	account.SetData(nil)
	account.SetOwner(ledger.SystemProgramID)
	return nil
}
