package accounts

import (
	"crypto/ed25519"

	"github.com/forge-markets/forge-server/pkg/ledger"
	"github.com/forge-markets/forge-server/pkg/token"
)

// The initializers are create-if-absent: the matching check runs first, and
// only a failed check takes the create path. A malformed account that exists
// at the address is never repaired; its creation collides at the host's
// CreateAccount and fails there, which is the intended outcome.

// InitMintIfNeeded ensures a mint exists at the account's address under the
// given standard. The mint account must authorize its own creation (it is a
// transaction signer when freshly generated).
func InitMintIfNeeded(ctx *ledger.Context, payer, mint *ledger.AccountView, std token.Standard, decimals uint8, mintAuthority, freezeAuthority ed25519.PublicKey) error {
	if err := CheckMint(mint, std); err == nil {
		return nil
	}

	authority, err := ledger.NewSignerAuthority(mint)
	if err != nil {
		return err
	}
	return token.CreateMint(ctx, payer, mint, authority, std, decimals, mintAuthority, freezeAuthority)
}

// InitTokenAccountIfNeeded ensures a token holding account exists at the
// account's address for the mint's standard, owned by the wallet.
func InitTokenAccountIfNeeded(ctx *ledger.Context, payer, account, mint *ledger.AccountView, owner ed25519.PublicKey) error {
	if err := CheckTokenAccountInterface(account); err == nil {
		return nil
	}

	authority, err := ledger.NewSignerAuthority(account)
	if err != nil {
		return err
	}
	return token.CreateAccount(ctx, payer, account, authority, mint, owner)
}

// InitAssociatedTokenAccountIfNeeded ensures the canonical associated token
// account for (wallet, mint) exists. Safe across retried transactions: a
// passing check makes it a no-op.
func InitAssociatedTokenAccountIfNeeded(ctx *ledger.Context, payer, account, mint *ledger.AccountView, wallet ed25519.PublicKey) error {
	std, ok := token.DetectStandard(mint.Owner())
	if !ok {
		return ledger.ErrInvalidOwner
	}

	if err := CheckAssociatedTokenAccount(account, wallet, mint.Address(), std.ProgramID()); err == nil {
		return nil
	}
	return token.CreateAssociatedAccount(ctx, payer, account, wallet, mint)
}

// InitProgramAccount allocates a record account at an address derived from
// the program id and seeds. The final seed must be the bump byte, making the
// derived-seed capability a single derivation.
func InitProgramAccount(ctx *ledger.Context, payer, account *ledger.AccountView, program ed25519.PublicKey, seeds [][]byte, space int) error {
	authority, err := ledger.NewDerivedAuthority(program, seeds...)
	if err != nil {
		return err
	}

	lamports := ctx.Rent.MinimumBalance(space)
	return ctx.CreateAccount(payer, account, authority, lamports, uint64(space), program)
}
