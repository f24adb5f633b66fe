package token

import (
	"bytes"
	"crypto/ed25519"

	"github.com/forge-markets/forge-server/pkg/ledger"
	"github.com/forge-markets/forge-server/pkg/solana"
)

// AssociatedAccount returns the canonical token-holding address for the
// (wallet, token program, mint) triple.
//
// Reference: https://spl.solana.com/associated-token-account#finding-the-associated-token-account-address
func AssociatedAccount(wallet, tokenProgram, mint ed25519.PublicKey) (ed25519.PublicKey, error) {
	return solana.FindProgramAddress(
		AssociatedProgramKey,
		wallet,
		tokenProgram,
		mint,
	)
}

// CreateAssociatedAccount allocates and initializes the associated token
// account for the wallet and mint, verifying the target address against the
// derivation before creating anything. The creation itself is authorized by
// the associated token program's own derived-seed capability.
func CreateAssociatedAccount(ctx *ledger.Context, payer, account *ledger.AccountView, wallet ed25519.PublicKey, mint *ledger.AccountView) error {
	std, ok := DetectStandard(mint.Owner())
	if !ok {
		return ledger.ErrInvalidOwner
	}

	expected, bump, err := solana.FindProgramAddressAndBump(
		AssociatedProgramKey,
		wallet,
		std.ProgramID(),
		mint.Address(),
	)
	if err != nil {
		return err
	}
	if !bytes.Equal(expected, account.Address()) {
		return ledger.ErrInvalidAddress
	}

	authority, err := ledger.NewDerivedAuthority(
		AssociatedProgramKey,
		wallet,
		std.ProgramID(),
		mint.Address(),
		[]byte{bump},
	)
	if err != nil {
		return err
	}

	return CreateAccount(ctx, payer, account, authority, mint, wallet)
}
