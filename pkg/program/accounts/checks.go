// Package accounts implements the capability checks and idempotent
// initializers every instruction runs before touching a balance. Checks
// compose in a fixed order for any account: signer presence, owner-program
// match, data-length match, derivation match, then the discriminator for
// types ambiguous between the two token standards.
package accounts

import (
	"bytes"
	"crypto/ed25519"

	"github.com/forge-markets/forge-server/pkg/ledger"
	"github.com/forge-markets/forge-server/pkg/solana"
	"github.com/forge-markets/forge-server/pkg/token"
)

// CheckSigner fails unless the transaction was authorized by the account's
// private key.
func CheckSigner(v *ledger.AccountView) error {
	if !v.IsSigner() {
		return ledger.ErrNotSigner
	}
	return nil
}

// CheckOwner fails unless the account's owning program equals the expected
// program id exactly.
func CheckOwner(v *ledger.AccountView, program ed25519.PublicKey) error {
	if !v.OwnedBy(program) {
		return ledger.ErrInvalidOwner
	}
	return nil
}

// checkExtendedDiscriminator accepts data that matches the base length
// exactly, or that extends past the discriminator offset and carries the
// expected type tag there. Anything else is a forged or wrong-typed account.
func checkExtendedDiscriminator(data []byte, baseLen int, tag byte) error {
	if len(data) == baseLen {
		return nil
	}
	if len(data) <= token.ExtensionTypeOffset {
		return ledger.ErrInvalidAccountData
	}
	if data[token.ExtensionTypeOffset] != tag {
		return ledger.ErrInvalidAccountData
	}
	return nil
}

// CheckMint validates a mint account under a specific token standard.
func CheckMint(v *ledger.AccountView, std token.Standard) error {
	if err := CheckOwner(v, std.ProgramID()); err != nil {
		return err
	}

	if std == token.StandardLegacy {
		if v.DataLen() != token.MintSize {
			return ledger.ErrInvalidAccountData
		}
		return nil
	}
	return checkExtendedDiscriminator(v.Data(), token.MintSize, token.ExtensionTypeMint)
}

// CheckTokenAccount validates a token holding account under a specific
// token standard.
func CheckTokenAccount(v *ledger.AccountView, std token.Standard) error {
	if err := CheckOwner(v, std.ProgramID()); err != nil {
		return err
	}

	if std == token.StandardLegacy {
		if v.DataLen() != token.AccountSize {
			return ledger.ErrInvalidAccountData
		}
		return nil
	}
	return checkExtendedDiscriminator(v.Data(), token.AccountSize, token.ExtensionTypeTokenAccount)
}

// CheckMintInterface accepts a mint of either token standard.
func CheckMintInterface(v *ledger.AccountView) error {
	std, ok := token.DetectStandard(v.Owner())
	if !ok {
		return ledger.ErrInvalidOwner
	}
	return CheckMint(v, std)
}

// CheckTokenAccountInterface accepts a token account of either standard.
func CheckTokenAccountInterface(v *ledger.AccountView) error {
	std, ok := token.DetectStandard(v.Owner())
	if !ok {
		return ledger.ErrInvalidOwner
	}
	return CheckTokenAccount(v, std)
}

// CheckAssociatedTokenAccount runs the token-account check, then re-derives
// the expected associated address from (authority, token program, mint) and
// requires exact equality with the account's declared address. This is what
// stops an arbitrary attacker-controlled token account from standing in for
// a vault or a user's canonical account.
func CheckAssociatedTokenAccount(v *ledger.AccountView, authority, mint, tokenProgram ed25519.PublicKey) error {
	if err := CheckTokenAccountInterface(v); err != nil {
		return err
	}

	expected, err := solana.FindProgramAddress(
		token.AssociatedProgramKey,
		authority,
		tokenProgram,
		mint,
	)
	if err != nil {
		return err
	}
	if !bytes.Equal(expected, v.Address()) {
		return ledger.ErrInvalidAddress
	}
	return nil
}

// CheckProgramAccount validates a record account: owned by the program and
// exactly the record size.
func CheckProgramAccount(v *ledger.AccountView, program ed25519.PublicKey, size int) error {
	if err := CheckOwner(v, program); err != nil {
		return err
	}
	if v.DataLen() != size {
		return ledger.ErrInvalidAccountData
	}
	return nil
}
