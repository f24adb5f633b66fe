package ledger

import (
	"bytes"
	"crypto/ed25519"

	"github.com/forge-markets/forge-server/pkg/solana"
)

// Authority is a capability proving the right to act as a given address
// within the current instruction. It is obtained one of two ways: from an
// account view whose signer flag is set (the transaction carried the
// address's signature), or by re-deriving a program address from its seeds
// (no private key exists for it, so the derivation itself is the proof).
//
// Token primitives accept an Authority wherever the on-chain programs would
// demand a signature, decoupling the check from any real cryptographic
// signing.
type Authority struct {
	address ed25519.PublicKey
}

// NewSignerAuthority returns an authority for the viewed address, failing
// with ErrNotSigner unless the transaction was signed by it.
func NewSignerAuthority(v *AccountView) (Authority, error) {
	if !v.IsSigner() {
		return Authority{}, ErrNotSigner
	}
	return Authority{address: v.Address()}, nil
}

// NewDerivedAuthority returns an authority for the address derived from the
// program id and seed list. The final seed is conventionally the cached bump
// byte, so derivation is a single CreateProgramAddress call.
func NewDerivedAuthority(program ed25519.PublicKey, seeds ...[]byte) (Authority, error) {
	address, err := solana.CreateProgramAddress(program, seeds...)
	if err != nil {
		return Authority{}, err
	}
	return Authority{address: address}, nil
}

func (a Authority) Address() ed25519.PublicKey {
	return a.address
}

// Covers reports whether the capability authorizes acting as the given
// address.
func (a Authority) Covers(address ed25519.PublicKey) bool {
	return len(a.address) > 0 && bytes.Equal(a.address, address)
}
