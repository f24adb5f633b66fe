package token

import (
	"bytes"
	"crypto/ed25519"

	"github.com/mr-tron/base58"
)

// Well-known program ids for the two token standards and the associated
// token account program.
var (
	// ProgramKey is the legacy token program.
	//
	// https://explorer.solana.com/address/TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA
	ProgramKey ed25519.PublicKey

	// Program2022Key is the extended (token-2022) program.
	//
	// https://explorer.solana.com/address/TokenzQdBNbLqP5VEhdkAS6EPFLC1PHnBqCXEpPxuEb
	Program2022Key ed25519.PublicKey

	// AssociatedProgramKey is the associated token account program.
	//
	// https://explorer.solana.com/address/ATokenGPvbdGVxr1b2hvZbsiqW5xWH25efTNsLJA8knL
	AssociatedProgramKey ed25519.PublicKey
)

func init() {
	var err error

	ProgramKey, err = base58.Decode("TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA")
	if err != nil {
		panic(err)
	}

	Program2022Key, err = base58.Decode("TokenzQdBNbLqP5VEhdkAS6EPFLC1PHnBqCXEpPxuEb")
	if err != nil {
		panic(err)
	}

	AssociatedProgramKey, err = base58.Decode("ATokenGPvbdGVxr1b2hvZbsiqW5xWH25efTNsLJA8knL")
	if err != nil {
		panic(err)
	}
}

// Standard selects between the two token-account representations. The
// extended standard shares the legacy base layout but may append extension
// bytes after a one-byte account-type discriminator at a fixed offset.
type Standard uint8

const (
	StandardLegacy Standard = iota
	StandardExtended
)

func (s Standard) ProgramID() ed25519.PublicKey {
	if s == StandardExtended {
		return Program2022Key
	}
	return ProgramKey
}

func (s Standard) String() string {
	if s == StandardExtended {
		return "extended"
	}
	return "legacy"
}

// MintSize is the allocation size for a freshly created mint under the
// standard.
func (s Standard) MintSize() int {
	if s == StandardExtended {
		return ExtensionTypeOffset + 1
	}
	return MintSize
}

// AccountSize is the allocation size for a freshly created token account
// under the standard.
func (s Standard) AccountSize() int {
	if s == StandardExtended {
		return ExtensionTypeOffset + 1
	}
	return AccountSize
}

// DetectStandard maps an owning program id to its token standard.
func DetectStandard(owner ed25519.PublicKey) (Standard, bool) {
	switch {
	case bytes.Equal(owner, ProgramKey):
		return StandardLegacy, true
	case bytes.Equal(owner, Program2022Key):
		return StandardExtended, true
	default:
		return StandardLegacy, false
	}
}
