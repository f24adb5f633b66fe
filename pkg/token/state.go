package token

import (
	"crypto/ed25519"

	"github.com/forge-markets/forge-server/pkg/solana/binary"
)

type AccountState byte

const (
	AccountStateUninitialized AccountState = iota
	AccountStateInitialized
	AccountStateFrozen
)

// Base layout sizes, shared by both standards.
//
// Reference: https://github.com/solana-labs/solana-program-library/blob/11b1e3eefdd4e523768d63f7c70a7aa391ea0d02/token/program/src/state.rs
const (
	MintSize    = 82
	AccountSize = 165
)

// ExtensionTypeOffset is where the extended standard stores its one-byte
// account-type discriminator. Token accounts of both standards share the
// first 165 bytes; anything longer must carry the correct tag here or the
// data is rejected.
const ExtensionTypeOffset = 165

const (
	ExtensionTypeMint         = 0x01
	ExtensionTypeTokenAccount = 0x02
)

const optionSize = 4

// Mint is the decoded form of a token mint account.
type Mint struct {
	// Optional authority used to mint new tokens. Empty means the supply
	// is fixed forever.
	MintAuthority ed25519.PublicKey
	// Total supply of tokens.
	Supply uint64
	// Number of base 10 digits to the right of the decimal place.
	Decimals uint8
	// Is this mint initialized.
	Initialized bool
	// Optional authority to freeze token accounts.
	FreezeAuthority ed25519.PublicKey
}

// store writes the 82-byte base layout into the prefix of dst, leaving any
// extension bytes untouched.
func (m *Mint) store(dst []byte) {
	var offset int
	binary.PutOptionalKey32(dst, m.MintAuthority, &offset, optionSize)
	binary.PutUint64(dst[offset:], m.Supply, &offset)
	binary.PutUint8(dst[offset:], m.Decimals, &offset)
	if m.Initialized {
		dst[offset] = 1
	} else {
		dst[offset] = 0
	}
	offset++
	binary.PutOptionalKey32(dst[offset:], m.FreezeAuthority, &offset, optionSize)
}

// Marshal encodes the mint in the layout of the given standard: the bare
// base layout for legacy, or the base layout padded out to the discriminator
// offset and tagged for extended.
func (m *Mint) Marshal(std Standard) []byte {
	b := make([]byte, std.MintSize())
	m.store(b)
	if std == StandardExtended {
		b[ExtensionTypeOffset] = ExtensionTypeMint
	}
	return b
}

func (m *Mint) unmarshalBase(b []byte) {
	var offset int
	binary.GetOptionalKey32(b, &m.MintAuthority, &offset, optionSize)
	binary.GetUint64(b[offset:], &m.Supply, &offset)
	binary.GetUint8(b[offset:], &m.Decimals, &offset)
	m.Initialized = b[offset] == 1
	offset++
	binary.GetOptionalKey32(b[offset:], &m.FreezeAuthority, &offset, optionSize)
}

// UnmarshalMint decodes a mint of either standard: exactly the base size for
// legacy data, or longer data carrying the mint discriminator at the fixed
// offset for the extended standard.
func UnmarshalMint(b []byte) (*Mint, bool) {
	switch {
	case len(b) == MintSize:
	case len(b) > ExtensionTypeOffset && b[ExtensionTypeOffset] == ExtensionTypeMint:
	default:
		return nil, false
	}

	var m Mint
	m.unmarshalBase(b[:MintSize])
	return &m, true
}

// Account is the decoded form of a token holding account.
type Account struct {
	// The mint associated with this account
	Mint ed25519.PublicKey
	// The owner of this account.
	Owner ed25519.PublicKey
	// The amount of tokens this account holds.
	Amount uint64
	// If set, then the 'DelegatedAmount' represents the amount
	// authorized by the delegate.
	Delegate ed25519.PublicKey
	// The account's state
	State AccountState
	// If set, this is a native token, and the value logs the rent-exempt
	// reserve.
	IsNative *uint64
	// The amount delegated
	DelegatedAmount uint64
	// Optional authority to close the account.
	CloseAuthority ed25519.PublicKey
}

// store writes the 165-byte base layout into the prefix of dst, leaving any
// extension bytes untouched.
func (a *Account) store(dst []byte) {
	var offset int
	binary.PutKey32(dst, a.Mint, &offset)
	binary.PutKey32(dst[offset:], a.Owner, &offset)
	binary.PutUint64(dst[offset:], a.Amount, &offset)
	binary.PutOptionalKey32(dst[offset:], a.Delegate, &offset, optionSize)
	dst[offset] = byte(a.State)
	offset++
	binary.PutOptionalUint64(dst[offset:], a.IsNative, &offset, optionSize)
	binary.PutUint64(dst[offset:], a.DelegatedAmount, &offset)
	binary.PutOptionalKey32(dst[offset:], a.CloseAuthority, &offset, optionSize)
}

// Marshal encodes the account in the layout of the given standard.
func (a *Account) Marshal(std Standard) []byte {
	b := make([]byte, std.AccountSize())
	a.store(b)
	if std == StandardExtended {
		b[ExtensionTypeOffset] = ExtensionTypeTokenAccount
	}
	return b
}

func (a *Account) unmarshalBase(b []byte) {
	var offset int
	binary.GetKey32(b, &a.Mint, &offset)
	binary.GetKey32(b[offset:], &a.Owner, &offset)
	binary.GetUint64(b[offset:], &a.Amount, &offset)
	binary.GetOptionalKey32(b[offset:], &a.Delegate, &offset, optionSize)
	a.State = AccountState(b[offset])
	offset++
	binary.GetOptionalUint64(b[offset:], &a.IsNative, &offset, optionSize)
	binary.GetUint64(b[offset:], &a.DelegatedAmount, &offset)
	binary.GetOptionalKey32(b[offset:], &a.CloseAuthority, &offset, optionSize)
}

// UnmarshalAccount decodes a token account of either standard: exactly the
// base size, or longer data carrying the token-account discriminator at the
// fixed offset.
func UnmarshalAccount(b []byte) (*Account, bool) {
	switch {
	case len(b) == AccountSize:
	case len(b) > ExtensionTypeOffset && b[ExtensionTypeOffset] == ExtensionTypeTokenAccount:
	default:
		return nil, false
	}

	var a Account
	a.unmarshalBase(b[:AccountSize])
	return &a, true
}
