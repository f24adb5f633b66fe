package ledger

import (
	"bytes"
	"crypto/ed25519"

	"github.com/mr-tron/base58"
)

// SystemProgramID owns plain wallet accounts and all accounts that have not
// yet been assigned to a program.
//
// https://explorer.solana.com/address/11111111111111111111111111111111
var SystemProgramID ed25519.PublicKey

func init() {
	var err error

	SystemProgramID, err = base58.Decode("11111111111111111111111111111111")
	if err != nil {
		panic(err)
	}
}

// Account is the persisted state of a single ledger address.
type Account struct {
	Lamports uint64
	Owner    ed25519.PublicKey
	Data     []byte
}

// Exists reports whether the account holds any live state. Addresses
// referenced by a transaction that were never funded or assigned behave as
// blank system-owned accounts. A system-owned account drained to zero
// lamports is dead no matter what bytes remain, so a closed record drops
// out of the ledger at commit exactly like an address that was never used.
func (a *Account) Exists() bool {
	if a.Lamports > 0 {
		return true
	}
	return len(a.Owner) > 0 && !bytes.Equal(a.Owner, SystemProgramID)
}

func (a *Account) clone() *Account {
	c := &Account{
		Lamports: a.Lamports,
		Owner:    append(ed25519.PublicKey(nil), a.Owner...),
	}
	if a.Data != nil {
		c.Data = append([]byte(nil), a.Data...)
	}
	return c
}

// AccountView is the per-instruction handle to an account. The signer and
// writable flags come from the instruction's account metas; the underlying
// account belongs to the transaction's working state.
type AccountView struct {
	address    ed25519.PublicKey
	account    *Account
	isSigner   bool
	isWritable bool
}

func NewAccountView(address ed25519.PublicKey, account *Account, isSigner, isWritable bool) *AccountView {
	return &AccountView{
		address:    address,
		account:    account,
		isSigner:   isSigner,
		isWritable: isWritable,
	}
}

func (v *AccountView) Address() ed25519.PublicKey {
	return v.address
}

func (v *AccountView) IsSigner() bool {
	return v.isSigner
}

func (v *AccountView) IsWritable() bool {
	return v.isWritable
}

func (v *AccountView) Lamports() uint64 {
	return v.account.Lamports
}

func (v *AccountView) SetLamports(lamports uint64) {
	v.account.Lamports = lamports
}

func (v *AccountView) Owner() ed25519.PublicKey {
	return v.account.Owner
}

func (v *AccountView) SetOwner(owner ed25519.PublicKey) {
	v.account.Owner = append(ed25519.PublicKey(nil), owner...)
}

// OwnedBy reports whether the account's owning program equals the provided
// program id exactly.
func (v *AccountView) OwnedBy(program ed25519.PublicKey) bool {
	return bytes.Equal(v.account.Owner, program)
}

func (v *AccountView) DataLen() int {
	return len(v.account.Data)
}

// Data returns the account's raw data. Callers mutate it only through the
// checked codecs.
func (v *AccountView) Data() []byte {
	return v.account.Data
}

func (v *AccountView) SetData(data []byte) {
	v.account.Data = data
}

// Resize shrinks or grows the account data, zero-filling on growth.
func (v *AccountView) Resize(size int) {
	if size <= len(v.account.Data) {
		v.account.Data = v.account.Data[:size]
		return
	}
	grown := make([]byte, size)
	copy(grown, v.account.Data)
	v.account.Data = grown
}

// Exists reports whether the viewed account holds any observable state.
func (v *AccountView) Exists() bool {
	return v.account.Exists()
}

func (v *AccountView) String() string {
	return base58.Encode(v.address)
}
