package ledger

import (
	"crypto/ed25519"
)

// State is the full account set of the ledger. The runtime clones it at the
// start of every transaction and swaps the clone back in only on success,
// which is what gives instructions their all-or-nothing semantics.
type State struct {
	accounts map[string]*Account
}

func NewState() *State {
	return &State{
		accounts: make(map[string]*Account),
	}
}

// Account returns the account at the address, or nil if none exists.
func (s *State) Account(address ed25519.PublicKey) *Account {
	return s.accounts[string(address)]
}

func (s *State) SetAccount(address ed25519.PublicKey, account *Account) {
	s.accounts[string(address)] = account
}

func (s *State) Delete(address ed25519.PublicKey) {
	delete(s.accounts, string(address))
}

func (s *State) Len() int {
	return len(s.accounts)
}

// Clone deep-copies every account so the copy can be mutated and discarded
// without touching the original.
func (s *State) Clone() *State {
	c := NewState()
	for k, v := range s.accounts {
		c.accounts[k] = v.clone()
	}
	return c
}

// prune drops accounts that no longer hold observable state, so a closed
// account is indistinguishable from one that never existed.
func (s *State) prune() {
	for k, v := range s.accounts {
		if !v.Exists() {
			delete(s.accounts, k)
		}
	}
}
