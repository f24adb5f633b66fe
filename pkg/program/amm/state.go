package amm

import (
	"crypto/ed25519"
	"fmt"

	"github.com/mr-tron/base58"

	"github.com/forge-markets/forge-server/pkg/ledger"
	"github.com/forge-markets/forge-server/pkg/solana/binary"
)

// State gates which pool operations are allowed.
type State uint8

const (
	StateUninitialized State = iota
	StateInitialized
	StateDisabled
	StateWithdrawOnly
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateInitialized:
		return "initialized"
	case StateDisabled:
		return "disabled"
	case StateWithdrawOnly:
		return "withdraw_only"
	default:
		return "unknown"
	}
}

// MaxFeeBps bounds the swap fee; a fee of 10_000 bps would confiscate the
// whole output leg.
const MaxFeeBps = 10_000

// ConfigSize is the byte-exact size of a persisted pool config.
const ConfigSize = 1 + // state
	8 + // seed
	32 + // authority
	32 + // mint_x
	32 + // mint_y
	2 + // fee
	1 // config_bump

// Config is the per-pool state. Its own address must equal the derivation
// over ("config", seed, mint_x, mint_y) under the AMM program.
type Config struct {
	State State
	// Salt for the config derivation, chosen at pool creation.
	Seed uint64
	// Optional admin key. All zero bytes means the pool is immutable.
	Authority ed25519.PublicKey
	// The pool's trading pair.
	MintX ed25519.PublicKey
	MintY ed25519.PublicKey
	// Swap fee in basis points, taken from the output leg.
	Fee uint16
	// Cached derivation bump.
	ConfigBump uint8
}

// HasAuthority reports whether an admin key was set at creation. The zero
// key is the immutability sentinel, not an address.
func (c *Config) HasAuthority() bool {
	for _, b := range c.Authority {
		if b != 0 {
			return true
		}
	}
	return false
}

func (c *Config) Marshal() []byte {
	b := make([]byte, ConfigSize)

	var offset int
	binary.PutUint8(b, uint8(c.State), &offset)
	binary.PutUint64(b[offset:], c.Seed, &offset)
	binary.PutKey32(b[offset:], c.Authority, &offset)
	binary.PutKey32(b[offset:], c.MintX, &offset)
	binary.PutKey32(b[offset:], c.MintY, &offset)
	binary.PutUint16(b[offset:], c.Fee, &offset)
	binary.PutUint8(b[offset:], c.ConfigBump, &offset)

	return b
}

func (c *Config) Unmarshal(b []byte) error {
	if len(b) != ConfigSize {
		return ledger.ErrInvalidAccountData
	}

	var offset int
	var state uint8
	binary.GetUint8(b, &state, &offset)
	binary.GetUint64(b[offset:], &c.Seed, &offset)
	binary.GetKey32(b[offset:], &c.Authority, &offset)
	binary.GetKey32(b[offset:], &c.MintX, &offset)
	binary.GetKey32(b[offset:], &c.MintY, &offset)
	binary.GetUint16(b[offset:], &c.Fee, &offset)
	binary.GetUint8(b[offset:], &c.ConfigBump, &offset)

	c.State = State(state)
	if c.State > StateWithdrawOnly {
		return ledger.ErrInvalidAccountData
	}
	if c.Fee >= MaxFeeBps {
		return ledger.ErrInvalidAccountData
	}
	return nil
}

func (c *Config) String() string {
	return fmt.Sprintf(
		"Config{state=%s,seed=%d,mint_x=%s,mint_y=%s,fee=%d,bump=%d}",
		c.State,
		c.Seed,
		base58.Encode(c.MintX),
		base58.Encode(c.MintY),
		c.Fee,
		c.ConfigBump,
	)
}
