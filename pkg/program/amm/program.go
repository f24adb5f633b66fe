// Package amm implements a constant-product automated market maker over a
// pair of token mints. Liquidity providers deposit both assets against a
// pool-owned share mint, and swaps trade one asset for the other along the
// curve x*y=k with a basis-point fee taken from the output leg.
package amm

import (
	"bytes"
	"crypto/ed25519"
	"encoding/binary"

	"github.com/sirupsen/logrus"

	"github.com/forge-markets/forge-server/pkg/ledger"
	"github.com/forge-markets/forge-server/pkg/program/accounts"
	"github.com/forge-markets/forge-server/pkg/solana"
)

type Command byte

const (
	CommandInitialize Command = iota
	CommandDeposit
	CommandWithdraw
	CommandSwap
)

var (
	// configSeed prefixes every pool config derivation.
	configSeed = []byte("config")
	// lpSeed prefixes the pool share mint derivation, salted by the config
	// address so each pool gets a distinct share mint.
	lpSeed = []byte("mint_lp")
)

// Processor is the AMM program. The program id is injected at construction.
type Processor struct {
	id  ed25519.PublicKey
	log *logrus.Entry
}

func NewProcessor(id ed25519.PublicKey) *Processor {
	return &Processor{
		id:  append(ed25519.PublicKey(nil), id...),
		log: logrus.StandardLogger().WithField("type", "program/amm"),
	}
}

func (p *Processor) ID() ed25519.PublicKey {
	return p.id
}

// Execute routes the instruction by its single-byte discriminator.
func (p *Processor) Execute(ctx *ledger.Context, views []*ledger.AccountView, data []byte) error {
	if len(data) == 0 {
		return ledger.ErrInvalidInstructionData
	}

	switch Command(data[0]) {
	case CommandInitialize:
		return p.initialize(ctx, views, data[1:])
	case CommandDeposit:
		return p.deposit(ctx, views, data[1:])
	case CommandWithdraw:
		return p.withdraw(ctx, views, data[1:])
	case CommandSwap:
		return p.swap(ctx, views, data[1:])
	default:
		return ledger.ErrInvalidInstructionData
	}
}

func seedBytes(seed uint64) []byte {
	b := make([]byte, 8)
	binary.LittleEndian.PutUint64(b, seed)
	return b
}

// ConfigAddress derives the canonical pool config address for a seed and
// trading pair.
func ConfigAddress(program ed25519.PublicKey, seed uint64, mintX, mintY ed25519.PublicKey) (ed25519.PublicKey, uint8, error) {
	return solana.FindProgramAddressAndBump(program, configSeed, seedBytes(seed), mintX, mintY)
}

// ShareMintAddress derives the canonical share mint address for a pool.
func ShareMintAddress(program, config ed25519.PublicKey) (ed25519.PublicKey, uint8, error) {
	return solana.FindProgramAddressAndBump(program, lpSeed, config)
}

func (c *Config) seeds() [][]byte {
	return [][]byte{configSeed, seedBytes(c.Seed), c.MintX, c.MintY, {c.ConfigBump}}
}

// loadConfig validates a pool config account: program ownership, exact
// size, a well-formed payload, and that the account sits at the address its
// own contents derive. A config relocated to a different address, or one
// whose stored bump was tampered with, fails here.
func (p *Processor) loadConfig(v *ledger.AccountView) (*Config, error) {
	if err := accounts.CheckProgramAccount(v, p.id, ConfigSize); err != nil {
		return nil, err
	}

	var cfg Config
	if err := cfg.Unmarshal(v.Data()); err != nil {
		return nil, err
	}

	derived, err := solana.CreateProgramAddress(p.id, cfg.seeds()...)
	if err != nil {
		return nil, err
	}
	if !bytes.Equal(derived, v.Address()) {
		return nil, ledger.ErrInvalidAddress
	}
	return &cfg, nil
}

// configAuthority is the pool's signed-seed capability. It covers the
// config address itself, which owns the vaults and the share mint.
func (p *Processor) configAuthority(cfg *Config) (ledger.Authority, error) {
	return ledger.NewDerivedAuthority(p.id, cfg.seeds()...)
}

// checkShareMint verifies the share mint account sits at the pool's
// derived share mint address.
func (p *Processor) checkShareMint(mintLp, config *ledger.AccountView) error {
	if err := accounts.CheckMintInterface(mintLp); err != nil {
		return err
	}

	derived, err := solana.FindProgramAddress(p.id, lpSeed, config.Address())
	if err != nil {
		return err
	}
	if !bytes.Equal(derived, mintLp.Address()) {
		return ledger.ErrInvalidAddress
	}
	return nil
}
