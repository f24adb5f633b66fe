// Package escrow implements a two-party token escrow: a maker locks an
// offered asset in a program-owned vault until a taker pays the requested
// asset, or the maker reclaims it. The record and vault are destroyed on
// either outcome, so exactly one of Take and Refund can ever succeed.
package escrow

import (
	"crypto/ed25519"
	"encoding/binary"

	"github.com/sirupsen/logrus"

	"github.com/forge-markets/forge-server/pkg/ledger"
	"github.com/forge-markets/forge-server/pkg/solana"
)

type Command byte

const (
	CommandMake Command = iota
	CommandTake
	CommandRefund
)

// recordSeed prefixes every escrow record derivation.
var recordSeed = []byte("escrow")

// Processor is the escrow program. The program id is injected at
// construction.
type Processor struct {
	id  ed25519.PublicKey
	log *logrus.Entry
}

func NewProcessor(id ed25519.PublicKey) *Processor {
	return &Processor{
		id:  append(ed25519.PublicKey(nil), id...),
		log: logrus.StandardLogger().WithField("type", "program/escrow"),
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
	case CommandMake:
		return p.make(ctx, views, data[1:])
	case CommandTake:
		return p.take(ctx, views)
	case CommandRefund:
		return p.refund(ctx, views)
	default:
		return ledger.ErrInvalidInstructionData
	}
}

func seedBytes(seed uint64) []byte {
	b := make([]byte, 8)
	binary.LittleEndian.PutUint64(b, seed)
	return b
}

// RecordAddress derives the canonical record address for a maker and seed.
func RecordAddress(program, maker ed25519.PublicKey, seed uint64) (ed25519.PublicKey, uint8, error) {
	return solana.FindProgramAddressAndBump(program, recordSeed, maker, seedBytes(seed))
}
