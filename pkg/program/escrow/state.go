package escrow

import (
	"crypto/ed25519"
	"fmt"

	"github.com/mr-tron/base58"

	"github.com/forge-markets/forge-server/pkg/ledger"
	"github.com/forge-markets/forge-server/pkg/solana/binary"
)

// RecordSize is the byte-exact size of a persisted escrow record.
const RecordSize = 8 + // seed
	32 + // maker
	32 + // mint_a
	32 + // mint_b
	8 + // receive
	1 // bump

// Record is the per-offer escrow state. Its own address must equal the
// derivation over ("escrow", maker, seed) under the escrow program, with
// the bump cached to avoid recomputation.
type Record struct {
	// Caller-chosen uniqueness salt for the address derivation.
	Seed uint64
	// Offer creator; receives the refund or the proceeds.
	Maker ed25519.PublicKey
	// Asset offered.
	MintA ed25519.PublicKey
	// Asset requested.
	MintB ed25519.PublicKey
	// Amount of MintB the maker demands.
	Receive uint64
	// Cached derivation bump.
	Bump uint8
}

func (r *Record) Marshal() []byte {
	b := make([]byte, RecordSize)

	var offset int
	binary.PutUint64(b, r.Seed, &offset)
	binary.PutKey32(b[offset:], r.Maker, &offset)
	binary.PutKey32(b[offset:], r.MintA, &offset)
	binary.PutKey32(b[offset:], r.MintB, &offset)
	binary.PutUint64(b[offset:], r.Receive, &offset)
	binary.PutUint8(b[offset:], r.Bump, &offset)

	return b
}

func (r *Record) Unmarshal(b []byte) error {
	if len(b) != RecordSize {
		return ledger.ErrInvalidAccountData
	}

	var offset int
	binary.GetUint64(b, &r.Seed, &offset)
	binary.GetKey32(b[offset:], &r.Maker, &offset)
	binary.GetKey32(b[offset:], &r.MintA, &offset)
	binary.GetKey32(b[offset:], &r.MintB, &offset)
	binary.GetUint64(b[offset:], &r.Receive, &offset)
	binary.GetUint8(b[offset:], &r.Bump, &offset)

	return nil
}

func (r *Record) String() string {
	return fmt.Sprintf(
		"Record{seed=%d,maker=%s,mint_a=%s,mint_b=%s,receive=%d,bump=%d}",
		r.Seed,
		base58.Encode(r.Maker),
		base58.Encode(r.MintA),
		base58.Encode(r.MintB),
		r.Receive,
		r.Bump,
	)
}
