package escrow

import (
	"bytes"

	"github.com/forge-markets/forge-server/pkg/ledger"
	"github.com/forge-markets/forge-server/pkg/program/accounts"
	"github.com/forge-markets/forge-server/pkg/solana/binary"
	"github.com/forge-markets/forge-server/pkg/token"
)

// MakeArgs is the Make instruction payload.
type MakeArgs struct {
	// Salt for the record derivation, chosen by the maker.
	Seed uint64
	// Amount of MintB the maker wants in exchange.
	Receive uint64
	// Amount of MintA to lock in the vault.
	Amount uint64
}

const makeArgsSize = 8 + 8 + 8

func parseMakeArgs(data []byte) (args MakeArgs, err error) {
	if len(data) != makeArgsSize {
		return args, ledger.ErrInvalidInstructionData
	}

	var offset int
	binary.GetUint64(data, &args.Seed, &offset)
	binary.GetUint64(data[offset:], &args.Receive, &offset)
	binary.GetUint64(data[offset:], &args.Amount, &offset)
	return args, nil
}

// make opens an offer: derives and allocates the record, creates the vault
// as the record's associated token account for MintA, and funds it from the
// maker's own MintA account.
//
// Expected accounts:
//
//	0. maker          (signer, writable)
//	1. record         (writable)
//	2. mint_a
//	3. mint_b
//	4. maker_ata_a    (writable)
//	5. vault          (writable)
//	6. system program
//	7. token program
func (p *Processor) make(ctx *ledger.Context, views []*ledger.AccountView, data []byte) error {
	if len(views) < 8 {
		return ledger.ErrInsufficientAccounts
	}

	var (
		maker        = views[0]
		record       = views[1]
		mintA        = views[2]
		mintB        = views[3]
		makerAtaA    = views[4]
		vault        = views[5]
		tokenProgram = views[7]
	)

	args, err := parseMakeArgs(data)
	if err != nil {
		return err
	}
	if args.Amount == 0 || args.Receive == 0 {
		return ledger.ErrInvalidInstructionData
	}

	if err := accounts.CheckSigner(maker); err != nil {
		return err
	}
	if err := accounts.CheckMintInterface(mintA); err != nil {
		return err
	}
	if err := accounts.CheckMintInterface(mintB); err != nil {
		return err
	}

	seed := seedBytes(args.Seed)
	derived, bump, err := RecordAddress(p.id, maker.Address(), args.Seed)
	if err != nil {
		return err
	}
	if !bytes.Equal(derived, record.Address()) {
		return ledger.ErrInvalidAddress
	}

	if err := accounts.InitProgramAccount(
		ctx,
		maker,
		record,
		p.id,
		[][]byte{recordSeed, maker.Address(), seed, {bump}},
		RecordSize,
	); err != nil {
		return err
	}

	state := Record{
		Seed:    args.Seed,
		Maker:   maker.Address(),
		MintA:   mintA.Address(),
		MintB:   mintB.Address(),
		Receive: args.Receive,
		Bump:    bump,
	}
	record.SetData(state.Marshal())

	if err := accounts.InitAssociatedTokenAccountIfNeeded(ctx, maker, vault, mintA, record.Address()); err != nil {
		return err
	}
	if err := accounts.CheckAssociatedTokenAccount(vault, record.Address(), mintA.Address(), tokenProgram.Address()); err != nil {
		return err
	}

	// A reused vault with a leftover balance would let a stale deposit be
	// double counted against a fresh offer.
	held, ok := token.UnmarshalAccount(vault.Data())
	if !ok {
		return ledger.ErrInvalidAccountData
	}
	if held.Amount != 0 {
		return ledger.ErrInvalidState
	}

	if err := accounts.CheckAssociatedTokenAccount(makerAtaA, maker.Address(), mintA.Address(), tokenProgram.Address()); err != nil {
		return err
	}

	authority, err := ledger.NewSignerAuthority(maker)
	if err != nil {
		return err
	}
	if err := token.Transfer(makerAtaA, vault, authority, args.Amount); err != nil {
		return err
	}

	p.log.WithField("record", state.String()).Debug("opened escrow offer")
	return nil
}
