package escrow

import (
	"bytes"

	"github.com/forge-markets/forge-server/pkg/ledger"
	"github.com/forge-markets/forge-server/pkg/program/accounts"
	"github.com/forge-markets/forge-server/pkg/solana"
	"github.com/forge-markets/forge-server/pkg/token"
)

// take settles an offer: the taker pays the maker the full requested amount
// of MintB, receives the entire vault balance of MintA, and both the vault
// and the record are destroyed with their rent returned to the maker.
//
// Expected accounts:
//
//	0.  taker          (signer, writable)
//	1.  maker          (writable)
//	2.  record         (writable)
//	3.  mint_a
//	4.  mint_b
//	5.  vault          (writable)
//	6.  taker_ata_a    (writable)
//	7.  taker_ata_b    (writable)
//	8.  maker_ata_b    (writable)
//	9.  system program
//	10. token program
func (p *Processor) take(ctx *ledger.Context, views []*ledger.AccountView) error {
	if len(views) < 11 {
		return ledger.ErrInsufficientAccounts
	}

	var (
		taker        = views[0]
		maker        = views[1]
		record       = views[2]
		mintA        = views[3]
		mintB        = views[4]
		vault        = views[5]
		takerAtaA    = views[6]
		takerAtaB    = views[7]
		makerAtaB    = views[8]
		tokenProgram = views[10]
	)

	if err := accounts.CheckSigner(taker); err != nil {
		return err
	}
	if err := accounts.CheckProgramAccount(record, p.id, RecordSize); err != nil {
		return err
	}

	var state Record
	if err := state.Unmarshal(record.Data()); err != nil {
		return err
	}

	if !bytes.Equal(maker.Address(), state.Maker) {
		return ledger.ErrInvalidAddress
	}
	if !bytes.Equal(mintA.Address(), state.MintA) {
		return ledger.ErrInvalidAccountData
	}
	if !bytes.Equal(mintB.Address(), state.MintB) {
		return ledger.ErrInvalidAccountData
	}

	seed := seedBytes(state.Seed)
	derived, err := solana.CreateProgramAddress(p.id, recordSeed, state.Maker, seed, []byte{state.Bump})
	if err != nil {
		return err
	}
	if !bytes.Equal(derived, record.Address()) {
		return ledger.ErrInvalidAddress
	}

	if err := accounts.CheckMintInterface(mintA); err != nil {
		return err
	}
	if err := accounts.CheckMintInterface(mintB); err != nil {
		return err
	}
	if err := accounts.CheckAssociatedTokenAccount(vault, record.Address(), state.MintA, tokenProgram.Address()); err != nil {
		return err
	}

	if err := accounts.InitAssociatedTokenAccountIfNeeded(ctx, taker, takerAtaA, mintA, taker.Address()); err != nil {
		return err
	}
	if err := accounts.InitAssociatedTokenAccountIfNeeded(ctx, taker, makerAtaB, mintB, state.Maker); err != nil {
		return err
	}
	if err := accounts.CheckAssociatedTokenAccount(takerAtaB, taker.Address(), state.MintB, tokenProgram.Address()); err != nil {
		return err
	}

	takerAuthority, err := ledger.NewSignerAuthority(taker)
	if err != nil {
		return err
	}
	recordAuthority, err := ledger.NewDerivedAuthority(p.id, recordSeed, state.Maker, seed, []byte{state.Bump})
	if err != nil {
		return err
	}

	// Payment leg first: if the taker cannot cover the price, nothing moves.
	if err := token.Transfer(takerAtaB, makerAtaB, takerAuthority, state.Receive); err != nil {
		return err
	}

	held, ok := token.UnmarshalAccount(vault.Data())
	if !ok {
		return ledger.ErrInvalidAccountData
	}
	if err := token.Transfer(vault, takerAtaA, recordAuthority, held.Amount); err != nil {
		return err
	}

	if err := token.CloseAccount(vault, maker, recordAuthority); err != nil {
		return err
	}
	if err := accounts.CloseProgramAccount(record, maker); err != nil {
		return err
	}

	p.log.WithField("record", state.String()).Debug("settled escrow offer")
	return nil
}
