package escrow

import (
	"bytes"

	"github.com/forge-markets/forge-server/pkg/ledger"
	"github.com/forge-markets/forge-server/pkg/program/accounts"
	"github.com/forge-markets/forge-server/pkg/solana"
	"github.com/forge-markets/forge-server/pkg/token"
)

// refund cancels an offer: only the original maker can reclaim the vault's
// full balance, after which the vault and the record are destroyed and
// their rent returned to the maker.
//
// Expected accounts:
//
//	0. maker          (signer, writable)
//	1. record         (writable)
//	2. mint_a
//	3. vault          (writable)
//	4. maker_ata_a    (writable)
//	5. system program
//	6. token program
func (p *Processor) refund(ctx *ledger.Context, views []*ledger.AccountView) error {
	if len(views) < 7 {
		return ledger.ErrInsufficientAccounts
	}

	var (
		maker        = views[0]
		record       = views[1]
		mintA        = views[2]
		vault        = views[3]
		makerAtaA    = views[4]
		tokenProgram = views[6]
	)

	if err := accounts.CheckSigner(maker); err != nil {
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
		return ledger.ErrInvalidOwner
	}
	if !bytes.Equal(mintA.Address(), state.MintA) {
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
	if err := accounts.CheckAssociatedTokenAccount(vault, record.Address(), state.MintA, tokenProgram.Address()); err != nil {
		return err
	}

	if err := accounts.InitAssociatedTokenAccountIfNeeded(ctx, maker, makerAtaA, mintA, maker.Address()); err != nil {
		return err
	}

	recordAuthority, err := ledger.NewDerivedAuthority(p.id, recordSeed, state.Maker, seed, []byte{state.Bump})
	if err != nil {
		return err
	}

	held, ok := token.UnmarshalAccount(vault.Data())
	if !ok {
		return ledger.ErrInvalidAccountData
	}
	if err := token.Transfer(vault, makerAtaA, recordAuthority, held.Amount); err != nil {
		return err
	}

	if err := token.CloseAccount(vault, maker, recordAuthority); err != nil {
		return err
	}
	if err := accounts.CloseProgramAccount(record, maker); err != nil {
		return err
	}

	p.log.WithField("record", state.String()).Debug("refunded escrow offer")
	return nil
}
