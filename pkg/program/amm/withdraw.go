package amm

import (
	"github.com/forge-markets/forge-server/pkg/ledger"
	"github.com/forge-markets/forge-server/pkg/program/accounts"
	"github.com/forge-markets/forge-server/pkg/solana/binary"
	"github.com/forge-markets/forge-server/pkg/token"
)

// WithdrawArgs is the Withdraw instruction payload. Expiration is carried
// on the wire but not enforced.
type WithdrawArgs struct {
	// Pool shares to burn.
	Amount uint64
	// Slippage floors on the released reserves.
	MinX uint64
	MinY uint64
	// Unix deadline, unchecked.
	Expiration int64
}

const withdrawArgsSize = 8 + 8 + 8 + 8

func parseWithdrawArgs(data []byte) (args WithdrawArgs, err error) {
	if len(data) != withdrawArgsSize {
		return args, ledger.ErrInvalidInstructionData
	}

	var offset int
	binary.GetUint64(data, &args.Amount, &offset)
	binary.GetUint64(data[offset:], &args.MinX, &offset)
	binary.GetUint64(data[offset:], &args.MinY, &offset)
	binary.GetInt64(data[offset:], &args.Expiration, &offset)
	return args, nil
}

// withdraw burns pool shares and releases the proportional slice of both
// reserves, rounded against the withdrawer. Allowed while the pool is
// initialized or wound down to withdraw-only.
//
// Expected accounts:
//
//	0. user           (signer, writable)
//	1. config
//	2. mint_lp        (writable)
//	3. vault_x        (writable)
//	4. vault_y        (writable)
//	5. user_x_ata     (writable)
//	6. user_y_ata     (writable)
//	7. user_lp_ata    (writable)
//	8. token program
func (p *Processor) withdraw(ctx *ledger.Context, views []*ledger.AccountView, data []byte) error {
	if len(views) < 9 {
		return ledger.ErrInsufficientAccounts
	}

	var (
		user         = views[0]
		config       = views[1]
		mintLp       = views[2]
		vaultX       = views[3]
		vaultY       = views[4]
		userXAta     = views[5]
		userYAta     = views[6]
		userLpAta    = views[7]
		tokenProgram = views[8]
	)

	args, err := parseWithdrawArgs(data)
	if err != nil {
		return err
	}
	if args.Amount == 0 {
		return ledger.ErrInvalidInstructionData
	}

	if err := accounts.CheckSigner(user); err != nil {
		return err
	}

	cfg, err := p.loadConfig(config)
	if err != nil {
		return err
	}
	if cfg.State != StateInitialized && cfg.State != StateWithdrawOnly {
		return ledger.ErrInvalidState
	}

	if err := p.checkShareMint(mintLp, config); err != nil {
		return err
	}
	if err := accounts.CheckAssociatedTokenAccount(vaultX, config.Address(), cfg.MintX, tokenProgram.Address()); err != nil {
		return err
	}
	if err := accounts.CheckAssociatedTokenAccount(vaultY, config.Address(), cfg.MintY, tokenProgram.Address()); err != nil {
		return err
	}
	if err := accounts.CheckAssociatedTokenAccount(userXAta, user.Address(), cfg.MintX, tokenProgram.Address()); err != nil {
		return err
	}
	if err := accounts.CheckAssociatedTokenAccount(userYAta, user.Address(), cfg.MintY, tokenProgram.Address()); err != nil {
		return err
	}
	if err := accounts.CheckAssociatedTokenAccount(userLpAta, user.Address(), mintLp.Address(), tokenProgram.Address()); err != nil {
		return err
	}

	shareMint, ok := token.UnmarshalMint(mintLp.Data())
	if !ok {
		return ledger.ErrInvalidAccountData
	}
	if shareMint.Supply == 0 {
		return ledger.ErrInvalidState
	}
	reserveX, ok := token.UnmarshalAccount(vaultX.Data())
	if !ok {
		return ledger.ErrInvalidAccountData
	}
	reserveY, ok := token.UnmarshalAccount(vaultY.Data())
	if !ok {
		return ledger.ErrInvalidAccountData
	}

	x, y, err := WithdrawAmounts(args.Amount, reserveX.Amount, reserveY.Amount, shareMint.Supply)
	if err != nil {
		return err
	}
	if x < args.MinX || y < args.MinY {
		return ledger.ErrSlippageExceeded
	}

	userAuthority, err := ledger.NewSignerAuthority(user)
	if err != nil {
		return err
	}
	poolAuthority, err := p.configAuthority(cfg)
	if err != nil {
		return err
	}

	if err := token.Transfer(vaultX, userXAta, poolAuthority, x); err != nil {
		return err
	}
	if err := token.Transfer(vaultY, userYAta, poolAuthority, y); err != nil {
		return err
	}
	if err := token.Burn(userLpAta, mintLp, userAuthority, args.Amount); err != nil {
		return err
	}

	p.log.WithField("config", cfg.String()).Debug("withdrew liquidity")
	return nil
}
