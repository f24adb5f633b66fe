package amm

import (
	"github.com/forge-markets/forge-server/pkg/ledger"
	"github.com/forge-markets/forge-server/pkg/program/accounts"
	"github.com/forge-markets/forge-server/pkg/solana/binary"
	"github.com/forge-markets/forge-server/pkg/token"
)

// DepositArgs is the Deposit instruction payload. Expiration is carried on
// the wire but not enforced.
type DepositArgs struct {
	// Pool shares to mint.
	Amount uint64
	// Slippage ceilings on the owed reserves.
	MaxX uint64
	MaxY uint64
	// Unix deadline, unchecked.
	Expiration int64
}

const depositArgsSize = 8 + 8 + 8 + 8

func parseDepositArgs(data []byte) (args DepositArgs, err error) {
	if len(data) != depositArgsSize {
		return args, ledger.ErrInvalidInstructionData
	}

	var offset int
	binary.GetUint64(data, &args.Amount, &offset)
	binary.GetUint64(data[offset:], &args.MaxX, &offset)
	binary.GetUint64(data[offset:], &args.MaxY, &offset)
	binary.GetInt64(data[offset:], &args.Expiration, &offset)
	return args, nil
}

// deposit mints pool shares against both reserves. The first deposit into
// an empty pool, zero supply and zero reserves, sets the initial price by
// taking exactly the ceilings; every later deposit is priced proportionally
// off the current reserves, rounded against the depositor.
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
//	8. system program
//	9. token program
func (p *Processor) deposit(ctx *ledger.Context, views []*ledger.AccountView, data []byte) error {
	if len(views) < 10 {
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
		tokenProgram = views[9]
	)

	args, err := parseDepositArgs(data)
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
	if cfg.State != StateInitialized {
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
	if err := accounts.InitAssociatedTokenAccountIfNeeded(ctx, user, userLpAta, mintLp, user.Address()); err != nil {
		return err
	}

	shareMint, ok := token.UnmarshalMint(mintLp.Data())
	if !ok {
		return ledger.ErrInvalidAccountData
	}
	reserveX, ok := token.UnmarshalAccount(vaultX.Data())
	if !ok {
		return ledger.ErrInvalidAccountData
	}
	reserveY, ok := token.UnmarshalAccount(vaultY.Data())
	if !ok {
		return ledger.ErrInvalidAccountData
	}

	// The empty-pool branch requires zero reserves as well as zero supply.
	// A zero-supply pool holding donated reserves falls through to the
	// proportional path, which rejects it, instead of letting the depositor
	// reprice the donation.
	var x, y uint64
	if shareMint.Supply == 0 && reserveX.Amount == 0 && reserveY.Amount == 0 {
		x, y = args.MaxX, args.MaxY
		if x == 0 || y == 0 {
			return ledger.ErrInvalidInstructionData
		}
	} else {
		x, y, err = DepositAmounts(args.Amount, reserveX.Amount, reserveY.Amount, shareMint.Supply)
		if err != nil {
			return err
		}
		if x > args.MaxX || y > args.MaxY {
			return ledger.ErrSlippageExceeded
		}
	}

	userAuthority, err := ledger.NewSignerAuthority(user)
	if err != nil {
		return err
	}
	poolAuthority, err := p.configAuthority(cfg)
	if err != nil {
		return err
	}

	if err := token.Transfer(userXAta, vaultX, userAuthority, x); err != nil {
		return err
	}
	if err := token.Transfer(userYAta, vaultY, userAuthority, y); err != nil {
		return err
	}
	if err := token.MintTo(mintLp, userLpAta, poolAuthority, args.Amount); err != nil {
		return err
	}

	p.log.WithField("config", cfg.String()).Debug("deposited liquidity")
	return nil
}
