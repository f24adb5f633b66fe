package amm

import (
	"github.com/sirupsen/logrus"

	"github.com/forge-markets/forge-server/pkg/ledger"
	"github.com/forge-markets/forge-server/pkg/program/accounts"
	"github.com/forge-markets/forge-server/pkg/solana/binary"
	"github.com/forge-markets/forge-server/pkg/token"
)

// SwapArgs is the Swap instruction payload. Expiration is carried on the
// wire but not enforced.
type SwapArgs struct {
	// Direction: true sells X into the pool for Y, false sells Y for X.
	IsX bool
	// Exact input amount.
	Amount uint64
	// Slippage floor on the output.
	Min uint64
	// Unix deadline, unchecked.
	Expiration int64
}

const swapArgsSize = 1 + 8 + 8 + 8

func parseSwapArgs(data []byte) (args SwapArgs, err error) {
	if len(data) != swapArgsSize {
		return args, ledger.ErrInvalidInstructionData
	}

	var offset int
	var isX uint8
	binary.GetUint8(data, &isX, &offset)
	binary.GetUint64(data[offset:], &args.Amount, &offset)
	binary.GetUint64(data[offset:], &args.Min, &offset)
	binary.GetInt64(data[offset:], &args.Expiration, &offset)

	if isX > 1 {
		return args, ledger.ErrInvalidInstructionData
	}
	args.IsX = isX == 1
	return args, nil
}

// swap trades an exact input against the curve, with the fee retained in
// the output-side vault where it accrues to the liquidity providers.
//
// Expected accounts:
//
//	0. user           (signer, writable)
//	1. config
//	2. vault_x        (writable)
//	3. vault_y        (writable)
//	4. user_x_ata     (writable)
//	5. user_y_ata     (writable)
//	6. token program
func (p *Processor) swap(ctx *ledger.Context, views []*ledger.AccountView, data []byte) error {
	if len(views) < 7 {
		return ledger.ErrInsufficientAccounts
	}

	var (
		user         = views[0]
		config       = views[1]
		vaultX       = views[2]
		vaultY       = views[3]
		userXAta     = views[4]
		userYAta     = views[5]
		tokenProgram = views[6]
	)

	args, err := parseSwapArgs(data)
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

	vaultIn, vaultOut := vaultY, vaultX
	userIn, userOut := userYAta, userXAta
	if args.IsX {
		vaultIn, vaultOut = vaultX, vaultY
		userIn, userOut = userXAta, userYAta
	}

	reserveIn, ok := token.UnmarshalAccount(vaultIn.Data())
	if !ok {
		return ledger.ErrInvalidAccountData
	}
	reserveOut, ok := token.UnmarshalAccount(vaultOut.Data())
	if !ok {
		return ledger.ErrInvalidAccountData
	}
	if reserveIn.Amount == 0 || reserveOut.Amount == 0 {
		return ledger.ErrInvalidState
	}

	out, fee, err := SwapOut(args.Amount, reserveIn.Amount, reserveOut.Amount, cfg.Fee)
	if err != nil {
		return err
	}
	// A zero payout means the input was too small to move the curve; the
	// trade would be a pure donation.
	if out == 0 || out < args.Min {
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

	if err := token.Transfer(userIn, vaultIn, userAuthority, args.Amount); err != nil {
		return err
	}
	if err := token.Transfer(vaultOut, userOut, poolAuthority, out); err != nil {
		return err
	}

	p.log.WithFields(logrus.Fields{
		"config": cfg.String(),
		"in":     args.Amount,
		"out":    out,
		"fee":    fee,
	}).Debug("executed swap")
	return nil
}
