package amm

import (
	"bytes"
	"crypto/ed25519"

	"github.com/forge-markets/forge-server/pkg/ledger"
	"github.com/forge-markets/forge-server/pkg/program/accounts"
	"github.com/forge-markets/forge-server/pkg/solana"
	"github.com/forge-markets/forge-server/pkg/solana/binary"
	"github.com/forge-markets/forge-server/pkg/token"
)

// shareDecimals is fixed for every pool's share mint.
const shareDecimals = 1

// InitializeArgs is the Initialize instruction payload. The authority key
// is optional on the wire; an omitted or all-zero authority creates an
// immutable pool.
type InitializeArgs struct {
	Seed       uint64
	Fee        uint16
	MintX      ed25519.PublicKey
	MintY      ed25519.PublicKey
	ConfigBump uint8
	LpBump     uint8
	Authority  ed25519.PublicKey
}

const (
	initializeArgsSize     = 8 + 2 + 32 + 32 + 1 + 1
	initializeArgsSizeFull = initializeArgsSize + 32
)

func parseInitializeArgs(data []byte) (args InitializeArgs, err error) {
	if len(data) != initializeArgsSize && len(data) != initializeArgsSizeFull {
		return args, ledger.ErrInvalidInstructionData
	}

	var offset int
	binary.GetUint64(data, &args.Seed, &offset)
	binary.GetUint16(data[offset:], &args.Fee, &offset)
	binary.GetKey32(data[offset:], &args.MintX, &offset)
	binary.GetKey32(data[offset:], &args.MintY, &offset)
	binary.GetUint8(data[offset:], &args.ConfigBump, &offset)
	binary.GetUint8(data[offset:], &args.LpBump, &offset)

	if len(data) == initializeArgsSizeFull {
		binary.GetKey32(data[offset:], &args.Authority, &offset)
	} else {
		args.Authority = make(ed25519.PublicKey, ed25519.PublicKeySize)
	}
	return args, nil
}

// initialize creates a pool: the config record, the share mint with the
// config as its minting authority, and both vaults as the config's
// associated token accounts.
//
// Expected accounts:
//
//	0. initializer    (signer, writable)
//	1. config         (writable)
//	2. mint_lp        (writable)
//	3. mint_x
//	4. mint_y
//	5. vault_x        (writable)
//	6. vault_y        (writable)
//	7. system program
//	8. token program
func (p *Processor) initialize(ctx *ledger.Context, views []*ledger.AccountView, data []byte) error {
	if len(views) < 9 {
		return ledger.ErrInsufficientAccounts
	}

	var (
		initializer  = views[0]
		config       = views[1]
		mintLp       = views[2]
		mintX        = views[3]
		mintY        = views[4]
		vaultX       = views[5]
		vaultY       = views[6]
		tokenProgram = views[8]
	)

	args, err := parseInitializeArgs(data)
	if err != nil {
		return err
	}
	if args.Fee >= MaxFeeBps {
		return ledger.ErrInvalidAccountData
	}

	if err := accounts.CheckSigner(initializer); err != nil {
		return err
	}
	if err := accounts.CheckMintInterface(mintX); err != nil {
		return err
	}
	if err := accounts.CheckMintInterface(mintY); err != nil {
		return err
	}
	if !bytes.Equal(args.MintX, mintX.Address()) || !bytes.Equal(args.MintY, mintY.Address()) {
		return ledger.ErrInvalidAccountData
	}

	cfg := Config{
		State:      StateInitialized,
		Seed:       args.Seed,
		Authority:  args.Authority,
		MintX:      args.MintX,
		MintY:      args.MintY,
		Fee:        args.Fee,
		ConfigBump: args.ConfigBump,
	}

	derived, err := solana.CreateProgramAddress(p.id, cfg.seeds()...)
	if err != nil {
		return err
	}
	if !bytes.Equal(derived, config.Address()) {
		return ledger.ErrInvalidAddress
	}

	if err := accounts.InitProgramAccount(ctx, initializer, config, p.id, cfg.seeds(), ConfigSize); err != nil {
		return err
	}
	config.SetData(cfg.Marshal())

	// The share mint always sits at the canonical derivation; a pool created
	// off a non-canonical bump would pass here but fail every later share
	// mint check.
	lpAddress, lpBump, err := ShareMintAddress(p.id, config.Address())
	if err != nil {
		return err
	}
	if lpBump != args.LpBump || !bytes.Equal(lpAddress, mintLp.Address()) {
		return ledger.ErrInvalidAddress
	}

	std, ok := token.DetectStandard(tokenProgram.Address())
	if !ok {
		return ledger.ErrInvalidOwner
	}

	if err := accounts.CheckMintInterface(mintLp); err != nil {
		lpAuthority, err := ledger.NewDerivedAuthority(p.id, lpSeed, config.Address(), []byte{lpBump})
		if err != nil {
			return err
		}
		if err := token.CreateMint(ctx, initializer, mintLp, lpAuthority, std, shareDecimals, config.Address(), nil); err != nil {
			return err
		}
	}

	if err := accounts.InitAssociatedTokenAccountIfNeeded(ctx, initializer, vaultX, mintX, config.Address()); err != nil {
		return err
	}
	if err := accounts.InitAssociatedTokenAccountIfNeeded(ctx, initializer, vaultY, mintY, config.Address()); err != nil {
		return err
	}

	p.log.WithField("config", cfg.String()).Debug("initialized pool")
	return nil
}
