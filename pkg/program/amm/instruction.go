package amm

import (
	"crypto/ed25519"

	"github.com/forge-markets/forge-server/pkg/ledger"
	"github.com/forge-markets/forge-server/pkg/solana"
	"github.com/forge-markets/forge-server/pkg/solana/binary"
)

// Instruction builders for clients. The account order must match what the
// handlers expect.

func (a InitializeArgs) Marshal() []byte {
	size := 1 + initializeArgsSize
	hasAuthority := false
	for _, b := range a.Authority {
		if b != 0 {
			hasAuthority = true
			break
		}
	}
	if hasAuthority {
		size = 1 + initializeArgsSizeFull
	}

	b := make([]byte, size)
	b[0] = byte(CommandInitialize)

	offset := 1
	binary.PutUint64(b[offset:], a.Seed, &offset)
	binary.PutUint16(b[offset:], a.Fee, &offset)
	binary.PutKey32(b[offset:], a.MintX, &offset)
	binary.PutKey32(b[offset:], a.MintY, &offset)
	binary.PutUint8(b[offset:], a.ConfigBump, &offset)
	binary.PutUint8(b[offset:], a.LpBump, &offset)
	if hasAuthority {
		binary.PutKey32(b[offset:], a.Authority, &offset)
	}
	return b
}

func NewInitializeInstruction(
	program, initializer, config, mintLp, vaultX, vaultY, tokenProgram ed25519.PublicKey,
	args InitializeArgs,
) solana.Instruction {
	return solana.NewInstruction(
		program,
		args.Marshal(),
		solana.NewAccountMeta(initializer, true),
		solana.NewAccountMeta(config, false),
		solana.NewAccountMeta(mintLp, false),
		solana.NewReadonlyAccountMeta(args.MintX, false),
		solana.NewReadonlyAccountMeta(args.MintY, false),
		solana.NewAccountMeta(vaultX, false),
		solana.NewAccountMeta(vaultY, false),
		solana.NewReadonlyAccountMeta(ledger.SystemProgramID, false),
		solana.NewReadonlyAccountMeta(tokenProgram, false),
	)
}

func (a DepositArgs) Marshal() []byte {
	b := make([]byte, 1+depositArgsSize)
	b[0] = byte(CommandDeposit)

	offset := 1
	binary.PutUint64(b[offset:], a.Amount, &offset)
	binary.PutUint64(b[offset:], a.MaxX, &offset)
	binary.PutUint64(b[offset:], a.MaxY, &offset)
	binary.PutInt64(b[offset:], a.Expiration, &offset)
	return b
}

func NewDepositInstruction(
	program, user, config, mintLp, vaultX, vaultY, userXAta, userYAta, userLpAta, tokenProgram ed25519.PublicKey,
	args DepositArgs,
) solana.Instruction {
	return solana.NewInstruction(
		program,
		args.Marshal(),
		solana.NewAccountMeta(user, true),
		solana.NewReadonlyAccountMeta(config, false),
		solana.NewAccountMeta(mintLp, false),
		solana.NewAccountMeta(vaultX, false),
		solana.NewAccountMeta(vaultY, false),
		solana.NewAccountMeta(userXAta, false),
		solana.NewAccountMeta(userYAta, false),
		solana.NewAccountMeta(userLpAta, false),
		solana.NewReadonlyAccountMeta(ledger.SystemProgramID, false),
		solana.NewReadonlyAccountMeta(tokenProgram, false),
	)
}

func (a WithdrawArgs) Marshal() []byte {
	b := make([]byte, 1+withdrawArgsSize)
	b[0] = byte(CommandWithdraw)

	offset := 1
	binary.PutUint64(b[offset:], a.Amount, &offset)
	binary.PutUint64(b[offset:], a.MinX, &offset)
	binary.PutUint64(b[offset:], a.MinY, &offset)
	binary.PutInt64(b[offset:], a.Expiration, &offset)
	return b
}

func NewWithdrawInstruction(
	program, user, config, mintLp, vaultX, vaultY, userXAta, userYAta, userLpAta, tokenProgram ed25519.PublicKey,
	args WithdrawArgs,
) solana.Instruction {
	return solana.NewInstruction(
		program,
		args.Marshal(),
		solana.NewAccountMeta(user, true),
		solana.NewReadonlyAccountMeta(config, false),
		solana.NewAccountMeta(mintLp, false),
		solana.NewAccountMeta(vaultX, false),
		solana.NewAccountMeta(vaultY, false),
		solana.NewAccountMeta(userXAta, false),
		solana.NewAccountMeta(userYAta, false),
		solana.NewAccountMeta(userLpAta, false),
		solana.NewReadonlyAccountMeta(tokenProgram, false),
	)
}

func (a SwapArgs) Marshal() []byte {
	b := make([]byte, 1+swapArgsSize)
	b[0] = byte(CommandSwap)

	offset := 1
	if a.IsX {
		binary.PutUint8(b[offset:], 1, &offset)
	} else {
		binary.PutUint8(b[offset:], 0, &offset)
	}
	binary.PutUint64(b[offset:], a.Amount, &offset)
	binary.PutUint64(b[offset:], a.Min, &offset)
	binary.PutInt64(b[offset:], a.Expiration, &offset)
	return b
}

func NewSwapInstruction(
	program, user, config, vaultX, vaultY, userXAta, userYAta, tokenProgram ed25519.PublicKey,
	args SwapArgs,
) solana.Instruction {
	return solana.NewInstruction(
		program,
		args.Marshal(),
		solana.NewAccountMeta(user, true),
		solana.NewReadonlyAccountMeta(config, false),
		solana.NewAccountMeta(vaultX, false),
		solana.NewAccountMeta(vaultY, false),
		solana.NewAccountMeta(userXAta, false),
		solana.NewAccountMeta(userYAta, false),
		solana.NewReadonlyAccountMeta(tokenProgram, false),
	)
}
