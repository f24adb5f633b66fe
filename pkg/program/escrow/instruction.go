package escrow

import (
	"crypto/ed25519"

	"github.com/forge-markets/forge-server/pkg/ledger"
	"github.com/forge-markets/forge-server/pkg/solana"
	"github.com/forge-markets/forge-server/pkg/solana/binary"
)

// Instruction builders for clients. The account order must match what the
// handlers expect.

func (a MakeArgs) Marshal() []byte {
	b := make([]byte, 1+makeArgsSize)
	b[0] = byte(CommandMake)

	offset := 1
	binary.PutUint64(b[offset:], a.Seed, &offset)
	binary.PutUint64(b[offset:], a.Receive, &offset)
	binary.PutUint64(b[offset:], a.Amount, &offset)
	return b
}

func NewMakeInstruction(
	program, maker, record, mintA, mintB, makerAtaA, vault, tokenProgram ed25519.PublicKey,
	args MakeArgs,
) solana.Instruction {
	return solana.NewInstruction(
		program,
		args.Marshal(),
		solana.NewAccountMeta(maker, true),
		solana.NewAccountMeta(record, false),
		solana.NewReadonlyAccountMeta(mintA, false),
		solana.NewReadonlyAccountMeta(mintB, false),
		solana.NewAccountMeta(makerAtaA, false),
		solana.NewAccountMeta(vault, false),
		solana.NewReadonlyAccountMeta(ledger.SystemProgramID, false),
		solana.NewReadonlyAccountMeta(tokenProgram, false),
	)
}

func NewTakeInstruction(
	program, taker, maker, record, mintA, mintB, vault, takerAtaA, takerAtaB, makerAtaB, tokenProgram ed25519.PublicKey,
) solana.Instruction {
	return solana.NewInstruction(
		program,
		[]byte{byte(CommandTake)},
		solana.NewAccountMeta(taker, true),
		solana.NewAccountMeta(maker, false),
		solana.NewAccountMeta(record, false),
		solana.NewReadonlyAccountMeta(mintA, false),
		solana.NewReadonlyAccountMeta(mintB, false),
		solana.NewAccountMeta(vault, false),
		solana.NewAccountMeta(takerAtaA, false),
		solana.NewAccountMeta(takerAtaB, false),
		solana.NewAccountMeta(makerAtaB, false),
		solana.NewReadonlyAccountMeta(ledger.SystemProgramID, false),
		solana.NewReadonlyAccountMeta(tokenProgram, false),
	)
}

func NewRefundInstruction(
	program, maker, record, mintA, vault, makerAtaA, tokenProgram ed25519.PublicKey,
) solana.Instruction {
	return solana.NewInstruction(
		program,
		[]byte{byte(CommandRefund)},
		solana.NewAccountMeta(maker, true),
		solana.NewAccountMeta(record, false),
		solana.NewReadonlyAccountMeta(mintA, false),
		solana.NewAccountMeta(vault, false),
		solana.NewAccountMeta(makerAtaA, false),
		solana.NewReadonlyAccountMeta(ledger.SystemProgramID, false),
		solana.NewReadonlyAccountMeta(tokenProgram, false),
	)
}
